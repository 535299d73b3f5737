package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/cardexhq/cardex/internal/config"
	"github.com/cardexhq/cardex/internal/server"
)

var (
	serveHost string
	servePort int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the cardex server",
	Long: `Start the cardex HTTP server.

The server provides:
  - /health       - Server liveness check
  - /healthz      - Connectivity check for the provider, Drive and Sheets
  - /models       - Default and allowed extraction models
  - /batch/folder - Run batch extraction on a folder

Examples:
  cardex serve                   # Start on default port 8080
  cardex serve --port 3000       # Start on custom port`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		}))
		slog.SetDefault(logger)

		cm, err := config.NewManager(cfgFile)
		if err != nil {
			return err
		}

		cfg := cm.Get()
		host := serveHost
		if host == "" {
			host = cfg.Server.Host
		}
		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv, err := server.New(server.Config{
			Host:          host,
			Port:          port,
			ConfigManager: cm,
			Logger:        logger,
		})
		if err != nil {
			return err
		}

		// Blocks until shutdown
		return srv.Start(ctx)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveHost, "host", "", "Host to bind to (default from config)")
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (default from config)")

	rootCmd.AddCommand(serveCmd)
}
