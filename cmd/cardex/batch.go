package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/time/rate"

	"github.com/cardexhq/cardex/internal/api"
	"github.com/cardexhq/cardex/internal/config"
	"github.com/cardexhq/cardex/internal/pipeline"
	"github.com/cardexhq/cardex/internal/providers"
	"github.com/cardexhq/cardex/internal/sink"
	"github.com/cardexhq/cardex/internal/source"
)

var (
	batchLocal       string
	batchDrive       string
	batchRecursive   bool
	batchXLSX        string
	batchSheetID     string
	batchSheetName   string
	batchDryRun      bool
	batchMaxFiles    int
	batchConcurrency int
	batchModel       string
)

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Run batch extraction without a server",
	Long: `Run the extraction pipeline directly, without going through a
running server.

The sink is picked from the flags: --xlsx writes a local workbook,
--sheet-id appends to Google Sheets, --dry-run extracts without writing.

Examples:
  cardex batch --local ./cards --xlsx contacts.xlsx
  cardex batch --drive 1AbC... --recursive --sheet-id 1XyZ...
  cardex batch --local ./cards --dry-run -o json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		}))

		cm, err := config.NewManager(cfgFile)
		if err != nil {
			return err
		}
		cfg := cm.Get()

		if (batchLocal == "") == (batchDrive == "") {
			return fmt.Errorf("exactly one of --local and --drive must be set")
		}

		model := batchModel
		if model == "" {
			model = cfg.Models.Default
		}
		if !cfg.ModelAllowed(model) {
			return fmt.Errorf("model %q is not in the allowed list", model)
		}

		serviceAccount := config.ResolveEnvVars(cfg.Google.ServiceAccountJSON)

		var src source.Source
		if batchDrive != "" {
			src, err = source.NewDriveSource(ctx, serviceAccount, batchDrive, batchRecursive)
			if err != nil {
				return err
			}
		} else {
			src = source.NewLocalSource(batchLocal)
		}

		registry := providers.NewRegistry()
		registry.Reload(cfg.ToRegistryConfig())
		client, err := registry.Default()
		if err != nil {
			return err
		}

		var dest sink.Sink
		switch {
		case batchDryRun:
			// No sink
		case batchXLSX != "":
			dest = sink.NewXLSXSink(batchXLSX)
		case batchSheetID != "" || cfg.Google.SheetID != "":
			sheetID := batchSheetID
			if sheetID == "" {
				sheetID = cfg.Google.SheetID
			}
			sheetName := batchSheetName
			if sheetName == "" {
				sheetName = cfg.Google.SheetName
			}
			dest, err = sink.NewSheetsSink(ctx, serviceAccount, sheetID, sheetName)
			if err != nil {
				return err
			}
		default:
			return fmt.Errorf("no sink configured: pass --xlsx, --sheet-id, or --dry-run")
		}

		concurrency := batchConcurrency
		if concurrency == 0 {
			concurrency = cfg.Batch.Concurrency
		}
		maxFiles := batchMaxFiles
		if maxFiles == 0 {
			maxFiles = cfg.Batch.MaxFiles
		}
		retryDelay, _ := time.ParseDuration(cfg.Batch.RetryDelay)

		var rateLimit rate.Limit
		if pcfg, ok := cfg.GetProvider(client.Name()); ok && pcfg.RateLimit > 0 {
			rateLimit = rate.Limit(pcfg.RateLimit)
		}

		report, err := pipeline.Run(ctx, pipeline.Params{
			Source:      src,
			Client:      client,
			Sink:        dest,
			Model:       model,
			Concurrency: concurrency,
			MaxFiles:    maxFiles,
			MaxAttempts: cfg.Batch.MaxAttempts,
			RetryDelay:  retryDelay,
			RateLimit:   rateLimit,
			Logger:      logger,
		})
		if err != nil {
			return err
		}

		return api.Output(report)
	},
}

func init() {
	batchCmd.Flags().StringVar(&batchLocal, "local", "", "Local folder path")
	batchCmd.Flags().StringVar(&batchDrive, "drive", "", "Google Drive folder ID")
	batchCmd.Flags().BoolVar(&batchRecursive, "recursive", false, "Descend into subfolders")
	batchCmd.Flags().StringVar(&batchXLSX, "xlsx", "", "Write rows to a local .xlsx workbook")
	batchCmd.Flags().StringVar(&batchSheetID, "sheet-id", "", "Target spreadsheet ID")
	batchCmd.Flags().StringVar(&batchSheetName, "sheet-name", "", "Target sheet tab name")
	batchCmd.Flags().BoolVar(&batchDryRun, "dry-run", false, "Extract without writing anywhere")
	batchCmd.Flags().IntVar(&batchMaxFiles, "max-files", 0, "Cap on images per run")
	batchCmd.Flags().IntVar(&batchConcurrency, "concurrency", 0, "Parallel images")
	batchCmd.Flags().StringVar(&batchModel, "model", "", "Vision model to use")

	rootCmd.AddCommand(batchCmd)
}
