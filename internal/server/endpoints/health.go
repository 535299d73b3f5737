package endpoints

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/cardexhq/cardex/internal/api"
	"github.com/cardexhq/cardex/internal/config"
	"github.com/cardexhq/cardex/internal/sink"
	"github.com/cardexhq/cardex/internal/source"
)

// HealthResponse is the response for the liveness endpoint.
type HealthResponse struct {
	Status string `json:"status"`
}

// HealthEndpoint handles GET /health.
type HealthEndpoint struct{}

func (e *HealthEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/health", e.handler
}

func (e *HealthEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
}

func (e *HealthEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check server and collaborator health",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var resp HealthzResponse
			if err := client.Get(cmd.Context(), "/healthz", &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
}

// ServiceStatus reports per-collaborator connectivity.
type ServiceStatus struct {
	Provider     string `json:"provider"`
	GoogleDrive  string `json:"google_drive"`
	GoogleSheets string `json:"google_sheets"`
}

// HealthzResponse is the response for the connectivity endpoint.
type HealthzResponse struct {
	Status    string        `json:"status"`
	Services  ServiceStatus `json:"services"`
	Timestamp string        `json:"timestamp"`
}

// HealthzEndpoint handles GET /healthz: it probes the vision provider,
// Drive and Sheets concurrently and reports per-service status.
type HealthzEndpoint struct {
	Deps Deps
}

func (e *HealthzEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/healthz", e.handler
}

func (e *HealthzEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	cfg := e.Deps.ConfigManager.Get()
	serviceAccount := config.ResolveEnvVars(cfg.Google.ServiceAccountJSON)

	var mu sync.Mutex
	status := ServiceStatus{Provider: "error", GoogleDrive: "error", GoogleSheets: "error"}
	set := func(assign func(*ServiceStatus)) {
		mu.Lock()
		defer mu.Unlock()
		assign(&status)
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		client, err := e.Deps.Registry.Default()
		if err != nil {
			return nil
		}
		if err := client.HealthCheck(gctx); err == nil {
			set(func(s *ServiceStatus) { s.Provider = "ok" })
		}
		return nil
	})

	g.Go(func() error {
		if serviceAccount == "" {
			return nil
		}
		drv, err := source.NewDriveSource(gctx, serviceAccount, "", false)
		if err != nil {
			return nil
		}
		if err := drv.HealthCheck(gctx); err == nil {
			set(func(s *ServiceStatus) { s.GoogleDrive = "ok" })
		}
		return nil
	})

	g.Go(func() error {
		if serviceAccount == "" || cfg.Google.SheetID == "" {
			return nil
		}
		sheet, err := sink.NewSheetsSink(gctx, serviceAccount, cfg.Google.SheetID, cfg.Google.SheetName)
		if err != nil {
			return nil
		}
		if err := sheet.HealthCheck(gctx); err == nil {
			set(func(s *ServiceStatus) { s.GoogleSheets = "ok" })
		}
		return nil
	})

	_ = g.Wait()

	overall := "degraded"
	if status.Provider == "ok" && status.GoogleDrive == "ok" && status.GoogleSheets == "ok" {
		overall = "healthy"
	}

	writeJSON(w, http.StatusOK, HealthzResponse{
		Status:    overall,
		Services:  status,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

func (e *HealthzEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "healthz",
		Short: "Check collaborator connectivity",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var resp HealthzResponse
			if err := client.Get(cmd.Context(), "/healthz", &resp); err != nil {
				return err
			}
			fmt.Printf("Status: %s\n", resp.Status)
			fmt.Printf("Provider: %s  Drive: %s  Sheets: %s\n",
				resp.Services.Provider, resp.Services.GoogleDrive, resp.Services.GoogleSheets)
			return nil
		},
	}
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		// Headers already sent; nothing else to do.
		return
	}
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
