package endpoints

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/time/rate"

	"github.com/cardexhq/cardex/internal/api"
	"github.com/cardexhq/cardex/internal/cards"
	"github.com/cardexhq/cardex/internal/config"
	"github.com/cardexhq/cardex/internal/pipeline"
	"github.com/cardexhq/cardex/internal/sink"
	"github.com/cardexhq/cardex/internal/source"
)

const (
	minConcurrency = 1
	maxConcurrency = 20
)

// BatchRequest is the body of POST /batch/folder. Exactly one of
// DriveFolderID and LocalFolderPath must be set.
type BatchRequest struct {
	DriveFolderID   string `json:"driveFolderId,omitempty"`
	LocalFolderPath string `json:"localFolderPath,omitempty"`
	Recursive       bool   `json:"recursive,omitempty"`

	SheetID   string `json:"sheetId,omitempty"`
	SheetName string `json:"sheetName,omitempty"`
	DryRun    bool   `json:"dryRun,omitempty"`

	MaxFiles    int    `json:"maxFiles,omitempty"`
	Concurrency int    `json:"concurrency,omitempty"`
	Model       string `json:"model,omitempty"`
}

// BatchResponse is the run report returned by POST /batch/folder.
type BatchResponse struct {
	Status         string            `json:"status"`
	FolderMode     string            `json:"folderMode"`
	ModelUsed      string            `json:"modelUsed"`
	FilesFound     int               `json:"filesFound"`
	FilesProcessed int               `json:"filesProcessed"`
	RowsExtracted  int               `json:"rowsExtracted"`
	RowsAppended   int               `json:"rowsAppended"`
	DryRun         bool              `json:"dryRun"`
	Errors         []cards.FileError `json:"errors"`
	Rows           []cards.Row       `json:"rows"`
}

// BatchEndpoint handles POST /batch/folder: the full extraction pipeline
// against a Drive or local folder.
type BatchEndpoint struct {
	Deps Deps
}

func (e *BatchEndpoint) Route() (string, string, http.HandlerFunc) {
	return "POST", "/batch/folder", e.handler
}

func (e *BatchEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	var req BatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return
	}

	cfg := e.Deps.ConfigManager.Get()

	if err := validateBatchRequest(&req, cfg); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx := r.Context()
	serviceAccount := config.ResolveEnvVars(cfg.Google.ServiceAccountJSON)

	// Source
	var (
		src        source.Source
		folderMode string
		err        error
	)
	if req.DriveFolderID != "" {
		folderMode = "drive"
		src, err = source.NewDriveSource(ctx, serviceAccount, req.DriveFolderID, req.Recursive)
		if err != nil {
			writeError(w, http.StatusBadGateway, fmt.Sprintf("drive source: %v", err))
			return
		}
	} else {
		folderMode = "local"
		src = source.NewLocalSource(req.LocalFolderPath)
	}

	// Provider
	client, err := e.Deps.Registry.Default()
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, err.Error())
		return
	}

	// Sink
	var dest sink.Sink
	sheetID := req.SheetID
	if sheetID == "" {
		sheetID = cfg.Google.SheetID
	}
	sheetName := req.SheetName
	if sheetName == "" {
		sheetName = cfg.Google.SheetName
	}
	if !req.DryRun && sheetID != "" {
		sheets, err := sink.NewSheetsSink(ctx, serviceAccount, sheetID, sheetName)
		if err != nil {
			writeError(w, http.StatusBadGateway, fmt.Sprintf("sheets sink: %v", err))
			return
		}
		dest = sheets
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
		Model:       req.Model,
		Concurrency: req.Concurrency,
		MaxFiles:    req.MaxFiles,
		MaxAttempts: cfg.Batch.MaxAttempts,
		RetryDelay:  retryDelay,
		RateLimit:   rateLimit,
		Logger:      e.Deps.Logger,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, BatchResponse{
		Status:         report.Status,
		FolderMode:     folderMode,
		ModelUsed:      req.Model,
		FilesFound:     report.FilesFound,
		FilesProcessed: report.FilesProcessed,
		RowsExtracted:  report.RowsExtracted,
		RowsAppended:   report.RowsAppended,
		DryRun:         req.DryRun,
		Errors:         report.Errors,
		Rows:           report.Rows,
	})
}

// validateBatchRequest applies defaults and rejects malformed requests.
func validateBatchRequest(req *BatchRequest, cfg *config.Config) error {
	if (req.DriveFolderID == "") == (req.LocalFolderPath == "") {
		return fmt.Errorf("exactly one of driveFolderId and localFolderPath must be set")
	}

	if req.Concurrency == 0 {
		req.Concurrency = cfg.Batch.Concurrency
	}
	if req.Concurrency < minConcurrency || req.Concurrency > maxConcurrency {
		return fmt.Errorf("concurrency must be between %d and %d", minConcurrency, maxConcurrency)
	}

	if req.MaxFiles == 0 {
		req.MaxFiles = cfg.Batch.MaxFiles
	}
	if req.MaxFiles < 1 {
		return fmt.Errorf("maxFiles must be at least 1")
	}

	if req.Model == "" {
		req.Model = cfg.Models.Default
	}
	if !cfg.ModelAllowed(req.Model) {
		return fmt.Errorf("model %q is not in the allowed list", req.Model)
	}

	return nil
}

func (e *BatchEndpoint) Command(getServerURL func() string) *cobra.Command {
	var req BatchRequest

	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Run batch extraction on a Drive or local folder",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var resp BatchResponse
			if err := client.Post(cmd.Context(), "/batch/folder", req, &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}

	cmd.Flags().StringVar(&req.DriveFolderID, "drive", "", "Google Drive folder ID")
	cmd.Flags().StringVar(&req.LocalFolderPath, "local", "", "Local folder path")
	cmd.Flags().BoolVar(&req.Recursive, "recursive", false, "Descend into subfolders")
	cmd.Flags().StringVar(&req.SheetID, "sheet-id", "", "Target spreadsheet ID")
	cmd.Flags().StringVar(&req.SheetName, "sheet-name", "", "Target sheet tab name")
	cmd.Flags().BoolVar(&req.DryRun, "dry-run", false, "Extract without writing to the sheet")
	cmd.Flags().IntVar(&req.MaxFiles, "max-files", 0, "Cap on images per run")
	cmd.Flags().IntVar(&req.Concurrency, "concurrency", 0, "Parallel images (1-20)")
	cmd.Flags().StringVar(&req.Model, "model", "", "Vision model to use")

	return cmd
}
