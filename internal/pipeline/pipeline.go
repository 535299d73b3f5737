// Package pipeline runs the full extraction flow: enumerate images, fan
// them out over the batch pool, deduplicate the rows, write them to the
// sink, and fold everything into a run report.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/time/rate"

	"github.com/cardexhq/cardex/internal/batch"
	"github.com/cardexhq/cardex/internal/cards"
	"github.com/cardexhq/cardex/internal/extract"
	"github.com/cardexhq/cardex/internal/providers"
	"github.com/cardexhq/cardex/internal/sink"
	"github.com/cardexhq/cardex/internal/source"
)

// Params configures one pipeline run.
type Params struct {
	Source source.Source
	Client providers.VisionClient
	// Sink receives the deduplicated rows. Nil means dry run: extract and
	// report, write nothing.
	Sink sink.Sink

	Model       string
	Concurrency int
	// MaxFiles caps how many of the enumerated images are processed.
	// Zero means no cap.
	MaxFiles    int
	MaxAttempts uint
	RetryDelay  time.Duration
	RateLimit   rate.Limit

	Logger *slog.Logger
}

// Run executes the pipeline. Per-image failures land in the report; the
// returned error covers only failures that prevent the run itself
// (enumeration errors, contract violations).
func Run(ctx context.Context, p Params) (cards.RunReport, error) {
	log := p.Logger
	if log == nil {
		log = slog.Default()
	}

	images, err := p.Source.List(ctx)
	if err != nil {
		return cards.RunReport{}, fmt.Errorf("list images: %w", err)
	}
	filesFound := len(images)

	if p.MaxFiles > 0 && len(images) > p.MaxFiles {
		images = images[:p.MaxFiles]
	}

	log.Info("batch starting",
		"source", p.Source.Name(),
		"files_found", filesFound,
		"files_selected", len(images),
		"model", p.Model,
		"concurrency", p.Concurrency,
	)

	driver := extract.NewDriver(p.Source, p.Client, extract.Options{
		Model:       p.Model,
		MaxAttempts: p.MaxAttempts,
		RetryDelay:  p.RetryDelay,
	}, log)

	outcomes, err := batch.Run(ctx, images, driver.Attempt, batch.Options{
		Concurrency: p.Concurrency,
		RateLimit:   p.RateLimit,
	})
	if err != nil {
		return cards.RunReport{}, err
	}

	var allRows []cards.Row
	for _, o := range outcomes {
		if !o.Failed() {
			allRows = append(allRows, o.Rows...)
		}
	}
	unique := cards.Dedupe(allRows)

	rowsAppended := 0
	var appendErr error
	if p.Sink != nil && len(unique) > 0 {
		rowsAppended, appendErr = p.Sink.Append(ctx, unique)
		if appendErr != nil {
			log.Error("sink append failed", "sink", p.Sink.Name(), "error", appendErr)
		}
	}

	report := batch.Aggregate(filesFound, outcomes, unique, rowsAppended, appendErr)

	log.Info("batch complete",
		"status", report.Status,
		"files_processed", report.FilesProcessed,
		"rows_extracted", report.RowsExtracted,
		"rows_appended", report.RowsAppended,
		"errors", len(report.Errors),
	)
	return report, nil
}
