// Package extract turns one card image into normalized contact rows: fetch
// the bytes, call the vision model with bounded retries, validate the JSON
// against the rows contract, and repair invalid output at most once.
package extract

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/avast/retry-go/v4"

	"github.com/cardexhq/cardex/internal/cards"
	"github.com/cardexhq/cardex/internal/providers"
	"github.com/cardexhq/cardex/internal/source"
)

// Options tune a Driver. Zero values fall back to defaults.
type Options struct {
	Model       string
	Temperature float64
	MaxTokens   int

	// MaxAttempts bounds model calls for one image, counting the first.
	MaxAttempts uint
	// RetryDelay is the base delay before the first retry; subsequent
	// delays back off exponentially.
	RetryDelay time.Duration
}

const (
	defaultMaxAttempts = 3
	defaultRetryDelay  = time.Second
)

// Driver runs the extraction attempt for single images. Safe for concurrent
// use.
type Driver struct {
	src    source.Source
	client providers.VisionClient
	opts   Options
	log    *slog.Logger
}

// NewDriver wires a driver over a source and a vision client.
func NewDriver(src source.Source, client providers.VisionClient, opts Options, log *slog.Logger) *Driver {
	if opts.MaxAttempts == 0 {
		opts.MaxAttempts = defaultMaxAttempts
	}
	if opts.RetryDelay == 0 {
		opts.RetryDelay = defaultRetryDelay
	}
	if log == nil {
		log = slog.Default()
	}
	return &Driver{src: src, client: client, opts: opts, log: log}
}

// Attempt processes one image end to end. It never panics and never returns
// a partial success: the outcome carries either the normalized rows or the
// error that ended the attempt.
func (d *Driver) Attempt(ctx context.Context, ref cards.ImageRef) cards.Outcome {
	outcome := cards.Outcome{FileName: ref.FileName, FileID: ref.FileID}
	log := d.log.With("file", ref.FileName)

	imageBytes, err := d.src.Fetch(ctx, ref)
	if err != nil {
		log.Error("image fetch failed", "error", err)
		outcome.Err = fmt.Errorf("fetch %s: %w", ref.FileName, err)
		return outcome
	}

	messages := []providers.Message{
		{Role: "system", Content: extractionSystemPrompt},
		{Role: "user", Content: userPrompt(ref.Meta()), Images: [][]byte{imageBytes}},
	}

	content, err := d.callModel(ctx, log, messages)
	if err != nil {
		outcome.Err = fmt.Errorf("extract %s: %w", ref.FileName, err)
		return outcome
	}

	rawRows, err := ParseRows(content)
	if err != nil {
		var schemaErr *SchemaError
		if !errors.As(err, &schemaErr) {
			outcome.Err = fmt.Errorf("extract %s: %w", ref.FileName, err)
			return outcome
		}

		// One repair retry: feed the invalid output back with the
		// validation issue. A second invalid answer ends the attempt.
		log.Warn("invalid model output, requesting repair", "error", schemaErr)
		rawRows, err = d.repair(ctx, messages, content, schemaErr)
		if err != nil {
			log.Error("repair failed", "error", err)
			outcome.Err = fmt.Errorf("extract %s: %w", ref.FileName, err)
			return outcome
		}
	}

	rows := make([]cards.Row, 0, len(rawRows))
	meta := ref.Meta()
	for _, raw := range rawRows {
		rows = append(rows, cards.Normalize(raw, meta))
	}

	log.Info("image extracted", "rows", len(rows))
	outcome.Rows = rows
	return outcome
}

// callModel performs one logical model call with bounded retries on
// transient failures, backing off exponentially between attempts.
func (d *Driver) callModel(ctx context.Context, log *slog.Logger, messages []providers.Message) (string, error) {
	req := &providers.ChatRequest{
		Messages:    messages,
		Model:       d.opts.Model,
		Temperature: d.opts.Temperature,
		MaxTokens:   d.opts.MaxTokens,
	}

	var content string
	err := retry.Do(
		func() error {
			result, err := d.client.Chat(ctx, req)
			if err != nil {
				return err
			}
			content = result.Content
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(d.opts.MaxAttempts),
		retry.Delay(d.opts.RetryDelay),
		retry.DelayType(retry.BackOffDelay),
		retry.RetryIf(providers.IsTransient),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			log.Warn("model call failed, retrying", "attempt", n+1, "error", err)
		}),
	)
	if err != nil {
		return "", err
	}
	return content, nil
}

// repair sends the invalid output back to the model once. The repair call is
// not retried: a transient failure here ends the attempt.
func (d *Driver) repair(ctx context.Context, messages []providers.Message, invalid string, issue *SchemaError) ([]map[string]any, error) {
	repairMessages := append(append([]providers.Message{}, messages...),
		providers.Message{Role: "assistant", Content: invalid},
		providers.Message{Role: "user", Content: repairPrompt(issue)},
	)

	result, err := d.client.Chat(ctx, &providers.ChatRequest{
		Messages:    repairMessages,
		Model:       d.opts.Model,
		Temperature: d.opts.Temperature,
		MaxTokens:   d.opts.MaxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("repair call: %w", err)
	}

	rows, err := ParseRows(result.Content)
	if err != nil {
		return nil, fmt.Errorf("invalid JSON after repair: %w", err)
	}
	return rows, nil
}
