// Package sink writes deduplicated contact rows to a spreadsheet
// destination (Google Sheets or a local XLSX workbook).
package sink

import (
	"context"
	"fmt"

	"github.com/cardexhq/cardex/internal/cards"
)

// Sink appends rows to a destination.
type Sink interface {
	// Name identifies the sink kind ("sheets", "xlsx").
	Name() string

	// Append writes the rows and returns how many were actually written.
	Append(ctx context.Context, rows []cards.Row) (int, error)
}

// SinkError reports a write failure against the destination.
type SinkError struct {
	Sink string
	Err  error
}

func (e *SinkError) Error() string {
	return fmt.Sprintf("%s sink: %v", e.Sink, e.Err)
}

func (e *SinkError) Unwrap() error {
	return e.Err
}

// rowValues flattens rows into value matrices in the canonical column
// order, with nil for absent fields.
func rowValues(rows []cards.Row) [][]any {
	values := make([][]any, 0, len(rows))
	for _, row := range rows {
		values = append(values, row.Values())
	}
	return values
}
