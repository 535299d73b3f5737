package sink

import (
	"context"
	"fmt"
	"os"

	"github.com/xuri/excelize/v2"

	"github.com/cardexhq/cardex/internal/cards"
)

const xlsxSheetName = "Contacts"

// XLSXSink appends rows to a local Excel workbook, creating it with a
// header row on first use.
type XLSXSink struct {
	path string
}

// NewXLSXSink builds a sink writing to the given .xlsx path.
func NewXLSXSink(path string) *XLSXSink {
	return &XLSXSink{path: path}
}

// Name identifies the sink kind.
func (s *XLSXSink) Name() string {
	return "xlsx"
}

// Append writes the rows below the existing data and saves the workbook.
func (s *XLSXSink) Append(ctx context.Context, rows []cards.Row) (int, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	f, startRow, err := s.open()
	if err != nil {
		return 0, &SinkError{Sink: s.Name(), Err: err}
	}
	defer f.Close()

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, startRow+i)
		if err != nil {
			return 0, &SinkError{Sink: s.Name(), Err: err}
		}
		values := row.Values()
		if err := f.SetSheetRow(xlsxSheetName, cell, &values); err != nil {
			return 0, &SinkError{Sink: s.Name(), Err: err}
		}
	}

	if err := f.SaveAs(s.path); err != nil {
		return 0, &SinkError{Sink: s.Name(), Err: err}
	}
	return len(rows), nil
}

// open returns the workbook and the 1-based row index to write at.
func (s *XLSXSink) open() (*excelize.File, int, error) {
	if _, err := os.Stat(s.path); err == nil {
		f, err := excelize.OpenFile(s.path)
		if err != nil {
			return nil, 0, fmt.Errorf("open workbook: %w", err)
		}
		existing, err := f.GetRows(xlsxSheetName)
		if err != nil {
			f.Close()
			return nil, 0, fmt.Errorf("read sheet %s: %w", xlsxSheetName, err)
		}
		return f, len(existing) + 1, nil
	}

	f := excelize.NewFile()
	f.SetSheetName("Sheet1", xlsxSheetName)

	header := make([]any, len(cards.Columns))
	for i, col := range cards.Columns {
		header[i] = col
	}
	if err := f.SetSheetRow(xlsxSheetName, "A1", &header); err != nil {
		f.Close()
		return nil, 0, fmt.Errorf("write header: %w", err)
	}
	return f, 2, nil
}

var _ Sink = (*XLSXSink)(nil)
