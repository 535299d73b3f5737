package sink

import (
	"context"
	"fmt"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/cardexhq/cardex/internal/cards"
	"github.com/cardexhq/cardex/internal/gauth"
)

// SheetsSink appends rows to a Google Sheets spreadsheet.
type SheetsSink struct {
	svc       *sheets.Service
	sheetID   string
	sheetName string
}

// NewSheetsSink builds a Sheets-backed sink. serviceAccount is either the
// service account JSON itself or a path to a file containing it.
func NewSheetsSink(ctx context.Context, serviceAccount, sheetID, sheetName string) (*SheetsSink, error) {
	creds, err := gauth.LoadServiceAccount(serviceAccount)
	if err != nil {
		return nil, err
	}

	svc, err := sheets.NewService(ctx,
		option.WithCredentialsJSON(creds),
		option.WithScopes(sheets.SpreadsheetsScope),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}

	if sheetName == "" {
		sheetName = "Sheet1"
	}

	return &SheetsSink{svc: svc, sheetID: sheetID, sheetName: sheetName}, nil
}

// Name identifies the sink kind.
func (s *SheetsSink) Name() string {
	return "sheets"
}

// Append writes the rows below the existing data in column order A:P.
// Values go in RAW so the spreadsheet does not reinterpret phone numbers.
func (s *SheetsSink) Append(ctx context.Context, rows []cards.Row) (int, error) {
	if len(rows) == 0 {
		return 0, nil
	}

	body := &sheets.ValueRange{Values: rowValues(rows)}
	appendRange := fmt.Sprintf("%s!A:P", s.sheetName)

	resp, err := s.svc.Spreadsheets.Values.
		Append(s.sheetID, appendRange, body).
		ValueInputOption("RAW").
		Context(ctx).
		Do()
	if err != nil {
		return 0, &SinkError{Sink: s.Name(), Err: err}
	}

	if resp.Updates != nil && resp.Updates.UpdatedRows > 0 {
		return int(resp.Updates.UpdatedRows), nil
	}
	return len(rows), nil
}

// HealthCheck verifies the spreadsheet is reachable with the configured
// credentials.
func (s *SheetsSink) HealthCheck(ctx context.Context) error {
	_, err := s.svc.Spreadsheets.Get(s.sheetID).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("sheets unreachable: %w", err)
	}
	return nil
}

var _ Sink = (*SheetsSink)(nil)
