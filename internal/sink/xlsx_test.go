package sink

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/cardexhq/cardex/internal/cards"
)

func strPtr(s string) *string { return &s }

func sampleRow(name, email string) cards.Row {
	conf := 0.9
	return cards.Row{
		Timestamp:  "2026-01-01T00:00:00Z",
		FullName:   strPtr(name),
		Email1:     strPtr(email),
		Confidence: &conf,
	}
}

func TestXLSXSinkCreatesWorkbookWithHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "contacts.xlsx")
	sink := NewXLSXSink(path)

	n, err := sink.Append(context.Background(), []cards.Row{
		sampleRow("Jane Doe", "jane@acme.com"),
		sampleRow("Bob Roe", "bob@acme.com"),
	})
	if err != nil {
		t.Fatalf("Append failed: %v", err)
	}
	if n != 2 {
		t.Errorf("expected 2 rows appended, got %d", n)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows(xlsxSheetName)
	if err != nil {
		t.Fatalf("read sheet: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected header + 2 rows, got %d", len(rows))
	}
	if rows[0][0] != "timestamp" || rows[0][len(cards.Columns)-1] != "fileLink" {
		t.Errorf("unexpected header %v", rows[0])
	}
	if rows[1][1] != "Jane Doe" {
		t.Errorf("unexpected first row %v", rows[1])
	}
}

func TestXLSXSinkAppendsToExistingWorkbook(t *testing.T) {
	path := filepath.Join(t.TempDir(), "contacts.xlsx")
	sink := NewXLSXSink(path)

	if _, err := sink.Append(context.Background(), []cards.Row{sampleRow("Jane", "jane@x.com")}); err != nil {
		t.Fatalf("first append failed: %v", err)
	}
	if _, err := sink.Append(context.Background(), []cards.Row{sampleRow("Bob", "bob@x.com")}); err != nil {
		t.Fatalf("second append failed: %v", err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows(xlsxSheetName)
	if err != nil {
		t.Fatalf("read sheet: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected header + 2 rows, got %d", len(rows))
	}
	if rows[2][1] != "Bob" {
		t.Errorf("unexpected appended row %v", rows[2])
	}
}

func TestXLSXSinkEmptyRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "contacts.xlsx")
	sink := NewXLSXSink(path)

	n, err := sink.Append(context.Background(), nil)
	if err != nil {
		t.Fatalf("Append failed: %v", err)
	}
	if n != 0 {
		t.Errorf("expected 0 rows appended, got %d", n)
	}
}
