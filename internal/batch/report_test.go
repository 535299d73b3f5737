package batch

import (
	"errors"
	"testing"

	"github.com/cardexhq/cardex/internal/cards"
)

func strPtr(s string) *string { return &s }

func TestAggregate(t *testing.T) {
	outcomes := []cards.Outcome{
		{FileName: "a.jpg", Rows: []cards.Row{{FullName: strPtr("A")}, {FullName: strPtr("B")}}},
		{FileName: "b.jpg", FileID: "id-b", Err: errors.New("model rejected image")},
		{FileName: "c.jpg", Rows: []cards.Row{{FullName: strPtr("C")}}},
	}
	deduped := []cards.Row{{FullName: strPtr("A")}, {FullName: strPtr("C")}}

	report := Aggregate(5, outcomes, deduped, len(deduped), nil)

	if report.Status != cards.StatusPartial {
		t.Errorf("expected partial status, got %s", report.Status)
	}
	if report.FilesFound != 5 {
		t.Errorf("FilesFound = %d, want 5", report.FilesFound)
	}
	if report.FilesProcessed != 3 {
		t.Errorf("FilesProcessed = %d, want 3", report.FilesProcessed)
	}
	if report.RowsExtracted != 3 {
		t.Errorf("RowsExtracted = %d, want 3", report.RowsExtracted)
	}
	if report.RowsAppended != 2 {
		t.Errorf("RowsAppended = %d, want 2", report.RowsAppended)
	}
	if len(report.Errors) != 1 || report.Errors[0].FileName != "b.jpg" || report.Errors[0].FileID != "id-b" {
		t.Errorf("unexpected errors %+v", report.Errors)
	}
}

func TestAggregateAllOK(t *testing.T) {
	outcomes := []cards.Outcome{
		{FileName: "a.jpg", Rows: []cards.Row{{FullName: strPtr("A")}}},
	}
	deduped := []cards.Row{{FullName: strPtr("A")}}

	report := Aggregate(1, outcomes, deduped, 1, nil)
	if report.Status != cards.StatusOK {
		t.Errorf("expected ok status, got %s", report.Status)
	}
	if len(report.Errors) != 0 {
		t.Errorf("expected no errors, got %+v", report.Errors)
	}
}

func TestAggregateSinkFailure(t *testing.T) {
	outcomes := []cards.Outcome{
		{FileName: "a.jpg", Rows: []cards.Row{{FullName: strPtr("A")}}},
	}
	deduped := []cards.Row{{FullName: strPtr("A")}}

	report := Aggregate(1, outcomes, deduped, 0, errors.New("append denied"))
	if report.Status != cards.StatusPartial {
		t.Errorf("expected partial status, got %s", report.Status)
	}
	if report.RowsAppended != 0 {
		t.Errorf("RowsAppended = %d, want 0", report.RowsAppended)
	}
	if len(report.Errors) != 1 || report.Errors[0].FileName != "" {
		t.Errorf("unexpected errors %+v", report.Errors)
	}
}

func TestAggregateEmptyBatch(t *testing.T) {
	report := Aggregate(0, nil, nil, 0, nil)
	if report.Status != cards.StatusOK {
		t.Errorf("expected ok status, got %s", report.Status)
	}
	if report.FilesProcessed != 0 || report.RowsExtracted != 0 {
		t.Errorf("unexpected counts %+v", report)
	}
}
