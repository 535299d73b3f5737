package batch

import (
	"github.com/cardexhq/cardex/internal/cards"
)

// Aggregate folds per-image outcomes into the run report. FilesProcessed
// counts every attempted image, failed ones included. RowsExtracted counts
// rows before deduplication; Rows carries the deduplicated set that went to
// the sink. rowsAppended is what the sink actually wrote (zero on a dry
// run); a sink failure surfaces as an error entry with no file name.
func Aggregate(filesFound int, outcomes []cards.Outcome, deduped []cards.Row, rowsAppended int, appendErr error) cards.RunReport {
	report := cards.RunReport{
		Status:         cards.StatusOK,
		FilesFound:     filesFound,
		FilesProcessed: len(outcomes),
		RowsAppended:   rowsAppended,
		Rows:           deduped,
		Errors:         []cards.FileError{},
	}

	for _, o := range outcomes {
		if o.Failed() {
			report.Errors = append(report.Errors, cards.FileError{
				FileName: o.FileName,
				FileID:   o.FileID,
				Error:    o.Err.Error(),
			})
			continue
		}
		report.RowsExtracted += len(o.Rows)
	}

	if appendErr != nil {
		report.Errors = append(report.Errors, cards.FileError{Error: "sink: " + appendErr.Error()})
	}

	if len(report.Errors) > 0 {
		report.Status = cards.StatusPartial
	}

	return report
}
