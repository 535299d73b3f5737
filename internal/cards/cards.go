// Package cards holds the domain types for business-card extraction:
// image references, normalized rows, per-image outcomes, and the run report.
package cards

// ImageRef identifies one image to process. It is created by a source
// enumerator before the pipeline starts and is immutable for the run.
type ImageRef struct {
	// FileName is the display name of the image (e.g. "IMG_0231.jpg").
	FileName string `json:"fileName"`
	// FileID is the source identifier, if the source has one (Drive file ID).
	FileID string `json:"fileId,omitempty"`
	// FileLink is a browsable link to the image, if the source has one.
	FileLink string `json:"fileLink,omitempty"`
	// Handle is the opaque token the source uses to fetch bytes: a
	// filesystem path for local sources, a Drive file ID for Drive.
	Handle string `json:"-"`
}

// FileMeta is the per-image metadata injected into every normalized row.
type FileMeta struct {
	FileName string
	FileID   string
	FileLink string
}

// Meta returns the metadata to inject into rows extracted from this image.
func (r ImageRef) Meta() FileMeta {
	return FileMeta{FileName: r.FileName, FileID: r.FileID, FileLink: r.FileLink}
}

// Row is a single normalized business-card record. All 16 keys are always
// serialized; nullable fields are pointers and carry no omitempty so that
// absent values appear as explicit JSON nulls.
type Row struct {
	Timestamp  string   `json:"timestamp"`
	FullName   *string  `json:"fullName"`
	JobTitle   *string  `json:"jobTitle"`
	Company    *string  `json:"company"`
	Phone1     *string  `json:"phone1"`
	Phone2     *string  `json:"phone2"`
	Email1     *string  `json:"email1"`
	Email2     *string  `json:"email2"`
	Website    *string  `json:"website"`
	Address    *string  `json:"address"`
	Notes      *string  `json:"notes"`
	Confidence *float64 `json:"confidence"`
	RawText    *string  `json:"rawText"`
	FileName   *string  `json:"fileName"`
	FileID     *string  `json:"fileId"`
	FileLink   *string  `json:"fileLink"`
}

// Columns is the fixed 16-column order every sink must preserve.
var Columns = []string{
	"timestamp", "fullName", "jobTitle", "company",
	"phone1", "phone2", "email1", "email2",
	"website", "address", "notes", "confidence",
	"rawText", "fileName", "fileId", "fileLink",
}

// Values returns the row's cell values in Columns order. Null fields are nil.
func (r Row) Values() []any {
	deref := func(s *string) any {
		if s == nil {
			return nil
		}
		return *s
	}
	vals := []any{
		r.Timestamp,
		deref(r.FullName), deref(r.JobTitle), deref(r.Company),
		deref(r.Phone1), deref(r.Phone2), deref(r.Email1), deref(r.Email2),
		deref(r.Website), deref(r.Address), deref(r.Notes),
	}
	if r.Confidence != nil {
		vals = append(vals, *r.Confidence)
	} else {
		vals = append(vals, nil)
	}
	vals = append(vals, deref(r.RawText), deref(r.FileName), deref(r.FileID), deref(r.FileLink))
	return vals
}

// Outcome is the per-image result: either the extracted rows (possibly
// empty) or a classified error. Exactly one Outcome exists per ImageRef.
type Outcome struct {
	FileName string
	FileID   string
	Rows     []Row
	Err      error
}

// Failed reports whether the image's extraction failed.
func (o Outcome) Failed() bool { return o.Err != nil }

// FileError is one entry in the run report's error list.
type FileError struct {
	FileName string `json:"fileName"`
	FileID   string `json:"fileId,omitempty"`
	Error    string `json:"error"`
}

// RunReport is the aggregate result of one batch run.
type RunReport struct {
	Status         string      `json:"status"`
	FilesFound     int         `json:"filesFound"`
	FilesProcessed int         `json:"filesProcessed"`
	RowsExtracted  int         `json:"rowsExtracted"`
	RowsAppended   int         `json:"rowsAppended"`
	Errors         []FileError `json:"errors"`
	Rows           []Row       `json:"rows"`
}

// Report status values.
const (
	StatusOK      = "ok"
	StatusPartial = "partial"
)
