package extract

import (
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// rowsSchema is the canonical contract for model output: an object with a
// single "rows" array whose entries carry every spreadsheet column. Values
// stay permissive (string, number, or null) so that normalization, not the
// schema, owns coercion.
const rowsSchema = `{
  "type": "object",
  "required": ["rows"],
  "additionalProperties": false,
  "properties": {
    "rows": {
      "type": "array",
      "items": {
        "type": "object",
        "required": [
          "timestamp", "fullName", "jobTitle", "company",
          "phone1", "phone2", "email1", "email2",
          "website", "address", "notes", "confidence",
          "rawText", "fileName", "fileId", "fileLink"
        ],
        "additionalProperties": false,
        "properties": {
          "timestamp":  {"type": ["string", "null"]},
          "fullName":   {"type": ["string", "null"]},
          "jobTitle":   {"type": ["string", "null"]},
          "company":    {"type": ["string", "null"]},
          "phone1":     {"type": ["string", "number", "null"]},
          "phone2":     {"type": ["string", "number", "null"]},
          "email1":     {"type": ["string", "null"]},
          "email2":     {"type": ["string", "null"]},
          "website":    {"type": ["string", "null"]},
          "address":    {"type": ["string", "null"]},
          "notes":      {"type": ["string", "null"]},
          "confidence": {"type": ["number", "string", "null"]},
          "rawText":    {"type": ["string", "null"]},
          "fileName":   {"type": ["string", "null"]},
          "fileId":     {"type": ["string", "null"]},
          "fileLink":   {"type": ["string", "null"]}
        }
      }
    }
  }
}`

var (
	schemaOnce     sync.Once
	compiledSchema *jsonschema.Schema
	schemaErr      error
)

// compiledRowsSchema compiles the canonical schema once per process.
func compiledRowsSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource("rows.json", strings.NewReader(rowsSchema)); err != nil {
			schemaErr = fmt.Errorf("failed to load rows schema: %w", err)
			return
		}
		compiledSchema, schemaErr = compiler.Compile("rows.json")
	})
	return compiledSchema, schemaErr
}

// SchemaError reports model output that parsed as JSON but violated the rows
// contract, or did not parse at all. It marks the validation failures that
// are eligible for the single repair retry.
type SchemaError struct {
	Message string
}

func (e *SchemaError) Error() string {
	return e.Message
}
