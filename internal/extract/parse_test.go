package extract

import (
	"errors"
	"strings"
	"testing"
)

const sampleRows = `{"rows":[{
	"timestamp": null, "fullName": "Jane Doe", "jobTitle": null, "company": null,
	"phone1": null, "phone2": null, "email1": null, "email2": null,
	"website": null, "address": null, "notes": null, "confidence": null,
	"rawText": null, "fileName": null, "fileId": null, "fileLink": null
}]}`

func TestParseRows(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    int
		wantErr bool
	}{
		{"plain JSON", sampleRows, 1, false},
		{"empty rows", `{"rows":[]}`, 0, false},
		{"fenced", "```json\n" + sampleRows + "\n```", 1, false},
		{"fenced no language", "```\n" + sampleRows + "\n```", 1, false},
		{"surrounding prose", "Here is the result:\n" + sampleRows + "\nHope that helps!", 1, false},
		{"empty output", "", 0, true},
		{"not JSON", "I could not read the card, sorry.", 0, true},
		{"missing rows key", `{"cards":[]}`, 0, true},
		{"rows not array", `{"rows":{"a":1}}`, 0, true},
		{"missing required field", `{"rows":[{"fullName":"Jane"}]}`, 0, true},
		{"extra top-level key", `{"rows":[],"extra":1}`, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows, err := ParseRows(tt.content)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				var schemaErr *SchemaError
				if !errors.As(err, &schemaErr) {
					t.Errorf("expected SchemaError, got %T: %v", err, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseRows failed: %v", err)
			}
			if len(rows) != tt.want {
				t.Errorf("expected %d rows, got %d", tt.want, len(rows))
			}
		})
	}
}

func TestParseRowsNumericPhone(t *testing.T) {
	// Models sometimes emit phone numbers as JSON numbers.
	content := strings.Replace(sampleRows, `"phone1": null`, `"phone1": 9876543210`, 1)
	rows, err := ParseRows(content)
	if err != nil {
		t.Fatalf("ParseRows failed: %v", err)
	}
	if rows[0]["phone1"] != float64(9876543210) {
		t.Errorf("unexpected phone1 %v", rows[0]["phone1"])
	}
}
