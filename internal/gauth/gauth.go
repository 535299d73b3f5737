// Package gauth loads Google service account credentials shared by the
// Drive source and the Sheets sink.
package gauth

import (
	"fmt"
	"os"
	"strings"
)

// LoadServiceAccount accepts either the service account JSON itself or a
// path to a file containing it.
func LoadServiceAccount(raw string) ([]byte, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, fmt.Errorf("service account credentials not configured")
	}
	if strings.HasPrefix(raw, "{") {
		return []byte(raw), nil
	}
	data, err := os.ReadFile(raw)
	if err != nil {
		return nil, fmt.Errorf("read credentials %s: %w", raw, err)
	}
	return data, nil
}
