package extract

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ParseRows parses model output into raw row maps, recovering from markdown
// code fences and surrounding commentary, and validates the result against
// the rows contract. Failures come back as *SchemaError.
func ParseRows(content string) ([]map[string]any, error) {
	parsed, err := parseJSONCandidates(content)
	if err != nil {
		return nil, err
	}

	schema, err := compiledRowsSchema()
	if err != nil {
		return nil, err
	}
	if err := schema.Validate(parsed); err != nil {
		return nil, &SchemaError{Message: fmt.Sprintf("output does not match rows contract: %v", err)}
	}

	// Validation guarantees the shape.
	root := parsed.(map[string]any)
	rawRows := root["rows"].([]any)

	rows := make([]map[string]any, 0, len(rawRows))
	for _, r := range rawRows {
		rows = append(rows, r.(map[string]any))
	}
	return rows, nil
}

// parseJSONCandidates tries the raw content, then a fence-stripped and a
// brace-extracted view of it, returning the first candidate that parses.
func parseJSONCandidates(content string) (any, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, &SchemaError{Message: "empty model output"}
	}

	candidates := []string{content}
	if stripped := stripCodeFences(content); stripped != "" && stripped != content {
		candidates = append(candidates, stripped)
	}
	if extracted := extractJSONCandidate(content); extracted != "" && extracted != content {
		candidates = append(candidates, extracted)
	}

	seen := make(map[string]struct{}, len(candidates))
	var lastErr error
	for _, candidate := range candidates {
		candidate = strings.TrimSpace(candidate)
		if candidate == "" {
			continue
		}
		if _, ok := seen[candidate]; ok {
			continue
		}
		seen[candidate] = struct{}{}

		var parsed any
		if err := json.Unmarshal([]byte(candidate), &parsed); err == nil {
			return parsed, nil
		} else {
			lastErr = err
		}
	}

	return nil, &SchemaError{Message: fmt.Sprintf("failed to parse JSON: %v", lastErr)}
}

func stripCodeFences(content string) string {
	trimmed := strings.TrimSpace(content)
	if !strings.HasPrefix(trimmed, "```") {
		return ""
	}

	lines := strings.Split(trimmed, "\n")
	if len(lines) < 2 {
		return ""
	}

	// Drop first fence line.
	lines = lines[1:]
	// Drop trailing fence if present.
	if len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "```" {
		lines = lines[:len(lines)-1]
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

func extractJSONCandidate(content string) string {
	trimmed := strings.TrimSpace(content)
	start := strings.Index(trimmed, "{")
	if start < 0 {
		return ""
	}
	end := strings.LastIndex(trimmed, "}")
	if end < start {
		return ""
	}
	return strings.TrimSpace(trimmed[start : end+1])
}
