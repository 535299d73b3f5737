package cards

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// maxRawTextLen caps the audit snippet carried in each row.
const maxRawTextLen = 300

var (
	nonDigitRe   = regexp.MustCompile(`[^\d]`)
	emailShapeRe = regexp.MustCompile(`^[^@]+@[^@]+\.[^@]+$`)
	whitespaceRe = regexp.MustCompile(`\s+`)
)

// Normalize converts one raw extracted mapping into a canonical Row,
// injecting file metadata from the image reference. It is pure and total:
// unparseable values degrade to null, they never produce an error.
func Normalize(raw map[string]any, meta FileMeta) Row {
	return Row{
		Timestamp:  defaultTimestamp(raw["timestamp"]),
		FullName:   toString(raw["fullName"]),
		JobTitle:   toString(raw["jobTitle"]),
		Company:    toString(raw["company"]),
		Phone1:     normalizePhone(raw["phone1"]),
		Phone2:     normalizePhone(raw["phone2"]),
		Email1:     normalizeEmail(raw["email1"]),
		Email2:     normalizeEmail(raw["email2"]),
		Website:    normalizeWebsite(raw["website"]),
		Address:    toString(raw["address"]),
		Notes:      toString(raw["notes"]),
		Confidence: clampConfidence(raw["confidence"]),
		RawText:    truncate(toString(raw["rawText"]), maxRawTextLen),
		FileName:   injectMeta(raw["fileName"], meta.FileName),
		FileID:     injectMeta(raw["fileId"], meta.FileID),
		FileLink:   injectMeta(raw["fileLink"], meta.FileLink),
	}
}

// toString trims the stringified value; empty or whitespace-only becomes nil.
func toString(val any) *string {
	if val == nil {
		return nil
	}
	s := strings.TrimSpace(stringify(val))
	if s == "" {
		return nil
	}
	return &s
}

// normalizePhone strips every non-digit character.
func normalizePhone(val any) *string {
	if val == nil {
		return nil
	}
	digits := nonDigitRe.ReplaceAllString(stringify(val), "")
	if digits == "" {
		return nil
	}
	return &digits
}

// normalizeEmail lowercases and checks the single-@, dot-after-@ shape.
func normalizeEmail(val any) *string {
	if val == nil {
		return nil
	}
	email := strings.ToLower(strings.TrimSpace(stringify(val)))
	if !emailShapeRe.MatchString(email) {
		return nil
	}
	return &email
}

// normalizeWebsite removes all internal whitespace.
func normalizeWebsite(val any) *string {
	if val == nil {
		return nil
	}
	site := whitespaceRe.ReplaceAllString(strings.TrimSpace(stringify(val)), "")
	if site == "" {
		return nil
	}
	return &site
}

// clampConfidence parses a number and clamps it into [0, 1].
func clampConfidence(val any) *float64 {
	var conf float64
	switch v := val.(type) {
	case nil:
		return nil
	case float64:
		conf = v
	case float32:
		conf = float64(v)
	case int:
		conf = float64(v)
	case int64:
		conf = float64(v)
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return nil
		}
		conf = f
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return nil
		}
		conf = f
	default:
		return nil
	}
	if conf < 0 {
		conf = 0
	}
	if conf > 1 {
		conf = 1
	}
	return &conf
}

// defaultTimestamp keeps a non-empty value, otherwise defaults to the
// current UTC instant in ISO-8601 with a Z suffix.
func defaultTimestamp(val any) string {
	if val != nil {
		if s := strings.TrimSpace(stringify(val)); s != "" {
			return s
		}
	}
	return time.Now().UTC().Format(time.RFC3339)
}

// injectMeta prefers the raw value when the extractor echoed one back,
// falling back to the metadata from the image reference.
func injectMeta(val any, meta string) *string {
	if s := toString(val); s != nil {
		return s
	}
	return toString(meta)
}

func truncate(s *string, n int) *string {
	if s == nil {
		return nil
	}
	runes := []rune(*s)
	if len(runes) <= n {
		return s
	}
	cut := string(runes[:n])
	return &cut
}

// stringify renders a raw JSON value as a string without quoting strings.
func stringify(val any) string {
	switch v := val.(type) {
	case string:
		return v
	case json.Number:
		return v.String()
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	default:
		return fmt.Sprintf("%v", v)
	}
}
