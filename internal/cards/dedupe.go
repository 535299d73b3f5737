package cards

import "strings"

// DedupKey derives the identity string used for cross-batch deduplication.
// Email wins when present; otherwise a composite of phone, name, and company.
// Case folding is plain ASCII lowercase.
func DedupKey(r Row) string {
	if r.Email1 != nil {
		return "email:" + *r.Email1
	}
	var phone, name, company string
	if r.Phone1 != nil {
		phone = *r.Phone1
	}
	if r.FullName != nil {
		name = strings.ToLower(*r.FullName)
	}
	if r.Company != nil {
		company = strings.ToLower(*r.Company)
	}
	return "fallback:" + phone + "|" + name + "|" + company
}

// Dedupe returns the subsequence of rows whose derived key has not been
// seen earlier. First occurrence wins; order is preserved.
func Dedupe(rows []Row) []Row {
	seen := make(map[string]struct{}, len(rows))
	unique := make([]Row, 0, len(rows))
	for _, row := range rows {
		key := DedupKey(row)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		unique = append(unique, row)
	}
	return unique
}
