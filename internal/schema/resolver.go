// Package schema normalizes loosely-typed tabular rows into canonical
// records and resolves semantic column names across datasets whose headers
// vary in spelling.
package schema

import (
	"strings"

	"sheetboard/internal/domain"
)

// NormalizeName lowercases a column name and strips every character that is
// not an ASCII letter or digit. Two names are equivalent iff their
// normalized forms are identical.
func NormalizeName(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r >= 'A' && r <= 'Z':
			b.WriteRune(r + ('a' - 'A'))
		}
	}
	return b.String()
}

// Resolve returns the actual column name matching the first candidate, in
// candidate priority order, that has an equivalent among available. When two
// available columns normalize identically the first occurrence wins. The
// second return is false when no candidate matches; callers must treat that
// as "metric unavailable", not as an error.
func Resolve(available []string, candidates []string) (string, bool) {
	byNorm := make(map[string]string, len(available))
	for _, col := range available {
		norm := NormalizeName(col)
		if _, seen := byNorm[norm]; !seen {
			byNorm[norm] = col
		}
	}
	for _, cand := range candidates {
		if actual, ok := byNorm[NormalizeName(cand)]; ok {
			return actual, true
		}
	}
	return "", false
}

// Columns returns the union of column names observed across records, in
// first-occurrence order.
func Columns(records []domain.Record) []string {
	seen := make(map[string]bool)
	var out []string
	for _, r := range records {
		for _, col := range r.Columns() {
			if !seen[col] {
				seen[col] = true
				out = append(out, col)
			}
		}
	}
	return out
}
