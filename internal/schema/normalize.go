package schema

import (
	"fmt"
	"strings"
	"time"

	"sheetboard/internal/domain"
)

// timestampLayouts are tried in order when parsing a timestamp cell. The
// canonical wire layout comes first so re-normalizing an already-normalized
// record is a no-op.
var timestampLayouts = []string{
	domain.WireTimeLayout,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
	"01/02/2006 15:04:05",
	"1/2/2006 15:04",
	"1/2/2006",
}

// ParseTimestamp parses s against the accepted layouts.
func ParseTimestamp(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Normalize converts raw rows into canonical records. Columns matching the
// alias table's timestamp candidates have their cells parsed to structured
// instants; a parse failure is per-record and non-fatal, leaving the
// original scalar in place. Empty-string and absent cells become the
// explicit null marker. A nil alias table uses the defaults.
func Normalize(rows []domain.RawRow, aliases Aliases) []domain.Record {
	if aliases == nil {
		aliases = DefaultAliases()
	}
	tsNames := make(map[string]bool, len(aliases[ConceptTimestamp]))
	for _, cand := range aliases[ConceptTimestamp] {
		tsNames[NormalizeName(cand)] = true
	}

	out := make([]domain.Record, 0, len(rows))
	for _, row := range rows {
		rec := domain.NewRecord()
		for _, col := range row.Columns {
			rec.Set(col, normalizeCell(tsNames[NormalizeName(col)], row.Fields[col]))
		}
		out = append(out, rec)
	}
	return out
}

func normalizeCell(isTimestamp bool, raw any) domain.Value {
	switch v := raw.(type) {
	case nil:
		return domain.Null()
	case string:
		if strings.TrimSpace(v) == "" {
			return domain.Null()
		}
		if isTimestamp {
			if t, ok := ParseTimestamp(v); ok {
				return domain.Time(t)
			}
		}
		return domain.String(v)
	case float64:
		return domain.Number(v)
	case int:
		return domain.Number(float64(v))
	case int64:
		return domain.Number(float64(v))
	case bool:
		return domain.Bool(v)
	case time.Time:
		return domain.Time(v)
	default:
		return domain.String(fmt.Sprint(v))
	}
}
