// Package aggregate computes derived metrics over normalized datasets. All
// functions are pure: they read the records they are given and carry no
// state across calls.
package aggregate

import (
	"errors"
	"math"
	"sort"
	"strings"

	"sheetboard/internal/domain"
)

// UnknownLabel buckets null, absent, and blank category values.
const UnknownLabel = "Unknown"

// ErrZeroTotal is returned by ConversionRatio when the denominator is zero.
// Callers map it to an explicit "undefined" result rather than letting a
// division fault propagate.
var ErrZeroTotal = errors.New("conversion ratio undefined for zero total")

// UniqueCount counts distinct serialized values of idColumn. With an
// unresolved (empty) idColumn every record counts as distinct.
func UniqueCount(records []domain.Record, idColumn string) int {
	if idColumn == "" {
		return len(records)
	}
	seen := make(map[string]struct{}, len(records))
	for _, r := range records {
		v, _ := r.Get(idColumn)
		seen[v.Text()] = struct{}{}
	}
	return len(seen)
}

// FilteredUniqueCount counts distinct idColumn values among records whose
// filterColumn value case-insensitively matches one of accepted. An
// unresolved filterColumn yields 0; an unresolved idColumn counts every
// matching record.
func FilteredUniqueCount(records []domain.Record, idColumn, filterColumn string, accepted []string) int {
	if filterColumn == "" {
		return 0
	}
	return UniqueCount(Filter(records, filterColumn, accepted), idColumn)
}

// Filter selects records whose column value case-insensitively matches one
// of accepted, preserving input order. An unresolved (empty) column selects
// nothing.
func Filter(records []domain.Record, column string, accepted []string) []domain.Record {
	if column == "" {
		return nil
	}
	lookup := make(map[string]struct{}, len(accepted))
	for _, a := range accepted {
		lookup[strings.ToLower(a)] = struct{}{}
	}
	var out []domain.Record
	for _, r := range records {
		v, _ := r.Get(column)
		if _, ok := lookup[strings.ToLower(v.Text())]; ok {
			out = append(out, r)
		}
	}
	return out
}

// GroupCounts maps each distinct stringified value of column to the number
// of records holding it. Null, absent, and blank-after-trim values collapse
// into UnknownLabel. Iteration order is first-occurrence order; the engine
// never re-orders ties (presentation may sort separately). The second return
// is false when column is unresolved.
func GroupCounts(records []domain.Record, column string) (*domain.Breakdown, bool) {
	if column == "" {
		return nil, false
	}
	b := domain.NewBreakdown()
	for _, r := range records {
		b.Add(groupLabel(r, column), 1)
	}
	return b, true
}

// GroupUniqueCounts is GroupCounts counting distinct idColumn values per
// label instead of records. An unresolved idColumn degrades to record
// counting.
func GroupUniqueCounts(records []domain.Record, column, idColumn string) (*domain.Breakdown, bool) {
	if column == "" {
		return nil, false
	}
	if idColumn == "" {
		return GroupCounts(records, column)
	}
	order := make([]string, 0)
	sets := make(map[string]map[string]struct{})
	for _, r := range records {
		label := groupLabel(r, column)
		set, ok := sets[label]
		if !ok {
			set = make(map[string]struct{})
			sets[label] = set
			order = append(order, label)
		}
		id, _ := r.Get(idColumn)
		set[id.Text()] = struct{}{}
	}
	b := domain.NewBreakdown()
	for _, label := range order {
		b.Add(label, len(sets[label]))
	}
	return b, true
}

func groupLabel(r domain.Record, column string) string {
	v, _ := r.Get(column)
	if v.IsNull() {
		return UnknownLabel
	}
	label := strings.TrimSpace(v.Text())
	if label == "" {
		return UnknownLabel
	}
	return label
}

// SortedByCountDesc returns a copy of b with labels ordered by descending
// count. The sort is stable, so ties keep their original iteration order.
func SortedByCountDesc(b *domain.Breakdown) *domain.Breakdown {
	labels := append([]string(nil), b.Labels()...)
	sort.SliceStable(labels, func(i, j int) bool {
		return b.Count(labels[i]) > b.Count(labels[j])
	})
	out := domain.NewBreakdown()
	for _, label := range labels {
		out.Add(label, b.Count(label))
	}
	return out
}

// ConversionRatio returns completed/total as a percentage rounded to two
// decimal places. A zero total returns ErrZeroTotal.
func ConversionRatio(completed, total int) (float64, error) {
	if total == 0 {
		return 0, ErrZeroTotal
	}
	return math.Round(float64(completed)/float64(total)*100*100) / 100, nil
}

// Matches selects every record whose idColumn serializes to idValue,
// preserving input order.
func Matches(records []domain.Record, idColumn, idValue string) []domain.Record {
	if idColumn == "" {
		return nil
	}
	var out []domain.Record
	for _, r := range records {
		if v, _ := r.Get(idColumn); v.Text() == idValue {
			out = append(out, r)
		}
	}
	return out
}

// Timeline buckets the matching records by the UTC calendar date of their
// parsed tsColumn value, ascending by date. Records whose timestamp did not
// parse are skipped.
func Timeline(matches []domain.Record, tsColumn string) *domain.Timeline {
	counts := make(map[string]int)
	var dates []string
	for _, r := range matches {
		v, _ := r.Get(tsColumn)
		t, ok := v.Time()
		if !ok {
			continue
		}
		date := t.UTC().Format("2006-01-02")
		if _, seen := counts[date]; !seen {
			dates = append(dates, date)
		}
		counts[date]++
	}
	sort.Strings(dates)
	tl := domain.NewTimeline()
	for _, d := range dates {
		tl.Add(d, counts[d])
	}
	return tl
}

// LatestRecord returns the match with the maximum tsColumn value; equal
// timestamps resolve to the last occurrence in input order. Matches without
// a parsed timestamp only win when no match has one, in which case the last
// match is returned. The second return is false for an empty match set.
func LatestRecord(matches []domain.Record, tsColumn string) (domain.Record, bool) {
	if len(matches) == 0 {
		return domain.Record{}, false
	}
	best := -1
	var bestTime int64
	for i, r := range matches {
		v, _ := r.Get(tsColumn)
		t, ok := v.Time()
		if !ok {
			continue
		}
		if best == -1 || t.UnixNano() >= bestTime {
			best = i
			bestTime = t.UnixNano()
		}
	}
	if best == -1 {
		return matches[len(matches)-1], true
	}
	return matches[best], true
}
