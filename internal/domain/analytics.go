package domain

import (
	"bytes"
	"encoding/json"
)

// Summary holds headline metrics over the users dataset. Conversion is nil
// when it is undefined (zero total) or when the status column could not be
// resolved; it renders as JSON null rather than a misleading zero.
type Summary struct {
	Total      int      `json:"total"`
	Completed  int      `json:"completed"`
	Verified   int      `json:"verified"`
	Conversion *float64 `json:"conversion"`
}

// Profile is the latest known view of a single user.
type Profile struct {
	Name   Value `json:"name"`
	Email  Value `json:"email"`
	Status Value `json:"status"`
	Plan   Value `json:"plan"`
	Risk   Value `json:"risk"`
}

// UserDetail pairs a user's latest profile with their activity timeline.
type UserDetail struct {
	Profile  Profile   `json:"profile"`
	Timeline *Timeline `json:"timeline"`
}

// SubscriptionBreakdown groups the subscriptions dataset three ways. A nil
// field means the corresponding column could not be resolved and renders as
// JSON null — an explicit placeholder, never a misleading zero.
type SubscriptionBreakdown struct {
	Status   *Breakdown `json:"status"`
	Plan     *Breakdown `json:"plan"`
	Interval *Breakdown `json:"interval"`
}

// Breakdown is an ordered mapping from category label to count. Iteration
// order is insertion order; it serializes as a JSON object preserving that
// order.
type Breakdown struct {
	labels []string
	counts map[string]int
}

// NewBreakdown returns an empty breakdown.
func NewBreakdown() *Breakdown {
	return &Breakdown{counts: make(map[string]int)}
}

// Add increases the count for label by n, appending the label on first sight.
func (b *Breakdown) Add(label string, n int) {
	if _, ok := b.counts[label]; !ok {
		b.labels = append(b.labels, label)
	}
	b.counts[label] += n
}

// Labels returns the labels in iteration order.
func (b *Breakdown) Labels() []string { return b.labels }

// Count returns the count for label.
func (b *Breakdown) Count(label string) int { return b.counts[label] }

// Len returns the number of distinct labels.
func (b *Breakdown) Len() int { return len(b.labels) }

// MarshalJSON emits an object with keys in iteration order.
func (b *Breakdown) MarshalJSON() ([]byte, error) {
	return marshalOrdered(b.labels, func(label string) any { return b.counts[label] })
}

// Timeline is an ordered mapping from calendar date (YYYY-MM-DD) to count,
// ascending by date.
type Timeline struct {
	dates  []string
	counts map[string]int
}

// NewTimeline returns an empty timeline.
func NewTimeline() *Timeline {
	return &Timeline{counts: make(map[string]int)}
}

// Add increases the count for date by n. Dates may be added in any order;
// callers sort via Sorted before serving.
func (t *Timeline) Add(date string, n int) {
	if _, ok := t.counts[date]; !ok {
		t.dates = append(t.dates, date)
	}
	t.counts[date] += n
}

// Dates returns the dates in iteration order.
func (t *Timeline) Dates() []string { return t.dates }

// Count returns the count for date.
func (t *Timeline) Count(date string) int { return t.counts[date] }

// Len returns the number of distinct dates.
func (t *Timeline) Len() int { return len(t.dates) }

// MarshalJSON emits an object with keys in iteration order.
func (t *Timeline) MarshalJSON() ([]byte, error) {
	return marshalOrdered(t.dates, func(date string) any { return t.counts[date] })
}

func marshalOrdered(keys []string, value func(string) any) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		vb, err := json.Marshal(value(k))
		if err != nil {
			return nil, err
		}
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
