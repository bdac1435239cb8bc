package domain

import "time"

// Dataset keys selecting which worksheet a record source reads.
const (
	DatasetUsers         = "users_master"
	DatasetSubscriptions = "subscriptions"
)

// Snapshot is the immutable, timestamped materialization of a dataset.
// It is replaced wholesale on refresh and never mutated after publication;
// callers that need derived views must build new structures.
type Snapshot struct {
	Records   []Record
	FetchedAt time.Time
}

// Age returns how long ago the snapshot was fetched.
func (s *Snapshot) Age(now time.Time) time.Duration {
	return now.Sub(s.FetchedAt)
}

// Empty reports whether the snapshot carries no records.
func (s *Snapshot) Empty() bool {
	return s == nil || len(s.Records) == 0
}
