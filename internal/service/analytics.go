// Package service orchestrates dataset snapshots, column resolution, and
// aggregation into the metrics served by the API.
package service

import (
	"context"
	"errors"
	"log/slog"

	"sheetboard/internal/aggregate"
	"sheetboard/internal/dataset"
	"sheetboard/internal/domain"
	"sheetboard/internal/schema"
)

// Values accepted as "completed" and "verified" across header spellings.
var (
	completedValues = []string{"completed"}
	verifiedValues  = []string{"yes", "true", "verified"}
)

// AnalyticsService computes derived metrics over the cached datasets.
type AnalyticsService struct {
	store   *dataset.Store
	aliases schema.Aliases
	logger  *slog.Logger
}

// NewAnalyticsService creates an analytics service over the given store and
// alias table.
func NewAnalyticsService(store *dataset.Store, aliases schema.Aliases, logger *slog.Logger) *AnalyticsService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AnalyticsService{store: store, aliases: aliases, logger: logger}
}

// Summary returns headline user metrics: unique totals, completed and
// verified counts, and the completed/total conversion percentage.
// Conversion is nil when the status column is unresolved or the total is
// zero.
func (s *AnalyticsService) Summary(ctx context.Context) (*domain.Summary, error) {
	snap, err := s.store.Users(ctx)
	if err != nil {
		return nil, err
	}
	records := snap.Records
	cols := schema.Columns(records)

	idCol, _ := s.aliases.Resolve(schema.ConceptUserID, cols)
	regCol, regOK := s.aliases.Resolve(schema.ConceptRegistrationStatus, cols)
	verCol, _ := s.aliases.Resolve(schema.ConceptEmailVerified, cols)

	summary := &domain.Summary{
		Total:     aggregate.UniqueCount(records, idCol),
		Completed: aggregate.FilteredUniqueCount(records, idCol, regCol, completedValues),
		Verified:  aggregate.FilteredUniqueCount(records, idCol, verCol, verifiedValues),
	}
	if regOK {
		if ratio, err := aggregate.ConversionRatio(summary.Completed, summary.Total); err == nil {
			summary.Conversion = &ratio
		} else if !errors.Is(err, aggregate.ErrZeroTotal) {
			return nil, err
		}
	}
	return summary, nil
}

// Plans counts unique completed users per investment plan, ordered by count
// descending. The second return is false when the plan column is
// unresolved.
func (s *AnalyticsService) Plans(ctx context.Context) (*domain.Breakdown, bool, error) {
	return s.completedUserGroups(ctx, schema.ConceptPlan)
}

// Risks counts unique completed users per risk option, ordered by count
// descending. The second return is false when the risk column is
// unresolved.
func (s *AnalyticsService) Risks(ctx context.Context) (*domain.Breakdown, bool, error) {
	return s.completedUserGroups(ctx, schema.ConceptRisk)
}

// completedUserGroups groups completed users' unique IDs by a concept
// column. The completed filter only applies when the status column
// resolves; otherwise all records are grouped.
func (s *AnalyticsService) completedUserGroups(ctx context.Context, concept string) (*domain.Breakdown, bool, error) {
	snap, err := s.store.Users(ctx)
	if err != nil {
		return nil, false, err
	}
	records := snap.Records
	cols := schema.Columns(records)

	groupCol, ok := s.aliases.Resolve(concept, cols)
	if !ok {
		return nil, false, nil
	}
	if regCol, regOK := s.aliases.Resolve(schema.ConceptRegistrationStatus, cols); regOK {
		records = aggregate.Filter(records, regCol, completedValues)
	}
	idCol, _ := s.aliases.Resolve(schema.ConceptUserID, cols)

	groups, _ := aggregate.GroupUniqueCounts(records, groupCol, idCol)
	return aggregate.SortedByCountDesc(groups), true, nil
}

// UsersList returns the distinct non-empty usernames in first-occurrence
// order. An unresolved username column yields an empty list.
func (s *AnalyticsService) UsersList(ctx context.Context) ([]string, error) {
	snap, err := s.store.Users(ctx)
	if err != nil {
		return nil, err
	}
	records := snap.Records

	unameCol, ok := s.aliases.Resolve(schema.ConceptUsername, schema.Columns(records))
	if !ok {
		return []string{}, nil
	}
	seen := make(map[string]bool)
	names := make([]string, 0)
	for _, r := range records {
		v, _ := r.Get(unameCol)
		if v.IsNull() {
			continue
		}
		name := v.Text()
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		names = append(names, name)
	}
	return names, nil
}

// UserDetail returns the latest profile and the per-date activity timeline
// for one username. The latest profile comes from the matching record with
// the maximum timestamp; ties resolve to the last occurrence in fetch order.
func (s *AnalyticsService) UserDetail(ctx context.Context, username string) (*domain.UserDetail, error) {
	if username == "" {
		return nil, domain.ErrValidation("username must not be empty")
	}
	snap, err := s.store.Users(ctx)
	if err != nil {
		return nil, err
	}
	records := snap.Records
	cols := schema.Columns(records)

	unameCol, ok := s.aliases.Resolve(schema.ConceptUsername, cols)
	if !ok {
		return nil, domain.ErrNotFound("user %q not found", username)
	}
	matches := aggregate.Matches(records, unameCol, username)
	if len(matches) == 0 {
		return nil, domain.ErrNotFound("user %q not found", username)
	}

	tsCol, _ := s.aliases.Resolve(schema.ConceptTimestamp, cols)
	last, _ := aggregate.LatestRecord(matches, tsCol)

	return &domain.UserDetail{
		Profile: domain.Profile{
			Name:   s.field(last, cols, schema.ConceptFullName),
			Email:  s.field(last, cols, schema.ConceptEmail),
			Status: s.field(last, cols, schema.ConceptRegistrationStatus),
			Plan:   s.field(last, cols, schema.ConceptPlan),
			Risk:   s.field(last, cols, schema.ConceptRisk),
		},
		Timeline: aggregate.Timeline(matches, tsCol),
	}, nil
}

func (s *AnalyticsService) field(r domain.Record, cols []string, concept string) domain.Value {
	col, ok := s.aliases.Resolve(concept, cols)
	if !ok {
		return domain.Null()
	}
	v, _ := r.Get(col)
	return v
}

// UsersMaster returns the normalized users dataset.
func (s *AnalyticsService) UsersMaster(ctx context.Context) ([]domain.Record, error) {
	snap, err := s.store.Users(ctx)
	if err != nil {
		return nil, err
	}
	return snap.Records, nil
}

// Subscriptions returns the normalized subscriptions dataset.
func (s *AnalyticsService) Subscriptions(ctx context.Context) ([]domain.Record, error) {
	snap, err := s.store.Subscriptions(ctx)
	if err != nil {
		return nil, err
	}
	return snap.Records, nil
}

// AllData returns both datasets keyed by dataset name.
func (s *AnalyticsService) AllData(ctx context.Context) (map[string][]domain.Record, error) {
	users, err := s.UsersMaster(ctx)
	if err != nil {
		return nil, err
	}
	subs, err := s.Subscriptions(ctx)
	if err != nil {
		return nil, err
	}
	return map[string][]domain.Record{
		domain.DatasetUsers:         users,
		domain.DatasetSubscriptions: subs,
	}, nil
}

// SubscriptionBreakdown groups subscriptions by status, plan, and billing
// interval. Fields for unresolved columns are nil.
func (s *AnalyticsService) SubscriptionBreakdown(ctx context.Context) (*domain.SubscriptionBreakdown, error) {
	snap, err := s.store.Subscriptions(ctx)
	if err != nil {
		return nil, err
	}
	records := snap.Records
	cols := schema.Columns(records)

	out := &domain.SubscriptionBreakdown{}
	if col, ok := s.aliases.Resolve(schema.ConceptSubStatus, cols); ok {
		out.Status, _ = aggregate.GroupCounts(records, col)
	}
	if col, ok := s.aliases.Resolve(schema.ConceptSubPlan, cols); ok {
		out.Plan, _ = aggregate.GroupCounts(records, col)
	}
	if col, ok := s.aliases.Resolve(schema.ConceptBillingInterval, cols); ok {
		out.Interval, _ = aggregate.GroupCounts(records, col)
	}
	return out, nil
}
