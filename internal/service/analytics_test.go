package service

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sheetboard/internal/cache"
	"sheetboard/internal/dataset"
	"sheetboard/internal/domain"
	"sheetboard/internal/schema"
)

// fakeSource serves canned raw rows per dataset key.
type fakeSource struct {
	fetchFn func(ctx context.Context, key string) ([]domain.RawRow, error)
}

func (f *fakeSource) Fetch(ctx context.Context, key string) ([]domain.RawRow, error) {
	return f.fetchFn(ctx, key)
}

func newService(t *testing.T, rowsByKey map[string][]domain.RawRow) *AnalyticsService {
	t.Helper()
	src := &fakeSource{fetchFn: func(ctx context.Context, key string) ([]domain.RawRow, error) {
		rows, ok := rowsByKey[key]
		if !ok {
			return nil, domain.ErrValidation("unknown dataset %q", key)
		}
		return rows, nil
	}}
	aliases := schema.DefaultAliases()
	store := dataset.NewStore(cache.New(10*time.Minute), src, aliases)
	return NewAnalyticsService(store, aliases, slog.Default())
}

func userRow(id, username, name, status, verified, plan, risk, ts string) domain.RawRow {
	cols := []string{"Timestamp", "TelegramUserID", "TelegramUsername", "FullName", "Email", "RegistrationStatus", "EmailVerified", "InvestmentPlanSelected", "RiskOptionSelected"}
	return domain.RawRow{
		Columns: cols,
		Fields: map[string]any{
			"Timestamp":              ts,
			"TelegramUserID":         id,
			"TelegramUsername":       username,
			"FullName":               name,
			"Email":                  username + "@example.com",
			"RegistrationStatus":     status,
			"EmailVerified":          verified,
			"InvestmentPlanSelected": plan,
			"RiskOptionSelected":     risk,
		},
	}
}

func testData() map[string][]domain.RawRow {
	return map[string][]domain.RawRow{
		domain.DatasetUsers: {
			userRow("u1", "alice", "Alice A", "Completed", "Yes", "Gold", "High", "2024-03-01 10:00:00"),
			userRow("u2", "bob", "Bob B", "Pending", "No", "Silver", "Low", "2024-03-02 11:00:00"),
			// Re-registration for alice: same id, same day, later time.
			userRow("u1", "alice", "Alice Anders", "Completed", "Yes", "Gold", "Medium", "2024-03-01 18:30:00"),
		},
		domain.DatasetSubscriptions: {
			{
				Columns: []string{"Status", "Plan", "Interval"},
				Fields:  map[string]any{"Status": "active", "Plan": "Gold", "Interval": "monthly"},
			},
			{
				Columns: []string{"Status", "Plan", "Interval"},
				Fields:  map[string]any{"Status": "canceled", "Plan": "Gold", "Interval": "yearly"},
			},
		},
	}
}

func TestSummary(t *testing.T) {
	t.Run("unique_user_metrics", func(t *testing.T) {
		svc := newService(t, testData())

		got, err := svc.Summary(context.Background())
		require.NoError(t, err)

		assert.Equal(t, 2, got.Total, "duplicate user ids count once")
		assert.Equal(t, 1, got.Completed)
		assert.Equal(t, 1, got.Verified)
		require.NotNil(t, got.Conversion)
		assert.Equal(t, 50.0, *got.Conversion)
	})

	t.Run("conversion_undefined_for_empty_dataset_never_happens", func(t *testing.T) {
		// The cache refuses to serve an empty snapshot, so an empty upstream
		// with no error still yields an empty record set each call.
		svc := newService(t, map[string][]domain.RawRow{domain.DatasetUsers: {}})

		got, err := svc.Summary(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 0, got.Total)
		assert.Nil(t, got.Conversion, "zero total renders as null, not zero")
	})

	t.Run("missing_status_column", func(t *testing.T) {
		rows := []domain.RawRow{{
			Columns: []string{"TelegramUserID"},
			Fields:  map[string]any{"TelegramUserID": "u1"},
		}}
		svc := newService(t, map[string][]domain.RawRow{domain.DatasetUsers: rows})

		got, err := svc.Summary(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 1, got.Total)
		assert.Equal(t, 0, got.Completed)
		assert.Nil(t, got.Conversion)
	})

	t.Run("source_error_propagates", func(t *testing.T) {
		src := &fakeSource{fetchFn: func(ctx context.Context, key string) ([]domain.RawRow, error) {
			return nil, domain.ErrSourceUnavailable(errors.New("quota"), "sheet fetch failed")
		}}
		store := dataset.NewStore(cache.New(10*time.Minute), src, schema.DefaultAliases())
		svc := NewAnalyticsService(store, schema.DefaultAliases(), slog.Default())

		_, err := svc.Summary(context.Background())
		var unavailable *domain.SourceUnavailableError
		assert.ErrorAs(t, err, &unavailable)
	})
}

func TestPlans(t *testing.T) {
	svc := newService(t, testData())

	groups, ok, err := svc.Plans(context.Background())
	require.NoError(t, err)
	require.True(t, ok)

	// Only completed users are grouped, so bob's Silver plan is excluded.
	assert.Equal(t, []string{"Gold"}, groups.Labels())
	assert.Equal(t, 1, groups.Count("Gold"), "alice counts once despite two rows")
}

func TestRisks(t *testing.T) {
	t.Run("unique_users_sorted_desc", func(t *testing.T) {
		data := testData()
		data[domain.DatasetUsers] = append(data[domain.DatasetUsers],
			userRow("u3", "carol", "Carol C", "Completed", "Yes", "Gold", "Medium", "2024-03-03 09:00:00"),
			userRow("u4", "dave", "Dave D", "Completed", "No", "Gold", "Medium", "2024-03-03 10:00:00"),
		)
		svc := newService(t, data)

		groups, ok, err := svc.Risks(context.Background())
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, []string{"Medium", "High"}, groups.Labels())
		assert.Equal(t, 3, groups.Count("Medium"), "alice's latest row plus carol and dave")
		assert.Equal(t, 1, groups.Count("High"))
	})

	t.Run("unresolved_column", func(t *testing.T) {
		rows := []domain.RawRow{{
			Columns: []string{"TelegramUserID"},
			Fields:  map[string]any{"TelegramUserID": "u1"},
		}}
		svc := newService(t, map[string][]domain.RawRow{domain.DatasetUsers: rows})

		groups, ok, err := svc.Risks(context.Background())
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Nil(t, groups)
	})
}

func TestUsersList(t *testing.T) {
	svc := newService(t, testData())

	names, err := svc.UsersList(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"alice", "bob"}, names, "distinct, first-occurrence order")
}

func TestUserDetail(t *testing.T) {
	t.Run("latest_profile_and_timeline", func(t *testing.T) {
		svc := newService(t, testData())

		got, err := svc.UserDetail(context.Background(), "alice")
		require.NoError(t, err)

		// The 18:30 row is newer, so its profile wins.
		assert.Equal(t, "Alice Anders", got.Profile.Name.Text())
		assert.Equal(t, "Medium", got.Profile.Risk.Text())
		assert.Equal(t, "Completed", got.Profile.Status.Text())

		require.NotNil(t, got.Timeline)
		assert.Equal(t, []string{"2024-03-01"}, got.Timeline.Dates())
		assert.Equal(t, 2, got.Timeline.Count("2024-03-01"), "both rows land on the same date")
	})

	t.Run("unknown_user", func(t *testing.T) {
		svc := newService(t, testData())

		_, err := svc.UserDetail(context.Background(), "mallory")
		var notFound *domain.NotFoundError
		assert.ErrorAs(t, err, &notFound)
	})

	t.Run("empty_username", func(t *testing.T) {
		svc := newService(t, testData())

		_, err := svc.UserDetail(context.Background(), "")
		var invalid *domain.ValidationError
		assert.ErrorAs(t, err, &invalid)
	})
}

func TestSubscriptionBreakdown(t *testing.T) {
	t.Run("grouped_three_ways", func(t *testing.T) {
		svc := newService(t, testData())

		got, err := svc.SubscriptionBreakdown(context.Background())
		require.NoError(t, err)

		require.NotNil(t, got.Status)
		assert.Equal(t, 1, got.Status.Count("active"))
		assert.Equal(t, 1, got.Status.Count("canceled"))
		require.NotNil(t, got.Plan)
		assert.Equal(t, 2, got.Plan.Count("Gold"))
		require.NotNil(t, got.Interval)
		assert.Equal(t, []string{"monthly", "yearly"}, got.Interval.Labels())
	})

	t.Run("unresolved_columns_stay_nil", func(t *testing.T) {
		rows := []domain.RawRow{{
			Columns: []string{"Status"},
			Fields:  map[string]any{"Status": "active"},
		}}
		svc := newService(t, map[string][]domain.RawRow{domain.DatasetSubscriptions: rows})

		got, err := svc.SubscriptionBreakdown(context.Background())
		require.NoError(t, err)
		assert.NotNil(t, got.Status)
		assert.Nil(t, got.Interval)
	})
}

func TestAllData(t *testing.T) {
	svc := newService(t, testData())

	got, err := svc.AllData(context.Background())
	require.NoError(t, err)
	assert.Len(t, got[domain.DatasetUsers], 3)
	assert.Len(t, got[domain.DatasetSubscriptions], 2)
}
