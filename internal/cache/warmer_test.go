package cache

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sheetboard/internal/domain"
)

func TestWarmerWarmInvokesEveryLoader(t *testing.T) {
	clock := clockwork.NewFakeClock()
	c := New(10*time.Minute, WithClock(clock))

	var usersCalls, subsCalls int32
	w := NewWarmer(c, map[string]Loader{
		"users":         countingLoader(&usersCalls, rows(1), nil),
		"subscriptions": countingLoader(&subsCalls, rows(2), nil),
	}, time.Second, nil)

	w.warm()

	assert.Equal(t, int32(1), atomic.LoadInt32(&usersCalls))
	assert.Equal(t, int32(1), atomic.LoadInt32(&subsCalls))

	// The warmed entries are fresh, so the request path hits the cache.
	snap, err := c.Get(context.Background(), "users", countingLoader(&usersCalls, nil, nil))
	require.NoError(t, err)
	assert.Len(t, snap.Records, 1)
	assert.Equal(t, int32(1), atomic.LoadInt32(&usersCalls), "warm entry served without a refetch")
}

func TestWarmerFailureOnlyLogs(t *testing.T) {
	clock := clockwork.NewFakeClock()
	c := New(10*time.Minute, WithClock(clock))

	var goodCalls int32
	w := NewWarmer(c, map[string]Loader{
		"users": func(ctx context.Context) ([]domain.Record, error) {
			return nil, errors.New("upstream down")
		},
		"subscriptions": countingLoader(&goodCalls, rows(1), nil),
	}, time.Second, nil)

	// A failing dataset must not stop the others from warming.
	w.warm()

	assert.Equal(t, int32(1), atomic.LoadInt32(&goodCalls))
	assert.Equal(t, int64(1), c.Stats().RefreshFails)
}

func TestWarmerStartRejectsBadSchedule(t *testing.T) {
	w := NewWarmer(New(time.Minute), nil, time.Second, nil)
	assert.Error(t, w.Start("not a cron spec"))
}

func TestWarmerStartAndStop(t *testing.T) {
	w := NewWarmer(New(time.Minute), map[string]Loader{}, time.Second, nil)
	require.NoError(t, w.Start("@every 1h"))
	w.Stop()
}
