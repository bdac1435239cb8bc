// Package cache holds the per-dataset snapshot cache. A snapshot is served
// from memory while its age is within the TTL; expiry, emptiness, or a cold
// entry trigger a refresh through the caller-supplied loader. At most one
// refresh runs per dataset key at a time; concurrent readers share its
// result. When a refresh fails and a previous snapshot exists, the stale
// snapshot is served instead of failing the request.
package cache

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/singleflight"

	"sheetboard/internal/domain"
)

// DefaultTTL is used when no TTL is configured.
const DefaultTTL = 600 * time.Second

// Loader produces a fresh set of normalized records for a dataset.
type Loader func(ctx context.Context) ([]domain.Record, error)

// Stats are monotonic counters exposed for operational visibility.
type Stats struct {
	Hits         int64 `json:"hits"`
	Misses       int64 `json:"misses"`
	StaleServes  int64 `json:"stale_serves"`
	RefreshFails int64 `json:"refresh_fails"`
}

type entry struct {
	mu   sync.RWMutex
	snap *domain.Snapshot // nil before first successful load
}

// Cache owns one entry per dataset key. Entries live for the process
// lifetime; TTL expiry is the only invalidation path.
type Cache struct {
	ttl    time.Duration
	clock  clockwork.Clock
	logger *slog.Logger

	mu      sync.Mutex
	entries map[string]*entry

	group singleflight.Group

	statsMu sync.Mutex
	stats   Stats
}

// Option customizes a Cache.
type Option func(*Cache)

// WithClock injects a clock, used by tests to control TTL expiry.
func WithClock(clock clockwork.Clock) Option {
	return func(c *Cache) { c.clock = clock }
}

// WithLogger sets the cache logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Cache) { c.logger = logger }
}

// New creates a cache with the given TTL. A zero TTL means "always refresh";
// a negative TTL falls back to DefaultTTL.
func New(ttl time.Duration, opts ...Option) *Cache {
	if ttl < 0 {
		ttl = DefaultTTL
	}
	c := &Cache{
		ttl:     ttl,
		clock:   clockwork.NewRealClock(),
		logger:  slog.Default(),
		entries: make(map[string]*entry),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Cache) entryFor(key string) *entry {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok {
		e = &entry{}
		c.entries[key] = e
	}
	return e
}

// Get returns the cached snapshot for key, refreshing through loader when
// the entry is cold, empty, or older than the TTL. Refreshes replace the
// snapshot wholesale; readers always observe either the previous snapshot or
// the new one, never a partial state. Snapshots returned to callers must not
// be mutated.
func (c *Cache) Get(ctx context.Context, key string, loader Loader) (*domain.Snapshot, error) {
	e := c.entryFor(key)

	e.mu.RLock()
	snap := e.snap
	e.mu.RUnlock()

	if c.fresh(snap) {
		c.count(func(s *Stats) { s.Hits++ })
		return snap, nil
	}
	c.count(func(s *Stats) { s.Misses++ })

	v, err, _ := c.group.Do(key, func() (interface{}, error) {
		// Re-check under the flight: a refresh that completed while this
		// caller waited for the flight slot already replaced the snapshot.
		e.mu.RLock()
		current := e.snap
		e.mu.RUnlock()
		if c.fresh(current) {
			return current, nil
		}

		records, err := loader(ctx)
		if err != nil {
			return nil, err
		}
		next := &domain.Snapshot{Records: records, FetchedAt: c.clock.Now()}
		e.mu.Lock()
		e.snap = next
		e.mu.Unlock()
		return next, nil
	})
	if err != nil {
		c.count(func(s *Stats) { s.RefreshFails++ })
		// Stale-but-available: prefer the expired snapshot over failing,
		// unless nothing was ever loaded.
		e.mu.RLock()
		stale := e.snap
		e.mu.RUnlock()
		if stale != nil {
			c.count(func(s *Stats) { s.StaleServes++ })
			c.logger.Warn("refresh failed, serving stale snapshot",
				"dataset", key, "age", stale.Age(c.clock.Now()).String(), "error", err)
			return stale, nil
		}
		return nil, err
	}
	return v.(*domain.Snapshot), nil
}

// fresh reports whether snap can be served without a refresh.
func (c *Cache) fresh(snap *domain.Snapshot) bool {
	if snap.Empty() {
		return false
	}
	if c.ttl == 0 {
		return false
	}
	return snap.Age(c.clock.Now()) <= c.ttl
}

// Stats returns a copy of the cache counters.
func (c *Cache) Stats() Stats {
	c.statsMu.Lock()
	defer c.statsMu.Unlock()
	return c.stats
}

func (c *Cache) count(f func(*Stats)) {
	c.statsMu.Lock()
	f(&c.stats)
	c.statsMu.Unlock()
}
