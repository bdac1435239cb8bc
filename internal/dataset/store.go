// Package dataset composes the record source, the schema normalizer, and
// the snapshot cache into a read path for named datasets.
package dataset

import (
	"context"

	"sheetboard/internal/cache"
	"sheetboard/internal/domain"
	"sheetboard/internal/schema"
	"sheetboard/internal/source"
)

// Store serves normalized dataset snapshots, fetching through the record
// source only when the cache decides a refresh is due. The alias table
// tells the normalizer which columns carry timestamps.
type Store struct {
	cache   *cache.Cache
	src     source.RecordSource
	aliases schema.Aliases
}

// NewStore creates a store over the given cache, record source, and alias
// table.
func NewStore(c *cache.Cache, src source.RecordSource, aliases schema.Aliases) *Store {
	return &Store{cache: c, src: src, aliases: aliases}
}

// Users returns the users dataset snapshot.
func (s *Store) Users(ctx context.Context) (*domain.Snapshot, error) {
	return s.Get(ctx, domain.DatasetUsers)
}

// Subscriptions returns the subscriptions dataset snapshot.
func (s *Store) Subscriptions(ctx context.Context) (*domain.Snapshot, error) {
	return s.Get(ctx, domain.DatasetSubscriptions)
}

// Get returns the snapshot for an arbitrary dataset key.
func (s *Store) Get(ctx context.Context, key string) (*domain.Snapshot, error) {
	return s.cache.Get(ctx, key, s.Loader(key))
}

// Loader returns the fetch-and-normalize loader for key.
func (s *Store) Loader(key string) cache.Loader {
	return func(ctx context.Context) ([]domain.Record, error) {
		rows, err := s.src.Fetch(ctx, key)
		if err != nil {
			return nil, err
		}
		return schema.Normalize(rows, s.aliases), nil
	}
}

// Loaders returns loaders for every known dataset, keyed by dataset key.
// Used by the cache warmer.
func (s *Store) Loaders() map[string]cache.Loader {
	return map[string]cache.Loader{
		domain.DatasetUsers:         s.Loader(domain.DatasetUsers),
		domain.DatasetSubscriptions: s.Loader(domain.DatasetSubscriptions),
	}
}
