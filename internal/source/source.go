// Package source provides record sources: collaborators that return
// loosely-typed rows for a named dataset. The Google Sheets implementation
// is the production source; tests inject fakes.
package source

import (
	"context"

	"sheetboard/internal/domain"
)

// RecordSource returns raw rows for a dataset key. A fetch may be slow and
// may fail with a SourceUnavailableError.
type RecordSource interface {
	Fetch(ctx context.Context, key string) ([]domain.RawRow, error)
}
