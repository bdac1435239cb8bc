package source

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	sheets "google.golang.org/api/sheets/v4"

	"sheetboard/internal/domain"
)

// SheetSource reads datasets from worksheets of a single Google Spreadsheet.
type SheetSource struct {
	svc           *sheets.Service
	spreadsheetID string
	worksheets    map[string]string // dataset key -> worksheet title
	logger        *slog.Logger
}

// SheetOptions configures a SheetSource.
type SheetOptions struct {
	SpreadsheetID  string
	Worksheets     map[string]string
	ServiceAccount []byte // service account key JSON
	Logger         *slog.Logger
}

// NewSheetSource authenticates with the readonly spreadsheets scope and
// returns a source for the configured worksheets.
func NewSheetSource(ctx context.Context, opts SheetOptions) (*SheetSource, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	jwtCfg, err := google.JWTConfigFromJSON(opts.ServiceAccount, sheets.SpreadsheetsReadonlyScope)
	if err != nil {
		return nil, fmt.Errorf("parse service account key: %w", err)
	}
	svc, err := sheets.NewService(ctx, option.WithTokenSource(jwtCfg.TokenSource(ctx)))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return &SheetSource{
		svc:           svc,
		spreadsheetID: opts.SpreadsheetID,
		worksheets:    opts.Worksheets,
		logger:        logger,
	}, nil
}

// Fetch reads the worksheet backing key. The first row is the header; every
// following row becomes a RawRow with cells mapped by header position.
// Short rows leave their trailing columns absent.
func (s *SheetSource) Fetch(ctx context.Context, key string) ([]domain.RawRow, error) {
	title, ok := s.worksheets[key]
	if !ok {
		return nil, domain.ErrValidation("unknown dataset %q", key)
	}

	resp, err := s.svc.Spreadsheets.Values.Get(s.spreadsheetID, title).
		ValueRenderOption("UNFORMATTED_VALUE").
		DateTimeRenderOption("FORMATTED_STRING").
		Context(ctx).Do()
	if err != nil {
		return nil, domain.ErrSourceUnavailable(err, "fetch worksheet %s", title)
	}
	if len(resp.Values) == 0 {
		s.logger.Warn("worksheet is empty", "dataset", key, "worksheet", title)
		return nil, nil
	}

	header := make([]string, 0, len(resp.Values[0]))
	for _, cell := range resp.Values[0] {
		header = append(header, fmt.Sprint(cell))
	}

	rows := make([]domain.RawRow, 0, len(resp.Values)-1)
	for _, cells := range resp.Values[1:] {
		row := domain.RawRow{Columns: header, Fields: make(map[string]any, len(header))}
		for i, col := range header {
			if i < len(cells) {
				row.Fields[col] = cells[i]
			}
		}
		rows = append(rows, row)
	}
	s.logger.Debug("worksheet fetched", "dataset", key, "rows", len(rows))
	return rows, nil
}
