// Package app provides application-level wiring for the analytics service.
package app

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"sheetboard/internal/api"
	"sheetboard/internal/cache"
	"sheetboard/internal/config"
	"sheetboard/internal/dataset"
	"sheetboard/internal/middleware"
	"sheetboard/internal/schema"
	"sheetboard/internal/service"
	"sheetboard/internal/source"
)

// Deps holds the external dependencies that main() must provide: config,
// logger, and the record source (the one collaborator that talks to the
// network).
type Deps struct {
	Cfg    *config.Config
	Source source.RecordSource
	Logger *slog.Logger
}

// App holds the fully-wired application.
type App struct {
	Cache     *cache.Cache
	Store     *dataset.Store
	Analytics *service.AnalyticsService
	Handler   *api.Handler
	Warmer    *cache.Warmer // nil when no warm schedule is configured
}

// New wires the cache, store, services, and handler from the provided deps.
// The warmer, when configured, is created but not started; the caller owns
// its lifecycle.
func New(deps Deps) (*App, error) {
	cfg := deps.Cfg
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	aliases, err := schema.LoadAliases(cfg.AliasFile)
	if err != nil {
		return nil, fmt.Errorf("load column aliases: %w", err)
	}

	snapshots := cache.New(cfg.CacheTTL, cache.WithLogger(logger.With("component", "cache")))
	store := dataset.NewStore(snapshots, deps.Source, aliases)
	analytics := service.NewAnalyticsService(store, aliases, logger.With("component", "analytics"))
	handler := api.NewHandler(analytics, snapshots.Stats, logger.With("component", "api"))

	a := &App{
		Cache:     snapshots,
		Store:     store,
		Analytics: analytics,
		Handler:   handler,
	}
	if cfg.WarmSchedule != "" {
		a.Warmer = cache.NewWarmer(snapshots, store.Loaders(), cfg.SourceTimeout,
			logger.With("component", "warmer"))
	}
	return a, nil
}

// Router builds the HTTP router: request logging, panic recovery, CORS,
// rate limiting, then the API routes.
func (a *App) Router(cfg *config.Config) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSAllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	}))
	r.Use(middleware.RateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst))
	r.Mount("/", a.Handler.Routes())
	return r
}
