// Package api exposes the analytics metrics over HTTP. Route framing is
// deliberately thin: handlers decode the path, call the analytics service,
// and encode the result.
package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"sheetboard/internal/cache"
	"sheetboard/internal/domain"
	"sheetboard/internal/service"
)

// Handler serves the analytics API.
type Handler struct {
	svc    *service.AnalyticsService
	stats  func() cache.Stats
	logger *slog.Logger
}

// NewHandler creates an API handler. stats may be nil when no cache counters
// are exposed.
func NewHandler(svc *service.AnalyticsService, stats func() cache.Stats, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{svc: svc, stats: stats, logger: logger}
}

// Routes registers all API routes on a fresh router.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/healthz", h.health)
	r.Get("/summary", h.summary)
	r.Get("/plans", h.plans)
	r.Get("/risks", h.risks)
	r.Get("/users-list", h.usersList)
	r.Get("/user/{username}", h.userDetail)
	r.Get("/users-master", h.usersMaster)
	r.Get("/subscriptions", h.subscriptions)
	r.Get("/subscriptions/breakdown", h.subscriptionBreakdown)
	r.Get("/data", h.allData)
	return r
}

func (h *Handler) health(w http.ResponseWriter, _ *http.Request) {
	payload := map[string]any{"status": "ok"}
	if h.stats != nil {
		payload["cache"] = h.stats()
	}
	h.writeJSON(w, http.StatusOK, payload)
}

func (h *Handler) summary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.svc.Summary(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, summary)
}

func (h *Handler) plans(w http.ResponseWriter, r *http.Request) {
	groups, ok, err := h.svc.Plans(r.Context())
	h.writeBreakdown(w, groups, ok, err)
}

func (h *Handler) risks(w http.ResponseWriter, r *http.Request) {
	groups, ok, err := h.svc.Risks(r.Context())
	h.writeBreakdown(w, groups, ok, err)
}

// writeBreakdown renders an unresolved metric as an explicit placeholder
// rather than an empty success.
func (h *Handler) writeBreakdown(w http.ResponseWriter, groups *domain.Breakdown, ok bool, err error) {
	if err != nil {
		h.writeError(w, err)
		return
	}
	if !ok {
		h.writeJSON(w, http.StatusOK, map[string]any{"unavailable": true})
		return
	}
	h.writeJSON(w, http.StatusOK, groups)
}

func (h *Handler) usersList(w http.ResponseWriter, r *http.Request) {
	names, err := h.svc.UsersList(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, names)
}

func (h *Handler) userDetail(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")
	detail, err := h.svc.UserDetail(r.Context(), username)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, detail)
}

func (h *Handler) usersMaster(w http.ResponseWriter, r *http.Request) {
	records, err := h.svc.UsersMaster(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, records)
}

func (h *Handler) subscriptions(w http.ResponseWriter, r *http.Request) {
	records, err := h.svc.Subscriptions(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, records)
}

func (h *Handler) subscriptionBreakdown(w http.ResponseWriter, r *http.Request) {
	breakdown, err := h.svc.SubscriptionBreakdown(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, breakdown)
}

func (h *Handler) allData(w http.ResponseWriter, r *http.Request) {
	data, err := h.svc.AllData(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, data)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("encode response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	status := httpStatusFromDomainError(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("request failed", "status", status, "error", err)
	}
	h.writeJSON(w, status, map[string]any{
		"error": err.Error(),
		"code":  status,
	})
}
