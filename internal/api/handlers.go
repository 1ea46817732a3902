package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/villagelink/village-backend/internal/auth"
	"github.com/villagelink/village-backend/internal/cache"
	"github.com/villagelink/village-backend/internal/config"
	"github.com/villagelink/village-backend/internal/metrics"
	"github.com/villagelink/village-backend/internal/village"
	"github.com/villagelink/village-backend/internal/ws"
	"go.uber.org/zap"
)

const maxBodyBytes = 1 << 20

// Handler holds every dependency the HTTP layer needs.
type Handler struct {
	store    *village.Store
	sessions *auth.Sessions
	cache    *cache.Cache
	hub      *ws.Hub
	sse      *ws.SSEHandler
	cfg      *config.Config
	logger   *zap.SugaredLogger
	metrics  *metrics.Metrics
}

// NewHandler builds the HTTP handler set.
func NewHandler(
	store *village.Store,
	sessions *auth.Sessions,
	c *cache.Cache,
	hub *ws.Hub,
	sse *ws.SSEHandler,
	cfg *config.Config,
	logger *zap.SugaredLogger,
	m *metrics.Metrics,
) *Handler {
	return &Handler{
		store:    store,
		sessions: sessions,
		cache:    c,
		hub:      hub,
		sse:      sse,
		cfg:      cfg,
		logger:   logger,
		metrics:  m,
	}
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Errorw("Failed to encode response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, code, message string) {
	h.writeJSON(w, status, ErrorResponse{Code: code, Message: message})
}

// writeStoreError maps the store's sentinel errors onto HTTP statuses.
func (h *Handler) writeStoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, village.ErrValidation):
		h.writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
	case errors.Is(err, village.ErrNotFound):
		h.writeError(w, http.StatusNotFound, "NOT_FOUND", err.Error())
	case errors.Is(err, village.ErrConflict):
		h.writeError(w, http.StatusConflict, "CONFLICT", err.Error())
	default:
		h.logger.Errorw("Unhandled store error", "error", err)
		h.writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "internal error")
	}
}

func (h *Handler) decodeBody(w http.ResponseWriter, r *http.Request, dest interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dest); err != nil {
		h.writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "invalid JSON body")
		return false
	}
	return true
}

func (h *Handler) pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "invalid "+name)
		return 0, false
	}
	return id, true
}

// publish sends a live-update event; delivery is best effort.
func (h *Handler) publish(ctx context.Context, channel, event string, data interface{}) {
	if h.cache == nil {
		return
	}
	if err := h.cache.Publish(ctx, channel, eventEnvelope{Event: event, Data: data}); err != nil {
		h.logger.Warnw("Failed to publish event", "channel", channel, "event", event, "error", err)
	}
}

// Healthz reports liveness.
func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Readyz reports readiness, including the cache backend.
func (h *Handler) Readyz(w http.ResponseWriter, r *http.Request) {
	if h.cache != nil {
		if err := h.cache.Ping(r.Context()); err != nil {
			h.writeError(w, http.StatusServiceUnavailable, "NOT_READY", "cache unavailable")
			return
		}
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// Ping is a trivial probe for load balancers.
func (h *Handler) Ping(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("pong"))
}
