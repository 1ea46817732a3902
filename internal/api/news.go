package api

import (
	"errors"
	"net/http"

	"github.com/villagelink/village-backend/internal/cache"
	"github.com/villagelink/village-backend/internal/village"
)

// ListNews serves the news feed through the cache. A miss falls through to
// the store and repopulates the cached list.
func (h *Handler) ListNews(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var items []village.News
	err := h.cache.Get(ctx, cache.KeyNewsList, &items)
	if err == nil {
		h.writeJSON(w, http.StatusOK, items)
		return
	}
	if !errors.Is(err, cache.ErrCacheMiss) {
		h.logger.Warnw("News cache read failed", "error", err)
	}

	items = h.store.ListNews(ctx)
	if err := h.cache.Set(ctx, cache.KeyNewsList, items, h.cfg.Cache.NewsTTL); err != nil {
		h.logger.Warnw("News cache write failed", "error", err)
	}
	h.writeJSON(w, http.StatusOK, items)
}

// CreateNews publishes a news item and invalidates the cached list.
func (h *Handler) CreateNews(w http.ResponseWriter, r *http.Request) {
	var req createNewsRequest
	if !h.decodeBody(w, r, &req) {
		return
	}

	item, err := h.store.CreateNews(r.Context(), req.Title, req.Content, req.Category, req.CoverImage)
	if err != nil {
		h.writeStoreError(w, err)
		return
	}

	h.invalidateNews(r)
	h.writeJSON(w, http.StatusCreated, item)
}

// DeleteNews removes a news item and invalidates the cached list. Deleting a
// missing item succeeds.
func (h *Handler) DeleteNews(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}
	h.store.DeleteNews(r.Context(), id)
	h.invalidateNews(r)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) invalidateNews(r *http.Request) {
	if err := h.cache.Del(r.Context(), cache.KeyNewsList); err != nil {
		h.logger.Warnw("News cache invalidation failed", "error", err)
	}
}
