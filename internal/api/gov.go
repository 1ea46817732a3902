package api

import (
	"net/http"

	"github.com/villagelink/village-backend/internal/cache"
)

// ListAffairs returns every filed application, newest first.
func (h *Handler) ListAffairs(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.store.ListAffairs(r.Context()))
}

// CreateAffair files a new application in PENDING state.
func (h *Handler) CreateAffair(w http.ResponseWriter, r *http.Request) {
	var req createAffairRequest
	if !h.decodeBody(w, r, &req) {
		return
	}

	affair, err := h.store.CreateAffair(r.Context(), req.ApplicantID, req.Title, req.Description, req.Type)
	if err != nil {
		h.writeStoreError(w, err)
		return
	}

	h.publish(r.Context(), cache.ChannelAffairs, "affair_created", affair)
	h.writeJSON(w, http.StatusCreated, affair)
}

// UpdateAffairStatus drives the review state machine. Approving a listing
// application also creates the product it describes.
func (h *Handler) UpdateAffairStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}
	var req updateAffairStatusRequest
	if !h.decodeBody(w, r, &req) {
		return
	}

	affair, err := h.store.UpdateAffairStatus(r.Context(), id, req.Status)
	if err != nil {
		h.writeStoreError(w, err)
		return
	}

	if h.metrics != nil {
		h.metrics.RecordAffairTransition(r.Context(), string(affair.Status))
	}
	h.publish(r.Context(), cache.ChannelAffairs, "affair_updated", affair)
	h.writeJSON(w, http.StatusOK, affair)
}
