package api

import "net/http"

// ListProducts returns all marketplace listings.
func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.store.ListProducts(r.Context()))
}

// CreateOrder decrements stock for each listed product. Orders never fail;
// unknown ids and sold-out products are skipped.
func (h *Handler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var req createOrderRequest
	if !h.decodeBody(w, r, &req) {
		return
	}
	if len(req.ProductIDs) == 0 {
		h.writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "product_ids is required")
		return
	}

	h.store.CreateOrder(r.Context(), req.ProductIDs)
	h.writeJSON(w, http.StatusCreated, orderResponse{Success: true})
}
