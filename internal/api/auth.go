package api

import (
	"net/http"
	"strings"
)

// Login returns the account for username, creating one on the fly when it
// does not exist, and issues a session token.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !h.decodeBody(w, r, &req) {
		return
	}

	user, err := h.store.Login(r.Context(), req.Username, req.Password, req.Role)
	if err != nil {
		h.writeStoreError(w, err)
		return
	}

	token, err := h.sessions.Issue(r.Context(), user.ID)
	if err != nil {
		h.logger.Errorw("Failed to issue session", "user_id", user.ID, "error", err)
		h.writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "could not create session")
		return
	}

	h.writeJSON(w, http.StatusOK, loginResponse{Token: token, User: user})
}

// Register creates a new USER account.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !h.decodeBody(w, r, &req) {
		return
	}

	user, err := h.store.RegisterUser(r.Context(), req.Username, req.Password, req.Phone)
	if err != nil {
		h.writeStoreError(w, err)
		return
	}

	h.writeJSON(w, http.StatusCreated, user)
}

// Logout revokes the session token from the Authorization header or the
// request body. Unknown tokens are revoked silently.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	token := bearerToken(r)
	if token == "" {
		var req logoutRequest
		if !h.decodeBody(w, r, &req) {
			return
		}
		token = req.Token
	}
	if token == "" {
		h.writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "token is required")
		return
	}

	if err := h.sessions.Revoke(r.Context(), token); err != nil {
		h.logger.Warnw("Failed to revoke session", "error", err)
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListUsers returns every account ordered by id.
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.store.ListUsers(r.Context()))
}

// DeleteUser removes an account. Deleting a missing account succeeds.
func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}
	h.store.DeleteUser(r.Context(), id)
	w.WriteHeader(http.StatusNoContent)
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return ""
}
