package api

import (
	"net/http"
	"strconv"

	"github.com/villagelink/village-backend/internal/cache"
)

// ListPosts returns the community feed, newest first. `?viewerId=` marks
// which posts that user has liked.
func (h *Handler) ListPosts(w http.ResponseWriter, r *http.Request) {
	var viewerID int64
	if raw := r.URL.Query().Get("viewerId"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			h.writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "invalid viewerId")
			return
		}
		viewerID = id
	}

	h.writeJSON(w, http.StatusOK, h.store.ListPosts(r.Context(), viewerID))
}

// CreatePost adds a post to the front of the feed.
func (h *Handler) CreatePost(w http.ResponseWriter, r *http.Request) {
	var req createPostRequest
	if !h.decodeBody(w, r, &req) {
		return
	}

	post, err := h.store.CreatePost(r.Context(), req.AuthorID, req.BoardID, req.Content)
	if err != nil {
		h.writeStoreError(w, err)
		return
	}

	h.publish(r.Context(), cache.ChannelCommunity, "post_created", post)
	h.writeJSON(w, http.StatusCreated, post)
}

// DeletePost removes a post with its comments and likes. Deleting a missing
// post succeeds.
func (h *Handler) DeletePost(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}
	h.store.DeletePost(r.Context(), id)
	h.publish(r.Context(), cache.ChannelCommunity, "post_deleted", map[string]int64{"post_id": id})
	w.WriteHeader(http.StatusNoContent)
}

// ToggleLike flips the caller's like on a post and returns the new state.
func (h *Handler) ToggleLike(w http.ResponseWriter, r *http.Request) {
	postID, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}
	var req likeRequest
	if !h.decodeBody(w, r, &req) {
		return
	}

	result, err := h.store.ToggleLike(r.Context(), postID, req.UserID)
	if err != nil {
		h.writeStoreError(w, err)
		return
	}

	h.publish(r.Context(), cache.ChannelCommunity, "post_liked", map[string]interface{}{
		"post_id": postID,
		"user_id": req.UserID,
		"liked":   result.Liked,
		"count":   result.Count,
	})
	h.writeJSON(w, http.StatusOK, result)
}

// ListComments returns a post's comments, newest first. A missing post yields
// an empty list.
func (h *Handler) ListComments(w http.ResponseWriter, r *http.Request) {
	postID, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}
	h.writeJSON(w, http.StatusOK, h.store.ListComments(r.Context(), postID))
}

// AddComment attaches a comment to a post.
func (h *Handler) AddComment(w http.ResponseWriter, r *http.Request) {
	postID, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}
	var req addCommentRequest
	if !h.decodeBody(w, r, &req) {
		return
	}

	comment, err := h.store.AddComment(r.Context(), postID, req.AuthorID, req.Content)
	if err != nil {
		h.writeStoreError(w, err)
		return
	}

	h.publish(r.Context(), cache.ChannelCommunity, "comment_added", comment)
	h.writeJSON(w, http.StatusCreated, comment)
}

// DeleteComment removes a comment. Deleting a missing comment succeeds.
func (h *Handler) DeleteComment(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}
	h.store.DeleteComment(r.Context(), id)
	w.WriteHeader(http.StatusNoContent)
}
