package handler

import (
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"socialnet/internal/httputil"
	"socialnet/internal/model"
	"socialnet/internal/service"
	"socialnet/internal/transport/http/middleware"
)

type FriendHandler struct {
	friendService *service.FriendService
}

func NewFriendHandler(friendService *service.FriendService) *FriendHandler {
	return &FriendHandler{
		friendService: friendService,
	}
}

// Set handles PUT /friend/set/{uid}
// The authenticated caller starts following uid. Both feeds are dropped
// so the next read rebuilds them.
func (h *FriendHandler) Set(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	friendID, err := uuid.Parse(chi.URLParam(r, "uid"))
	if err != nil {
		httputil.WriteBadRequest(w, "Invalid friend ID")
		return
	}

	if err := h.friendService.Set(r.Context(), userID, friendID); err != nil {
		switch {
		case errors.Is(err, model.ErrCannotFriendSelf):
			httputil.WriteBadRequest(w, "Cannot friend yourself")
		case errors.Is(err, model.ErrUserNotFound):
			httputil.WriteNotFound(w, "User not found")
		default:
			log.Printf("[ERROR] Friend set handler: user=%s friend=%s err=%v", userID, friendID, err)
			httputil.WriteInternalError(w, "Failed to set friend")
		}
		return
	}

	httputil.WriteJSON(w, http.StatusOK, "ok")
}

// Delete handles PUT /friend/delete/{uid}
// The body carries the caller's own id and must match the token.
func (h *FriendHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	friendID, err := uuid.Parse(chi.URLParam(r, "uid"))
	if err != nil {
		httputil.WriteBadRequest(w, "Invalid friend ID")
		return
	}

	var req model.FriendDeleteRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.UserID != userID.String() {
		httputil.WriteBadRequest(w, "user_id must match the authenticated caller")
		return
	}

	if err := h.friendService.Delete(r.Context(), userID, friendID); err != nil {
		if errors.Is(err, model.ErrFriendEdgeNotFound) {
			httputil.WriteNotFound(w, "Friend edge not found")
			return
		}
		log.Printf("[ERROR] Friend delete handler: user=%s friend=%s err=%v", userID, friendID, err)
		httputil.WriteInternalError(w, "Failed to delete friend")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, "ok")
}
