package handler

import (
	"log"
	"net/http"
	"strconv"

	"socialnet/internal/httputil"
	"socialnet/internal/service"
	"socialnet/internal/transport/http/middleware"
)

type FeedHandler struct {
	feedService *service.FeedService
}

func NewFeedHandler(feedService *service.FeedService) *FeedHandler {
	return &FeedHandler{
		feedService: feedService,
	}
}

// GetFeed handles GET /post/feed
// Returns a window of the authenticated user's materialized feed.
//
// Query params:
//   - offset: optional, entries to skip (default 0)
//   - limit: optional, entries to return (default 10)
func (h *FeedHandler) GetFeed(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	offset := 0
	if o := r.URL.Query().Get("offset"); o != "" {
		parsed, err := strconv.Atoi(o)
		if err != nil || parsed < 0 {
			httputil.WriteBadRequest(w, "Invalid offset parameter")
			return
		}
		offset = parsed
	}

	limit := service.FeedDefaultLimit
	if l := r.URL.Query().Get("limit"); l != "" {
		parsed, err := strconv.Atoi(l)
		if err != nil || parsed <= 0 {
			httputil.WriteBadRequest(w, "Invalid limit parameter")
			return
		}
		limit = parsed
	}

	feed, err := h.feedService.GetFeed(r.Context(), userID, offset, limit)
	if err != nil {
		log.Printf("[ERROR] GetFeed handler: user=%s err=%v", userID, err)
		httputil.WriteInternalError(w, "Failed to get feed")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, feed)
}
