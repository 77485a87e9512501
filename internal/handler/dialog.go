package handler

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"socialnet/internal/httputil"
	"socialnet/internal/model"
	"socialnet/internal/service"
	"socialnet/internal/transport/http/middleware"
)

// DialogHandler proxies dialog traffic to the dialogs service.
type DialogHandler struct {
	dialogService *service.DialogService
}

func NewDialogHandler(dialogService *service.DialogService) *DialogHandler {
	return &DialogHandler{
		dialogService: dialogService,
	}
}

// Send handles POST /dialog/{uid}/send
// The authenticated caller sends a message to uid.
func (h *DialogHandler) Send(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	receiverID, err := uuid.Parse(chi.URLParam(r, "uid"))
	if err != nil {
		httputil.WriteBadRequest(w, "Invalid user ID")
		return
	}

	var req model.DialogSendRequest
	if !decodeBody(w, r, &req) {
		return
	}

	requestID := chimw.GetReqID(r.Context())
	if err := h.dialogService.Send(r.Context(), requestID, userID, receiverID, req.Text); err != nil {
		if errors.Is(err, model.ErrDialogMessageEmpty) {
			httputil.WriteBadRequest(w, "Message text is empty")
			return
		}
		log.Printf("[ERROR] Dialog send handler: user=%s peer=%s err=%v", userID, receiverID, err)
		httputil.WriteInternalError(w, "Failed to send message")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, "ok")
}

// List handles GET /dialog/{uid}/list
// Returns a window of the dialog between the caller and uid.
func (h *DialogHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	peerID, err := uuid.Parse(chi.URLParam(r, "uid"))
	if err != nil {
		httputil.WriteBadRequest(w, "Invalid user ID")
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

	limit := 10 // default
	if l := r.URL.Query().Get("limit"); l != "" {
		parsed, err := strconv.Atoi(l)
		if err != nil || parsed <= 0 {
			httputil.WriteBadRequest(w, "Invalid limit parameter")
			return
		}
		limit = parsed
	}

	requestID := chimw.GetReqID(r.Context())
	messages, err := h.dialogService.List(r.Context(), requestID, userID, peerID, offset, limit)
	if err != nil {
		log.Printf("[ERROR] Dialog list handler: user=%s peer=%s err=%v", userID, peerID, err)
		httputil.WriteInternalError(w, "Failed to list messages")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, messages)
}
