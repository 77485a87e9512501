package dialogs

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"socialnet/internal/httputil"
	"socialnet/internal/model"
)

// maxBodyBytes caps every request body the service reads.
const maxBodyBytes = 262144

// MessageStore is the slice of the store the handlers need.
type MessageStore interface {
	SaveMessage(ctx context.Context, senderID, receiverID uuid.UUID, content string) error
	ListMessages(ctx context.Context, userID1, userID2 uuid.UUID, offset, limit int) ([]model.DialogMessage, error)
}

// Handler serves the dialogs service's internal API. Callers are other
// services, so payloads carry resolved user ids rather than tokens.
type Handler struct {
	store MessageStore
}

func NewHandler(store MessageStore) *Handler {
	return &Handler{store: store}
}

// Send handles POST /dialog/send
func (h *Handler) Send(w http.ResponseWriter, r *http.Request) {
	var payload model.DialogSendPayload
	if !decodeBody(w, r, &payload) {
		return
	}

	senderID, err := uuid.Parse(payload.MessageSenderUserID)
	if err != nil {
		httputil.WriteBadRequest(w, "Invalid message_sender_user_id")
		return
	}
	receiverID, err := uuid.Parse(payload.MessageReceiverUserID)
	if err != nil {
		httputil.WriteBadRequest(w, "Invalid message_receiver_user_id")
		return
	}
	if strings.TrimSpace(payload.Text) == "" {
		httputil.WriteBadRequest(w, "Message text is empty")
		return
	}

	if err := h.store.SaveMessage(r.Context(), senderID, receiverID, payload.Text); err != nil {
		log.Printf("[ERROR] Dialog send: sender=%s receiver=%s err=%v", senderID, receiverID, err)
		httputil.WriteInternalError(w, "Failed to save message")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, "ok")
}

// List handles POST /dialog/list
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	var payload model.DialogListPayload
	if !decodeBody(w, r, &payload) {
		return
	}

	userID1, err := uuid.Parse(payload.UserID1)
	if err != nil {
		httputil.WriteBadRequest(w, "Invalid user_id1")
		return
	}
	userID2, err := uuid.Parse(payload.UserID2)
	if err != nil {
		httputil.WriteBadRequest(w, "Invalid user_id2")
		return
	}

	offset := payload.Offset
	if offset < 0 {
		offset = 0
	}
	limit := payload.Limit
	if limit <= 0 {
		limit = 10
	}

	messages, err := h.store.ListMessages(r.Context(), userID1, userID2, offset, limit)
	if err != nil {
		log.Printf("[ERROR] Dialog list: user1=%s user2=%s err=%v", userID1, userID2, err)
		httputil.WriteInternalError(w, "Failed to list messages")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, messages)
}

// decodeBody decodes the request body into dst under the body cap. On
// failure the error response has already been written.
func decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			httputil.WritePayloadTooLarge(w)
			return false
		}
		httputil.WriteBadRequest(w, "Invalid request body")
		return false
	}
	return true
}
