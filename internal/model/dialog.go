package model

import (
	"errors"

	"github.com/google/uuid"
)

// DialogMessage is one message inside a one-to-one dialog. Dialogs and
// their messages live in the dialogs service's own tables.
type DialogMessage struct {
	ID       uuid.UUID `db:"id" json:"id"`
	DialogID uuid.UUID `db:"dialog_id" json:"dialog_id"`
	UserID   uuid.UUID `db:"user_id" json:"user_id"`
	Content  string    `db:"content" json:"content"`
}

// DialogSendRequest is the body of POST /dialog/{id}/send on the main API.
type DialogSendRequest struct {
	Text string `json:"text"`
}

// DialogSendPayload is the internal payload the main API forwards to
// the dialogs service.
type DialogSendPayload struct {
	MessageSenderUserID   string `json:"message_sender_user_id"`
	MessageReceiverUserID string `json:"message_receiver_user_id"`
	Text                  string `json:"text"`
}

// DialogListPayload is the internal payload for listing a dialog's
// messages between two users.
type DialogListPayload struct {
	UserID1 string `json:"user_id1"`
	UserID2 string `json:"user_id2"`
	Offset  int    `json:"offset"`
	Limit   int    `json:"limit"`
}

// Dialog errors
var (
	ErrDialogMessageEmpty = errors.New("dialog message is empty")
)
