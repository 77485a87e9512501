package model

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Session is a server-side login session. Tokens are only honored
// while their session row is alive.
type Session struct {
	ID        uuid.UUID `db:"id" json:"id"`
	UserID    uuid.UUID `db:"user_id" json:"user_id"`
	Data      string    `db:"data" json:"data"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

var ErrSessionNotFound = errors.New("session not found")
