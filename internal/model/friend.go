package model

import (
	"errors"

	"github.com/google/uuid"
)

// Friend is a directed edge: UserID follows FriendID. A user's feed is
// built from posts authored by every FriendID they point at.
type Friend struct {
	ID       uuid.UUID `db:"id" json:"id"`
	UserID   uuid.UUID `db:"user_id" json:"user_id"`
	FriendID uuid.UUID `db:"friend_id" json:"friend_id"`
}

// FriendDeleteRequest is the body of PUT /friend/delete/{id}. UserID
// must match the authenticated caller.
type FriendDeleteRequest struct {
	UserID string `json:"user_id"`
}

// Friend errors
var (
	ErrFriendEdgeNotFound = errors.New("friend edge not found")
	ErrCannotFriendSelf   = errors.New("cannot friend yourself")
)
