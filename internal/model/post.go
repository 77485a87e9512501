package model

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Post is a user's post. The JSON field names are part of the wire
// format: the same shape is stored in feed cache entries, embedded in
// bus events and returned from the HTTP surface.
type Post struct {
	ID          uuid.UUID `db:"id" json:"id"`
	Content     string    `db:"content" json:"content"`
	UserID      uuid.UUID `db:"user_id" json:"user_id"`
	TimeCreated time.Time `db:"time_created" json:"time_created"`
	TimeUpdated time.Time `db:"time_updated" json:"time_updated"`
}

// CreatePostRequest is the body of POST /post/create.
type CreatePostRequest struct {
	Text string `json:"text"`
}

// UpdatePostRequest is the body of PUT /post/update/{id}.
type UpdatePostRequest struct {
	Text string `json:"text"`
}

// Post errors
var (
	ErrPostNotFound     = errors.New("post not found")
	ErrNotPostOwner     = errors.New("not the owner of this post")
	ErrPostContentEmpty = errors.New("post content is empty")
	ErrInvalidPostID    = errors.New("invalid post id")
)
