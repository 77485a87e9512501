package repository

import (
	"context"

	"github.com/google/uuid"

	"socialnet/internal/model"
)

type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	List(ctx context.Context) ([]model.User, error)
	Search(ctx context.Context, firstName, lastName string) ([]model.User, error)
}

type PostRepository interface {
	Create(ctx context.Context, post *model.Post) error
	// GetByID reads from a replica; fine for public reads that may lag.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Post, error)
	// GetByIDFromMaster reads from the master so ownership checks observe
	// the caller's own committed writes.
	GetByIDFromMaster(ctx context.Context, id uuid.UUID) (*model.Post, error)
	Update(ctx context.Context, post *model.Post) error
	Delete(ctx context.Context, id uuid.UUID) error
	// TopPostsByAuthors returns the most recently updated posts across the
	// given authors, newest first. Used to rebuild feed caches.
	TopPostsByAuthors(ctx context.Context, authorIDs []uuid.UUID, limit int) ([]model.Post, error)
}

// FriendStorage persists directed friend edges. Backed by Postgres or Redis
// depending on the FRIEND_STORAGE setting.
type FriendStorage interface {
	Create(ctx context.Context, userID, friendID uuid.UUID) error
	Delete(ctx context.Context, userID, friendID uuid.UUID) error
	Exists(ctx context.Context, userID, friendID uuid.UUID) (bool, error)
	// FriendsOf returns the users userID follows (their feed authors).
	FriendsOf(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error)
	// FollowersOf returns the users following friendID (fan-out targets).
	FollowersOf(ctx context.Context, friendID uuid.UUID) ([]uuid.UUID, error)
}

// SessionStorage persists login sessions. Backed by Postgres or Redis
// depending on the SESSION_STORAGE setting.
type SessionStorage interface {
	Create(ctx context.Context, session *model.Session) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Session, error)
}
