package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"socialnet/internal/database"
	"socialnet/internal/model"
)

type postgresFriendStorage struct {
	db *database.Cluster
}

func NewPostgresFriendStorage(db *database.Cluster) FriendStorage {
	return &postgresFriendStorage{db: db}
}

// Create inserts the edge. Inserting an existing edge is a no-op, the edge
// set stays unique per ordered pair.
func (s *postgresFriendStorage) Create(ctx context.Context, userID, friendID uuid.UUID) error {
	query := `
		INSERT INTO friends (user_id, friend_id)
		VALUES ($1, $2)
		ON CONFLICT (user_id, friend_id) DO NOTHING
	`

	if _, err := s.db.Master().ExecContext(ctx, query, userID, friendID); err != nil {
		return fmt.Errorf("failed to create friend edge: %w", err)
	}

	return nil
}

func (s *postgresFriendStorage) Delete(ctx context.Context, userID, friendID uuid.UUID) error {
	query := `DELETE FROM friends WHERE user_id = $1 AND friend_id = $2`

	result, err := s.db.Master().ExecContext(ctx, query, userID, friendID)
	if err != nil {
		return fmt.Errorf("failed to delete friend edge: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return model.ErrFriendEdgeNotFound
	}

	return nil
}

func (s *postgresFriendStorage) Exists(ctx context.Context, userID, friendID uuid.UUID) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM friends WHERE user_id = $1 AND friend_id = $2)`

	var exists bool
	if err := s.db.Replica().GetContext(ctx, &exists, query, userID, friendID); err != nil {
		return false, fmt.Errorf("failed to check friend edge: %w", err)
	}

	return exists, nil
}

func (s *postgresFriendStorage) FriendsOf(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	query := `SELECT friend_id FROM friends WHERE user_id = $1`

	ids := []uuid.UUID{}
	if err := s.db.Replica().SelectContext(ctx, &ids, query, userID); err != nil {
		return nil, fmt.Errorf("failed to get friends of user: %w", err)
	}

	return ids, nil
}

// FollowersOf walks the edge set backwards; served by the friend_id index.
func (s *postgresFriendStorage) FollowersOf(ctx context.Context, friendID uuid.UUID) ([]uuid.UUID, error) {
	query := `SELECT user_id FROM friends WHERE friend_id = $1`

	ids := []uuid.UUID{}
	if err := s.db.Replica().SelectContext(ctx, &ids, query, friendID); err != nil {
		return nil, fmt.Errorf("failed to get followers of user: %w", err)
	}

	return ids, nil
}
