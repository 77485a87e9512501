package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"socialnet/internal/model"
)

const sessionKeyPrefix = "session:"

// redisSessionStorage keeps sessions in Redis hashes under session:{id}.
type redisSessionStorage struct {
	client *redis.Client
}

func NewRedisSessionStorage(client *redis.Client) SessionStorage {
	return &redisSessionStorage{client: client}
}

func sessionKey(id uuid.UUID) string {
	return sessionKeyPrefix + id.String()
}

func (s *redisSessionStorage) Create(ctx context.Context, session *model.Session) error {
	if session.CreatedAt.IsZero() {
		session.CreatedAt = time.Now().UTC()
	}

	err := s.client.HSet(ctx, sessionKey(session.ID),
		"user_id", session.UserID.String(),
		"data", session.Data,
		"created_at", session.CreatedAt.Format(time.RFC3339Nano),
	).Err()
	if err != nil {
		return fmt.Errorf("failed to store session: %w", err)
	}

	return nil
}

func (s *redisSessionStorage) GetByID(ctx context.Context, id uuid.UUID) (*model.Session, error) {
	fields, err := s.client.HGetAll(ctx, sessionKey(id)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get session by id: %w", err)
	}
	if len(fields) == 0 {
		return nil, model.ErrSessionNotFound
	}

	userID, err := uuid.Parse(fields["user_id"])
	if err != nil {
		return nil, fmt.Errorf("corrupt session %s: %w", id, err)
	}
	createdAt, err := time.Parse(time.RFC3339Nano, fields["created_at"])
	if err != nil {
		return nil, fmt.Errorf("corrupt session %s: %w", id, err)
	}

	return &model.Session{
		ID:        id,
		UserID:    userID,
		Data:      fields["data"],
		CreatedAt: createdAt,
	}, nil
}
