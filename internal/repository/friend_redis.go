package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"socialnet/internal/model"
)

const (
	friendsKeyPrefix   = "friends:"
	followersKeyPrefix = "followers:"
)

// redisFriendStorage keeps friend edges in two mirrored Redis sets:
// friends:{user} holds the users a user follows, followers:{friend} holds
// the reverse direction so fan-out never has to scan.
type redisFriendStorage struct {
	client *redis.Client
}

func NewRedisFriendStorage(client *redis.Client) FriendStorage {
	return &redisFriendStorage{client: client}
}

func friendsKey(userID uuid.UUID) string {
	return friendsKeyPrefix + userID.String()
}

func followersKey(friendID uuid.UUID) string {
	return followersKeyPrefix + friendID.String()
}

func (s *redisFriendStorage) Create(ctx context.Context, userID, friendID uuid.UUID) error {
	pipe := s.client.Pipeline()
	pipe.SAdd(ctx, friendsKey(userID), friendID.String())
	pipe.SAdd(ctx, followersKey(friendID), userID.String())
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to create friend edge: %w", err)
	}

	return nil
}

func (s *redisFriendStorage) Delete(ctx context.Context, userID, friendID uuid.UUID) error {
	pipe := s.client.Pipeline()
	removed := pipe.SRem(ctx, friendsKey(userID), friendID.String())
	pipe.SRem(ctx, followersKey(friendID), userID.String())
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to delete friend edge: %w", err)
	}
	if removed.Val() == 0 {
		return model.ErrFriendEdgeNotFound
	}

	return nil
}

func (s *redisFriendStorage) Exists(ctx context.Context, userID, friendID uuid.UUID) (bool, error) {
	exists, err := s.client.SIsMember(ctx, friendsKey(userID), friendID.String()).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check friend edge: %w", err)
	}

	return exists, nil
}

func (s *redisFriendStorage) FriendsOf(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	return s.members(ctx, friendsKey(userID))
}

func (s *redisFriendStorage) FollowersOf(ctx context.Context, friendID uuid.UUID) ([]uuid.UUID, error) {
	return s.members(ctx, followersKey(friendID))
}

func (s *redisFriendStorage) members(ctx context.Context, key string) ([]uuid.UUID, error) {
	raw, err := s.client.SMembers(ctx, key).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read set %s: %w", key, err)
	}

	ids := make([]uuid.UUID, 0, len(raw))
	for _, member := range raw {
		id, err := uuid.Parse(member)
		if err != nil {
			return nil, fmt.Errorf("corrupt member %q in set %s: %w", member, key, err)
		}
		ids = append(ids, id)
	}

	return ids, nil
}
