package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"socialnet/internal/model"
)

const (
	// FeedKeyPrefix is the key prefix for per-user feed lists
	FeedKeyPrefix = "feed:"

	// FeedLength is the retention bound of every cached feed
	FeedLength = 1000
)

// FeedCache is the bounded per-user feed list. Entries are JSON post
// snapshots ordered newest-first by time_updated. Only the
// materializer and the invalidator mutate existing keys; the read path
// may fill a missing key but never rewrites one.
type FeedCache interface {
	// Exists probes for the user's feed key.
	Exists(ctx context.Context, userID uuid.UUID) (bool, error)

	// Push prepends a post snapshot and trims the list to FeedLength.
	Push(ctx context.Context, userID uuid.UUID, post model.Post) error

	// Fill writes a rebuilt feed in order, first entry at index 0.
	Fill(ctx context.Context, userID uuid.UUID, posts []model.Post) error

	// Range reads and decodes entries [offset, offset+limit).
	Range(ctx context.Context, userID uuid.UUID, offset, limit int) ([]model.Post, error)

	// Drop deletes the user's feed key. Missing keys are not an error.
	Drop(ctx context.Context, userID uuid.UUID) error

	// Len reports the number of entries in the user's feed.
	Len(ctx context.Context, userID uuid.UUID) (int64, error)
}

// RedisFeedCache implements FeedCache on Redis lists.
type RedisFeedCache struct {
	client *redis.Client
}

// NewFeedCache creates a FeedCache backed by Redis.
func NewFeedCache(client *redis.Client) FeedCache {
	return &RedisFeedCache{client: client}
}

// FeedKey returns the Redis key for a user's feed list.
func FeedKey(userID uuid.UUID) string {
	return FeedKeyPrefix + userID.String()
}

func (c *RedisFeedCache) Exists(ctx context.Context, userID uuid.UUID) (bool, error) {
	n, err := c.client.Exists(ctx, FeedKey(userID)).Result()
	if err != nil {
		log.Printf("[FeedCache] Exists FAILED: user=%s err=%v", userID, err)
		return false, fmt.Errorf("check feed exists: %w", err)
	}
	return n > 0, nil
}

// Push prepends the snapshot with LPUSH and trims to the retention
// bound in the same pipeline, so the length invariant holds under any
// interleaving of pushes.
func (c *RedisFeedCache) Push(ctx context.Context, userID uuid.UUID, post model.Post) error {
	key := FeedKey(userID)
	startTime := time.Now()

	entry, err := json.Marshal(post)
	if err != nil {
		return fmt.Errorf("encode feed entry: %w", err)
	}

	pipe := c.client.Pipeline()
	pipe.LPush(ctx, key, entry)
	pipe.LTrim(ctx, key, 0, FeedLength-1)

	if _, err := pipe.Exec(ctx); err != nil {
		log.Printf("[FeedCache] Push FAILED: user=%s post=%s err=%v", userID, post.ID, err)
		return fmt.Errorf("push feed entry: %w", err)
	}

	log.Printf("[FeedCache] Push OK: user=%s post=%s duration=%v", userID, post.ID, time.Since(startTime))
	return nil
}

// Fill appends the rebuilt entries with one RPUSH so the caller's
// order is preserved, then trims in the same pipeline.
func (c *RedisFeedCache) Fill(ctx context.Context, userID uuid.UUID, posts []model.Post) error {
	if len(posts) == 0 {
		return nil
	}

	key := FeedKey(userID)
	startTime := time.Now()

	entries := make([]interface{}, len(posts))
	for i, p := range posts {
		entry, err := json.Marshal(p)
		if err != nil {
			return fmt.Errorf("encode feed entry: %w", err)
		}
		entries[i] = entry
	}

	pipe := c.client.Pipeline()
	pipe.RPush(ctx, key, entries...)
	pipe.LTrim(ctx, key, 0, FeedLength-1)

	if _, err := pipe.Exec(ctx); err != nil {
		log.Printf("[FeedCache] Fill FAILED: user=%s entries=%d err=%v", userID, len(posts), err)
		return fmt.Errorf("fill feed: %w", err)
	}

	log.Printf("[FeedCache] Fill OK: user=%s entries=%d duration=%v",
		userID, len(posts), time.Since(startTime))
	return nil
}

func (c *RedisFeedCache) Range(ctx context.Context, userID uuid.UUID, offset, limit int) ([]model.Post, error) {
	if limit <= 0 {
		return []model.Post{}, nil
	}

	key := FeedKey(userID)
	startTime := time.Now()

	raw, err := c.client.LRange(ctx, key, int64(offset), int64(offset+limit-1)).Result()
	if err != nil {
		log.Printf("[FeedCache] Range FAILED: user=%s err=%v", userID, err)
		return nil, fmt.Errorf("range feed: %w", err)
	}

	posts := make([]model.Post, 0, len(raw))
	for _, entry := range raw {
		var p model.Post
		if err := json.Unmarshal([]byte(entry), &p); err != nil {
			log.Printf("[FeedCache] Range decode FAILED: user=%s err=%v", userID, err)
			return nil, fmt.Errorf("decode feed entry: %w", err)
		}
		posts = append(posts, p)
	}

	log.Printf("[FeedCache] Range OK: user=%s offset=%d returned=%d duration=%v",
		userID, offset, len(posts), time.Since(startTime))
	return posts, nil
}

func (c *RedisFeedCache) Drop(ctx context.Context, userID uuid.UUID) error {
	key := FeedKey(userID)

	if err := c.client.Del(ctx, key).Err(); err != nil {
		log.Printf("[FeedCache] Drop FAILED: user=%s err=%v", userID, err)
		return fmt.Errorf("drop feed: %w", err)
	}

	log.Printf("[FeedCache] Drop OK: user=%s", userID)
	return nil
}

func (c *RedisFeedCache) Len(ctx context.Context, userID uuid.UUID) (int64, error) {
	n, err := c.client.LLen(ctx, FeedKey(userID)).Result()
	if err != nil {
		log.Printf("[FeedCache] Len FAILED: user=%s err=%v", userID, err)
		return 0, fmt.Errorf("feed length: %w", err)
	}
	return n, nil
}
