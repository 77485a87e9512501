package worker

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"socialnet/internal/bus"
	"socialnet/internal/cache"
)

// FollowerProvider is the slice of friend storage the materializer needs.
// Abstracting it keeps the worker off the concrete storage backend.
type FollowerProvider interface {
	// FollowersOf returns the ids of everyone following the given user.
	FollowersOf(ctx context.Context, authorID uuid.UUID) ([]uuid.UUID, error)
}

// Handler materializes post events into follower feed caches. Events carry
// a full post snapshot, so the handler never queries the database for post
// bodies; the friend graph is its only read dependency.
type Handler struct {
	feedCache cache.FeedCache
	followers FollowerProvider

	// onePostPerUser switches inserts to invalidations: the next read
	// rebuilds the feed deduplicated to each author's newest post.
	onePostPerUser bool
}

func NewHandler(feedCache cache.FeedCache, followers FollowerProvider, onePostPerUser bool) *Handler {
	return &Handler{
		feedCache:      feedCache,
		followers:      followers,
		onePostPerUser: onePostPerUser,
	}
}

// HandleEvent routes an event by kind. A returned error means the delivery
// must not be acknowledged; the bus will redeliver and the cache mutations
// are idempotent enough to tolerate that.
func (h *Handler) HandleEvent(ctx context.Context, event bus.PostEvent) error {
	startTime := time.Now()
	var err error

	switch event.Kind {
	case bus.EventCreated:
		err = h.handleCreated(ctx, event)
	case bus.EventUpdated, bus.EventDeleted:
		err = h.handleStale(ctx, event)
	default:
		return fmt.Errorf("unknown event kind: %s", event.Kind)
	}

	if err != nil {
		log.Printf("[Worker] HandleEvent FAILED: kind=%s post=%s duration=%v err=%v",
			event.Kind, event.PostID, time.Since(startTime), err)
		return err
	}

	log.Printf("[Worker] HandleEvent OK: kind=%s post=%s duration=%v",
		event.Kind, event.PostID, time.Since(startTime))
	return nil
}

// handleCreated prepends the snapshot to every follower's feed. In
// one-post-per-user mode the key is dropped instead, deferring the
// deduplicated insert to the next rebuild.
func (h *Handler) handleCreated(ctx context.Context, event bus.PostEvent) error {
	followers, err := h.followers.FollowersOf(ctx, event.AuthorID)
	if err != nil {
		return fmt.Errorf("failed to get followers: %w", err)
	}

	log.Printf("[Worker] Created: post=%s author=%s fanout=%d", event.PostID, event.AuthorID, len(followers))

	var failCount int
	for _, followerID := range followers {
		if h.onePostPerUser {
			err = h.feedCache.Drop(ctx, followerID)
		} else {
			err = h.feedCache.Push(ctx, followerID, event.Snapshot)
		}
		if err != nil {
			log.Printf("[Worker] Created: feed update failed: user=%s err=%v", followerID, err)
			failCount++
		}
	}

	if failCount > 0 {
		return fmt.Errorf("%d of %d feed updates failed", failCount, len(followers))
	}
	return nil
}

// handleStale invalidates every follower's feed. An updated or deleted post
// may sit anywhere in a cached list; dropping the key and letting the next
// read rebuild is cheaper than patching entries in place.
func (h *Handler) handleStale(ctx context.Context, event bus.PostEvent) error {
	followers, err := h.followers.FollowersOf(ctx, event.AuthorID)
	if err != nil {
		return fmt.Errorf("failed to get followers: %w", err)
	}

	log.Printf("[Worker] %s: post=%s author=%s invalidating=%d",
		event.Kind, event.PostID, event.AuthorID, len(followers))

	var failCount int
	for _, followerID := range followers {
		if err := h.feedCache.Drop(ctx, followerID); err != nil {
			log.Printf("[Worker] %s: feed drop failed: user=%s err=%v", event.Kind, followerID, err)
			failCount++
		}
	}

	if failCount > 0 {
		return fmt.Errorf("%d of %d feed drops failed", failCount, len(followers))
	}
	return nil
}
