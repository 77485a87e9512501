package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"socialnet/internal/cache"
	"socialnet/internal/model"
	"socialnet/internal/repository"
)

// FeedDefaultLimit is the page size when the client sends none.
const FeedDefaultLimit = 10

// FeedService serves feeds cache-first. A missing key is rebuilt from the
// authoritative store exactly once per key at a time: concurrent cold reads
// for the same user coalesce on a single flight and share its result.
type FeedService struct {
	feedCache cache.FeedCache
	postRepo  repository.PostRepository
	friends   repository.FriendStorage

	group singleflight.Group // coalesces rebuilds of the same feed key

	// onePostPerUser keeps only each author's newest post in rebuilt
	// feeds, trading completeness for breadth.
	onePostPerUser bool
}

func NewFeedService(feedCache cache.FeedCache, postRepo repository.PostRepository, friends repository.FriendStorage, onePostPerUser bool) *FeedService {
	return &FeedService{
		feedCache:      feedCache,
		postRepo:       postRepo,
		friends:        friends,
		onePostPerUser: onePostPerUser,
	}
}

// GetFeed returns the window [offset, offset+limit) of the user's feed,
// newest first.
//
// Flow:
//  1. Probe the cache key.
//  2. Probe failed -> serve straight from the database, touch nothing.
//  3. Key exists -> serve the window from the cache.
//  4. Key missing -> rebuild through the single-flight group, fill the
//     cache, and slice the rebuilt feed.
func (s *FeedService) GetFeed(ctx context.Context, userID uuid.UUID, offset, limit int) ([]model.Post, error) {
	startTime := time.Now()

	offset = clampToFeedBound(offset)
	limit = clampToFeedBound(limit)

	exists, err := s.feedCache.Exists(ctx, userID)
	if err != nil {
		// Cache store unreachable: degrade to the authoritative store
		// for this request and leave the cache alone.
		log.Printf("[FeedService] Cache probe failed, serving from database: user=%s err=%v", userID, err)
		posts, err := s.rebuild(ctx, userID)
		if err != nil {
			return nil, err
		}
		return window(posts, offset, limit), nil
	}

	if exists {
		posts, err := s.feedCache.Range(ctx, userID, offset, limit)
		if err == nil {
			log.Printf("[FeedService] GetFeed OK: user=%s source=cache posts=%d duration=%v",
				userID, len(posts), time.Since(startTime))
			return posts, nil
		}

		log.Printf("[FeedService] Cache read failed, serving from database: user=%s err=%v", userID, err)
		posts, err = s.rebuild(ctx, userID)
		if err != nil {
			return nil, err
		}
		return window(posts, offset, limit), nil
	}

	// Cold key. Everyone asking for this feed right now shares one rebuild;
	// losers of the race wait for the winner's result instead of stampeding
	// the database.
	ch := s.group.DoChan(cache.FeedKey(userID), func() (interface{}, error) {
		// The flight must outlive the caller that happened to start it:
		// other waiters still need the result after that caller is gone.
		return s.rebuildAndFill(context.WithoutCancel(ctx), userID)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		posts := res.Val.([]model.Post)
		log.Printf("[FeedService] GetFeed OK: user=%s source=rebuild shared=%v posts=%d duration=%v",
			userID, res.Shared, len(posts), time.Since(startTime))
		return window(posts, offset, limit), nil
	}
}

// rebuildAndFill rebuilds the full feed and writes it back to the cache.
// The rebuilt feed is served even when the fill fails.
func (s *FeedService) rebuildAndFill(ctx context.Context, userID uuid.UUID) ([]model.Post, error) {
	posts, err := s.rebuild(ctx, userID)
	if err != nil {
		return nil, err
	}

	if err := s.feedCache.Fill(ctx, userID, posts); err != nil {
		log.Printf("[FeedService] Cache fill failed: user=%s err=%v", userID, err)
	}

	return posts, nil
}

// rebuild computes the full bounded feed from the authoritative store.
func (s *FeedService) rebuild(ctx context.Context, userID uuid.UUID) ([]model.Post, error) {
	startTime := time.Now()

	friendIDs, err := s.friends.FriendsOf(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get friends: %w", err)
	}
	if len(friendIDs) == 0 {
		return []model.Post{}, nil
	}

	posts, err := s.postRepo.TopPostsByAuthors(ctx, friendIDs, cache.FeedLength)
	if err != nil {
		return nil, fmt.Errorf("failed to rebuild feed: %w", err)
	}

	if s.onePostPerUser {
		posts = newestPerAuthor(posts)
	}

	log.Printf("[FeedService] Rebuild OK: user=%s friends=%d posts=%d duration=%v",
		userID, len(friendIDs), len(posts), time.Since(startTime))
	return posts, nil
}

// newestPerAuthor keeps the first (newest) post of each author. Input is
// ordered newest first, so first seen wins.
func newestPerAuthor(posts []model.Post) []model.Post {
	seen := make(map[uuid.UUID]struct{}, len(posts))
	kept := make([]model.Post, 0, len(posts))
	for _, p := range posts {
		if _, ok := seen[p.UserID]; ok {
			continue
		}
		seen[p.UserID] = struct{}{}
		kept = append(kept, p)
	}
	return kept
}

func clampToFeedBound(v int) int {
	if v < 0 {
		return 0
	}
	if v > cache.FeedLength {
		return cache.FeedLength
	}
	return v
}

func window(posts []model.Post, offset, limit int) []model.Post {
	if offset >= len(posts) {
		return []model.Post{}
	}
	end := offset + limit
	if end > len(posts) {
		end = len(posts)
	}
	return posts[offset:end]
}
