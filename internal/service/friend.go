package service

import (
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"

	"socialnet/internal/cache"
	"socialnet/internal/model"
	"socialnet/internal/repository"
)

// FriendService mutates the friend graph and keeps feed caches honest: any
// edge change makes both ends' cached feeds stale, so both are dropped.
type FriendService struct {
	friends   repository.FriendStorage
	userRepo  repository.UserRepository
	feedCache cache.FeedCache
}

func NewFriendService(friends repository.FriendStorage, userRepo repository.UserRepository, feedCache cache.FeedCache) *FriendService {
	return &FriendService{
		friends:   friends,
		userRepo:  userRepo,
		feedCache: feedCache,
	}
}

// Set creates the edge userID -> friendID. Setting an existing edge is a
// no-op that still drops the caches.
func (s *FriendService) Set(ctx context.Context, userID, friendID uuid.UUID) error {
	if userID == friendID {
		return model.ErrCannotFriendSelf
	}

	if _, err := s.userRepo.GetByID(ctx, friendID); err != nil {
		return err
	}

	if err := s.friends.Create(ctx, userID, friendID); err != nil {
		return fmt.Errorf("failed to set friend: %w", err)
	}

	s.dropFeeds(ctx, userID, friendID)
	return nil
}

// Delete removes the edge userID -> friendID.
func (s *FriendService) Delete(ctx context.Context, userID, friendID uuid.UUID) error {
	if err := s.friends.Delete(ctx, userID, friendID); err != nil {
		return err
	}

	s.dropFeeds(ctx, userID, friendID)
	return nil
}

// dropFeeds invalidates the cached feeds on both ends of the edge. The
// authoritative write already happened; a failed drop only delays
// convergence until the next rebuild, so failures are logged, not returned.
func (s *FriendService) dropFeeds(ctx context.Context, userID, friendID uuid.UUID) {
	if err := s.feedCache.Drop(ctx, userID); err != nil {
		log.Printf("[FriendService] Feed drop failed: user=%s err=%v", userID, err)
	}
	if err := s.feedCache.Drop(ctx, friendID); err != nil {
		log.Printf("[FriendService] Feed drop failed: user=%s err=%v", friendID, err)
	}
}
