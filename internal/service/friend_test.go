package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"socialnet/internal/model"
)

func userExists(t *testing.T) *mockUserRepository {
	t.Helper()
	return &mockUserRepository{
		getByIDFn: func(ctx context.Context, id uuid.UUID) (*model.User, error) {
			return &model.User{ID: id}, nil
		},
	}
}

// TestFriendService_Set_DropsBothFeeds tests that adding an edge drops both
// ends' cached feeds so stale windows cannot be served.
func TestFriendService_Set_DropsBothFeeds(t *testing.T) {
	userID := uuid.New()
	friendID := uuid.New()

	friends := &mockFriendStorage{}
	feedCache := &mockFeedCache{}
	svc := NewFriendService(friends, userExists(t), feedCache)

	if err := svc.Set(context.Background(), userID, friendID); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if friends.createCalls != 1 {
		t.Errorf("edge created %d times, want 1", friends.createCalls)
	}

	dropped := feedCache.droppedIDs()
	if len(dropped) != 2 {
		t.Fatalf("dropped %d feeds, want 2", len(dropped))
	}
	seen := map[uuid.UUID]bool{dropped[0]: true, dropped[1]: true}
	if !seen[userID] || !seen[friendID] {
		t.Errorf("dropped %v, want both %s and %s", dropped, userID, friendID)
	}
}

func TestFriendService_Set_Self(t *testing.T) {
	userID := uuid.New()

	friends := &mockFriendStorage{}
	svc := NewFriendService(friends, userExists(t), &mockFeedCache{})

	err := svc.Set(context.Background(), userID, userID)
	if !errors.Is(err, model.ErrCannotFriendSelf) {
		t.Fatalf("expected ErrCannotFriendSelf, got %v", err)
	}
	if friends.createCalls != 0 {
		t.Error("no edge should be written for a self-friend")
	}
}

func TestFriendService_Set_UnknownFriend(t *testing.T) {
	friends := &mockFriendStorage{}
	svc := NewFriendService(friends, &mockUserRepository{}, &mockFeedCache{})

	err := svc.Set(context.Background(), uuid.New(), uuid.New())
	if !errors.Is(err, model.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
	if friends.createCalls != 0 {
		t.Error("no edge should be written toward a missing user")
	}
}

// TestFriendService_Set_CacheFailureTolerated tests that a failed drop does
// not fail the mutation: the edge is authoritative, the cache degrades.
func TestFriendService_Set_CacheFailureTolerated(t *testing.T) {
	feedCache := &mockFeedCache{
		dropFn: func(ctx context.Context, id uuid.UUID) error {
			return errors.New("connection refused")
		},
	}
	svc := NewFriendService(&mockFriendStorage{}, userExists(t), feedCache)

	if err := svc.Set(context.Background(), uuid.New(), uuid.New()); err != nil {
		t.Fatalf("Set must tolerate cache failures, got %v", err)
	}
}

func TestFriendService_Delete_DropsBothFeeds(t *testing.T) {
	userID := uuid.New()
	friendID := uuid.New()

	friends := &mockFriendStorage{}
	feedCache := &mockFeedCache{}
	svc := NewFriendService(friends, userExists(t), feedCache)

	if err := svc.Delete(context.Background(), userID, friendID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if friends.deleteCalls != 1 {
		t.Errorf("edge deleted %d times, want 1", friends.deleteCalls)
	}
	if len(feedCache.droppedIDs()) != 2 {
		t.Errorf("dropped %d feeds, want 2", len(feedCache.droppedIDs()))
	}
}

func TestFriendService_Delete_MissingEdge(t *testing.T) {
	friends := &mockFriendStorage{
		deleteFn: func(ctx context.Context, userID, friendID uuid.UUID) error {
			return model.ErrFriendEdgeNotFound
		},
	}
	feedCache := &mockFeedCache{}
	svc := NewFriendService(friends, userExists(t), feedCache)

	err := svc.Delete(context.Background(), uuid.New(), uuid.New())
	if !errors.Is(err, model.ErrFriendEdgeNotFound) {
		t.Fatalf("expected ErrFriendEdgeNotFound, got %v", err)
	}
	if len(feedCache.droppedIDs()) != 0 {
		t.Error("no feeds should be dropped when the edge was never there")
	}
}
