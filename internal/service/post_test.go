package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"socialnet/internal/bus"
	"socialnet/internal/model"
)

// =============================================================================
// CREATE
// =============================================================================

// TestPostService_Create_FansOut tests that a committed post produces one
// broadcast plus one direct message per follower, all carrying the snapshot.
func TestPostService_Create_FansOut(t *testing.T) {
	author := uuid.New()
	follower1 := uuid.New()
	follower2 := uuid.New()

	friends := &mockFriendStorage{
		followersOfFn: func(ctx context.Context, id uuid.UUID) ([]uuid.UUID, error) {
			if id != author {
				t.Errorf("followers looked up for %s, want author %s", id, author)
			}
			return []uuid.UUID{follower1, follower2}, nil
		},
	}
	publisher := &mockPublisher{}
	svc := NewPostService(&mockPostRepository{}, friends, publisher)

	post, err := svc.Create(context.Background(), author, model.CreatePostRequest{Text: "first!"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if post.ID == uuid.Nil {
		t.Error("created post should carry its generated id")
	}

	if len(publisher.broadcasts) != 1 {
		t.Fatalf("got %d broadcasts, want 1", len(publisher.broadcasts))
	}
	event := publisher.broadcasts[0]
	if event.Kind != bus.EventCreated {
		t.Errorf("broadcast kind = %s, want %s", event.Kind, bus.EventCreated)
	}
	if event.Snapshot.Content != "first!" {
		t.Errorf("snapshot content = %q, want %q", event.Snapshot.Content, "first!")
	}

	if len(publisher.directs) != 2 {
		t.Fatalf("got %d direct messages, want 2", len(publisher.directs))
	}
	targets := map[uuid.UUID]bool{}
	for _, d := range publisher.directs {
		targets[d.Target] = true
		if d.Event.PostID != post.ID {
			t.Errorf("direct message for post %s, want %s", d.Event.PostID, post.ID)
		}
	}
	if !targets[follower1] || !targets[follower2] {
		t.Error("every follower should get a direct message")
	}
}

func TestPostService_Create_EmptyText(t *testing.T) {
	publisher := &mockPublisher{}
	svc := NewPostService(&mockPostRepository{}, &mockFriendStorage{}, publisher)

	_, err := svc.Create(context.Background(), uuid.New(), model.CreatePostRequest{Text: "   "})
	if !errors.Is(err, model.ErrPostContentEmpty) {
		t.Fatalf("expected ErrPostContentEmpty, got %v", err)
	}
	if len(publisher.broadcasts) != 0 {
		t.Error("nothing should be published for a rejected post")
	}
}

// TestPostService_Create_PublishFailureKeepsCommit tests that the post
// survives a dead bus: the write is authoritative, fan-out is best effort.
func TestPostService_Create_PublishFailureKeepsCommit(t *testing.T) {
	author := uuid.New()
	friends := &mockFriendStorage{
		followersOfFn: func(ctx context.Context, id uuid.UUID) ([]uuid.UUID, error) {
			return []uuid.UUID{uuid.New()}, nil
		},
	}
	publisher := &mockPublisher{
		broadcastFn: func(ctx context.Context, event bus.PostEvent) error {
			return errors.New("broker gone")
		},
		directFn: func(ctx context.Context, target uuid.UUID, event bus.PostEvent) error {
			return errors.New("broker gone")
		},
	}
	svc := NewPostService(&mockPostRepository{}, friends, publisher)

	post, err := svc.Create(context.Background(), author, model.CreatePostRequest{Text: "still here"})
	if err != nil {
		t.Fatalf("Create must not fail on publish errors, got %v", err)
	}
	if post == nil || post.Content != "still here" {
		t.Error("the committed post should be returned as-is")
	}

	t.Log("✓ Commit stands when the bus is down")
}

// =============================================================================
// UPDATE / DELETE OWNERSHIP
// =============================================================================

func TestPostService_Update_NotOwner(t *testing.T) {
	owner := uuid.New()
	stranger := uuid.New()
	stored := model.Post{ID: uuid.New(), Content: "mine", UserID: owner}

	postRepo := &mockPostRepository{
		getByIDFromMasterFn: func(ctx context.Context, id uuid.UUID) (*model.Post, error) {
			p := stored
			return &p, nil
		},
	}
	publisher := &mockPublisher{}
	svc := NewPostService(postRepo, &mockFriendStorage{}, publisher)

	_, err := svc.Update(context.Background(), stranger, stored.ID, model.UpdatePostRequest{Text: "hijacked"})
	if !errors.Is(err, model.ErrNotPostOwner) {
		t.Fatalf("expected ErrNotPostOwner, got %v", err)
	}
	if postRepo.updateCalls != 0 {
		t.Error("update must not reach the database for a non-owner")
	}
	if len(publisher.broadcasts) != 0 {
		t.Error("nothing should be published for a rejected update")
	}
}

func TestPostService_Update_Owner(t *testing.T) {
	owner := uuid.New()
	stored := model.Post{ID: uuid.New(), Content: "old text", UserID: owner}

	postRepo := &mockPostRepository{
		getByIDFromMasterFn: func(ctx context.Context, id uuid.UUID) (*model.Post, error) {
			p := stored
			return &p, nil
		},
	}
	publisher := &mockPublisher{}
	svc := NewPostService(postRepo, &mockFriendStorage{}, publisher)

	post, err := svc.Update(context.Background(), owner, stored.ID, model.UpdatePostRequest{Text: "new text"})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if post.Content != "new text" {
		t.Errorf("content = %q, want %q", post.Content, "new text")
	}
	if postRepo.updateCalls != 1 {
		t.Errorf("update reached the database %d times, want 1", postRepo.updateCalls)
	}

	if len(publisher.broadcasts) != 1 {
		t.Fatalf("got %d broadcasts, want 1", len(publisher.broadcasts))
	}
	event := publisher.broadcasts[0]
	if event.Kind != bus.EventUpdated {
		t.Errorf("broadcast kind = %s, want %s", event.Kind, bus.EventUpdated)
	}
	if event.Snapshot.Content != "new text" {
		t.Error("snapshot should carry the updated content")
	}
}

func TestPostService_Delete_Owner(t *testing.T) {
	owner := uuid.New()
	stored := model.Post{ID: uuid.New(), Content: "going away", UserID: owner}

	postRepo := &mockPostRepository{
		getByIDFromMasterFn: func(ctx context.Context, id uuid.UUID) (*model.Post, error) {
			p := stored
			return &p, nil
		},
	}
	publisher := &mockPublisher{}
	svc := NewPostService(postRepo, &mockFriendStorage{}, publisher)

	if err := svc.Delete(context.Background(), owner, stored.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if postRepo.deleteCalls != 1 {
		t.Errorf("delete reached the database %d times, want 1", postRepo.deleteCalls)
	}

	if len(publisher.broadcasts) != 1 {
		t.Fatalf("got %d broadcasts, want 1", len(publisher.broadcasts))
	}
	event := publisher.broadcasts[0]
	if event.Kind != bus.EventDeleted {
		t.Errorf("broadcast kind = %s, want %s", event.Kind, bus.EventDeleted)
	}
	if event.PostID != stored.ID || event.Snapshot.Content != stored.Content {
		t.Error("deleted event should snapshot the post as it was")
	}
}

func TestPostService_Delete_NotFound(t *testing.T) {
	publisher := &mockPublisher{}
	svc := NewPostService(&mockPostRepository{}, &mockFriendStorage{}, publisher)

	err := svc.Delete(context.Background(), uuid.New(), uuid.New())
	if !errors.Is(err, model.ErrPostNotFound) {
		t.Fatalf("expected ErrPostNotFound, got %v", err)
	}
}
