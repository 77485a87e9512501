package service

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"socialnet/internal/bus"
	"socialnet/internal/model"
	"socialnet/internal/repository"
)

// PostService owns post writes. Every committed mutation is announced on
// the bus: one broadcast for the materializers plus one direct message per
// follower for realtime push. The database write is authoritative; publish
// failures are logged and the commit stands.
type PostService struct {
	postRepo  repository.PostRepository
	friends   repository.FriendStorage
	publisher bus.Publisher
}

func NewPostService(postRepo repository.PostRepository, friends repository.FriendStorage, publisher bus.Publisher) *PostService {
	return &PostService{
		postRepo:  postRepo,
		friends:   friends,
		publisher: publisher,
	}
}

// Create stores a new post and fans the created event out.
func (s *PostService) Create(ctx context.Context, authorID uuid.UUID, req model.CreatePostRequest) (*model.Post, error) {
	if strings.TrimSpace(req.Text) == "" {
		return nil, model.ErrPostContentEmpty
	}

	post := &model.Post{
		Content: req.Text,
		UserID:  authorID,
	}
	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, fmt.Errorf("failed to create post: %w", err)
	}

	s.fanOut(ctx, bus.NewCreatedEvent(*post))
	return post, nil
}

// GetByID returns a single post.
func (s *PostService) GetByID(ctx context.Context, postID uuid.UUID) (*model.Post, error) {
	return s.postRepo.GetByID(ctx, postID)
}

// Update rewrites the post text. Only the author may update; ownership is
// re-checked against the master copy, not against anything the client sent.
func (s *PostService) Update(ctx context.Context, callerID, postID uuid.UUID, req model.UpdatePostRequest) (*model.Post, error) {
	if strings.TrimSpace(req.Text) == "" {
		return nil, model.ErrPostContentEmpty
	}

	post, err := s.postRepo.GetByIDFromMaster(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post.UserID != callerID {
		return nil, model.ErrNotPostOwner
	}

	post.Content = req.Text
	if err := s.postRepo.Update(ctx, post); err != nil {
		return nil, fmt.Errorf("failed to update post: %w", err)
	}

	s.fanOut(ctx, bus.NewUpdatedEvent(*post))
	return post, nil
}

// Delete removes the post. Only the author may delete.
func (s *PostService) Delete(ctx context.Context, callerID, postID uuid.UUID) error {
	post, err := s.postRepo.GetByIDFromMaster(ctx, postID)
	if err != nil {
		return err
	}
	if post.UserID != callerID {
		return model.ErrNotPostOwner
	}

	if err := s.postRepo.Delete(ctx, postID); err != nil {
		return fmt.Errorf("failed to delete post: %w", err)
	}

	s.fanOut(ctx, bus.NewDeletedEvent(*post))
	return nil
}

// fanOut publishes the event after the database commit: one broadcast, then
// one direct message per follower of the author.
func (s *PostService) fanOut(ctx context.Context, event bus.PostEvent) {
	start := time.Now()

	if err := s.publisher.Broadcast(ctx, event); err != nil {
		log.Printf("[PostService] Broadcast failed: post=%s kind=%s err=%v", event.PostID, event.Kind, err)
	}

	followers, err := s.friends.FollowersOf(ctx, event.AuthorID)
	if err != nil {
		log.Printf("[PostService] Follower lookup failed: author=%s err=%v", event.AuthorID, err)
		return
	}

	failCount := 0
	for _, follower := range followers {
		if err := s.publisher.Direct(ctx, follower, event); err != nil {
			failCount++
			log.Printf("[PostService] Direct publish failed: post=%s target=%s err=%v", event.PostID, follower, err)
		}
	}

	log.Printf("[PostService] Fan-out OK: post=%s kind=%s followers=%d failed=%d duration=%v",
		event.PostID, event.Kind, len(followers), failCount, time.Since(start))
}
