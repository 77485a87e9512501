package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"socialnet/internal/database"
	"socialnet/internal/model"
)

type postRepository struct {
	db *database.Cluster
}

func NewPostRepository(db *database.Cluster) PostRepository {
	return &postRepository{db: db}
}

// Create inserts a new post and fills in the generated id and timestamps.
func (r *postRepository) Create(ctx context.Context, p *model.Post) error {
	query := `
		INSERT INTO posts (content, user_id)
		VALUES ($1, $2)
		RETURNING id, time_created, time_updated
	`

	row := r.db.Master().QueryRowxContext(ctx, query, p.Content, p.UserID)
	if err := row.Scan(&p.ID, &p.TimeCreated, &p.TimeUpdated); err != nil {
		return fmt.Errorf("failed to insert post: %w", err)
	}

	return nil
}

func (r *postRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Post, error) {
	return r.getByID(ctx, r.db.Replica(), id)
}

func (r *postRepository) GetByIDFromMaster(ctx context.Context, id uuid.UUID) (*model.Post, error) {
	return r.getByID(ctx, r.db.Master(), id)
}

func (r *postRepository) getByID(ctx context.Context, db *sqlx.DB, id uuid.UUID) (*model.Post, error) {
	query := `
		SELECT id, content, user_id, time_created, time_updated
		FROM posts
		WHERE id = $1
	`

	var p model.Post
	err := db.GetContext(ctx, &p, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, model.ErrPostNotFound
		}
		return nil, fmt.Errorf("failed to get post by id: %w", err)
	}

	return &p, nil
}

// Update rewrites the post content and bumps time_updated.
func (r *postRepository) Update(ctx context.Context, p *model.Post) error {
	query := `
		UPDATE posts
		SET content = $1, time_updated = NOW()
		WHERE id = $2
		RETURNING time_created, time_updated
	`

	row := r.db.Master().QueryRowxContext(ctx, query, p.Content, p.ID)
	if err := row.Scan(&p.TimeCreated, &p.TimeUpdated); err != nil {
		if err == sql.ErrNoRows {
			return model.ErrPostNotFound
		}
		return fmt.Errorf("failed to update post: %w", err)
	}

	return nil
}

func (r *postRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM posts WHERE id = $1`

	result, err := r.db.Master().ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete post: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return model.ErrPostNotFound
	}

	return nil
}

// TopPostsByAuthors returns the freshest posts across the given authors,
// newest time_updated first. Relies on the (user_id, time_updated DESC)
// index on posts.
func (r *postRepository) TopPostsByAuthors(ctx context.Context, authorIDs []uuid.UUID, limit int) ([]model.Post, error) {
	if len(authorIDs) == 0 {
		return []model.Post{}, nil
	}

	ids := make([]string, len(authorIDs))
	for i, id := range authorIDs {
		ids[i] = id.String()
	}

	query := `
		SELECT id, content, user_id, time_created, time_updated
		FROM posts
		WHERE user_id = ANY($1::uuid[])
		ORDER BY time_updated DESC
		LIMIT $2
	`

	posts := []model.Post{}
	if err := r.db.Replica().SelectContext(ctx, &posts, query, pq.Array(ids), limit); err != nil {
		return nil, fmt.Errorf("failed to get top posts by authors: %w", err)
	}

	return posts, nil
}
