package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"socialnet/internal/database"
	"socialnet/internal/model"
)

type postgresSessionStorage struct {
	db *database.Cluster
}

func NewPostgresSessionStorage(db *database.Cluster) SessionStorage {
	return &postgresSessionStorage{db: db}
}

func (s *postgresSessionStorage) Create(ctx context.Context, session *model.Session) error {
	query := `
		INSERT INTO sessions (id, user_id, data)
		VALUES ($1, $2, $3)
		RETURNING created_at
	`

	row := s.db.Master().QueryRowxContext(ctx, query, session.ID, session.UserID, session.Data)
	if err := row.Scan(&session.CreatedAt); err != nil {
		return fmt.Errorf("failed to insert session: %w", err)
	}

	return nil
}

// GetByID reads from the master: a token minted a moment ago must verify on
// the very next request, replica lag would bounce fresh logins.
func (s *postgresSessionStorage) GetByID(ctx context.Context, id uuid.UUID) (*model.Session, error) {
	query := `
		SELECT id, user_id, data, created_at
		FROM sessions
		WHERE id = $1
	`

	var session model.Session
	err := s.db.Master().GetContext(ctx, &session, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, model.ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to get session by id: %w", err)
	}

	return &session, nil
}
