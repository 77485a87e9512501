package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"socialnet/internal/database"
	"socialnet/internal/model"
)

// userRepository implements UserRepository on the Postgres cluster. Writes
// go to the master, reads go to replicas.
type userRepository struct {
	db *database.Cluster
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *database.Cluster) UserRepository {
	return &userRepository{db: db}
}

// Create inserts a new user and fills in the generated id.
func (r *userRepository) Create(ctx context.Context, u *model.User) error {
	query := `
		INSERT INTO users (first_name, second_name, birthdate, biography, city, password_hash)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`

	row := r.db.Master().QueryRowxContext(ctx, query,
		u.FirstName,
		u.SecondName,
		u.Birthdate,
		u.Biography,
		u.City,
		u.PasswordHash,
	)

	if err := row.Scan(&u.ID); err != nil {
		return fmt.Errorf("failed to insert user: %w", err)
	}

	return nil
}

// GetByID retrieves a user by their ID
func (r *userRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	query := `
		SELECT id, first_name, second_name, birthdate, biography, city, password_hash
		FROM users
		WHERE id = $1
	`

	var u model.User
	err := r.db.Replica().GetContext(ctx, &u, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, model.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user by id: %w", err)
	}

	return &u, nil
}

// List returns all users ordered by id.
func (r *userRepository) List(ctx context.Context) ([]model.User, error) {
	query := `
		SELECT id, first_name, second_name, birthdate, biography, city, password_hash
		FROM users
		ORDER BY id
	`

	users := []model.User{}
	if err := r.db.Replica().SelectContext(ctx, &users, query); err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	return users, nil
}

// Search finds users whose names start with the given terms. The
// 'simple' config keeps the expression immutable so the GIN indexes on
// first_name and second_name apply.
func (r *userRepository) Search(ctx context.Context, firstName, lastName string) ([]model.User, error) {
	query := `
		SELECT id, first_name, second_name, birthdate, biography, city, password_hash
		FROM users
		WHERE to_tsvector('simple', first_name) @@ to_tsquery('simple', $1)
		  AND to_tsvector('simple', second_name) @@ to_tsquery('simple', $2)
		ORDER BY id
	`

	users := []model.User{}
	err := r.db.Replica().SelectContext(ctx, &users, query,
		firstName+":*",
		lastName+":*",
	)
	if err != nil {
		return nil, fmt.Errorf("failed to search users: %w", err)
	}

	return users, nil
}
