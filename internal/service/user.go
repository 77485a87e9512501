package service

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"socialnet/internal/model"
	"socialnet/internal/repository"
)

// UserService handles profile reads and search.
type UserService struct {
	repo repository.UserRepository
}

func NewUserService(repo repository.UserRepository) *UserService {
	return &UserService{repo: repo}
}

// GetByID retrieves a user by ID.
func (s *UserService) GetByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	return s.repo.GetByID(ctx, id)
}

// List returns all users.
func (s *UserService) List(ctx context.Context) ([]model.User, error) {
	return s.repo.List(ctx)
}

// Search finds users by first and last name prefixes. Both terms are
// required.
func (s *UserService) Search(ctx context.Context, firstName, lastName string) ([]model.User, error) {
	firstName = strings.TrimSpace(firstName)
	lastName = strings.TrimSpace(lastName)
	if firstName == "" || lastName == "" {
		return nil, model.ErrSearchTermsRequired
	}

	return s.repo.Search(ctx, firstName, lastName)
}
