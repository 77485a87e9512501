package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"socialnet/internal/model"
)

func TestUserService_Search_RequiresBothTerms(t *testing.T) {
	searched := false
	repo := &mockUserRepository{
		searchFn: func(ctx context.Context, firstName, lastName string) ([]model.User, error) {
			searched = true
			return []model.User{}, nil
		},
	}
	svc := NewUserService(repo)

	for _, terms := range [][2]string{{"", ""}, {"Ada", ""}, {"", "Lovelace"}, {"  ", "Lovelace"}} {
		_, err := svc.Search(context.Background(), terms[0], terms[1])
		if !errors.Is(err, model.ErrSearchTermsRequired) {
			t.Errorf("Search(%q, %q): expected ErrSearchTermsRequired, got %v", terms[0], terms[1], err)
		}
	}
	if searched {
		t.Error("incomplete terms must not reach the repository")
	}
}

func TestUserService_Search_TrimsTerms(t *testing.T) {
	repo := &mockUserRepository{
		searchFn: func(ctx context.Context, firstName, lastName string) ([]model.User, error) {
			if firstName != "Ada" || lastName != "Lovelace" {
				t.Errorf("terms = (%q, %q), want trimmed values", firstName, lastName)
			}
			return []model.User{{FirstName: "Ada"}}, nil
		},
	}
	svc := NewUserService(repo)

	users, err := svc.Search(context.Background(), " Ada ", " Lovelace ")
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(users) != 1 {
		t.Errorf("got %d users, want 1", len(users))
	}
}

func TestUserService_GetByID_NotFound(t *testing.T) {
	svc := NewUserService(&mockUserRepository{})

	_, err := svc.GetByID(context.Background(), uuid.New())
	if !errors.Is(err, model.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}
