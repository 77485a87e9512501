package model

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// User is an account row. The password hash never leaves the server.
type User struct {
	ID           uuid.UUID `db:"id" json:"id"`
	FirstName    string    `db:"first_name" json:"first_name"`
	SecondName   string    `db:"second_name" json:"second_name"`
	Birthdate    time.Time `db:"birthdate" json:"birthdate"`
	Biography    string    `db:"biography" json:"biography"`
	City         string    `db:"city" json:"city"`
	PasswordHash string    `db:"password_hash" json:"-"`
}

// RegisterRequest is the body of POST /user/register.
// Birthdate is a calendar date, "YYYY-MM-DD".
type RegisterRequest struct {
	FirstName  string `json:"first_name"`
	SecondName string `json:"second_name"`
	Birthdate  string `json:"birthdate"`
	Biography  string `json:"biography"`
	City       string `json:"city"`
	Password   string `json:"password"`
}

// RegisterResponse carries the new account's id.
type RegisterResponse struct {
	UserID string `json:"user_id"`
}

// LoginRequest is the body of POST /login. ID is the user's UUID.
type LoginRequest struct {
	ID       string `json:"id"`
	Password string `json:"password"`
}

// LoginResponse carries the bearer token.
type LoginResponse struct {
	Token string `json:"token"`
}

// User validation bounds
const (
	MaxNameLength      = 32
	MaxBiographyLength = 2048
	MinPasswordLength  = 8
	MaxPasswordLength  = 32

	BirthdateLayout = "2006-01-02"
)

// User errors
var (
	ErrUserNotFound        = errors.New("user not found")
	ErrNameTooLong         = errors.New("name too long")
	ErrBiographyTooLong    = errors.New("biography too long")
	ErrPasswordTooShort    = errors.New("password too short")
	ErrPasswordTooLong     = errors.New("password too long")
	ErrInvalidBirthdate    = errors.New("invalid birthdate")
	ErrInvalidUserID       = errors.New("invalid user id")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrSearchTermsRequired = errors.New("search terms required")
)
