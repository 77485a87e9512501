package service

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"socialnet/internal/config"
	"socialnet/internal/model"
	"socialnet/internal/repository"
)

// AuthService owns registration, login and token verification. A token is
// only as alive as the session row behind it: verification checks both the
// signature and the session.
type AuthService struct {
	userRepo repository.UserRepository
	sessions repository.SessionStorage
	config   *config.Config
}

func NewAuthService(userRepo repository.UserRepository, sessions repository.SessionStorage, cfg *config.Config) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		sessions: sessions,
		config:   cfg,
	}
}

// Register validates the request and creates the account.
func (s *AuthService) Register(ctx context.Context, req *model.RegisterRequest) (*model.User, error) {
	if len(req.FirstName) > model.MaxNameLength ||
		len(req.SecondName) > model.MaxNameLength ||
		len(req.City) > model.MaxNameLength {
		return nil, model.ErrNameTooLong
	}
	if len(req.Biography) > model.MaxBiographyLength {
		return nil, model.ErrBiographyTooLong
	}
	if len(req.Password) < model.MinPasswordLength {
		return nil, model.ErrPasswordTooShort
	}
	if len(req.Password) > model.MaxPasswordLength {
		return nil, model.ErrPasswordTooLong
	}

	birthdate, err := time.Parse(model.BirthdateLayout, req.Birthdate)
	if err != nil {
		return nil, model.ErrInvalidBirthdate
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		FirstName:    req.FirstName,
		SecondName:   req.SecondName,
		Birthdate:    birthdate,
		Biography:    req.Biography,
		City:         req.City,
		PasswordHash: string(hashedPassword),
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

// Login authenticates by user id and password, opens a session and mints a
// bearer token bound to it.
func (s *AuthService) Login(ctx context.Context, req *model.LoginRequest) (string, error) {
	// Don't reveal whether the id exists or what failed
	userID, err := uuid.Parse(req.ID)
	if err != nil {
		return "", model.ErrInvalidCredentials
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return "", model.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return "", model.ErrInvalidCredentials
	}

	session := &model.Session{
		ID:     uuid.New(),
		UserID: user.ID,
		Data:   "{}",
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return "", fmt.Errorf("failed to create session: %w", err)
	}

	return s.generateToken(session.ID, user.ID)
}

// VerifyToken checks the token signature and the session behind it, and
// returns the authenticated user id.
func (s *AuthService) VerifyToken(ctx context.Context, tokenString string) (uuid.UUID, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(s.config.JWTSecret), nil
	})
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to parse token: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return uuid.Nil, fmt.Errorf("invalid token claims")
	}

	sessionIDStr, _ := claims["session_id"].(string)
	userIDStr, _ := claims["user_id"].(string)

	sessionID, err := uuid.Parse(sessionIDStr)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid session id in token")
	}
	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid user id in token")
	}

	// Tokens of closed or never-issued sessions are dead, even when the
	// signature still checks out.
	session, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		return uuid.Nil, err
	}
	if session.UserID != userID {
		return uuid.Nil, fmt.Errorf("session does not belong to token user")
	}

	return userID, nil
}

func (s *AuthService) generateToken(sessionID, userID uuid.UUID) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"session_id": sessionID.String(),
		"user_id":    userID.String(),
		"iat":        now.Unix(),
		"exp":        now.Add(time.Duration(s.config.TokenMaxAge) * time.Second).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.config.JWTSecret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return signed, nil
}
