package handler

import (
	"errors"
	"log"
	"net/http"

	"socialnet/internal/httputil"
	"socialnet/internal/model"
	"socialnet/internal/service"
)

// AuthHandler groups the unauthenticated account endpoints.
type AuthHandler struct {
	authService *service.AuthService
}

func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

// Register handles POST /user/register
// Creates an account and returns its generated id.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req model.RegisterRequest
	if !decodeBody(w, r, &req) {
		return
	}

	user, err := h.authService.Register(r.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrNameTooLong):
			httputil.WriteBadRequest(w, "Name too long (max 32 characters)")
		case errors.Is(err, model.ErrBiographyTooLong):
			httputil.WriteBadRequest(w, "Biography too long (max 2048 characters)")
		case errors.Is(err, model.ErrPasswordTooShort):
			httputil.WriteBadRequest(w, "Password too short (min 8 characters)")
		case errors.Is(err, model.ErrPasswordTooLong):
			httputil.WriteBadRequest(w, "Password too long (max 32 characters)")
		case errors.Is(err, model.ErrInvalidBirthdate):
			httputil.WriteBadRequest(w, "Birthdate must be YYYY-MM-DD")
		default:
			log.Printf("[ERROR] Register handler: err=%v", err)
			httputil.WriteInternalError(w, "Failed to register user")
		}
		return
	}

	httputil.WriteJSON(w, http.StatusOK, model.RegisterResponse{
		UserID: user.ID.String(),
	})
}

// Login handles POST /login
// Exchanges id + password for a bearer token.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req model.LoginRequest
	if !decodeBody(w, r, &req) {
		return
	}

	token, err := h.authService.Login(r.Context(), &req)
	if err != nil {
		if errors.Is(err, model.ErrInvalidCredentials) {
			httputil.WriteUnauthorized(w, "Invalid id or password")
			return
		}
		log.Printf("[ERROR] Login handler: err=%v", err)
		httputil.WriteInternalError(w, "Failed to login")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, model.LoginResponse{Token: token})
}
