package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"socialnet/internal/handler"
	"socialnet/internal/httputil"
	authmw "socialnet/internal/transport/http/middleware"
)

// RouterConfig holds the dependencies needed to create routes
type RouterConfig struct {
	AuthHandler   *handler.AuthHandler
	UserHandler   *handler.UserHandler
	FriendHandler *handler.FriendHandler
	PostHandler   *handler.PostHandler
	FeedHandler   *handler.FeedHandler
	DialogHandler *handler.DialogHandler
	Verifier      authmw.TokenVerifier
	Instance      string
}

// NewRouter creates and configures a new Chi router with all route groups
func NewRouter(cfg RouterConfig) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(authmw.RequestMeta(cfg.Instance))

	// Health check endpoint (useful for deployment/monitoring)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		httputil.WriteJSON(w, 200, map[string]string{"status": "ok"})
	})

	// Public routes - no authentication required
	r.Post("/user/register", cfg.AuthHandler.Register)
	r.Post("/login", cfg.AuthHandler.Login)

	// Protected routes - require a live session
	r.Group(func(r chi.Router) {
		r.Use(authmw.AuthMiddleware(cfg.Verifier))

		// User endpoints
		r.Get("/user", cfg.UserHandler.List)
		r.Get("/user/get/{id}", cfg.UserHandler.GetByID)
		r.Get("/user/search", cfg.UserHandler.Search)

		// Friend endpoints
		r.Put("/friend/set/{uid}", cfg.FriendHandler.Set)
		r.Put("/friend/delete/{uid}", cfg.FriendHandler.Delete)

		// Post endpoints
		r.Post("/post/create", cfg.PostHandler.Create)
		r.Get("/post/get/{id}", cfg.PostHandler.GetByID)
		r.Put("/post/update/{id}", cfg.PostHandler.Update)
		r.Delete("/post/delete/{id}", cfg.PostHandler.Delete)
		r.Get("/post/feed", cfg.FeedHandler.GetFeed)

		// Dialog endpoints (proxied to the dialogs service)
		r.Post("/dialog/{uid}/send", cfg.DialogHandler.Send)
		r.Get("/dialog/{uid}/list", cfg.DialogHandler.List)
	})

	return r
}
