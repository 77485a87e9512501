package dialogs

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"socialnet/internal/config"
	"socialnet/internal/database"
	"socialnet/internal/httputil"
	authmw "socialnet/internal/transport/http/middleware"
)

// NewRouter mounts the dialogs service routes.
func NewRouter(h *Handler, instance string) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(authmw.RequestMeta(instance))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		httputil.WriteJSON(w, 200, map[string]string{"status": "ok"})
	})

	r.Post("/dialog/send", h.Send)
	r.Post("/dialog/list", h.List)

	return r
}

// Run starts the dialogs service: its own store pools and a small HTTP
// API consumed by the main server. Blocks until SIGINT/SIGTERM.
func Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	cluster, err := database.Connect(cfg)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer cluster.Close()

	router := NewRouter(NewHandler(NewStore(cluster)), cfg.SelfHostName)

	server := &http.Server{
		Addr:    cfg.DialogsHTTPServerAddress,
		Handler: router,
	}
	go func() {
		log.Printf("[Dialogs] Listening on %s", cfg.DialogsHTTPServerAddress)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("[Dialogs] Server failed: %v", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Println("[Dialogs] Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
