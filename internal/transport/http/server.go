package http

import (
	"context"
	"errors"
	"fmt"
	"log"
	stdhttp "net/http"
	"os/signal"
	"syscall"
	"time"

	"socialnet/internal/bus"
	"socialnet/internal/cache"
	"socialnet/internal/config"
	"socialnet/internal/database"
	"socialnet/internal/handler"
	"socialnet/internal/redis"
	"socialnet/internal/repository"
	"socialnet/internal/service"
	"socialnet/internal/worker"
	"socialnet/internal/ws"
)

// Run wires the whole process together: config, pools, bus, storage
// strategies, services, the API server, the realtime server and the
// materializer. It blocks until SIGINT/SIGTERM and unwinds in reverse
// order.
func Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 1. Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// 2. Authoritative store
	cluster, err := database.Connect(cfg)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer cluster.Close()

	// 3. Cache store
	redisClient, err := redis.NewClient(cfg.FeedCacheRedisURL)
	if err != nil {
		return fmt.Errorf("failed to build redis client: %w", err)
	}
	defer redisClient.Close()
	if err := redisClient.Ping(ctx); err != nil {
		return fmt.Errorf("failed to reach redis: %w", err)
	}

	// 4. Event bus
	eventBus, err := bus.Connect(cfg)
	if err != nil {
		return fmt.Errorf("failed to connect to rabbitmq: %w", err)
	}
	defer eventBus.Close()

	// 5. Repositories and storage strategies
	userRepo := repository.NewUserRepository(cluster)
	postRepo := repository.NewPostRepository(cluster)

	var friends repository.FriendStorage
	switch cfg.FriendStorage {
	case config.StorageRedis:
		friends = repository.NewRedisFriendStorage(redisClient.Client)
	default:
		friends = repository.NewPostgresFriendStorage(cluster)
	}

	var sessions repository.SessionStorage
	switch cfg.SessionStorage {
	case config.StorageRedis:
		sessions = repository.NewRedisSessionStorage(redisClient.Client)
	default:
		sessions = repository.NewPostgresSessionStorage(cluster)
	}
	log.Printf("[Server] Storage strategies: friends=%s sessions=%s", cfg.FriendStorage, cfg.SessionStorage)

	feedCache := cache.NewFeedCache(redisClient.Client)

	// 6. Services
	publisher := bus.NewAMQPPublisher(eventBus)
	authService := service.NewAuthService(userRepo, sessions, cfg)
	userService := service.NewUserService(userRepo)
	friendService := service.NewFriendService(friends, userRepo, feedCache)
	postService := service.NewPostService(postRepo, friends, publisher)
	feedService := service.NewFeedService(feedCache, postRepo, friends, cfg.OnePostPerUser)
	dialogService := service.NewDialogService(cfg.DialogsServiceURL)

	// 7. Materializer
	manager := worker.NewManager(eventBus, worker.NewHandler(feedCache, friends, cfg.OnePostPerUser))
	if err := manager.Start(ctx); err != nil {
		return fmt.Errorf("failed to start materializer: %w", err)
	}
	defer manager.Stop()

	// 8. Realtime fan-out
	hub := ws.NewHub(eventBus)
	go hub.RunWatchdog(ctx)
	defer hub.Shutdown()

	wsServer := &stdhttp.Server{
		Addr:    cfg.WSServerAddress,
		Handler: ws.NewServer(hub),
	}
	go func() {
		log.Printf("[Server] WS listening on %s", cfg.WSServerAddress)
		if err := wsServer.ListenAndServe(); err != nil && !errors.Is(err, stdhttp.ErrServerClosed) {
			log.Printf("[Server] WS server failed: %v", err)
			stop()
		}
	}()

	// 9. API server
	router := NewRouter(RouterConfig{
		AuthHandler:   handler.NewAuthHandler(authService),
		UserHandler:   handler.NewUserHandler(userService),
		FriendHandler: handler.NewFriendHandler(friendService),
		PostHandler:   handler.NewPostHandler(postService),
		FeedHandler:   handler.NewFeedHandler(feedService),
		DialogHandler: handler.NewDialogHandler(dialogService),
		Verifier:      authService,
		Instance:      cfg.SelfHostName,
	})

	apiServer := &stdhttp.Server{
		Addr:    cfg.HTTPServerAddress,
		Handler: router,
	}
	go func() {
		log.Printf("[Server] API listening on %s", cfg.HTTPServerAddress)
		if err := apiServer.ListenAndServe(); err != nil && !errors.Is(err, stdhttp.ErrServerClosed) {
			log.Printf("[Server] API server failed: %v", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Println("[Server] Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := apiServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("[Server] API shutdown: %v", err)
	}
	if err := wsServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("[Server] WS shutdown: %v", err)
	}

	return nil
}
