package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/roomloop/roomloop/internal/config"
	"github.com/roomloop/roomloop/internal/database"
	"github.com/roomloop/roomloop/internal/handlers"
	"github.com/roomloop/roomloop/internal/logging"
	"github.com/roomloop/roomloop/internal/middleware"
	"github.com/roomloop/roomloop/internal/services"
)

func main() {
	if err := run(); err != nil {
		logging.Error("Application error", map[string]interface{}{"error": err.Error()})
		os.Exit(1)
	}
}

func run() error {
	logger := logging.New()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger.Info("Starting RoomLoop server...")

	// Connect to PostgreSQL
	logger.Info("Connecting to PostgreSQL", map[string]interface{}{
		"host": cfg.Database.Host,
		"port": cfg.Database.Port,
	})
	db, err := database.NewPostgresDB(cfg.Database.DSN())
	if err != nil {
		return fmt.Errorf("connecting to postgres: %w", err)
	}
	defer db.Close()
	logger.Info("Connected to PostgreSQL")

	// Run migrations
	logger.Info("Running database migrations...")
	migrator, err := database.NewMigrator(cfg.Database.DSN(), "migrations")
	if err != nil {
		return fmt.Errorf("creating migrator: %w", err)
	}
	if err := migrator.Up(); err != nil {
		_ = migrator.Close()
		return fmt.Errorf("running migrations: %w", err)
	}
	_ = migrator.Close()
	logger.Info("Migrations completed")

	// Connect to Redis
	logger.Info("Connecting to Redis", map[string]interface{}{
		"addr": cfg.Redis.Addr(),
	})
	redisDB, err := database.NewRedisDB(cfg.Redis.Addr(), cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		return fmt.Errorf("connecting to redis: %w", err)
	}
	defer func() { _ = redisDB.Close() }()
	logger.Info("Connected to Redis")

	// Initialize services
	dbAdapter := services.NewPoolAdapter(db.Pool)

	sessionService := services.NewSessionService(redisDB.Client, dbAdapter)
	groupService := services.NewGroupService(dbAdapter)
	friendService := services.NewFriendService(dbAdapter)
	chatService := services.NewPairChatService(dbAdapter)
	matchService := services.NewMatchService(dbAdapter, chatService)

	notifier := services.NewNotifier(&cfg.Notify)
	inviteLimiter := services.NewRedisRateLimiter(redisDB.Client, cfg.Invite.DailyLimit, 24*time.Hour, "ratelimit:invite")
	inviteService := services.NewInviteService(dbAdapter, groupService, inviteLimiter, notifier, cfg.Invite.BaseURL, cfg.Invite.ExpiryDays)

	// Stop in-flight notification sends when the process shuts down.
	serverCtx, serverStop := context.WithCancel(context.Background())
	defer serverStop()
	inviteService.SetAsyncContext(serverCtx)

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler(db, redisDB)
	friendHandler := handlers.NewFriendHandler(friendService)
	matchHandler := handlers.NewMatchHandler(matchService)
	groupHandler := handlers.NewGroupHandler(groupService)
	inviteHandler := handlers.NewInviteHandler(inviteService)

	// Initialize middleware
	secure := cfg.Server.Environment == "production"
	authMiddleware := middleware.NewAuthMiddleware(sessionService)
	securityHeaders := middleware.NewSecurityHeaders(secure)
	requestLogger := middleware.NewRequestLogger(logger)
	apiLimiter := middleware.NewAPIRateLimiter(redisDB.Client)
	tokenLimiter := middleware.NewTokenRateLimiter(redisDB.Client)

	requireAuth := authMiddleware.RequireAuth

	// Set up router
	mux := http.NewServeMux()

	// Health endpoints (no auth, no rate limit)
	mux.HandleFunc("GET /health", healthHandler.Health)
	mux.HandleFunc("GET /ready", healthHandler.Ready)
	mux.HandleFunc("GET /live", healthHandler.Live)

	// Friend endpoints
	mux.Handle("GET /api/friends", requireAuth(http.HandlerFunc(friendHandler.List)))
	mux.Handle("POST /api/friends/requests", requireAuth(http.HandlerFunc(friendHandler.SendRequest)))
	mux.Handle("POST /api/friends/requests/{id}/accept", requireAuth(http.HandlerFunc(friendHandler.AcceptRequest)))
	mux.Handle("POST /api/friends/requests/{id}/decline", requireAuth(http.HandlerFunc(friendHandler.DeclineRequest)))
	mux.Handle("DELETE /api/friends/{id}", requireAuth(http.HandlerFunc(friendHandler.Remove)))

	// Swipe and match endpoints
	mux.Handle("POST /api/swipes", requireAuth(http.HandlerFunc(matchHandler.Swipe)))
	mux.Handle("DELETE /api/swipes/{targetID}", requireAuth(http.HandlerFunc(matchHandler.RemoveSwipe)))
	mux.Handle("GET /api/matches", requireAuth(http.HandlerFunc(matchHandler.ListMatches)))

	// Group endpoints
	mux.Handle("POST /api/groups", requireAuth(http.HandlerFunc(groupHandler.Create)))
	mux.Handle("GET /api/groups", requireAuth(http.HandlerFunc(groupHandler.List)))
	mux.Handle("GET /api/groups/{id}", requireAuth(http.HandlerFunc(groupHandler.Get)))
	mux.Handle("GET /api/groups/{id}/members", requireAuth(http.HandlerFunc(groupHandler.ListMembers)))

	// Invite endpoints. Validation is unauthenticated (the invitee may have
	// no account yet) but sits behind the stricter token limiter.
	mux.Handle("POST /api/invites", requireAuth(http.HandlerFunc(inviteHandler.Create)))
	mux.Handle("GET /api/invites/validate", tokenLimiter.Limit(http.HandlerFunc(inviteHandler.Validate)))
	mux.Handle("POST /api/invites/accept", requireAuth(http.HandlerFunc(inviteHandler.Accept)))

	// Build middleware chain (order matters: outermost first)
	var handler http.Handler = mux
	handler = authMiddleware.Authenticate(handler)
	handler = apiLimiter.Limit(handler)
	handler = securityHeaders.Apply(handler)
	handler = requestLogger.Apply(handler)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	done := make(chan bool, 1)
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		logger.Info("Server is shutting down...")
		serverStop()

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		server.SetKeepAlivesEnabled(false)
		if err := server.Shutdown(ctx); err != nil {
			logger.Error("Could not gracefully shutdown the server", map[string]interface{}{
				"error": err.Error(),
			})
		}
		close(done)
	}()

	logger.Info("Server listening", map[string]interface{}{
		"addr": addr,
	})
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}

	<-done
	logger.Info("Server stopped")
	return nil
}
