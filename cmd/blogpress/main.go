// Package main is the entry point for the blogpress server.
// It loads configuration, connects to services, sets up routing, and starts
// the HTTP server with graceful shutdown support.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"blogpress/internal/cache"
	"blogpress/internal/config"
	"blogpress/internal/database"
	"blogpress/internal/handlers"
	"blogpress/internal/middleware"
	"blogpress/internal/render"
	"blogpress/internal/router"
	"blogpress/internal/session"
	"blogpress/internal/storage"
	"blogpress/internal/store"
)

const (
	// authRateLimit is how many login or signup submissions one client may
	// make per authRateWindow.
	authRateLimit  = 10
	authRateWindow = time.Minute
)

func main() {
	// Load configuration from environment variables and .env.
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Structured logger: text in development, JSON elsewhere.
	slog.SetDefault(cfg.Logger())

	slog.Info("configuration loaded",
		"env", cfg.Env,
		"addr", cfg.Addr(),
	)

	// Connect to PostgreSQL.
	db, err := database.Connect(cfg.DSN())
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	// Run pending migrations.
	if err := database.Migrate(db); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	// Seed development data (no-op if data already exists).
	if cfg.IsDev() {
		if err := database.Seed(db); err != nil {
			slog.Error("failed to seed database", "error", err)
			os.Exit(1)
		}
	}

	// Connect to Valkey (sessions and rendered post bodies).
	valkeyClient, err := cache.ConnectValkey(cfg.ValkeyHost, cfg.ValkeyPort, cfg.ValkeyPassword)
	if err != nil {
		slog.Error("failed to connect to valkey", "error", err)
		os.Exit(1)
	}
	defer valkeyClient.Close()

	// In non-development environments, mark cookies as Secure (HTTPS-only).
	secureCookies := !cfg.IsDev()
	sessionStore := session.NewStore(valkeyClient, secureCookies)

	renderer, err := render.New()
	if err != nil {
		slog.Error("failed to initialize template renderer", "error", err)
		os.Exit(1)
	}

	// Initialize data stores.
	userStore := store.NewUserStore(db)
	postStore := store.NewPostStore(db)
	categoryStore := store.NewCategoryStore(db)
	tagStore := store.NewTagStore(db)
	commentStore := store.NewCommentStore(db)

	// Connect to S3-compatible object storage (optional; the blog works
	// without uploads).
	var storageClient *storage.Client
	mediaOrigin := ""
	if cfg.StorageEnabled() {
		storageClient, err = storage.New(
			cfg.S3Endpoint, cfg.S3Region, cfg.S3AccessKey, cfg.S3SecretKey,
			cfg.S3Bucket, cfg.S3PublicURL,
		)
		if err != nil {
			slog.Error("failed to initialize S3 storage", "error", err)
			os.Exit(1)
		}
		mediaOrigin = storageClient.Origin()
		slog.Info("s3 storage connected",
			"endpoint", cfg.S3Endpoint,
			"bucket", cfg.S3Bucket,
		)
	} else {
		slog.Warn("s3 storage not configured, uploads disabled")
	}

	bodyCache := cache.NewBodyCache(valkeyClient, cache.DefaultBodyTTL)

	// Create handler groups with their dependencies.
	blogHandlers := handlers.NewBlog(renderer, postStore, categoryStore, tagStore, commentStore, bodyCache, storageClient)
	authHandlers := handlers.NewAuth(renderer, sessionStore, userStore)

	authLimiter := middleware.NewRateLimiter(authRateLimit, authRateWindow)
	defer authLimiter.Stop()

	r := router.New(sessionStore, blogHandlers, authHandlers, router.Options{
		SecureCookies: secureCookies,
		MediaOrigin:   mediaOrigin,
		AuthLimiter:   authLimiter,
	})

	// WriteTimeout covers uploads to object storage during post saves.
	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Start the server in a goroutine so we can listen for shutdown signals.
	go func() {
		slog.Info("server starting", "addr", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown: wait for SIGINT or SIGTERM, then drain connections.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	slog.Info("shutdown signal received", "signal", sig)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped gracefully")
}
