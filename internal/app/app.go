package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"course-manager/internal/auth"
	"course-manager/internal/cache"
	"course-manager/internal/config"
	"course-manager/internal/database"
	"course-manager/internal/handler"
	"course-manager/internal/middleware"
	"course-manager/internal/repository"
	"course-manager/internal/router"
	"course-manager/internal/service"
)

const shutdownTimeout = 10 * time.Second

type App struct {
	server       *http.Server
	cleanupFuncs []func()
}

type stores struct {
	users   service.UserStore
	courses service.CourseStore
}

func New(cfg *config.Config) (*App, error) {
	ctx := context.Background()
	a := &App{}

	st, checks, err := a.openStores(ctx, cfg)
	if err != nil {
		a.cleanup()
		return nil, err
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	a.cleanupFuncs = append(a.cleanupFuncs, func() { _ = redisClient.Close() })

	// Reads fall back to the store while Redis is down, so this is not fatal.
	if err := redisClient.Ping(ctx).Err(); err != nil {
		slog.Warn("redis unreachable, cache disabled until it recovers", "addr", cfg.RedisAddr, "error", err)
	} else {
		slog.Info("redis connected", "addr", cfg.RedisAddr)
	}
	redisCache := cache.NewRedisCache(redisClient, cfg.CachePrefix, cfg.CacheTTL)
	checks["cache"] = redisCache

	tokens, err := auth.NewTokenIssuer(cfg.SecretKey, cfg.JWTAccessTTL)
	if err != nil {
		a.cleanup()
		return nil, fmt.Errorf("failed to initialize token issuer: %w", err)
	}
	hasher := auth.NewPasswordHasher(cfg.BcryptCost)

	authService := service.NewAuthService(st.users, tokens, hasher, redisCache)
	userService := service.NewUserService(st.users, hasher, redisCache)
	courseService := service.NewCourseService(st.courses, redisCache)

	appRouter := router.New(cfg, middleware.NewAuthMiddleware(authService), router.Handlers{
		Auth: handler.NewAuthHandler(authService, handler.CookieOptions{
			Secure:       cfg.CookieSecure,
			AccessMaxAge: cfg.JWTAccessTTL,
		}),
		User:   handler.NewUserHandler(userService, cfg.CookieSecure),
		Course: handler.NewCourseHandler(courseService),
		Health: handler.NewHealthHandler(checks),
	})

	a.server = &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           appRouter,
		ReadHeaderTimeout: cfg.ServerReadHeaderTimeout,
		WriteTimeout:      cfg.ServerWriteTimeout,
		IdleTimeout:       cfg.ServerIdleTimeout,
	}

	return a, nil
}

func (a *App) openStores(ctx context.Context, cfg *config.Config) (stores, map[string]handler.Pinger, error) {
	checks := map[string]handler.Pinger{}

	if cfg.StoreDriver == config.StoreDriverMemory {
		slog.Warn("using in-memory store, data is lost on restart")
		return stores{
			users:   repository.NewMemoryUserRepository(),
			courses: repository.NewMemoryCourseRepository(),
		}, checks, nil
	}

	slog.Info("connecting to PostgreSQL")
	db, err := database.New(ctx, database.Options{
		URL:      cfg.DatabaseURL,
		MaxConns: cfg.DBMaxConns,
		MinConns: cfg.DBMinConns,
	})
	if err != nil {
		return stores{}, nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	a.cleanupFuncs = append(a.cleanupFuncs, db.Close)

	if err := db.EnsureSchema(ctx); err != nil {
		return stores{}, nil, fmt.Errorf("failed to ensure database schema: %w", err)
	}
	slog.Info("database ready")

	checks["database"] = db
	return stores{
		users:   repository.NewUserRepository(db.Pool),
		courses: repository.NewCourseRepository(db.Pool),
	}, checks, nil
}

func (a *App) Run() error {
	serveErr := make(chan error, 1)
	go func() {
		slog.Info("server starting", "addr", a.server.Addr)
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(stop)

	select {
	case err := <-serveErr:
		a.cleanup()
		return fmt.Errorf("server failed: %w", err)
	case sig := <-stop:
		slog.Info("shutdown signal received", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	err := a.server.Shutdown(ctx)
	a.cleanup()
	if err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}

	slog.Info("server stopped")
	return nil
}

// cleanup releases resources in reverse order of acquisition.
func (a *App) cleanup() {
	for i := len(a.cleanupFuncs) - 1; i >= 0; i-- {
		a.cleanupFuncs[i]()
	}
	a.cleanupFuncs = nil
}
