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

	"storefront-session/internal/config"
	"storefront-session/internal/credential"
	"storefront-session/internal/database"
	"storefront-session/internal/event"
	"storefront-session/internal/handler"
	"storefront-session/internal/middleware"
	"storefront-session/internal/repository"
	"storefront-session/internal/router"
	"storefront-session/internal/service"
	"storefront-session/internal/session"
	"storefront-session/internal/token"
	"storefront-session/internal/websocket"
)

type App struct {
	server       *http.Server
	cache        *session.Cache
	cleanupFuncs []func()
}

func New() (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	var cleanupFuncs []func()

	var users repository.UserStore
	if cfg.DatabaseURL != "" {
		slog.Info("connecting to PostgreSQL")
		db, err := database.New(context.Background(), cfg.DatabaseURL, int32(cfg.DBMaxConns), int32(cfg.DBMinConns))
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		if err := db.EnsureSchema(context.Background()); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to ensure database schema: %w", err)
		}
		users = repository.NewUserRepository(db.Pool)
		cleanupFuncs = append(cleanupFuncs, db.Close)
	} else {
		slog.Warn("DATABASE_URL not set; using in-memory user store")
		users = repository.NewMemoryRepository()
	}

	slot, slotCleanup, err := newSlot(cfg)
	if err != nil {
		runAll(cleanupFuncs)
		return nil, fmt.Errorf("failed to initialize token slot: %w", err)
	}
	if slotCleanup != nil {
		cleanupFuncs = append(cleanupFuncs, slotCleanup)
	}

	sessionService := service.NewSessionService(
		users,
		credential.NewStore(),
		token.NewCodec(cfg.JWTSecret),
		cfg.SessionTTL,
		cfg.ResetTTL,
	)

	bus := event.NewBus()
	hub := websocket.NewHub(bus)
	go hub.Run()

	cache := session.NewCache(sessionService, slot, bus, cfg.SessionTTL)
	gate := session.NewGate(cache)

	watcherCtx, watcherCancel := context.WithCancel(context.Background())
	cleanupFuncs = append(cleanupFuncs, watcherCancel)
	go session.NewWatcher(cache, slot, bus, cfg.WatcherPollInterval).Run(watcherCtx)

	authMiddleware := middleware.NewAuthMiddleware(sessionService)

	appRouter := router.New(cfg, authMiddleware, router.Handlers{
		Auth:    handler.NewAuthHandler(sessionService, cache, cfg.SessionTTL),
		Session: handler.NewSessionHandler(cache, gate),
		User:    handler.NewUserHandler(sessionService),
	}, hub)

	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      appRouter,
		ReadTimeout:  cfg.ServerReadTimeout,
		WriteTimeout: cfg.ServerWriteTimeout,
		IdleTimeout:  cfg.ServerIdleTimeout,
	}

	return &App{
		server:       server,
		cache:        cache,
		cleanupFuncs: cleanupFuncs,
	}, nil
}

func (a *App) Run() error {
	// Resolve any persisted session before serving traffic.
	initCtx, initCancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := a.cache.Initialize(initCtx); err != nil {
		slog.Warn("session cache initialization failed", "error", err)
	}
	initCancel()

	go func() {
		slog.Info("server starting", "addr", a.server.Addr)
		if serveErr := a.server.ListenAndServe(); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			slog.Error("server failed", "error", serveErr)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	err := a.server.Shutdown(ctx)
	runAll(a.cleanupFuncs)
	if err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}

	slog.Info("server stopped")
	return nil
}

func newSlot(cfg *config.Config) (session.Slot, func(), error) {
	switch cfg.SlotBackend {
	case "file":
		slot, err := session.NewFileSlot(cfg.SlotFile)
		if err != nil {
			return nil, nil, err
		}
		return slot, nil, nil
	case "redis":
		slot, err := session.NewRedisSlot(context.Background(), cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			return nil, nil, err
		}
		return slot, func() { _ = slot.Close() }, nil
	default:
		return session.NewMemorySlot(), nil, nil
	}
}

func runAll(funcs []func()) {
	for _, fn := range funcs {
		fn()
	}
}
