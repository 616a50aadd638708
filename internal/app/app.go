package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"todoTracker/internal/auth"
	"todoTracker/internal/config"
	"todoTracker/internal/handlers"
	"todoTracker/internal/logger"
	"todoTracker/internal/service"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type App struct {
	config    *config.Config
	server    *http.Server
	storage   service.Storage
	shutdowns []func(context.Context) error

	// telemetryOut receives stdout exporter output.
	telemetryOut io.Writer
}

func New(cfg *config.Config) *App {
	return &App{
		config:       cfg,
		shutdowns:    make([]func(context.Context) error, 0),
		telemetryOut: os.Stdout,
	}
}

// Init builds every component. Shutdown hooks are registered in start order and run in reverse.
func (a *App) Init(ctx context.Context) error {
	if err := logger.Init(a.config.Logging.Development); err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	a.shutdowns = append(a.shutdowns, func(context.Context) error {
		logger.Info("Shutting down logging...")
		logger.Sync()
		return nil
	})

	shutdownTelemetry, err := initTelemetry(ctx, a.config.Telemetry, a.telemetryOut)
	if err != nil {
		return fmt.Errorf("init telemetry: %w", err)
	}
	a.shutdowns = append(a.shutdowns, func(ctx context.Context) error {
		logger.Info("Flushing telemetry...")
		return shutdownTelemetry(ctx)
	})

	storage, err := OpenStorage(ctx, a.config)
	if err != nil {
		return err
	}
	a.storage = storage
	a.shutdowns = append(a.shutdowns, func(context.Context) error {
		logger.Info("Closing storage...")
		storage.Close()
		return nil
	})

	hasher := auth.NewPasswordHasher(a.config.Auth.BcryptCost)
	tokens := auth.NewTokenManager(auth.TokenConfig{
		Secret:    a.config.Auth.Secret,
		Issuer:    a.config.Auth.Issuer,
		AccessTTL: a.config.Auth.AccessTokenTTL,
	})

	router := handlers.NewRouter(handlers.Handlers{
		Todos:      handlers.NewTodoHandler(service.NewTodoService(storage, storage)),
		Categories: handlers.NewCategoryHandler(service.NewCategoryService(storage)),
		Users: handlers.NewUserHandler(
			service.NewUserService(storage, hasher),
			service.NewTokenService(storage, hasher, tokens),
		),
		Health: handlers.NewHealthHandler(storage),
	}, tokens, handlers.RouterConfig{
		AllowedOrigins:    a.config.CORS.AllowedOrigins,
		RequestsPerMinute: a.config.RateLimit.RequestsPerMinute,
	})

	a.server = &http.Server{
		Addr:              a.config.GetServerAddr(),
		Handler:           router,
		ReadHeaderTimeout: a.config.Server.ReadTimeout,
		ReadTimeout:       a.config.Server.ReadTimeout,
		WriteTimeout:      a.config.Server.WriteTimeout,
	}
	a.shutdowns = append(a.shutdowns, func(ctx context.Context) error {
		logger.Info("Stopping HTTP server...")
		return a.server.Shutdown(ctx)
	})

	return nil
}

// Run serves until ctx is cancelled, then shuts everything down.
func (a *App) Run(ctx context.Context) error {
	if a.server == nil {
		return errors.New("app is not initialised")
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("Server started",
			zap.String("addr", a.server.Addr),
			zap.String("repository", a.config.Repository.Type))
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve http: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.shutdownTimeout())
		defer cancel()
		return a.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// Shutdown runs the registered hooks in reverse order and reports every failure.
func (a *App) Shutdown(ctx context.Context) error {
	var err error
	for i := len(a.shutdowns) - 1; i >= 0; i-- {
		err = multierr.Append(err, a.shutdowns[i](ctx))
	}
	a.shutdowns = nil

	if err != nil {
		logger.Error("Shutdown finished with errors", err)
	} else {
		logger.Info("Shutdown complete")
	}
	return err
}

func (a *App) Handler() http.Handler {
	if a.server == nil {
		return nil
	}
	return a.server.Handler
}

func (a *App) shutdownTimeout() time.Duration {
	if a.config.Server.ShutdownTimeout > 0 {
		return a.config.Server.ShutdownTimeout
	}
	return 15 * time.Second
}
