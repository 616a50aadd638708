package app

import (
	"context"
	"fmt"

	"todoTracker/internal/config"
	"todoTracker/internal/logger"
	"todoTracker/internal/repository/inmemory"
	"todoTracker/internal/repository/postgres"
	"todoTracker/internal/repository/sqlite"
	"todoTracker/internal/service"

	"go.uber.org/zap"
)

// OpenStorage connects the backend named by repository.type. Postgres migrations run
// first when database.migrate is set.
func OpenStorage(ctx context.Context, cfg *config.Config) (service.Storage, error) {
	logger.Info("Opening storage", zap.String("repository", cfg.Repository.Type))

	switch cfg.Repository.Type {
	case config.RepositoryPostgres:
		if cfg.Database.Migrate {
			if err := postgres.Migrate(cfg.Database.URL); err != nil {
				return nil, fmt.Errorf("migrate postgres: %w", err)
			}
		}
		storage, err := postgres.New(ctx, cfg.Database.URL, postgres.PoolConfig{
			MaxConns:    cfg.Database.MaxConnections,
			MinConns:    cfg.Database.MinConnections,
			MaxIdleTime: cfg.Database.IdleTimeout,
		})
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		return storage, nil

	case config.RepositorySQLite:
		storage, err := sqlite.New(cfg.SQLite.Path)
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		return storage, nil

	case config.RepositoryInMemory:
		return inmemory.NewStorage(), nil

	default:
		return nil, fmt.Errorf("unknown repository type %q", cfg.Repository.Type)
	}
}
