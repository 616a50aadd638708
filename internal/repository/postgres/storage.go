package postgres

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"strings"
	"time"

	"todoTracker/internal/logger"
	repo "todoTracker/internal/repository"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

//go:embed migrations/*.sql
var migrations embed.FS

const slowQuery = 100 * time.Millisecond

type PoolConfig struct {
	MaxConns    int32
	MinConns    int32
	MaxIdleTime time.Duration
}

type Storage struct {
	pool *pgxpool.Pool
}

func New(ctx context.Context, connString string, poolCfg PoolConfig) (*Storage, error) {
	config, err := pgxpool.ParseConfig(connString)
	if err != nil {
		logger.Error("Repository: failed to parse database config", err)
		return nil, fmt.Errorf("parse config: %w", err)
	}

	config.MaxConns = 10
	config.MinConns = 2
	config.MaxConnIdleTime = 5 * time.Minute
	if poolCfg.MaxConns > 0 {
		config.MaxConns = poolCfg.MaxConns
	}
	if poolCfg.MinConns > 0 {
		config.MinConns = poolCfg.MinConns
	}
	if poolCfg.MaxIdleTime > 0 {
		config.MaxConnIdleTime = poolCfg.MaxIdleTime
	}
	config.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		_, err := conn.Exec(ctx, "SET TIMEZONE='UTC'")
		return err
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		logger.Error("Repository: failed to create pool", err)
		return nil, fmt.Errorf("create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		logger.Error("Repository: ping failed", err)
		return nil, fmt.Errorf("ping: %w", err)
	}

	logger.Info("Repository: connected to PostgreSQL")
	return &Storage{pool: pool}, nil
}

func (s *Storage) Close() {
	s.pool.Close()
	logger.Info("Repository: PostgreSQL connections closed")
}

func (s *Storage) HealthCheck(ctx context.Context) error {
	if err := s.pool.Ping(ctx); err != nil {
		logger.Error("Repository: ping failed", err)
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// Migrate applies the embedded migrations.
func Migrate(connString string) error {
	logger.Info("Repository: applying migrations")

	src, err := iofs.New(migrations, "migrations")
	if err != nil {
		return fmt.Errorf("open migrations: %w", err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", src, migrateURL(connString))
	if err != nil {
		return fmt.Errorf("init migrate: %w", err)
	}
	defer func() {
		srcErr, dbErr := m.Close()
		if srcErr != nil || dbErr != nil {
			logger.Warn("Repository: closing migrator", zap.NamedError("source", srcErr), zap.NamedError("database", dbErr))
		}
	}()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migrate up: %w", err)
	}

	logger.Info("Repository: migrations applied")
	return nil
}

// migrateURL switches a postgres:// DSN to the scheme of the pgx/v5 migrate driver.
func migrateURL(connString string) string {
	for _, prefix := range []string{"postgres://", "postgresql://"} {
		if strings.HasPrefix(connString, prefix) {
			return "pgx5://" + strings.TrimPrefix(connString, prefix)
		}
	}
	return connString
}

// mapError converts driver errors into repository sentinels.
func mapError(op string, err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return repo.ErrNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case pgErr.Code == "23505" && strings.Contains(pgErr.ConstraintName, "email"):
			return repo.ErrEmailTaken
		case strings.HasPrefix(pgErr.Code, "23"):
			return fmt.Errorf("%s: %w: %s", op, repo.ErrConstraint, pgErr.Message)
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}

func warnIfSlow(op string, start time.Time) {
	if d := time.Since(start); d > slowQuery {
		logger.Warn("Repository: slow query", zap.String("operation", op), zap.Duration("ms", d))
	}
}
