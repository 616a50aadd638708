package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"todoTracker/internal/logger"
	repo "todoTracker/internal/repository"

	"github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// driverName is go-sqlite3 with lower() replaced by a Unicode-aware version.
// The built-in only folds ASCII, so search would miss names like "École".
const driverName = "sqlite3_unicode"

func init() {
	sql.Register(driverName, &sqlite3.SQLiteDriver{
		ConnectHook: func(conn *sqlite3.SQLiteConn) error {
			return conn.RegisterFunc("lower", strings.ToLower, true)
		},
	})
}

type Storage struct {
	db *gorm.DB
}

// New opens the database file at dsn and migrates the schema.
// ":memory:" is accepted for tests.
func New(dsn string) (*Storage, error) {
	if dsn == "" {
		dsn = "todo_tracker.db"
	}
	if err := ensureDir(dsn); err != nil {
		return nil, err
	}

	dbLogger := gormlogger.New(
		zap.NewStdLog(logger.Logger),
		gormlogger.Config{
			SlowThreshold:             100 * time.Millisecond,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	db, err := gorm.Open(sqlite.New(sqlite.Config{
		DriverName: driverName,
		DSN:        withForeignKeys(dsn),
	}), &gorm.Config{
		Logger:         dbLogger,
		TranslateError: true,
		NowFunc:        func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		logger.Error("Repository: failed to open SQLite", err)
		return nil, fmt.Errorf("open db: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("sql db: %w", err)
	}
	// every connection to ":memory:" is its own database
	sqlDB.SetMaxOpenConns(1)

	if err := db.Exec("PRAGMA foreign_keys = ON").Error; err != nil {
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	if err := db.AutoMigrate(&userRow{}, &categoryRow{}, &todoRow{}); err != nil {
		logger.Error("Repository: failed to migrate SQLite", err)
		return nil, fmt.Errorf("migrate db: %w", err)
	}

	logger.Info("Repository: SQLite ready", zap.String("dsn", dsn))
	return &Storage{db: db}, nil
}

func (s *Storage) HealthCheck(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("sql db: %w", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		logger.Error("Repository: ping failed", err)
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

func (s *Storage) Close() {
	sqlDB, err := s.db.DB()
	if err != nil {
		return
	}
	if err := sqlDB.Close(); err != nil {
		logger.Warn("Repository: closing SQLite", zap.Error(err))
		return
	}
	logger.Info("Repository: SQLite closed")
}

func withForeignKeys(dsn string) string {
	if strings.Contains(dsn, "_foreign_keys") || strings.Contains(dsn, "_fk=") {
		return dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + "_foreign_keys=on"
}

// ensureDir creates the parent directory of a file DSN.
func ensureDir(dsn string) error {
	if strings.Contains(dsn, ":memory:") || strings.Contains(dsn, "mode=memory") {
		return nil
	}
	clean := strings.TrimPrefix(dsn, "file:")
	clean = strings.Split(clean, "?")[0]
	dir := filepath.Dir(clean)
	if dir == "." || dir == "" {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create db dir %q: %w", dir, err)
	}
	return nil
}

func mapError(op string, err error) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return repo.ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey), errors.Is(err, gorm.ErrForeignKeyViolated):
		return fmt.Errorf("%s: %w: %v", op, repo.ErrConstraint, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}
