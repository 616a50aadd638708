package main

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"io"
	"os"
	"time"

	"todoTracker/internal/app"
	"todoTracker/internal/auth"
	"todoTracker/internal/config"
	"todoTracker/internal/logger"
	"todoTracker/internal/service"

	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

//go:embed seeds.yml
var defaultFixture []byte

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	flags := pflag.NewFlagSet("todo-seed", pflag.ContinueOnError)
	config.RegisterFlags(flags)
	fixturePath := flags.StringP("fixture", "f", "", "YAML fixture to load (defaults to the built-in one)")
	if err := flags.Parse(os.Args[1:]); err != nil {
		return err
	}

	cfg, err := config.Load(flags)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := logger.Init(cfg.Logging.Development); err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Sync()

	f, err := readFixture(*fixturePath)
	if err != nil {
		return err
	}

	ctx := context.Background()
	storage, err := app.OpenStorage(ctx, cfg)
	if err != nil {
		return err
	}
	defer storage.Close()

	hasher := auth.NewPasswordHasher(cfg.Auth.BcryptCost)
	s := &seeder{
		users:      service.NewUserService(storage, hasher),
		categories: service.NewCategoryService(storage),
		todos:      service.NewTodoService(storage, storage),
		now:        time.Now().UTC(),
	}

	stats, err := s.seed(ctx, f)
	if err != nil {
		return err
	}

	logger.Info("Seed complete",
		zap.Int("users", stats.Users),
		zap.Int("categories", stats.Categories),
		zap.Int("todos", stats.Todos),
		zap.Int("skipped_users", stats.Skipped))
	return nil
}

func readFixture(path string) (*fixture, error) {
	var r io.Reader = bytes.NewReader(defaultFixture)
	if path != "" {
		file, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open fixture: %w", err)
		}
		defer file.Close()
		r = file
	}
	return parseFixture(r)
}
