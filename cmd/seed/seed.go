package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"todoTracker/internal/logger"
	"todoTracker/internal/service"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

type fixture struct {
	Users []userFixture `yaml:"users"`
}

type userFixture struct {
	Email      string             `yaml:"email"`
	Password   string             `yaml:"password"`
	Categories []categoryFixture  `yaml:"categories"`
	Todos      []todoFixture      `yaml:"todos"`
	Generated  []generatedFixture `yaml:"generated"`
}

type categoryFixture struct {
	Name      string `yaml:"name"`
	SortOrder *int   `yaml:"sort_order"`
}

// todoFixture timestamps are offsets from now.
type todoFixture struct {
	Name          string         `yaml:"name"`
	Notes         *string        `yaml:"notes"`
	Category      string         `yaml:"category"`
	CompletedAt   *time.Duration `yaml:"completed_at"`
	DeletedAt     *time.Duration `yaml:"deleted_at"`
	DeferredUntil *time.Duration `yaml:"deferred_until"`
}

// generatedFixture creates Count todos named "<Prefix> <i>" whose status timestamp is
// i*Step in the past.
type generatedFixture struct {
	Prefix string        `yaml:"prefix"`
	Count  int           `yaml:"count"`
	Status string        `yaml:"status"`
	Step   time.Duration `yaml:"step"`
}

func parseFixture(r io.Reader) (*fixture, error) {
	var f fixture
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(&f); err != nil {
		return nil, fmt.Errorf("parse fixture: %w", err)
	}
	return &f, nil
}

type seeder struct {
	users      *service.UserService
	categories *service.CategoryService
	todos      *service.TodoService
	now        time.Time
}

type seedStats struct {
	Users      int
	Categories int
	Todos      int
	Skipped    int
}

func (s *seeder) seed(ctx context.Context, f *fixture) (seedStats, error) {
	var stats seedStats

	for _, uf := range f.Users {
		u, err := s.users.SignUp(ctx, service.UserInput{
			Email:    service.Some(uf.Email),
			Password: service.Some(uf.Password),
		})
		if err != nil {
			if busErr, ok := service.AsBusinessError(err); ok && busErr.Code == service.CodeValidationFailed {
				logger.Warn("Seed: user skipped", zap.String("email", uf.Email), zap.Error(err))
				stats.Skipped++
				continue
			}
			return stats, fmt.Errorf("create user %s: %w", uf.Email, err)
		}
		stats.Users++

		categoryIDs := make(map[string]uuid.UUID, len(uf.Categories))
		for _, cf := range uf.Categories {
			in := service.CategoryInput{Name: service.Some(cf.Name)}
			if cf.SortOrder != nil {
				in.SortOrder = service.Some(*cf.SortOrder)
			}
			c, err := s.categories.CreateCategory(ctx, u.ID, in)
			if err != nil {
				return stats, fmt.Errorf("create category %s: %w", cf.Name, err)
			}
			categoryIDs[cf.Name] = c.ID
			stats.Categories++
		}

		todos, err := s.todoInputs(uf, categoryIDs)
		if err != nil {
			return stats, err
		}
		for _, in := range todos {
			if _, err := s.todos.CreateTodo(ctx, u.ID, in); err != nil {
				return stats, fmt.Errorf("create todo %s: %w", in.Name.Value, err)
			}
			stats.Todos++
		}

		logger.Info("Seed: user loaded",
			zap.String("email", u.Email),
			zap.Int("categories", len(categoryIDs)),
			zap.Int("todos", len(todos)))
	}

	return stats, nil
}

func (s *seeder) todoInputs(uf userFixture, categoryIDs map[string]uuid.UUID) ([]service.TodoInput, error) {
	res := make([]service.TodoInput, 0, len(uf.Todos))

	for _, tf := range uf.Todos {
		in := service.TodoInput{
			Name:          service.Some(tf.Name),
			CompletedAt:   s.at(tf.CompletedAt),
			DeletedAt:     s.at(tf.DeletedAt),
			DeferredUntil: s.at(tf.DeferredUntil),
		}
		if tf.Notes != nil {
			in.Notes = service.Some(*tf.Notes)
		}
		if tf.Category != "" {
			id, ok := categoryIDs[tf.Category]
			if !ok {
				return nil, fmt.Errorf("todo %q: unknown category %q", tf.Name, tf.Category)
			}
			in.Category = service.Some(id)
		}
		res = append(res, in)
	}

	for _, g := range uf.Generated {
		for i := 0; i < g.Count; i++ {
			offset := -time.Duration(i) * g.Step
			in := service.TodoInput{Name: service.Some(fmt.Sprintf("%s %d", g.Prefix, i))}
			switch g.Status {
			case "completed":
				in.CompletedAt = s.at(&offset)
			case "deleted":
				in.DeletedAt = s.at(&offset)
			default:
				return nil, fmt.Errorf("generated %q: unsupported status %q", g.Prefix, g.Status)
			}
			res = append(res, in)
		}
	}

	return res, nil
}

func (s *seeder) at(offset *time.Duration) service.Optional[time.Time] {
	if offset == nil {
		return service.Optional[time.Time]{}
	}
	return service.Some(s.now.Add(*offset))
}
