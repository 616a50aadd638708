package main

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"todoTracker/internal/auth"
	"todoTracker/internal/query"
	"todoTracker/internal/repository/inmemory"
	"todoTracker/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSeeder(store *inmemory.Storage, now time.Time) *seeder {
	hasher := auth.NewPasswordHasher(4)
	return &seeder{
		users:      service.NewUserService(store, hasher),
		categories: service.NewCategoryService(store),
		todos:      service.NewTodoService(store, store, service.WithClock(func() time.Time { return now })),
		now:        now,
	}
}

func TestDefaultFixture(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	store := inmemory.NewStorage()
	s := newTestSeeder(store, now)

	f, err := parseFixture(bytes.NewReader(defaultFixture))
	require.NoError(t, err)

	stats, err := s.seed(ctx, f)
	require.NoError(t, err)
	assert.Equal(t, seedStats{Users: 1, Categories: 2, Todos: 109}, stats)

	u, err := store.GetUserByEmail(ctx, "example@example.com")
	require.NoError(t, err)

	count := func(statuses ...string) int {
		n, err := store.CountTodos(ctx, query.Build(u.ID, query.Params{Statuses: statuses}, now))
		require.NoError(t, err)
		return n
	}
	assert.Equal(t, 52, count("completed"))
	assert.Equal(t, 52, count("deleted"))
	assert.Equal(t, 3, count("available"))
	assert.Equal(t, 1, count("tomorrow"))
	assert.Equal(t, 2, count("future"))

	again, err := s.seed(ctx, f)
	require.NoError(t, err)
	assert.Equal(t, seedStats{Skipped: 1}, again)
}

func TestParseFixture_RejectsUnknownFields(t *testing.T) {
	_, err := parseFixture(strings.NewReader("users:\n  - email: a@b.c\n    colour: red\n"))
	assert.Error(t, err)
}

func TestSeed_UnknownCategory(t *testing.T) {
	f, err := parseFixture(strings.NewReader(`
users:
  - email: a@example.com
    password: pw
    todos:
      - name: orphan
        category: Missing
`))
	require.NoError(t, err)

	_, err = newTestSeeder(inmemory.NewStorage(), time.Now()).seed(context.Background(), f)
	assert.ErrorContains(t, err, "unknown category")
}
