package inmemory

import (
	"context"
	"sync"

	"todoTracker/internal/logger"
	"todoTracker/internal/models/category"
	"todoTracker/internal/models/todo"
	"todoTracker/internal/models/user"

	"github.com/google/uuid"
)

// Storage keeps everything in maps; the id slices remember insertion order.
type Storage struct {
	mtx *sync.RWMutex

	todos   map[uuid.UUID]*todo.Todo
	todoIDs []uuid.UUID

	categories  map[uuid.UUID]*category.Category
	categoryIDs []uuid.UUID

	users   map[uuid.UUID]*user.User
	byEmail map[string]uuid.UUID
}

func NewStorage() *Storage {
	return &Storage{
		mtx:        &sync.RWMutex{},
		todos:      make(map[uuid.UUID]*todo.Todo),
		todoIDs:    []uuid.UUID{},
		categories: make(map[uuid.UUID]*category.Category),
		users:      make(map[uuid.UUID]*user.User),
		byEmail:    make(map[string]uuid.UUID),
	}
}

func (s *Storage) HealthCheck(ctx context.Context) error {
	logger.Info("Repository: in-memory storage is healthy")
	return nil
}

func (s *Storage) Close() {}

func removeID(ids []uuid.UUID, id uuid.UUID) []uuid.UUID {
	for i, v := range ids {
		if v == id {
			return append(ids[:i], ids[i+1:]...)
		}
	}
	return ids
}
