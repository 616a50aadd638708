package service

import (
	"context"

	"todoTracker/internal/models/category"
	"todoTracker/internal/models/todo"
	"todoTracker/internal/models/user"
	"todoTracker/internal/query"

	"github.com/google/uuid"
)

// Every todo and category method is scoped by the owner's id; a record owned by someone
// else is reported as repository.ErrNotFound.

type TodoRepository interface {
	CreateTodo(ctx context.Context, t *todo.Todo) error
	GetTodo(ctx context.Context, userID, id uuid.UUID) (*todo.Todo, error)
	UpdateTodo(ctx context.Context, t *todo.Todo) error
	DeleteTodo(ctx context.Context, userID, id uuid.UUID) error
	FindTodos(ctx context.Context, q query.TodoQuery) ([]*todo.Todo, error)
	CountTodos(ctx context.Context, q query.TodoQuery) (int, error)
}

type CategoryRepository interface {
	CreateCategory(ctx context.Context, c *category.Category) error
	GetCategory(ctx context.Context, userID, id uuid.UUID) (*category.Category, error)
	GetCategoriesByIDs(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) ([]*category.Category, error)
	ListCategories(ctx context.Context, userID uuid.UUID) ([]*category.Category, error)
	// AppendCategory inserts c after the owner's last category and sets c.SortOrder.
	// Concurrent appends for one owner get distinct positions.
	AppendCategory(ctx context.Context, c *category.Category) error
	UpdateCategory(ctx context.Context, c *category.Category) error
	// DeleteCategory removes the row and clears the reference on the owner's todos.
	DeleteCategory(ctx context.Context, userID, id uuid.UUID) error
}

type UserRepository interface {
	CreateUser(ctx context.Context, u *user.User) error
	GetUserByID(ctx context.Context, id uuid.UUID) (*user.User, error)
	GetUserByEmail(ctx context.Context, email string) (*user.User, error)
}

type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

type Storage interface {
	TodoRepository
	CategoryRepository
	UserRepository
	HealthChecker
	Close()
}
