package handlers

import (
	"context"

	"todoTracker/internal/auth"
	"todoTracker/internal/models/category"
	"todoTracker/internal/models/todo"
	"todoTracker/internal/models/user"
	"todoTracker/internal/service"

	"github.com/google/uuid"
)

type TodoService interface {
	ListTodos(ctx context.Context, userID uuid.UUID, p service.ListParams) (*service.ListResult, error)
	GetTodo(ctx context.Context, userID, id uuid.UUID) (*todo.Todo, error)
	CreateTodo(ctx context.Context, userID uuid.UUID, in service.TodoInput) (*todo.Todo, error)
	UpdateTodo(ctx context.Context, userID, id uuid.UUID, in service.TodoInput) (*todo.Todo, error)
	DeleteTodo(ctx context.Context, userID, id uuid.UUID) error
	PurgeTodo(ctx context.Context, userID, id uuid.UUID) error
	IncludeCategories(ctx context.Context, userID uuid.UUID, todos []*todo.Todo) ([]*category.Category, error)
}

type CategoryService interface {
	ListCategories(ctx context.Context, userID uuid.UUID) ([]*category.Category, error)
	GetCategory(ctx context.Context, userID, id uuid.UUID) (*category.Category, error)
	CreateCategory(ctx context.Context, userID uuid.UUID, in service.CategoryInput) (*category.Category, error)
	UpdateCategory(ctx context.Context, userID, id uuid.UUID, in service.CategoryInput) (*category.Category, error)
	DeleteCategory(ctx context.Context, userID, id uuid.UUID) error
}

type UserService interface {
	SignUp(ctx context.Context, in service.UserInput) (*user.User, error)
}

type TokenService interface {
	IssueToken(ctx context.Context, email, password string) (*auth.Token, error)
}

type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

var (
	_ TodoService     = (*service.TodoService)(nil)
	_ CategoryService = (*service.CategoryService)(nil)
	_ UserService     = (*service.UserService)(nil)
	_ TokenService    = (*service.TokenService)(nil)
)
