package service_test

import (
	"context"

	"todoTracker/internal/auth"
	"todoTracker/internal/models/category"
	"todoTracker/internal/models/todo"
	"todoTracker/internal/models/user"
	"todoTracker/internal/query"
	"todoTracker/internal/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type MockTodoRepository struct {
	mock.Mock
}

func (m *MockTodoRepository) CreateTodo(ctx context.Context, t *todo.Todo) error {
	args := m.Called(ctx, t)
	return args.Error(0)
}

func (m *MockTodoRepository) GetTodo(ctx context.Context, userID, id uuid.UUID) (*todo.Todo, error) {
	args := m.Called(ctx, userID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*todo.Todo), args.Error(1)
}

func (m *MockTodoRepository) UpdateTodo(ctx context.Context, t *todo.Todo) error {
	args := m.Called(ctx, t)
	return args.Error(0)
}

func (m *MockTodoRepository) DeleteTodo(ctx context.Context, userID, id uuid.UUID) error {
	args := m.Called(ctx, userID, id)
	return args.Error(0)
}

func (m *MockTodoRepository) FindTodos(ctx context.Context, q query.TodoQuery) ([]*todo.Todo, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*todo.Todo), args.Error(1)
}

func (m *MockTodoRepository) CountTodos(ctx context.Context, q query.TodoQuery) (int, error) {
	args := m.Called(ctx, q)
	return args.Int(0), args.Error(1)
}

type MockCategoryRepository struct {
	mock.Mock
}

func (m *MockCategoryRepository) CreateCategory(ctx context.Context, c *category.Category) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *MockCategoryRepository) GetCategory(ctx context.Context, userID, id uuid.UUID) (*category.Category, error) {
	args := m.Called(ctx, userID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*category.Category), args.Error(1)
}

func (m *MockCategoryRepository) GetCategoriesByIDs(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) ([]*category.Category, error) {
	args := m.Called(ctx, userID, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*category.Category), args.Error(1)
}

func (m *MockCategoryRepository) ListCategories(ctx context.Context, userID uuid.UUID) ([]*category.Category, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*category.Category), args.Error(1)
}

func (m *MockCategoryRepository) AppendCategory(ctx context.Context, c *category.Category) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *MockCategoryRepository) UpdateCategory(ctx context.Context, c *category.Category) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *MockCategoryRepository) DeleteCategory(ctx context.Context, userID, id uuid.UUID) error {
	args := m.Called(ctx, userID, id)
	return args.Error(0)
}

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) CreateUser(ctx context.Context, u *user.User) error {
	args := m.Called(ctx, u)
	return args.Error(0)
}

func (m *MockUserRepository) GetUserByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.User), args.Error(1)
}

func (m *MockUserRepository) GetUserByEmail(ctx context.Context, email string) (*user.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.User), args.Error(1)
}

type MockHasher struct {
	mock.Mock
}

func (m *MockHasher) Hash(password string) (string, error) {
	args := m.Called(password)
	return args.String(0), args.Error(1)
}

func (m *MockHasher) Verify(password, hash string) bool {
	args := m.Called(password, hash)
	return args.Bool(0)
}

type MockTokenIssuer struct {
	mock.Mock
}

func (m *MockTokenIssuer) IssueAccessToken(userID uuid.UUID) (*auth.Token, error) {
	args := m.Called(userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*auth.Token), args.Error(1)
}

var (
	_ service.TodoRepository     = (*MockTodoRepository)(nil)
	_ service.CategoryRepository = (*MockCategoryRepository)(nil)
	_ service.UserRepository     = (*MockUserRepository)(nil)
	_ service.PasswordHasher     = (*MockHasher)(nil)
	_ service.TokenIssuer        = (*MockTokenIssuer)(nil)
)
