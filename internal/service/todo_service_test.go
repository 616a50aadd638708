package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"todoTracker/internal/models/category"
	"todoTracker/internal/models/todo"
	"todoTracker/internal/query"
	repo "todoTracker/internal/repository"
	"todoTracker/internal/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func newTodoService() (*service.TodoService, *MockTodoRepository, *MockCategoryRepository) {
	todos := new(MockTodoRepository)
	categories := new(MockCategoryRepository)
	svc := service.NewTodoService(todos, categories, service.WithClock(func() time.Time { return fixedNow }))
	return svc, todos, categories
}

func requireBusinessError(t *testing.T, err error, code string) *service.BusinessError {
	t.Helper()
	busErr, ok := service.AsBusinessError(err)
	require.True(t, ok, "expected BusinessError, got %v", err)
	assert.Equal(t, code, busErr.Code)
	return busErr
}

func TestTodoService_ListTodos(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	home := &category.Category{ID: uuid.New(), UserID: userID, Name: "Home"}
	work := &category.Category{ID: uuid.New(), UserID: userID, Name: "Work"}

	listed := []*todo.Todo{
		{ID: uuid.New(), UserID: userID, Name: "a", CategoryID: &work.ID},
		{ID: uuid.New(), UserID: userID, Name: "b"},
		{ID: uuid.New(), UserID: userID, Name: "c", CategoryID: &home.ID},
		{ID: uuid.New(), UserID: userID, Name: "d", CategoryID: &work.ID},
	}

	t.Run("plain listing has no page count and no included", func(t *testing.T) {
		svc, todos, categories := newTodoService()
		todos.On("FindTodos", mock.Anything, mock.MatchedBy(func(q query.TodoQuery) bool {
			return q.UserID == userID && q.Page == nil && q.Now.Equal(fixedNow)
		})).Return(listed, nil)

		res, err := svc.ListTodos(ctx, userID, service.ListParams{Params: query.Params{Statuses: []string{"open"}}})
		require.NoError(t, err)
		assert.Len(t, res.Todos, 4)
		assert.Nil(t, res.PageCount)
		assert.Nil(t, res.Included)

		todos.AssertExpectations(t)
		todos.AssertNotCalled(t, "CountTodos", mock.Anything, mock.Anything)
		categories.AssertNotCalled(t, "GetCategoriesByIDs", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("archive listing reports page count", func(t *testing.T) {
		svc, todos, _ := newTodoService()
		isPage2 := mock.MatchedBy(func(q query.TodoQuery) bool {
			return q.Page != nil && q.Page.Number == 2
		})
		todos.On("FindTodos", mock.Anything, isPage2).Return([]*todo.Todo{}, nil)
		todos.On("CountTodos", mock.Anything, isPage2).Return(21, nil)

		res, err := svc.ListTodos(ctx, userID, service.ListParams{Params: query.Params{Statuses: []string{"completed"}, Page: 2}})
		require.NoError(t, err)
		require.NotNil(t, res.PageCount)
		assert.Equal(t, 3, *res.PageCount)
		assert.Empty(t, res.Todos)
		todos.AssertExpectations(t)
	})

	t.Run("include resolves categories in first-seen order", func(t *testing.T) {
		svc, todos, categories := newTodoService()
		todos.On("FindTodos", mock.Anything, mock.Anything).Return(listed, nil)
		categories.On("GetCategoriesByIDs", mock.Anything, userID, []uuid.UUID{work.ID, home.ID}).
			Return([]*category.Category{work, home}, nil)

		res, err := svc.ListTodos(ctx, userID, service.ListParams{IncludeCategory: true})
		require.NoError(t, err)
		assert.Equal(t, []*category.Category{work, home}, res.Included)
		categories.AssertExpectations(t)
	})

	t.Run("include with no categories leaves included nil", func(t *testing.T) {
		svc, todos, categories := newTodoService()
		todos.On("FindTodos", mock.Anything, mock.Anything).Return([]*todo.Todo{{ID: uuid.New(), Name: "x"}}, nil)

		res, err := svc.ListTodos(ctx, userID, service.ListParams{IncludeCategory: true})
		require.NoError(t, err)
		assert.Nil(t, res.Included)
		categories.AssertNotCalled(t, "GetCategoriesByIDs", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("store failure is wrapped", func(t *testing.T) {
		svc, todos, _ := newTodoService()
		todos.On("FindTodos", mock.Anything, mock.Anything).Return(nil, errors.New("boom"))

		_, err := svc.ListTodos(ctx, userID, service.ListParams{})
		require.Error(t, err)
		_, isBusiness := service.AsBusinessError(err)
		assert.False(t, isBusiness)
	})
}

func TestCategoryIDs(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	todos := []*todo.Todo{
		{CategoryID: &b},
		{},
		{CategoryID: &a},
		{CategoryID: &b},
	}
	assert.Equal(t, []uuid.UUID{b, a}, service.CategoryIDs(todos))
	assert.Empty(t, service.CategoryIDs(nil))
}

func TestTodoService_CreateTodo(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	categoryID := uuid.New()
	until := fixedNow.Add(48 * time.Hour)

	tests := []struct {
		name      string
		input     service.TodoInput
		setupMock func(*MockTodoRepository, *MockCategoryRepository)
		wantCode  string
		wantField string
		check     func(*testing.T, *todo.Todo)
	}{
		{
			name:  "success with every attribute",
			input: service.TodoInput{
				Name:          service.Some("Write report"),
				Notes:         service.Some("quarterly"),
				DeferredUntil: service.Some(until),
				Category:      service.Some(categoryID),
			},
			setupMock: func(todos *MockTodoRepository, categories *MockCategoryRepository) {
				categories.On("GetCategory", mock.Anything, userID, categoryID).
					Return(&category.Category{ID: categoryID, UserID: userID}, nil)
				todos.On("CreateTodo", mock.Anything, mock.AnythingOfType("*todo.Todo")).Return(nil)
			},
			check: func(t *testing.T, created *todo.Todo) {
				assert.Equal(t, userID, created.UserID)
				assert.NotEqual(t, uuid.Nil, created.ID)
				assert.Equal(t, "Write report", created.Name)
				require.NotNil(t, created.Notes)
				assert.Equal(t, "quarterly", *created.Notes)
				require.NotNil(t, created.DeferredUntil)
				assert.True(t, until.Equal(*created.DeferredUntil))
				require.NotNil(t, created.DeferredAt)
				assert.True(t, fixedNow.Equal(*created.DeferredAt))
				require.NotNil(t, created.CategoryID)
				assert.Equal(t, categoryID, *created.CategoryID)
			},
		},
		{
			name:      "missing name",
			input:     service.TodoInput{},
			wantCode:  service.CodeValidationFailed,
			wantField: "name",
		},
		{
			name:      "blank name",
			input:     service.TodoInput{Name: service.Some("   ")},
			wantCode:  service.CodeValidationFailed,
			wantField: "name",
		},
		{
			name:  "category of someone else",
			input: service.TodoInput{Name: service.Some("x"), Category: service.Some(categoryID)},
			setupMock: func(todos *MockTodoRepository, categories *MockCategoryRepository) {
				categories.On("GetCategory", mock.Anything, userID, categoryID).Return(nil, repo.ErrNotFound)
			},
			wantCode:  service.CodeValidationFailed,
			wantField: "category",
		},
		{
			name:  "unexpected constraint failure",
			input: service.TodoInput{Name: service.Some("x")},
			setupMock: func(todos *MockTodoRepository, categories *MockCategoryRepository) {
				todos.On("CreateTodo", mock.Anything, mock.Anything).Return(repo.ErrConstraint)
			},
			wantCode: service.CodeConstraintViolation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, todos, categories := newTodoService()
			if tt.setupMock != nil {
				tt.setupMock(todos, categories)
			}

			created, err := svc.CreateTodo(ctx, userID, tt.input)

			if tt.wantCode != "" {
				busErr := requireBusinessError(t, err, tt.wantCode)
				if tt.wantField != "" {
					require.Len(t, busErr.Fields, 1)
					assert.Equal(t, tt.wantField, busErr.Fields[0].Field)
				}
				todos.AssertNotCalled(t, "UpdateTodo", mock.Anything, mock.Anything)
			} else {
				require.NoError(t, err)
				tt.check(t, created)
			}

			todos.AssertExpectations(t)
			categories.AssertExpectations(t)
		})
	}
}

func TestTodoService_UpdateTodo(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	id := uuid.New()
	categoryID := uuid.New()
	deferred := fixedNow.Add(-time.Hour)
	notes := "keep me"

	existing := func() *todo.Todo {
		return &todo.Todo{
			ID:            id,
			UserID:        userID,
			Name:          "old",
			Notes:         &notes,
			CategoryID:    &categoryID,
			DeferredUntil: &deferred,
			DeferredAt:    &deferred,
		}
	}

	t.Run("only supplied fields change", func(t *testing.T) {
		svc, todos, _ := newTodoService()
		todos.On("GetTodo", mock.Anything, userID, id).Return(existing(), nil)
		todos.On("UpdateTodo", mock.Anything, mock.Anything).Return(nil)

		done := fixedNow
		updated, err := svc.UpdateTodo(ctx, userID, id, service.TodoInput{
			Name:        service.Some("new"),
			CompletedAt: service.Some(done),
		})
		require.NoError(t, err)
		assert.Equal(t, "new", updated.Name)
		require.NotNil(t, updated.Notes)
		assert.Equal(t, "keep me", *updated.Notes)
		require.NotNil(t, updated.CompletedAt)
		assert.Equal(t, categoryID, *updated.CategoryID)
	})

	t.Run("nulls clear fields and the deferral stamp", func(t *testing.T) {
		svc, todos, _ := newTodoService()
		todos.On("GetTodo", mock.Anything, userID, id).Return(existing(), nil)
		todos.On("UpdateTodo", mock.Anything, mock.Anything).Return(nil)

		updated, err := svc.UpdateTodo(ctx, userID, id, service.TodoInput{
			Notes:         service.Null[string](),
			DeferredUntil: service.Null[time.Time](),
			Category:      service.Null[uuid.UUID](),
		})
		require.NoError(t, err)
		assert.Nil(t, updated.Notes)
		assert.Nil(t, updated.DeferredUntil)
		assert.Nil(t, updated.DeferredAt)
		assert.Nil(t, updated.CategoryID)
	})

	t.Run("blank name is rejected", func(t *testing.T) {
		svc, todos, _ := newTodoService()
		todos.On("GetTodo", mock.Anything, userID, id).Return(existing(), nil)

		_, err := svc.UpdateTodo(ctx, userID, id, service.TodoInput{Name: service.Null[string]()})
		requireBusinessError(t, err, service.CodeValidationFailed)
		todos.AssertNotCalled(t, "UpdateTodo", mock.Anything, mock.Anything)
	})

	t.Run("not owned is not found", func(t *testing.T) {
		svc, todos, _ := newTodoService()
		todos.On("GetTodo", mock.Anything, userID, id).Return(nil, repo.ErrNotFound)

		_, err := svc.UpdateTodo(ctx, userID, id, service.TodoInput{Name: service.Some("x")})
		requireBusinessError(t, err, service.CodeNotFound)
	})
}

func TestTodoService_DeleteTodo(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	id := uuid.New()

	t.Run("stamps deleted_at", func(t *testing.T) {
		svc, todos, _ := newTodoService()
		todos.On("GetTodo", mock.Anything, userID, id).Return(&todo.Todo{ID: id, UserID: userID, Name: "x"}, nil)
		todos.On("UpdateTodo", mock.Anything, mock.MatchedBy(func(t *todo.Todo) bool {
			return t.DeletedAt != nil && t.DeletedAt.Equal(fixedNow)
		})).Return(nil)

		require.NoError(t, svc.DeleteTodo(ctx, userID, id))
		todos.AssertExpectations(t)
	})

	t.Run("already deleted keeps its timestamp", func(t *testing.T) {
		svc, todos, _ := newTodoService()
		earlier := fixedNow.Add(-24 * time.Hour)
		todos.On("GetTodo", mock.Anything, userID, id).Return(&todo.Todo{ID: id, UserID: userID, DeletedAt: &earlier}, nil)

		require.NoError(t, svc.DeleteTodo(ctx, userID, id))
		todos.AssertNotCalled(t, "UpdateTodo", mock.Anything, mock.Anything)
	})

	t.Run("missing", func(t *testing.T) {
		svc, todos, _ := newTodoService()
		todos.On("GetTodo", mock.Anything, userID, id).Return(nil, repo.ErrNotFound)

		requireBusinessError(t, svc.DeleteTodo(ctx, userID, id), service.CodeNotFound)
	})
}

func TestTodoService_PurgeTodo(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	id := uuid.New()

	svc, todos, _ := newTodoService()
	todos.On("DeleteTodo", mock.Anything, userID, id).Return(nil).Once()
	todos.On("DeleteTodo", mock.Anything, userID, id).Return(repo.ErrNotFound).Once()

	require.NoError(t, svc.PurgeTodo(ctx, userID, id))
	requireBusinessError(t, svc.PurgeTodo(ctx, userID, id), service.CodeNotFound)
	todos.AssertExpectations(t)
}
