package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"todoTracker/internal/logger"
	"todoTracker/internal/models/category"
	"todoTracker/internal/models/todo"
	"todoTracker/internal/query"
	repo "todoTracker/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type TodoService struct {
	todos      TodoRepository
	categories CategoryRepository
	now        func() time.Time
}

func NewTodoService(todos TodoRepository, categories CategoryRepository, opts ...Option) *TodoService {
	o := newOptions(opts)
	return &TodoService{
		todos:      todos,
		categories: categories,
		now:        o.now,
	}
}

type ListParams struct {
	query.Params
	IncludeCategory bool
}

type ListResult struct {
	Todos []*todo.Todo
	// Included is nil unless categories were requested and at least one was found.
	Included []*category.Category
	// PageCount is set only when the listing was paginated.
	PageCount *int
}

// TodoInput carries the writable attributes of a todo. Unset fields are left untouched on update.
type TodoInput struct {
	Name          Optional[string]
	Notes         Optional[string]
	CompletedAt   Optional[time.Time]
	DeletedAt     Optional[time.Time]
	DeferredUntil Optional[time.Time]
	Category      Optional[uuid.UUID]
}

func (s *TodoService) ListTodos(ctx context.Context, userID uuid.UUID, p ListParams) (*ListResult, error) {
	q := query.Build(userID, p.Params, s.now())

	todos, err := s.todos.FindTodos(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("find todos: %w", err)
	}

	res := &ListResult{Todos: todos}

	if q.Page != nil {
		total, err := s.todos.CountTodos(ctx, q)
		if err != nil {
			return nil, fmt.Errorf("count todos: %w", err)
		}
		pages := query.PageCount(total)
		res.PageCount = &pages
	}

	if p.IncludeCategory {
		res.Included, err = s.IncludeCategories(ctx, userID, todos)
		if err != nil {
			return nil, err
		}
	}

	return res, nil
}

func (s *TodoService) GetTodo(ctx context.Context, userID, id uuid.UUID) (*todo.Todo, error) {
	t, err := s.todos.GetTodo(ctx, userID, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			logger.Info("Service: todo not found", zap.String("todo_id", id.String()))
			return nil, NewNotFound("todos", id.String())
		}
		return nil, fmt.Errorf("get todo: %w", err)
	}
	return t, nil
}

func (s *TodoService) CreateTodo(ctx context.Context, userID uuid.UUID, in TodoInput) (*todo.Todo, error) {
	now := s.now()

	if !in.Name.Set {
		in.Name = Null[string]()
	}
	opts, err := s.todoOptions(ctx, userID, in, now)
	if err != nil {
		return nil, err
	}

	t := &todo.Todo{ID: uuid.New(), UserID: userID}
	for _, opt := range opts {
		opt(t)
	}

	if err := s.todos.CreateTodo(ctx, t); err != nil {
		return nil, storeError("create todo", err)
	}

	logger.Info("Service: todo created", zap.String("todo_id", t.ID.String()))
	return t, nil
}

func (s *TodoService) UpdateTodo(ctx context.Context, userID, id uuid.UUID, in TodoInput) (*todo.Todo, error) {
	t, err := s.GetTodo(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	opts, err := s.todoOptions(ctx, userID, in, s.now())
	if err != nil {
		return nil, err
	}
	for _, opt := range opts {
		opt(t)
	}

	if err := s.todos.UpdateTodo(ctx, t); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, NewNotFound("todos", id.String())
		}
		return nil, storeError("update todo", err)
	}
	return t, nil
}

// DeleteTodo is a soft delete: it stamps deleted_at and keeps the row.
// A todo that is already deleted keeps its original timestamp.
func (s *TodoService) DeleteTodo(ctx context.Context, userID, id uuid.UUID) error {
	t, err := s.GetTodo(ctx, userID, id)
	if err != nil {
		return err
	}
	if t.DeletedAt != nil {
		return nil
	}

	now := s.now()
	todo.WithDeletedAt(&now)(t)
	if err := s.todos.UpdateTodo(ctx, t); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return NewNotFound("todos", id.String())
		}
		return storeError("delete todo", err)
	}
	return nil
}

// PurgeTodo removes the row for good.
func (s *TodoService) PurgeTodo(ctx context.Context, userID, id uuid.UUID) error {
	if err := s.todos.DeleteTodo(ctx, userID, id); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return NewNotFound("todos", id.String())
		}
		return fmt.Errorf("purge todo: %w", err)
	}
	logger.Info("Service: todo purged", zap.String("todo_id", id.String()))
	return nil
}

// IncludeCategories resolves the categories referenced by todos, deduplicated in first-seen order.
// It returns nil when none are referenced.
func (s *TodoService) IncludeCategories(ctx context.Context, userID uuid.UUID, todos []*todo.Todo) ([]*category.Category, error) {
	ids := CategoryIDs(todos)
	if len(ids) == 0 {
		return nil, nil
	}

	categories, err := s.categories.GetCategoriesByIDs(ctx, userID, ids)
	if err != nil {
		return nil, fmt.Errorf("include categories: %w", err)
	}
	if len(categories) == 0 {
		return nil, nil
	}
	return categories, nil
}

func CategoryIDs(todos []*todo.Todo) []uuid.UUID {
	seen := make(map[uuid.UUID]bool)
	ids := []uuid.UUID{}
	for _, t := range todos {
		if t.CategoryID == nil || seen[*t.CategoryID] {
			continue
		}
		seen[*t.CategoryID] = true
		ids = append(ids, *t.CategoryID)
	}
	return ids
}

// todoOptions validates in and turns every supplied field into a todo.TodoOption.
func (s *TodoService) todoOptions(ctx context.Context, userID uuid.UUID, in TodoInput, now time.Time) ([]todo.TodoOption, error) {
	var (
		opts   []todo.TodoOption
		fields []FieldError
	)

	if in.Name.Set {
		if in.Name.Null || strings.TrimSpace(in.Name.Value) == "" {
			fields = append(fields, Invalid("name", "Name can't be blank"))
		} else {
			opts = append(opts, todo.WithName(in.Name.Value))
		}
	}
	if in.Notes.Set {
		opts = append(opts, todo.WithNotes(in.Notes.Ptr()))
	}
	if in.CompletedAt.Set {
		opts = append(opts, todo.WithCompletedAt(in.CompletedAt.Ptr()))
	}
	if in.DeletedAt.Set {
		opts = append(opts, todo.WithDeletedAt(in.DeletedAt.Ptr()))
	}
	if in.DeferredUntil.Set {
		opts = append(opts, todo.WithDeferredUntil(in.DeferredUntil.Ptr(), now))
	}

	if in.Category.Set {
		if !in.Category.Null {
			ok, err := s.ownsCategory(ctx, userID, in.Category.Value)
			if err != nil {
				return nil, err
			}
			if !ok {
				fields = append(fields, Invalid("category", "Category must exist"))
			}
		}
		opts = append(opts, todo.WithCategory(in.Category.Ptr()))
	}

	if len(fields) > 0 {
		return nil, NewValidationError(fields...)
	}
	return opts, nil
}

func (s *TodoService) ownsCategory(ctx context.Context, userID, categoryID uuid.UUID) (bool, error) {
	_, err := s.categories.GetCategory(ctx, userID, categoryID)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, repo.ErrNotFound):
		return false, nil
	default:
		return false, fmt.Errorf("get category: %w", err)
	}
}

// storeError turns an integrity failure the service did not anticipate into CONSTRAINT_VIOLATION.
func storeError(op string, err error) error {
	if errors.Is(err, repo.ErrConstraint) {
		logger.Error("Service: constraint violation", err, zap.String("operation", op))
		return NewConstraintViolation(err)
	}
	return fmt.Errorf("%s: %w", op, err)
}
