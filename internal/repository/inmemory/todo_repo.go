package inmemory

import (
	"context"
	"slices"
	"time"

	"todoTracker/internal/models/todo"
	"todoTracker/internal/query"
	repo "todoTracker/internal/repository"

	"github.com/google/uuid"
)

func (s *Storage) CreateTodo(ctx context.Context, todoToCreate *todo.Todo) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if err := s.checkCategory(todoToCreate); err != nil {
		return err
	}

	now := time.Now().UTC()
	if todoToCreate.CreatedAt.IsZero() {
		todoToCreate.CreatedAt = now
	}
	if todoToCreate.UpdatedAt.IsZero() {
		todoToCreate.UpdatedAt = todoToCreate.CreatedAt
	}

	s.todos[todoToCreate.ID] = todoToCreate.Clone()
	s.todoIDs = append(s.todoIDs, todoToCreate.ID)
	return nil
}

func (s *Storage) GetTodo(ctx context.Context, userID, id uuid.UUID) (*todo.Todo, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	t, ok := s.todos[id]
	if !ok || t.UserID != userID {
		return nil, repo.ErrNotFound
	}
	return t.Clone(), nil
}

func (s *Storage) UpdateTodo(ctx context.Context, todoToUpdate *todo.Todo) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	existing, ok := s.todos[todoToUpdate.ID]
	if !ok || existing.UserID != todoToUpdate.UserID {
		return repo.ErrNotFound
	}
	if err := s.checkCategory(todoToUpdate); err != nil {
		return err
	}

	todoToUpdate.CreatedAt = existing.CreatedAt
	todoToUpdate.UpdatedAt = time.Now().UTC()
	s.todos[todoToUpdate.ID] = todoToUpdate.Clone()
	return nil
}

func (s *Storage) DeleteTodo(ctx context.Context, userID, id uuid.UUID) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	t, ok := s.todos[id]
	if !ok || t.UserID != userID {
		return repo.ErrNotFound
	}
	delete(s.todos, id)
	s.todoIDs = removeID(s.todoIDs, id)
	return nil
}

func (s *Storage) FindTodos(ctx context.Context, q query.TodoQuery) ([]*todo.Todo, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	res := s.match(q)
	if q.Page != nil {
		lo, hi := q.Page.Bounds(len(res))
		res = res[lo:hi]
	}
	return res, nil
}

func (s *Storage) CountTodos(ctx context.Context, q query.TodoQuery) (int, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	return len(s.match(q.Unpaged())), nil
}

func (s *Storage) match(q query.TodoQuery) []*todo.Todo {
	res := []*todo.Todo{}
	for _, id := range s.todoIDs {
		t := s.todos[id]
		if q.Match(t) {
			res = append(res, t.Clone())
		}
	}
	slices.SortStableFunc(res, q.Compare)
	return res
}

// checkCategory mirrors the foreign key of the SQL stores.
func (s *Storage) checkCategory(t *todo.Todo) error {
	if t.CategoryID == nil {
		return nil
	}
	if _, ok := s.categories[*t.CategoryID]; !ok {
		return repo.ErrConstraint
	}
	return nil
}
