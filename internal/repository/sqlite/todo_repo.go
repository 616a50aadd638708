package sqlite

import (
	"context"
	"fmt"

	"todoTracker/internal/models/todo"
	"todoTracker/internal/query"
	repo "todoTracker/internal/repository"

	"github.com/google/uuid"
)

func (s *Storage) CreateTodo(ctx context.Context, todoToCreate *todo.Todo) error {
	row := newTodoRow(todoToCreate)
	if err := s.db.WithContext(ctx).Omit("User", "Category").Create(row).Error; err != nil {
		return mapError("create todo", err)
	}
	todoToCreate.CreatedAt = row.CreatedAt.UTC()
	todoToCreate.UpdatedAt = row.UpdatedAt.UTC()
	return nil
}

func (s *Storage) GetTodo(ctx context.Context, userID, id uuid.UUID) (*todo.Todo, error) {
	var row todoRow
	err := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id.String(), userID.String()).
		First(&row).Error
	if err != nil {
		return nil, mapError("get todo", err)
	}
	return row.toModel()
}

func (s *Storage) UpdateTodo(ctx context.Context, todoToUpdate *todo.Todo) error {
	row := newTodoRow(todoToUpdate)
	db := s.db.WithContext(ctx)

	res := db.Model(&todoRow{}).
		Where("id = ? AND user_id = ?", row.ID, row.UserID).
		Updates(map[string]any{
			"category_id":    row.CategoryID,
			"name":           row.Name,
			"notes":          row.Notes,
			"completed_at":   row.CompletedAt,
			"deleted_at":     row.DeletedAt,
			"deferred_until": row.DeferredUntil,
			"deferred_at":    row.DeferredAt,
		})
	if res.Error != nil {
		return mapError("update todo", res.Error)
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}

	var stored todoRow
	if err := db.Select("created_at", "updated_at").Where("id = ?", row.ID).First(&stored).Error; err != nil {
		return mapError("reload todo", err)
	}
	todoToUpdate.CreatedAt = stored.CreatedAt.UTC()
	todoToUpdate.UpdatedAt = stored.UpdatedAt.UTC()
	return nil
}

func (s *Storage) DeleteTodo(ctx context.Context, userID, id uuid.UUID) error {
	res := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id.String(), userID.String()).
		Delete(&todoRow{})
	if res.Error != nil {
		return mapError("delete todo", res.Error)
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (s *Storage) FindTodos(ctx context.Context, q query.TodoQuery) ([]*todo.Todo, error) {
	where, args := q.Where()
	db := s.db.WithContext(ctx).Where(where, args...).Order(q.OrderBy())
	if q.Page != nil {
		db = db.Limit(q.Page.Limit()).Offset(q.Page.Offset())
	}

	var rows []todoRow
	if err := db.Find(&rows).Error; err != nil {
		return nil, mapError("find todos", err)
	}

	todos := make([]*todo.Todo, 0, len(rows))
	for i := range rows {
		t, err := rows[i].toModel()
		if err != nil {
			return nil, fmt.Errorf("decode todo %s: %w", rows[i].ID, err)
		}
		todos = append(todos, t)
	}
	return todos, nil
}

func (s *Storage) CountTodos(ctx context.Context, q query.TodoQuery) (int, error) {
	where, args := q.Where()

	var total int64
	if err := s.db.WithContext(ctx).Model(&todoRow{}).Where(where, args...).Count(&total).Error; err != nil {
		return 0, mapError("count todos", err)
	}
	return int(total), nil
}
