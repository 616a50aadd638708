package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"todoTracker/internal/logger"
	"todoTracker/internal/models/todo"
	"todoTracker/internal/query"
	repo "todoTracker/internal/repository"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

const todoColumns = `id,
				user_id,
				category_id,
				name,
				notes,
				completed_at,
				deleted_at,
				deferred_until,
				deferred_at,
				created_at,
				updated_at`

func scanTodo(row pgx.Row) (*todo.Todo, error) {
	t := &todo.Todo{}
	err := row.Scan(
		&t.ID,
		&t.UserID,
		&t.CategoryID,
		&t.Name,
		&t.Notes,
		&t.CompletedAt,
		&t.DeletedAt,
		&t.DeferredUntil,
		&t.DeferredAt,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	toUTC(t)
	return t, nil
}

func toUTC(t *todo.Todo) {
	t.CreatedAt = t.CreatedAt.UTC()
	t.UpdatedAt = t.UpdatedAt.UTC()
	for _, at := range []*time.Time{t.CompletedAt, t.DeletedAt, t.DeferredUntil, t.DeferredAt} {
		if at != nil {
			*at = at.UTC()
		}
	}
}

func (s *Storage) CreateTodo(ctx context.Context, todoToCreate *todo.Todo) error {
	start := time.Now()
	defer warnIfSlow("CreateTodo", start)

	if todoToCreate.CreatedAt.IsZero() {
		todoToCreate.CreatedAt = time.Now().UTC()
	}

	query := `INSERT INTO todos
				(id, user_id, category_id, name, notes, completed_at, deleted_at, deferred_until, deferred_at, created_at, updated_at)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $10)
				RETURNING created_at, updated_at`

	err := s.pool.QueryRow(ctx, query,
		todoToCreate.ID,
		todoToCreate.UserID,
		todoToCreate.CategoryID,
		todoToCreate.Name,
		todoToCreate.Notes,
		todoToCreate.CompletedAt,
		todoToCreate.DeletedAt,
		todoToCreate.DeferredUntil,
		todoToCreate.DeferredAt,
		todoToCreate.CreatedAt,
	).Scan(&todoToCreate.CreatedAt, &todoToCreate.UpdatedAt)
	if err != nil {
		logger.Error("Repository: failed to insert todo", err, zap.Duration("ms", time.Since(start)))
		return mapError("insert todo", err)
	}

	todoToCreate.CreatedAt = todoToCreate.CreatedAt.UTC()
	todoToCreate.UpdatedAt = todoToCreate.UpdatedAt.UTC()
	return nil
}

func (s *Storage) GetTodo(ctx context.Context, userID, id uuid.UUID) (*todo.Todo, error) {
	start := time.Now()
	defer warnIfSlow("GetTodo", start)

	query := `SELECT ` + todoColumns + `
				FROM todos
				WHERE id = $1 AND user_id = $2`

	t, err := scanTodo(s.pool.QueryRow(ctx, query, id, userID))
	if err != nil {
		return nil, mapError("get todo", err)
	}
	return t, nil
}

func (s *Storage) UpdateTodo(ctx context.Context, todoToUpdate *todo.Todo) error {
	start := time.Now()
	defer warnIfSlow("UpdateTodo", start)

	query := `UPDATE todos
			SET category_id = $1,
				name = $2,
				notes = $3,
				completed_at = $4,
				deleted_at = $5,
				deferred_until = $6,
				deferred_at = $7,
				updated_at = NOW()
			WHERE id = $8 AND user_id = $9
			RETURNING created_at, updated_at`

	err := s.pool.QueryRow(ctx, query,
		todoToUpdate.CategoryID,
		todoToUpdate.Name,
		todoToUpdate.Notes,
		todoToUpdate.CompletedAt,
		todoToUpdate.DeletedAt,
		todoToUpdate.DeferredUntil,
		todoToUpdate.DeferredAt,
		todoToUpdate.ID,
		todoToUpdate.UserID,
	).Scan(&todoToUpdate.CreatedAt, &todoToUpdate.UpdatedAt)
	if err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			logger.Error("Repository: failed to update todo", err, zap.String("todo_id", todoToUpdate.ID.String()))
		}
		return mapError("update todo", err)
	}

	todoToUpdate.CreatedAt = todoToUpdate.CreatedAt.UTC()
	todoToUpdate.UpdatedAt = todoToUpdate.UpdatedAt.UTC()
	return nil
}

func (s *Storage) DeleteTodo(ctx context.Context, userID, id uuid.UUID) error {
	start := time.Now()
	defer warnIfSlow("DeleteTodo", start)

	tag, err := s.pool.Exec(ctx, `DELETE FROM todos WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		logger.Error("Repository: failed to delete todo", err, zap.Duration("ms", time.Since(start)))
		return mapError("delete todo", err)
	}
	if tag.RowsAffected() == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (s *Storage) FindTodos(ctx context.Context, q query.TodoQuery) ([]*todo.Todo, error) {
	start := time.Now()
	defer warnIfSlow("FindTodos", start)

	where, args := q.Where()
	sql := `SELECT ` + todoColumns + `
				FROM todos
				WHERE ` + where + `
				ORDER BY ` + q.OrderByCollated(`"C"`)
	if q.Page != nil {
		sql += ` LIMIT ? OFFSET ?`
		args = append(args, q.Page.Limit(), q.Page.Offset())
	}

	rows, err := s.pool.Query(ctx, query.Rebind(sql, 1), args...)
	if err != nil {
		logger.Error("Repository: failed to query todos", err, zap.Duration("ms", time.Since(start)))
		return nil, mapError("find todos", err)
	}
	defer rows.Close()

	todos := []*todo.Todo{}
	for rows.Next() {
		t, err := scanTodo(rows)
		if err != nil {
			logger.Error("Repository: failed to scan todo", err)
			return nil, fmt.Errorf("scan todo: %w", err)
		}
		todos = append(todos, t)
	}
	if err := rows.Err(); err != nil {
		logger.Error("Repository: failed to iterate rows", err)
		return nil, fmt.Errorf("iterate rows: %w", err)
	}

	return todos, nil
}

func (s *Storage) CountTodos(ctx context.Context, q query.TodoQuery) (int, error) {
	start := time.Now()
	defer warnIfSlow("CountTodos", start)

	where, args := q.Where()
	sql := query.Rebind(`SELECT COUNT(*) FROM todos WHERE `+where, 1)

	var total int
	if err := s.pool.QueryRow(ctx, sql, args...).Scan(&total); err != nil {
		logger.Error("Repository: failed to count todos", err, zap.Duration("ms", time.Since(start)))
		return 0, mapError("count todos", err)
	}
	return total, nil
}
