package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"todoTracker/internal/logger"
	"todoTracker/internal/models/category"
	repo "todoTracker/internal/repository"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

const categoryColumns = `id, user_id, name, sort_order, created_at, updated_at`

func scanCategory(row pgx.Row) (*category.Category, error) {
	c := &category.Category{}
	if err := row.Scan(&c.ID, &c.UserID, &c.Name, &c.SortOrder, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	c.CreatedAt = c.CreatedAt.UTC()
	c.UpdatedAt = c.UpdatedAt.UTC()
	return c, nil
}

func (s *Storage) CreateCategory(ctx context.Context, categoryToCreate *category.Category) error {
	start := time.Now()
	defer warnIfSlow("CreateCategory", start)

	query := `INSERT INTO categories (id, user_id, name, sort_order)
				VALUES ($1, $2, $3, $4)
				RETURNING created_at, updated_at`

	err := s.pool.QueryRow(ctx, query,
		categoryToCreate.ID,
		categoryToCreate.UserID,
		categoryToCreate.Name,
		categoryToCreate.SortOrder,
	).Scan(&categoryToCreate.CreatedAt, &categoryToCreate.UpdatedAt)
	if err != nil {
		logger.Error("Repository: failed to insert category", err, zap.Duration("ms", time.Since(start)))
		return mapError("insert category", err)
	}

	categoryToCreate.CreatedAt = categoryToCreate.CreatedAt.UTC()
	categoryToCreate.UpdatedAt = categoryToCreate.UpdatedAt.UTC()
	return nil
}

func (s *Storage) GetCategory(ctx context.Context, userID, id uuid.UUID) (*category.Category, error) {
	start := time.Now()
	defer warnIfSlow("GetCategory", start)

	query := `SELECT ` + categoryColumns + ` FROM categories WHERE id = $1 AND user_id = $2`

	c, err := scanCategory(s.pool.QueryRow(ctx, query, id, userID))
	if err != nil {
		return nil, mapError("get category", err)
	}
	return c, nil
}

func (s *Storage) GetCategoriesByIDs(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) ([]*category.Category, error) {
	if len(ids) == 0 {
		return []*category.Category{}, nil
	}

	start := time.Now()
	defer warnIfSlow("GetCategoriesByIDs", start)

	query := `SELECT ` + categoryColumns + `
				FROM categories
				WHERE user_id = $1 AND id = ANY($2)
				ORDER BY array_position($2, id)`

	return s.queryCategories(ctx, query, userID, ids)
}

func (s *Storage) ListCategories(ctx context.Context, userID uuid.UUID) ([]*category.Category, error) {
	start := time.Now()
	defer warnIfSlow("ListCategories", start)

	query := `SELECT ` + categoryColumns + `
				FROM categories
				WHERE user_id = $1`

	categories, err := s.queryCategories(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	category.SortByPosition(categories)
	return categories, nil
}

func (s *Storage) queryCategories(ctx context.Context, query string, args ...any) ([]*category.Category, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		logger.Error("Repository: failed to query categories", err)
		return nil, mapError("query categories", err)
	}
	defer rows.Close()

	categories := []*category.Category{}
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			logger.Error("Repository: failed to scan category", err)
			return nil, fmt.Errorf("scan category: %w", err)
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		logger.Error("Repository: failed to iterate rows", err)
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	return categories, nil
}

// AppendCategory inserts c after the owner's last category and sets c.SortOrder.
// Locking the owner's row serialises concurrent appends.
func (s *Storage) AppendCategory(ctx context.Context, categoryToCreate *category.Category) error {
	start := time.Now()
	defer warnIfSlow("AppendCategory", start)

	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `SELECT 1 FROM users WHERE id = $1 FOR UPDATE`, categoryToCreate.UserID); err != nil {
			return err
		}

		return tx.QueryRow(ctx,
			`INSERT INTO categories (id, user_id, name, sort_order)
				SELECT $1, $2, $3, COALESCE(MAX(sort_order), 0) + 1
				FROM categories WHERE user_id = $2
				RETURNING sort_order, created_at, updated_at`,
			categoryToCreate.ID,
			categoryToCreate.UserID,
			categoryToCreate.Name,
		).Scan(&categoryToCreate.SortOrder, &categoryToCreate.CreatedAt, &categoryToCreate.UpdatedAt)
	})
	if err != nil {
		logger.Error("Repository: failed to append category", err, zap.Duration("ms", time.Since(start)))
		return mapError("append category", err)
	}

	categoryToCreate.CreatedAt = categoryToCreate.CreatedAt.UTC()
	categoryToCreate.UpdatedAt = categoryToCreate.UpdatedAt.UTC()
	return nil
}

func (s *Storage) UpdateCategory(ctx context.Context, categoryToUpdate *category.Category) error {
	start := time.Now()
	defer warnIfSlow("UpdateCategory", start)

	query := `UPDATE categories
			SET name = $1,
				sort_order = $2,
				updated_at = NOW()
			WHERE id = $3 AND user_id = $4
			RETURNING created_at, updated_at`

	err := s.pool.QueryRow(ctx, query,
		categoryToUpdate.Name,
		categoryToUpdate.SortOrder,
		categoryToUpdate.ID,
		categoryToUpdate.UserID,
	).Scan(&categoryToUpdate.CreatedAt, &categoryToUpdate.UpdatedAt)
	if err != nil {
		return mapError("update category", err)
	}

	categoryToUpdate.CreatedAt = categoryToUpdate.CreatedAt.UTC()
	categoryToUpdate.UpdatedAt = categoryToUpdate.UpdatedAt.UTC()
	return nil
}

// DeleteCategory clears todo references explicitly; the foreign key would do the same,
// but the update stamps updated_at on the affected todos.
func (s *Storage) DeleteCategory(ctx context.Context, userID, id uuid.UUID) error {
	start := time.Now()
	defer warnIfSlow("DeleteCategory", start)

	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx,
			`UPDATE todos SET category_id = NULL, updated_at = NOW() WHERE category_id = $1 AND user_id = $2`,
			id, userID); err != nil {
			return err
		}

		tag, err := tx.Exec(ctx, `DELETE FROM categories WHERE id = $1 AND user_id = $2`, id, userID)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return repo.ErrNotFound
		}
		return nil
	})
	if errors.Is(err, repo.ErrNotFound) {
		return err
	}
	if err != nil {
		logger.Error("Repository: failed to delete category", err, zap.String("category_id", id.String()))
		return mapError("delete category", err)
	}
	return nil
}
