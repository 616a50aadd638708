package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"todoTracker/internal/models/category"
	repo "todoTracker/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

func (s *Storage) CreateCategory(ctx context.Context, categoryToCreate *category.Category) error {
	row := newCategoryRow(categoryToCreate)
	if err := s.db.WithContext(ctx).Omit("User").Create(row).Error; err != nil {
		return mapError("create category", err)
	}
	categoryToCreate.CreatedAt = row.CreatedAt.UTC()
	categoryToCreate.UpdatedAt = row.UpdatedAt.UTC()
	return nil
}

func (s *Storage) GetCategory(ctx context.Context, userID, id uuid.UUID) (*category.Category, error) {
	var row categoryRow
	err := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id.String(), userID.String()).
		First(&row).Error
	if err != nil {
		return nil, mapError("get category", err)
	}
	return row.toModel()
}

func (s *Storage) GetCategoriesByIDs(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) ([]*category.Category, error) {
	if len(ids) == 0 {
		return []*category.Category{}, nil
	}

	keys := make([]string, 0, len(ids))
	for _, id := range ids {
		keys = append(keys, id.String())
	}

	var rows []categoryRow
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND id IN ?", userID.String(), keys).
		Find(&rows).Error
	if err != nil {
		return nil, mapError("get categories", err)
	}

	byID := make(map[string]*categoryRow, len(rows))
	for i := range rows {
		byID[rows[i].ID] = &rows[i]
	}

	res := make([]*category.Category, 0, len(rows))
	for _, key := range keys {
		row, ok := byID[key]
		if !ok {
			continue
		}
		delete(byID, key)
		c, err := row.toModel()
		if err != nil {
			return nil, fmt.Errorf("decode category %s: %w", key, err)
		}
		res = append(res, c)
	}
	return res, nil
}

func (s *Storage) ListCategories(ctx context.Context, userID uuid.UUID) ([]*category.Category, error) {
	var rows []categoryRow
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID.String()).Find(&rows).Error; err != nil {
		return nil, mapError("list categories", err)
	}

	res := make([]*category.Category, 0, len(rows))
	for i := range rows {
		c, err := rows[i].toModel()
		if err != nil {
			return nil, fmt.Errorf("decode category %s: %w", rows[i].ID, err)
		}
		res = append(res, c)
	}
	category.SortByPosition(res)
	return res, nil
}

// AppendCategory inserts c after the owner's last category and sets c.SortOrder.
func (s *Storage) AppendCategory(ctx context.Context, categoryToCreate *category.Category) error {
	row := newCategoryRow(categoryToCreate)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var max sql.NullInt64
		err := tx.Model(&categoryRow{}).
			Where("user_id = ?", row.UserID).
			Select("MAX(sort_order)").
			Row().
			Scan(&max)
		if err != nil {
			return err
		}

		var current *int
		if max.Valid {
			v := int(max.Int64)
			current = &v
		}
		row.SortOrder = category.NextSortOrder(current)

		return tx.Omit("User").Create(row).Error
	})
	if err != nil {
		return mapError("append category", err)
	}

	categoryToCreate.SortOrder = row.SortOrder
	categoryToCreate.CreatedAt = row.CreatedAt.UTC()
	categoryToCreate.UpdatedAt = row.UpdatedAt.UTC()
	return nil
}

func (s *Storage) UpdateCategory(ctx context.Context, categoryToUpdate *category.Category) error {
	row := newCategoryRow(categoryToUpdate)
	db := s.db.WithContext(ctx)

	res := db.Model(&categoryRow{}).
		Where("id = ? AND user_id = ?", row.ID, row.UserID).
		Updates(map[string]any{"name": row.Name, "sort_order": row.SortOrder})
	if res.Error != nil {
		return mapError("update category", res.Error)
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}

	var stored categoryRow
	if err := db.Select("created_at", "updated_at").Where("id = ?", row.ID).First(&stored).Error; err != nil {
		return mapError("reload category", err)
	}
	categoryToUpdate.CreatedAt = stored.CreatedAt.UTC()
	categoryToUpdate.UpdatedAt = stored.UpdatedAt.UTC()
	return nil
}

func (s *Storage) DeleteCategory(ctx context.Context, userID, id uuid.UUID) error {
	key, owner := id.String(), userID.String()

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Model(&todoRow{}).
			Where("category_id = ? AND user_id = ?", key, owner).
			Update("category_id", nil).Error
		if err != nil {
			return mapError("clear todo categories", err)
		}

		res := tx.Where("id = ? AND user_id = ?", key, owner).Delete(&categoryRow{})
		if res.Error != nil {
			return mapError("delete category", res.Error)
		}
		if res.RowsAffected == 0 {
			return repo.ErrNotFound
		}
		return nil
	})
}
