package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"todoTracker/internal/logger"
	"todoTracker/internal/models/category"
	repo "todoTracker/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type CategoryService struct {
	categories CategoryRepository
}

func NewCategoryService(categories CategoryRepository) *CategoryService {
	return &CategoryService{categories: categories}
}

type CategoryInput struct {
	Name      Optional[string]
	SortOrder Optional[int]
}

func (s *CategoryService) ListCategories(ctx context.Context, userID uuid.UUID) ([]*category.Category, error) {
	categories, err := s.categories.ListCategories(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return categories, nil
}

func (s *CategoryService) GetCategory(ctx context.Context, userID, id uuid.UUID) (*category.Category, error) {
	c, err := s.categories.GetCategory(ctx, userID, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			logger.Info("Service: category not found", zap.String("category_id", id.String()))
			return nil, NewNotFound("categories", id.String())
		}
		return nil, fmt.Errorf("get category: %w", err)
	}
	return c, nil
}

// CreateCategory places the category after the owner's last one unless sort-order is given.
func (s *CategoryService) CreateCategory(ctx context.Context, userID uuid.UUID, in CategoryInput) (*category.Category, error) {
	if !in.Name.Set {
		in.Name = Null[string]()
	}
	opts, err := categoryOptions(in, true)
	if err != nil {
		return nil, err
	}

	c := &category.Category{ID: uuid.New(), UserID: userID}
	for _, opt := range opts {
		opt(c)
	}

	create := s.categories.CreateCategory
	if !in.SortOrder.Set || in.SortOrder.Null {
		create = s.categories.AppendCategory
	}
	if err := create(ctx, c); err != nil {
		return nil, storeError("create category", err)
	}

	logger.Info("Service: category created", zap.String("category_id", c.ID.String()), zap.Int("sort_order", c.SortOrder))
	return c, nil
}

func (s *CategoryService) UpdateCategory(ctx context.Context, userID, id uuid.UUID, in CategoryInput) (*category.Category, error) {
	c, err := s.GetCategory(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	opts, err := categoryOptions(in, false)
	if err != nil {
		return nil, err
	}
	for _, opt := range opts {
		opt(c)
	}

	if err := s.categories.UpdateCategory(ctx, c); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, NewNotFound("categories", id.String())
		}
		return nil, storeError("update category", err)
	}
	return c, nil
}

// DeleteCategory removes the category; its todos stay and lose the reference.
func (s *CategoryService) DeleteCategory(ctx context.Context, userID, id uuid.UUID) error {
	if err := s.categories.DeleteCategory(ctx, userID, id); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return NewNotFound("categories", id.String())
		}
		return fmt.Errorf("delete category: %w", err)
	}
	logger.Info("Service: category deleted", zap.String("category_id", id.String()))
	return nil
}

// categoryOptions validates in; a null sort-order is only acceptable on create, where it means "append".
func categoryOptions(in CategoryInput, creating bool) ([]category.CategoryOption, error) {
	var (
		opts   []category.CategoryOption
		fields []FieldError
	)

	if in.Name.Set {
		if in.Name.Null || strings.TrimSpace(in.Name.Value) == "" {
			fields = append(fields, Invalid("name", "Name can't be blank"))
		} else {
			opts = append(opts, category.WithName(in.Name.Value))
		}
	}

	if in.SortOrder.Set {
		switch {
		case !in.SortOrder.Null:
			opts = append(opts, category.WithSortOrder(in.SortOrder.Value))
		case !creating:
			fields = append(fields, Invalid("sort-order", "Sort order can't be blank"))
		}
	}

	if len(fields) > 0 {
		return nil, NewValidationError(fields...)
	}
	return opts, nil
}
