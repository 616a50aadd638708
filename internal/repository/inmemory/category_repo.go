package inmemory

import (
	"context"
	"time"

	"todoTracker/internal/models/category"
	repo "todoTracker/internal/repository"

	"github.com/google/uuid"
)

func (s *Storage) CreateCategory(ctx context.Context, categoryToCreate *category.Category) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	s.insertCategory(categoryToCreate)
	return nil
}

func (s *Storage) insertCategory(categoryToCreate *category.Category) {
	now := time.Now().UTC()
	categoryToCreate.CreatedAt = now
	categoryToCreate.UpdatedAt = now

	c := *categoryToCreate
	s.categories[c.ID] = &c
	s.categoryIDs = append(s.categoryIDs, c.ID)
}

func (s *Storage) GetCategory(ctx context.Context, userID, id uuid.UUID) (*category.Category, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	c, ok := s.categories[id]
	if !ok || c.UserID != userID {
		return nil, repo.ErrNotFound
	}
	res := *c
	return &res, nil
}

// GetCategoriesByIDs returns the owner's categories in the order of ids; unknown ids are skipped.
func (s *Storage) GetCategoriesByIDs(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) ([]*category.Category, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	res := []*category.Category{}
	for _, id := range ids {
		c, ok := s.categories[id]
		if !ok || c.UserID != userID {
			continue
		}
		cp := *c
		res = append(res, &cp)
	}
	return res, nil
}

func (s *Storage) ListCategories(ctx context.Context, userID uuid.UUID) ([]*category.Category, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	res := []*category.Category{}
	for _, id := range s.categoryIDs {
		c := s.categories[id]
		if c.UserID != userID {
			continue
		}
		cp := *c
		res = append(res, &cp)
	}
	category.SortByPosition(res)
	return res, nil
}

// AppendCategory inserts c after the owner's last category and sets c.SortOrder.
func (s *Storage) AppendCategory(ctx context.Context, categoryToCreate *category.Category) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	var max *int
	for _, c := range s.categories {
		if c.UserID != categoryToCreate.UserID {
			continue
		}
		if max == nil || c.SortOrder > *max {
			v := c.SortOrder
			max = &v
		}
	}
	categoryToCreate.SortOrder = category.NextSortOrder(max)

	s.insertCategory(categoryToCreate)
	return nil
}

func (s *Storage) UpdateCategory(ctx context.Context, categoryToUpdate *category.Category) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	existing, ok := s.categories[categoryToUpdate.ID]
	if !ok || existing.UserID != categoryToUpdate.UserID {
		return repo.ErrNotFound
	}

	categoryToUpdate.CreatedAt = existing.CreatedAt
	categoryToUpdate.UpdatedAt = time.Now().UTC()
	c := *categoryToUpdate
	s.categories[c.ID] = &c
	return nil
}

func (s *Storage) DeleteCategory(ctx context.Context, userID, id uuid.UUID) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	c, ok := s.categories[id]
	if !ok || c.UserID != userID {
		return repo.ErrNotFound
	}

	for _, t := range s.todos {
		if t.CategoryID != nil && *t.CategoryID == id {
			t.CategoryID = nil
		}
	}
	delete(s.categories, id)
	s.categoryIDs = removeID(s.categoryIDs, id)
	return nil
}
