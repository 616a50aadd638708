package sqlite

import (
	"time"

	"todoTracker/internal/models/category"
	"todoTracker/internal/models/todo"
	"todoTracker/internal/models/user"

	"github.com/google/uuid"
)

// Ids are stored as their canonical text form, which is also what uuid.UUID.Value produces
// for query arguments.

type userRow struct {
	ID             string `gorm:"primaryKey"`
	Email          string `gorm:"not null;uniqueIndex"`
	PasswordDigest string `gorm:"not null"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (userRow) TableName() string { return "users" }

type categoryRow struct {
	ID        string   `gorm:"primaryKey"`
	UserID    string   `gorm:"not null;index"`
	User      *userRow `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Name      string   `gorm:"not null"`
	SortOrder int      `gorm:"not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (categoryRow) TableName() string { return "categories" }

type todoRow struct {
	ID            string       `gorm:"primaryKey"`
	UserID        string       `gorm:"not null;index"`
	User          *userRow     `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	CategoryID    *string      `gorm:"index"`
	Category      *categoryRow `gorm:"foreignKey:CategoryID;constraint:OnDelete:SET NULL"`
	Name          string       `gorm:"not null"`
	Notes         *string
	CompletedAt   *time.Time
	DeletedAt     *time.Time
	DeferredUntil *time.Time
	DeferredAt    *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (todoRow) TableName() string { return "todos" }

func newTodoRow(t *todo.Todo) *todoRow {
	row := &todoRow{
		ID:            t.ID.String(),
		UserID:        t.UserID.String(),
		Name:          t.Name,
		Notes:         t.Notes,
		CompletedAt:   utc(t.CompletedAt),
		DeletedAt:     utc(t.DeletedAt),
		DeferredUntil: utc(t.DeferredUntil),
		DeferredAt:    utc(t.DeferredAt),
		CreatedAt:     t.CreatedAt.UTC(),
		UpdatedAt:     t.UpdatedAt.UTC(),
	}
	if t.CategoryID != nil {
		id := t.CategoryID.String()
		row.CategoryID = &id
	}
	return row
}

func (r *todoRow) toModel() (*todo.Todo, error) {
	t := &todo.Todo{
		Name:          r.Name,
		Notes:         r.Notes,
		CompletedAt:   utc(r.CompletedAt),
		DeletedAt:     utc(r.DeletedAt),
		DeferredUntil: utc(r.DeferredUntil),
		DeferredAt:    utc(r.DeferredAt),
		CreatedAt:     r.CreatedAt.UTC(),
		UpdatedAt:     r.UpdatedAt.UTC(),
	}
	var err error
	if t.ID, err = uuid.Parse(r.ID); err != nil {
		return nil, err
	}
	if t.UserID, err = uuid.Parse(r.UserID); err != nil {
		return nil, err
	}
	if r.CategoryID != nil {
		id, err := uuid.Parse(*r.CategoryID)
		if err != nil {
			return nil, err
		}
		t.CategoryID = &id
	}
	return t, nil
}

func newCategoryRow(c *category.Category) *categoryRow {
	return &categoryRow{
		ID:        c.ID.String(),
		UserID:    c.UserID.String(),
		Name:      c.Name,
		SortOrder: c.SortOrder,
		CreatedAt: c.CreatedAt.UTC(),
		UpdatedAt: c.UpdatedAt.UTC(),
	}
}

func (r *categoryRow) toModel() (*category.Category, error) {
	c := &category.Category{
		Name:      r.Name,
		SortOrder: r.SortOrder,
		CreatedAt: r.CreatedAt.UTC(),
		UpdatedAt: r.UpdatedAt.UTC(),
	}
	var err error
	if c.ID, err = uuid.Parse(r.ID); err != nil {
		return nil, err
	}
	if c.UserID, err = uuid.Parse(r.UserID); err != nil {
		return nil, err
	}
	return c, nil
}

func (r *userRow) toModel() (*user.User, error) {
	id, err := uuid.Parse(r.ID)
	if err != nil {
		return nil, err
	}
	return &user.User{
		ID:             id,
		Email:          r.Email,
		PasswordDigest: r.PasswordDigest,
		CreatedAt:      r.CreatedAt.UTC(),
		UpdatedAt:      r.UpdatedAt.UTC(),
	}, nil
}

func utc(at *time.Time) *time.Time {
	if at == nil {
		return nil
	}
	v := at.UTC()
	return &v
}
