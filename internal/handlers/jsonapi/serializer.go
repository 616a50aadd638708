package jsonapi

import (
	"time"

	"todoTracker/internal/models/category"
	"todoTracker/internal/models/todo"
	"todoTracker/internal/models/user"
)

const timestampLayout = "2006-01-02T15:04:05.000Z07:00"

type TodoAttributes struct {
	Name          string  `json:"name"`
	Notes         *string `json:"notes"`
	CompletedAt   *string `json:"completed-at"`
	DeletedAt     *string `json:"deleted-at"`
	DeferredUntil *string `json:"deferred-until"`
	DeferredAt    *string `json:"deferred-at"`
	CreatedAt     *string `json:"created-at"`
	UpdatedAt     *string `json:"updated-at"`
}

type CategoryAttributes struct {
	Name      string `json:"name"`
	SortOrder int    `json:"sort-order"`
}

type UserAttributes struct {
	Email    string  `json:"email"`
	Password *string `json:"password"`
}

// Timestamp renders t in UTC with millisecond precision, or nil.
func Timestamp(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.UTC().Format(timestampLayout)
	return &s
}

func timestampValue(t time.Time) *string {
	if t.IsZero() {
		return nil
	}
	return Timestamp(&t)
}

func Todo(t *todo.Todo) Resource {
	var categoryRef *Identifier
	if t.CategoryID != nil {
		categoryRef = &Identifier{Type: TypeCategories, ID: t.CategoryID.String()}
	}

	return Resource{
		Type: TypeTodos,
		ID:   t.ID.String(),
		Attributes: TodoAttributes{
			Name:          t.Name,
			Notes:         t.Notes,
			CompletedAt:   Timestamp(t.CompletedAt),
			DeletedAt:     Timestamp(t.DeletedAt),
			DeferredUntil: Timestamp(t.DeferredUntil),
			DeferredAt:    Timestamp(t.DeferredAt),
			CreatedAt:     timestampValue(t.CreatedAt),
			UpdatedAt:     timestampValue(t.UpdatedAt),
		},
		Relationships: map[string]Relationship{
			"category": {Data: categoryRef},
		},
	}
}

func Todos(todos []*todo.Todo) []Resource {
	res := make([]Resource, 0, len(todos))
	for _, t := range todos {
		res = append(res, Todo(t))
	}
	return res
}

func Category(c *category.Category) Resource {
	return Resource{
		Type: TypeCategories,
		ID:   c.ID.String(),
		Attributes: CategoryAttributes{
			Name:      c.Name,
			SortOrder: c.SortOrder,
		},
	}
}

func Categories(categories []*category.Category) []Resource {
	res := make([]Resource, 0, len(categories))
	for _, c := range categories {
		res = append(res, Category(c))
	}
	return res
}

// User never exposes the password; the attribute is always null.
func User(u *user.User) Resource {
	return Resource{
		Type:       TypeUsers,
		ID:         u.ID.String(),
		Attributes: UserAttributes{Email: u.Email},
	}
}
