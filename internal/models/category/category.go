package category

import (
	"bytes"
	"cmp"
	"slices"
	"time"

	"github.com/google/uuid"
)

type Category struct {
	ID        uuid.UUID `json:"id" db:"id"`
	UserID    uuid.UUID `json:"user_id" db:"user_id"`
	Name      string    `json:"name" db:"name"`
	SortOrder int       `json:"sort_order" db:"sort_order"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// NextSortOrder is the position given to a new category when none was supplied.
func NextSortOrder(maxExisting *int) int {
	if maxExisting == nil {
		return 1
	}
	return *maxExisting + 1
}

type CategoryOption func(*Category)

func WithName(name string) CategoryOption {
	return func(c *Category) {
		c.Name = name
	}
}

func WithSortOrder(order int) CategoryOption {
	return func(c *Category) {
		c.SortOrder = order
	}
}

// SortByPosition orders categories by sort_order, then name and id.
func SortByPosition(categories []*Category) {
	slices.SortStableFunc(categories, func(a, b *Category) int {
		if c := cmp.Compare(a.SortOrder, b.SortOrder); c != 0 {
			return c
		}
		if c := cmp.Compare(a.Name, b.Name); c != 0 {
			return c
		}
		return bytes.Compare(a.ID[:], b.ID[:])
	})
}
