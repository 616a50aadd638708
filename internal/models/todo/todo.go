package todo

import (
	"time"

	"github.com/google/uuid"
)

type Todo struct {
	ID            uuid.UUID  `json:"id" db:"id"`
	UserID        uuid.UUID  `json:"user_id" db:"user_id"`
	CategoryID    *uuid.UUID `json:"category_id,omitempty" db:"category_id"`
	Name          string     `json:"name" db:"name"`
	Notes         *string    `json:"notes,omitempty" db:"notes"`
	CompletedAt   *time.Time `json:"completed_at,omitempty" db:"completed_at"`
	DeletedAt     *time.Time `json:"deleted_at,omitempty" db:"deleted_at"`
	DeferredUntil *time.Time `json:"deferred_until,omitempty" db:"deferred_until"`
	DeferredAt    *time.Time `json:"deferred_at,omitempty" db:"deferred_at"`
	CreatedAt     time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at" db:"updated_at"`
}

// Clone returns a deep copy so stores can hand out records without sharing pointers.
func (t *Todo) Clone() *Todo {
	if t == nil {
		return nil
	}
	c := *t
	c.CategoryID = cloneUUID(t.CategoryID)
	c.Notes = cloneString(t.Notes)
	c.CompletedAt = cloneTime(t.CompletedAt)
	c.DeletedAt = cloneTime(t.DeletedAt)
	c.DeferredUntil = cloneTime(t.DeferredUntil)
	c.DeferredAt = cloneTime(t.DeferredAt)
	return &c
}

func cloneUUID(v *uuid.UUID) *uuid.UUID {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func cloneString(v *string) *string {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func cloneTime(v *time.Time) *time.Time {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
