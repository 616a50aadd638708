package todo

import (
	"time"

	"github.com/google/uuid"
)

type TodoOption func(*Todo)

func WithName(name string) TodoOption {
	return func(t *Todo) {
		t.Name = name
	}
}

func WithNotes(notes *string) TodoOption {
	return func(t *Todo) {
		t.Notes = notes
	}
}

func WithCompletedAt(at *time.Time) TodoOption {
	return func(t *Todo) {
		t.CompletedAt = utc(at)
	}
}

func WithDeletedAt(at *time.Time) TodoOption {
	return func(t *Todo) {
		t.DeletedAt = utc(at)
	}
}

// WithDeferredUntil also stamps deferred_at: set to now with a deferral, cleared without one.
func WithDeferredUntil(until *time.Time, now time.Time) TodoOption {
	return func(t *Todo) {
		t.DeferredUntil = utc(until)
		if until == nil {
			t.DeferredAt = nil
			return
		}
		stamp := now.UTC()
		t.DeferredAt = &stamp
	}
}

func WithCategory(id *uuid.UUID) TodoOption {
	return func(t *Todo) {
		t.CategoryID = id
	}
}

func utc(at *time.Time) *time.Time {
	if at == nil {
		return nil
	}
	v := at.UTC()
	return &v
}
