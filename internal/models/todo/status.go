package todo

import (
	"strings"
	"time"
)

// Status is derived from completed_at, deleted_at and deferred_until at read time.
// It is never stored.
type Status string

const (
	StatusOpen      Status = "open"
	StatusAvailable Status = "available"
	StatusFuture    Status = "future"
	StatusTomorrow  Status = "tomorrow"
	StatusCompleted Status = "completed"
	StatusDeleted   Status = "deleted"
)

// TomorrowWindow is how far ahead of now a deferral still counts as "tomorrow".
const TomorrowWindow = 24 * time.Hour

// Statuses lists every known status in classification order.
var Statuses = []Status{
	StatusOpen,
	StatusAvailable,
	StatusFuture,
	StatusTomorrow,
	StatusCompleted,
	StatusDeleted,
}

func ParseStatus(s string) (Status, bool) {
	status := Status(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Statuses {
		if status == known {
			return status, true
		}
	}
	return "", false
}

// Matches reports whether the todo is in status s at the given instant.
// completed and deleted are checked independently of each other and of deferral.
func (s Status) Matches(t *Todo, now time.Time) bool {
	switch s {
	case StatusCompleted:
		return t.CompletedAt != nil
	case StatusDeleted:
		return t.DeletedAt != nil
	case StatusOpen:
		return t.CompletedAt == nil && t.DeletedAt == nil
	case StatusAvailable:
		return StatusOpen.Matches(t, now) &&
			(t.DeferredUntil == nil || !t.DeferredUntil.After(now))
	case StatusFuture:
		return StatusOpen.Matches(t, now) &&
			t.DeferredUntil != nil && t.DeferredUntil.After(now)
	case StatusTomorrow:
		return StatusFuture.Matches(t, now) &&
			t.DeferredUntil.Before(now.Add(TomorrowWindow))
	default:
		return false
	}
}

// Classify returns every status that holds for t at now.
func Classify(t *Todo, now time.Time) []Status {
	res := []Status{}
	for _, s := range Statuses {
		if s.Matches(t, now) {
			res = append(res, s)
		}
	}
	return res
}
