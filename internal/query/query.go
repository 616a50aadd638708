// Package query turns listing parameters into a user-scoped, ordered todo query.
//
// A TodoQuery is backend neutral: SQL stores render it with Where/OrderBy, the in-memory
// store evaluates it with Match/Compare. Both give the same rows in the same order:
// search folds case with Unicode rules and names sort by code point.
package query

import (
	"bytes"
	"strings"
	"time"

	"todoTracker/internal/models/todo"

	"github.com/google/uuid"
)

// Params are the raw listing parameters as they arrive from the transport.
type Params struct {
	Statuses []string
	Search   string
	Sort     string
	Page     int
}

type TodoQuery struct {
	UserID   uuid.UUID
	Statuses []todo.Status
	Search   string
	Sort     []SortKey
	Now      time.Time
	// Page is nil when the result is not paginated.
	Page *Page
}

// Build composes the query for userID. Unknown status names and sort fields are dropped.
func Build(userID uuid.UUID, p Params, now time.Time) TodoQuery {
	q := TodoQuery{
		UserID:   userID,
		Statuses: knownStatuses(p.Statuses),
		Search:   strings.TrimSpace(p.Search),
		Sort:     ParseSort(p.Sort),
		Now:      now.UTC(),
	}
	if Paginates(p.Statuses) {
		page := NewPage(p.Page)
		q.Page = &page
	}
	return q
}

// Unpaged returns a copy of q without the page window, used for counting.
func (q TodoQuery) Unpaged() TodoQuery {
	q.Page = nil
	return q
}

// SplitList splits a comma-separated parameter value, dropping blanks.
func SplitList(raw string) []string {
	res := []string{}
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			res = append(res, part)
		}
	}
	return res
}

func knownStatuses(raw []string) []todo.Status {
	res := []todo.Status{}
	seen := make(map[todo.Status]bool)
	for _, name := range raw {
		s, ok := todo.ParseStatus(name)
		if !ok || seen[s] {
			continue
		}
		seen[s] = true
		res = append(res, s)
	}
	return res
}

// Match reports whether t belongs to the result set.
func (q TodoQuery) Match(t *todo.Todo) bool {
	if t.UserID != q.UserID {
		return false
	}
	if len(q.Statuses) > 0 {
		matched := false
		for _, s := range q.Statuses {
			if s.Matches(t, q.Now) {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}
	if q.Search != "" && !strings.Contains(strings.ToLower(t.Name), strings.ToLower(q.Search)) {
		return false
	}
	return true
}

// Compare orders two todos the way OrderBy orders rows: requested keys with NULLs last,
// then created_at and id.
func (q TodoQuery) Compare(a, b *todo.Todo) int {
	for _, key := range q.Sort {
		if c := key.compare(a, b); c != 0 {
			return c
		}
	}
	if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
		return c
	}
	return bytes.Compare(a.ID[:], b.ID[:])
}
