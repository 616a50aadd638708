package query

import (
	"strings"

	"todoTracker/internal/models/todo"
)

const PageSize = 10

// maxPage keeps Offset far away from integer overflow.
const maxPage = 1 << 24

type Page struct {
	Number int
}

// NewPage treats anything below 1 as the first page.
func NewPage(number int) Page {
	if number < 1 {
		number = 1
	}
	if number > maxPage {
		number = maxPage
	}
	return Page{Number: number}
}

func (p Page) Offset() int {
	return (p.Number - 1) * PageSize
}

func (p Page) Limit() int {
	return PageSize
}

// Bounds returns the slice window of this page over n rows.
func (p Page) Bounds(n int) (int, int) {
	lo := p.Offset()
	if lo > n {
		lo = n
	}
	hi := lo + p.Limit()
	if hi > n {
		hi = n
	}
	return lo, hi
}

// Paginates reports whether the requested status set is exactly {completed} or {deleted}.
// Unknown names still count as members of the set.
func Paginates(requested []string) bool {
	set := make(map[string]bool)
	for _, name := range requested {
		name = strings.ToLower(strings.TrimSpace(name))
		if name != "" {
			set[name] = true
		}
	}
	if len(set) != 1 {
		return false
	}
	return set[string(todo.StatusCompleted)] || set[string(todo.StatusDeleted)]
}

func PageCount(total int) int {
	if total <= 0 {
		return 0
	}
	return (total + PageSize - 1) / PageSize
}
