package query

import (
	"strings"
	"time"

	"todoTracker/internal/models/todo"
)

// sortColumns maps the public sort field names to columns.
var sortColumns = map[string]string{
	"name":        "name",
	"completedAt": "completed_at",
	"deletedAt":   "deleted_at",
}

type SortKey struct {
	Field  string
	Column string
	Desc   bool
}

// ParseSort reads a JSON:API sort value such as "-completedAt,name".
func ParseSort(raw string) []SortKey {
	keys := []SortKey{}
	seen := make(map[string]bool)
	for _, field := range SplitList(raw) {
		desc := strings.HasPrefix(field, "-")
		field = strings.TrimPrefix(field, "-")
		column, ok := sortColumns[field]
		if !ok || seen[column] {
			continue
		}
		seen[column] = true
		keys = append(keys, SortKey{Field: field, Column: column, Desc: desc})
	}
	return keys
}

func (k SortKey) direction() string {
	if k.Desc {
		return "DESC"
	}
	return "ASC"
}

func (k SortKey) compare(a, b *todo.Todo) int {
	if k.Column == "name" {
		c := strings.Compare(a.Name, b.Name)
		if k.Desc {
			return -c
		}
		return c
	}

	var at, bt *time.Time
	switch k.Column {
	case "completed_at":
		at, bt = a.CompletedAt, b.CompletedAt
	case "deleted_at":
		at, bt = a.DeletedAt, b.DeletedAt
	}

	// NULLS LAST in both directions
	switch {
	case at == nil && bt == nil:
		return 0
	case at == nil:
		return 1
	case bt == nil:
		return -1
	}
	c := at.Compare(*bt)
	if k.Desc {
		return -c
	}
	return c
}
