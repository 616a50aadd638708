package query

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"todoTracker/internal/models/todo"
)

// Where renders the filter with "?" placeholders. Column names are those of the todos table.
func (q TodoQuery) Where() (string, []any) {
	clauses := []string{"user_id = ?"}
	args := []any{q.UserID}

	if len(q.Statuses) > 0 {
		parts := make([]string, 0, len(q.Statuses))
		for _, s := range q.Statuses {
			clause, statusArgs := statusPredicate(s, q.Now)
			parts = append(parts, "("+clause+")")
			args = append(args, statusArgs...)
		}
		clauses = append(clauses, "("+strings.Join(parts, " OR ")+")")
	}

	if q.Search != "" {
		clauses = append(clauses, `LOWER(name) LIKE ? ESCAPE '\'`)
		args = append(args, "%"+escapeLike(strings.ToLower(q.Search))+"%")
	}

	return strings.Join(clauses, " AND "), args
}

// OrderBy renders the ORDER BY list (without the keyword).
func (q TodoQuery) OrderBy() string {
	return q.orderBy("")
}

// OrderByCollated is OrderBy with text columns compared under collation. Postgres needs
// "C" there to order names by code point like the other stores do.
func (q TodoQuery) OrderByCollated(collation string) string {
	return q.orderBy(collation)
}

func (q TodoQuery) orderBy(collation string) string {
	parts := make([]string, 0, len(q.Sort)+2)
	for _, key := range q.Sort {
		column := key.Column
		if collation != "" && column == "name" {
			column += " COLLATE " + collation
		}
		parts = append(parts, fmt.Sprintf("%s %s NULLS LAST", column, key.direction()))
	}
	parts = append(parts, "created_at ASC", "id ASC")
	return strings.Join(parts, ", ")
}

func statusPredicate(s todo.Status, now time.Time) (string, []any) {
	const open = "completed_at IS NULL AND deleted_at IS NULL"

	switch s {
	case todo.StatusCompleted:
		return "completed_at IS NOT NULL", nil
	case todo.StatusDeleted:
		return "deleted_at IS NOT NULL", nil
	case todo.StatusOpen:
		return open, nil
	case todo.StatusAvailable:
		return open + " AND (deferred_until IS NULL OR deferred_until <= ?)", []any{now}
	case todo.StatusFuture:
		return open + " AND deferred_until > ?", []any{now}
	case todo.StatusTomorrow:
		return open + " AND deferred_until > ? AND deferred_until < ?", []any{now, now.Add(todo.TomorrowWindow)}
	default:
		return "FALSE", nil
	}
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

// Rebind rewrites "?" placeholders to the positional "$n" form used by pgx,
// starting at $start.
func Rebind(sql string, start int) string {
	var b strings.Builder
	n := start
	for _, r := range sql {
		if r == '?' {
			b.WriteString("$" + strconv.Itoa(n))
			n++
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
