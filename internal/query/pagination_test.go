package query_test

import (
	"testing"
	"time"

	"todoTracker/internal/models/todo"
	"todoTracker/internal/query"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPaginates(t *testing.T) {
	tests := []struct {
		statuses []string
		want     bool
	}{
		{[]string{"completed"}, true},
		{[]string{"deleted"}, true},
		{[]string{"completed", "completed"}, true},
		{[]string{"completed", "deleted"}, false},
		{[]string{"completed", "bogus"}, false},
		{[]string{"available"}, false},
		{nil, false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, query.Paginates(tt.statuses), "%v", tt.statuses)
	}
}

func TestPageCount(t *testing.T) {
	assert.Equal(t, 0, query.PageCount(0))
	assert.Equal(t, 1, query.PageCount(1))
	assert.Equal(t, 1, query.PageCount(10))
	assert.Equal(t, 2, query.PageCount(11))
	assert.Equal(t, 6, query.PageCount(51))
}

func TestNewPage(t *testing.T) {
	assert.Equal(t, 1, query.NewPage(0).Number)
	assert.Equal(t, 1, query.NewPage(-4).Number)
	assert.Equal(t, 0, query.NewPage(1).Offset())
	assert.Equal(t, 20, query.NewPage(3).Offset())
	assert.Equal(t, query.PageSize, query.NewPage(3).Limit())
}

func TestBuild_PageOnlyForSingleArchiveStatus(t *testing.T) {
	q := query.Build(userID, query.Params{Statuses: []string{"completed"}, Page: 2}, now)
	require.NotNil(t, q.Page)
	assert.Equal(t, 2, q.Page.Number)
	assert.Nil(t, q.Unpaged().Page)

	q = query.Build(userID, query.Params{Statuses: []string{"available"}, Page: 2}, now)
	assert.Nil(t, q.Page)
}

func TestPage_SequentialPagesAreDisjoint(t *testing.T) {
	todos := []*todo.Todo{}
	for i := 0; i < 25; i++ {
		// identical created_at so only the id tie-breaker orders them
		todos = append(todos, newTodo("Completed", 0, todo.WithCompletedAt(at(-time.Hour))))
	}
	q := query.Build(userID, query.Params{Statuses: []string{"completed"}}, now)
	all := run(q, todos)

	seen := map[string]bool{}
	for number := 1; number <= query.PageCount(len(all)); number++ {
		lo, hi := query.NewPage(number).Bounds(len(all))
		for _, item := range all[lo:hi] {
			assert.False(t, seen[item.ID.String()], "row repeated across pages")
			seen[item.ID.String()] = true
		}
	}
	assert.Len(t, seen, 25)

	lo, hi := query.NewPage(4).Bounds(len(all))
	assert.Equal(t, lo, hi)
}
