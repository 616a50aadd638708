package compliance

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"todoTracker/internal/models/category"
	"todoTracker/internal/models/todo"
	"todoTracker/internal/models/user"
	"todoTracker/internal/query"
	repo "todoTracker/internal/repository"
	"todoTracker/internal/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunStorageComplianceTest runs the same behavioural checks against any service.Storage.
// setup returns a fresh store and a teardown func.
func RunStorageComplianceTest(t *testing.T, setup func() (service.Storage, func())) {
	ctx := context.Background()

	newUser := func(t *testing.T, store service.Storage, email string) *user.User {
		u := &user.User{ID: uuid.New(), Email: email, PasswordDigest: "digest"}
		require.NoError(t, store.CreateUser(ctx, u))
		return u
	}

	newTodo := func(t *testing.T, store service.Storage, owner uuid.UUID, name string, opts ...todo.TodoOption) *todo.Todo {
		item := &todo.Todo{ID: uuid.New(), UserID: owner, Name: name}
		for _, opt := range opts {
			opt(item)
		}
		require.NoError(t, store.CreateTodo(ctx, item))
		return item
	}

	names := func(todos []*todo.Todo) []string {
		res := make([]string, 0, len(todos))
		for _, item := range todos {
			res = append(res, item.Name)
		}
		return res
	}

	t.Run("UserEmailIsNormalizedAndUnique", func(t *testing.T) {
		store, teardown := setup()
		defer teardown()

		u := newUser(t, store, "  Alice@Example.COM ")
		assert.Equal(t, "alice@example.com", u.Email)
		assert.False(t, u.CreatedAt.IsZero())

		err := store.CreateUser(ctx, &user.User{ID: uuid.New(), Email: "alice@example.com", PasswordDigest: "x"})
		require.ErrorIs(t, err, repo.ErrEmailTaken)

		byEmail, err := store.GetUserByEmail(ctx, "ALICE@example.com")
		require.NoError(t, err)
		assert.Equal(t, u.ID, byEmail.ID)

		byID, err := store.GetUserByID(ctx, u.ID)
		require.NoError(t, err)
		assert.Equal(t, "digest", byID.PasswordDigest)

		_, err = store.GetUserByID(ctx, uuid.New())
		require.ErrorIs(t, err, repo.ErrNotFound)
	})

	t.Run("TodoCRUD", func(t *testing.T) {
		store, teardown := setup()
		defer teardown()
		owner := newUser(t, store, "owner@example.com")

		notes := "two litres"
		created := newTodo(t, store, owner.ID, "Buy milk", todo.WithNotes(&notes))
		assert.False(t, created.CreatedAt.IsZero())

		got, err := store.GetTodo(ctx, owner.ID, created.ID)
		require.NoError(t, err)
		assert.Equal(t, "Buy milk", got.Name)
		require.NotNil(t, got.Notes)
		assert.Equal(t, notes, *got.Notes)
		assert.Nil(t, got.CompletedAt)

		done := time.Now().UTC().Truncate(time.Millisecond)
		got.CompletedAt = &done
		got.Notes = nil
		require.NoError(t, store.UpdateTodo(ctx, got))

		reloaded, err := store.GetTodo(ctx, owner.ID, created.ID)
		require.NoError(t, err)
		require.NotNil(t, reloaded.CompletedAt)
		assert.True(t, done.Equal(*reloaded.CompletedAt))
		assert.Nil(t, reloaded.Notes)
		assert.True(t, created.CreatedAt.Equal(reloaded.CreatedAt))

		require.NoError(t, store.DeleteTodo(ctx, owner.ID, created.ID))
		_, err = store.GetTodo(ctx, owner.ID, created.ID)
		require.ErrorIs(t, err, repo.ErrNotFound)
		require.ErrorIs(t, store.DeleteTodo(ctx, owner.ID, created.ID), repo.ErrNotFound)
	})

	t.Run("TodoIsInvisibleToOtherUsers", func(t *testing.T) {
		store, teardown := setup()
		defer teardown()
		owner := newUser(t, store, "owner@example.com")
		stranger := newUser(t, store, "stranger@example.com")

		item := newTodo(t, store, owner.ID, "private")

		_, err := store.GetTodo(ctx, stranger.ID, item.ID)
		require.ErrorIs(t, err, repo.ErrNotFound)
		require.ErrorIs(t, store.DeleteTodo(ctx, stranger.ID, item.ID), repo.ErrNotFound)

		hijack := item.Clone()
		hijack.UserID = stranger.ID
		hijack.Name = "mine now"
		require.ErrorIs(t, store.UpdateTodo(ctx, hijack), repo.ErrNotFound)

		todos, err := store.FindTodos(ctx, query.Build(stranger.ID, query.Params{}, time.Now()))
		require.NoError(t, err)
		assert.Empty(t, todos)
	})

	t.Run("TodoWithUnknownCategoryIsRejected", func(t *testing.T) {
		store, teardown := setup()
		defer teardown()
		owner := newUser(t, store, "owner@example.com")

		missing := uuid.New()
		err := store.CreateTodo(ctx, &todo.Todo{ID: uuid.New(), UserID: owner.ID, Name: "x", CategoryID: &missing})
		require.ErrorIs(t, err, repo.ErrConstraint)
	})

	t.Run("FindTodosFiltersSearchesAndSorts", func(t *testing.T) {
		store, teardown := setup()
		defer teardown()
		owner := newUser(t, store, "owner@example.com")

		now := time.Now().UTC()
		base := now.Add(-time.Hour)
		past := now.Add(-30 * time.Minute)
		soon := now.Add(2 * time.Hour)
		later := now.Add(72 * time.Hour)
		created := func(i int) todo.TodoOption {
			return func(item *todo.Todo) { item.CreatedAt = base.Add(time.Duration(i) * time.Minute) }
		}

		newTodo(t, store, owner.ID, "alpha", created(0))
		newTodo(t, store, owner.ID, "beta 50%_off", created(1), todo.WithCompletedAt(&past))
		newTodo(t, store, owner.ID, "gamma", created(2), todo.WithDeferredUntil(&soon, now))
		newTodo(t, store, owner.ID, "delta", created(3), todo.WithDeferredUntil(&later, now))
		newTodo(t, store, owner.ID, "epsilon", created(4), todo.WithDeletedAt(&past))

		find := func(p query.Params) []string {
			todos, err := store.FindTodos(ctx, query.Build(owner.ID, p, now))
			require.NoError(t, err)
			return names(todos)
		}

		assert.Equal(t, []string{"alpha", "beta 50%_off", "gamma", "delta", "epsilon"}, find(query.Params{}))
		assert.Equal(t, []string{"alpha", "gamma", "delta"}, find(query.Params{Statuses: []string{"open"}}))
		assert.Equal(t, []string{"alpha"}, find(query.Params{Statuses: []string{"available"}}))
		assert.Equal(t, []string{"gamma"}, find(query.Params{Statuses: []string{"tomorrow"}}))
		assert.Equal(t, []string{"gamma", "delta"}, find(query.Params{Statuses: []string{"future"}}))
		assert.Equal(t, []string{"beta 50%_off", "epsilon"}, find(query.Params{Statuses: []string{"completed", "deleted"}}))
		assert.Equal(t, []string{"alpha", "beta 50%_off", "gamma", "delta", "epsilon"}, find(query.Params{Statuses: []string{"bogus"}}))

		assert.Equal(t, []string{"beta 50%_off"}, find(query.Params{Search: "50%_"}))
		assert.Equal(t, []string{"delta"}, find(query.Params{Search: "ELT"}))
		assert.Empty(t, find(query.Params{Search: "a_p"}))

		assert.Equal(t, []string{"gamma", "epsilon", "delta", "beta 50%_off", "alpha"}, find(query.Params{Sort: "-name"}))
		assert.Equal(t, []string{"beta 50%_off", "alpha", "gamma", "delta", "epsilon"}, find(query.Params{Sort: "completedAt"}))
		assert.Equal(t, []string{"epsilon", "alpha", "beta 50%_off", "gamma", "delta"}, find(query.Params{Sort: "-deletedAt"}))

		newTodo(t, store, owner.ID, "École meeting", created(5))
		for _, term := range []string{"école", "ÉCOLE", "École", "COLE M"} {
			assert.Equal(t, []string{"École meeting"}, find(query.Params{Search: term}), "search %q", term)
		}
	})

	t.Run("FindTodosSortsNamesByCodePoint", func(t *testing.T) {
		store, teardown := setup()
		defer teardown()
		owner := newUser(t, store, "owner@example.com")

		for _, name := range []string{"apple", "École", "Banana", "zebra"} {
			newTodo(t, store, owner.ID, name)
		}

		todos, err := store.FindTodos(ctx, query.Build(owner.ID, query.Params{Sort: "name"}, time.Now()))
		require.NoError(t, err)
		assert.Equal(t, []string{"Banana", "apple", "zebra", "École"}, names(todos))
	})

	t.Run("FindTodosPaginatesArchives", func(t *testing.T) {
		store, teardown := setup()
		defer teardown()
		owner := newUser(t, store, "owner@example.com")

		base := time.Now().UTC().Add(-time.Hour)
		for i := 0; i < 12; i++ {
			done := base.Add(time.Duration(i) * time.Minute)
			newTodo(t, store, owner.ID, fmt.Sprintf("done %02d", i),
				todo.WithCompletedAt(&done),
				func(item *todo.Todo) { item.CreatedAt = done })
		}
		newTodo(t, store, owner.ID, "still open")

		page := func(n int) query.TodoQuery {
			return query.Build(owner.ID, query.Params{Statuses: []string{"completed"}, Page: n}, time.Now())
		}

		first, err := store.FindTodos(ctx, page(1))
		require.NoError(t, err)
		assert.Len(t, first, query.PageSize)
		assert.Equal(t, "done 00", first[0].Name)

		second, err := store.FindTodos(ctx, page(2))
		require.NoError(t, err)
		assert.Equal(t, []string{"done 10", "done 11"}, names(second))

		beyond, err := store.FindTodos(ctx, page(3))
		require.NoError(t, err)
		assert.Empty(t, beyond)

		total, err := store.CountTodos(ctx, page(2))
		require.NoError(t, err)
		assert.Equal(t, 12, total)
	})

	t.Run("CategoryLifecycle", func(t *testing.T) {
		store, teardown := setup()
		defer teardown()
		owner := newUser(t, store, "owner@example.com")
		stranger := newUser(t, store, "stranger@example.com")

		work := &category.Category{ID: uuid.New(), UserID: owner.ID, Name: "Work", SortOrder: 2}
		home := &category.Category{ID: uuid.New(), UserID: owner.ID, Name: "Home", SortOrder: 1}
		other := &category.Category{ID: uuid.New(), UserID: stranger.ID, Name: "Other", SortOrder: 9}
		for _, c := range []*category.Category{work, home, other} {
			require.NoError(t, store.CreateCategory(ctx, c))
		}

		list, err := store.ListCategories(ctx, owner.ID)
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, "Home", list[0].Name)
		assert.Equal(t, "Work", list[1].Name)

		byIDs, err := store.GetCategoriesByIDs(ctx, owner.ID, []uuid.UUID{work.ID, other.ID, uuid.New(), home.ID})
		require.NoError(t, err)
		require.Len(t, byIDs, 2)
		assert.Equal(t, work.ID, byIDs[0].ID)
		assert.Equal(t, home.ID, byIDs[1].ID)

		_, err = store.GetCategory(ctx, stranger.ID, work.ID)
		require.ErrorIs(t, err, repo.ErrNotFound)

		work.Name = "Office"
		work.SortOrder = 5
		require.NoError(t, store.UpdateCategory(ctx, work))
		got, err := store.GetCategory(ctx, owner.ID, work.ID)
		require.NoError(t, err)
		assert.Equal(t, "Office", got.Name)
		assert.Equal(t, 5, got.SortOrder)

		item := newTodo(t, store, owner.ID, "file taxes", todo.WithCategory(&work.ID))

		require.ErrorIs(t, store.DeleteCategory(ctx, stranger.ID, work.ID), repo.ErrNotFound)
		require.NoError(t, store.DeleteCategory(ctx, owner.ID, work.ID))

		reloaded, err := store.GetTodo(ctx, owner.ID, item.ID)
		require.NoError(t, err)
		assert.Nil(t, reloaded.CategoryID)

		_, err = store.GetCategory(ctx, owner.ID, work.ID)
		require.ErrorIs(t, err, repo.ErrNotFound)
	})

	t.Run("AppendCategoryTakesNextPosition", func(t *testing.T) {
		store, teardown := setup()
		defer teardown()
		owner := newUser(t, store, "owner@example.com")
		stranger := newUser(t, store, "stranger@example.com")

		first := &category.Category{ID: uuid.New(), UserID: owner.ID, Name: "Work"}
		require.NoError(t, store.AppendCategory(ctx, first))
		assert.Equal(t, 1, first.SortOrder)
		assert.False(t, first.CreatedAt.IsZero())

		require.NoError(t, store.CreateCategory(ctx, &category.Category{ID: uuid.New(), UserID: owner.ID, Name: "Home", SortOrder: 5}))
		require.NoError(t, store.CreateCategory(ctx, &category.Category{ID: uuid.New(), UserID: stranger.ID, Name: "Other", SortOrder: 40}))

		next := &category.Category{ID: uuid.New(), UserID: owner.ID, Name: "Errands"}
		require.NoError(t, store.AppendCategory(ctx, next))
		assert.Equal(t, 6, next.SortOrder)

		got, err := store.GetCategory(ctx, owner.ID, next.ID)
		require.NoError(t, err)
		assert.Equal(t, 6, got.SortOrder)

		const workers = 8
		positions := make([]int, workers)
		var wg sync.WaitGroup
		for i := 0; i < workers; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				c := &category.Category{ID: uuid.New(), UserID: owner.ID, Name: fmt.Sprintf("parallel %d", i)}
				assert.NoError(t, store.AppendCategory(ctx, c))
				positions[i] = c.SortOrder
			}(i)
		}
		wg.Wait()

		assert.ElementsMatch(t, []int{7, 8, 9, 10, 11, 12, 13, 14}, positions)
	})

	t.Run("HealthCheck", func(t *testing.T) {
		store, teardown := setup()
		defer teardown()

		require.NoError(t, store.HealthCheck(ctx))
	})
}
