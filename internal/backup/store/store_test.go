package store

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/dmitrijs2005/lifetrack/internal/common"
	"github.com/dmitrijs2005/lifetrack/internal/models"
	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background(), "file:"+t.Name()+"?mode=memory&cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	clock := time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)
	tick := func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}
	s.Todos.now = tick
	s.Ideas.now = tick
	return s
}

func TestMigrate_WrapsError(t *testing.T) {
	orig := gooseUpContext
	t.Cleanup(func() { gooseUpContext = orig })
	gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
		return errors.New("boom")
	}

	_, err := Open(context.Background(), "file:"+t.Name()+"?mode=memory&cache=shared")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "migrate backup store: boom")
}

func TestTodos_UpsertAndGet(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	id, err := s.Todos.Upsert(ctx, "u-1", "todo-1", models.CreateTodoRequest{Title: "Buy milk", Priority: models.Ptr(1)})
	require.NoError(t, err)
	assert.Equal(t, "todo-1", id)

	got, err := s.Todos.GetByID(ctx, "u-1", id)
	require.NoError(t, err)
	assert.Equal(t, "Buy milk", got.Title)
	assert.Equal(t, 1, got.Priority)
	assert.False(t, got.Completed)
	assert.Equal(t, common.DefaultCategory, got.Category)
	assert.Equal(t, []string{}, got.Tags)
	assert.Nil(t, got.Description)
	assert.Nil(t, got.DueDate)

	// a repeated create with the same id overwrites instead of failing
	_, err = s.Todos.Upsert(ctx, "u-1", "todo-1", models.CreateTodoRequest{Title: "Buy oat milk", Tags: []string{"shop"}})
	require.NoError(t, err)
	got, err = s.Todos.GetByID(ctx, "u-1", id)
	require.NoError(t, err)
	assert.Equal(t, "Buy oat milk", got.Title)
	assert.Equal(t, []string{"shop"}, got.Tags)

	_, err = s.Todos.GetByID(ctx, "u-2", id)
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestTodos_UpsertGeneratesID(t *testing.T) {
	s := openTestStore(t)
	id, err := s.Todos.Upsert(context.Background(), "u-1", "", models.CreateTodoRequest{Title: "x"})
	require.NoError(t, err)
	assert.Len(t, id, 36)
}

func TestTodos_UpsertDoesNotStealOtherUsersRow(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	_, err := s.Todos.Upsert(ctx, "u-1", "same", models.CreateTodoRequest{Title: "mine"})
	require.NoError(t, err)
	_, err = s.Todos.Upsert(ctx, "u-2", "same", models.CreateTodoRequest{Title: "theirs"})
	require.NoError(t, err)

	got, err := s.Todos.GetByID(ctx, "u-1", "same")
	require.NoError(t, err)
	assert.Equal(t, "mine", got.Title)
}

func TestTodos_ListFilterAndOrder(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	for _, id := range []string{"a", "b", "c"} {
		_, err := s.Todos.Upsert(ctx, "u-1", id, models.CreateTodoRequest{Title: id})
		require.NoError(t, err)
	}
	_, err := s.Todos.Upsert(ctx, "u-2", "z", models.CreateTodoRequest{Title: "z"})
	require.NoError(t, err)

	done, err := s.Todos.ToggleCompletion(ctx, "u-1", "b")
	require.NoError(t, err)
	assert.True(t, done)

	all, err := s.Todos.List(ctx, "u-1", nil)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{"c", "b", "a"}, []string{all[0].ID, all[1].ID, all[2].ID})

	completed, err := s.Todos.List(ctx, "u-1", models.Ptr(true))
	require.NoError(t, err)
	require.Len(t, completed, 1)
	assert.Equal(t, "b", completed[0].ID)

	pending, err := s.Todos.List(ctx, "u-1", models.Ptr(false))
	require.NoError(t, err)
	assert.Len(t, pending, 2)

	empty, err := s.Todos.List(ctx, "nobody", nil)
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}

func TestTodos_UpdatePartial(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	_, err := s.Todos.Upsert(ctx, "u-1", "t", models.CreateTodoRequest{
		Title:    "Write report",
		Tags:     []string{"work"},
		Category: models.Ptr("job"),
		DueDate:  models.Ptr("2026-02-01"),
	})
	require.NoError(t, err)
	before, err := s.Todos.GetByID(ctx, "u-1", "t")
	require.NoError(t, err)

	ok, err := s.Todos.Update(ctx, "u-1", "t", models.UpdateTodoRequest{Title: models.Ptr("Write final report")})
	require.NoError(t, err)
	assert.True(t, ok)

	after, err := s.Todos.GetByID(ctx, "u-1", "t")
	require.NoError(t, err)
	assert.Equal(t, "Write final report", after.Title)
	assert.Equal(t, before.Tags, after.Tags)
	assert.Equal(t, before.Category, after.Category)
	assert.Equal(t, before.DueDate, after.DueDate)
	assert.True(t, after.UpdatedAt.After(before.UpdatedAt))
	assert.True(t, after.CreatedAt.Equal(before.CreatedAt))

	ok, err = s.Todos.Update(ctx, "u-1", "t", models.UpdateTodoRequest{DueDate: models.Ptr(""), Tags: []string{}})
	require.NoError(t, err)
	assert.True(t, ok)
	after, err = s.Todos.GetByID(ctx, "u-1", "t")
	require.NoError(t, err)
	assert.Nil(t, after.DueDate)
	assert.Equal(t, []string{}, after.Tags)

	ok, err = s.Todos.Update(ctx, "u-1", "missing", models.UpdateTodoRequest{Title: models.Ptr("x")})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestTodos_DeleteAndToggleMissing(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	_, err := s.Todos.Upsert(ctx, "u-1", "t", models.CreateTodoRequest{Title: "x"})
	require.NoError(t, err)

	ok, err := s.Todos.Delete(ctx, "u-2", "t")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = s.Todos.Delete(ctx, "u-1", "t")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.Todos.Delete(ctx, "u-1", "t")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = s.Todos.ToggleCompletion(ctx, "u-1", "t")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestTodos_ToggleTwiceRestores(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	_, err := s.Todos.Upsert(ctx, "u-1", "t", models.CreateTodoRequest{Title: "x"})
	require.NoError(t, err)

	v, err := s.Todos.ToggleCompletion(ctx, "u-1", "t")
	require.NoError(t, err)
	assert.True(t, v)
	v, err = s.Todos.ToggleCompletion(ctx, "u-1", "t")
	require.NoError(t, err)
	assert.False(t, v)
}

func TestIdeas_CRUD(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	id, err := s.Ideas.Upsert(ctx, "u-1", "i-1", models.CreateIdeaRequest{Title: "Garden", Content: "Grow tomatoes", Tags: []string{"Home"}})
	require.NoError(t, err)

	got, err := s.Ideas.GetByID(ctx, "u-1", id)
	require.NoError(t, err)
	assert.False(t, got.IsFavorite)
	assert.Equal(t, common.DefaultCategory, got.Category)
	assert.Equal(t, []string{"Home"}, got.Tags)

	fav, err := s.Ideas.ToggleFavorite(ctx, "u-1", id)
	require.NoError(t, err)
	assert.True(t, fav)

	favs, err := s.Ideas.List(ctx, "u-1", models.Ptr(true))
	require.NoError(t, err)
	require.Len(t, favs, 1)

	ok, err := s.Ideas.Update(ctx, "u-1", id, models.UpdateIdeaRequest{Content: models.Ptr("Grow peppers")})
	require.NoError(t, err)
	assert.True(t, ok)
	got, err = s.Ideas.GetByID(ctx, "u-1", id)
	require.NoError(t, err)
	assert.Equal(t, "Grow peppers", got.Content)
	assert.Equal(t, "Garden", got.Title)
	assert.True(t, got.IsFavorite)

	fav, err = s.Ideas.ToggleFavorite(ctx, "u-1", id)
	require.NoError(t, err)
	assert.False(t, fav)

	ok, err = s.Ideas.Delete(ctx, "u-1", id)
	require.NoError(t, err)
	assert.True(t, ok)
	_, err = s.Ideas.GetByID(ctx, "u-1", id)
	assert.ErrorIs(t, err, common.ErrorNotFound)
	_, err = s.Ideas.ToggleFavorite(ctx, "u-1", id)
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestIdeas_Search(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	seed := []struct {
		id, title, content string
		tags               []string
	}{
		{"1", "Solar roof", "cheap energy", nil},
		{"2", "Trip", "visit the SOLAR museum", nil},
		{"3", "Budget", "track spending", []string{"Solar"}},
		{"4", "Discount", "50% off", nil},
		{"5", "Other", "nothing", []string{"misc"}},
	}
	for _, sd := range seed {
		_, err := s.Ideas.Upsert(ctx, "u-1", sd.id, models.CreateIdeaRequest{Title: sd.title, Content: sd.content, Tags: sd.tags})
		require.NoError(t, err)
	}
	_, err := s.Ideas.Upsert(ctx, "u-2", "x", models.CreateIdeaRequest{Title: "solar", Content: "solar"})
	require.NoError(t, err)

	got, err := s.Ideas.Search(ctx, "u-1", "solar")
	require.NoError(t, err)
	ids := []string{}
	for _, i := range got {
		ids = append(ids, i.ID)
	}
	assert.Equal(t, []string{"3", "2", "1"}, ids)

	got, err = s.Ideas.Search(ctx, "u-1", "50%")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "4", got[0].ID)

	got, err = s.Ideas.Search(ctx, "u-1", "_")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestTagsCodec(t *testing.T) {
	s, err := encodeTags(nil)
	require.NoError(t, err)
	assert.Equal(t, "[]", s)

	tags, err := decodeTags("")
	require.NoError(t, err)
	assert.Equal(t, []string{}, tags)

	_, err = decodeTags("{")
	assert.Error(t, err)
}

func TestLikePattern(t *testing.T) {
	assert.Equal(t, `%50\%\_off%`, likePattern("50%_OFF"))
}
