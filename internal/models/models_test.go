package models

import (
	"testing"

	"github.com/dmitrijs2005/lifetrack/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateTodoRequest_ValidateAndDefaults(t *testing.T) {
	assert.ErrorIs(t, CreateTodoRequest{Title: "  "}.Validate(), common.ErrValidation)
	assert.ErrorIs(t, CreateTodoRequest{Title: "x", Priority: Ptr(0)}.Validate(), common.ErrValidation)
	assert.ErrorIs(t, CreateTodoRequest{Title: "x", Priority: Ptr(6)}.Validate(), common.ErrValidation)
	assert.ErrorIs(t, CreateTodoRequest{Title: "x", DueDate: Ptr("12/01/2025")}.Validate(), common.ErrValidation)
	require.NoError(t, CreateTodoRequest{Title: "Buy milk", Priority: Ptr(1), DueDate: Ptr("2025-01-12")}.Validate())

	r := CreateTodoRequest{Title: "Buy milk"}.WithDefaults()
	assert.Equal(t, common.DefaultPriority, *r.Priority)
	assert.Equal(t, common.DefaultCategory, *r.Category)
	assert.NotNil(t, r.Tags)
	assert.Empty(t, r.Tags)

	r = CreateTodoRequest{Title: "x", Priority: Ptr(1), Category: Ptr("work"), Tags: []string{"a"}}.WithDefaults()
	assert.Equal(t, 1, *r.Priority)
	assert.Equal(t, "work", *r.Category)
	assert.Equal(t, []string{"a"}, r.Tags)
}

func TestUpdateTodoRequest_ApplyOnlyPresentFields(t *testing.T) {
	orig := Todo{ID: "1", Title: "old", Priority: 2, Tags: []string{"a", "b"}, Category: "work"}

	got := UpdateTodoRequest{Title: Ptr("new")}.Apply(orig.Clone())
	assert.Equal(t, "new", got.Title)
	assert.Equal(t, orig.Tags, got.Tags)
	assert.Equal(t, orig.Category, got.Category)
	assert.Equal(t, orig.Priority, got.Priority)

	got = UpdateTodoRequest{Tags: []string{}}.Apply(orig.Clone())
	assert.Empty(t, got.Tags)

	assert.True(t, UpdateTodoRequest{}.Empty())
	assert.False(t, UpdateTodoRequest{Completed: Ptr(true)}.Empty())
	assert.ErrorIs(t, UpdateTodoRequest{Title: Ptr("")}.Validate(), common.ErrValidation)
	assert.NoError(t, UpdateTodoRequest{DueDate: Ptr("")}.Validate())
}

func TestTodo_CloneIsDeep(t *testing.T) {
	orig := Todo{Tags: []string{"a"}, Description: Ptr("d")}
	c := orig.Clone()
	c.Tags[0] = "z"
	*c.Description = "changed"
	assert.Equal(t, "a", orig.Tags[0])
	assert.Equal(t, "d", *orig.Description)
}

func TestIdea_Matches(t *testing.T) {
	i := Idea{Title: "Rust Book", Content: "read chapter 4", Tags: []string{"reading", "Golang"}}
	assert.True(t, i.Matches("rust"))
	assert.True(t, i.Matches("CHAPTER"))
	assert.True(t, i.Matches("go"))
	assert.True(t, i.Matches("lang"), "tags match by substring")
	assert.True(t, i.Matches(""))
	assert.False(t, i.Matches("read it"))
	assert.False(t, i.Matches("goo"))
}

func TestIdeaRequests(t *testing.T) {
	assert.ErrorIs(t, CreateIdeaRequest{Title: "t"}.Validate(), common.ErrValidation)
	assert.NoError(t, CreateIdeaRequest{Title: "t", Content: "c"}.Validate())

	r := CreateIdeaRequest{Title: "t", Content: "c"}.WithDefaults()
	assert.False(t, *r.IsFavorite)
	assert.Equal(t, common.DefaultCategory, *r.Category)
	assert.Equal(t, []string{}, r.Tags)

	got := UpdateIdeaRequest{IsFavorite: Ptr(true)}.Apply(Idea{Title: "keep", Tags: []string{"x"}})
	assert.True(t, got.IsFavorite)
	assert.Equal(t, "keep", got.Title)
	assert.Equal(t, []string{"x"}, got.Tags)
	assert.ErrorIs(t, UpdateIdeaRequest{Content: Ptr(" ")}.Validate(), common.ErrValidation)
}

func TestAchievement_RemoveImageAt(t *testing.T) {
	a := Achievement{
		Images:          []string{"u0", "u1", "u2"},
		ImageTimestamps: []string{"t0", "t1", "t2"},
	}
	shared := a.Images

	token, err := a.RemoveImageAt(1)
	require.NoError(t, err)
	assert.Equal(t, "t1", token)
	assert.Equal(t, []string{"u0", "u2"}, a.Images)
	assert.Equal(t, []string{"t0", "t2"}, a.ImageTimestamps)
	assert.True(t, a.ImagesAligned())
	assert.Equal(t, []string{"u0", "u1", "u2"}, shared, "backing array must not be mutated")
}

func TestAchievement_RemoveImageAt_OutOfRange(t *testing.T) {
	a := Achievement{Images: []string{"u0"}, ImageTimestamps: []string{"t0"}}
	for _, idx := range []int{-1, 1, 5} {
		_, err := a.RemoveImageAt(idx)
		assert.ErrorIs(t, err, common.ErrInvalidIndex)
		assert.Equal(t, []string{"u0"}, a.Images)
		assert.Equal(t, []string{"t0"}, a.ImageTimestamps)
	}

	bad := Achievement{Images: []string{"u0"}}
	_, err := bad.RemoveImageAt(0)
	assert.ErrorIs(t, err, common.ErrValidation)
}

func TestAchievementRequests(t *testing.T) {
	assert.ErrorIs(t, CreateAchievementRequest{Title: "x", Date: "yesterday"}.Validate(), common.ErrValidation)
	assert.NoError(t, CreateAchievementRequest{Title: "x", Date: "2025-03-01"}.Validate())

	assert.ErrorIs(t, UpdateAchievementRequest{RemoveImages: []int{1, 1}}.Validate(), common.ErrValidation)
	assert.NoError(t, UpdateAchievementRequest{RemoveImages: []int{0, 2}}.Validate())
	assert.True(t, UpdateAchievementRequest{}.Empty())
	assert.False(t, UpdateAchievementRequest{NewImages: []ImageFile{{Name: "a.png"}}}.Empty())
}

func TestAchievement_HasAnyTag(t *testing.T) {
	a := Achievement{Tags: []string{"work", "health"}}
	assert.True(t, a.HasAnyTag([]string{"x", "health"}))
	assert.False(t, a.HasAnyTag([]string{"x"}))
	assert.False(t, a.HasAnyTag(nil))
}

func TestPriorityLabel(t *testing.T) {
	assert.Equal(t, "highest", PriorityLabel(1))
	assert.Equal(t, "lowest", PriorityLabel(5))
	assert.Equal(t, "unknown", PriorityLabel(9))
}
