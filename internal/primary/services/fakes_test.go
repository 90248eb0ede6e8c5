package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/lifetrack/internal/auth"
	"github.com/dmitrijs2005/lifetrack/internal/common"
	"github.com/dmitrijs2005/lifetrack/internal/dbx"
	"github.com/dmitrijs2005/lifetrack/internal/logging"
	"github.com/dmitrijs2005/lifetrack/internal/models"
	"github.com/dmitrijs2005/lifetrack/internal/primary/repomanager"
	"github.com/dmitrijs2005/lifetrack/internal/primary/repositories/achievements"
	"github.com/dmitrijs2005/lifetrack/internal/primary/repositories/ideas"
	"github.com/dmitrijs2005/lifetrack/internal/primary/repositories/todos"
	"github.com/stretchr/testify/require"
)

var errBoom = errors.New("boom")

var testSession = &auth.Session{UserID: "u1", AccessToken: "at"}

// Row ids are uuid columns; fakes hand out ids of the same shape.
const (
	achID1    = "00000000-0000-4000-8000-0000000000a1"
	achID2    = "00000000-0000-4000-8000-0000000000a2"
	missingID = "00000000-0000-4000-8000-00000000ffff"
)

func fakeID(n int) string { return fmt.Sprintf("00000000-0000-4000-8000-%012d", n) }

// -------- in-memory repositories --------

type memTodos struct {
	todos.Repository
	mu    sync.Mutex
	items map[string]models.Todo
	next  int
	err   error
	calls int
}

func newMemTodos() *memTodos { return &memTodos{items: map[string]models.Todo{}} }

func (m *memTodos) Create(ctx context.Context, userID string, req models.CreateTodoRequest) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return "", m.err
	}
	req = req.WithDefaults()
	m.next++
	id := fakeID(m.next)
	m.items[id] = models.Todo{
		ID: id, Title: req.Title, Description: req.Description, Priority: *req.Priority,
		DueDate: req.DueDate, Tags: req.Tags, Category: *req.Category,
	}
	return id, nil
}

func (m *memTodos) List(ctx context.Context, userID string, completed *bool) ([]models.Todo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	out := []models.Todo{}
	for _, t := range m.items {
		if completed == nil || t.Completed == *completed {
			out = append(out, t)
		}
	}
	return out, nil
}

func (m *memTodos) GetByID(ctx context.Context, userID, id string) (*models.Todo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	t, ok := m.items[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return &t, nil
}

func (m *memTodos) Update(ctx context.Context, userID, id string, req models.UpdateTodoRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return m.err
	}
	t, ok := m.items[id]
	if !ok {
		return common.ErrorNotFound
	}
	m.items[id] = req.Apply(t)
	return nil
}

func (m *memTodos) Delete(ctx context.Context, userID, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return m.err
	}
	delete(m.items, id)
	return nil
}

func (m *memTodos) ToggleCompletion(ctx context.Context, userID, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return false, m.err
	}
	t, ok := m.items[id]
	if !ok {
		return false, common.ErrorNotFound
	}
	t.Completed = !t.Completed
	m.items[id] = t
	return t.Completed, nil
}

type memIdeas struct {
	ideas.Repository
	items   map[string]models.Idea
	err     error
	calls   int
	keyword string
}

func newMemIdeas() *memIdeas { return &memIdeas{items: map[string]models.Idea{}} }

func (m *memIdeas) Create(ctx context.Context, userID string, req models.CreateIdeaRequest) (string, error) {
	m.calls++
	if m.err != nil {
		return "", m.err
	}
	req = req.WithDefaults()
	id := fakeID(len(m.items) + 1)
	m.items[id] = models.Idea{ID: id, Title: req.Title, Content: req.Content, Tags: req.Tags, IsFavorite: *req.IsFavorite, Category: *req.Category}
	return id, nil
}

func (m *memIdeas) List(ctx context.Context, userID string, fav *bool) ([]models.Idea, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	out := []models.Idea{}
	for _, i := range m.items {
		if fav == nil || i.IsFavorite == *fav {
			out = append(out, i)
		}
	}
	return out, nil
}

func (m *memIdeas) GetByID(ctx context.Context, userID, id string) (*models.Idea, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	i, ok := m.items[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return &i, nil
}

func (m *memIdeas) Update(ctx context.Context, userID, id string, req models.UpdateIdeaRequest) error {
	m.calls++
	if m.err != nil {
		return m.err
	}
	i, ok := m.items[id]
	if !ok {
		return common.ErrorNotFound
	}
	m.items[id] = req.Apply(i)
	return nil
}

func (m *memIdeas) Delete(ctx context.Context, userID, id string) error {
	m.calls++
	delete(m.items, id)
	return m.err
}

func (m *memIdeas) ToggleFavorite(ctx context.Context, userID, id string) (bool, error) {
	m.calls++
	if m.err != nil {
		return false, m.err
	}
	i, ok := m.items[id]
	if !ok {
		return false, common.ErrorNotFound
	}
	i.IsFavorite = !i.IsFavorite
	m.items[id] = i
	return i.IsFavorite, nil
}

func (m *memIdeas) Search(ctx context.Context, userID, keyword string) ([]models.Idea, error) {
	m.calls++
	m.keyword = keyword
	if m.err != nil {
		return nil, m.err
	}
	out := []models.Idea{}
	for _, i := range m.items {
		if i.Matches(keyword) {
			out = append(out, i)
		}
	}
	return out, nil
}

type memAchievements struct {
	achievements.Repository
	items     map[string]models.Achievement
	createErr error
	updateErr error
	deleteErr error
	calls     int
	lastTags  []string
	lastRange [2]string
}

func newMemAchievements() *memAchievements {
	return &memAchievements{items: map[string]models.Achievement{}}
}

func (m *memAchievements) Create(ctx context.Context, userID string, a models.Achievement) (*models.Achievement, error) {
	m.calls++
	if m.createErr != nil {
		return nil, m.createErr
	}
	a.ID = fakeID(len(m.items) + 1)
	if a.Tags == nil {
		a.Tags = []string{}
	}
	m.items[a.ID] = a.Clone()
	return &a, nil
}

func (m *memAchievements) List(ctx context.Context, userID string) ([]models.Achievement, error) {
	m.calls++
	out := []models.Achievement{}
	for _, a := range m.items {
		out = append(out, a.Clone())
	}
	return out, nil
}

func (m *memAchievements) GetByID(ctx context.Context, userID, id string) (*models.Achievement, error) {
	m.calls++
	a, ok := m.items[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	c := a.Clone()
	return &c, nil
}

func (m *memAchievements) GetForUpdate(ctx context.Context, userID, id string) (*models.Achievement, error) {
	return m.GetByID(ctx, userID, id)
}

func (m *memAchievements) Update(ctx context.Context, userID, id string, p achievements.Patch) error {
	m.calls++
	if m.updateErr != nil {
		return m.updateErr
	}
	a, ok := m.items[id]
	if !ok {
		return common.ErrorNotFound
	}
	if p.Title != nil {
		a.Title = *p.Title
	}
	if p.Content != nil {
		a.Content = *p.Content
	}
	if p.Date != nil {
		a.Date = *p.Date
	}
	if p.Tags != nil {
		a.Tags = p.Tags
	}
	if p.Images != nil {
		a.Images = append([]string{}, p.Images.URLs...)
		a.ImageTimestamps = append([]string{}, p.Images.Tokens...)
	}
	m.items[id] = a
	return nil
}

func (m *memAchievements) Delete(ctx context.Context, userID, id string) ([]string, error) {
	m.calls++
	if m.deleteErr != nil {
		return nil, m.deleteErr
	}
	a, ok := m.items[id]
	if !ok {
		return nil, nil
	}
	delete(m.items, id)
	return a.ImageTimestamps, nil
}

func (m *memAchievements) SearchByTags(ctx context.Context, userID string, tags []string) ([]models.Achievement, error) {
	m.calls++
	m.lastTags = tags
	out := []models.Achievement{}
	for _, a := range m.items {
		if a.HasAnyTag(tags) {
			out = append(out, a.Clone())
		}
	}
	return out, nil
}

func (m *memAchievements) GetByDateRange(ctx context.Context, userID, start, end string) ([]models.Achievement, error) {
	m.calls++
	m.lastRange = [2]string{start, end}
	return []models.Achievement{}, nil
}

type fakeRepoManager struct {
	repomanager.RepositoryManager
	t *memTodos
	i *memIdeas
	a *memAchievements
}

func (m *fakeRepoManager) Todos(db dbx.DBTX) todos.Repository               { return m.t }
func (m *fakeRepoManager) Ideas(db dbx.DBTX) ideas.Repository               { return m.i }
func (m *fakeRepoManager) Achievements(db dbx.DBTX) achievements.Repository { return m.a }

// -------- object store fake --------

type fakeImages struct {
	uploadErr    error
	deleteOneErr error
	deleteErr    error
	uploaded     []models.ImageFile
	deletedOne   []string
	deletedMany  [][]string
}

func (f *fakeImages) UploadMany(ctx context.Context, files []models.ImageFile) ([]models.UploadedImage, error) {
	if f.uploadErr != nil {
		return nil, f.uploadErr
	}
	out := make([]models.UploadedImage, 0, len(files))
	for _, file := range files {
		f.uploaded = append(f.uploaded, file)
		n := len(f.uploaded)
		out = append(out, models.UploadedImage{
			URL:   "https://cdn.example/" + file.Name,
			Token: fmt.Sprintf("tok-%d", n),
		})
	}
	return out, nil
}

func (f *fakeImages) DeleteOne(ctx context.Context, token string) error {
	f.deletedOne = append(f.deletedOne, token)
	return f.deleteOneErr
}

func (f *fakeImages) DeleteMany(ctx context.Context, tokens []string) error {
	f.deletedMany = append(f.deletedMany, append([]string(nil), tokens...))
	return f.deleteErr
}

// -------- helpers --------

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

func nopLogger() logging.Logger { return logging.Nop() }

var emptySession = auth.Session{}
