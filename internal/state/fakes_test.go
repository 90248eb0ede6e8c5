package state

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/lifetrack/internal/auth"
	"github.com/dmitrijs2005/lifetrack/internal/common"
	"github.com/dmitrijs2005/lifetrack/internal/models"
)

var errBoom = errors.New("boom")

var testSession = &auth.Session{UserID: "u1", AccessToken: "at"}

type recordingNotifier struct {
	mu       sync.Mutex
	success  []string
	warnings []string
	errors   []string
}

func (n *recordingNotifier) Success(msg string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.success = append(n.success, msg)
}

func (n *recordingNotifier) Warning(msg string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.warnings = append(n.warnings, msg)
}

func (n *recordingNotifier) Error(msg string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.errors = append(n.errors, msg)
}

// callLog records calls across fakes in order.
type callLog struct {
	mu    sync.Mutex
	calls []string
}

func (l *callLog) add(format string, args ...any) {
	l.mu.Lock()
	l.calls = append(l.calls, fmt.Sprintf(format, args...))
	l.mu.Unlock()
}

func (l *callLog) all() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.calls...)
}

// -------- todos --------

type fakeTodoPrimary struct {
	log     *callLog
	items   []models.Todo
	listErr error
	err     error
	toggled bool
	nextID  string
}

func (f *fakeTodoPrimary) Create(ctx context.Context, sess *auth.Session, req models.CreateTodoRequest) (string, error) {
	f.log.add("primary create %s", req.Title)
	if f.err != nil {
		return "", f.err
	}
	f.items = append(f.items, models.Todo{ID: f.nextID, Title: req.Title})
	return f.nextID, nil
}

func (f *fakeTodoPrimary) List(ctx context.Context, sess *auth.Session, completed *bool) ([]models.Todo, error) {
	f.log.add("primary list")
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.items, nil
}

func (f *fakeTodoPrimary) GetByID(ctx context.Context, sess *auth.Session, id string) (*models.Todo, error) {
	for _, t := range f.items {
		if t.ID == id {
			return &t, nil
		}
	}
	return nil, nil
}

func (f *fakeTodoPrimary) Update(ctx context.Context, sess *auth.Session, id string, req models.UpdateTodoRequest) error {
	f.log.add("primary update %s", id)
	return f.err
}

func (f *fakeTodoPrimary) Delete(ctx context.Context, sess *auth.Session, id string) error {
	f.log.add("primary delete %s", id)
	return f.err
}

func (f *fakeTodoPrimary) ToggleCompletion(ctx context.Context, sess *auth.Session, id string) (bool, error) {
	f.log.add("primary toggle %s", id)
	if f.err != nil {
		return false, f.err
	}
	f.toggled = !f.toggled
	return f.toggled, nil
}

type fakeTodoBackup struct {
	log     *callLog
	items   []models.Todo
	listErr error
	err     error
	updates []models.UpdateTodoRequest
	token   string
}

func (f *fakeTodoBackup) CreateTodo(ctx context.Context, sess *auth.Session, id string, req models.CreateTodoRequest) (string, error) {
	f.log.add("backup create %s %s", id, req.Title)
	f.token = sess.AccessToken
	return id, f.err
}

func (f *fakeTodoBackup) GetTodos(ctx context.Context, sess *auth.Session, completed *bool) ([]models.Todo, error) {
	f.log.add("backup list")
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.items, nil
}

func (f *fakeTodoBackup) UpdateTodo(ctx context.Context, sess *auth.Session, id string, req models.UpdateTodoRequest) (bool, error) {
	f.log.add("backup update %s", id)
	f.updates = append(f.updates, req)
	return f.err == nil, f.err
}

func (f *fakeTodoBackup) DeleteTodo(ctx context.Context, sess *auth.Session, id string) (bool, error) {
	f.log.add("backup delete %s", id)
	return f.err == nil, f.err
}

// -------- ideas --------

type fakeIdeaPrimary struct {
	log       *callLog
	items     []models.Idea
	listErr   error
	searchErr error
	err       error
	favorite  bool
}

func (f *fakeIdeaPrimary) Create(ctx context.Context, sess *auth.Session, req models.CreateIdeaRequest) (string, error) {
	f.log.add("primary create %s", req.Title)
	if f.err != nil {
		return "", f.err
	}
	f.items = append(f.items, models.Idea{ID: "i-new", Title: req.Title})
	return "i-new", nil
}

func (f *fakeIdeaPrimary) List(ctx context.Context, sess *auth.Session, isFavorite *bool) ([]models.Idea, error) {
	f.log.add("primary list")
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.items, nil
}

func (f *fakeIdeaPrimary) GetByID(ctx context.Context, sess *auth.Session, id string) (*models.Idea, error) {
	return nil, common.ErrorNotFound
}

func (f *fakeIdeaPrimary) Update(ctx context.Context, sess *auth.Session, id string, req models.UpdateIdeaRequest) error {
	f.log.add("primary update %s", id)
	return f.err
}

func (f *fakeIdeaPrimary) Delete(ctx context.Context, sess *auth.Session, id string) error {
	f.log.add("primary delete %s", id)
	return f.err
}

func (f *fakeIdeaPrimary) ToggleFavorite(ctx context.Context, sess *auth.Session, id string) (bool, error) {
	f.log.add("primary toggle %s", id)
	if f.err != nil {
		return false, f.err
	}
	f.favorite = !f.favorite
	return f.favorite, nil
}

func (f *fakeIdeaPrimary) Search(ctx context.Context, sess *auth.Session, keyword string) ([]models.Idea, error) {
	f.log.add("primary search %s", keyword)
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	var out []models.Idea
	for _, i := range f.items {
		if i.Matches(keyword) {
			out = append(out, i)
		}
	}
	return out, nil
}

type fakeIdeaBackup struct {
	log     *callLog
	items   []models.Idea
	listErr error
	updates []models.UpdateIdeaRequest
}

func (f *fakeIdeaBackup) CreateIdea(ctx context.Context, sess *auth.Session, id string, req models.CreateIdeaRequest) (string, error) {
	f.log.add("backup create %s", id)
	return id, nil
}

func (f *fakeIdeaBackup) GetIdeas(ctx context.Context, sess *auth.Session, isFavorite *bool) ([]models.Idea, error) {
	f.log.add("backup list")
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.items, nil
}

func (f *fakeIdeaBackup) UpdateIdea(ctx context.Context, sess *auth.Session, id string, req models.UpdateIdeaRequest) (bool, error) {
	f.log.add("backup update %s", id)
	f.updates = append(f.updates, req)
	return true, nil
}

func (f *fakeIdeaBackup) DeleteIdea(ctx context.Context, sess *auth.Session, id string) (bool, error) {
	f.log.add("backup delete %s", id)
	return true, nil
}

func (f *fakeIdeaBackup) SearchIdeas(ctx context.Context, sess *auth.Session, keyword string) ([]models.Idea, error) {
	f.log.add("backup search %s", keyword)
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.items, nil
}

// -------- achievements --------

type fakeAchPrimary struct {
	log     *callLog
	items   []models.Achievement
	listErr error
	err     error
}

func (f *fakeAchPrimary) Create(ctx context.Context, sess *auth.Session, req models.CreateAchievementRequest) (*models.Achievement, error) {
	f.log.add("primary create %s", req.Title)
	if f.err != nil {
		return nil, f.err
	}
	a := models.Achievement{ID: "a-new", Title: req.Title, Date: req.Date}
	f.items = append(f.items, a)
	return &a, nil
}

func (f *fakeAchPrimary) List(ctx context.Context, sess *auth.Session) ([]models.Achievement, error) {
	f.log.add("primary list")
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.items, nil
}

func (f *fakeAchPrimary) GetByID(ctx context.Context, sess *auth.Session, id string) (*models.Achievement, error) {
	return nil, common.ErrorNotFound
}

func (f *fakeAchPrimary) Update(ctx context.Context, sess *auth.Session, id string, req models.UpdateAchievementRequest) error {
	f.log.add("primary update %s", id)
	return f.err
}

func (f *fakeAchPrimary) Delete(ctx context.Context, sess *auth.Session, id string) error {
	f.log.add("primary delete %s", id)
	return f.err
}

func (f *fakeAchPrimary) SearchByTags(ctx context.Context, sess *auth.Session, tags []string) ([]models.Achievement, error) {
	f.log.add("primary search %v", tags)
	return f.items, f.err
}

func (f *fakeAchPrimary) GetByDateRange(ctx context.Context, sess *auth.Session, start, end string) ([]models.Achievement, error) {
	f.log.add("primary range %s %s", start, end)
	return f.items, f.err
}

func (f *fakeAchPrimary) DeleteImage(ctx context.Context, sess *auth.Session, id string, index int) error {
	f.log.add("primary delete image %s %d", id, index)
	return f.err
}
