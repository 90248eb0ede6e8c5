package state

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/dmitrijs2005/lifetrack/internal/auth"
	"github.com/dmitrijs2005/lifetrack/internal/logging"
	"github.com/dmitrijs2005/lifetrack/internal/models"
)

type TodoPrimary interface {
	Create(ctx context.Context, sess *auth.Session, req models.CreateTodoRequest) (string, error)
	List(ctx context.Context, sess *auth.Session, completed *bool) ([]models.Todo, error)
	GetByID(ctx context.Context, sess *auth.Session, id string) (*models.Todo, error)
	Update(ctx context.Context, sess *auth.Session, id string, req models.UpdateTodoRequest) error
	Delete(ctx context.Context, sess *auth.Session, id string) error
	ToggleCompletion(ctx context.Context, sess *auth.Session, id string) (bool, error)
}

type TodoBackup interface {
	CreateTodo(ctx context.Context, sess *auth.Session, id string, req models.CreateTodoRequest) (string, error)
	GetTodos(ctx context.Context, sess *auth.Session, completed *bool) ([]models.Todo, error)
	UpdateTodo(ctx context.Context, sess *auth.Session, id string, req models.UpdateTodoRequest) (bool, error)
	DeleteTodo(ctx context.Context, sess *auth.Session, id string) (bool, error)
}

type TodoFilter string

const (
	TodoFilterAll       TodoFilter = "all"
	TodoFilterPending   TodoFilter = "pending"
	TodoFilterCompleted TodoFilter = "completed"
)

type TodoCounts struct {
	Total     int
	Pending   int
	Completed int
}

// TodoContainer holds the signed-in user's todos.
type TodoContainer struct {
	collection[models.Todo]

	primary TodoPrimary
	backup  TodoBackup
	mirror  *Mirror
	notify  Notifier
	log     logging.Logger

	fmu      sync.RWMutex
	filter   TodoFilter
	category string
}

// NewTodoContainer builds a container. backup and mirror may be nil, in
// which case nothing is mirrored and loads have no fallback.
func NewTodoContainer(primary TodoPrimary, backup TodoBackup, mirror *Mirror, notify Notifier, log logging.Logger) *TodoContainer {
	if notify == nil {
		notify = NopNotifier{}
	}
	return &TodoContainer{
		collection: newCollection(models.Todo.Clone),
		primary:    primary,
		backup:     backup,
		mirror:     mirror,
		notify:     notify,
		log:        log.With("module", "todo_state"),
		filter:     TodoFilterAll,
	}
}

// Load replaces the collection from the primary store, falling back to the
// backup with a warning. Without a session the collection is emptied and
// nothing is fetched.
func (c *TodoContainer) Load(ctx context.Context, sess *auth.Session, completed *bool) error {
	if auth.Require(sess) != nil {
		c.replace(nil)
		return nil
	}

	c.setLoading(true)
	defer c.setLoading(false)

	items, err := c.primary.List(ctx, sess, completed)
	if err == nil {
		c.replace(items)
		return nil
	}
	c.log.Warn(ctx, "primary list failed", "error", err)

	if c.backup != nil {
		items, berr := c.backup.GetTodos(ctx, sess, completed)
		if berr == nil {
			c.replace(items)
			c.notify.Warning(UsingBackupData)
			return nil
		}
		c.log.Warn(ctx, "backup list failed", "error", berr)
	}

	err = fmt.Errorf("load todos: %w", err)
	c.setErr(err)
	c.notify.Error(err.Error())
	return err
}

// refresh reloads the full collection from the primary store after a write.
func (c *TodoContainer) refresh(ctx context.Context, sess *auth.Session) {
	items, err := c.primary.List(ctx, sess, nil)
	if err != nil {
		c.log.Warn(ctx, "refresh after write failed", "error", err)
		c.setErr(fmt.Errorf("refresh todos: %w", err))
		return
	}
	c.replace(items)
}

func (c *TodoContainer) mirrorWrite(sess *auth.Session, op string, fn func(ctx context.Context, sess *auth.Session) error) {
	if c.backup == nil || c.mirror == nil {
		return
	}
	s := *sess
	c.mirror.Enqueue(op, func(ctx context.Context) error { return fn(ctx, &s) })
}

func (c *TodoContainer) fail(op string, err error) error {
	c.notify.Error(fmt.Sprintf("%s: %v", op, err))
	return err
}

func (c *TodoContainer) Create(ctx context.Context, sess *auth.Session, req models.CreateTodoRequest) (string, error) {
	c.setLoading(true)
	defer c.setLoading(false)

	id, err := c.primary.Create(ctx, sess, req)
	if err != nil {
		return "", c.fail("create todo", err)
	}
	c.mirrorWrite(sess, "create todo", func(ctx context.Context, s *auth.Session) error {
		_, err := c.backup.CreateTodo(ctx, s, id, req)
		return err
	})
	c.refresh(ctx, sess)
	c.notify.Success("todo created")
	return id, nil
}

func (c *TodoContainer) Update(ctx context.Context, sess *auth.Session, id string, req models.UpdateTodoRequest) error {
	c.setLoading(true)
	defer c.setLoading(false)

	if err := c.primary.Update(ctx, sess, id, req); err != nil {
		return c.fail("update todo", err)
	}
	c.mirrorWrite(sess, "update todo", func(ctx context.Context, s *auth.Session) error {
		_, err := c.backup.UpdateTodo(ctx, s, id, req)
		return err
	})
	c.refresh(ctx, sess)
	c.notify.Success("todo updated")
	return nil
}

func (c *TodoContainer) Delete(ctx context.Context, sess *auth.Session, id string) error {
	c.setLoading(true)
	defer c.setLoading(false)

	if err := c.primary.Delete(ctx, sess, id); err != nil {
		return c.fail("delete todo", err)
	}
	c.mirrorWrite(sess, "delete todo", func(ctx context.Context, s *auth.Session) error {
		_, err := c.backup.DeleteTodo(ctx, s, id)
		return err
	})
	c.refresh(ctx, sess)
	c.notify.Success("todo deleted")
	return nil
}

// ToggleCompletion flips the todo on the primary store and mirrors the
// resulting value to the backup as a plain update.
func (c *TodoContainer) ToggleCompletion(ctx context.Context, sess *auth.Session, id string) (bool, error) {
	c.setLoading(true)
	defer c.setLoading(false)

	v, err := c.primary.ToggleCompletion(ctx, sess, id)
	if err != nil {
		return false, c.fail("toggle todo", err)
	}
	c.mirrorWrite(sess, "toggle todo", func(ctx context.Context, s *auth.Session) error {
		_, err := c.backup.UpdateTodo(ctx, s, id, models.UpdateTodoRequest{Completed: &v})
		return err
	})
	c.refresh(ctx, sess)
	c.notify.Success("todo updated")
	return v, nil
}

// GetByID reads one todo from the primary store; nil when absent.
func (c *TodoContainer) GetByID(ctx context.Context, sess *auth.Session, id string) (*models.Todo, error) {
	return c.primary.GetByID(ctx, sess, id)
}

// -------- views --------

func (c *TodoContainer) Todos() []models.Todo {
	return c.snapshot()
}

func (c *TodoContainer) SetFilter(f TodoFilter) {
	c.fmu.Lock()
	c.filter = f
	c.fmu.Unlock()
}

func (c *TodoContainer) Filter() TodoFilter {
	c.fmu.RLock()
	defer c.fmu.RUnlock()
	return c.filter
}

// SetCategory narrows Filtered to one category; "" means any.
func (c *TodoContainer) SetCategory(category string) {
	c.fmu.Lock()
	c.category = category
	c.fmu.Unlock()
}

// Filtered applies the completion filter and category selection.
func (c *TodoContainer) Filtered() []models.Todo {
	c.fmu.RLock()
	filter, category := c.filter, c.category
	c.fmu.RUnlock()

	out := []models.Todo{}
	for _, t := range c.snapshot() {
		switch {
		case filter == TodoFilterPending && t.Completed,
			filter == TodoFilterCompleted && !t.Completed,
			category != "" && t.Category != category:
			continue
		}
		out = append(out, t)
	}
	return out
}

func (c *TodoContainer) Counts() TodoCounts {
	var n TodoCounts
	for _, t := range c.snapshot() {
		n.Total++
		if t.Completed {
			n.Completed++
		} else {
			n.Pending++
		}
	}
	return n
}

// ByPriority groups the filtered todos by priority.
func (c *TodoContainer) ByPriority() map[int][]models.Todo {
	out := map[int][]models.Todo{}
	for _, t := range c.Filtered() {
		out[t.Priority] = append(out[t.Priority], t)
	}
	return out
}

// ByCategory groups the filtered todos by category.
func (c *TodoContainer) ByCategory() map[string][]models.Todo {
	out := map[string][]models.Todo{}
	for _, t := range c.Filtered() {
		out[t.Category] = append(out[t.Category], t)
	}
	return out
}

// Categories lists the distinct categories, sorted.
func (c *TodoContainer) Categories() []string {
	seen := map[string]struct{}{}
	for _, t := range c.snapshot() {
		seen[t.Category] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for k := range seen {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func (c *TodoContainer) FindByID(id string) (models.Todo, bool) {
	for _, t := range c.snapshot() {
		if t.ID == id {
			return t, true
		}
	}
	return models.Todo{}, false
}
