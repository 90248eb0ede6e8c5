package state

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/dmitrijs2005/lifetrack/internal/auth"
	"github.com/dmitrijs2005/lifetrack/internal/logging"
	"github.com/dmitrijs2005/lifetrack/internal/models"
)

type IdeaPrimary interface {
	Create(ctx context.Context, sess *auth.Session, req models.CreateIdeaRequest) (string, error)
	List(ctx context.Context, sess *auth.Session, isFavorite *bool) ([]models.Idea, error)
	GetByID(ctx context.Context, sess *auth.Session, id string) (*models.Idea, error)
	Update(ctx context.Context, sess *auth.Session, id string, req models.UpdateIdeaRequest) error
	Delete(ctx context.Context, sess *auth.Session, id string) error
	ToggleFavorite(ctx context.Context, sess *auth.Session, id string) (bool, error)
	Search(ctx context.Context, sess *auth.Session, keyword string) ([]models.Idea, error)
}

type IdeaBackup interface {
	CreateIdea(ctx context.Context, sess *auth.Session, id string, req models.CreateIdeaRequest) (string, error)
	GetIdeas(ctx context.Context, sess *auth.Session, isFavorite *bool) ([]models.Idea, error)
	UpdateIdea(ctx context.Context, sess *auth.Session, id string, req models.UpdateIdeaRequest) (bool, error)
	DeleteIdea(ctx context.Context, sess *auth.Session, id string) (bool, error)
	SearchIdeas(ctx context.Context, sess *auth.Session, keyword string) ([]models.Idea, error)
}

type IdeaFilter string

const (
	IdeaFilterAll       IdeaFilter = "all"
	IdeaFilterFavorites IdeaFilter = "favorites"
)

type IdeaCounts struct {
	Total     int
	Favorites int
}

// IdeaContainer holds the signed-in user's ideas.
type IdeaContainer struct {
	collection[models.Idea]

	primary IdeaPrimary
	backup  IdeaBackup
	mirror  *Mirror
	notify  Notifier
	log     logging.Logger

	fmu     sync.RWMutex
	filter  IdeaFilter
	keyword string
}

func NewIdeaContainer(primary IdeaPrimary, backup IdeaBackup, mirror *Mirror, notify Notifier, log logging.Logger) *IdeaContainer {
	if notify == nil {
		notify = NopNotifier{}
	}
	return &IdeaContainer{
		collection: newCollection(models.Idea.Clone),
		primary:    primary,
		backup:     backup,
		mirror:     mirror,
		notify:     notify,
		log:        log.With("module", "idea_state"),
		filter:     IdeaFilterAll,
	}
}

func (c *IdeaContainer) Load(ctx context.Context, sess *auth.Session, isFavorite *bool) error {
	if auth.Require(sess) != nil {
		c.replace(nil)
		return nil
	}

	c.setLoading(true)
	defer c.setLoading(false)

	items, err := c.primary.List(ctx, sess, isFavorite)
	if err == nil {
		c.replace(items)
		return nil
	}
	c.log.Warn(ctx, "primary list failed", "error", err)

	if c.backup != nil {
		items, berr := c.backup.GetIdeas(ctx, sess, isFavorite)
		if berr == nil {
			c.replace(items)
			c.notify.Warning(UsingBackupData)
			return nil
		}
		c.log.Warn(ctx, "backup list failed", "error", berr)
	}

	err = fmt.Errorf("load ideas: %w", err)
	c.setErr(err)
	c.notify.Error(err.Error())
	return err
}

func (c *IdeaContainer) refresh(ctx context.Context, sess *auth.Session) {
	items, err := c.primary.List(ctx, sess, nil)
	if err != nil {
		c.log.Warn(ctx, "refresh after write failed", "error", err)
		c.setErr(fmt.Errorf("refresh ideas: %w", err))
		return
	}
	c.replace(items)
}

func (c *IdeaContainer) mirrorWrite(sess *auth.Session, op string, fn func(ctx context.Context, sess *auth.Session) error) {
	if c.backup == nil || c.mirror == nil {
		return
	}
	s := *sess
	c.mirror.Enqueue(op, func(ctx context.Context) error { return fn(ctx, &s) })
}

func (c *IdeaContainer) fail(op string, err error) error {
	c.notify.Error(fmt.Sprintf("%s: %v", op, err))
	return err
}

func (c *IdeaContainer) Create(ctx context.Context, sess *auth.Session, req models.CreateIdeaRequest) (string, error) {
	c.setLoading(true)
	defer c.setLoading(false)

	id, err := c.primary.Create(ctx, sess, req)
	if err != nil {
		return "", c.fail("create idea", err)
	}
	c.mirrorWrite(sess, "create idea", func(ctx context.Context, s *auth.Session) error {
		_, err := c.backup.CreateIdea(ctx, s, id, req)
		return err
	})
	c.refresh(ctx, sess)
	c.notify.Success("idea created")
	return id, nil
}

func (c *IdeaContainer) Update(ctx context.Context, sess *auth.Session, id string, req models.UpdateIdeaRequest) error {
	c.setLoading(true)
	defer c.setLoading(false)

	if err := c.primary.Update(ctx, sess, id, req); err != nil {
		return c.fail("update idea", err)
	}
	c.mirrorWrite(sess, "update idea", func(ctx context.Context, s *auth.Session) error {
		_, err := c.backup.UpdateIdea(ctx, s, id, req)
		return err
	})
	c.refresh(ctx, sess)
	c.notify.Success("idea updated")
	return nil
}

func (c *IdeaContainer) Delete(ctx context.Context, sess *auth.Session, id string) error {
	c.setLoading(true)
	defer c.setLoading(false)

	if err := c.primary.Delete(ctx, sess, id); err != nil {
		return c.fail("delete idea", err)
	}
	c.mirrorWrite(sess, "delete idea", func(ctx context.Context, s *auth.Session) error {
		_, err := c.backup.DeleteIdea(ctx, s, id)
		return err
	})
	c.refresh(ctx, sess)
	c.notify.Success("idea deleted")
	return nil
}

// ToggleFavorite flips the flag on the primary store and mirrors the
// resulting value.
func (c *IdeaContainer) ToggleFavorite(ctx context.Context, sess *auth.Session, id string) (bool, error) {
	c.setLoading(true)
	defer c.setLoading(false)

	v, err := c.primary.ToggleFavorite(ctx, sess, id)
	if err != nil {
		return false, c.fail("toggle idea", err)
	}
	c.mirrorWrite(sess, "toggle idea", func(ctx context.Context, s *auth.Session) error {
		_, err := c.backup.UpdateIdea(ctx, s, id, models.UpdateIdeaRequest{IsFavorite: &v})
		return err
	})
	c.refresh(ctx, sess)
	c.notify.Success("idea updated")
	return v, nil
}

func (c *IdeaContainer) GetByID(ctx context.Context, sess *auth.Session, id string) (*models.Idea, error) {
	return c.primary.GetByID(ctx, sess, id)
}

// Search runs a keyword search on the primary store, falling back to the
// backup. The collection is not touched.
func (c *IdeaContainer) Search(ctx context.Context, sess *auth.Session, keyword string) ([]models.Idea, error) {
	if err := auth.Require(sess); err != nil {
		return nil, err
	}

	c.setLoading(true)
	defer c.setLoading(false)

	items, err := c.primary.Search(ctx, sess, keyword)
	if err == nil {
		return items, nil
	}
	c.log.Warn(ctx, "primary search failed", "error", err)

	if c.backup != nil {
		items, berr := c.backup.SearchIdeas(ctx, sess, keyword)
		if berr == nil {
			c.notify.Warning(UsingBackupData)
			return items, nil
		}
		c.log.Warn(ctx, "backup search failed", "error", berr)
	}
	return nil, c.fail("search ideas", err)
}

// -------- views --------

func (c *IdeaContainer) Ideas() []models.Idea {
	return c.snapshot()
}

func (c *IdeaContainer) SetFilter(f IdeaFilter) {
	c.fmu.Lock()
	c.filter = f
	c.fmu.Unlock()
}

func (c *IdeaContainer) Filter() IdeaFilter {
	c.fmu.RLock()
	defer c.fmu.RUnlock()
	return c.filter
}

// SetKeyword narrows Filtered to ideas matching keyword locally.
func (c *IdeaContainer) SetKeyword(keyword string) {
	c.fmu.Lock()
	c.keyword = strings.TrimSpace(keyword)
	c.fmu.Unlock()
}

func (c *IdeaContainer) Filtered() []models.Idea {
	c.fmu.RLock()
	filter, keyword := c.filter, c.keyword
	c.fmu.RUnlock()

	out := []models.Idea{}
	for _, i := range c.snapshot() {
		if filter == IdeaFilterFavorites && !i.IsFavorite {
			continue
		}
		if !i.Matches(keyword) {
			continue
		}
		out = append(out, i)
	}
	return out
}

func (c *IdeaContainer) Counts() IdeaCounts {
	var n IdeaCounts
	for _, i := range c.snapshot() {
		n.Total++
		if i.IsFavorite {
			n.Favorites++
		}
	}
	return n
}

// ByTag groups the filtered ideas by tag; an idea appears under each of
// its tags.
func (c *IdeaContainer) ByTag() map[string][]models.Idea {
	out := map[string][]models.Idea{}
	for _, i := range c.Filtered() {
		for _, t := range i.Tags {
			out[t] = append(out[t], i)
		}
	}
	return out
}

func (c *IdeaContainer) AllTags() []string {
	seen := map[string]struct{}{}
	for _, i := range c.snapshot() {
		for _, t := range i.Tags {
			seen[t] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for t := range seen {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

func (c *IdeaContainer) FindByID(id string) (models.Idea, bool) {
	for _, i := range c.snapshot() {
		if i.ID == id {
			return i, true
		}
	}
	return models.Idea{}, false
}
