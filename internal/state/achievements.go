package state

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/dmitrijs2005/lifetrack/internal/auth"
	"github.com/dmitrijs2005/lifetrack/internal/common"
	"github.com/dmitrijs2005/lifetrack/internal/logging"
	"github.com/dmitrijs2005/lifetrack/internal/models"
)

// RecentWindow is how far back Recent looks.
const RecentWindow = 30 * 24 * time.Hour

type AchievementPrimary interface {
	Create(ctx context.Context, sess *auth.Session, req models.CreateAchievementRequest) (*models.Achievement, error)
	List(ctx context.Context, sess *auth.Session) ([]models.Achievement, error)
	GetByID(ctx context.Context, sess *auth.Session, id string) (*models.Achievement, error)
	Update(ctx context.Context, sess *auth.Session, id string, req models.UpdateAchievementRequest) error
	Delete(ctx context.Context, sess *auth.Session, id string) error
	SearchByTags(ctx context.Context, sess *auth.Session, tags []string) ([]models.Achievement, error)
	GetByDateRange(ctx context.Context, sess *auth.Session, start, end string) ([]models.Achievement, error)
	DeleteImage(ctx context.Context, sess *auth.Session, id string, index int) error
}

// AchievementContainer holds the signed-in user's achievements. There is
// no backup for achievements, so loads fail when the primary store does.
type AchievementContainer struct {
	collection[models.Achievement]

	primary AchievementPrimary
	notify  Notifier
	log     logging.Logger

	fmu       sync.RWMutex
	tags      []string
	startDate string
	endDate   string
}

func NewAchievementContainer(primary AchievementPrimary, notify Notifier, log logging.Logger) *AchievementContainer {
	if notify == nil {
		notify = NopNotifier{}
	}
	return &AchievementContainer{
		collection: newCollection(models.Achievement.Clone),
		primary:    primary,
		notify:     notify,
		log:        log.With("module", "achievement_state"),
	}
}

func (c *AchievementContainer) Load(ctx context.Context, sess *auth.Session) error {
	if auth.Require(sess) != nil {
		c.replace(nil)
		return nil
	}

	c.setLoading(true)
	defer c.setLoading(false)

	items, err := c.primary.List(ctx, sess)
	if err != nil {
		err = fmt.Errorf("load achievements: %w", err)
		c.setErr(err)
		c.notify.Error(err.Error())
		return err
	}
	c.replace(items)
	return nil
}

func (c *AchievementContainer) refresh(ctx context.Context, sess *auth.Session) {
	items, err := c.primary.List(ctx, sess)
	if err != nil {
		c.log.Warn(ctx, "refresh after write failed", "error", err)
		c.setErr(fmt.Errorf("refresh achievements: %w", err))
		return
	}
	c.replace(items)
}

func (c *AchievementContainer) fail(op string, err error) error {
	c.notify.Error(fmt.Sprintf("%s: %v", op, err))
	return err
}

func (c *AchievementContainer) Create(ctx context.Context, sess *auth.Session, req models.CreateAchievementRequest) (*models.Achievement, error) {
	c.setLoading(true)
	defer c.setLoading(false)

	a, err := c.primary.Create(ctx, sess, req)
	if err != nil {
		return nil, c.fail("create achievement", err)
	}
	c.refresh(ctx, sess)
	c.notify.Success("achievement created")
	return a, nil
}

func (c *AchievementContainer) Update(ctx context.Context, sess *auth.Session, id string, req models.UpdateAchievementRequest) error {
	c.setLoading(true)
	defer c.setLoading(false)

	if err := c.primary.Update(ctx, sess, id, req); err != nil {
		return c.fail("update achievement", err)
	}
	c.refresh(ctx, sess)
	c.notify.Success("achievement updated")
	return nil
}

func (c *AchievementContainer) Delete(ctx context.Context, sess *auth.Session, id string) error {
	c.setLoading(true)
	defer c.setLoading(false)

	if err := c.primary.Delete(ctx, sess, id); err != nil {
		return c.fail("delete achievement", err)
	}
	c.refresh(ctx, sess)
	c.notify.Success("achievement deleted")
	return nil
}

func (c *AchievementContainer) DeleteImage(ctx context.Context, sess *auth.Session, id string, index int) error {
	c.setLoading(true)
	defer c.setLoading(false)

	if err := c.primary.DeleteImage(ctx, sess, id, index); err != nil {
		return c.fail("delete image", err)
	}
	c.refresh(ctx, sess)
	c.notify.Success("image deleted")
	return nil
}

func (c *AchievementContainer) GetByID(ctx context.Context, sess *auth.Session, id string) (*models.Achievement, error) {
	return c.primary.GetByID(ctx, sess, id)
}

// SearchByTags queries the primary store directly; the collection is not
// touched.
func (c *AchievementContainer) SearchByTags(ctx context.Context, sess *auth.Session, tags []string) ([]models.Achievement, error) {
	c.setLoading(true)
	defer c.setLoading(false)

	items, err := c.primary.SearchByTags(ctx, sess, tags)
	if err != nil {
		return nil, c.fail("search achievements", err)
	}
	return items, nil
}

func (c *AchievementContainer) GetByDateRange(ctx context.Context, sess *auth.Session, start, end string) ([]models.Achievement, error) {
	c.setLoading(true)
	defer c.setLoading(false)

	items, err := c.primary.GetByDateRange(ctx, sess, start, end)
	if err != nil {
		return nil, c.fail("achievements by date", err)
	}
	return items, nil
}

// -------- views --------

func (c *AchievementContainer) Achievements() []models.Achievement {
	return c.snapshot()
}

// SetTags selects the tags Filtered matches; an empty list selects all.
func (c *AchievementContainer) SetTags(tags []string) {
	c.fmu.Lock()
	c.tags = append([]string(nil), tags...)
	c.fmu.Unlock()
}

// SetDateRange bounds Filtered by YYYY-MM-DD dates, inclusive. Empty
// bounds are open.
func (c *AchievementContainer) SetDateRange(start, end string) error {
	for _, d := range []string{start, end} {
		if d == "" {
			continue
		}
		if _, err := time.Parse(common.DateLayout, d); err != nil {
			return fmt.Errorf("%w: date %q must be YYYY-MM-DD", common.ErrValidation, d)
		}
	}
	c.fmu.Lock()
	c.startDate, c.endDate = start, end
	c.fmu.Unlock()
	return nil
}

func (c *AchievementContainer) ClearFilters() {
	c.fmu.Lock()
	c.tags = nil
	c.startDate, c.endDate = "", ""
	c.fmu.Unlock()
}

func (c *AchievementContainer) Filtered() []models.Achievement {
	c.fmu.RLock()
	tags, start, end := c.tags, c.startDate, c.endDate
	c.fmu.RUnlock()

	out := []models.Achievement{}
	for _, a := range c.snapshot() {
		if len(tags) > 0 && !a.HasAnyTag(tags) {
			continue
		}
		if start != "" && a.Date < start {
			continue
		}
		if end != "" && a.Date > end {
			continue
		}
		out = append(out, a)
	}
	return out
}

// Recent returns achievements dated within RecentWindow before now.
func (c *AchievementContainer) Recent(now time.Time) []models.Achievement {
	cutoff := now.Add(-RecentWindow).UTC().Format(common.DateLayout)
	out := []models.Achievement{}
	for _, a := range c.snapshot() {
		if a.Date >= cutoff {
			out = append(out, a)
		}
	}
	return out
}

func (c *AchievementContainer) AllTags() []string {
	seen := map[string]struct{}{}
	for _, a := range c.snapshot() {
		for _, t := range a.Tags {
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

// ByMonth groups achievements by the YYYY-MM prefix of their date.
func (c *AchievementContainer) ByMonth() map[string][]models.Achievement {
	out := map[string][]models.Achievement{}
	for _, a := range c.snapshot() {
		if len(a.Date) < 7 {
			continue
		}
		m := a.Date[:7]
		out[m] = append(out[m], a)
	}
	return out
}

func (c *AchievementContainer) FindByID(id string) (models.Achievement, bool) {
	for _, a := range c.snapshot() {
		if a.ID == id {
			return a, true
		}
	}
	return models.Achievement{}, false
}
