package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"

	"github.com/dmitrijs2005/lifetrack/internal/auth"
	"github.com/dmitrijs2005/lifetrack/internal/common"
	"github.com/dmitrijs2005/lifetrack/internal/dbx"
	"github.com/dmitrijs2005/lifetrack/internal/logging"
	"github.com/dmitrijs2005/lifetrack/internal/models"
	"github.com/dmitrijs2005/lifetrack/internal/primary/repomanager"
	"github.com/dmitrijs2005/lifetrack/internal/primary/repositories/achievements"
)

// ImageStore uploads and deletes achievement attachments.
type ImageStore interface {
	UploadMany(ctx context.Context, files []models.ImageFile) ([]models.UploadedImage, error)
	DeleteOne(ctx context.Context, token string) error
	DeleteMany(ctx context.Context, tokens []string) error
}

type AchievementService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	images      ImageStore
	log         logging.Logger
}

// NewAchievementService builds the service. images may be nil when no
// object store is configured; creating entries with attachments then fails.
func NewAchievementService(db *sql.DB, repomanager repomanager.RepositoryManager, images ImageStore, log logging.Logger) *AchievementService {
	return &AchievementService{db: db, repomanager: repomanager, images: images, log: log.With("module", "achievements")}
}

// Create uploads the attachments, then inserts the row. If the insert fails
// the uploaded objects are removed again.
func (s *AchievementService) Create(ctx context.Context, sess *auth.Session, req models.CreateAchievementRequest) (*models.Achievement, error) {
	if err := auth.Require(sess); err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	uploaded, err := s.upload(ctx, req.Images)
	if err != nil {
		return nil, err
	}

	a := models.Achievement{
		Title:           req.Title,
		Content:         req.Content,
		Date:            req.Date,
		Tags:            req.Tags,
		Images:          make([]string, 0, len(uploaded)),
		ImageTimestamps: make([]string, 0, len(uploaded)),
	}
	for _, u := range uploaded {
		a.Images = append(a.Images, u.URL)
		a.ImageTimestamps = append(a.ImageTimestamps, u.Token)
	}

	created, err := s.repomanager.Achievements(s.db).Create(ctx, sess.UserID, a)
	if err != nil {
		s.discard(ctx, "create rollback", a.ImageTimestamps)
		return nil, remote("create_achievement", err)
	}
	return created, nil
}

// List returns the caller's entries, latest journal date first.
func (s *AchievementService) List(ctx context.Context, sess *auth.Session) ([]models.Achievement, error) {
	if err := auth.Require(sess); err != nil {
		return nil, err
	}
	items, err := s.repomanager.Achievements(s.db).List(ctx, sess.UserID)
	if err != nil {
		return nil, remote("list_achievements", err)
	}
	return items, nil
}

// GetByID returns nil without an error when the entry does not exist.
func (s *AchievementService) GetByID(ctx context.Context, sess *auth.Session, id string) (*models.Achievement, error) {
	if err := auth.Require(sess); err != nil {
		return nil, err
	}
	if !validID(id) {
		return nil, nil
	}
	item, err := s.repomanager.Achievements(s.db).GetByID(ctx, sess.UserID, id)
	if errors.Is(err, common.ErrorNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, remote("get_achievement", err)
	}
	return item, nil
}

// Update applies the present fields. Images listed in RemoveImages are
// dropped and NewImages appended within one transaction; the removed
// objects are deleted from storage after the commit.
func (s *AchievementService) Update(ctx context.Context, sess *auth.Session, id string, req models.UpdateAchievementRequest) error {
	if err := auth.Require(sess); err != nil {
		return err
	}
	if err := req.Validate(); err != nil {
		return err
	}
	if !validID(id) {
		return common.ErrorNotFound
	}

	uploaded, err := s.upload(ctx, req.NewImages)
	if err != nil {
		return err
	}

	var removed []string
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Achievements(tx)

		patch := achievements.Patch{Title: req.Title, Content: req.Content, Date: req.Date, Tags: req.Tags}

		if len(req.RemoveImages) > 0 || len(uploaded) > 0 {
			cur, err := repo.GetForUpdate(ctx, sess.UserID, id)
			if err != nil {
				return err
			}
			removed, err = removeImages(cur, req.RemoveImages)
			if err != nil {
				return err
			}
			for _, u := range uploaded {
				cur.Images = append(cur.Images, u.URL)
				cur.ImageTimestamps = append(cur.ImageTimestamps, u.Token)
			}
			patch.Images = &achievements.ImageSet{URLs: cur.Images, Tokens: cur.ImageTimestamps}
		}

		return repo.Update(ctx, sess.UserID, id, patch)
	})
	if err != nil {
		tokens := make([]string, 0, len(uploaded))
		for _, u := range uploaded {
			tokens = append(tokens, u.Token)
		}
		s.discard(ctx, "update rollback", tokens)
		return remote("update_achievement", err)
	}

	s.discard(ctx, "update", removed)
	return nil
}

// Delete removes the row first and then its stored images. Storage failures
// are logged; the row stays deleted.
func (s *AchievementService) Delete(ctx context.Context, sess *auth.Session, id string) error {
	if err := auth.Require(sess); err != nil {
		return err
	}
	if !validID(id) {
		return nil
	}
	tokens, err := s.repomanager.Achievements(s.db).Delete(ctx, sess.UserID, id)
	if err != nil {
		return remote("delete_achievement", err)
	}
	s.discard(ctx, "delete", tokens)
	return nil
}

// SearchByTags returns entries sharing at least one of tags.
func (s *AchievementService) SearchByTags(ctx context.Context, sess *auth.Session, tags []string) ([]models.Achievement, error) {
	if err := auth.Require(sess); err != nil {
		return nil, err
	}
	if len(tags) == 0 {
		return []models.Achievement{}, nil
	}
	items, err := s.repomanager.Achievements(s.db).SearchByTags(ctx, sess.UserID, tags)
	if err != nil {
		return nil, remote("search_achievements", err)
	}
	return items, nil
}

// GetByDateRange returns entries journaled between start and end inclusive.
func (s *AchievementService) GetByDateRange(ctx context.Context, sess *auth.Session, start, end string) ([]models.Achievement, error) {
	if err := auth.Require(sess); err != nil {
		return nil, err
	}
	if err := validateRange(start, end); err != nil {
		return nil, err
	}
	items, err := s.repomanager.Achievements(s.db).GetByDateRange(ctx, sess.UserID, start, end)
	if err != nil {
		return nil, remote("achievements_by_date", err)
	}
	return items, nil
}

// DeleteImage removes the image at index from both parallel arrays and then
// asks the object store to delete it. Out-of-range indexes fail with
// common.ErrInvalidIndex and leave the entry unchanged.
func (s *AchievementService) DeleteImage(ctx context.Context, sess *auth.Session, id string, index int) error {
	if err := auth.Require(sess); err != nil {
		return err
	}
	if !validID(id) {
		return common.ErrorNotFound
	}

	var token string
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Achievements(tx)
		cur, err := repo.GetForUpdate(ctx, sess.UserID, id)
		if err != nil {
			return err
		}
		token, err = cur.RemoveImageAt(index)
		if err != nil {
			return err
		}
		return repo.Update(ctx, sess.UserID, id, achievements.Patch{
			Images: &achievements.ImageSet{URLs: cur.Images, Tokens: cur.ImageTimestamps},
		})
	})
	if err != nil {
		return remote("delete_achievement_image", err)
	}

	if s.images == nil {
		s.log.Warn(ctx, "object store not configured, image left in storage", "token", token)
		return nil
	}
	if err := s.images.DeleteOne(ctx, token); err != nil {
		s.log.Warn(ctx, "failed to delete image from storage", "id", id, "token", token, "error", err)
	}
	return nil
}

func (s *AchievementService) upload(ctx context.Context, files []models.ImageFile) ([]models.UploadedImage, error) {
	if len(files) == 0 {
		return nil, nil
	}
	if s.images == nil {
		return nil, fmt.Errorf("%w: object store is not configured", common.ErrUploadFailure)
	}
	return s.images.UploadMany(ctx, files)
}

// discard deletes stored objects best-effort.
func (s *AchievementService) discard(ctx context.Context, reason string, tokens []string) {
	if len(tokens) == 0 {
		return
	}
	if s.images == nil {
		s.log.Warn(ctx, "object store not configured, images left in storage", "reason", reason, "tokens", tokens)
		return
	}
	if err := s.images.DeleteMany(ctx, tokens); err != nil {
		s.log.Warn(ctx, "failed to delete images from storage", "reason", reason, "error", err)
	}
}

// removeImages drops the given indexes from a, highest first so earlier
// indexes stay valid, and returns the removed tokens in index order.
func removeImages(a *models.Achievement, indexes []int) ([]string, error) {
	if len(indexes) == 0 {
		return nil, nil
	}
	for _, i := range indexes {
		if i < 0 || i >= len(a.Images) {
			return nil, fmt.Errorf("%w: %d (have %d images)", common.ErrInvalidIndex, i, len(a.Images))
		}
	}
	sorted := append([]int(nil), indexes...)
	sort.Sort(sort.Reverse(sort.IntSlice(sorted)))

	removed := make([]string, len(sorted))
	for n, i := range sorted {
		token, err := a.RemoveImageAt(i)
		if err != nil {
			return nil, err
		}
		removed[len(sorted)-1-n] = token
	}
	return removed, nil
}

func validateRange(start, end string) error {
	from, err := (models.Achievement{Date: start}).ParsedDate()
	if err != nil {
		return fmt.Errorf("%w: start must be YYYY-MM-DD", common.ErrValidation)
	}
	to, err := (models.Achievement{Date: end}).ParsedDate()
	if err != nil {
		return fmt.Errorf("%w: end must be YYYY-MM-DD", common.ErrValidation)
	}
	if to.Before(from) {
		return fmt.Errorf("%w: end is before start", common.ErrValidation)
	}
	return nil
}
