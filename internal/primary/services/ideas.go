package services

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/dmitrijs2005/lifetrack/internal/auth"
	"github.com/dmitrijs2005/lifetrack/internal/common"
	"github.com/dmitrijs2005/lifetrack/internal/logging"
	"github.com/dmitrijs2005/lifetrack/internal/models"
	"github.com/dmitrijs2005/lifetrack/internal/primary/repomanager"
)

type IdeaService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	log         logging.Logger
}

func NewIdeaService(db *sql.DB, repomanager repomanager.RepositoryManager, log logging.Logger) *IdeaService {
	return &IdeaService{db: db, repomanager: repomanager, log: log.With("module", "ideas")}
}

func (s *IdeaService) Create(ctx context.Context, sess *auth.Session, req models.CreateIdeaRequest) (string, error) {
	if err := auth.Require(sess); err != nil {
		return "", err
	}
	if err := req.Validate(); err != nil {
		return "", err
	}
	id, err := s.repomanager.Ideas(s.db).Create(ctx, sess.UserID, req)
	if err != nil {
		return "", remote("create_idea", err)
	}
	s.log.Debug(ctx, "idea created", "id", id)
	return id, nil
}

func (s *IdeaService) List(ctx context.Context, sess *auth.Session, isFavorite *bool) ([]models.Idea, error) {
	if err := auth.Require(sess); err != nil {
		return nil, err
	}
	items, err := s.repomanager.Ideas(s.db).List(ctx, sess.UserID, isFavorite)
	if err != nil {
		return nil, remote("list_ideas", err)
	}
	return items, nil
}

func (s *IdeaService) GetByID(ctx context.Context, sess *auth.Session, id string) (*models.Idea, error) {
	if err := auth.Require(sess); err != nil {
		return nil, err
	}
	if !validID(id) {
		return nil, nil
	}
	item, err := s.repomanager.Ideas(s.db).GetByID(ctx, sess.UserID, id)
	if errors.Is(err, common.ErrorNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, remote("get_idea", err)
	}
	return item, nil
}

func (s *IdeaService) Update(ctx context.Context, sess *auth.Session, id string, req models.UpdateIdeaRequest) error {
	if err := auth.Require(sess); err != nil {
		return err
	}
	if err := req.Validate(); err != nil {
		return err
	}
	if !validID(id) {
		return common.ErrorNotFound
	}
	return remote("update_idea", s.repomanager.Ideas(s.db).Update(ctx, sess.UserID, id, req))
}

func (s *IdeaService) Delete(ctx context.Context, sess *auth.Session, id string) error {
	if err := auth.Require(sess); err != nil {
		return err
	}
	if !validID(id) {
		return nil
	}
	return remote("delete_idea", s.repomanager.Ideas(s.db).Delete(ctx, sess.UserID, id))
}

func (s *IdeaService) ToggleFavorite(ctx context.Context, sess *auth.Session, id string) (bool, error) {
	if err := auth.Require(sess); err != nil {
		return false, err
	}
	if !validID(id) {
		return false, common.ErrorNotFound
	}
	v, err := s.repomanager.Ideas(s.db).ToggleFavorite(ctx, sess.UserID, id)
	if err != nil {
		return false, remote("toggle_idea_favorite", err)
	}
	return v, nil
}

// Search returns ideas whose title or content contains keyword, or that
// carry it as a tag. An empty keyword lists everything.
func (s *IdeaService) Search(ctx context.Context, sess *auth.Session, keyword string) ([]models.Idea, error) {
	if strings.TrimSpace(keyword) == "" {
		return s.List(ctx, sess, nil)
	}
	if err := auth.Require(sess); err != nil {
		return nil, err
	}
	items, err := s.repomanager.Ideas(s.db).Search(ctx, sess.UserID, keyword)
	if err != nil {
		return nil, remote("search_ideas", err)
	}
	return items, nil
}
