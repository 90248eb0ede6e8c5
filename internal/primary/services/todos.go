// Package services implements the primary data service operations on top of
// the PostgreSQL repositories. Every operation takes the caller's session
// and fails with common.ErrAuthenticationRequired before touching the store
// when there is none.
package services

import (
	"context"
	"database/sql"
	"errors"

	"github.com/dmitrijs2005/lifetrack/internal/auth"
	"github.com/dmitrijs2005/lifetrack/internal/common"
	"github.com/dmitrijs2005/lifetrack/internal/logging"
	"github.com/dmitrijs2005/lifetrack/internal/models"
	"github.com/dmitrijs2005/lifetrack/internal/primary/repomanager"
)

type TodoService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	log         logging.Logger
}

func NewTodoService(db *sql.DB, repomanager repomanager.RepositoryManager, log logging.Logger) *TodoService {
	return &TodoService{db: db, repomanager: repomanager, log: log.With("module", "todos")}
}

// Create stores a new todo and returns its id.
func (s *TodoService) Create(ctx context.Context, sess *auth.Session, req models.CreateTodoRequest) (string, error) {
	if err := auth.Require(sess); err != nil {
		return "", err
	}
	if err := req.Validate(); err != nil {
		return "", err
	}
	id, err := s.repomanager.Todos(s.db).Create(ctx, sess.UserID, req)
	if err != nil {
		return "", remote("create_todo", err)
	}
	s.log.Debug(ctx, "todo created", "id", id)
	return id, nil
}

// List returns the caller's todos, newest first. completed narrows the
// result when non-nil.
func (s *TodoService) List(ctx context.Context, sess *auth.Session, completed *bool) ([]models.Todo, error) {
	if err := auth.Require(sess); err != nil {
		return nil, err
	}
	items, err := s.repomanager.Todos(s.db).List(ctx, sess.UserID, completed)
	if err != nil {
		return nil, remote("list_todos", err)
	}
	return items, nil
}

// GetByID returns nil without an error when the todo does not exist.
func (s *TodoService) GetByID(ctx context.Context, sess *auth.Session, id string) (*models.Todo, error) {
	if err := auth.Require(sess); err != nil {
		return nil, err
	}
	if !validID(id) {
		return nil, nil
	}
	item, err := s.repomanager.Todos(s.db).GetByID(ctx, sess.UserID, id)
	if errors.Is(err, common.ErrorNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, remote("get_todo", err)
	}
	return item, nil
}

func (s *TodoService) Update(ctx context.Context, sess *auth.Session, id string, req models.UpdateTodoRequest) error {
	if err := auth.Require(sess); err != nil {
		return err
	}
	if err := req.Validate(); err != nil {
		return err
	}
	if !validID(id) {
		return common.ErrorNotFound
	}
	return remote("update_todo", s.repomanager.Todos(s.db).Update(ctx, sess.UserID, id, req))
}

// Delete is idempotent.
func (s *TodoService) Delete(ctx context.Context, sess *auth.Session, id string) error {
	if err := auth.Require(sess); err != nil {
		return err
	}
	if !validID(id) {
		return nil
	}
	return remote("delete_todo", s.repomanager.Todos(s.db).Delete(ctx, sess.UserID, id))
}

// ToggleCompletion flips the completed flag in a single statement and
// returns the new value. A missing todo yields common.ErrorNotFound.
func (s *TodoService) ToggleCompletion(ctx context.Context, sess *auth.Session, id string) (bool, error) {
	if err := auth.Require(sess); err != nil {
		return false, err
	}
	if !validID(id) {
		return false, common.ErrorNotFound
	}
	v, err := s.repomanager.Todos(s.db).ToggleCompletion(ctx, sess.UserID, id)
	if err != nil {
		return false, remote("toggle_todo", err)
	}
	return v, nil
}
