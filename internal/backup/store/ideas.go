package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/lifetrack/internal/common"
	"github.com/dmitrijs2005/lifetrack/internal/dbx"
	"github.com/dmitrijs2005/lifetrack/internal/models"
	"github.com/google/uuid"
)

const ideaColumns = `id, title, content, is_favorite, created_at, updated_at, tags, category`

// IdeaRepository stores mirrored ideas. Every statement is scoped by user.
type IdeaRepository struct {
	db  dbx.DBTX
	now func() time.Time
}

func NewIdeaRepository(db dbx.DBTX) *IdeaRepository {
	return &IdeaRepository{db: db, now: time.Now}
}

func (r *IdeaRepository) Upsert(ctx context.Context, userID, id string, req models.CreateIdeaRequest) (string, error) {
	if id == "" {
		id = uuid.NewString()
	}
	req = req.WithDefaults()

	tags, err := encodeTags(req.Tags)
	if err != nil {
		return "", err
	}
	now := formatTime(r.now())

	query := `
		INSERT INTO ideas (id, user_id, title, content, is_favorite, created_at, updated_at, tags, category)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			content = excluded.content,
			is_favorite = excluded.is_favorite,
			updated_at = excluded.updated_at,
			tags = excluded.tags,
			category = excluded.category
		WHERE ideas.user_id = excluded.user_id`

	if _, err := r.db.ExecContext(ctx, query,
		id, userID, req.Title, req.Content, *req.IsFavorite, now, now, tags, *req.Category,
	); err != nil {
		return "", fmt.Errorf("failed to upsert idea: %w", err)
	}
	return id, nil
}

func (r *IdeaRepository) List(ctx context.Context, userID string, isFavorite *bool) ([]models.Idea, error) {
	query := `SELECT ` + ideaColumns + ` FROM ideas WHERE user_id = ?`
	args := []any{userID}
	if isFavorite != nil {
		query += ` AND is_favorite = ?`
		args = append(args, *isFavorite)
	}
	query += ` ORDER BY created_at DESC`
	return r.query(ctx, query, args...)
}

// Search matches keyword against title and content (case-insensitive) or
// an exact tag.
func (r *IdeaRepository) Search(ctx context.Context, userID, keyword string) ([]models.Idea, error) {
	query := `SELECT ` + ideaColumns + ` FROM ideas
		WHERE user_id = ?
		  AND (lower(title) LIKE ? ESCAPE '\'
		    OR lower(content) LIKE ? ESCAPE '\'
		    OR EXISTS (SELECT 1 FROM json_each(ideas.tags) WHERE lower(json_each.value) = ?))
		ORDER BY created_at DESC`
	pattern := likePattern(keyword)
	return r.query(ctx, query, userID, pattern, pattern, strings.ToLower(keyword))
}

func (r *IdeaRepository) query(ctx context.Context, query string, args ...any) ([]models.Idea, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select ideas: %w", err)
	}
	defer rows.Close()

	result := []models.Idea{}
	for rows.Next() {
		item, err := scanIdea(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *IdeaRepository) GetByID(ctx context.Context, userID, id string) (*models.Idea, error) {
	query := `SELECT ` + ideaColumns + ` FROM ideas WHERE id = ? AND user_id = ?`
	item, err := scanIdea(r.db.QueryRowContext(ctx, query, id, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrorNotFound
	}
	if err != nil {
		return nil, err
	}
	return item, nil
}

func (r *IdeaRepository) Update(ctx context.Context, userID, id string, req models.UpdateIdeaRequest) (bool, error) {
	var set dbx.Assignments
	if req.Title != nil {
		set.Add("title", *req.Title)
	}
	if req.Content != nil {
		set.Add("content", *req.Content)
	}
	if req.Tags != nil {
		tags, err := encodeTags(req.Tags)
		if err != nil {
			return false, err
		}
		set.Add("tags", tags)
	}
	if req.IsFavorite != nil {
		set.Add("is_favorite", *req.IsFavorite)
	}
	if req.Category != nil {
		set.Add("category", *req.Category)
	}
	set.Add("updated_at", formatTime(r.now()))

	list, args := set.SQL(dbx.Question, 1)
	query := `UPDATE ideas SET ` + list + ` WHERE id = ? AND user_id = ?`

	res, err := r.db.ExecContext(ctx, query, append(args, id, userID)...)
	if err != nil {
		return false, fmt.Errorf("failed to update idea: %w", err)
	}
	ok, err := dbx.AffectedOne(res)
	if err != nil {
		return false, fmt.Errorf("rows affected error: %w", err)
	}
	return ok, nil
}

func (r *IdeaRepository) Delete(ctx context.Context, userID, id string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM ideas WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return false, fmt.Errorf("failed to delete idea: %w", err)
	}
	return dbx.AffectedOne(res)
}

func (r *IdeaRepository) ToggleFavorite(ctx context.Context, userID, id string) (bool, error) {
	query := `
		UPDATE ideas SET is_favorite = NOT is_favorite, updated_at = ?
		WHERE id = ? AND user_id = ?
		RETURNING is_favorite`

	var fav bool
	err := r.db.QueryRowContext(ctx, query, formatTime(r.now()), id, userID).Scan(&fav)
	if errors.Is(err, sql.ErrNoRows) {
		return false, common.ErrorNotFound
	}
	if err != nil {
		return false, fmt.Errorf("failed to toggle idea: %w", err)
	}
	return fav, nil
}

func scanIdea(s scanner) (*models.Idea, error) {
	var (
		item             models.Idea
		created, updated string
		tags             string
	)
	if err := s.Scan(
		&item.ID, &item.Title, &item.Content, &item.IsFavorite,
		&created, &updated, &tags, &item.Category,
	); err != nil {
		return nil, err
	}

	var err error
	if item.CreatedAt, err = parseTime(created); err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	if item.UpdatedAt, err = parseTime(updated); err != nil {
		return nil, fmt.Errorf("parse updated_at: %w", err)
	}
	if item.Tags, err = decodeTags(tags); err != nil {
		return nil, err
	}
	return &item, nil
}
