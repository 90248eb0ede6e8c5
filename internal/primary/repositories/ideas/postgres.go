// Package ideas provides the PostgreSQL-backed idea repository of the
// primary store.
package ideas

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/lifetrack/internal/common"
	"github.com/dmitrijs2005/lifetrack/internal/dbx"
	"github.com/dmitrijs2005/lifetrack/internal/models"
	"github.com/lib/pq"
)

const selectColumns = `id, title, content, created_at, updated_at, tags, is_favorite, category`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, userID string, req models.CreateIdeaRequest) (string, error) {
	req = req.WithDefaults()

	query := `
		INSERT INTO ideas (user_id, title, content, tags, is_favorite, category)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`

	var id string
	err := r.db.QueryRowContext(ctx, query,
		userID, req.Title, req.Content, pq.StringArray(req.Tags), *req.IsFavorite, *req.Category,
	).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("db error: %w", err)
	}
	return id, nil
}

func (r *PostgresRepository) List(ctx context.Context, userID string, isFavorite *bool) ([]models.Idea, error) {
	query := `SELECT ` + selectColumns + ` FROM ideas WHERE user_id = $1`
	args := []any{userID}
	if isFavorite != nil {
		query += ` AND is_favorite = $2`
		args = append(args, *isFavorite)
	}
	query += ` ORDER BY created_at DESC`
	return r.query(ctx, query, args...)
}

func (r *PostgresRepository) GetByID(ctx context.Context, userID, id string) (*models.Idea, error) {
	query := `SELECT ` + selectColumns + ` FROM ideas WHERE id = $1 AND user_id = $2`

	item, err := scanIdea(r.db.QueryRowContext(ctx, query, id, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrorNotFound
	}
	if err != nil {
		return nil, err
	}
	return item, nil
}

func (r *PostgresRepository) Update(ctx context.Context, userID, id string, req models.UpdateIdeaRequest) error {
	var set dbx.Assignments
	if req.Title != nil {
		set.Add("title", *req.Title)
	}
	if req.Content != nil {
		set.Add("content", *req.Content)
	}
	if req.Tags != nil {
		set.Add("tags", pq.StringArray(req.Tags))
	}
	if req.IsFavorite != nil {
		set.Add("is_favorite", *req.IsFavorite)
	}
	if req.Category != nil {
		set.Add("category", *req.Category)
	}
	set.AddRaw("updated_at", "now()")

	list, args := set.SQL(dbx.Dollar, 3)
	res, err := r.db.ExecContext(ctx, `UPDATE ideas SET `+list+` WHERE id = $1 AND user_id = $2`,
		append([]any{id, userID}, args...)...)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	ok, err := dbx.AffectedOne(res)
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if !ok {
		return common.ErrorNotFound
	}
	return nil
}

func (r *PostgresRepository) Delete(ctx context.Context, userID, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM ideas WHERE id = $1 AND user_id = $2`, id, userID); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) ToggleFavorite(ctx context.Context, userID, id string) (bool, error) {
	query := `
		UPDATE ideas SET is_favorite = NOT is_favorite, updated_at = now()
		WHERE id = $1 AND user_id = $2
		RETURNING is_favorite`

	var fav bool
	err := r.db.QueryRowContext(ctx, query, id, userID).Scan(&fav)
	if errors.Is(err, sql.ErrNoRows) {
		return false, common.ErrorNotFound
	}
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return fav, nil
}

// Search matches keyword case-insensitively against title and content, or
// exactly against a tag.
func (r *PostgresRepository) Search(ctx context.Context, userID, keyword string) ([]models.Idea, error) {
	keyword = strings.TrimSpace(keyword)
	query := `SELECT ` + selectColumns + ` FROM ideas
		WHERE user_id = $1 AND (title ILIKE $2 OR content ILIKE $2 OR $3 = ANY(tags))
		ORDER BY created_at DESC`
	return r.query(ctx, query, userID, "%"+escapeLike(keyword)+"%", keyword)
}

func (r *PostgresRepository) query(ctx context.Context, query string, args ...any) ([]models.Idea, error) {
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

type scanner interface {
	Scan(dest ...any) error
}

func scanIdea(s scanner) (*models.Idea, error) {
	var (
		item models.Idea
		tags pq.StringArray
	)
	if err := s.Scan(&item.ID, &item.Title, &item.Content, &item.CreatedAt, &item.UpdatedAt,
		&tags, &item.IsFavorite, &item.Category); err != nil {
		return nil, err
	}
	item.Tags = []string(tags)
	if item.Tags == nil {
		item.Tags = []string{}
	}
	return &item, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
