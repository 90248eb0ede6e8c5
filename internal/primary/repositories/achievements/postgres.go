// Package achievements provides the PostgreSQL-backed achievement journal
// repository of the primary store.
package achievements

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/lifetrack/internal/common"
	"github.com/dmitrijs2005/lifetrack/internal/dbx"
	"github.com/dmitrijs2005/lifetrack/internal/models"
	"github.com/lib/pq"
)

const selectColumns = `id, title, content, date::text, images, image_timestamps, tags, created_at, updated_at`

const orderBy = ` ORDER BY date DESC, created_at DESC`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, userID string, a models.Achievement) (*models.Achievement, error) {
	if !a.ImagesAligned() {
		return nil, fmt.Errorf("%w: images and image_timestamps differ in length", common.ErrValidation)
	}

	query := `
		INSERT INTO achievements (user_id, title, content, date, images, image_timestamps, tags)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + selectColumns

	item, err := scanAchievement(r.db.QueryRowContext(ctx, query,
		userID, a.Title, a.Content, a.Date,
		nonNil(a.Images), nonNil(a.ImageTimestamps), nonNil(a.Tags),
	))
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return item, nil
}

// List returns the user's entries, latest journal date first.
func (r *PostgresRepository) List(ctx context.Context, userID string) ([]models.Achievement, error) {
	return r.query(ctx, `SELECT `+selectColumns+` FROM achievements WHERE user_id = $1`+orderBy, userID)
}

func (r *PostgresRepository) GetByID(ctx context.Context, userID, id string) (*models.Achievement, error) {
	return r.get(ctx, `SELECT `+selectColumns+` FROM achievements WHERE id = $1 AND user_id = $2`, id, userID)
}

func (r *PostgresRepository) GetForUpdate(ctx context.Context, userID, id string) (*models.Achievement, error) {
	return r.get(ctx, `SELECT `+selectColumns+` FROM achievements WHERE id = $1 AND user_id = $2 FOR UPDATE`, id, userID)
}

func (r *PostgresRepository) Update(ctx context.Context, userID, id string, p Patch) error {
	var set dbx.Assignments
	if p.Title != nil {
		set.Add("title", *p.Title)
	}
	if p.Content != nil {
		set.Add("content", *p.Content)
	}
	if p.Date != nil {
		set.Add("date", *p.Date)
	}
	if p.Tags != nil {
		set.Add("tags", pq.StringArray(p.Tags))
	}
	if p.Images != nil {
		if len(p.Images.URLs) != len(p.Images.Tokens) {
			return fmt.Errorf("%w: images and image_timestamps differ in length", common.ErrValidation)
		}
		set.Add("images", nonNil(p.Images.URLs))
		set.Add("image_timestamps", nonNil(p.Images.Tokens))
	}
	set.AddRaw("updated_at", "now()")

	list, args := set.SQL(dbx.Dollar, 3)
	res, err := r.db.ExecContext(ctx, `UPDATE achievements SET `+list+` WHERE id = $1 AND user_id = $2`,
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

func (r *PostgresRepository) Delete(ctx context.Context, userID, id string) ([]string, error) {
	var tokens pq.StringArray
	err := r.db.QueryRowContext(ctx,
		`DELETE FROM achievements WHERE id = $1 AND user_id = $2 RETURNING image_timestamps`, id, userID,
	).Scan(&tokens)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return []string(tokens), nil
}

// SearchByTags returns entries sharing at least one tag with tags.
func (r *PostgresRepository) SearchByTags(ctx context.Context, userID string, tags []string) ([]models.Achievement, error) {
	return r.query(ctx,
		`SELECT `+selectColumns+` FROM achievements WHERE user_id = $1 AND tags && $2`+orderBy,
		userID, nonNil(tags))
}

// GetByDateRange returns entries whose journal date lies in [start, end].
func (r *PostgresRepository) GetByDateRange(ctx context.Context, userID, start, end string) ([]models.Achievement, error) {
	return r.query(ctx,
		`SELECT `+selectColumns+` FROM achievements WHERE user_id = $1 AND date >= $2 AND date <= $3`+orderBy,
		userID, start, end)
}

func (r *PostgresRepository) get(ctx context.Context, query string, args ...any) (*models.Achievement, error) {
	item, err := scanAchievement(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrorNotFound
	}
	if err != nil {
		return nil, err
	}
	return item, nil
}

func (r *PostgresRepository) query(ctx context.Context, query string, args ...any) ([]models.Achievement, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select achievements: %w", err)
	}
	defer rows.Close()

	result := []models.Achievement{}
	for rows.Next() {
		item, err := scanAchievement(rows)
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

func scanAchievement(s scanner) (*models.Achievement, error) {
	var (
		item                 models.Achievement
		images, tokens, tags pq.StringArray
	)
	if err := s.Scan(&item.ID, &item.Title, &item.Content, &item.Date,
		&images, &tokens, &tags, &item.CreatedAt, &item.UpdatedAt); err != nil {
		return nil, err
	}
	item.Images = []string(nonNil(images))
	item.ImageTimestamps = []string(nonNil(tokens))
	item.Tags = []string(nonNil(tags))
	return &item, nil
}

func nonNil(s []string) pq.StringArray {
	if s == nil {
		return pq.StringArray{}
	}
	return pq.StringArray(s)
}
