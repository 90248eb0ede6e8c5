// Package todos provides the PostgreSQL-backed todo repository of the
// primary store.
package todos

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

const selectColumns = `id, title, description, completed, priority, due_date::text, created_at, updated_at, tags, category`

// PostgresRepository implements Repository over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts a todo with defaults applied for omitted fields and
// returns the id assigned by the database.
func (r *PostgresRepository) Create(ctx context.Context, userID string, req models.CreateTodoRequest) (string, error) {
	req = req.WithDefaults()

	query := `
		INSERT INTO todos (user_id, title, description, completed, priority, due_date, tags, category)
		VALUES ($1, $2, $3, false, $4, $5, $6, $7)
		RETURNING id`

	var id string
	err := r.db.QueryRowContext(ctx, query,
		userID, req.Title, req.Description, *req.Priority, req.DueDate, pq.StringArray(req.Tags), *req.Category,
	).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("db error: %w", err)
	}
	return id, nil
}

// List returns the user's todos, newest first, optionally narrowed to a
// completion state.
func (r *PostgresRepository) List(ctx context.Context, userID string, completed *bool) ([]models.Todo, error) {
	query := `SELECT ` + selectColumns + ` FROM todos WHERE user_id = $1`
	args := []any{userID}
	if completed != nil {
		query += ` AND completed = $2`
		args = append(args, *completed)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select todos: %w", err)
	}
	defer rows.Close()

	result := []models.Todo{}
	for rows.Next() {
		item, err := scanTodo(rows)
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

func (r *PostgresRepository) GetByID(ctx context.Context, userID, id string) (*models.Todo, error) {
	query := `SELECT ` + selectColumns + ` FROM todos WHERE id = $1 AND user_id = $2`

	item, err := scanTodo(r.db.QueryRowContext(ctx, query, id, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrorNotFound
	}
	if err != nil {
		return nil, err
	}
	return item, nil
}

// Update writes only the fields present in req and bumps updated_at.
func (r *PostgresRepository) Update(ctx context.Context, userID, id string, req models.UpdateTodoRequest) error {
	var set dbx.Assignments
	if req.Title != nil {
		set.Add("title", *req.Title)
	}
	if req.Description != nil {
		set.Add("description", *req.Description)
	}
	if req.Completed != nil {
		set.Add("completed", *req.Completed)
	}
	if req.Priority != nil {
		set.Add("priority", *req.Priority)
	}
	if req.DueDate != nil {
		if *req.DueDate == "" {
			set.Add("due_date", nil)
		} else {
			set.Add("due_date", *req.DueDate)
		}
	}
	if req.Tags != nil {
		set.Add("tags", pq.StringArray(req.Tags))
	}
	if req.Category != nil {
		set.Add("category", *req.Category)
	}
	set.AddRaw("updated_at", "now()")

	list, args := set.SQL(dbx.Dollar, 3)
	query := `UPDATE todos SET ` + list + ` WHERE id = $1 AND user_id = $2`

	res, err := r.db.ExecContext(ctx, query, append([]any{id, userID}, args...)...)
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

// Delete removes the todo. Deleting a missing row is not an error.
func (r *PostgresRepository) Delete(ctx context.Context, userID, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM todos WHERE id = $1 AND user_id = $2`, id, userID); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) ToggleCompletion(ctx context.Context, userID, id string) (bool, error) {
	query := `
		UPDATE todos SET completed = NOT completed, updated_at = now()
		WHERE id = $1 AND user_id = $2
		RETURNING completed`

	var completed bool
	err := r.db.QueryRowContext(ctx, query, id, userID).Scan(&completed)
	if errors.Is(err, sql.ErrNoRows) {
		return false, common.ErrorNotFound
	}
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return completed, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTodo(s scanner) (*models.Todo, error) {
	var (
		item        models.Todo
		description sql.NullString
		dueDate     sql.NullString
		tags        pq.StringArray
	)
	if err := s.Scan(
		&item.ID, &item.Title, &description, &item.Completed, &item.Priority, &dueDate,
		&item.CreatedAt, &item.UpdatedAt, &tags, &item.Category,
	); err != nil {
		return nil, err
	}
	if description.Valid {
		item.Description = &description.String
	}
	if dueDate.Valid {
		item.DueDate = &dueDate.String
	}
	item.Tags = []string(tags)
	if item.Tags == nil {
		item.Tags = []string{}
	}
	return &item, nil
}
