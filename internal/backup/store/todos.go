package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/lifetrack/internal/common"
	"github.com/dmitrijs2005/lifetrack/internal/dbx"
	"github.com/dmitrijs2005/lifetrack/internal/models"
	"github.com/google/uuid"
)

const todoColumns = `id, title, description, completed, priority, due_date, created_at, updated_at, tags, category`

// TodoRepository stores mirrored todos. Every statement is scoped by user.
type TodoRepository struct {
	db  dbx.DBTX
	now func() time.Time
}

func NewTodoRepository(db dbx.DBTX) *TodoRepository {
	return &TodoRepository{db: db, now: time.Now}
}

// Upsert stores the todo under id, generating one when id is empty. A row
// with the same id owned by the same user is overwritten.
func (r *TodoRepository) Upsert(ctx context.Context, userID, id string, req models.CreateTodoRequest) (string, error) {
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
		INSERT INTO todos (id, user_id, title, description, completed, priority, due_date, created_at, updated_at, tags, category)
		VALUES (?, ?, ?, ?, 0, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			description = excluded.description,
			priority = excluded.priority,
			due_date = excluded.due_date,
			updated_at = excluded.updated_at,
			tags = excluded.tags,
			category = excluded.category
		WHERE todos.user_id = excluded.user_id`

	if _, err := r.db.ExecContext(ctx, query,
		id, userID, req.Title, req.Description, *req.Priority, req.DueDate, now, now, tags, *req.Category,
	); err != nil {
		return "", fmt.Errorf("failed to upsert todo: %w", err)
	}
	return id, nil
}

func (r *TodoRepository) List(ctx context.Context, userID string, completed *bool) ([]models.Todo, error) {
	query := `SELECT ` + todoColumns + ` FROM todos WHERE user_id = ?`
	args := []any{userID}
	if completed != nil {
		query += ` AND completed = ?`
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

// GetByID returns common.ErrorNotFound when the user has no such todo.
func (r *TodoRepository) GetByID(ctx context.Context, userID, id string) (*models.Todo, error) {
	query := `SELECT ` + todoColumns + ` FROM todos WHERE id = ? AND user_id = ?`
	item, err := scanTodo(r.db.QueryRowContext(ctx, query, id, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrorNotFound
	}
	if err != nil {
		return nil, err
	}
	return item, nil
}

// Update applies the present fields and reports whether a row changed.
func (r *TodoRepository) Update(ctx context.Context, userID, id string, req models.UpdateTodoRequest) (bool, error) {
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
		tags, err := encodeTags(req.Tags)
		if err != nil {
			return false, err
		}
		set.Add("tags", tags)
	}
	if req.Category != nil {
		set.Add("category", *req.Category)
	}
	set.Add("updated_at", formatTime(r.now()))

	list, args := set.SQL(dbx.Question, 1)
	query := `UPDATE todos SET ` + list + ` WHERE id = ? AND user_id = ?`

	res, err := r.db.ExecContext(ctx, query, append(args, id, userID)...)
	if err != nil {
		return false, fmt.Errorf("failed to update todo: %w", err)
	}
	ok, err := dbx.AffectedOne(res)
	if err != nil {
		return false, fmt.Errorf("rows affected error: %w", err)
	}
	return ok, nil
}

// Delete reports whether a row was removed.
func (r *TodoRepository) Delete(ctx context.Context, userID, id string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM todos WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return false, fmt.Errorf("failed to delete todo: %w", err)
	}
	return dbx.AffectedOne(res)
}

func (r *TodoRepository) ToggleCompletion(ctx context.Context, userID, id string) (bool, error) {
	query := `
		UPDATE todos SET completed = NOT completed, updated_at = ?
		WHERE id = ? AND user_id = ?
		RETURNING completed`

	var completed bool
	err := r.db.QueryRowContext(ctx, query, formatTime(r.now()), id, userID).Scan(&completed)
	if errors.Is(err, sql.ErrNoRows) {
		return false, common.ErrorNotFound
	}
	if err != nil {
		return false, fmt.Errorf("failed to toggle todo: %w", err)
	}
	return completed, nil
}

func scanTodo(s scanner) (*models.Todo, error) {
	var (
		item                 models.Todo
		description, dueDate sql.NullString
		created, updated     string
		tags                 string
	)
	if err := s.Scan(
		&item.ID, &item.Title, &description, &item.Completed, &item.Priority, &dueDate,
		&created, &updated, &tags, &item.Category,
	); err != nil {
		return nil, err
	}
	if description.Valid {
		item.Description = &description.String
	}
	if dueDate.Valid {
		item.DueDate = &dueDate.String
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
