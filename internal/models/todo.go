package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/lifetrack/internal/common"
)

// Todo is a task owned by a single account. Lower Priority means more urgent.
type Todo struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description *string   `json:"description,omitempty"`
	Completed   bool      `json:"completed"`
	Priority    int       `json:"priority"`
	DueDate     *string   `json:"due_date,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	Tags        []string  `json:"tags"`
	Category    string    `json:"category"`
}

// Clone returns a deep copy.
func (t Todo) Clone() Todo {
	c := t
	c.Tags = cloneStrings(t.Tags)
	c.Description = clonePtr(t.Description)
	c.DueDate = clonePtr(t.DueDate)
	return c
}

type CreateTodoRequest struct {
	Title       string   `json:"title"`
	Description *string  `json:"description,omitempty"`
	Priority    *int     `json:"priority,omitempty"`
	DueDate     *string  `json:"due_date,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	Category    *string  `json:"category,omitempty"`
}

func (r CreateTodoRequest) Validate() error {
	if strings.TrimSpace(r.Title) == "" {
		return fmt.Errorf("%w: title is required", common.ErrValidation)
	}
	if r.Priority != nil {
		if err := validatePriority(*r.Priority); err != nil {
			return err
		}
	}
	if r.DueDate != nil {
		if err := validateDate("due_date", *r.DueDate); err != nil {
			return err
		}
	}
	return nil
}

// WithDefaults returns a copy with server-side defaults filled in for
// omitted fields.
func (r CreateTodoRequest) WithDefaults() CreateTodoRequest {
	if r.Priority == nil {
		p := common.DefaultPriority
		r.Priority = &p
	}
	if r.Category == nil || strings.TrimSpace(*r.Category) == "" {
		c := common.DefaultCategory
		r.Category = &c
	}
	if r.Tags == nil {
		r.Tags = []string{}
	}
	return r
}

// UpdateTodoRequest is a partial update: nil fields are left untouched.
type UpdateTodoRequest struct {
	Title       *string  `json:"title,omitempty"`
	Description *string  `json:"description,omitempty"`
	Completed   *bool    `json:"completed,omitempty"`
	Priority    *int     `json:"priority,omitempty"`
	DueDate     *string  `json:"due_date,omitempty"`
	Tags        []string `json:"tags"`
	Category    *string  `json:"category,omitempty"`
}

func (r UpdateTodoRequest) Validate() error {
	if r.Title != nil && strings.TrimSpace(*r.Title) == "" {
		return fmt.Errorf("%w: title must not be empty", common.ErrValidation)
	}
	if r.Priority != nil {
		if err := validatePriority(*r.Priority); err != nil {
			return err
		}
	}
	if r.DueDate != nil && *r.DueDate != "" {
		if err := validateDate("due_date", *r.DueDate); err != nil {
			return err
		}
	}
	return nil
}

// Empty reports whether the request changes nothing.
func (r UpdateTodoRequest) Empty() bool {
	return r.Title == nil && r.Description == nil && r.Completed == nil &&
		r.Priority == nil && r.DueDate == nil && r.Tags == nil && r.Category == nil
}

// Apply returns t with the present fields of r applied.
func (r UpdateTodoRequest) Apply(t Todo) Todo {
	if r.Title != nil {
		t.Title = *r.Title
	}
	if r.Description != nil {
		t.Description = clonePtr(r.Description)
	}
	if r.Completed != nil {
		t.Completed = *r.Completed
	}
	if r.Priority != nil {
		t.Priority = *r.Priority
	}
	if r.DueDate != nil {
		t.DueDate = clonePtr(r.DueDate)
	}
	if r.Tags != nil {
		t.Tags = cloneStrings(r.Tags)
	}
	if r.Category != nil {
		t.Category = *r.Category
	}
	return t
}

// PriorityLabel names a priority level for display.
func PriorityLabel(p int) string {
	switch p {
	case 1:
		return "highest"
	case 2:
		return "high"
	case 3:
		return "medium"
	case 4:
		return "low"
	case 5:
		return "lowest"
	default:
		return "unknown"
	}
}

func validatePriority(p int) error {
	if p < common.MinPriority || p > common.MaxPriority {
		return fmt.Errorf("%w: priority must be between %d and %d", common.ErrValidation, common.MinPriority, common.MaxPriority)
	}
	return nil
}
