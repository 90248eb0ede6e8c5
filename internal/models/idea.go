package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/lifetrack/internal/common"
)

type Idea struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	Content    string    `json:"content"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
	Tags       []string  `json:"tags"`
	IsFavorite bool      `json:"is_favorite"`
	Category   string    `json:"category"`
}

func (i Idea) Clone() Idea {
	c := i
	c.Tags = cloneStrings(i.Tags)
	return c
}

// Matches reports whether keyword occurs, case-insensitively, in the
// title, the content or any of the tags.
func (i Idea) Matches(keyword string) bool {
	kw := strings.ToLower(strings.TrimSpace(keyword))
	if kw == "" {
		return true
	}
	if strings.Contains(strings.ToLower(i.Title), kw) || strings.Contains(strings.ToLower(i.Content), kw) {
		return true
	}
	for _, t := range i.Tags {
		if strings.Contains(strings.ToLower(t), kw) {
			return true
		}
	}
	return false
}

type CreateIdeaRequest struct {
	Title      string   `json:"title"`
	Content    string   `json:"content"`
	Tags       []string `json:"tags,omitempty"`
	IsFavorite *bool    `json:"is_favorite,omitempty"`
	Category   *string  `json:"category,omitempty"`
}

func (r CreateIdeaRequest) Validate() error {
	if strings.TrimSpace(r.Title) == "" {
		return fmt.Errorf("%w: title is required", common.ErrValidation)
	}
	if strings.TrimSpace(r.Content) == "" {
		return fmt.Errorf("%w: content is required", common.ErrValidation)
	}
	return nil
}

func (r CreateIdeaRequest) WithDefaults() CreateIdeaRequest {
	if r.IsFavorite == nil {
		f := false
		r.IsFavorite = &f
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

type UpdateIdeaRequest struct {
	Title      *string  `json:"title,omitempty"`
	Content    *string  `json:"content,omitempty"`
	Tags       []string `json:"tags"`
	IsFavorite *bool    `json:"is_favorite,omitempty"`
	Category   *string  `json:"category,omitempty"`
}

func (r UpdateIdeaRequest) Validate() error {
	if r.Title != nil && strings.TrimSpace(*r.Title) == "" {
		return fmt.Errorf("%w: title must not be empty", common.ErrValidation)
	}
	if r.Content != nil && strings.TrimSpace(*r.Content) == "" {
		return fmt.Errorf("%w: content must not be empty", common.ErrValidation)
	}
	return nil
}

func (r UpdateIdeaRequest) Empty() bool {
	return r.Title == nil && r.Content == nil && r.Tags == nil && r.IsFavorite == nil && r.Category == nil
}

func (r UpdateIdeaRequest) Apply(i Idea) Idea {
	if r.Title != nil {
		i.Title = *r.Title
	}
	if r.Content != nil {
		i.Content = *r.Content
	}
	if r.Tags != nil {
		i.Tags = cloneStrings(r.Tags)
	}
	if r.IsFavorite != nil {
		i.IsFavorite = *r.IsFavorite
	}
	if r.Category != nil {
		i.Category = *r.Category
	}
	return i
}
