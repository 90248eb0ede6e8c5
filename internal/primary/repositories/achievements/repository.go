package achievements

import (
	"context"

	"github.com/dmitrijs2005/lifetrack/internal/models"
)

// ImageSet replaces both parallel image arrays at once.
type ImageSet struct {
	URLs   []string
	Tokens []string
}

// Patch is a partial update; nil fields are left untouched.
type Patch struct {
	Title   *string
	Content *string
	Date    *string
	Tags    []string
	Images  *ImageSet
}

// Repository stores achievement journal entries. Every method is scoped to userID.
type Repository interface {
	// Create inserts a and returns the stored row.
	Create(ctx context.Context, userID string, a models.Achievement) (*models.Achievement, error)
	List(ctx context.Context, userID string) ([]models.Achievement, error)
	GetByID(ctx context.Context, userID, id string) (*models.Achievement, error)
	// GetForUpdate is GetByID holding a row lock; use inside a transaction.
	GetForUpdate(ctx context.Context, userID, id string) (*models.Achievement, error)
	Update(ctx context.Context, userID, id string, p Patch) error
	// Delete removes the row and returns its image tokens. A missing row
	// yields no tokens and no error.
	Delete(ctx context.Context, userID, id string) ([]string, error)
	SearchByTags(ctx context.Context, userID string, tags []string) ([]models.Achievement, error)
	GetByDateRange(ctx context.Context, userID, start, end string) ([]models.Achievement, error)
}
