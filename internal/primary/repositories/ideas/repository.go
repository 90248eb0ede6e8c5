package ideas

import (
	"context"

	"github.com/dmitrijs2005/lifetrack/internal/models"
)

// Repository stores ideas. Every method is scoped to userID.
type Repository interface {
	Create(ctx context.Context, userID string, req models.CreateIdeaRequest) (string, error)
	List(ctx context.Context, userID string, isFavorite *bool) ([]models.Idea, error)
	GetByID(ctx context.Context, userID, id string) (*models.Idea, error)
	Update(ctx context.Context, userID, id string, req models.UpdateIdeaRequest) error
	Delete(ctx context.Context, userID, id string) error
	ToggleFavorite(ctx context.Context, userID, id string) (bool, error)
	Search(ctx context.Context, userID, keyword string) ([]models.Idea, error)
}
