package todos

import (
	"context"

	"github.com/dmitrijs2005/lifetrack/internal/models"
)

// Repository stores todos. Every method is scoped to userID.
type Repository interface {
	Create(ctx context.Context, userID string, req models.CreateTodoRequest) (string, error)
	List(ctx context.Context, userID string, completed *bool) ([]models.Todo, error)
	// GetByID returns common.ErrorNotFound when the row is absent.
	GetByID(ctx context.Context, userID, id string) (*models.Todo, error)
	Update(ctx context.Context, userID, id string, req models.UpdateTodoRequest) error
	Delete(ctx context.Context, userID, id string) error
	// ToggleCompletion flips the completed flag and returns the new value.
	ToggleCompletion(ctx context.Context, userID, id string) (bool, error)
}
