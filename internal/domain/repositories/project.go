package repositories

import (
	"context"

	"vibeguide/internal/domain/models"
)

// ProjectRepository persists saved projects. Only explicit saves reach
// it; in-progress wizard state lives in the session store.
type ProjectRepository interface {
	// Save inserts the project or updates it when the ID already exists.
	Save(ctx context.Context, project *models.Project) error

	// GetByID retrieves a saved project owned by the user.
	GetByID(ctx context.Context, id, userID string) (*models.Project, error)

	// List retrieves all saved projects for a user, most recently
	// updated first.
	List(ctx context.Context, userID string) ([]models.Project, error)
}
