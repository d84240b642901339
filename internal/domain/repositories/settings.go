package repositories

import (
	"context"

	"vibeguide/internal/domain/models"
)

// SettingsRepository persists per-user application settings.
type SettingsRepository interface {
	// Get returns the user's settings, or the defaults when the user
	// has never saved any.
	Get(ctx context.Context, userID string) (*models.Settings, error)

	// Put stores the user's settings, replacing any previous value.
	Put(ctx context.Context, userID string, settings *models.Settings) error
}
