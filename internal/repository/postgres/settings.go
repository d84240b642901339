package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"vibeguide/internal/domain/models"
	"vibeguide/internal/domain/repositories"
)

// PostgresSettingsRepository implements the SettingsRepository
// interface with one JSONB row per user.
type PostgresSettingsRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
}

// NewSettingsRepository creates a new settings repository
func NewSettingsRepository(config *RepositoryConfig) repositories.SettingsRepository {
	return &PostgresSettingsRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

// Get returns the user's settings, falling back to defaults when the
// user has never saved any.
func (r *PostgresSettingsRepository) Get(ctx context.Context, userID string) (*models.Settings, error) {
	query := fmt.Sprintf(`
		SELECT settings
		FROM %s
		WHERE user_id = $1
	`, r.tables.Settings)

	var raw []byte
	err := r.pool.QueryRow(ctx, query, userID).Scan(&raw)
	if err != nil {
		if IsPgNoRowsError(err) {
			return models.DefaultSettings(), nil
		}
		return nil, fmt.Errorf("get settings: %w", err)
	}

	var settings models.Settings
	if err := json.Unmarshal(raw, &settings); err != nil {
		return nil, fmt.Errorf("decode settings: %w", err)
	}
	return &settings, nil
}

// Put stores the user's settings, replacing any previous value.
func (r *PostgresSettingsRepository) Put(ctx context.Context, userID string, settings *models.Settings) error {
	raw, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (user_id, settings, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id) DO UPDATE SET
			settings = EXCLUDED.settings,
			updated_at = EXCLUDED.updated_at
	`, r.tables.Settings)

	if _, err := r.pool.Exec(ctx, query, userID, raw, time.Now()); err != nil {
		return fmt.Errorf("put settings: %w", err)
	}
	return nil
}
