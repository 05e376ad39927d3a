package repository

import (
	"context"
	"fmt"

	"fightpool/database"
	"fightpool/models"

	"github.com/jackc/pgx/v5"
)

// SettingsRepository implements pool settings data access. Settings live in
// a single row that is created on first read.
type SettingsRepository struct {
	q queryable
}

// NewSettingsRepository creates a new settings repository
func NewSettingsRepository(db *database.DB) *SettingsRepository {
	return &SettingsRepository{q: db.Pool}
}

// newSettingsRepositoryWithTx creates a new settings repository with a transaction
func newSettingsRepositoryWithTx(tx queryable) *SettingsRepository {
	return &SettingsRepository{q: tx}
}

// Get returns the pool settings, creating the default row if none exists
func (r *SettingsRepository) Get(ctx context.Context) (*models.PoolSettings, error) {
	query := `SELECT betting_window_seconds, updated_at FROM pool_settings WHERE id = 1`

	var settings models.PoolSettings
	err := r.q.QueryRow(ctx, query).Scan(&settings.BettingWindowSeconds, &settings.UpdatedAt)
	if err == pgx.ErrNoRows {
		return r.createDefault(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get pool settings: %w", err)
	}

	return &settings, nil
}

// Update persists the pool settings
func (r *SettingsRepository) Update(ctx context.Context, settings *models.PoolSettings) error {
	query := `
		INSERT INTO pool_settings (id, betting_window_seconds, updated_at)
		VALUES (1, $1, NOW())
		ON CONFLICT (id) DO UPDATE
		SET betting_window_seconds = EXCLUDED.betting_window_seconds,
		    updated_at = NOW()
		RETURNING updated_at
	`

	err := r.q.QueryRow(ctx, query, settings.BettingWindowSeconds).Scan(&settings.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to update pool settings: %w", err)
	}

	return nil
}

func (r *SettingsRepository) createDefault(ctx context.Context) (*models.PoolSettings, error) {
	query := `
		INSERT INTO pool_settings (id)
		VALUES (1)
		ON CONFLICT (id) DO UPDATE SET id = EXCLUDED.id
		RETURNING betting_window_seconds, updated_at
	`

	var settings models.PoolSettings
	err := r.q.QueryRow(ctx, query).Scan(&settings.BettingWindowSeconds, &settings.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create default pool settings: %w", err)
	}

	return &settings, nil
}
