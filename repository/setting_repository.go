package repository

import (
	"context"
	"fmt"

	"rekapbot/database"

	"github.com/jackc/pgx/v5"
)

// SettingRepository implements the service.SettingRepository interface
type SettingRepository struct {
	q queryable
}

// NewSettingRepository creates a new setting repository
func NewSettingRepository(db *database.DB) *SettingRepository {
	return &SettingRepository{q: db.Pool}
}

// newSettingRepositoryWithTx creates a new setting repository with a transaction
func newSettingRepositoryWithTx(tx queryable) *SettingRepository {
	return &SettingRepository{q: tx}
}

// Get returns the value for key and whether it exists
func (r *SettingRepository) Get(ctx context.Context, key string) (string, bool, error) {
	query := `SELECT value FROM settings WHERE key = $1`

	var value string
	err := r.q.QueryRow(ctx, query, key).Scan(&value)
	if err == pgx.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to get setting %q: %w", key, err)
	}
	return value, true, nil
}

// Set upserts the value for key
func (r *SettingRepository) Set(ctx context.Context, key string, value string) error {
	query := `
		INSERT INTO settings (key, value)
		VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value
	`

	if _, err := r.q.Exec(ctx, query, key, value); err != nil {
		return fmt.Errorf("failed to set setting %q: %w", key, err)
	}
	return nil
}
