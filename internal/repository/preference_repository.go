package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/quest-planner-api/internal/models"
)

// PreferenceRepository persists per-user scheduling defaults.
type PreferenceRepository struct {
	db *sqlx.DB
}

// NewPreferenceRepository constructs the repository.
func NewPreferenceRepository(db *sqlx.DB) *PreferenceRepository {
	return &PreferenceRepository{db: db}
}

// FindByUser returns the stored preference for a user.
func (r *PreferenceRepository) FindByUser(ctx context.Context, userID string) (*models.Preference, error) {
	const query = `SELECT id, user_id, sleep_start, sleep_end, daily_cap_minutes, chunk_preference, timezone, created_at, updated_at
FROM preferences WHERE user_id = $1 LIMIT 1`
	var pref models.Preference
	if err := r.db.GetContext(ctx, &pref, query, userID); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find preference: %w", err)
	}
	return &pref, nil
}

// Upsert inserts or replaces the user's preference row.
func (r *PreferenceRepository) Upsert(ctx context.Context, pref *models.Preference) error {
	if pref.ID == "" {
		pref.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if pref.CreatedAt.IsZero() {
		pref.CreatedAt = now
	}
	pref.UpdatedAt = now

	const query = `INSERT INTO preferences (id, user_id, sleep_start, sleep_end, daily_cap_minutes, chunk_preference, timezone, created_at, updated_at)
VALUES (:id, :user_id, :sleep_start, :sleep_end, :daily_cap_minutes, :chunk_preference, :timezone, :created_at, :updated_at)
ON CONFLICT (user_id) DO UPDATE SET
sleep_start = EXCLUDED.sleep_start, sleep_end = EXCLUDED.sleep_end,
daily_cap_minutes = EXCLUDED.daily_cap_minutes, chunk_preference = EXCLUDED.chunk_preference,
timezone = EXCLUDED.timezone, updated_at = EXCLUDED.updated_at`
	if _, err := r.db.NamedExecContext(ctx, query, pref); err != nil {
		return fmt.Errorf("upsert preference: %w", err)
	}
	return nil
}
