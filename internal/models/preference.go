package models

import "time"

// Preference holds a user's scheduling defaults. Sleep times are
// minutes since local midnight; a sleep window may wrap past
// midnight (start > end).
type Preference struct {
	ID              string    `db:"id" json:"id"`
	UserID          string    `db:"user_id" json:"user_id"`
	SleepStart      int       `db:"sleep_start" json:"sleep_start"`
	SleepEnd        int       `db:"sleep_end" json:"sleep_end"`
	DailyCapMinutes int       `db:"daily_cap_minutes" json:"daily_cap_minutes"`
	ChunkPreference int       `db:"chunk_preference" json:"chunk_preference"`
	Timezone        string    `db:"timezone" json:"timezone"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time `db:"updated_at" json:"updated_at"`
}

// DefaultPreference returns the fallback used when a user has not
// saved preferences yet (sleep 23:00 to 07:00, 8h daily cap).
func DefaultPreference(userID string) *Preference {
	return &Preference{
		UserID:          userID,
		SleepStart:      23 * 60,
		SleepEnd:        7 * 60,
		DailyCapMinutes: 480,
		Timezone:        "UTC",
	}
}
