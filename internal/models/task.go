package models

import "time"

// TaskFlexibility mirrors the engine's movability tiers for persistence.
type TaskFlexibility string

const (
	TaskFlexibilityFixed    TaskFlexibility = "FIXED"
	TaskFlexibilityStrict   TaskFlexibility = "STRICT"
	TaskFlexibilityWindow   TaskFlexibility = "WINDOW"
	TaskFlexibilityFlexible TaskFlexibility = "FLEXIBLE"
)

// TaskDayPart is the stored coarse time-of-day preference.
type TaskDayPart string

const (
	TaskDayPartMorning      TaskDayPart = "MORNING"
	TaskDayPartAfternoon    TaskDayPart = "AFTERNOON"
	TaskDayPartEvening      TaskDayPart = "EVENING"
	TaskDayPartNoPreference TaskDayPart = "NO_PREFERENCE"
)

// Task is a schedulable quest stored in the tasks table. Clock windows
// are minutes since local midnight; a nil start means no window of that
// tier is set.
type Task struct {
	ID       int64      `db:"id" json:"id"`
	UserID   string     `db:"user_id" json:"user_id"`
	Title    string     `db:"title" json:"title"`
	Duration int        `db:"duration_minutes" json:"duration_minutes"`
	Priority int        `db:"priority" json:"priority"`
	Deadline *time.Time `db:"deadline" json:"deadline,omitempty"`

	Flexibility         TaskFlexibility `db:"flexibility" json:"flexibility"`
	HardWindowStart     *int            `db:"hard_window_start" json:"hard_window_start,omitempty"`
	HardWindowEnd       *int            `db:"hard_window_end" json:"hard_window_end,omitempty"`
	SoftWindowStart     *int            `db:"soft_window_start" json:"soft_window_start,omitempty"`
	SoftWindowEnd       *int            `db:"soft_window_end" json:"soft_window_end,omitempty"`
	ExpectedWindowStart *int            `db:"expected_window_start" json:"expected_window_start,omitempty"`
	ExpectedWindowEnd   *int            `db:"expected_window_end" json:"expected_window_end,omitempty"`
	PreferredPart       TaskDayPart     `db:"preferred_part" json:"preferred_part"`

	BufferBefore int    `db:"buffer_before" json:"buffer_before"`
	BufferAfter  int    `db:"buffer_after" json:"buffer_after"`
	Recurrence   string `db:"recurrence" json:"recurrence,omitempty"`
	Difficulty   int    `db:"difficulty" json:"difficulty"`

	AllowTimeDeviation    bool `db:"allow_time_deviation" json:"allow_time_deviation"`
	AllowUrgentOverride   bool `db:"allow_urgent_override" json:"allow_urgent_override"`
	AllowSameDayRecurring bool `db:"allow_same_day_recurring" json:"allow_same_day_recurring"`
	Pomodoro              bool `db:"pomodoro" json:"pomodoro"`

	ChunkStrategy string `db:"chunk_strategy" json:"chunk_strategy,omitempty"`
	ChunkSize     int    `db:"chunk_size" json:"chunk_size,omitempty"`
	ForceChunk    bool   `db:"force_chunk" json:"force_chunk"`

	Completed bool      `db:"completed" json:"completed"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// TaskFilter captures filtering criteria for listing a user's tasks.
type TaskFilter struct {
	UserID      string
	Flexibility *TaskFlexibility
	Completed   *bool
	Search      string
	Page        int
	PageSize    int
	SortBy      string
	SortOrder   string
}
