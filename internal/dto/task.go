package dto

import "time"

// CreateTaskRequest creates a schedulable task for the caller.
type CreateTaskRequest struct {
	Title       string     `json:"title" validate:"required,min=1,max=200"`
	Duration    int        `json:"durationMinutes" validate:"required,min=5,max=1440"`
	Priority    int        `json:"priority" validate:"required,min=1,max=10"`
	Deadline    *time.Time `json:"deadline,omitempty"`
	Flexibility string     `json:"flexibility" validate:"required,oneof=FIXED STRICT WINDOW FLEXIBLE"`

	HardWindow     *ClockWindowInput `json:"hardWindow,omitempty"`
	SoftWindow     *ClockWindowInput `json:"softWindow,omitempty"`
	ExpectedWindow *ClockWindowInput `json:"expectedWindow,omitempty"`
	PreferredPart  string            `json:"preferredPart" validate:"omitempty,oneof=MORNING AFTERNOON EVENING NO_PREFERENCE"`

	BufferBefore int    `json:"bufferBefore" validate:"min=0,max=120"`
	BufferAfter  int    `json:"bufferAfter" validate:"min=0,max=120"`
	Recurrence   string `json:"recurrence" validate:"omitempty,max=200"`
	Difficulty   int    `json:"difficulty" validate:"omitempty,min=1,max=10"`

	AllowTimeDeviation    bool `json:"allowTimeDeviation"`
	AllowUrgentOverride   bool `json:"allowUrgentOverride"`
	AllowSameDayRecurring bool `json:"allowSameDayRecurring"`
	Pomodoro              bool `json:"pomodoro"`

	ChunkStrategy string `json:"chunkStrategy" validate:"omitempty,oneof=ADAPTIVE FIXED_SIZE DEADLINE_AWARE FRONT_LOADED USER_PREFERENCE"`
	ChunkSize     int    `json:"chunkSize" validate:"omitempty,min=15,max=480"`
	ForceChunk    bool   `json:"forceChunk"`
}

// UpdateTaskRequest partially updates a task; nil fields are left
// unchanged.
type UpdateTaskRequest struct {
	Title       *string    `json:"title,omitempty" validate:"omitempty,min=1,max=200"`
	Duration    *int       `json:"durationMinutes,omitempty" validate:"omitempty,min=5,max=1440"`
	Priority    *int       `json:"priority,omitempty" validate:"omitempty,min=1,max=10"`
	Deadline    *time.Time `json:"deadline,omitempty"`
	Flexibility *string    `json:"flexibility,omitempty" validate:"omitempty,oneof=FIXED STRICT WINDOW FLEXIBLE"`

	HardWindow     *ClockWindowInput `json:"hardWindow,omitempty"`
	SoftWindow     *ClockWindowInput `json:"softWindow,omitempty"`
	ExpectedWindow *ClockWindowInput `json:"expectedWindow,omitempty"`
	PreferredPart  *string           `json:"preferredPart,omitempty" validate:"omitempty,oneof=MORNING AFTERNOON EVENING NO_PREFERENCE"`

	BufferBefore *int    `json:"bufferBefore,omitempty" validate:"omitempty,min=0,max=120"`
	BufferAfter  *int    `json:"bufferAfter,omitempty" validate:"omitempty,min=0,max=120"`
	Recurrence   *string `json:"recurrence,omitempty" validate:"omitempty,max=200"`
	Difficulty   *int    `json:"difficulty,omitempty" validate:"omitempty,min=1,max=10"`

	AllowTimeDeviation    *bool `json:"allowTimeDeviation,omitempty"`
	AllowUrgentOverride   *bool `json:"allowUrgentOverride,omitempty"`
	AllowSameDayRecurring *bool `json:"allowSameDayRecurring,omitempty"`
	Pomodoro              *bool `json:"pomodoro,omitempty"`

	ChunkStrategy *string `json:"chunkStrategy,omitempty" validate:"omitempty,oneof=ADAPTIVE FIXED_SIZE DEADLINE_AWARE FRONT_LOADED USER_PREFERENCE"`
	ChunkSize     *int    `json:"chunkSize,omitempty" validate:"omitempty,min=15,max=480"`
	ForceChunk    *bool   `json:"forceChunk,omitempty"`
	Completed     *bool   `json:"completed,omitempty"`
}

// TaskQuery filters the caller's task list.
type TaskQuery struct {
	Flexibility string `form:"flexibility" json:"flexibility"`
	Completed   *bool  `form:"completed" json:"completed,omitempty"`
	Search      string `form:"search" json:"search"`
	Page        int    `form:"page" json:"page"`
	PageSize    int    `form:"pageSize" json:"pageSize"`
	SortBy      string `form:"sortBy" json:"sortBy"`
	SortOrder   string `form:"sortOrder" json:"sortOrder"`
}
