package models

import (
	"time"

	"github.com/jmoiron/sqlx/types"
)

type PlanStatus string

const (
	PlanStatusDraft     PlanStatus = "DRAFT"
	PlanStatusPublished PlanStatus = "PUBLISHED"
	PlanStatusArchived  PlanStatus = "ARCHIVED"
)

// Plan is a persisted scheduling run. Plans are versioned per user;
// only one version may be PUBLISHED at a time.
type Plan struct {
	ID          string         `db:"id" json:"id"`
	UserID      string         `db:"user_id" json:"user_id"`
	Version     int            `db:"version" json:"version"`
	Status      PlanStatus     `db:"status" json:"status"`
	WindowStart time.Time      `db:"window_start" json:"window_start"`
	WindowEnd   time.Time      `db:"window_end" json:"window_end"`
	Score       float64        `db:"score" json:"score"`
	Stats       types.JSONText `db:"stats" json:"stats,omitempty"`
	CreatedBy   string         `db:"created_by" json:"created_by"`
	CreatedAt   time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time      `db:"updated_at" json:"updated_at"`
	PublishedAt *time.Time     `db:"published_at" json:"published_at,omitempty"`
}

// PlanSlot is one scheduled block belonging to a plan. Kind
// distinguishes task work from buffers and pomodoro breaks.
type PlanSlot struct {
	ID        string    `db:"id" json:"id"`
	PlanID    string    `db:"plan_id" json:"plan_id"`
	TaskID    *int64    `db:"task_id" json:"task_id,omitempty"`
	Title     string    `db:"title" json:"title"`
	Kind      string    `db:"kind" json:"kind"`
	StartAt   time.Time `db:"start_at" json:"start_at"`
	EndAt     time.Time `db:"end_at" json:"end_at"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

const (
	PlanSlotKindTask   = "TASK"
	PlanSlotKindBuffer = "BUFFER"
	PlanSlotKindBreak  = "BREAK"
)

// PlanSummary is the list-view projection of a plan.
type PlanSummary struct {
	ID          string     `db:"id" json:"id"`
	Version     int        `db:"version" json:"version"`
	Status      PlanStatus `db:"status" json:"status"`
	WindowStart time.Time  `db:"window_start" json:"window_start"`
	WindowEnd   time.Time  `db:"window_end" json:"window_end"`
	Score       float64    `db:"score" json:"score"`
	SlotCount   int        `db:"slot_count" json:"slot_count"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
}

// PlanFilter captures filtering for listing plans.
type PlanFilter struct {
	UserID   string
	Status   *PlanStatus
	Page     int
	PageSize int
}
