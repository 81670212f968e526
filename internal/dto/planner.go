package dto

import "time"

// ClockWindowInput is a clock band in minutes since local midnight.
// End may be less than Start for bands wrapping past midnight.
type ClockWindowInput struct {
	Start int `json:"start" validate:"min=0,max=1439"`
	End   int `json:"end" validate:"min=0,max=1440"`
}

// TaskOverrideInput tweaks a stored task for one generation run
// without persisting the change.
type TaskOverrideInput struct {
	TaskID   int64 `json:"taskId" validate:"required"`
	Priority *int  `json:"priority,omitempty" validate:"omitempty,min=1,max=10"`
	Duration *int  `json:"durationMinutes,omitempty" validate:"omitempty,min=5"`
	Skip     bool  `json:"skip"`
}

// GeneratePlanRequest instructs the planner to build a proposal over
// the given window from the user's stored tasks.
type GeneratePlanRequest struct {
	WindowStart time.Time           `json:"windowStart" validate:"required"`
	WindowDays  int                 `json:"windowDays" validate:"omitempty,min=1,max=31"`
	Sleep       *ClockWindowInput   `json:"sleep,omitempty"`
	Overrides   []TaskOverrideInput `json:"overrides" validate:"omitempty,dive"`
	Optimize    *bool               `json:"optimize,omitempty"`
	Meta        map[string]any      `json:"meta"`
}

// PlanSlotView represents one generated block.
type PlanSlotView struct {
	TaskID  *int64    `json:"taskId,omitempty"`
	Title   string    `json:"title"`
	Kind    string    `json:"kind"`
	StartAt time.Time `json:"startAt"`
	EndAt   time.Time `json:"endAt"`
}

// PlanConflict captures a task the planner could not place.
type PlanConflict struct {
	TaskID  int64          `json:"taskId"`
	Type    string         `json:"type"`
	Message string         `json:"message"`
	Meta    map[string]any `json:"meta,omitempty"`
}

// PlanRunStats summarises a generation run.
type PlanRunStats struct {
	Placed             int     `json:"placed"`
	Unplaced           int     `json:"unplaced"`
	ChunkedTasks       int     `json:"chunkedTasks"`
	Displacements      int     `json:"displacements"`
	SwapAttempts       int     `json:"swapAttempts"`
	SwapsKept          int     `json:"swapsKept"`
	FinalMeanSlotScore float64 `json:"finalMeanSlotScore"`
}

// GeneratePlanResponse returns the built plan proposal.
type GeneratePlanResponse struct {
	ProposalID string         `json:"proposalId"`
	ExpiresAt  time.Time      `json:"expiresAt"`
	Score      float64        `json:"score"`
	Slots      []PlanSlotView `json:"slots"`
	Conflicts  []PlanConflict `json:"conflicts"`
	Stats      PlanRunStats   `json:"stats"`
}

// SavePlanRequest persists a proposal as a new plan version.
type SavePlanRequest struct {
	ProposalID string `json:"proposalId" validate:"required"`
	Publish    bool   `json:"publish"`
}

// PlanQuery filters plan summaries.
type PlanQuery struct {
	Status   string `form:"status" json:"status"`
	Page     int    `form:"page" json:"page"`
	PageSize int    `form:"pageSize" json:"pageSize"`
}
