package dto

// UpsertPreferenceRequest replaces the caller's scheduling defaults.
type UpsertPreferenceRequest struct {
	SleepStart      int    `json:"sleepStart" validate:"min=0,max=1439"`
	SleepEnd        int    `json:"sleepEnd" validate:"min=0,max=1439"`
	DailyCapMinutes int    `json:"dailyCapMinutes" validate:"required,min=60,max=1440"`
	ChunkPreference int    `json:"chunkPreference" validate:"omitempty,min=15,max=480"`
	Timezone        string `json:"timezone" validate:"omitempty,max=64"`
}

// CreateExportJobRequest queues an asynchronous export.
type CreateExportJobRequest struct {
	Type   string  `json:"type" validate:"required,oneof=plan tasks"`
	Format string  `json:"format" validate:"required,oneof=csv pdf ics"`
	PlanID *string `json:"planId,omitempty"`
}
