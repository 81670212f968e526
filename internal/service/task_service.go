package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/quest-planner-api/internal/dto"
	"github.com/noah-isme/quest-planner-api/internal/models"
	appErrors "github.com/noah-isme/quest-planner-api/pkg/errors"
)

type taskRepo interface {
	Create(ctx context.Context, task *models.Task) error
	FindByID(ctx context.Context, userID string, id int64) (*models.Task, error)
	List(ctx context.Context, filter models.TaskFilter) ([]models.Task, int, error)
	Update(ctx context.Context, task *models.Task) error
	Delete(ctx context.Context, userID string, id int64) error
}

// TaskService handles task CRUD for the planning engine's inputs.
type TaskService struct {
	repo      taskRepo
	validator *validator.Validate
	logger    *zap.Logger
}

// NewTaskService builds the service.
func NewTaskService(repo taskRepo, validate *validator.Validate, logger *zap.Logger) *TaskService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TaskService{
		repo:      repo,
		validator: validate,
		logger:    logger,
	}
}

// Create validates and stores a new task.
func (s *TaskService) Create(ctx context.Context, userID string, req dto.CreateTaskRequest) (*models.Task, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid task payload")
	}
	if err := validateTaskWindows(req.Flexibility, req.HardWindow); err != nil {
		return nil, err
	}

	task := &models.Task{
		UserID:      userID,
		Title:       req.Title,
		Duration:    req.Duration,
		Priority:    req.Priority,
		Deadline:    req.Deadline,
		Flexibility: models.TaskFlexibility(req.Flexibility),

		HardWindowStart:     windowStart(req.HardWindow),
		HardWindowEnd:       windowEnd(req.HardWindow),
		SoftWindowStart:     windowStart(req.SoftWindow),
		SoftWindowEnd:       windowEnd(req.SoftWindow),
		ExpectedWindowStart: windowStart(req.ExpectedWindow),
		ExpectedWindowEnd:   windowEnd(req.ExpectedWindow),
		PreferredPart:       models.TaskDayPart(req.PreferredPart),

		BufferBefore: req.BufferBefore,
		BufferAfter:  req.BufferAfter,
		Recurrence:   req.Recurrence,
		Difficulty:   req.Difficulty,

		AllowTimeDeviation:    req.AllowTimeDeviation,
		AllowUrgentOverride:   req.AllowUrgentOverride,
		AllowSameDayRecurring: req.AllowSameDayRecurring,
		Pomodoro:              req.Pomodoro,

		ChunkStrategy: req.ChunkStrategy,
		ChunkSize:     req.ChunkSize,
		ForceChunk:    req.ForceChunk,
	}
	if task.PreferredPart == "" {
		task.PreferredPart = models.TaskDayPartNoPreference
	}

	if err := s.repo.Create(ctx, task); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create task")
	}
	return task, nil
}

// Get returns a single task owned by the user.
func (s *TaskService) Get(ctx context.Context, userID string, id int64) (*models.Task, error) {
	task, err := s.repo.FindByID(ctx, userID, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "task not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load task")
	}
	return task, nil
}

// List returns tasks for the user with pagination metadata.
func (s *TaskService) List(ctx context.Context, userID string, query dto.TaskQuery) ([]models.Task, *models.Pagination, error) {
	filter := models.TaskFilter{
		UserID:    userID,
		Completed: query.Completed,
		Search:    query.Search,
		Page:      query.Page,
		PageSize:  query.PageSize,
		SortBy:    query.SortBy,
		SortOrder: query.SortOrder,
	}
	if query.Flexibility != "" {
		flex := models.TaskFlexibility(query.Flexibility)
		switch flex {
		case models.TaskFlexibilityFixed, models.TaskFlexibilityStrict, models.TaskFlexibilityWindow, models.TaskFlexibilityFlexible:
			filter.Flexibility = &flex
		default:
			return nil, nil, appErrors.Clone(appErrors.ErrValidation, "invalid flexibility filter")
		}
	}

	tasks, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list tasks")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}
	return tasks, &models.Pagination{Page: page, PageSize: pageSize, TotalCount: total}, nil
}

// Update applies the non-nil fields of the request to a stored task.
func (s *TaskService) Update(ctx context.Context, userID string, id int64, req dto.UpdateTaskRequest) (*models.Task, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid task payload")
	}
	task, err := s.repo.FindByID(ctx, userID, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "task not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load task")
	}

	applyTaskUpdate(task, req)

	if err := validateTaskWindows(string(task.Flexibility), windowFromParts(task.HardWindowStart, task.HardWindowEnd)); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, task); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "task not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update task")
	}
	return task, nil
}

// Delete removes a task owned by the user.
func (s *TaskService) Delete(ctx context.Context, userID string, id int64) error {
	if err := s.repo.Delete(ctx, userID, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "task not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete task")
	}
	return nil
}

func applyTaskUpdate(task *models.Task, req dto.UpdateTaskRequest) {
	if req.Title != nil {
		task.Title = *req.Title
	}
	if req.Duration != nil {
		task.Duration = *req.Duration
	}
	if req.Priority != nil {
		task.Priority = *req.Priority
	}
	if req.Deadline != nil {
		task.Deadline = req.Deadline
	}
	if req.Flexibility != nil {
		task.Flexibility = models.TaskFlexibility(*req.Flexibility)
	}
	if req.HardWindow != nil {
		task.HardWindowStart = windowStart(req.HardWindow)
		task.HardWindowEnd = windowEnd(req.HardWindow)
	}
	if req.SoftWindow != nil {
		task.SoftWindowStart = windowStart(req.SoftWindow)
		task.SoftWindowEnd = windowEnd(req.SoftWindow)
	}
	if req.ExpectedWindow != nil {
		task.ExpectedWindowStart = windowStart(req.ExpectedWindow)
		task.ExpectedWindowEnd = windowEnd(req.ExpectedWindow)
	}
	if req.PreferredPart != nil {
		task.PreferredPart = models.TaskDayPart(*req.PreferredPart)
	}
	if req.BufferBefore != nil {
		task.BufferBefore = *req.BufferBefore
	}
	if req.BufferAfter != nil {
		task.BufferAfter = *req.BufferAfter
	}
	if req.Recurrence != nil {
		task.Recurrence = *req.Recurrence
	}
	if req.Difficulty != nil {
		task.Difficulty = *req.Difficulty
	}
	if req.AllowTimeDeviation != nil {
		task.AllowTimeDeviation = *req.AllowTimeDeviation
	}
	if req.AllowUrgentOverride != nil {
		task.AllowUrgentOverride = *req.AllowUrgentOverride
	}
	if req.AllowSameDayRecurring != nil {
		task.AllowSameDayRecurring = *req.AllowSameDayRecurring
	}
	if req.Pomodoro != nil {
		task.Pomodoro = *req.Pomodoro
	}
	if req.ChunkStrategy != nil {
		task.ChunkStrategy = *req.ChunkStrategy
	}
	if req.ChunkSize != nil {
		task.ChunkSize = *req.ChunkSize
	}
	if req.ForceChunk != nil {
		task.ForceChunk = *req.ForceChunk
	}
	if req.Completed != nil {
		task.Completed = *req.Completed
	}
}

// validateTaskWindows enforces that immovable tasks carry a hard window.
func validateTaskWindows(flexibility string, hard *dto.ClockWindowInput) error {
	if models.TaskFlexibility(flexibility) == models.TaskFlexibilityFixed {
		if hard == nil {
			return appErrors.Clone(appErrors.ErrValidation, "fixed tasks require a hard window")
		}
		if hard.End <= hard.Start {
			return appErrors.Clone(appErrors.ErrValidation, "hard window end must be after start")
		}
	}
	return nil
}

func windowStart(w *dto.ClockWindowInput) *int {
	if w == nil {
		return nil
	}
	v := w.Start
	return &v
}

func windowEnd(w *dto.ClockWindowInput) *int {
	if w == nil {
		return nil
	}
	v := w.End
	return &v
}

func windowFromParts(start, end *int) *dto.ClockWindowInput {
	if start == nil || end == nil {
		return nil
	}
	return &dto.ClockWindowInput{Start: *start, End: *end}
}
