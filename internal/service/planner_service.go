package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"
	"go.uber.org/zap"

	"github.com/noah-isme/quest-planner-api/internal/dto"
	"github.com/noah-isme/quest-planner-api/internal/models"
	"github.com/noah-isme/quest-planner-api/internal/scheduler"
	appErrors "github.com/noah-isme/quest-planner-api/pkg/errors"
)

type plannerTaskReader interface {
	ListPending(ctx context.Context, userID string) ([]models.Task, error)
}

type plannerPreferenceReader interface {
	FindByUser(ctx context.Context, userID string) (*models.Preference, error)
}

type planRepository interface {
	CreateVersioned(ctx context.Context, exec sqlx.ExtContext, plan *models.Plan) error
	InsertSlots(ctx context.Context, exec sqlx.ExtContext, planID string, slots []models.PlanSlot) error
	FindByID(ctx context.Context, userID, id string) (*models.Plan, error)
	ListSlots(ctx context.Context, planID string) ([]models.PlanSlot, error)
	List(ctx context.Context, filter models.PlanFilter) ([]models.PlanSummary, int, error)
	UpdateStatus(ctx context.Context, exec sqlx.ExtContext, id string, status models.PlanStatus, publishedAt *time.Time) error
	ArchivePublished(ctx context.Context, exec sqlx.ExtContext, userID string) error
	Delete(ctx context.Context, userID, id string) error
}

type plannerTxProvider interface {
	BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error)
}

// PlannerService builds plan proposals from a user's pending tasks and
// persists accepted ones as versioned plans.
type PlannerService struct {
	tasks     plannerTaskReader
	prefs     plannerPreferenceReader
	plans     planRepository
	tx        plannerTxProvider
	cache     *CacheService
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
	cfg       PlannerServiceConfig
	store     *proposalStore
	clock     func() time.Time
}

// PlannerServiceConfig governs proposal lifetime and engine tuning.
type PlannerServiceConfig struct {
	ProposalTTL       time.Duration
	WindowDays        int
	Granularity       time.Duration
	MaxSwapAttempts   int
	DailyCapMinutes   int
	OptimizeThreshold float64
	RandomSeed        int64
	CacheTTL          time.Duration
}

// NewPlannerService wires planner dependencies.
func NewPlannerService(
	tasks plannerTaskReader,
	prefs plannerPreferenceReader,
	plans planRepository,
	tx plannerTxProvider,
	cache *CacheService,
	metrics *MetricsService,
	validate *validator.Validate,
	logger *zap.Logger,
	cfg PlannerServiceConfig,
) *PlannerService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ProposalTTL <= 0 {
		cfg.ProposalTTL = 30 * time.Minute
	}
	if cfg.WindowDays <= 0 {
		cfg.WindowDays = 7
	}
	return &PlannerService{
		tasks:     tasks,
		prefs:     prefs,
		plans:     plans,
		tx:        tx,
		cache:     cache,
		metrics:   metrics,
		validator: validate,
		logger:    logger,
		cfg:       cfg,
		store:     newProposalStore(cfg.ProposalTTL),
		clock:     time.Now,
	}
}

// Generate runs the scheduling engine over the user's pending tasks and
// caches the outcome as a short-lived proposal.
func (s *PlannerService) Generate(ctx context.Context, userID string, req dto.GeneratePlanRequest) (*dto.GeneratePlanResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid plan generation payload")
	}

	windowDays := req.WindowDays
	if windowDays <= 0 {
		windowDays = s.cfg.WindowDays
	}
	windowStart := req.WindowStart.UTC().Truncate(24 * time.Hour)
	windowEnd := windowStart.AddDate(0, 0, windowDays)
	if !windowEnd.After(windowStart) {
		return nil, appErrors.Clone(appErrors.ErrInvalidWindow, "planning window must not be empty")
	}

	pref, err := s.loadPreference(ctx, userID)
	if err != nil {
		return nil, err
	}
	sleep := &scheduler.SleepWindow{
		Start: scheduler.MinuteOfDay(pref.SleepStart),
		End:   scheduler.MinuteOfDay(pref.SleepEnd),
	}
	if req.Sleep != nil {
		sleep = &scheduler.SleepWindow{
			Start: scheduler.MinuteOfDay(req.Sleep.Start),
			End:   scheduler.MinuteOfDay(req.Sleep.End),
		}
	}

	stored, err := s.tasks.ListPending(ctx, userID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load tasks")
	}

	engineTasks, err := buildEngineTasks(stored, req.Overrides)
	if err != nil {
		return nil, err
	}
	if len(engineTasks) == 0 {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "no pending tasks to plan")
	}

	engineCfg := scheduler.DefaultConfig()
	engineCfg.Granularity = s.cfg.Granularity
	engineCfg.MaxSwapAttempts = s.cfg.MaxSwapAttempts
	engineCfg.DailyCapMinutes = pref.DailyCapMinutes
	if engineCfg.DailyCapMinutes <= 0 {
		engineCfg.DailyCapMinutes = s.cfg.DailyCapMinutes
	}
	engineCfg.OptimizeThreshold = s.cfg.OptimizeThreshold
	engineCfg.Logger = s.logger
	if s.cfg.RandomSeed != 0 {
		engineCfg.Rand = rand.New(rand.NewSource(s.cfg.RandomSeed))
	}
	if req.Optimize != nil && !*req.Optimize {
		// Threshold of zero falls back to the default, so force the swap
		// phase off with a negative value.
		engineCfg.OptimizeThreshold = -1
	}

	engine := scheduler.New(windowStart, windowEnd, sleep, engineCfg)
	runStart := s.clock()
	result := engine.Schedule(engineTasks)
	s.metrics.ObservePlannerRun(result.Stats.Placed, result.Stats.Unplaced, result.Stats.Displacements, s.clock().Sub(runStart))

	proposal := planProposal{
		ProposalID:  uuid.NewString(),
		UserID:      userID,
		WindowStart: windowStart,
		WindowEnd:   windowEnd,
		Score:       result.Stats.FinalMeanSlotScore,
		Slots:       slotViews(result.Slots),
		Conflicts:   conflictViews(result.Conflicts),
		Stats: dto.PlanRunStats{
			Placed:             result.Stats.Placed,
			Unplaced:           result.Stats.Unplaced,
			ChunkedTasks:       result.Stats.ChunkedTasks,
			Displacements:      result.Stats.Displacements,
			SwapAttempts:       result.Stats.SwapAttempts,
			SwapsKept:          result.Stats.SwapsKept,
			FinalMeanSlotScore: result.Stats.FinalMeanSlotScore,
		},
		RequestedAt: s.clock().UTC(),
	}
	s.store.Save(proposal)

	s.logger.Info("plan proposal generated",
		zap.String("proposal_id", proposal.ProposalID),
		zap.String("user_id", userID),
		zap.Int("placed", result.Stats.Placed),
		zap.Int("unplaced", result.Stats.Unplaced))

	return &dto.GeneratePlanResponse{
		ProposalID: proposal.ProposalID,
		ExpiresAt:  proposal.RequestedAt.Add(s.cfg.ProposalTTL),
		Score:      proposal.Score,
		Slots:      proposal.Slots,
		Conflicts:  proposal.Conflicts,
		Stats:      proposal.Stats,
	}, nil
}

// Save persists a cached proposal as a new plan version, optionally
// publishing it immediately.
func (s *PlannerService) Save(ctx context.Context, userID string, req dto.SavePlanRequest) (*models.Plan, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid save plan payload")
	}
	proposal, ok := s.store.Get(req.ProposalID)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrProposalExpired, "proposal not found or expired")
	}
	if proposal.UserID != userID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "proposal belongs to a different user")
	}
	if s.tx == nil {
		return nil, appErrors.Clone(appErrors.ErrInternal, "transaction provider missing")
	}

	tx, err := s.tx.BeginTxx(ctx, nil)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to begin transaction")
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	statsBytes, marshalErr := json.Marshal(proposal.Stats)
	if marshalErr != nil {
		err = appErrors.Wrap(marshalErr, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to encode plan stats")
		return nil, err
	}

	record := &models.Plan{
		UserID:      userID,
		Status:      models.PlanStatusDraft,
		WindowStart: proposal.WindowStart,
		WindowEnd:   proposal.WindowEnd,
		Score:       proposal.Score,
		Stats:       types.JSONText(statsBytes),
		CreatedBy:   userID,
	}
	if err = s.plans.CreateVersioned(ctx, tx, record); err != nil {
		err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create plan")
		return nil, err
	}

	slotModels := make([]models.PlanSlot, 0, len(proposal.Slots))
	for _, slot := range proposal.Slots {
		slotModels = append(slotModels, models.PlanSlot{
			TaskID:  slot.TaskID,
			Title:   slot.Title,
			Kind:    slot.Kind,
			StartAt: slot.StartAt,
			EndAt:   slot.EndAt,
		})
	}
	if err = s.plans.InsertSlots(ctx, tx, record.ID, slotModels); err != nil {
		err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist plan slots")
		return nil, err
	}

	if req.Publish {
		if err = s.plans.ArchivePublished(ctx, tx, userID); err != nil {
			err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to archive published plans")
			return nil, err
		}
		now := s.clock().UTC()
		if err = s.plans.UpdateStatus(ctx, tx, record.ID, models.PlanStatusPublished, &now); err != nil {
			err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to publish plan")
			return nil, err
		}
		record.Status = models.PlanStatusPublished
		record.PublishedAt = &now
	}

	if err = tx.Commit(); err != nil {
		err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to commit plan transaction")
		return nil, err
	}

	s.store.Delete(req.ProposalID)
	s.invalidatePlanCache(ctx, userID)
	return record, nil
}

// List returns plan summaries for the user.
func (s *PlannerService) List(ctx context.Context, userID string, query dto.PlanQuery) ([]models.PlanSummary, *models.Pagination, error) {
	filter := models.PlanFilter{
		UserID:   userID,
		Page:     query.Page,
		PageSize: query.PageSize,
	}
	if query.Status != "" {
		status := models.PlanStatus(query.Status)
		switch status {
		case models.PlanStatusDraft, models.PlanStatusPublished, models.PlanStatusArchived:
			filter.Status = &status
		default:
			return nil, nil, appErrors.Clone(appErrors.ErrValidation, "invalid plan status filter")
		}
	}
	summaries, total, err := s.plans.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list plans")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}
	return summaries, &models.Pagination{Page: page, PageSize: pageSize, TotalCount: total}, nil
}

type planDetail struct {
	Plan  *models.Plan      `json:"plan"`
	Slots []models.PlanSlot `json:"slots"`
}

// Get loads a plan with its slots. The bool result reports whether the
// payload was served from cache.
func (s *PlannerService) Get(ctx context.Context, userID, id string) (*models.Plan, []models.PlanSlot, bool, error) {
	cacheKey := fmt.Sprintf("plan:%s:%s", userID, id)
	if s.cache != nil {
		var cached planDetail
		if hit, err := s.cache.Get(ctx, cacheKey, &cached); err == nil && hit && cached.Plan != nil {
			return cached.Plan, cached.Slots, true, nil
		}
	}

	plan, err := s.plans.FindByID(ctx, userID, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, false, appErrors.Clone(appErrors.ErrNotFound, "plan not found")
		}
		return nil, nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load plan")
	}
	slots, err := s.plans.ListSlots(ctx, id)
	if err != nil {
		return nil, nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load plan slots")
	}
	if s.cache != nil {
		_ = s.cache.Set(ctx, cacheKey, planDetail{Plan: plan, Slots: slots}, s.cfg.CacheTTL)
	}
	return plan, slots, false, nil
}

// Publish promotes a draft plan, archiving any previously published one.
func (s *PlannerService) Publish(ctx context.Context, userID, id string) (*models.Plan, error) {
	plan, err := s.plans.FindByID(ctx, userID, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "plan not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load plan")
	}
	if plan.Status == models.PlanStatusPublished {
		return nil, appErrors.Clone(appErrors.ErrPlanPublished, "plan is already published")
	}

	tx, err := s.tx.BeginTxx(ctx, nil)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to begin transaction")
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = s.plans.ArchivePublished(ctx, tx, userID); err != nil {
		err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to archive published plans")
		return nil, err
	}
	now := s.clock().UTC()
	if err = s.plans.UpdateStatus(ctx, tx, id, models.PlanStatusPublished, &now); err != nil {
		err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to publish plan")
		return nil, err
	}
	if err = tx.Commit(); err != nil {
		err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to commit publish transaction")
		return nil, err
	}

	plan.Status = models.PlanStatusPublished
	plan.PublishedAt = &now
	s.invalidatePlanCache(ctx, userID)
	return plan, nil
}

// Delete removes a draft or archived plan version. Published plans must
// be superseded, not deleted.
func (s *PlannerService) Delete(ctx context.Context, userID, id string) error {
	plan, err := s.plans.FindByID(ctx, userID, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "plan not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load plan")
	}
	if plan.Status == models.PlanStatusPublished {
		return appErrors.Clone(appErrors.ErrPlanPublished, "published plans cannot be deleted")
	}
	if err := s.plans.Delete(ctx, userID, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "plan not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete plan")
	}
	s.invalidatePlanCache(ctx, userID)
	return nil
}

func (s *PlannerService) invalidatePlanCache(ctx context.Context, userID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, fmt.Sprintf("plan:%s:*", userID)); err != nil {
		s.logger.Warn("plan cache invalidation failed", zap.String("user_id", userID), zap.Error(err))
	}
}

func (s *PlannerService) loadPreference(ctx context.Context, userID string) (*models.Preference, error) {
	if s.prefs == nil {
		return models.DefaultPreference(userID), nil
	}
	pref, err := s.prefs.FindByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.DefaultPreference(userID), nil
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load preferences")
	}
	return pref, nil
}

// --- Model to engine mapping ---

func buildEngineTasks(stored []models.Task, overrides []dto.TaskOverrideInput) ([]*scheduler.Task, error) {
	overrideMap := make(map[int64]dto.TaskOverrideInput, len(overrides))
	for _, o := range overrides {
		overrideMap[o.TaskID] = o
	}

	out := make([]*scheduler.Task, 0, len(stored))
	for i := range stored {
		m := stored[i]
		if o, ok := overrideMap[m.ID]; ok {
			if o.Skip {
				continue
			}
			if o.Priority != nil {
				m.Priority = *o.Priority
			}
			if o.Duration != nil {
				m.Duration = *o.Duration
			}
		}
		task, err := engineTask(m)
		if err != nil {
			return nil, err
		}
		out = append(out, task)
	}
	return out, nil
}

func engineTask(m models.Task) (*scheduler.Task, error) {
	flex, ok := engineFlexibility(m.Flexibility)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown task flexibility")
	}
	task := &scheduler.Task{
		ID:             m.ID,
		Title:          m.Title,
		Duration:       m.Duration,
		Priority:       m.Priority,
		Deadline:       m.Deadline,
		Flexibility:    flex,
		HardWindow:     engineWindow(m.HardWindowStart, m.HardWindowEnd),
		SoftWindow:     engineWindow(m.SoftWindowStart, m.SoftWindowEnd),
		ExpectedWindow: engineWindow(m.ExpectedWindowStart, m.ExpectedWindowEnd),
		PreferredPart:  engineDayPart(m.PreferredPart),
		BufferBefore:   m.BufferBefore,
		BufferAfter:    m.BufferAfter,
		Recurrence:     m.Recurrence,
		Difficulty:     m.Difficulty,

		AllowTimeDeviation:    m.AllowTimeDeviation,
		AllowUrgentOverride:   m.AllowUrgentOverride,
		AllowSameDayRecurring: m.AllowSameDayRecurring,
		Pomodoro:              m.Pomodoro,

		ChunkStrategy: scheduler.ChunkStrategyName(m.ChunkStrategy),
		ChunkSize:     m.ChunkSize,
		ForceChunk:    m.ForceChunk,
	}
	return task, nil
}

func engineFlexibility(f models.TaskFlexibility) (scheduler.Flexibility, bool) {
	switch f {
	case models.TaskFlexibilityFixed:
		return scheduler.FlexFixed, true
	case models.TaskFlexibilityStrict:
		return scheduler.FlexStrict, true
	case models.TaskFlexibilityWindow:
		return scheduler.FlexWindow, true
	case models.TaskFlexibilityFlexible, "":
		return scheduler.FlexFlexible, true
	default:
		return "", false
	}
}

func engineWindow(start, end *int) *scheduler.ClockWindow {
	if start == nil || end == nil {
		return nil
	}
	return &scheduler.ClockWindow{
		Start: scheduler.MinuteOfDay(*start),
		End:   scheduler.MinuteOfDay(*end),
	}
}

func engineDayPart(p models.TaskDayPart) scheduler.DayPart {
	switch p {
	case models.TaskDayPartMorning:
		return scheduler.DayPartMorning
	case models.TaskDayPartAfternoon:
		return scheduler.DayPartAfternoon
	case models.TaskDayPartEvening:
		return scheduler.DayPartEvening
	default:
		return scheduler.DayPartNoPreference
	}
}

func slotViews(slots []scheduler.Slot) []dto.PlanSlotView {
	views := make([]dto.PlanSlotView, 0, len(slots))
	for i, slot := range slots {
		switch slot.Kind {
		case scheduler.SlotTask:
			var taskID *int64
			title := ""
			if slot.Task != nil {
				id := taskIdentity(slot.Task)
				taskID = &id
				title = slot.Task.Title
			}
			views = append(views, dto.PlanSlotView{
				TaskID:  taskID,
				Title:   title,
				Kind:    models.PlanSlotKindTask,
				StartAt: slot.Start,
				EndAt:   slot.End,
			})
		case scheduler.SlotBuffer:
			kind := models.PlanSlotKindBuffer
			title := "Buffer"
			if isPomodoroBreak(slots, i) {
				kind = models.PlanSlotKindBreak
				title = "Break"
			}
			views = append(views, dto.PlanSlotView{
				Title:   title,
				Kind:    kind,
				StartAt: slot.Start,
				EndAt:   slot.End,
			})
		}
	}
	return views
}

// isPomodoroBreak reports whether the buffer slot at idx separates two
// work sessions of the same pomodoro task.
func isPomodoroBreak(slots []scheduler.Slot, idx int) bool {
	if idx == 0 || idx == len(slots)-1 {
		return false
	}
	prev, next := slots[idx-1], slots[idx+1]
	if prev.Kind != scheduler.SlotTask || next.Kind != scheduler.SlotTask {
		return false
	}
	return prev.Task != nil && next.Task != nil &&
		prev.Task.ID == next.Task.ID && prev.Task.Pomodoro
}

// taskIdentity resolves engine-local instance IDs back to the stored row.
func taskIdentity(t *scheduler.Task) int64 {
	if t.ParentID != 0 {
		return t.ParentID
	}
	return t.ID
}

func conflictViews(conflicts []scheduler.Conflict) []dto.PlanConflict {
	views := make([]dto.PlanConflict, 0, len(conflicts))
	for _, c := range conflicts {
		views = append(views, dto.PlanConflict{
			TaskID:  c.TaskID,
			Type:    string(c.Type),
			Message: c.Message,
		})
	}
	return views
}

// --- Proposal cache ---

type planProposal struct {
	ProposalID  string
	UserID      string
	WindowStart time.Time
	WindowEnd   time.Time
	Score       float64
	Slots       []dto.PlanSlotView
	Conflicts   []dto.PlanConflict
	Stats       dto.PlanRunStats
	RequestedAt time.Time
}

type proposalStore struct {
	ttl   time.Duration
	mu    sync.RWMutex
	items map[string]planProposal
}

func newProposalStore(ttl time.Duration) *proposalStore {
	return &proposalStore{
		ttl:   ttl,
		items: make(map[string]planProposal),
	}
}

func (s *proposalStore) Save(proposal planProposal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[proposal.ProposalID] = proposal
}

func (s *proposalStore) Get(id string) (planProposal, bool) {
	s.mu.RLock()
	proposal, ok := s.items[id]
	s.mu.RUnlock()
	if !ok {
		return planProposal{}, false
	}
	if time.Since(proposal.RequestedAt) > s.ttl {
		s.Delete(id)
		return planProposal{}, false
	}
	return proposal, true
}

func (s *proposalStore) Delete(id string) {
	s.mu.Lock()
	delete(s.items, id)
	s.mu.Unlock()
}
