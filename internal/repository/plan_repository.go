package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"

	"github.com/noah-isme/quest-planner-api/internal/models"
)

// PlanRepository persists versioned plans and their slots.
type PlanRepository struct {
	db *sqlx.DB
}

// NewPlanRepository constructs the repository.
func NewPlanRepository(db *sqlx.DB) *PlanRepository {
	return &PlanRepository{db: db}
}

func (r *PlanRepository) exec(exec sqlx.ExtContext) sqlx.ExtContext {
	if exec != nil {
		return exec
	}
	return r.db
}

// CreateVersioned inserts a plan assigning the next version for the user.
func (r *PlanRepository) CreateVersioned(ctx context.Context, exec sqlx.ExtContext, plan *models.Plan) error {
	if plan == nil {
		return fmt.Errorf("plan payload is nil")
	}
	if plan.UserID == "" {
		return fmt.Errorf("user_id is required")
	}
	if plan.ID == "" {
		plan.ID = uuid.NewString()
	}
	if plan.Status == "" {
		plan.Status = models.PlanStatusDraft
	}
	if len(plan.Stats) == 0 {
		plan.Stats = types.JSONText(`{}`)
	}
	now := time.Now().UTC()
	if plan.CreatedAt.IsZero() {
		plan.CreatedAt = now
	}
	plan.UpdatedAt = now

	target := r.exec(exec)

	const nextVersionQuery = `SELECT COALESCE(MAX(version), 0) + 1 FROM plans WHERE user_id = $1`
	if err := sqlx.GetContext(ctx, target, &plan.Version, nextVersionQuery, plan.UserID); err != nil {
		return fmt.Errorf("compute next plan version: %w", err)
	}

	const insertQuery = `
INSERT INTO plans (id, user_id, version, status, window_start, window_end, score, stats, created_by, created_at, updated_at, published_at)
VALUES (:id, :user_id, :version, :status, :window_start, :window_end, :score, :stats, :created_by, :created_at, :updated_at, :published_at)`
	if _, err := sqlx.NamedExecContext(ctx, target, insertQuery, plan); err != nil {
		return fmt.Errorf("insert plan: %w", err)
	}
	return nil
}

// InsertSlots bulk-inserts the slots belonging to a plan.
func (r *PlanRepository) InsertSlots(ctx context.Context, exec sqlx.ExtContext, planID string, slots []models.PlanSlot) error {
	if len(slots) == 0 {
		return nil
	}
	target := r.exec(exec)
	now := time.Now().UTC()

	const query = `INSERT INTO plan_slots (id, plan_id, task_id, title, kind, start_at, end_at, created_at)
VALUES (:id, :plan_id, :task_id, :title, :kind, :start_at, :end_at, :created_at)`
	for i := range slots {
		slots[i].PlanID = planID
		if slots[i].ID == "" {
			slots[i].ID = uuid.NewString()
		}
		if slots[i].CreatedAt.IsZero() {
			slots[i].CreatedAt = now
		}
		if _, err := sqlx.NamedExecContext(ctx, target, query, slots[i]); err != nil {
			return fmt.Errorf("insert plan slot: %w", err)
		}
	}
	return nil
}

// FindByID loads a plan by identifier scoped to the owner.
func (r *PlanRepository) FindByID(ctx context.Context, userID, id string) (*models.Plan, error) {
	const query = `SELECT id, user_id, version, status, window_start, window_end, score, stats, created_by, created_at, updated_at, published_at
FROM plans WHERE id = $1 AND user_id = $2`
	var plan models.Plan
	if err := r.db.GetContext(ctx, &plan, query, id, userID); err != nil {
		return nil, err
	}
	return &plan, nil
}

// ListSlots returns a plan's slots ordered by start time.
func (r *PlanRepository) ListSlots(ctx context.Context, planID string) ([]models.PlanSlot, error) {
	const query = `SELECT id, plan_id, task_id, title, kind, start_at, end_at, created_at
FROM plan_slots WHERE plan_id = $1 ORDER BY start_at ASC`
	var slots []models.PlanSlot
	if err := r.db.SelectContext(ctx, &slots, query, planID); err != nil {
		return nil, fmt.Errorf("list plan slots: %w", err)
	}
	return slots, nil
}

// List returns plan summaries for the user with total count.
func (r *PlanRepository) List(ctx context.Context, filter models.PlanFilter) ([]models.PlanSummary, int, error) {
	baseQuery := `FROM plans p WHERE p.user_id = $1`
	args := []interface{}{filter.UserID}

	if filter.Status != nil {
		baseQuery += fmt.Sprintf(" AND p.status = $%d", len(args)+1)
		args = append(args, *filter.Status)
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	listQuery := fmt.Sprintf(`SELECT p.id, p.version, p.status, p.window_start, p.window_end, p.score,
(SELECT COUNT(*) FROM plan_slots s WHERE s.plan_id = p.id) AS slot_count, p.created_at
%s ORDER BY p.version DESC LIMIT %d OFFSET %d`, baseQuery, pageSize, offset)

	var summaries []models.PlanSummary
	if err := r.db.SelectContext(ctx, &summaries, listQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("list plans: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", baseQuery)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count plans: %w", err)
	}

	return summaries, total, nil
}

// UpdateStatus updates the lifecycle status of a plan.
func (r *PlanRepository) UpdateStatus(ctx context.Context, exec sqlx.ExtContext, id string, status models.PlanStatus, publishedAt *time.Time) error {
	target := r.exec(exec)
	now := time.Now().UTC()

	const query = `UPDATE plans SET status = $1, published_at = $2, updated_at = $3 WHERE id = $4`
	result, err := target.ExecContext(ctx, query, status, publishedAt, now, id)
	if err != nil {
		return fmt.Errorf("update plan status: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("plan status rows affected: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// ArchivePublished demotes any published plan of the user to ARCHIVED.
func (r *PlanRepository) ArchivePublished(ctx context.Context, exec sqlx.ExtContext, userID string) error {
	target := r.exec(exec)
	const query = `UPDATE plans SET status = $1, updated_at = $2 WHERE user_id = $3 AND status = $4`
	if _, err := target.ExecContext(ctx, query, models.PlanStatusArchived, time.Now().UTC(), userID, models.PlanStatusPublished); err != nil {
		return fmt.Errorf("archive published plans: %w", err)
	}
	return nil
}

// Delete removes a stored plan version and its slots.
func (r *PlanRepository) Delete(ctx context.Context, userID, id string) error {
	const slotQuery = `DELETE FROM plan_slots WHERE plan_id = $1`
	if _, err := r.db.ExecContext(ctx, slotQuery, id); err != nil {
		return fmt.Errorf("delete plan slots: %w", err)
	}
	const query = `DELETE FROM plans WHERE id = $1 AND user_id = $2`
	result, err := r.db.ExecContext(ctx, query, id, userID)
	if err != nil {
		return fmt.Errorf("delete plan: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("plan rows affected: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
