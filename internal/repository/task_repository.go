package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/quest-planner-api/internal/models"
)

const taskColumns = `id, user_id, title, duration_minutes, priority, deadline, flexibility,
hard_window_start, hard_window_end, soft_window_start, soft_window_end,
expected_window_start, expected_window_end, preferred_part,
buffer_before, buffer_after, recurrence, difficulty,
allow_time_deviation, allow_urgent_override, allow_same_day_recurring, pomodoro,
chunk_strategy, chunk_size, force_chunk, completed, created_at, updated_at`

// TaskRepository provides database access for schedulable tasks.
type TaskRepository struct {
	db *sqlx.DB
}

// NewTaskRepository creates a new instance of TaskRepository.
func NewTaskRepository(db *sqlx.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

// Create inserts a new task and assigns its generated identifier.
func (r *TaskRepository) Create(ctx context.Context, task *models.Task) error {
	now := time.Now().UTC()
	if task.CreatedAt.IsZero() {
		task.CreatedAt = now
	}
	task.UpdatedAt = now

	const query = `INSERT INTO tasks (user_id, title, duration_minutes, priority, deadline, flexibility,
hard_window_start, hard_window_end, soft_window_start, soft_window_end,
expected_window_start, expected_window_end, preferred_part,
buffer_before, buffer_after, recurrence, difficulty,
allow_time_deviation, allow_urgent_override, allow_same_day_recurring, pomodoro,
chunk_strategy, chunk_size, force_chunk, completed, created_at, updated_at)
VALUES (:user_id, :title, :duration_minutes, :priority, :deadline, :flexibility,
:hard_window_start, :hard_window_end, :soft_window_start, :soft_window_end,
:expected_window_start, :expected_window_end, :preferred_part,
:buffer_before, :buffer_after, :recurrence, :difficulty,
:allow_time_deviation, :allow_urgent_override, :allow_same_day_recurring, :pomodoro,
:chunk_strategy, :chunk_size, :force_chunk, :completed, :created_at, :updated_at)
RETURNING id`
	rows, err := sqlx.NamedQueryContext(ctx, r.db, query, task)
	if err != nil {
		return fmt.Errorf("create task: %w", err)
	}
	defer rows.Close()
	if rows.Next() {
		if err := rows.Scan(&task.ID); err != nil {
			return fmt.Errorf("scan task id: %w", err)
		}
	}
	return rows.Err()
}

// FindByID returns a task by identifier scoped to its owner.
func (r *TaskRepository) FindByID(ctx context.Context, userID string, id int64) (*models.Task, error) {
	query := fmt.Sprintf("SELECT %s FROM tasks WHERE id = $1 AND user_id = $2 LIMIT 1", taskColumns)
	var task models.Task
	if err := r.db.GetContext(ctx, &task, query, id, userID); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find task by id: %w", err)
	}
	return &task, nil
}

// List returns tasks based on filters with total count.
func (r *TaskRepository) List(ctx context.Context, filter models.TaskFilter) ([]models.Task, int, error) {
	baseQuery := `FROM tasks WHERE user_id = $1`
	args := []interface{}{filter.UserID}
	var conditions []string

	if filter.Flexibility != nil {
		conditions = append(conditions, fmt.Sprintf("flexibility = $%d", len(args)+1))
		args = append(args, *filter.Flexibility)
	}
	if filter.Completed != nil {
		conditions = append(conditions, fmt.Sprintf("completed = $%d", len(args)+1))
		args = append(args, *filter.Completed)
	}
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("LOWER(title) LIKE $%d", len(args)+1))
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}

	if len(conditions) > 0 {
		baseQuery += " AND " + strings.Join(conditions, " AND ")
	}

	sortBy := filter.SortBy
	allowedSorts := map[string]bool{
		"created_at": true,
		"updated_at": true,
		"deadline":   true,
		"priority":   true,
		"title":      true,
	}
	if !allowedSorts[sortBy] {
		sortBy = "created_at"
	}

	sortOrder := strings.ToUpper(filter.SortOrder)
	if sortOrder != "ASC" && sortOrder != "DESC" {
		sortOrder = "DESC"
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

	listQuery := fmt.Sprintf("SELECT %s %s ORDER BY %s %s LIMIT %d OFFSET %d", taskColumns, baseQuery, sortBy, sortOrder, pageSize, offset)

	var tasks []models.Task
	if err := r.db.SelectContext(ctx, &tasks, listQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("list tasks: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", baseQuery)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count tasks: %w", err)
	}

	return tasks, total, nil
}

// ListPending returns the owner's incomplete tasks for plan generation.
func (r *TaskRepository) ListPending(ctx context.Context, userID string) ([]models.Task, error) {
	query := fmt.Sprintf("SELECT %s FROM tasks WHERE user_id = $1 AND completed = FALSE ORDER BY priority DESC, created_at ASC", taskColumns)
	var tasks []models.Task
	if err := r.db.SelectContext(ctx, &tasks, query, userID); err != nil {
		return nil, fmt.Errorf("list pending tasks: %w", err)
	}
	return tasks, nil
}

// Update persists all mutable fields of a task.
func (r *TaskRepository) Update(ctx context.Context, task *models.Task) error {
	task.UpdatedAt = time.Now().UTC()
	const query = `UPDATE tasks SET title = :title, duration_minutes = :duration_minutes, priority = :priority,
deadline = :deadline, flexibility = :flexibility,
hard_window_start = :hard_window_start, hard_window_end = :hard_window_end,
soft_window_start = :soft_window_start, soft_window_end = :soft_window_end,
expected_window_start = :expected_window_start, expected_window_end = :expected_window_end,
preferred_part = :preferred_part, buffer_before = :buffer_before, buffer_after = :buffer_after,
recurrence = :recurrence, difficulty = :difficulty,
allow_time_deviation = :allow_time_deviation, allow_urgent_override = :allow_urgent_override,
allow_same_day_recurring = :allow_same_day_recurring, pomodoro = :pomodoro,
chunk_strategy = :chunk_strategy, chunk_size = :chunk_size, force_chunk = :force_chunk,
completed = :completed, updated_at = :updated_at
WHERE id = :id AND user_id = :user_id`
	result, err := r.db.NamedExecContext(ctx, query, task)
	if err != nil {
		return fmt.Errorf("update task: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("task rows affected: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete removes a task owned by the user.
func (r *TaskRepository) Delete(ctx context.Context, userID string, id int64) error {
	const query = `DELETE FROM tasks WHERE id = $1 AND user_id = $2`
	result, err := r.db.ExecContext(ctx, query, id, userID)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("task rows affected: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
