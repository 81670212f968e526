package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/quest-planner-api/internal/dto"
	"github.com/noah-isme/quest-planner-api/internal/models"
	appErrors "github.com/noah-isme/quest-planner-api/pkg/errors"
)

type taskRepoStub struct {
	items  map[int64]*models.Task
	nextID int64
}

func newTaskRepoStub() *taskRepoStub {
	return &taskRepoStub{items: map[int64]*models.Task{}, nextID: 1}
}

func (m *taskRepoStub) Create(ctx context.Context, task *models.Task) error {
	task.ID = m.nextID
	m.nextID++
	cp := *task
	m.items[task.ID] = &cp
	return nil
}

func (m *taskRepoStub) FindByID(ctx context.Context, userID string, id int64) (*models.Task, error) {
	task, ok := m.items[id]
	if !ok || task.UserID != userID {
		return nil, sql.ErrNoRows
	}
	cp := *task
	return &cp, nil
}

func (m *taskRepoStub) List(ctx context.Context, filter models.TaskFilter) ([]models.Task, int, error) {
	var out []models.Task
	for _, task := range m.items {
		if task.UserID == filter.UserID {
			out = append(out, *task)
		}
	}
	return out, len(out), nil
}

func (m *taskRepoStub) Update(ctx context.Context, task *models.Task) error {
	if _, ok := m.items[task.ID]; !ok {
		return sql.ErrNoRows
	}
	cp := *task
	m.items[task.ID] = &cp
	return nil
}

func (m *taskRepoStub) Delete(ctx context.Context, userID string, id int64) error {
	task, ok := m.items[id]
	if !ok || task.UserID != userID {
		return sql.ErrNoRows
	}
	delete(m.items, id)
	return nil
}

func newTaskService() (*TaskService, *taskRepoStub) {
	repo := newTaskRepoStub()
	return NewTaskService(repo, validator.New(), zap.NewNop()), repo
}

func TestTaskServiceCreate(t *testing.T) {
	svc, repo := newTaskService()

	task, err := svc.Create(context.Background(), "user-1", dto.CreateTaskRequest{
		Title:       "Write essay",
		Duration:    90,
		Priority:    5,
		Flexibility: "FLEXIBLE",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), task.ID)
	assert.Equal(t, models.TaskDayPartNoPreference, task.PreferredPart)
	assert.Len(t, repo.items, 1)
}

func TestTaskServiceCreateFixedRequiresHardWindow(t *testing.T) {
	svc, _ := newTaskService()

	_, err := svc.Create(context.Background(), "user-1", dto.CreateTaskRequest{
		Title:       "Standup",
		Duration:    30,
		Priority:    4,
		Flexibility: "FIXED",
	})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}

func TestTaskServiceUpdatePartial(t *testing.T) {
	svc, _ := newTaskService()
	created, err := svc.Create(context.Background(), "user-1", dto.CreateTaskRequest{
		Title:       "Jog",
		Duration:    30,
		Priority:    3,
		Flexibility: "FLEXIBLE",
	})
	require.NoError(t, err)

	title := "Morning jog"
	priority := 5
	updated, err := svc.Update(context.Background(), "user-1", created.ID, dto.UpdateTaskRequest{
		Title:    &title,
		Priority: &priority,
	})
	require.NoError(t, err)
	assert.Equal(t, "Morning jog", updated.Title)
	assert.Equal(t, 5, updated.Priority)
	assert.Equal(t, 30, updated.Duration)
}

func TestTaskServiceGetOtherUsersTask(t *testing.T) {
	svc, _ := newTaskService()
	created, err := svc.Create(context.Background(), "user-1", dto.CreateTaskRequest{
		Title:       "Jog",
		Duration:    30,
		Priority:    3,
		Flexibility: "FLEXIBLE",
	})
	require.NoError(t, err)

	_, err = svc.Get(context.Background(), "user-2", created.ID)
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
}

func TestTaskServiceListInvalidFlexibility(t *testing.T) {
	svc, _ := newTaskService()

	_, _, err := svc.List(context.Background(), "user-1", dto.TaskQuery{Flexibility: "SOMETIMES"})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}

func TestTaskServiceDeleteMissing(t *testing.T) {
	svc, _ := newTaskService()

	err := svc.Delete(context.Background(), "user-1", 99)
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
}
