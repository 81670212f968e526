package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/quest-planner-api/internal/models"
)

func newPlanRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestPlanRepositoryCreateVersioned(t *testing.T) {
	db, mock, cleanup := newPlanRepoMock(t)
	defer cleanup()
	repo := NewPlanRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COALESCE(MAX(version), 0) + 1 FROM plans WHERE user_id = $1")).
		WithArgs("user-1").
		WillReturnRows(sqlmock.NewRows([]string{"next"}).AddRow(3))

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO plans")).
		WithArgs(sqlmock.AnyArg(), "user-1", 3, string(models.PlanStatusDraft), sqlmock.AnyArg(), sqlmock.AnyArg(), 87.5, sqlmock.AnyArg(), "user-1", sqlmock.AnyArg(), sqlmock.AnyArg(), nil).
		WillReturnResult(sqlmock.NewResult(1, 1))

	payload := &models.Plan{
		UserID:      "user-1",
		WindowStart: time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC),
		WindowEnd:   time.Date(2025, 6, 9, 0, 0, 0, 0, time.UTC),
		Score:       87.5,
		Stats:       types.JSONText(`{"placed":4}`),
		CreatedBy:   "user-1",
	}
	err := repo.CreateVersioned(context.Background(), nil, payload)
	require.NoError(t, err)
	assert.Equal(t, 3, payload.Version)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPlanRepositoryInsertSlots(t *testing.T) {
	db, mock, cleanup := newPlanRepoMock(t)
	defer cleanup()
	repo := NewPlanRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO plan_slots")).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO plan_slots")).
		WillReturnResult(sqlmock.NewResult(1, 1))

	taskID := int64(7)
	slots := []models.PlanSlot{
		{TaskID: &taskID, Title: "Write essay", Kind: models.PlanSlotKindTask,
			StartAt: time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC), EndAt: time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC)},
		{Title: "Buffer", Kind: models.PlanSlotKindBuffer,
			StartAt: time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC), EndAt: time.Date(2025, 6, 2, 10, 10, 0, 0, time.UTC)},
	}
	err := repo.InsertSlots(context.Background(), nil, "plan-1", slots)
	require.NoError(t, err)
	assert.Equal(t, "plan-1", slots[0].PlanID)
	assert.NotEmpty(t, slots[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPlanRepositoryUpdateStatusNotFound(t *testing.T) {
	db, mock, cleanup := newPlanRepoMock(t)
	defer cleanup()
	repo := NewPlanRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE plans SET status = $1, published_at = $2, updated_at = $3 WHERE id = $4")).
		WithArgs(string(models.PlanStatusPublished), sqlmock.AnyArg(), sqlmock.AnyArg(), "plan-1").
		WillReturnResult(sqlmock.NewResult(1, 0))

	now := time.Now().UTC()
	err := repo.UpdateStatus(context.Background(), nil, "plan-1", models.PlanStatusPublished, &now)
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPlanRepositoryArchivePublished(t *testing.T) {
	db, mock, cleanup := newPlanRepoMock(t)
	defer cleanup()
	repo := NewPlanRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE plans SET status = $1, updated_at = $2 WHERE user_id = $3 AND status = $4")).
		WithArgs(string(models.PlanStatusArchived), sqlmock.AnyArg(), "user-1", string(models.PlanStatusPublished)).
		WillReturnResult(sqlmock.NewResult(1, 1))

	require.NoError(t, repo.ArchivePublished(context.Background(), nil, "user-1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}
