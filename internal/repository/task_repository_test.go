package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/quest-planner-api/internal/models"
)

func newTaskRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestTaskRepositoryCreateAssignsID(t *testing.T) {
	db, mock, cleanup := newTaskRepoMock(t)
	defer cleanup()
	repo := NewTaskRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO tasks")).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(42)))

	task := &models.Task{
		UserID:      "user-1",
		Title:       "Write essay",
		Duration:    90,
		Priority:    5,
		Flexibility: models.TaskFlexibilityFlexible,
	}
	err := repo.Create(context.Background(), task)
	require.NoError(t, err)
	assert.Equal(t, int64(42), task.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTaskRepositoryListWithFilters(t *testing.T) {
	db, mock, cleanup := newTaskRepoMock(t)
	defer cleanup()
	repo := NewTaskRepository(db)

	rows := sqlmock.NewRows([]string{"id", "user_id", "title", "duration_minutes", "priority", "flexibility", "preferred_part", "completed", "created_at", "updated_at"}).
		AddRow(int64(1), "user-1", "Jog", 30, 3, string(models.TaskFlexibilityStrict), string(models.TaskDayPartMorning), false, time.Now(), time.Now())
	mock.ExpectQuery("SELECT (.+) FROM tasks WHERE user_id = \\$1 AND flexibility = \\$2").
		WithArgs("user-1", string(models.TaskFlexibilityStrict)).
		WillReturnRows(rows)
	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM tasks WHERE user_id = \\$1 AND flexibility = \\$2").
		WithArgs("user-1", string(models.TaskFlexibilityStrict)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	flex := models.TaskFlexibilityStrict
	list, total, err := repo.List(context.Background(), models.TaskFilter{UserID: "user-1", Flexibility: &flex})
	require.NoError(t, err)
	assert.Len(t, list, 1)
	assert.Equal(t, 1, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTaskRepositoryDeleteNotFound(t *testing.T) {
	db, mock, cleanup := newTaskRepoMock(t)
	defer cleanup()
	repo := NewTaskRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM tasks WHERE id = $1 AND user_id = $2")).
		WithArgs(int64(9), "user-1").
		WillReturnResult(sqlmock.NewResult(1, 0))

	err := repo.Delete(context.Background(), "user-1", 9)
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}
