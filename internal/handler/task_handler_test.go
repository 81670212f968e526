package handler

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/quest-planner-api/internal/dto"
	"github.com/noah-isme/quest-planner-api/internal/models"
)

type taskManagerMock struct {
	captured  dto.CreateTaskRequest
	updatedID int64
	deletedID int64
}

func (m *taskManagerMock) Create(ctx context.Context, userID string, req dto.CreateTaskRequest) (*models.Task, error) {
	m.captured = req
	return &models.Task{ID: 1, UserID: userID, Title: req.Title}, nil
}

func (m *taskManagerMock) Get(ctx context.Context, userID string, id int64) (*models.Task, error) {
	return &models.Task{ID: id, UserID: userID}, nil
}

func (m *taskManagerMock) List(ctx context.Context, userID string, query dto.TaskQuery) ([]models.Task, *models.Pagination, error) {
	return []models.Task{}, &models.Pagination{Page: 1, PageSize: 20}, nil
}

func (m *taskManagerMock) Update(ctx context.Context, userID string, id int64, req dto.UpdateTaskRequest) (*models.Task, error) {
	m.updatedID = id
	return &models.Task{ID: id, UserID: userID}, nil
}

func (m *taskManagerMock) Delete(ctx context.Context, userID string, id int64) error {
	m.deletedID = id
	return nil
}

func TestTaskCreateSuccess(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &taskManagerMock{}
	handler := &TaskHandler{service: mockSvc}
	payload := []byte(`{"title":"Write report","durationMinutes":90,"priority":4,"flexibility":"FLEXIBLE"}`)
	req, _ := http.NewRequest(http.MethodPost, "/tasks", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	c, _ := authContext(w)
	c.Request = req

	handler.Create(c)

	require.Equal(t, http.StatusCreated, w.Code)
	require.Equal(t, "Write report", mockSvc.captured.Title)
	require.Equal(t, 90, mockSvc.captured.Duration)
}

func TestTaskCreateInvalidJSON(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := &TaskHandler{service: &taskManagerMock{}}
	req, _ := http.NewRequest(http.MethodPost, "/tasks", bytes.NewReader([]byte(`{"title":`)))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	c, _ := authContext(w)
	c.Request = req

	handler.Create(c)

	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTaskGetBadID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := &TaskHandler{service: &taskManagerMock{}}
	req, _ := http.NewRequest(http.MethodGet, "/tasks/abc", nil)
	w := httptest.NewRecorder()
	c, _ := authContext(w)
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "abc"}}

	handler.Get(c)

	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTaskUpdatePassesID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &taskManagerMock{}
	handler := &TaskHandler{service: mockSvc}
	req, _ := http.NewRequest(http.MethodPatch, "/tasks/12", bytes.NewReader([]byte(`{"priority":5}`)))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	c, _ := authContext(w)
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "12"}}

	handler.Update(c)

	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, int64(12), mockSvc.updatedID)
}

func TestTaskDeleteNoContent(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &taskManagerMock{}
	handler := &TaskHandler{service: mockSvc}
	req, _ := http.NewRequest(http.MethodDelete, "/tasks/7", nil)
	w := httptest.NewRecorder()
	c, _ := authContext(w)
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "7"}}

	handler.Delete(c)
	c.Writer.WriteHeaderNow()

	require.Equal(t, http.StatusNoContent, w.Code)
	require.Equal(t, int64(7), mockSvc.deletedID)
}
