package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/quest-planner-api/internal/dto"
	"github.com/noah-isme/quest-planner-api/internal/models"
	"github.com/noah-isme/quest-planner-api/internal/repository"
	appErrors "github.com/noah-isme/quest-planner-api/pkg/errors"
	"github.com/noah-isme/quest-planner-api/pkg/jobs"
)

type exportJobStoreStub struct {
	jobs    map[string]*models.ExportJob
	nextID  int
	updates []repository.UpdateExportJobParams
}

func newExportJobStoreStub() *exportJobStoreStub {
	return &exportJobStoreStub{jobs: make(map[string]*models.ExportJob)}
}

func (s *exportJobStoreStub) Create(ctx context.Context, job *models.ExportJob) error {
	s.nextID++
	job.ID = "job-" + string(rune('0'+s.nextID))
	job.CreatedAt = time.Now().UTC()
	s.jobs[job.ID] = job
	return nil
}

func (s *exportJobStoreStub) GetByID(ctx context.Context, id string) (*models.ExportJob, error) {
	job, ok := s.jobs[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *job
	return &copied, nil
}

func (s *exportJobStoreStub) Update(ctx context.Context, id string, params repository.UpdateExportJobParams) error {
	job, ok := s.jobs[id]
	if !ok {
		return sql.ErrNoRows
	}
	s.updates = append(s.updates, params)
	if params.Status != nil {
		job.Status = *params.Status
	}
	if params.Progress != nil {
		job.Progress = *params.Progress
	}
	if params.ResultURL != nil {
		job.ResultURL = params.ResultURL
	}
	if params.ErrorMessage != nil {
		job.ErrorMessage = params.ErrorMessage
	}
	if params.FinishedAt != nil {
		job.FinishedAt = params.FinishedAt
	}
	return nil
}

func (s *exportJobStoreStub) ListQueued(ctx context.Context, limit int) ([]models.ExportJob, error) {
	var out []models.ExportJob
	for _, job := range s.jobs {
		if job.Status == models.ExportStatusQueued {
			out = append(out, *job)
		}
	}
	return out, nil
}

func (s *exportJobStoreStub) ListFinishedBefore(ctx context.Context, cutoff time.Time, limit int) ([]models.ExportJob, error) {
	return nil, nil
}

type dispatcherStub struct {
	enqueued []jobs.Job
	fail     bool
}

func (d *dispatcherStub) Enqueue(job jobs.Job) error {
	if d.fail {
		return errors.New("queue full")
	}
	d.enqueued = append(d.enqueued, job)
	return nil
}

func TestExportJobCreateEnqueues(t *testing.T) {
	store := newExportJobStoreStub()
	queue := &dispatcherStub{}
	svc := NewExportJobService(store, queue, nil, nil, zap.NewNop(), ExportJobServiceConfig{})

	planID := "plan-1"
	job, err := svc.CreateJob(context.Background(), "user-1", dto.CreateExportJobRequest{
		Type: "plan", Format: "csv", PlanID: &planID,
	})
	require.NoError(t, err)
	require.Equal(t, models.ExportStatusQueued, job.Status)
	require.Len(t, queue.enqueued, 1)
	require.Equal(t, job.ID, queue.enqueued[0].ID)
}

func TestExportJobCreatePlanRequiresID(t *testing.T) {
	svc := NewExportJobService(newExportJobStoreStub(), &dispatcherStub{}, nil, nil, zap.NewNop(), ExportJobServiceConfig{})

	_, err := svc.CreateJob(context.Background(), "user-1", dto.CreateExportJobRequest{Type: "plan", Format: "csv"})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	require.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}

func TestExportJobCreateICSRequiresPlan(t *testing.T) {
	svc := NewExportJobService(newExportJobStoreStub(), &dispatcherStub{}, nil, nil, zap.NewNop(), ExportJobServiceConfig{})

	_, err := svc.CreateJob(context.Background(), "user-1", dto.CreateExportJobRequest{Type: "tasks", Format: "ics"})
	require.Error(t, err)
}

func TestExportJobCreateEnqueueFailureMarksFailed(t *testing.T) {
	store := newExportJobStoreStub()
	svc := NewExportJobService(store, &dispatcherStub{fail: true}, nil, nil, zap.NewNop(), ExportJobServiceConfig{})

	planID := "plan-1"
	_, err := svc.CreateJob(context.Background(), "user-1", dto.CreateExportJobRequest{
		Type: "plan", Format: "pdf", PlanID: &planID,
	})
	require.Error(t, err)
	require.Len(t, store.jobs, 1)
	for _, job := range store.jobs {
		require.Equal(t, models.ExportStatusFailed, job.Status)
	}
}

func TestExportJobStatusForbiddenForOtherUser(t *testing.T) {
	store := newExportJobStoreStub()
	queue := &dispatcherStub{}
	svc := NewExportJobService(store, queue, nil, nil, zap.NewNop(), ExportJobServiceConfig{})

	planID := "plan-1"
	job, err := svc.CreateJob(context.Background(), "user-1", dto.CreateExportJobRequest{
		Type: "plan", Format: "csv", PlanID: &planID,
	})
	require.NoError(t, err)

	_, err = svc.GetStatus(context.Background(), "user-2", job.ID)
	require.ErrorIs(t, err, appErrors.ErrForbidden)

	got, err := svc.GetStatus(context.Background(), "user-1", job.ID)
	require.NoError(t, err)
	require.Equal(t, job.ID, got.ID)
}

type generatorStub struct {
	result *ExportResult
	err    error
	calls  int
}

func (g *generatorStub) Generate(ctx context.Context, job *models.ExportJob) (*ExportResult, error) {
	g.calls++
	return g.result, g.err
}

func TestExportWorkerFinishesJob(t *testing.T) {
	store := newExportJobStoreStub()
	planID := "plan-1"
	job := &models.ExportJob{Type: models.ExportTypePlan, Params: models.ExportJobParams{PlanID: &planID, Format: models.ExportFormatCSV}, Status: models.ExportStatusQueued, CreatedBy: "user-1"}
	require.NoError(t, store.Create(context.Background(), job))

	gen := &generatorStub{result: &ExportResult{URL: "/api/v1/exports/tok", Format: models.ExportFormatCSV}}
	worker := NewExportWorker(store, gen, 3, zap.NewNop())

	err := worker.Handle(context.Background(), jobs.Job{ID: job.ID, Attempt: 1})
	require.NoError(t, err)

	stored := store.jobs[job.ID]
	require.Equal(t, models.ExportStatusFinished, stored.Status)
	require.Equal(t, 100, stored.Progress)
	require.NotNil(t, stored.ResultURL)
	require.NotNil(t, stored.FinishedAt)
}

func TestExportWorkerRequeuesUntilMaxRetries(t *testing.T) {
	store := newExportJobStoreStub()
	planID := "plan-1"
	job := &models.ExportJob{Type: models.ExportTypePlan, Params: models.ExportJobParams{PlanID: &planID, Format: models.ExportFormatCSV}, Status: models.ExportStatusQueued, CreatedBy: "user-1"}
	require.NoError(t, store.Create(context.Background(), job))

	gen := &generatorStub{err: errors.New("render failed")}
	worker := NewExportWorker(store, gen, 2, zap.NewNop())

	err := worker.Handle(context.Background(), jobs.Job{ID: job.ID, Attempt: 1})
	require.Error(t, err)
	require.Equal(t, models.ExportStatusQueued, store.jobs[job.ID].Status)

	err = worker.Handle(context.Background(), jobs.Job{ID: job.ID, Attempt: 2})
	require.Error(t, err)
	require.Equal(t, models.ExportStatusFailed, store.jobs[job.ID].Status)
}
