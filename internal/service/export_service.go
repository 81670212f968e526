package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/quest-planner-api/internal/models"
	"github.com/noah-isme/quest-planner-api/pkg/export"
	"github.com/noah-isme/quest-planner-api/pkg/storage"
)

type exportPlanSource interface {
	FindByID(ctx context.Context, userID, id string) (*models.Plan, error)
	ListSlots(ctx context.Context, planID string) ([]models.PlanSlot, error)
}

type exportTaskSource interface {
	List(ctx context.Context, filter models.TaskFilter) ([]models.Task, int, error)
}

type fileStorage interface {
	Save(filename string, data []byte) (string, error)
	Open(filename string) (*os.File, error)
	Delete(filename string) error
	CleanupOlderThan(ttl time.Duration) ([]string, error)
}

// ExportConfig tunes export behaviour.
type ExportConfig struct {
	APIPrefix string
	ResultTTL time.Duration
}

// ExportResult captures successful generation metadata.
type ExportResult struct {
	RelativePath string
	Token        string
	URL          string
	Format       models.ExportFormat
	ExpiresAt    time.Time
}

// ExportService renders plan and task exports and persists the files.
type ExportService struct {
	plans   exportPlanSource
	tasks   exportTaskSource
	storage fileStorage
	csv     csvRenderer
	pdf     pdfRenderer
	ics     icsRenderer
	signer  *storage.SignedURLSigner
	logger  *zap.Logger
	cfg     ExportConfig
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

type icsRenderer interface {
	Render(name string, events []export.Event) ([]byte, error)
}

// NewExportService constructs an ExportService.
func NewExportService(plans exportPlanSource, tasks exportTaskSource, storage fileStorage, signer *storage.SignedURLSigner, cfg ExportConfig, logger *zap.Logger, csv csvRenderer, pdf pdfRenderer, ics icsRenderer) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ResultTTL <= 0 {
		cfg.ResultTTL = 24 * time.Hour
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	if ics == nil {
		ics = export.NewICSExporter()
	}
	return &ExportService{
		plans:   plans,
		tasks:   tasks,
		storage: storage,
		csv:     csv,
		pdf:     pdf,
		ics:     ics,
		signer:  signer,
		logger:  logger,
		cfg:     cfg,
	}
}

// Generate builds the export payload for a job and stores the rendered file.
func (s *ExportService) Generate(ctx context.Context, job *models.ExportJob) (*ExportResult, error) {
	if job == nil {
		return nil, fmt.Errorf("job nil")
	}

	var payload []byte
	var err error
	switch job.Params.Format {
	case models.ExportFormatICS:
		payload, err = s.renderCalendar(ctx, job)
	case models.ExportFormatCSV, models.ExportFormatPDF:
		payload, err = s.renderTabular(ctx, job)
	default:
		err = fmt.Errorf("unsupported format %s", job.Params.Format)
	}
	if err != nil {
		return nil, err
	}

	filename := s.buildFilename(job)
	relPath, err := s.storage.Save(filename, payload)
	if err != nil {
		return nil, err
	}

	token, expiresAt, err := s.signer.Generate(job.ID, relPath)
	if err != nil {
		return nil, err
	}
	signedURL := strings.TrimRight(s.cfg.APIPrefix, "/")
	if signedURL == "" {
		signedURL = "/api/v1"
	}
	signedURL = fmt.Sprintf("%s/exports/%s", signedURL, token)

	return &ExportResult{
		RelativePath: relPath,
		Token:        token,
		URL:          signedURL,
		Format:       job.Params.Format,
		ExpiresAt:    expiresAt,
	}, nil
}

// ParseToken validates download token metadata.
func (s *ExportService) ParseToken(token string, allowExpired bool) (jobID, relPath string, expiresAt time.Time, err error) {
	return s.signer.Parse(token, allowExpired)
}

// Open returns a handle to the stored file.
func (s *ExportService) Open(relPath string) (*os.File, error) {
	return s.storage.Open(relPath)
}

// Delete removes a stored export file.
func (s *ExportService) Delete(relPath string) error {
	return s.storage.Delete(relPath)
}

// Cleanup removes files older than ttl (defaults to configured ResultTTL when ttl <= 0).
func (s *ExportService) Cleanup(ttl time.Duration) ([]string, error) {
	if ttl <= 0 {
		ttl = s.cfg.ResultTTL
	}
	return s.storage.CleanupOlderThan(ttl)
}

func (s *ExportService) buildFilename(job *models.ExportJob) string {
	timestamp := time.Now().UTC().Format("20060102_150405")
	scope := "all"
	if job.Params.PlanID != nil {
		scope = sanitizeFilename(*job.Params.PlanID)
	}
	return fmt.Sprintf("%s_%s_%s.%s", strings.ToLower(string(job.Type)), scope, timestamp, job.Params.Format)
}

func sanitizeFilename(raw string) string {
	if raw == "" {
		return "na"
	}
	replacer := strings.NewReplacer(" ", "_", "/", "-", "\\", "-", ":", "-", "..", ".", "__", "_")
	result := replacer.Replace(raw)
	if len(result) > 100 {
		return result[:100]
	}
	return result
}

func (s *ExportService) renderCalendar(ctx context.Context, job *models.ExportJob) ([]byte, error) {
	if job.Type != models.ExportTypePlan {
		return nil, fmt.Errorf("ics export requires a plan job")
	}
	plan, slots, err := s.loadPlan(ctx, job)
	if err != nil {
		return nil, err
	}
	events := make([]export.Event, 0, len(slots))
	for _, slot := range slots {
		if slot.Kind != models.PlanSlotKindTask {
			continue
		}
		events = append(events, export.Event{
			UID:     fmt.Sprintf("%s@quest-planner", slot.ID),
			Summary: slot.Title,
			Start:   slot.StartAt,
			End:     slot.EndAt,
		})
	}
	name := fmt.Sprintf("Plan v%d", plan.Version)
	return s.ics.Render(name, events)
}

func (s *ExportService) renderTabular(ctx context.Context, job *models.ExportJob) ([]byte, error) {
	var dataset export.Dataset
	var title string
	var err error
	switch job.Type {
	case models.ExportTypePlan:
		dataset, title, err = s.buildPlanDataset(ctx, job)
	case models.ExportTypeTasks:
		dataset, title, err = s.buildTaskDataset(ctx, job)
	default:
		err = fmt.Errorf("unsupported export type %s", job.Type)
	}
	if err != nil {
		return nil, err
	}
	if job.Params.Format == models.ExportFormatPDF {
		return s.pdf.Render(dataset, title)
	}
	return s.csv.Render(dataset)
}

func (s *ExportService) loadPlan(ctx context.Context, job *models.ExportJob) (*models.Plan, []models.PlanSlot, error) {
	if job.Params.PlanID == nil || *job.Params.PlanID == "" {
		return nil, nil, fmt.Errorf("plan export requires planId")
	}
	plan, err := s.plans.FindByID(ctx, job.CreatedBy, *job.Params.PlanID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, fmt.Errorf("plan %s not found", *job.Params.PlanID)
		}
		return nil, nil, err
	}
	slots, err := s.plans.ListSlots(ctx, plan.ID)
	if err != nil {
		return nil, nil, err
	}
	return plan, slots, nil
}

func (s *ExportService) buildPlanDataset(ctx context.Context, job *models.ExportJob) (export.Dataset, string, error) {
	plan, slots, err := s.loadPlan(ctx, job)
	if err != nil {
		return export.Dataset{}, "", err
	}
	rows := make([]map[string]string, 0, len(slots))
	for _, slot := range slots {
		taskID := ""
		if slot.TaskID != nil {
			taskID = fmt.Sprintf("%d", *slot.TaskID)
		}
		rows = append(rows, map[string]string{
			"Start":    slot.StartAt.UTC().Format(time.RFC3339),
			"End":      slot.EndAt.UTC().Format(time.RFC3339),
			"Kind":     slot.Kind,
			"Title":    slot.Title,
			"Task ID":  taskID,
			"Duration": fmt.Sprintf("%d", int(slot.EndAt.Sub(slot.StartAt)/time.Minute)),
		})
	}
	dataset := export.Dataset{
		Headers: []string{"Start", "End", "Kind", "Title", "Task ID", "Duration"},
		Rows:    rows,
	}
	title := fmt.Sprintf("Plan v%d (%s)", plan.Version, plan.Status)
	return dataset, title, nil
}

func (s *ExportService) buildTaskDataset(ctx context.Context, job *models.ExportJob) (export.Dataset, string, error) {
	tasks, _, err := s.tasks.List(ctx, models.TaskFilter{UserID: job.CreatedBy, PageSize: 100})
	if err != nil {
		return export.Dataset{}, "", err
	}
	rows := make([]map[string]string, 0, len(tasks))
	for _, task := range tasks {
		deadline := ""
		if task.Deadline != nil {
			deadline = task.Deadline.UTC().Format(time.RFC3339)
		}
		rows = append(rows, map[string]string{
			"ID":          fmt.Sprintf("%d", task.ID),
			"Title":       task.Title,
			"Duration":    fmt.Sprintf("%d", task.Duration),
			"Priority":    fmt.Sprintf("%d", task.Priority),
			"Flexibility": string(task.Flexibility),
			"Deadline":    deadline,
			"Completed":   fmt.Sprintf("%t", task.Completed),
		})
	}
	dataset := export.Dataset{
		Headers: []string{"ID", "Title", "Duration", "Priority", "Flexibility", "Deadline", "Completed"},
		Rows:    rows,
	}
	return dataset, "Task List", nil
}
