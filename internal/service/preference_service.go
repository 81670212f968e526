package service

import (
	"context"
	"database/sql"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/quest-planner-api/internal/dto"
	"github.com/noah-isme/quest-planner-api/internal/models"
	appErrors "github.com/noah-isme/quest-planner-api/pkg/errors"
)

type preferenceRepo interface {
	FindByUser(ctx context.Context, userID string) (*models.Preference, error)
	Upsert(ctx context.Context, pref *models.Preference) error
}

// PreferenceService handles per-user scheduling defaults.
type PreferenceService struct {
	repo      preferenceRepo
	validator *validator.Validate
	logger    *zap.Logger
}

// NewPreferenceService builds the service.
func NewPreferenceService(repo preferenceRepo, validate *validator.Validate, logger *zap.Logger) *PreferenceService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PreferenceService{
		repo:      repo,
		validator: validate,
		logger:    logger,
	}
}

// Get returns stored preferences or defaults.
func (s *PreferenceService) Get(ctx context.Context, userID string) (*models.Preference, error) {
	pref, err := s.repo.FindByUser(ctx, userID)
	if err != nil {
		if err == sql.ErrNoRows {
			return models.DefaultPreference(userID), nil
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load preferences")
	}
	return pref, nil
}

// Upsert stores preferences for a user.
func (s *PreferenceService) Upsert(ctx context.Context, userID string, req dto.UpsertPreferenceRequest) (*models.Preference, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid preference payload")
	}
	if req.SleepStart == req.SleepEnd {
		return nil, appErrors.Clone(appErrors.ErrValidation, "sleep window must not be empty")
	}

	payload := &models.Preference{
		UserID:          userID,
		SleepStart:      req.SleepStart,
		SleepEnd:        req.SleepEnd,
		DailyCapMinutes: req.DailyCapMinutes,
		ChunkPreference: req.ChunkPreference,
		Timezone:        req.Timezone,
	}
	if payload.Timezone == "" {
		payload.Timezone = "UTC"
	}

	existing, err := s.repo.FindByUser(ctx, userID)
	if err != nil && err != sql.ErrNoRows {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load preferences")
	}
	if existing != nil {
		payload.ID = existing.ID
		payload.CreatedAt = existing.CreatedAt
	}

	if err := s.repo.Upsert(ctx, payload); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to upsert preferences")
	}
	return payload, nil
}
