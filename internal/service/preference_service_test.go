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

type preferenceRepoStub struct {
	stored *models.Preference
}

func (m *preferenceRepoStub) FindByUser(ctx context.Context, userID string) (*models.Preference, error) {
	if m.stored == nil {
		return nil, sql.ErrNoRows
	}
	cp := *m.stored
	return &cp, nil
}

func (m *preferenceRepoStub) Upsert(ctx context.Context, pref *models.Preference) error {
	cp := *pref
	m.stored = &cp
	return nil
}

func TestPreferenceServiceGetDefault(t *testing.T) {
	repo := &preferenceRepoStub{}
	svc := NewPreferenceService(repo, validator.New(), zap.NewNop())

	pref, err := svc.Get(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, 23*60, pref.SleepStart)
	assert.Equal(t, 7*60, pref.SleepEnd)
	assert.Equal(t, 480, pref.DailyCapMinutes)
}

func TestPreferenceServiceUpsert(t *testing.T) {
	repo := &preferenceRepoStub{}
	svc := NewPreferenceService(repo, validator.New(), zap.NewNop())

	pref, err := svc.Upsert(context.Background(), "user-1", dto.UpsertPreferenceRequest{
		SleepStart:      22 * 60,
		SleepEnd:        6 * 60,
		DailyCapMinutes: 360,
	})
	require.NoError(t, err)
	assert.Equal(t, 22*60, pref.SleepStart)
	assert.Equal(t, "UTC", pref.Timezone)
	assert.NotNil(t, repo.stored)
}

func TestPreferenceServiceUpsertEmptySleepWindow(t *testing.T) {
	repo := &preferenceRepoStub{}
	svc := NewPreferenceService(repo, validator.New(), zap.NewNop())

	_, err := svc.Upsert(context.Background(), "user-1", dto.UpsertPreferenceRequest{
		SleepStart:      480,
		SleepEnd:        480,
		DailyCapMinutes: 360,
	})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}
