package handlers_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/healthsphere/noshow/backend/internal/api/handlers"
	"github.com/healthsphere/noshow/backend/internal/application/services"
	"github.com/healthsphere/noshow/backend/internal/domain/entities"
	apperrors "github.com/healthsphere/noshow/backend/pkg/errors"
)

type mockModelAdmin struct {
	mock.Mock
}

func (m *mockModelAdmin) Status() (*services.ModelStatus, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.ModelStatus), args.Error(1)
}

func (m *mockModelAdmin) ListVersions(ctx context.Context) ([]*entities.ModelVersion, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.ModelVersion), args.Error(1)
}

func (m *mockModelAdmin) ListJobs() []entities.TrainingJob {
	args := m.Called()
	return args.Get(0).([]entities.TrainingJob)
}

func (m *mockModelAdmin) RetrainNow() (*entities.TrainingJob, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.TrainingJob), args.Error(1)
}

func TestModelStatus(t *testing.T) {
	admin := new(mockModelAdmin)
	admin.On("Status").Return(&services.ModelStatus{
		ActiveVersion: "logistic_v3",
		Accuracy:      0.78,
		TrainedAt:     time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
		TrainingRows:  900,
	}, nil)

	handler := handlers.NewModelHandler(admin)
	w := httptest.NewRecorder()
	handler.Status(w, httptest.NewRequest(http.MethodGet, "/api/model/status", nil))

	require.Equal(t, http.StatusOK, w.Code)

	var got services.ModelStatus
	require.NoError(t, json.NewDecoder(w.Body).Decode(&got))
	assert.Equal(t, "logistic_v3", got.ActiveVersion)
	assert.Equal(t, 900, got.TrainingRows)
}

func TestModelStatus_NoActiveModel(t *testing.T) {
	admin := new(mockModelAdmin)
	admin.On("Status").Return(nil, apperrors.NewModelUnavailableError("no active model version"))

	handler := handlers.NewModelHandler(admin)
	w := httptest.NewRecorder()
	handler.Status(w, httptest.NewRequest(http.MethodGet, "/api/model/status", nil))

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestListVersions(t *testing.T) {
	admin := new(mockModelAdmin)
	admin.On("ListVersions", mock.Anything).Return([]*entities.ModelVersion{
		{Version: 1, Status: entities.ModelStatusArchived},
		{Version: 2, Status: entities.ModelStatusActive},
	}, nil)

	handler := handlers.NewModelHandler(admin)
	w := httptest.NewRecorder()
	handler.ListVersions(w, httptest.NewRequest(http.MethodGet, "/api/model/versions", nil))

	require.Equal(t, http.StatusOK, w.Code)

	var got []entities.ModelVersion
	require.NoError(t, json.NewDecoder(w.Body).Decode(&got))
	require.Len(t, got, 2)
	assert.Equal(t, entities.ModelStatusActive, got[1].Status)
}

func TestListJobs(t *testing.T) {
	admin := new(mockModelAdmin)
	admin.On("ListJobs").Return([]entities.TrainingJob{
		{ID: "job-1", Trigger: entities.TriggerBootstrap, State: entities.JobStateSucceeded},
	})

	handler := handlers.NewModelHandler(admin)
	w := httptest.NewRecorder()
	handler.ListJobs(w, httptest.NewRequest(http.MethodGet, "/api/training/jobs", nil))

	require.Equal(t, http.StatusOK, w.Code)

	var got []entities.TrainingJob
	require.NoError(t, json.NewDecoder(w.Body).Decode(&got))
	require.Len(t, got, 1)
	assert.Equal(t, "job-1", got[0].ID)
}

func TestRetrain(t *testing.T) {
	admin := new(mockModelAdmin)
	admin.On("RetrainNow").Return(&entities.TrainingJob{
		ID:      "job-2",
		Trigger: entities.TriggerManual,
		State:   entities.JobStateQueued,
	}, nil)

	handler := handlers.NewModelHandler(admin)
	w := httptest.NewRecorder()
	handler.Retrain(w, httptest.NewRequest(http.MethodPost, "/api/admin/retrain", nil))

	require.Equal(t, http.StatusAccepted, w.Code)

	var got entities.TrainingJob
	require.NoError(t, json.NewDecoder(w.Body).Decode(&got))
	assert.Equal(t, entities.TriggerManual, got.Trigger)
}

func TestRetrain_AlreadyRunning(t *testing.T) {
	admin := new(mockModelAdmin)
	admin.On("RetrainNow").Return(nil, apperrors.NewConcurrentTrainingError("a training job is already running"))

	handler := handlers.NewModelHandler(admin)
	w := httptest.NewRecorder()
	handler.Retrain(w, httptest.NewRequest(http.MethodPost, "/api/admin/retrain", nil))

	assert.Equal(t, http.StatusConflict, w.Code)
}
