package services

import (
	"context"

	"github.com/healthsphere/noshow/backend/internal/domain/entities"
	"github.com/healthsphere/noshow/backend/internal/ml"
)

// ModelAdminService is the operator-facing facade over the registry and the
// retrain scheduler: model status, version audit, job audit, manual retrain.
type ModelAdminService struct {
	registry   *ml.Registry
	scheduler  *ml.Scheduler
	prediction *PredictionService
}

// NewModelAdminService creates a new model admin service
func NewModelAdminService(registry *ml.Registry, scheduler *ml.Scheduler, prediction *PredictionService) *ModelAdminService {
	return &ModelAdminService{
		registry:   registry,
		scheduler:  scheduler,
		prediction: prediction,
	}
}

// Status reports the active model version.
func (s *ModelAdminService) Status() (*ModelStatus, error) {
	return s.prediction.Status()
}

// ListVersions returns all persisted model versions for audit.
func (s *ModelAdminService) ListVersions(ctx context.Context) ([]*entities.ModelVersion, error) {
	return s.registry.ListVersions(ctx)
}

// ListJobs returns all training jobs.
func (s *ModelAdminService) ListJobs() []entities.TrainingJob {
	return s.scheduler.ListJobs()
}

// RetrainNow triggers a manual training job.
func (s *ModelAdminService) RetrainNow() (*entities.TrainingJob, error) {
	return s.scheduler.RetrainNow()
}
