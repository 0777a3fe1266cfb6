package services

import (
	"context"
	"math"
	"time"

	"github.com/healthsphere/noshow/backend/internal/domain/entities"
	"github.com/healthsphere/noshow/backend/internal/ml"
)

// showThreshold is the fixed decision boundary: probability at or above it
// predicts a show. Not tunable per call.
const showThreshold = 0.5

// ModelStatus summarizes the active model for operator-facing views.
type ModelStatus struct {
	ActiveVersion string    `json:"active_version"`
	Accuracy      float64   `json:"accuracy"`
	TrainedAt     time.Time `json:"trained_at"`
	TrainingRows  int       `json:"training_rows"`
}

// PredictionService answers attendance predictions against the active model
// version. Predict is a pure function of (active model, feature vector): it
// holds no locks and does no I/O.
type PredictionService struct {
	registry *ml.Registry
	builder  *FeatureVectorBuilder
	adHoc    *FeatureVectorBuilder
}

// NewPredictionService creates a new prediction service. adHocBuilder serves
// the what-if path and may use the cached attendance scorer; builder serves
// visit creation and always recomputes.
func NewPredictionService(registry *ml.Registry, builder, adHocBuilder *FeatureVectorBuilder) *PredictionService {
	if adHocBuilder == nil {
		adHocBuilder = builder
	}
	return &PredictionService{
		registry: registry,
		builder:  builder,
		adHoc:    adHocBuilder,
	}
}

// Predict scores a feature vector with the active model. Fails with
// MODEL_UNAVAILABLE when the registry has not bootstrapped yet; callers
// creating a visit must fail rather than persist an unpredicted record.
func (s *PredictionService) Predict(vector entities.FeatureVector) (*entities.Prediction, error) {
	model, err := s.registry.GetActive()
	if err != nil {
		return nil, err
	}

	probability := ml.PredictProbability(model, vector)

	label := entities.LabelNoShow
	if probability >= showThreshold {
		label = entities.LabelShow
	}

	return &entities.Prediction{
		Label:        label,
		Probability:  int(math.Round(probability * 100)),
		ModelVersion: model.Name(),
		PredictedAt:  time.Now().UTC(),
	}, nil
}

// PredictForVisit builds the feature vector for a visit being created and
// scores it. The returned prediction is embedded into the visit record and
// never recomputed afterwards.
func (s *PredictionService) PredictForVisit(
	ctx context.Context,
	patientID string,
	bookingDate, scheduledDate time.Time,
	reminderSent bool,
) (*entities.Prediction, error) {
	vector, err := s.builder.Build(ctx, patientID, bookingDate, scheduledDate, reminderSent)
	if err != nil {
		return nil, err
	}
	return s.Predict(vector)
}

// PredictAdHoc answers an exploratory what-if query: same pipeline as
// PredictForVisit, nothing persisted, advisory score cache allowed.
func (s *PredictionService) PredictAdHoc(
	ctx context.Context,
	patientID string,
	bookingDate, candidateDate time.Time,
	reminderSent bool,
) (*entities.Prediction, error) {
	vector, err := s.adHoc.Build(ctx, patientID, bookingDate, candidateDate, reminderSent)
	if err != nil {
		return nil, err
	}
	return s.Predict(vector)
}

// Status reports the active model version for status views.
func (s *PredictionService) Status() (*ModelStatus, error) {
	model, err := s.registry.GetActive()
	if err != nil {
		return nil, err
	}
	return &ModelStatus{
		ActiveVersion: model.Name(),
		Accuracy:      model.Accuracy,
		TrainedAt:     model.TrainedAt,
		TrainingRows:  model.Stats.RowCount,
	}, nil
}
