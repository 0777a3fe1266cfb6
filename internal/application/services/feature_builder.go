package services

import (
	"context"
	"time"

	"github.com/healthsphere/noshow/backend/internal/domain/entities"
	"github.com/healthsphere/noshow/backend/internal/domain/repositories"
	"github.com/healthsphere/noshow/backend/internal/ml"
	apperrors "github.com/healthsphere/noshow/backend/pkg/errors"
)

// AgeImputer supplies the training-population median age used when a
// patient's age is missing. The active model carries it so serving-time
// imputation matches the population the model was trained on.
type AgeImputer interface {
	MedianAge() (float64, error)
}

// RegistryAgeImputer reads the median age from the active model version.
type RegistryAgeImputer struct {
	registry *ml.Registry
}

// NewRegistryAgeImputer creates a new registry-backed age imputer
func NewRegistryAgeImputer(registry *ml.Registry) *RegistryAgeImputer {
	return &RegistryAgeImputer{registry: registry}
}

// MedianAge returns the active model's training-population median age.
func (i *RegistryAgeImputer) MedianAge() (float64, error) {
	model, err := i.registry.GetActive()
	if err != nil {
		return 0, err
	}
	return model.Stats.MedianAge, nil
}

// FeatureVectorBuilder assembles feature vectors from raw patient and visit
// attributes.
type FeatureVectorBuilder struct {
	patients repositories.PatientRepository
	scorer   AttendanceScorer
	imputer  AgeImputer
}

// NewFeatureVectorBuilder creates a new feature vector builder
func NewFeatureVectorBuilder(
	patients repositories.PatientRepository,
	scorer AttendanceScorer,
	imputer AgeImputer,
) *FeatureVectorBuilder {
	return &FeatureVectorBuilder{
		patients: patients,
		scorer:   scorer,
		imputer:  imputer,
	}
}

// Build resolves the patient and assembles the canonical feature vector for
// a visit with the given dates. The attendance score is computed with the
// scheduled date as cutoff, so the vector only sees history from strictly
// before the visit being predicted.
func (b *FeatureVectorBuilder) Build(
	ctx context.Context,
	patientID string,
	bookingDate, scheduledDate time.Time,
	reminderSent bool,
) (entities.FeatureVector, error) {
	var vector entities.FeatureVector

	if scheduledDate.IsZero() {
		return vector, apperrors.NewFeatureComputationError("scheduled date is required", nil)
	}

	patient, err := b.patients.GetByID(ctx, patientID)
	if err != nil {
		return vector, apperrors.NewFeatureComputationError("failed to resolve patient", err)
	}
	if patient == nil {
		return vector, apperrors.NewFeatureComputationError("patient not found", nil)
	}

	age, err := b.resolveAge(patient)
	if err != nil {
		return vector, err
	}

	score, err := b.scorer.Score(ctx, patientID, scheduledDate)
	if err != nil {
		return vector, apperrors.NewFeatureComputationError("failed to compute attendance score", err)
	}

	reminder := 0.0
	if reminderSent {
		reminder = 1.0
	}

	return entities.FeatureVector{
		Age:             age,
		Sex:             entities.EncodeSex(patient.Sex),
		LeadDays:        float64(entities.LeadDays(bookingDate, scheduledDate)),
		ReminderSent:    reminder,
		AttendanceScore: score,
	}, nil
}

func (b *FeatureVectorBuilder) resolveAge(patient *entities.Patient) (float64, error) {
	if patient.Age != nil {
		return float64(*patient.Age), nil
	}

	median, err := b.imputer.MedianAge()
	if err != nil {
		return 0, apperrors.NewFeatureComputationError("age missing and no imputation statistic available", err)
	}
	return median, nil
}
