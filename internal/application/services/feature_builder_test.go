package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/healthsphere/noshow/backend/internal/application/services"
	"github.com/healthsphere/noshow/backend/internal/domain/entities"
	apperrors "github.com/healthsphere/noshow/backend/pkg/errors"
)

type mockPatientRepo struct {
	mock.Mock
}

func (m *mockPatientRepo) GetByID(ctx context.Context, id string) (*entities.Patient, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Patient), args.Error(1)
}

type stubScorer struct {
	score      float64
	err        error
	lastCutoff time.Time
}

func (s *stubScorer) Score(ctx context.Context, patientID string, cutoff time.Time) (float64, error) {
	s.lastCutoff = cutoff
	return s.score, s.err
}

type stubImputer struct {
	median float64
	err    error
	called bool
}

func (s *stubImputer) MedianAge() (float64, error) {
	s.called = true
	return s.median, s.err
}

func intPtr(v int) *int { return &v }

func TestFeatureVectorBuilder_Build(t *testing.T) {
	patients := new(mockPatientRepo)
	patients.On("GetByID", mock.Anything, "p-1").Return(&entities.Patient{
		ID:  "p-1",
		Age: intPtr(62),
		Sex: entities.SexFemale,
	}, nil)

	scorer := &stubScorer{score: 88.0}
	imputer := &stubImputer{}
	builder := services.NewFeatureVectorBuilder(patients, scorer, imputer)

	booking := day(t, "2026-01-01")
	scheduled := day(t, "2026-01-10")

	vector, err := builder.Build(context.Background(), "p-1", booking, scheduled, true)
	require.NoError(t, err)

	assert.Equal(t, entities.FeatureVector{
		Age:             62,
		Sex:             1,
		LeadDays:        9,
		ReminderSent:    1,
		AttendanceScore: 88.0,
	}, vector)

	assert.Equal(t, scheduled, scorer.lastCutoff, "attendance score is cut off at the visit's own date")
	assert.False(t, imputer.called)
}

func TestFeatureVectorBuilder_ImputesMissingAge(t *testing.T) {
	patients := new(mockPatientRepo)
	patients.On("GetByID", mock.Anything, "p-1").Return(&entities.Patient{
		ID:  "p-1",
		Sex: entities.SexMale,
	}, nil)

	scorer := &stubScorer{score: 75.0}
	imputer := &stubImputer{median: 37.5}
	builder := services.NewFeatureVectorBuilder(patients, scorer, imputer)

	vector, err := builder.Build(context.Background(), "p-1", day(t, "2026-01-01"), day(t, "2026-01-05"), false)
	require.NoError(t, err)

	assert.Equal(t, 37.5, vector.Age)
	assert.True(t, imputer.called)
}

func TestFeatureVectorBuilder_Failures(t *testing.T) {
	t.Run("zero scheduled date", func(t *testing.T) {
		builder := services.NewFeatureVectorBuilder(new(mockPatientRepo), &stubScorer{}, &stubImputer{})

		_, err := builder.Build(context.Background(), "p-1", day(t, "2026-01-01"), time.Time{}, false)
		require.Error(t, err)
		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeFeatureComputation))
	})

	t.Run("unresolvable patient", func(t *testing.T) {
		patients := new(mockPatientRepo)
		patients.On("GetByID", mock.Anything, "missing").Return(nil, apperrors.NewNotFoundError("patient not found"))

		builder := services.NewFeatureVectorBuilder(patients, &stubScorer{}, &stubImputer{})

		_, err := builder.Build(context.Background(), "missing", day(t, "2026-01-01"), day(t, "2026-01-05"), false)
		require.Error(t, err)
		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeFeatureComputation))
	})

	t.Run("age missing and no imputation statistic", func(t *testing.T) {
		patients := new(mockPatientRepo)
		patients.On("GetByID", mock.Anything, "p-1").Return(&entities.Patient{ID: "p-1"}, nil)

		imputer := &stubImputer{err: apperrors.NewModelUnavailableError("no active model version")}
		builder := services.NewFeatureVectorBuilder(patients, &stubScorer{}, imputer)

		_, err := builder.Build(context.Background(), "p-1", day(t, "2026-01-01"), day(t, "2026-01-05"), false)
		require.Error(t, err)
		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeFeatureComputation))
	})

	t.Run("score computation fails", func(t *testing.T) {
		patients := new(mockPatientRepo)
		patients.On("GetByID", mock.Anything, "p-1").Return(&entities.Patient{
			ID:  "p-1",
			Age: intPtr(30),
		}, nil)

		scorer := &stubScorer{err: apperrors.NewExternalError("history read failed", nil)}
		builder := services.NewFeatureVectorBuilder(patients, scorer, &stubImputer{})

		_, err := builder.Build(context.Background(), "p-1", day(t, "2026-01-01"), day(t, "2026-01-05"), false)
		require.Error(t, err)
		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeFeatureComputation))
	})
}
