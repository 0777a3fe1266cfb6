package ml_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/healthsphere/noshow/backend/internal/domain/entities"
	"github.com/healthsphere/noshow/backend/internal/ml"
)

func TestSigmoid(t *testing.T) {
	assert.Equal(t, 0.5, ml.Sigmoid(0))
	assert.InDelta(t, 0.6900, ml.Sigmoid(0.8), 0.00005)
	assert.InDelta(t, 1.0, ml.Sigmoid(0)+ml.Sigmoid(0), 1e-12)
	assert.InDelta(t, 1.0, ml.Sigmoid(2.5)+ml.Sigmoid(-2.5), 1e-12)
}

func TestFitScaler(t *testing.T) {
	rows := [][]float64{
		{1, 5},
		{3, 5},
	}

	scaler := ml.FitScaler(rows)

	require.Len(t, scaler.Means, 2)
	assert.InDelta(t, 2.0, scaler.Means[0], 1e-12)
	assert.InDelta(t, 1.0, scaler.StdDevs[0], 1e-12)

	// Constant features get a std of 1 so transformed values land at zero.
	assert.InDelta(t, 5.0, scaler.Means[1], 1e-12)
	assert.Equal(t, 1.0, scaler.StdDevs[1])

	scaled := ml.Transform([]float64{3, 5}, scaler)
	assert.InDelta(t, 1.0, scaled[0], 1e-12)
	assert.InDelta(t, 0.0, scaled[1], 1e-12)
}

func TestFitScaler_EmptyInput(t *testing.T) {
	scaler := ml.FitScaler(nil)
	assert.Empty(t, scaler.Means)
	assert.Empty(t, scaler.StdDevs)
}

func TestFitLogistic_SeparatesClasses(t *testing.T) {
	rows := [][]float64{
		{-1.2}, {-1.0}, {-0.8}, {-1.1},
		{0.8}, {1.0}, {1.2}, {0.9},
	}
	labels := []int{0, 0, 0, 0, 1, 1, 1, 1}

	classifier := ml.FitLogistic(rows, labels, [2]float64{1, 1}, ml.DefaultFitOptions())

	require.Len(t, classifier.Weights, 1)
	assert.Greater(t, classifier.Weights[0], 0.0)

	low := ml.Sigmoid(classifier.Weights[0]*-1.0 + classifier.Bias)
	high := ml.Sigmoid(classifier.Weights[0]*1.0 + classifier.Bias)
	assert.Less(t, low, 0.5)
	assert.Greater(t, high, 0.5)
}

func TestFitLogistic_ClassWeightsShiftBoundary(t *testing.T) {
	// Imbalanced data: one no-show among many shows. With balanced weights the
	// minority class pulls the boundary harder than it would unweighted.
	rows := [][]float64{
		{-1.0},
		{0.5}, {0.6}, {0.7}, {0.8}, {0.9}, {1.0}, {1.1},
	}
	labels := []int{0, 1, 1, 1, 1, 1, 1, 1}

	unweighted := ml.FitLogistic(rows, labels, [2]float64{1, 1}, ml.DefaultFitOptions())
	weighted := ml.FitLogistic(rows, labels, [2]float64{3.5, 1}, ml.DefaultFitOptions())

	pUnweighted := ml.Sigmoid(unweighted.Weights[0]*-1.0 + unweighted.Bias)
	pWeighted := ml.Sigmoid(weighted.Weights[0]*-1.0 + weighted.Bias)
	assert.Less(t, pWeighted, pUnweighted)
}

func TestPredictProbability(t *testing.T) {
	model := &entities.ModelVersion{
		Version: 1,
		Scaler: entities.ScalerParams{
			Means:   []float64{30, 0.5, 5, 0.5, 75},
			StdDevs: []float64{10, 0.5, 2, 0.5, 20},
		},
		Classifier: entities.ClassifierParams{
			Weights: []float64{0, 0, 0, 0, 0},
			Bias:    0.8,
		},
	}

	vector := entities.FeatureVector{
		Age:             40,
		Sex:             1,
		LeadDays:        7,
		ReminderSent:    1,
		AttendanceScore: 90,
	}

	// With zero weights only the bias contributes, whatever the inputs.
	assert.InDelta(t, 0.6900, ml.PredictProbability(model, vector), 0.00005)
}
