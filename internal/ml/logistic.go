package ml

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/healthsphere/noshow/backend/internal/domain/entities"
)

// Sigmoid returns the logistic function 1 / (1 + e^-z).
func Sigmoid(z float64) float64 {
	return 1.0 / (1.0 + math.Exp(-z))
}

// FitScaler computes per-feature standardization parameters (mean, population
// standard deviation) over the given rows. Constant features get a standard
// deviation of 1 so scaling leaves them at zero instead of dividing by zero.
func FitScaler(rows [][]float64) entities.ScalerParams {
	if len(rows) == 0 {
		return entities.ScalerParams{}
	}

	n := len(rows[0])
	means := make([]float64, n)
	stds := make([]float64, n)
	col := make([]float64, len(rows))

	for j := 0; j < n; j++ {
		for i, row := range rows {
			col[i] = row[j]
		}
		means[j] = stat.Mean(col, nil)
		stds[j] = math.Sqrt(stat.PopVariance(col, nil))
		if stds[j] == 0 {
			stds[j] = 1
		}
	}

	return entities.ScalerParams{Means: means, StdDevs: stds}
}

// Transform standardizes a single row with previously fit scaler parameters.
func Transform(row []float64, scaler entities.ScalerParams) []float64 {
	out := make([]float64, len(row))
	for j, v := range row {
		out[j] = (v - scaler.Means[j]) / scaler.StdDevs[j]
	}
	return out
}

// TransformAll standardizes every row.
func TransformAll(rows [][]float64, scaler entities.ScalerParams) [][]float64 {
	out := make([][]float64, len(rows))
	for i, row := range rows {
		out[i] = Transform(row, scaler)
	}
	return out
}

// FitOptions controls the gradient-descent fit of the logistic classifier.
type FitOptions struct {
	LearningRate float64
	Iterations   int
}

// DefaultFitOptions returns the fit options used in production training.
func DefaultFitOptions() FitOptions {
	return FitOptions{LearningRate: 0.1, Iterations: 1000}
}

// FitLogistic fits a binary logistic-regression classifier by full-batch
// gradient descent on standardized inputs. classWeights maps each label
// (0 or 1) to its sample weight, countering class imbalance.
func FitLogistic(rows [][]float64, labels []int, classWeights [2]float64, opts FitOptions) entities.ClassifierParams {
	n := len(rows)
	if n == 0 {
		return entities.ClassifierParams{}
	}
	dim := len(rows[0])

	weights := make([]float64, dim)
	bias := 0.0
	grad := make([]float64, dim)

	for iter := 0; iter < opts.Iterations; iter++ {
		for j := range grad {
			grad[j] = 0
		}
		gradBias := 0.0

		for i, row := range rows {
			p := Sigmoid(floats.Dot(weights, row) + bias)
			residual := classWeights[labels[i]] * (p - float64(labels[i]))
			floats.AddScaled(grad, residual, row)
			gradBias += residual
		}

		step := opts.LearningRate / float64(n)
		floats.AddScaled(weights, -step, grad)
		bias -= step * gradBias
	}

	return entities.ClassifierParams{Weights: weights, Bias: bias}
}

// PredictProbability returns the calibrated show probability a model assigns
// to a feature vector: scale with the stored scaler, then apply the logistic
// function to the linear score.
func PredictProbability(model *entities.ModelVersion, vector entities.FeatureVector) float64 {
	scaled := Transform(vector.Values(), model.Scaler)
	z := floats.Dot(model.Classifier.Weights, scaled) + model.Classifier.Bias
	return Sigmoid(z)
}
