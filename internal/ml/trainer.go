package ml

import (
	"math/rand"
	"time"

	"github.com/rs/zerolog"

	"github.com/healthsphere/noshow/backend/internal/domain/entities"
	apperrors "github.com/healthsphere/noshow/backend/pkg/errors"
)

const testFraction = 0.2

// Trainer fits a standardize-then-logistic-regression pipeline over a
// cleaned dataset and evaluates it on a stratified held-out split. The split
// shuffle is seeded, so training the same dataset twice yields the same
// model.
type Trainer struct {
	seed   int64
	opts   FitOptions
	logger zerolog.Logger
}

// NewTrainer creates a new model trainer
func NewTrainer(logger zerolog.Logger) *Trainer {
	return &Trainer{
		seed:   42,
		opts:   DefaultFitOptions(),
		logger: logger,
	}
}

// Train fits a model over the dataset and returns a new ModelVersion with
// the given ordinal. The returned version is archived: activation is an
// explicit, separate registry step.
func (t *Trainer) Train(dataset *Dataset, version int) (*entities.ModelVersion, error) {
	trainIdx, testIdx, err := t.stratifiedSplit(dataset.Labels)
	if err != nil {
		return nil, err
	}

	trainX := pick(dataset.Features, trainIdx)
	trainY := pickLabels(dataset.Labels, trainIdx)
	testX := pick(dataset.Features, testIdx)
	testY := pickLabels(dataset.Labels, testIdx)

	scaler := FitScaler(trainX)
	scaledTrain := TransformAll(trainX, scaler)
	scaledTest := TransformAll(testX, scaler)

	classifier := FitLogistic(scaledTrain, trainY, balancedClassWeights(trainY), t.opts)

	predictions := make([]int, len(scaledTest))
	model := &entities.ModelVersion{
		Version:    version,
		TrainedAt:  time.Now().UTC(),
		Scaler:     scaler,
		Classifier: classifier,
		Stats:      dataset.Stats,
		Status:     entities.ModelStatusArchived,
	}
	for i, row := range scaledTest {
		if probabilityOf(model, row) >= 0.5 {
			predictions[i] = 1
		}
	}
	model.Accuracy = Accuracy(testY, predictions)

	t.logger.Info().
		Str("model_version", model.Name()).
		Float64("accuracy", model.Accuracy).
		Float64("precision", Precision(testY, predictions)).
		Float64("recall", Recall(testY, predictions)).
		Int("train_rows", len(trainY)).
		Int("test_rows", len(testY)).
		Msg("model trained")

	return model, nil
}

// probabilityOf scores an already-standardized row.
func probabilityOf(model *entities.ModelVersion, scaledRow []float64) float64 {
	z := model.Classifier.Bias
	for j, w := range model.Classifier.Weights {
		z += w * scaledRow[j]
	}
	return Sigmoid(z)
}

// stratifiedSplit partitions row indices 80/20 per label class. Both splits
// must end up containing both classes.
func (t *Trainer) stratifiedSplit(labels []int) (train, test []int, err error) {
	var byClass [2][]int
	for i, y := range labels {
		byClass[y] = append(byClass[y], i)
	}

	rng := rand.New(rand.NewSource(t.seed))

	for _, indices := range byClass {
		if len(indices) < 2 {
			return nil, nil, apperrors.NewDegenerateTrainingError(
				"stratified split cannot preserve both classes")
		}

		rng.Shuffle(len(indices), func(a, b int) {
			indices[a], indices[b] = indices[b], indices[a]
		})

		nTest := int(float64(len(indices)) * testFraction)
		if nTest == 0 {
			nTest = 1
		}

		test = append(test, indices[:nTest]...)
		train = append(train, indices[nTest:]...)
	}

	return train, test, nil
}

// balancedClassWeights weights each class inversely to its frequency in the
// training split: w_c = n / (2 * n_c).
func balancedClassWeights(labels []int) [2]float64 {
	var counts [2]int
	for _, y := range labels {
		counts[y]++
	}

	n := float64(len(labels))
	var weights [2]float64
	for c, count := range counts {
		if count > 0 {
			weights[c] = n / (2 * float64(count))
		}
	}
	return weights
}

func pick(rows [][]float64, indices []int) [][]float64 {
	out := make([][]float64, len(indices))
	for i, idx := range indices {
		out[i] = rows[idx]
	}
	return out
}

func pickLabels(labels []int, indices []int) []int {
	out := make([]int, len(indices))
	for i, idx := range indices {
		out[i] = labels[idx]
	}
	return out
}
