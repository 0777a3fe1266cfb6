package entities

import (
	"fmt"
	"time"
)

// ModelStatus represents the lifecycle status of a trained model version
type ModelStatus string

const (
	ModelStatusActive   ModelStatus = "active"
	ModelStatusArchived ModelStatus = "archived"
)

// ScalerParams holds the per-feature standardization parameters fit during
// training. A feature x is scaled as (x - Means[i]) / StdDevs[i].
type ScalerParams struct {
	Means   []float64 `json:"means"`
	StdDevs []float64 `json:"std_devs"`
}

// ClassifierParams holds the fitted logistic-regression parameters.
type ClassifierParams struct {
	Weights []float64 `json:"weights"`
	Bias    float64   `json:"bias"`
}

// PopulationStats carries training-population statistics needed at serving
// time, such as the median age used to impute missing ages.
type PopulationStats struct {
	MedianAge float64 `json:"median_age"`
	ShowRate  float64 `json:"show_rate"`
	RowCount  int     `json:"row_count"`
}

// ModelVersion is an immutable trained-model artifact. Versions form an
// append-only log: exactly one version is active at any instant and archived
// versions are retained for audit and drift comparison.
type ModelVersion struct {
	Version    int              `json:"version"`
	TrainedAt  time.Time        `json:"trained_at"`
	Accuracy   float64          `json:"accuracy"`
	Scaler     ScalerParams     `json:"scaler"`
	Classifier ClassifierParams `json:"classifier"`
	Stats      PopulationStats  `json:"stats"`
	Status     ModelStatus      `json:"status"`
}

// Name returns the human-readable version identifier, e.g. "logistic_v3".
func (m *ModelVersion) Name() string {
	return fmt.Sprintf("logistic_v%d", m.Version)
}
