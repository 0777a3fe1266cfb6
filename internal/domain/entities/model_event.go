package entities

import (
	"time"
)

// ModelEventType classifies model-lifecycle events published on the event bus
type ModelEventType string

const (
	EventJobQueued      ModelEventType = "training_job.queued"
	EventJobRunning     ModelEventType = "training_job.running"
	EventJobSucceeded   ModelEventType = "training_job.succeeded"
	EventJobFailed      ModelEventType = "training_job.failed"
	EventModelActivated ModelEventType = "model.activated"
)

// ModelEvent is published whenever a training job changes state or a new
// model version becomes active, so operator dashboards can follow the
// continuous-learning loop without polling.
type ModelEvent struct {
	ID           string         `json:"id"`
	Type         ModelEventType `json:"type"`
	JobID        string         `json:"job_id,omitempty"`
	ModelVersion string         `json:"model_version,omitempty"`
	Accuracy     float64        `json:"accuracy,omitempty"`
	Error        string         `json:"error,omitempty"`
	Timestamp    time.Time      `json:"timestamp"`
}
