package entities

import (
	"time"
)

// TrainingTrigger records why a training job was started
type TrainingTrigger string

const (
	TriggerThreshold TrainingTrigger = "threshold"
	TriggerManual    TrainingTrigger = "manual"
	TriggerBootstrap TrainingTrigger = "bootstrap"
)

// TrainingJobState represents the state of a training job
type TrainingJobState string

const (
	JobStateQueued    TrainingJobState = "queued"
	JobStateRunning   TrainingJobState = "running"
	JobStateSucceeded TrainingJobState = "succeeded"
	JobStateFailed    TrainingJobState = "failed"
)

// TrainingJob is the audit record of one retraining attempt. Jobs are created
// by the retrain scheduler, reach a terminal state on success or failure, and
// are never resurrected.
type TrainingJob struct {
	ID           string           `json:"id"`
	Trigger      TrainingTrigger  `json:"trigger"`
	State        TrainingJobState `json:"state"`
	EnqueuedAt   time.Time        `json:"enqueued_at"`
	StartedAt    *time.Time       `json:"started_at,omitempty"`
	FinishedAt   *time.Time       `json:"finished_at,omitempty"`
	ModelVersion string           `json:"model_version,omitempty"`
	Error        string           `json:"error,omitempty"`
}
