package ml

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/healthsphere/noshow/backend/internal/domain/entities"
	"github.com/healthsphere/noshow/backend/internal/domain/providers"
	"github.com/healthsphere/noshow/backend/internal/domain/repositories"
	apperrors "github.com/healthsphere/noshow/backend/pkg/errors"
)

// ModelEventsChannel is the event-bus channel model-lifecycle events are
// published on.
const ModelEventsChannel = "noshow:model-events"

// SchedulerConfig holds retrain-scheduler tuning.
type SchedulerConfig struct {
	// Threshold is the number of recorded outcomes that triggers a retrain.
	Threshold int64

	// MinAccuracy is the activation quality gate; zero disables it.
	MinAccuracy float64
}

// Scheduler counts newly recorded visit outcomes and triggers asynchronous
// retraining when the configured threshold is crossed. At most one training
// job runs at a time: a crossing that lands while a job is running is
// coalesced, not queued. The counter resets at trigger time, so a new
// accumulation window starts while the job runs; a failed job does not
// restore the consumed window.
type Scheduler struct {
	cfg      SchedulerConfig
	counter  atomic.Int64
	running  atomic.Bool
	registry *Registry
	data     repositories.TrainingDataRepository
	cleaner  *Cleaner
	trainer  *Trainer
	bus      providers.EventBus
	logger   zerolog.Logger

	mu            sync.Mutex
	jobs          []*entities.TrainingJob
	lastSucceeded time.Time

	wg sync.WaitGroup
}

// NewScheduler creates a new retrain scheduler. bus may be nil when no event
// bus is configured.
func NewScheduler(
	cfg SchedulerConfig,
	registry *Registry,
	data repositories.TrainingDataRepository,
	cleaner *Cleaner,
	trainer *Trainer,
	bus providers.EventBus,
	logger zerolog.Logger,
) *Scheduler {
	if cfg.Threshold < 1 {
		cfg.Threshold = 10
	}
	return &Scheduler{
		cfg:      cfg,
		registry: registry,
		data:     data,
		cleaner:  cleaner,
		trainer:  trainer,
		bus:      bus,
		logger:   logger,
	}
}

// RecordOutcome registers one newly known visit outcome. When the counter
// reaches the threshold it resets immediately and exactly one training job
// is enqueued; increments past the threshold carry into the next window.
func (s *Scheduler) RecordOutcome() {
	if s.counter.Add(1) == s.cfg.Threshold {
		s.counter.Add(-s.cfg.Threshold)
		if _, err := s.trigger(entities.TriggerThreshold); err != nil {
			// Coalesced with the in-flight job; the crossing was consumed.
			s.logger.Debug().Err(err).Msg("retrain trigger coalesced")
		}
	}
}

// RetrainNow forces a training job regardless of the outcome counter, for
// the administrative retrain endpoint. Returns the enqueued job, or a
// CONCURRENT_TRAINING error if one is already running.
func (s *Scheduler) RetrainNow() (*entities.TrainingJob, error) {
	return s.trigger(entities.TriggerManual)
}

// OutcomesSinceLastTrigger returns the current accumulation-window count.
func (s *Scheduler) OutcomesSinceLastTrigger() int64 {
	return s.counter.Load()
}

// ListJobs returns a snapshot of all training jobs, newest last.
func (s *Scheduler) ListJobs() []entities.TrainingJob {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]entities.TrainingJob, len(s.jobs))
	for i, job := range s.jobs {
		out[i] = *job
	}
	return out
}

// Wait blocks until all in-flight training jobs have finished. Used on
// shutdown and by tests.
func (s *Scheduler) Wait() {
	s.wg.Wait()
}

// BootstrapTrain runs the dataset-and-train pipeline synchronously, recording
// a bootstrap training job. Wired into Registry.Bootstrap.
func (s *Scheduler) BootstrapTrain(ctx context.Context) (*entities.ModelVersion, error) {
	job := s.newJob(entities.TriggerBootstrap)
	model, err := s.runPipeline(ctx, job)
	if err != nil {
		s.finishFailed(ctx, job, err)
		return nil, err
	}
	s.finishSucceeded(ctx, job, model)
	return model, nil
}

// trigger enqueues one asynchronous training job if none is running.
func (s *Scheduler) trigger(trigger entities.TrainingTrigger) (*entities.TrainingJob, error) {
	if !s.running.CompareAndSwap(false, true) {
		return nil, apperrors.NewConcurrentTrainingError("a training job is already running")
	}

	job := s.newJob(trigger)
	s.logger.Info().
		Str("job_id", job.ID).
		Str("trigger", string(trigger)).
		Msg("training job enqueued")

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer s.running.Store(false)
		s.run(context.Background(), job)
	}()

	return job, nil
}

// run drives one job to a terminal state. Training-path errors never
// propagate to request callers: they are logged and resolved into the job
// record, leaving the active model untouched.
func (s *Scheduler) run(ctx context.Context, job *entities.TrainingJob) {
	model, err := s.runPipeline(ctx, job)
	if err != nil {
		s.finishFailed(ctx, job, err)
		return
	}

	if err := s.registry.Activate(ctx, model); err != nil {
		s.finishFailed(ctx, job, err)
		return
	}

	s.mu.Lock()
	s.lastSucceeded = time.Now().UTC()
	s.mu.Unlock()

	s.finishSucceeded(ctx, job, model)
	s.publish(ctx, &entities.ModelEvent{
		ID:           uuid.New().String(),
		Type:         entities.EventModelActivated,
		JobID:        job.ID,
		ModelVersion: model.Name(),
		Accuracy:     model.Accuracy,
		Timestamp:    time.Now().UTC(),
	})
}

// runPipeline reads raw rows, cleans them, trains a candidate and applies
// the quality gate.
func (s *Scheduler) runPipeline(ctx context.Context, job *entities.TrainingJob) (*entities.ModelVersion, error) {
	s.markRunning(ctx, job)

	bulk, err := s.data.BulkHistoricalRows(ctx)
	if err != nil {
		return nil, apperrors.NewExternalError("failed to read bulk historical rows", err)
	}

	s.mu.Lock()
	since := s.lastSucceeded
	s.mu.Unlock()

	live, err := s.data.LiveOutcomeRows(ctx, since)
	if err != nil {
		return nil, apperrors.NewExternalError("failed to read live outcome rows", err)
	}

	dataset, err := s.cleaner.Build(bulk, live)
	if err != nil {
		return nil, err
	}

	version, err := s.registry.NextVersion(ctx)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to determine next model version", err)
	}

	model, err := s.trainer.Train(dataset, version)
	if err != nil {
		return nil, err
	}

	if s.cfg.MinAccuracy > 0 && model.Accuracy < s.cfg.MinAccuracy {
		return nil, apperrors.NewDegenerateTrainingError(fmt.Sprintf(
			"candidate accuracy %.4f below activation gate %.4f",
			model.Accuracy, s.cfg.MinAccuracy))
	}

	return model, nil
}

func (s *Scheduler) newJob(trigger entities.TrainingTrigger) *entities.TrainingJob {
	job := &entities.TrainingJob{
		ID:         uuid.New().String(),
		Trigger:    trigger,
		State:      entities.JobStateQueued,
		EnqueuedAt: time.Now().UTC(),
	}

	s.mu.Lock()
	s.jobs = append(s.jobs, job)
	s.mu.Unlock()

	s.publish(context.Background(), &entities.ModelEvent{
		ID:        uuid.New().String(),
		Type:      entities.EventJobQueued,
		JobID:     job.ID,
		Timestamp: job.EnqueuedAt,
	})
	return job
}

func (s *Scheduler) markRunning(ctx context.Context, job *entities.TrainingJob) {
	now := time.Now().UTC()

	s.mu.Lock()
	job.State = entities.JobStateRunning
	job.StartedAt = &now
	s.mu.Unlock()

	s.publish(ctx, &entities.ModelEvent{
		ID:        uuid.New().String(),
		Type:      entities.EventJobRunning,
		JobID:     job.ID,
		Timestamp: now,
	})
}

func (s *Scheduler) finishSucceeded(ctx context.Context, job *entities.TrainingJob, model *entities.ModelVersion) {
	now := time.Now().UTC()

	s.mu.Lock()
	job.State = entities.JobStateSucceeded
	job.FinishedAt = &now
	job.ModelVersion = model.Name()
	s.mu.Unlock()

	s.logger.Info().
		Str("job_id", job.ID).
		Str("model_version", model.Name()).
		Float64("accuracy", model.Accuracy).
		Msg("training job succeeded")

	s.publish(ctx, &entities.ModelEvent{
		ID:           uuid.New().String(),
		Type:         entities.EventJobSucceeded,
		JobID:        job.ID,
		ModelVersion: model.Name(),
		Accuracy:     model.Accuracy,
		Timestamp:    now,
	})
}

func (s *Scheduler) finishFailed(ctx context.Context, job *entities.TrainingJob, cause error) {
	now := time.Now().UTC()

	s.mu.Lock()
	job.State = entities.JobStateFailed
	job.FinishedAt = &now
	job.Error = cause.Error()
	s.mu.Unlock()

	s.logger.Error().
		Err(cause).
		Str("job_id", job.ID).
		Msg("training job failed, active model unchanged")

	s.publish(ctx, &entities.ModelEvent{
		ID:        uuid.New().String(),
		Type:      entities.EventJobFailed,
		JobID:     job.ID,
		Error:     cause.Error(),
		Timestamp: now,
	})
}

func (s *Scheduler) publish(ctx context.Context, event *entities.ModelEvent) {
	if s.bus == nil {
		return
	}
	if err := s.bus.Publish(ctx, ModelEventsChannel, event); err != nil {
		s.logger.Warn().Err(err).Str("event", string(event.Type)).Msg("failed to publish model event")
	}
}
