package ml

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"

	"github.com/healthsphere/noshow/backend/internal/domain/entities"
	"github.com/healthsphere/noshow/backend/internal/domain/repositories"
	apperrors "github.com/healthsphere/noshow/backend/pkg/errors"
)

// TrainFunc produces a fresh ModelVersion; used for bootstrap training when
// no persisted artifact exists at startup.
type TrainFunc func(ctx context.Context) (*entities.ModelVersion, error)

// Registry owns the currently active model version. Reads are a lock-free
// atomic pointer load; activation replaces the pointer in a single swap so a
// concurrent reader observes either the whole old version or the whole new
// one. Versions are immutable values: activation installs a copy, never
// mutates a version in place.
type Registry struct {
	active atomic.Pointer[entities.ModelVersion]

	// mu serializes activations and store writes, never reads.
	mu     sync.Mutex
	store  repositories.ModelStore
	logger zerolog.Logger
}

// NewRegistry creates a new model registry
func NewRegistry(store repositories.ModelStore, logger zerolog.Logger) *Registry {
	return &Registry{
		store:  store,
		logger: logger,
	}
}

// GetActive returns the active model version. It never blocks; before
// bootstrap completes it fails with a MODEL_UNAVAILABLE error.
func (r *Registry) GetActive() (*entities.ModelVersion, error) {
	model := r.active.Load()
	if model == nil {
		return nil, apperrors.NewModelUnavailableError("no active model version")
	}
	return model, nil
}

// Activate makes the given version the active one: it is persisted with
// active status, the previous active version is re-persisted as archived,
// and the in-memory pointer is swapped last.
func (r *Registry) Activate(ctx context.Context, version *entities.ModelVersion) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	activated := *version
	activated.Status = entities.ModelStatusActive
	if err := r.store.Save(ctx, &activated); err != nil {
		return apperrors.NewInternalError("failed to persist model version", err)
	}

	if prev := r.active.Load(); prev != nil {
		archived := *prev
		archived.Status = entities.ModelStatusArchived
		if err := r.store.Save(ctx, &archived); err != nil {
			// The new version is already durable and will win on restart.
			r.logger.Warn().Err(err).
				Str("model_version", archived.Name()).
				Msg("failed to archive previous model version")
		}
	}

	r.active.Store(&activated)

	r.logger.Info().
		Str("model_version", activated.Name()).
		Float64("accuracy", activated.Accuracy).
		Msg("model version activated")

	return nil
}

// ListVersions returns all persisted versions in ascending order, for audit.
func (r *Registry) ListVersions(ctx context.Context) ([]*entities.ModelVersion, error) {
	return r.store.List(ctx)
}

// NextVersion returns the ordinal the next trained model should carry.
func (r *Registry) NextVersion(ctx context.Context) (int, error) {
	versions, err := r.store.List(ctx)
	if err != nil {
		return 0, err
	}

	max := 0
	for _, v := range versions {
		if v.Version > max {
			max = v.Version
		}
	}
	return max + 1, nil
}

// Bootstrap makes the registry ready: it loads the persisted active version
// if one exists, otherwise it runs train synchronously once and activates
// the result. Until Bootstrap returns, GetActive fails.
func (r *Registry) Bootstrap(ctx context.Context, train TrainFunc) error {
	persisted, err := r.store.LoadActive(ctx)
	if err != nil {
		return apperrors.NewInternalError("failed to load persisted model", err)
	}
	if persisted != nil {
		r.active.Store(persisted)
		r.logger.Info().
			Str("model_version", persisted.Name()).
			Float64("accuracy", persisted.Accuracy).
			Msg("loaded persisted model version")
		return nil
	}

	r.logger.Info().Msg("no persisted model found, running bootstrap training")

	model, err := train(ctx)
	if err != nil {
		return err
	}
	return r.Activate(ctx, model)
}
