package repositories

import (
	"context"

	"github.com/healthsphere/noshow/backend/internal/domain/entities"
)

// ModelStore persists trained model artifacts so the active version is
// recoverable across process restarts without retraining. Versions are
// append-only; the store never deletes an artifact.
type ModelStore interface {
	// Save persists a model artifact. Saving an already-persisted version
	// overwrites only its status metadata (active/archived flip).
	Save(ctx context.Context, version *entities.ModelVersion) error

	// LoadActive returns the persisted active version, or (nil, nil) when no
	// valid artifact exists yet.
	LoadActive(ctx context.Context) (*entities.ModelVersion, error)

	// List returns all persisted versions in ascending version order.
	List(ctx context.Context) ([]*entities.ModelVersion, error)
}
