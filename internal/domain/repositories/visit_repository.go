package repositories

import (
	"context"
	"time"

	"github.com/healthsphere/noshow/backend/internal/domain/entities"
)

// VisitHistoryRepository provides the read-only visit history used by
// attendance-score computation. Entries are ordered by scheduled date.
type VisitHistoryRepository interface {
	History(ctx context.Context, patientID string) ([]entities.VisitHistoryEntry, error)
}

// TrainingDataRepository provides the raw rows the training pipeline cleans:
// the bulk historical dataset plus outcomes recorded live since a cutoff.
type TrainingDataRepository interface {
	BulkHistoricalRows(ctx context.Context) ([]entities.RawVisitRow, error)
	LiveOutcomeRows(ctx context.Context, since time.Time) ([]entities.RawVisitRow, error)
}

// VisitRepository is the write-side contract the core needs against visit
// records: embedding the one immutable prediction at creation time.
type VisitRepository interface {
	EmbedPrediction(ctx context.Context, visitID string, prediction *entities.Prediction) error
}
