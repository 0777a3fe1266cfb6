package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/healthsphere/noshow/backend/internal/domain/entities"
	"github.com/healthsphere/noshow/backend/internal/domain/providers"
	"github.com/healthsphere/noshow/backend/internal/domain/repositories"
	"github.com/healthsphere/noshow/backend/internal/ml"
	apperrors "github.com/healthsphere/noshow/backend/pkg/errors"
)

// AttendanceScorer computes a patient's historical show-up percentage as of
// a cutoff date.
type AttendanceScorer interface {
	Score(ctx context.Context, patientID string, cutoff time.Time) (float64, error)
}

// AttendanceScoreCalculator computes attendance scores from visit history.
// Only visits with done status and a scheduled date strictly earlier than the
// cutoff count: a visit never sees outcome information from itself or from
// any visit on or after its own date.
type AttendanceScoreCalculator struct {
	history repositories.VisitHistoryRepository
}

// NewAttendanceScoreCalculator creates a new attendance score calculator
func NewAttendanceScoreCalculator(history repositories.VisitHistoryRepository) *AttendanceScoreCalculator {
	return &AttendanceScoreCalculator{history: history}
}

// Score returns the percentage of qualifying prior visits the patient kept,
// or the neutral default when no qualifying prior visits exist.
func (c *AttendanceScoreCalculator) Score(ctx context.Context, patientID string, cutoff time.Time) (float64, error) {
	entries, err := c.history.History(ctx, patientID)
	if err != nil {
		return 0, apperrors.NewExternalError("failed to read visit history", err)
	}

	total, shows := 0, 0
	for _, entry := range entries {
		if entry.Status != entities.VisitStatusDone || entry.ShowedUp == nil {
			continue
		}
		if !entry.ScheduledDate.Before(cutoff) {
			continue
		}
		total++
		if *entry.ShowedUp {
			shows++
		}
	}

	if total == 0 {
		return ml.NeutralAttendanceScore, nil
	}
	return 100.0 * float64(shows) / float64(total), nil
}

// SnapshotScoreCache decorates an AttendanceScorer with a short-lived
// advisory cache, keyed by patient and cutoff day. Used on the ad-hoc
// what-if path only; training and visit-creation scoring always recompute
// from history.
type SnapshotScoreCache struct {
	inner      AttendanceScorer
	cache      providers.CacheProvider
	ttlSeconds int
}

// NewSnapshotScoreCache creates a new caching attendance scorer
func NewSnapshotScoreCache(inner AttendanceScorer, cache providers.CacheProvider, ttlSeconds int) *SnapshotScoreCache {
	return &SnapshotScoreCache{
		inner:      inner,
		cache:      cache,
		ttlSeconds: ttlSeconds,
	}
}

// Score returns the cached snapshot when present, recomputing otherwise.
func (s *SnapshotScoreCache) Score(ctx context.Context, patientID string, cutoff time.Time) (float64, error) {
	key := fmt.Sprintf("noshow:attendance-score:%s:%s", patientID, cutoff.UTC().Format("2006-01-02"))

	if data, err := s.cache.Get(ctx, key); err == nil {
		if score, parseErr := strconv.ParseFloat(string(data), 64); parseErr == nil {
			return score, nil
		}
	}

	score, err := s.inner.Score(ctx, patientID, cutoff)
	if err != nil {
		return 0, err
	}

	encoded, _ := json.Marshal(score)
	// Cache writes are best effort; the snapshot is advisory.
	_ = s.cache.Set(ctx, key, encoded, s.ttlSeconds)

	return score, nil
}
