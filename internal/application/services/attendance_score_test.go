package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/healthsphere/noshow/backend/internal/application/services"
	"github.com/healthsphere/noshow/backend/internal/domain/entities"
	"github.com/healthsphere/noshow/backend/internal/ml"
	apperrors "github.com/healthsphere/noshow/backend/pkg/errors"
)

type mockVisitHistory struct {
	mock.Mock
}

func (m *mockVisitHistory) History(ctx context.Context, patientID string) ([]entities.VisitHistoryEntry, error) {
	args := m.Called(ctx, patientID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entities.VisitHistoryEntry), args.Error(1)
}

func boolPtr(v bool) *bool { return &v }

func day(t *testing.T, value string) time.Time {
	t.Helper()
	parsed, err := time.Parse("2006-01-02", value)
	require.NoError(t, err)
	return parsed
}

func doneVisit(t *testing.T, scheduled string, showedUp bool) entities.VisitHistoryEntry {
	t.Helper()
	return entities.VisitHistoryEntry{
		ScheduledDate: day(t, scheduled),
		Status:        entities.VisitStatusDone,
		ShowedUp:      boolPtr(showedUp),
	}
}

func TestAttendanceScore_NoHistoryIsNeutral(t *testing.T) {
	history := new(mockVisitHistory)
	history.On("History", mock.Anything, "p-1").Return([]entities.VisitHistoryEntry{}, nil)

	calc := services.NewAttendanceScoreCalculator(history)
	score, err := calc.Score(context.Background(), "p-1", day(t, "2026-01-10"))

	require.NoError(t, err)
	assert.Equal(t, ml.NeutralAttendanceScore, score)
}

func TestAttendanceScore_ThreeOfFourKept(t *testing.T) {
	history := new(mockVisitHistory)
	history.On("History", mock.Anything, "p-1").Return([]entities.VisitHistoryEntry{
		doneVisit(t, "2025-09-01", true),
		doneVisit(t, "2025-10-01", true),
		doneVisit(t, "2025-11-01", false),
		doneVisit(t, "2025-12-01", true),
	}, nil)

	calc := services.NewAttendanceScoreCalculator(history)
	score, err := calc.Score(context.Background(), "p-1", day(t, "2026-01-10"))

	require.NoError(t, err)
	assert.InDelta(t, 75.0, score, 1e-9)
}

func TestAttendanceScore_CutoffIsStrict(t *testing.T) {
	cutoff := day(t, "2025-12-01")
	history := new(mockVisitHistory)
	history.On("History", mock.Anything, "p-1").Return([]entities.VisitHistoryEntry{
		doneVisit(t, "2025-11-01", false),
		// On the cutoff day itself: must not count.
		doneVisit(t, "2025-12-01", true),
		// After the cutoff: must not count.
		doneVisit(t, "2025-12-15", true),
	}, nil)

	calc := services.NewAttendanceScoreCalculator(history)
	score, err := calc.Score(context.Background(), "p-1", cutoff)

	require.NoError(t, err)
	assert.InDelta(t, 0.0, score, 1e-9, "only the missed visit before the cutoff qualifies")
}

func TestAttendanceScore_IgnoresNonQualifyingVisits(t *testing.T) {
	pending := entities.VisitHistoryEntry{
		ScheduledDate: day(t, "2025-10-01"),
		Status:        entities.VisitStatusPending,
	}
	canceled := entities.VisitHistoryEntry{
		ScheduledDate: day(t, "2025-10-05"),
		Status:        entities.VisitStatusCanceled,
	}
	doneNoOutcome := entities.VisitHistoryEntry{
		ScheduledDate: day(t, "2025-10-10"),
		Status:        entities.VisitStatusDone,
	}

	history := new(mockVisitHistory)
	history.On("History", mock.Anything, "p-1").Return([]entities.VisitHistoryEntry{
		pending, canceled, doneNoOutcome,
		doneVisit(t, "2025-10-20", true),
	}, nil)

	calc := services.NewAttendanceScoreCalculator(history)
	score, err := calc.Score(context.Background(), "p-1", day(t, "2026-01-01"))

	require.NoError(t, err)
	assert.InDelta(t, 100.0, score, 1e-9)
}

func TestAttendanceScore_HistoryReadFailure(t *testing.T) {
	history := new(mockVisitHistory)
	history.On("History", mock.Anything, "p-1").Return(nil, assert.AnError)

	calc := services.NewAttendanceScoreCalculator(history)
	_, err := calc.Score(context.Background(), "p-1", day(t, "2026-01-01"))

	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeExternal))
}

// memoryCache is a map-backed CacheProvider for decorator tests.
type memoryCache struct {
	data map[string][]byte
	sets int
}

func newMemoryCache() *memoryCache {
	return &memoryCache{data: make(map[string][]byte)}
}

func (c *memoryCache) Get(ctx context.Context, key string) ([]byte, error) {
	if v, ok := c.data[key]; ok {
		return v, nil
	}
	return nil, apperrors.NewNotFoundError("cache miss")
}

func (c *memoryCache) Set(ctx context.Context, key string, value []byte, expirationSeconds int) error {
	c.data[key] = value
	c.sets++
	return nil
}

func (c *memoryCache) Delete(ctx context.Context, key string) error {
	delete(c.data, key)
	return nil
}

func (c *memoryCache) Exists(ctx context.Context, key string) (bool, error) {
	_, ok := c.data[key]
	return ok, nil
}

func TestSnapshotScoreCache(t *testing.T) {
	history := new(mockVisitHistory)
	history.On("History", mock.Anything, "p-1").Return([]entities.VisitHistoryEntry{
		doneVisit(t, "2025-09-01", true),
	}, nil).Once()

	cache := newMemoryCache()
	scorer := services.NewSnapshotScoreCache(services.NewAttendanceScoreCalculator(history), cache, 300)

	cutoff := day(t, "2026-01-10")

	first, err := scorer.Score(context.Background(), "p-1", cutoff)
	require.NoError(t, err)
	assert.InDelta(t, 100.0, first, 1e-9)
	assert.Equal(t, 1, cache.sets)

	// Second call on the same day is served from the snapshot; the Once
	// expectation above fails the test if history is read again.
	second, err := scorer.Score(context.Background(), "p-1", cutoff)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	history.AssertExpectations(t)
}
