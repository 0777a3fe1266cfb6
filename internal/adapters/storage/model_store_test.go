package storage_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/healthsphere/noshow/backend/internal/adapters/storage"
	"github.com/healthsphere/noshow/backend/internal/domain/entities"
	"github.com/healthsphere/noshow/backend/internal/ml"
)

func storedModel(version int, status entities.ModelStatus) *entities.ModelVersion {
	return &entities.ModelVersion{
		Version:   version,
		TrainedAt: time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC),
		Accuracy:  0.81,
		Scaler: entities.ScalerParams{
			Means:   []float64{36.2, 0.61, 4.8, 0.52, 74.3},
			StdDevs: []float64{11.9, 0.49, 3.1, 0.5, 18.8},
		},
		Classifier: entities.ClassifierParams{
			Weights: []float64{-0.12, 0.08, -0.4, 0.33, 0.91},
			Bias:    0.27,
		},
		Stats:  entities.PopulationStats{MedianAge: 36, ShowRate: 0.79, RowCount: 1200},
		Status: status,
	}
}

func TestFileModelStore_SaveAndLoadActive(t *testing.T) {
	store, err := storage.NewFileModelStore(t.TempDir())
	require.NoError(t, err)

	saved := storedModel(1, entities.ModelStatusActive)
	require.NoError(t, store.Save(context.Background(), saved))

	loaded, err := store.LoadActive(context.Background())
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, saved, loaded)
}

// A reloaded artifact must predict identically to the in-memory model it was
// saved from.
func TestFileModelStore_ReloadedModelPredictsIdentically(t *testing.T) {
	store, err := storage.NewFileModelStore(t.TempDir())
	require.NoError(t, err)

	original := storedModel(1, entities.ModelStatusActive)
	require.NoError(t, store.Save(context.Background(), original))

	reloaded, err := store.LoadActive(context.Background())
	require.NoError(t, err)
	require.NotNil(t, reloaded)

	vectors := []entities.FeatureVector{
		{Age: 25, Sex: 0, LeadDays: 1, ReminderSent: 0, AttendanceScore: 75},
		{Age: 70, Sex: 1, LeadDays: 30, ReminderSent: 1, AttendanceScore: 40},
		{Age: 44, Sex: 1, LeadDays: 9, ReminderSent: 1, AttendanceScore: 100},
	}
	for _, vector := range vectors {
		assert.Equal(t, ml.PredictProbability(original, vector), ml.PredictProbability(reloaded, vector))
	}
}

func TestFileModelStore_LoadActive_EmptyStore(t *testing.T) {
	store, err := storage.NewFileModelStore(t.TempDir())
	require.NoError(t, err)

	loaded, err := store.LoadActive(context.Background())
	require.NoError(t, err)
	assert.Nil(t, loaded)
}

func TestFileModelStore_LoadActive_DanglingPointer(t *testing.T) {
	dir := t.TempDir()
	store, err := storage.NewFileModelStore(dir)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "active_version.txt"), []byte("9"), 0o644))

	loaded, err := store.LoadActive(context.Background())
	require.NoError(t, err)
	assert.Nil(t, loaded)
}

func TestFileModelStore_ArchivedSaveKeepsPointer(t *testing.T) {
	store, err := storage.NewFileModelStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Save(context.Background(), storedModel(1, entities.ModelStatusActive)))
	require.NoError(t, store.Save(context.Background(), storedModel(2, entities.ModelStatusArchived)))

	loaded, err := store.LoadActive(context.Background())
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, 1, loaded.Version)
}

func TestFileModelStore_List(t *testing.T) {
	store, err := storage.NewFileModelStore(t.TempDir())
	require.NoError(t, err)

	// Saved out of order; List returns ascending.
	require.NoError(t, store.Save(context.Background(), storedModel(3, entities.ModelStatusActive)))
	require.NoError(t, store.Save(context.Background(), storedModel(1, entities.ModelStatusArchived)))
	require.NoError(t, store.Save(context.Background(), storedModel(2, entities.ModelStatusArchived)))

	versions, err := store.List(context.Background())
	require.NoError(t, err)
	require.Len(t, versions, 3)
	for i, version := range versions {
		assert.Equal(t, i+1, version.Version)
	}
}

func TestFileModelStore_SaveOverwritesSameVersion(t *testing.T) {
	store, err := storage.NewFileModelStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Save(context.Background(), storedModel(1, entities.ModelStatusActive)))

	archived := storedModel(1, entities.ModelStatusArchived)
	require.NoError(t, store.Save(context.Background(), archived))

	versions, err := store.List(context.Background())
	require.NoError(t, err)
	require.Len(t, versions, 1)
	assert.Equal(t, entities.ModelStatusArchived, versions[0].Status)
}
