package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoad_ModelConfig(t *testing.T) {
	// Setup environment variables
	os.Setenv("MODEL_ARTIFACT_DIR", "/var/lib/noshow/models")
	os.Setenv("RETRAIN_EVERY_N", "25")
	os.Setenv("MODEL_MIN_ACCURACY", "0.7")
	defer func() {
		os.Unsetenv("MODEL_ARTIFACT_DIR")
		os.Unsetenv("RETRAIN_EVERY_N")
		os.Unsetenv("MODEL_MIN_ACCURACY")
	}()

	// Load config
	cfg, err := Load()
	assert.NoError(t, err)

	// Verify model config
	assert.Equal(t, "/var/lib/noshow/models", cfg.Model.ArtifactDir)
	assert.Equal(t, 25, cfg.Model.RetrainEveryN)
	assert.Equal(t, 0.7, cfg.Model.MinAccuracy)
}

func TestLoad_Defaults(t *testing.T) {
	// Ensure env vars are cleared
	os.Unsetenv("MODEL_ARTIFACT_DIR")
	os.Unsetenv("RETRAIN_EVERY_N")
	os.Unsetenv("MODEL_MIN_ACCURACY")

	cfg, err := Load()
	assert.NoError(t, err)

	// Verify defaults
	assert.Equal(t, "./models", cfg.Model.ArtifactDir)
	assert.Equal(t, 10, cfg.Model.RetrainEveryN)
	assert.Equal(t, 0.0, cfg.Model.MinAccuracy)
	assert.Equal(t, "noshow", cfg.Database.Database)
}

func TestLoad_RejectsInvalidThreshold(t *testing.T) {
	os.Setenv("RETRAIN_EVERY_N", "0")
	defer os.Unsetenv("RETRAIN_EVERY_N")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_RejectsOutOfRangeQualityGate(t *testing.T) {
	os.Setenv("MODEL_MIN_ACCURACY", "1.5")
	defer os.Unsetenv("MODEL_MIN_ACCURACY")

	_, err := Load()
	assert.Error(t, err)
}
