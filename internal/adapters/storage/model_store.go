package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/healthsphere/noshow/backend/internal/domain/entities"
	"github.com/healthsphere/noshow/backend/internal/domain/repositories"
	apperrors "github.com/healthsphere/noshow/backend/pkg/errors"
)

const activePointerFile = "active_version.txt"

// FileModelStore persists model artifacts as JSON files in a directory, one
// file per version plus a small pointer file naming the active version. The
// layout survives restarts: a valid artifact on disk means no retraining on
// startup.
type FileModelStore struct {
	dir string
}

// NewFileModelStore creates a model store rooted at dir, creating the
// directory if needed.
func NewFileModelStore(dir string) (repositories.ModelStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create model artifact directory: %w", err)
	}
	return &FileModelStore{dir: dir}, nil
}

// Save persists a model artifact and, when it is active, repoints the
// active-version file. The artifact is written to a temp file and renamed so
// a crash never leaves a torn artifact behind.
func (s *FileModelStore) Save(_ context.Context, version *entities.ModelVersion) error {
	data, err := json.MarshalIndent(version, "", "  ")
	if err != nil {
		return apperrors.NewInternalError("failed to encode model artifact", err)
	}

	path := s.artifactPath(version.Version)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return apperrors.NewInternalError("failed to write model artifact", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return apperrors.NewInternalError("failed to finalize model artifact", err)
	}

	if version.Status == entities.ModelStatusActive {
		pointer := filepath.Join(s.dir, activePointerFile)
		if err := os.WriteFile(pointer, []byte(strconv.Itoa(version.Version)), 0o644); err != nil {
			return apperrors.NewInternalError("failed to write active-version pointer", err)
		}
	}

	return nil
}

// LoadActive returns the persisted active version, or nil when the store is
// empty or the pointer is dangling.
func (s *FileModelStore) LoadActive(_ context.Context) (*entities.ModelVersion, error) {
	pointer := filepath.Join(s.dir, activePointerFile)
	data, err := os.ReadFile(pointer)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to read active-version pointer", err)
	}

	ordinal, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return nil, apperrors.NewInternalError("malformed active-version pointer", err)
	}

	version, err := s.load(ordinal)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return version, nil
}

// List returns all persisted versions in ascending version order.
func (s *FileModelStore) List(_ context.Context) ([]*entities.ModelVersion, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list model artifacts", err)
	}

	var versions []*entities.ModelVersion
	for _, entry := range entries {
		name := entry.Name()
		if !strings.HasPrefix(name, "model_v") || !strings.HasSuffix(name, ".json") {
			continue
		}
		ordinal, err := strconv.Atoi(strings.TrimSuffix(strings.TrimPrefix(name, "model_v"), ".json"))
		if err != nil {
			continue
		}
		version, err := s.load(ordinal)
		if err != nil {
			return nil, err
		}
		versions = append(versions, version)
	}

	sort.Slice(versions, func(i, j int) bool {
		return versions[i].Version < versions[j].Version
	})
	return versions, nil
}

func (s *FileModelStore) artifactPath(ordinal int) string {
	return filepath.Join(s.dir, fmt.Sprintf("model_v%d.json", ordinal))
}

func (s *FileModelStore) load(ordinal int) (*entities.ModelVersion, error) {
	data, err := os.ReadFile(s.artifactPath(ordinal))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, err
		}
		return nil, apperrors.NewInternalError("failed to read model artifact", err)
	}

	var version entities.ModelVersion
	if err := json.Unmarshal(data, &version); err != nil {
		return nil, apperrors.NewInternalError("failed to decode model artifact", err)
	}
	return &version, nil
}
