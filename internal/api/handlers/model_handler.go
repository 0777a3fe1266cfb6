package handlers

import (
	"context"
	"net/http"

	"github.com/healthsphere/noshow/backend/internal/application/services"
	"github.com/healthsphere/noshow/backend/internal/domain/entities"
)

// ModelAdmin defines the operator-facing model operations
type ModelAdmin interface {
	Status() (*services.ModelStatus, error)
	ListVersions(ctx context.Context) ([]*entities.ModelVersion, error)
	ListJobs() []entities.TrainingJob
	RetrainNow() (*entities.TrainingJob, error)
}

// ModelHandler handles operator-facing model status and retrain requests
type ModelHandler struct {
	admin ModelAdmin
}

// NewModelHandler creates a new model handler
func NewModelHandler(admin ModelAdmin) *ModelHandler {
	return &ModelHandler{admin: admin}
}

// Status handles GET /api/model/status
func (h *ModelHandler) Status(w http.ResponseWriter, r *http.Request) {
	status, err := h.admin.Status()
	if err != nil {
		respondWithAppError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, status)
}

// ListVersions handles GET /api/model/versions
func (h *ModelHandler) ListVersions(w http.ResponseWriter, r *http.Request) {
	versions, err := h.admin.ListVersions(r.Context())
	if err != nil {
		respondWithAppError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, versions)
}

// ListJobs handles GET /api/training/jobs
func (h *ModelHandler) ListJobs(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, h.admin.ListJobs())
}

// Retrain handles POST /api/admin/retrain: a forced threshold crossing.
func (h *ModelHandler) Retrain(w http.ResponseWriter, r *http.Request) {
	job, err := h.admin.RetrainNow()
	if err != nil {
		respondWithAppError(w, err)
		return
	}
	respondWithJSON(w, http.StatusAccepted, job)
}
