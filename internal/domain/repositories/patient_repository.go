package repositories

import (
	"context"

	"github.com/healthsphere/noshow/backend/internal/domain/entities"
)

// PatientRepository reads patient records owned by the visit-management
// subsystem. The prediction core never writes patients.
type PatientRepository interface {
	GetByID(ctx context.Context, id string) (*entities.Patient, error)
}
