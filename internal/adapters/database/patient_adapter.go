package database

import (
	"context"
	"database/sql"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"

	"github.com/healthsphere/noshow/backend/internal/domain/entities"
	"github.com/healthsphere/noshow/backend/internal/domain/repositories"
	"github.com/healthsphere/noshow/backend/internal/infrastructure/clients/postgres"
	apperrors "github.com/healthsphere/noshow/backend/pkg/errors"
)

// PatientAdapter implements the PatientRepository interface
type PatientAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewPatientAdapter creates a new patient adapter
func NewPatientAdapter(client *postgres.Client) repositories.PatientRepository {
	return &PatientAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// GetByID retrieves a patient by ID
func (a *PatientAdapter) GetByID(ctx context.Context, id string) (*entities.Patient, error) {
	query, args, err := a.db.Select(
		"id", "full_name", "age", "sex", "attendance_score", "created_at",
	).From("patients").
		Where(goqu.Ex{"id": id}).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	patient := &entities.Patient{}
	var age sql.NullInt64
	var sex sql.NullString

	row := a.client.DB().QueryRowContext(ctx, query, args...)
	if err := row.Scan(
		&patient.ID,
		&patient.FullName,
		&age,
		&sex,
		&patient.AttendanceScore,
		&patient.CreatedAt,
	); err != nil {
		if err == sql.ErrNoRows {
			return nil, apperrors.NewNotFoundError("patient not found")
		}
		return nil, apperrors.NewInternalError("failed to get patient", err)
	}

	if age.Valid {
		v := int(age.Int64)
		patient.Age = &v
	}
	if sex.Valid {
		patient.Sex = entities.Sex(sex.String)
	}

	return patient, nil
}
