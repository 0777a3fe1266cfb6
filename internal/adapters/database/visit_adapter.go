package database

import (
	"context"
	"database/sql"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"

	"github.com/healthsphere/noshow/backend/internal/domain/entities"
	"github.com/healthsphere/noshow/backend/internal/infrastructure/clients/postgres"
	apperrors "github.com/healthsphere/noshow/backend/pkg/errors"
)

// VisitAdapter implements the visit-side repositories: history reads for
// attendance scoring, raw-row reads for the training pipeline, and the
// single embedded-prediction write.
type VisitAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewVisitAdapter creates a new visit adapter
func NewVisitAdapter(client *postgres.Client) *VisitAdapter {
	return &VisitAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// History returns a patient's visit history ordered by scheduled date.
func (a *VisitAdapter) History(ctx context.Context, patientID string) ([]entities.VisitHistoryEntry, error) {
	query, args, err := a.db.Select(
		"scheduled_date", "status", "showed_up",
	).From("visits").
		Where(goqu.Ex{"patient_id": patientID}).
		Order(goqu.I("scheduled_date").Asc()).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to query visit history", err)
	}
	defer rows.Close()

	var entries []entities.VisitHistoryEntry
	for rows.Next() {
		var entry entities.VisitHistoryEntry
		var showedUp sql.NullBool

		if err := rows.Scan(&entry.ScheduledDate, &entry.Status, &showedUp); err != nil {
			return nil, apperrors.NewInternalError("failed to scan visit history row", err)
		}
		if showedUp.Valid {
			entry.ShowedUp = &showedUp.Bool
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("failed to iterate visit history", err)
	}

	return entries, nil
}

// BulkHistoricalRows returns the full historical dataset used for bootstrap
// and retraining.
func (a *VisitAdapter) BulkHistoricalRows(ctx context.Context) ([]entities.RawVisitRow, error) {
	query, args, err := a.rawRowSelect().ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}
	return a.queryRawRows(ctx, query, args)
}

// LiveOutcomeRows returns rows whose outcome was recorded after the given
// time, i.e. outcomes accumulated since the last successful training.
func (a *VisitAdapter) LiveOutcomeRows(ctx context.Context, since time.Time) ([]entities.RawVisitRow, error) {
	ds := a.rawRowSelect().Where(
		goqu.I("status").Eq(string(entities.VisitStatusDone)),
		goqu.I("updated_at").Gt(since),
	)
	query, args, err := ds.ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}
	return a.queryRawRows(ctx, query, args)
}

// EmbedPrediction writes the immutable prediction columns onto a visit. The
// guard on prediction_model_version keeps an already-embedded prediction
// from ever being overwritten.
func (a *VisitAdapter) EmbedPrediction(ctx context.Context, visitID string, prediction *entities.Prediction) error {
	query, args, err := a.db.Update("visits").
		Set(goqu.Record{
			"predicted_label":          string(prediction.Label),
			"predicted_probability":    prediction.Probability,
			"prediction_model_version": prediction.ModelVersion,
			"predicted_at":             prediction.PredictedAt,
		}).
		Where(
			goqu.Ex{"id": visitID},
			goqu.I("prediction_model_version").IsNull(),
		).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build update query", err)
	}

	result, err := a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		return apperrors.NewInternalError("failed to embed prediction", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return apperrors.NewInternalError("failed to check update result", err)
	}
	if affected == 0 {
		return apperrors.NewValidationError("visit not found or prediction already embedded")
	}

	return nil
}

func (a *VisitAdapter) rawRowSelect() *goqu.SelectDataset {
	return a.db.Select(
		goqu.I("v.id").As("visit_id"),
		goqu.I("v.patient_id"),
		goqu.I("p.age"),
		goqu.I("p.sex"),
		goqu.I("v.booking_date"),
		goqu.I("v.scheduled_date"),
		goqu.I("v.status"),
		goqu.I("v.showed_up"),
		goqu.I("v.reminder_sent"),
	).From(goqu.T("visits").As("v")).
		LeftJoin(
			goqu.T("patients").As("p"),
			goqu.On(goqu.I("v.patient_id").Eq(goqu.I("p.id"))),
		).
		Order(goqu.I("v.scheduled_date").Asc())
}

func (a *VisitAdapter) queryRawRows(ctx context.Context, query string, args []interface{}) ([]entities.RawVisitRow, error) {
	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to query training rows", err)
	}
	defer rows.Close()

	var out []entities.RawVisitRow
	for rows.Next() {
		var row entities.RawVisitRow
		var age sql.NullInt64
		var sex sql.NullString
		var bookingDate, scheduledDate sql.NullTime
		var showedUp, reminderSent sql.NullBool

		if err := rows.Scan(
			&row.VisitID,
			&row.PatientID,
			&age,
			&sex,
			&bookingDate,
			&scheduledDate,
			&row.Status,
			&showedUp,
			&reminderSent,
		); err != nil {
			return nil, apperrors.NewInternalError("failed to scan training row", err)
		}

		if age.Valid {
			v := int(age.Int64)
			row.Age = &v
		}
		if sex.Valid {
			row.Sex = entities.Sex(sex.String)
		}
		if bookingDate.Valid {
			t := bookingDate.Time
			row.BookingDate = &t
		}
		if scheduledDate.Valid {
			t := scheduledDate.Time
			row.ScheduledDate = &t
		}
		if showedUp.Valid {
			row.ShowedUp = &showedUp.Bool
		}
		if reminderSent.Valid {
			row.ReminderSent = &reminderSent.Bool
		}

		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("failed to iterate training rows", err)
	}

	return out, nil
}
