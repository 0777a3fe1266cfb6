package entities

import (
	"time"
)

// VisitStatus represents the lifecycle status of a scheduled visit
type VisitStatus string

const (
	VisitStatusPending  VisitStatus = "pending"
	VisitStatusDone     VisitStatus = "done"
	VisitStatusCanceled VisitStatus = "canceled"
)

// PredictionLabel is the predicted attendance outcome for a visit
type PredictionLabel string

const (
	LabelShow   PredictionLabel = "show"
	LabelNoShow PredictionLabel = "no-show"
)

// Prediction is the attendance prediction embedded into a visit record at
// creation time. Once embedded it is never recomputed or mutated: the stored
// ModelVersion records which model produced it, even after later retraining.
type Prediction struct {
	Label        PredictionLabel `json:"label" db:"predicted_label"`
	Probability  int             `json:"probability" db:"predicted_probability"`
	ModelVersion string          `json:"model_version" db:"prediction_model_version"`
	PredictedAt  time.Time       `json:"predicted_at" db:"predicted_at"`
}

// Visit represents a scheduled appointment
type Visit struct {
	ID            string      `json:"id" db:"id"`
	PatientID     string      `json:"patient_id" db:"patient_id"`
	BookingDate   time.Time   `json:"booking_date" db:"booking_date"`
	ScheduledDate time.Time   `json:"scheduled_date" db:"scheduled_date"`
	ReminderSent  bool        `json:"reminder_sent" db:"reminder_sent"`
	Status        VisitStatus `json:"status" db:"status"`

	// Outcome fields, unset until the visit is marked done.
	ShowedUp *bool `json:"showed_up,omitempty" db:"showed_up"`
	WasLate  *bool `json:"was_late,omitempty" db:"was_late"`

	Prediction *Prediction `json:"prediction,omitempty"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// VisitHistoryEntry is the slice of a past visit that feature computation
// reads: when it was scheduled, whether it completed, and its outcome.
type VisitHistoryEntry struct {
	ScheduledDate time.Time   `json:"scheduled_date" db:"scheduled_date"`
	Status        VisitStatus `json:"status" db:"status"`
	ShowedUp      *bool       `json:"showed_up" db:"showed_up"`
}

// LeadDays returns the whole-day scheduling interval between a booking date
// and a scheduled date, clamped at zero for same-day or inverted inputs.
func LeadDays(bookingDate, scheduledDate time.Time) int {
	b := bookingDate.UTC().Truncate(24 * time.Hour)
	s := scheduledDate.UTC().Truncate(24 * time.Hour)
	days := int(s.Sub(b).Hours() / 24)
	if days < 0 {
		return 0
	}
	return days
}
