package entities

import (
	"time"
)

// RawVisitRow is one uncleaned candidate training row, drawn either from the
// bulk historical dataset or from outcomes accumulated live since the last
// training run. Pointer fields are nil when the source did not record them.
type RawVisitRow struct {
	VisitID       string      `json:"visit_id" db:"visit_id"`
	PatientID     string      `json:"patient_id" db:"patient_id"`
	Age           *int        `json:"age" db:"age"`
	Sex           Sex         `json:"sex" db:"sex"`
	BookingDate   *time.Time  `json:"booking_date" db:"booking_date"`
	ScheduledDate *time.Time  `json:"scheduled_date" db:"scheduled_date"`
	Status        VisitStatus `json:"status" db:"status"`
	ShowedUp      *bool       `json:"showed_up" db:"showed_up"`
	ReminderSent  *bool       `json:"reminder_sent" db:"reminder_sent"`
}
