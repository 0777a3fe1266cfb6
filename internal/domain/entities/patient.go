package entities

import (
	"time"
)

// Sex represents a patient's recorded sex
type Sex string

const (
	SexMale   Sex = "male"
	SexFemale Sex = "female"
)

// EncodeSex maps a patient's sex onto the binary feature encoding.
// Canonical mapping: male -> 0, female -> 1. Unknown values fall back to 0.
func EncodeSex(s Sex) float64 {
	if s == SexFemale {
		return 1
	}
	return 0
}

// Patient represents a patient record as read from the visit-management subsystem.
// The core treats patients as read-only input to feature computation.
type Patient struct {
	ID       string `json:"id" db:"id"`
	FullName string `json:"full_name" db:"full_name"`
	Age      *int   `json:"age" db:"age"`
	Sex      Sex    `json:"sex" db:"sex"`

	// AttendanceScore is an advisory snapshot of the patient's historical
	// show-up rate (0-100). It is not the source of truth for training or
	// prediction; the score is recomputed from visit history at use time.
	AttendanceScore float64   `json:"attendance_score" db:"attendance_score"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
}
