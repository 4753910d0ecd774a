package consultation

import (
	"time"

	"github.com/google/uuid"
)

const (
	TypeRegular      = "regular"
	TypeEmergency    = "emergency"
	TypeFollowUp     = "follow_up"
	TypeTelemedicine = "telemedicine"

	StatusScheduled = "scheduled"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"

	MinDurationMinutes = 5
	MaxDurationMinutes = 180
)

func validType(t string) bool {
	switch t {
	case TypeRegular, TypeEmergency, TypeFollowUp, TypeTelemedicine:
		return true
	}
	return false
}

type Consultation struct {
	ID              uuid.UUID  `db:"id" json:"id"`
	PatientID       uuid.UUID  `db:"patient_id" json:"patient_id"`
	DoctorID        uuid.UUID  `db:"doctor_id" json:"doctor_id"`
	Type            string     `db:"type" json:"type"`
	Status          string     `db:"status" json:"status"`
	ScheduledAt     time.Time  `db:"scheduled_at" json:"scheduled_at"`
	DurationMinutes int        `db:"duration_minutes" json:"duration_minutes"`
	Reason          string     `db:"reason" json:"reason"`
	Notes           string     `db:"notes" json:"notes,omitempty"`
	Diagnosis       string     `db:"diagnosis" json:"diagnosis,omitempty"`
	CompletedAt     *time.Time `db:"completed_at" json:"completed_at,omitempty"`
	CreatedAt       time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time  `db:"updated_at" json:"updated_at"`
}
