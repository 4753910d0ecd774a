package monitoring

import (
	"time"

	"github.com/google/uuid"
)

// HealthRecord is one self-reported or device-reported vitals reading.
// Nil fields were not measured.
type HealthRecord struct {
	ID               uuid.UUID `db:"id" json:"id"`
	PatientID        uuid.UUID `db:"patient_id" json:"patient_id"`
	HeartRate        *float64  `db:"heart_rate" json:"heart_rate,omitempty"`
	SystolicBP       *float64  `db:"systolic_bp" json:"systolic_bp,omitempty"`
	DiastolicBP      *float64  `db:"diastolic_bp" json:"diastolic_bp,omitempty"`
	Temperature      *float64  `db:"temperature" json:"temperature,omitempty"`
	OxygenSaturation *float64  `db:"oxygen_saturation" json:"oxygen_saturation,omitempty"`
	Weight           *float64  `db:"weight" json:"weight,omitempty"`
	Height           *float64  `db:"height" json:"height,omitempty"`
	Notes            string    `db:"notes" json:"notes,omitempty"`
	CreatedAt        time.Time `db:"created_at" json:"created_at"`
}

// HealthAlert is raised when a recorded reading scores as abnormal.
type HealthAlert struct {
	ID           uuid.UUID  `db:"id" json:"id"`
	PatientID    uuid.UUID  `db:"patient_id" json:"patient_id"`
	RecordID     uuid.UUID  `db:"record_id" json:"record_id"`
	Severity     string     `db:"severity" json:"severity"`
	Message      string     `db:"message" json:"message"`
	Indicators   []string   `db:"indicators" json:"indicators"`
	Acknowledged bool       `db:"acknowledged" json:"acknowledged"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	AckedAt      *time.Time `db:"acked_at" json:"acked_at,omitempty"`
}
