package emergency

import (
	"time"

	"github.com/google/uuid"
)

const (
	SourceVitals  = "vitals"
	SourceSymptom = "symptom"
	SourceManual  = "manual"

	StatusActive   = "active"
	StatusResolved = "resolved"

	AmbulanceDispatched = "dispatched"
	AmbulanceEnRoute    = "en_route"
	AmbulanceArrived    = "arrived"
	AmbulanceCancelled  = "cancelled"
)

// Alert is an active emergency for a patient.
type Alert struct {
	ID          uuid.UUID  `db:"id" json:"id"`
	PatientID   uuid.UUID  `db:"patient_id" json:"patient_id"`
	Source      string     `db:"source" json:"source"`
	Severity    string     `db:"severity" json:"severity"`
	Description string     `db:"description" json:"description"`
	Location    string     `db:"location" json:"location,omitempty"`
	Status      string     `db:"status" json:"status"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
	ResolvedAt  *time.Time `db:"resolved_at" json:"resolved_at,omitempty"`
	ResolvedBy  *uuid.UUID `db:"resolved_by" json:"resolved_by,omitempty"`
}

// AmbulanceRequest tracks a dispatched ambulance.
type AmbulanceRequest struct {
	ID         uuid.UUID  `db:"id" json:"id"`
	PatientID  uuid.UUID  `db:"patient_id" json:"patient_id"`
	AlertID    *uuid.UUID `db:"alert_id" json:"alert_id,omitempty"`
	TrackingID string     `db:"tracking_id" json:"tracking_id"`
	Location   string     `db:"location" json:"location"`
	Urgency    string     `db:"urgency" json:"urgency"`
	ETAMinutes int        `db:"eta_minutes" json:"eta_minutes"`
	Status     string     `db:"status" json:"status"`
	CreatedAt  time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time  `db:"updated_at" json:"updated_at"`
}
