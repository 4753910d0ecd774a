package triage

import (
	"time"

	"github.com/google/uuid"
)

// SymptomAnalysis maps to the symptom_analyses table.
type SymptomAnalysis struct {
	ID              uuid.UUID `db:"id" json:"id"`
	PatientID       uuid.UUID `db:"patient_id" json:"patient_id"`
	Symptoms        string    `db:"symptoms" json:"symptoms"`
	PainScore       int       `db:"pain_score" json:"pain_score"`
	Condition       string    `db:"condition" json:"condition"`
	Category        string    `db:"category" json:"category"`
	Confidence      float64   `db:"confidence" json:"confidence"`
	Urgency         string    `db:"urgency" json:"urgency"`
	Recommendations []string  `db:"recommendations" json:"recommendations"`
	NextSteps       []string  `db:"next_steps" json:"next_steps"`
	Degraded        bool      `db:"degraded" json:"degraded"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
}

// ReportRecord maps to the report_analyses table.
type ReportRecord struct {
	ID            uuid.UUID `db:"id" json:"id"`
	PatientID     uuid.UUID `db:"patient_id" json:"patient_id"`
	ReportType    string    `db:"report_type" json:"report_type"`
	Summary       string    `db:"summary" json:"summary"`
	AbnormalCount int       `db:"abnormal_count" json:"abnormal_count"`
	SevereCount   int       `db:"severe_count" json:"severe_count"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
}
