package analytics

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Reporting periods accepted by the dashboard endpoints.
var periods = map[string]time.Duration{
	"24h": 24 * time.Hour,
	"7d":  7 * 24 * time.Hour,
	"30d": 30 * 24 * time.Hour,
	"90d": 90 * 24 * time.Hour,
}

const DefaultPeriod = "7d"

func periodDuration(period string) (time.Duration, error) {
	if period == "" {
		period = DefaultPeriod
	}
	d, ok := periods[period]
	if !ok {
		return 0, fmt.Errorf("invalid period %q", period)
	}
	return d, nil
}

type Overview struct {
	TotalPatients     int `json:"total_patients"`
	TotalDoctors      int `json:"total_doctors"`
	Consultations     int `json:"consultations"`
	ActiveEmergencies int `json:"active_emergencies"`
	SymptomAnalyses   int `json:"symptom_analyses"`
	HealthAlerts      int `json:"health_alerts"`
}

type ConsultationStats struct {
	Total     int            `json:"total"`
	Completed int            `json:"completed"`
	Cancelled int            `json:"cancelled"`
	Scheduled int            `json:"scheduled"`
	ByType    map[string]int `json:"by_type"`
}

type EmergencyStats struct {
	TotalAlerts          int            `json:"total_alerts"`
	Active               int            `json:"active"`
	Resolved             int            `json:"resolved"`
	AmbulanceDispatches  int            `json:"ambulance_dispatches"`
	BySeverity           map[string]int `json:"by_severity"`
	AvgResolutionMinutes float64        `json:"avg_resolution_minutes"`
}

type TriageStats struct {
	TotalAnalyses int            `json:"total_analyses"`
	Degraded      int            `json:"degraded"`
	ByUrgency     map[string]int `json:"by_urgency"`
	ByCategory    map[string]int `json:"by_category"`
}

type HealthStats struct {
	Records          int            `json:"records"`
	Alerts           int            `json:"alerts"`
	AlertsBySeverity map[string]int `json:"alerts_by_severity"`
}

// Dashboard bundles all sections for one reporting period.
type Dashboard struct {
	Period        string            `json:"period"`
	Overview      Overview          `json:"overview"`
	Consultations ConsultationStats `json:"consultations"`
	Emergency     EmergencyStats    `json:"emergency"`
	Triage        TriageStats       `json:"triage"`
	Health        HealthStats       `json:"health"`
}

type DoctorAnalytics struct {
	DoctorID            uuid.UUID `json:"doctor_id"`
	Period              string    `json:"period"`
	Consultations       int       `json:"consultations"`
	Completed           int       `json:"completed"`
	Cancelled           int       `json:"cancelled"`
	ResolvedEmergencies int       `json:"resolved_emergencies"`
}

// VitalTrend summarises one metric's readings over a period.
type VitalTrend struct {
	Metric  string  `json:"metric"`
	Samples int     `json:"samples"`
	Min     float64 `json:"min"`
	Avg     float64 `json:"avg"`
	Max     float64 `json:"max"`
}

type PatientTrends struct {
	PatientID uuid.UUID    `json:"patient_id"`
	Period    string       `json:"period"`
	Trends    []VitalTrend `json:"trends"`
}
