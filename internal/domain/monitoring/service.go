package monitoring

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/92kareeem/healthai/internal/domain/triage"
)

// VitalsEvaluator scores a vitals reading. Satisfied by *triage.Service.
type VitalsEvaluator interface {
	CheckVitals(vitals map[string]float64) triage.VitalsResult
}

// EmergencyRaiser escalates a reading that scored as an emergency.
// Satisfied by *emergency.Service; nil disables escalation.
type EmergencyRaiser interface {
	RaiseVitalsEmergency(ctx context.Context, patientID uuid.UUID, res triage.VitalsResult) error
}

type Service struct {
	repo      Repository
	evaluator VitalsEvaluator
	emergency EmergencyRaiser
	log       zerolog.Logger
}

func NewService(repo Repository, evaluator VitalsEvaluator, emergency EmergencyRaiser, log zerolog.Logger) *Service {
	return &Service{repo: repo, evaluator: evaluator, emergency: emergency, log: log}
}

// Plausibility bounds for recorded measurements. Values outside these are
// rejected as entry errors rather than treated as clinical findings.
type measurementBound struct {
	min, max float64
}

var measurementBounds = map[string]measurementBound{
	"heart_rate":        {30, 200},
	"systolic_bp":       {70, 250},
	"diastolic_bp":      {40, 150},
	"temperature":       {90, 110},
	"oxygen_saturation": {0, 100},
	"weight":            {10, 500},
	"height":            {50, 250},
}

type RecordInput struct {
	HeartRate        *float64 `json:"heart_rate"`
	SystolicBP       *float64 `json:"systolic_bp"`
	DiastolicBP      *float64 `json:"diastolic_bp"`
	Temperature      *float64 `json:"temperature"`
	OxygenSaturation *float64 `json:"oxygen_saturation"`
	Weight           *float64 `json:"weight"`
	Height           *float64 `json:"height"`
	Notes            string   `json:"notes"`
}

// RecordResult bundles the stored record with its vitals evaluation and any
// alert that the evaluation raised.
type RecordResult struct {
	Record     *HealthRecord       `json:"record"`
	Evaluation triage.VitalsResult `json:"evaluation"`
	Alert      *HealthAlert        `json:"alert,omitempty"`
}

// CreateRecord validates and stores a reading, evaluates it, and raises a
// health alert when the reading scores at medium or above. Emergency-level
// readings are also escalated.
func (s *Service) CreateRecord(ctx context.Context, patientID uuid.UUID, in RecordInput) (*RecordResult, error) {
	if patientID == uuid.Nil {
		return nil, fmt.Errorf("patient_id is required")
	}
	if err := validateInput(in); err != nil {
		return nil, err
	}
	if !hasMeasurement(in) {
		return nil, fmt.Errorf("at least one measurement is required")
	}

	rec := &HealthRecord{
		PatientID:        patientID,
		HeartRate:        in.HeartRate,
		SystolicBP:       in.SystolicBP,
		DiastolicBP:      in.DiastolicBP,
		Temperature:      in.Temperature,
		OxygenSaturation: in.OxygenSaturation,
		Weight:           in.Weight,
		Height:           in.Height,
		Notes:            in.Notes,
	}
	if err := s.repo.CreateRecord(ctx, rec); err != nil {
		return nil, fmt.Errorf("store health record: %w", err)
	}

	res := s.evaluator.CheckVitals(vitalsMap(in))

	result := &RecordResult{Record: rec, Evaluation: res}
	if res.Urgency >= triage.SeverityMedium {
		alert := &HealthAlert{
			PatientID:  patientID,
			RecordID:   rec.ID,
			Severity:   res.Urgency.String(),
			Message:    res.RecommendedAction,
			Indicators: indicatorNames(res),
		}
		if err := s.repo.CreateAlert(ctx, alert); err != nil {
			return nil, fmt.Errorf("store health alert: %w", err)
		}
		result.Alert = alert

		s.log.Warn().
			Str("patient_id", patientID.String()).
			Str("severity", alert.Severity).
			Strs("indicators", alert.Indicators).
			Msg("health alert raised")
	}

	if res.IsEmergency && s.emergency != nil {
		if err := s.emergency.RaiseVitalsEmergency(ctx, patientID, res); err != nil {
			// The record and alert are already stored; escalation failure
			// must not lose them.
			s.log.Error().Err(err).
				Str("patient_id", patientID.String()).
				Msg("emergency escalation failed")
		}
	}

	return result, nil
}

func (s *Service) ListRecords(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*HealthRecord, int, error) {
	return s.repo.ListRecords(ctx, patientID, limit, offset)
}

func (s *Service) ListAlerts(ctx context.Context, patientID uuid.UUID, severity string, limit, offset int) ([]*HealthAlert, int, error) {
	if severity != "" && triage.ParseSeverity(severity) == triage.SeverityNone {
		return nil, 0, fmt.Errorf("invalid severity %q", severity)
	}
	return s.repo.ListAlerts(ctx, patientID, severity, limit, offset)
}

func (s *Service) AcknowledgeAlert(ctx context.Context, id uuid.UUID) error {
	return s.repo.AcknowledgeAlert(ctx, id)
}

func validateInput(in RecordInput) error {
	checks := []struct {
		name  string
		value *float64
	}{
		{"heart_rate", in.HeartRate},
		{"systolic_bp", in.SystolicBP},
		{"diastolic_bp", in.DiastolicBP},
		{"temperature", in.Temperature},
		{"oxygen_saturation", in.OxygenSaturation},
		{"weight", in.Weight},
		{"height", in.Height},
	}
	for _, c := range checks {
		if c.value == nil {
			continue
		}
		b := measurementBounds[c.name]
		if *c.value < b.min || *c.value > b.max {
			return fmt.Errorf("%s %.1f outside plausible range %.0f-%.0f", c.name, *c.value, b.min, b.max)
		}
	}
	return nil
}

func hasMeasurement(in RecordInput) bool {
	return in.HeartRate != nil || in.SystolicBP != nil || in.DiastolicBP != nil ||
		in.Temperature != nil || in.OxygenSaturation != nil || in.Weight != nil || in.Height != nil
}

// vitalsMap translates the stored column names to the evaluator's signal
// names. Weight and height are plausibility-checked but not scored.
func vitalsMap(in RecordInput) map[string]float64 {
	m := map[string]float64{}
	if in.HeartRate != nil {
		m["heart_rate"] = *in.HeartRate
	}
	if in.SystolicBP != nil {
		m["blood_pressure_systolic"] = *in.SystolicBP
	}
	if in.DiastolicBP != nil {
		m["blood_pressure_diastolic"] = *in.DiastolicBP
	}
	if in.Temperature != nil {
		m["temperature"] = *in.Temperature
	}
	if in.OxygenSaturation != nil {
		m["oxygen_saturation"] = *in.OxygenSaturation
	}
	return m
}

func indicatorNames(res triage.VitalsResult) []string {
	names := make([]string, 0, len(res.Indicators))
	for _, f := range res.Indicators {
		names = append(names, fmt.Sprintf("%s %s (%.1f)", f.Vital, f.Condition, f.Value))
	}
	return names
}
