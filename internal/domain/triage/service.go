package triage

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Service runs the evaluator and persists its results.
type Service struct {
	repo Repository
	ref  *Reference
	log  zerolog.Logger
}

func NewService(repo Repository, ref *Reference, log zerolog.Logger) *Service {
	return &Service{repo: repo, ref: ref, log: log}
}

// Reference exposes the loaded reference tables.
func (s *Service) Reference() *Reference { return s.ref }

// AnalyzeSymptoms evaluates the input and stores the analysis for the patient.
func (s *Service) AnalyzeSymptoms(ctx context.Context, patientID uuid.UUID, in SymptomInput) (*SymptomResult, error) {
	if patientID == uuid.Nil {
		return nil, fmt.Errorf("patient_id is required")
	}
	if in.Symptoms == "" {
		return nil, fmt.Errorf("symptoms text is required")
	}
	if in.PainScore < 0 || in.PainScore > 10 {
		return nil, fmt.Errorf("severity must be between 0 and 10, got %d", in.PainScore)
	}

	result := s.ref.EvaluateSymptoms(in)

	analysis := &SymptomAnalysis{
		PatientID:       patientID,
		Symptoms:        in.Symptoms,
		PainScore:       in.PainScore,
		Condition:       result.Condition,
		Category:        result.Category,
		Confidence:      result.Confidence,
		Urgency:         result.Urgency.String(),
		Recommendations: result.Recommendations,
		NextSteps:       result.NextSteps,
		Degraded:        result.Degraded,
	}
	if err := s.repo.CreateSymptomAnalysis(ctx, analysis); err != nil {
		return nil, fmt.Errorf("store symptom analysis: %w", err)
	}

	s.log.Info().
		Str("patient_id", patientID.String()).
		Str("category", result.Category).
		Str("urgency", result.Urgency.String()).
		Bool("degraded", result.Degraded).
		Msg("symptom analysis")

	return &result, nil
}

// CheckVitals runs the emergency vitals evaluation without persisting.
func (s *Service) CheckVitals(vitals map[string]float64) VitalsResult {
	return s.ref.EvaluateVitals(vitals)
}

// AnalyzeReport evaluates already-extracted report text and stores a summary
// record for the patient.
func (s *Service) AnalyzeReport(ctx context.Context, patientID uuid.UUID, text string) (*ReportAnalysis, error) {
	if patientID == uuid.Nil {
		return nil, fmt.Errorf("patient_id is required")
	}
	if text == "" {
		return nil, fmt.Errorf("report text is required")
	}

	analysis := s.ref.AnalyzeReport(text)

	severe := 0
	for _, f := range analysis.AbnormalFindings {
		if f.Grade == GradeSevere {
			severe++
		}
	}
	rec := &ReportRecord{
		PatientID:     patientID,
		ReportType:    analysis.ReportType,
		Summary:       analysis.Summary,
		AbnormalCount: len(analysis.AbnormalFindings),
		SevereCount:   severe,
	}
	if err := s.repo.CreateReportRecord(ctx, rec); err != nil {
		return nil, fmt.Errorf("store report analysis: %w", err)
	}

	return &analysis, nil
}

// EvaluateLab grades one lab value against the reference ranges.
func (s *Service) EvaluateLab(test string, value float64, demographic string) (*LabFinding, error) {
	return s.ref.EvaluateLabValue(test, value, demographic)
}

func (s *Service) ListSymptomAnalyses(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*SymptomAnalysis, int, error) {
	return s.repo.ListSymptomAnalyses(ctx, patientID, limit, offset)
}

func (s *Service) ListReportRecords(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*ReportRecord, int, error) {
	return s.repo.ListReportRecords(ctx, patientID, limit, offset)
}
