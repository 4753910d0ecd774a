package triage

import (
	"context"

	"github.com/google/uuid"
)

// Repository persists triage analysis results.
type Repository interface {
	CreateSymptomAnalysis(ctx context.Context, a *SymptomAnalysis) error
	ListSymptomAnalyses(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*SymptomAnalysis, int, error)
	CreateReportRecord(ctx context.Context, rec *ReportRecord) error
	ListReportRecords(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*ReportRecord, int, error)
}
