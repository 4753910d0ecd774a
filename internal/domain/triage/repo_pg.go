package triage

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type repoPG struct{ pool *pgxpool.Pool }

// NewRepoPG returns a Postgres-backed Repository.
func NewRepoPG(pool *pgxpool.Pool) Repository { return &repoPG{pool: pool} }

const symptomCols = `id, patient_id, symptoms, pain_score, condition, category,
	confidence, urgency, recommendations, next_steps, degraded, created_at`

func (r *repoPG) scanSymptom(row pgx.Row) (*SymptomAnalysis, error) {
	var a SymptomAnalysis
	err := row.Scan(&a.ID, &a.PatientID, &a.Symptoms, &a.PainScore, &a.Condition, &a.Category,
		&a.Confidence, &a.Urgency, &a.Recommendations, &a.NextSteps, &a.Degraded, &a.CreatedAt)
	return &a, err
}

func (r *repoPG) CreateSymptomAnalysis(ctx context.Context, a *SymptomAnalysis) error {
	a.ID = uuid.New()
	_, err := r.pool.Exec(ctx, `
		INSERT INTO symptom_analyses (id, patient_id, symptoms, pain_score, condition, category,
			confidence, urgency, recommendations, next_steps, degraded)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`,
		a.ID, a.PatientID, a.Symptoms, a.PainScore, a.Condition, a.Category,
		a.Confidence, a.Urgency, a.Recommendations, a.NextSteps, a.Degraded)
	return err
}

func (r *repoPG) ListSymptomAnalyses(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*SymptomAnalysis, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM symptom_analyses WHERE patient_id = $1`, patientID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.pool.Query(ctx, `SELECT `+symptomCols+` FROM symptom_analyses
		WHERE patient_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`, patientID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*SymptomAnalysis
	for rows.Next() {
		a, err := r.scanSymptom(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, a)
	}
	return items, total, rows.Err()
}

const reportCols = `id, patient_id, report_type, summary, abnormal_count, severe_count, created_at`

func (r *repoPG) scanReport(row pgx.Row) (*ReportRecord, error) {
	var rec ReportRecord
	err := row.Scan(&rec.ID, &rec.PatientID, &rec.ReportType, &rec.Summary,
		&rec.AbnormalCount, &rec.SevereCount, &rec.CreatedAt)
	return &rec, err
}

func (r *repoPG) CreateReportRecord(ctx context.Context, rec *ReportRecord) error {
	rec.ID = uuid.New()
	_, err := r.pool.Exec(ctx, `
		INSERT INTO report_analyses (id, patient_id, report_type, summary, abnormal_count, severe_count)
		VALUES ($1,$2,$3,$4,$5,$6)`,
		rec.ID, rec.PatientID, rec.ReportType, rec.Summary, rec.AbnormalCount, rec.SevereCount)
	return err
}

func (r *repoPG) ListReportRecords(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*ReportRecord, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM report_analyses WHERE patient_id = $1`, patientID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.pool.Query(ctx, `SELECT `+reportCols+` FROM report_analyses
		WHERE patient_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`, patientID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*ReportRecord
	for rows.Next() {
		rec, err := r.scanReport(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, rec)
	}
	return items, total, rows.Err()
}
