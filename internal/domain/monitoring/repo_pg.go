package monitoring

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type repoPG struct{ pool *pgxpool.Pool }

// NewRepoPG returns a Postgres-backed Repository.
func NewRepoPG(pool *pgxpool.Pool) Repository { return &repoPG{pool: pool} }

const recordCols = `id, patient_id, heart_rate, systolic_bp, diastolic_bp, temperature,
	oxygen_saturation, weight, height, notes, created_at`

func scanRecord(row pgx.Row) (*HealthRecord, error) {
	var rec HealthRecord
	err := row.Scan(&rec.ID, &rec.PatientID, &rec.HeartRate, &rec.SystolicBP, &rec.DiastolicBP,
		&rec.Temperature, &rec.OxygenSaturation, &rec.Weight, &rec.Height, &rec.Notes, &rec.CreatedAt)
	return &rec, err
}

func (r *repoPG) CreateRecord(ctx context.Context, rec *HealthRecord) error {
	rec.ID = uuid.New()
	_, err := r.pool.Exec(ctx, `
		INSERT INTO health_records (id, patient_id, heart_rate, systolic_bp, diastolic_bp,
			temperature, oxygen_saturation, weight, height, notes)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
		rec.ID, rec.PatientID, rec.HeartRate, rec.SystolicBP, rec.DiastolicBP,
		rec.Temperature, rec.OxygenSaturation, rec.Weight, rec.Height, rec.Notes)
	return err
}

func (r *repoPG) ListRecords(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*HealthRecord, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM health_records WHERE patient_id = $1`, patientID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.pool.Query(ctx, `SELECT `+recordCols+` FROM health_records
		WHERE patient_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`, patientID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*HealthRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, rec)
	}
	return items, total, rows.Err()
}

const alertCols = `id, patient_id, record_id, severity, message, indicators, acknowledged, created_at, acked_at`

func scanAlert(row pgx.Row) (*HealthAlert, error) {
	var a HealthAlert
	err := row.Scan(&a.ID, &a.PatientID, &a.RecordID, &a.Severity, &a.Message,
		&a.Indicators, &a.Acknowledged, &a.CreatedAt, &a.AckedAt)
	return &a, err
}

func (r *repoPG) CreateAlert(ctx context.Context, a *HealthAlert) error {
	a.ID = uuid.New()
	_, err := r.pool.Exec(ctx, `
		INSERT INTO health_alerts (id, patient_id, record_id, severity, message, indicators)
		VALUES ($1,$2,$3,$4,$5,$6)`,
		a.ID, a.PatientID, a.RecordID, a.Severity, a.Message, a.Indicators)
	return err
}

func (r *repoPG) ListAlerts(ctx context.Context, patientID uuid.UUID, severity string, limit, offset int) ([]*HealthAlert, int, error) {
	where := `WHERE patient_id = $1`
	args := []interface{}{patientID}
	if severity != "" {
		where += ` AND severity = $2`
		args = append(args, severity)
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM health_alerts `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	n := len(args)
	query := fmt.Sprintf(`SELECT %s FROM health_alerts %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		alertCols, where, n+1, n+2)
	args = append(args, limit, offset)
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*HealthAlert
	for rows.Next() {
		a, err := scanAlert(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, a)
	}
	return items, total, rows.Err()
}

func (r *repoPG) AcknowledgeAlert(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE health_alerts SET acknowledged = TRUE, acked_at = NOW()
		WHERE id = $1 AND NOT acknowledged`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
