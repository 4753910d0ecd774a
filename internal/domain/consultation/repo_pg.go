package consultation

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type repoPG struct{ pool *pgxpool.Pool }

// NewRepoPG returns a Postgres-backed Repository.
func NewRepoPG(pool *pgxpool.Pool) Repository { return &repoPG{pool: pool} }

const consultationCols = `id, patient_id, doctor_id, type, status, scheduled_at,
	duration_minutes, reason, notes, diagnosis, completed_at, created_at, updated_at`

func scanConsultation(row pgx.Row) (*Consultation, error) {
	var c Consultation
	err := row.Scan(&c.ID, &c.PatientID, &c.DoctorID, &c.Type, &c.Status, &c.ScheduledAt,
		&c.DurationMinutes, &c.Reason, &c.Notes, &c.Diagnosis, &c.CompletedAt, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return &c, err
}

func (r *repoPG) Create(ctx context.Context, c *Consultation) error {
	c.ID = uuid.New()
	_, err := r.pool.Exec(ctx, `
		INSERT INTO consultations (id, patient_id, doctor_id, type, status, scheduled_at,
			duration_minutes, reason, notes, diagnosis)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
		c.ID, c.PatientID, c.DoctorID, c.Type, c.Status, c.ScheduledAt,
		c.DurationMinutes, c.Reason, c.Notes, c.Diagnosis)
	return err
}

func (r *repoPG) Get(ctx context.Context, id uuid.UUID) (*Consultation, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+consultationCols+` FROM consultations WHERE id = $1`, id)
	return scanConsultation(row)
}

func (r *repoPG) Update(ctx context.Context, c *Consultation) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE consultations SET type = $2, status = $3, scheduled_at = $4, duration_minutes = $5,
			reason = $6, notes = $7, diagnosis = $8, completed_at = $9, updated_at = NOW()
		WHERE id = $1`,
		c.ID, c.Type, c.Status, c.ScheduledAt, c.DurationMinutes,
		c.Reason, c.Notes, c.Diagnosis, c.CompletedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repoPG) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Consultation, int, error) {
	return r.list(ctx, `patient_id`, patientID, limit, offset)
}

func (r *repoPG) ListByDoctor(ctx context.Context, doctorID uuid.UUID, limit, offset int) ([]*Consultation, int, error) {
	return r.list(ctx, `doctor_id`, doctorID, limit, offset)
}

func (r *repoPG) list(ctx context.Context, column string, id uuid.UUID, limit, offset int) ([]*Consultation, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM consultations WHERE `+column+` = $1`, id).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.pool.Query(ctx, `SELECT `+consultationCols+` FROM consultations
		WHERE `+column+` = $1 ORDER BY scheduled_at DESC LIMIT $2 OFFSET $3`, id, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Consultation
	for rows.Next() {
		c, err := scanConsultation(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, c)
	}
	return items, total, rows.Err()
}
