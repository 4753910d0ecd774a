package records

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type repoPG struct{ pool *pgxpool.Pool }

// NewRepoPG returns a Postgres-backed Repository.
func NewRepoPG(pool *pgxpool.Pool) Repository { return &repoPG{pool: pool} }

const recordCols = `id, patient_id, uploaded_by, record_type, title, description,
	file_name, content_type, file_size, content_hash, cid, created_at`

func scanRecord(row pgx.Row) (*MedicalRecord, error) {
	var rec MedicalRecord
	err := row.Scan(&rec.ID, &rec.PatientID, &rec.UploadedBy, &rec.RecordType, &rec.Title,
		&rec.Description, &rec.FileName, &rec.ContentType, &rec.FileSize, &rec.ContentHash,
		&rec.CID, &rec.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return &rec, err
}

func (r *repoPG) Create(ctx context.Context, rec *MedicalRecord) error {
	rec.ID = uuid.New()
	_, err := r.pool.Exec(ctx, `
		INSERT INTO medical_records (id, patient_id, uploaded_by, record_type, title, description,
			file_name, content_type, file_size, content_hash, cid)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`,
		rec.ID, rec.PatientID, rec.UploadedBy, rec.RecordType, rec.Title, rec.Description,
		rec.FileName, rec.ContentType, rec.FileSize, rec.ContentHash, rec.CID)
	return err
}

func (r *repoPG) Get(ctx context.Context, id uuid.UUID) (*MedicalRecord, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+recordCols+` FROM medical_records WHERE id = $1`, id)
	return scanRecord(row)
}

func (r *repoPG) ListByPatient(ctx context.Context, patientID uuid.UUID, recordType string, limit, offset int) ([]*MedicalRecord, int, error) {
	where := `WHERE patient_id = $1`
	args := []interface{}{patientID}
	if recordType != "" {
		where += ` AND record_type = $2`
		args = append(args, recordType)
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM medical_records `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	n := len(args)
	query := fmt.Sprintf(`SELECT %s FROM medical_records %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		recordCols, where, n+1, n+2)
	args = append(args, limit, offset)
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*MedicalRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, rec)
	}
	return items, total, rows.Err()
}

func (r *repoPG) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM medical_records WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
