package emergency

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

const alertCols = `id, patient_id, source, severity, description, location, status,
	created_at, resolved_at, resolved_by`

func scanAlert(row pgx.Row) (*Alert, error) {
	var a Alert
	err := row.Scan(&a.ID, &a.PatientID, &a.Source, &a.Severity, &a.Description, &a.Location,
		&a.Status, &a.CreatedAt, &a.ResolvedAt, &a.ResolvedBy)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return &a, err
}

func (r *repoPG) CreateAlert(ctx context.Context, a *Alert) error {
	a.ID = uuid.New()
	a.Status = StatusActive
	_, err := r.pool.Exec(ctx, `
		INSERT INTO emergency_alerts (id, patient_id, source, severity, description, location, status)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		a.ID, a.PatientID, a.Source, a.Severity, a.Description, a.Location, a.Status)
	return err
}

func (r *repoPG) GetAlert(ctx context.Context, id uuid.UUID) (*Alert, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+alertCols+` FROM emergency_alerts WHERE id = $1`, id)
	return scanAlert(row)
}

func (r *repoPG) ListAlerts(ctx context.Context, status string, limit, offset int) ([]*Alert, int, error) {
	where := ``
	args := []interface{}{}
	if status != "" {
		where = `WHERE status = $1`
		args = append(args, status)
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM emergency_alerts `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	n := len(args)
	query := fmt.Sprintf(`SELECT %s FROM emergency_alerts %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		alertCols, where, n+1, n+2)
	args = append(args, limit, offset)
	return r.queryAlerts(ctx, query, args, total)
}

func (r *repoPG) ListAlertsByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Alert, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM emergency_alerts WHERE patient_id = $1`, patientID).Scan(&total); err != nil {
		return nil, 0, err
	}
	query := `SELECT ` + alertCols + ` FROM emergency_alerts
		WHERE patient_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	return r.queryAlerts(ctx, query, []interface{}{patientID, limit, offset}, total)
}

func (r *repoPG) queryAlerts(ctx context.Context, query string, args []interface{}, total int) ([]*Alert, int, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Alert
	for rows.Next() {
		a, err := scanAlert(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, a)
	}
	return items, total, rows.Err()
}

func (r *repoPG) ResolveAlert(ctx context.Context, id, resolvedBy uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE emergency_alerts SET status = $2, resolved_at = NOW(), resolved_by = $3
		WHERE id = $1 AND status = $4`, id, StatusResolved, resolvedBy, StatusActive)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		if _, getErr := r.GetAlert(ctx, id); getErr != nil {
			return getErr
		}
		return ErrAlreadyResolved
	}
	return nil
}

const ambulanceCols = `id, patient_id, alert_id, tracking_id, location, urgency,
	eta_minutes, status, created_at, updated_at`

func scanAmbulance(row pgx.Row) (*AmbulanceRequest, error) {
	var req AmbulanceRequest
	err := row.Scan(&req.ID, &req.PatientID, &req.AlertID, &req.TrackingID, &req.Location,
		&req.Urgency, &req.ETAMinutes, &req.Status, &req.CreatedAt, &req.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return &req, err
}

func (r *repoPG) CreateAmbulanceRequest(ctx context.Context, req *AmbulanceRequest) error {
	req.ID = uuid.New()
	_, err := r.pool.Exec(ctx, `
		INSERT INTO ambulance_requests (id, patient_id, alert_id, tracking_id, location, urgency, eta_minutes, status)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		req.ID, req.PatientID, req.AlertID, req.TrackingID, req.Location, req.Urgency, req.ETAMinutes, req.Status)
	return err
}

func (r *repoPG) GetAmbulanceByTracking(ctx context.Context, trackingID string) (*AmbulanceRequest, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+ambulanceCols+` FROM ambulance_requests WHERE tracking_id = $1`, trackingID)
	return scanAmbulance(row)
}

func (r *repoPG) UpdateAmbulanceStatus(ctx context.Context, id uuid.UUID, status string) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE ambulance_requests SET status = $2, updated_at = NOW() WHERE id = $1`, id, status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repoPG) ListAmbulanceRequests(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*AmbulanceRequest, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM ambulance_requests WHERE patient_id = $1`, patientID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.pool.Query(ctx, `SELECT `+ambulanceCols+` FROM ambulance_requests
		WHERE patient_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`, patientID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*AmbulanceRequest
	for rows.Next() {
		req, err := scanAmbulance(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, req)
	}
	return items, total, rows.Err()
}
