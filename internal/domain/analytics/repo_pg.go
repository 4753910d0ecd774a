package analytics

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type repoPG struct{ pool *pgxpool.Pool }

// NewRepoPG returns a Postgres-backed Repository.
func NewRepoPG(pool *pgxpool.Pool) Repository { return &repoPG{pool: pool} }

func (r *repoPG) Overview(ctx context.Context, since time.Time) (*Overview, error) {
	var o Overview
	err := r.pool.QueryRow(ctx, `
		SELECT
			(SELECT COUNT(*) FROM users WHERE role = 'patient'),
			(SELECT COUNT(*) FROM users WHERE role = 'doctor'),
			(SELECT COUNT(*) FROM consultations WHERE created_at >= $1),
			(SELECT COUNT(*) FROM emergency_alerts WHERE status = 'active'),
			(SELECT COUNT(*) FROM symptom_analyses WHERE created_at >= $1),
			(SELECT COUNT(*) FROM health_alerts WHERE created_at >= $1)`, since).
		Scan(&o.TotalPatients, &o.TotalDoctors, &o.Consultations,
			&o.ActiveEmergencies, &o.SymptomAnalyses, &o.HealthAlerts)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *repoPG) ConsultationStats(ctx context.Context, since time.Time) (*ConsultationStats, error) {
	s := &ConsultationStats{ByType: map[string]int{}}
	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*),
			COUNT(*) FILTER (WHERE status = 'completed'),
			COUNT(*) FILTER (WHERE status = 'cancelled'),
			COUNT(*) FILTER (WHERE status = 'scheduled')
		FROM consultations WHERE created_at >= $1`, since).
		Scan(&s.Total, &s.Completed, &s.Cancelled, &s.Scheduled)
	if err != nil {
		return nil, err
	}

	rows, err := r.pool.Query(ctx, `
		SELECT type, COUNT(*) FROM consultations
		WHERE created_at >= $1 GROUP BY type`, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var t string
		var n int
		if err := rows.Scan(&t, &n); err != nil {
			return nil, err
		}
		s.ByType[t] = n
	}
	return s, rows.Err()
}

func (r *repoPG) EmergencyStats(ctx context.Context, since time.Time) (*EmergencyStats, error) {
	s := &EmergencyStats{BySeverity: map[string]int{}}
	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*),
			COUNT(*) FILTER (WHERE status = 'active'),
			COUNT(*) FILTER (WHERE status = 'resolved'),
			COALESCE(AVG(EXTRACT(EPOCH FROM resolved_at - created_at) / 60)
				FILTER (WHERE resolved_at IS NOT NULL), 0)
		FROM emergency_alerts WHERE created_at >= $1`, since).
		Scan(&s.TotalAlerts, &s.Active, &s.Resolved, &s.AvgResolutionMinutes)
	if err != nil {
		return nil, err
	}

	if err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM ambulance_requests WHERE created_at >= $1`, since).
		Scan(&s.AmbulanceDispatches); err != nil {
		return nil, err
	}

	rows, err := r.pool.Query(ctx, `
		SELECT severity, COUNT(*) FROM emergency_alerts
		WHERE created_at >= $1 GROUP BY severity`, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var sev string
		var n int
		if err := rows.Scan(&sev, &n); err != nil {
			return nil, err
		}
		s.BySeverity[sev] = n
	}
	return s, rows.Err()
}

func (r *repoPG) TriageStats(ctx context.Context, since time.Time) (*TriageStats, error) {
	s := &TriageStats{ByUrgency: map[string]int{}, ByCategory: map[string]int{}}
	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*), COUNT(*) FILTER (WHERE degraded)
		FROM symptom_analyses WHERE created_at >= $1`, since).
		Scan(&s.TotalAnalyses, &s.Degraded)
	if err != nil {
		return nil, err
	}

	rows, err := r.pool.Query(ctx, `
		SELECT urgency, category, COUNT(*) FROM symptom_analyses
		WHERE created_at >= $1 GROUP BY urgency, category`, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var urgency, category string
		var n int
		if err := rows.Scan(&urgency, &category, &n); err != nil {
			return nil, err
		}
		s.ByUrgency[urgency] += n
		s.ByCategory[category] += n
	}
	return s, rows.Err()
}

func (r *repoPG) HealthStats(ctx context.Context, since time.Time) (*HealthStats, error) {
	s := &HealthStats{AlertsBySeverity: map[string]int{}}
	if err := r.pool.QueryRow(ctx, `
		SELECT
			(SELECT COUNT(*) FROM health_records WHERE created_at >= $1),
			(SELECT COUNT(*) FROM health_alerts WHERE created_at >= $1)`, since).
		Scan(&s.Records, &s.Alerts); err != nil {
		return nil, err
	}

	rows, err := r.pool.Query(ctx, `
		SELECT severity, COUNT(*) FROM health_alerts
		WHERE created_at >= $1 GROUP BY severity`, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var sev string
		var n int
		if err := rows.Scan(&sev, &n); err != nil {
			return nil, err
		}
		s.AlertsBySeverity[sev] = n
	}
	return s, rows.Err()
}

func (r *repoPG) DoctorStats(ctx context.Context, doctorID uuid.UUID, since time.Time) (*DoctorAnalytics, error) {
	s := &DoctorAnalytics{DoctorID: doctorID}
	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*),
			COUNT(*) FILTER (WHERE status = 'completed'),
			COUNT(*) FILTER (WHERE status = 'cancelled')
		FROM consultations WHERE doctor_id = $1 AND created_at >= $2`, doctorID, since).
		Scan(&s.Consultations, &s.Completed, &s.Cancelled)
	if err != nil {
		return nil, err
	}

	if err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM emergency_alerts
		WHERE resolved_by = $1 AND created_at >= $2`, doctorID, since).
		Scan(&s.ResolvedEmergencies); err != nil {
		return nil, err
	}
	return s, nil
}

// trendColumns maps health_records columns to trend metric names.
var trendColumns = []struct {
	metric string
	column string
}{
	{"heart_rate", "heart_rate"},
	{"systolic_bp", "systolic_bp"},
	{"diastolic_bp", "diastolic_bp"},
	{"temperature", "temperature"},
	{"oxygen_saturation", "oxygen_saturation"},
	{"weight", "weight"},
}

func (r *repoPG) VitalTrends(ctx context.Context, patientID uuid.UUID, since time.Time) ([]VitalTrend, error) {
	var trends []VitalTrend
	for _, tc := range trendColumns {
		var t VitalTrend
		t.Metric = tc.metric
		var min, avg, max *float64
		err := r.pool.QueryRow(ctx, `
			SELECT COUNT(`+tc.column+`), MIN(`+tc.column+`), AVG(`+tc.column+`), MAX(`+tc.column+`)
			FROM health_records WHERE patient_id = $1 AND created_at >= $2`, patientID, since).
			Scan(&t.Samples, &min, &avg, &max)
		if err != nil {
			return nil, err
		}
		if t.Samples == 0 {
			continue
		}
		t.Min, t.Avg, t.Max = *min, *avg, *max
		trends = append(trends, t)
	}
	return trends, nil
}
