package analytics

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Repository interface {
	Overview(ctx context.Context, since time.Time) (*Overview, error)
	ConsultationStats(ctx context.Context, since time.Time) (*ConsultationStats, error)
	EmergencyStats(ctx context.Context, since time.Time) (*EmergencyStats, error)
	TriageStats(ctx context.Context, since time.Time) (*TriageStats, error)
	HealthStats(ctx context.Context, since time.Time) (*HealthStats, error)
	DoctorStats(ctx context.Context, doctorID uuid.UUID, since time.Time) (*DoctorAnalytics, error)
	VitalTrends(ctx context.Context, patientID uuid.UUID, since time.Time) ([]VitalTrend, error)
}
