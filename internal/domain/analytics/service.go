package analytics

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type Service struct {
	repo Repository
	log  zerolog.Logger
	now  func() time.Time
}

func NewService(repo Repository, log zerolog.Logger) *Service {
	return &Service{repo: repo, log: log, now: time.Now}
}

// Dashboard assembles every stats section for the given period.
func (s *Service) Dashboard(ctx context.Context, period string) (*Dashboard, error) {
	d, err := periodDuration(period)
	if err != nil {
		return nil, err
	}
	if period == "" {
		period = DefaultPeriod
	}
	since := s.now().Add(-d)

	overview, err := s.repo.Overview(ctx, since)
	if err != nil {
		return nil, err
	}
	consultations, err := s.repo.ConsultationStats(ctx, since)
	if err != nil {
		return nil, err
	}
	emergency, err := s.repo.EmergencyStats(ctx, since)
	if err != nil {
		return nil, err
	}
	triage, err := s.repo.TriageStats(ctx, since)
	if err != nil {
		return nil, err
	}
	health, err := s.repo.HealthStats(ctx, since)
	if err != nil {
		return nil, err
	}

	return &Dashboard{
		Period:        period,
		Overview:      *overview,
		Consultations: *consultations,
		Emergency:     *emergency,
		Triage:        *triage,
		Health:        *health,
	}, nil
}

// DoctorAnalytics reports one doctor's activity for the period.
func (s *Service) DoctorAnalytics(ctx context.Context, doctorID uuid.UUID, period string) (*DoctorAnalytics, error) {
	d, err := periodDuration(period)
	if err != nil {
		return nil, err
	}
	if period == "" {
		period = DefaultPeriod
	}
	stats, err := s.repo.DoctorStats(ctx, doctorID, s.now().Add(-d))
	if err != nil {
		return nil, err
	}
	stats.Period = period
	return stats, nil
}

// PatientTrends reports min/avg/max per recorded metric for the period.
func (s *Service) PatientTrends(ctx context.Context, patientID uuid.UUID, period string) (*PatientTrends, error) {
	d, err := periodDuration(period)
	if err != nil {
		return nil, err
	}
	if period == "" {
		period = DefaultPeriod
	}
	trends, err := s.repo.VitalTrends(ctx, patientID, s.now().Add(-d))
	if err != nil {
		return nil, err
	}
	return &PatientTrends{PatientID: patientID, Period: period, Trends: trends}, nil
}
