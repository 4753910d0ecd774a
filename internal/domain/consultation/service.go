package consultation

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/92kareeem/healthai/internal/domain/identity"
)

// Notifier fans a templated message out to recipients. Satisfied by
// *notification.Manager.
type Notifier interface {
	Broadcast(ctx context.Context, templateID string, data map[string]string, recipients []string) error
}

// UserDirectory resolves accounts for notification data. Satisfied by
// *identity.Service.
type UserDirectory interface {
	GetUser(ctx context.Context, id uuid.UUID) (*identity.User, error)
}

type Service struct {
	repo      Repository
	notifier  Notifier
	directory UserDirectory
	log       zerolog.Logger
	now       func() time.Time
}

func NewService(repo Repository, notifier Notifier, directory UserDirectory, log zerolog.Logger) *Service {
	return &Service{
		repo:      repo,
		notifier:  notifier,
		directory: directory,
		log:       log,
		now:       time.Now,
	}
}

type ScheduleInput struct {
	DoctorID        uuid.UUID `json:"doctor_id"`
	Type            string    `json:"type"`
	ScheduledAt     time.Time `json:"scheduled_at"`
	DurationMinutes int       `json:"duration_minutes"`
	Reason          string    `json:"reason"`
}

// Schedule books a consultation. Regular bookings must be in the future;
// emergency consultations may start immediately.
func (s *Service) Schedule(ctx context.Context, patientID uuid.UUID, in ScheduleInput) (*Consultation, error) {
	if patientID == uuid.Nil {
		return nil, fmt.Errorf("patient_id is required")
	}
	if in.DoctorID == uuid.Nil {
		return nil, fmt.Errorf("doctor_id is required")
	}
	if !validType(in.Type) {
		return nil, fmt.Errorf("invalid consultation type %q", in.Type)
	}
	if in.DurationMinutes < MinDurationMinutes || in.DurationMinutes > MaxDurationMinutes {
		return nil, fmt.Errorf("duration must be between %d and %d minutes, got %d",
			MinDurationMinutes, MaxDurationMinutes, in.DurationMinutes)
	}
	if in.Type != TypeEmergency && !in.ScheduledAt.After(s.now()) {
		return nil, fmt.Errorf("scheduled_at must be in the future")
	}
	if in.ScheduledAt.IsZero() {
		in.ScheduledAt = s.now()
	}

	c := &Consultation{
		PatientID:       patientID,
		DoctorID:        in.DoctorID,
		Type:            in.Type,
		Status:          StatusScheduled,
		ScheduledAt:     in.ScheduledAt,
		DurationMinutes: in.DurationMinutes,
		Reason:          in.Reason,
	}
	if err := s.repo.Create(ctx, c); err != nil {
		return nil, fmt.Errorf("store consultation: %w", err)
	}

	s.log.Info().
		Str("consultation_id", c.ID.String()).
		Str("type", c.Type).
		Time("scheduled_at", c.ScheduledAt).
		Msg("consultation scheduled")

	s.notifyScheduled(ctx, c)
	return c, nil
}

type RescheduleInput struct {
	ScheduledAt     time.Time `json:"scheduled_at"`
	DurationMinutes int       `json:"duration_minutes"`
	Reason          string    `json:"reason"`
}

// Reschedule moves a scheduled consultation. Completed or cancelled bookings
// cannot be changed.
func (s *Service) Reschedule(ctx context.Context, id uuid.UUID, in RescheduleInput) (*Consultation, error) {
	c, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if c.Status != StatusScheduled {
		return nil, ErrNotScheduled
	}
	if !in.ScheduledAt.IsZero() {
		if c.Type != TypeEmergency && !in.ScheduledAt.After(s.now()) {
			return nil, fmt.Errorf("scheduled_at must be in the future")
		}
		c.ScheduledAt = in.ScheduledAt
	}
	if in.DurationMinutes != 0 {
		if in.DurationMinutes < MinDurationMinutes || in.DurationMinutes > MaxDurationMinutes {
			return nil, fmt.Errorf("duration must be between %d and %d minutes, got %d",
				MinDurationMinutes, MaxDurationMinutes, in.DurationMinutes)
		}
		c.DurationMinutes = in.DurationMinutes
	}
	if in.Reason != "" {
		c.Reason = in.Reason
	}
	if err := s.repo.Update(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

type CompleteInput struct {
	Notes     string `json:"notes"`
	Diagnosis string `json:"diagnosis"`
}

// Complete closes out a scheduled consultation with the doctor's notes.
func (s *Service) Complete(ctx context.Context, id uuid.UUID, in CompleteInput) (*Consultation, error) {
	c, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if c.Status != StatusScheduled {
		return nil, ErrNotScheduled
	}
	now := s.now()
	c.Status = StatusCompleted
	c.Notes = in.Notes
	c.Diagnosis = in.Diagnosis
	c.CompletedAt = &now
	if err := s.repo.Update(ctx, c); err != nil {
		return nil, err
	}

	s.log.Info().
		Str("consultation_id", c.ID.String()).
		Msg("consultation completed")
	return c, nil
}

// Cancel withdraws a scheduled consultation.
func (s *Service) Cancel(ctx context.Context, id uuid.UUID) (*Consultation, error) {
	c, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if c.Status != StatusScheduled {
		return nil, ErrNotScheduled
	}
	c.Status = StatusCancelled
	if err := s.repo.Update(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Consultation, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Consultation, int, error) {
	return s.repo.ListByPatient(ctx, patientID, limit, offset)
}

func (s *Service) ListByDoctor(ctx context.Context, doctorID uuid.UUID, limit, offset int) ([]*Consultation, int, error) {
	return s.repo.ListByDoctor(ctx, doctorID, limit, offset)
}

func (s *Service) notifyScheduled(ctx context.Context, c *Consultation) {
	if s.notifier == nil || s.directory == nil {
		return
	}
	patient, err := s.directory.GetUser(ctx, c.PatientID)
	if err != nil || patient.Email == "" {
		return
	}
	doctorName := c.DoctorID.String()
	if doctor, err := s.directory.GetUser(ctx, c.DoctorID); err == nil && doctor.FullName() != "" {
		doctorName = doctor.FullName()
	}
	data := map[string]string{
		"patient_name":      patient.FullName(),
		"doctor_name":       doctorName,
		"consultation_type": c.Type,
		"date":              c.ScheduledAt.Format("2006-01-02"),
		"time":              c.ScheduledAt.Format("15:04"),
	}
	if err := s.notifier.Broadcast(ctx, "consultation-scheduled", data, []string{patient.Email}); err != nil {
		s.log.Error().Err(err).
			Str("consultation_id", c.ID.String()).
			Msg("schedule notification failed")
	}
}
