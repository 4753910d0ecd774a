package emergency

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/92kareeem/healthai/internal/domain/identity"
	"github.com/92kareeem/healthai/internal/domain/triage"
)

// Notifier fans a templated message out to recipients. Satisfied by
// *notification.Manager.
type Notifier interface {
	Broadcast(ctx context.Context, templateID string, data map[string]string, recipients []string) error
}

// DoctorDirectory resolves users and on-call doctors. Satisfied by
// *identity.Service.
type DoctorDirectory interface {
	GetUser(ctx context.Context, id uuid.UUID) (*identity.User, error)
	ListDoctors(ctx context.Context, limit, offset int) ([]*identity.User, int, error)
}

// Dispatch ETA baseline and per-urgency multipliers.
const baseETAMinutes = 15

var etaMultipliers = map[string]float64{
	"critical": 0.5,
	"high":     0.7,
	"medium":   1.0,
	"low":      1.5,
}

// How many doctors an alert broadcast reaches at most.
const broadcastDoctorLimit = 50

type Service struct {
	repo      Repository
	notifier  Notifier
	directory DoctorDirectory
	log       zerolog.Logger
	now       func() time.Time
}

func NewService(repo Repository, notifier Notifier, directory DoctorDirectory, log zerolog.Logger) *Service {
	return &Service{
		repo:      repo,
		notifier:  notifier,
		directory: directory,
		log:       log,
		now:       time.Now,
	}
}

type AlertInput struct {
	Severity    string `json:"severity"`
	Description string `json:"description"`
	Location    string `json:"location"`
}

// CreateAlert raises a manually reported emergency and notifies doctors.
func (s *Service) CreateAlert(ctx context.Context, patientID uuid.UUID, in AlertInput) (*Alert, error) {
	if patientID == uuid.Nil {
		return nil, fmt.Errorf("patient_id is required")
	}
	if triage.ParseSeverity(in.Severity) == triage.SeverityNone {
		return nil, fmt.Errorf("invalid severity %q", in.Severity)
	}
	if in.Description == "" {
		return nil, fmt.Errorf("description is required")
	}

	a := &Alert{
		PatientID:   patientID,
		Source:      SourceManual,
		Severity:    in.Severity,
		Description: in.Description,
		Location:    in.Location,
	}
	if err := s.repo.CreateAlert(ctx, a); err != nil {
		return nil, fmt.Errorf("store emergency alert: %w", err)
	}

	s.log.Warn().
		Str("alert_id", a.ID.String()).
		Str("patient_id", patientID.String()).
		Str("severity", a.Severity).
		Msg("emergency alert raised")

	s.notifyDoctors(ctx, a)
	return a, nil
}

// RaiseVitalsEmergency records an emergency detected from a vitals reading.
// Called by the monitoring service when a reading scores as an emergency.
func (s *Service) RaiseVitalsEmergency(ctx context.Context, patientID uuid.UUID, res triage.VitalsResult) error {
	parts := make([]string, 0, len(res.Indicators))
	for _, f := range res.Indicators {
		parts = append(parts, fmt.Sprintf("%s %s (%.1f)", f.Vital, f.Condition, f.Value))
	}
	desc := res.RecommendedAction
	if len(parts) > 0 {
		desc = strings.Join(parts, ", ") + ". " + res.RecommendedAction
	}

	a := &Alert{
		PatientID:   patientID,
		Source:      SourceVitals,
		Severity:    res.Urgency.String(),
		Description: desc,
	}
	if err := s.repo.CreateAlert(ctx, a); err != nil {
		return fmt.Errorf("store emergency alert: %w", err)
	}

	s.log.Warn().
		Str("alert_id", a.ID.String()).
		Str("patient_id", patientID.String()).
		Str("severity", a.Severity).
		Msg("vitals emergency raised")

	s.notifyDoctors(ctx, a)
	return nil
}

func (s *Service) GetAlert(ctx context.Context, id uuid.UUID) (*Alert, error) {
	return s.repo.GetAlert(ctx, id)
}

func (s *Service) ListAlerts(ctx context.Context, status string, limit, offset int) ([]*Alert, int, error) {
	if status != "" && status != StatusActive && status != StatusResolved {
		return nil, 0, fmt.Errorf("invalid status %q", status)
	}
	return s.repo.ListAlerts(ctx, status, limit, offset)
}

func (s *Service) ListAlertsByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Alert, int, error) {
	return s.repo.ListAlertsByPatient(ctx, patientID, limit, offset)
}

// ResolveAlert marks an active alert as handled.
func (s *Service) ResolveAlert(ctx context.Context, id, resolvedBy uuid.UUID) error {
	if err := s.repo.ResolveAlert(ctx, id, resolvedBy); err != nil {
		return err
	}
	s.log.Info().
		Str("alert_id", id.String()).
		Str("resolved_by", resolvedBy.String()).
		Msg("emergency alert resolved")
	return nil
}

type AmbulanceInput struct {
	Location string     `json:"location"`
	Urgency  string     `json:"urgency"`
	AlertID  *uuid.UUID `json:"alert_id"`
}

// RequestAmbulance dispatches an ambulance. The tracking ID is derived from
// the UTC dispatch time; the ETA scales the 15 minute baseline by urgency.
func (s *Service) RequestAmbulance(ctx context.Context, patientID uuid.UUID, in AmbulanceInput) (*AmbulanceRequest, error) {
	if patientID == uuid.Nil {
		return nil, fmt.Errorf("patient_id is required")
	}
	if in.Location == "" {
		return nil, fmt.Errorf("location is required")
	}
	mult, ok := etaMultipliers[in.Urgency]
	if !ok {
		return nil, fmt.Errorf("invalid urgency %q", in.Urgency)
	}

	req := &AmbulanceRequest{
		PatientID:  patientID,
		AlertID:    in.AlertID,
		TrackingID: "AMB-" + s.now().UTC().Format("20060102150405"),
		Location:   in.Location,
		Urgency:    in.Urgency,
		ETAMinutes: int(baseETAMinutes * mult),
		Status:     AmbulanceDispatched,
	}
	if err := s.repo.CreateAmbulanceRequest(ctx, req); err != nil {
		return nil, fmt.Errorf("store ambulance request: %w", err)
	}

	s.log.Warn().
		Str("tracking_id", req.TrackingID).
		Str("patient_id", patientID.String()).
		Str("urgency", req.Urgency).
		Int("eta_minutes", req.ETAMinutes).
		Msg("ambulance dispatched")

	if s.notifier != nil {
		data := map[string]string{
			"patient_name": s.patientName(ctx, patientID),
			"location":     req.Location,
			"tracking_id":  req.TrackingID,
			"eta":          strconv.Itoa(req.ETAMinutes),
		}
		if err := s.notifier.Broadcast(ctx, "ambulance-dispatched", data, s.doctorContacts(ctx)); err != nil {
			s.log.Error().Err(err).Str("tracking_id", req.TrackingID).Msg("dispatch notification failed")
		}
	}

	return req, nil
}

func (s *Service) TrackAmbulance(ctx context.Context, trackingID string) (*AmbulanceRequest, error) {
	return s.repo.GetAmbulanceByTracking(ctx, trackingID)
}

// ambulanceTransitions lists the allowed next states.
var ambulanceTransitions = map[string][]string{
	AmbulanceDispatched: {AmbulanceEnRoute, AmbulanceCancelled},
	AmbulanceEnRoute:    {AmbulanceArrived, AmbulanceCancelled},
}

// UpdateAmbulanceStatus advances a request through its lifecycle.
func (s *Service) UpdateAmbulanceStatus(ctx context.Context, trackingID, status string) (*AmbulanceRequest, error) {
	req, err := s.repo.GetAmbulanceByTracking(ctx, trackingID)
	if err != nil {
		return nil, err
	}
	allowed := false
	for _, next := range ambulanceTransitions[req.Status] {
		if next == status {
			allowed = true
			break
		}
	}
	if !allowed {
		return nil, fmt.Errorf("cannot move ambulance from %s to %s", req.Status, status)
	}
	if err := s.repo.UpdateAmbulanceStatus(ctx, req.ID, status); err != nil {
		return nil, err
	}
	req.Status = status
	return req, nil
}

func (s *Service) ListAmbulanceRequests(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*AmbulanceRequest, int, error) {
	return s.repo.ListAmbulanceRequests(ctx, patientID, limit, offset)
}

// notifyDoctors broadcasts an alert to registered doctors. Notification
// failure never fails the alert itself.
func (s *Service) notifyDoctors(ctx context.Context, a *Alert) {
	if s.notifier == nil {
		return
	}
	recipients := s.doctorContacts(ctx)
	if len(recipients) == 0 {
		return
	}
	data := map[string]string{
		"patient_name": s.patientName(ctx, a.PatientID),
		"severity":     a.Severity,
		"description":  a.Description,
		"location":     a.Location,
	}
	if data["location"] == "" {
		data["location"] = "unknown"
	}
	if err := s.notifier.Broadcast(ctx, "emergency-alert", data, recipients); err != nil {
		s.log.Error().Err(err).Str("alert_id", a.ID.String()).Msg("alert notification failed")
	}
}

func (s *Service) doctorContacts(ctx context.Context) []string {
	if s.directory == nil {
		return nil
	}
	doctors, _, err := s.directory.ListDoctors(ctx, broadcastDoctorLimit, 0)
	if err != nil {
		s.log.Error().Err(err).Msg("list doctors for broadcast failed")
		return nil
	}
	var contacts []string
	for _, d := range doctors {
		if d.Email != "" {
			contacts = append(contacts, d.Email)
		}
	}
	return contacts
}

func (s *Service) patientName(ctx context.Context, id uuid.UUID) string {
	if s.directory == nil {
		return id.String()
	}
	u, err := s.directory.GetUser(ctx, id)
	if err != nil || u.FullName() == "" {
		return id.String()
	}
	return u.FullName()
}
