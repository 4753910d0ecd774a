package consultation

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/92kareeem/healthai/internal/domain/identity"
)

type mockRepo struct {
	byID map[uuid.UUID]*Consultation
}

func newMockRepo() *mockRepo {
	return &mockRepo{byID: map[uuid.UUID]*Consultation{}}
}

func (m *mockRepo) Create(_ context.Context, c *Consultation) error {
	c.ID = uuid.New()
	c.CreatedAt = time.Now()
	c.UpdatedAt = c.CreatedAt
	cp := *c
	m.byID[c.ID] = &cp
	return nil
}

func (m *mockRepo) Get(_ context.Context, id uuid.UUID) (*Consultation, error) {
	c, ok := m.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (m *mockRepo) Update(_ context.Context, c *Consultation) error {
	if _, ok := m.byID[c.ID]; !ok {
		return ErrNotFound
	}
	cp := *c
	cp.UpdatedAt = time.Now()
	m.byID[c.ID] = &cp
	return nil
}

func (m *mockRepo) ListByPatient(_ context.Context, patientID uuid.UUID, limit, offset int) ([]*Consultation, int, error) {
	var out []*Consultation
	for _, c := range m.byID {
		if c.PatientID == patientID {
			out = append(out, c)
		}
	}
	return out, len(out), nil
}

func (m *mockRepo) ListByDoctor(_ context.Context, doctorID uuid.UUID, limit, offset int) ([]*Consultation, int, error) {
	var out []*Consultation
	for _, c := range m.byID {
		if c.DoctorID == doctorID {
			out = append(out, c)
		}
	}
	return out, len(out), nil
}

type broadcastCall struct {
	templateID string
	data       map[string]string
	recipients []string
}

type mockNotifier struct {
	calls []broadcastCall
}

func (m *mockNotifier) Broadcast(_ context.Context, templateID string, data map[string]string, recipients []string) error {
	m.calls = append(m.calls, broadcastCall{templateID, data, recipients})
	return nil
}

type mockDirectory struct {
	users map[uuid.UUID]*identity.User
}

func (m *mockDirectory) GetUser(_ context.Context, id uuid.UUID) (*identity.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, identity.ErrNotFound
	}
	return u, nil
}

func fixedNow() time.Time {
	return time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
}

func newTestService(repo *mockRepo, notifier *mockNotifier, dir *mockDirectory) *Service {
	var n Notifier
	if notifier != nil {
		n = notifier
	}
	var d UserDirectory
	if dir != nil {
		d = dir
	}
	svc := NewService(repo, n, d, zerolog.Nop())
	svc.now = fixedNow
	return svc
}

func TestSchedule(t *testing.T) {
	repo := newMockRepo()
	notifier := &mockNotifier{}
	pid, did := uuid.New(), uuid.New()
	dir := &mockDirectory{users: map[uuid.UUID]*identity.User{
		pid: {ID: pid, FirstName: "Asha", Email: "asha@example.com"},
		did: {ID: did, FirstName: "Ravi", LastName: "Rao"},
	}}
	svc := newTestService(repo, notifier, dir)

	booked, err := svc.Schedule(context.Background(), pid, ScheduleInput{
		DoctorID:        did,
		Type:            TypeTelemedicine,
		ScheduledAt:     fixedNow().Add(48 * time.Hour),
		DurationMinutes: 30,
		Reason:          "follow up on blood work",
	})
	if err != nil {
		t.Fatalf("Schedule: %v", err)
	}
	if booked.Status != StatusScheduled {
		t.Errorf("expected scheduled, got %q", booked.Status)
	}

	if len(notifier.calls) != 1 {
		t.Fatalf("expected 1 notification, got %d", len(notifier.calls))
	}
	call := notifier.calls[0]
	if call.templateID != "consultation-scheduled" {
		t.Errorf("expected consultation-scheduled template, got %q", call.templateID)
	}
	if call.recipients[0] != "asha@example.com" {
		t.Errorf("expected patient email, got %v", call.recipients)
	}
	if call.data["doctor_name"] != "Ravi Rao" {
		t.Errorf("expected doctor name, got %q", call.data["doctor_name"])
	}
	if call.data["date"] != "2025-06-03" {
		t.Errorf("expected date, got %q", call.data["date"])
	}
}

func TestSchedule_Validation(t *testing.T) {
	svc := newTestService(newMockRepo(), nil, nil)
	ctx := context.Background()
	pid, did := uuid.New(), uuid.New()
	future := fixedNow().Add(time.Hour)

	tests := []struct {
		name string
		pid  uuid.UUID
		in   ScheduleInput
	}{
		{"nil patient", uuid.Nil, ScheduleInput{DoctorID: did, Type: TypeRegular, ScheduledAt: future, DurationMinutes: 30}},
		{"nil doctor", pid, ScheduleInput{Type: TypeRegular, ScheduledAt: future, DurationMinutes: 30}},
		{"bad type", pid, ScheduleInput{DoctorID: did, Type: "walk_in", ScheduledAt: future, DurationMinutes: 30}},
		{"too short", pid, ScheduleInput{DoctorID: did, Type: TypeRegular, ScheduledAt: future, DurationMinutes: 4}},
		{"too long", pid, ScheduleInput{DoctorID: did, Type: TypeRegular, ScheduledAt: future, DurationMinutes: 181}},
		{"in the past", pid, ScheduleInput{DoctorID: did, Type: TypeRegular, ScheduledAt: fixedNow().Add(-time.Hour), DurationMinutes: 30}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.Schedule(ctx, tt.pid, tt.in); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestSchedule_EmergencyAllowsImmediate(t *testing.T) {
	svc := newTestService(newMockRepo(), nil, nil)

	booked, err := svc.Schedule(context.Background(), uuid.New(), ScheduleInput{
		DoctorID:        uuid.New(),
		Type:            TypeEmergency,
		DurationMinutes: 15,
	})
	if err != nil {
		t.Fatalf("Schedule: %v", err)
	}
	if !booked.ScheduledAt.Equal(fixedNow()) {
		t.Errorf("expected immediate start, got %v", booked.ScheduledAt)
	}
}

func TestCompleteAndCancel(t *testing.T) {
	svc := newTestService(newMockRepo(), nil, nil)
	ctx := context.Background()

	booked, err := svc.Schedule(ctx, uuid.New(), ScheduleInput{
		DoctorID:        uuid.New(),
		Type:            TypeRegular,
		ScheduledAt:     fixedNow().Add(time.Hour),
		DurationMinutes: 20,
	})
	if err != nil {
		t.Fatalf("schedule: %v", err)
	}

	done, err := svc.Complete(ctx, booked.ID, CompleteInput{
		Notes:     "reviewed labs, all stable",
		Diagnosis: "controlled hypertension",
	})
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if done.Status != StatusCompleted {
		t.Errorf("expected completed, got %q", done.Status)
	}
	if done.CompletedAt == nil {
		t.Error("expected completed_at set")
	}

	if _, err := svc.Complete(ctx, booked.ID, CompleteInput{}); err != ErrNotScheduled {
		t.Errorf("expected ErrNotScheduled, got %v", err)
	}
	if _, err := svc.Cancel(ctx, booked.ID); err != ErrNotScheduled {
		t.Errorf("expected ErrNotScheduled on cancel, got %v", err)
	}
}

func TestReschedule(t *testing.T) {
	svc := newTestService(newMockRepo(), nil, nil)
	ctx := context.Background()

	booked, err := svc.Schedule(ctx, uuid.New(), ScheduleInput{
		DoctorID:        uuid.New(),
		Type:            TypeRegular,
		ScheduledAt:     fixedNow().Add(time.Hour),
		DurationMinutes: 20,
	})
	if err != nil {
		t.Fatalf("schedule: %v", err)
	}

	moved, err := svc.Reschedule(ctx, booked.ID, RescheduleInput{
		ScheduledAt:     fixedNow().Add(72 * time.Hour),
		DurationMinutes: 45,
	})
	if err != nil {
		t.Fatalf("reschedule: %v", err)
	}
	if moved.DurationMinutes != 45 {
		t.Errorf("expected duration 45, got %d", moved.DurationMinutes)
	}
	if !moved.ScheduledAt.Equal(fixedNow().Add(72 * time.Hour)) {
		t.Errorf("unexpected time %v", moved.ScheduledAt)
	}

	if _, err := svc.Reschedule(ctx, booked.ID, RescheduleInput{ScheduledAt: fixedNow().Add(-time.Hour)}); err == nil {
		t.Error("expected error for past reschedule")
	}
	if _, err := svc.Reschedule(ctx, booked.ID, RescheduleInput{DurationMinutes: 300}); err == nil {
		t.Error("expected error for bad duration")
	}
	if _, err := svc.Reschedule(ctx, uuid.New(), RescheduleInput{}); err != ErrNotFound {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
