package monitoring

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/92kareeem/healthai/internal/domain/triage"
)

type mockRepo struct {
	records []*HealthRecord
	alerts  []*HealthAlert
}

func (m *mockRepo) CreateRecord(_ context.Context, rec *HealthRecord) error {
	rec.ID = uuid.New()
	m.records = append(m.records, rec)
	return nil
}

func (m *mockRepo) ListRecords(_ context.Context, patientID uuid.UUID, limit, offset int) ([]*HealthRecord, int, error) {
	var out []*HealthRecord
	for _, r := range m.records {
		if r.PatientID == patientID {
			out = append(out, r)
		}
	}
	return out, len(out), nil
}

func (m *mockRepo) CreateAlert(_ context.Context, a *HealthAlert) error {
	a.ID = uuid.New()
	m.alerts = append(m.alerts, a)
	return nil
}

func (m *mockRepo) ListAlerts(_ context.Context, patientID uuid.UUID, severity string, limit, offset int) ([]*HealthAlert, int, error) {
	var out []*HealthAlert
	for _, a := range m.alerts {
		if a.PatientID == patientID && (severity == "" || a.Severity == severity) {
			out = append(out, a)
		}
	}
	return out, len(out), nil
}

func (m *mockRepo) AcknowledgeAlert(_ context.Context, id uuid.UUID) error {
	for _, a := range m.alerts {
		if a.ID == id && !a.Acknowledged {
			a.Acknowledged = true
			return nil
		}
	}
	return ErrNotFound
}

type mockRaiser struct {
	calls []uuid.UUID
}

func (m *mockRaiser) RaiseVitalsEmergency(_ context.Context, patientID uuid.UUID, _ triage.VitalsResult) error {
	m.calls = append(m.calls, patientID)
	return nil
}

func f(v float64) *float64 { return &v }

func newTestService(repo *mockRepo, raiser EmergencyRaiser) *Service {
	evaluator := triage.NewService(nil, triage.DefaultReference(), zerolog.Nop())
	return NewService(repo, evaluator, raiser, zerolog.Nop())
}

func TestCreateRecord_NormalReading(t *testing.T) {
	repo := &mockRepo{}
	raiser := &mockRaiser{}
	svc := newTestService(repo, raiser)

	result, err := svc.CreateRecord(context.Background(), uuid.New(), RecordInput{
		HeartRate:   f(72),
		SystolicBP:  f(118),
		DiastolicBP: f(76),
	})
	if err != nil {
		t.Fatalf("CreateRecord: %v", err)
	}
	if result.Evaluation.IsEmergency {
		t.Error("expected no emergency")
	}
	if result.Alert != nil {
		t.Errorf("expected no alert, got %+v", result.Alert)
	}
	if len(repo.records) != 1 {
		t.Errorf("expected 1 record, got %d", len(repo.records))
	}
	if len(raiser.calls) != 0 {
		t.Errorf("expected no escalation, got %d", len(raiser.calls))
	}
}

func TestCreateRecord_EmergencyEscalates(t *testing.T) {
	repo := &mockRepo{}
	raiser := &mockRaiser{}
	svc := newTestService(repo, raiser)
	pid := uuid.New()

	result, err := svc.CreateRecord(context.Background(), pid, RecordInput{
		HeartRate:        f(135),
		OxygenSaturation: f(85),
	})
	if err != nil {
		t.Fatalf("CreateRecord: %v", err)
	}
	if !result.Evaluation.IsEmergency {
		t.Fatal("expected emergency")
	}
	if result.Evaluation.Urgency != triage.SeverityCritical {
		t.Errorf("expected critical, got %s", result.Evaluation.Urgency)
	}
	if result.Alert == nil {
		t.Fatal("expected alert raised")
	}
	if result.Alert.Severity != "critical" {
		t.Errorf("expected critical alert, got %q", result.Alert.Severity)
	}
	if len(result.Alert.Indicators) != 2 {
		t.Errorf("expected 2 indicators, got %v", result.Alert.Indicators)
	}
	if len(raiser.calls) != 1 || raiser.calls[0] != pid {
		t.Errorf("expected one escalation for %s, got %v", pid, raiser.calls)
	}
}

func TestCreateRecord_NilRaiserSkipsEscalation(t *testing.T) {
	repo := &mockRepo{}
	svc := newTestService(repo, nil)

	result, err := svc.CreateRecord(context.Background(), uuid.New(), RecordInput{
		HeartRate: f(135),
	})
	if err != nil {
		t.Fatalf("CreateRecord: %v", err)
	}
	if !result.Evaluation.IsEmergency {
		t.Error("expected emergency flagged even without a raiser")
	}
}

func TestCreateRecord_ValidatesRanges(t *testing.T) {
	svc := newTestService(&mockRepo{}, nil)
	ctx := context.Background()
	pid := uuid.New()

	tests := []struct {
		name string
		in   RecordInput
	}{
		{"heart rate too low", RecordInput{HeartRate: f(20)}},
		{"heart rate too high", RecordInput{HeartRate: f(250)}},
		{"systolic too high", RecordInput{SystolicBP: f(300)}},
		{"diastolic too low", RecordInput{DiastolicBP: f(30)}},
		{"temperature too high", RecordInput{Temperature: f(115)}},
		{"weight too low", RecordInput{Weight: f(5)}},
		{"height too high", RecordInput{Height: f(300)}},
		{"empty reading", RecordInput{Notes: "feeling fine"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.CreateRecord(ctx, pid, tt.in); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestCreateRecord_BoundaryReadingStored(t *testing.T) {
	repo := &mockRepo{}
	svc := newTestService(repo, nil)

	// 200 bpm is implausible-range boundary but still a valid entry.
	result, err := svc.CreateRecord(context.Background(), uuid.New(), RecordInput{
		HeartRate: f(200),
	})
	if err != nil {
		t.Fatalf("CreateRecord: %v", err)
	}
	if !result.Evaluation.IsEmergency {
		t.Error("expected 200 bpm to score as emergency")
	}
}

func TestListAlerts_SeverityFilter(t *testing.T) {
	repo := &mockRepo{}
	svc := newTestService(repo, nil)
	pid := uuid.New()
	repo.alerts = []*HealthAlert{
		{ID: uuid.New(), PatientID: pid, Severity: "high"},
		{ID: uuid.New(), PatientID: pid, Severity: "critical"},
	}

	items, _, err := svc.ListAlerts(context.Background(), pid, "critical", 20, 0)
	if err != nil {
		t.Fatalf("ListAlerts: %v", err)
	}
	if len(items) != 1 || items[0].Severity != "critical" {
		t.Errorf("expected one critical alert, got %+v", items)
	}

	if _, _, err := svc.ListAlerts(context.Background(), pid, "bogus", 20, 0); err == nil {
		t.Error("expected error for invalid severity")
	}
}

func TestAcknowledgeAlert(t *testing.T) {
	repo := &mockRepo{}
	svc := newTestService(repo, nil)
	id := uuid.New()
	repo.alerts = []*HealthAlert{{ID: id, PatientID: uuid.New(), Severity: "high"}}

	if err := svc.AcknowledgeAlert(context.Background(), id); err != nil {
		t.Fatalf("acknowledge: %v", err)
	}
	if err := svc.AcknowledgeAlert(context.Background(), id); err != ErrNotFound {
		t.Errorf("expected ErrNotFound on second ack, got %v", err)
	}
}
