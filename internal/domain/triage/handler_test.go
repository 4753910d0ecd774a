package triage

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

func newTestServer(repo *mockRepo) *echo.Echo {
	e := echo.New()
	svc := NewService(repo, DefaultReference(), zerolog.Nop())
	NewHandler(svc).RegisterRoutes(e.Group("/api/v1/triage"))
	return e
}

func TestHandler_AnalyzeSymptoms(t *testing.T) {
	e := newTestServer(&mockRepo{})
	pid := uuid.New()

	body := `{"patient_id": "` + pid.String() + `", "symptoms": "crushing chest pain", "severity": 9}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/triage/analyze-symptoms", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var result SymptomResult
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if result.Urgency != SeverityHigh {
		t.Errorf("expected high urgency, got %s", result.Urgency)
	}
	if result.Category != "cardiovascular" {
		t.Errorf("expected cardiovascular, got %q", result.Category)
	}
}

func TestHandler_AnalyzeSymptoms_BadPatientID(t *testing.T) {
	e := newTestServer(&mockRepo{})

	body := `{"patient_id": "not-a-uuid", "symptoms": "headache"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/triage/analyze-symptoms", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestHandler_CheckVitals(t *testing.T) {
	e := newTestServer(&mockRepo{})

	body := `{"vital_signs": {"heart_rate": 130, "oxygen_saturation": 85}}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/triage/check-vitals", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var result VitalsResult
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !result.IsEmergency {
		t.Error("expected emergency")
	}
	if result.Urgency != SeverityCritical {
		t.Errorf("expected critical, got %s", result.Urgency)
	}
}

func TestHandler_CheckVitals_Empty(t *testing.T) {
	e := newTestServer(&mockRepo{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/triage/check-vitals", strings.NewReader(`{}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestHandler_EvaluateLab(t *testing.T) {
	e := newTestServer(&mockRepo{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/triage/lab-value?test=glucose&value=320&demographic=random", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var finding LabFinding
	if err := json.Unmarshal(rec.Body.Bytes(), &finding); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if finding.Status != LabHigh || finding.Grade != GradeSevere {
		t.Errorf("expected high/severe, got %+v", finding)
	}
}

func TestHandler_EvaluateLab_Unknown(t *testing.T) {
	e := newTestServer(&mockRepo{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/triage/lab-value?test=troponin&value=1.2", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}

func TestHandler_EvaluateLab_MissingValue(t *testing.T) {
	e := newTestServer(&mockRepo{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/triage/lab-value?test=glucose", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestHandler_ListSymptomAnalyses(t *testing.T) {
	repo := &mockRepo{}
	e := newTestServer(repo)
	pid := uuid.New()
	repo.symptoms = []*SymptomAnalysis{
		{ID: uuid.New(), PatientID: pid, Symptoms: "cough", Urgency: "low"},
		{ID: uuid.New(), PatientID: pid, Symptoms: "fever", Urgency: "medium"},
		{ID: uuid.New(), PatientID: uuid.New(), Symptoms: "other patient", Urgency: "low"},
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/triage/patients/"+pid.String()+"/symptom-analyses?limit=1", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Data    []*SymptomAnalysis `json:"data"`
		Total   int                `json:"total"`
		HasMore bool               `json:"has_more"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Total != 2 {
		t.Errorf("expected total 2, got %d", resp.Total)
	}
	if len(resp.Data) != 1 {
		t.Errorf("expected 1 item, got %d", len(resp.Data))
	}
	if !resp.HasMore {
		t.Error("expected has_more")
	}
}
