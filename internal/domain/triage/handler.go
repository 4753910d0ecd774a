package triage

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/92kareeem/healthai/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.POST("/analyze-symptoms", h.AnalyzeSymptoms)
	api.POST("/check-vitals", h.CheckVitals)
	api.POST("/analyze-report", h.AnalyzeReport)
	api.GET("/lab-value", h.EvaluateLab)
	api.GET("/patients/:patientId/symptom-analyses", h.ListSymptomAnalyses)
	api.GET("/patients/:patientId/report-analyses", h.ListReportRecords)
}

type analyzeSymptomsRequest struct {
	PatientID string `json:"patient_id"`
	SymptomInput
}

func (h *Handler) AnalyzeSymptoms(c echo.Context) error {
	var req analyzeSymptomsRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	pid, err := uuid.Parse(req.PatientID)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid patient_id")
	}
	result, err := h.svc.AnalyzeSymptoms(c.Request().Context(), pid, req.SymptomInput)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, result)
}

type checkVitalsRequest struct {
	Vitals map[string]float64 `json:"vital_signs"`
}

func (h *Handler) CheckVitals(c echo.Context) error {
	var req checkVitalsRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if len(req.Vitals) == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "vital_signs is required")
	}
	return c.JSON(http.StatusOK, h.svc.CheckVitals(req.Vitals))
}

type analyzeReportRequest struct {
	PatientID string `json:"patient_id"`
	Text      string `json:"text"`
}

func (h *Handler) AnalyzeReport(c echo.Context) error {
	var req analyzeReportRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	pid, err := uuid.Parse(req.PatientID)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid patient_id")
	}
	analysis, err := h.svc.AnalyzeReport(c.Request().Context(), pid, req.Text)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, analysis)
}

func (h *Handler) EvaluateLab(c echo.Context) error {
	test := c.QueryParam("test")
	if test == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "test is required")
	}
	var value float64
	if err := echo.QueryParamsBinder(c).MustFloat64("value", &value).BindError(); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "value is required")
	}
	finding, err := h.svc.EvaluateLab(test, value, c.QueryParam("demographic"))
	if err != nil {
		if errors.Is(err, ErrUnknownLabTest) {
			return echo.NewHTTPError(http.StatusNotFound, "unknown lab test")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, finding)
}

func (h *Handler) ListSymptomAnalyses(c echo.Context) error {
	pid, err := uuid.Parse(c.Param("patientId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid patient id")
	}
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListSymptomAnalyses(c.Request().Context(), pid, pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) ListReportRecords(c echo.Context) error {
	pid, err := uuid.Parse(c.Param("patientId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid patient id")
	}
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListReportRecords(c.Request().Context(), pid, pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}
