package analytics

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/92kareeem/healthai/internal/domain/identity"
	"github.com/92kareeem/healthai/internal/platform/auth"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/analytics/dashboard", h.Dashboard, auth.RequireRole(identity.RoleDoctor))
	api.GET("/analytics/doctors/:doctorId", h.Doctor, auth.RequireRole(identity.RoleDoctor))
	api.GET("/patients/:patientId/vital-trends", h.PatientTrends)
}

func (h *Handler) Dashboard(c echo.Context) error {
	d, err := h.svc.Dashboard(c.Request().Context(), c.QueryParam("period"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, d)
}

func (h *Handler) Doctor(c echo.Context) error {
	did, err := uuid.Parse(c.Param("doctorId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid doctor id")
	}
	stats, err := h.svc.DoctorAnalytics(c.Request().Context(), did, c.QueryParam("period"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, stats)
}

func (h *Handler) PatientTrends(c echo.Context) error {
	pid, err := uuid.Parse(c.Param("patientId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid patient id")
	}
	trends, err := h.svc.PatientTrends(c.Request().Context(), pid, c.QueryParam("period"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, trends)
}
