package emergency

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/92kareeem/healthai/internal/domain/identity"
	"github.com/92kareeem/healthai/internal/platform/auth"
	"github.com/92kareeem/healthai/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.POST("/patients/:patientId/emergency-alerts", h.CreateAlert)
	api.GET("/emergency-alerts", h.ListAlerts, auth.RequireRole(identity.RoleDoctor))
	api.GET("/emergency-alerts/:id", h.GetAlert)
	api.POST("/emergency-alerts/:id/resolve", h.ResolveAlert, auth.RequireRole(identity.RoleDoctor))
	api.GET("/patients/:patientId/emergency-alerts", h.ListPatientAlerts)

	api.POST("/patients/:patientId/ambulance-requests", h.RequestAmbulance)
	api.GET("/ambulances/:trackingId", h.TrackAmbulance)
	api.PUT("/ambulances/:trackingId/status", h.UpdateAmbulanceStatus, auth.RequireRole(identity.RoleDoctor))
	api.GET("/patients/:patientId/ambulance-requests", h.ListAmbulanceRequests)
}

func (h *Handler) CreateAlert(c echo.Context) error {
	pid, err := uuid.Parse(c.Param("patientId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid patient id")
	}
	var in AlertInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	a, err := h.svc.CreateAlert(c.Request().Context(), pid, in)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, a)
}

func (h *Handler) GetAlert(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid alert id")
	}
	a, err := h.svc.GetAlert(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "alert not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, a)
}

func (h *Handler) ListAlerts(c echo.Context) error {
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListAlerts(c.Request().Context(), c.QueryParam("status"), pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) ListPatientAlerts(c echo.Context) error {
	pid, err := uuid.Parse(c.Param("patientId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid patient id")
	}
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListAlertsByPatient(c.Request().Context(), pid, pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) ResolveAlert(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid alert id")
	}
	raw, ok := auth.UserIDFromContext(c.Request().Context())
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "no session")
	}
	resolvedBy, err := uuid.Parse(raw)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid session subject")
	}
	if err := h.svc.ResolveAlert(c.Request().Context(), id, resolvedBy); err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			return echo.NewHTTPError(http.StatusNotFound, "alert not found")
		case errors.Is(err, ErrAlreadyResolved):
			return echo.NewHTTPError(http.StatusConflict, "alert already resolved")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) RequestAmbulance(c echo.Context) error {
	pid, err := uuid.Parse(c.Param("patientId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid patient id")
	}
	var in AmbulanceInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	req, err := h.svc.RequestAmbulance(c.Request().Context(), pid, in)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, req)
}

func (h *Handler) TrackAmbulance(c echo.Context) error {
	req, err := h.svc.TrackAmbulance(c.Request().Context(), c.Param("trackingId"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "ambulance request not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, req)
}

type statusUpdateRequest struct {
	Status string `json:"status"`
}

func (h *Handler) UpdateAmbulanceStatus(c echo.Context) error {
	var body statusUpdateRequest
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	req, err := h.svc.UpdateAmbulanceStatus(c.Request().Context(), c.Param("trackingId"), body.Status)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "ambulance request not found")
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, req)
}

func (h *Handler) ListAmbulanceRequests(c echo.Context) error {
	pid, err := uuid.Parse(c.Param("patientId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid patient id")
	}
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListAmbulanceRequests(c.Request().Context(), pid, pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}
