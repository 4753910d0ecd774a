package consultation

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
	api.POST("/patients/:patientId/consultations", h.Schedule)
	api.GET("/consultations/:id", h.Get)
	api.PUT("/consultations/:id", h.Reschedule)
	api.POST("/consultations/:id/complete", h.Complete, auth.RequireRole(identity.RoleDoctor))
	api.POST("/consultations/:id/cancel", h.Cancel)
	api.GET("/patients/:patientId/consultations", h.ListByPatient)
	api.GET("/doctors/:doctorId/consultations", h.ListByDoctor, auth.RequireRole(identity.RoleDoctor))
}

func (h *Handler) Schedule(c echo.Context) error {
	pid, err := uuid.Parse(c.Param("patientId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid patient id")
	}
	var in ScheduleInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	booked, err := h.svc.Schedule(c.Request().Context(), pid, in)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, booked)
}

func (h *Handler) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid consultation id")
	}
	found, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "consultation not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, found)
}

func (h *Handler) Reschedule(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid consultation id")
	}
	var in RescheduleInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	updated, err := h.svc.Reschedule(c.Request().Context(), id, in)
	if err != nil {
		return h.mutationError(err)
	}
	return c.JSON(http.StatusOK, updated)
}

func (h *Handler) Complete(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid consultation id")
	}
	var in CompleteInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	completed, err := h.svc.Complete(c.Request().Context(), id, in)
	if err != nil {
		return h.mutationError(err)
	}
	return c.JSON(http.StatusOK, completed)
}

func (h *Handler) Cancel(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid consultation id")
	}
	cancelled, err := h.svc.Cancel(c.Request().Context(), id)
	if err != nil {
		return h.mutationError(err)
	}
	return c.JSON(http.StatusOK, cancelled)
}

func (h *Handler) ListByPatient(c echo.Context) error {
	pid, err := uuid.Parse(c.Param("patientId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid patient id")
	}
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListByPatient(c.Request().Context(), pid, pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) ListByDoctor(c echo.Context) error {
	did, err := uuid.Parse(c.Param("doctorId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid doctor id")
	}
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListByDoctor(c.Request().Context(), did, pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) mutationError(err error) error {
	switch {
	case errors.Is(err, ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "consultation not found")
	case errors.Is(err, ErrNotScheduled):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	}
	return echo.NewHTTPError(http.StatusBadRequest, err.Error())
}
