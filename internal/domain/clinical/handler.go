package clinical

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/clinicops/clinicops/internal/domain/scheduling"
	"github.com/clinicops/clinicops/internal/platform/apperr"
	"github.com/clinicops/clinicops/internal/platform/auth"
	"github.com/clinicops/clinicops/pkg/pagination"
)

type Handler struct {
	svc        *Service
	dispatcher scheduling.IntentDispatcher
}

func NewHandler(svc *Service, dispatcher scheduling.IntentDispatcher) *Handler {
	return &Handler{svc: svc, dispatcher: dispatcher}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	clinicalGroup := api.Group("", auth.RequireRole(scheduling.RoleAdmin, scheduling.RolePhysician, scheduling.RoleNurse, scheduling.RoleDentist))
	clinicalGroup.POST("/appointments/:id/vitals", h.RecordVitals)
	clinicalGroup.GET("/appointments/:id/vitals", h.GetVitals)
	clinicalGroup.POST("/appointments/:id/soap-notes", h.SaveSoapNote)
	clinicalGroup.GET("/appointments/:id/soap-notes", h.ListSoapNotes)
	clinicalGroup.GET("/soap-notes/:id", h.GetSoapNote)
	clinicalGroup.PUT("/soap-notes/:id", h.UpdateSoapNote)
	clinicalGroup.DELETE("/soap-notes/:id", h.DeleteSoapNote)
}

func actorFromContext(c echo.Context) (scheduling.Actor, error) {
	ctx := c.Request().Context()
	id, err := uuid.Parse(auth.UserIDFromContext(ctx))
	if err != nil {
		return scheduling.Actor{}, echo.NewHTTPError(http.StatusUnauthorized, "authenticated subject is not a staff id")
	}
	return scheduling.Actor{ID: id, Roles: auth.RolesFromContext(ctx)}, nil
}

func httpError(err error) error {
	return echo.NewHTTPError(apperr.HTTPStatus(err), apperr.Message(err))
}

func (h *Handler) RecordVitals(c echo.Context) error {
	appointmentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	actor, err := actorFromContext(c)
	if err != nil {
		return err
	}
	var payload VitalsPayload
	if err := c.Bind(&payload); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	v, intents, err := h.svc.RecordVitals(c.Request().Context(), appointmentID, payload, actor)
	if err != nil {
		return httpError(err)
	}
	if h.dispatcher != nil && len(intents) > 0 {
		h.dispatcher.Dispatch(c.Request().Context(), intents...)
	}
	return c.JSON(http.StatusCreated, v)
}

func (h *Handler) GetVitals(c echo.Context) error {
	appointmentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	v, err := h.svc.VitalsForAppointment(c.Request().Context(), appointmentID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, v)
}

func (h *Handler) SaveSoapNote(c echo.Context) error {
	appointmentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	actor, err := actorFromContext(c)
	if err != nil {
		return err
	}
	var payload SoapNotePayload
	if err := c.Bind(&payload); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	n, err := h.svc.SaveSoapNote(c.Request().Context(), appointmentID, payload, actor.ID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, n)
}

func (h *Handler) GetSoapNote(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	n, err := h.svc.GetSoapNote(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, n)
}

func (h *Handler) ListSoapNotes(c echo.Context) error {
	appointmentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListSoapNotes(c.Request().Context(), appointmentID, pg.Limit, pg.Offset)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) UpdateSoapNote(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	actor, err := actorFromContext(c)
	if err != nil {
		return err
	}
	var payload SoapNotePayload
	if err := c.Bind(&payload); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	n, err := h.svc.UpdateSoapNote(c.Request().Context(), id, payload, actor)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, n)
}

func (h *Handler) DeleteSoapNote(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	actor, err := actorFromContext(c)
	if err != nil {
		return err
	}
	if err := h.svc.DeleteSoapNote(c.Request().Context(), id, actor); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}
