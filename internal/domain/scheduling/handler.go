package scheduling

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/clinicops/clinicops/internal/platform/apperr"
	"github.com/clinicops/clinicops/internal/platform/auth"
	"github.com/clinicops/clinicops/pkg/pagination"
)

// IntentDispatcher forwards emitted intents to external collaborators
// (reminder channels, calendar sync). Dispatch runs after the state change
// has committed; delivery failures are logged by the implementation and
// never surfaced to the caller.
type IntentDispatcher interface {
	Dispatch(ctx context.Context, intents ...Intent)
}

type Handler struct {
	svc        *Service
	dispatcher IntentDispatcher
	thresholds ReminderThresholds
}

func NewHandler(svc *Service, dispatcher IntentDispatcher) *Handler {
	return &Handler{svc: svc, dispatcher: dispatcher, thresholds: DefaultThresholds()}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	read := api.Group("", auth.RequireRole(RoleAdmin, RolePhysician, RoleNurse, RoleDentist, RoleRegistrar))
	read.GET("/appointments", h.ListAppointments)
	read.GET("/appointments/:id", h.GetAppointment)
	read.GET("/appointments/:id/providers", h.ListProviders)
	read.GET("/appointments/:id/reminder-due", h.ReminderDue)

	write := api.Group("", auth.RequireRole(RoleAdmin, RolePhysician, RoleNurse, RoleDentist, RoleRegistrar))
	write.POST("/appointments", h.ScheduleAppointment)
	write.POST("/appointments/:id/status", h.ChangeStatus)
	write.POST("/appointments/:id/reschedule", h.Reschedule)
	write.POST("/appointments/:id/cancel", h.Cancel)
	write.POST("/appointments/:id/providers", h.AssignProvider)
}

func (h *Handler) dispatch(c echo.Context, intents []Intent) {
	if h.dispatcher != nil && len(intents) > 0 {
		h.dispatcher.Dispatch(c.Request().Context(), intents...)
	}
}

// actorFromContext builds the mutating-call actor from the auth context.
func actorFromContext(c echo.Context) (Actor, error) {
	ctx := c.Request().Context()
	id, err := uuid.Parse(auth.UserIDFromContext(ctx))
	if err != nil {
		return Actor{}, echo.NewHTTPError(http.StatusUnauthorized, "authenticated subject is not a staff id")
	}
	return Actor{ID: id, Roles: auth.RolesFromContext(ctx)}, nil
}

func httpError(err error) error {
	return echo.NewHTTPError(apperr.HTTPStatus(err), apperr.Message(err))
}

func (h *Handler) ScheduleAppointment(c echo.Context) error {
	var req ScheduleRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	appt, intents, err := h.svc.Schedule(c.Request().Context(), req)
	if err != nil {
		return httpError(err)
	}
	h.dispatch(c, intents)
	return c.JSON(http.StatusCreated, appt)
}

func (h *Handler) GetAppointment(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	appt, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, appt)
}

func (h *Handler) ListAppointments(c echo.Context) error {
	pg := pagination.FromContext(c)
	if pid := c.QueryParam("patient_id"); pid != "" {
		patientID, err := uuid.Parse(pid)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid patient_id")
		}
		items, total, err := h.svc.ListByPatient(c.Request().Context(), patientID, pg.Limit, pg.Offset)
		if err != nil {
			return httpError(err)
		}
		return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
	}
	if d := c.QueryParam("date"); d != "" {
		date, err := time.Parse("2006-01-02", d)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid date, want YYYY-MM-DD")
		}
		items, total, err := h.svc.ListByDate(c.Request().Context(), date, pg.Limit, pg.Offset)
		if err != nil {
			return httpError(err)
		}
		return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
	}
	return echo.NewHTTPError(http.StatusBadRequest, "patient_id or date query parameter is required")
}

type changeStatusRequest struct {
	Status Status `json:"status"`
}

func (h *Handler) ChangeStatus(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	actor, err := actorFromContext(c)
	if err != nil {
		return err
	}
	var req changeStatusRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	appt, intents, err := h.svc.ChangeStatus(c.Request().Context(), id, req.Status, actor)
	if err != nil {
		return httpError(err)
	}
	h.dispatch(c, intents)
	return c.JSON(http.StatusOK, appt)
}

type rescheduleRequest struct {
	AppointmentDate string `json:"appointment_date"`
	AppointmentTime string `json:"appointment_time"`
}

func (h *Handler) Reschedule(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	actor, err := actorFromContext(c)
	if err != nil {
		return err
	}
	var req rescheduleRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	date, err := time.Parse("2006-01-02", req.AppointmentDate)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid appointment_date, want YYYY-MM-DD")
	}
	appt, intents, err := h.svc.Reschedule(c.Request().Context(), id, date, req.AppointmentTime, actor)
	if err != nil {
		return httpError(err)
	}
	h.dispatch(c, intents)
	return c.JSON(http.StatusOK, appt)
}

type cancelRequest struct {
	Reason string `json:"reason"`
}

func (h *Handler) Cancel(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	actor, err := actorFromContext(c)
	if err != nil {
		return err
	}
	var req cancelRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	appt, intents, err := h.svc.Cancel(c.Request().Context(), id, req.Reason, actor)
	if err != nil {
		return httpError(err)
	}
	h.dispatch(c, intents)
	return c.JSON(http.StatusOK, appt)
}

type assignProviderRequest struct {
	ProviderID uuid.UUID `json:"provider_id"`
}

func (h *Handler) AssignProvider(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	actor, err := actorFromContext(c)
	if err != nil {
		return err
	}
	var req assignProviderRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	appt, intents, err := h.svc.AssignProvider(c.Request().Context(), id, req.ProviderID, actor)
	if err != nil {
		return httpError(err)
	}
	h.dispatch(c, intents)
	return c.JSON(http.StatusOK, appt)
}

func (h *Handler) ListProviders(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	items, err := h.svc.Assignments(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, items)
}

// ReminderDue evaluates the reminder policy for one appointment, optionally
// at a caller-supplied instant (?at=RFC3339) for testing dispatch jobs.
func (h *Handler) ReminderDue(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	appt, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	now := time.Now()
	if at := c.QueryParam("at"); at != "" {
		now, err = time.Parse(time.RFC3339, at)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid at, want RFC3339")
		}
	}
	tier := DueTier(appt, now, h.thresholds)
	return c.JSON(http.StatusOK, map[string]interface{}{
		"appointment_id": appt.ID,
		"due":            tier != TierNone,
		"tier":           tier.String(),
	})
}
