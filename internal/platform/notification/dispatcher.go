package notification

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/clinicops/clinicops/internal/domain/scheduling"
)

// AppointmentLookup resolves an appointment for message rendering.
type AppointmentLookup interface {
	Get(ctx context.Context, id uuid.UUID) (*scheduling.Appointment, error)
}

// ProviderContacts resolves a provider's email address for notifications.
type ProviderContacts interface {
	ProviderEmail(ctx context.Context, providerID uuid.UUID) (string, error)
}

// CalendarSync pushes appointment changes to an external calendar.
type CalendarSync interface {
	SyncAppointment(ctx context.Context, appt *scheduling.Appointment) error
}

// ReminderCanceller stops pending reminders for an appointment.
type ReminderCanceller interface {
	CancelReminders(appointmentID uuid.UUID)
}

// LogCalendarSync is a CalendarSync that only records the sync request. It
// stands in until an external calendar integration is configured.
type LogCalendarSync struct {
	Logger zerolog.Logger
}

func (s *LogCalendarSync) SyncAppointment(_ context.Context, appt *scheduling.Appointment) error {
	s.Logger.Info().
		Str("appointment_id", appt.ID.String()).
		Time("starts_at", appt.StartsAt()).
		Str("status", string(appt.Status)).
		Msg("calendar sync requested")
	return nil
}

// Dispatcher routes lifecycle intents to their side-effect collaborators.
// Delivery is best-effort: failures are logged, never surfaced to the
// request that produced the intent.
type Dispatcher struct {
	manager   *Manager
	appts     AppointmentLookup
	providers ProviderContacts
	calendar  CalendarSync
	reminders ReminderCanceller
	logger    zerolog.Logger
}

func NewDispatcher(manager *Manager, appts AppointmentLookup, providers ProviderContacts, calendar CalendarSync, reminders ReminderCanceller, logger zerolog.Logger) *Dispatcher {
	return &Dispatcher{
		manager:   manager,
		appts:     appts,
		providers: providers,
		calendar:  calendar,
		reminders: reminders,
		logger:    logger,
	}
}

// Dispatch handles each intent in order. Implements the dispatcher contract
// used by the scheduling and clinical handlers.
func (d *Dispatcher) Dispatch(ctx context.Context, intents ...scheduling.Intent) {
	for _, intent := range intents {
		d.logger.Debug().
			Str("intent", string(intent.Type)).
			Str("appointment_id", intent.AppointmentID.String()).
			Msg("dispatching intent")

		switch intent.Type {
		case scheduling.IntentReminderCancelled:
			if d.reminders != nil {
				d.reminders.CancelReminders(intent.AppointmentID)
			}
		case scheduling.IntentCalendarSyncDue:
			d.syncCalendar(ctx, intent.AppointmentID)
		case scheduling.IntentProviderAssigned:
			d.notifyProvider(ctx, intent)
		default:
			d.logger.Warn().Str("intent", string(intent.Type)).Msg("unhandled intent type")
		}
	}
}

func (d *Dispatcher) syncCalendar(ctx context.Context, appointmentID uuid.UUID) {
	if d.calendar == nil {
		return
	}
	appt, err := d.appts.Get(ctx, appointmentID)
	if err != nil {
		d.logger.Error().Err(err).
			Str("appointment_id", appointmentID.String()).
			Msg("calendar sync: load appointment")
		return
	}
	if err := d.calendar.SyncAppointment(ctx, appt); err != nil {
		d.logger.Error().Err(err).
			Str("appointment_id", appointmentID.String()).
			Msg("calendar sync failed")
	}
}

func (d *Dispatcher) notifyProvider(ctx context.Context, intent scheduling.Intent) {
	if d.providers == nil || intent.ProviderID == nil {
		return
	}
	email, err := d.providers.ProviderEmail(ctx, *intent.ProviderID)
	if err != nil || email == "" {
		if err != nil {
			d.logger.Error().Err(err).
				Str("provider_id", intent.ProviderID.String()).
				Msg("provider assignment notice: contact lookup")
		}
		return
	}
	appt, err := d.appts.Get(ctx, intent.AppointmentID)
	if err != nil {
		d.logger.Error().Err(err).
			Str("appointment_id", intent.AppointmentID.String()).
			Msg("provider assignment notice: load appointment")
		return
	}
	data := map[string]string{
		"date": appt.AppointmentDate.Format("2006-01-02"),
		"time": appt.AppointmentTime,
	}
	if _, err := d.manager.SendFromTemplate(ctx, "provider-assigned", data, email); err != nil {
		d.logger.Error().Err(err).
			Str("provider_id", intent.ProviderID.String()).
			Msg("provider assignment notice failed")
	}
}
