package scheduling

import "github.com/google/uuid"

// IntentType identifies a side-effect signal the engine emits for external
// collaborators. The engine never performs the side effect itself.
type IntentType string

const (
	IntentReminderDue       IntentType = "REMINDER_DUE"
	IntentReminderCancelled IntentType = "REMINDER_CANCELLED"
	IntentProviderAssigned  IntentType = "PROVIDER_ASSIGNED"
	IntentCalendarSyncDue   IntentType = "CALENDAR_SYNC_DUE"
)

// Intent is a side-effect signal tied to one appointment.
type Intent struct {
	Type          IntentType   `json:"type"`
	AppointmentID uuid.UUID    `json:"appointment_id"`
	ProviderID    *uuid.UUID   `json:"provider_id,omitempty"`
	Tier          ReminderTier `json:"tier,omitempty"`
}

func reminderCancelled(appointmentID uuid.UUID) Intent {
	return Intent{Type: IntentReminderCancelled, AppointmentID: appointmentID}
}

func calendarSyncDue(appointmentID uuid.UUID) Intent {
	return Intent{Type: IntentCalendarSyncDue, AppointmentID: appointmentID}
}

func providerAssigned(appointmentID, providerID uuid.UUID) Intent {
	return Intent{Type: IntentProviderAssigned, AppointmentID: appointmentID, ProviderID: &providerID}
}
