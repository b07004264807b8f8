package scheduling

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// AppointmentRepository persists appointments. Update applies a
// compare-and-swap on VersionID and must return a Conflict error when the
// stored version has moved on.
type AppointmentRepository interface {
	Create(ctx context.Context, a *Appointment) error
	GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error)
	// Update writes status, slot, schedule_change_count, cancellation reason
	// and vitals link, guarded by a.VersionID. On success the appointment's
	// VersionID and UpdatedAt are refreshed in place.
	Update(ctx context.Context, a *Appointment) error
	ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Appointment, int, error)
	ListByDate(ctx context.Context, date time.Time, limit, offset int) ([]*Appointment, int, error)
	// ListActiveByProviderOnDate returns appointments on the date that assign
	// the provider and still occupy their slot (not cancelled, not no-show).
	ListActiveByProviderOnDate(ctx context.Context, providerID uuid.UUID, date time.Time) ([]*Appointment, error)
}

// AssignmentRepository persists appointment-provider links.
type AssignmentRepository interface {
	Add(ctx context.Context, pa *ProviderAssignment) error
	ListByAppointment(ctx context.Context, appointmentID uuid.UUID) ([]*ProviderAssignment, error)
	Exists(ctx context.Context, appointmentID, providerID uuid.UUID) (bool, error)
}

// ProviderDirectory is the read-only directory lookup the engine consults for
// role eligibility. The directory domain supplies the implementation.
type ProviderDirectory interface {
	ProviderRole(ctx context.Context, providerID uuid.UUID) (string, error)
}
