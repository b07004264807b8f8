package clinical

import (
	"context"

	"github.com/google/uuid"
)

// VitalsRepository persists vitals snapshots. Create must fail with
// AlreadyExists when the appointment already has a row; the table carries a
// unique constraint on appointment_id as the backstop for races.
type VitalsRepository interface {
	Create(ctx context.Context, v *Vitals) error
	GetByID(ctx context.Context, id uuid.UUID) (*Vitals, error)
	// GetByAppointment returns (nil, nil) when no vitals exist yet.
	GetByAppointment(ctx context.Context, appointmentID uuid.UUID) (*Vitals, error)
}

// SoapNoteRepository persists SOAP notes.
type SoapNoteRepository interface {
	Create(ctx context.Context, n *SoapNote) error
	GetByID(ctx context.Context, id uuid.UUID) (*SoapNote, error)
	Update(ctx context.Context, n *SoapNote) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListByAppointment(ctx context.Context, appointmentID uuid.UUID, limit, offset int) ([]*SoapNote, int, error)
}
