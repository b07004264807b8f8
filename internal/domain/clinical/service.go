package clinical

import (
	"context"

	"github.com/google/uuid"

	"github.com/clinicops/clinicops/internal/domain/scheduling"
	"github.com/clinicops/clinicops/internal/platform/apperr"
)

// AppointmentGateway is the slice of the lifecycle engine the clinical record
// gate needs: reads, the vitals back-link, and status transitions. The gate
// never writes appointment status directly.
type AppointmentGateway interface {
	Get(ctx context.Context, id uuid.UUID) (*scheduling.Appointment, error)
	ChangeStatus(ctx context.Context, id uuid.UUID, target scheduling.Status, actor scheduling.Actor) (*scheduling.Appointment, []scheduling.Intent, error)
	LinkVitals(ctx context.Context, id, vitalsID uuid.UUID) error
}

// Transactor runs fn atomically. Repository and gateway calls made with the
// context fn receives share one transaction; an error rolls back everything.
type Transactor interface {
	InTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Service is the clinical record gate. It enforces that vitals are recorded
// once per appointment and only in an eligible state, and that SOAP notes are
// blocked only by terminal non-completed states.
type Service struct {
	vitals       VitalsRepository
	notes        SoapNoteRepository
	appointments AppointmentGateway
	tx           Transactor
}

func NewService(vitals VitalsRepository, notes SoapNoteRepository, appointments AppointmentGateway, tx Transactor) *Service {
	return &Service{vitals: vitals, notes: notes, appointments: appointments, tx: tx}
}

// VitalsPayload carries the measurements of one recording.
type VitalsPayload struct {
	TemperatureC     *float64 `json:"temperature_c,omitempty"`
	BPSystolic       *int     `json:"bp_systolic,omitempty"`
	BPDiastolic      *int     `json:"bp_diastolic,omitempty"`
	HeartRate        *int     `json:"heart_rate,omitempty"`
	RespiratoryRate  *int     `json:"respiratory_rate,omitempty"`
	OxygenSaturation *int     `json:"oxygen_saturation,omitempty"`
	WeightKg         *float64 `json:"weight_kg,omitempty"`
	HeightCm         *float64 `json:"height_cm,omitempty"`
	Notes            *string  `json:"notes,omitempty"`
}

// RecordVitals persists the appointment's single vitals snapshot and links it
// back. Taking vitals marks the start of the encounter: a CHECKED_IN
// appointment is promoted to ATTENDING through the lifecycle engine, so the
// coupling holds regardless of client behavior. The create, back-link, and
// promotion run in one transaction; a failed step (including a version
// conflict from a concurrent transition) leaves no orphan vitals row, so the
// caller can simply retry.
func (s *Service) RecordVitals(ctx context.Context, appointmentID uuid.UUID, payload VitalsPayload, provider scheduling.Actor) (*Vitals, []scheduling.Intent, error) {
	var (
		v       *Vitals
		intents []scheduling.Intent
	)
	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		appt, err := s.appointments.Get(ctx, appointmentID)
		if err != nil {
			return err
		}

		existing, err := s.vitals.GetByAppointment(ctx, appointmentID)
		if err != nil {
			return err
		}
		if existing != nil {
			return apperr.New(apperr.KindAlreadyExists, "vitals already recorded for this appointment")
		}
		if appt.Status != scheduling.StatusCheckedIn && appt.Status != scheduling.StatusAttending {
			return apperr.New(apperr.KindInvalidState,
				"vitals may only be recorded while the patient is checked in or attending, not %s", appt.Status)
		}

		v = &Vitals{
			AppointmentID:    appointmentID,
			TemperatureC:     payload.TemperatureC,
			BPSystolic:       payload.BPSystolic,
			BPDiastolic:      payload.BPDiastolic,
			HeartRate:        payload.HeartRate,
			RespiratoryRate:  payload.RespiratoryRate,
			OxygenSaturation: payload.OxygenSaturation,
			WeightKg:         payload.WeightKg,
			HeightCm:         payload.HeightCm,
			BMI:              ComputeBMI(payload.WeightKg, payload.HeightCm),
			Notes:            payload.Notes,
			CreatedByID:      provider.ID,
		}
		if err := s.vitals.Create(ctx, v); err != nil {
			return err
		}
		if err := s.appointments.LinkVitals(ctx, appointmentID, v.ID); err != nil {
			return err
		}

		if appt.Status == scheduling.StatusCheckedIn {
			_, emitted, err := s.appointments.ChangeStatus(ctx, appointmentID, scheduling.StatusAttending, provider)
			if err != nil {
				return err
			}
			intents = emitted
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return v, intents, nil
}

// VitalsForAppointment returns the appointment's vitals, or NotFound.
func (s *Service) VitalsForAppointment(ctx context.Context, appointmentID uuid.UUID) (*Vitals, error) {
	v, err := s.vitals.GetByAppointment(ctx, appointmentID)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, apperr.New(apperr.KindNotFound, "no vitals recorded for this appointment")
	}
	return v, nil
}

// SoapNotePayload carries the four sections as entered. List fields accept
// array or object shape; normalization happens in LineList unmarshalling.
type SoapNotePayload struct {
	Subjective Subjective `json:"subjective"`
	Objective  Objective  `json:"objective"`
	Assessment Assessment `json:"assessment"`
	Plan       Plan       `json:"plan"`
}

// SaveSoapNote accepts a note for any appointment that is not cancelled or
// no-show. When no vitals exist the note is still accepted with an empty
// snapshot; the UI warns, the gate does not block.
func (s *Service) SaveSoapNote(ctx context.Context, appointmentID uuid.UUID, payload SoapNotePayload, providerID uuid.UUID) (*SoapNote, error) {
	appt, err := s.appointments.Get(ctx, appointmentID)
	if err != nil {
		return nil, err
	}
	if appt.Status == scheduling.StatusCancelled || appt.Status == scheduling.StatusNoShow {
		return nil, apperr.New(apperr.KindInvalidState,
			"cannot document a %s appointment", appt.Status)
	}

	v, err := s.vitals.GetByAppointment(ctx, appointmentID)
	if err != nil {
		return nil, err
	}

	n := &SoapNote{
		AppointmentID: appointmentID,
		Subjective:    payload.Subjective,
		Objective:     payload.Objective,
		Assessment:    payload.Assessment,
		Plan:          payload.Plan,
		CreatedByID:   providerID,
	}
	// snapshot is copied at write time, never a live reference
	n.Objective.VitalsSnapshot = snapshotOf(v)

	if err := s.notes.Create(ctx, n); err != nil {
		return nil, err
	}
	return n, nil
}

// GetSoapNote returns one note.
func (s *Service) GetSoapNote(ctx context.Context, id uuid.UUID) (*SoapNote, error) {
	return s.notes.GetByID(ctx, id)
}

// ListSoapNotes returns an appointment's notes, oldest first.
func (s *Service) ListSoapNotes(ctx context.Context, appointmentID uuid.UUID, limit, offset int) ([]*SoapNote, int, error) {
	return s.notes.ListByAppointment(ctx, appointmentID, limit, offset)
}

// UpdateSoapNote is the explicit amendment path. Only the original author or
// an administrator may amend; the amender is recorded on the note.
func (s *Service) UpdateSoapNote(ctx context.Context, id uuid.UUID, payload SoapNotePayload, actor scheduling.Actor) (*SoapNote, error) {
	n, err := s.notes.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if n.CreatedByID != actor.ID && !actor.HasRole(scheduling.RoleAdmin) {
		return nil, apperr.New(apperr.KindRoleDenied, "only the author or an administrator may amend a note")
	}

	snapshot := n.Objective.VitalsSnapshot
	n.Subjective = payload.Subjective
	n.Objective = payload.Objective
	n.Assessment = payload.Assessment
	n.Plan = payload.Plan
	// amendments keep the original write-time snapshot
	n.Objective.VitalsSnapshot = snapshot
	amender := actor.ID
	n.AmendedByID = &amender

	if err := s.notes.Update(ctx, n); err != nil {
		return nil, err
	}
	return n, nil
}

// DeleteSoapNote hard-deletes a note. Author or administrator only.
func (s *Service) DeleteSoapNote(ctx context.Context, id uuid.UUID, actor scheduling.Actor) error {
	n, err := s.notes.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if n.CreatedByID != actor.ID && !actor.HasRole(scheduling.RoleAdmin) {
		return apperr.New(apperr.KindRoleDenied, "only the author or an administrator may delete a note")
	}
	return s.notes.Delete(ctx, id)
}
