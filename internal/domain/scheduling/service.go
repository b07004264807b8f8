package scheduling

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/clinicops/clinicops/internal/platform/apperr"
)

// Service is the appointment lifecycle engine. It owns every status
// transition, consults the conflict checker and the provider directory, and
// emits side-effect intents for external collaborators. All mutating
// operations on one appointment serialize on a per-appointment lock and a
// version compare-and-swap in the repository.
type Service struct {
	appts       AppointmentRepository
	assignments AssignmentRepository
	directory   ProviderDirectory
	locks       *apptLocker
	now         func() time.Time
}

func NewService(appts AppointmentRepository, assignments AssignmentRepository, directory ProviderDirectory) *Service {
	return &Service{
		appts:       appts,
		assignments: assignments,
		directory:   directory,
		locks:       newApptLocker(),
		now:         time.Now,
	}
}

// ScheduleRequest carries the fields of the scheduling flow.
type ScheduleRequest struct {
	PatientID       uuid.UUID `json:"patient_id"`
	Purposes        []string  `json:"purposes"`
	OtherPurpose    *string   `json:"other_purpose,omitempty"`
	HasInsurance    bool      `json:"has_insurance"`
	AppointmentDate time.Time `json:"appointment_date"`
	AppointmentTime string    `json:"appointment_time"`
	DurationMinutes int       `json:"duration_minutes,omitempty"`
	Notes           *string   `json:"notes,omitempty"`
	Phone           *string   `json:"phone,omitempty"`
	Email           *string   `json:"email,omitempty"`
	// SelfService marks patient-submitted requests, which start in SUBMITTED
	// and wait for front-desk confirmation into SCHEDULED.
	SelfService bool `json:"self_service,omitempty"`
}

// Schedule creates a new appointment. Staff-created appointments start
// SCHEDULED; self-service requests start SUBMITTED.
func (s *Service) Schedule(ctx context.Context, req ScheduleRequest) (*Appointment, []Intent, error) {
	if req.PatientID == uuid.Nil {
		return nil, nil, apperr.New(apperr.KindValidation, "patient_id is required")
	}
	if err := ValidatePurposes(req.Purposes, req.OtherPurpose); err != nil {
		return nil, nil, err
	}
	if req.AppointmentDate.IsZero() {
		return nil, nil, apperr.New(apperr.KindValidation, "appointment_date is required")
	}
	if _, err := ParseTimeOfDay(req.AppointmentTime); err != nil {
		return nil, nil, err
	}
	if req.DurationMinutes < 0 {
		return nil, nil, apperr.New(apperr.KindValidation, "duration_minutes must not be negative")
	}

	status := StatusScheduled
	if req.SelfService {
		status = StatusSubmitted
	}
	appt := &Appointment{
		PatientID:       req.PatientID,
		Purposes:        req.Purposes,
		OtherPurpose:    req.OtherPurpose,
		HasInsurance:    req.HasInsurance,
		AppointmentDate: truncateToDate(req.AppointmentDate),
		AppointmentTime: req.AppointmentTime,
		DurationMinutes: req.DurationMinutes,
		Status:          status,
		Notes:           req.Notes,
		Phone:           req.Phone,
		Email:           req.Email,
	}
	if err := s.appts.Create(ctx, appt); err != nil {
		return nil, nil, err
	}

	return appt, []Intent{calendarSyncDue(appt.ID)}, nil
}

// Get returns one appointment.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	return s.appts.GetByID(ctx, id)
}

// ListByPatient returns a patient's appointments, newest first.
func (s *Service) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Appointment, int, error) {
	return s.appts.ListByPatient(ctx, patientID, limit, offset)
}

// ListByDate returns the day list for the front desk.
func (s *Service) ListByDate(ctx context.Context, date time.Time, limit, offset int) ([]*Appointment, int, error) {
	return s.appts.ListByDate(ctx, truncateToDate(date), limit, offset)
}

// Assignments returns the providers assigned to an appointment.
func (s *Service) Assignments(ctx context.Context, appointmentID uuid.UUID) ([]*ProviderAssignment, error) {
	return s.assignments.ListByAppointment(ctx, appointmentID)
}

// ChangeStatus validates and applies one lifecycle transition. It returns the
// updated appointment and the intents the transition emitted. A stale
// concurrent write surfaces as Conflict, not a silent overwrite.
func (s *Service) ChangeStatus(ctx context.Context, id uuid.UUID, target Status, actor Actor) (*Appointment, []Intent, error) {
	s.locks.lock(id)
	defer s.locks.unlock(id)

	appt, err := s.appts.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	return s.applyStatus(ctx, appt, target, actor)
}

// applyStatus performs the transition with the appointment lock already held.
func (s *Service) applyStatus(ctx context.Context, appt *Appointment, target Status, actor Actor) (*Appointment, []Intent, error) {
	if !target.Valid() {
		return nil, nil, apperr.New(apperr.KindValidation, "unknown status: %s", target)
	}
	if appt.Status.Terminal() {
		return nil, nil, apperr.New(apperr.KindInvalidTransition,
			"appointment is %s; no further transitions are accepted", appt.Status)
	}
	if !appt.Status.CanTransition(target) {
		return nil, nil, apperr.New(apperr.KindInvalidTransition,
			"cannot transition from %s to %s", appt.Status, target)
	}
	if (target == StatusAttending || target == StatusCompleted) && !actor.IsClinical() && !actor.HasRole(RoleAdmin) {
		return nil, nil, apperr.New(apperr.KindRoleDenied,
			"only clinical staff may move an appointment to %s", target)
	}

	appt.Status = target
	if err := s.appts.Update(ctx, appt); err != nil {
		return nil, nil, err
	}

	var intents []Intent
	switch target {
	case StatusCancelled, StatusNoShow:
		intents = append(intents, reminderCancelled(appt.ID), calendarSyncDue(appt.ID))
	}
	return appt, intents, nil
}

// Reschedule moves an appointment to a new slot. Valid only from SCHEDULED or
// CONFIRMED; the conflict checker re-runs against the new slot for every
// assigned provider before anything is written, and schedule_change_count
// increments exactly once per successful move.
func (s *Service) Reschedule(ctx context.Context, id uuid.UUID, newDate time.Time, newTime string, actor Actor) (*Appointment, []Intent, error) {
	if _, err := ParseTimeOfDay(newTime); err != nil {
		return nil, nil, err
	}
	if newDate.IsZero() {
		return nil, nil, apperr.New(apperr.KindValidation, "new appointment date is required")
	}
	newDate = truncateToDate(newDate)

	s.locks.lock(id)
	defer s.locks.unlock(id)

	appt, err := s.appts.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if appt.Status != StatusScheduled && appt.Status != StatusConfirmed {
		return nil, nil, apperr.New(apperr.KindInvalidState,
			"appointment in %s cannot be rescheduled", appt.Status)
	}

	conflict, err := s.slotConflict(ctx, appt, newDate, newTime)
	if err != nil {
		return nil, nil, err
	}
	if conflict {
		return nil, nil, apperr.New(apperr.KindConflict,
			"an assigned provider is booked at %s %s", newDate.Format("2006-01-02"), newTime)
	}

	if _, _, err := s.applyStatus(ctx, appt, StatusRescheduled, actor); err != nil {
		return nil, nil, err
	}

	appt.AppointmentDate = newDate
	appt.AppointmentTime = newTime
	appt.ScheduleChangeCount++
	appt.Status = StatusScheduled
	if err := s.appts.Update(ctx, appt); err != nil {
		return nil, nil, err
	}

	return appt, []Intent{calendarSyncDue(appt.ID)}, nil
}

// Cancel is a convenience wrapper recording a cancellation reason alongside
// the CANCELLED transition.
func (s *Service) Cancel(ctx context.Context, id uuid.UUID, reason string, actor Actor) (*Appointment, []Intent, error) {
	s.locks.lock(id)
	defer s.locks.unlock(id)

	appt, err := s.appts.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if reason != "" {
		appt.CancellationReason = &reason
	}
	return s.applyStatus(ctx, appt, StatusCancelled, actor)
}

// AssignProvider adds a provider to the appointment after role-eligibility
// and conflict checks. Re-assigning an already-assigned provider is a no-op.
func (s *Service) AssignProvider(ctx context.Context, id, providerID uuid.UUID, actor Actor) (*Appointment, []Intent, error) {
	if providerID == uuid.Nil {
		return nil, nil, apperr.New(apperr.KindValidation, "provider_id is required")
	}

	s.locks.lock(id)
	defer s.locks.unlock(id)

	appt, err := s.appts.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if !appt.Status.Active() {
		return nil, nil, apperr.New(apperr.KindInvalidState,
			"cannot assign a provider to a %s appointment", appt.Status)
	}

	assigned, err := s.assignments.Exists(ctx, id, providerID)
	if err != nil {
		return nil, nil, err
	}
	if assigned {
		return appt, nil, nil
	}

	role, err := s.directory.ProviderRole(ctx, providerID)
	if err != nil {
		return nil, nil, err
	}
	if !RoleEligible(role, appt.Purposes) {
		return nil, nil, apperr.New(apperr.KindRoleDenied,
			"provider role %s is not eligible for this appointment's purposes", role)
	}

	conflict, err := s.HasConflict(ctx, providerID, appt.AppointmentDate, appt.AppointmentTime, appt.Duration(), &appt.ID)
	if err != nil {
		return nil, nil, err
	}
	if conflict {
		return nil, nil, apperr.New(apperr.KindConflict,
			"provider is booked at %s %s", appt.AppointmentDate.Format("2006-01-02"), appt.AppointmentTime)
	}

	pa := &ProviderAssignment{
		AppointmentID: id,
		ProviderID:    providerID,
		ProviderRole:  role,
		AssignedByID:  actor.ID,
	}
	if err := s.assignments.Add(ctx, pa); err != nil {
		return nil, nil, err
	}

	return appt, []Intent{providerAssigned(id, providerID)}, nil
}

// LinkVitals records the vitals back-reference on the appointment. Reserved
// for the clinical record gate; it does not touch status.
func (s *Service) LinkVitals(ctx context.Context, id, vitalsID uuid.UUID) error {
	s.locks.lock(id)
	defer s.locks.unlock(id)

	appt, err := s.appts.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if appt.VitalsID != nil {
		return apperr.New(apperr.KindAlreadyExists, "appointment already has vitals recorded")
	}
	appt.VitalsID = &vitalsID
	return s.appts.Update(ctx, appt)
}

func truncateToDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
