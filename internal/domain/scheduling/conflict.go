package scheduling

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// windowsOverlap compares two half-open [start, start+duration) windows given
// in minutes since midnight. Equal starts always overlap.
func windowsOverlap(aStart, aDur, bStart, bDur int) bool {
	return aStart < bStart+bDur && bStart < aStart+aDur
}

// HasConflict reports whether assigning the provider to the given slot would
// collide with another active appointment of theirs on the same date.
// excludeID lets reschedule and reassignment check against every appointment
// except the one being moved.
func (s *Service) HasConflict(ctx context.Context, providerID uuid.UUID, date time.Time, timeOfDay string, durationMinutes int, excludeID *uuid.UUID) (bool, error) {
	start, err := ParseTimeOfDay(timeOfDay)
	if err != nil {
		return false, err
	}
	if durationMinutes <= 0 {
		durationMinutes = DefaultVisitMinutes
	}

	existing, err := s.appts.ListActiveByProviderOnDate(ctx, providerID, date)
	if err != nil {
		return false, err
	}
	for _, other := range existing {
		if excludeID != nil && other.ID == *excludeID {
			continue
		}
		otherStart, err := ParseTimeOfDay(other.AppointmentTime)
		if err != nil {
			continue
		}
		if windowsOverlap(start, durationMinutes, otherStart, other.Duration()) {
			return true, nil
		}
	}
	return false, nil
}

// slotConflict re-checks every already-assigned provider of the appointment
// against a candidate slot. Used by Reschedule before committing the move.
func (s *Service) slotConflict(ctx context.Context, appt *Appointment, date time.Time, timeOfDay string) (bool, error) {
	assignments, err := s.assignments.ListByAppointment(ctx, appt.ID)
	if err != nil {
		return false, err
	}
	for _, pa := range assignments {
		conflict, err := s.HasConflict(ctx, pa.ProviderID, date, timeOfDay, appt.Duration(), &appt.ID)
		if err != nil {
			return false, err
		}
		if conflict {
			return true, nil
		}
	}
	return false, nil
}
