package notification

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/clinicops/clinicops/internal/domain/scheduling"
)

// AppointmentLister pages through a day's appointments.
type AppointmentLister interface {
	ListByDate(ctx context.Context, date time.Time, limit, offset int) ([]*scheduling.Appointment, int, error)
}

// PatientContacts resolves patient contact details for reminder delivery.
type PatientContacts interface {
	PatientContact(ctx context.Context, patientID uuid.UUID) (name, email, phone string, err error)
}

const sweepPageSize = 200

// ReminderWorker periodically sweeps upcoming appointments and sends tiered
// reminders. Each appointment gets at most one message per tier; cancelling
// an appointment's reminders suppresses any further sends.
type ReminderWorker struct {
	manager    *Manager
	appts      AppointmentLister
	patients   PatientContacts
	thresholds scheduling.ReminderThresholds
	interval   time.Duration
	now        func() time.Time
	logger     zerolog.Logger

	mu        sync.Mutex
	sent      map[string]bool
	cancelled map[uuid.UUID]bool
}

func NewReminderWorker(manager *Manager, appts AppointmentLister, patients PatientContacts, thresholds scheduling.ReminderThresholds, interval time.Duration, logger zerolog.Logger) *ReminderWorker {
	return &ReminderWorker{
		manager:    manager,
		appts:      appts,
		patients:   patients,
		thresholds: thresholds,
		interval:   interval,
		now:        time.Now,
		logger:     logger,
		sent:       make(map[string]bool),
		cancelled:  make(map[uuid.UUID]bool),
	}
}

// Run sweeps on the configured interval until the context is cancelled.
func (w *ReminderWorker) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.Sweep(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.Sweep(ctx)
		}
	}
}

// Sweep walks today's and tomorrow's appointments once and sends any due
// reminders. Exposed so it can be driven directly in tests.
func (w *ReminderWorker) Sweep(ctx context.Context) {
	now := w.now()
	for _, date := range []time.Time{now, now.Add(24 * time.Hour)} {
		w.sweepDate(ctx, date, now)
	}
}

func (w *ReminderWorker) sweepDate(ctx context.Context, date, now time.Time) {
	offset := 0
	for {
		appts, total, err := w.appts.ListByDate(ctx, date, sweepPageSize, offset)
		if err != nil {
			w.logger.Error().Err(err).Time("date", date).Msg("reminder sweep: list appointments")
			return
		}
		for _, appt := range appts {
			w.remind(ctx, appt, now)
		}
		offset += len(appts)
		if offset >= total || len(appts) == 0 {
			return
		}
	}
}

func (w *ReminderWorker) remind(ctx context.Context, appt *scheduling.Appointment, now time.Time) {
	tier := scheduling.DueTier(appt, now, w.thresholds)
	if tier == scheduling.TierNone {
		return
	}

	key := sentKey(appt.ID, tier)
	w.mu.Lock()
	skip := w.cancelled[appt.ID] || w.sent[key]
	w.mu.Unlock()
	if skip {
		return
	}

	name, email, phone := w.contact(ctx, appt)
	data := map[string]string{
		"patient_name": name,
		"date":         appt.AppointmentDate.Format("2006-01-02"),
		"time":         appt.AppointmentTime,
	}

	var templateID, recipient string
	switch tier {
	case scheduling.Tier2Hour:
		templateID, recipient = "appointment-reminder-2h", phone
	default:
		templateID, recipient = "appointment-reminder-24h", email
	}
	if recipient == "" {
		w.logger.Warn().
			Str("appointment_id", appt.ID.String()).
			Str("tier", tier.String()).
			Msg("reminder skipped: no contact on file")
		return
	}

	if _, err := w.manager.SendFromTemplate(ctx, templateID, data, recipient); err != nil {
		w.logger.Error().Err(err).
			Str("appointment_id", appt.ID.String()).
			Str("tier", tier.String()).
			Msg("reminder send failed")
		return
	}

	w.mu.Lock()
	w.sent[key] = true
	w.mu.Unlock()

	w.logger.Info().
		Str("appointment_id", appt.ID.String()).
		Str("tier", tier.String()).
		Msg("reminder sent")
}

// contact prefers the contact details captured on the appointment itself and
// falls back to the patient directory.
func (w *ReminderWorker) contact(ctx context.Context, appt *scheduling.Appointment) (name, email, phone string) {
	if appt.Email != nil {
		email = *appt.Email
	}
	if appt.Phone != nil {
		phone = *appt.Phone
	}
	if w.patients != nil {
		n, e, p, err := w.patients.PatientContact(ctx, appt.PatientID)
		if err == nil {
			name = n
			if email == "" {
				email = e
			}
			if phone == "" {
				phone = p
			}
		}
	}
	return name, email, phone
}

// CancelReminders suppresses any future reminders for the appointment.
func (w *ReminderWorker) CancelReminders(appointmentID uuid.UUID) {
	w.mu.Lock()
	w.cancelled[appointmentID] = true
	w.mu.Unlock()
}

func sentKey(id uuid.UUID, tier scheduling.ReminderTier) string {
	return fmt.Sprintf("%s|%s", id, tier)
}
