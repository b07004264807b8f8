package scheduling

import (
	"time"
)

// ReminderTier identifies which reminder offset is due. Zero means none.
type ReminderTier int

const (
	TierNone ReminderTier = iota
	Tier24Hour
	Tier2Hour
)

func (t ReminderTier) String() string {
	switch t {
	case Tier24Hour:
		return "24h"
	case Tier2Hour:
		return "2h"
	default:
		return "none"
	}
}

// ReminderThresholds configures the reminder offsets, largest first.
type ReminderThresholds struct {
	FirstOffset  time.Duration
	SecondOffset time.Duration
}

// DefaultThresholds returns the standard 24h / 2h reminder offsets.
func DefaultThresholds() ReminderThresholds {
	return ReminderThresholds{FirstOffset: 24 * time.Hour, SecondOffset: 2 * time.Hour}
}

// DueTier reports which reminder tier, if any, is due for the appointment at
// the given instant. Reminders apply only while the appointment is SCHEDULED
// or CONFIRMED; once checked in, cancelled, or past its start, nothing is due.
// The function is stateless: the caller tracks which tiers were already sent.
func DueTier(appt *Appointment, now time.Time, thresholds ReminderThresholds) ReminderTier {
	if appt.Status != StatusScheduled && appt.Status != StatusConfirmed {
		return TierNone
	}
	start := appt.StartsAt()
	if !now.Before(start) {
		return TierNone
	}
	until := start.Sub(now)
	if until <= thresholds.SecondOffset {
		return Tier2Hour
	}
	if until <= thresholds.FirstOffset {
		return Tier24Hour
	}
	return TierNone
}
