package scheduling

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/clinicops/clinicops/internal/platform/apperr"
)

// DefaultVisitMinutes is the slot length used when an appointment does not
// override its duration.
const DefaultVisitMinutes = 30

// Visit purpose tags. OTHERS requires free-text OtherPurpose.
const (
	PurposeConsultation = "CONSULTATION"
	PurposeCheckUp      = "CHECK_UP"
	PurposeDental       = "DENTAL"
	PurposeVaccination  = "VACCINATION"
	PurposeLaboratory   = "LABORATORY"
	PurposePrenatal     = "PRENATAL"
	PurposeOthers       = "OTHERS"
)

var validPurposes = map[string]bool{
	PurposeConsultation: true,
	PurposeCheckUp:      true,
	PurposeDental:       true,
	PurposeVaccination:  true,
	PurposeLaboratory:   true,
	PurposePrenatal:     true,
	PurposeOthers:       true,
}

// Appointment maps to the appointment table.
type Appointment struct {
	ID                  uuid.UUID  `db:"id" json:"id"`
	PatientID           uuid.UUID  `db:"patient_id" json:"patient_id"`
	Purposes            []string   `db:"purposes" json:"purposes"`
	OtherPurpose        *string    `db:"other_purpose" json:"other_purpose,omitempty"`
	HasInsurance        bool       `db:"has_insurance" json:"has_insurance"`
	AppointmentDate     time.Time  `db:"appointment_date" json:"appointment_date"`
	AppointmentTime     string     `db:"appointment_time" json:"appointment_time"`
	DurationMinutes     int        `db:"duration_minutes" json:"duration_minutes"`
	ScheduleChangeCount int        `db:"schedule_change_count" json:"schedule_change_count"`
	Status              Status     `db:"status" json:"status"`
	CancellationReason  *string    `db:"cancellation_reason" json:"cancellation_reason,omitempty"`
	VitalsID            *uuid.UUID `db:"vitals_id" json:"vitals_id,omitempty"`
	Notes               *string    `db:"notes" json:"notes,omitempty"`
	Phone               *string    `db:"phone" json:"phone,omitempty"`
	Email               *string    `db:"email" json:"email,omitempty"`
	VersionID           int        `db:"version_id" json:"version_id"`
	CreatedAt           time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt           time.Time  `db:"updated_at" json:"updated_at"`
}

// GetVersionID returns the current version.
func (a *Appointment) GetVersionID() int { return a.VersionID }

// SetVersionID sets the current version.
func (a *Appointment) SetVersionID(v int) { a.VersionID = v }

// Duration returns the visit duration, defaulting when unset.
func (a *Appointment) Duration() int {
	if a.DurationMinutes > 0 {
		return a.DurationMinutes
	}
	return DefaultVisitMinutes
}

// StartsAt composes the appointment date and time-of-day into one instant.
func (a *Appointment) StartsAt() time.Time {
	min, err := ParseTimeOfDay(a.AppointmentTime)
	if err != nil {
		min = 0
	}
	y, m, d := a.AppointmentDate.Date()
	return time.Date(y, m, d, min/60, min%60, 0, 0, a.AppointmentDate.Location())
}

// ValidatePurposes checks the purpose tag set on creation and on update.
func ValidatePurposes(purposes []string, otherPurpose *string) error {
	if len(purposes) == 0 {
		return apperr.New(apperr.KindValidation, "at least one purpose is required")
	}
	for _, p := range purposes {
		if !validPurposes[p] {
			return apperr.New(apperr.KindValidation, "invalid purpose: %s", p)
		}
		if p == PurposeOthers && (otherPurpose == nil || *otherPurpose == "") {
			return apperr.New(apperr.KindValidation, "other_purpose text is required when purpose is OTHERS")
		}
	}
	return nil
}

// ParseTimeOfDay parses "HH:MM" into minutes since midnight.
func ParseTimeOfDay(s string) (int, error) {
	var h, m int
	if _, err := fmt.Sscanf(s, "%d:%d", &h, &m); err != nil {
		return 0, apperr.New(apperr.KindValidation, "invalid time of day: %q", s)
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, apperr.New(apperr.KindValidation, "time of day out of range: %q", s)
	}
	return h*60 + m, nil
}

// ProviderAssignment maps to the provider_assignment table. It links one
// appointment to one provider with the role the provider held at assignment
// time.
type ProviderAssignment struct {
	ID            uuid.UUID `db:"id" json:"id"`
	AppointmentID uuid.UUID `db:"appointment_id" json:"appointment_id"`
	ProviderID    uuid.UUID `db:"provider_id" json:"provider_id"`
	ProviderRole  string    `db:"provider_role" json:"provider_role"`
	AssignedByID  uuid.UUID `db:"assigned_by_id" json:"assigned_by_id"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
}

// Actor is the authenticated caller of a mutating operation, taken from the
// auth context by the HTTP layer.
type Actor struct {
	ID    uuid.UUID
	Roles []string
}

// Staff roles known to the platform.
const (
	RoleAdmin     = "admin"
	RolePhysician = "physician"
	RoleNurse     = "nurse"
	RoleDentist   = "dentist"
	RoleRegistrar = "registrar"
)

// HasRole reports whether the actor holds the role. Admin implies every role.
func (a Actor) HasRole(role string) bool {
	for _, r := range a.Roles {
		if r == role || r == RoleAdmin {
			return true
		}
	}
	return false
}

// IsClinical reports whether the actor may drive a visit through ATTENDING
// and COMPLETED.
func (a Actor) IsClinical() bool {
	return a.HasRole(RolePhysician) || a.HasRole(RoleNurse) || a.HasRole(RoleDentist)
}

// eligibleRoles maps a purpose tag to the provider roles that may be assigned
// to an appointment carrying it.
var eligibleRoles = map[string][]string{
	PurposeConsultation: {RolePhysician},
	PurposeCheckUp:      {RolePhysician, RoleNurse},
	PurposeDental:       {RoleDentist},
	PurposeVaccination:  {RolePhysician, RoleNurse},
	PurposeLaboratory:   {RolePhysician, RoleNurse},
	PurposePrenatal:     {RolePhysician, RoleNurse},
	PurposeOthers:       {RolePhysician, RoleNurse, RoleDentist},
}

// RoleEligible reports whether a provider role may serve an appointment with
// the given purposes. A role qualifies when any purpose admits it.
func RoleEligible(role string, purposes []string) bool {
	for _, p := range purposes {
		for _, r := range eligibleRoles[p] {
			if r == role {
				return true
			}
		}
	}
	return false
}
