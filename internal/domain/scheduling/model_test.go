package scheduling

import (
	"testing"
	"time"

	"github.com/clinicops/clinicops/internal/platform/apperr"
)

func TestParseTimeOfDay(t *testing.T) {
	tests := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{"00:00", 0, false},
		{"09:00", 540, false},
		{"09:30", 570, false},
		{"23:59", 1439, false},
		{"24:00", 0, true},
		{"12:60", 0, true},
		{"-1:00", 0, true},
		{"noon", 0, true},
		{"", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseTimeOfDay(tt.in)
		if tt.wantErr {
			if apperr.KindOf(err) != apperr.KindValidation {
				t.Errorf("ParseTimeOfDay(%q): kind = %v, want validation", tt.in, apperr.KindOf(err))
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseTimeOfDay(%q): %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseTimeOfDay(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestValidatePurposes(t *testing.T) {
	text := "school clearance"
	if err := ValidatePurposes([]string{PurposeCheckUp, PurposeVaccination}, nil); err != nil {
		t.Errorf("valid set rejected: %v", err)
	}
	if err := ValidatePurposes(nil, nil); apperr.KindOf(err) != apperr.KindValidation {
		t.Error("empty purpose set should be rejected")
	}
	if err := ValidatePurposes([]string{"XRAY"}, nil); apperr.KindOf(err) != apperr.KindValidation {
		t.Error("unknown tag should be rejected")
	}
	if err := ValidatePurposes([]string{PurposeOthers}, nil); apperr.KindOf(err) != apperr.KindValidation {
		t.Error("OTHERS without text should be rejected")
	}
	if err := ValidatePurposes([]string{PurposeOthers}, &text); err != nil {
		t.Errorf("OTHERS with text rejected: %v", err)
	}
}

func TestAppointment_StartsAt(t *testing.T) {
	a := &Appointment{
		AppointmentDate: time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC),
		AppointmentTime: "14:45",
	}
	want := time.Date(2026, 9, 10, 14, 45, 0, 0, time.UTC)
	if got := a.StartsAt(); !got.Equal(want) {
		t.Errorf("StartsAt() = %s, want %s", got, want)
	}
}

func TestAppointment_Duration(t *testing.T) {
	a := &Appointment{}
	if a.Duration() != DefaultVisitMinutes {
		t.Errorf("Duration() = %d, want default %d", a.Duration(), DefaultVisitMinutes)
	}
	a.DurationMinutes = 45
	if a.Duration() != 45 {
		t.Errorf("Duration() = %d, want 45", a.Duration())
	}
}

func TestActor_HasRole(t *testing.T) {
	nurse := Actor{Roles: []string{RoleNurse}}
	if !nurse.HasRole(RoleNurse) {
		t.Error("nurse should hold nurse role")
	}
	if nurse.HasRole(RolePhysician) {
		t.Error("nurse does not hold physician role")
	}

	admin := Actor{Roles: []string{RoleAdmin}}
	if !admin.HasRole(RolePhysician) || !admin.HasRole(RoleRegistrar) {
		t.Error("admin implies every role")
	}
}

func TestActor_IsClinical(t *testing.T) {
	for _, role := range []string{RolePhysician, RoleNurse, RoleDentist} {
		if !(Actor{Roles: []string{role}}).IsClinical() {
			t.Errorf("%s should be clinical", role)
		}
	}
	if (Actor{Roles: []string{RoleRegistrar}}).IsClinical() {
		t.Error("registrar is not clinical")
	}
}

func TestRoleEligible(t *testing.T) {
	tests := []struct {
		role     string
		purposes []string
		want     bool
	}{
		{RolePhysician, []string{PurposeConsultation}, true},
		{RoleNurse, []string{PurposeConsultation}, false},
		{RoleNurse, []string{PurposeConsultation, PurposeVaccination}, true},
		{RoleDentist, []string{PurposeDental}, true},
		{RoleDentist, []string{PurposeCheckUp}, false},
		{RoleRegistrar, []string{PurposeCheckUp}, false},
	}
	for _, tt := range tests {
		if got := RoleEligible(tt.role, tt.purposes); got != tt.want {
			t.Errorf("RoleEligible(%s, %v) = %v, want %v", tt.role, tt.purposes, got, tt.want)
		}
	}
}
