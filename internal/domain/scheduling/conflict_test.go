package scheduling

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestWindowsOverlap(t *testing.T) {
	tests := []struct {
		name                           string
		aStart, aDur, bStart, bDur int
		want                           bool
	}{
		{"identical windows", 540, 30, 540, 30, true},
		{"15 minute shift overlaps", 540, 30, 525, 30, true},
		{"back to back does not overlap", 540, 30, 570, 30, false},
		{"preceding back to back", 540, 30, 510, 30, false},
		{"containment", 540, 60, 555, 15, true},
		{"disjoint", 540, 30, 720, 30, false},
		{"long first window reaches into second", 540, 90, 600, 30, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := windowsOverlap(tt.aStart, tt.aDur, tt.bStart, tt.bDur); got != tt.want {
				t.Errorf("windowsOverlap(%d,%d,%d,%d) = %v, want %v",
					tt.aStart, tt.aDur, tt.bStart, tt.bDur, got, tt.want)
			}
			// Overlap is symmetric.
			if got := windowsOverlap(tt.bStart, tt.bDur, tt.aStart, tt.aDur); got != tt.want {
				t.Errorf("reversed windowsOverlap = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestHasConflict_DefaultDuration(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	providerID := uuid.New()
	env.dir.roles[providerID] = RolePhysician

	appt := mustSchedule(t, env, validRequest()) // 09:00, default 30 minutes
	if _, _, err := env.svc.AssignProvider(ctx, appt.ID, providerID, registrarActor); err != nil {
		t.Fatalf("assign: %v", err)
	}

	// 08:45 with a zero duration falls back to the 30-minute default and
	// overlaps 09:00.
	conflict, err := env.svc.HasConflict(ctx, providerID, appt.AppointmentDate, "08:45", 0, nil)
	if err != nil {
		t.Fatalf("HasConflict: %v", err)
	}
	if !conflict {
		t.Error("expected 08:45 to conflict with 09:00")
	}

	conflict, err = env.svc.HasConflict(ctx, providerID, appt.AppointmentDate, "09:30", 0, nil)
	if err != nil {
		t.Fatalf("HasConflict: %v", err)
	}
	if conflict {
		t.Error("09:30 starts exactly when 09:00 ends; no conflict expected")
	}
}

func TestHasConflict_ExcludesGivenAppointment(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	providerID := uuid.New()
	env.dir.roles[providerID] = RolePhysician

	appt := mustSchedule(t, env, validRequest())
	if _, _, err := env.svc.AssignProvider(ctx, appt.ID, providerID, registrarActor); err != nil {
		t.Fatalf("assign: %v", err)
	}

	// The appointment does not conflict with itself when excluded.
	conflict, err := env.svc.HasConflict(ctx, providerID, appt.AppointmentDate, appt.AppointmentTime, 30, &appt.ID)
	if err != nil {
		t.Fatalf("HasConflict: %v", err)
	}
	if conflict {
		t.Error("excluded appointment should not count as a conflict")
	}
}

func TestHasConflict_OtherDateIsClear(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	providerID := uuid.New()
	env.dir.roles[providerID] = RolePhysician

	appt := mustSchedule(t, env, validRequest())
	if _, _, err := env.svc.AssignProvider(ctx, appt.ID, providerID, registrarActor); err != nil {
		t.Fatalf("assign: %v", err)
	}

	nextDay := appt.AppointmentDate.Add(24 * time.Hour)
	conflict, err := env.svc.HasConflict(ctx, providerID, nextDay, appt.AppointmentTime, 30, nil)
	if err != nil {
		t.Fatalf("HasConflict: %v", err)
	}
	if conflict {
		t.Error("same time on another date should not conflict")
	}
}
