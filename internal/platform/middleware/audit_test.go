package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/clinicops/clinicops/internal/platform/auth"
)

func TestAudit_RecordsAPIAccess(t *testing.T) {
	var recorded []AuditEntry
	recorder := AuditRecorderFunc(func(entry AuditEntry) error {
		recorded = append(recorded, entry)
		return nil
	})

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/appointments/7b6e2f64-4f30-4aee-9a4e-5d71a6c0a111", nil)
	ctx := context.WithValue(req.Context(), auth.UserIDKey, "user-1")
	ctx = context.WithValue(ctx, auth.UserRolesKey, []string{"nurse"})
	req = req.WithContext(ctx)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("request_id", "req-123")

	mw := Audit(zerolog.Nop(), recorder)
	handler := mw(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})

	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	if len(recorded) != 1 {
		t.Fatalf("expected 1 audit entry, got %d", len(recorded))
	}
	entry := recorded[0]
	if entry.UserID != "user-1" {
		t.Errorf("expected user-1, got %s", entry.UserID)
	}
	if entry.ResourceType != "appointments" {
		t.Errorf("expected resource type appointments, got %s", entry.ResourceType)
	}
	if entry.ResourceID != "7b6e2f64-4f30-4aee-9a4e-5d71a6c0a111" {
		t.Errorf("unexpected resource id %s", entry.ResourceID)
	}
	if entry.Action != "read" {
		t.Errorf("expected action read, got %s", entry.Action)
	}
	if entry.RequestID != "req-123" {
		t.Errorf("expected request id req-123, got %s", entry.RequestID)
	}
}

func TestAudit_SkipsNonAPIRoutes(t *testing.T) {
	var recorded []AuditEntry
	recorder := AuditRecorderFunc(func(entry AuditEntry) error {
		recorded = append(recorded, entry)
		return nil
	})

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	mw := Audit(zerolog.Nop(), recorder)
	handler := mw(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})

	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if len(recorded) != 0 {
		t.Errorf("expected no audit entries for /health, got %d", len(recorded))
	}
}

func TestHTTPMethodToAction(t *testing.T) {
	cases := map[string]string{
		http.MethodGet:    "read",
		http.MethodPost:   "create",
		http.MethodPut:    "update",
		http.MethodPatch:  "update",
		http.MethodDelete: "delete",
	}
	for method, want := range cases {
		if got := httpMethodToAction(method); got != want {
			t.Errorf("%s: expected %s, got %s", method, want, got)
		}
	}
}

func TestSplitResourcePath(t *testing.T) {
	cases := []struct {
		path         string
		resourceType string
		resourceID   string
	}{
		{"/api/v1/appointments", "appointments", ""},
		{"/api/v1/appointments/abc", "appointments", "abc"},
		{"/api/v1/appointments/abc/vitals", "appointments", "abc"},
		{"/api/v1/", "unknown", ""},
	}
	for _, tt := range cases {
		rt, rid := splitResourcePath(tt.path)
		if rt != tt.resourceType || rid != tt.resourceID {
			t.Errorf("%s: got (%s, %s), want (%s, %s)", tt.path, rt, rid, tt.resourceType, tt.resourceID)
		}
	}
}
