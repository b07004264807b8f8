package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestNew_FormatsMessage(t *testing.T) {
	err := New(KindValidation, "invalid purpose: %s", "XRAY")
	if err.Msg != "invalid purpose: XRAY" {
		t.Errorf("msg = %q", err.Msg)
	}
	if KindOf(err) != KindValidation {
		t.Errorf("kind = %v", KindOf(err))
	}
}

func TestWrap_PreservesCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := Wrap(KindUnknown, cause, "query failed")
	if !errors.Is(err, cause) {
		t.Error("wrapped cause not reachable via errors.Is")
	}
}

func TestKindOf_ThroughWrapping(t *testing.T) {
	inner := New(KindConflict, "version moved")
	outer := fmt.Errorf("update appointment: %w", inner)
	if KindOf(outer) != KindConflict {
		t.Errorf("kind through fmt wrap = %v, want conflict", KindOf(outer))
	}
	if KindOf(errors.New("plain")) != KindUnknown {
		t.Error("plain errors classify as unknown")
	}
	if !IsKind(outer, KindConflict) {
		t.Error("IsKind should match through wrapping")
	}
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		kind Kind
		want int
	}{
		{KindValidation, http.StatusBadRequest},
		{KindInvalidTransition, http.StatusUnprocessableEntity},
		{KindInvalidState, http.StatusUnprocessableEntity},
		{KindConflict, http.StatusConflict},
		{KindAlreadyExists, http.StatusConflict},
		{KindNotFound, http.StatusNotFound},
		{KindRoleDenied, http.StatusForbidden},
		{KindUnknown, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := HTTPStatus(New(tt.kind, "x")); got != tt.want {
			t.Errorf("HTTPStatus(%v) = %d, want %d", tt.kind, got, tt.want)
		}
	}
	if HTTPStatus(errors.New("boom")) != http.StatusInternalServerError {
		t.Error("unclassified errors map to 500")
	}
}

func TestMessage(t *testing.T) {
	if Message(New(KindNotFound, "appointment not found")) != "appointment not found" {
		t.Error("typed message should be returned verbatim")
	}
	if Message(errors.New("boom")) != "boom" {
		t.Error("plain errors fall back to Error()")
	}
}
