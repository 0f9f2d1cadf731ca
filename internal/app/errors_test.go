package app

import (
	"errors"
	"testing"
)

func TestComponentError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *ComponentError
		expected string
	}{
		{"nil error", nil, ""},
		{"component only", &ComponentError{Component: "snapshot"}, "snapshot"},
		{"component and action", &ComponentError{Component: "snapshot", Action: "write"}, "snapshot: write"},
		{"component and err", &ComponentError{Component: "config", Err: errors.New("bad")}, "config: bad"},
		{"full", NewComponentError("snapshot", "encode", errors.New("disk full")), "snapshot: encode: disk full"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.expected {
				t.Errorf("Error() = %q, expected %q", got, tt.expected)
			}
		})
	}
}

func TestComponentError_Unwrap(t *testing.T) {
	inner := errors.New("inner")
	err := NewComponentError("config", "reload", inner)
	if !errors.Is(err, inner) {
		t.Error("errors.Is did not find the wrapped error")
	}

	var nilErr *ComponentError
	if nilErr.Unwrap() != nil {
		t.Error("expected nil from Unwrap() on nil receiver")
	}
}

func TestInitError(t *testing.T) {
	err := &InitError{Component: "surface", Err: ErrUnknownBackend}
	if err.Error() != "init surface: unknown backend" {
		t.Errorf("Error() = %q", err.Error())
	}
	if !errors.Is(err, ErrUnknownBackend) {
		t.Error("errors.Is(InitError, ErrUnknownBackend) = false")
	}
}

func TestErrorList(t *testing.T) {
	var list ErrorList
	if list.AsError() != nil {
		t.Error("empty list should be nil error")
	}

	list.Add(nil)
	list.Add(ErrQuit)
	if list.Len() != 1 {
		t.Errorf("Len() = %d, want 1", list.Len())
	}
	if list.Error() != ErrQuit.Error() {
		t.Errorf("Error() = %q", list.Error())
	}

	list.Add(ErrNoDevice)
	err := list.AsError()
	if err == nil {
		t.Fatal("AsError() = nil")
	}
	if !errors.Is(err, ErrNoDevice) || !errors.Is(err, ErrQuit) {
		t.Error("errors.Is does not see collected errors")
	}
	if err.Error() != "2 errors: first: quit requested" {
		t.Errorf("Error() = %q", err.Error())
	}
}
