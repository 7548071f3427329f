package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestStatus(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, http.StatusOK},
		{"unauthenticated", Unauthenticated("no token"), http.StatusUnauthorized},
		{"forbidden", Forbidden("nope"), http.StatusForbidden},
		{"not found", NotFound("project not found"), http.StatusNotFound},
		{"invalid input", Invalid("bad role"), http.StatusBadRequest},
		{"invalid operation", InvalidOperation("cannot remove owner"), http.StatusBadRequest},
		{"conflict", Conflict("email taken"), http.StatusConflict},
		{"wrapped kind", fmt.Errorf("load board: %w", ErrNotFound), http.StatusNotFound},
		{"unknown", errors.New("connection reset"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Status(tt.err); got != tt.want {
				t.Errorf("Status() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestPublicHidesInternalErrors(t *testing.T) {
	t.Parallel()
	msg, details := Public(fmt.Errorf("query projects: %w", errors.New("pq: password authentication failed")))
	if msg != "Internal server error" {
		t.Errorf("Public() message = %q, want opaque message", msg)
	}
	if details != nil {
		t.Errorf("Public() details = %v, want nil", details)
	}
}

func TestPublicKeepsDetails(t *testing.T) {
	t.Parallel()
	err := fmt.Errorf("validate: %w", Invalid("validation failed").WithDetail("role", "must be one of owner, admin, member"))
	msg, details := Public(err)
	if msg != "validation failed" {
		t.Errorf("Public() message = %q", msg)
	}
	if details["role"] == "" {
		t.Errorf("Public() details = %v, want role entry", details)
	}
	if !errors.Is(err, ErrInvalidInput) {
		t.Error("errors.Is(err, ErrInvalidInput) = false")
	}
}
