package services

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestStatusCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", ErrValidation("bad input"), http.StatusBadRequest},
		{"not found", ErrNotFound("missing"), http.StatusNotFound},
		{"conflict", ErrConflict("busy"), http.StatusConflict},
		{"transient", ErrTransient(errors.New("timeout")), http.StatusServiceUnavailable},
		{"plain error", errors.New("boom"), http.StatusInternalServerError},
		{"wrapped service error", fmt.Errorf("layer: %w", ErrConflict("busy")), http.StatusConflict},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StatusCode(tt.err); got != tt.want {
				t.Errorf("StatusCode() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestIsKind(t *testing.T) {
	err := ErrConflict("machine busy")
	if !IsKind(err, KindConflict) {
		t.Error("expected KindConflict")
	}
	if IsKind(err, KindNotFound) {
		t.Error("did not expect KindNotFound")
	}
	if IsKind(errors.New("plain"), KindConflict) {
		t.Error("plain error must not match any kind")
	}
}

func TestTransientKeepsCause(t *testing.T) {
	cause := errors.New("dial tcp: timeout")
	err := ErrTransient(cause)
	if !errors.Is(err, cause) {
		t.Error("cause must stay reachable through Unwrap")
	}
}
