package jobs_test

import (
	"testing"

	"github.com/pyqvault/pyqvault/internal/jobs"
)

func TestStatusTransitions(t *testing.T) {
	tests := []struct {
		from    jobs.Status
		to      jobs.Status
		allowed bool
	}{
		{jobs.StatusUploaded, jobs.StatusFetching, true},
		{jobs.StatusUploaded, jobs.StatusProcessing, true},
		{jobs.StatusUploaded, jobs.StatusCompleted, true},
		{jobs.StatusUploaded, jobs.StatusFailed, true},
		{jobs.StatusUploaded, jobs.StatusUploaded, false},

		{jobs.StatusFetching, jobs.StatusUploaded, true},
		{jobs.StatusFetching, jobs.StatusFailed, true},
		{jobs.StatusFetching, jobs.StatusProcessing, false},
		{jobs.StatusFetching, jobs.StatusCompleted, false},

		{jobs.StatusProcessing, jobs.StatusProcessing, true},
		{jobs.StatusProcessing, jobs.StatusCompleted, true},
		{jobs.StatusProcessing, jobs.StatusFailed, true},
		{jobs.StatusProcessing, jobs.StatusUploaded, false},
		{jobs.StatusProcessing, jobs.StatusFetching, false},

		{jobs.StatusCompleted, jobs.StatusProcessing, false},
		{jobs.StatusCompleted, jobs.StatusFailed, false},
		{jobs.StatusFailed, jobs.StatusProcessing, false},
		{jobs.StatusFailed, jobs.StatusUploaded, false},
	}

	for _, tc := range tests {
		if got := tc.from.CanTransition(tc.to); got != tc.allowed {
			t.Errorf("%s -> %s = %v, want %v", tc.from, tc.to, got, tc.allowed)
		}
	}
}

func TestStatusTerminal(t *testing.T) {
	terminal := map[jobs.Status]bool{
		jobs.StatusUploaded:   false,
		jobs.StatusFetching:   false,
		jobs.StatusProcessing: false,
		jobs.StatusCompleted:  true,
		jobs.StatusFailed:     true,
	}

	for status, want := range terminal {
		if got := status.Terminal(); got != want {
			t.Errorf("%s.Terminal() = %v, want %v", status, got, want)
		}
	}
}

func TestStatusValid(t *testing.T) {
	for _, status := range []jobs.Status{
		jobs.StatusUploaded, jobs.StatusFetching, jobs.StatusProcessing,
		jobs.StatusCompleted, jobs.StatusFailed,
	} {
		if !status.Valid() {
			t.Errorf("%s.Valid() = false, want true", status)
		}
	}

	if jobs.Status("ARCHIVED").Valid() {
		t.Error(`Status("ARCHIVED").Valid() = true, want false`)
	}
}
