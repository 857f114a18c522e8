package tray

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"sleeptimer/internal/core/session"
)

func TestActionsFor(t *testing.T) {
	assert.Equal(t, Actions{Start: true}, ActionsFor(session.StateStopped))
	assert.Equal(t, Actions{Pause: true, Stop: true}, ActionsFor(session.StateRunning))
	assert.Equal(t, Actions{Start: true, Resume: true, Stop: true}, ActionsFor(session.StatePaused))
	assert.Equal(t, Actions{Start: true}, ActionsFor(session.StateCompleted))
}

func TestStatusLine(t *testing.T) {
	tests := []struct {
		name     string
		snapshot session.Snapshot
		want     string
	}{
		{"running", session.Snapshot{State: session.StateRunning, RemainingSeconds: 895}, "Running 14:55"},
		{"suspended", session.Snapshot{State: session.StateRunning, RemainingSeconds: 60, Suspended: true}, "Suspended 01:00"},
		{"paused", session.Snapshot{State: session.StatePaused, RemainingSeconds: 5}, "Paused 00:05"},
		{"completed", session.Snapshot{State: session.StateCompleted}, "Finished"},
		{"stopped", session.Snapshot{State: session.StateStopped, RemainingSeconds: 2700, TotalDurationSeconds: 2700}, "Stopped (45m)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StatusLine(tt.snapshot))
		})
	}
}
