package platform

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"sleeptimer/internal/core/session"
	"sleeptimer/internal/ui/preferences"
)

// ErrNotificationsUnsupported indicates no desktop notification service exists on this system.
var ErrNotificationsUnsupported = errors.New("desktop notifications unsupported")

const notifyTimeout = 2 * time.Second

// Notifier posts desktop notifications.
type Notifier interface {
	Available(ctx context.Context) (bool, error)
	Notify(ctx context.Context, summary, body string) error
}

// NewNotifier returns a platform-specific notifier.
func NewNotifier(appName string) Notifier {
	return newNotifier(appName)
}

// WatchCompletions posts a notification for every completed session until
// stream is closed.
func WatchCompletions(stream <-chan session.Snapshot, notifier Notifier, log zerolog.Logger) {
	for snapshot := range stream {
		if snapshot.Event != session.EventTimerCompleted {
			continue
		}
		ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
		err := notifier.Notify(ctx, "Sleep timer finished",
			"Playback paused after "+preferences.FormatMinutes(snapshot.TotalDurationSeconds/60)+".")
		cancel()
		if err != nil && !errors.Is(err, ErrNotificationsUnsupported) {
			log.Warn().Err(err).Msg("completion notification failed")
		}
	}
}
