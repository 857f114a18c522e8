//go:build linux

package platform

import (
	"context"
	"fmt"

	"github.com/godbus/dbus/v5"
)

const (
	notificationsName = "org.freedesktop.Notifications"
	notificationsPath = dbus.ObjectPath("/org/freedesktop/Notifications")
)

// sessionBus is swapped in tests.
var sessionBus = dbus.SessionBus

type notifier struct {
	appName string
}

func newNotifier(appName string) Notifier {
	return &notifier{appName: appName}
}

func (n *notifier) Available(ctx context.Context) (bool, error) {
	conn, err := sessionBus()
	if err != nil {
		// Without a session bus (SSH, containers) there is no desktop to
		// notify, same as an unsupported platform.
		return false, fmt.Errorf("%w: session bus: %w", ErrNotificationsUnsupported, err)
	}
	var hasOwner bool
	err = conn.BusObject().CallWithContext(ctx, "org.freedesktop.DBus.NameHasOwner", 0, notificationsName).Store(&hasOwner)
	if err != nil {
		return false, fmt.Errorf("query %s: %w", notificationsName, err)
	}
	return hasOwner, nil
}

func (n *notifier) Notify(ctx context.Context, summary, body string) error {
	conn, err := sessionBus()
	if err != nil {
		return fmt.Errorf("%w: session bus: %w", ErrNotificationsUnsupported, err)
	}
	call := conn.Object(notificationsName, notificationsPath).CallWithContext(ctx,
		notificationsName+".Notify", 0,
		n.appName, uint32(0), "", summary, body,
		[]string{}, map[string]dbus.Variant{}, int32(-1),
	)
	if call.Err != nil {
		return fmt.Errorf("notify: %w", call.Err)
	}
	return nil
}
