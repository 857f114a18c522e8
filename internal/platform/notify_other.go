//go:build !linux

package platform

import "context"

type unsupportedNotifier struct{}

func newNotifier(string) Notifier {
	return unsupportedNotifier{}
}

func (unsupportedNotifier) Available(context.Context) (bool, error) {
	return false, ErrNotificationsUnsupported
}

func (unsupportedNotifier) Notify(context.Context, string, string) error {
	return ErrNotificationsUnsupported
}
