package platform

import (
	"errors"
	"fmt"
	"strings"
)

var errEmptyExecPath = errors.New("exec path is empty")

// Autostart registers the application to launch at login with fixed arguments.
type Autostart struct {
	name string
	args []string
}

// NewAutostart returns a login item for appName that runs with args.
func NewAutostart(appName string, args ...string) *Autostart {
	return &Autostart{name: appName, args: args}
}

// Enable writes the platform login item pointing at execPath.
func (autostart *Autostart) Enable(execPath string) error {
	if strings.TrimSpace(execPath) == "" {
		return fmt.Errorf("enable autostart: %w", errEmptyExecPath)
	}
	argv := append([]string{execPath}, autostart.args...)
	if err := autostart.enable(argv); err != nil {
		return fmt.Errorf("enable autostart: %w", err)
	}
	return nil
}

// Disable removes the login item. Removing a missing item is not an error.
func (autostart *Autostart) Disable() error {
	if err := autostart.disable(); err != nil {
		return fmt.Errorf("disable autostart: %w", err)
	}
	return nil
}

func (autostart *Autostart) slug() string {
	name := strings.ToLower(strings.TrimSpace(autostart.name))
	if name == "" {
		name = "sleeptimer"
	}
	return strings.ReplaceAll(name, " ", "-")
}
