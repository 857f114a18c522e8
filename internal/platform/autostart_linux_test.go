//go:build linux

package platform

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildDesktopEntry_QuotesArguments(t *testing.T) {
	entry := buildDesktopEntry("Sleep Timer", []string{"/opt/my apps/sleeptimer", "tray"})

	assert.Contains(t, entry, "Name=Sleep Timer\n")
	assert.Contains(t, entry, "Exec=\"/opt/my apps/sleeptimer\" tray\n")
}

func TestAutostart_EnableDisable(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	autostart := NewAutostart("Sleep Timer", "tray")

	require.NoError(t, autostart.Enable("/usr/bin/sleeptimer"))
	path := filepath.Join(dir, "autostart", "sleep-timer.desktop")
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Exec=/usr/bin/sleeptimer tray\n")

	require.NoError(t, autostart.Disable())
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
	assert.NoError(t, autostart.Disable())
}

func TestAutostart_RejectsEmptyExecPath(t *testing.T) {
	assert.ErrorIs(t, NewAutostart("x").Enable(" "), errEmptyExecPath)
}
