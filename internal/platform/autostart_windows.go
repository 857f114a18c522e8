//go:build windows

package platform

import (
	"fmt"
	"os/exec"
	"strings"
)

const registryRunKey = `HKCU\Software\Microsoft\Windows\CurrentVersion\Run`

func (autostart *Autostart) enable(argv []string) error {
	quoted := make([]string, 0, len(argv))
	for _, arg := range argv {
		quoted = append(quoted, `"`+strings.Trim(arg, `"`)+`"`)
	}
	return runReg("add", registryRunKey, "/v", autostart.slug(), "/t", "REG_SZ", "/d", strings.Join(quoted, " "), "/f")
}

func (autostart *Autostart) disable() error {
	err := runReg("delete", registryRunKey, "/v", autostart.slug(), "/f")
	if err != nil && strings.Contains(err.Error(), "unable to find") {
		return nil
	}
	return err
}

func runReg(args ...string) error {
	output, err := exec.Command("reg", args...).CombinedOutput()
	if err != nil {
		return fmt.Errorf("reg %s: %w: %s", args[0], err, strings.TrimSpace(string(output)))
	}
	return nil
}
