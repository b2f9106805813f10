// Package installer manages the login-profile hook that makes the banner
// print on every login shell.
package installer

import (
	"fmt"
	"os"
	"path/filepath"
)

// ScriptName is the hook file written under the profile directory.
const ScriptName = "motdyn.sh"

// script invokes motdyn only when it is actually on PATH, so a removed
// binary never breaks login shells.
const script = `#!/bin/sh
# Auto-generated by 'motdyn install'. It runs 'motdyn' on login.
if [ -x "$(command -v motdyn)" ]; then
    motdyn
fi
`

// Installer writes and removes the login hook. ProfileDir is a field so
// tests can point it at a temp directory.
type Installer struct {
	ProfileDir string
}

// New returns an Installer targeting the system profile directory.
func New() Installer {
	return Installer{ProfileDir: "/etc/profile.d"}
}

func (i Installer) scriptPath() string {
	return filepath.Join(i.ProfileDir, ScriptName)
}

// Install writes the hook script with execute permissions. It fails when
// the profile directory itself does not exist.
func (i Installer) Install() error {
	if _, err := os.Stat(i.ProfileDir); err != nil {
		return fmt.Errorf("directory %q not found, cannot install system-wide script", i.ProfileDir)
	}
	if err := os.WriteFile(i.scriptPath(), []byte(script), 0o755); err != nil {
		return fmt.Errorf("writing %s: %w", i.scriptPath(), err)
	}
	return nil
}

// Uninstall removes the hook script. A script that was never installed is
// not an error.
func (i Installer) Uninstall() error {
	err := os.Remove(i.scriptPath())
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing %s: %w", i.scriptPath(), err)
	}
	return nil
}

// Status reports whether the hook script is present and where.
func (i Installer) Status() (installed bool, path string) {
	path = i.scriptPath()
	_, err := os.Stat(path)
	return err == nil, path
}
