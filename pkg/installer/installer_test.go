package installer

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestInstallUninstall_RoundTrip(t *testing.T) {
	inst := Installer{ProfileDir: t.TempDir()}

	if installed, _ := inst.Status(); installed {
		t.Fatal("fresh dir reports installed")
	}

	if err := inst.Install(); err != nil {
		t.Fatalf("Install: %v", err)
	}
	installed, path := inst.Status()
	if !installed {
		t.Fatal("Status after Install = not installed")
	}
	if filepath.Base(path) != ScriptName {
		t.Errorf("script path = %q", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading script: %v", err)
	}
	if !strings.HasPrefix(string(data), "#!/bin/sh") {
		t.Errorf("script missing shebang:\n%s", data)
	}
	if !strings.Contains(string(data), "motdyn") {
		t.Error("script does not invoke motdyn")
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm()&0o111 == 0 {
		t.Errorf("script not executable: %v", info.Mode())
	}

	if err := inst.Uninstall(); err != nil {
		t.Fatalf("Uninstall: %v", err)
	}
	if installed, _ := inst.Status(); installed {
		t.Error("Status after Uninstall = installed")
	}
}

func TestInstall_MissingProfileDir(t *testing.T) {
	inst := Installer{ProfileDir: filepath.Join(t.TempDir(), "does-not-exist")}
	if err := inst.Install(); err == nil {
		t.Error("expected error for missing profile dir")
	}
}

func TestUninstall_NotInstalledIsNoop(t *testing.T) {
	inst := Installer{ProfileDir: t.TempDir()}
	if err := inst.Uninstall(); err != nil {
		t.Errorf("Uninstall on clean dir: %v", err)
	}
}
