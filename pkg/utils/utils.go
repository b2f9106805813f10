package utils

import (
	"os"
	"path/filepath"
	"strings"
)

// ExpandTilde replaces a leading "~" with $HOME. The path is returned
// unchanged when it has no tilde prefix or HOME is unset.
func ExpandTilde(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, ok := os.LookupEnv("HOME")
	if !ok {
		return path
	}
	if path == "~" {
		return home
	}
	return filepath.Join(home, path[2:])
}
