// Package config loads and merges motdyn configuration from the system file,
// the per-user file and MOTDYN_* environment overrides.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v2"
)

// Default paths, checked in order; the user file overrides the system file.
const (
	SystemPath = "/etc/motdyn/config.yaml"
	UserPath   = "~/.config/motdyn/config.yaml"
)

// Built-in fallbacks used when no config file sets them.
const (
	DefaultWelcome      = "Welcome!"
	DefaultFarewell     = "Have a nice day!"
	DefaultFetchTimeout = 2 * time.Second
)

// DefaultExcludeFS lists filesystem types that do not represent persistent
// storage and are skipped in the disk usage report. It is a configuration
// default, overridable via exclude_fs_types.
var DefaultExcludeFS = []string{
	"proc", "sysfs", "devtmpfs", "devpts", "tmpfs", "cgroup", "cgroup2",
	"pstore", "bpf", "securityfs", "debugfs", "tracefs", "configfs",
	"fusectl", "mqueue", "hugetlbfs", "overlay", "squashfs", "autofs",
	"binfmt_misc", "rpc_pipefs", "nsfs", "efivarfs", "ramfs",
	"fuse.gvfsd-fuse", "fuse.portal",
}

type Config struct {
	// AsciiArt is printed verbatim above the welcome line.
	AsciiArt string `yaml:"ascii_art"`
	// Farewell replaces the closing line.
	Farewell string `yaml:"farewell"`
	// WelcomeText replaces the default welcome line (used when no URL is
	// set, and as the fallback when the fetch fails).
	WelcomeText string `yaml:"welcome_text"`
	// WelcomeURL, when set, is fetched once per invocation for the welcome line.
	WelcomeURL string `yaml:"welcome_url"`
	// WelcomeTimeoutSecs bounds the fetch; 0 means the built-in default.
	WelcomeTimeoutSecs int `yaml:"welcome_timeout_secs"`
	// Color is "auto" (default), "always" or "never".
	Color string `yaml:"color"`
	// ExcludeFSTypes overrides DefaultExcludeFS when non-empty.
	ExcludeFSTypes []string `yaml:"exclude_fs_types"`
}

// Load reads one config file. A missing file is not an error (nil, nil);
// an unreadable or malformed file is reported so the caller can log and
// fall through to defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Merge overlays usr on top of sys: any field set in usr wins. Either
// argument may be nil.
func Merge(sys, usr *Config) *Config {
	out := &Config{}
	if sys != nil {
		*out = *sys
	}
	if usr == nil {
		return out
	}
	if usr.AsciiArt != "" {
		out.AsciiArt = usr.AsciiArt
	}
	if usr.Farewell != "" {
		out.Farewell = usr.Farewell
	}
	if usr.WelcomeText != "" {
		out.WelcomeText = usr.WelcomeText
	}
	if usr.WelcomeURL != "" {
		out.WelcomeURL = usr.WelcomeURL
	}
	if usr.WelcomeTimeoutSecs != 0 {
		out.WelcomeTimeoutSecs = usr.WelcomeTimeoutSecs
	}
	if usr.Color != "" {
		out.Color = usr.Color
	}
	if len(usr.ExcludeFSTypes) != 0 {
		out.ExcludeFSTypes = usr.ExcludeFSTypes
	}
	return out
}

// ApplyEnv overlays MOTDYN_* environment variables on top of cfg.
// Recognized: MOTDYN_WELCOME_URL, MOTDYN_WELCOME_TIMEOUT (seconds),
// MOTDYN_COLOR (auto|always|never).
func (c *Config) ApplyEnv(getenv func(string) string) {
	if v := getenv("MOTDYN_WELCOME_URL"); v != "" {
		c.WelcomeURL = v
	}
	if v := getenv("MOTDYN_WELCOME_TIMEOUT"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
			c.WelcomeTimeoutSecs = secs
		}
	}
	if v := getenv("MOTDYN_COLOR"); v != "" {
		c.Color = v
	}
}

// Welcome returns the configured fallback welcome text.
func (c *Config) Welcome() string {
	if strings.TrimSpace(c.WelcomeText) != "" {
		return c.WelcomeText
	}
	return DefaultWelcome
}

// FarewellText returns the configured closing line.
func (c *Config) FarewellText() string {
	if strings.TrimSpace(c.Farewell) != "" {
		return c.Farewell
	}
	return DefaultFarewell
}

// FetchTimeout returns the welcome fetch bound.
func (c *Config) FetchTimeout() time.Duration {
	if c.WelcomeTimeoutSecs > 0 {
		return time.Duration(c.WelcomeTimeoutSecs) * time.Second
	}
	return DefaultFetchTimeout
}

// ExcludeFS returns the effective pseudo-filesystem exclusion list.
func (c *Config) ExcludeFS() []string {
	if len(c.ExcludeFSTypes) != 0 {
		return c.ExcludeFSTypes
	}
	return DefaultExcludeFS
}

// ColorEnabled resolves the color mode against whether stdout is a terminal.
func (c *Config) ColorEnabled(stdoutIsTTY bool) bool {
	switch strings.ToLower(c.Color) {
	case "always":
		return true
	case "never":
		return false
	default:
		return stdoutIsTTY
	}
}
