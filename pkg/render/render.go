// Package render turns a FactSet into the aligned, optionally colorized
// banner text. Rendering is pure: the same facts and options always produce
// the same string, and color only wraps values in escape sequences without
// changing the underlying text.
package render

import (
	"fmt"
	"math"
	"regexp"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"motdyn/pkg/facts"
)

// ANSI escape codes, matching the bright palette of the banner.
const (
	ansiReset         = "\033[0m"
	ansiBold          = "\033[1m"
	ansiBrightGreen   = "\033[92m"
	ansiBrightYellow  = "\033[93m"
	ansiBrightMagenta = "\033[95m"
	ansiBrightCyan    = "\033[96m"
	ansiBrightWhite   = "\033[97m"
)

// Options control presentation only; they never affect which facts exist.
type Options struct {
	// Color wraps labels and values in ANSI escape sequences.
	Color bool
	// Verbose appends extra detail lines after the disk report.
	Verbose bool
	// AsciiArt, when non-empty, is printed verbatim above the welcome line.
	AsciiArt string
	// Farewell is the closing line.
	Farewell string
}

type line struct {
	label string
	value string
}

// Render formats the fact set plus the welcome line into the banner text.
// Line order is fixed; verbosity only appends lines and color only adds
// escape sequences (StripANSI of a colored render equals the plain render).
func Render(fs facts.FactSet, welcomeText string, opts Options) string {
	c := func(color, s string) string {
		if !opts.Color {
			return s
		}
		return color + s + ansiReset
	}

	lines := []line{
		{"Current time (TZ):", c(ansiBrightYellow, fs.Timestamp.Format("2006-01-02 15:04:05 -07:00"))},
		{"System uptime:", c(ansiBrightYellow, formatUptime(fs.Uptime))},
		{"Operating system:", c(ansiBrightYellow, strings.TrimSpace(fs.OSName+" "+fs.OSVersion))},
		{"Kernel version:", c(ansiBrightGreen, fs.Kernel)},
		{"Host name:", c(ansiBrightYellow, fs.Hostname)},
		{"CPU:", fmt.Sprintf("%s (%s cores)",
			c(ansiBrightMagenta, fs.CPU.Model),
			c(ansiBrightMagenta, fmt.Sprintf("%d", fs.CPU.Cores)))},
		{"Memory used/total:", formatGBUsage(fs.Memory)},
		{"Swap used/total:", formatGBUsage(fs.Swap)},
		{"Current user:", fmt.Sprintf("%s (from %s)",
			c(ansiBrightCyan, fs.User.Name),
			c(ansiBrightCyan, fs.User.Origin))},
		{"Login user count:", c(ansiBrightCyan, fmt.Sprintf("%d", fs.LoginCount))},
	}

	for _, d := range fs.Disks {
		lines = append(lines, line{
			fmt.Sprintf("Disk usage (%s):", d.FSType),
			fmt.Sprintf("%s => %s", c(ansiBrightYellow, d.MountPoint), formatScaledUsage(d.Used, d.Total)),
		})
	}

	if opts.Verbose {
		lines = append(lines,
			line{"Architecture:", c(ansiBrightMagenta, fs.CPU.Architecture)},
			line{"Virtualization:", c(ansiBrightGreen, fs.Virtualization)},
			line{"Memory raw:", formatRawUsage(fs.Memory)},
			line{"Swap raw:", formatRawUsage(fs.Swap)},
		)
	}

	width := 0
	for _, l := range lines {
		if len(l.label) > width {
			width = len(l.label)
		}
	}

	var b strings.Builder
	if opts.AsciiArt != "" {
		b.WriteString("\n")
		b.WriteString(opts.AsciiArt)
		b.WriteString("\n\n")
	}
	b.WriteString(c(ansiBold+ansiBrightCyan, welcomeText))
	b.WriteString("\n\n")
	for _, l := range lines {
		b.WriteString(c(ansiBrightWhite, l.label))
		b.WriteString(strings.Repeat(" ", width-len(l.label)+1))
		b.WriteString(l.value)
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(c(ansiBold+ansiBrightCyan, opts.Farewell))
	b.WriteString("\n")
	return b.String()
}

var ansiPattern = regexp.MustCompile(`\x1b\[[0-9;]*m`)

// StripANSI removes escape sequences, recovering the plain text of a
// colored render.
func StripANSI(s string) string {
	return ansiPattern.ReplaceAllString(s, "")
}

// roundHalfUp rounds to two decimals with ties going up, the documented
// rounding rule for every numeric field in the banner.
func roundHalfUp(v float64) float64 {
	return math.Floor(v*100+0.5) / 100
}

// formatUptime renders a boot duration as "N days, HH:MM:SS", dropping the
// day part under 24 hours. A negative duration means the counter was
// unreadable.
func formatUptime(d time.Duration) string {
	if d < 0 {
		return facts.Unknown
	}
	secs := int64(d.Seconds())
	days := secs / 86400
	secs %= 86400
	hours := secs / 3600
	secs %= 3600
	mins := secs / 60
	secs %= 60
	if days > 0 {
		return fmt.Sprintf("%d days, %02d:%02d:%02d", days, hours, mins, secs)
	}
	return fmt.Sprintf("%02d:%02d:%02d", hours, mins, secs)
}

const gib = 1 << 30

// formatGBUsage renders memory-style usage, always in GB with two decimals.
func formatGBUsage(u facts.ByteUsage) string {
	return fmt.Sprintf("%.2f/%.2f GB (%.2f%%)",
		roundHalfUp(float64(u.Used)/gib),
		roundHalfUp(float64(u.Total)/gib),
		roundHalfUp(u.Percent()))
}

// formatRawUsage renders the unconverted byte counters (verbose mode).
func formatRawUsage(u facts.ByteUsage) string {
	return fmt.Sprintf("%s / %s bytes",
		humanize.Comma(int64(u.Used)), humanize.Comma(int64(u.Total)))
}

var unitScales = []struct {
	scale  float64
	suffix string
}{
	{1 << 50, "PB"},
	{1 << 40, "TB"},
	{1 << 30, "GB"},
	{1 << 20, "MB"},
	{1 << 10, "KB"},
}

// formatScaledUsage renders disk-style usage, picking the largest unit that
// fits the bigger of used/total.
func formatScaledUsage(used, total uint64) string {
	bigger := used
	if total > bigger {
		bigger = total
	}
	scale, suffix := 1.0, "B"
	for _, u := range unitScales {
		if float64(bigger) >= u.scale {
			scale, suffix = u.scale, u.suffix
			break
		}
	}
	pct := 0.0
	if total > 0 {
		pct = float64(used) / float64(total) * 100
	}
	return fmt.Sprintf("%.2f/%.2f %s (%.2f%%)",
		roundHalfUp(float64(used)/scale),
		roundHalfUp(float64(total)/scale),
		suffix,
		roundHalfUp(pct))
}
