package facts

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sys/unix"
)

// ErrSourceUnavailable marks a single fact source that is missing or
// unreadable. Callers substitute a sentinel and continue; it is never
// surfaced to the user.
var ErrSourceUnavailable = errors.New("source unavailable")

// Sources reads the raw, platform-specific data the assembler normalizes.
// Every pseudo-file path is re-based under Root so tests can run against a
// fake tree; the syscall and process hooks are injectable for the same
// reason. All accessors are read-only.
type Sources struct {
	// Root is the filesystem prefix for pseudo-files, "/" in production.
	Root string
	// Statfs reports filesystem usage for a mount point.
	Statfs func(path string, st *unix.Statfs_t) error
	// Getenv resolves environment variables (USER, SSH_CONNECTION, ...).
	Getenv func(string) string
	// WhoQ returns the output of `who -q`.
	WhoQ func() (string, error)
	// Now returns the current local time.
	Now func() time.Time
}

// NewSources returns Sources wired to the live system.
func NewSources() *Sources {
	return &Sources{
		Root:   "/",
		Statfs: unix.Statfs,
		Getenv: os.Getenv,
		WhoQ:   runWhoQ,
		Now:    time.Now,
	}
}

func runWhoQ() (string, error) {
	out, err := exec.Command("who", "-q").Output()
	if err != nil {
		return "", err
	}
	return string(out), nil
}

func (s *Sources) path(rel string) string {
	return filepath.Join(s.Root, rel)
}

func (s *Sources) readFile(rel string) (string, error) {
	data, err := os.ReadFile(s.path(rel))
	if err != nil {
		return "", fmt.Errorf("%s: %w", rel, ErrSourceUnavailable)
	}
	return string(data), nil
}

func (s *Sources) firstLine(rel string) (string, error) {
	f, err := os.Open(s.path(rel))
	if err != nil {
		return "", fmt.Errorf("%s: %w", rel, ErrSourceUnavailable)
	}
	defer f.Close()
	scanner := bufio.NewScanner(f)
	if !scanner.Scan() {
		return "", fmt.Errorf("%s: empty: %w", rel, ErrSourceUnavailable)
	}
	return strings.TrimSpace(scanner.Text()), nil
}

// Uptime reads the monotonic boot counter from /proc/uptime.
func (s *Sources) Uptime() (time.Duration, error) {
	line, err := s.firstLine("proc/uptime")
	if err != nil {
		return 0, err
	}
	// Format: "25333.53 1022.30" — first float is seconds since boot.
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return 0, fmt.Errorf("proc/uptime: malformed: %w", ErrSourceUnavailable)
	}
	secs, err := strconv.ParseFloat(fields[0], 64)
	if err != nil || secs < 0 {
		return 0, fmt.Errorf("proc/uptime: malformed: %w", ErrSourceUnavailable)
	}
	return time.Duration(secs * float64(time.Second)), nil
}

// MemInfo holds the /proc/meminfo counters the banner needs, in bytes.
type MemInfo struct {
	MemTotal     uint64
	MemAvailable uint64
	MemFree      uint64
	// HasAvailable distinguishes a missing MemAvailable field (old
	// kernels) from a genuine zero.
	HasAvailable bool
	SwapTotal    uint64
	SwapFree     uint64
}

// MemInfo parses /proc/meminfo. Values are reported there in kB.
func (s *Sources) MemInfo() (MemInfo, error) {
	content, err := s.readFile("proc/meminfo")
	if err != nil {
		return MemInfo{}, err
	}
	var mi MemInfo
	for _, line := range strings.Split(content, "\n") {
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		kb, err := strconv.ParseUint(fields[1], 10, 64)
		if err != nil {
			continue
		}
		bytes := kb * 1024
		switch fields[0] {
		case "MemTotal:":
			mi.MemTotal = bytes
		case "MemAvailable:":
			mi.MemAvailable = bytes
			mi.HasAvailable = true
		case "MemFree:":
			mi.MemFree = bytes
		case "SwapTotal:":
			mi.SwapTotal = bytes
		case "SwapFree:":
			mi.SwapFree = bytes
		}
	}
	return mi, nil
}

// CPUInfo holds what /proc/cpuinfo yields before catalog resolution.
type CPUInfo struct {
	Model    string
	Cores    int
	VendorID string
	Flags    []string
	// ARM identification, present when the cpuinfo carries
	// "CPU implementer" / "CPU part" fields.
	HasArmID    bool
	Implementer uint8
	Part        uint16
}

// CPUInfo parses /proc/cpuinfo. The model name and vendor are taken from the
// first processor entry; cores counts "processor" lines.
func (s *Sources) CPUInfo() (CPUInfo, error) {
	content, err := s.readFile("proc/cpuinfo")
	if err != nil {
		return CPUInfo{}, err
	}
	var ci CPUInfo
	var impl, part uint64
	var haveImpl, havePart bool
	for _, line := range strings.Split(content, "\n") {
		key, value, found := strings.Cut(line, ":")
		if !found {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)
		switch key {
		case "processor":
			ci.Cores++
		case "model name":
			if ci.Model == "" {
				ci.Model = value
			}
		case "vendor_id":
			if ci.VendorID == "" {
				ci.VendorID = value
			}
		case "flags", "Features":
			if len(ci.Flags) == 0 {
				ci.Flags = strings.Fields(value)
			}
		case "CPU implementer":
			if v, err := parseHex(value); err == nil {
				impl, haveImpl = v, true
			}
		case "CPU part":
			if v, err := parseHex(value); err == nil {
				part, havePart = v, true
			}
		}
	}
	if haveImpl && havePart {
		ci.HasArmID = true
		ci.Implementer = uint8(impl)
		ci.Part = uint16(part)
	}
	return ci, nil
}

func parseHex(s string) (uint64, error) {
	return strconv.ParseUint(strings.TrimPrefix(strings.ToLower(s), "0x"), 16, 32)
}

// OSIdentity resolves the distribution name and version. Preference order
// follows the common convention: /etc/redhat-release, then /etc/os-release,
// then the kernel ostype as a last resort.
func (s *Sources) OSIdentity() (name, version string, err error) {
	if content, err := s.readFile("etc/redhat-release"); err == nil {
		// "CentOS Linux release 8.4.2105 (Core)"
		line := strings.TrimSpace(content)
		if name, version, ok := strings.Cut(line, " release "); ok {
			return name, version, nil
		}
	}
	if content, err := s.readFile("etc/os-release"); err == nil {
		for _, line := range strings.Split(content, "\n") {
			if v, ok := strings.CutPrefix(line, "NAME="); ok {
				name = strings.Trim(strings.TrimSpace(v), `"`)
			} else if v, ok := strings.CutPrefix(line, "VERSION_ID="); ok {
				version = strings.Trim(strings.TrimSpace(v), `"`)
			}
		}
		if name != "" && version != "" {
			return name, version, nil
		}
	}
	if ostype, err := s.firstLine("proc/sys/kernel/ostype"); err == nil {
		return "Linux", ostype, nil
	}
	return "", "", fmt.Errorf("os identity: %w", ErrSourceUnavailable)
}

// KernelVersion reads the running kernel release, falling back to uname(2)
// when the pseudo-file is unavailable.
func (s *Sources) KernelVersion() (string, error) {
	if v, err := s.firstLine("proc/sys/kernel/osrelease"); err == nil {
		return v, nil
	}
	var u unix.Utsname
	if err := unix.Uname(&u); err != nil {
		return "", fmt.Errorf("kernel version: %w", ErrSourceUnavailable)
	}
	return unix.ByteSliceToString(u.Release[:]), nil
}

// Hostname reads the kernel hostname pseudo-file, falling back to the
// hostname syscall.
func (s *Sources) Hostname() (string, error) {
	if v, err := s.firstLine("proc/sys/kernel/hostname"); err == nil {
		return v, nil
	}
	if v, err := os.Hostname(); err == nil {
		return v, nil
	}
	return "", fmt.Errorf("hostname: %w", ErrSourceUnavailable)
}

// MountEntry is one /proc/mounts row.
type MountEntry struct {
	Device     string
	MountPoint string
	FSType     string
}

// Mounts parses /proc/mounts, preserving the mount table order.
func (s *Sources) Mounts() ([]MountEntry, error) {
	content, err := s.readFile("proc/mounts")
	if err != nil {
		return nil, err
	}
	var mounts []MountEntry
	for _, line := range strings.Split(content, "\n") {
		fields := strings.Fields(line)
		if len(fields) < 3 {
			continue
		}
		mounts = append(mounts, MountEntry{
			Device:     fields[0],
			MountPoint: fields[1],
			FSType:     fields[2],
		})
	}
	return mounts, nil
}

// MountUsage returns used and total bytes for one mount point via statfs.
func (s *Sources) MountUsage(mountPoint string) (used, total uint64, err error) {
	var st unix.Statfs_t
	if err := s.Statfs(mountPoint, &st); err != nil {
		return 0, 0, fmt.Errorf("statfs %s: %w", mountPoint, ErrSourceUnavailable)
	}
	blockSize := uint64(st.Frsize)
	total = blockSize * st.Blocks
	// Some network filesystems report more free than total blocks.
	blocksUsed := uint64(0)
	if st.Blocks > st.Bfree {
		blocksUsed = st.Blocks - st.Bfree
	}
	used = blockSize * blocksUsed
	return used, total, nil
}

// VirtSignals gathers the raw signals the virtualization classifier needs.
// Missing pieces stay empty; the caller decides whether anything was
// readable at all.
func (s *Sources) VirtSignals(cpu CPUInfo) (Signals, bool) {
	sig := Signals{
		CPUVendor: cpu.VendorID,
		CPUFlags:  cpu.Flags,
	}
	any := cpu.VendorID != "" || len(cpu.Flags) > 0
	if v, err := s.firstLine("sys/class/dmi/id/sys_vendor"); err == nil {
		sig.DMIVendor = v
		any = true
	}
	if v, err := s.firstLine("sys/class/dmi/id/product_name"); err == nil {
		sig.DMIProduct = v
		any = true
	}
	if v, err := s.firstLine("run/systemd/container"); err == nil {
		sig.Container = v
		any = true
	} else if _, err := os.Stat(s.path(".dockerenv")); err == nil {
		sig.Container = "docker"
		any = true
	}
	return sig, any
}

// CurrentUser resolves the login name and its origin. A remote session is
// recognized by SSH_CONNECTION; everything else is local.
func (s *Sources) CurrentUser() (name, origin string) {
	name = s.Getenv("USER")
	if name == "" {
		name = s.Getenv("LOGNAME")
	}
	if name == "" {
		name = "unknown"
	}
	origin = "local"
	if conn := s.Getenv("SSH_CONNECTION"); conn != "" {
		if fields := strings.Fields(conn); len(fields) > 0 {
			origin = fields[0]
		}
	}
	return name, origin
}

// LoginCount counts distinct active login sessions via `who -q`, whose last
// line reads "# users=N".
func (s *Sources) LoginCount() (int, error) {
	out, err := s.WhoQ()
	if err != nil {
		return 0, fmt.Errorf("who -q: %w", ErrSourceUnavailable)
	}
	for _, line := range strings.Split(out, "\n") {
		if _, v, ok := strings.Cut(line, "# users="); ok {
			n, err := strconv.Atoi(strings.TrimSpace(v))
			if err != nil {
				return 0, fmt.Errorf("who -q: malformed: %w", ErrSourceUnavailable)
			}
			return n, nil
		}
	}
	return 0, fmt.Errorf("who -q: malformed: %w", ErrSourceUnavailable)
}
