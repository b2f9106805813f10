// Package facts collects live host information (time, uptime, OS and kernel
// identity, CPU, memory, sessions, mounted disks, virtualization context)
// into one immutable FactSet. A source that cannot be read costs only its own
// field: the assembler substitutes a sentinel and keeps going, so a banner
// with a few "unknown" fields still prints.
package facts

import (
	"runtime"
	"time"

	"motdyn/pkg/logger"
)

// Sentinel substituted for string facts whose source is unavailable.
const Unknown = "unknown"

// ByteUsage is a used/total pair in bytes.
type ByteUsage struct {
	Used  uint64
	Total uint64
}

// Percent returns used/total as a percentage, 0 when total is 0.
func (b ByteUsage) Percent() float64 {
	if b.Total == 0 {
		return 0
	}
	return float64(b.Used) / float64(b.Total) * 100
}

// CPU describes the processor.
type CPU struct {
	Model        string
	Cores        int
	Architecture string
}

// User is the invoking login and where it came from.
type User struct {
	Name string
	// Origin is the remote address for SSH sessions, "local" otherwise.
	Origin string
}

// Disk is the usage of one qualifying mount.
type Disk struct {
	MountPoint string
	FSType     string
	Used       uint64
	Total      uint64
}

// Percent returns used/total as a percentage, 0 when total is 0.
func (d Disk) Percent() float64 {
	return ByteUsage{d.Used, d.Total}.Percent()
}

// FactSet is the snapshot of all collected host facts for one invocation.
// It is built once by Gather and never mutated afterwards.
type FactSet struct {
	Timestamp time.Time
	// Uptime is negative when the boot counter could not be read.
	Uptime         time.Duration
	OSName         string
	OSVersion      string
	Kernel         string
	Hostname       string
	CPU            CPU
	Virtualization string
	Memory         ByteUsage
	Swap           ByteUsage
	User           User
	LoginCount     int
	Disks          []Disk
}

// Gather assembles a FactSet from src. Collection runs in a fixed order:
// time, uptime, OS identity, kernel, hostname, CPU, virtualization, memory,
// swap, user/session, disks. Each unavailable source is replaced by its
// sentinel; Gather itself never fails.
func Gather(src *Sources, excludeFS []string) FactSet {
	fs := FactSet{
		Timestamp: src.Now(),
		Uptime:    -1,
		OSName:    Unknown,
		OSVersion: "",
		Kernel:    Unknown,
		Hostname:  Unknown,
		CPU:       CPU{Model: Unknown, Architecture: runtime.GOARCH},
	}

	if up, err := src.Uptime(); err == nil {
		fs.Uptime = up
	} else {
		logger.L.Debug("uptime unavailable", "err", err)
	}

	if name, version, err := src.OSIdentity(); err == nil {
		fs.OSName, fs.OSVersion = name, version
	} else {
		logger.L.Debug("os identity unavailable", "err", err)
	}

	if v, err := src.KernelVersion(); err == nil {
		fs.Kernel = v
	} else {
		logger.L.Debug("kernel version unavailable", "err", err)
	}

	if v, err := src.Hostname(); err == nil {
		fs.Hostname = v
	} else {
		logger.L.Debug("hostname unavailable", "err", err)
	}

	cpu, cpuErr := src.CPUInfo()
	if cpuErr == nil {
		fs.CPU.Cores = cpu.Cores
		switch {
		case cpu.Model != "":
			fs.CPU.Model = cpu.Model
		case cpu.HasArmID:
			fs.CPU.Model = LookupArmCPU(cpu.Implementer, cpu.Part)
		}
	} else {
		logger.L.Debug("cpuinfo unavailable", "err", cpuErr)
	}

	if sig, any := src.VirtSignals(cpu); any {
		fs.Virtualization = ClassifyVirtualization(sig)
	} else {
		fs.Virtualization = VirtUnknown
	}

	if mi, err := src.MemInfo(); err == nil {
		fs.Memory = memoryUsage(mi)
		fs.Swap = ByteUsage{Used: clampSub(mi.SwapTotal, mi.SwapFree), Total: mi.SwapTotal}
	} else {
		logger.L.Debug("meminfo unavailable", "err", err)
	}

	fs.User.Name, fs.User.Origin = src.CurrentUser()

	if n, err := src.LoginCount(); err == nil {
		fs.LoginCount = n
	} else {
		logger.L.Debug("login count unavailable", "err", err)
	}

	fs.Disks = gatherDisks(src, excludeFS)
	return fs
}

// memoryUsage computes used memory as total minus available. This matches
// what free(1) and most monitoring tools report; total minus MemFree would
// count reclaimable cache as "used". MemFree stands in on kernels without
// MemAvailable.
func memoryUsage(mi MemInfo) ByteUsage {
	avail := mi.MemAvailable
	if !mi.HasAvailable {
		avail = mi.MemFree
	}
	return ByteUsage{Used: clampSub(mi.MemTotal, avail), Total: mi.MemTotal}
}

func clampSub(total, sub uint64) uint64 {
	if sub > total {
		return 0
	}
	return total - sub
}

// gatherDisks walks the mount table in order, skipping excluded filesystem
// types and any mount whose statfs fails. An unreadable mount table yields
// an empty list, not an error.
func gatherDisks(src *Sources, excludeFS []string) []Disk {
	mounts, err := src.Mounts()
	if err != nil {
		logger.L.Debug("mount table unavailable", "err", err)
		return nil
	}
	excluded := make(map[string]bool, len(excludeFS))
	for _, t := range excludeFS {
		excluded[t] = true
	}
	var disks []Disk
	for _, m := range mounts {
		if excluded[m.FSType] {
			continue
		}
		used, total, err := src.MountUsage(m.MountPoint)
		if err != nil {
			logger.L.Debug("mount usage unavailable", "mount", m.MountPoint, "err", err)
			continue
		}
		disks = append(disks, Disk{
			MountPoint: m.MountPoint,
			FSType:     m.FSType,
			Used:       used,
			Total:      total,
		})
	}
	return disks
}
