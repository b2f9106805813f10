package facts

import (
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/sys/unix"
)

var excludeForTest = []string{"proc", "tmpfs"}

// healthySources builds a Sources where every fact category resolves.
func healthySources(t *testing.T) *Sources {
	t.Helper()
	src := fakeRoot(t, map[string]string{
		"proc/uptime":               "190422.75 80000.00\n",
		"proc/meminfo":              sampleMeminfo,
		"proc/cpuinfo":              sampleCpuinfoX86,
		"proc/mounts":               sampleMounts,
		"proc/sys/kernel/osrelease": "6.8.0-41-generic\n",
		"proc/sys/kernel/hostname":  "db-host-01\n",
		"etc/os-release":            "NAME=\"Ubuntu\"\nVERSION_ID=\"24.04\"\n",
	})
	src.Statfs = func(path string, st *unix.Statfs_t) error {
		st.Frsize = 4096
		st.Blocks = 1 << 20
		st.Bfree = 1 << 18
		return nil
	}
	src.Getenv = func(k string) string {
		switch k {
		case "USER":
			return "alice"
		case "SSH_CONNECTION":
			return "192.0.2.7 51234 192.0.2.1 22"
		}
		return ""
	}
	src.WhoQ = func() (string, error) { return "alice bob\n# users=2\n", nil }
	return src
}

func TestGather_AllSourcesHealthy(t *testing.T) {
	fs := Gather(healthySources(t), excludeForTest)

	if fs.Uptime < 0 {
		t.Error("uptime should be known")
	}
	if fs.OSName != "Ubuntu" || fs.OSVersion != "24.04" {
		t.Errorf("os = %q %q", fs.OSName, fs.OSVersion)
	}
	if fs.Kernel != "6.8.0-41-generic" {
		t.Errorf("kernel = %q", fs.Kernel)
	}
	if fs.Hostname != "db-host-01" {
		t.Errorf("hostname = %q", fs.Hostname)
	}
	if fs.CPU.Cores != 2 || fs.CPU.Model == Unknown {
		t.Errorf("cpu = %+v", fs.CPU)
	}
	// The sample cpuinfo carries the hypervisor flag and no specific
	// signature.
	if fs.Virtualization != "virtual machine" {
		t.Errorf("virtualization = %q", fs.Virtualization)
	}
	if fs.Memory.Total == 0 || fs.Memory.Used == 0 {
		t.Errorf("memory = %+v", fs.Memory)
	}
	if fs.User.Name != "alice" || fs.User.Origin != "192.0.2.7" {
		t.Errorf("user = %+v", fs.User)
	}
	if fs.LoginCount != 2 {
		t.Errorf("login count = %d", fs.LoginCount)
	}
	// sampleMounts minus proc and tmpfs entries.
	if len(fs.Disks) != 3 {
		t.Fatalf("disks = %+v", fs.Disks)
	}
	wantMounts := []string{"/", "/data", "/mnt/nfs"}
	for i, d := range fs.Disks {
		if d.MountPoint != wantMounts[i] {
			t.Errorf("disk[%d] = %q, want %q", i, d.MountPoint, wantMounts[i])
		}
	}
}

func TestGather_UsedIsTotalMinusAvailable(t *testing.T) {
	fs := Gather(healthySources(t), excludeForTest)
	wantTotal := uint64(134217728) * 1024
	wantUsed := wantTotal - uint64(30000000)*1024
	if fs.Memory.Total != wantTotal || fs.Memory.Used != wantUsed {
		t.Errorf("memory = %+v, want used=%d total=%d", fs.Memory, wantUsed, wantTotal)
	}
	if fs.Memory.Used > fs.Memory.Total {
		t.Error("used exceeds total")
	}
}

func TestGather_MemAvailableFallsBackToMemFree(t *testing.T) {
	src := healthySources(t)
	meminfo := "MemTotal: 1000 kB\nMemFree: 400 kB\nSwapTotal: 0 kB\nSwapFree: 0 kB\n"
	if err := os.WriteFile(filepath.Join(src.Root, "proc/meminfo"), []byte(meminfo), 0o644); err != nil {
		t.Fatal(err)
	}
	fs := Gather(src, excludeForTest)
	if fs.Memory.Used != 600*1024 {
		t.Errorf("used = %d, want MemFree fallback (600 kB)", fs.Memory.Used)
	}
	if fs.Swap.Total != 0 || fs.Swap.Used != 0 {
		t.Errorf("swap = %+v, want zeros", fs.Swap)
	}
}

func TestGather_AvailableAboveTotalClampsToZero(t *testing.T) {
	if got := memoryUsage(MemInfo{MemTotal: 100, MemAvailable: 200, HasAvailable: true}); got.Used != 0 {
		t.Errorf("used = %d, want clamp to 0", got.Used)
	}
}

// Knocking out one source must cost exactly that field.
func TestGather_OnlyMountTableUnavailable(t *testing.T) {
	src := healthySources(t)
	if err := os.Remove(filepath.Join(src.Root, "proc/mounts")); err != nil {
		t.Fatal(err)
	}
	fs := Gather(src, excludeForTest)
	if fs.Disks != nil {
		t.Errorf("disks = %+v, want sentinel nil", fs.Disks)
	}
	if fs.Kernel == Unknown || fs.Hostname == Unknown || fs.Memory.Total == 0 || fs.LoginCount != 2 {
		t.Error("unrelated fields degraded by the missing mount table")
	}
}

func TestGather_OnlyCPUUnavailable(t *testing.T) {
	src := healthySources(t)
	if err := os.Remove(filepath.Join(src.Root, "proc/cpuinfo")); err != nil {
		t.Fatal(err)
	}
	fs := Gather(src, excludeForTest)
	if fs.CPU.Model != Unknown || fs.CPU.Cores != 0 {
		t.Errorf("cpu = %+v, want sentinels", fs.CPU)
	}
	if fs.Memory.Total == 0 || len(fs.Disks) == 0 {
		t.Error("unrelated fields degraded by the missing cpuinfo")
	}
}

func TestGather_EmptyTreeYieldsSentinelsEverywhere(t *testing.T) {
	fs := Gather(fakeRoot(t, nil), excludeForTest)
	if fs.Uptime >= 0 {
		t.Errorf("uptime = %v, want negative sentinel", fs.Uptime)
	}
	if fs.OSName != Unknown {
		t.Errorf("os = %q", fs.OSName)
	}
	if fs.CPU.Model != Unknown {
		t.Errorf("cpu model = %q", fs.CPU.Model)
	}
	if fs.Virtualization != VirtUnknown {
		t.Errorf("virtualization = %q, want %q", fs.Virtualization, VirtUnknown)
	}
	if fs.Memory != (ByteUsage{}) || fs.Swap != (ByteUsage{}) {
		t.Errorf("memory/swap = %+v/%+v, want zeros", fs.Memory, fs.Swap)
	}
	if fs.User.Name != Unknown || fs.User.Origin != "local" {
		t.Errorf("user = %+v", fs.User)
	}
	if fs.LoginCount != 0 || fs.Disks != nil {
		t.Errorf("count=%d disks=%v, want zero sentinels", fs.LoginCount, fs.Disks)
	}
	// Kernel and hostname still resolve through the syscall fallbacks on a
	// live system, so they are only checked for non-emptiness.
	if fs.Kernel == "" || fs.Hostname == "" {
		t.Error("kernel/hostname must never be empty")
	}
}

func TestGather_ARMModelResolvedThroughCatalog(t *testing.T) {
	src := healthySources(t)
	if err := os.WriteFile(filepath.Join(src.Root, "proc/cpuinfo"), []byte(sampleCpuinfoArm), 0o644); err != nil {
		t.Fatal(err)
	}
	fs := Gather(src, excludeForTest)
	if fs.CPU.Model != "ARM Cortex-A72" {
		t.Errorf("model = %q, want catalog entry", fs.CPU.Model)
	}
	if fs.CPU.Cores != 4 {
		t.Errorf("cores = %d", fs.CPU.Cores)
	}
}

func TestGather_ARMUnknownPairKeepsHexLabel(t *testing.T) {
	src := healthySources(t)
	cpuinfo := "processor\t: 0\nCPU implementer\t: 0xff\nCPU part\t: 0xffff\n"
	if err := os.WriteFile(filepath.Join(src.Root, "proc/cpuinfo"), []byte(cpuinfo), 0o644); err != nil {
		t.Fatal(err)
	}
	fs := Gather(src, excludeForTest)
	if fs.CPU.Model != "Implementer 0xff, Part 0xffff" {
		t.Errorf("model = %q", fs.CPU.Model)
	}
}

func TestGather_StatfsFailureSkipsOnlyThatMount(t *testing.T) {
	src := healthySources(t)
	inner := src.Statfs
	src.Statfs = func(path string, st *unix.Statfs_t) error {
		if path == "/data" {
			return os.ErrPermission
		}
		return inner(path, st)
	}
	fs := Gather(src, excludeForTest)
	for _, d := range fs.Disks {
		if d.MountPoint == "/data" {
			t.Error("/data should have been skipped")
		}
	}
	if len(fs.Disks) != 2 {
		t.Errorf("disks = %+v", fs.Disks)
	}
}

func TestDiskPercent_ZeroTotal(t *testing.T) {
	d := Disk{Used: 0, Total: 0}
	if got := d.Percent(); got != 0 {
		t.Errorf("percent = %v, want 0", got)
	}
}

func TestBytePercent(t *testing.T) {
	u := ByteUsage{Used: 50, Total: 200}
	if got := u.Percent(); got != 25 {
		t.Errorf("percent = %v, want 25", got)
	}
	if got := (ByteUsage{}).Percent(); got != 0 {
		t.Errorf("zero-total percent = %v, want 0", got)
	}
}
