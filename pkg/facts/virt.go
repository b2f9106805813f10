package facts

import "strings"

// Virtualization labels produced by the classifier.
const (
	BareMetal   = "bare-metal"
	VirtUnknown = "unknown"
)

// Signals are the raw inputs to the virtualization classifier. Absent
// signals stay zero-valued.
type Signals struct {
	// CPUVendor is the cpuinfo vendor_id (hypervisors expose synthetic
	// vendor strings such as "KVMKVMKVM").
	CPUVendor string
	// CPUFlags from cpuinfo; the "hypervisor" bit marks a guest.
	CPUFlags []string
	// DMIVendor and DMIProduct come from /sys/class/dmi/id.
	DMIVendor  string
	DMIProduct string
	// Container is the marker from /run/systemd/container or the
	// /.dockerenv sentinel file.
	Container string
}

type virtRule struct {
	label string
	match func(Signals) bool
}

func hasFlag(sig Signals, flag string) bool {
	for _, f := range sig.CPUFlags {
		if f == flag {
			return true
		}
	}
	return false
}

func dmiContains(sig Signals, needle string) bool {
	needle = strings.ToLower(needle)
	return strings.Contains(strings.ToLower(sig.DMIVendor), needle) ||
		strings.Contains(strings.ToLower(sig.DMIProduct), needle)
}

// virtRules is evaluated in order; the first match wins. Container markers
// precede hypervisor signatures, and specific signatures precede the generic
// hypervisor-flag catch-all.
var virtRules = []virtRule{
	{"Docker container", func(s Signals) bool { return s.Container == "docker" }},
	{"Podman container", func(s Signals) bool { return s.Container == "podman" }},
	{"LXC container", func(s Signals) bool { return s.Container == "lxc" || s.Container == "lxc-libvirt" }},
	{"systemd-nspawn container", func(s Signals) bool { return s.Container == "systemd-nspawn" }},
	{"container", func(s Signals) bool { return s.Container != "" }},
	{"KVM", func(s Signals) bool { return s.CPUVendor == "KVMKVMKVM" }},
	{"QEMU", func(s Signals) bool { return s.CPUVendor == "TCGTCGTCGTCG" }},
	{"VMware", func(s Signals) bool { return s.CPUVendor == "VMwareVMware" }},
	{"VirtualBox", func(s Signals) bool { return s.CPUVendor == "VBoxVBoxVBox" }},
	{"Microsoft Hyper-V", func(s Signals) bool { return s.CPUVendor == "Microsoft Hv" }},
	{"Xen", func(s Signals) bool { return s.CPUVendor == "XenVMMXenVMM" }},
	{"Parallels", func(s Signals) bool { return strings.Contains(s.CPUVendor, "prl hyperv") }},
	{"Amazon EC2", func(s Signals) bool { return dmiContains(s, "amazon ec2") }},
	{"OpenStack Nova", func(s Signals) bool { return dmiContains(s, "openstack nova") }},
	{"KVM", func(s Signals) bool { return dmiContains(s, "kvm") }},
	{"QEMU", func(s Signals) bool { return dmiContains(s, "qemu") }},
	{"VMware", func(s Signals) bool { return dmiContains(s, "vmware") }},
	{"VirtualBox", func(s Signals) bool { return dmiContains(s, "virtualbox") || dmiContains(s, "innotek") }},
	{"Microsoft Hyper-V", func(s Signals) bool {
		return strings.Contains(strings.ToLower(s.DMIVendor), "microsoft") &&
			strings.Contains(strings.ToLower(s.DMIProduct), "virtual machine")
	}},
	{"Xen", func(s Signals) bool { return dmiContains(s, "xen") }},
	{"Parallels", func(s Signals) bool { return dmiContains(s, "parallels") }},
	{"virtual machine", func(s Signals) bool { return hasFlag(s, "hypervisor") }},
}

// ClassifyVirtualization maps raw signals to exactly one label. It is total:
// no input combination fails, and no match means bare metal.
func ClassifyVirtualization(sig Signals) string {
	for _, rule := range virtRules {
		if rule.match(sig) {
			return rule.label
		}
	}
	return BareMetal
}
