package facts

import "fmt"

// ArmCPUID identifies an ARM core by the MIDR implementer and part fields
// exposed in /proc/cpuinfo.
type ArmCPUID struct {
	Implementer uint8
	Part        uint16
}

// ArmCPUModel is a resolved vendor/model pair.
type ArmCPUModel struct {
	Vendor string
	Model  string
}

// ArmCatalog maps known (implementer, part) pairs to vendor/model names.
// Exact-match only; unknown pairs fall back to a hex label in LookupArmCPU.
var ArmCatalog = map[ArmCPUID]ArmCPUModel{
	{0x41, 0xd03}: {"ARM", "Cortex-A53"},
	{0x41, 0xd04}: {"ARM", "Cortex-A35"},
	{0x41, 0xd05}: {"ARM", "Cortex-A55"},
	{0x41, 0xd07}: {"ARM", "Cortex-A57"},
	{0x41, 0xd08}: {"ARM", "Cortex-A72"},
	{0x41, 0xd09}: {"ARM", "Cortex-A73"},
	{0x41, 0xd0a}: {"ARM", "Cortex-A75"},
	{0x41, 0xd0b}: {"ARM", "Cortex-A76"},
	{0x41, 0xd0c}: {"ARM", "Neoverse-N1"},
	{0x41, 0xd0d}: {"ARM", "Cortex-A77"},
	{0x41, 0xd40}: {"ARM", "Neoverse-V1"},
	{0x41, 0xd41}: {"ARM", "Cortex-A78"},
	{0x41, 0xd44}: {"ARM", "Cortex-X1"},
	{0x41, 0xd46}: {"ARM", "Cortex-A510"},
	{0x41, 0xd47}: {"ARM", "Cortex-A710"},
	{0x41, 0xd48}: {"ARM", "Cortex-X2"},
	{0x41, 0xd49}: {"ARM", "Neoverse-N2"},
	{0x42, 0x100}: {"Broadcom", "Brahma-B53"},
	{0x43, 0x0a1}: {"Cavium", "ThunderX"},
	{0x43, 0x0af}: {"Cavium", "ThunderX2"},
	{0x46, 0x001}: {"Fujitsu", "A64FX"},
	{0x4e, 0x004}: {"Nvidia", "Carmel"},
	{0x50, 0x000}: {"APM", "X-Gene"},
	{0x51, 0x800}: {"Qualcomm", "Kryo-2xx Gold"},
	{0x51, 0x801}: {"Qualcomm", "Kryo-2xx Silver"},
	{0x51, 0xc00}: {"Qualcomm", "Falkor"},
	{0x61, 0x022}: {"Apple", "M1 Icestorm"},
	{0x61, 0x023}: {"Apple", "M1 Firestorm"},
	{0xc0, 0xac3}: {"Ampere", "Ampere-1"},
}

// LookupArmCPU resolves an ARM core to "Vendor Model". A pair absent from
// the catalog yields a label carrying both raw hex codes; lookup never fails.
func LookupArmCPU(implementer uint8, part uint16) string {
	if m, ok := ArmCatalog[ArmCPUID{implementer, part}]; ok {
		return m.Vendor + " " + m.Model
	}
	return fmt.Sprintf("Implementer 0x%02x, Part 0x%04x", implementer, part)
}
