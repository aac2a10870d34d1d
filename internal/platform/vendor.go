package platform

import "github.com/klauspost/cpuid/v2"

// CPUInfo describes the host CPU. It is informational only: the power
// mechanism is always chosen by probing.
type CPUInfo struct {
	Vendor   string
	Brand    string
	Cores    int
	Intel    bool
	AMD      bool
	MaxClock int64
}

func DetectCPU() CPUInfo {
	return CPUInfo{
		Vendor:   cpuid.CPU.VendorString,
		Brand:    cpuid.CPU.BrandName,
		Cores:    cpuid.CPU.PhysicalCores,
		Intel:    cpuid.CPU.VendorID == cpuid.Intel,
		AMD:      cpuid.CPU.VendorID == cpuid.AMD,
		MaxClock: cpuid.CPU.BoostFreq,
	}
}
