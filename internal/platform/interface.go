// Package platform discovers which kernel control endpoints exist on this
// machine and wraps each variant behind a common interface.
package platform

import (
	"codeberg.org/mutker/rogctl/internal/config"
	"codeberg.org/mutker/rogctl/internal/profile"
)

// Kernel control endpoints. These strings are the platform contract.
const (
	ThrottleThermalPolicyPath = "/sys/devices/platform/asus-nb-wmi/throttle_thermal_policy"
	FanBoostModePath          = "/sys/devices/platform/asus-nb-wmi/fan_boost_mode"
	PStateDir                 = "/sys/devices/system/cpu/intel_pstate"
	CPUBoostPath              = "/sys/devices/system/cpu/cpufreq/boost"
	ChargeLimitPath           = "/sys/class/power_supply/BAT0/charge_control_end_threshold"
)

// Mechanism names the CPU power interface in use.
type Mechanism string

const (
	MechanismPState Mechanism = "intel_pstate"
	MechanismBoost  Mechanism = "cpufreq_boost"
)

// Platform resolves the control endpoints present on this machine.
// Every call probes again; nothing is cached.
type Platform interface {
	FanControl() (FanControl, error)
	CPUPower() (CPUPower, error)
	ChargeControl() (ChargeControl, error)
}

// FanControl is an opened fan-mode endpoint.
type FanControl interface {
	Path() string
	// WriteProfile writes the profile encoding. Failures carry
	// ErrControlWrite.
	WriteProfile(p profile.Profile) error
	Close() error
}

// CPUPower applies per-profile performance parameters.
type CPUPower interface {
	Mechanism() Mechanism
	Apply(perf config.Performance) error
	Close() error
}

// PState is the native performance-state interface. Each setter fails
// independently.
type PState interface {
	SetMinPerfPct(pct uint8) error
	SetMaxPerfPct(pct uint8) error
	SetNoTurbo(noTurbo bool) error
}

// ChargeControl is an opened battery charge-limit endpoint.
type ChargeControl interface {
	Path() string
	WriteLimit(limit uint8) error
	Close() error
}
