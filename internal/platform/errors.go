package platform

import "codeberg.org/mutker/rogctl/internal/errors"

const (
	// Feature-absent errors
	ErrFanUnavailable      = errors.ErrorCode("platform_fan_unavailable")
	ErrCPUPowerUnavailable = errors.ErrorCode("platform_cpu_power_unavailable")
	ErrChargeUnavailable   = errors.ErrorCode("platform_charge_limit_unavailable")

	// Endpoint I/O errors
	ErrControlOpen  = errors.ErrorCode("platform_control_open_failed")
	ErrControlWrite = errors.ErrorCode("platform_control_write_failed")

	// Native pstate errors
	ErrPStateRejected = errors.ErrorCode("platform_pstate_rejected")
)

func init() {
	errors.RegisterMessage(ErrFanUnavailable, "Fan mode not available")
	errors.RegisterMessage(ErrCPUPowerUnavailable, "CPU power control not available")
	errors.RegisterMessage(ErrChargeUnavailable, "Battery charge limit not available")
	errors.RegisterMessage(ErrControlOpen, "Failed to open control file")
	errors.RegisterMessage(ErrControlWrite, "Failed to write control file")
	errors.RegisterMessage(ErrPStateRejected, "CPU performance state rejected value")
}

// IsFeatureAbsent reports whether err means the hardware lacks the feature.
func IsFeatureAbsent(err error) bool {
	return errors.HasCode(err, ErrFanUnavailable) ||
		errors.HasCode(err, ErrCPUPowerUnavailable) ||
		errors.HasCode(err, ErrChargeUnavailable)
}

// controlError is the data attached to endpoint errors.
type controlError struct {
	Path  string
	Error string
}
