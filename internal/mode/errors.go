package mode

import "codeberg.org/mutker/rogctl/internal/errors"

const (
	ErrApplyProfile   = errors.ErrorCode("mode_apply_profile_failed")
	ErrSetProfile     = errors.ErrorCode("mode_set_profile_failed")
	ErrCPUPower       = errors.ErrorCode("mode_cpu_power_failed")
	ErrSetChargeLimit = errors.ErrorCode("mode_set_charge_limit_failed")
)

func init() {
	errors.RegisterMessage(ErrApplyProfile, "Failed to apply profile")
	errors.RegisterMessage(ErrSetProfile, "Failed to set profile")
	errors.RegisterMessage(ErrCPUPower, "Failed to apply CPU power settings")
	errors.RegisterMessage(ErrSetChargeLimit, "Failed to set battery charge limit")
}
