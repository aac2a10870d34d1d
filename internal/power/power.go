// Package power implements advisory system actions: suspend and the
// wireless radio toggle. Failures are logged and never returned.
package power

import (
	"strings"

	"codeberg.org/mutker/rogctl/internal/logger"
)

const (
	systemctlCommand = "systemctl"
	rfkillCommand    = "rfkill"

	// softBlocked marks a soft-blocked device in `rfkill list` output.
	softBlocked = ": yes"
)

type Actions struct {
	runner Runner
}

func New(runner Runner) *Actions {
	if runner == nil {
		runner = ExecRunner{}
	}

	return &Actions{runner: runner}
}

// Suspend asks systemd to suspend the machine. This works without a
// desktop session, including from a TTY.
func (a *Actions) Suspend() {
	if err := a.runner.Start(systemctlCommand, "suspend"); err != nil {
		logger.Warn().Err(err).Msg("Failed to suspend")
		return
	}
	logger.Info().Msg("Suspend requested")
}

// ToggleAirplaneMode unblocks all radios when any is soft-blocked and
// blocks all of them otherwise. Nothing happens when the current state
// cannot be listed. The state may change between listing and acting.
func (a *Actions) ToggleAirplaneMode() {
	out, err := a.runner.Output(rfkillCommand, "list")
	if err != nil {
		logger.Warn().Err(err).Msg("Could not list rf devices")
		return
	}

	if strings.Contains(string(out), softBlocked) {
		if err := a.runner.Start(rfkillCommand, "unblock", "all"); err != nil {
			logger.Warn().Err(err).Msg("Could not unblock rf devices")
			return
		}
		logger.Info().Msg("Airplane mode off")
		return
	}

	if err := a.runner.Start(rfkillCommand, "block", "all"); err != nil {
		logger.Warn().Err(err).Msg("Could not block rf devices")
		return
	}
	logger.Info().Msg("Airplane mode on")
}
