package power

import (
	"os/exec"

	"codeberg.org/mutker/rogctl/internal/logger"
)

// Runner starts external commands.
type Runner interface {
	// Start spawns the command without waiting for it.
	Start(name string, args ...string) error
	// Output runs the command and returns its stdout. A non-zero exit is
	// an error.
	Output(name string, args ...string) ([]byte, error)
}

// ExecRunner runs commands with os/exec.
type ExecRunner struct{}

func (ExecRunner) Start(name string, args ...string) error {
	cmd := exec.Command(name, args...)
	if err := cmd.Start(); err != nil {
		return err
	}

	// Reap in the background; the result is never observed.
	go func() {
		if err := cmd.Wait(); err != nil {
			logger.Debug().Err(err).Str("command", cmd.String()).Msg("Spawned command exited with error")
		}
	}()

	return nil
}

func (ExecRunner) Output(name string, args ...string) ([]byte, error) {
	return exec.Command(name, args...).Output()
}
