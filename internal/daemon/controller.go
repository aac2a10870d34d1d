package daemon

import (
	"sync"

	"codeberg.org/mutker/rogctl/internal/config"
	"codeberg.org/mutker/rogctl/internal/errors"
	"codeberg.org/mutker/rogctl/internal/logger"
	"codeberg.org/mutker/rogctl/internal/mode"
	"codeberg.org/mutker/rogctl/internal/power"
	"codeberg.org/mutker/rogctl/internal/profile"
)

// Controller serializes every operation on the hardware and the state
// store. D-Bus calls and state-file events may arrive concurrently.
type Controller struct {
	mu      sync.Mutex
	applier *mode.Applier
	store   *config.Store
	actions *power.Actions

	// applied is the state as of the last operation, used to ignore
	// watcher events caused by our own writes.
	applied config.State
}

func NewController(applier *mode.Applier, store *config.Store, actions *power.Actions) *Controller {
	return &Controller{
		applier: applier,
		store:   store,
		actions: actions,
		applied: store.State,
	}
}

// Boot re-applies the persisted profile and charge limit. Failures are
// logged and do not stop the other step.
func (c *Controller) Boot() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.store.Read(); err != nil {
		logger.Warn().Err(err).Str("path", c.store.Path()).Msg("Could not read state, using defaults")
	}

	logFailure(c.applier.ApplyCurrentProfile(c.store), "Failed to apply profile at boot")
	logFailure(c.applier.ReloadChargeLimit(c.store), "Failed to apply battery charge limit at boot")

	c.applied = c.store.State
}

func (c *Controller) SetProfile(n uint8) error {
	return c.locked(func() error {
		return c.applier.SetProfile(n, c.store)
	})
}

func (c *Controller) NextProfile() error {
	return c.locked(func() error {
		return c.applier.StepProfile(c.store)
	})
}

func (c *Controller) ApplyProfile() error {
	return c.locked(func() error {
		return c.applier.ApplyCurrentProfile(c.store)
	})
}

func (c *Controller) SetChargeLimit(limit uint8) error {
	return c.locked(func() error {
		return c.applier.SetChargeLimit(limit, c.store)
	})
}

func (c *Controller) Profile() profile.Profile {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.store.Profile()
}

func (c *Controller) ChargeLimit() uint8 {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.store.BatChargeLimit
}

func (c *Controller) Suspend() {
	c.actions.Suspend()
}

func (c *Controller) ToggleAirplaneMode() {
	c.actions.ToggleAirplaneMode()
}

// StateChanged reloads the state file after an out-of-band edit and
// applies whatever differs from the last applied state.
func (c *Controller) StateChanged() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.store.Read(); err != nil {
		logger.Warn().Err(err).Str("path", c.store.Path()).Msg("Ignoring unreadable state file")
		return
	}

	if c.store.State == c.applied {
		return
	}

	logger.Info().Str("path", c.store.Path()).Msg("State file changed, re-applying")

	prev := c.applied
	if c.store.FanMode != prev.FanMode || c.store.ModePerformance != prev.ModePerformance {
		logFailure(c.applier.ApplyCurrentProfile(c.store), "Failed to apply edited profile")
	}
	if c.store.BatChargeLimit != prev.BatChargeLimit {
		logFailure(c.applier.SetChargeLimit(c.store.BatChargeLimit, c.store), "Failed to apply edited battery charge limit")
	}

	c.applied = c.store.State
}

func (c *Controller) locked(op func() error) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	err := op()
	c.applied = c.store.State

	return err
}

func logFailure(err error, msg string) {
	if err == nil {
		return
	}

	var coded errors.Error
	if errors.As(err, &coded) {
		logger.ErrorWithCode(coded).Msg(msg)
		return
	}
	logger.Error().Err(err).Msg(msg)
}
