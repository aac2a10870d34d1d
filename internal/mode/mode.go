// Package mode maps profiles and charge limits onto the platform's control
// endpoints.
//
// Failure policy per write:
//   - resolving or opening an endpoint: returned to the caller
//   - writing an opened fan, boost or charge-limit file: logged, the
//     operation continues
//   - native pstate setters: returned, remaining setters are skipped
//
// An Applier has no locks. Callers must serialize operations on the same
// store and hardware.
package mode

import (
	"context"
	"time"

	"codeberg.org/mutker/rogctl/internal/config"
	"codeberg.org/mutker/rogctl/internal/errors"
	"codeberg.org/mutker/rogctl/internal/history"
	"codeberg.org/mutker/rogctl/internal/logger"
	"codeberg.org/mutker/rogctl/internal/platform"
	"codeberg.org/mutker/rogctl/internal/profile"
)

const (
	MinChargeLimit uint8 = 20
	MaxChargeLimit uint8 = 100

	recordTimeout = 2 * time.Second
)

type Applier struct {
	platform platform.Platform
	recorder history.Recorder
}

type Option func(*Applier)

// WithRecorder reports every applied change to r.
func WithRecorder(r history.Recorder) Option {
	return func(a *Applier) {
		a.recorder = r
	}
}

func New(p platform.Platform, opts ...Option) *Applier {
	a := &Applier{
		platform: p,
		recorder: history.Noop(),
	}
	for _, opt := range opts {
		opt(a)
	}

	return a
}

// ApplyCurrentProfile re-applies the profile already held by store.
func (a *Applier) ApplyCurrentProfile(store *config.Store) error {
	errFactory := errors.New()

	fan, err := a.platform.FanControl()
	if err != nil {
		return errFactory.Wrap(ErrApplyProfile, err)
	}
	defer fan.Close()

	p := store.Profile()
	a.writeFan(fan, p)

	mechanism, err := a.applyCPUPower(p, store)
	if err != nil {
		return errFactory.Wrap(ErrApplyProfile, err)
	}

	logger.Info().Str("profile", p.String()).Msg("Reloaded fan mode")
	a.record(history.ActionProfileApplied, p, fan.Path(), mechanism, store.BatChargeLimit)

	return nil
}

// SetProfile stores n as the fan mode, persists it and applies it. The
// store is untouched when the fan endpoint cannot be resolved or opened.
func (a *Applier) SetProfile(n uint8, store *config.Store) error {
	errFactory := errors.New()

	fan, err := a.platform.FanControl()
	if err != nil {
		return errFactory.Wrap(ErrSetProfile, err)
	}
	defer fan.Close()

	store.FanMode = n
	persist(store)

	p := profile.Decode(n)
	a.writeFan(fan, p)
	logger.Info().Str("profile", p.String()).Msg("Fan mode set")

	mechanism, err := a.applyCPUPower(p, store)
	if err != nil {
		return errFactory.Wrap(ErrSetProfile, err)
	}

	a.record(history.ActionProfileSet, p, fan.Path(), mechanism, store.BatChargeLimit)

	return nil
}

// StepProfile reloads the store and advances to the next profile. A stored
// code past Silent steps back to Normal.
func (a *Applier) StepProfile(store *config.Store) error {
	reload(store)

	return a.SetProfile(profile.Profile(store.FanMode).Next().Encode(), store)
}

// SetChargeLimit writes limit to the battery endpoint and stores it.
// Values outside 20-100 are logged and still applied.
func (a *Applier) SetChargeLimit(limit uint8, store *config.Store) error {
	if limit < MinChargeLimit || limit > MaxChargeLimit {
		logger.Warn().
			Uint8("requested", limit).
			Msgf("Battery charge limit should be between %d-%d", MinChargeLimit, MaxChargeLimit)
	}

	charge, err := a.platform.ChargeControl()
	if err != nil {
		return errors.New().Wrap(ErrSetChargeLimit, err)
	}
	defer charge.Close()

	if err := charge.WriteLimit(limit); err != nil {
		logger.Error().Err(err).Str("path", charge.Path()).Msg("Could not write battery charge limit")
	}
	logger.Info().Uint8("limit", limit).Msg("Battery charge limit set")

	store.BatChargeLimit = limit
	persist(store)

	a.record(history.ActionChargeLimitSet, store.Profile(), "", "", limit)

	return nil
}

// ReloadChargeLimit reloads the store and re-applies its charge limit.
func (a *Applier) ReloadChargeLimit(store *config.Store) error {
	reload(store)
	logger.Debug().Uint8("limit", store.BatChargeLimit).Msg("Reloading battery charge limit")

	return a.SetChargeLimit(store.BatChargeLimit, store)
}

func (a *Applier) writeFan(fan platform.FanControl, p profile.Profile) {
	if err := fan.WriteProfile(p); err != nil {
		logger.Error().Err(err).Str("path", fan.Path()).Msg("Could not write fan mode")
	}
}

// applyCPUPower is the CPU power step shared by the profile operations.
func (a *Applier) applyCPUPower(p profile.Profile, store *config.Store) (platform.Mechanism, error) {
	errFactory := errors.New()

	power, err := a.platform.CPUPower()
	if err != nil {
		return "", errFactory.Wrap(ErrCPUPower, err)
	}
	defer power.Close()

	logger.Debug().
		Str("mechanism", string(power.Mechanism())).
		Str("profile", p.String()).
		Msg("Applying CPU power settings")

	if err := bestEffort(power.Apply(store.Performance(p))); err != nil {
		return "", errFactory.Wrap(ErrCPUPower, err)
	}

	return power.Mechanism(), nil
}

func (a *Applier) record(action history.Action, p profile.Profile, fanPath string, mechanism platform.Mechanism, limit uint8) {
	entry := history.NewEntry(action)
	entry.Profile = p
	entry.FanPath = fanPath
	entry.Mechanism = string(mechanism)
	entry.ChargeLimit = limit

	ctx, cancel := context.WithTimeout(context.Background(), recordTimeout)
	defer cancel()

	if err := a.recorder.Record(ctx, entry); err != nil {
		logger.Warn().Err(err).Str("action", string(action)).Msg("Failed to record history")
	}
}

// bestEffort logs and swallows a failed write to an opened boost file.
// Rejected pstate settings and every other error are returned unchanged.
func bestEffort(err error) error {
	if err == nil || !errors.HasCode(err, platform.ErrControlWrite) {
		return err
	}

	var coded errors.Error
	if errors.As(err, &coded) {
		logger.Error().Err(err).Interface("endpoint", coded.GetData()).Msg("Could not write CPU boost")
	}

	return nil
}

func persist(store *config.Store) {
	if err := store.Write(); err != nil {
		logger.Error().Err(err).Str("path", store.Path()).Msg("Could not persist state")
	}
}

func reload(store *config.Store) {
	if err := store.Read(); err != nil {
		logger.Warn().Err(err).Str("path", store.Path()).Msg("Could not reload state, using values in memory")
	}
}
