// Package daemon runs rogctl as a long-lived service: it re-applies the
// persisted state at boot, follows edits to the state file and serves the
// operations on the D-Bus system bus.
package daemon

import (
	"context"

	"codeberg.org/mutker/rogctl/internal/config"
	"codeberg.org/mutker/rogctl/internal/errors"
	"codeberg.org/mutker/rogctl/internal/logger"
	sddaemon "github.com/coreos/go-systemd/v22/daemon"
	"github.com/godbus/dbus/v5"
)

type Daemon struct {
	settings *config.Settings
	ctl      *Controller
	store    *config.Store
}

func New(settings *config.Settings, ctl *Controller, store *config.Store) *Daemon {
	return &Daemon{
		settings: settings,
		ctl:      ctl,
		store:    store,
	}
}

// Run blocks until ctx is done. Only a PID conflict is fatal; a missing
// bus or watcher degrades the daemon to boot-time re-apply.
func (d *Daemon) Run(ctx context.Context) error {
	if err := WritePID(d.settings.PIDFile); err != nil {
		return err
	}
	defer func() {
		if err := RemovePID(d.settings.PIDFile); err != nil {
			logger.Warn().Err(err).Msg("Failed to remove PID file")
		}
	}()

	d.ctl.Boot()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if w, err := Watch(d.store.Path(), d.ctl.StateChanged); err != nil {
		logFailure(err, "State file changes will not be followed")
	} else {
		defer w.Close()
		go func() {
			if err := w.Run(ctx); err != nil {
				logFailure(err, "State file watcher stopped")
			}
		}()
	}

	if d.settings.DBus.Enabled {
		bus, err := connectBus()
		if err != nil {
			logFailure(err, "D-Bus service disabled")
		} else {
			defer bus.Close()
			if err := Publish(bus, NewService(d.ctl)); err != nil {
				logFailure(err, "D-Bus service disabled")
			}
		}
	}

	notify(sddaemon.SdNotifyReady)
	logger.Info().Msg("Daemon started")

	<-ctx.Done()

	notify(sddaemon.SdNotifyStopping)
	logger.Info().Msg("Exiting...")

	return nil
}

func connectBus() (*dbus.Conn, error) {
	bus, err := dbus.ConnectSystemBus()
	if err != nil {
		return nil, errors.New().Wrap(ErrDBusConnect, err)
	}

	return bus, nil
}

// notify reports to systemd when running as a Type=notify unit.
func notify(state string) {
	sent, err := sddaemon.SdNotify(false, state)
	if err != nil {
		logger.Warn().Err(err).Str("state", state).Msg("Failed to notify systemd")
		return
	}
	if !sent {
		logger.Debug().Str("state", state).Msg("No notify socket")
	}
}
