// Package cli implements the rogctl command-line interface using Cobra.
package cli

import (
	"fmt"
	"io"
	"os"

	"codeberg.org/mutker/rogctl/internal/config"
	"codeberg.org/mutker/rogctl/internal/history"
	"codeberg.org/mutker/rogctl/internal/logger"
	"codeberg.org/mutker/rogctl/internal/mode"
	"codeberg.org/mutker/rogctl/internal/platform"
	"codeberg.org/mutker/rogctl/internal/power"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

// env holds the outside world a command runs against.
type env struct {
	sysfs   afero.Fs
	stateFs afero.Fs
	runner  power.Runner
	out     io.Writer
	// logs replaces the console logger when set
	logs io.Writer
}

// app is built once flags are parsed and shared by all subcommands.
type app struct {
	env        env
	configPath string

	settings *config.Settings
	store    *config.Store
	prober   *platform.Prober
	history  history.Service
	applier  *mode.Applier
	actions  *power.Actions
}

func newRootCommand(e env) (*cobra.Command, *app) {
	a := &app{env: e}

	root := &cobra.Command{
		Use:   "rogctl",
		Short: "Control fan profiles, CPU power and battery charge limit",
		Long: `rogctl selects between the normal, boost and silent operating profiles
of ASUS laptops, applies the matching CPU power limits and sets the battery
charge limit.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.open(cmd)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&a.configPath, "config", "c", "", "config file (default /etc/rogctl/rogctl.toml)")
	flags.String("log-level", config.DefaultLogLevel, "log level (debug, info, warning, error)")
	flags.String("state-file", config.DefaultStateFile, "persisted state file")
	flags.String("pid-file", config.DefaultPIDFile, "daemon PID file")
	flags.Bool("history", false, "record applied changes")
	flags.String("history-db", config.DefaultHistoryDB, "history database path")
	flags.Bool("dbus", true, "serve the D-Bus interface in daemon mode")

	root.AddCommand(
		newProfileCommand(a),
		newChargeLimitCommand(a),
		newSuspendCommand(a),
		newAirplaneCommand(a),
		newStatusCommand(a),
		newHistoryCommand(a),
		newDaemonCommand(a),
	)

	return root, a
}

func (a *app) open(cmd *cobra.Command) error {
	settings, err := config.Load(
		config.WithConfigFile(a.configPath),
		config.WithFlags(cmd.Flags()),
	)
	if err != nil {
		return err
	}
	a.settings = settings

	level, err := logger.ParseLevel(settings.LogLevel)
	if err != nil {
		return err
	}
	logger.Init(level, logger.IsService())
	if a.env.logs != nil {
		logger.SetOutput(a.env.logs)
		logger.SetLogLevel(level)
	}
	logger.Debug().Str("state_file", settings.StateFile).Msg("Config loaded")

	a.store = config.NewStore(a.env.stateFs, settings.StateFile)
	if err := a.store.Read(); err != nil {
		logger.Warn().Err(err).Str("path", settings.StateFile).Msg("Could not read state, using defaults")
	}

	historyCfg := history.DefaultConfig()
	historyCfg.Enabled = settings.History.Enabled
	if settings.History.DBPath != "" {
		historyCfg.DBPath = settings.History.DBPath
	}
	a.history, err = history.NewService(historyCfg, logger.Default())
	if err != nil {
		return err
	}

	a.prober = platform.NewProber(a.env.sysfs)
	a.applier = mode.New(a.prober, mode.WithRecorder(a.history))
	a.actions = power.New(a.env.runner)

	return nil
}

func (a *app) close() {
	if a.history == nil {
		return
	}
	if err := a.history.Close(); err != nil {
		logger.Warn().Err(err).Msg("Failed to close history")
	}
}

// Execute runs the root command against the real system. Called from
// main.go.
func Execute(version string) {
	root, a := newRootCommand(env{
		sysfs:   afero.NewOsFs(),
		stateFs: afero.NewOsFs(),
		runner:  power.ExecRunner{},
		out:     os.Stdout,
	})
	root.Version = version

	err := root.Execute()
	a.close()

	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
