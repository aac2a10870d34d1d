package config

import (
	"strings"

	"codeberg.org/mutker/rogctl/internal/errors"
	"github.com/spf13/viper"
)

// Settings holds the application settings. Hardware state lives in Store.
type Settings struct {
	LogLevel  string          `mapstructure:"log_level"`
	StateFile string          `mapstructure:"state_file"`
	PIDFile   string          `mapstructure:"pid_file"`
	History   HistorySettings `mapstructure:"history"`
	DBus      DBusSettings    `mapstructure:"dbus"`
}

type HistorySettings struct {
	Enabled bool   `mapstructure:"enabled"`
	DBPath  string `mapstructure:"db_path"`
}

type DBusSettings struct {
	Enabled bool `mapstructure:"enabled"`
}

// flag name -> settings key
var flagKeys = map[string]string{
	"log-level":  "log_level",
	"state-file": "state_file",
	"pid-file":   "pid_file",
	"history":    "history.enabled",
	"history-db": "history.db_path",
	"dbus":       "dbus.enabled",
}

// Load reads settings from defaults, the config file, the environment and
// flags, in increasing order of precedence.
func Load(opts ...Option) (*Settings, error) {
	errFactory := errors.New()

	o := defaultOptions()
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, errFactory.Wrap(errors.ErrInvalidConfig, err)
		}
	}

	v := viper.New()
	setDefaults(v)

	v.SetConfigType("toml")
	if o.configPath != "" {
		v.SetConfigFile(o.configPath)
	} else {
		v.SetConfigName(DefaultConfigName)
		v.AddConfigPath(DefaultConfigDir)
	}

	v.SetEnvPrefix(o.envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if o.flags != nil {
		for name, key := range flagKeys {
			f := o.flags.Lookup(name)
			if f == nil {
				continue
			}
			if err := v.BindPFlag(key, f); err != nil {
				return nil, errFactory.Wrap(errors.ErrBindFlags, err)
			}
		}
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, errFactory.Wrap(errors.ErrReadConfig, err)
		}
	}

	settings := &Settings{}
	if err := v.Unmarshal(settings); err != nil {
		return nil, errFactory.Wrap(errors.ErrInvalidConfig, err)
	}

	if err := settings.Validate(); err != nil {
		return nil, err
	}

	return settings, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log_level", DefaultLogLevel)
	v.SetDefault("state_file", DefaultStateFile)
	v.SetDefault("pid_file", DefaultPIDFile)
	v.SetDefault("history.enabled", false)
	v.SetDefault("history.db_path", DefaultHistoryDB)
	v.SetDefault("dbus.enabled", true)
}

// Validate checks the loaded settings
func (s *Settings) Validate() error {
	errFactory := errors.New()

	if !LogLevel(strings.ToLower(s.LogLevel)).IsValid() {
		return errFactory.WithData(errors.ErrInvalidLogLevel, s.LogLevel)
	}
	if s.StateFile == "" {
		return errFactory.WithMessage(errors.ErrInvalidConfig, "state_file must not be empty")
	}
	if s.History.Enabled && s.History.DBPath == "" {
		return errFactory.WithMessage(errors.ErrInvalidConfig, "history.db_path must not be empty")
	}

	return nil
}
