package config

import (
	"os"

	"github.com/spf13/pflag"
)

const (
	DefaultEnvPrefix  = "ROGCTL"
	DefaultConfigDir  = "/etc/rogctl"
	DefaultConfigName = "rogctl"
	DefaultLogLevel   = "info"
	DefaultStateFile  = "/etc/rogctl/state.toml"
	DefaultPIDFile    = "/run/rogctl.pid"
	DefaultHistoryDB  = "/var/lib/rogctl/history.db"
)

// Option defines a configuration option that can be passed to Load
type Option func(*options) error

// options holds internal configuration options
type options struct {
	configPath string
	envPrefix  string
	flags      *pflag.FlagSet
}

func defaultOptions() *options {
	return &options{
		configPath: os.Getenv(DefaultEnvPrefix + "_CONFIG"),
		envPrefix:  DefaultEnvPrefix,
	}
}

// WithConfigFile specifies an explicit configuration file path
func WithConfigFile(path string) Option {
	return func(o *options) error {
		if path != "" {
			o.configPath = path
		}
		return nil
	}
}

// WithEnvPrefix specifies a custom environment variable prefix
// Default is "ROGCTL"
func WithEnvPrefix(prefix string) Option {
	return func(o *options) error {
		o.envPrefix = prefix
		return nil
	}
}

// WithFlags binds command line flags so they take precedence over the file
func WithFlags(flags *pflag.FlagSet) Option {
	return func(o *options) error {
		o.flags = flags
		return nil
	}
}

// LogLevel represents valid logging levels
type LogLevel string

const (
	LogLevelDebug   LogLevel = "debug"
	LogLevelInfo    LogLevel = "info"
	LogLevelWarning LogLevel = "warning"
	LogLevelError   LogLevel = "error"
)

// IsValid returns whether the log level is valid
func (l LogLevel) IsValid() bool {
	switch l {
	case LogLevelDebug, LogLevelInfo, LogLevelWarning, LogLevelError:
		return true
	default:
		return false
	}
}

// String implements the Stringer interface
func (l LogLevel) String() string {
	return string(l)
}
