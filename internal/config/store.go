package config

import (
	"bytes"
	"os"
	"path/filepath"

	"codeberg.org/mutker/rogctl/internal/errors"
	"codeberg.org/mutker/rogctl/internal/profile"
	"github.com/BurntSushi/toml"
	"github.com/spf13/afero"
)

const (
	defaultDirPerm  = 0o755
	defaultFilePerm = 0o644

	DefaultChargeLimit uint8 = 100
)

// Performance holds the CPU limits applied for one profile.
type Performance struct {
	MinPercentage uint8 `toml:"min_percentage"`
	MaxPercentage uint8 `toml:"max_percentage"`
	NoTurbo       bool  `toml:"no_turbo"`
}

type ModePerformance struct {
	Normal Performance `toml:"normal"`
	Boost  Performance `toml:"boost"`
	Silent Performance `toml:"silent"`
}

// For returns the parameters of the given profile.
func (m ModePerformance) For(p profile.Profile) Performance {
	switch p {
	case profile.Boost:
		return m.Boost
	case profile.Silent:
		return m.Silent
	default:
		return m.Normal
	}
}

// State is the persisted hardware state.
type State struct {
	FanMode         uint8           `toml:"fan_mode"`
	BatChargeLimit  uint8           `toml:"bat_charge_limit"`
	ModePerformance ModePerformance `toml:"mode_performance"`
}

// DefaultState returns the state used before anything was persisted.
func DefaultState() State {
	return State{
		FanMode:        uint8(profile.Normal),
		BatChargeLimit: DefaultChargeLimit,
		ModePerformance: ModePerformance{
			Normal: Performance{MinPercentage: 0, MaxPercentage: 100, NoTurbo: false},
			Boost:  Performance{MinPercentage: 50, MaxPercentage: 100, NoTurbo: false},
			Silent: Performance{MinPercentage: 0, MaxPercentage: 70, NoTurbo: true},
		},
	}
}

// Store is the persisted state file. It is not safe for concurrent use.
type Store struct {
	State

	fs   afero.Fs
	path string
}

func NewStore(fs afero.Fs, path string) *Store {
	return &Store{
		State: DefaultState(),
		fs:    fs,
		path:  path,
	}
}

// OpenStore creates a store on the OS filesystem and reads it.
func OpenStore(path string) (*Store, error) {
	s := NewStore(afero.NewOsFs(), path)
	if err := s.Read(); err != nil {
		return nil, err
	}

	return s, nil
}

func (s *Store) Path() string {
	return s.path
}

// Profile returns the stored fan mode as a profile.
func (s *Store) Profile() profile.Profile {
	return profile.Decode(s.FanMode)
}

// Performance returns the stored parameters for p.
func (s *Store) Performance(p profile.Profile) Performance {
	return s.ModePerformance.For(p)
}

// Read reloads the state from disk. A missing file leaves the current
// values in place. Keys absent from the file take their default.
func (s *Store) Read() error {
	errFactory := errors.New()

	data, err := afero.ReadFile(s.fs, s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return errFactory.Wrap(errors.ErrReadState, err)
	}

	state := DefaultState()
	if _, err := toml.Decode(string(data), &state); err != nil {
		return errFactory.Wrap(errors.ErrReadState, err)
	}
	s.State = state

	return nil
}

// Write persists the current state.
func (s *Store) Write() error {
	errFactory := errors.New()

	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(s.State); err != nil {
		return errFactory.Wrap(errors.ErrWriteState, err)
	}

	if err := s.fs.MkdirAll(filepath.Dir(s.path), defaultDirPerm); err != nil {
		return errFactory.Wrap(errors.ErrWriteState, err)
	}

	tmp := s.path + ".tmp"
	if err := afero.WriteFile(s.fs, tmp, buf.Bytes(), defaultFilePerm); err != nil {
		return errFactory.Wrap(errors.ErrWriteState, err)
	}

	if err := s.fs.Rename(tmp, s.path); err != nil {
		return errFactory.Wrap(errors.ErrWriteState, err)
	}

	return nil
}
