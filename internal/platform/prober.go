package platform

import (
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"codeberg.org/mutker/rogctl/internal/errors"
	"codeberg.org/mutker/rogctl/internal/logger"
	"github.com/spf13/afero"
)

// fanVariants lists the fan-mode endpoints in priority order.
var fanVariants = []string{
	ThrottleThermalPolicyPath,
	FanBoostModePath,
}

// Prober implements Platform on top of a filesystem.
type Prober struct {
	fs afero.Fs
}

var _ Platform = (*Prober)(nil)

func NewProber(fs afero.Fs) *Prober {
	return &Prober{fs: fs}
}

// NewSysfsProber probes the real /sys tree.
func NewSysfsProber() *Prober {
	return NewProber(afero.NewOsFs())
}

// FanPath returns the first fan-mode endpoint that exists.
func (p *Prober) FanPath() (string, error) {
	for _, path := range fanVariants {
		if p.exists(path) {
			return path, nil
		}
	}

	return "", errors.New().Wrap(ErrFanUnavailable, fs.ErrNotExist)
}

// FanControl resolves and opens the fan-mode endpoint.
func (p *Prober) FanControl() (FanControl, error) {
	path, err := p.FanPath()
	if err != nil {
		return nil, err
	}

	f, err := p.openControl(path)
	if err != nil {
		return nil, err
	}
	logger.Debug().Str("path", path).Msg("Resolved fan control")

	return &sysfsFan{file: f, path: path}, nil
}

// HasNativePState reports whether the native performance-state
// interface is present.
func (p *Prober) HasNativePState() bool {
	ok, err := afero.DirExists(p.fs, PStateDir)
	return err == nil && ok
}

// HasBoost reports whether the fallback boost toggle is present.
func (p *Prober) HasBoost() bool {
	return p.exists(CPUBoostPath)
}

// HasChargeControl reports whether the battery charge-limit endpoint is
// present.
func (p *Prober) HasChargeControl() bool {
	return p.exists(ChargeLimitPath)
}

// PState acquires the native performance-state interface.
func (p *Prober) PState() (PState, bool) {
	if !p.HasNativePState() {
		return nil, false
	}

	return &sysfsPState{fs: p.fs, dir: PStateDir}, true
}

// CPUPower selects the native interface when present and otherwise opens
// the boost toggle.
func (p *Prober) CPUPower() (CPUPower, error) {
	if pstate, ok := p.PState(); ok {
		return NewNativePower(pstate), nil
	}

	if !p.HasBoost() {
		return nil, errors.New().Wrap(ErrCPUPowerUnavailable, fs.ErrNotExist)
	}

	f, err := p.openControl(CPUBoostPath)
	if err != nil {
		return nil, err
	}

	return NewBoostPower(f, CPUBoostPath), nil
}

// ChargeControl opens the battery charge-limit endpoint.
func (p *Prober) ChargeControl() (ChargeControl, error) {
	if !p.HasChargeControl() {
		return nil, errors.New().Wrap(ErrChargeUnavailable, fs.ErrNotExist)
	}

	f, err := p.openControl(ChargeLimitPath)
	if err != nil {
		return nil, err
	}

	return &sysfsCharge{file: f, path: ChargeLimitPath}, nil
}

func (p *Prober) exists(path string) bool {
	ok, err := afero.Exists(p.fs, path)
	return err == nil && ok
}

// openControl opens an existing endpoint for writing. sysfs attributes
// cannot be created, so O_CREATE is never passed.
func (p *Prober) openControl(path string) (afero.File, error) {
	f, err := p.fs.OpenFile(filepath.Clean(path), os.O_WRONLY|os.O_TRUNC, 0)
	if err != nil {
		logger.Warn().Err(err).Str("path", path).Msg("Failed to open control file")
		return nil, errors.New().Wrap(ErrControlOpen, err).WithData(controlError{
			Path:  path,
			Error: err.Error(),
		})
	}

	return f, nil
}

func writeControl(w io.Writer, path, value string) error {
	if _, err := io.WriteString(w, value); err != nil {
		return errors.New().Wrap(ErrControlWrite, err).WithData(controlError{
			Path:  path,
			Error: err.Error(),
		})
	}

	return nil
}
