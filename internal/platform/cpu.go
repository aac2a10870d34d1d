package platform

import (
	"os"
	"path/filepath"
	"strconv"

	"codeberg.org/mutker/rogctl/internal/config"
	"codeberg.org/mutker/rogctl/internal/errors"
	"codeberg.org/mutker/rogctl/internal/logger"
	"github.com/spf13/afero"
)

// NativePower applies parameters through the native pstate interface.
// Any rejected setting aborts the remaining ones.
type NativePower struct {
	pstate PState
}

func NewNativePower(pstate PState) *NativePower {
	return &NativePower{pstate: pstate}
}

func (*NativePower) Mechanism() Mechanism {
	return MechanismPState
}

// pstateSetting is attached to ErrPStateRejected errors.
type pstateSetting struct {
	Setting string
	Value   any
	Error   string
}

func (n *NativePower) Apply(perf config.Performance) error {
	errFactory := errors.New()

	if err := n.pstate.SetMinPerfPct(perf.MinPercentage); err != nil {
		return errFactory.Wrap(ErrPStateRejected, err).
			WithData(pstateSetting{"min_perf_pct", perf.MinPercentage, err.Error()})
	}
	if err := n.pstate.SetMaxPerfPct(perf.MaxPercentage); err != nil {
		return errFactory.Wrap(ErrPStateRejected, err).
			WithData(pstateSetting{"max_perf_pct", perf.MaxPercentage, err.Error()})
	}
	if err := n.pstate.SetNoTurbo(perf.NoTurbo); err != nil {
		return errFactory.Wrap(ErrPStateRejected, err).
			WithData(pstateSetting{"no_turbo", perf.NoTurbo, err.Error()})
	}

	logger.Info().
		Uint8("min_percentage", perf.MinPercentage).
		Uint8("max_percentage", perf.MaxPercentage).
		Bool("turbo", !perf.NoTurbo).
		Msg("Intel CPU power applied")

	return nil
}

func (*NativePower) Close() error {
	return nil
}

// BoostPower toggles turbo through the cpufreq boost file. Its value is
// the inverse of no_turbo.
type BoostPower struct {
	file afero.File
	path string
}

func NewBoostPower(file afero.File, path string) *BoostPower {
	return &BoostPower{file: file, path: path}
}

func (*BoostPower) Mechanism() Mechanism {
	return MechanismBoost
}

// BoostValue returns the boost file value for the given no_turbo flag.
func BoostValue(noTurbo bool) string {
	if noTurbo {
		return "0"
	}

	return "1"
}

func (b *BoostPower) Apply(perf config.Performance) error {
	value := BoostValue(perf.NoTurbo)
	if err := writeControl(b.file, b.path, value); err != nil {
		return err
	}
	logger.Info().Str("boost", value).Msg("AMD CPU turbo applied")

	return nil
}

func (b *BoostPower) Close() error {
	return b.file.Close()
}

// sysfsPState writes the intel_pstate attribute files.
type sysfsPState struct {
	fs  afero.Fs
	dir string
}

func (p *sysfsPState) SetMinPerfPct(pct uint8) error {
	return p.write("min_perf_pct", strconv.Itoa(int(pct)))
}

func (p *sysfsPState) SetMaxPerfPct(pct uint8) error {
	return p.write("max_perf_pct", strconv.Itoa(int(pct)))
}

func (p *sysfsPState) SetNoTurbo(noTurbo bool) error {
	value := "0"
	if noTurbo {
		value = "1"
	}

	return p.write("no_turbo", value)
}

func (p *sysfsPState) write(name, value string) error {
	path := filepath.Join(p.dir, name)

	f, err := p.fs.OpenFile(path, os.O_WRONLY|os.O_TRUNC, 0)
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = f.WriteString(value)

	return err
}
