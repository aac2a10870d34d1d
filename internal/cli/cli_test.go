package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"codeberg.org/mutker/rogctl/internal/config"
	"codeberg.org/mutker/rogctl/internal/errors"
	"codeberg.org/mutker/rogctl/internal/platform"
	"codeberg.org/mutker/rogctl/internal/platform/platformtest"
	"codeberg.org/mutker/rogctl/internal/profile"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const statePath = "/etc/rogctl/state.toml"

type fakeRunner struct {
	output  string
	started [][]string
}

func (f *fakeRunner) Start(name string, args ...string) error {
	f.started = append(f.started, append([]string{name}, args...))
	return nil
}

func (f *fakeRunner) Output(string, ...string) ([]byte, error) {
	return []byte(f.output), nil
}

type harness struct {
	sysfs   *platformtest.Sysfs
	stateFs afero.Fs
	runner  *fakeRunner
	out     bytes.Buffer
	logs    bytes.Buffer
}

func newHarness() *harness {
	return &harness{
		sysfs: platformtest.NewSysfs().
			Add(platform.FanBoostModePath, "0\n").
			Add(platform.CPUBoostPath, "1").
			Add(platform.ChargeLimitPath, "100"),
		stateFs: afero.NewMemMapFs(),
		runner:  &fakeRunner{},
	}
}

func (h *harness) run(t *testing.T, args ...string) error {
	t.Helper()
	cfg := filepath.Join(t.TempDir(), "rogctl.toml")
	require.NoError(t, os.WriteFile(cfg, nil, 0o644))
	t.Setenv("ROGCTL_CONFIG", cfg)

	h.out.Reset()
	root, a := newRootCommand(env{
		sysfs:   h.sysfs,
		stateFs: h.stateFs,
		runner:  h.runner,
		out:     &h.out,
		logs:    &h.logs,
	})
	defer a.close()

	root.SetArgs(append([]string{"--state-file", statePath}, args...))
	root.SetOut(&h.out)
	root.SetErr(&h.out)

	return root.Execute()
}

func (h *harness) state(t *testing.T) config.State {
	t.Helper()

	store := config.NewStore(h.stateFs, statePath)
	require.NoError(t, store.Read())

	return store.State
}

func TestProfileSet(t *testing.T) {
	h := newHarness()

	require.NoError(t, h.run(t, "profile", "set", "SILENT"))
	assert.Equal(t, "2\n", h.sysfs.Read(platform.FanBoostModePath))
	assert.Equal(t, "0", h.sysfs.Read(platform.CPUBoostPath))
	assert.Equal(t, uint8(profile.Silent), h.state(t).FanMode)

	require.NoError(t, h.run(t, "profile", "get"))
	assert.Equal(t, "silent\n", h.out.String())
}

func TestProfileSetRejectsUnknownName(t *testing.T) {
	h := newHarness()

	err := h.run(t, "profile", "set", "turbo")
	require.Error(t, err)
	assert.ErrorIs(t, err, profile.ErrParseProfile)
	assert.Equal(t, "0\n", h.sysfs.Read(platform.FanBoostModePath))
}

func TestProfileNext(t *testing.T) {
	h := newHarness()

	require.NoError(t, h.run(t, "profile", "next"))
	assert.Equal(t, "boost\n", h.out.String())
	require.NoError(t, h.run(t, "profile", "next"))
	assert.Equal(t, "silent\n", h.out.String())
	require.NoError(t, h.run(t, "profile", "next"))
	assert.Equal(t, "normal\n", h.out.String())
}

func TestProfileApplyWithoutFanControl(t *testing.T) {
	h := newHarness()
	h.sysfs = platformtest.NewSysfs().Add(platform.CPUBoostPath, "1")

	err := h.run(t, "profile", "apply")
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, platform.ErrFanUnavailable))
}

func TestChargeLimit(t *testing.T) {
	h := newHarness()

	require.NoError(t, h.run(t, "charge-limit", "set", "80"))
	assert.Equal(t, "80", h.sysfs.Read(platform.ChargeLimitPath))
	assert.Equal(t, uint8(80), h.state(t).BatChargeLimit)

	require.NoError(t, h.run(t, "charge-limit"))
	assert.Equal(t, "80%\n", h.out.String())

	require.NoError(t, afero.WriteFile(h.sysfs, platform.ChargeLimitPath, []byte("100"), 0o644))
	require.NoError(t, h.run(t, "charge-limit", "reload"))
	assert.Equal(t, "80", h.sysfs.Read(platform.ChargeLimitPath))
}

func TestChargeLimitRejectsNonByte(t *testing.T) {
	h := newHarness()

	for _, arg := range []string{"256", "-1", "full"} {
		require.Error(t, h.run(t, "charge-limit", "set", arg), arg)
	}
	assert.Equal(t, "100", h.sysfs.Read(platform.ChargeLimitPath))
}

func TestPowerActions(t *testing.T) {
	h := newHarness()
	h.runner.output = "1: phy0: Wireless LAN\n\tSoft blocked: yes\n"

	require.NoError(t, h.run(t, "suspend"))
	require.NoError(t, h.run(t, "airplane"))

	assert.Equal(t, [][]string{
		{"systemctl", "suspend"},
		{"rfkill", "unblock", "all"},
	}, h.runner.started)
}

func TestStatus(t *testing.T) {
	h := newHarness()
	require.NoError(t, h.run(t, "status"))

	out := h.out.String()
	assert.Contains(t, out, platform.FanBoostModePath)
	assert.Contains(t, out, string(platform.MechanismBoost))
	assert.Contains(t, out, platform.ChargeLimitPath)
	assert.Contains(t, out, "normal")
}

func TestHistory(t *testing.T) {
	h := newHarness()
	db := filepath.Join(t.TempDir(), "history.db")

	require.NoError(t, h.run(t, "history"))
	assert.Contains(t, h.out.String(), "History is disabled")

	require.NoError(t, h.run(t, "--history", "--history-db", db, "history"))
	assert.Contains(t, h.out.String(), "No changes recorded")

	require.NoError(t, h.run(t, "--history", "--history-db", db, "profile", "set", "boost"))
	require.NoError(t, h.run(t, "--history", "--history-db", db, "history"))
	assert.Contains(t, h.out.String(), "profile_set")
	assert.Contains(t, h.out.String(), "boost")
}

func TestInvalidLogLevel(t *testing.T) {
	h := newHarness()

	err := h.run(t, "--log-level", "loud", "profile")
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrInvalidLogLevel))
}

func TestEmptyHistoryPathFallsBackToDefault(t *testing.T) {
	h := newHarness()

	require.NoError(t, h.run(t, "--history-db=", "profile"))
	assert.Equal(t, "normal\n", h.out.String())
}
