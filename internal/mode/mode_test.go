package mode_test

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"codeberg.org/mutker/rogctl/internal/config"
	"codeberg.org/mutker/rogctl/internal/errors"
	"codeberg.org/mutker/rogctl/internal/history"
	"codeberg.org/mutker/rogctl/internal/logger"
	"codeberg.org/mutker/rogctl/internal/mode"
	"codeberg.org/mutker/rogctl/internal/platform"
	"codeberg.org/mutker/rogctl/internal/platform/platformtest"
	"codeberg.org/mutker/rogctl/internal/profile"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const statePath = "/etc/rogctl/state.toml"

// nativePlatform serves real sysfs endpoints but a fake pstate interface.
type nativePlatform struct {
	*platform.Prober
	pstate platform.PState
}

func (n nativePlatform) CPUPower() (platform.CPUPower, error) {
	return platform.NewNativePower(n.pstate), nil
}

type recorder struct {
	entries []*history.Entry
}

func (r *recorder) Record(_ context.Context, entry *history.Entry) error {
	r.entries = append(r.entries, entry)
	return nil
}

func (r *recorder) Close() error {
	return nil
}

func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()

	var buf bytes.Buffer
	logger.SetOutput(&buf)
	logger.SetLogLevel(logger.DebugLevel)

	return &buf
}

func newStore() (*config.Store, afero.Fs) {
	fs := afero.NewMemMapFs()
	return config.NewStore(fs, statePath), fs
}

func TestApplyCurrentProfile(t *testing.T) {
	sysfs := platformtest.NewSysfs().
		Add(platform.FanBoostModePath, "0\n").
		Add(platform.CPUBoostPath, "1")
	store, _ := newStore()
	store.FanMode = uint8(profile.Silent)

	require.NoError(t, mode.New(platform.NewProber(sysfs)).ApplyCurrentProfile(store))

	assert.Equal(t, "2\n", sysfs.Read(platform.FanBoostModePath))
	assert.Equal(t, "0", sysfs.Read(platform.CPUBoostPath), "silent disables turbo")
}

func TestApplyCurrentProfileOutOfRangeWritesNormal(t *testing.T) {
	sysfs := platformtest.NewSysfs().
		Add(platform.ThrottleThermalPolicyPath, "").
		Add(platform.CPUBoostPath, "")
	store, _ := newStore()
	store.FanMode = 9

	require.NoError(t, mode.New(platform.NewProber(sysfs)).ApplyCurrentProfile(store))

	assert.Equal(t, "0\n", sysfs.Read(platform.ThrottleThermalPolicyPath))
	assert.Equal(t, uint8(9), store.FanMode, "apply must not rewrite the store")
}

func TestFanUnavailableLeavesStoreUntouched(t *testing.T) {
	sysfs := platformtest.NewSysfs().Add(platform.CPUBoostPath, "")
	store, fs := newStore()
	applier := mode.New(platform.NewProber(sysfs))

	err := applier.ApplyCurrentProfile(store)
	require.Error(t, err)
	assert.True(t, platform.IsFeatureAbsent(err))

	err = applier.SetProfile(uint8(profile.Boost), store)
	require.Error(t, err)
	assert.True(t, platform.IsFeatureAbsent(err))
	assert.True(t, errors.HasCode(err, mode.ErrSetProfile))

	assert.Equal(t, config.DefaultState(), store.State)
	exists, err := afero.Exists(fs, statePath)
	require.NoError(t, err)
	assert.False(t, exists, "state must not be persisted")
	assert.Equal(t, "", sysfs.Read(platform.CPUBoostPath), "CPU step must not run")
}

func TestSetProfileFanOpenFailure(t *testing.T) {
	sysfs := platformtest.NewSysfs().
		Add(platform.ThrottleThermalPolicyPath, "").
		FailOpens(platform.ThrottleThermalPolicyPath).
		Add(platform.CPUBoostPath, "")
	store, _ := newStore()

	err := mode.New(platform.NewProber(sysfs)).SetProfile(1, store)
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, platform.ErrControlOpen))
	assert.Equal(t, uint8(0), store.FanMode)
}

func TestSetProfilePersistsAndApplies(t *testing.T) {
	sysfs := platformtest.NewSysfs().
		Add(platform.ThrottleThermalPolicyPath, "0\n").
		Add(platform.CPUBoostPath, "0")
	store, fs := newStore()
	rec := &recorder{}

	require.NoError(t, mode.New(platform.NewProber(sysfs), mode.WithRecorder(rec)).SetProfile(uint8(profile.Boost), store))

	assert.Equal(t, "1\n", sysfs.Read(platform.ThrottleThermalPolicyPath))
	assert.Equal(t, "1", sysfs.Read(platform.CPUBoostPath), "boost keeps turbo enabled")

	persisted := config.NewStore(fs, statePath)
	require.NoError(t, persisted.Read())
	assert.Equal(t, profile.Boost, persisted.Profile())

	require.Len(t, rec.entries, 1)
	assert.Equal(t, history.ActionProfileSet, rec.entries[0].Action)
	assert.Equal(t, profile.Boost, rec.entries[0].Profile)
	assert.Equal(t, platform.ThrottleThermalPolicyPath, rec.entries[0].FanPath)
	assert.Equal(t, string(platform.MechanismBoost), rec.entries[0].Mechanism)
}

func TestSetProfileNativePState(t *testing.T) {
	sysfs := platformtest.NewSysfs().Add(platform.FanBoostModePath, "")
	pstate := &platformtest.FakePState{}
	store, _ := newStore()

	applier := mode.New(nativePlatform{Prober: platform.NewProber(sysfs), pstate: pstate})
	require.NoError(t, applier.SetProfile(uint8(profile.Silent), store))

	silent := store.Performance(profile.Silent)
	assert.Equal(t, []platformtest.PStateCall{
		{Setting: "min_perf_pct", Value: silent.MinPercentage},
		{Setting: "max_perf_pct", Value: silent.MaxPercentage},
		{Setting: "no_turbo", Value: true},
	}, pstate.Calls, "native interface takes no_turbo as stored")
}

func TestSetProfilePStateRejectionAborts(t *testing.T) {
	sysfs := platformtest.NewSysfs().Add(platform.FanBoostModePath, "")
	pstate := &platformtest.FakePState{FailOn: "max_perf_pct"}
	store, _ := newStore()
	rec := &recorder{}

	applier := mode.New(nativePlatform{Prober: platform.NewProber(sysfs), pstate: pstate}, mode.WithRecorder(rec))
	err := applier.SetProfile(uint8(profile.Boost), store)

	require.Error(t, err)
	assert.True(t, errors.HasCode(err, platform.ErrPStateRejected))
	assert.Equal(t, []string{"min_perf_pct", "max_perf_pct"}, pstate.Settings())
	assert.Equal(t, "1\n", sysfs.Read(platform.FanBoostModePath), "fan is written before the CPU step")
	assert.Empty(t, rec.entries)
}

func TestSetProfileBoostInversion(t *testing.T) {
	tests := []struct {
		name    string
		noTurbo bool
		want    string
	}{
		{"no_turbo true", true, "0"},
		{"no_turbo false", false, "1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sysfs := platformtest.NewSysfs().
				Add(platform.FanBoostModePath, "").
				Add(platform.CPUBoostPath, "")
			store, _ := newStore()
			store.ModePerformance.Normal.NoTurbo = tt.noTurbo

			require.NoError(t, mode.New(platform.NewProber(sysfs)).SetProfile(uint8(profile.Normal), store))
			assert.Equal(t, tt.want, sysfs.Read(platform.CPUBoostPath))
		})
	}
}

func TestFanWriteFailureIsLogged(t *testing.T) {
	logs := captureLogs(t)
	sysfs := platformtest.NewSysfs().
		Add(platform.ThrottleThermalPolicyPath, "").
		FailWrites(platform.ThrottleThermalPolicyPath).
		Add(platform.CPUBoostPath, "")
	store, _ := newStore()

	require.NoError(t, mode.New(platform.NewProber(sysfs)).SetProfile(uint8(profile.Silent), store))

	assert.Contains(t, logs.String(), "Could not write fan mode")
	assert.Equal(t, "0", sysfs.Read(platform.CPUBoostPath), "CPU step still runs")
	assert.Equal(t, uint8(profile.Silent), store.FanMode)
}

func TestBoostWriteFailureIsLogged(t *testing.T) {
	logs := captureLogs(t)
	sysfs := platformtest.NewSysfs().
		Add(platform.ThrottleThermalPolicyPath, "").
		Add(platform.CPUBoostPath, "").
		FailWrites(platform.CPUBoostPath)
	store, _ := newStore()

	require.NoError(t, mode.New(platform.NewProber(sysfs)).ApplyCurrentProfile(store))
	assert.Contains(t, logs.String(), "Could not write CPU boost")
}

func TestBoostOpenFailureIsReturned(t *testing.T) {
	sysfs := platformtest.NewSysfs().
		Add(platform.ThrottleThermalPolicyPath, "").
		Add(platform.CPUBoostPath, "").
		FailOpens(platform.CPUBoostPath)
	store, _ := newStore()

	err := mode.New(platform.NewProber(sysfs)).ApplyCurrentProfile(store)
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, platform.ErrControlOpen))
	assert.True(t, errors.HasCode(err, mode.ErrCPUPower))
}

func TestCPUPowerUnavailable(t *testing.T) {
	sysfs := platformtest.NewSysfs().Add(platform.ThrottleThermalPolicyPath, "")
	store, _ := newStore()

	err := mode.New(platform.NewProber(sysfs)).ApplyCurrentProfile(store)
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, platform.ErrCPUPowerUnavailable))
}

func TestSetProfilePersistFailureIsLogged(t *testing.T) {
	logs := captureLogs(t)
	sysfs := platformtest.NewSysfs().
		Add(platform.ThrottleThermalPolicyPath, "").
		Add(platform.CPUBoostPath, "")
	store := config.NewStore(afero.NewReadOnlyFs(afero.NewMemMapFs()), statePath)

	require.NoError(t, mode.New(platform.NewProber(sysfs)).SetProfile(uint8(profile.Boost), store))
	assert.Contains(t, logs.String(), "Could not persist state")
	assert.Equal(t, "1\n", sysfs.Read(platform.ThrottleThermalPolicyPath))
}

func TestStepProfileReloadsStore(t *testing.T) {
	sysfs := platformtest.NewSysfs().
		Add(platform.FanBoostModePath, "").
		Add(platform.CPUBoostPath, "")
	store, fs := newStore()

	// Edited out of band while the in-memory copy still says normal.
	require.NoError(t, afero.WriteFile(fs, statePath, []byte("fan_mode = 1\n"), 0o644))

	require.NoError(t, mode.New(platform.NewProber(sysfs)).StepProfile(store))

	assert.Equal(t, profile.Silent, store.Profile())
	assert.Equal(t, "2\n", sysfs.Read(platform.FanBoostModePath))
}

func TestStepProfileCycle(t *testing.T) {
	sysfs := platformtest.NewSysfs().
		Add(platform.FanBoostModePath, "").
		Add(platform.CPUBoostPath, "")
	store, _ := newStore()
	applier := mode.New(platform.NewProber(sysfs))

	want := []profile.Profile{profile.Boost, profile.Silent, profile.Normal}
	for _, w := range want {
		require.NoError(t, applier.StepProfile(store))
		assert.Equal(t, w, store.Profile())
	}
}

func TestStepProfileFromOutOfRange(t *testing.T) {
	sysfs := platformtest.NewSysfs().
		Add(platform.FanBoostModePath, "").
		Add(platform.CPUBoostPath, "")
	store, fs := newStore()
	require.NoError(t, afero.WriteFile(fs, statePath, []byte("fan_mode = 7\n"), 0o644))

	require.NoError(t, mode.New(platform.NewProber(sysfs)).StepProfile(store))
	assert.Equal(t, uint8(profile.Normal), store.FanMode)
	assert.Equal(t, "0\n", sysfs.Read(platform.FanBoostModePath))

	require.NoError(t, mode.New(platform.NewProber(sysfs)).StepProfile(store))
	assert.Equal(t, uint8(profile.Boost), store.FanMode, "stepping resumes from normal")
}

func TestSetChargeLimit(t *testing.T) {
	sysfs := platformtest.NewSysfs().Add(platform.ChargeLimitPath, "100")
	store, fs := newStore()
	rec := &recorder{}

	require.NoError(t, mode.New(platform.NewProber(sysfs), mode.WithRecorder(rec)).SetChargeLimit(60, store))

	assert.Equal(t, "60", sysfs.Read(platform.ChargeLimitPath))
	assert.Equal(t, uint8(60), store.BatChargeLimit)

	persisted := config.NewStore(fs, statePath)
	require.NoError(t, persisted.Read())
	assert.Equal(t, uint8(60), persisted.BatChargeLimit)

	require.Len(t, rec.entries, 1)
	assert.Equal(t, history.ActionChargeLimitSet, rec.entries[0].Action)
	assert.Equal(t, uint8(60), rec.entries[0].ChargeLimit)
}

func TestSetChargeLimitOutOfRangeWarnsAndApplies(t *testing.T) {
	logs := captureLogs(t)
	sysfs := platformtest.NewSysfs().Add(platform.ChargeLimitPath, "100")
	store, _ := newStore()

	require.NoError(t, mode.New(platform.NewProber(sysfs)).SetChargeLimit(10, store))

	assert.Contains(t, logs.String(), "should be between 20-100")
	assert.Equal(t, "10", sysfs.Read(platform.ChargeLimitPath))
	assert.Equal(t, uint8(10), store.BatChargeLimit)
}

func TestSetChargeLimitUnavailable(t *testing.T) {
	store, _ := newStore()

	err := mode.New(platform.NewProber(platformtest.NewSysfs())).SetChargeLimit(80, store)
	require.Error(t, err)
	assert.True(t, platform.IsFeatureAbsent(err))
	assert.Equal(t, config.DefaultChargeLimit, store.BatChargeLimit)
}

func TestSetChargeLimitWriteFailureIsLogged(t *testing.T) {
	logs := captureLogs(t)
	sysfs := platformtest.NewSysfs().
		Add(platform.ChargeLimitPath, "100").
		FailWrites(platform.ChargeLimitPath)
	store, _ := newStore()

	require.NoError(t, mode.New(platform.NewProber(sysfs)).SetChargeLimit(80, store))
	assert.Contains(t, logs.String(), "Could not write battery charge limit")
	assert.Equal(t, uint8(80), store.BatChargeLimit)
}

func TestReloadChargeLimit(t *testing.T) {
	sysfs := platformtest.NewSysfs().Add(platform.ChargeLimitPath, "100")
	store, fs := newStore()
	require.NoError(t, afero.WriteFile(fs, statePath, []byte("bat_charge_limit = 75\n"), 0o644))

	require.NoError(t, mode.New(platform.NewProber(sysfs)).ReloadChargeLimit(store))
	assert.Equal(t, "75", sysfs.Read(platform.ChargeLimitPath))
}

func TestHistoryServiceIntegration(t *testing.T) {
	svc, err := history.NewService(history.Config{
		DBPath:  filepath.Join(t.TempDir(), "history.db"),
		Enabled: true,
	}, logger.Default())
	require.NoError(t, err)
	defer svc.Close()

	sysfs := platformtest.NewSysfs().
		Add(platform.ThrottleThermalPolicyPath, "").
		Add(platform.CPUBoostPath, "")
	store, _ := newStore()
	applier := mode.New(platform.NewProber(sysfs), mode.WithRecorder(svc))

	require.NoError(t, applier.ApplyCurrentProfile(store))
	require.NoError(t, applier.StepProfile(store))

	entries, err := svc.List(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, history.ActionProfileSet, entries[0].Action)
	assert.Equal(t, profile.Boost, entries[0].Profile)
	assert.Equal(t, history.ActionProfileApplied, entries[1].Action)
}
