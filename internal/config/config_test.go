package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/raykavin/volguard/pkg/core"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {

	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, [4]float64{12, 15, 25, 35}, cfg.Settings.Regime.Thresholds)
	require.Equal(t, [5]float64{1, 1, 0.8, 0.5, 0.3}, cfg.Settings.Regime.Multipliers)
	require.Equal(t, 40.0, cfg.Settings.Regime.MaxIndex)
	require.Equal(t, "PERCENTAGE", cfg.Settings.Trailing.Mode)
	require.Equal(t, 2.0, cfg.Settings.Trailing.Amount)
	require.Equal(t, 14, cfg.Settings.Trailing.ATRPeriod)
	require.Empty(t, cfg.JournalPath)
}

func TestLoad_FileAndEnv(t *testing.T) {
	dir := t.TempDir()

	path := filepath.Join(dir, "volguard.yaml")
	content := `
regime:
  thresholds: [12, 15, 25, 39]
  max_index: 45
trailing:
  mode: atr
  amount: 2.5
  scaling: inverse
log:
  level: debug
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	t.Setenv("VOLGUARD_TRAILING_AMOUNT", "3")
	t.Setenv("VOLGUARD_REGIME_MULTIPLIERS", "1, 0.9, 0.7, 0.4, 0.2")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, [4]float64{12, 15, 25, 39}, cfg.Settings.Regime.Thresholds)
	require.Equal(t, [5]float64{1, 0.9, 0.7, 0.4, 0.2}, cfg.Settings.Regime.Multipliers)
	require.Equal(t, 45.0, cfg.Settings.Regime.MaxIndex)
	require.Equal(t, "atr", cfg.Settings.Trailing.Mode)
	require.Equal(t, 3.0, cfg.Settings.Trailing.Amount)
	require.Equal(t, "inverse", cfg.Settings.Trailing.Scaling)
	require.Equal(t, "debug", cfg.LogLevel)
}

func TestLoad_Invalid(t *testing.T) {
	dir := t.TempDir()

	path := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("regime:\n  thresholds: [15, 12, 25, 35]\n"), 0o600))
	_, err := Load(path)
	require.ErrorIs(t, err, core.ErrInvalidThresholds)

	require.NoError(t, os.WriteFile(path, []byte("regime:\n  multipliers: [1, 1]\n"), 0o600))
	_, err = Load(path)
	require.ErrorIs(t, err, core.ErrInvalidMultipliers)

	require.NoError(t, os.WriteFile(path, []byte("trailing:\n  mode: fibonacci\n"), 0o600))
	_, err = Load(path)
	require.ErrorIs(t, err, core.ErrInvalidTrailMode)
}
