package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alejandrodnm/pingpong/internal/domain"
)

func writeYAML(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func balanced() domain.StrategyConfig {
	return domain.StrategyConfig{QuoteSize: 3, TickOffset: 2, MaxInv: 10, CancelThreshold: 2, CooldownUs: 5000}
}

func TestLoad_EmptyPathUsesDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	rc := cfg.RunConfig(balanced())
	assert.Equal(t, domain.DefaultRunConfig(balanced()), rc)
	assert.Equal(t, "balanced", cfg.Strategy.Profile)
	assert.Equal(t, 1, cfg.Runner.Seeds)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Empty(t, cfg.Trace.DSN)
}

func TestLoad_ShippedFile(t *testing.T) {
	cfg, err := Load("config.yaml")
	require.NoError(t, err)

	require.NoError(t, cfg.RunConfig(balanced()).Validate())
	ts, err := cfg.TickSize()
	require.NoError(t, err)
	assert.True(t, ts.Equal(decimal.RequireFromString("0.01")))
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	path := writeYAML(t, `
simulation:
  ending_timestamp_us: 500000
  start_fill_prob: 0
strategy:
  profile: passive
  cooldown_us: 0
  max_inv: 7
metrics:
  marking_method: last
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	rc := cfg.RunConfig(balanced())
	assert.Equal(t, int64(500_000), rc.Sim.EndUs)
	assert.Equal(t, int64(100), rc.Sim.StepUs, "default")
	assert.Zero(t, rc.Sim.StartFillProb, "un cero explícito se respeta")
	assert.Equal(t, "passive", cfg.Strategy.Profile)
	assert.Equal(t, int64(0), rc.Strategy.CooldownUs)
	assert.Equal(t, int64(7), rc.Strategy.MaxInv)
	assert.Equal(t, int64(3), rc.Strategy.QuoteSize, "sin override conserva el perfil")
	assert.Equal(t, domain.MarkLast, rc.Metrics.Marking)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "json")
	t.Setenv("PINGPONG_SEED", "18446744073709551615")
	t.Setenv("PINGPONG_TRACE_DSN", "trace.db")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, uint64(18446744073709551615), cfg.Simulation.Seed)
	assert.Equal(t, "trace.db", cfg.Trace.DSN)
}

func TestLoad_Errors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
		assert.Error(t, err)
	})
	t.Run("bad yaml", func(t *testing.T) {
		_, err := Load(writeYAML(t, "simulation: [1, 2"))
		assert.Error(t, err)
	})
	t.Run("bad seed", func(t *testing.T) {
		t.Setenv("PINGPONG_SEED", "-1")
		_, err := Load("")
		assert.Error(t, err)
	})
	t.Run("bad tick size", func(t *testing.T) {
		_, err := Load(writeYAML(t, "metrics:\n  tick_size: abc\n"))
		assert.Error(t, err)
	})
	t.Run("negative tick size", func(t *testing.T) {
		_, err := Load(writeYAML(t, "metrics:\n  tick_size: \"-0.5\"\n"))
		assert.ErrorIs(t, err, domain.ErrInvalidConfig)
	})
}

func TestRunConfig_InvalidValuesReachValidation(t *testing.T) {
	cfg, err := Load(writeYAML(t, "simulation:\n  step_us: 0\n"))
	require.NoError(t, err)

	err = cfg.RunConfig(balanced()).Validate()
	assert.ErrorIs(t, err, domain.ErrInvalidConfig)
}
