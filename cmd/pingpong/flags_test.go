package main

import (
	"flag"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alejandrodnm/pingpong/internal/domain"
)

func parse(t *testing.T, args ...string) *overrides {
	t.Helper()
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	o := registerOverrides(fs)
	require.NoError(t, fs.Parse(args))
	o.collect(fs)
	return o
}

func baseConfig() domain.RunConfig {
	return domain.DefaultRunConfig(domain.StrategyConfig{QuoteSize: 3, TickOffset: 2, MaxInv: 10, CancelThreshold: 2, CooldownUs: 5000})
}

func TestOverrides_NoFlagsKeepConfig(t *testing.T) {
	o := parse(t)
	rc := baseConfig()
	o.apply(&rc)

	assert.Equal(t, baseConfig(), rc)
	assert.False(t, o.strategyChanged())
}

func TestOverrides_ExplicitZeroIsApplied(t *testing.T) {
	o := parse(t, "-cooldown", "0", "-fill-prob", "0")
	rc := baseConfig()
	o.apply(&rc)

	assert.Zero(t, rc.Strategy.CooldownUs)
	assert.Zero(t, rc.Sim.StartFillProb)
	assert.True(t, o.strategyChanged())
}

func TestOverrides_StartKeepsDuration(t *testing.T) {
	o := parse(t, "-start", "1000")
	rc := baseConfig()
	dur := rc.Sim.EndUs - rc.Sim.StartUs
	o.apply(&rc)

	assert.Equal(t, int64(1000), rc.Sim.StartUs)
	assert.Equal(t, dur, rc.Sim.EndUs-rc.Sim.StartUs)
}

func TestOverrides_SimOnlyLeavesStrategy(t *testing.T) {
	o := parse(t, "-duration", "50000", "-seed", "7", "-max-inv", "4")
	rc := baseConfig()
	o.applySim(&rc)

	assert.Equal(t, rc.Sim.StartUs+50_000, rc.Sim.EndUs)
	assert.Equal(t, uint64(7), rc.Sim.Seed)
	assert.Equal(t, int64(10), rc.Strategy.MaxInv, "applySim no toca la estrategia")
}
