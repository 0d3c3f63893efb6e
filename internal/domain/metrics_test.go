package domain

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func sampleRecord() MetricsRecord {
	return MetricsRecord{
		ReturnBucketUs:   100_000,
		TimestampSeries:  []int64{1, 101, 201, 301},
		TotalPnLSeries:   []int64{0, 4, 1, 6},
		PositionSeries:   []int64{0, 1, 0, -1},
		MidPriceSeries:   []int64{100, 101, 100, 99},
		ReturnsSeries:    []int64{4, -3, 5},
		Position:         -1,
		RealizedPnL:      5,
		UnrealizedPnL:    2,
		FeesTicks:        1,
		RestingAttempted: 12,
		RestingFilled:    3,
		RestingCancelled: 6,
		GrossTraded:      3,
	}
}

func TestMetrics_Derived(t *testing.T) {
	m := NewMetrics(sampleRecord())

	assert.Equal(t, int64(6), m.TotalPnLTicks())
	assert.Equal(t, int64(3), m.MaxDrawdownTicks())
	assert.InDelta(t, 2.0/3.0, m.WinRate(), 1e-12)
	assert.InDelta(t, 3.0, m.ProfitFactor(), 1e-12)
	assert.InDelta(t, 0.25, m.FillRatio(), 1e-12)
	assert.Equal(t, 4, m.Steps())
	assert.False(t, math.IsNaN(m.SharpeRatio()))
	assert.Greater(t, m.SharpeRatio(), 0.0)
}

func TestMetrics_IsFrozen(t *testing.T) {
	rec := sampleRecord()
	m := NewMetrics(rec)

	rec.TotalPnLSeries[1] = 1000
	rec.RealizedPnL = 1000
	assert.Equal(t, int64(4), m.TotalPnLSeries()[1])
	assert.Equal(t, int64(6), m.TotalPnLTicks())

	// las series devueltas son copias
	s := m.ReturnsSeries()
	s[0] = -99
	assert.Equal(t, int64(4), m.ReturnsSeries()[0])
}

func TestSummarizeSeeds(t *testing.T) {
	a := sampleRecord()
	b := sampleRecord()
	b.RealizedPnL = -3 // total = -3 + 2 - 1 = -2

	s := SummarizeSeeds([]RunResult{
		{Label: "seed=1", Metrics: NewMetrics(a)},
		{Label: "seed=2", Metrics: NewMetrics(b)},
		{Label: "fallido"},
	})

	assert.Equal(t, 2, s.Runs)
	assert.Equal(t, int64(-2), s.MinPnL)
	assert.Equal(t, int64(6), s.MaxPnL)
	assert.InDelta(t, 2.0, s.MeanPnL, 1e-12)
	assert.InDelta(t, 0.25, s.MeanFill, 1e-12)
}
