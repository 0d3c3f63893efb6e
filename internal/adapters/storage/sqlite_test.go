package storage_test

import (
	"context"
	"testing"

	"github.com/alejandrodnm/pingpong/internal/adapters/storage"
	"github.com/alejandrodnm/pingpong/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeResult(runID string, steps int, fills []domain.Fill) domain.RunResult {
	rec := domain.MetricsRecord{ReturnBucketUs: 100_000, RealizedPnL: 4, FeesTicks: 1, RestingAttempted: 6, RestingFilled: 3}
	for i := 0; i < steps; i++ {
		rec.TimestampSeries = append(rec.TimestampSeries, int64(1+i*100))
		rec.MidPriceSeries = append(rec.MidPriceSeries, 10_000+int64(i%3))
		rec.SpreadSeries = append(rec.SpreadSeries, 2)
		rec.PositionSeries = append(rec.PositionSeries, 0)
		rec.RealizedSeries = append(rec.RealizedSeries, int64(i))
		rec.UnrealizedSeries = append(rec.UnrealizedSeries, 0)
		rec.TotalPnLSeries = append(rec.TotalPnLSeries, int64(i))
	}

	cfg := domain.DefaultRunConfig(domain.StrategyConfig{QuoteSize: 3, TickOffset: 2, MaxInv: 10, CancelThreshold: 2, CooldownUs: 5000})
	cfg.Sim.Seed = 1<<63 + 5 // no cabe en int64
	return domain.RunResult{
		RunID:   runID,
		Label:   "balanced",
		Config:  cfg,
		Metrics: domain.NewMetrics(rec),
		Fills:   fills,
	}
}

func sampleFills() []domain.Fill {
	return []domain.Fill{
		{OrderID: 1, Side: domain.SideBid, Price: 9_998, Quantity: 3, Timestamp: 101, MidAtFill: 10_000,
			SlippageTick: -6, Liquidity: domain.LiquidityMaker},
		{OrderID: 2, Side: domain.SideAsk, Price: 10_002, Quantity: 1, Timestamp: 201, MidAtFill: 10_001,
			SlippageTick: -1, RealizedPnL: 4, Liquidity: domain.LiquidityMaker, Partial: true},
		{Side: domain.SideAsk, Price: 9_999, Quantity: 2, Timestamp: 301, MidAtFill: 10_000,
			SlippageTick: 2, FeeTicks: 2, Liquidity: domain.LiquidityTaker},
	}
}

func TestSQLiteStorage_SaveAndLoad(t *testing.T) {
	db, err := storage.NewSQLiteStorage(":memory:")
	require.NoError(t, err)
	defer db.Close()
	ctx := context.Background()

	fills := sampleFills()
	res := makeResult("run-1", 50, fills)
	require.NoError(t, db.SaveTrace(ctx, res))

	sum, ok, err := db.LoadSummary(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "run-1", sum.RunID)
	assert.Equal(t, "balanced", sum.Label)
	assert.Equal(t, res.Config.Sim.Seed, sum.Seed)
	assert.Equal(t, 50, sum.Steps)
	assert.Equal(t, 3, sum.Fills)
	assert.Equal(t, int64(3), sum.TotalPnL)
	assert.InDelta(t, 0.5, sum.FillRatio, 1e-12)
	assert.False(t, sum.ExportedAt.IsZero())

	n, err := db.CountSteps(ctx)
	require.NoError(t, err)
	assert.Equal(t, 50, n)

	loaded, err := db.LoadFills(ctx)
	require.NoError(t, err)
	assert.Equal(t, fills, loaded)
}

func TestSQLiteStorage_ExportReplacesPrevious(t *testing.T) {
	db, err := storage.NewSQLiteStorage(":memory:")
	require.NoError(t, err)
	defer db.Close()
	ctx := context.Background()

	require.NoError(t, db.SaveTrace(ctx, makeResult("run-1", 50, sampleFills())))
	require.NoError(t, db.SaveTrace(ctx, makeResult("run-2", 10, nil)))

	sum, ok, err := db.LoadSummary(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "run-2", sum.RunID)

	n, err := db.CountSteps(ctx)
	require.NoError(t, err)
	assert.Equal(t, 10, n)

	loaded, err := db.LoadFills(ctx)
	require.NoError(t, err)
	assert.Empty(t, loaded)
}

func TestSQLiteStorage_EmptyDatabase(t *testing.T) {
	db, err := storage.NewSQLiteStorage(":memory:")
	require.NoError(t, err)
	defer db.Close()

	_, ok, err := db.LoadSummary(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSQLiteStorage_RejectsUnfinishedRun(t *testing.T) {
	db, err := storage.NewSQLiteStorage(":memory:")
	require.NoError(t, err)
	defer db.Close()

	err = db.SaveTrace(context.Background(), domain.RunResult{Label: "broken"})
	assert.ErrorIs(t, err, storage.ErrNoMetrics)
}
