package sim

import (
	"log/slog"

	"github.com/alejandrodnm/pingpong/internal/domain"
)

// Accumulator records per-step series and bucketed returns while a run
// progresses. It only appends; statistics are derived after Finalize.
type Accumulator struct {
	cfg    domain.MetricsConfig
	maxInv int64
	rec    domain.MetricsRecord

	started        bool
	bucketStart    int64
	bucketStartPnL int64
	bucketSteps    int
	lastTotal      int64
	lastMark       int64
	breaching      bool
}

// NewAccumulator creates an empty accumulator.
func NewAccumulator(cfg domain.MetricsConfig, maxInv int64) *Accumulator {
	return &Accumulator{
		cfg:    cfg,
		maxInv: maxInv,
		rec:    domain.MetricsRecord{ReturnBucketUs: cfg.ReturnBucketUs},
	}
}

// Mark returns the price used to value open inventory.
func (a *Accumulator) Mark(mkt domain.MarketState, l *Ledger) int64 {
	if a.cfg.Marking == domain.MarkLast {
		if px, ok := l.LastFillPrice(); ok {
			return px
		}
	}
	return mkt.MidPrice
}

// OnStep appends one sample. Returns are measured from a flat start, so the
// returns of a finalized run add up to its total PnL.
func (a *Accumulator) OnStep(mkt domain.MarketState, l *Ledger) {
	ts := mkt.Timestamp
	if !a.started {
		a.started = true
		a.bucketStart = ts
	}
	// one return per elapsed bucket; buckets with no samples return 0
	for ts-a.bucketStart >= a.cfg.ReturnBucketUs {
		a.rec.ReturnsSeries = append(a.rec.ReturnsSeries, a.lastTotal-a.bucketStartPnL)
		a.bucketStart += a.cfg.ReturnBucketUs
		a.bucketStartPnL = a.lastTotal
		a.bucketSteps = 0
	}

	pos := l.Position()
	c := l.Counters()
	mark := a.Mark(mkt, l)
	unrealized := pos.UnrealizedPnL(mark)
	total := pos.RealizedPnL + unrealized - c.FeesTicks

	a.rec.TimestampSeries = append(a.rec.TimestampSeries, ts)
	a.rec.TotalPnLSeries = append(a.rec.TotalPnLSeries, total)
	a.rec.RealizedSeries = append(a.rec.RealizedSeries, pos.RealizedPnL)
	a.rec.UnrealizedSeries = append(a.rec.UnrealizedSeries, unrealized)
	a.rec.PositionSeries = append(a.rec.PositionSeries, pos.Quantity)
	a.rec.MidPriceSeries = append(a.rec.MidPriceSeries, mkt.MidPrice)
	a.rec.SpreadSeries = append(a.rec.SpreadSeries, mkt.Spread)

	breach := pos.Quantity > a.maxInv || pos.Quantity < -a.maxInv
	if breach {
		a.rec.InventoryBreaches++
		if !a.breaching {
			slog.Warn("sim: inventory above max_inv",
				"ts", ts, "position", pos.Quantity, "max_inv", a.maxInv)
		}
	}
	a.breaching = breach

	a.lastTotal = total
	a.lastMark = mark
	a.bucketSteps++
}

// Finalize closes the trailing bucket and freezes the record.
// The accumulator must not be used afterwards.
func (a *Accumulator) Finalize(l *Ledger) *domain.Metrics {
	if a.bucketSteps > 0 {
		a.rec.ReturnsSeries = append(a.rec.ReturnsSeries, a.lastTotal-a.bucketStartPnL)
		a.bucketSteps = 0
	}

	pos := l.Position()
	c := l.Counters()
	a.rec.Position = pos.Quantity
	a.rec.AverageCost = pos.AverageCost()
	a.rec.RealizedPnL = pos.RealizedPnL
	a.rec.UnrealizedPnL = pos.UnrealizedPnL(a.lastMark)
	a.rec.FeesTicks = c.FeesTicks
	a.rec.TotalSlippage = c.SlippageTicks
	a.rec.RestingAttempted = c.AttemptedQty
	a.rec.RestingFilled = c.FilledQty
	a.rec.RestingCancelled = c.CancelledQty
	a.rec.GrossTraded = c.GrossTraded

	return domain.NewMetrics(a.rec)
}
