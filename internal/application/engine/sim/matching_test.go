package sim

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alejandrodnm/pingpong/internal/application/engine"
	"github.com/alejandrodnm/pingpong/internal/domain"
)

func testExecution() domain.ExecutionConfig {
	exec := domain.DefaultExecutionConfig()
	exec.PartialFillProb = 0
	return exec
}

func TestMatcher_FillProbabilityWeighting(t *testing.T) {
	m := NewMatcher(testExecution(), 10, engine.NewStream(1, engine.StreamMatching))
	mkt := domain.MarketState{MidPrice: 100, Spread: 2, FillProbability: 0.5}

	assert.InDelta(t, 0.5, m.FillProbability(mkt, domain.SideBid, 99), 1e-12)
	assert.InDelta(t, 0.5, m.FillProbability(mkt, domain.SideAsk, 100), 1e-12, "en el mid")
	assert.InDelta(t, 0.5*math.Exp(-1), m.FillProbability(mkt, domain.SideBid, 97), 1e-12)
	assert.InDelta(t, 0.5*math.Exp(-1), m.FillProbability(mkt, domain.SideAsk, 103), 1e-12)
	assert.InDelta(t, 0.5, m.FillProbability(mkt, domain.SideBid, 105), 1e-12, "marketable")

	// monótona en la proximidad
	prev := 1.0
	for price := int64(99); price > 80; price-- {
		p := m.FillProbability(mkt, domain.SideBid, price)
		assert.LessOrEqual(t, p, prev)
		prev = p
	}
}

func TestMatcher_CertainFill(t *testing.T) {
	m := NewMatcher(testExecution(), 10, engine.NewStream(1, engine.StreamMatching))
	l := NewLedger()
	bid := l.Place(domain.SideBid, 99, 3, 0, 0, 100)
	ask := l.Place(domain.SideAsk, 101, 3, 0, 0, 100)

	fills := m.Match(0, domain.MarketState{MidPrice: 100, Spread: 2, FillProbability: 1}, l)

	require.Len(t, fills, 2)
	assert.Equal(t, bid.ID, fills[0].OrderID)
	assert.Equal(t, ask.ID, fills[1].OrderID)
	assert.Equal(t, int64(3), fills[0].Quantity)
	assert.True(t, l.Position().IsFlat())
	assert.Equal(t, int64(6), l.Position().RealizedPnL)
}

func TestMatcher_ZeroProbabilityNeverFills(t *testing.T) {
	m := NewMatcher(testExecution(), 10, engine.NewStream(1, engine.StreamMatching))
	l := NewLedger()
	l.Place(domain.SideBid, 100, 3, 0, 0, 100)
	l.Place(domain.SideAsk, 100, 3, 0, 0, 100)

	for i := 0; i < 1000; i++ {
		assert.Empty(t, m.Match(int64(i), domain.MarketState{MidPrice: 100, Spread: 2}, l))
	}
}

func TestMatcher_PartialFillsStayInRange(t *testing.T) {
	exec := testExecution()
	exec.PartialFillProb = 1
	m := NewMatcher(exec, 10, engine.NewStream(3, engine.StreamMatching))
	mkt := domain.MarketState{MidPrice: 100, Spread: 2, FillProbability: 1}

	for i := 0; i < 200; i++ {
		l := NewLedger()
		o := l.Place(domain.SideBid, 99, 10, 0, 0, 100)
		fills := m.Match(0, mkt, l)
		require.Len(t, fills, 1)
		assert.True(t, fills[0].Partial)
		assert.GreaterOrEqual(t, fills[0].Quantity, int64(1))
		assert.LessOrEqual(t, fills[0].Quantity, int64(9))
		got, _ := l.Order(o.ID)
		assert.Equal(t, domain.OrderStatusResting, got.Status)
	}
}

func TestMatcher_FixedRandomConsumption(t *testing.T) {
	rngA := engine.NewStream(9, engine.StreamMatching)
	rngB := engine.NewStream(9, engine.StreamMatching)
	a := NewMatcher(testExecution(), 10, rngA)
	b := NewMatcher(testExecution(), 10, rngB)
	mkt := domain.MarketState{MidPrice: 100, Spread: 2, FillProbability: 0.5}

	busy := NewLedger()
	idle := NewLedger()
	for i := int64(0); i < 50; i++ {
		if busy.Active(domain.SideBid) == nil {
			busy.Place(domain.SideBid, 99, 2, i, i, 100)
		}
		a.Match(i, mkt, busy)
		b.Match(i, mkt, idle)
	}
	assert.Equal(t, rngA.Uint64(), rngB.Uint64())
}

func TestMatcher_FlattenLong(t *testing.T) {
	exec := testExecution()
	exec.FlattenInventoryAt = 12
	exec.TakerFeeTicks = 1
	m := NewMatcher(exec, 10, engine.NewStream(1, engine.StreamMatching))
	l := NewLedger()
	l.ApplyTaker(domain.SideBid, 100, 15, 0, 100, 0)

	fills := m.Match(1, domain.MarketState{MidPrice: 100, Spread: 3}, l)

	require.Len(t, fills, 1)
	f := fills[0]
	assert.Equal(t, domain.SideAsk, f.Side)
	assert.Equal(t, int64(99), f.Price, "cruza al mejor bid")
	assert.Equal(t, int64(5), f.Quantity)
	assert.Equal(t, int64(5), f.FeeTicks)
	assert.Equal(t, domain.LiquidityTaker, f.Liquidity)
	assert.Equal(t, int64(10), l.Position().Quantity)
}

func TestMatcher_FlattenShort(t *testing.T) {
	exec := testExecution()
	exec.FlattenInventoryAt = 12
	m := NewMatcher(exec, 10, engine.NewStream(1, engine.StreamMatching))
	l := NewLedger()
	l.ApplyTaker(domain.SideAsk, 100, 12, 0, 100, 0)

	fills := m.Match(1, domain.MarketState{MidPrice: 100, Spread: 3}, l)

	require.Len(t, fills, 1)
	assert.Equal(t, domain.SideBid, fills[0].Side)
	assert.Equal(t, int64(102), fills[0].Price)
	assert.Equal(t, int64(2), fills[0].Quantity)
	assert.Equal(t, int64(-10), l.Position().Quantity)
}

func TestMatcher_NoFlattenBelowThreshold(t *testing.T) {
	exec := testExecution()
	exec.FlattenInventoryAt = 12
	m := NewMatcher(exec, 10, engine.NewStream(1, engine.StreamMatching))
	l := NewLedger()
	l.ApplyTaker(domain.SideBid, 100, 11, 0, 100, 0)

	assert.Empty(t, m.Match(1, domain.MarketState{MidPrice: 100, Spread: 2}, l))
}
