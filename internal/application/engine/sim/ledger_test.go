package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/alejandrodnm/pingpong/internal/domain"
)

func TestLedger_PlaceResting(t *testing.T) {
	l := NewLedger()
	o := l.Place(domain.SideBid, 99, 3, 10, 10, 100)

	assert.Equal(t, int64(1), o.ID)
	assert.Equal(t, domain.OrderStatusResting, o.Status)
	assert.Same(t, o, l.Active(domain.SideBid))
	assert.Nil(t, l.Active(domain.SideAsk))
	assert.Equal(t, int64(3), l.Counters().AttemptedQty)
	assert.Len(t, l.Resting(), 1)
}

func TestLedger_PendingUntilSendLatency(t *testing.T) {
	l := NewLedger()
	o := l.Place(domain.SideAsk, 101, 2, 10, 250, 100)
	assert.Equal(t, domain.OrderStatusPending, o.Status)
	assert.Empty(t, l.Resting())

	assert.Equal(t, 0, l.Activate(200))
	assert.Equal(t, domain.OrderStatusPending, o.Status)

	assert.Equal(t, 1, l.Activate(250))
	assert.Equal(t, domain.OrderStatusResting, o.Status)
}

func TestLedger_PlaceOnActiveSidePanics(t *testing.T) {
	l := NewLedger()
	l.Place(domain.SideBid, 99, 1, 0, 0, 100)
	assert.Panics(t, func() { l.Place(domain.SideBid, 98, 1, 0, 0, 100) })
}

func TestLedger_PlaceInvalidPanics(t *testing.T) {
	l := NewLedger()
	assert.Panics(t, func() { l.Place(domain.SideBid, 0, 1, 0, 0, 100) })
	assert.Panics(t, func() { l.Place(domain.SideBid, 99, 0, 0, 0, 100) })
}

func TestLedger_ImmediateCancel(t *testing.T) {
	l := NewLedger()
	o := l.Place(domain.SideBid, 99, 3, 0, 0, 100)
	l.RequestCancel(o.ID, 5, 5)

	got, ok := l.Order(o.ID)
	require.True(t, ok)
	assert.Equal(t, domain.OrderStatusCancelled, got.Status)
	assert.Nil(t, l.Active(domain.SideBid))
	assert.Equal(t, int64(3), l.Counters().CancelledQty)
	assert.Zero(t, l.OpenRemaining())
}

func TestLedger_FillWhileCancelPending(t *testing.T) {
	l := NewLedger()
	o := l.Place(domain.SideBid, 99, 3, 0, 0, 100)
	l.RequestCancel(o.ID, 0, 500)

	assert.Nil(t, l.Active(domain.SideBid), "el slot queda libre para un reemplazo")
	replacement := l.Place(domain.SideBid, 98, 3, 0, 0, 100)
	assert.Len(t, l.Resting(), 2)

	f := l.ApplyFill(o.ID, 1, 100, 100, 0)
	assert.True(t, f.Partial)

	assert.Equal(t, 1, l.ProcessCancels(500))
	got, _ := l.Order(o.ID)
	assert.Equal(t, domain.OrderStatusCancelled, got.Status)
	assert.Equal(t, int64(2), l.Counters().CancelledQty)
	assert.Same(t, replacement, l.Active(domain.SideBid))
}

func TestLedger_ApplyFillAccounting(t *testing.T) {
	l := NewLedger()
	bid := l.Place(domain.SideBid, 99, 2, 0, 0, 100)
	ask := l.Place(domain.SideAsk, 101, 2, 0, 0, 100)

	f := l.ApplyFill(bid.ID, 2, 10, 100, 0)
	assert.Equal(t, domain.LiquidityMaker, f.Liquidity)
	assert.Equal(t, int64(-2), f.SlippageTick, "comprar bajo el mid es favorable")
	assert.False(t, f.Partial)
	assert.Nil(t, l.Active(domain.SideBid))

	f = l.ApplyFill(ask.ID, 2, 20, 100, 1)
	assert.Equal(t, int64(4), f.RealizedPnL)
	assert.Equal(t, int64(-2), f.SlippageTick)

	pos := l.Position()
	assert.True(t, pos.IsFlat())
	assert.Equal(t, int64(4), pos.RealizedPnL)

	c := l.Counters()
	assert.Equal(t, int64(4), c.FilledQty)
	assert.Equal(t, int64(4), c.GrossTraded)
	assert.Equal(t, int64(1), c.FeesTicks)
	assert.Equal(t, int64(-4), c.SlippageTicks)

	px, ok := l.LastFillPrice()
	assert.True(t, ok)
	assert.Equal(t, int64(101), px)
	assert.Len(t, l.Fills(), 2)
}

func TestLedger_FillInvariantsPanic(t *testing.T) {
	l := NewLedger()
	o := l.Place(domain.SideBid, 99, 2, 0, 0, 100)

	assert.Panics(t, func() { l.ApplyFill(o.ID, 3, 0, 100, 0) }, "más que el remanente")
	assert.Panics(t, func() { l.ApplyFill(o.ID, 0, 0, 100, 0) })
	assert.Panics(t, func() { l.ApplyFill(42, 1, 0, 100, 0) }, "orden desconocida")
	assert.Panics(t, func() { l.RequestCancel(42, 0, 0) })

	pending := l.Place(domain.SideAsk, 101, 1, 0, 10, 100)
	assert.Panics(t, func() { l.ApplyFill(pending.ID, 1, 0, 100, 0) }, "pendiente no llena")
}

func TestLedger_TakerFill(t *testing.T) {
	l := NewLedger()
	f := l.ApplyTaker(domain.SideAsk, 99, 4, 0, 100, 4)

	assert.Equal(t, domain.LiquidityTaker, f.Liquidity)
	assert.Equal(t, int64(0), f.OrderID)
	assert.Equal(t, int64(4), f.SlippageTick)
	assert.Equal(t, int64(-4), l.Position().Quantity)
	assert.Equal(t, int64(4), l.Counters().GrossTraded)
	assert.Zero(t, l.Counters().AttemptedQty)
}

func TestLedger_ExpireAll(t *testing.T) {
	l := NewLedger()
	l.Place(domain.SideBid, 99, 2, 0, 0, 100)
	l.Place(domain.SideAsk, 101, 3, 0, 50, 100)

	assert.Equal(t, 2, l.ExpireAll())
	assert.Equal(t, int64(5), l.Counters().ExpiredQty)
	for _, o := range l.Orders() {
		assert.Equal(t, domain.OrderStatusExpired, o.Status)
	}
	assert.Nil(t, l.Active(domain.SideBid))
	assert.Nil(t, l.Active(domain.SideAsk))
}

// Ninguna secuencia de operaciones válidas crea ni destruye cantidad.
func TestLedger_QuantityConservation(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		l := NewLedger()
		var now int64
		n := rapid.IntRange(1, 60).Draw(t, "ops")
		for i := 0; i < n; i++ {
			now += 100
			l.Activate(now)
			l.ProcessCancels(now)

			switch rapid.IntRange(0, 2).Draw(t, "op") {
			case 0:
				side := domain.Side(rapid.IntRange(0, 1).Draw(t, "side"))
				if l.Active(side) != nil {
					continue
				}
				qty := rapid.Int64Range(1, 10).Draw(t, "qty")
				delay := rapid.Int64Range(0, 300).Draw(t, "send")
				l.Place(side, rapid.Int64Range(90, 110).Draw(t, "price"), qty, now, now+delay, 100)
			case 1:
				resting := l.Resting()
				if len(resting) == 0 {
					continue
				}
				o := resting[rapid.IntRange(0, len(resting)-1).Draw(t, "fill")]
				l.ApplyFill(o.ID, rapid.Int64Range(1, o.Remaining).Draw(t, "fillQty"), now, 100, 0)
			case 2:
				side := domain.Side(rapid.IntRange(0, 1).Draw(t, "cancelSide"))
				if o := l.Active(side); o != nil {
					l.RequestCancel(o.ID, now, now+rapid.Int64Range(0, 300).Draw(t, "cancel"))
				}
			}

			c := l.Counters()
			require.Equal(t, c.AttemptedQty, c.FilledQty+c.CancelledQty+c.ExpiredQty+l.OpenRemaining())
			for _, o := range l.Orders() {
				require.GreaterOrEqual(t, o.Remaining, int64(0))
			}
		}

		l.ExpireAll()
		c := l.Counters()
		require.Zero(t, l.OpenRemaining())
		require.Equal(t, c.AttemptedQty, c.FilledQty+c.CancelledQty+c.ExpiredQty)
		require.Equal(t, c.FilledQty, c.GrossTraded)
	})
}
