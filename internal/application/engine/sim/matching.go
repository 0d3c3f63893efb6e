package sim

import (
	"math"
	"math/rand/v2"
	"sort"

	"github.com/alejandrodnm/pingpong/internal/domain"
)

// matchSlotsPerSide is how many resting orders per side get a fill chance each
// step. Each slot consumes three uniforms whether or not an order occupies it.
const matchSlotsPerSide = 2

// Matcher decides which resting orders trade against the synthetic flow.
type Matcher struct {
	exec   domain.ExecutionConfig
	maxInv int64
	rng    *rand.Rand
}

// NewMatcher builds a matcher on its own random stream.
func NewMatcher(exec domain.ExecutionConfig, maxInv int64, rng *rand.Rand) *Matcher {
	return &Matcher{exec: exec, maxInv: maxInv, rng: rng}
}

type slotDraw struct {
	fill, partial, size float64
}

// Match runs one matching round and returns the fills it produced, resting
// fills first (bid side, then ask), then the IOC flatten fill if any.
func (m *Matcher) Match(now int64, mkt domain.MarketState, l *Ledger) []domain.Fill {
	var draws [2][matchSlotsPerSide]slotDraw
	for side := range draws {
		for i := range draws[side] {
			draws[side][i] = slotDraw{fill: m.rng.Float64(), partial: m.rng.Float64(), size: m.rng.Float64()}
		}
	}

	bySide := [2][]*domain.Order{}
	for _, o := range l.Resting() {
		bySide[o.Side] = append(bySide[o.Side], o)
	}

	var fills []domain.Fill
	for _, side := range []domain.Side{domain.SideBid, domain.SideAsk} {
		orders := bySide[side]
		// price priority: closest to the opposite side first, then oldest
		sort.SliceStable(orders, func(i, j int) bool {
			return mkt.DistanceFromMid(side, orders[i].Price) < mkt.DistanceFromMid(side, orders[j].Price)
		})
		for i, o := range orders {
			if i >= matchSlotsPerSide {
				break
			}
			d := draws[side][i]
			if d.fill >= m.FillProbability(mkt, side, o.Price) {
				continue
			}
			qty := o.Remaining
			if qty > 1 && d.partial < m.exec.PartialFillProb {
				qty = 1 + int64(d.size*float64(qty-1))
			}
			fee := m.exec.MakerFeeTicks * qty
			fills = append(fills, l.ApplyFill(o.ID, qty, now, mkt.MidPrice, fee))
		}
	}

	if f, ok := m.flatten(now, mkt, l); ok {
		fills = append(fills, f)
	}
	return fills
}

// FillProbability is the chance that a resting order at price fills this step:
// the market fill probability weighted by proximity to the mid. Orders within
// one tick of the mid, or crossing the opposite touch, get the full probability.
func (m *Matcher) FillProbability(mkt domain.MarketState, side domain.Side, price int64) float64 {
	p := mkt.FillProbability
	d := mkt.DistanceFromMid(side, price)
	if d <= 1 || mkt.Marketable(side, price) {
		return p
	}
	return p * math.Exp(-float64(d-1)/m.exec.FillDecayTicks)
}

// flatten sends an IOC order that brings the position back to max_inv once it
// reaches flatten_inventory_at. It crosses at the opposite touch and pays the
// taker fee.
func (m *Matcher) flatten(now int64, mkt domain.MarketState, l *Ledger) (domain.Fill, bool) {
	limit := m.exec.FlattenInventoryAt
	if limit <= 0 {
		return domain.Fill{}, false
	}
	pos := l.Position().Quantity
	if pos < limit && pos > -limit {
		return domain.Fill{}, false
	}

	side, price := domain.SideAsk, mkt.BestBid()
	if pos < 0 {
		side, price = domain.SideBid, mkt.BestAsk()
	}
	qty := max(pos, -pos) - m.maxInv
	if qty <= 0 || price <= 0 {
		return domain.Fill{}, false
	}
	return l.ApplyTaker(side, price, qty, now, mkt.MidPrice, m.exec.TakerFeeTicks*qty), true
}
