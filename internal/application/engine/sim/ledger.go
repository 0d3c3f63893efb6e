package sim

import (
	"fmt"
	"log/slog"

	"github.com/alejandrodnm/pingpong/internal/domain"
)

// Counters are the quantity totals tracked by the ledger.
//
// For resting orders: AttemptedQty = FilledQty + CancelledQty + ExpiredQty + open remaining.
type Counters struct {
	AttemptedQty  int64
	FilledQty     int64 // resting fills only
	CancelledQty  int64
	ExpiredQty    int64
	GrossTraded   int64 // resting and IOC fills
	FeesTicks     int64
	SlippageTicks int64
}

// Ledger is the single source of truth for orders, fills and the position.
//
// At most one order per side is "active" (the one the strategy manages).
// An order whose cancel is in flight leaves the active slot but stays open and
// can still fill until the cancel completes.
type Ledger struct {
	nextID   int64
	orders   map[int64]*domain.Order
	open     []*domain.Order // non-terminal, ascending ID
	active   [2]*domain.Order
	position domain.Position
	counters Counters
	fills    []domain.Fill

	lastFillPrice int64
	hasFill       bool
}

// NewLedger creates an empty, flat ledger.
func NewLedger() *Ledger {
	return &Ledger{orders: make(map[int64]*domain.Order)}
}

// Place records a new order. It starts PENDING when activeAt is after now,
// RESTING otherwise. The side must not already have an active order.
func (l *Ledger) Place(side domain.Side, price, qty, now, activeAt, quoteMid int64) *domain.Order {
	if qty <= 0 || price <= 0 {
		panic(fmt.Sprintf("sim: place %s %d@%d: non-positive price or quantity", side, qty, price))
	}
	if l.active[side] != nil {
		panic(fmt.Sprintf("sim: place %s: order %d still active", side, l.active[side].ID))
	}

	l.nextID++
	o := &domain.Order{
		ID:        l.nextID,
		Side:      side,
		Price:     price,
		Quantity:  qty,
		Remaining: qty,
		CreatedAt: now,
		ActiveAt:  activeAt,
		QuoteMid:  quoteMid,
		Status:    domain.OrderStatusResting,
	}
	if activeAt > now {
		o.Status = domain.OrderStatusPending
	}
	l.orders[o.ID] = o
	l.open = append(l.open, o)
	l.active[side] = o
	l.counters.AttemptedQty += qty

	slog.Debug("sim: order placed",
		"id", o.ID, "side", side.String(), "price", price, "qty", qty, "status", string(o.Status))
	return o
}

// Activate moves pending orders whose send latency has elapsed to RESTING.
func (l *Ledger) Activate(now int64) int {
	n := 0
	for _, o := range l.open {
		if o.Status == domain.OrderStatusPending && o.ActiveAt <= now {
			o.Status = domain.OrderStatusResting
			n++
		}
	}
	return n
}

// RequestCancel frees the active slot and schedules the cancel at cancelAt.
// A cancel due now completes immediately. Cancelling a terminal order is a no-op.
func (l *Ledger) RequestCancel(id, now, cancelAt int64) {
	o := l.mustOrder(id)
	if o.Status.Terminal() {
		return
	}
	if l.active[o.Side] == o {
		l.active[o.Side] = nil
	}
	if o.CancelRequested {
		return
	}
	o.CancelRequested = true
	o.CancelAt = cancelAt
	if cancelAt <= now {
		l.cancel(o)
		l.prune()
	}
}

// ProcessCancels completes every requested cancel due at now.
func (l *Ledger) ProcessCancels(now int64) int {
	n := 0
	for _, o := range l.open {
		if o.CancelRequested && o.CancelAt <= now && o.Live() {
			l.cancel(o)
			n++
		}
	}
	if n > 0 {
		l.prune()
	}
	return n
}

func (l *Ledger) cancel(o *domain.Order) {
	o.Status = domain.OrderStatusCancelled
	l.counters.CancelledQty += o.Remaining
	slog.Debug("sim: order cancelled", "id", o.ID, "side", o.Side.String(), "remaining", o.Remaining)
}

// ApplyFill executes qty of a resting order at its own price (maker fill).
func (l *Ledger) ApplyFill(id, qty, now, mid, feeTicks int64) domain.Fill {
	o := l.mustOrder(id)
	if o.Status != domain.OrderStatusResting {
		panic(fmt.Sprintf("sim: fill order %d in status %s", id, o.Status))
	}
	if qty <= 0 || qty > o.Remaining {
		panic(fmt.Sprintf("sim: fill order %d: qty %d outside (0, %d]", id, qty, o.Remaining))
	}

	o.Remaining -= qty
	if o.Remaining == 0 {
		o.Status = domain.OrderStatusFilled
		if l.active[o.Side] == o {
			l.active[o.Side] = nil
		}
		l.prune()
	}
	l.counters.FilledQty += qty

	return l.record(domain.Fill{
		OrderID:   o.ID,
		Side:      o.Side,
		Price:     o.Price,
		Quantity:  qty,
		Timestamp: now,
		MidAtFill: mid,
		FeeTicks:  feeTicks,
		Liquidity: domain.LiquidityMaker,
		Partial:   o.Remaining > 0,
	})
}

// ApplyTaker records an immediate-or-cancel execution that never rests.
func (l *Ledger) ApplyTaker(side domain.Side, price, qty, now, mid, feeTicks int64) domain.Fill {
	if qty <= 0 || price <= 0 {
		panic(fmt.Sprintf("sim: taker %s %d@%d: non-positive price or quantity", side, qty, price))
	}
	return l.record(domain.Fill{
		Side:      side,
		Price:     price,
		Quantity:  qty,
		Timestamp: now,
		MidAtFill: mid,
		FeeTicks:  feeTicks,
		Liquidity: domain.LiquidityTaker,
	})
}

// record applies f to the position and counters, filling in the realized PnL
// and the slippage against the mid at fill time.
func (l *Ledger) record(f domain.Fill) domain.Fill {
	f.RealizedPnL = l.position.Apply(f.Side, f.Price, f.Quantity)
	f.SlippageTick = f.Side.Sign() * (f.Price - f.MidAtFill) * f.Quantity

	l.counters.GrossTraded += f.Quantity
	l.counters.FeesTicks += f.FeeTicks
	l.counters.SlippageTicks += f.SlippageTick
	l.lastFillPrice = f.Price
	l.hasFill = true

	l.fills = append(l.fills, f)
	slog.Debug("sim: fill",
		"order", f.OrderID, "side", f.Side.String(), "price", f.Price, "qty", f.Quantity,
		"liquidity", string(f.Liquidity), "realized", f.RealizedPnL)
	return f
}

// ExpireAll marks every open order EXPIRED. Called once at the end of a run.
func (l *Ledger) ExpireAll() int {
	n := len(l.open)
	for _, o := range l.open {
		o.Status = domain.OrderStatusExpired
		l.counters.ExpiredQty += o.Remaining
	}
	l.open = l.open[:0]
	l.active = [2]*domain.Order{}
	return n
}

// Active returns the order the strategy manages on side, or nil.
func (l *Ledger) Active(side domain.Side) *domain.Order {
	return l.active[side]
}

// Resting returns the orders that can be matched now, ascending ID.
func (l *Ledger) Resting() []*domain.Order {
	out := make([]*domain.Order, 0, len(l.open))
	for _, o := range l.open {
		if o.Status == domain.OrderStatusResting {
			out = append(out, o)
		}
	}
	return out
}

// OpenRemaining sums the unfilled quantity of every non-terminal order.
func (l *Ledger) OpenRemaining() int64 {
	var total int64
	for _, o := range l.open {
		total += o.Remaining
	}
	return total
}

// Order returns a copy of the order with the given id.
func (l *Ledger) Order(id int64) (domain.Order, bool) {
	o, ok := l.orders[id]
	if !ok {
		return domain.Order{}, false
	}
	return *o, true
}

// Orders returns copies of every order ever placed, ascending ID.
func (l *Ledger) Orders() []domain.Order {
	out := make([]domain.Order, 0, len(l.orders))
	for id := int64(1); id <= l.nextID; id++ {
		out = append(out, *l.orders[id])
	}
	return out
}

func (l *Ledger) Position() domain.Position { return l.position }
func (l *Ledger) Counters() Counters        { return l.counters }

// Fills returns a copy of the fill log.
func (l *Ledger) Fills() []domain.Fill {
	out := make([]domain.Fill, len(l.fills))
	copy(out, l.fills)
	return out
}

// LastFillPrice returns the price of the most recent fill, if any.
func (l *Ledger) LastFillPrice() (int64, bool) {
	return l.lastFillPrice, l.hasFill
}

func (l *Ledger) mustOrder(id int64) *domain.Order {
	o, ok := l.orders[id]
	if !ok {
		panic(fmt.Sprintf("sim: unknown order %d", id))
	}
	return o
}

func (l *Ledger) prune() {
	kept := l.open[:0]
	for _, o := range l.open {
		if !o.Status.Terminal() {
			kept = append(kept, o)
		}
	}
	for i := len(kept); i < len(l.open); i++ {
		l.open[i] = nil
	}
	l.open = kept
}
