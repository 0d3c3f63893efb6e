package domain

import "fmt"

// Side is the direction of a quote.
type Side int

const (
	SideBid Side = iota
	SideAsk
)

// String implements fmt.Stringer.
func (s Side) String() string {
	switch s {
	case SideBid:
		return "BID"
	case SideAsk:
		return "ASK"
	default:
		return fmt.Sprintf("Side(%d)", int(s))
	}
}

// Opposite returns the other side of the book.
func (s Side) Opposite() Side {
	if s == SideBid {
		return SideAsk
	}
	return SideBid
}

// Sign returns +1 for bids (buying adds inventory) and -1 for asks.
func (s Side) Sign() int64 {
	if s == SideBid {
		return 1
	}
	return -1
}

// OrderStatus represents the lifecycle of a simulated order.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "PENDING"
	OrderStatusResting   OrderStatus = "RESTING"
	OrderStatusFilled    OrderStatus = "FILLED"
	OrderStatusCancelled OrderStatus = "CANCELLED"
	OrderStatusExpired   OrderStatus = "EXPIRED"
)

// Terminal reports whether no further transition is possible.
func (s OrderStatus) Terminal() bool {
	return s == OrderStatusFilled || s == OrderStatusCancelled || s == OrderStatusExpired
}

// Order is a quote placed by the strategy.
type Order struct {
	ID              int64
	Side            Side
	Price           int64 // ticks
	Quantity        int64 // tamaño enviado
	Remaining       int64
	CreatedAt       int64 // us
	ActiveAt        int64 // us, when the send latency elapses
	QuoteMid        int64 // mid price when the order was quoted
	Status          OrderStatus
	CancelRequested bool
	CancelAt        int64 // us, when a requested cancel takes effect
}

// Live reports whether the order is still in the book (pending or resting).
func (o *Order) Live() bool {
	return o.Status == OrderStatusPending || o.Status == OrderStatusResting
}

// Filled returns the quantity already executed.
func (o *Order) Filled() int64 {
	return o.Quantity - o.Remaining
}

// Liquidity indicates which side of the trade we were on.
type Liquidity string

const (
	LiquidityMaker Liquidity = "MAKER"
	LiquidityTaker Liquidity = "TAKER"
)

// Fill records an execution against one of our orders.
type Fill struct {
	OrderID      int64 // 0 for IOC flatten orders
	Side         Side
	Price        int64
	Quantity     int64
	Timestamp    int64
	MidAtFill    int64
	SlippageTick int64 // signed, positive = cost
	FeeTicks     int64
	RealizedPnL  int64 // realized by this fill under average-cost accounting
	Liquidity    Liquidity
	Partial      bool
}
