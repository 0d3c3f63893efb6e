package strategy

import (
	"fmt"

	"github.com/alejandrodnm/pingpong/internal/domain"
)

// State resume hacia dónde empuja el inventario al ping-pong.
type State string

const (
	StateBalanced      State = "BALANCED"
	StateWaitingToSell State = "WAITING_TO_SELL" // largo al límite: solo se cotiza el ask
	StateWaitingToBuy  State = "WAITING_TO_BUY"  // corto al límite: solo se cotiza el bid
)

// PingPong cotiza bid y ask simétricos alrededor del mid y controla el
// inventario suprimiendo el lado que lo agravaría.
type PingPong struct {
	cfg domain.StrategyConfig

	quoted        bool
	lastRequoteUs int64
	state         State
}

// NewPingPong valida la configuración y crea la estrategia.
func NewPingPong(cfg domain.StrategyConfig) (*PingPong, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("strategy.NewPingPong: %w", err)
	}
	return &PingPong{cfg: cfg, state: StateBalanced}, nil
}

// Name implementa Strategy.
func (p *PingPong) Name() string { return "ping-pong" }

// Config devuelve los parámetros con los que se construyó.
func (p *PingPong) Config() domain.StrategyConfig { return p.cfg }

// State devuelve el estado de inventario del último paso.
func (p *PingPong) State() State { return p.state }

// LastRequoteUs devuelve el timestamp del último requote y si hubo alguno.
func (p *PingPong) LastRequoteUs() (int64, bool) { return p.lastRequoteUs, p.quoted }

// Decide implementa Strategy.
//
// Orden de evaluación:
//  1. retirada por inventario y quotes obsoletos (ignoran el cooldown);
//  2. requote si el cooldown lo permite y algún lado no suprimido no tiene
//     orden activa al precio objetivo.
//
// Cancelar no cuenta como requote: no reinicia el cooldown.
func (p *PingPong) Decide(in Input) Decision {
	var d Decision
	mid := in.Market.MidPrice
	p.state = stateFor(in.Position, p.cfg.MaxInv)

	suppressed := map[domain.Side]bool{
		domain.SideBid: in.Position >= p.cfg.MaxInv,
		domain.SideAsk: in.Position <= -p.cfg.MaxInv,
	}

	live := map[domain.Side]*domain.Order{}
	for _, side := range []domain.Side{domain.SideBid, domain.SideAsk} {
		o := in.Active(side)
		if o == nil || !o.Live() {
			continue
		}
		if suppressed[side] || p.stale(o, in.Market) {
			d.Cancels = append(d.Cancels, o.ID)
			continue
		}
		live[side] = o
	}

	if p.cooldownElapsed(in.Now) {
		var quotes []Quote
		var replaced []int64
		for _, side := range []domain.Side{domain.SideBid, domain.SideAsk} {
			if suppressed[side] {
				continue
			}
			target := p.targetPrice(side, mid)
			if target <= 0 {
				continue
			}
			if o := live[side]; o != nil {
				if o.Price == target {
					continue
				}
				replaced = append(replaced, o.ID)
			}
			quotes = append(quotes, Quote{Side: side, Price: target, Quantity: p.cfg.QuoteSize})
		}
		if len(quotes) > 0 {
			d.Cancels = append(d.Cancels, replaced...)
			d.Quotes = quotes
			d.Action = ActionRequote
			p.quoted = true
			p.lastRequoteUs = in.Now
			return d
		}
	}

	if len(d.Cancels) > 0 {
		d.Action = ActionCancelAndHold
	} else {
		d.Action = ActionHold
	}
	return d
}

// stale: la orden quedó a más de cancel_threshold ticks del mid actual, por
// detrás o cruzándolo.
func (p *PingPong) stale(o *domain.Order, mkt domain.MarketState) bool {
	d := mkt.DistanceFromMid(o.Side, o.Price)
	if d < 0 {
		d = -d
	}
	return d > p.cfg.CancelThreshold
}

func (p *PingPong) cooldownElapsed(now int64) bool {
	return !p.quoted || now-p.lastRequoteUs >= p.cfg.CooldownUs
}

func (p *PingPong) targetPrice(side domain.Side, mid int64) int64 {
	if side == domain.SideBid {
		return mid - p.cfg.TickOffset
	}
	return mid + p.cfg.TickOffset
}

func stateFor(position, maxInv int64) State {
	switch {
	case position >= maxInv:
		return StateWaitingToSell
	case position <= -maxInv:
		return StateWaitingToBuy
	default:
		return StateBalanced
	}
}
