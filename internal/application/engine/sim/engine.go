package sim

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/time/rate"

	"github.com/alejandrodnm/pingpong/internal/application/engine"
	"github.com/alejandrodnm/pingpong/internal/domain"
	"github.com/alejandrodnm/pingpong/internal/domain/strategy"
)

const progressInterval = 2 * time.Second

// ErrAlreadyRan is returned when Run is called twice on the same engine.
var ErrAlreadyRan = errors.New("sim: engine already ran")

// Engine drives one simulation run. Each step executes, in order: market
// update, latency queue, strategy decision, matching, metrics sample and clock
// advance. A run is a pure function of its RunConfig.
type Engine struct {
	cfg      domain.RunConfig
	clock    *Clock
	market   *MarketModel
	ledger   *Ledger
	latency  *LatencyQueue
	matcher  *Matcher
	acc      *Accumulator
	strategy strategy.Strategy

	progress rate.Sometimes
	ran      bool
	state    domain.MarketState
}

// New validates cfg and builds an engine running the ping-pong strategy.
func New(cfg domain.RunConfig) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("sim.New: %w", err)
	}
	s, err := strategy.NewPingPong(cfg.Strategy)
	if err != nil {
		return nil, fmt.Errorf("sim.New: %w", err)
	}
	return newEngine(cfg, s), nil
}

// NewWithStrategy is New with a caller-supplied strategy. cfg.Strategy is still
// validated because max_inv drives breach accounting and the IOC flatten.
func NewWithStrategy(cfg domain.RunConfig, s strategy.Strategy) (*Engine, error) {
	if s == nil {
		return nil, fmt.Errorf("sim.NewWithStrategy: %w: nil strategy", domain.ErrInvalidConfig)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("sim.NewWithStrategy: %w", err)
	}
	return newEngine(cfg, s), nil
}

// Factory adapts New to the orchestration layer.
func Factory(cfg domain.RunConfig) (engine.Simulator, error) {
	e, err := New(cfg)
	if err != nil {
		return nil, err
	}
	return e, nil
}

func newEngine(cfg domain.RunConfig, s strategy.Strategy) *Engine {
	seed := cfg.Sim.Seed
	return &Engine{
		cfg:      cfg,
		clock:    NewClock(cfg.Sim.StartUs, cfg.Sim.EndUs, cfg.Sim.StepUs),
		market:   NewMarketModel(cfg.Sim, cfg.Market, engine.NewStream(seed, engine.StreamMarket)),
		ledger:   NewLedger(),
		latency:  NewLatencyQueue(cfg.Execution.Latency, engine.NewStream(seed, engine.StreamLatency)),
		matcher:  NewMatcher(cfg.Execution, cfg.Strategy.MaxInv, engine.NewStream(seed, engine.StreamMatching)),
		acc:      NewAccumulator(cfg.Metrics, cfg.Strategy.MaxInv),
		strategy: s,
		progress: rate.Sometimes{First: 1, Interval: progressInterval},
	}
}

// Run executes the whole window and returns the frozen metrics.
// The context is checked between steps; a cancelled run returns no metrics.
func (e *Engine) Run(ctx context.Context) (*domain.Metrics, error) {
	if e.ran {
		return nil, ErrAlreadyRan
	}
	e.ran = true

	started := time.Now()
	total := e.clock.Steps()
	slog.Info("sim: run started",
		"strategy", e.strategy.Name(),
		"steps", total,
		"seed", e.cfg.Sim.Seed,
	)

	for !e.clock.Done() {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("sim.Run: step %d: %w", e.clock.Index(), err)
		}
		e.step()

		e.progress.Do(func() {
			pos := e.ledger.Position()
			slog.Debug("sim: progress",
				"step", e.clock.Index(),
				"of", total,
				"mid", e.state.MidPrice,
				"position", pos.Quantity,
				"realized", pos.RealizedPnL,
			)
		})
		e.clock.Advance()
	}

	expired := e.ledger.ExpireAll()
	metrics := e.acc.Finalize(e.ledger)

	slog.Info("sim: run completed",
		"steps", metrics.Steps(),
		"total_pnl", metrics.TotalPnLTicks(),
		"position", metrics.Position(),
		"fill_ratio", fmt.Sprintf("%.3f", metrics.FillRatio()),
		"expired_orders", expired,
		"elapsed", time.Since(started).Round(time.Millisecond),
	)
	return metrics, nil
}

func (e *Engine) step() {
	now := e.clock.Now()
	if e.clock.Index() == 0 {
		e.state = e.market.Initial()
	} else {
		e.state = e.market.Next(e.state)
	}

	e.latency.Process(now, e.ledger)

	d := e.strategy.Decide(strategy.Input{
		Now:       now,
		Market:    e.state,
		Position:  e.ledger.Position().Quantity,
		ActiveBid: e.ledger.Active(domain.SideBid),
		ActiveAsk: e.ledger.Active(domain.SideAsk),
	})
	e.apply(now, d)

	e.matcher.Match(now, e.state, e.ledger)
	e.acc.OnStep(e.state, e.ledger)
}

// apply executes cancels before quotes so a replaced side frees its slot.
func (e *Engine) apply(now int64, d strategy.Decision) {
	for _, id := range d.Cancels {
		e.ledger.RequestCancel(id, now, after(now, e.latency.CancelDelay()))
	}
	for _, q := range d.Quotes {
		e.ledger.Place(q.Side, q.Price, q.Quantity, now, after(now, e.latency.SendDelay()), e.state.MidPrice)
	}
}

// Fills returns every execution of the run in order.
func (e *Engine) Fills() []domain.Fill { return e.ledger.Fills() }

// Orders returns every order of the run, ascending ID.
func (e *Engine) Orders() []domain.Order { return e.ledger.Orders() }

// Counters returns the ledger quantity totals.
func (e *Engine) Counters() Counters { return e.ledger.Counters() }

// Config returns the configuration the engine was built with.
func (e *Engine) Config() domain.RunConfig { return e.cfg }
