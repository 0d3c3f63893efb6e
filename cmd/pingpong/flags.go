package main

import (
	"flag"

	"github.com/alejandrodnm/pingpong/internal/domain"
)

// overrides son los flags que pisan valores del config. Solo se aplican los que
// el usuario pasó explícitamente en la línea de comandos.
type overrides struct {
	quoteSize       int64
	tickOffset      int64
	maxInv          int64
	cancelThreshold int64
	cooldown        int64

	start      int64
	duration   int64
	step       int64
	midPrice   int64
	spread     int64
	volatility float64
	fillProb   float64
	seed       uint64

	set map[string]bool
}

var strategyFlags = []string{"quote-size", "tick-offset", "max-inv", "cancel-threshold", "cooldown"}

func registerOverrides(fs *flag.FlagSet) *overrides {
	o := &overrides{set: make(map[string]bool)}
	fs.Int64Var(&o.quoteSize, "quote-size", 0, "units per quote")
	fs.Int64Var(&o.tickOffset, "tick-offset", 0, "quote distance from mid in ticks")
	fs.Int64Var(&o.maxInv, "max-inv", 0, "soft inventory limit")
	fs.Int64Var(&o.cancelThreshold, "cancel-threshold", 0, "max distance in ticks between a quote and the mid before it is cancelled")
	fs.Int64Var(&o.cooldown, "cooldown", 0, "microseconds between requotes")

	fs.Int64Var(&o.start, "start", 0, "starting timestamp in us")
	fs.Int64Var(&o.duration, "duration", 0, "simulated duration in us")
	fs.Int64Var(&o.step, "step", 0, "clock step in us")
	fs.Int64Var(&o.midPrice, "mid-price", 0, "starting mid price in ticks")
	fs.Int64Var(&o.spread, "spread", 0, "starting spread in ticks")
	fs.Float64Var(&o.volatility, "volatility", 0, "starting volatility in ticks per step")
	fs.Float64Var(&o.fillProb, "fill-prob", 0, "starting base fill probability [0,1]")
	fs.Uint64Var(&o.seed, "seed", 0, "random seed")
	return o
}

// collect registra qué flags se pasaron. Llamar después de Parse.
func (o *overrides) collect(fs *flag.FlagSet) {
	fs.Visit(func(f *flag.Flag) { o.set[f.Name] = true })
}

func (o *overrides) strategyChanged() bool {
	for _, name := range strategyFlags {
		if o.set[name] {
			return true
		}
	}
	return false
}

func (o *overrides) apply(rc *domain.RunConfig) {
	o.applyStrategy(&rc.Strategy)
	o.applySim(rc)
}

func (o *overrides) applyStrategy(s *domain.StrategyConfig) {
	setInt(o.set["quote-size"], &s.QuoteSize, o.quoteSize)
	setInt(o.set["tick-offset"], &s.TickOffset, o.tickOffset)
	setInt(o.set["max-inv"], &s.MaxInv, o.maxInv)
	setInt(o.set["cancel-threshold"], &s.CancelThreshold, o.cancelThreshold)
	setInt(o.set["cooldown"], &s.CooldownUs, o.cooldown)
}

// applySim conserva la duración del config si solo cambia el inicio.
func (o *overrides) applySim(rc *domain.RunConfig) {
	sim := &rc.Sim
	start, dur := sim.StartUs, sim.EndUs-sim.StartUs
	setInt(o.set["start"], &start, o.start)
	setInt(o.set["duration"], &dur, o.duration)
	sim.StartUs, sim.EndUs = start, start+dur

	setInt(o.set["step"], &sim.StepUs, o.step)
	setInt(o.set["mid-price"], &sim.StartMidPrice, o.midPrice)
	setInt(o.set["spread"], &sim.StartSpread, o.spread)
	if o.set["volatility"] {
		sim.StartVol = o.volatility
	}
	if o.set["fill-prob"] {
		sim.StartFillProb = o.fillProb
	}
	if o.set["seed"] {
		sim.Seed = o.seed
	}
}

func setInt(ok bool, dst *int64, v int64) {
	if ok {
		*dst = v
	}
}
