package sim

import (
	"math"
	"math/rand/v2"

	"github.com/alejandrodnm/pingpong/internal/domain"
)

// drawsPerStep is the number of variates Next consumes, whatever the outcome.
// Keeping it fixed means two runs with the same seed see the same market path.
const drawsPerStep = 6

// MarketModel generates the synthetic market: a bounded random walk of the mid
// with mean-reverting volatility and fill probability.
type MarketModel struct {
	sim domain.SimConfig
	dyn domain.MarketDynamics
	rng *rand.Rand
}

// NewMarketModel builds a model on its own random stream.
func NewMarketModel(sim domain.SimConfig, dyn domain.MarketDynamics, rng *rand.Rand) *MarketModel {
	return &MarketModel{sim: sim, dyn: dyn, rng: rng}
}

// Initial returns the state at the start of the window. Consumes no randomness.
func (m *MarketModel) Initial() domain.MarketState {
	return domain.MarketState{
		Timestamp:       m.sim.StartUs,
		MidPrice:        max(m.sim.StartMidPrice, 1),
		Spread:          max(m.sim.StartSpread, 0),
		Volatility:      math.Max(m.sim.StartVol, m.sim.MinVolatility),
		FillProbability: clampUnit(m.sim.StartFillProb),
	}
}

// Next returns the state one step after prev.
func (m *MarketModel) Next(prev domain.MarketState) domain.MarketState {
	// All drawsPerStep variates are drawn up front, used or not.
	zMid := m.rng.NormFloat64()
	uJump := m.rng.Float64()
	zJump := m.rng.NormFloat64()
	zVol := m.rng.NormFloat64()
	zFill := m.rng.NormFloat64()
	zSpread := m.rng.NormFloat64()

	move := int64(math.Round(zMid * prev.Volatility))
	if uJump < m.dyn.JumpProbability {
		move += int64(math.Round(zJump * prev.Volatility * m.dyn.JumpScale))
	}

	return domain.MarketState{
		Timestamp:       prev.Timestamp + m.sim.StepUs,
		MidPrice:        max(prev.MidPrice+move, 1),
		Spread:          m.nextSpread(zSpread),
		Volatility:      m.nextVolatility(prev.Volatility, zVol),
		FillProbability: m.nextFillProbability(prev.FillProbability, zFill),
	}
}

func (m *MarketModel) nextVolatility(prev, z float64) float64 {
	target := math.Max(m.sim.StartVol, m.sim.MinVolatility)
	v := prev + m.dyn.VolReversion*(target-prev)
	v *= lognormalShock(m.dyn.VolOfVol, z)
	return math.Max(v, m.sim.MinVolatility)
}

// nextFillProbability keeps the degenerate starts (0 and 1) pinned.
func (m *MarketModel) nextFillProbability(prev, z float64) float64 {
	start := clampUnit(m.sim.StartFillProb)
	if start == 0 || start == 1 {
		return start
	}
	p := prev + m.dyn.FillProbReversion*(start-prev)
	p *= lognormalShock(m.dyn.FillProbDrift, z)
	return clampUnit(p)
}

func (m *MarketModel) nextSpread(z float64) int64 {
	if m.dyn.SpreadJitter == 0 {
		return max(m.sim.StartSpread, 0)
	}
	return max(m.sim.StartSpread+int64(math.Round(z*m.dyn.SpreadJitter)), 0)
}

// lognormalShock has mean 1, so the shock does not bias the reverting level.
func lognormalShock(sigma, z float64) float64 {
	if sigma == 0 {
		return 1
	}
	return math.Exp(sigma*z - 0.5*sigma*sigma)
}

func clampUnit(v float64) float64 {
	return math.Min(math.Max(v, 0), 1)
}
