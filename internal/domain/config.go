package domain

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidConfig se devuelve (envuelto) cuando una configuración no supera la
// validación. Una simulación nunca arranca con configuración inválida.
var ErrInvalidConfig = errors.New("invalid configuration")

// StrategyConfig son los parámetros del ping-pong. Inmutable durante un run.
type StrategyConfig struct {
	QuoteSize       int64 // unidades por quote
	TickOffset      int64 // ticks desde el mid
	MaxInv          int64 // inventario objetivo máximo (soft)
	CancelThreshold int64 // ticks que puede moverse el mid antes de cancelar
	CooldownUs      int64 // microsegundos entre requotes
}

// Validate rechaza tamaños u offsets no positivos.
func (c StrategyConfig) Validate() error {
	switch {
	case c.QuoteSize <= 0:
		return invalid("strategy.quote_size must be > 0, got %d", c.QuoteSize)
	case c.TickOffset <= 0:
		return invalid("strategy.tick_offset must be > 0, got %d", c.TickOffset)
	case c.MaxInv <= 0:
		return invalid("strategy.max_inv must be > 0, got %d", c.MaxInv)
	case c.CancelThreshold <= 0:
		return invalid("strategy.cancel_threshold must be > 0, got %d", c.CancelThreshold)
	case c.CooldownUs < 0:
		return invalid("strategy.cooldown_us must be >= 0, got %d", c.CooldownUs)
	}
	return nil
}

// SimConfig es la ventana temporal y la semilla del mercado sintético.
type SimConfig struct {
	StartUs       int64
	EndUs         int64
	StepUs        int64
	StartMidPrice int64
	StartSpread   int64
	StartVol      float64
	MinVolatility float64
	StartFillProb float64
	Seed          uint64
}

// Validate comprueba la ventana y los parámetros de arranque del mercado.
func (c SimConfig) Validate() error {
	switch {
	case c.StartUs < 0:
		return invalid("simulation.starting_timestamp_us must be >= 0, got %d", c.StartUs)
	case c.EndUs <= c.StartUs:
		return invalid("simulation.ending_timestamp_us (%d) must be after start (%d)", c.EndUs, c.StartUs)
	case c.StepUs <= 0:
		return invalid("simulation.step_us must be > 0, got %d", c.StepUs)
	case c.StartMidPrice <= 0:
		return invalid("simulation.starting_mid_price must be > 0, got %d", c.StartMidPrice)
	case c.StartSpread < 0:
		return invalid("simulation.start_spread must be >= 0, got %d", c.StartSpread)
	case !finiteNonNegative(c.StartVol):
		return invalid("simulation.start_vol must be >= 0, got %v", c.StartVol)
	case !finiteNonNegative(c.MinVolatility):
		return invalid("simulation.min_volatility must be >= 0, got %v", c.MinVolatility)
	case !inUnit(c.StartFillProb):
		return invalid("simulation.start_fill_prob must be in [0,1], got %v", c.StartFillProb)
	}
	return nil
}

// Steps devuelve cuántos pasos ejecuta la ventana (ambos extremos incluidos).
func (c SimConfig) Steps() int64 {
	return (c.EndUs-c.StartUs)/c.StepUs + 1
}

// MarketDynamics controla la deriva estocástica del Market Model.
type MarketDynamics struct {
	VolReversion      float64 // velocidad de reversión de la vol hacia StartVol
	VolOfVol          float64 // shock multiplicativo de la vol
	FillProbReversion float64
	FillProbDrift     float64 // shock multiplicativo de la prob. de fill
	SpreadJitter      float64 // ticks; 0 = spread constante
	JumpProbability   float64 // por paso
	JumpScale         float64 // tamaño del salto en múltiplos de la vol
}

// DefaultMarketDynamics devuelve una dinámica moderada.
func DefaultMarketDynamics() MarketDynamics {
	return MarketDynamics{
		VolReversion:      0.01,
		VolOfVol:          0.02,
		FillProbReversion: 0.01,
		FillProbDrift:     0.02,
		SpreadJitter:      0,
		JumpProbability:   0.0005,
		JumpScale:         5,
	}
}

// Validate rechaza parámetros negativos o probabilidades fuera de rango.
func (d MarketDynamics) Validate() error {
	switch {
	case !inUnit(d.VolReversion):
		return invalid("market.vol_reversion must be in [0,1], got %v", d.VolReversion)
	case !finiteNonNegative(d.VolOfVol):
		return invalid("market.vol_of_vol must be >= 0, got %v", d.VolOfVol)
	case !inUnit(d.FillProbReversion):
		return invalid("market.fill_prob_reversion must be in [0,1], got %v", d.FillProbReversion)
	case !finiteNonNegative(d.FillProbDrift):
		return invalid("market.fill_prob_drift must be >= 0, got %v", d.FillProbDrift)
	case !finiteNonNegative(d.SpreadJitter):
		return invalid("market.spread_jitter must be >= 0, got %v", d.SpreadJitter)
	case !inUnit(d.JumpProbability):
		return invalid("market.jump_probability must be in [0,1], got %v", d.JumpProbability)
	case !finiteNonNegative(d.JumpScale):
		return invalid("market.jump_scale must be >= 0, got %v", d.JumpScale)
	}
	return nil
}

// LatencyProfile son las latencias simuladas en microsegundos, uniformes en [min, max].
type LatencyProfile struct {
	OrderSendMinUs int64
	OrderSendMaxUs int64
	CancelMinUs    int64
	CancelMaxUs    int64
}

// Validate comprueba que cada rango sea no negativo y ordenado.
func (l LatencyProfile) Validate() error {
	if l.OrderSendMinUs < 0 || l.OrderSendMaxUs < l.OrderSendMinUs {
		return invalid("execution.latency.order_send range [%d,%d] is invalid", l.OrderSendMinUs, l.OrderSendMaxUs)
	}
	if l.CancelMinUs < 0 || l.CancelMaxUs < l.CancelMinUs {
		return invalid("execution.latency.cancel range [%d,%d] is invalid", l.CancelMinUs, l.CancelMaxUs)
	}
	return nil
}

// ExecutionConfig controla fills, fees y latencias.
type ExecutionConfig struct {
	MakerFeeTicks      int64   // por unidad; negativo = rebate
	TakerFeeTicks      int64   // por unidad, solo órdenes IOC de aplanado
	FillDecayTicks     float64 // decaimiento de la prob. de fill con la distancia al mid
	PartialFillProb    float64
	FlattenInventoryAt int64 // 0 desactiva el aplanado IOC
	Latency            LatencyProfile
}

// DefaultExecutionConfig: sin fees de maker, 1 tick de taker, fills parciales ocasionales.
func DefaultExecutionConfig() ExecutionConfig {
	return ExecutionConfig{
		MakerFeeTicks:   0,
		TakerFeeTicks:   1,
		FillDecayTicks:  2,
		PartialFillProb: 0.1,
	}
}

// Validate comprueba rangos de probabilidades y el perfil de latencias.
func (e ExecutionConfig) Validate() error {
	switch {
	case e.TakerFeeTicks < 0:
		return invalid("execution.taker_fee_ticks must be >= 0, got %d", e.TakerFeeTicks)
	case !(e.FillDecayTicks > 0) || math.IsInf(e.FillDecayTicks, 0):
		return invalid("execution.fill_decay_ticks must be > 0, got %v", e.FillDecayTicks)
	case !inUnit(e.PartialFillProb):
		return invalid("execution.partial_fill_prob must be in [0,1], got %v", e.PartialFillProb)
	case e.FlattenInventoryAt < 0:
		return invalid("execution.flatten_inventory_at must be >= 0, got %d", e.FlattenInventoryAt)
	}
	return e.Latency.Validate()
}

// MarkingMethod define a qué precio se valora el inventario abierto.
type MarkingMethod string

const (
	MarkMid  MarkingMethod = "MID"
	MarkLast MarkingMethod = "LAST"
)

// MetricsConfig controla el bucketing de retornos y la valoración.
type MetricsConfig struct {
	ReturnBucketUs int64
	Marking        MarkingMethod
}

// DefaultMetricsConfig: buckets de 100ms valorados a mid.
func DefaultMetricsConfig() MetricsConfig {
	return MetricsConfig{ReturnBucketUs: 100_000, Marking: MarkMid}
}

// Validate comprueba el ancho de bucket y el método de valoración.
func (m MetricsConfig) Validate() error {
	if m.ReturnBucketUs <= 0 {
		return invalid("metrics.return_bucket_us must be > 0, got %d", m.ReturnBucketUs)
	}
	if m.Marking != MarkMid && m.Marking != MarkLast {
		return invalid("metrics.marking_method must be MID or LAST, got %q", m.Marking)
	}
	return nil
}

// RunConfig agrupa todo lo necesario para un run. Se pasa por valor.
type RunConfig struct {
	Sim       SimConfig
	Strategy  StrategyConfig
	Market    MarketDynamics
	Execution ExecutionConfig
	Metrics   MetricsConfig
}

// DefaultSimConfig: 10s de simulación a pasos de 100us.
func DefaultSimConfig() SimConfig {
	return SimConfig{
		StartUs:       1,
		EndUs:         10_000_000,
		StepUs:        100,
		StartMidPrice: 10_000,
		StartSpread:   2,
		StartVol:      1.0,
		MinVolatility: 0.5,
		StartFillProb: 0.3,
		Seed:          42,
	}
}

// DefaultRunConfig combina los defaults con la estrategia dada.
func DefaultRunConfig(s StrategyConfig) RunConfig {
	return RunConfig{
		Sim:       DefaultSimConfig(),
		Strategy:  s,
		Market:    DefaultMarketDynamics(),
		Execution: DefaultExecutionConfig(),
		Metrics:   DefaultMetricsConfig(),
	}
}

// Validate valida cada sección; devuelve el primer error.
func (c RunConfig) Validate() error {
	for _, err := range []error{
		c.Sim.Validate(),
		c.Strategy.Validate(),
		c.Market.Validate(),
		c.Execution.Validate(),
		c.Metrics.Validate(),
	} {
		if err != nil {
			return err
		}
	}
	if c.Metrics.ReturnBucketUs < c.Sim.StepUs {
		return invalid("metrics.return_bucket_us (%d) must be >= simulation.step_us (%d)", c.Metrics.ReturnBucketUs, c.Sim.StepUs)
	}
	if f := c.Execution.FlattenInventoryAt; f > 0 && f <= c.Strategy.MaxInv {
		return invalid("execution.flatten_inventory_at (%d) must exceed strategy.max_inv (%d)", f, c.Strategy.MaxInv)
	}
	return nil
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrInvalidConfig}, args...)...)
}

func finiteNonNegative(v float64) bool {
	return v >= 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}

func inUnit(v float64) bool {
	return v >= 0 && v <= 1
}
