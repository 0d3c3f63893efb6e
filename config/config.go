package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/alejandrodnm/pingpong/internal/domain"
)

// Config es la configuración completa del simulador.
type Config struct {
	Simulation SimulationConfig `yaml:"simulation"`
	Market     MarketConfig     `yaml:"market"`
	Strategy   StrategyConfig   `yaml:"strategy"`
	Execution  ExecutionConfig  `yaml:"execution"`
	Metrics    MetricsConfig    `yaml:"metrics"`
	Runner     RunnerConfig     `yaml:"runner"`
	Trace      TraceConfig      `yaml:"trace"`
	Log        LogConfig        `yaml:"log"`
}

// SimulationConfig es la ventana temporal y el estado inicial del mercado.
type SimulationConfig struct {
	StartingTimestampUs int64   `yaml:"starting_timestamp_us"`
	EndingTimestampUs   int64   `yaml:"ending_timestamp_us"`
	StepUs              int64   `yaml:"step_us"`
	StartingMidPrice    int64   `yaml:"starting_mid_price"` // ticks
	StartSpread         int64   `yaml:"start_spread"`
	StartVol            float64 `yaml:"start_vol"`
	MinVolatility       float64 `yaml:"min_volatility"`
	StartFillProb       float64 `yaml:"start_fill_prob"`
	Seed                uint64  `yaml:"seed"`
}

// MarketConfig controla la deriva del mercado sintético.
type MarketConfig struct {
	VolReversion      float64 `yaml:"vol_reversion"`
	VolOfVol          float64 `yaml:"vol_of_vol"`
	FillProbReversion float64 `yaml:"fill_prob_reversion"`
	FillProbDrift     float64 `yaml:"fill_prob_drift"`
	SpreadJitter      float64 `yaml:"spread_jitter"`
	JumpProbability   float64 `yaml:"jump_probability"`
	JumpScale         float64 `yaml:"jump_scale"`
}

// StrategyConfig elige el perfil y, opcionalmente, sobreescribe parámetros sueltos.
// Un campo nil conserva el valor del perfil.
type StrategyConfig struct {
	Profile         string `yaml:"profile"`
	QuoteSize       *int64 `yaml:"quote_size"`
	TickOffset      *int64 `yaml:"tick_offset"`
	MaxInv          *int64 `yaml:"max_inv"`
	CancelThreshold *int64 `yaml:"cancel_threshold"`
	CooldownUs      *int64 `yaml:"cooldown_us"`
}

// ExecutionConfig son fees, fills y latencias.
type ExecutionConfig struct {
	MakerFeeTicks      int64         `yaml:"maker_fee_ticks"` // negativo = rebate
	TakerFeeTicks      int64         `yaml:"taker_fee_ticks"`
	FillDecayTicks     float64       `yaml:"fill_decay_ticks"`
	PartialFillProb    float64       `yaml:"partial_fill_prob"`
	FlattenInventoryAt int64         `yaml:"flatten_inventory_at"` // 0 = desactivado
	Latency            LatencyConfig `yaml:"latency"`
}

// LatencyConfig son los rangos de latencia simulada en microsegundos.
type LatencyConfig struct {
	OrderSendMinUs int64 `yaml:"order_send_min_us"`
	OrderSendMaxUs int64 `yaml:"order_send_max_us"`
	CancelMinUs    int64 `yaml:"cancel_min_us"`
	CancelMaxUs    int64 `yaml:"cancel_max_us"`
}

// MetricsConfig controla buckets de retorno, valoración y presentación.
type MetricsConfig struct {
	ReturnBucketUs int64  `yaml:"return_bucket_us"`
	MarkingMethod  string `yaml:"marking_method"` // MID | LAST
	TickSize       string `yaml:"tick_size"`      // solo para mostrar precios; "" = ticks puros
}

// RunnerConfig controla el pool de workers para compare y seed sweeps.
type RunnerConfig struct {
	Workers int `yaml:"workers"` // 0 = NumCPU
	Seeds   int `yaml:"seeds"`
}

// TraceConfig controla la exportación SQLite de un run.
type TraceConfig struct {
	DSN string `yaml:"dsn"` // "" = sin exportación
}

// LogConfig controla el formato y nivel de logging.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug | info | warn | error
	Format string `yaml:"format"` // text | json
}

// Default devuelve la configuración sin archivo: los defaults del dominio con
// el perfil balanced.
func Default() Config {
	sim := domain.DefaultSimConfig()
	mkt := domain.DefaultMarketDynamics()
	exec := domain.DefaultExecutionConfig()
	met := domain.DefaultMetricsConfig()
	return Config{
		Simulation: SimulationConfig{
			StartingTimestampUs: sim.StartUs,
			EndingTimestampUs:   sim.EndUs,
			StepUs:              sim.StepUs,
			StartingMidPrice:    sim.StartMidPrice,
			StartSpread:         sim.StartSpread,
			StartVol:            sim.StartVol,
			MinVolatility:       sim.MinVolatility,
			StartFillProb:       sim.StartFillProb,
			Seed:                sim.Seed,
		},
		Market: MarketConfig{
			VolReversion:      mkt.VolReversion,
			VolOfVol:          mkt.VolOfVol,
			FillProbReversion: mkt.FillProbReversion,
			FillProbDrift:     mkt.FillProbDrift,
			SpreadJitter:      mkt.SpreadJitter,
			JumpProbability:   mkt.JumpProbability,
			JumpScale:         mkt.JumpScale,
		},
		Strategy: StrategyConfig{Profile: "balanced"},
		Execution: ExecutionConfig{
			MakerFeeTicks:      exec.MakerFeeTicks,
			TakerFeeTicks:      exec.TakerFeeTicks,
			FillDecayTicks:     exec.FillDecayTicks,
			PartialFillProb:    exec.PartialFillProb,
			FlattenInventoryAt: exec.FlattenInventoryAt,
		},
		Metrics: MetricsConfig{
			ReturnBucketUs: met.ReturnBucketUs,
			MarkingMethod:  string(met.Marking),
		},
		Runner: RunnerConfig{Seeds: 1},
		Log:    LogConfig{Level: "info", Format: "text"},
	}
}

// Load carga la configuración desde el archivo YAML y el archivo .env si existe.
// Las claves ausentes del YAML conservan el valor de Default; con path vacío
// solo se aplican defaults y variables de entorno.
func Load(path string) (*Config, error) {
	// Cargar .env si existe (silencia error si no hay archivo)
	_ = godotenv.Load()

	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config.Load: read %q: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("config.Load: parse YAML: %w", err)
		}
	}

	if err := applyEnvOverrides(&cfg); err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}
	setDefaults(&cfg)

	if _, err := cfg.TickSize(); err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}
	return &cfg, nil
}

// RunConfig construye la configuración de un run a partir de un perfil base,
// aplicando encima los overrides de la sección strategy. No valida: eso lo hace
// el motor al construirse.
func (c *Config) RunConfig(base domain.StrategyConfig) domain.RunConfig {
	s := base
	override(&s.QuoteSize, c.Strategy.QuoteSize)
	override(&s.TickOffset, c.Strategy.TickOffset)
	override(&s.MaxInv, c.Strategy.MaxInv)
	override(&s.CancelThreshold, c.Strategy.CancelThreshold)
	override(&s.CooldownUs, c.Strategy.CooldownUs)

	sim := c.Simulation
	mkt := c.Market
	exec := c.Execution
	return domain.RunConfig{
		Sim: domain.SimConfig{
			StartUs:       sim.StartingTimestampUs,
			EndUs:         sim.EndingTimestampUs,
			StepUs:        sim.StepUs,
			StartMidPrice: sim.StartingMidPrice,
			StartSpread:   sim.StartSpread,
			StartVol:      sim.StartVol,
			MinVolatility: sim.MinVolatility,
			StartFillProb: sim.StartFillProb,
			Seed:          sim.Seed,
		},
		Strategy: s,
		Market: domain.MarketDynamics{
			VolReversion:      mkt.VolReversion,
			VolOfVol:          mkt.VolOfVol,
			FillProbReversion: mkt.FillProbReversion,
			FillProbDrift:     mkt.FillProbDrift,
			SpreadJitter:      mkt.SpreadJitter,
			JumpProbability:   mkt.JumpProbability,
			JumpScale:         mkt.JumpScale,
		},
		Execution: domain.ExecutionConfig{
			MakerFeeTicks:      exec.MakerFeeTicks,
			TakerFeeTicks:      exec.TakerFeeTicks,
			FillDecayTicks:     exec.FillDecayTicks,
			PartialFillProb:    exec.PartialFillProb,
			FlattenInventoryAt: exec.FlattenInventoryAt,
			Latency: domain.LatencyProfile{
				OrderSendMinUs: exec.Latency.OrderSendMinUs,
				OrderSendMaxUs: exec.Latency.OrderSendMaxUs,
				CancelMinUs:    exec.Latency.CancelMinUs,
				CancelMaxUs:    exec.Latency.CancelMaxUs,
			},
		},
		Metrics: domain.MetricsConfig{
			ReturnBucketUs: c.Metrics.ReturnBucketUs,
			Marking:        domain.MarkingMethod(c.Metrics.MarkingMethod),
		},
	}
}

// TickSize devuelve el valor monetario de un tick. Cero si no está configurado.
func (c *Config) TickSize() (decimal.Decimal, error) {
	if c.Metrics.TickSize == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(c.Metrics.TickSize)
	if err != nil {
		return decimal.Zero, fmt.Errorf("metrics.tick_size %q: %w", c.Metrics.TickSize, err)
	}
	if d.IsNegative() {
		return decimal.Zero, fmt.Errorf("metrics.tick_size %q: %w: must be >= 0", c.Metrics.TickSize, domain.ErrInvalidConfig)
	}
	return d, nil
}

func override(dst *int64, v *int64) {
	if v != nil {
		*dst = *v
	}
}

// applyEnvOverrides sobreescribe valores con variables de entorno si están presentes.
func applyEnvOverrides(cfg *Config) error {
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
	if v := os.Getenv("PINGPONG_SEED"); v != "" {
		seed, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return fmt.Errorf("PINGPONG_SEED %q: %w", v, err)
		}
		cfg.Simulation.Seed = seed
	}
	if v := os.Getenv("PINGPONG_TRACE_DSN"); v != "" {
		cfg.Trace.DSN = v
	}
	return nil
}

// setDefaults asegura que los valores de texto y del runner tengan valores sensatos.
// Los numéricos de la simulación no se tocan: un cero puede ser intencional y la
// validación del dominio decide.
func setDefaults(cfg *Config) {
	if cfg.Strategy.Profile == "" {
		cfg.Strategy.Profile = "balanced"
	}
	cfg.Metrics.MarkingMethod = strings.ToUpper(cfg.Metrics.MarkingMethod)
	if cfg.Metrics.MarkingMethod == "" {
		cfg.Metrics.MarkingMethod = string(domain.MarkMid)
	}
	if cfg.Runner.Workers < 0 {
		cfg.Runner.Workers = 0
	}
	if cfg.Runner.Seeds <= 0 {
		cfg.Runner.Seeds = 1
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}
}
