package domain

import "time"

// RunResult es lo que la orquestación recibe de un run completado.
type RunResult struct {
	RunID       string
	Label       string // nombre del perfil o "seed=N"
	Config      RunConfig
	Metrics     *Metrics
	Fills       []Fill
	Elapsed     time.Duration // tiempo de pared, solo informativo
	CompletedAt time.Time
}

// SeedSummary agrega el PnL total de un barrido de semillas.
type SeedSummary struct {
	Runs     int
	MeanPnL  float64
	MinPnL   int64
	MaxPnL   int64
	MeanFill float64
}

// SummarizeSeeds agrega los resultados que tengan métricas.
func SummarizeSeeds(results []RunResult) SeedSummary {
	var s SeedSummary
	var sumPnL, sumFill float64
	for _, r := range results {
		if r.Metrics == nil {
			continue
		}
		pnl := r.Metrics.TotalPnLTicks()
		if s.Runs == 0 || pnl < s.MinPnL {
			s.MinPnL = pnl
		}
		if s.Runs == 0 || pnl > s.MaxPnL {
			s.MaxPnL = pnl
		}
		sumPnL += float64(pnl)
		sumFill += r.Metrics.FillRatio()
		s.Runs++
	}
	if s.Runs > 0 {
		s.MeanPnL = sumPnL / float64(s.Runs)
		s.MeanFill = sumFill / float64(s.Runs)
	}
	return s
}

// TraceSummary es la fila de resumen de una traza exportada.
type TraceSummary struct {
	RunID         string
	Label         string
	Seed          uint64
	Steps         int
	Fills         int
	TotalPnL      int64
	RealizedPnL   int64
	UnrealizedPnL int64
	FeesTicks     int64
	Position      int64
	FillRatio     float64
	SharpeRatio   float64
	MaxDrawdown   int64
	ExportedAt    time.Time
}

// NewTraceSummary resume un run completado. El resultado debe tener Metrics.
func NewTraceSummary(r RunResult, exportedAt time.Time) TraceSummary {
	m := r.Metrics
	return TraceSummary{
		RunID:         r.RunID,
		Label:         r.Label,
		Seed:          r.Config.Sim.Seed,
		Steps:         m.Steps(),
		Fills:         len(r.Fills),
		TotalPnL:      m.TotalPnLTicks(),
		RealizedPnL:   m.RealizedPnLTicks(),
		UnrealizedPnL: m.UnrealizedPnLTicks(),
		FeesTicks:     m.FeesTicks(),
		Position:      m.Position(),
		FillRatio:     m.FillRatio(),
		SharpeRatio:   m.SharpeRatio(),
		MaxDrawdown:   m.MaxDrawdownTicks(),
		ExportedAt:    exportedAt,
	}
}
