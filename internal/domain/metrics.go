package domain

// MetricsRecord son los hechos registrados durante un run: series por paso,
// retornos por bucket y contadores. No contiene ninguna estadística derivada.
type MetricsRecord struct {
	ReturnBucketUs int64

	TimestampSeries  []int64
	TotalPnLSeries   []int64
	RealizedSeries   []int64
	UnrealizedSeries []int64
	PositionSeries   []int64
	MidPriceSeries   []int64
	SpreadSeries     []int64
	ReturnsSeries    []int64 // delta de PnL total por bucket

	Position          int64
	AverageCost       float64
	RealizedPnL       int64
	UnrealizedPnL     int64 // al último paso, contra el precio de valoración
	FeesTicks         int64
	TotalSlippage     int64
	RestingAttempted  int64
	RestingFilled     int64
	RestingCancelled  int64
	GrossTraded       int64
	InventoryBreaches int64
}

// Metrics es el resultado congelado de un run. Solo lectura: todos los ratios
// se calculan bajo demanda sobre las series almacenadas.
type Metrics struct {
	rec MetricsRecord
}

// NewMetrics congela un record. Las series se copian: mutar el record después
// no afecta a Metrics.
func NewMetrics(rec MetricsRecord) *Metrics {
	frozen := rec
	frozen.TimestampSeries = clone(rec.TimestampSeries)
	frozen.TotalPnLSeries = clone(rec.TotalPnLSeries)
	frozen.RealizedSeries = clone(rec.RealizedSeries)
	frozen.UnrealizedSeries = clone(rec.UnrealizedSeries)
	frozen.PositionSeries = clone(rec.PositionSeries)
	frozen.MidPriceSeries = clone(rec.MidPriceSeries)
	frozen.SpreadSeries = clone(rec.SpreadSeries)
	frozen.ReturnsSeries = clone(rec.ReturnsSeries)
	return &Metrics{rec: frozen}
}

// Record devuelve una copia de los hechos registrados.
func (m *Metrics) Record() MetricsRecord {
	return NewMetrics(m.rec).rec
}

// --- PnL ---

func (m *Metrics) RealizedPnLTicks() int64   { return m.rec.RealizedPnL }
func (m *Metrics) UnrealizedPnLTicks() int64 { return m.rec.UnrealizedPnL }
func (m *Metrics) FeesTicks() int64          { return m.rec.FeesTicks }

// TotalPnLTicks = realizado + no realizado - fees.
func (m *Metrics) TotalPnLTicks() int64 {
	return safeSub(safeAdd(m.rec.RealizedPnL, m.rec.UnrealizedPnL), m.rec.FeesTicks)
}

// --- riesgo ---

// SharpeRatio anualizado según el ancho de bucket del run.
func (m *Metrics) SharpeRatio() float64 {
	return SharpeRatio(m.rec.ReturnsSeries, BucketsPerYear(m.rec.ReturnBucketUs))
}

// MaxDrawdownTicks sobre la serie de PnL total por paso.
func (m *Metrics) MaxDrawdownTicks() int64 {
	return MaxDrawdown(m.rec.TotalPnLSeries)
}

// Volatility es la desviación poblacional de los retornos por bucket, sin anualizar.
func (m *Metrics) Volatility() float64 {
	return PopulationStdDev(m.rec.ReturnsSeries)
}

// --- performance ---

func (m *Metrics) WinRate() float64     { return WinRate(m.rec.ReturnsSeries) }
func (m *Metrics) GrossProfit() float64 { return GrossProfit(m.rec.ReturnsSeries) }
func (m *Metrics) GrossLoss() float64   { return GrossLoss(m.rec.ReturnsSeries) }

// ProfitFactor es +Inf sin pérdidas y con beneficio, 0 sin ninguno de los dos.
func (m *Metrics) ProfitFactor() float64 {
	return ProfitFactor(m.GrossProfit(), m.GrossLoss())
}

// --- actividad ---

func (m *Metrics) Position() int64            { return m.rec.Position }
func (m *Metrics) AverageCostTicks() float64  { return m.rec.AverageCost }
func (m *Metrics) GrossTradedQty() int64      { return m.rec.GrossTraded }
func (m *Metrics) TotalSlippageTicks() int64  { return m.rec.TotalSlippage }
func (m *Metrics) RestingAttemptedQty() int64 { return m.rec.RestingAttempted }
func (m *Metrics) RestingFilledQty() int64    { return m.rec.RestingFilled }
func (m *Metrics) RestingCancelledQty() int64 { return m.rec.RestingCancelled }
func (m *Metrics) InventoryBreaches() int64   { return m.rec.InventoryBreaches }
func (m *Metrics) ReturnBucketUs() int64      { return m.rec.ReturnBucketUs }
func (m *Metrics) Steps() int                 { return len(m.rec.TimestampSeries) }

// FillRatio = filled / attempted, 0 si no hubo intentos.
func (m *Metrics) FillRatio() float64 {
	return FillRatio(m.rec.RestingFilled, m.rec.RestingAttempted)
}

// --- series (copias) ---

func (m *Metrics) TimestampSeries() []int64 { return clone(m.rec.TimestampSeries) }
func (m *Metrics) ReturnsSeries() []int64   { return clone(m.rec.ReturnsSeries) }
func (m *Metrics) TotalPnLSeries() []int64  { return clone(m.rec.TotalPnLSeries) }
func (m *Metrics) PositionSeries() []int64  { return clone(m.rec.PositionSeries) }
func (m *Metrics) MidPriceSeries() []int64  { return clone(m.rec.MidPriceSeries) }

func clone(xs []int64) []int64 {
	if xs == nil {
		return nil
	}
	out := make([]int64, len(xs))
	copy(out, xs)
	return out
}
