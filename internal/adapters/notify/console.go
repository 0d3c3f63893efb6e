package notify

import (
	"context"
	"fmt"
	"io"
	"math"
	"os"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/shopspring/decimal"

	"github.com/alejandrodnm/pingpong/internal/application/engine"
	"github.com/alejandrodnm/pingpong/internal/domain"
	"github.com/alejandrodnm/pingpong/internal/strategy"
)

// Console implementa ports.Notifier.
type Console struct {
	out      io.Writer
	tickSize decimal.Decimal // 0 = solo ticks
	compact  bool
}

// NewConsole crea un notificador que escribe a stdout.
func NewConsole(tickSize decimal.Decimal, compact bool) *Console {
	return &Console{out: os.Stdout, tickSize: tickSize, compact: compact}
}

// NewConsoleWriter crea un notificador para tests.
func NewConsoleWriter(w io.Writer, tickSize decimal.Decimal, compact bool) *Console {
	return &Console{out: w, tickSize: tickSize, compact: compact}
}

// NotifyRun imprime el resumen de un run en el modo configurado.
func (c *Console) NotifyRun(_ context.Context, r domain.RunResult) error {
	if r.Metrics == nil {
		fmt.Fprintf(c.out, "[%s] %s: no metrics\n", time.Now().Format("15:04:05"), r.Label)
		return nil
	}
	if c.compact {
		c.printCompact(r)
		return nil
	}
	c.printSummary(r)
	return nil
}

// printCompact imprime lo esencial en una línea.
func (c *Console) printCompact(r domain.RunResult) {
	m := r.Metrics
	fmt.Fprintf(c.out, "[%s] %s pnl:%s sharpe:%.2f dd:%d fill:%.1f%% pos:%d\n",
		time.Now().Format("15:04:05"), compactLabel(r.Label, 24),
		c.money(m.TotalPnLTicks()), m.SharpeRatio(), m.MaxDrawdownTicks(),
		m.FillRatio()*100, m.Position())
}

// printSummary imprime las secciones PnL / Risk / Performance / Activity / Orders / Series.
func (c *Console) printSummary(r domain.RunResult) {
	m := r.Metrics
	s := r.Config.Strategy
	sim := r.Config.Sim

	fmt.Fprintf(c.out, "\n=== PING-PONG SIMULATION: %s ===\n", r.Label)
	fmt.Fprintf(c.out, "  run:      %s\n", r.RunID)
	fmt.Fprintf(c.out, "  window:   %dus → %dus step %dus (%d steps) seed %d\n",
		sim.StartUs, sim.EndUs, sim.StepUs, m.Steps(), sim.Seed)
	fmt.Fprintf(c.out, "  strategy: size=%d offset=%d max_inv=%d cancel=%d cooldown=%dus\n",
		s.QuoteSize, s.TickOffset, s.MaxInv, s.CancelThreshold, s.CooldownUs)

	table := tablewriter.NewWriter(c.out)
	table.Header("Section", "Metric", "Value")

	table.Append("PnL", "Total", c.money(m.TotalPnLTicks()))
	table.Append("PnL", "Realized", c.money(m.RealizedPnLTicks()))
	table.Append("PnL", "Unrealized", c.money(m.UnrealizedPnLTicks()))
	table.Append("PnL", "Fees", c.money(m.FeesTicks()))

	table.Append("Risk", "Sharpe", fmt.Sprintf("%.3f", m.SharpeRatio()))
	table.Append("Risk", "Max drawdown", c.money(m.MaxDrawdownTicks()))
	table.Append("Risk", "Volatility", fmt.Sprintf("%.3f ticks/bucket", m.Volatility()))

	table.Append("Performance", "Win rate", fmt.Sprintf("%.1f%%", m.WinRate()*100))
	table.Append("Performance", "Gross profit", fmt.Sprintf("%.0f", m.GrossProfit()))
	table.Append("Performance", "Gross loss", fmt.Sprintf("%.0f", m.GrossLoss()))
	table.Append("Performance", "Profit factor", ratioLabel(m.ProfitFactor()))

	table.Append("Activity", "Position", fmt.Sprintf("%d", m.Position()))
	table.Append("Activity", "Avg cost", c.price(m.AverageCostTicks()))
	table.Append("Activity", "Gross traded", fmt.Sprintf("%d", m.GrossTradedQty()))
	table.Append("Activity", "Slippage", c.money(m.TotalSlippageTicks()))
	table.Append("Activity", "Inventory breaches", fmt.Sprintf("%d steps", m.InventoryBreaches()))

	table.Append("Orders", "Attempted", fmt.Sprintf("%d", m.RestingAttemptedQty()))
	table.Append("Orders", "Filled", fmt.Sprintf("%d", m.RestingFilledQty()))
	table.Append("Orders", "Cancelled", fmt.Sprintf("%d", m.RestingCancelledQty()))
	table.Append("Orders", "Fill ratio", fmt.Sprintf("%.1f%%", m.FillRatio()*100))

	table.Append("Series", "Steps", fmt.Sprintf("%d", m.Steps()))
	table.Append("Series", "Return buckets", fmt.Sprintf("%d × %dus", len(m.ReturnsSeries()), m.ReturnBucketUs()))
	table.Append("Series", "Fills", fmt.Sprintf("%d", len(r.Fills)))
	table.Render()

	if r.Elapsed > 0 {
		fmt.Fprintf(c.out, "  simulated in %s\n", r.Elapsed.Round(time.Millisecond))
	}
	fmt.Fprintln(c.out)
}

// NotifyComparison imprime una fila por run, ordenadas como llegan.
func (c *Console) NotifyComparison(_ context.Context, results []domain.RunResult) error {
	if len(results) == 0 {
		fmt.Fprintln(c.out, "  No runs to compare.")
		return nil
	}

	fmt.Fprintf(c.out, "\n=== STRATEGY COMPARISON (%d runs) ===\n", len(results))

	table := tablewriter.NewWriter(c.out)
	table.Header("Profile", "Total PnL", "Realized", "Sharpe", "Max DD", "Win", "PF", "Fill", "Pos", "Traded")

	best, bestPnL := "", int64(math.MinInt64)
	for _, r := range results {
		if r.Metrics == nil {
			table.Append(r.Label, "FAILED", "-", "-", "-", "-", "-", "-", "-", "-")
			continue
		}
		m := r.Metrics
		table.Append(
			r.Label,
			c.money(m.TotalPnLTicks()),
			c.money(m.RealizedPnLTicks()),
			fmt.Sprintf("%.2f", m.SharpeRatio()),
			fmt.Sprintf("%d", m.MaxDrawdownTicks()),
			fmt.Sprintf("%.0f%%", m.WinRate()*100),
			ratioLabel(m.ProfitFactor()),
			fmt.Sprintf("%.1f%%", m.FillRatio()*100),
			fmt.Sprintf("%d", m.Position()),
			fmt.Sprintf("%d", m.GrossTradedQty()),
		)
		if m.TotalPnLTicks() > bestPnL {
			best, bestPnL = r.Label, m.TotalPnLTicks()
		}
	}
	table.Render()

	if best != "" {
		fmt.Fprintf(c.out, "  Best total PnL: %s (%s)\n\n", best, c.money(bestPnL))
	}
	return nil
}

// NotifySeedSweep imprime un run por semilla y el agregado.
func (c *Console) NotifySeedSweep(_ context.Context, results []domain.RunResult, sum domain.SeedSummary) error {
	fmt.Fprintf(c.out, "\n=== SEED SWEEP (%d runs) ===\n", len(results))

	table := tablewriter.NewWriter(c.out)
	table.Header("Seed", "Total PnL", "Sharpe", "Max DD", "Fill", "Traded")
	for _, r := range results {
		if r.Metrics == nil {
			table.Append(fmt.Sprintf("%d", r.Config.Sim.Seed), "FAILED", "-", "-", "-", "-")
			continue
		}
		m := r.Metrics
		table.Append(
			fmt.Sprintf("%d", r.Config.Sim.Seed),
			c.money(m.TotalPnLTicks()),
			fmt.Sprintf("%.2f", m.SharpeRatio()),
			fmt.Sprintf("%d", m.MaxDrawdownTicks()),
			fmt.Sprintf("%.1f%%", m.FillRatio()*100),
			fmt.Sprintf("%d", m.GrossTradedQty()),
		)
	}
	table.Render()

	if sum.Runs == 0 {
		fmt.Fprintln(c.out, "  No successful runs.")
		return nil
	}
	fmt.Fprintf(c.out, "  Total PnL over %d seeds: mean %.1f  min %d  max %d ticks\n",
		sum.Runs, sum.MeanPnL, sum.MinPnL, sum.MaxPnL)
	fmt.Fprintf(c.out, "  Mean fill ratio: %.1f%%\n\n", sum.MeanFill*100)
	return nil
}

// PrintProfiles imprime los perfiles disponibles.
func (c *Console) PrintProfiles(profiles []strategy.Profile) {
	table := tablewriter.NewWriter(c.out)
	table.Header("Profile", "Size", "Offset", "Max inv", "Cancel", "Cooldown", "Description")
	for _, p := range profiles {
		s := p.Config
		table.Append(
			p.Name,
			fmt.Sprintf("%d", s.QuoteSize),
			fmt.Sprintf("%d", s.TickOffset),
			fmt.Sprintf("%d", s.MaxInv),
			fmt.Sprintf("%d", s.CancelThreshold),
			fmt.Sprintf("%dus", s.CooldownUs),
			engine.TruncateStr(p.Description, 48),
		)
	}
	table.Render()
}

// --- helpers ---

// money formatea ticks y, si hay tick size, su valor monetario.
func (c *Console) money(ticks int64) string {
	if c.tickSize.IsZero() {
		return fmt.Sprintf("%d", ticks)
	}
	value := decimal.NewFromInt(ticks).Mul(c.tickSize)
	return fmt.Sprintf("%d ($%s)", ticks, value.StringFixed(int32(decimalPlaces(c.tickSize))))
}

// price formatea un precio medio en ticks.
func (c *Console) price(ticks float64) string {
	if ticks == 0 {
		return "-"
	}
	if c.tickSize.IsZero() {
		return fmt.Sprintf("%.2f", ticks)
	}
	value := decimal.NewFromFloat(ticks).Mul(c.tickSize)
	return fmt.Sprintf("%.2f ($%s)", ticks, value.StringFixed(int32(decimalPlaces(c.tickSize))+2))
}

func decimalPlaces(d decimal.Decimal) int {
	if exp := d.Exponent(); exp < 0 {
		return int(-exp)
	}
	return 0
}

func ratioLabel(v float64) string {
	if math.IsInf(v, 1) {
		return "INF"
	}
	return fmt.Sprintf("%.2f", v)
}

// compactLabel recorta etiquetas largas de perfiles custom.
func compactLabel(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	cut := s[:maxLen]
	if idx := strings.LastIndex(cut, "-"); idx > maxLen/2 {
		cut = cut[:idx]
	}
	return cut + "…"
}
