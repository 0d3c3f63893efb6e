package storage

// sqlite.go: exportación de la traza de un run.
//
// Estrategia:
//   - `steps`: una fila por paso (mid, spread, posición, PnL).
//   - `fills`: una fila por ejecución, maker o IOC.
//   - `summary`: una única fila con las métricas finales del run.
//   - Cada SaveTrace borra la exportación anterior dentro de la misma
//     transacción: la base contiene siempre exactamente un run.

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/alejandrodnm/pingpong/internal/domain"
	_ "modernc.org/sqlite"
)

const schema = `
-- Serie por paso del run exportado
CREATE TABLE IF NOT EXISTS steps (
    step        INTEGER PRIMARY KEY,
    ts_us       INTEGER NOT NULL,
    mid         INTEGER NOT NULL,
    spread      INTEGER NOT NULL,
    position    INTEGER NOT NULL,
    realized    INTEGER NOT NULL,
    unrealized  INTEGER NOT NULL,
    total_pnl   INTEGER NOT NULL
);

-- Ejecuciones en orden cronológico
CREATE TABLE IF NOT EXISTS fills (
    seq         INTEGER PRIMARY KEY,
    ts_us       INTEGER NOT NULL,
    order_id    INTEGER NOT NULL,
    side        TEXT    NOT NULL,
    price       INTEGER NOT NULL,
    qty         INTEGER NOT NULL,
    mid         INTEGER NOT NULL,
    liquidity   TEXT    NOT NULL,
    fee_ticks   INTEGER NOT NULL DEFAULT 0,
    slippage    INTEGER NOT NULL DEFAULT 0,
    realized    INTEGER NOT NULL DEFAULT 0,
    partial     INTEGER NOT NULL DEFAULT 0
);

-- Siempre 1 fila
CREATE TABLE IF NOT EXISTS summary (
    run_id       TEXT PRIMARY KEY,
    label        TEXT    NOT NULL,
    seed         INTEGER NOT NULL,
    steps        INTEGER NOT NULL,
    fills        INTEGER NOT NULL,
    total_pnl    INTEGER NOT NULL,
    realized     INTEGER NOT NULL,
    unrealized   INTEGER NOT NULL,
    fees_ticks   INTEGER NOT NULL,
    position     INTEGER NOT NULL,
    fill_ratio   REAL    NOT NULL,
    sharpe       REAL    NOT NULL,
    max_drawdown INTEGER NOT NULL,
    exported_at  TEXT    NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_fills_ts ON fills(ts_us);
`

// ErrNoMetrics se devuelve al exportar un run que no terminó.
var ErrNoMetrics = errors.New("run has no metrics")

// SQLiteStorage implementa ports.TraceStorage usando SQLite (pure Go, sin CGo).
type SQLiteStorage struct {
	db  *sql.DB
	now func() time.Time
}

// NewSQLiteStorage abre (o crea) la base de datos en la ruta dada y aplica el schema.
func NewSQLiteStorage(path string) (*SQLiteStorage, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("storage.NewSQLiteStorage: open %q: %w", path, err)
	}
	db.SetMaxOpenConns(1) // SQLite es single-writer; además :memory: es por conexión
	db.SetMaxIdleConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage.NewSQLiteStorage: apply schema: %w", err)
	}
	return &SQLiteStorage{db: db, now: time.Now}, nil
}

// SaveTrace reemplaza la traza exportada por la del run dado.
func (s *SQLiteStorage) SaveTrace(ctx context.Context, r domain.RunResult) error {
	if r.Metrics == nil {
		return fmt.Errorf("storage.SaveTrace: %s: %w", r.Label, ErrNoMetrics)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("storage.SaveTrace: begin tx: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"steps", "fills", "summary"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("storage.SaveTrace: clear %s: %w", table, err)
		}
	}

	if err := insertSteps(ctx, tx, r.Metrics.Record()); err != nil {
		return err
	}
	if err := insertFills(ctx, tx, r.Fills); err != nil {
		return err
	}

	sum := domain.NewTraceSummary(r, s.now().UTC())
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO summary
			(run_id, label, seed, steps, fills, total_pnl, realized, unrealized,
			 fees_ticks, position, fill_ratio, sharpe, max_drawdown, exported_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		sum.RunID, sum.Label, int64(sum.Seed), sum.Steps, sum.Fills,
		sum.TotalPnL, sum.RealizedPnL, sum.UnrealizedPnL, sum.FeesTicks,
		sum.Position, sum.FillRatio, sum.SharpeRatio, sum.MaxDrawdown,
		sum.ExportedAt.Format(time.RFC3339Nano),
	); err != nil {
		return fmt.Errorf("storage.SaveTrace: insert summary: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("storage.SaveTrace: commit: %w", err)
	}
	return nil
}

func insertSteps(ctx context.Context, tx *sql.Tx, rec domain.MetricsRecord) error {
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO steps (step, ts_us, mid, spread, position, realized, unrealized, total_pnl)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("storage.SaveTrace: prepare steps: %w", err)
	}
	defer stmt.Close()

	for i, ts := range rec.TimestampSeries {
		if _, err := stmt.ExecContext(ctx,
			i, ts,
			rec.MidPriceSeries[i],
			rec.SpreadSeries[i],
			rec.PositionSeries[i],
			rec.RealizedSeries[i],
			rec.UnrealizedSeries[i],
			rec.TotalPnLSeries[i],
		); err != nil {
			return fmt.Errorf("storage.SaveTrace: insert step %d: %w", i, err)
		}
	}
	return nil
}

func insertFills(ctx context.Context, tx *sql.Tx, fills []domain.Fill) error {
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO fills
			(seq, ts_us, order_id, side, price, qty, mid, liquidity, fee_ticks, slippage, realized, partial)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("storage.SaveTrace: prepare fills: %w", err)
	}
	defer stmt.Close()

	for i, f := range fills {
		partial := 0
		if f.Partial {
			partial = 1
		}
		if _, err := stmt.ExecContext(ctx,
			i, f.Timestamp, f.OrderID, f.Side.String(), f.Price, f.Quantity, f.MidAtFill,
			string(f.Liquidity), f.FeeTicks, f.SlippageTick, f.RealizedPnL, partial,
		); err != nil {
			return fmt.Errorf("storage.SaveTrace: insert fill %d: %w", i, err)
		}
	}
	return nil
}

// LoadSummary devuelve el resumen exportado. ok=false si la base está vacía.
func (s *SQLiteStorage) LoadSummary(ctx context.Context) (domain.TraceSummary, bool, error) {
	var sum domain.TraceSummary
	var seed int64
	var exportedAt string

	err := s.db.QueryRowContext(ctx, `
		SELECT run_id, label, seed, steps, fills, total_pnl, realized, unrealized,
		       fees_ticks, position, fill_ratio, sharpe, max_drawdown, exported_at
		FROM summary LIMIT 1`,
	).Scan(
		&sum.RunID, &sum.Label, &seed, &sum.Steps, &sum.Fills,
		&sum.TotalPnL, &sum.RealizedPnL, &sum.UnrealizedPnL, &sum.FeesTicks,
		&sum.Position, &sum.FillRatio, &sum.SharpeRatio, &sum.MaxDrawdown, &exportedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.TraceSummary{}, false, nil
	}
	if err != nil {
		return domain.TraceSummary{}, false, fmt.Errorf("storage.LoadSummary: scan: %w", err)
	}

	sum.Seed = uint64(seed)
	sum.ExportedAt, _ = time.Parse(time.RFC3339Nano, exportedAt)
	return sum, true, nil
}

// LoadFills devuelve los fills exportados en orden.
func (s *SQLiteStorage) LoadFills(ctx context.Context) ([]domain.Fill, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT ts_us, order_id, side, price, qty, mid, liquidity, fee_ticks, slippage, realized, partial
		FROM fills ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("storage.LoadFills: query: %w", err)
	}
	defer rows.Close()

	var fills []domain.Fill
	for rows.Next() {
		var f domain.Fill
		var side, liq string
		var partial int
		if err := rows.Scan(
			&f.Timestamp, &f.OrderID, &side, &f.Price, &f.Quantity, &f.MidAtFill,
			&liq, &f.FeeTicks, &f.SlippageTick, &f.RealizedPnL, &partial,
		); err != nil {
			return nil, fmt.Errorf("storage.LoadFills: scan row: %w", err)
		}
		f.Side = domain.SideBid
		if side == domain.SideAsk.String() {
			f.Side = domain.SideAsk
		}
		f.Liquidity = domain.Liquidity(liq)
		f.Partial = partial == 1
		fills = append(fills, f)
	}
	return fills, rows.Err()
}

// CountSteps devuelve cuántos pasos tiene la traza exportada.
func (s *SQLiteStorage) CountSteps(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM steps`).Scan(&n); err != nil {
		return 0, fmt.Errorf("storage.CountSteps: %w", err)
	}
	return n, nil
}

// Close cierra la conexión a la base de datos.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}
