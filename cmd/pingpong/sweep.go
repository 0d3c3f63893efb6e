package main

import (
	"context"
	"log/slog"

	"github.com/alejandrodnm/pingpong/internal/application/runner"
	"github.com/alejandrodnm/pingpong/internal/domain"
	"github.com/alejandrodnm/pingpong/internal/ports"
)

// runSeedSweep repite el mismo run con n semillas consecutivas para medir
// cuánto del resultado es ruido del mercado sintético.
func runSeedSweep(ctx context.Context, r *runner.Runner, rc domain.RunConfig, n int, notifier ports.Notifier) error {
	slog.Info("=== SEED SWEEP ===", "first_seed", rc.Sim.Seed, "seeds", n, "workers", r.Workers())

	results, err := r.RunMany(ctx, runner.SeedJobs(rc, n))
	summary := domain.SummarizeSeeds(results)
	if nerr := notifier.NotifySeedSweep(ctx, results, summary); nerr != nil {
		slog.Warn("notifier error", "err", nerr)
	}
	return err
}
