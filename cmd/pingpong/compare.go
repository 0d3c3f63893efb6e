package main

import (
	"context"
	"log/slog"

	"github.com/alejandrodnm/pingpong/config"
	"github.com/alejandrodnm/pingpong/internal/application/runner"
	"github.com/alejandrodnm/pingpong/internal/ports"
	"github.com/alejandrodnm/pingpong/internal/strategy"
)

// runCompare corre todos los perfiles con la misma semilla, así que todos ven
// el mismo camino de mercado. Si hay overrides de estrategia se añade un perfil
// "custom" basado en el perfil configurado.
func runCompare(ctx context.Context, r *runner.Runner, cfg *config.Config, registry strategy.Registry, ov *overrides, notifier ports.Notifier) error {
	if ov.strategyChanged() {
		base, ok := registry.Get(cfg.Strategy.Profile)
		if !ok {
			base, _ = registry.Get(strategy.Balanced)
		}
		rc := cfg.RunConfig(base.Config)
		ov.apply(&rc)
		custom := strategy.Profile{
			Name:        "custom",
			Description: "Overrides on top of " + base.Name,
			Config:      rc.Strategy,
		}
		if err := registry.Register(custom); err != nil {
			return err
		}
	}

	profiles := registry.List()
	jobs := make([]runner.Job, 0, len(profiles))
	for _, p := range profiles {
		rc := cfg.RunConfig(p.Config)
		ov.applySim(&rc)
		jobs = append(jobs, runner.Job{Label: p.Name, Config: rc})
	}

	slog.Info("=== COMPARE MODE ===", "profiles", len(jobs), "seed", jobs[0].Config.Sim.Seed, "workers", r.Workers())

	results, err := r.RunMany(ctx, jobs)
	if nerr := notifier.NotifyComparison(ctx, results); nerr != nil {
		slog.Warn("notifier error", "err", nerr)
	}
	return err
}
