package runner

// runner.go: worker pool para ejecutar runs independientes en paralelo.
//
// Cada run es una función pura de su configuración: no comparten estado, así que
// el orden de ejecución no afecta a los resultados.

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/alejandrodnm/pingpong/internal/application/engine"
	"github.com/alejandrodnm/pingpong/internal/domain"
)

// Job es un run pendiente con su etiqueta para los reportes.
type Job struct {
	Label  string
	Config domain.RunConfig
}

// Runner ejecuta jobs usando la factory de simuladores inyectada.
type Runner struct {
	factory engine.Factory
	workers int
}

// New crea un Runner. Si workers <= 0 usa runtime.NumCPU().
func New(factory engine.Factory, workers int) *Runner {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &Runner{factory: factory, workers: workers}
}

// Workers devuelve el tamaño efectivo del pool.
func (r *Runner) Workers() int { return r.workers }

// RunOne ejecuta un único job en la goroutine actual.
func (r *Runner) RunOne(ctx context.Context, job Job) (domain.RunResult, error) {
	result := domain.RunResult{
		RunID:  uuid.New().String(),
		Label:  job.Label,
		Config: job.Config,
	}

	sim, err := r.factory(job.Config)
	if err != nil {
		return result, fmt.Errorf("runner.RunOne: %s: build: %w", job.Label, err)
	}

	started := time.Now()
	metrics, err := sim.Run(ctx)
	if err != nil {
		return result, fmt.Errorf("runner.RunOne: %s: run: %w", job.Label, err)
	}

	result.Metrics = metrics
	result.Fills = sim.Fills()
	result.Elapsed = time.Since(started)
	result.CompletedAt = time.Now().UTC()
	return result, nil
}

// RunMany ejecuta todos los jobs en el pool. Los resultados vuelven en el orden
// de los jobs; un job fallido deja su resultado sin Metrics y su error se
// acumula en el error devuelto (errors.Join).
func (r *Runner) RunMany(ctx context.Context, jobs []Job) ([]domain.RunResult, error) {
	results := make([]domain.RunResult, len(jobs))
	errs := make([]error, len(jobs))

	workCh := make(chan int, len(jobs))
	for i := range jobs {
		workCh <- i
	}
	close(workCh)

	workers := min(r.workers, len(jobs))
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range workCh {
				if err := ctx.Err(); err != nil {
					results[i] = domain.RunResult{Label: jobs[i].Label, Config: jobs[i].Config}
					errs[i] = fmt.Errorf("runner.RunMany: %s: %w", jobs[i].Label, err)
					continue
				}
				results[i], errs[i] = r.RunOne(ctx, jobs[i])
				if errs[i] != nil {
					slog.Warn("runner: job failed", "label", jobs[i].Label, "err", errs[i])
				}
			}
		}()
	}
	wg.Wait()

	slog.Debug("runner: batch complete", "jobs", len(jobs), "workers", workers)
	return results, errors.Join(errs...)
}

// SeedJobs genera n jobs idénticos salvo la semilla: seed, seed+1, ..., seed+n-1.
func SeedJobs(base domain.RunConfig, n int) []Job {
	jobs := make([]Job, 0, n)
	for i := 0; i < n; i++ {
		cfg := base
		cfg.Sim.Seed = base.Sim.Seed + uint64(i)
		jobs = append(jobs, Job{Label: fmt.Sprintf("seed=%d", cfg.Sim.Seed), Config: cfg})
	}
	return jobs
}
