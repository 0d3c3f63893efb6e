package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alejandrodnm/pingpong/config"
	"github.com/alejandrodnm/pingpong/internal/adapters/notify"
	"github.com/alejandrodnm/pingpong/internal/adapters/storage"
	"github.com/alejandrodnm/pingpong/internal/application/engine/sim"
	"github.com/alejandrodnm/pingpong/internal/application/runner"
	"github.com/alejandrodnm/pingpong/internal/ports"
	"github.com/alejandrodnm/pingpong/internal/strategy"
)

func main() {
	configPath := flag.String("config", "", "path to config file (empty = built-in defaults)")
	profileName := flag.String("strategy", "", "strategy profile: aggressive|balanced|passive (overrides config)")
	list := flag.Bool("list", false, "print the available strategy profiles and exit")
	compare := flag.Bool("compare", false, "run every profile on the same market path and compare")
	seeds := flag.Int("seeds", 0, "number of consecutive seeds to sweep (overrides config)")
	workers := flag.Int("workers", -1, "parallel runs for -compare and -seeds (0 = NumCPU)")
	tracePath := flag.String("trace", "", "export the run trace to this SQLite file (overrides config)")
	quiet := flag.Bool("quiet", false, "print a compact 1-line summary per run")
	verbose := flag.Bool("verbose", false, "set log level to debug")
	logFormat := flag.String("format", "", "log format: text|json (overrides config)")
	ov := registerOverrides(flag.CommandLine)
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "err", err, "path", *configPath)
		os.Exit(1)
	}

	if *verbose {
		cfg.Log.Level = "debug"
	}
	if *logFormat != "" {
		cfg.Log.Format = *logFormat
	}
	if *profileName != "" {
		cfg.Strategy.Profile = *profileName
	}
	if *seeds > 0 {
		cfg.Runner.Seeds = *seeds
	}
	if *workers >= 0 {
		cfg.Runner.Workers = *workers
	}
	if *tracePath != "" {
		cfg.Trace.DSN = *tracePath
	}
	setupLogger(cfg.Log)

	tickSize, _ := cfg.TickSize() // validado en config.Load
	console := notify.NewConsole(tickSize, *quiet)
	registry := strategy.DefaultRegistry()

	if *list {
		console.PrintProfiles(registry.List())
		return
	}

	ov.collect(flag.CommandLine)

	slog.Info("pingpong starting",
		"config", *configPath,
		"strategy", cfg.Strategy.Profile,
		"compare", *compare,
		"seeds", cfg.Runner.Seeds,
		"workers", cfg.Runner.Workers,
	)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	r := runner.New(sim.Factory, cfg.Runner.Workers)

	if *compare {
		if err := runCompare(ctx, r, cfg, registry, ov, console); err != nil {
			exitOnError("comparison failed", err)
		}
		return
	}

	profile, ok := registry.Get(cfg.Strategy.Profile)
	if !ok {
		slog.Error("unknown strategy profile", "profile", cfg.Strategy.Profile, "available", registry.Names())
		os.Exit(1)
	}
	rc := cfg.RunConfig(profile.Config)
	ov.apply(&rc)
	if err := rc.Validate(); err != nil {
		slog.Error("invalid run configuration", "err", err)
		os.Exit(1)
	}

	if cfg.Runner.Seeds > 1 {
		if err := runSeedSweep(ctx, r, rc, cfg.Runner.Seeds, console); err != nil {
			exitOnError("seed sweep failed", err)
		}
		return
	}

	job := runner.Job{Label: profile.Name, Config: rc}
	if ov.strategyChanged() {
		job.Label = profile.Name + "+custom"
	}
	if err := runSingle(ctx, r, job, cfg.Trace.DSN, console); err != nil {
		exitOnError("simulation failed", err)
	}
	slog.Info("pingpong finished")
}

// runSingle ejecuta un run, lo reporta y, si hay DSN, exporta la traza.
func runSingle(ctx context.Context, r *runner.Runner, job runner.Job, dsn string, notifier ports.Notifier) error {
	res, err := r.RunOne(ctx, job)
	if err != nil {
		return err
	}
	if err := notifier.NotifyRun(ctx, res); err != nil {
		slog.Warn("notifier error", "err", err)
	}
	if dsn == "" {
		return nil
	}

	var store ports.TraceStorage
	store, err = storage.NewSQLiteStorage(dsn)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.SaveTrace(ctx, res); err != nil {
		return err
	}
	slog.Info("trace exported", "dsn", dsn, "run_id", res.RunID, "fills", len(res.Fills))
	return nil
}

func exitOnError(msg string, err error) {
	if errors.Is(err, context.Canceled) {
		slog.Warn("interrupted", "err", err)
		os.Exit(130)
	}
	slog.Error(msg, "err", err)
	os.Exit(1)
}

func setupLogger(cfg config.LogConfig) {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(handler))
}
