package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/limjunsheng2110/CS203G4T2-Project-sub002/internal/app"
	"github.com/limjunsheng2110/CS203G4T2-Project-sub002/internal/config"
	"github.com/limjunsheng2110/CS203G4T2-Project-sub002/internal/logger"
	"github.com/limjunsheng2110/CS203G4T2-Project-sub002/internal/scheduler"
)

func main() {
	runNow := flag.Bool("run-now", false, "Run one refresh immediately after starting")
	flag.Parse()

	cfg := config.Load()
	logger.Configure(cfg.Env)
	log := logger.Logger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	engine, err := app.New(ctx, cfg, log)
	if err != nil {
		log.Error("Failed to start", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer func() { _ = engine.Close() }()

	schedCfg := scheduler.FromFX(cfg.FX)
	sched := scheduler.New(schedCfg, engine.ExchangeRate, engine.Sources.Metrics(), log)
	if err := sched.Start(); err != nil {
		log.Error("Failed to start scheduler", slog.String("error", err.Error()))
		return
	}
	if !schedCfg.Enabled {
		if *runNow {
			runCtx, cancel := context.WithTimeout(ctx, schedCfg.Timeout)
			sched.RunOnce(runCtx)
			cancel()
		}
		return
	}
	if *runNow {
		sched.RunNow()
	}

	log.Info("FX worker running",
		slog.Time("next_run", sched.GetNextRunTime()),
		slog.Int("pairs", len(schedCfg.Pairs)),
	)

	<-ctx.Done()

	// Wait for in-flight cron and -run-now refreshes
	<-sched.Stop().Done()
	log.Info("FX worker stopped")
}
