// Package scheduler provides cron-based jobs that keep stored exchange rates fresh.
package scheduler

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/limjunsheng2110/CS203G4T2-Project-sub002/internal/config"
	"github.com/limjunsheng2110/CS203G4T2-Project-sub002/internal/fxsource"
	"github.com/limjunsheng2110/CS203G4T2-Project-sub002/internal/model"
)

// Config holds the scheduler configuration
type Config struct {
	// Schedule is a cron expression for when to refresh (e.g., "0 */6 * * *" for every 6 hours)
	Schedule string
	// Timeout is the maximum duration for a complete refresh cycle
	Timeout time.Duration
	// Enabled determines if the scheduler should run
	Enabled bool
	// Pairs are refreshed on every run
	Pairs []config.CurrencyPair
	// Retention is how long stored rates are kept; zero disables pruning
	Retention time.Duration
}

// DefaultConfig returns the default scheduler configuration
func DefaultConfig() Config {
	return Config{
		Schedule:  "0 */6 * * *",
		Timeout:   5 * time.Minute,
		Enabled:   true,
		Retention: 7 * 24 * time.Hour,
	}
}

// FromFX builds a scheduler config from the FX settings.
func FromFX(fx config.FXConfig) Config {
	cfg := DefaultConfig()
	cfg.Enabled = fx.RefreshEnabled
	cfg.Pairs = fx.RefreshPairs
	if fx.RefreshSchedule != "" {
		cfg.Schedule = fx.RefreshSchedule
	}
	if fx.RefreshTimeout > 0 {
		cfg.Timeout = fx.RefreshTimeout
	}
	if fx.Retention > 0 {
		cfg.Retention = fx.Retention
	}
	return cfg
}

// RateRefresher is implemented by service.ExchangeRateService.
type RateRefresher interface {
	Refresh(ctx context.Context, from, to string) (*model.ExchangeRate, error)
	Prune(ctx context.Context, retention time.Duration) (int64, error)
}

// HealthReporter is implemented by fxsource.MetricsCollector.
type HealthReporter interface {
	GetHealthStatus() fxsource.HealthStatus
}

// Report summarizes one refresh run.
type Report struct {
	Refreshed int
	Failed    []string
	Pruned    int64
	Duration  time.Duration
}

// Scheduler manages the scheduled refresh job
type Scheduler struct {
	cron    *cron.Cron
	rates   RateRefresher
	health  HealthReporter
	config  Config
	logger  *slog.Logger
	entryID cron.EntryID
	manual  sync.WaitGroup // RunNow jobs
}

// New creates a new Scheduler instance. health may be nil.
func New(cfg Config, rates RateRefresher, health HealthReporter, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}

	return &Scheduler{
		cron:   cron.New(cron.WithSeconds()),
		rates:  rates,
		health: health,
		config: cfg,
		logger: logger,
	}
}

// Start begins the scheduler
func (s *Scheduler) Start() error {
	if !s.config.Enabled {
		s.logger.Info("Scheduler is disabled, skipping start")
		return nil
	}

	// Convert standard cron (5 fields) to cron with seconds (6 fields)
	schedule := "0 " + s.config.Schedule

	entryID, err := s.cron.AddFunc(schedule, func() {
		s.runRefreshJob()
	})
	if err != nil {
		return err
	}

	s.entryID = entryID
	s.cron.Start()

	s.logger.Info("Scheduler started",
		slog.String("schedule", s.config.Schedule),
		slog.Duration("timeout", s.config.Timeout),
		slog.Int("pairs", len(s.config.Pairs)),
	)

	return nil
}

// Stop stops scheduling new runs. The returned context is done once running
// cron jobs and any RunNow refresh have finished.
func (s *Scheduler) Stop() context.Context {
	s.logger.Info("Stopping scheduler...")
	cronDone := s.cron.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		<-cronDone.Done()
		s.manual.Wait()
		cancel()
	}()
	return ctx
}

// RunNow triggers an immediate refresh in the background
func (s *Scheduler) RunNow() {
	s.manual.Add(1)
	go func() {
		defer s.manual.Done()
		s.runRefreshJob()
	}()
}

func (s *Scheduler) runRefreshJob() {
	ctx, cancel := context.WithTimeout(context.Background(), s.config.Timeout)
	defer cancel()
	s.RunOnce(ctx)
}

// RunOnce refreshes every configured pair, prunes old rates and logs source
// health. A failing pair does not stop the others.
func (s *Scheduler) RunOnce(ctx context.Context) Report {
	startTime := time.Now()
	s.logger.Info("Starting exchange rate refresh",
		slog.Time("start_time", startTime),
	)

	var report Report
	for _, pair := range s.config.Pairs {
		if ctx.Err() != nil {
			report.Failed = append(report.Failed, pair.String())
			continue
		}
		rate, err := s.rates.Refresh(ctx, pair.From, pair.To)
		if err != nil {
			s.logger.Error("Refresh failed",
				slog.String("pair", pair.String()),
				slog.String("error", err.Error()),
			)
			report.Failed = append(report.Failed, pair.String())
			continue
		}
		report.Refreshed++
		s.logger.Debug("Refreshed rate",
			slog.String("pair", pair.String()),
			slog.String("rate", rate.Rate.String()),
			slog.String("source", rate.Source),
		)
	}

	if s.config.Retention > 0 {
		pruned, err := s.rates.Prune(ctx, s.config.Retention)
		if err != nil {
			s.logger.Error("Prune failed", slog.String("error", err.Error()))
		}
		report.Pruned = pruned
	}

	if s.health != nil {
		h := s.health.GetHealthStatus()
		s.logger.Info("Rate source health",
			slog.Bool("healthy", h.Healthy),
			slog.Int("healthy_sources", h.HealthySources),
			slog.Int("total_sources", h.TotalSources),
			slog.Any("unhealthy", h.UnhealthySources),
		)
	}

	report.Duration = time.Since(startTime)
	s.logger.Info("Exchange rate refresh completed",
		slog.Int("refreshed", report.Refreshed),
		slog.Int("failed", len(report.Failed)),
		slog.Int64("pruned", report.Pruned),
		slog.Duration("duration", report.Duration),
	)
	return report
}

// GetNextRunTime returns the next scheduled run time
func (s *Scheduler) GetNextRunTime() time.Time {
	if s.entryID == 0 {
		return time.Time{}
	}
	return s.cron.Entry(s.entryID).Next
}

// GetLastRunTime returns the last run time
func (s *Scheduler) GetLastRunTime() time.Time {
	if s.entryID == 0 {
		return time.Time{}
	}
	return s.cron.Entry(s.entryID).Prev
}

// IsRunning returns true if the scheduler has a job registered
func (s *Scheduler) IsRunning() bool {
	return s.cron != nil && len(s.cron.Entries()) > 0
}
