// Package app wires configuration, storage and services into a runnable engine.
package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"

	"github.com/limjunsheng2110/CS203G4T2-Project-sub002/internal/cache"
	"github.com/limjunsheng2110/CS203G4T2-Project-sub002/internal/config"
	"github.com/limjunsheng2110/CS203G4T2-Project-sub002/internal/fxsource"
	"github.com/limjunsheng2110/CS203G4T2-Project-sub002/internal/migrations"
	"github.com/limjunsheng2110/CS203G4T2-Project-sub002/internal/repository"
	"github.com/limjunsheng2110/CS203G4T2-Project-sub002/internal/service"
)

// App holds the assembled services.
type App struct {
	DB           *sqlx.DB
	Redis        *cache.RedisClient
	Sources      *fxsource.Chain
	ExchangeRate *service.ExchangeRateService
	Calculation  *service.CalculationService
	Comparison   *service.ComparisonService
}

// New connects to the database (and Redis when enabled), applies migrations if
// configured and builds the service graph.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := repository.Connect(ctx, cfg)
	if err != nil {
		return nil, err
	}

	if cfg.AutoMigrate {
		if err := migrations.Up(db.DB); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("migrate: %w", err)
		}
	}

	a := &App{DB: db}

	var rateStore repository.ExchangeRateRepositoryInterface = repository.NewExchangeRateRepository(db)
	if cfg.Redis.Enabled {
		rc, err := cache.NewRedisClient(ctx, cfg)
		if err != nil {
			// The SQL store alone is enough to run.
			logger.Warn("Redis unavailable, continuing without rate cache", slog.String("error", err.Error()))
		} else {
			a.Redis = rc
			rateStore = cache.NewExchangeRateCache(rc, rateStore, cfg.FX.MaxAge)
		}
	}

	a.Sources = NewSourceChain(cfg.FX, logger)
	a.ExchangeRate = service.NewExchangeRateService(rateStore, a.Sources,
		service.WithMaxAge(cfg.FX.MaxAge),
		service.WithFetchTimeout(cfg.FX.FetchTimeout),
	)

	reference := repository.NewReferenceRepository(db)
	resolver := service.NewRateResolver(repository.NewTariffRepository(db), cfg.AllowUnlinkedPreferential)
	shipping := service.NewShippingService(repository.NewShippingRateRepository(db))

	a.Calculation = service.NewCalculationService(reference, resolver, shipping, a.ExchangeRate)
	a.Comparison = service.NewComparisonService(a.Calculation, reference, cfg.CompareMaxParallel)

	return a, nil
}

// NewSourceChain builds the external rate sources in priority order: the JSON
// API first, then the HTML table when one is configured.
func NewSourceChain(fx config.FXConfig, logger *slog.Logger) *fxsource.Chain {
	client := fxsource.NewHTTPClient(fx.FetchTimeout)

	sources := []fxsource.Source{fxsource.NewAPISource(client, fx.APIURL)}
	if fx.HTMLURL != "" {
		sources = append(sources, fxsource.NewHTMLTableSource(client, fx.HTMLURL, fx.HTMLQuoteCurrency, fxsource.DefaultTableLayout()))
	}

	retry := fxsource.DefaultRetryConfig()
	if fx.MaxRetries > 0 {
		retry.MaxAttempts = fx.MaxRetries
	}

	return fxsource.NewChain(retry, fxsource.NewMetricsCollector(), logger, sources...)
}

// Close releases the database and Redis connections.
func (a *App) Close() error {
	var err error
	if a.Redis != nil {
		err = a.Redis.Close()
	}
	if cerr := a.DB.Close(); cerr != nil {
		err = cerr
	}
	return err
}
