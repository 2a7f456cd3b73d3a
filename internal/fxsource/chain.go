package fxsource

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Source is one external rate provider.
type Source interface {
	Name() string
	Rate(ctx context.Context, from, to string) (decimal.Decimal, error)
}

// Quote is a rate obtained from a named source.
type Quote struct {
	Rate   decimal.Decimal
	Source string
}

// Chain tries its sources in order and returns the first quote obtained.
// Each source gets its own retry budget.
type Chain struct {
	sources []Source
	retry   RetryConfig
	metrics *MetricsCollector
	logger  *slog.Logger
}

func NewChain(retry RetryConfig, metrics *MetricsCollector, logger *slog.Logger, sources ...Source) *Chain {
	if metrics == nil {
		metrics = NewMetricsCollector()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Chain{sources: sources, retry: retry, metrics: metrics, logger: logger}
}

// Metrics returns the collector fed by this chain.
func (c *Chain) Metrics() *MetricsCollector {
	return c.metrics
}

// FetchRate returns units of to per one unit of from.
func (c *Chain) FetchRate(ctx context.Context, from, to string) (Quote, error) {
	from = strings.ToUpper(from)
	to = strings.ToUpper(to)

	if len(c.sources) == 0 {
		return Quote{}, newFetchError("chain", from, to, ErrSourceUnavailable)
	}

	var errs []error
	for _, src := range c.sources {
		log := c.logger.With("source", src.Name(), "pair", from+"/"+to)

		var rate decimal.Decimal
		start := time.Now()
		err := WithRetry(ctx, c.retry, log, func() error {
			var fetchErr error
			rate, fetchErr = src.Rate(ctx, from, to)
			return fetchErr
		})
		if err == nil {
			c.metrics.RecordSuccess(src.Name(), time.Since(start))
			return Quote{Rate: rate, Source: src.Name()}, nil
		}

		c.metrics.RecordFailure(src.Name(), time.Since(start), err)
		log.Error("rate source failed", "error", err)
		errs = append(errs, newFetchError(src.Name(), from, to, err))

		if ctx.Err() != nil {
			break
		}
	}
	return Quote{}, errors.Join(errs...)
}
