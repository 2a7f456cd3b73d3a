package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/singleflight"

	"github.com/limjunsheng2110/CS203G4T2-Project-sub002/internal/apperror"
	"github.com/limjunsheng2110/CS203G4T2-Project-sub002/internal/fxsource"
	"github.com/limjunsheng2110/CS203G4T2-Project-sub002/internal/logger"
	"github.com/limjunsheng2110/CS203G4T2-Project-sub002/internal/model"
	"github.com/limjunsheng2110/CS203G4T2-Project-sub002/internal/repository"
)

const (
	DefaultRateMaxAge       = 24 * time.Hour
	DefaultRateFetchTimeout = 10 * time.Second
)

// RateFetcher obtains a live exchange rate from outside the process.
//
//go:generate mockery --name=RateFetcher --output=../mocks --outpkg=mocks
type RateFetcher interface {
	FetchRate(ctx context.Context, from, to string) (fxsource.Quote, error)
}

// Rate is an exchange rate as used for a conversion.
type Rate struct {
	From      string
	To        string
	Rate      decimal.Decimal
	Source    string
	Timestamp time.Time
	Stale     bool // older than the max age, used because no fresh rate could be fetched
	Inverted  bool // derived from the stored rate for the opposite direction
}

// Conversion is the result of Convert. Amount is unrounded.
type Conversion struct {
	Amount decimal.Decimal
	Rate
}

// ExchangeRateService converts amounts between currencies, reusing stored
// rates while they are fresh and fetching new ones otherwise.
type ExchangeRateService struct {
	store        repository.ExchangeRateRepositoryInterface
	fetcher      RateFetcher
	now          func() time.Time
	maxAge       time.Duration
	fetchTimeout time.Duration
	inflight     singleflight.Group
}

type ExchangeRateOption func(*ExchangeRateService)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) ExchangeRateOption {
	return func(s *ExchangeRateService) { s.now = now }
}

func WithMaxAge(d time.Duration) ExchangeRateOption {
	return func(s *ExchangeRateService) {
		if d > 0 {
			s.maxAge = d
		}
	}
}

func WithFetchTimeout(d time.Duration) ExchangeRateOption {
	return func(s *ExchangeRateService) {
		if d > 0 {
			s.fetchTimeout = d
		}
	}
}

func NewExchangeRateService(store repository.ExchangeRateRepositoryInterface, fetcher RateFetcher, opts ...ExchangeRateOption) *ExchangeRateService {
	s := &ExchangeRateService{
		store:        store,
		fetcher:      fetcher,
		now:          time.Now,
		maxAge:       DefaultRateMaxAge,
		fetchTimeout: DefaultRateFetchTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Convert converts amount from one currency to another. Equal currencies
// return amount unchanged without a lookup.
func (s *ExchangeRateService) Convert(ctx context.Context, amount decimal.Decimal, from, to string) (*Conversion, error) {
	rate, err := s.GetRate(ctx, from, to)
	if err != nil {
		return nil, err
	}
	if rate.From == rate.To {
		return &Conversion{Amount: amount, Rate: *rate}, nil
	}
	return &Conversion{Amount: amount.Mul(rate.Rate), Rate: *rate}, nil
}

// GetRate returns units of to per one unit of from. Lookup order:
//  1. a fresh stored rate for the pair
//  2. the inverse of a fresh stored rate for the opposite pair
//  3. a live fetch, persisted with the current time
//  4. the stale stored rate (direct, then inverse), flagged Stale
//
// When all of these fail the error is RateUnavailable.
func (s *ExchangeRateService) GetRate(ctx context.Context, from, to string) (*Rate, error) {
	from = strings.ToUpper(strings.TrimSpace(from))
	to = strings.ToUpper(strings.TrimSpace(to))
	now := s.now()

	if from == to {
		return &Rate{From: from, To: to, Rate: decimal.NewFromInt(1), Source: "identity", Timestamp: now}, nil
	}

	log := logger.FromContext(ctx).With("pair", from+"/"+to)

	direct := s.latest(ctx, from, to)
	if direct != nil && !direct.IsStale(now, s.maxAge) {
		return rateFrom(direct, false, false), nil
	}

	var inverse *model.ExchangeRate
	if stored := s.latest(ctx, to, from); stored != nil {
		inverse = stored.Inverse()
	}
	if inverse != nil && !inverse.IsStale(now, s.maxAge) {
		return rateFrom(inverse, true, false), nil
	}

	fetched, fetchErr := s.fetch(ctx, from, to)
	if fetchErr == nil {
		return rateFrom(fetched, false, false), nil
	}

	switch {
	case direct != nil:
		log.Warn("using stale exchange rate", "fetched_at", direct.FetchedAt, "error", fetchErr)
		return rateFrom(direct, false, true), nil
	case inverse != nil:
		log.Warn("using stale inverse exchange rate", "fetched_at", inverse.FetchedAt, "error", fetchErr)
		return rateFrom(inverse, true, true), nil
	}
	return nil, apperror.RateUnavailable(from, to, fetchErr)
}

// Refresh fetches and stores a new rate for the pair regardless of what is stored.
func (s *ExchangeRateService) Refresh(ctx context.Context, from, to string) (*model.ExchangeRate, error) {
	from = strings.ToUpper(strings.TrimSpace(from))
	to = strings.ToUpper(strings.TrimSpace(to))
	if from == to {
		return nil, apperror.InvalidInput("pair", fmt.Sprintf("cannot refresh identity pair %s/%s", from, to))
	}
	rate, err := s.fetch(ctx, from, to)
	if err != nil {
		return nil, apperror.RateUnavailable(from, to, err)
	}
	return rate, nil
}

// Prune deletes stored rates fetched more than retention ago.
func (s *ExchangeRateService) Prune(ctx context.Context, retention time.Duration) (int64, error) {
	n, err := s.store.DeleteOlderThan(ctx, s.now().Add(-retention))
	if err != nil {
		return 0, fmt.Errorf("prune exchange rates: %w", err)
	}
	return n, nil
}

// latest returns the newest stored rate, or nil. Store failures are logged and
// treated as a miss so a live fetch can still serve the request.
func (s *ExchangeRateService) latest(ctx context.Context, from, to string) *model.ExchangeRate {
	rate, err := s.store.Latest(ctx, from, to)
	if err != nil {
		if !errors.Is(err, repository.ErrExchangeRateNotFound) {
			logger.FromContext(ctx).Error("failed to read stored exchange rate", "pair", from+"/"+to, "error", err)
		}
		return nil
	}
	if !rate.Rate.IsPositive() {
		return nil
	}
	return rate
}

// fetch obtains a live rate and stores it. Concurrent fetches for one pair
// share a single upstream call. The fetch outlives caller cancellation but is
// bounded by fetchTimeout.
func (s *ExchangeRateService) fetch(ctx context.Context, from, to string) (*model.ExchangeRate, error) {
	if s.fetcher == nil {
		return nil, errors.New("no exchange rate fetcher configured")
	}

	v, err, _ := s.inflight.Do(from+"/"+to, func() (any, error) {
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.fetchTimeout)
		defer cancel()

		quote, err := s.fetcher.FetchRate(fetchCtx, from, to)
		if err != nil {
			return nil, err
		}
		if !quote.Rate.IsPositive() {
			return nil, fmt.Errorf("source %s returned non-positive rate %s", quote.Source, quote.Rate)
		}

		rate := &model.ExchangeRate{
			FromCurrency: from,
			ToCurrency:   to,
			Rate:         quote.Rate,
			Source:       quote.Source,
			FetchedAt:    s.now(),
		}
		if err := s.store.Save(fetchCtx, rate); err != nil {
			logger.FromContext(ctx).Error("failed to store exchange rate", "pair", from+"/"+to, "error", err)
		}
		return rate, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*model.ExchangeRate), nil
}

func rateFrom(r *model.ExchangeRate, inverted, stale bool) *Rate {
	return &Rate{
		From:      r.FromCurrency,
		To:        r.ToCurrency,
		Rate:      r.Rate,
		Source:    r.Source,
		Timestamp: r.FetchedAt,
		Stale:     stale,
		Inverted:  inverted,
	}
}
