package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// ExchangeRate is one observed rate for a currency pair. Rows are append-only;
// readers take the most recent FetchedAt.
type ExchangeRate struct {
	ID           int64           `db:"id" json:"id"`
	FromCurrency string          `db:"from_currency" json:"fromCurrency"`
	ToCurrency   string          `db:"to_currency" json:"toCurrency"`
	Rate         decimal.Decimal `db:"rate" json:"rate"`
	Source       string          `db:"source" json:"source"`
	FetchedAt    time.Time       `db:"fetched_at" json:"fetchedAt"`
}

// IsStale reports whether the rate is older than maxAge at now.
func (r *ExchangeRate) IsStale(now time.Time, maxAge time.Duration) bool {
	return now.Sub(r.FetchedAt) > maxAge
}

// Inverse returns the rate for the opposite direction, computed at scale 10.
// It returns nil for a non-positive rate.
func (r *ExchangeRate) Inverse() *ExchangeRate {
	if !r.Rate.IsPositive() {
		return nil
	}
	return &ExchangeRate{
		FromCurrency: r.ToCurrency,
		ToCurrency:   r.FromCurrency,
		Rate:         decimal.NewFromInt(1).DivRound(r.Rate, 10),
		Source:       r.Source,
		FetchedAt:    r.FetchedAt,
	}
}
