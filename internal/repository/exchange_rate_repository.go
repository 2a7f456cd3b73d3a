package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/limjunsheng2110/CS203G4T2-Project-sub002/internal/model"
)

var ErrExchangeRateNotFound = errors.New("exchange rate not found")

// ExchangeRateRepository stores observed rates append-only. Concurrent
// writers for one pair each insert a row; readers take the newest.
type ExchangeRateRepository struct {
	db *sqlx.DB
}

func NewExchangeRateRepository(db *sqlx.DB) *ExchangeRateRepository {
	return &ExchangeRateRepository{db: db}
}

// Latest returns the most recent rate for the pair, fresh or not.
func (r *ExchangeRateRepository) Latest(ctx context.Context, from, to string) (*model.ExchangeRate, error) {
	var rate model.ExchangeRate
	err := r.db.GetContext(ctx, &rate, `
		SELECT id, from_currency, to_currency, rate, source, fetched_at
		FROM exchange_rates
		WHERE from_currency = $1 AND to_currency = $2
		ORDER BY fetched_at DESC, id DESC
		LIMIT 1
	`, from, to)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrExchangeRateNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("latest exchange rate: %w", err)
	}
	return &rate, nil
}

// History returns every rate for the pair fetched at or after since, oldest first.
func (r *ExchangeRateRepository) History(ctx context.Context, from, to string, since time.Time) ([]model.ExchangeRate, error) {
	var rates []model.ExchangeRate
	if err := r.db.SelectContext(ctx, &rates, `
		SELECT id, from_currency, to_currency, rate, source, fetched_at
		FROM exchange_rates
		WHERE from_currency = $1 AND to_currency = $2 AND fetched_at >= $3
		ORDER BY fetched_at ASC, id ASC
	`, from, to, since); err != nil {
		return nil, fmt.Errorf("exchange rate history: %w", err)
	}
	return rates, nil
}

func (r *ExchangeRateRepository) Save(ctx context.Context, rate *model.ExchangeRate) error {
	err := r.db.QueryRowxContext(ctx, `
		INSERT INTO exchange_rates (from_currency, to_currency, rate, source, fetched_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`, rate.FromCurrency, rate.ToCurrency, rate.Rate, rate.Source, rate.FetchedAt).Scan(&rate.ID)
	if err != nil {
		return fmt.Errorf("save exchange rate: %w", err)
	}
	return nil
}

// DeleteOlderThan prunes rows fetched before cutoff and returns how many went.
func (r *ExchangeRateRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM exchange_rates WHERE fetched_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("delete old exchange rates: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete old exchange rates: %w", err)
	}
	return n, nil
}
