package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/limjunsheng2110/CS203G4T2-Project-sub002/internal/model"
)

var ErrShippingRateNotFound = errors.New("shipping rate not found")

type ShippingRateRepository struct {
	db *sqlx.DB
}

func NewShippingRateRepository(db *sqlx.DB) *ShippingRateRepository {
	return &ShippingRateRepository{db: db}
}

// FindShippingRate looks up the directed lane. A row for the exact mode is
// preferred over the lane-wide row with no mode.
func (r *ShippingRateRepository) FindShippingRate(ctx context.Context, importing, exporting string, mode model.ShippingMode) (*model.ShippingRate, error) {
	var rate model.ShippingRate
	err := r.db.GetContext(ctx, &rate, `
		SELECT id, importing_country, exporting_country, COALESCE(mode, '') AS mode,
		       rate_type, amount, distance_km, COALESCE(currency, '') AS currency
		FROM shipping_rates
		WHERE importing_country = $1 AND exporting_country = $2
		  AND (mode = $3 OR mode IS NULL)
		ORDER BY mode NULLS LAST, id DESC
		LIMIT 1
	`, importing, exporting, string(mode))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrShippingRateNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find shipping rate: %w", err)
	}
	return &rate, nil
}
