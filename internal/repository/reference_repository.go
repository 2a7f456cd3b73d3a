package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/limjunsheng2110/CS203G4T2-Project-sub002/internal/model"
)

var (
	ErrCountryNotFound = errors.New("country not found")
	ErrProductNotFound = errors.New("product not found")
)

// ReferenceRepository reads country and product reference data.
type ReferenceRepository struct {
	db *sqlx.DB
}

func NewReferenceRepository(db *sqlx.DB) *ReferenceRepository {
	return &ReferenceRepository{db: db}
}

func (r *ReferenceRepository) GetCountry(ctx context.Context, code string) (*model.Country, error) {
	var c model.Country
	err := r.db.GetContext(ctx, &c, `
		SELECT code, name, COALESCE(region, '') AS region, currency_code, vat_rate
		FROM countries WHERE code = $1
	`, code)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrCountryNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get country: %w", err)
	}
	return &c, nil
}

func (r *ReferenceRepository) GetProduct(ctx context.Context, hsCode string) (*model.Product, error) {
	var p model.Product
	err := r.db.GetContext(ctx, &p, `
		SELECT hs_code, description, category FROM products WHERE hs_code = $1
	`, hsCode)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}
	return &p, nil
}

func (r *ReferenceRepository) ListCountries(ctx context.Context) ([]model.Country, error) {
	var countries []model.Country
	if err := r.db.SelectContext(ctx, &countries, `
		SELECT code, name, COALESCE(region, '') AS region, currency_code, vat_rate
		FROM countries ORDER BY code
	`); err != nil {
		return nil, fmt.Errorf("list countries: %w", err)
	}
	return countries, nil
}
