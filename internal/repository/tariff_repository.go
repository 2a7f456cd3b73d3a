package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/limjunsheng2110/CS203G4T2-Project-sub002/internal/model"
	"github.com/limjunsheng2110/CS203G4T2-Project-sub002/pkg/datetime"
)

var ErrDutyRateNotFound = errors.New("duty rate not found")

type TariffRepository struct {
	db *sqlx.DB
}

func NewTariffRepository(db *sqlx.DB) *TariffRepository {
	return &TariffRepository{db: db}
}

// FindDutyRate returns the standard rate in force on asOf. When windows
// overlap, the most recently effective row wins.
func (r *TariffRepository) FindDutyRate(ctx context.Context, hsCode, importing, exporting string, asOf datetime.Date) (*model.DutyRate, error) {
	var rate model.DutyRate
	err := r.db.GetContext(ctx, &rate, `
		SELECT id, hs_code, importing_country, exporting_country, duty_type,
		       ad_valorem_rate, specific_amount, COALESCE(specific_unit, '') AS specific_unit,
		       valuation_basis, COALESCE(currency, '') AS currency, effective_date, expiry_date
		FROM duty_rates
		WHERE hs_code = $1 AND importing_country = $2 AND exporting_country = $3
		  AND effective_date <= $4 AND (expiry_date IS NULL OR expiry_date > $4)
		ORDER BY effective_date DESC, id DESC
		LIMIT 1
	`, hsCode, importing, exporting, asOf)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrDutyRateNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find duty rate: %w", err)
	}
	return &rate, nil
}

// FindPreferentialRates returns every preferential row for the lane with its
// agreement joined in. Agreement windows are checked by the caller.
func (r *TariffRepository) FindPreferentialRates(ctx context.Context, hsCode, importing, exporting string) ([]model.PreferentialRate, error) {
	var rates []model.PreferentialRate
	err := r.db.SelectContext(ctx, &rates, `
		SELECT pr.id, pr.trade_agreement_id,
		       ta.name AS agreement_name,
		       ta.effective_date AS agreement_effective_date,
		       ta.expiry_date AS agreement_expiry_date,
		       pr.hs_code, pr.importing_country, pr.exporting_country,
		       pr.ad_valorem_rate, pr.specific_amount,
		       COALESCE(pr.specific_unit, '') AS specific_unit,
		       COALESCE(pr.currency, '') AS currency
		FROM preferential_rates pr
		LEFT JOIN trade_agreements ta ON ta.id = pr.trade_agreement_id
		WHERE pr.hs_code = $1 AND pr.importing_country = $2 AND pr.exporting_country = $3
		ORDER BY pr.id
	`, hsCode, importing, exporting)
	if err != nil {
		return nil, fmt.Errorf("find preferential rates: %w", err)
	}
	return rates, nil
}
