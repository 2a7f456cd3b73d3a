package repository

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/limjunsheng2110/CS203G4T2-Project-sub002/internal/model"
	"github.com/limjunsheng2110/CS203G4T2-Project-sub002/pkg/datetime"
)

var dutyRateColumns = []string{
	"id", "hs_code", "importing_country", "exporting_country", "duty_type",
	"ad_valorem_rate", "specific_amount", "specific_unit",
	"valuation_basis", "currency", "effective_date", "expiry_date",
}

func TestTariffRepository_FindDutyRate(t *testing.T) {
	t.Parallel()

	asOf := datetime.MustParseDate("2025-03-01")
	effective := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		setupMock func(sqlmock.Sqlmock)
		wantErr   error
		check     func(*testing.T, *model.DutyRate)
	}{
		{
			name: "success",
			setupMock: func(mock sqlmock.Sqlmock) {
				rows := sqlmock.NewRows(dutyRateColumns).
					AddRow(1, "0102.21", "SG", "AU", "AD_VALOREM", "0.05", nil, "", "CIF", "", effective, nil)
				mock.ExpectQuery(`SELECT (.+) FROM duty_rates`).
					WithArgs("0102.21", "SG", "AU", sqlmock.AnyArg()).
					WillReturnRows(rows)
			},
			check: func(t *testing.T, r *model.DutyRate) {
				assert.Equal(t, "0102.21", r.HSCode)
				assert.Equal(t, model.DutyAdValorem, r.DutyType)
				require.True(t, r.AdValoremRate.Valid)
				assert.Equal(t, "0.05", r.AdValoremRate.Decimal.String())
				assert.False(t, r.SpecificAmount.Valid)
				assert.Equal(t, "2024-01-01", r.EffectiveDate.String())
				assert.Nil(t, r.ExpiryDate)
			},
		},
		{
			name: "not found",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT (.+) FROM duty_rates`).
					WithArgs("0102.21", "SG", "AU", sqlmock.AnyArg()).
					WillReturnError(sql.ErrNoRows)
			},
			wantErr: ErrDutyRateNotFound,
		},
		{
			name: "database error",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT (.+) FROM duty_rates`).
					WillReturnError(errors.New("connection reset"))
			},
			wantErr: errors.New("find duty rate: connection reset"),
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			mockDB, mock, _ := sqlmock.New()
			defer func() { _ = mockDB.Close() }()
			repo := NewTariffRepository(sqlx.NewDb(mockDB, "sqlmock"))
			tt.setupMock(mock)

			rate, err := repo.FindDutyRate(context.Background(), "0102.21", "SG", "AU", asOf)

			if tt.wantErr != nil {
				require.Error(t, err)
				if errors.Is(tt.wantErr, ErrDutyRateNotFound) {
					assert.ErrorIs(t, err, ErrDutyRateNotFound)
				} else {
					assert.EqualError(t, err, tt.wantErr.Error())
				}
				assert.Nil(t, rate)
			} else {
				require.NoError(t, err)
				tt.check(t, rate)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestTariffRepository_FindPreferentialRates(t *testing.T) {
	t.Parallel()

	mockDB, mock, _ := sqlmock.New()
	defer func() { _ = mockDB.Close() }()
	repo := NewTariffRepository(sqlx.NewDb(mockDB, "sqlmock"))

	agreementStart := time.Date(2003, 7, 28, 0, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{
		"id", "trade_agreement_id", "agreement_name", "agreement_effective_date", "agreement_expiry_date",
		"hs_code", "importing_country", "exporting_country",
		"ad_valorem_rate", "specific_amount", "specific_unit", "currency",
	}).
		AddRow(10, 3, "SAFTA", agreementStart, nil, "0102.21", "SG", "AU", "0", nil, "", "").
		AddRow(11, nil, nil, nil, nil, "0102.21", "SG", "AU", "0.01", nil, "", "")

	mock.ExpectQuery(`SELECT (.+) FROM preferential_rates pr\s+LEFT JOIN trade_agreements ta`).
		WithArgs("0102.21", "SG", "AU").
		WillReturnRows(rows)

	rates, err := repo.FindPreferentialRates(context.Background(), "0102.21", "SG", "AU")

	require.NoError(t, err)
	require.Len(t, rates, 2)

	linked := rates[0].Agreement()
	require.NotNil(t, linked)
	assert.Equal(t, "SAFTA", linked.Name)
	assert.Equal(t, "2003-07-28", linked.EffectiveDate.String())
	assert.Nil(t, rates[1].Agreement())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTariffRepository_FindPreferentialRates_Error(t *testing.T) {
	t.Parallel()

	mockDB, mock, _ := sqlmock.New()
	defer func() { _ = mockDB.Close() }()
	repo := NewTariffRepository(sqlx.NewDb(mockDB, "sqlmock"))

	mock.ExpectQuery(`SELECT (.+) FROM preferential_rates`).WillReturnError(errors.New("boom"))

	rates, err := repo.FindPreferentialRates(context.Background(), "0102.21", "SG", "AU")

	assert.Error(t, err)
	assert.Nil(t, rates)
}
