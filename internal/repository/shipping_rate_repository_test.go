package repository

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/limjunsheng2110/CS203G4T2-Project-sub002/internal/model"
)

func TestShippingRateRepository_FindShippingRate(t *testing.T) {
	t.Parallel()

	columns := []string{"id", "importing_country", "exporting_country", "mode", "rate_type", "amount", "distance_km", "currency"}

	tests := []struct {
		name      string
		setupMock func(sqlmock.Sqlmock)
		wantErr   error
		wantMode  model.ShippingMode
		wantType  model.ShippingRateType
	}{
		{
			name: "mode specific row",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT (.+) FROM shipping_rates (.+) ORDER BY mode NULLS LAST`).
					WithArgs("SG", "AU", "SEA").
					WillReturnRows(sqlmock.NewRows(columns).AddRow(1, "SG", "AU", "SEA", "PER_WEIGHT", "1.20", "6300", "USD"))
			},
			wantMode: model.ModeSea,
			wantType: model.ShippingPerWeight,
		},
		{
			name: "lane wide row",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT (.+) FROM shipping_rates`).
					WithArgs("SG", "AU", "SEA").
					WillReturnRows(sqlmock.NewRows(columns).AddRow(2, "SG", "AU", "", "FLAT", "450", nil, ""))
			},
			wantMode: "",
			wantType: model.ShippingFlat,
		},
		{
			name: "not found",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT (.+) FROM shipping_rates`).
					WithArgs("SG", "AU", "SEA").
					WillReturnError(sql.ErrNoRows)
			},
			wantErr: ErrShippingRateNotFound,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			mockDB, mock, _ := sqlmock.New()
			defer func() { _ = mockDB.Close() }()
			repo := NewShippingRateRepository(sqlx.NewDb(mockDB, "sqlmock"))
			tt.setupMock(mock)

			rate, err := repo.FindShippingRate(context.Background(), "SG", "AU", model.ModeSea)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, rate)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.wantMode, rate.Mode)
				assert.Equal(t, tt.wantType, rate.RateType)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}
