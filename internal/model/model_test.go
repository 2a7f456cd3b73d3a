package model

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/limjunsheng2110/CS203G4T2-Project-sub002/pkg/datetime"
)

func TestExchangeRate_IsStale(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		age  time.Duration
		want bool
	}{
		{"fresh", time.Hour, false},
		{"exactly max age", 24 * time.Hour, false},
		{"25 hours old", 25 * time.Hour, true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			r := &ExchangeRate{FetchedAt: now.Add(-tt.age)}
			assert.Equal(t, tt.want, r.IsStale(now, 24*time.Hour))
		})
	}
}

func TestExchangeRate_Inverse(t *testing.T) {
	t.Parallel()

	r := &ExchangeRate{FromCurrency: "USD", ToCurrency: "SGD", Rate: decimal.RequireFromString("1.25"), Source: "api"}
	inv := r.Inverse()
	require.NotNil(t, inv)
	assert.Equal(t, "SGD", inv.FromCurrency)
	assert.Equal(t, "USD", inv.ToCurrency)
	assert.True(t, decimal.RequireFromString("0.8").Equal(inv.Rate))

	assert.Nil(t, (&ExchangeRate{Rate: decimal.Zero}).Inverse())
}

func TestPreferentialRate_Agreement(t *testing.T) {
	t.Parallel()

	id := int64(7)
	name := "SAFTA"
	eff := datetime.MustParseDate("2003-07-28")

	linked := &PreferentialRate{TradeAgreementID: &id, AgreementName: &name, AgreementEffective: &eff}
	a := linked.Agreement()
	require.NotNil(t, a)
	assert.Equal(t, "SAFTA", a.Name)
	assert.True(t, a.IsActiveOn(datetime.MustParseDate("2025-01-01")))
	assert.False(t, a.IsActiveOn(datetime.MustParseDate("2003-07-27")))

	assert.Nil(t, (&PreferentialRate{}).Agreement())
}

func TestDutyRate_IsEffectiveOn(t *testing.T) {
	t.Parallel()

	expiry := datetime.MustParseDate("2025-01-01")
	r := &DutyRate{EffectiveDate: datetime.MustParseDate("2024-01-01"), ExpiryDate: &expiry}

	assert.True(t, r.IsEffectiveOn(datetime.MustParseDate("2024-12-31")))
	assert.False(t, r.IsEffectiveOn(expiry))
}

func TestEnums(t *testing.T) {
	t.Parallel()

	for _, dt := range DutyTypes {
		assert.True(t, dt.IsValid(), dt)
	}
	assert.False(t, DutyType("FLAT").IsValid())

	assert.True(t, ModeLand.IsValid())
	assert.False(t, ShippingMode("RAIL").IsValid())

	r := &CalculationResult{}
	assert.False(t, r.HasTradeAgreement())
	r.TradeAgreement = "SAFTA"
	assert.True(t, r.HasTradeAgreement())
}
