package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/limjunsheng2110/CS203G4T2-Project-sub002/internal/apperror"
	"github.com/limjunsheng2110/CS203G4T2-Project-sub002/internal/model"
	"github.com/limjunsheng2110/CS203G4T2-Project-sub002/internal/repository"
)

func laneResult(code, total string) *model.CalculationResult {
	return &model.CalculationResult{
		ID:               "calc-" + code,
		ImportingCountry: "SG",
		ExportingCountry: code,
		ExportingName:    code + " name",
		Currency:         "USD",
		ProductValue:     dec("1000"),
		DutyType:         model.DutyAdValorem,
		TargetCurrency:   "SGD",
		ConvertedVAT:     dec("0"),
		ConvertedTotal:   dec(total),
	}
}

func forLane(code string) any {
	return mock.MatchedBy(func(r model.CalculationRequest) bool { return r.ExportingCountry == code })
}

func newComparisonFixture() (*MockLaneCalculator, *MockReferenceRepo) {
	lanes := new(MockLaneCalculator)
	reference := new(MockReferenceRepo)
	reference.On("GetCountry", mock.Anything, "SG").Return(&model.Country{Code: "SG", Name: "Singapore", CurrencyCode: "SGD"}, nil)
	reference.On("GetCountry", mock.Anything, mock.Anything).Return(nil, repository.ErrCountryNotFound)
	return lanes, reference
}

func compareRequest(sources ...string) model.ComparisonRequest {
	return model.ComparisonRequest{
		SourceCountries:    sources,
		DestinationCountry: "SG",
		HSCode:             "0102.21",
		ProductName:        "Breeding cattle",
		ProductValue:       decPtr("1000"),
	}
}

func TestComparisonService_RanksByTotalCost(t *testing.T) {
	t.Parallel()

	lanes, reference := newComparisonFixture()
	lanes.On("CalculateLane", mock.Anything, forLane("AU")).Return(laneResult("AU", "1200.00"), nil)
	lanes.On("CalculateLane", mock.Anything, forLane("NZ")).Return(laneResult("NZ", "950.00"), nil)
	lanes.On("CalculateLane", mock.Anything, forLane("US")).Return(laneResult("US", "1100.00"), nil)

	got, err := NewComparisonService(lanes, reference, 2).CompareLanes(context.Background(), compareRequest("AU", "NZ", "US"))
	require.NoError(t, err)

	require.Len(t, got.Options, 3)
	ranks := map[string]int{}
	savings := map[string]string{}
	for _, o := range got.Options {
		ranks[o.CountryCode] = o.Ranking
		savings[o.CountryCode] = o.SavingsVsExpensive.StringFixed(2)
	}
	assert.Equal(t, map[string]int{"NZ": 1, "US": 2, "AU": 3}, ranks)
	assert.Equal(t, "250.00", savings["NZ"])
	assert.Equal(t, "100.00", savings["US"])
	assert.Equal(t, "0.00", savings["AU"])

	assert.Equal(t, "NZ", got.RecommendedCountry)
	assert.Equal(t, "NZ name", got.RecommendedCountryName)
	assert.True(t, dec("950").Equal(got.LowestTotalCost))
	assert.Equal(t, "SGD", got.Currency)
	assert.Equal(t, "SG", got.DestinationCountry)
	assert.Equal(t, "Breeding cattle", got.ProductName)
	assert.Equal(t, "calc-NZ", got.Options[0].CalculationID)
	assert.True(t, got.Options[0].VATAmount.IsZero())
	assert.Empty(t, got.Failures)
	assert.NotEmpty(t, got.ID)
}

func TestComparisonService_OptionsCarryVAT(t *testing.T) {
	t.Parallel()

	withVAT := laneResult("AU", "1144.50")
	withVAT.ConvertedVAT = dec("94.50")

	lanes, reference := newComparisonFixture()
	lanes.On("CalculateLane", mock.Anything, forLane("AU")).Return(withVAT, nil)

	got, err := NewComparisonService(lanes, reference, 1).CompareLanes(context.Background(), compareRequest("AU"))
	require.NoError(t, err)
	require.Len(t, got.Options, 1)
	assert.Equal(t, "94.50", got.Options[0].VATAmount.StringFixed(2))
	assert.True(t, dec("1144.50").Equal(got.Options[0].TotalCost))
}

func TestComparisonService_TiesBreakOnCountryCode(t *testing.T) {
	t.Parallel()

	lanes, reference := newComparisonFixture()
	lanes.On("CalculateLane", mock.Anything, forLane("NZ")).Return(laneResult("NZ", "1000"), nil)
	lanes.On("CalculateLane", mock.Anything, forLane("AU")).Return(laneResult("AU", "1000.00"), nil)
	lanes.On("CalculateLane", mock.Anything, forLane("MY")).Return(laneResult("MY", "1000"), nil)

	got, err := NewComparisonService(lanes, reference, 0).CompareLanes(context.Background(), compareRequest("NZ", "MY", "AU"))
	require.NoError(t, err)

	codes := make([]string, 0, len(got.Options))
	for _, o := range got.Options {
		codes = append(codes, o.CountryCode)
		assert.True(t, o.SavingsVsExpensive.IsZero())
	}
	assert.Equal(t, []string{"AU", "MY", "NZ"}, codes)
	assert.Equal(t, "AU", got.RecommendedCountry)
}

func TestComparisonService_PartialFailures(t *testing.T) {
	t.Parallel()

	lanes, reference := newComparisonFixture()
	lanes.On("CalculateLane", mock.Anything, forLane("AU")).Return(laneResult("AU", "1200"), nil)
	lanes.On("CalculateLane", mock.Anything, forLane("NZ")).Return(nil, apperror.RateNotFound("HS 0102.21 NZ->SG on 2025-06-02"))
	lanes.On("CalculateLane", mock.Anything, forLane("US")).Return(nil, apperror.ShippingLaneNotFound("SEA US->SG"))

	got, err := NewComparisonService(lanes, reference, 4).CompareLanes(context.Background(), compareRequest("AU", "NZ", "US", "au", "SG"))
	require.NoError(t, err)

	require.Len(t, got.Options, 1)
	assert.Equal(t, 1, got.Options[0].Ranking)
	assert.True(t, got.Options[0].SavingsVsExpensive.IsZero())

	require.Len(t, got.Failures, 3)
	assert.Equal(t, model.LaneFailure{CountryCode: "NZ", Kind: "RATE_NOT_FOUND", Message: "no duty rate for HS 0102.21 NZ->SG on 2025-06-02"}, got.Failures[0])
	assert.Equal(t, "SHIPPING_LANE_NOT_FOUND", got.Failures[1].Kind)
	assert.Equal(t, "SG", got.Failures[2].CountryCode)
	assert.Equal(t, "INVALID_INPUT", got.Failures[2].Kind)
	assert.Equal(t, "sourceCountries", got.Failures[2].Field)

	lanes.AssertNumberOfCalls(t, "CalculateLane", 3)
}

func TestComparisonService_NoViableOptions(t *testing.T) {
	t.Parallel()

	lanes, reference := newComparisonFixture()
	lanes.On("CalculateLane", mock.Anything, forLane("AU")).Return(nil, apperror.RateNotFound("HS 0102.21 AU->SG"))
	lanes.On("CalculateLane", mock.Anything, forLane("NZ")).Return(nil, errors.New("boom"))

	_, err := NewComparisonService(lanes, reference, 4).CompareLanes(context.Background(), compareRequest("AU", "NZ"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperror.ErrNoViableOptions))
	assert.Contains(t, err.Error(), "AU: no duty rate for HS 0102.21 AU->SG")
	assert.Contains(t, err.Error(), "NZ: boom")
}

func TestComparisonService_LaneRequests(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		req   func() model.ComparisonRequest
		check func(*testing.T, model.CalculationRequest)
	}{
		{
			name: "defaults preferred currency to destination",
			req:  func() model.ComparisonRequest { return compareRequest("AU") },
			check: func(t *testing.T, r model.CalculationRequest) {
				assert.Equal(t, "SGD", r.TargetCurrency)
				assert.Equal(t, "SG", r.ImportingCountry)
				assert.Equal(t, "", r.Currency)
				assert.Equal(t, string(model.ModeSea), r.ShippingMode)
				assert.True(t, dec("1000").Equal(r.ProductValue))
			},
		},
		{
			name: "explicit currencies and mode",
			req: func() model.ComparisonRequest {
				r := compareRequest("AU")
				r.PreferredCurrency = "usd"
				r.ProductCurrency = "eur"
				r.ShippingMode = "air"
				return r
			},
			check: func(t *testing.T, r model.CalculationRequest) {
				assert.Equal(t, "USD", r.TargetCurrency)
				assert.Equal(t, "EUR", r.Currency)
				assert.Equal(t, "AIR", r.ShippingMode)
			},
		},
		{
			name: "kg quantity becomes weight",
			req: func() model.ComparisonRequest {
				r := compareRequest("AU")
				r.ProductValue = nil
				r.Quantity = decPtr("120")
				r.Unit = "kg"
				return r
			},
			check: func(t *testing.T, r model.CalculationRequest) {
				require.NotNil(t, r.Weight)
				assert.True(t, dec("120").Equal(*r.Weight))
				assert.Nil(t, r.Quantity)
				assert.True(t, r.ProductValue.IsZero())
			},
		},
		{
			name: "head quantity stays quantity",
			req: func() model.ComparisonRequest {
				r := compareRequest("AU")
				r.Quantity = decPtr("12")
				r.Unit = "HEAD"
				r.Weight = decPtr("5400")
				return r
			},
			check: func(t *testing.T, r model.CalculationRequest) {
				require.NotNil(t, r.Quantity)
				assert.True(t, dec("12").Equal(*r.Quantity))
				require.NotNil(t, r.Weight)
				assert.True(t, dec("5400").Equal(*r.Weight))
			},
		},
		{
			name: "vat override reaches every lane",
			req: func() model.ComparisonRequest {
				r := compareRequest("AU")
				r.VATOverride = decPtr("0.08")
				return r
			},
			check: func(t *testing.T, r model.CalculationRequest) {
				require.NotNil(t, r.VATOverride)
				assert.True(t, dec("0.08").Equal(*r.VATOverride))
			},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			lanes, reference := newComparisonFixture()
			var seen model.CalculationRequest
			lanes.On("CalculateLane", mock.Anything, mock.Anything).
				Run(func(args mock.Arguments) { seen = args.Get(1).(model.CalculationRequest) }).
				Return(laneResult("AU", "1"), nil)

			_, err := NewComparisonService(lanes, reference, 1).CompareLanes(context.Background(), tt.req())
			require.NoError(t, err)
			assert.Equal(t, "AU", seen.ExportingCountry)
			tt.check(t, seen)
		})
	}
}

func TestComparisonService_Validation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*model.ComparisonRequest)
		field  string
	}{
		{"no sources", func(r *model.ComparisonRequest) { r.SourceCountries = []string{" ", ""} }, "sourceCountries"},
		{"unknown destination", func(r *model.ComparisonRequest) { r.DestinationCountry = "ZZ" }, "destinationCountry"},
		{"malformed hs code", func(r *model.ComparisonRequest) { r.HSCode = "cattle" }, "hsCode"},
		{"no value or quantity", func(r *model.ComparisonRequest) { r.ProductValue = nil }, "productValue"},
		{"quantity without unit", func(r *model.ComparisonRequest) { r.ProductValue = nil; r.Quantity = decPtr("3") }, "productValue"},
		{"unknown unit", func(r *model.ComparisonRequest) { r.Quantity = decPtr("3"); r.Unit = "LITRE" }, "unit"},
		{"zero quantity", func(r *model.ComparisonRequest) { r.Quantity = decPtr("0"); r.Unit = "HEAD" }, "quantity"},
		{"negative value", func(r *model.ComparisonRequest) { r.ProductValue = decPtr("-1") }, "productValue"},
		{"unknown preferred currency", func(r *model.ComparisonRequest) { r.PreferredCurrency = "XXX" }, "preferredCurrency"},
		{"unknown mode", func(r *model.ComparisonRequest) { r.ShippingMode = "PIPELINE" }, "shippingMode"},
		{"vat override above one", func(r *model.ComparisonRequest) { r.VATOverride = decPtr("9") }, "vatOrGstOverride"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			lanes, reference := newComparisonFixture()
			req := compareRequest("AU")
			tt.mutate(&req)

			_, err := NewComparisonService(lanes, reference, 1).CompareLanes(context.Background(), req)
			require.Error(t, err)
			assert.True(t, errors.Is(err, apperror.ErrInvalidInput), "got %v", err)

			var appErr *apperror.AppError
			require.True(t, errors.As(err, &appErr))
			assert.Equal(t, tt.field, appErr.Field)
			lanes.AssertNotCalled(t, "CalculateLane", mock.Anything, mock.Anything)
		})
	}
}

func TestRankOptions_Properties(t *testing.T) {
	t.Parallel()

	totals := []string{"310.50", "99.99", "1200", "310.50", "0", "7777.77", "45.10"}
	options := make([]model.CountryOption, len(totals))
	for i, total := range totals {
		options[i] = model.CountryOption{CountryCode: fmt.Sprintf("C%d", i), TotalCost: dec(total)}
	}

	rankOptions(options)

	ranks := make([]int, len(options))
	for i, o := range options {
		ranks[i] = o.Ranking
		assert.False(t, o.SavingsVsExpensive.IsNegative())
		if i > 0 {
			assert.True(t, options[i-1].TotalCost.LessThanOrEqual(o.TotalCost))
		}
	}
	sort.Ints(ranks)
	for i, r := range ranks {
		assert.Equal(t, i+1, r)
	}
	assert.True(t, options[len(options)-1].SavingsVsExpensive.IsZero())
	assert.True(t, dec("7777.77").Equal(options[0].SavingsVsExpensive))
}
