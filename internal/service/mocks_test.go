package service

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/limjunsheng2110/CS203G4T2-Project-sub002/internal/fxsource"
	"github.com/limjunsheng2110/CS203G4T2-Project-sub002/internal/model"
	"github.com/limjunsheng2110/CS203G4T2-Project-sub002/pkg/datetime"
)

// MockTariffRepo implements repository.TariffRepositoryInterface for testing
type MockTariffRepo struct {
	mock.Mock
}

func (m *MockTariffRepo) FindDutyRate(ctx context.Context, hsCode, importing, exporting string, asOf datetime.Date) (*model.DutyRate, error) {
	args := m.Called(ctx, hsCode, importing, exporting, asOf)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.DutyRate), args.Error(1)
}

func (m *MockTariffRepo) FindPreferentialRates(ctx context.Context, hsCode, importing, exporting string) ([]model.PreferentialRate, error) {
	args := m.Called(ctx, hsCode, importing, exporting)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.PreferentialRate), args.Error(1)
}

// MockShippingRepo implements repository.ShippingRateRepositoryInterface for testing
type MockShippingRepo struct {
	mock.Mock
}

func (m *MockShippingRepo) FindShippingRate(ctx context.Context, importing, exporting string, mode model.ShippingMode) (*model.ShippingRate, error) {
	args := m.Called(ctx, importing, exporting, mode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ShippingRate), args.Error(1)
}

// MockExchangeRateRepo implements repository.ExchangeRateRepositoryInterface for testing
type MockExchangeRateRepo struct {
	mock.Mock
}

func (m *MockExchangeRateRepo) Latest(ctx context.Context, from, to string) (*model.ExchangeRate, error) {
	args := m.Called(ctx, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ExchangeRate), args.Error(1)
}

func (m *MockExchangeRateRepo) History(ctx context.Context, from, to string, since time.Time) ([]model.ExchangeRate, error) {
	args := m.Called(ctx, from, to, since)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.ExchangeRate), args.Error(1)
}

func (m *MockExchangeRateRepo) Save(ctx context.Context, rate *model.ExchangeRate) error {
	args := m.Called(ctx, rate)
	return args.Error(0)
}

func (m *MockExchangeRateRepo) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	args := m.Called(ctx, cutoff)
	return args.Get(0).(int64), args.Error(1)
}

// MockReferenceRepo implements repository.ReferenceRepositoryInterface for testing
type MockReferenceRepo struct {
	mock.Mock
}

func (m *MockReferenceRepo) GetCountry(ctx context.Context, code string) (*model.Country, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Country), args.Error(1)
}

func (m *MockReferenceRepo) GetProduct(ctx context.Context, hsCode string) (*model.Product, error) {
	args := m.Called(ctx, hsCode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Product), args.Error(1)
}

// MockRateFetcher implements RateFetcher for testing
type MockRateFetcher struct {
	mock.Mock
}

func (m *MockRateFetcher) FetchRate(ctx context.Context, from, to string) (fxsource.Quote, error) {
	args := m.Called(ctx, from, to)
	return args.Get(0).(fxsource.Quote), args.Error(1)
}

// MockLaneCalculator implements LaneCalculator for testing
type MockLaneCalculator struct {
	mock.Mock
}

func (m *MockLaneCalculator) CalculateLane(ctx context.Context, req model.CalculationRequest) (*model.CalculationResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CalculationResult), args.Error(1)
}
