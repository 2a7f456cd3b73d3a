package repository

import (
	"context"
	"time"

	"github.com/limjunsheng2110/CS203G4T2-Project-sub002/internal/model"
	"github.com/limjunsheng2110/CS203G4T2-Project-sub002/pkg/datetime"
)

//go:generate mockery --name=TariffRepositoryInterface --output=../mocks --outpkg=mocks
type TariffRepositoryInterface interface {
	FindDutyRate(ctx context.Context, hsCode, importing, exporting string, asOf datetime.Date) (*model.DutyRate, error)
	FindPreferentialRates(ctx context.Context, hsCode, importing, exporting string) ([]model.PreferentialRate, error)
}

//go:generate mockery --name=ShippingRateRepositoryInterface --output=../mocks --outpkg=mocks
type ShippingRateRepositoryInterface interface {
	FindShippingRate(ctx context.Context, importing, exporting string, mode model.ShippingMode) (*model.ShippingRate, error)
}

//go:generate mockery --name=ExchangeRateRepositoryInterface --output=../mocks --outpkg=mocks
type ExchangeRateRepositoryInterface interface {
	Latest(ctx context.Context, from, to string) (*model.ExchangeRate, error)
	History(ctx context.Context, from, to string, since time.Time) ([]model.ExchangeRate, error)
	Save(ctx context.Context, rate *model.ExchangeRate) error
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

//go:generate mockery --name=ReferenceRepositoryInterface --output=../mocks --outpkg=mocks
type ReferenceRepositoryInterface interface {
	GetCountry(ctx context.Context, code string) (*model.Country, error)
	GetProduct(ctx context.Context, hsCode string) (*model.Product, error)
}
