package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/limjunsheng2110/CS203G4T2-Project-sub002/internal/apperror"
	"github.com/limjunsheng2110/CS203G4T2-Project-sub002/internal/logger"
	"github.com/limjunsheng2110/CS203G4T2-Project-sub002/internal/model"
	"github.com/limjunsheng2110/CS203G4T2-Project-sub002/internal/repository"
)

// ShippingQuote is the shipping cost of a lane in Currency. An empty Currency
// means the rate is stated in the valuation currency.
type ShippingQuote struct {
	Cost         decimal.Decimal
	Currency     string
	RateType     model.ShippingRateType
	Mode         model.ShippingMode
	DistanceKm   decimal.NullDecimal
	ZeroOverride bool
}

// ShippingService resolves shipping costs from the shipping-rate store.
type ShippingService struct {
	rates repository.ShippingRateRepositoryInterface
}

func NewShippingService(rates repository.ShippingRateRepositoryInterface) *ShippingService {
	return &ShippingService{rates: rates}
}

// ResolveShippingCost prices the lane exporting->importing. Lanes are directed:
// swapping the countries is a different lookup. zeroOverride skips the lookup
// and returns a zero cost.
func (s *ShippingService) ResolveShippingCost(ctx context.Context, mode model.ShippingMode, importing, exporting string, weight *decimal.Decimal, zeroOverride bool) (*ShippingQuote, error) {
	if zeroOverride {
		return &ShippingQuote{Cost: decimal.Zero, Mode: mode, ZeroOverride: true}, nil
	}

	rate, err := s.rates.FindShippingRate(ctx, importing, exporting, mode)
	if err != nil {
		if errors.Is(err, repository.ErrShippingRateNotFound) {
			return nil, apperror.ShippingLaneNotFound(fmt.Sprintf("%s %s->%s", mode, exporting, importing))
		}
		return nil, apperror.Internal("failed to look up shipping rate", err)
	}
	if rate.Amount.IsNegative() {
		return nil, apperror.IncompleteRateData("amount", fmt.Sprintf("shipping rate %d has a negative amount", rate.ID))
	}

	quote := &ShippingQuote{
		Currency:   rate.Currency,
		RateType:   rate.RateType,
		Mode:       mode,
		DistanceKm: rate.DistanceKm,
	}

	switch rate.RateType {
	case model.ShippingFlat:
		quote.Cost = rate.Amount
	case model.ShippingPerWeight:
		if weight == nil {
			return nil, apperror.InvalidInput("weight", "required for per-weight shipping")
		}
		if !weight.IsPositive() {
			return nil, apperror.InvalidInput("weight", "must be greater than zero")
		}
		quote.Cost = rate.Amount.Mul(*weight)
	default:
		return nil, apperror.IncompleteRateData("rateType", fmt.Sprintf("unknown shipping rate type %q", rate.RateType))
	}

	logger.FromContext(ctx).Debug("resolved shipping", "rate_type", rate.RateType, "cost", quote.Cost.String())
	return quote, nil
}
