package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/limjunsheng2110/CS203G4T2-Project-sub002/internal/apperror"
	"github.com/limjunsheng2110/CS203G4T2-Project-sub002/internal/logger"
	"github.com/limjunsheng2110/CS203G4T2-Project-sub002/internal/model"
	"github.com/limjunsheng2110/CS203G4T2-Project-sub002/internal/repository"
	"github.com/limjunsheng2110/CS203G4T2-Project-sub002/pkg/currency"
	"github.com/limjunsheng2110/CS203G4T2-Project-sub002/pkg/datetime"
)

// DutyRateResolver is implemented by RateResolver.
type DutyRateResolver interface {
	Resolve(ctx context.Context, q RateQuery) (*ResolvedRate, error)
}

// ShippingCostResolver is implemented by ShippingService.
type ShippingCostResolver interface {
	ResolveShippingCost(ctx context.Context, mode model.ShippingMode, importing, exporting string, weight *decimal.Decimal, zeroOverride bool) (*ShippingQuote, error)
}

// CurrencyConverter is implemented by ExchangeRateService.
type CurrencyConverter interface {
	GetRate(ctx context.Context, from, to string) (*Rate, error)
}

const warnPreferentialAboveStandard = "preferential duty exceeds standard duty"

// CalculationService computes the landed cost of a single lane.
type CalculationService struct {
	reference repository.ReferenceRepositoryInterface
	rates     DutyRateResolver
	shipping  ShippingCostResolver
	fx        CurrencyConverter
	now       func() time.Time
}

func NewCalculationService(reference repository.ReferenceRepositoryInterface, rates DutyRateResolver, shipping ShippingCostResolver, fx CurrencyConverter) *CalculationService {
	return &CalculationService{
		reference: reference,
		rates:     rates,
		shipping:  shipping,
		fx:        fx,
		now:       time.Now,
	}
}

// laneInput is a validated, normalized CalculationRequest.
type laneInput struct {
	hsCode    string
	product   *model.Product
	importing *model.Country
	exporting *model.Country
	mode      model.ShippingMode
	currency  string
	target    string
	asOf      datetime.Date
	req       model.CalculationRequest
}

// CalculateLane resolves the duty rate, computes duty and shipping, and converts
// the total into the target currency. It returns no partial result: any failure
// fails the whole lane.
func (s *CalculationService) CalculateLane(ctx context.Context, req model.CalculationRequest) (*model.CalculationResult, error) {
	in, err := s.validate(ctx, req)
	if err != nil {
		return nil, err
	}

	id := uuid.NewString()
	ctx = logger.WithCalculationID(ctx, id)
	ctx = logger.WithLane(ctx, in.exporting.Code+"->"+in.importing.Code)
	log := logger.FromContext(ctx)

	result, err := s.calculate(ctx, in)
	if err != nil {
		log.Debug("lane calculation failed", "kind", apperror.Kind(err), "error", err)
		return nil, asAppError(err, "lane calculation failed")
	}
	result.ID = id

	log.Debug("lane calculated",
		"duty_type", result.DutyType,
		"rate_source", result.RateSource,
		"total", currency.NewMoney(result.ConvertedTotal, currency.Currency(result.TargetCurrency)).String(),
	)
	return result, nil
}

func (s *CalculationService) validate(ctx context.Context, req model.CalculationRequest) (*laneInput, error) {
	hs, err := normalizeHSCode("hsCode", req.HSCode)
	if err != nil {
		return nil, err
	}
	imp, err := normalizeCountryCode("importingCountry", req.ImportingCountry)
	if err != nil {
		return nil, err
	}
	exp, err := normalizeCountryCode("exportingCountry", req.ExportingCountry)
	if err != nil {
		return nil, err
	}
	if imp == exp {
		return nil, apperror.InvalidInput("exportingCountry", "must differ from importingCountry")
	}
	mode, err := normalizeMode(req.ShippingMode)
	if err != nil {
		return nil, err
	}

	if err := requireNonNegative("productValue", &req.ProductValue); err != nil {
		return nil, err
	}
	if err := requireNonNegative("freight", req.Freight); err != nil {
		return nil, err
	}
	if err := requireNonNegative("insurance", req.Insurance); err != nil {
		return nil, err
	}
	if err := requirePositive("quantity", req.Quantity); err != nil {
		return nil, err
	}
	if err := requirePositive("weight", req.Weight); err != nil {
		return nil, err
	}
	if err := requireFraction("vatOrGstOverride", req.VATOverride); err != nil {
		return nil, err
	}

	in := &laneInput{hsCode: hs, mode: mode, asOf: req.AsOf, req: req}
	if in.asOf.IsZero() {
		in.asOf = datetime.FromTime(s.now())
	}

	if in.importing, err = s.country(ctx, "importingCountry", imp); err != nil {
		return nil, err
	}
	if in.exporting, err = s.country(ctx, "exportingCountry", exp); err != nil {
		return nil, err
	}
	if in.product, err = s.product(ctx, hs); err != nil {
		return nil, err
	}

	cur := req.Currency
	if cur == "" {
		cur = in.exporting.CurrencyCode
	}
	if in.currency, err = normalizeCurrency("currency", cur); err != nil {
		return nil, err
	}
	target := req.TargetCurrency
	if target == "" {
		target = in.importing.CurrencyCode
	}
	if in.target, err = normalizeCurrency("targetCurrency", target); err != nil {
		return nil, err
	}
	return in, nil
}

func (s *CalculationService) calculate(ctx context.Context, in *laneInput) (*model.CalculationResult, error) {
	req := in.req
	fx := &laneConversions{svc: s}

	resolved, err := s.rates.Resolve(ctx, RateQuery{
		HSCode:    in.hsCode,
		Importing: in.importing.Code,
		Exporting: in.exporting.Code,
		AsOf:      in.asOf,
		Quantities: &LaneQuantities{
			ProductValue: req.ProductValue,
			Freight:      req.Freight,
			Insurance:    req.Insurance,
			Quantity:     req.Quantity,
			Weight:       req.Weight,
		},
	})
	if err != nil {
		return nil, err
	}

	formula, err := fx.formulaIn(ctx, resolved.Formula, in.currency)
	if err != nil {
		return nil, err
	}
	valuation := Valuate(formula.ValuationBasis, req.ProductValue, req.Freight, req.Insurance)
	quantities := DutyQuantities{Quantity: req.Quantity, Weight: req.Weight}
	duty, err := formula.Compute(valuation.CustomsValue, quantities)
	if err != nil {
		return nil, err
	}

	warnings := append([]string(nil), resolved.Warnings...)
	if resolved.Source == model.RateSourcePreferential && resolved.Standard != nil {
		if stdDuty, ok := s.standardDuty(ctx, *resolved.Standard, in, quantities); ok && duty.GreaterThan(stdDuty) {
			logger.FromContext(ctx).Warn(warnPreferentialAboveStandard, "preferential", duty.String(), "standard", stdDuty.String())
			warnings = append(warnings, warnPreferentialAboveStandard)
		}
	}

	ship, err := s.shipping.ResolveShippingCost(ctx, in.mode, in.importing.Code, in.exporting.Code, req.Weight, req.ZeroShipping)
	if err != nil {
		return nil, err
	}
	shippingCost, err := fx.amountIn(ctx, ship.Cost, ship.Currency, in.currency)
	if err != nil {
		return nil, err
	}

	cur, target := in.currency, in.target
	money := func(d decimal.Decimal) currency.Money { return currency.NewMoney(d, currency.Currency(cur)) }

	vatRate := laneVATRate(req, in.importing)
	vatBase, err := money(valuation.CustomsValue).Add(money(duty))
	if err != nil {
		return nil, err
	}
	vat := vatBase.Multiply(vatRate)

	total, err := sumMoney(currency.Currency(cur), money(req.ProductValue), money(duty), money(shippingCost), money(valuation.Insurance), vat)
	if err != nil {
		return nil, err
	}

	rate, err := s.fx.GetRate(ctx, in.currency, in.target)
	if err != nil {
		return nil, err
	}
	fx.note(rate)
	warnings = append(warnings, fx.warnings...)

	converted := func(m currency.Money) decimal.Decimal {
		return m.Convert(rate.Rate, currency.Currency(target)).Round().Amount
	}

	result := &model.CalculationResult{
		HSCode:             in.hsCode,
		ProductDescription: in.product.Description,
		ImportingCountry:   in.importing.Code,
		ImportingName:      in.importing.Name,
		ExportingCountry:   in.exporting.Code,
		ExportingName:      in.exporting.Name,
		ShippingMode:       in.mode,
		AsOf:               in.asOf,
		Currency:           cur,
		ProductValue:       money(req.ProductValue).Round().Amount,
		Freight:            money(valuation.Freight).Round().Amount,
		Insurance:          money(valuation.Insurance).Round().Amount,
		Quantity:           req.Quantity,
		Weight:             req.Weight,

		ValuationBasis: valuation.Basis,
		CustomsValue:   money(valuation.CustomsValue).Round().Amount,
		DutyType:       formula.Type,
		AdValoremRate:  formula.AdValorem,
		SpecificAmount: formula.SpecificAmount,
		SpecificUnit:   formula.Unit(),
		RateSource:     resolved.Source,
		TradeAgreement: resolved.TradeAgreement,

		DutyAmount:   money(duty).Round().Amount,
		ShippingCost: money(shippingCost).Round().Amount,
		VATRate:      vatRate,
		VATAmount:    vat.Round().Amount,
		TotalCost:    total.Round().Amount,

		TargetCurrency:        target,
		ExchangeRate:          currency.RoundRate(rate.Rate),
		ConvertedProductValue: converted(money(req.ProductValue)),
		ConvertedDuty:         converted(money(duty)),
		ConvertedShipping:     converted(money(shippingCost)),
		ConvertedVAT:          converted(vat),
		ConvertedTotal:        converted(total),
		UsedStaleRate:         fx.stale,

		DefaultedFields: valuation.DefaultedFields,
		Warnings:        warnings,
		CalculatedAt:    s.now().UTC(),
	}
	if cur != target {
		ts := rate.Timestamp
		result.RateTimestamp = &ts
	}
	if !formula.NeedsSpecific() {
		result.SpecificAmount = decimal.NullDecimal{}
	}
	return result, nil
}

// laneVATRate is the request override when given, else the importing country's
// rate, else zero.
func laneVATRate(req model.CalculationRequest, importing *model.Country) decimal.Decimal {
	switch {
	case req.VATOverride != nil:
		return *req.VATOverride
	case importing.VATRate.Valid:
		return importing.VATRate.Decimal
	}
	return decimal.Zero
}

func sumMoney(code currency.Currency, parts ...currency.Money) (currency.Money, error) {
	total := currency.Zero(code)
	for _, p := range parts {
		var err error
		if total, err = total.Add(p); err != nil {
			return currency.Money{}, err
		}
	}
	return total, nil
}

// standardDuty evaluates the standard formula for the same lane inputs. ok is
// false when it cannot be evaluated, in which case no comparison is made.
func (s *CalculationService) standardDuty(ctx context.Context, std DutyFormula, in *laneInput, q DutyQuantities) (decimal.Decimal, bool) {
	fx := &laneConversions{svc: s}
	std, err := fx.formulaIn(ctx, std, in.currency)
	if err != nil {
		return decimal.Zero, false
	}
	v := Valuate(std.ValuationBasis, in.req.ProductValue, in.req.Freight, in.req.Insurance)
	duty, err := std.Compute(v.CustomsValue, q)
	if err != nil {
		return decimal.Zero, false
	}
	return duty, true
}

func (s *CalculationService) country(ctx context.Context, field, code string) (*model.Country, error) {
	c, err := s.reference.GetCountry(ctx, code)
	if err != nil {
		if errors.Is(err, repository.ErrCountryNotFound) {
			return nil, apperror.InvalidInput(field, fmt.Sprintf("unknown country %q", code))
		}
		return nil, apperror.Internal("failed to look up country", err)
	}
	return c, nil
}

func (s *CalculationService) product(ctx context.Context, hsCode string) (*model.Product, error) {
	p, err := s.reference.GetProduct(ctx, hsCode)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return nil, apperror.InvalidInput("hsCode", fmt.Sprintf("unknown HS code %q", hsCode))
		}
		return nil, apperror.Internal("failed to look up product", err)
	}
	return p, nil
}

// laneConversions converts rate amounts stated in a foreign currency into the
// valuation currency and remembers whether any of them used a stale rate.
type laneConversions struct {
	svc      *CalculationService
	stale    bool
	warnings []string
}

func (c *laneConversions) note(r *Rate) {
	if r.Stale {
		c.stale = true
		c.warnings = append(c.warnings, fmt.Sprintf("stale exchange rate used for %s/%s (fetched %s)", r.From, r.To, r.Timestamp.UTC().Format(time.RFC3339)))
	}
}

func (c *laneConversions) amountIn(ctx context.Context, amount decimal.Decimal, from, to string) (decimal.Decimal, error) {
	if from == "" || from == to {
		return amount, nil
	}
	rate, err := c.svc.fx.GetRate(ctx, from, to)
	if err != nil {
		return decimal.Zero, err
	}
	c.note(rate)
	return amount.Mul(rate.Rate), nil
}

func (c *laneConversions) formulaIn(ctx context.Context, f DutyFormula, cur string) (DutyFormula, error) {
	if !f.NeedsSpecific() || f.Currency == "" || f.Currency == cur {
		return f, nil
	}
	amount, err := c.amountIn(ctx, f.SpecificAmount.Decimal, f.Currency, cur)
	if err != nil {
		return f, err
	}
	return f.WithSpecificAmount(amount, cur), nil
}

// asAppError passes AppErrors through and wraps anything else as Internal.
func asAppError(err error, message string) error {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		return err
	}
	return apperror.Internal(message, err)
}
