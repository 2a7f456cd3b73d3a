package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/limjunsheng2110/CS203G4T2-Project-sub002/internal/apperror"
	"github.com/limjunsheng2110/CS203G4T2-Project-sub002/internal/logger"
	"github.com/limjunsheng2110/CS203G4T2-Project-sub002/internal/model"
	"github.com/limjunsheng2110/CS203G4T2-Project-sub002/internal/repository"
)

// DefaultCompareMaxParallel bounds concurrent lane calculations per comparison.
const DefaultCompareMaxParallel = 8

// LaneCalculator is implemented by CalculationService.
type LaneCalculator interface {
	CalculateLane(ctx context.Context, req model.CalculationRequest) (*model.CalculationResult, error)
}

// ComparisonService ranks source countries for one product and destination.
type ComparisonService struct {
	lanes       LaneCalculator
	reference   repository.ReferenceRepositoryInterface
	maxParallel int
	now         func() time.Time
}

func NewComparisonService(lanes LaneCalculator, reference repository.ReferenceRepositoryInterface, maxParallel int) *ComparisonService {
	if maxParallel <= 0 {
		maxParallel = DefaultCompareMaxParallel
	}
	return &ComparisonService{
		lanes:       lanes,
		reference:   reference,
		maxParallel: maxParallel,
		now:         time.Now,
	}
}

type laneOutcome struct {
	code   string
	result *model.CalculationResult
	err    error
}

// CompareLanes calculates every source lane into the preferred currency and
// ranks the viable ones by total cost, cheapest first, ties by country code.
// Failed lanes are listed in Failures. It fails with NoViableOptions only when
// every lane fails.
func (s *ComparisonService) CompareLanes(ctx context.Context, req model.ComparisonRequest) (*model.ComparisonResult, error) {
	base, dest, sources, err := s.prepare(ctx, req)
	if err != nil {
		return nil, err
	}

	id := uuid.NewString()
	ctx = logger.WithCalculationID(ctx, id)
	log := logger.FromContext(ctx)

	outcomes := make([]laneOutcome, len(sources))
	var g errgroup.Group
	g.SetLimit(s.maxParallel)
	for i, code := range sources {
		outcomes[i].code = code
		if code == dest.Code {
			outcomes[i].err = apperror.InvalidInput("sourceCountries", "source country must differ from destinationCountry")
			continue
		}
		if _, cerr := normalizeCountryCode("sourceCountries", code); cerr != nil {
			outcomes[i].err = cerr
			continue
		}

		i, code := i, code
		g.Go(func() error {
			laneReq := base
			laneReq.ExportingCountry = code
			laneCtx := logger.WithLane(ctx, code+"->"+dest.Code)
			outcomes[i].result, outcomes[i].err = s.lanes.CalculateLane(laneCtx, laneReq)
			return nil
		})
	}
	_ = g.Wait()

	options := make([]model.CountryOption, 0, len(outcomes))
	var failures []model.LaneFailure
	for _, o := range outcomes {
		if o.err != nil {
			log.Warn("source lane failed", "source", o.code, "kind", apperror.Kind(o.err), "error", o.err)
			failures = append(failures, laneFailure(o.code, o.err))
			continue
		}
		options = append(options, optionFrom(o.result))
	}

	if len(options) == 0 {
		details := make([]string, 0, len(failures))
		for _, f := range failures {
			details = append(details, fmt.Sprintf("%s: %s", f.CountryCode, f.Message))
		}
		return nil, apperror.NoViableOptions(details)
	}

	rankOptions(options)
	best := options[0]

	log.Info("comparison ranked",
		"destination", dest.Code,
		"options", len(options),
		"failures", len(failures),
		"recommended", best.CountryCode,
	)

	return &model.ComparisonResult{
		ID:                     id,
		RecommendedCountry:     best.CountryCode,
		RecommendedCountryName: best.CountryName,
		LowestTotalCost:        best.TotalCost,
		Currency:               base.TargetCurrency,
		DestinationCountry:     dest.Code,
		HSCode:                 base.HSCode,
		ProductName:            req.ProductName,
		Options:                options,
		Failures:               failures,
		ComparedAt:             s.now().UTC(),
	}, nil
}

// prepare validates the comparison-wide fields and returns the lane request
// template, the destination, and the de-duplicated source codes in request order.
func (s *ComparisonService) prepare(ctx context.Context, req model.ComparisonRequest) (model.CalculationRequest, *model.Country, []string, error) {
	var base model.CalculationRequest

	hs, err := normalizeHSCode("hsCode", req.HSCode)
	if err != nil {
		return base, nil, nil, err
	}
	destCode, err := normalizeCountryCode("destinationCountry", req.DestinationCountry)
	if err != nil {
		return base, nil, nil, err
	}
	dest, err := s.reference.GetCountry(ctx, destCode)
	if err != nil {
		if errors.Is(err, repository.ErrCountryNotFound) {
			return base, nil, nil, apperror.InvalidInput("destinationCountry", fmt.Sprintf("unknown country %q", destCode))
		}
		return base, nil, nil, apperror.Internal("failed to look up country", err)
	}
	mode, err := normalizeMode(req.ShippingMode)
	if err != nil {
		return base, nil, nil, err
	}

	preferred := req.PreferredCurrency
	if preferred == "" {
		preferred = dest.CurrencyCode
	}
	if preferred, err = normalizeCurrency("preferredCurrency", preferred); err != nil {
		return base, nil, nil, err
	}
	var productCurrency string
	if req.ProductCurrency != "" {
		if productCurrency, err = normalizeCurrency("productCurrency", req.ProductCurrency); err != nil {
			return base, nil, nil, err
		}
	}

	sources := dedupeCodes(req.SourceCountries)
	if len(sources) == 0 {
		return base, nil, nil, apperror.InvalidInput("sourceCountries", "at least one source country is required")
	}

	base = model.CalculationRequest{
		HSCode:           hs,
		ImportingCountry: dest.Code,
		Currency:         productCurrency,
		TargetCurrency:   preferred,
		Weight:           req.Weight,
		ShippingMode:     string(mode),
		AsOf:             req.AsOf,
		VATOverride:      req.VATOverride,
	}
	if err := applyQuantity(&base, req); err != nil {
		return base, nil, nil, err
	}
	return base, dest, sources, nil
}

// applyQuantity fills the value and measures of the lane template. Without a
// product value the lanes are valued at zero and only specific duty applies.
func applyQuantity(base *model.CalculationRequest, req model.ComparisonRequest) error {
	unit := strings.ToUpper(strings.TrimSpace(req.Unit))
	if req.ProductValue == nil && (req.Quantity == nil || unit == "") {
		return apperror.InvalidInput("productValue", "either productValue or quantity with unit is required")
	}
	if err := requireNonNegative("productValue", req.ProductValue); err != nil {
		return err
	}
	if err := requirePositive("quantity", req.Quantity); err != nil {
		return err
	}
	if err := requirePositive("weight", req.Weight); err != nil {
		return err
	}
	if err := requireFraction("vatOrGstOverride", req.VATOverride); err != nil {
		return err
	}

	if req.ProductValue != nil {
		base.ProductValue = *req.ProductValue
	}
	if req.Quantity == nil {
		return nil
	}

	switch unit {
	case model.QuantityUnitKg:
		base.Weight = req.Quantity
	case model.QuantityUnitHead, model.QuantityUnitItem:
		base.Quantity = req.Quantity
	case "":
		return apperror.InvalidInput("unit", "required with quantity")
	default:
		return apperror.InvalidInput("unit", fmt.Sprintf("unknown unit %q", req.Unit))
	}
	return nil
}

// dedupeCodes uppercases codes and drops blanks and repeats, keeping first-seen order.
func dedupeCodes(codes []string) []string {
	seen := make(map[string]struct{}, len(codes))
	out := make([]string, 0, len(codes))
	for _, c := range codes {
		c = strings.ToUpper(strings.TrimSpace(c))
		if c == "" {
			continue
		}
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	return out
}

// rankOptions sorts options by total cost then country code and assigns
// rankings 1..N and savings against the most expensive option.
func rankOptions(options []model.CountryOption) {
	sort.Slice(options, func(i, j int) bool {
		if c := options[i].TotalCost.Cmp(options[j].TotalCost); c != 0 {
			return c < 0
		}
		return options[i].CountryCode < options[j].CountryCode
	})

	highest := options[len(options)-1].TotalCost
	for i := range options {
		options[i].Ranking = i + 1
		options[i].SavingsVsExpensive = highest.Sub(options[i].TotalCost)
	}
}

func optionFrom(r *model.CalculationResult) model.CountryOption {
	return model.CountryOption{
		CountryCode:                    r.ExportingCountry,
		CountryName:                    r.ExportingName,
		OriginalCurrency:               r.Currency,
		ProductValueInOriginalCurrency: r.ProductValue,
		ProductValueConverted:          r.ConvertedProductValue,
		TariffAmount:                   r.ConvertedDuty,
		ShippingCost:                   r.ConvertedShipping,
		VATAmount:                      r.ConvertedVAT,
		TotalCost:                      r.ConvertedTotal,
		ExchangeRate:                   r.ExchangeRate,
		DutyType:                       r.DutyType,
		TradeAgreement:                 r.TradeAgreement,
		HasFTA:                         r.HasTradeAgreement(),
		UsedStaleRate:                  r.UsedStaleRate,
		SavingsVsExpensive:             decimal.Zero,
		CalculationID:                  r.ID,
	}
}

func laneFailure(code string, err error) model.LaneFailure {
	f := model.LaneFailure{CountryCode: code, Kind: apperror.Kind(err), Message: err.Error()}
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		f.Field = appErr.Field
		f.Message = appErr.Message
	}
	return f
}
