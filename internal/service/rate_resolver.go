package service

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/limjunsheng2110/CS203G4T2-Project-sub002/internal/apperror"
	"github.com/limjunsheng2110/CS203G4T2-Project-sub002/internal/logger"
	"github.com/limjunsheng2110/CS203G4T2-Project-sub002/internal/model"
	"github.com/limjunsheng2110/CS203G4T2-Project-sub002/internal/repository"
	"github.com/limjunsheng2110/CS203G4T2-Project-sub002/pkg/datetime"
)

// RateQuery identifies the lane and date a duty rate is resolved for.
type RateQuery struct {
	HSCode    string
	Importing string
	Exporting string
	AsOf      datetime.Date

	// Valuation inputs, used to rank competing preferential rates by the duty
	// they would actually charge. Nil ranks by rate components instead.
	Quantities *LaneQuantities
}

// LaneQuantities are the valuation inputs of a lane in its valuation currency.
type LaneQuantities struct {
	ProductValue decimal.Decimal
	Freight      *decimal.Decimal
	Insurance    *decimal.Decimal
	Quantity     *decimal.Decimal
	Weight       *decimal.Decimal
}

// ResolvedRate is the duty structure that applies to a lane.
type ResolvedRate struct {
	Formula        DutyFormula
	Source         model.RateSource
	TradeAgreement string // empty unless an agreement-linked preferential rate applied
	PreferentialID int64
	EffectiveDate  datetime.Date
	ExpiryDate     *datetime.Date

	// Standard is the valid standard formula for the lane, if any, kept so the
	// caller can compare a preferential duty against it.
	Standard *DutyFormula
	Warnings []string
}

// RateResolver picks the duty rate for a lane. Precedence, highest first:
//  1. preferential rates whose trade agreement is active on the as-of date
//  2. preferential rates with no agreement, when allowUnlinked is set
//  3. the standard rate in effect on the as-of date
//
// Within a tier the rate charging the lowest duty wins.
type RateResolver struct {
	tariffs       repository.TariffRepositoryInterface
	allowUnlinked bool
}

func NewRateResolver(tariffs repository.TariffRepositoryInterface, allowUnlinked bool) *RateResolver {
	return &RateResolver{tariffs: tariffs, allowUnlinked: allowUnlinked}
}

type rateCandidate struct {
	rate    model.PreferentialRate
	formula DutyFormula
	agree   *model.TradeAgreement
}

// Resolve returns the applicable rate, RateNotFound when the lane has none, or
// IncompleteRateData when only a malformed standard rate exists.
func (r *RateResolver) Resolve(ctx context.Context, q RateQuery) (*ResolvedRate, error) {
	log := logger.FromContext(ctx)
	lookup := fmt.Sprintf("HS %s %s->%s on %s", q.HSCode, q.Exporting, q.Importing, q.AsOf)

	std, err := r.tariffs.FindDutyRate(ctx, q.HSCode, q.Importing, q.Exporting, q.AsOf)
	if err != nil && !errors.Is(err, repository.ErrDutyRateNotFound) {
		return nil, apperror.Internal("failed to look up duty rate", err)
	}

	var standard *DutyFormula
	var standardErr error
	if std != nil {
		f := NewDutyFormula(std)
		if standardErr = f.Validate(); standardErr == nil {
			standard = &f
		}
	}

	prefs, err := r.tariffs.FindPreferentialRates(ctx, q.HSCode, q.Importing, q.Exporting)
	if err != nil {
		return nil, apperror.Internal("failed to look up preferential rates", err)
	}

	var warnings []string
	for _, tier := range r.tiers(prefs, q.AsOf) {
		candidates := make([]rateCandidate, 0, len(tier))
		for _, p := range tier {
			f, ferr := preferentialFormula(p, std)
			if ferr != nil {
				log.Warn("skipping malformed preferential rate", "id", p.ID, "error", ferr)
				warnings = append(warnings, fmt.Sprintf("preferential rate %d skipped: %s", p.ID, apperror.GetMessage(ferr)))
				continue
			}
			candidates = append(candidates, rateCandidate{rate: p, formula: f, agree: p.Agreement()})
		}
		if len(candidates) == 0 {
			continue
		}

		best := lowestDuty(candidates, q.Quantities)
		resolved := &ResolvedRate{
			Formula:        best.formula,
			Source:         model.RateSourcePreferential,
			PreferentialID: best.rate.ID,
			Standard:       standard,
			Warnings:       warnings,
		}
		switch {
		case best.agree != nil:
			resolved.TradeAgreement = best.agree.Name
			resolved.EffectiveDate = best.agree.EffectiveDate
			resolved.ExpiryDate = best.agree.ExpiryDate
		case std != nil:
			resolved.EffectiveDate = std.EffectiveDate
			resolved.ExpiryDate = std.ExpiryDate
		}
		log.Debug("resolved preferential rate", "id", best.rate.ID, "agreement", resolved.TradeAgreement, "duty_type", best.formula.Type)
		return resolved, nil
	}

	if std == nil {
		return nil, apperror.RateNotFound(lookup)
	}
	if standardErr != nil {
		return nil, standardErr
	}

	log.Debug("resolved standard rate", "id", std.ID, "duty_type", standard.Type)
	return &ResolvedRate{
		Formula:       *standard,
		Source:        model.RateSourceStandard,
		EffectiveDate: std.EffectiveDate,
		ExpiryDate:    std.ExpiryDate,
		Standard:      standard,
		Warnings:      warnings,
	}, nil
}

// tiers splits preferential rates into precedence tiers. Rates whose agreement
// is not active on asOf never apply.
func (r *RateResolver) tiers(prefs []model.PreferentialRate, asOf datetime.Date) [][]model.PreferentialRate {
	var linked, unlinked []model.PreferentialRate
	for _, p := range prefs {
		if p.TradeAgreementID == nil {
			unlinked = append(unlinked, p)
			continue
		}
		if a := p.Agreement(); a != nil && a.IsActiveOn(asOf) {
			linked = append(linked, p)
		}
	}

	tiers := [][]model.PreferentialRate{linked}
	if r.allowUnlinked {
		tiers = append(tiers, unlinked)
	}
	return tiers
}

// preferentialFormula gives a preferential rate a duty type. It reuses the
// standard rate's structure when the preferential components satisfy it and
// otherwise derives the type from the components present.
func preferentialFormula(p model.PreferentialRate, std *model.DutyRate) (DutyFormula, error) {
	f := DutyFormula{
		AdValorem:      p.AdValoremRate,
		SpecificAmount: p.SpecificAmount,
		SpecificUnit:   p.SpecificUnit,
		ValuationBasis: model.ValuationCIF,
		Currency:       p.Currency,
	}

	if std != nil {
		inherited := f
		inherited.Type = std.DutyType
		if std.ValuationBasis != "" {
			inherited.ValuationBasis = std.ValuationBasis
		}
		if inherited.SpecificUnit == "" {
			inherited.SpecificUnit = std.SpecificUnit
		}
		if inherited.Currency == "" {
			inherited.Currency = std.Currency
		}
		if inherited.Validate() == nil {
			return inherited, nil
		}
		f.ValuationBasis = inherited.ValuationBasis
	}

	switch {
	case p.AdValoremRate.Valid && p.SpecificAmount.Valid:
		f.Type = model.DutyCompound
	case p.AdValoremRate.Valid:
		f.Type = model.DutyAdValorem
	case p.SpecificAmount.Valid && p.SpecificUnit == model.UnitHead:
		f.Type = model.DutySpecificPerHead
	case p.SpecificAmount.Valid && p.SpecificUnit == model.UnitKg:
		f.Type = model.DutySpecificPerKg
	case p.SpecificAmount.Valid:
		return f, apperror.IncompleteRateData("specificUnit", "preferential specific amount has no unit")
	default:
		return f, apperror.IncompleteRateData("adValoremRate", "preferential rate has no duty components")
	}
	return f, f.Validate()
}

// lowestDuty picks the candidate charging the least duty for q among those
// that can be evaluated for q. Only when none can (or q is nil) are candidates
// ordered by ad valorem rate then specific amount. Remaining ties go to the
// lowest ID.
func lowestDuty(candidates []rateCandidate, q *LaneQuantities) rateCandidate {
	type ranked struct {
		c   rateCandidate
		key [2]decimal.Decimal
	}

	var evaluable []ranked
	if q != nil {
		for _, c := range candidates {
			v := Valuate(c.formula.ValuationBasis, q.ProductValue, q.Freight, q.Insurance)
			duty, err := c.formula.Compute(v.CustomsValue, DutyQuantities{Quantity: q.Quantity, Weight: q.Weight})
			if err != nil {
				continue
			}
			evaluable = append(evaluable, ranked{c: c, key: [2]decimal.Decimal{duty, decimal.Zero}})
		}
	}

	pool := evaluable
	if len(pool) == 0 {
		pool = make([]ranked, 0, len(candidates))
		for _, c := range candidates {
			pool = append(pool, ranked{c: c, key: [2]decimal.Decimal{nullAsZero(c.formula.AdValorem), nullAsZero(c.formula.SpecificAmount)}})
		}
	}

	sort.SliceStable(pool, func(a, b int) bool {
		ka, kb := pool[a].key, pool[b].key
		if c := ka[0].Cmp(kb[0]); c != 0 {
			return c < 0
		}
		if c := ka[1].Cmp(kb[1]); c != 0 {
			return c < 0
		}
		return pool[a].c.rate.ID < pool[b].c.rate.ID
	})
	return pool[0].c
}

func nullAsZero(d decimal.NullDecimal) decimal.Decimal {
	if !d.Valid {
		return decimal.Zero
	}
	return d.Decimal
}
