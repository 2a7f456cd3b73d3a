package service

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/limjunsheng2110/CS203G4T2-Project-sub002/internal/apperror"
	"github.com/limjunsheng2110/CS203G4T2-Project-sub002/internal/model"
)

// DutyFormula is a validated duty rate structure ready to be evaluated.
// Currency is the currency of SpecificAmount; empty means the valuation currency.
type DutyFormula struct {
	Type           model.DutyType
	AdValorem      decimal.NullDecimal
	SpecificAmount decimal.NullDecimal
	SpecificUnit   model.SpecificUnit
	ValuationBasis model.ValuationBasis
	Currency       string
}

// DutyQuantities are the physical measures a specific component is charged on.
type DutyQuantities struct {
	Quantity *decimal.Decimal // heads or units
	Weight   *decimal.Decimal // kg
}

type dutyStrategy struct {
	needsAdValorem bool
	needsSpecific  bool
	fixedUnit      model.SpecificUnit
	combine        func(adValorem, specific decimal.Decimal) decimal.Decimal
}

var dutyStrategies = map[model.DutyType]dutyStrategy{
	model.DutyAdValorem: {
		needsAdValorem: true,
		combine:        func(av, _ decimal.Decimal) decimal.Decimal { return av },
	},
	model.DutySpecificPerHead: {
		needsSpecific: true,
		fixedUnit:     model.UnitHead,
		combine:       func(_, sp decimal.Decimal) decimal.Decimal { return sp },
	},
	model.DutySpecificPerKg: {
		needsSpecific: true,
		fixedUnit:     model.UnitKg,
		combine:       func(_, sp decimal.Decimal) decimal.Decimal { return sp },
	},
	model.DutyCompound: {
		needsAdValorem: true,
		needsSpecific:  true,
		combine:        func(av, sp decimal.Decimal) decimal.Decimal { return av.Add(sp) },
	},
	model.DutyMixedMax: {
		needsAdValorem: true,
		needsSpecific:  true,
		combine:        func(av, sp decimal.Decimal) decimal.Decimal { return decimal.Max(av, sp) },
	},
	model.DutyMixedMin: {
		needsAdValorem: true,
		needsSpecific:  true,
		combine:        func(av, sp decimal.Decimal) decimal.Decimal { return decimal.Min(av, sp) },
	},
}

var one = decimal.NewFromInt(1)

// NewDutyFormula builds a formula from a standard duty rate. An empty valuation
// basis defaults to CIF.
func NewDutyFormula(rate *model.DutyRate) DutyFormula {
	f := DutyFormula{
		Type:           rate.DutyType,
		AdValorem:      rate.AdValoremRate,
		SpecificAmount: rate.SpecificAmount,
		SpecificUnit:   rate.SpecificUnit,
		ValuationBasis: rate.ValuationBasis,
		Currency:       rate.Currency,
	}
	if f.ValuationBasis == "" {
		f.ValuationBasis = model.ValuationCIF
	}
	return f
}

// Validate checks that every component the duty type needs is present and in range.
func (f DutyFormula) Validate() error {
	strategy, ok := dutyStrategies[f.Type]
	if !ok {
		return apperror.IncompleteRateData("dutyType", fmt.Sprintf("unknown duty type %q", f.Type))
	}
	if f.ValuationBasis != model.ValuationCIF && f.ValuationBasis != model.ValuationTransaction {
		return apperror.IncompleteRateData("valuationBasis", fmt.Sprintf("unknown valuation basis %q", f.ValuationBasis))
	}

	if strategy.needsAdValorem {
		if !f.AdValorem.Valid {
			return apperror.IncompleteRateData("adValoremRate", fmt.Sprintf("%s rate has no ad valorem component", f.Type))
		}
		if f.AdValorem.Decimal.IsNegative() || f.AdValorem.Decimal.GreaterThan(one) {
			return apperror.IncompleteRateData("adValoremRate", fmt.Sprintf("ad valorem rate %s is outside 0..1", f.AdValorem.Decimal))
		}
	}

	if strategy.needsSpecific {
		if !f.SpecificAmount.Valid {
			return apperror.IncompleteRateData("specificAmount", fmt.Sprintf("%s rate has no specific component", f.Type))
		}
		if f.SpecificAmount.Decimal.IsNegative() {
			return apperror.IncompleteRateData("specificAmount", fmt.Sprintf("specific amount %s is negative", f.SpecificAmount.Decimal))
		}
		if unit := f.unit(); unit != model.UnitHead && unit != model.UnitKg {
			return apperror.IncompleteRateData("specificUnit", fmt.Sprintf("%s rate has no usable specific unit", f.Type))
		}
	}
	return nil
}

// unit is the unit the specific component is charged per. Pure specific types
// fix it; the combined types take it from the rate.
func (f DutyFormula) unit() model.SpecificUnit {
	if s, ok := dutyStrategies[f.Type]; ok && s.fixedUnit != "" {
		return s.fixedUnit
	}
	return f.SpecificUnit
}

// Unit returns the effective specific unit, empty for pure ad valorem rates.
func (f DutyFormula) Unit() model.SpecificUnit {
	if s, ok := dutyStrategies[f.Type]; ok && !s.needsSpecific {
		return ""
	}
	return f.unit()
}

// NeedsSpecific reports whether the formula has a specific component.
func (f DutyFormula) NeedsSpecific() bool {
	return dutyStrategies[f.Type].needsSpecific
}

// WithSpecificAmount returns a copy charging amount (in currency) per unit.
func (f DutyFormula) WithSpecificAmount(amount decimal.Decimal, currency string) DutyFormula {
	f.SpecificAmount = decimal.NewNullDecimal(amount)
	f.Currency = currency
	return f
}

// Compute evaluates the formula against customsValue. Quantities are only
// consulted by types with a specific component.
func (f DutyFormula) Compute(customsValue decimal.Decimal, q DutyQuantities) (decimal.Decimal, error) {
	if err := f.Validate(); err != nil {
		return decimal.Zero, err
	}
	strategy := dutyStrategies[f.Type]

	adValorem := decimal.Zero
	if strategy.needsAdValorem {
		adValorem = f.AdValorem.Decimal.Mul(customsValue)
	}

	specific := decimal.Zero
	if strategy.needsSpecific {
		measure, err := f.measure(q)
		if err != nil {
			return decimal.Zero, err
		}
		specific = f.SpecificAmount.Decimal.Mul(measure)
	}

	return strategy.combine(adValorem, specific), nil
}

func (f DutyFormula) measure(q DutyQuantities) (decimal.Decimal, error) {
	field, v := "quantity", q.Quantity
	if f.unit() == model.UnitKg {
		field, v = "weight", q.Weight
	}
	if v == nil {
		return decimal.Zero, apperror.InvalidInput(field, fmt.Sprintf("required for %s duty", f.Type))
	}
	if !v.IsPositive() {
		return decimal.Zero, apperror.InvalidInput(field, "must be greater than zero")
	}
	return *v, nil
}

// Valuation is the customs value established from a valuation basis.
type Valuation struct {
	Basis           model.ValuationBasis
	CustomsValue    decimal.Decimal
	Freight         decimal.Decimal
	Insurance       decimal.Decimal
	DefaultedFields []string
}

// Valuate establishes the customs value. Under CIF, missing freight or insurance
// counts as zero and is listed in DefaultedFields. Under TRANSACTION they are
// itemized but excluded from the customs value.
func Valuate(basis model.ValuationBasis, productValue decimal.Decimal, freight, insurance *decimal.Decimal) Valuation {
	v := Valuation{Basis: basis, CustomsValue: productValue}
	if freight != nil {
		v.Freight = *freight
	}
	if insurance != nil {
		v.Insurance = *insurance
	}

	if basis != model.ValuationCIF {
		return v
	}
	if freight == nil {
		v.DefaultedFields = append(v.DefaultedFields, "freight")
	}
	if insurance == nil {
		v.DefaultedFields = append(v.DefaultedFields, "insurance")
	}
	v.CustomsValue = productValue.Add(v.Freight).Add(v.Insurance)
	return v
}
