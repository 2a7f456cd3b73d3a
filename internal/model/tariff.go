package model

import (
	"github.com/shopspring/decimal"

	"github.com/limjunsheng2110/CS203G4T2-Project-sub002/pkg/datetime"
)

// DutyType selects the duty formula
type DutyType string

const (
	DutyAdValorem       DutyType = "AD_VALOREM"
	DutySpecificPerHead DutyType = "SPECIFIC_PER_HEAD"
	DutySpecificPerKg   DutyType = "SPECIFIC_PER_KG"
	DutyCompound        DutyType = "COMPOUND"
	DutyMixedMax        DutyType = "MIXED_MAX"
	DutyMixedMin        DutyType = "MIXED_MIN"
)

// DutyTypes lists every supported duty type.
var DutyTypes = []DutyType{DutyAdValorem, DutySpecificPerHead, DutySpecificPerKg, DutyCompound, DutyMixedMax, DutyMixedMin}

// IsValid reports whether t is a known duty type.
func (t DutyType) IsValid() bool {
	for _, known := range DutyTypes {
		if t == known {
			return true
		}
	}
	return false
}

// ValuationBasis decides what goes into the customs value
type ValuationBasis string

const (
	ValuationCIF         ValuationBasis = "CIF"
	ValuationTransaction ValuationBasis = "TRANSACTION"
)

// SpecificUnit is the unit a specific duty amount is charged per.
type SpecificUnit string

const (
	UnitHead SpecificUnit = "HEAD"
	UnitKg   SpecificUnit = "KG"
)

// RateSource tells whether a lane used the standard or a preferential rate.
type RateSource string

const (
	RateSourceStandard     RateSource = "STANDARD"
	RateSourcePreferential RateSource = "PREFERENTIAL"
)

// DutyRate is the standard (MFN) rate for a lane and HS code.
type DutyRate struct {
	ID               int64               `db:"id" json:"id"`
	HSCode           string              `db:"hs_code" json:"hsCode"`
	ImportingCountry string              `db:"importing_country" json:"importingCountry"`
	ExportingCountry string              `db:"exporting_country" json:"exportingCountry"`
	DutyType         DutyType            `db:"duty_type" json:"dutyType"`
	AdValoremRate    decimal.NullDecimal `db:"ad_valorem_rate" json:"adValoremRate"`   // fraction, 0.05 = 5%
	SpecificAmount   decimal.NullDecimal `db:"specific_amount" json:"specificAmount"` // per SpecificUnit
	SpecificUnit     SpecificUnit        `db:"specific_unit" json:"specificUnit,omitempty"`
	ValuationBasis   ValuationBasis      `db:"valuation_basis" json:"valuationBasis"`
	Currency         string              `db:"currency" json:"currency,omitempty"` // of SpecificAmount; empty = request currency
	EffectiveDate    datetime.Date       `db:"effective_date" json:"effectiveDate"`
	ExpiryDate       *datetime.Date      `db:"expiry_date" json:"expiryDate,omitempty"`
}

// IsEffectiveOn reports whether asOf falls in the rate's window.
func (r *DutyRate) IsEffectiveOn(asOf datetime.Date) bool {
	return asOf.InWindow(r.EffectiveDate, r.ExpiryDate)
}

// TradeAgreement grants preferential rates between members for a time window.
type TradeAgreement struct {
	ID            int64          `db:"id" json:"id"`
	Name          string         `db:"name" json:"name"`
	EffectiveDate datetime.Date  `db:"effective_date" json:"effectiveDate"`
	ExpiryDate    *datetime.Date `db:"expiry_date" json:"expiryDate,omitempty"`
}

// IsActiveOn reports whether the agreement is in force on asOf.
func (a *TradeAgreement) IsActiveOn(asOf datetime.Date) bool {
	return asOf.InWindow(a.EffectiveDate, a.ExpiryDate)
}

// PreferentialRate overrides the standard rate for a lane under a trade agreement.
// Agreement columns are joined in and nil when the row has no agreement.
type PreferentialRate struct {
	ID                 int64               `db:"id" json:"id"`
	TradeAgreementID   *int64              `db:"trade_agreement_id" json:"tradeAgreementId,omitempty"`
	AgreementName      *string             `db:"agreement_name" json:"agreementName,omitempty"`
	AgreementEffective *datetime.Date      `db:"agreement_effective_date" json:"agreementEffectiveDate,omitempty"`
	AgreementExpiry    *datetime.Date      `db:"agreement_expiry_date" json:"agreementExpiryDate,omitempty"`
	HSCode             string              `db:"hs_code" json:"hsCode"`
	ImportingCountry   string              `db:"importing_country" json:"importingCountry"`
	ExportingCountry   string              `db:"exporting_country" json:"exportingCountry"`
	AdValoremRate      decimal.NullDecimal `db:"ad_valorem_rate" json:"adValoremRate"`
	SpecificAmount     decimal.NullDecimal `db:"specific_amount" json:"specificAmount"`
	SpecificUnit       SpecificUnit        `db:"specific_unit" json:"specificUnit,omitempty"`
	Currency           string              `db:"currency" json:"currency,omitempty"`
}

// Agreement returns the linked agreement, or nil for an unlinked rate.
func (p *PreferentialRate) Agreement() *TradeAgreement {
	if p.TradeAgreementID == nil || p.AgreementName == nil || p.AgreementEffective == nil {
		return nil
	}
	return &TradeAgreement{
		ID:            *p.TradeAgreementID,
		Name:          *p.AgreementName,
		EffectiveDate: *p.AgreementEffective,
		ExpiryDate:    p.AgreementExpiry,
	}
}
