package model

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/limjunsheng2110/CS203G4T2-Project-sub002/pkg/datetime"
)

// CalculationRequest asks for the landed cost of one lane.
// ProductValue, Freight and Insurance are in Currency.
type CalculationRequest struct {
	HSCode           string           `json:"hsCode"`
	ImportingCountry string           `json:"importingCountry"`
	ExportingCountry string           `json:"exportingCountry"`
	ProductValue     decimal.Decimal  `json:"productValue"`
	Currency         string           `json:"currency,omitempty"`       // default: exporting country's currency
	TargetCurrency   string           `json:"targetCurrency,omitempty"` // default: importing country's currency
	Freight          *decimal.Decimal `json:"freight,omitempty"`
	Insurance        *decimal.Decimal `json:"insurance,omitempty"`
	Quantity         *decimal.Decimal `json:"quantity,omitempty"` // heads or units
	Weight           *decimal.Decimal `json:"weight,omitempty"`   // kg
	ShippingMode     string           `json:"shippingMode,omitempty"`
	AsOf             datetime.Date    `json:"asOf,omitempty"` // default: today
	ZeroShipping     bool             `json:"zeroShipping,omitempty"`
	VATOverride      *decimal.Decimal `json:"vatOrGstOverride,omitempty"` // fraction; default: importing country's rate
}

// CalculationResult is a fully populated single-lane calculation.
// Amounts before conversion are in Currency; Converted* are in TargetCurrency.
type CalculationResult struct {
	ID                 string           `json:"id"`
	HSCode             string           `json:"hsCode"`
	ProductDescription string           `json:"productDescription,omitempty"`
	ImportingCountry   string           `json:"importingCountry"`
	ImportingName      string           `json:"importingCountryName,omitempty"`
	ExportingCountry   string           `json:"exportingCountry"`
	ExportingName      string           `json:"exportingCountryName,omitempty"`
	ShippingMode       ShippingMode     `json:"shippingMode"`
	AsOf               datetime.Date    `json:"asOf"`
	Currency           string           `json:"currency"`
	ProductValue       decimal.Decimal  `json:"productValue"`
	Freight            decimal.Decimal  `json:"freight"`
	Insurance          decimal.Decimal  `json:"insurance"`
	Quantity           *decimal.Decimal `json:"quantity,omitempty"`
	Weight             *decimal.Decimal `json:"weight,omitempty"`

	ValuationBasis ValuationBasis      `json:"valuationBasis"`
	CustomsValue   decimal.Decimal     `json:"customsValue"`
	DutyType       DutyType            `json:"dutyType"`
	AdValoremRate  decimal.NullDecimal `json:"adValoremRate"`
	SpecificAmount decimal.NullDecimal `json:"specificAmount"`
	SpecificUnit   SpecificUnit        `json:"specificUnit,omitempty"`
	RateSource     RateSource          `json:"rateSource"`
	TradeAgreement string              `json:"tradeAgreement,omitempty"`

	DutyAmount   decimal.Decimal `json:"dutyAmount"`
	ShippingCost decimal.Decimal `json:"shippingCost"`
	VATRate      decimal.Decimal `json:"vatRate"`
	VATAmount    decimal.Decimal `json:"vatOrGst"` // VATRate x (CustomsValue + DutyAmount)
	TotalCost    decimal.Decimal `json:"totalCost"`

	TargetCurrency        string          `json:"targetCurrency"`
	ExchangeRate          decimal.Decimal `json:"exchangeRate"`
	ConvertedProductValue decimal.Decimal `json:"convertedProductValue"`
	ConvertedDuty         decimal.Decimal `json:"convertedDuty"`
	ConvertedShipping     decimal.Decimal `json:"convertedShipping"`
	ConvertedVAT          decimal.Decimal `json:"convertedVatOrGst"`
	ConvertedTotal        decimal.Decimal `json:"convertedTotal"`
	UsedStaleRate         bool            `json:"usedStaleRate"`
	RateTimestamp         *time.Time      `json:"rateTimestamp,omitempty"`

	DefaultedFields []string  `json:"defaultedFields,omitempty"`
	Warnings        []string  `json:"warnings,omitempty"`
	CalculatedAt    time.Time `json:"calculatedAt"`
}

// HasTradeAgreement reports whether a preferential rate under an agreement applied.
func (r *CalculationResult) HasTradeAgreement() bool {
	return r.TradeAgreement != ""
}
