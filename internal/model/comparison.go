package model

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/limjunsheng2110/CS203G4T2-Project-sub002/pkg/datetime"
)

// Units accepted by ComparisonRequest.Unit.
const (
	QuantityUnitKg   = "KG"
	QuantityUnitHead = "HEAD"
	QuantityUnitItem = "UNIT"
)

// ComparisonRequest compares sourcing one product from several countries.
// Either ProductValue or Quantity+Unit must be given.
type ComparisonRequest struct {
	SourceCountries    []string         `json:"sourceCountries"`
	DestinationCountry string           `json:"destinationCountry"`
	HSCode             string           `json:"hsCode"`
	ProductName        string           `json:"productName,omitempty"`
	ProductValue       *decimal.Decimal `json:"productValue,omitempty"`
	ProductCurrency    string           `json:"productCurrency,omitempty"` // default: each source country's currency
	Quantity           *decimal.Decimal `json:"quantity,omitempty"`
	Unit               string           `json:"unit,omitempty"`
	Weight             *decimal.Decimal `json:"weight,omitempty"`
	PreferredCurrency  string           `json:"preferredCurrency,omitempty"` // default: destination's currency
	ShippingMode       string           `json:"shippingMode,omitempty"`
	AsOf               datetime.Date    `json:"asOf,omitempty"`
	VATOverride        *decimal.Decimal `json:"vatOrGstOverride,omitempty"`
}

// CountryOption is one ranked source country. Converted amounts are in the
// comparison currency.
type CountryOption struct {
	CountryCode                    string          `json:"countryCode"`
	CountryName                    string          `json:"countryName"`
	OriginalCurrency               string          `json:"originalCurrency"`
	ProductValueInOriginalCurrency decimal.Decimal `json:"productValueInOriginalCurrency"`
	ProductValueConverted          decimal.Decimal `json:"productValueConverted"`
	TariffAmount                   decimal.Decimal `json:"tariffAmount"`
	ShippingCost                   decimal.Decimal `json:"shippingCost"`
	VATAmount                      decimal.Decimal `json:"vatOrGst"`
	TotalCost                      decimal.Decimal `json:"totalCost"`
	ExchangeRate                   decimal.Decimal `json:"exchangeRate"`
	DutyType                       DutyType        `json:"dutyType"`
	TradeAgreement                 string          `json:"tradeAgreement,omitempty"`
	HasFTA                         bool            `json:"hasFta"`
	UsedStaleRate                  bool            `json:"usedStaleRate"`
	Ranking                        int             `json:"ranking"`
	SavingsVsExpensive             decimal.Decimal `json:"savingsVsExpensive"`
	CalculationID                  string          `json:"calculationId"`
}

// LaneFailure reports a source country excluded from ranking and why.
type LaneFailure struct {
	CountryCode string `json:"countryCode"`
	Kind        string `json:"kind"`
	Field       string `json:"field,omitempty"`
	Message     string `json:"message"`
}

// ComparisonResult ranks the viable options, cheapest first.
type ComparisonResult struct {
	ID                     string          `json:"id"`
	RecommendedCountry     string          `json:"recommendedCountry"`
	RecommendedCountryName string          `json:"recommendedCountryName"`
	LowestTotalCost        decimal.Decimal `json:"lowestTotalCost"`
	Currency               string          `json:"currency"`
	DestinationCountry     string          `json:"destinationCountry"`
	HSCode                 string          `json:"hsCode"`
	ProductName            string          `json:"productName,omitempty"`
	Options                []CountryOption `json:"countryOptions"`
	Failures               []LaneFailure   `json:"failures,omitempty"`
	ComparedAt             time.Time       `json:"comparedAt"`
}
