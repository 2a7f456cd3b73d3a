package model

import "github.com/shopspring/decimal"

// ShippingMode is the transport mode of a lane
type ShippingMode string

const (
	ModeAir  ShippingMode = "AIR"
	ModeSea  ShippingMode = "SEA"
	ModeLand ShippingMode = "LAND"
)

// DefaultShippingMode is used when a request names none.
const DefaultShippingMode = ModeSea

// IsValid reports whether m is a known mode.
func (m ShippingMode) IsValid() bool {
	return m == ModeAir || m == ModeSea || m == ModeLand
}

// ShippingRateType selects how a shipping rate is applied
type ShippingRateType string

const (
	ShippingFlat      ShippingRateType = "FLAT"
	ShippingPerWeight ShippingRateType = "PER_WEIGHT"
)

// ShippingRate is keyed by the directed country pair and, optionally, mode.
// An empty Mode marks the lane-wide row used when no mode-specific row exists.
type ShippingRate struct {
	ID               int64               `db:"id" json:"id"`
	ImportingCountry string              `db:"importing_country" json:"importingCountry"`
	ExportingCountry string              `db:"exporting_country" json:"exportingCountry"`
	Mode             ShippingMode        `db:"mode" json:"mode,omitempty"`
	RateType         ShippingRateType    `db:"rate_type" json:"rateType"`
	Amount           decimal.Decimal     `db:"amount" json:"amount"`
	DistanceKm       decimal.NullDecimal `db:"distance_km" json:"distanceKm"`
	Currency         string              `db:"currency" json:"currency,omitempty"`
}
