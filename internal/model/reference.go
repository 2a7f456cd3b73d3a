package model

import "github.com/shopspring/decimal"

// Country is reference data maintained by an external ingestion job.
// VATRate is a fraction (0.09 for 9%); null means no import VAT/GST.
type Country struct {
	Code         string              `db:"code" json:"code"`
	Name         string              `db:"name" json:"name"`
	Region       string              `db:"region" json:"region,omitempty"`
	CurrencyCode string              `db:"currency_code" json:"currencyCode"`
	VATRate      decimal.NullDecimal `db:"vat_rate" json:"vatRate"`
}

// Product is keyed by HS code. The code is an opaque string; leading zeros matter.
type Product struct {
	HSCode      string  `db:"hs_code" json:"hsCode"`
	Description string  `db:"description" json:"description"`
	Category    *string `db:"category" json:"category,omitempty"`
}
