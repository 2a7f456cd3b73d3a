// Package currency provides currency codes and display rounding for landed-cost amounts.
// All monetary amounts are decimal.Decimal to avoid floating-point errors.
package currency

import (
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// Currency represents an ISO 4217 currency code.
type Currency string

// Commonly traded currencies.
const (
	USD Currency = "USD" // US Dollar
	EUR Currency = "EUR" // Euro
	GBP Currency = "GBP" // British Pound
	JPY Currency = "JPY" // Japanese Yen
	CNY Currency = "CNY" // Chinese Yuan
	KRW Currency = "KRW" // South Korean Won
	SGD Currency = "SGD" // Singapore Dollar
	AUD Currency = "AUD" // Australian Dollar
	NZD Currency = "NZD" // New Zealand Dollar
	CAD Currency = "CAD" // Canadian Dollar
	INR Currency = "INR" // Indian Rupee
	BRL Currency = "BRL" // Brazilian Real
	MXN Currency = "MXN" // Mexican Peso
	CHF Currency = "CHF" // Swiss Franc
	VND Currency = "VND" // Vietnamese Dong
	MYR Currency = "MYR" // Malaysian Ringgit
	THB Currency = "THB" // Thai Baht
	IDR Currency = "IDR" // Indonesian Rupiah
	PHP Currency = "PHP" // Philippine Peso
	HKD Currency = "HKD" // Hong Kong Dollar
	TWD Currency = "TWD" // New Taiwan Dollar
	AED Currency = "AED" // UAE Dirham
	ZAR Currency = "ZAR" // South African Rand
)

// DefaultCurrency is used when neither the request nor reference data names one.
const DefaultCurrency = USD

// RateScale is the number of decimal places exchange rates are displayed with.
const RateScale = 6

// CurrencyInfo contains metadata about a currency.
type CurrencyInfo struct {
	Code          Currency
	Name          string
	DecimalPlaces int // Minor units (2 for USD, 0 for JPY)
}

var currencies = map[Currency]CurrencyInfo{
	USD: {Code: USD, Name: "US Dollar", DecimalPlaces: 2},
	EUR: {Code: EUR, Name: "Euro", DecimalPlaces: 2},
	GBP: {Code: GBP, Name: "British Pound", DecimalPlaces: 2},
	JPY: {Code: JPY, Name: "Japanese Yen", DecimalPlaces: 0},
	CNY: {Code: CNY, Name: "Chinese Yuan", DecimalPlaces: 2},
	KRW: {Code: KRW, Name: "South Korean Won", DecimalPlaces: 0},
	SGD: {Code: SGD, Name: "Singapore Dollar", DecimalPlaces: 2},
	AUD: {Code: AUD, Name: "Australian Dollar", DecimalPlaces: 2},
	NZD: {Code: NZD, Name: "New Zealand Dollar", DecimalPlaces: 2},
	CAD: {Code: CAD, Name: "Canadian Dollar", DecimalPlaces: 2},
	INR: {Code: INR, Name: "Indian Rupee", DecimalPlaces: 2},
	BRL: {Code: BRL, Name: "Brazilian Real", DecimalPlaces: 2},
	MXN: {Code: MXN, Name: "Mexican Peso", DecimalPlaces: 2},
	CHF: {Code: CHF, Name: "Swiss Franc", DecimalPlaces: 2},
	VND: {Code: VND, Name: "Vietnamese Dong", DecimalPlaces: 0},
	MYR: {Code: MYR, Name: "Malaysian Ringgit", DecimalPlaces: 2},
	THB: {Code: THB, Name: "Thai Baht", DecimalPlaces: 2},
	IDR: {Code: IDR, Name: "Indonesian Rupiah", DecimalPlaces: 2},
	PHP: {Code: PHP, Name: "Philippine Peso", DecimalPlaces: 2},
	HKD: {Code: HKD, Name: "Hong Kong Dollar", DecimalPlaces: 2},
	TWD: {Code: TWD, Name: "New Taiwan Dollar", DecimalPlaces: 2},
	AED: {Code: AED, Name: "UAE Dirham", DecimalPlaces: 2},
	ZAR: {Code: ZAR, Name: "South African Rand", DecimalPlaces: 2},
}

// SupportedCurrencyCodes returns all known currency codes, sorted.
func SupportedCurrencyCodes() []string {
	result := make([]string, 0, len(currencies))
	for c := range currencies {
		result = append(result, string(c))
	}
	sort.Strings(result)
	return result
}

// IsValid checks if a currency code is known. Codes are case-sensitive here;
// use Normalize for user input.
func IsValid(code string) bool {
	_, ok := currencies[Currency(code)]
	return ok
}

// Normalize trims and uppercases code and reports whether it is known.
func Normalize(code string) (Currency, bool) {
	c := Currency(strings.ToUpper(strings.TrimSpace(code)))
	_, ok := currencies[c]
	return c, ok
}

// GetInfo returns metadata for a currency code.
func GetInfo(code Currency) (CurrencyInfo, bool) {
	info, ok := currencies[code]
	return info, ok
}

// DecimalPlaces returns the display scale for code, 2 when unknown.
func DecimalPlaces(code Currency) int32 {
	if info, ok := currencies[code]; ok {
		return int32(info.DecimalPlaces)
	}
	return 2
}

// Money represents a monetary amount with currency.
type Money struct {
	Amount   decimal.Decimal `json:"amount"`
	Currency Currency        `json:"currency"`
}

// NewMoney creates a new Money value.
func NewMoney(amount decimal.Decimal, curr Currency) Money {
	if curr == "" {
		curr = DefaultCurrency
	}
	return Money{Amount: amount, Currency: curr}
}

// Zero returns a zero amount in the specified currency.
func Zero(curr Currency) Money {
	return NewMoney(decimal.Zero, curr)
}

// Add returns the sum of two Money values.
// Returns an error if currencies don't match.
func (m Money) Add(other Money) (Money, error) {
	if m.Currency != other.Currency {
		return Money{}, fmt.Errorf("currency mismatch: %s vs %s", m.Currency, other.Currency)
	}
	return NewMoney(m.Amount.Add(other.Amount), m.Currency), nil
}

// Multiply returns the Money multiplied by a factor.
func (m Money) Multiply(factor decimal.Decimal) Money {
	return NewMoney(m.Amount.Mul(factor), m.Currency)
}

// Convert returns the amount multiplied by rate and restated in to.
func (m Money) Convert(rate decimal.Decimal, to Currency) Money {
	return NewMoney(m.Amount.Mul(rate), to)
}

// Round rounds the amount to the currency's decimal places.
func (m Money) Round() Money {
	return NewMoney(m.Amount.Round(DecimalPlaces(m.Currency)), m.Currency)
}

// String returns the rounded amount followed by the code, e.g. "500.00 SGD".
func (m Money) String() string {
	return fmt.Sprintf("%s %s", m.Amount.StringFixed(DecimalPlaces(m.Currency)), m.Currency)
}

// RoundRate rounds an exchange rate for display.
func RoundRate(rate decimal.Decimal) decimal.Decimal {
	return rate.Round(RateScale)
}
