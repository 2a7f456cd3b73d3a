package service

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/limjunsheng2110/CS203G4T2-Project-sub002/internal/apperror"
	"github.com/limjunsheng2110/CS203G4T2-Project-sub002/internal/model"
	"github.com/limjunsheng2110/CS203G4T2-Project-sub002/pkg/currency"
)

// 4-digit heading, then up to three 2-digit groups, dots optional.
var hsCodePattern = regexp.MustCompile(`^[0-9]{4}(\.?[0-9]{2}){0,3}$`)

var countryCodePattern = regexp.MustCompile(`^[A-Z]{2,3}$`)

// normalizeHSCode trims the code and keeps it verbatim otherwise.
func normalizeHSCode(field, code string) (string, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return "", apperror.InvalidInput(field, "HS code is required")
	}
	if !hsCodePattern.MatchString(code) {
		return "", apperror.InvalidInput(field, fmt.Sprintf("malformed HS code %q", code))
	}
	return code, nil
}

func normalizeCountryCode(field, code string) (string, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return "", apperror.InvalidInput(field, "country code is required")
	}
	if !countryCodePattern.MatchString(code) {
		return "", apperror.InvalidInput(field, fmt.Sprintf("malformed country code %q", code))
	}
	return code, nil
}

func normalizeCurrency(field, code string) (string, error) {
	c, ok := currency.Normalize(code)
	if !ok {
		return "", apperror.InvalidInput(field, fmt.Sprintf("unknown currency %q", code))
	}
	return string(c), nil
}

// normalizeMode uppercases mode and defaults an empty one to SEA.
func normalizeMode(mode string) (model.ShippingMode, error) {
	mode = strings.ToUpper(strings.TrimSpace(mode))
	if mode == "" {
		return model.DefaultShippingMode, nil
	}
	m := model.ShippingMode(mode)
	if !m.IsValid() {
		return "", apperror.InvalidInput("shippingMode", fmt.Sprintf("unknown shipping mode %q", mode))
	}
	return m, nil
}

// requirePositive accepts nil (not supplied) and rejects zero or negative values.
func requirePositive(field string, v *decimal.Decimal) error {
	if v != nil && !v.IsPositive() {
		return apperror.InvalidInput(field, "must be greater than zero")
	}
	return nil
}

func requireNonNegative(field string, v *decimal.Decimal) error {
	if v != nil && v.IsNegative() {
		return apperror.InvalidInput(field, "must not be negative")
	}
	return nil
}

// requireFraction accepts nil and values in [0, 1].
func requireFraction(field string, v *decimal.Decimal) error {
	if v != nil && (v.IsNegative() || v.GreaterThan(decimal.NewFromInt(1))) {
		return apperror.InvalidInput(field, "must be between 0 and 1")
	}
	return nil
}
