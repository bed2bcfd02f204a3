package currency

import (
	"errors"
	"strings"

	"golang.org/x/text/currency"
)

// Rates holds a static conversion table keyed by ISO-4217 code: Conversions[FROM][TO] = rate.
type Rates struct {
	Conversions map[string]map[string]float64 `json:"conversions"`
}

// NewRates upper-cases every currency code of the table, since configuration loaders are
// free to lower-case map keys.
func NewRates(conversions map[string]map[string]float64) *Rates {
	normalized := make(map[string]map[string]float64, len(conversions))
	for from, targets := range conversions {
		row := make(map[string]float64, len(targets))
		for to, rate := range targets {
			row[strings.ToUpper(to)] = rate
		}
		normalized[strings.ToUpper(from)] = row
	}
	return &Rates{Conversions: normalized}
}

// GetRate looks the rate up directly, then through its reciprocal, then through a currency
// both are quoted against. Malformed codes are errors; a missing rate is a
// ConversionNotFoundError.
func (r *Rates) GetRate(from, to string) (float64, error) {
	fromCode, toCode, err := parsePair(from, to)
	if err != nil {
		return 0, err
	}
	if fromCode == toCode {
		return 1, nil
	}
	if r.Conversions == nil {
		return 0, errors.New("rates are nil")
	}

	if rate, ok := r.Conversions[fromCode][toCode]; ok {
		return rate, nil
	}
	if rate, ok := r.Conversions[toCode][fromCode]; ok {
		return 1 / rate, nil
	}
	for _, quotes := range r.Conversions {
		toRate, hasTo := quotes[toCode]
		fromRate, hasFrom := quotes[fromCode]
		if hasTo && hasFrom {
			return toRate / fromRate, nil
		}
	}
	return 0, ConversionNotFoundError{FromCur: fromCode, ToCur: toCode}
}

func (r *Rates) GetRates() *map[string]map[string]float64 {
	return &r.Conversions
}

// parsePair validates two ISO-4217 codes and returns their canonical form.
func parsePair(from, to string) (string, string, error) {
	fromUnit, err := currency.ParseISO(from)
	if err != nil {
		return "", "", err
	}
	toUnit, err := currency.ParseISO(to)
	if err != nil {
		return "", "", err
	}
	return fromUnit.String(), toUnit.String(), nil
}
