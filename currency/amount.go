package currency

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// cpmPrecision is the number of decimal places kept on wire prices (0.0001 CPM).
const cpmPrecision int32 = 4

// PriceUnit is the unit an Amount is expressed in.
type PriceUnit string

const (
	// UnitCPM is a price per thousand impressions.
	UnitCPM PriceUnit = "CPM"
	// UnitCPI is a price per single impression.
	UnitCPI PriceUnit = "CPI"
	// UnitMicroCPM is a price per thousand impressions in millionths of the currency.
	UnitMicroCPM PriceUnit = "MicroCPM"
)

// Amount is a monetary value in a given currency and unit.
type Amount struct {
	Value    decimal.Decimal `json:"value"`
	Currency string          `json:"currency"`
	Unit     PriceUnit       `json:"unit"`
}

// NewCPM returns an Amount per thousand impressions.
func NewCPM(value float64, cur string) Amount {
	return Amount{Value: decimal.NewFromFloat(value), Currency: cur, Unit: UnitCPM}
}

func (a Amount) String() string {
	return fmt.Sprintf("%s %s %s", a.Value.String(), a.Currency, a.Unit)
}

// IsZero reports whether the amount carries no value.
func (a Amount) IsZero() bool {
	return a.Value.IsZero()
}

// ToCPM converts the amount to a price per thousand impressions in currency `to`,
// rounded to cpmPrecision decimal places.
func (a Amount) ToCPM(to string, conversions Conversions) (decimal.Decimal, error) {
	var cpm decimal.Decimal
	switch a.Unit {
	case UnitCPM, "":
		cpm = a.Value
	case UnitCPI:
		cpm = a.Value.Mul(decimal.NewFromInt(1000))
	case UnitMicroCPM:
		cpm = a.Value.Div(decimal.NewFromInt(1000000))
	default:
		return decimal.Zero, fmt.Errorf("unknown price unit %q", a.Unit)
	}

	rate, err := conversions.GetRate(a.Currency, to)
	if err != nil {
		return decimal.Zero, err
	}

	return cpm.Mul(decimal.NewFromFloat(rate)).Round(cpmPrecision), nil
}
