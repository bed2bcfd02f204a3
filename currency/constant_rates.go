package currency

// ConstantRates only converts a currency to itself. It is used when no rate table is
// configured, in which case every agent must bid in the exchange's own currency.
type ConstantRates struct{}

func NewConstantRates() *ConstantRates {
	return &ConstantRates{}
}

func (r *ConstantRates) GetRate(from string, to string) (float64, error) {
	fromCode, toCode, err := parsePair(from, to)
	if err != nil {
		return 0, err
	}
	if fromCode != toCode {
		return 0, ConversionNotFoundError{FromCur: fromCode, ToCur: toCode}
	}
	return 1, nil
}

// GetRates is nil: there is no table.
func (r *ConstantRates) GetRates() *map[string]map[string]float64 {
	return nil
}
