package currency

// Conversions allows assessing conversions rates between two currencies.
type Conversions interface {
	// GetRate returns the rate to multiply an amount in `from` by to obtain it in `to`.
	GetRate(from string, to string) (float64, error)
	// GetRates returns the conversion table, if the implementation has one.
	GetRates() *map[string]map[string]float64
}

// ConversionsFromTable returns the static Rates for a configured conversion table,
// or ConstantRates when no table was configured.
func ConversionsFromTable(table map[string]map[string]float64) Conversions {
	if len(table) == 0 {
		return NewConstantRates()
	}
	return NewRates(table)
}
