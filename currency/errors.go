package currency

import (
	"fmt"

	"github.com/bidconnect/exchange-connector/errortypes"
)

// ConversionNotFoundError is returned by Conversions.GetRate when neither the conversion
// rate between the two currencies nor its reciprocal can be found.
type ConversionNotFoundError struct {
	FromCur, ToCur string
}

func (err ConversionNotFoundError) Error() string {
	return fmt.Sprintf("Currency conversion rate not found: '%s' => '%s'", err.FromCur, err.ToCur)
}

func (err ConversionNotFoundError) Code() int {
	return errortypes.ConversionRateWarningCode
}

// Severity is a warning: an agent priced in an unknown currency only misses the auction.
func (err ConversionNotFoundError) Severity() errortypes.Severity {
	return errortypes.SeverityWarning
}
