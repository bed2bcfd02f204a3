package currency

import (
	"testing"

	"github.com/bidconnect/exchange-connector/errortypes"
	"github.com/stretchr/testify/assert"
)

func TestConstantRatesGetRate(t *testing.T) {
	rates := NewConstantRates()

	testCases := []struct {
		description  string
		from         string
		to           string
		expectedRate float64
		hasError     bool
	}{
		{description: "different currencies", from: "USD", to: "GBP", hasError: true},
		{description: "empty from", from: "", to: "EUR", hasError: true},
		{description: "not an ISO code", from: "foo", to: "foo", hasError: true},
		{description: "same currency", from: "USD", to: "USD", expectedRate: 1},
		{description: "same currency, lower case", from: "eur", to: "EUR", expectedRate: 1},
	}

	for _, tc := range testCases {
		rate, err := rates.GetRate(tc.from, tc.to)

		if tc.hasError {
			assert.Error(t, err, tc.description)
			assert.Equal(t, float64(0), rate, tc.description)
		} else {
			assert.NoError(t, err, tc.description)
			assert.Equal(t, tc.expectedRate, rate, tc.description)
		}
	}
	assert.Nil(t, rates.GetRates())
}

func TestRatesGetRate(t *testing.T) {
	rates := NewRates(map[string]map[string]float64{
		"usd": {
			"gbp": 0.8,
			"EUR": 0.5,
		},
	})

	testCases := []struct {
		description  string
		from         string
		to           string
		expectedRate float64
		expectedErr  error
	}{
		{description: "direct", from: "USD", to: "GBP", expectedRate: 0.8},
		{description: "reciprocal", from: "EUR", to: "USD", expectedRate: 2},
		{description: "intermediate", from: "EUR", to: "GBP", expectedRate: 1.6},
		{description: "identity", from: "JPY", to: "JPY", expectedRate: 1},
		{
			description: "missing",
			from:        "USD",
			to:          "JPY",
			expectedErr: ConversionNotFoundError{FromCur: "USD", ToCur: "JPY"},
		},
	}

	for _, tc := range testCases {
		rate, err := rates.GetRate(tc.from, tc.to)

		if tc.expectedErr != nil {
			assert.Equal(t, tc.expectedErr, err, tc.description)
			continue
		}
		assert.NoError(t, err, tc.description)
		assert.InDelta(t, tc.expectedRate, rate, 1e-9, tc.description)
	}
}

func TestRatesWithoutTable(t *testing.T) {
	rates := &Rates{}

	_, err := rates.GetRate("USD", "EUR")
	assert.EqualError(t, err, "rates are nil")
}

func TestConversionNotFoundIsWarning(t *testing.T) {
	_, err := NewRates(map[string]map[string]float64{"USD": {"EUR": 0.9}}).GetRate("USD", "JPY")

	assert.Equal(t, errortypes.ConversionRateWarningCode, errortypes.ReadCode(err))
	assert.True(t, errortypes.IsWarning(err))
}

func TestConversionsFromTable(t *testing.T) {
	assert.IsType(t, &ConstantRates{}, ConversionsFromTable(nil))
	assert.IsType(t, &Rates{}, ConversionsFromTable(map[string]map[string]float64{"USD": {"EUR": 1}}))
}
