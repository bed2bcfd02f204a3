package endpoints

import (
	"net/http"

	"github.com/bidconnect/exchange-connector/currency"
	"github.com/bidconnect/exchange-connector/logger"
	"github.com/bidconnect/exchange-connector/util/jsonutil"
)

// currencyRatesInfo is what /currency/rates reports about the conversions bids are priced with.
type currencyRatesInfo struct {
	Active bool                           `json:"active"`
	Rates  *map[string]map[string]float64 `json:"rates,omitempty"`
}

func newCurrencyRatesInfo(conversions currency.Conversions) currencyRatesInfo {
	if conversions == nil {
		return currencyRatesInfo{}
	}
	return currencyRatesInfo{
		Active: true,
		Rates:  conversions.GetRates(),
	}
}

// NewCurrencyRatesEndpoint returns the currency rates the connectors convert bid prices with.
func NewCurrencyRatesEndpoint(conversions currency.Conversions) http.HandlerFunc {
	currencyRateInfo := newCurrencyRatesInfo(conversions)

	return func(w http.ResponseWriter, _ *http.Request) {
		jsonOutput, err := jsonutil.Marshal(currencyRateInfo)
		if err != nil {
			logger.Errorf("/currency/rates Critical error when trying to marshal currencyRateInfo: %v", err)
			w.WriteHeader(http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write(jsonOutput)
	}
}
