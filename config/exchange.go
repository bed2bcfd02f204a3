package config

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	validator "github.com/asaskevich/govalidator"
	"github.com/bidconnect/exchange-connector/openrtb_ext"
	"golang.org/x/text/currency"
)

// maxSharedSecretBytes is the largest key the Blowfish key schedule accepts.
const maxSharedSecretBytes = 56

// Exchange holds the static, exchange-specific settings a connector is built with.
type Exchange struct {
	Disabled        bool   `mapstructure:"disabled"`
	AuctionResource string `mapstructure:"auction_resource"`
	AuctionVerb     string `mapstructure:"auction_verb"`
	// WinNoticeURL is copied into every bid as "nurl". The exchange calls it when the bid wins.
	WinNoticeURL string `mapstructure:"win_notice_url"`
	// SharedSecret is the key the exchange encrypts the clearing price macro with.
	SharedSecret string `mapstructure:"shared_secret"`
	// Currency is the ISO-4217 code the exchange expects bid prices in.
	Currency        string `mapstructure:"currency"`
	TimeAvailableMs int    `mapstructure:"time_available_ms"`
}

// TimeAvailable is the response budget granted by the exchange when the request does not carry one.
func (e Exchange) TimeAvailable() time.Duration {
	return time.Duration(e.TimeAvailableMs) * time.Millisecond
}

func validateExchanges(exchanges map[string]Exchange, errs []error) []error {
	for name, exchange := range exchanges {
		if exchange.Disabled {
			continue
		}
		if _, ok := openrtb_ext.GetExchangeName(name); !ok {
			errs = append(errs, fmt.Errorf("exchanges.%s is not a supported exchange", name))
			continue
		}
		errs = exchange.validate(name, errs)
	}
	return errs
}

func (e Exchange) validate(name string, errs []error) []error {
	// Validating using both IsURL and IsRequestURL because IsURL allows relative paths
	// whereas IsRequestURL requires absolute path but fails to check other valid URL
	// format constraints.
	if e.WinNoticeURL == "" {
		errs = append(errs, fmt.Errorf("There's no win notice URL for %s. Bids cannot be placed. "+
			"Please set exchanges.%s.win_notice_url in your app config", name, name))
	} else if !validator.IsURL(e.WinNoticeURL) || !validator.IsRequestURL(e.WinNoticeURL) {
		errs = append(errs, fmt.Errorf("The win notice URL: %s for %s is not a valid URL", e.WinNoticeURL, name))
	}

	if len(e.SharedSecret) == 0 || len(e.SharedSecret) > maxSharedSecretBytes {
		errs = append(errs, fmt.Errorf("exchanges.%s.shared_secret must be between 1 and %d bytes long", name, maxSharedSecretBytes))
	}

	if _, err := currency.ParseISO(e.Currency); err != nil {
		errs = append(errs, fmt.Errorf("exchanges.%s.currency %q is not an ISO-4217 currency code: %v", name, e.Currency, err))
	}

	if e.TimeAvailableMs <= 0 {
		errs = append(errs, fmt.Errorf("exchanges.%s.time_available_ms must be positive. Got %d", name, e.TimeAvailableMs))
	}

	if e.AuctionVerb != http.MethodPost && e.AuctionVerb != http.MethodGet {
		errs = append(errs, fmt.Errorf("exchanges.%s.auction_verb must be POST or GET. Got %q", name, e.AuctionVerb))
	}

	if !strings.HasPrefix(e.AuctionResource, "/") {
		errs = append(errs, fmt.Errorf("exchanges.%s.auction_resource must start with '/'. Got %q", name, e.AuctionResource))
	}
	return errs
}

func validateCurrencyRates(rates map[string]map[string]float64, errs []error) []error {
	for from, targets := range rates {
		if _, err := currency.ParseISO(from); err != nil {
			errs = append(errs, fmt.Errorf("currency_rates.%s is not an ISO-4217 currency code", from))
		}
		for to, rate := range targets {
			if _, err := currency.ParseISO(to); err != nil {
				errs = append(errs, fmt.Errorf("currency_rates.%s.%s is not an ISO-4217 currency code", from, to))
			}
			if rate <= 0 {
				errs = append(errs, fmt.Errorf("currency_rates.%s.%s must be positive. Got %f", from, to, rate))
			}
		}
	}
	return errs
}
