package exchange

import (
	"github.com/bidconnect/exchange-connector/adapters"
	"github.com/bidconnect/exchange-connector/adapters/mopub"
	"github.com/bidconnect/exchange-connector/openrtb_ext"
)

// Builders returns the connector builder of every exchange compiled into this binary.
func Builders() map[openrtb_ext.ExchangeName]adapters.Builder {
	return map[openrtb_ext.ExchangeName]adapters.Builder{
		openrtb_ext.ExchangeMoPub: mopub.Builder,
	}
}
