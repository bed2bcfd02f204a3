package exchange

import (
	"fmt"
	"sort"

	"github.com/bidconnect/exchange-connector/adapters"
	"github.com/bidconnect/exchange-connector/config"
	"github.com/bidconnect/exchange-connector/currency"
	"github.com/bidconnect/exchange-connector/openrtb_ext"
)

// BuildConnectors builds a Connector for every enabled exchange of cfg.
func BuildConnectors(cfg *config.Configuration, conversions currency.Conversions) (map[openrtb_ext.ExchangeName]adapters.Connector, []error) {
	return buildConnectors(cfg.EnabledExchanges(), Builders(), conversions)
}

func buildConnectors(exchanges map[openrtb_ext.ExchangeName]config.Exchange, builders map[openrtb_ext.ExchangeName]adapters.Builder, conversions currency.Conversions) (map[openrtb_ext.ExchangeName]adapters.Connector, []error) {
	connectors := make(map[openrtb_ext.ExchangeName]adapters.Connector, len(exchanges))
	var errs []error

	for name, exchangeCfg := range exchanges {
		builder, builderFound := builders[name]
		if !builderFound {
			errs = append(errs, fmt.Errorf("%v: builder not registered", name))
			continue
		}

		connector, builderErr := builder(name, exchangeCfg, conversions)
		if builderErr != nil {
			errs = append(errs, fmt.Errorf("%v: %v", name, builderErr))
			continue
		}
		connectors[name] = connector
	}

	if len(errs) > 0 {
		return nil, errs
	}
	return connectors, nil
}

// sortedNames returns the exchange names of connectors in name order.
func sortedNames(connectors map[openrtb_ext.ExchangeName]adapters.Connector) []openrtb_ext.ExchangeName {
	names := make([]openrtb_ext.ExchangeName, 0, len(connectors))
	for name := range connectors {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })
	return names
}
