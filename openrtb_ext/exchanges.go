package openrtb_ext

import (
	"sort"
)

// ExchangeName identifies an ad exchange this service speaks to. It is also the key
// under which agent configurations carry their exchange-specific "providerConfig".
type ExchangeName string

const (
	ExchangeMoPub ExchangeName = "mopub"
)

var exchangeMap = map[string]ExchangeName{
	"mopub": ExchangeMoPub,
}

// GetExchangeName returns the ExchangeName for the given string, if it exists.
// The second argument is true if the name was valid, and false otherwise.
func GetExchangeName(name string) (ExchangeName, bool) {
	exchangeName, ok := exchangeMap[name]
	return exchangeName, ok
}

// CoreExchangeNames returns every exchange with a connector compiled into this binary, in name order.
func CoreExchangeNames() []ExchangeName {
	names := make([]ExchangeName, 0, len(exchangeMap))
	for _, name := range exchangeMap {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })
	return names
}

func (name ExchangeName) String() string {
	return string(name)
}
