package empty_fetcher

import (
	"context"
	"encoding/json"
)

// EmptyFetcher is a nil-object which has no agent configurations.
// If the connector is configured to use this, it never bids.
type EmptyFetcher struct{}

func (fetcher EmptyFetcher) FetchAgentConfigs(ctx context.Context) (map[string]json.RawMessage, []error) {
	return nil, nil
}
