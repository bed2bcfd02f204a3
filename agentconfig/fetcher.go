package agentconfig

import (
	"context"
	"encoding/json"
)

// Fetcher knows how to load every agent configuration document from some backend.
//
// The returned map is keyed by agent id. Errors for individual documents do not
// prevent the others from being returned.
type Fetcher interface {
	FetchAgentConfigs(ctx context.Context) (configs map[string]json.RawMessage, errs []error)
}
