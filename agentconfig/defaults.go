package agentconfig

import (
	"context"
	"encoding/json"
	"fmt"

	jsonpatch "github.com/evanphx/json-patch"
)

// WithDefaults returns a Fetcher which merge-patches (RFC 7386) every document fetched
// from fetcher onto defaults. Fields set by the agent win; objects such as
// "providerConfig" are merged key by key. An empty defaults returns fetcher unchanged.
func WithDefaults(fetcher Fetcher, defaults json.RawMessage) Fetcher {
	if len(defaults) == 0 {
		return fetcher
	}
	return &defaultsFetcher{
		fetcher:  fetcher,
		defaults: defaults,
	}
}

type defaultsFetcher struct {
	fetcher  Fetcher
	defaults json.RawMessage
}

func (f *defaultsFetcher) FetchAgentConfigs(ctx context.Context) (map[string]json.RawMessage, []error) {
	configs, errs := f.fetcher.FetchAgentConfigs(ctx)
	merged := make(map[string]json.RawMessage, len(configs))
	for id, data := range configs {
		doc, err := jsonpatch.MergePatch(f.defaults, data)
		if err != nil {
			errs = append(errs, fmt.Errorf("agent config %s: failed to apply defaults: %v", id, err))
			continue
		}
		merged[id] = doc
	}
	return merged, errs
}
