package http_fetcher

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/bidconnect/exchange-connector/agentconfig"
	"github.com/golang/glog"
	"golang.org/x/net/context/ctxhttp"
)

// NewFetcher returns a Fetcher which GETs every agent configuration from endpoint.
//
// The endpoint must answer with a JSON object of the form:
//
//	{
//	  "agents": {
//	    "1001": { ... agent config ... },
//	    "1002": { ... agent config ... }
//	  }
//	}
//
// An agent whose value is null is reported as an error and left out.
func NewFetcher(client *http.Client, endpoint string) *HttpFetcher {
	if _, err := url.Parse(endpoint); err != nil {
		glog.Fatalf(`Invalid endpoint "%s": %v`, endpoint, err)
	}
	glog.Infof("Making http_fetcher for endpoint %v", endpoint)

	return &HttpFetcher{
		client:   client,
		Endpoint: endpoint,
	}
}

type HttpFetcher struct {
	client   *http.Client
	Endpoint string
}

type responseContract struct {
	Agents map[string]json.RawMessage `json:"agents"`
}

func (fetcher *HttpFetcher) FetchAgentConfigs(ctx context.Context) (map[string]json.RawMessage, []error) {
	httpReq, err := http.NewRequest(http.MethodGet, fetcher.Endpoint, nil)
	if err != nil {
		return nil, []error{fmt.Errorf("Error fetching agent configs via http: build request failed with %v", err)}
	}

	httpResp, err := ctxhttp.Do(ctx, fetcher.client, httpReq)
	if err != nil {
		return nil, []error{fmt.Errorf("Error fetching agent configs via http: %v", err)}
	}
	defer httpResp.Body.Close()

	respBytes, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, []error{fmt.Errorf("Error fetching agent configs via http: error reading response: %v", err)}
	}
	if httpResp.StatusCode != http.StatusOK {
		return nil, []error{fmt.Errorf("Error fetching agent configs via http: unexpected response status %d", httpResp.StatusCode)}
	}

	var responseData responseContract
	if err := json.Unmarshal(respBytes, &responseData); err != nil {
		return nil, []error{fmt.Errorf("Error fetching agent configs via http: failed to parse response: %v", err)}
	}

	return convertNullsToErrs(responseData.Agents)
}

func convertNullsToErrs(agents map[string]json.RawMessage) (map[string]json.RawMessage, []error) {
	var errs []error
	configs := make(map[string]json.RawMessage, len(agents))
	for id, data := range agents {
		if len(data) == 0 || string(data) == "null" {
			errs = append(errs, fmt.Errorf("agent config %s: not found", id))
			continue
		}
		configs[id] = data
	}
	return configs, errs
}

var _ agentconfig.Fetcher = (*HttpFetcher)(nil)
