package config

import (
	"context"
	"testing"

	"github.com/bidconnect/exchange-connector/agentconfig/backends/empty_fetcher"
	"github.com/bidconnect/exchange-connector/agentconfig/backends/http_fetcher"
	"github.com/bidconnect/exchange-connector/config"
	"github.com/stretchr/testify/assert"
)

func TestNewEmptyFetcher(t *testing.T) {
	fetcher, shutdown := NewFetcher(config.AgentConfigs{Type: config.AgentConfigsNone})
	defer shutdown()

	assert.IsType(t, empty_fetcher.EmptyFetcher{}, fetcher)
	configs, errs := fetcher.FetchAgentConfigs(context.Background())
	assert.Empty(t, configs)
	assert.Empty(t, errs)
}

func TestNewFilesystemFetcher(t *testing.T) {
	fetcher, shutdown := NewFetcher(config.AgentConfigs{
		Type:      config.AgentConfigsFilesystem,
		Directory: "../backends/file_fetcher/test",
	})
	defer shutdown()

	configs, errs := fetcher.FetchAgentConfigs(context.Background())
	assert.Empty(t, errs)
	assert.Len(t, configs, 2)
}

func TestNewYAMLFetcher(t *testing.T) {
	fetcher, shutdown := NewFetcher(config.AgentConfigs{
		Type:     config.AgentConfigsYAML,
		Filename: "../backends/yaml_fetcher/test/agents.yaml",
	})
	defer shutdown()

	configs, errs := fetcher.FetchAgentConfigs(context.Background())
	assert.Empty(t, errs)
	assert.Len(t, configs, 2)
}

func TestNewHTTPFetcher(t *testing.T) {
	fetcher, shutdown := NewFetcher(config.AgentConfigs{
		Type: config.AgentConfigsHTTP,
		HTTP: config.HTTPAgentConfigs{Endpoint: "http://campaigns.example.com/agents", TimeoutMs: 500},
	})
	defer shutdown()

	assert.IsType(t, &http_fetcher.HttpFetcher{}, fetcher)
}

func TestNewFetcherAppliesDefaults(t *testing.T) {
	fetcher, shutdown := NewFetcher(config.AgentConfigs{
		Type:      config.AgentConfigsFilesystem,
		Directory: "../backends/file_fetcher/test",
		Defaults:  `{"providerConfig": {"mopub": {"seat": "house"}}}`,
	})
	defer shutdown()

	configs, errs := fetcher.FetchAgentConfigs(context.Background())
	assert.Empty(t, errs)
	assert.Contains(t, string(configs["1001"]), `"seat":"54321"`)
	assert.Contains(t, string(configs["1002"]), `"seat":"house"`)
}
