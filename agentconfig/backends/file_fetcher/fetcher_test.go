package file_fetcher

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileFetcher(t *testing.T) {
	fetcher, err := NewFileFetcher("./test")
	require.NoError(t, err)

	configs, errs := fetcher.FetchAgentConfigs(context.Background())
	assert.Empty(t, errs)
	assert.Len(t, configs, 2)

	var cfg struct {
		Account []string `json:"account"`
	}
	require.NoError(t, json.Unmarshal(configs["1001"], &cfg))
	assert.Equal(t, []string{"acme", "spring"}, cfg.Account)
	assert.Contains(t, configs, "1002")
}

func TestFetchReturnsCopy(t *testing.T) {
	fetcher, err := NewFileFetcher("./test")
	require.NoError(t, err)

	configs, _ := fetcher.FetchAgentConfigs(context.Background())
	delete(configs, "1001")

	again, _ := fetcher.FetchAgentConfigs(context.Background())
	assert.Contains(t, again, "1001")
}

func TestInvalidDirectory(t *testing.T) {
	_, err := NewFileFetcher("./nonexistent-directory")
	assert.Error(t, err)
}
