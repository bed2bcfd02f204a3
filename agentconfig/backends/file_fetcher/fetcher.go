package file_fetcher

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bidconnect/exchange-connector/agentconfig"
)

// NewFileFetcher _immediately_ loads agent configurations from local files.
// These are stored in memory and served on every fetch.
//
// This expects each file in the directory to be named "{agent_id}.json".
// For example, the configuration of agent "23" lives in "directory/23.json".
func NewFileFetcher(directory string) (agentconfig.Fetcher, error) {
	entries, err := os.ReadDir(directory)
	if err != nil {
		return nil, err
	}

	configs := make(map[string]json.RawMessage, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") { // Skip the .gitignore
			continue
		}
		data, err := os.ReadFile(filepath.Join(directory, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("failed to read agent config %s: %v", entry.Name(), err)
		}
		configs[strings.TrimSuffix(entry.Name(), ".json")] = json.RawMessage(data)
	}
	return &eagerFetcher{configs}, nil
}

type eagerFetcher struct {
	configs map[string]json.RawMessage
}

func (fetcher *eagerFetcher) FetchAgentConfigs(ctx context.Context) (map[string]json.RawMessage, []error) {
	configs := make(map[string]json.RawMessage, len(fetcher.configs))
	for id, data := range fetcher.configs {
		configs[id] = data
	}
	return configs, nil
}
