package yaml_fetcher

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/bidconnect/exchange-connector/agentconfig"
	"github.com/golang/glog"
	"gopkg.in/yaml.v2"
)

type fileAgent struct {
	ID     string `yaml:"id"`
	Config string `yaml:"config"`
}

type fileAgents struct {
	Agents []fileAgent `yaml:"agents"`
}

// NewFetcher _immediately_ loads every agent configuration from a single YAML file:
//
//	agents:
//	  - id: "1001"
//	    config: |
//	      {"account": ["acme"], ...}
//
// Each config is a JSON document. Ids must be unique and non-empty.
func NewFetcher(filename string) (agentconfig.Fetcher, error) {
	if glog.V(2) {
		glog.Infof("Reading agent configs from %s", filename)
	}

	b, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}

	var u fileAgents
	if err = yaml.Unmarshal(b, &u); err != nil {
		return nil, err
	}

	configs := make(map[string]json.RawMessage, len(u.Agents))
	for i, agent := range u.Agents {
		if agent.ID == "" {
			return nil, fmt.Errorf("%s: agents[%d] has no id", filename, i)
		}
		if _, ok := configs[agent.ID]; ok {
			return nil, fmt.Errorf("%s: agent %s is defined more than once", filename, agent.ID)
		}
		configs[agent.ID] = json.RawMessage(agent.Config)
	}

	if glog.V(2) {
		glog.Infof("Loaded %d agent configs", len(configs))
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
