package exchange

import (
	"context"
	"fmt"
	"sort"
	"sync/atomic"
	"time"

	"github.com/bidconnect/exchange-connector/adapters"
	"github.com/bidconnect/exchange-connector/agentconfig"
	"github.com/bidconnect/exchange-connector/errortypes"
	"github.com/bidconnect/exchange-connector/logger"
	"github.com/bidconnect/exchange-connector/metrics"
	"github.com/bidconnect/exchange-connector/openrtb_ext"
)

const defaultFetchTimeout = 10 * time.Second

// AgentStore loads agent configurations, resolves them against every enabled connector
// and publishes the agents which can bid on at least one exchange.
//
// Run builds a whole new snapshot and swaps it in, so Agents never observes a partially
// resolved configuration.
type AgentStore struct {
	fetcher      agentconfig.Fetcher
	connectors   map[openrtb_ext.ExchangeName]adapters.Connector
	names        []openrtb_ext.ExchangeName
	metrics      metrics.MetricsEngine
	fetchTimeout time.Duration

	snapshot atomic.Pointer[agentSnapshot]
}

type agentSnapshot struct {
	agents   []*agentconfig.AgentConfig
	statuses []AgentStatus
}

// AgentStatus describes how one fetched agent configuration was resolved.
type AgentStatus struct {
	ID        string                                             `json:"id"`
	Published bool                                               `json:"published"`
	Error     string                                             `json:"error,omitempty"`
	Exchanges map[openrtb_ext.ExchangeName]ExchangeCompatibility `json:"exchanges,omitempty"`
}

// ExchangeCompatibility is the verdict of one connector on one agent.
type ExchangeCompatibility struct {
	Campaign            bool     `json:"campaign"`
	CompatibleCreatives int      `json:"compatible_creatives"`
	Reasons             []string `json:"reasons,omitempty"`
}

// Compatible reports whether the agent can bid on the exchange.
func (c ExchangeCompatibility) Compatible() bool {
	return c.Campaign && c.CompatibleCreatives > 0
}

func NewAgentStore(fetcher agentconfig.Fetcher, connectors map[openrtb_ext.ExchangeName]adapters.Connector, me metrics.MetricsEngine) *AgentStore {
	store := &AgentStore{
		fetcher:      fetcher,
		connectors:   connectors,
		names:        sortedNames(connectors),
		metrics:      me,
		fetchTimeout: defaultFetchTimeout,
	}
	store.snapshot.Store(&agentSnapshot{})
	return store
}

// Agents returns the published agents, sorted by id. The slice and the agents must not be modified.
func (s *AgentStore) Agents() []*agentconfig.AgentConfig {
	return s.snapshot.Load().agents
}

// Statuses returns the resolution status of every agent seen by the last successful Run.
func (s *AgentStore) Statuses() []AgentStatus {
	return s.snapshot.Load().statuses
}

// Run fetches every agent configuration and publishes a new snapshot. If nothing could be
// fetched, the previous snapshot stays published.
func (s *AgentStore) Run() error {
	ctx, cancel := context.WithTimeout(context.Background(), s.fetchTimeout)
	defer cancel()

	docs, errs := s.fetcher.FetchAgentConfigs(ctx)
	if len(docs) == 0 && len(errs) > 0 {
		return errortypes.NewAggregateErrors("failed to fetch agent configs", errs)
	}
	for _, err := range errs {
		logger.Warnf("Error fetching agent configs: %v", err)
	}

	ids := make([]string, 0, len(docs))
	for id := range docs {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	next := &agentSnapshot{
		agents:   make([]*agentconfig.AgentConfig, 0, len(ids)),
		statuses: make([]AgentStatus, 0, len(ids)),
	}
	for _, id := range ids {
		status := AgentStatus{ID: id}
		cfg, err := agentconfig.Parse(id, docs[id])
		if err != nil {
			logger.Errorf("Rejected agent %s: %v", id, err)
			status.Error = err.Error()
			next.statuses = append(next.statuses, status)
			continue
		}

		status.Exchanges = make(map[openrtb_ext.ExchangeName]ExchangeCompatibility, len(s.names))
		for _, name := range s.names {
			compat := s.resolve(name, s.connectors[name], cfg)
			status.Exchanges[name] = compat
			status.Published = status.Published || compat.Compatible()
		}

		if status.Published {
			next.agents = append(next.agents, cfg)
		} else {
			logger.Warnf("Agent %s (%s) is not compatible with any exchange", id, cfg.AccountName())
		}
		next.statuses = append(next.statuses, status)
	}

	s.snapshot.Store(next)
	logger.Infof("Published %d of %d agent configs", len(next.agents), len(ids))
	return nil
}

// resolve runs the campaign and creative checks of one connector and fills the typed
// snapshots of cfg with the data of every check which passed.
func (s *AgentStore) resolve(name openrtb_ext.ExchangeName, connector adapters.Connector, cfg *agentconfig.AgentConfig) ExchangeCompatibility {
	var result ExchangeCompatibility

	campaign := connector.CampaignCompatibility(cfg, true)
	s.metrics.RecordCompatibility(name, metrics.ConfigKindCampaign, campaign.Compatible)
	if campaign.Compatible {
		result.Campaign = true
		cfg.Campaign.Merge(campaign.Info)
	} else {
		result.Reasons = append(result.Reasons, campaign.Reasons...)
		logger.Warnf("Agent %s campaign is not compatible with %s: %v", cfg.ID, name,
			errortypes.NewAggregateErrors("campaign", campaign.Failures()))
	}

	for i := range cfg.Creatives {
		creative := &cfg.Creatives[i]
		compat := connector.CreativeCompatibility(creative, true)
		s.metrics.RecordCompatibility(name, metrics.ConfigKindCreative, compat.Compatible)
		if compat.Compatible {
			result.CompatibleCreatives++
			creative.Info.Merge(compat.Info)
			continue
		}
		for _, reason := range compat.Reasons {
			result.Reasons = append(result.Reasons, fmt.Sprintf("creative %d: %s", creative.ID, reason))
		}
		logger.Warnf("Agent %s creative %d is not compatible with %s: %v", cfg.ID, creative.ID, name,
			errortypes.NewAggregateErrors("creative", compat.Failures()))
	}

	return result
}
