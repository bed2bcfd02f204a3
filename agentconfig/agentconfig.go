package agentconfig

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/bidconnect/exchange-connector/currency"
	"github.com/bidconnect/exchange-connector/openrtb_ext"
	"github.com/bidconnect/exchange-connector/util/jsonutil"
)

// AgentConfig is the configuration of a bidding agent: the campaign it bids for,
// the price it bids and the creatives it can serve.
//
// The exchange-specific "providerConfig" blocks are kept raw. Each exchange connector
// resolves them into the typed Campaign and Creative.Info snapshots when the agent
// store loads the configuration. Once published, an AgentConfig is never mutated.
type AgentConfig struct {
	ID             string                     `json:"-"`
	Account        []string                   `json:"account"`
	BidPrice       currency.Amount            `json:"bidPrice"`
	ProviderConfig map[string]json.RawMessage `json:"providerConfig,omitempty"`
	Creatives      []Creative                 `json:"creatives"`

	Campaign openrtb_ext.CampaignInfo `json:"-"`
}

type Creative struct {
	ID             int                        `json:"id"`
	Name           string                     `json:"name,omitempty"`
	Width          int64                      `json:"width"`
	Height         int64                      `json:"height"`
	ProviderConfig map[string]json.RawMessage `json:"providerConfig,omitempty"`

	Info openrtb_ext.CreativeInfo `json:"-"`
}

// AccountName joins the account hierarchy with ':', the form used in logs.
func (cfg *AgentConfig) AccountName() string {
	return strings.Join(cfg.Account, ":")
}

// ProviderConfigFor returns the raw "providerConfig" block of the given exchange, or nil.
func (cfg *AgentConfig) ProviderConfigFor(name openrtb_ext.ExchangeName) json.RawMessage {
	return cfg.ProviderConfig[name.String()]
}

// ProviderConfigFor returns the raw "providerConfig" block of the given exchange, or nil.
func (c *Creative) ProviderConfigFor(name openrtb_ext.ExchangeName) json.RawMessage {
	return c.ProviderConfig[name.String()]
}

// Parse validates the agent configuration document against the agent config schema
// and decodes it. The exchange-specific snapshots are left empty.
func Parse(id string, data json.RawMessage) (*AgentConfig, error) {
	if err := defaultValidator.Validate(data); err != nil {
		return nil, fmt.Errorf("agent config %s: %v", id, err)
	}

	var cfg AgentConfig
	if err := jsonutil.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("agent config %s: %v", id, err)
	}
	cfg.ID = id
	cfg.BidPrice.Currency = strings.ToUpper(cfg.BidPrice.Currency)
	if cfg.BidPrice.Unit == "" {
		cfg.BidPrice.Unit = currency.UnitCPM
	}
	return &cfg, nil
}
