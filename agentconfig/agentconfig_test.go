package agentconfig

import (
	"encoding/json"
	"testing"

	"github.com/bidconnect/exchange-connector/currency"
	"github.com/bidconnect/exchange-connector/openrtb_ext"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validConfig = `{
  "account": ["acme", "spring"],
  "bidPrice": {"value": "1.5", "currency": "usd"},
  "providerConfig": {"mopub": {"seat": "54321"}},
  "creatives": [
    {
      "id": 3,
      "name": "leaderboard",
      "width": 728,
      "height": 90,
      "providerConfig": {"mopub": {"crid": "cr-3"}}
    }
  ]
}`

func TestParse(t *testing.T) {
	cfg, err := Parse("1001", json.RawMessage(validConfig))
	require.NoError(t, err)

	assert.Equal(t, "1001", cfg.ID)
	assert.Equal(t, "acme:spring", cfg.AccountName())
	assert.True(t, decimal.RequireFromString("1.5").Equal(cfg.BidPrice.Value))
	assert.Equal(t, "USD", cfg.BidPrice.Currency)
	assert.Equal(t, currency.UnitCPM, cfg.BidPrice.Unit)
	assert.JSONEq(t, `{"seat": "54321"}`, string(cfg.ProviderConfigFor(openrtb_ext.ExchangeMoPub)))

	require.Len(t, cfg.Creatives, 1)
	creative := cfg.Creatives[0]
	assert.Equal(t, 3, creative.ID)
	assert.Equal(t, int64(728), creative.Width)
	assert.Equal(t, int64(90), creative.Height)
	assert.JSONEq(t, `{"crid": "cr-3"}`, string(creative.ProviderConfigFor(openrtb_ext.ExchangeMoPub)))

	assert.Nil(t, cfg.Campaign.MoPub)
	assert.Nil(t, creative.Info.MoPub)
}

func TestParseInvalid(t *testing.T) {
	testCases := []struct {
		description string
		data        string
	}{
		{
			description: "not JSON",
			data:        `{`,
		},
		{
			description: "missing account",
			data:        `{"bidPrice": {"value": 1, "currency": "USD"}, "creatives": []}`,
		},
		{
			description: "empty account",
			data:        `{"account": [], "bidPrice": {"value": 1, "currency": "USD"}, "creatives": []}`,
		},
		{
			description: "missing bid price currency",
			data:        `{"account": ["a"], "bidPrice": {"value": 1}, "creatives": []}`,
		},
		{
			description: "unknown price unit",
			data:        `{"account": ["a"], "bidPrice": {"value": 1, "currency": "USD", "unit": "CPC"}, "creatives": []}`,
		},
		{
			description: "creative without size",
			data:        `{"account": ["a"], "bidPrice": {"value": 1, "currency": "USD"}, "creatives": [{"id": 1}]}`,
		},
		{
			description: "provider config is not an object",
			data:        `{"account": ["a"], "bidPrice": {"value": 1, "currency": "USD"}, "providerConfig": [], "creatives": []}`,
		},
	}

	for _, test := range testCases {
		cfg, err := Parse("1", json.RawMessage(test.data))
		assert.Error(t, err, test.description)
		assert.Nil(t, cfg, test.description)
	}
}

func TestParseErrorNamesAgent(t *testing.T) {
	_, err := Parse("bad-agent", json.RawMessage(`{"account": ["a"]}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "agent config bad-agent")
}
