package endpoints

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/bidconnect/exchange-connector/adapters"
	"github.com/bidconnect/exchange-connector/adapters/mopub"
	"github.com/bidconnect/exchange-connector/agentconfig"
	"github.com/bidconnect/exchange-connector/auction"
	"github.com/bidconnect/exchange-connector/config"
	"github.com/bidconnect/exchange-connector/currency"
	"github.com/bidconnect/exchange-connector/exchange"
	"github.com/bidconnect/exchange-connector/metrics"
	metricsConf "github.com/bidconnect/exchange-connector/metrics/config"
	"github.com/bidconnect/exchange-connector/openrtb_ext"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const testSharedSecret = "12345678"

var testExchange = config.Exchange{
	WinNoticeURL:    "http://connector.example.com/win/mopub",
	SharedSecret:    testSharedSecret,
	Currency:        "USD",
	TimeAvailableMs: 200,
}

const testAgent = `{
  "account": ["acme", "spring"],
  "bidPrice": {"value": 1.5, "currency": "USD"},
  "providerConfig": {"mopub": {"seat": "seat-1"}},
  "creatives": [{
    "id": 1,
    "width": 300,
    "height": 250,
    "providerConfig": {"mopub": {
      "adm": "<img src=\"http://ads.example.com/win?p=${AUCTION_PRICE:BF}\"/>",
      "crid": "cr-1",
      "adid": "ad-1",
      "adomain": ["acme.com"],
      "iurl": "http://ads.example.com/preview.png",
      "attr": []
    }}
  }]
}`

const bannerRequest = `{"id": "auction-1", "imp": [{"id": "imp-1", "banner": {"format": [{"w": 300, "h": 250}]}}]}`

type staticFetcher map[string]json.RawMessage

func (f staticFetcher) FetchAgentConfigs(ctx context.Context) (map[string]json.RawMessage, []error) {
	return f, nil
}

type staticAgents []*agentconfig.AgentConfig

func (a staticAgents) Agents() []*agentconfig.AgentConfig {
	return a
}

type fakeRunner struct {
	data *auction.Data
	err  error
}

func (r *fakeRunner) Run(ctx context.Context, a *auction.Auction, agents []*agentconfig.AgentConfig) error {
	if r.data != nil {
		a.Finish(r.data)
	}
	return r.err
}

func newTestConnector(t *testing.T) adapters.Connector {
	t.Helper()
	connector, err := mopub.Builder(openrtb_ext.ExchangeMoPub, testExchange, nil)
	require.NoError(t, err)
	return connector
}

// newTestAgents resolves docs against connector the way the server does at startup.
func newTestAgents(t *testing.T, connector adapters.Connector, docs staticFetcher) *exchange.AgentStore {
	t.Helper()
	connectors := map[openrtb_ext.ExchangeName]adapters.Connector{connector.ExchangeName(): connector}
	store := exchange.NewAgentStore(docs, connectors, &metricsConf.NilMetricsEngine{})
	require.NoError(t, store.Run())
	return store
}

func newRequestMetrics() *metrics.MetricsEngineMock {
	me := &metrics.MetricsEngineMock{}
	me.On("RecordRequest", mock.Anything).Return()
	me.On("RecordRequestTime", mock.Anything, mock.Anything).Return()
	me.On("RecordBids", mock.Anything, mock.Anything, mock.Anything).Return()
	return me
}

func postBidRequest(t *testing.T, handler func(http.ResponseWriter, *http.Request), contentType string, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest("POST", "/auctions/mopub", strings.NewReader(body))
	req.Header.Set("Content-Type", contentType)
	recorder := httptest.NewRecorder()
	handler(recorder, req)
	return recorder
}

func newHandler(t *testing.T, agents AgentSource, runner auction.Runner, cfg config.Auction, me metrics.MetricsEngine) func(http.ResponseWriter, *http.Request) {
	t.Helper()
	clk := clock.NewMock()
	clk.Set(time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC))
	handle, err := newAuctionEndpoint(newTestConnector(t), agents, runner, cfg, me, clk)
	require.NoError(t, err)
	return func(w http.ResponseWriter, r *http.Request) {
		handle(w, r, nil)
	}
}

func assertRequestStatus(t *testing.T, me *metrics.MetricsEngineMock, status metrics.RequestStatus) {
	t.Helper()
	labels := metrics.Labels{Exchange: openrtb_ext.ExchangeMoPub, RequestStatus: status}
	me.AssertCalled(t, "RecordRequest", labels)
	me.AssertCalled(t, "RecordRequestTime", labels, mock.Anything)
}

func TestAuctionWithWinner(t *testing.T) {
	connector := newTestConnector(t)
	agents := newTestAgents(t, connector, staticFetcher{"2001": json.RawMessage(testAgent)})
	me := newRequestMetrics()
	handle, err := NewAuctionEndpoint(connector, agents, auction.NewLocalRunner(currency.NewConstantRates(), "USD"), config.Auction{}, me)
	require.NoError(t, err)

	req := httptest.NewRequest("POST", "/auctions/mopub", strings.NewReader(bannerRequest))
	req.Header.Set("Content-Type", "application/json")
	recorder := httptest.NewRecorder()
	handle(recorder, req, nil)

	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, "application/json", recorder.Header().Get("Content-Type"))
	assert.JSONEq(t, `{
		"id": "auction-1",
		"seatbid": [{
			"seat": "seat-1",
			"bid": [{
				"id": "auction-1:imp-1",
				"impid": "imp-1",
				"price": 1.5,
				"adid": "ad-1",
				"nurl": "http://connector.example.com/win/mopub",
				"adm": "<img src=\"http://ads.example.com/win?p=${AUCTION_PRICE:BF}\"/>",
				"adomain": ["acme.com"],
				"iurl": "http://ads.example.com/preview.png",
				"cid": "2001",
				"crid": "cr-1"
			}]
		}]
	}`, recorder.Body.String())

	assertRequestStatus(t, me, metrics.RequestStatusOK)
	me.AssertCalled(t, "RecordBids", openrtb_ext.ExchangeMoPub, 1, 1)
}

func TestAuctionWithoutBids(t *testing.T) {
	me := newRequestMetrics()
	handler := newHandler(t, staticAgents{}, auction.NewLocalRunner(currency.NewConstantRates(), "USD"), config.Auction{}, me)

	recorder := postBidRequest(t, handler, "application/json", bannerRequest)

	assert.Equal(t, http.StatusNoContent, recorder.Code)
	assert.Empty(t, recorder.Body.String())
	assertRequestStatus(t, me, metrics.RequestStatusNoBid)
	me.AssertNotCalled(t, "RecordBids", mock.Anything, mock.Anything, mock.Anything)
}

func TestAuctionShedsRequestsWithoutEnoughTime(t *testing.T) {
	me := newRequestMetrics()
	runner := &fakeRunner{}
	handler := newHandler(t, staticAgents{}, runner, config.Auction{MinTimeAvailableMs: 150}, me)

	recorder := postBidRequest(t, handler, "application/json", `{"id": "auction-1", "tmax": 100, "imp": [{"id": "imp-1"}]}`)

	assert.Equal(t, http.StatusNoContent, recorder.Code)
	assert.Empty(t, recorder.Body.String())
	assertRequestStatus(t, me, metrics.RequestStatusDropped)
}

func TestAuctionBadInput(t *testing.T) {
	testCases := []struct {
		description string
		contentType string
		body        string
		expectedMsg string
	}{
		{
			description: "non JSON content type",
			contentType: "text/plain",
			body:        bannerRequest,
			expectedMsg: `{"error": "non-JSON request"}`,
		},
		{
			description: "no impressions",
			contentType: "application/json",
			body:        `{"id": "auction-1", "imp": []}`,
			expectedMsg: `{"error": "bid request has no impressions"}`,
		},
	}

	for _, test := range testCases {
		me := newRequestMetrics()
		handler := newHandler(t, staticAgents{}, &fakeRunner{}, config.Auction{}, me)

		recorder := postBidRequest(t, handler, test.contentType, test.body)

		assert.Equal(t, http.StatusBadRequest, recorder.Code, test.description)
		assert.JSONEq(t, test.expectedMsg, recorder.Body.String(), test.description)
		assertRequestStatus(t, me, metrics.RequestStatusBadInput)
	}
}

func TestAuctionRunnerDropped(t *testing.T) {
	me := newRequestMetrics()
	handler := newHandler(t, staticAgents{}, &fakeRunner{err: auction.ErrDropped}, config.Auction{}, me)

	recorder := postBidRequest(t, handler, "application/json", bannerRequest)

	assert.Equal(t, http.StatusNoContent, recorder.Code)
	assertRequestStatus(t, me, metrics.RequestStatusDropped)
}

func TestAuctionRunnerFailure(t *testing.T) {
	me := newRequestMetrics()
	handler := newHandler(t, staticAgents{}, &fakeRunner{err: errors.New("router unavailable")}, config.Auction{}, me)

	recorder := postBidRequest(t, handler, "application/json", bannerRequest)

	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.JSONEq(t, `{"error": "auction failed: router unavailable"}`, recorder.Body.String())
	assertRequestStatus(t, me, metrics.RequestStatusErr)
}

func TestAuctionInvalidWinner(t *testing.T) {
	me := newRequestMetrics()
	runner := &fakeRunner{data: &auction.Data{Responses: []*auction.Response{{
		Agent: "2001",
		Price: auction.Price{MaxPrice: currency.NewCPM(1, "USD")},
	}}}}
	handler := newHandler(t, staticAgents{}, runner, config.Auction{}, me)

	recorder := postBidRequest(t, handler, "application/json", bannerRequest)

	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.Contains(t, recorder.Body.String(), "auction-1")
	assertRequestStatus(t, me, metrics.RequestStatusErr)
}

func TestNewAuctionEndpointRequiresArguments(t *testing.T) {
	_, err := NewAuctionEndpoint(nil, staticAgents{}, &fakeRunner{}, config.Auction{}, newRequestMetrics())
	assert.Error(t, err)

	_, err = NewAuctionEndpoint(newTestConnector(t), nil, &fakeRunner{}, config.Auction{}, newRequestMetrics())
	assert.Error(t, err)
}

func TestCountBids(t *testing.T) {
	seats, bids := countBids([]byte(`{"seatbid": [{"bid": [{}, {}]}, {"bid": [{}]}]}`))
	assert.Equal(t, 2, seats)
	assert.Equal(t, 3, bids)

	seats, bids = countBids([]byte(`{}`))
	assert.Zero(t, seats)
	assert.Zero(t, bids)
}
