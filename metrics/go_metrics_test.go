package metrics

import (
	"testing"
	"time"

	"github.com/bidconnect/exchange-connector/openrtb_ext"
	"github.com/rcrowley/go-metrics"
	"github.com/stretchr/testify/assert"
)

func TestNewMetrics(t *testing.T) {
	registry := metrics.NewRegistry()
	m := NewMetrics(registry, openrtb_ext.CoreExchangeNames())

	ensureContains(t, registry, "active_connections", m.ConnectionCounter)
	ensureContains(t, registry, "connection_accept_errors", m.ConnectionAcceptErrorMeter)
	ensureContains(t, registry, "connection_close_errors", m.ConnectionCloseErrorMeter)
	ensureContains(t, registry, "request_time", m.RequestTimer)

	em := m.ExchangeMetrics[openrtb_ext.ExchangeMoPub]
	ensureContains(t, registry, "exchange.mopub.requests.ok", em.RequestStatuses[RequestStatusOK])
	ensureContains(t, registry, "exchange.mopub.requests.dropped", em.RequestStatuses[RequestStatusDropped])
	ensureContains(t, registry, "exchange.mopub.request_time", em.RequestTimer)
	ensureContains(t, registry, "exchange.mopub.seats_per_response", em.SeatsHistogram)
	ensureContains(t, registry, "exchange.mopub.bids", em.BidsMeter)
	ensureContains(t, registry, "exchange.mopub.campaign.compatible", em.CompatibleMeters[ConfigKindCampaign])
	ensureContains(t, registry, "exchange.mopub.creative.incompatible", em.IncompatibleMeters[ConfigKindCreative])
	ensureContains(t, registry, "exchange.mopub.win_notices.malformed", em.WinNoticeMeters[WinNoticeMalformed])
	ensureContains(t, registry, "exchange.mopub.win_prices", em.WinPriceHistogram)
}

func TestRecordRequest(t *testing.T) {
	registry := metrics.NewRegistry()
	m := NewMetrics(registry, openrtb_ext.CoreExchangeNames())

	m.RecordRequest(Labels{Exchange: openrtb_ext.ExchangeMoPub, RequestStatus: RequestStatusNoBid})
	m.RecordRequest(Labels{Exchange: openrtb_ext.ExchangeMoPub, RequestStatus: RequestStatusNoBid})
	m.RecordRequest(Labels{Exchange: openrtb_ext.ExchangeMoPub, RequestStatus: RequestStatusBadInput})
	// unknown exchanges are logged and ignored
	m.RecordRequest(Labels{Exchange: "unknown", RequestStatus: RequestStatusOK})

	em := m.ExchangeMetrics[openrtb_ext.ExchangeMoPub]
	assert.Equal(t, int64(2), em.RequestStatuses[RequestStatusNoBid].Count())
	assert.Equal(t, int64(1), em.RequestStatuses[RequestStatusBadInput].Count())
	assert.Equal(t, int64(0), em.RequestStatuses[RequestStatusOK].Count())
}

func TestRecordRequestTimeOnlyForSuccess(t *testing.T) {
	m := NewMetrics(metrics.NewRegistry(), openrtb_ext.CoreExchangeNames())

	m.RecordRequestTime(Labels{Exchange: openrtb_ext.ExchangeMoPub, RequestStatus: RequestStatusOK}, 20*time.Millisecond)
	m.RecordRequestTime(Labels{Exchange: openrtb_ext.ExchangeMoPub, RequestStatus: RequestStatusErr}, 20*time.Millisecond)

	assert.Equal(t, int64(1), m.RequestTimer.Count())
	assert.Equal(t, int64(1), m.ExchangeMetrics[openrtb_ext.ExchangeMoPub].RequestTimer.Count())
}

func TestRecordConnections(t *testing.T) {
	m := NewMetrics(metrics.NewRegistry(), openrtb_ext.CoreExchangeNames())

	m.RecordConnectionAccept(true)
	m.RecordConnectionAccept(true)
	m.RecordConnectionAccept(false)
	m.RecordConnectionClose(true)
	m.RecordConnectionClose(false)

	assert.Equal(t, int64(1), m.ConnectionCounter.Count())
	assert.Equal(t, int64(1), m.ConnectionAcceptErrorMeter.Count())
	assert.Equal(t, int64(1), m.ConnectionCloseErrorMeter.Count())
}

func TestRecordBidsAndCompatibility(t *testing.T) {
	m := NewMetrics(metrics.NewRegistry(), openrtb_ext.CoreExchangeNames())
	em := m.ExchangeMetrics[openrtb_ext.ExchangeMoPub]

	m.RecordBids(openrtb_ext.ExchangeMoPub, 2, 3)
	m.RecordCompatibility(openrtb_ext.ExchangeMoPub, ConfigKindCampaign, true)
	m.RecordCompatibility(openrtb_ext.ExchangeMoPub, ConfigKindCreative, false)
	m.RecordCompatibility(openrtb_ext.ExchangeMoPub, ConfigKindCreative, false)

	assert.Equal(t, int64(3), em.BidsMeter.Count())
	assert.Equal(t, int64(1), em.SeatsHistogram.Count())
	assert.Equal(t, int64(2), em.SeatsHistogram.Max())
	assert.Equal(t, int64(1), em.CompatibleMeters[ConfigKindCampaign].Count())
	assert.Equal(t, int64(2), em.IncompatibleMeters[ConfigKindCreative].Count())
}

func TestRecordWinNotice(t *testing.T) {
	m := NewMetrics(metrics.NewRegistry(), openrtb_ext.CoreExchangeNames())
	em := m.ExchangeMetrics[openrtb_ext.ExchangeMoPub]

	m.RecordWinNotice(openrtb_ext.ExchangeMoPub, WinNoticeOK, 1.25)
	m.RecordWinNotice(openrtb_ext.ExchangeMoPub, WinNoticeDecodeError, 0)

	assert.Equal(t, int64(1), em.WinNoticeMeters[WinNoticeOK].Count())
	assert.Equal(t, int64(1), em.WinNoticeMeters[WinNoticeDecodeError].Count())
	assert.Equal(t, int64(1), em.WinPriceHistogram.Count())
	assert.Equal(t, int64(1250000), em.WinPriceHistogram.Max())
}

func TestBlankMetricsRecordNothing(t *testing.T) {
	registry := metrics.NewRegistry()
	m := NewBlankMetrics(registry, openrtb_ext.CoreExchangeNames())

	m.RecordRequest(Labels{Exchange: openrtb_ext.ExchangeMoPub, RequestStatus: RequestStatusOK})
	m.RecordWinNotice(openrtb_ext.ExchangeMoPub, WinNoticeOK, 1)

	assert.Nil(t, registry.Get("exchange.mopub.requests.ok"))
	assert.Equal(t, int64(0), m.ExchangeMetrics[openrtb_ext.ExchangeMoPub].RequestStatuses[RequestStatusOK].Count())
}

func ensureContains(t *testing.T, registry metrics.Registry, name string, metric interface{}) {
	t.Helper()
	if inRegistry := registry.Get(name); inRegistry == nil {
		t.Errorf("No metric in registry at %s.", name)
	} else if inRegistry != metric {
		t.Errorf("Bad value stored at metric %s.", name)
	}
}
