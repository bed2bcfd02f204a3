package metrics

import (
	"fmt"
	"time"

	"github.com/bidconnect/exchange-connector/logger"
	"github.com/bidconnect/exchange-connector/openrtb_ext"
	"github.com/rcrowley/go-metrics"
)

// Metrics is the go-metrics implementation of MetricsEngine.
type Metrics struct {
	MetricsRegistry            metrics.Registry
	ConnectionCounter          metrics.Counter
	ConnectionAcceptErrorMeter metrics.Meter
	ConnectionCloseErrorMeter  metrics.Meter
	RequestTimer               metrics.Timer

	ExchangeMetrics map[openrtb_ext.ExchangeName]*ExchangeMetrics
}

// ExchangeMetrics houses the metrics for a particular exchange
type ExchangeMetrics struct {
	RequestStatuses    map[RequestStatus]metrics.Meter
	RequestTimer       metrics.Timer
	SeatsHistogram     metrics.Histogram
	BidsMeter          metrics.Meter
	CompatibleMeters   map[ConfigKind]metrics.Meter
	IncompatibleMeters map[ConfigKind]metrics.Meter
	WinNoticeMeters    map[WinNoticeStatus]metrics.Meter
	WinPriceHistogram  metrics.Histogram
}

// NewBlankMetrics creates a new Metrics object with all blank metrics object. This may also be useful for
// testing routines to ensure that no metrics are written anywhere.
func NewBlankMetrics(registry metrics.Registry, exchanges []openrtb_ext.ExchangeName) *Metrics {
	blankMeter := &metrics.NilMeter{}
	newMetrics := &Metrics{
		MetricsRegistry:            registry,
		ConnectionCounter:          metrics.NilCounter{},
		ConnectionAcceptErrorMeter: blankMeter,
		ConnectionCloseErrorMeter:  blankMeter,
		RequestTimer:               &metrics.NilTimer{},

		ExchangeMetrics: make(map[openrtb_ext.ExchangeName]*ExchangeMetrics, len(exchanges)),
	}
	for _, exchange := range exchanges {
		newMetrics.ExchangeMetrics[exchange] = makeBlankExchangeMetrics()
	}
	return newMetrics
}

// NewMetrics creates a new Metrics object with every metric registered in registry.
func NewMetrics(registry metrics.Registry, exchanges []openrtb_ext.ExchangeName) *Metrics {
	newMetrics := NewBlankMetrics(registry, exchanges)
	newMetrics.ConnectionCounter = metrics.GetOrRegisterCounter("active_connections", registry)
	newMetrics.ConnectionAcceptErrorMeter = metrics.GetOrRegisterMeter("connection_accept_errors", registry)
	newMetrics.ConnectionCloseErrorMeter = metrics.GetOrRegisterMeter("connection_close_errors", registry)
	newMetrics.RequestTimer = metrics.GetOrRegisterTimer("request_time", registry)

	for _, exchange := range exchanges {
		registerExchangeMetrics(registry, string(exchange), newMetrics.ExchangeMetrics[exchange])
	}
	return newMetrics
}

// Part of setting up blank metrics, the exchange metrics.
func makeBlankExchangeMetrics() *ExchangeMetrics {
	blankMeter := &metrics.NilMeter{}
	newExchange := &ExchangeMetrics{
		RequestStatuses:    make(map[RequestStatus]metrics.Meter),
		RequestTimer:       &metrics.NilTimer{},
		SeatsHistogram:     &metrics.NilHistogram{},
		BidsMeter:          blankMeter,
		CompatibleMeters:   make(map[ConfigKind]metrics.Meter),
		IncompatibleMeters: make(map[ConfigKind]metrics.Meter),
		WinNoticeMeters:    make(map[WinNoticeStatus]metrics.Meter),
		WinPriceHistogram:  &metrics.NilHistogram{},
	}
	for _, status := range RequestStatuses() {
		newExchange.RequestStatuses[status] = blankMeter
	}
	for _, kind := range ConfigKinds() {
		newExchange.CompatibleMeters[kind] = blankMeter
		newExchange.IncompatibleMeters[kind] = blankMeter
	}
	for _, status := range WinNoticeStatuses() {
		newExchange.WinNoticeMeters[status] = blankMeter
	}
	return newExchange
}

func registerExchangeMetrics(registry metrics.Registry, exchange string, em *ExchangeMetrics) {
	for status := range em.RequestStatuses {
		em.RequestStatuses[status] = metrics.GetOrRegisterMeter(fmt.Sprintf("exchange.%s.requests.%s", exchange, status), registry)
	}
	em.RequestTimer = metrics.GetOrRegisterTimer(fmt.Sprintf("exchange.%s.request_time", exchange), registry)
	em.SeatsHistogram = metrics.GetOrRegisterHistogram(fmt.Sprintf("exchange.%s.seats_per_response", exchange), registry, metrics.NewExpDecaySample(1028, 0.015))
	em.BidsMeter = metrics.GetOrRegisterMeter(fmt.Sprintf("exchange.%s.bids", exchange), registry)
	for _, kind := range ConfigKinds() {
		em.CompatibleMeters[kind] = metrics.GetOrRegisterMeter(fmt.Sprintf("exchange.%s.%s.compatible", exchange, kind), registry)
		em.IncompatibleMeters[kind] = metrics.GetOrRegisterMeter(fmt.Sprintf("exchange.%s.%s.incompatible", exchange, kind), registry)
	}
	for status := range em.WinNoticeMeters {
		em.WinNoticeMeters[status] = metrics.GetOrRegisterMeter(fmt.Sprintf("exchange.%s.win_notices.%s", exchange, status), registry)
	}
	em.WinPriceHistogram = metrics.GetOrRegisterHistogram(fmt.Sprintf("exchange.%s.win_prices", exchange), registry, metrics.NewExpDecaySample(1028, 0.015))
}

func (me *Metrics) exchangeMetrics(exchange openrtb_ext.ExchangeName) *ExchangeMetrics {
	em, ok := me.ExchangeMetrics[exchange]
	if !ok {
		logger.Errorf("Trying to run exchange metrics on %s: exchange metrics not found", string(exchange))
	}
	return em
}

func (me *Metrics) RecordConnectionAccept(success bool) {
	if success {
		me.ConnectionCounter.Inc(1)
	} else {
		me.ConnectionAcceptErrorMeter.Mark(1)
	}
}

func (me *Metrics) RecordConnectionClose(success bool) {
	if success {
		me.ConnectionCounter.Dec(1)
	} else {
		me.ConnectionCloseErrorMeter.Mark(1)
	}
}

// RecordRequest implements a part of the MetricsEngine interface
func (me *Metrics) RecordRequest(labels Labels) {
	if em := me.exchangeMetrics(labels.Exchange); em != nil {
		em.RequestStatuses[labels.RequestStatus].Mark(1)
	}
}

// RecordRequestTime implements a part of the MetricsEngine interface. The calling code is responsible
// for determining the call duration.
func (me *Metrics) RecordRequestTime(labels Labels, length time.Duration) {
	// Only record times for successful requests, as we don't have labels to screen out bad requests.
	if labels.RequestStatus != RequestStatusOK {
		return
	}
	me.RequestTimer.Update(length)
	if em := me.exchangeMetrics(labels.Exchange); em != nil {
		em.RequestTimer.Update(length)
	}
}

func (me *Metrics) RecordBids(exchange openrtb_ext.ExchangeName, seats int, bids int) {
	if em := me.exchangeMetrics(exchange); em != nil {
		em.SeatsHistogram.Update(int64(seats))
		em.BidsMeter.Mark(int64(bids))
	}
}

func (me *Metrics) RecordCompatibility(exchange openrtb_ext.ExchangeName, kind ConfigKind, compatible bool) {
	em := me.exchangeMetrics(exchange)
	if em == nil {
		return
	}
	if compatible {
		em.CompatibleMeters[kind].Mark(1)
	} else {
		em.IncompatibleMeters[kind].Mark(1)
	}
}

// RecordWinNotice implements a part of the MetricsEngine interface. Prices are recorded in
// micro CPM since go-metrics histograms only hold integers.
func (me *Metrics) RecordWinNotice(exchange openrtb_ext.ExchangeName, status WinNoticeStatus, price float64) {
	em := me.exchangeMetrics(exchange)
	if em == nil {
		return
	}
	em.WinNoticeMeters[status].Mark(1)
	if status == WinNoticeOK {
		em.WinPriceHistogram.Update(int64(price * 1000000))
	}
}
