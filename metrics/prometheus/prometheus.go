package prometheusmetrics

import (
	"strconv"
	"time"

	"github.com/bidconnect/exchange-connector/config"
	"github.com/bidconnect/exchange-connector/metrics"
	"github.com/bidconnect/exchange-connector/openrtb_ext"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics defines the Prometheus metrics backing the MetricsEngine implementation.
type Metrics struct {
	Registry *prometheus.Registry

	connectionsClosed prometheus.Counter
	connectionsError  *prometheus.CounterVec
	connectionsOpened prometheus.Counter
	requests          *prometheus.CounterVec
	requestsTimer     *prometheus.HistogramVec
	seatsPerResponse  *prometheus.HistogramVec
	bids              *prometheus.CounterVec
	compatibility     *prometheus.CounterVec
	winNotices        *prometheus.CounterVec
	winPrices         *prometheus.HistogramVec
}

const (
	compatibleLabel      = "compatible"
	connectionErrorLabel = "connection_error"
	exchangeLabel        = "exchange"
	kindLabel            = "kind"
	requestStatusLabel   = "request_status"
	winNoticeStatusLabel = "status"
)

const (
	connectionAcceptError = "accept"
	connectionCloseError  = "close"
)

// NewMetrics initializes a new Prometheus metrics instance with preloaded label values.
func NewMetrics(cfg config.PrometheusMetrics) *Metrics {
	standardTimeBuckets := []float64{0.005, 0.01, 0.025, 0.05, 0.075, 0.1, 0.15, 0.2, 0.3, 0.5, 1}
	seatBuckets := []float64{1, 2, 3, 5, 10}
	priceBuckets := []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 20, 50}

	metrics := Metrics{}
	reg := prometheus.NewRegistry()
	metrics.Registry = reg

	metrics.connectionsClosed = newCounterWithoutLabels(cfg, reg,
		"connections_closed",
		"Count of successful connections closed to the connector.")

	metrics.connectionsError = newCounter(cfg, reg,
		"connections_error",
		"Count of errors for connection open and close attempts to the connector labeled by type.",
		[]string{connectionErrorLabel})

	metrics.connectionsOpened = newCounterWithoutLabels(cfg, reg,
		"connections_opened",
		"Count of successful connections opened to the connector.")

	metrics.requests = newCounter(cfg, reg,
		"requests",
		"Count of bid requests received, labeled by exchange and the way they were answered.",
		[]string{exchangeLabel, requestStatusLabel})

	metrics.requestsTimer = newHistogramVec(cfg, reg,
		"request_time_seconds",
		"Seconds to answer a successful bid request, labeled by exchange.",
		[]string{exchangeLabel},
		standardTimeBuckets)

	metrics.seatsPerResponse = newHistogramVec(cfg, reg,
		"seats_per_response",
		"Number of seats in the bid responses sent to an exchange.",
		[]string{exchangeLabel},
		seatBuckets)

	metrics.bids = newCounter(cfg, reg,
		"bids",
		"Count of bids sent to an exchange.",
		[]string{exchangeLabel})

	metrics.compatibility = newCounter(cfg, reg,
		"compatibility_checks",
		"Count of agent configuration compatibility checks, labeled by exchange, kind of configuration and verdict.",
		[]string{exchangeLabel, kindLabel, compatibleLabel})

	metrics.winNotices = newCounter(cfg, reg,
		"win_notices",
		"Count of win notices received, labeled by exchange and whether their price could be decoded.",
		[]string{exchangeLabel, winNoticeStatusLabel})

	metrics.winPrices = newHistogramVec(cfg, reg,
		"win_prices",
		"Decoded clearing prices (CPM) of won auctions, labeled by exchange.",
		[]string{exchangeLabel},
		priceBuckets)

	return &metrics
}

func newCounter(cfg config.PrometheusMetrics, registry *prometheus.Registry, name, help string, labels []string) *prometheus.CounterVec {
	opts := prometheus.CounterOpts{
		Namespace: cfg.Namespace,
		Subsystem: cfg.Subsystem,
		Name:      name,
		Help:      help,
	}
	counter := prometheus.NewCounterVec(opts, labels)
	registry.MustRegister(counter)
	return counter
}

func newCounterWithoutLabels(cfg config.PrometheusMetrics, registry *prometheus.Registry, name, help string) prometheus.Counter {
	opts := prometheus.CounterOpts{
		Namespace: cfg.Namespace,
		Subsystem: cfg.Subsystem,
		Name:      name,
		Help:      help,
	}
	counter := prometheus.NewCounter(opts)
	registry.MustRegister(counter)
	return counter
}

func newHistogramVec(cfg config.PrometheusMetrics, registry *prometheus.Registry, name, help string, labels []string, buckets []float64) *prometheus.HistogramVec {
	opts := prometheus.HistogramOpts{
		Namespace: cfg.Namespace,
		Subsystem: cfg.Subsystem,
		Name:      name,
		Help:      help,
		Buckets:   buckets,
	}
	histogram := prometheus.NewHistogramVec(opts, labels)
	registry.MustRegister(histogram)
	return histogram
}

func (m *Metrics) RecordConnectionAccept(success bool) {
	if success {
		m.connectionsOpened.Inc()
	} else {
		m.connectionsError.With(prometheus.Labels{
			connectionErrorLabel: connectionAcceptError,
		}).Inc()
	}
}

func (m *Metrics) RecordConnectionClose(success bool) {
	if success {
		m.connectionsClosed.Inc()
	} else {
		m.connectionsError.With(prometheus.Labels{
			connectionErrorLabel: connectionCloseError,
		}).Inc()
	}
}

func (m *Metrics) RecordRequest(labels metrics.Labels) {
	m.requests.With(prometheus.Labels{
		exchangeLabel:      string(labels.Exchange),
		requestStatusLabel: string(labels.RequestStatus),
	}).Inc()
}

func (m *Metrics) RecordRequestTime(labels metrics.Labels, length time.Duration) {
	if labels.RequestStatus == metrics.RequestStatusOK {
		m.requestsTimer.With(prometheus.Labels{
			exchangeLabel: string(labels.Exchange),
		}).Observe(length.Seconds())
	}
}

func (m *Metrics) RecordBids(exchange openrtb_ext.ExchangeName, seats int, bids int) {
	m.seatsPerResponse.With(prometheus.Labels{
		exchangeLabel: string(exchange),
	}).Observe(float64(seats))
	m.bids.With(prometheus.Labels{
		exchangeLabel: string(exchange),
	}).Add(float64(bids))
}

func (m *Metrics) RecordCompatibility(exchange openrtb_ext.ExchangeName, kind metrics.ConfigKind, compatible bool) {
	m.compatibility.With(prometheus.Labels{
		exchangeLabel:   string(exchange),
		kindLabel:       string(kind),
		compatibleLabel: strconv.FormatBool(compatible),
	}).Inc()
}

func (m *Metrics) RecordWinNotice(exchange openrtb_ext.ExchangeName, status metrics.WinNoticeStatus, price float64) {
	m.winNotices.With(prometheus.Labels{
		exchangeLabel:        string(exchange),
		winNoticeStatusLabel: string(status),
	}).Inc()
	if status == metrics.WinNoticeOK {
		m.winPrices.With(prometheus.Labels{
			exchangeLabel: string(exchange),
		}).Observe(price)
	}
}
