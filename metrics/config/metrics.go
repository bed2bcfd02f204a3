package config

import (
	"time"

	"github.com/bidconnect/exchange-connector/config"
	"github.com/bidconnect/exchange-connector/metrics"
	prometheusmetrics "github.com/bidconnect/exchange-connector/metrics/prometheus"
	"github.com/bidconnect/exchange-connector/openrtb_ext"
	gometrics "github.com/rcrowley/go-metrics"
	influxdb "github.com/vrischmann/go-metrics-influxdb"
)

// NewMetricsEngine reads the configuration and returns the appropriate metrics engine
// for this instance.
func NewMetricsEngine(cfg *config.Configuration, exchanges []openrtb_ext.ExchangeName) *DetailedMetricsEngine {
	engineList := make(MultiMetricsEngine, 0, 2)
	returnEngine := DetailedMetricsEngine{}

	// InfluxDB is fed from the go-metrics registry.
	if cfg.Metrics.GoMetrics.Enabled || cfg.Metrics.Influxdb.Host != "" {
		registry := gometrics.NewPrefixedRegistry("connector.")
		returnEngine.GoMetrics = metrics.NewMetrics(registry, exchanges)
		engineList = append(engineList, returnEngine.GoMetrics)
		if cfg.Metrics.Influxdb.Host != "" {
			go influxdb.InfluxDB(
				returnEngine.GoMetrics.MetricsRegistry,
				cfg.Metrics.Influxdb.Interval(),
				cfg.Metrics.Influxdb.Host,
				cfg.Metrics.Influxdb.Database,
				cfg.Metrics.Influxdb.Username,
				cfg.Metrics.Influxdb.Password,
			)
		}
	}
	if cfg.Metrics.Prometheus.Port != 0 {
		returnEngine.PrometheusMetrics = prometheusmetrics.NewMetrics(cfg.Metrics.Prometheus)
		engineList = append(engineList, returnEngine.PrometheusMetrics)
	}

	if len(engineList) > 1 {
		returnEngine.MetricsEngine = &engineList
	} else if len(engineList) == 1 {
		returnEngine.MetricsEngine = engineList[0]
	} else {
		returnEngine.MetricsEngine = &NilMetricsEngine{}
	}

	return &returnEngine
}

// DetailedMetricsEngine is a MultiMetricsEngine that preserves links to underlying metrics engines.
type DetailedMetricsEngine struct {
	metrics.MetricsEngine
	GoMetrics         *metrics.Metrics
	PrometheusMetrics *prometheusmetrics.Metrics
}

// MultiMetricsEngine logs metrics to multiple metrics databases. These can be useful in transitioning
// an instance from one engine to another, or to test a new engine before committing to it.
type MultiMetricsEngine []metrics.MetricsEngine

// RecordConnectionAccept across all engines
func (me *MultiMetricsEngine) RecordConnectionAccept(success bool) {
	for _, thisME := range *me {
		thisME.RecordConnectionAccept(success)
	}
}

// RecordConnectionClose across all engines
func (me *MultiMetricsEngine) RecordConnectionClose(success bool) {
	for _, thisME := range *me {
		thisME.RecordConnectionClose(success)
	}
}

// RecordRequest across all engines
func (me *MultiMetricsEngine) RecordRequest(labels metrics.Labels) {
	for _, thisME := range *me {
		thisME.RecordRequest(labels)
	}
}

// RecordRequestTime across all engines
func (me *MultiMetricsEngine) RecordRequestTime(labels metrics.Labels, length time.Duration) {
	for _, thisME := range *me {
		thisME.RecordRequestTime(labels, length)
	}
}

// RecordBids across all engines
func (me *MultiMetricsEngine) RecordBids(exchange openrtb_ext.ExchangeName, seats int, bids int) {
	for _, thisME := range *me {
		thisME.RecordBids(exchange, seats, bids)
	}
}

// RecordCompatibility across all engines
func (me *MultiMetricsEngine) RecordCompatibility(exchange openrtb_ext.ExchangeName, kind metrics.ConfigKind, compatible bool) {
	for _, thisME := range *me {
		thisME.RecordCompatibility(exchange, kind, compatible)
	}
}

// RecordWinNotice across all engines
func (me *MultiMetricsEngine) RecordWinNotice(exchange openrtb_ext.ExchangeName, status metrics.WinNoticeStatus, price float64) {
	for _, thisME := range *me {
		thisME.RecordWinNotice(exchange, status, price)
	}
}

// NilMetricsEngine implements the MetricsEngine interface where no metrics are actually captured. This is
// used if no metric backend is configured and also for tests.
type NilMetricsEngine struct{}

// RecordConnectionAccept as a noop
func (me *NilMetricsEngine) RecordConnectionAccept(success bool) {
}

// RecordConnectionClose as a noop
func (me *NilMetricsEngine) RecordConnectionClose(success bool) {
}

// RecordRequest as a noop
func (me *NilMetricsEngine) RecordRequest(labels metrics.Labels) {
}

// RecordRequestTime as a noop
func (me *NilMetricsEngine) RecordRequestTime(labels metrics.Labels, length time.Duration) {
}

// RecordBids as a noop
func (me *NilMetricsEngine) RecordBids(exchange openrtb_ext.ExchangeName, seats int, bids int) {
}

// RecordCompatibility as a noop
func (me *NilMetricsEngine) RecordCompatibility(exchange openrtb_ext.ExchangeName, kind metrics.ConfigKind, compatible bool) {
}

// RecordWinNotice as a noop
func (me *NilMetricsEngine) RecordWinNotice(exchange openrtb_ext.ExchangeName, status metrics.WinNoticeStatus, price float64) {
}
