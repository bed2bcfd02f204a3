package server

import (
	"errors"
	"net"
	"net/http"
	"strconv"

	"github.com/bidconnect/exchange-connector/config"
	metricsconfig "github.com/bidconnect/exchange-connector/metrics/config"
	"github.com/golang/glog"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// maxScrapesInFlight bounds concurrent scrapes of the Prometheus listener.
const maxScrapesInFlight = 5

func newPrometheusServer(cfg *config.Configuration, me *metricsconfig.DetailedMetricsEngine) (*http.Server, error) {
	if me == nil || me.PrometheusMetrics == nil {
		return nil, errors.New("metrics.prometheus.port is set but no Prometheus metrics engine was built")
	}

	return &http.Server{
		Addr: net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Metrics.Prometheus.Port)),
		Handler: promhttp.HandlerFor(me.PrometheusMetrics.Registry, promhttp.HandlerOpts{
			ErrorLog:            promErrorLog{},
			MaxRequestsInFlight: maxScrapesInFlight,
			Timeout:             cfg.Metrics.Prometheus.Timeout(),
		}),
	}, nil
}

// promErrorLog sends promhttp errors to glog.
type promErrorLog struct{}

func (promErrorLog) Println(v ...interface{}) {
	glog.Warningln(v...)
}
