package config

import (
	"errors"
	"fmt"
	"time"
)

type Metrics struct {
	GoMetrics  GoMetrics         `mapstructure:"go_metrics"`
	Influxdb   InfluxMetrics     `mapstructure:"influxdb"`
	Prometheus PrometheusMetrics `mapstructure:"prometheus"`
}

func (cfg Metrics) validate(errs []error) []error {
	if cfg.Prometheus.Port < 0 {
		errs = append(errs, fmt.Errorf("metrics.prometheus.port must be non-negative. Got %d", cfg.Prometheus.Port))
	}
	if cfg.Prometheus.Port > 0 && cfg.Prometheus.TimeoutMillisRaw <= 0 {
		errs = append(errs, fmt.Errorf("metrics.prometheus.timeout_ms must be positive. Got %d", cfg.Prometheus.TimeoutMillisRaw))
	}
	if cfg.Influxdb.Host != "" && cfg.Influxdb.Database == "" {
		errs = append(errs, errors.New("metrics.influxdb.database must be set when metrics.influxdb.host is"))
	}
	if cfg.Influxdb.Host != "" && cfg.Influxdb.IntervalSeconds <= 0 {
		errs = append(errs, fmt.Errorf("metrics.influxdb.interval_seconds must be positive. Got %d", cfg.Influxdb.IntervalSeconds))
	}
	return errs
}

// GoMetrics enables the in-process rcrowley/go-metrics registry exposed on the admin port.
type GoMetrics struct {
	Enabled bool `mapstructure:"enabled"`
}

// InfluxMetrics pushes the go-metrics registry to InfluxDB when Host is set.
type InfluxMetrics struct {
	Host            string `mapstructure:"host"`
	Database        string `mapstructure:"database"`
	Username        string `mapstructure:"username"`
	Password        string `mapstructure:"password"`
	IntervalSeconds int    `mapstructure:"interval_seconds"`
}

func (cfg InfluxMetrics) Interval() time.Duration {
	return time.Duration(cfg.IntervalSeconds) * time.Second
}

type PrometheusMetrics struct {
	Port             int    `mapstructure:"port"`
	Namespace        string `mapstructure:"namespace"`
	Subsystem        string `mapstructure:"subsystem"`
	TimeoutMillisRaw int    `mapstructure:"timeout_ms"`
}

func (cfg *PrometheusMetrics) Timeout() time.Duration {
	return time.Duration(cfg.TimeoutMillisRaw) * time.Millisecond
}
