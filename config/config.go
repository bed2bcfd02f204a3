package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/bidconnect/exchange-connector/errortypes"
	"github.com/bidconnect/exchange-connector/openrtb_ext"
	"github.com/spf13/viper"
)

// Configuration specifies the static application config.
type Configuration struct {
	Host       string `mapstructure:"host"`
	Port       int    `mapstructure:"port"`
	AdminPort  int    `mapstructure:"admin_port"`
	EnableGzip bool   `mapstructure:"enable_gzip"`
	// StatusResponse is the string which will be returned by the /status endpoint when things are OK.
	// If empty, it will return a 204 with no content.
	StatusResponse string `mapstructure:"status_response"`

	Auction   Auction             `mapstructure:"auction"`
	Exchanges map[string]Exchange `mapstructure:"exchanges"`
	// CurrencyRates is a static table: currency_rates.FROM.TO = rate
	CurrencyRates map[string]map[string]float64 `mapstructure:"currency_rates"`
	AgentConfigs  AgentConfigs                  `mapstructure:"agent_configs"`
	WinNotice     WinNotice                     `mapstructure:"win_notice"`
	Metrics       Metrics                       `mapstructure:"metrics"`
	DeployPID     DeployPID                     `mapstructure:"deploy_pid"`
}

// DeployPID writes the process id to Path/<pid>.pid at startup when Enabled.
type DeployPID struct {
	Enabled bool        `mapstructure:"enabled"`
	Path    string      `mapstructure:"path"`
	Mode    os.FileMode `mapstructure:"mode"`
}

// WinNotice configures the win notice endpoint.
type WinNotice struct {
	// DedupeCacheBytes sizes the in-memory cache of seen (exchange, auction, imp) wins.
	// Zero disables deduplication.
	DedupeCacheBytes int `mapstructure:"dedupe_cache_bytes"`
	DedupeTTLSeconds int `mapstructure:"dedupe_ttl_seconds"`
}

func (cfg WinNotice) validate(errs []error) []error {
	if cfg.DedupeCacheBytes < 0 {
		errs = append(errs, fmt.Errorf("win_notice.dedupe_cache_bytes must be non-negative. Got %d", cfg.DedupeCacheBytes))
	}
	if cfg.DedupeCacheBytes > 0 && cfg.DedupeTTLSeconds <= 0 {
		errs = append(errs, fmt.Errorf("win_notice.dedupe_ttl_seconds must be positive when deduplication is enabled. Got %d", cfg.DedupeTTLSeconds))
	}
	return errs
}

// Auction holds the settings of the local auction run between request parsing and response assembly.
type Auction struct {
	// MinTimeAvailableMs sheds requests whose exchange-granted time is below this many milliseconds.
	MinTimeAvailableMs    int                   `mapstructure:"min_time_available_ms"`
	RequestTimeoutHeaders RequestTimeoutHeaders `mapstructure:"request_timeout_headers"`
}

// RequestTimeoutHeaders name the headers a fronting proxy sets with the seconds a request
// spent in its queue and the seconds it may spend there. Both empty disables the check.
type RequestTimeoutHeaders struct {
	RequestTimeInQueue    string `mapstructure:"request_time_in_queue"`
	RequestTimeoutInQueue string `mapstructure:"request_timeout_in_queue"`
}

func (h RequestTimeoutHeaders) Enabled() bool {
	return h.RequestTimeInQueue != "" && h.RequestTimeoutInQueue != ""
}

func (a Auction) MinTimeAvailable() time.Duration {
	return time.Duration(a.MinTimeAvailableMs) * time.Millisecond
}

type configErrors []error

func (c *Configuration) validate() configErrors {
	var errs configErrors
	if c.Port <= 0 {
		errs = append(errs, fmt.Errorf("port must be positive. Got %d", c.Port))
	}
	if c.AdminPort <= 0 {
		errs = append(errs, fmt.Errorf("admin_port must be positive. Got %d", c.AdminPort))
	}
	if c.Port == c.AdminPort {
		errs = append(errs, errors.New("port and admin_port must be different"))
	}
	if c.Auction.MinTimeAvailableMs < 0 {
		errs = append(errs, fmt.Errorf("auction.min_time_available_ms must be non-negative. Got %d", c.Auction.MinTimeAvailableMs))
	}
	if headers := c.Auction.RequestTimeoutHeaders; (headers.RequestTimeInQueue == "") != (headers.RequestTimeoutInQueue == "") {
		errs = append(errs, errors.New("auction.request_timeout_headers.request_time_in_queue and request_timeout_in_queue must be set together"))
	}
	errs = validateExchanges(c.Exchanges, errs)
	errs = validateCurrencyRates(c.CurrencyRates, errs)
	errs = c.AgentConfigs.validate(errs)
	errs = c.WinNotice.validate(errs)
	errs = c.Metrics.validate(errs)
	return errs
}

// EnabledExchanges returns the configured exchanges which are not disabled, keyed by exchange name.
func (c *Configuration) EnabledExchanges() map[openrtb_ext.ExchangeName]Exchange {
	enabled := make(map[openrtb_ext.ExchangeName]Exchange, len(c.Exchanges))
	for name, exchange := range c.Exchanges {
		if exchange.Disabled {
			continue
		}
		if exchangeName, ok := openrtb_ext.GetExchangeName(name); ok {
			enabled[exchangeName] = exchange
		}
	}
	return enabled
}

// New uses viper to get our server configurations.
func New(v *viper.Viper) (*Configuration, error) {
	var c Configuration
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("viper failed to unmarshal app config: %v", err)
	}

	// viper lower-cases map keys; exchange names already are, currency codes are not.
	c.CurrencyRates = upperCaseRates(c.CurrencyRates)
	for name, exchange := range c.Exchanges {
		exchange.Currency = strings.ToUpper(exchange.Currency)
		exchange.AuctionVerb = strings.ToUpper(exchange.AuctionVerb)
		c.Exchanges[name] = exchange
	}

	if errs := c.validate(); len(errs) > 0 {
		return &c, errortypes.NewAggregateErrors("validation errors", errs)
	}

	return &c, nil
}

// SetupViper registers the defaults and the sources (file, environment) of the app config.
func SetupViper(v *viper.Viper, filename string) {
	if filename != "" {
		v.SetConfigName(filename)
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/config")
	}

	v.SetDefault("host", "")
	v.SetDefault("port", 8000)
	v.SetDefault("admin_port", 6060)
	v.SetDefault("enable_gzip", false)
	v.SetDefault("status_response", "")
	v.SetDefault("auction.min_time_available_ms", 10)
	v.SetDefault("auction.request_timeout_headers.request_time_in_queue", "")
	v.SetDefault("auction.request_timeout_headers.request_timeout_in_queue", "")

	for _, name := range openrtb_ext.CoreExchangeNames() {
		setExchangeDefaults(v, name)
	}

	v.SetDefault("agent_configs.type", AgentConfigsFilesystem)
	v.SetDefault("agent_configs.directory", "./agents")
	v.SetDefault("agent_configs.filename", "")
	v.SetDefault("agent_configs.defaults", "")
	v.SetDefault("agent_configs.refresh_rate_seconds", 60)
	v.SetDefault("agent_configs.postgres.connection.dbname", "")
	v.SetDefault("agent_configs.postgres.connection.host", "")
	v.SetDefault("agent_configs.postgres.connection.port", 0)
	v.SetDefault("agent_configs.postgres.connection.user", "")
	v.SetDefault("agent_configs.postgres.connection.password", "")
	v.SetDefault("agent_configs.postgres.query", "SELECT id, config FROM agent_configs")
	v.SetDefault("agent_configs.http.endpoint", "")
	v.SetDefault("agent_configs.http.timeout_ms", 2000)

	v.SetDefault("win_notice.dedupe_cache_bytes", 1024*1024)
	v.SetDefault("win_notice.dedupe_ttl_seconds", 600)

	v.SetDefault("deploy_pid.enabled", false)
	v.SetDefault("deploy_pid.path", ".")
	v.SetDefault("deploy_pid.mode", 0644)

	v.SetDefault("metrics.go_metrics.enabled", true)
	v.SetDefault("metrics.influxdb.host", "")
	v.SetDefault("metrics.influxdb.database", "")
	v.SetDefault("metrics.influxdb.username", "")
	v.SetDefault("metrics.influxdb.password", "")
	v.SetDefault("metrics.influxdb.interval_seconds", 10)
	v.SetDefault("metrics.prometheus.port", 0)
	v.SetDefault("metrics.prometheus.namespace", "")
	v.SetDefault("metrics.prometheus.subsystem", "")
	v.SetDefault("metrics.prometheus.timeout_ms", 10000)

	v.SetEnvPrefix("CONNECTOR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if filename != "" {
		v.ReadInConfig()
	}
}

func setExchangeDefaults(v *viper.Viper, name openrtb_ext.ExchangeName) {
	prefix := "exchanges." + name.String()
	v.SetDefault(prefix+".disabled", false)
	v.SetDefault(prefix+".auction_resource", "/auctions")
	v.SetDefault(prefix+".auction_verb", "POST")
	v.SetDefault(prefix+".win_notice_url", "")
	v.SetDefault(prefix+".shared_secret", "")
	v.SetDefault(prefix+".currency", "USD")
	v.SetDefault(prefix+".time_available_ms", 200)
}

func upperCaseRates(rates map[string]map[string]float64) map[string]map[string]float64 {
	if rates == nil {
		return nil
	}
	upper := make(map[string]map[string]float64, len(rates))
	for from, targets := range rates {
		row := make(map[string]float64, len(targets))
		for to, rate := range targets {
			row[strings.ToUpper(to)] = rate
		}
		upper[strings.ToUpper(from)] = row
	}
	return upper
}
