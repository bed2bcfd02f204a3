package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"time"

	validator "github.com/asaskevich/govalidator"
)

const (
	AgentConfigsFilesystem = "filesystem"
	AgentConfigsYAML       = "yaml"
	AgentConfigsPostgres   = "postgres"
	AgentConfigsHTTP       = "http"
	AgentConfigsNone       = "none"
)

// AgentConfigs configures where bidding agent (campaign) configurations are loaded from.
type AgentConfigs struct {
	Type               string               `mapstructure:"type"`
	Directory          string               `mapstructure:"directory"`
	Filename           string               `mapstructure:"filename"`
	RefreshRateSeconds int                  `mapstructure:"refresh_rate_seconds"`
	Postgres           PostgresAgentConfigs `mapstructure:"postgres"`
	HTTP               HTTPAgentConfigs     `mapstructure:"http"`
	// Defaults is a JSON object every agent configuration is merge-patched onto.
	Defaults string `mapstructure:"defaults"`
}

// HTTPAgentConfigs configures the HTTP agent configuration backend.
type HTTPAgentConfigs struct {
	Endpoint  string `mapstructure:"endpoint"`
	TimeoutMs int    `mapstructure:"timeout_ms"`
}

func (cfg HTTPAgentConfigs) Timeout() time.Duration {
	return time.Duration(cfg.TimeoutMs) * time.Millisecond
}

// RefreshRate is how often the agent configurations are reloaded. Zero disables reloading.
func (cfg AgentConfigs) RefreshRate() time.Duration {
	return time.Duration(cfg.RefreshRateSeconds) * time.Second
}

func (cfg AgentConfigs) validate(errs []error) []error {
	switch cfg.Type {
	case AgentConfigsFilesystem:
		if cfg.Directory == "" {
			errs = append(errs, fmt.Errorf("agent_configs.directory must be set when agent_configs.type is %s", AgentConfigsFilesystem))
		}
	case AgentConfigsYAML:
		if cfg.Filename == "" {
			errs = append(errs, fmt.Errorf("agent_configs.filename must be set when agent_configs.type is %s", AgentConfigsYAML))
		}
	case AgentConfigsPostgres:
		if cfg.Postgres.ConnectionInfo.Database == "" {
			errs = append(errs, fmt.Errorf("agent_configs.postgres.connection.dbname must be set when agent_configs.type is %s", AgentConfigsPostgres))
		}
		if cfg.Postgres.Query == "" {
			errs = append(errs, fmt.Errorf("agent_configs.postgres.query must be set when agent_configs.type is %s", AgentConfigsPostgres))
		}
	case AgentConfigsHTTP:
		if !validator.IsURL(cfg.HTTP.Endpoint) || !validator.IsRequestURL(cfg.HTTP.Endpoint) {
			errs = append(errs, fmt.Errorf("agent_configs.http.endpoint must be a valid URL when agent_configs.type is %s. Got %q", AgentConfigsHTTP, cfg.HTTP.Endpoint))
		}
		if cfg.HTTP.TimeoutMs <= 0 {
			errs = append(errs, fmt.Errorf("agent_configs.http.timeout_ms must be positive. Got %d", cfg.HTTP.TimeoutMs))
		}
	case AgentConfigsNone:
	default:
		errs = append(errs, fmt.Errorf("agent_configs.type must be one of %s, %s, %s, %s or %s. Got %q",
			AgentConfigsFilesystem, AgentConfigsYAML, AgentConfigsPostgres, AgentConfigsHTTP, AgentConfigsNone, cfg.Type))
	}
	if cfg.RefreshRateSeconds < 0 {
		errs = append(errs, fmt.Errorf("agent_configs.refresh_rate_seconds must be non-negative. Got %d", cfg.RefreshRateSeconds))
	}
	if cfg.Defaults != "" {
		var defaults map[string]json.RawMessage
		if err := json.Unmarshal([]byte(cfg.Defaults), &defaults); err != nil {
			errs = append(errs, fmt.Errorf("agent_configs.defaults must be a JSON object: %v", err))
		}
	}
	return errs
}

// PostgresAgentConfigs configures the Postgres agent configuration backend.
type PostgresAgentConfigs struct {
	ConnectionInfo PostgresConnection `mapstructure:"connection"`
	// Query must return two columns: the agent id and its JSON configuration.
	Query string `mapstructure:"query"`
}

type PostgresConnection struct {
	Database string `mapstructure:"dbname"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"user"`
	Password string `mapstructure:"password"`
}

// ConnString returns a postgresql:// URL for lib/pq.
func (cfg PostgresConnection) ConnString() string {
	buffer := bytes.NewBuffer(nil)
	buffer.WriteString("postgresql://")

	if cfg.Username != "" {
		buffer.WriteString(cfg.Username)
		if cfg.Password != "" {
			buffer.WriteString(":")
			buffer.WriteString(url.QueryEscape(cfg.Password))
		}
		buffer.WriteString("@")
	}

	if cfg.Host != "" {
		buffer.WriteString(cfg.Host)
	}

	if cfg.Port > 0 {
		buffer.WriteString(":")
		buffer.WriteString(strconv.Itoa(cfg.Port))
	}

	if cfg.Database != "" {
		buffer.WriteString("/")
		buffer.WriteString(cfg.Database)
	}

	buffer.WriteString("?sslmode=disable")

	return buffer.String()
}
