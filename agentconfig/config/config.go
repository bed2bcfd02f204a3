package config

import (
	"database/sql"
	"encoding/json"
	"net/http"

	"github.com/bidconnect/exchange-connector/agentconfig"
	"github.com/bidconnect/exchange-connector/agentconfig/backends/db_fetcher"
	"github.com/bidconnect/exchange-connector/agentconfig/backends/empty_fetcher"
	"github.com/bidconnect/exchange-connector/agentconfig/backends/file_fetcher"
	"github.com/bidconnect/exchange-connector/agentconfig/backends/http_fetcher"
	"github.com/bidconnect/exchange-connector/agentconfig/backends/yaml_fetcher"
	"github.com/bidconnect/exchange-connector/config"
	"github.com/golang/glog"

	// Register the Postgres driver with database/sql.
	_ "github.com/lib/pq"
)

// NewFetcher returns the agentconfig.Fetcher described by cfg, with cfg.Defaults applied
// to every document it fetches.
//
// The returned shutdown function releases the backend's resources and must be called
// when the server stops.
func NewFetcher(cfg config.AgentConfigs) (fetcher agentconfig.Fetcher, shutdown func()) {
	fetcher, shutdown = newBackend(cfg)
	return agentconfig.WithDefaults(fetcher, json.RawMessage(cfg.Defaults)), shutdown
}

func newBackend(cfg config.AgentConfigs) (fetcher agentconfig.Fetcher, shutdown func()) {
	shutdown = func() {}

	switch cfg.Type {
	case config.AgentConfigsFilesystem:
		glog.Infof("Loading agent configurations from directory %s", cfg.Directory)
		fFetcher, err := file_fetcher.NewFileFetcher(cfg.Directory)
		if err != nil {
			glog.Fatalf("Failed to load agent configurations from %s: %v", cfg.Directory, err)
		}
		fetcher = fFetcher
	case config.AgentConfigsYAML:
		glog.Infof("Loading agent configurations from file %s", cfg.Filename)
		yFetcher, err := yaml_fetcher.NewFetcher(cfg.Filename)
		if err != nil {
			glog.Fatalf("Failed to load agent configurations from %s: %v", cfg.Filename, err)
		}
		fetcher = yFetcher
	case config.AgentConfigsHTTP:
		client := &http.Client{Timeout: cfg.HTTP.Timeout()}
		fetcher = http_fetcher.NewFetcher(client, cfg.HTTP.Endpoint)
	case config.AgentConfigsPostgres:
		glog.Infof("Loading agent configurations via Postgres.\nQuery: %s", cfg.Postgres.Query)
		db := newPostgresDB(cfg.Postgres.ConnectionInfo)
		shutdown = func() {
			if err := db.Close(); err != nil {
				glog.Errorf("Error closing agent config DB connection: %v", err)
			}
		}
		fetcher = db_fetcher.NewFetcher(db, cfg.Postgres.Query)
	default:
		glog.Warning("No agent configuration backend configured. The connector will not bid.")
		fetcher = empty_fetcher.EmptyFetcher{}
	}
	return
}

func newPostgresDB(cfg config.PostgresConnection) *sql.DB {
	db, err := sql.Open("postgres", cfg.ConnString())
	if err != nil {
		glog.Fatalf("Failed to open agent config postgres connection: %v", err)
	}

	if err := db.Ping(); err != nil {
		glog.Fatalf("Failed to ping agent config postgres: %v", err)
	}

	return db
}
