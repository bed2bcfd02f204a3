package db_fetcher

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/bidconnect/exchange-connector/agentconfig"
	"github.com/bidconnect/exchange-connector/logger"
	"github.com/golang/glog"
)

// NewFetcher returns a Fetcher which runs query against db. The query must select
// two columns: the agent id and its JSON configuration.
func NewFetcher(db *sql.DB, query string) agentconfig.Fetcher {
	if db == nil {
		glog.Fatalf("The Postgres Agent Config Fetcher requires a database connection. Please report this as a bug.")
	}
	if query == "" {
		glog.Fatalf("The Postgres Agent Config Fetcher requires a query. Please report this as a bug.")
	}
	return &dbFetcher{
		db:    db,
		query: query,
	}
}

// dbFetcher fetches agent configurations from a database. This should be instantiated through the NewFetcher() function.
type dbFetcher struct {
	db    *sql.DB
	query string
}

func (fetcher *dbFetcher) FetchAgentConfigs(ctx context.Context) (map[string]json.RawMessage, []error) {
	rows, err := fetcher.db.QueryContext(ctx, fetcher.query)
	if err != nil {
		if err != context.DeadlineExceeded {
			logger.Errorf("Error reading from Agent Config DB: %s", err.Error())
		}
		return nil, []error{err}
	}
	defer func() {
		if err := rows.Close(); err != nil {
			logger.Errorf("error closing DB connection: %v", err)
		}
	}()

	configs := make(map[string]json.RawMessage)
	var errs []error
	for rows.Next() {
		var id string
		var data []byte

		if err := rows.Scan(&id, &data); err != nil {
			return nil, []error{err}
		}

		if _, ok := configs[id]; ok {
			errs = append(errs, fmt.Errorf("agent config %s is returned more than once; the last row wins", id))
		}
		configs[id] = data
	}

	if rows.Err() != nil {
		return nil, []error{rows.Err()}
	}

	return configs, errs
}
