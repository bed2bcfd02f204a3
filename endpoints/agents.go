package endpoints

import (
	"net/http"

	"github.com/bidconnect/exchange-connector/exchange"
	"github.com/bidconnect/exchange-connector/logger"
	"github.com/bidconnect/exchange-connector/util/jsonutil"
	"github.com/julienschmidt/httprouter"
)

// AgentStatusSource reports how the loaded agent configurations were resolved.
type AgentStatusSource interface {
	Statuses() []exchange.AgentStatus
}

// NewAgentStatusEndpoint lists every fetched agent with its per-exchange compatibility verdict.
func NewAgentStatusEndpoint(source AgentStatusSource) httprouter.Handle {
	return func(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
		statuses := source.Statuses()
		if statuses == nil {
			statuses = []exchange.AgentStatus{}
		}
		body, err := jsonutil.Marshal(statuses)
		if err != nil {
			logger.Errorf("/agents Critical error when trying to marshal agent statuses: %v", err)
			w.WriteHeader(http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write(body)
	}
}
