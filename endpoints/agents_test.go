package endpoints

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bidconnect/exchange-connector/exchange"
	"github.com/stretchr/testify/assert"
)

type staticStatuses []exchange.AgentStatus

func (s staticStatuses) Statuses() []exchange.AgentStatus {
	return s
}

func TestAgentStatusEndpoint(t *testing.T) {
	connector := newTestConnector(t)
	store := newTestAgents(t, connector, staticFetcher{
		"2001": json.RawMessage(testAgent),
		"2002": json.RawMessage(`{"bidPrice": {"value": 1, "currency": "USD"}}`),
	})

	w := httptest.NewRecorder()
	NewAgentStatusEndpoint(store)(w, httptest.NewRequest("GET", "/agents", nil), nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var statuses []exchange.AgentStatus
	if assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &statuses)) && assert.Len(t, statuses, 2) {
		assert.Equal(t, "2001", statuses[0].ID)
		assert.True(t, statuses[0].Published)
		assert.True(t, statuses[0].Exchanges["mopub"].Compatible())
		assert.Equal(t, "2002", statuses[1].ID)
		assert.False(t, statuses[1].Published)
		assert.NotEmpty(t, statuses[1].Error)
	}
}

func TestAgentStatusEndpointBeforeFirstLoad(t *testing.T) {
	w := httptest.NewRecorder()
	NewAgentStatusEndpoint(staticStatuses(nil))(w, httptest.NewRequest("GET", "/agents", nil), nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "[]", w.Body.String())
}
