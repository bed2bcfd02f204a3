package endpoints

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/bidconnect/exchange-connector/adapters"
	"github.com/bidconnect/exchange-connector/agentconfig"
	"github.com/bidconnect/exchange-connector/auction"
	"github.com/bidconnect/exchange-connector/config"
	"github.com/bidconnect/exchange-connector/errortypes"
	"github.com/bidconnect/exchange-connector/logger"
	"github.com/bidconnect/exchange-connector/metrics"
	"github.com/julienschmidt/httprouter"
	"github.com/tidwall/gjson"
)

const (
	insufficientTimeReason = "insufficient time available"
	auctionFailedError     = "auction failed"
)

// AgentSource supplies the agents allowed to bid. exchange.AgentStore is the production source.
type AgentSource interface {
	Agents() []*agentconfig.AgentConfig
}

type auctionEndpoint struct {
	connector        adapters.Connector
	agents           AgentSource
	runner           auction.Runner
	minTimeAvailable time.Duration
	metrics          metrics.MetricsEngine
	clock            clock.Clock
}

// NewAuctionEndpoint answers the bid requests of one exchange.
func NewAuctionEndpoint(connector adapters.Connector, agents AgentSource, runner auction.Runner, cfg config.Auction, me metrics.MetricsEngine) (httprouter.Handle, error) {
	return newAuctionEndpoint(connector, agents, runner, cfg, me, clock.New())
}

func newAuctionEndpoint(connector adapters.Connector, agents AgentSource, runner auction.Runner, cfg config.Auction, me metrics.MetricsEngine, clk clock.Clock) (httprouter.Handle, error) {
	if connector == nil || agents == nil || runner == nil || me == nil {
		return nil, errors.New("NewAuctionEndpoint requires non-nil arguments.")
	}
	return httprouter.Handle((&auctionEndpoint{
		connector:        connector,
		agents:           agents,
		runner:           runner,
		minTimeAvailable: cfg.MinTimeAvailable(),
		metrics:          me,
		clock:            clk,
	}).Auction), nil
}

func (e *auctionEndpoint) Auction(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	start := e.clock.Now()
	labels := metrics.Labels{
		Exchange:      e.connector.ExchangeName(),
		RequestStatus: metrics.RequestStatusOK,
	}
	defer func() {
		e.metrics.RecordRequest(labels)
		e.metrics.RecordRequestTime(labels, e.clock.Now().Sub(start))
	}()

	payload, err := io.ReadAll(r.Body)
	if err != nil {
		labels.RequestStatus = metrics.RequestStatusErr
		writeResponse(w, e.connector.ErrorResponse(nil, "failed to read request body"))
		return
	}

	timeAvailable := e.connector.TimeAvailable(r.Header, payload)
	if timeAvailable < e.minTimeAvailable {
		labels.RequestStatus = metrics.RequestStatusDropped
		writeResponse(w, e.connector.DroppedAuctionResponse(insufficientTimeReason))
		return
	}

	request, err := e.connector.ParseBidRequest(r.Header, payload)
	if err != nil {
		if errortypes.ReadCode(err) == errortypes.BadInputErrorCode {
			labels.RequestStatus = metrics.RequestStatusBadInput
		} else {
			labels.RequestStatus = metrics.RequestStatusErr
		}
		writeResponse(w, e.connector.ErrorResponse(nil, err.Error()))
		return
	}

	a := auction.New(labels.Exchange, request, start, timeAvailable)
	ctx, cancel := context.WithTimeout(r.Context(), timeAvailable)
	defer cancel()

	if err := e.runner.Run(ctx, a, e.agents.Agents()); err != nil {
		if errors.Is(err, auction.ErrDropped) {
			labels.RequestStatus = metrics.RequestStatusDropped
			writeResponse(w, e.connector.DroppedAuctionResponse(err.Error()))
			return
		}
		a.Fail(auctionFailedError, err.Error())
	}

	response, err := e.connector.Response(a)
	if err != nil {
		logger.Errorf("%s auction %s: %v", labels.Exchange, a.ID, err)
		labels.RequestStatus = metrics.RequestStatusErr
		writeResponse(w, e.connector.ErrorResponse(a, err.Error()))
		return
	}

	switch {
	case a.Current().HasError():
		labels.RequestStatus = metrics.RequestStatusErr
	case response.StatusCode == http.StatusNoContent:
		labels.RequestStatus = metrics.RequestStatusNoBid
	default:
		seats, bids := countBids(response.Body)
		e.metrics.RecordBids(labels.Exchange, seats, bids)
	}
	writeResponse(w, response)
}

// countBids reads the seat and bid counts of an OpenRTB bid response.
func countBids(body []byte) (seats int, bids int) {
	seatBids := gjson.GetBytes(body, "seatbid")
	seatBids.ForEach(func(_, seat gjson.Result) bool {
		seats++
		bids += len(seat.Get("bid").Array())
		return true
	})
	return seats, bids
}

// writeResponse writes the status, content type and body of resp. 204 responses get no body.
func writeResponse(w http.ResponseWriter, resp adapters.HTTPResponse) {
	if resp.ContentType != "" {
		w.Header().Set("Content-Type", resp.ContentType)
	}
	w.WriteHeader(resp.StatusCode)
	if resp.StatusCode == http.StatusNoContent || len(resp.Body) == 0 {
		return
	}
	if _, err := w.Write(resp.Body); err != nil {
		logger.Warnf("Error writing response: %v", err)
	}
}
