package auction

import (
	"time"

	"github.com/bidconnect/exchange-connector/agentconfig"
	"github.com/bidconnect/exchange-connector/currency"
	"github.com/bidconnect/exchange-connector/openrtb_ext"
	"github.com/prebid/openrtb/v20/openrtb2"
)

// Auction is the canonical, exchange-independent view of one bid request.
//
// An exchange connector builds the request, a Runner fills in the result with Finish,
// and the connector reads it back through Current to build the wire response.
type Auction struct {
	ID       string
	Exchange openrtb_ext.ExchangeName
	Request  *openrtb2.BidRequest
	Start    time.Time
	// Deadline is the latest time a response can still be useful to the exchange.
	Deadline time.Time

	data *Data
}

// New returns an auction for the given request, which must carry a non-empty id.
func New(exchange openrtb_ext.ExchangeName, request *openrtb2.BidRequest, start time.Time, timeAvailable time.Duration) *Auction {
	return &Auction{
		ID:       request.ID,
		Exchange: exchange,
		Request:  request,
		Start:    start,
		Deadline: start.Add(timeAvailable),
	}
}

// NumSpots is the number of impressions (ad spots) offered in the request.
func (a *Auction) NumSpots() int {
	if a.Request == nil {
		return 0
	}
	return len(a.Request.Imp)
}

// Current returns the result of the auction. Before Finish it is an empty result
// with no error and no winners.
func (a *Auction) Current() *Data {
	if a.data == nil {
		return &Data{}
	}
	return a.data
}

// Finish records the result of the auction.
func (a *Auction) Finish(data *Data) {
	a.data = data
}

// Fail records a terminal error. Connectors answer failed auctions with their error response.
func (a *Auction) Fail(err string, details string) {
	a.data = &Data{Error: err, Details: details}
}

// Data is the outcome of an auction: either an error, or one (possibly nil)
// winning Response per spot, indexed like Request.Imp.
type Data struct {
	Error     string
	Details   string
	Responses []*Response
}

func (d *Data) HasError() bool {
	return d.Error != ""
}

// ErrorMessage joins Error and Details the way it is reported to exchanges.
func (d *Data) ErrorMessage() string {
	return d.Error + ": " + d.Details
}

// WinningResponse returns the valid winning response for spot, or nil.
func (d *Data) WinningResponse(spot int) *Response {
	if spot < 0 || spot >= len(d.Responses) {
		return nil
	}
	if resp := d.Responses[spot]; resp.Valid() {
		return resp
	}
	return nil
}

// Price is what an agent is willing to pay for a spot.
type Price struct {
	MaxPrice currency.Amount
}

// Response is the bid of one agent on one spot.
type Response struct {
	Price Price
	// Agent names the bidding agent. It is reported to the exchange as the campaign id.
	Agent       string
	AgentConfig *agentconfig.AgentConfig
	// CreativeIndex indexes AgentConfig.Creatives.
	CreativeIndex int
}

// Valid reports whether the response is a real bid.
func (r *Response) Valid() bool {
	return r != nil && r.Agent != "" && r.Price.MaxPrice.Value.IsPositive()
}
