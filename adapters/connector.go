package adapters

import (
	"net/http"
	"time"

	"github.com/bidconnect/exchange-connector/agentconfig"
	"github.com/bidconnect/exchange-connector/auction"
	"github.com/bidconnect/exchange-connector/config"
	"github.com/bidconnect/exchange-connector/currency"
	"github.com/bidconnect/exchange-connector/openrtb_ext"
	"github.com/prebid/openrtb/v20/openrtb2"
)

// Connector translates between one exchange's wire protocol and the canonical auction model.
//
// A Connector is built once per configured exchange and is called concurrently by every
// request the exchange sends. Implementations must not keep per-request state.
type Connector interface {
	ExchangeName() openrtb_ext.ExchangeName

	// ParseBidRequest converts the exchange's HTTP payload into a canonical bid request.
	//
	// Payloads which are not JSON, or which cannot be auctioned, must fail with an
	// *errortypes.BadInput without being parsed further.
	ParseBidRequest(header http.Header, payload []byte) (*openrtb2.BidRequest, error)

	// TimeAvailable returns how long the exchange waits for an answer to this request.
	// It is called before the payload is parsed, so it must be cheap.
	TimeAvailable(header http.Header, payload []byte) time.Duration

	// Response builds the wire response for an auction which ran to completion.
	//
	// An error means a winning response could not be turned into a bid (an
	// *errortypes.InvariantViolation) or the response could not be serialized. Either way
	// the auction must be answered with ErrorResponse.
	Response(a *auction.Auction) (HTTPResponse, error)

	// DroppedAuctionResponse answers a request which was shed before (or during) its auction.
	DroppedAuctionResponse(reason string) HTTPResponse

	// ErrorResponse answers a request which failed with message.
	ErrorResponse(a *auction.Auction, message string) HTTPResponse

	// CampaignCompatibility checks whether an agent configuration carries everything
	// this exchange needs to bid on its behalf.
	CampaignCompatibility(cfg *agentconfig.AgentConfig, includeReasons bool) CampaignCompatibility

	// CreativeCompatibility checks whether a creative carries everything this exchange
	// needs to serve it.
	CreativeCompatibility(creative *agentconfig.Creative, includeReasons bool) CreativeCompatibility
}

// WinPriceDecoder is implemented by connectors whose exchange sends the clearing price
// of won auctions encrypted.
type WinPriceDecoder interface {
	// DecodeWinPrice recovers the clearing price, in CPM of the exchange currency,
	// from the macro value the exchange substituted into the win notice.
	DecodeWinPrice(winPriceHex string) (float64, error)
}

// Builder builds a Connector for the named exchange from its static configuration.
type Builder func(name openrtb_ext.ExchangeName, cfg config.Exchange, conversions currency.Conversions) (Connector, error)
