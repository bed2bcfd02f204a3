package mopub

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/bidconnect/exchange-connector/adapters"
	"github.com/bidconnect/exchange-connector/auction"
	"github.com/bidconnect/exchange-connector/config"
	"github.com/bidconnect/exchange-connector/currency"
	"github.com/bidconnect/exchange-connector/errortypes"
	"github.com/bidconnect/exchange-connector/openrtb_ext"
	"github.com/bidconnect/exchange-connector/util/httputil"
	"github.com/bidconnect/exchange-connector/util/jsonutil"
	"github.com/buger/jsonparser"
	"github.com/prebid/openrtb/v20/openrtb2"
)

// MoPubAdapter speaks MoPub's flavour of OpenRTB 2.x.
type MoPubAdapter struct {
	name          openrtb_ext.ExchangeName
	winNoticeURL  string
	sharedSecret  string
	currency      string
	timeAvailable time.Duration
	conversions   currency.Conversions
}

// Builder builds a new instance of the MoPub connector for the given exchange with the given config.
func Builder(name openrtb_ext.ExchangeName, cfg config.Exchange, conversions currency.Conversions) (adapters.Connector, error) {
	if cfg.WinNoticeURL == "" {
		return nil, errors.New("MoPub connector requires a win notice URL")
	}
	if conversions == nil {
		conversions = currency.NewConstantRates()
	}
	return &MoPubAdapter{
		name:          name,
		winNoticeURL:  cfg.WinNoticeURL,
		sharedSecret:  cfg.SharedSecret,
		currency:      strings.ToUpper(cfg.Currency),
		timeAvailable: cfg.TimeAvailable(),
		conversions:   conversions,
	}, nil
}

func (a *MoPubAdapter) ExchangeName() openrtb_ext.ExchangeName {
	return a.name
}

// ParseBidRequest accepts application/json OpenRTB 2.x bid requests with an id and at least one impression.
func (a *MoPubAdapter) ParseBidRequest(header http.Header, payload []byte) (*openrtb2.BidRequest, error) {
	if !httputil.IsJSONContentType(header) {
		return nil, &errortypes.BadInput{Message: "non-JSON request"}
	}

	var request openrtb2.BidRequest
	if err := jsonutil.Unmarshal(payload, &request); err != nil {
		return nil, &errortypes.BadInput{Message: fmt.Sprintf("error parsing bid request: %s", err.Error())}
	}

	if request.ID == "" {
		return nil, &errortypes.BadInput{Message: "bid request is missing its id"}
	}
	if len(request.Imp) == 0 {
		return nil, &errortypes.BadInput{Message: "bid request has no impressions"}
	}
	for i, imp := range request.Imp {
		if imp.ID == "" {
			return nil, &errortypes.BadInput{Message: fmt.Sprintf("bid request imp[%d] is missing its id", i)}
		}
	}
	return &request, nil
}

// TimeAvailable returns the request's tmax when it has one. MoPub does not send it,
// so this is usually the configured budget.
func (a *MoPubAdapter) TimeAvailable(header http.Header, payload []byte) time.Duration {
	if tmax, err := jsonparser.GetInt(payload, "tmax"); err == nil && tmax > 0 {
		return time.Duration(tmax) * time.Millisecond
	}
	return a.timeAvailable
}

// Response groups the winning bids of the auction by MoPub seat, in the order seats
// are first seen, each seat's bids in impression order.
func (a *MoPubAdapter) Response(auc *auction.Auction) (adapters.HTTPResponse, error) {
	current := auc.Current()
	if current.HasError() {
		return a.ErrorResponse(auc, current.ErrorMessage()), nil
	}

	var seatBids []openrtb2.SeatBid
	seatIndex := make(map[string]int)

	for spot := 0; spot < auc.NumSpots(); spot++ {
		resp := current.WinningResponse(spot)
		if resp == nil {
			continue
		}

		bid, seat, err := a.makeBid(auc, spot, resp)
		if err != nil {
			return adapters.HTTPResponse{}, err
		}

		index, ok := seatIndex[seat]
		if !ok {
			index = len(seatBids)
			seatIndex[seat] = index
			seatBids = append(seatBids, openrtb2.SeatBid{Seat: seat})
		}
		seatBids[index].Bid = append(seatBids[index].Bid, bid)
	}

	if len(seatBids) == 0 {
		return adapters.NoContentResponse(), nil
	}

	body, err := jsonutil.Marshal(openrtb2.BidResponse{
		ID:      auc.ID,
		SeatBid: seatBids,
	})
	if err != nil {
		return adapters.HTTPResponse{}, err
	}
	return adapters.OKResponse(body), nil
}

// makeBid builds the bid of a winning response from the snapshots resolved when its
// agent configuration was loaded.
func (a *MoPubAdapter) makeBid(auc *auction.Auction, spot int, resp *auction.Response) (openrtb2.Bid, string, error) {
	cfg := resp.AgentConfig
	if cfg == nil {
		return openrtb2.Bid{}, "", invariantViolation(auc, spot, "winning response of agent %s has no agent configuration", resp.Agent)
	}
	campaign := cfg.Campaign.MoPub
	if campaign == nil {
		return openrtb2.Bid{}, "", invariantViolation(auc, spot, "agent %s won without MoPub campaign data", resp.Agent)
	}
	if resp.CreativeIndex < 0 || resp.CreativeIndex >= len(cfg.Creatives) {
		return openrtb2.Bid{}, "", invariantViolation(auc, spot, "agent %s won with creative %d of %d", resp.Agent, resp.CreativeIndex, len(cfg.Creatives))
	}
	creative := cfg.Creatives[resp.CreativeIndex].Info.MoPub
	if creative == nil {
		return openrtb2.Bid{}, "", invariantViolation(auc, spot, "agent %s won with creative %d which has no MoPub data", resp.Agent, resp.CreativeIndex)
	}

	price, err := resp.Price.MaxPrice.ToCPM(a.currency, a.conversions)
	if err != nil {
		return openrtb2.Bid{}, "", invariantViolation(auc, spot, "cannot price the bid of agent %s in %s: %v", resp.Agent, a.currency, err)
	}

	imp := &auc.Request.Imp[spot]
	return openrtb2.Bid{
		ID:      auc.ID + ":" + imp.ID,
		ImpID:   imp.ID,
		Price:   price.InexactFloat64(),
		AdID:    creative.AdID,
		NURL:    a.winNoticeURL,
		AdM:     creative.AdM,
		ADomain: creative.ADomain,
		IURL:    creative.IURL,
		CID:     resp.Agent,
		CrID:    creative.CrID,
		Attr:    creative.Attr,
	}, campaign.Seat, nil
}

func invariantViolation(auc *auction.Auction, spot int, format string, args ...interface{}) error {
	return &errortypes.InvariantViolation{
		Message: fmt.Sprintf("auction %s spot %d: %s", auc.ID, spot, fmt.Sprintf(format, args...)),
	}
}

// DroppedAuctionResponse answers with an empty 204. MoPub gives no way to report why.
func (a *MoPubAdapter) DroppedAuctionResponse(reason string) adapters.HTTPResponse {
	return adapters.DroppedAuctionResponse()
}

func (a *MoPubAdapter) ErrorResponse(auc *auction.Auction, message string) adapters.HTTPResponse {
	return adapters.ErrorResponse(message)
}

// DecodeWinPrice decrypts ${AUCTION_PRICE:BF} with the configured shared secret.
func (a *MoPubAdapter) DecodeWinPrice(winPriceHex string) (float64, error) {
	return DecodeWinPrice(a.sharedSecret, winPriceHex)
}
