package auction

import (
	"context"
	"errors"
	"strings"

	"github.com/bidconnect/exchange-connector/agentconfig"
	"github.com/bidconnect/exchange-connector/currency"
	"github.com/bidconnect/exchange-connector/errortypes"
	"github.com/bidconnect/exchange-connector/logger"
	"github.com/prebid/openrtb/v20/openrtb2"
	"github.com/shopspring/decimal"
)

// ErrDropped is returned by a Runner which could not finish before the auction deadline.
// The auction must be answered with the connector's dropped response.
var ErrDropped = errors.New("auction dropped: deadline exceeded")

// Runner decides the winning response of every spot of an auction and records it with Finish.
type Runner interface {
	Run(ctx context.Context, a *Auction, agents []*agentconfig.AgentConfig) error
}

// defaultFloorCurrency is assumed when an impression has a floor without a currency.
const defaultFloorCurrency = "USD"

// LocalRunner runs a first-price auction between fixed-price agents in process.
//
// For each spot, an agent competes when its campaign is compatible with the exchange
// and one of its compatible creatives matches a banner size of the impression. The
// highest bid at or above the floor wins; equal bids go to the agent listed first.
type LocalRunner struct {
	conversions currency.Conversions
	// compareCurrency is the currency bids are converted to before they are compared.
	compareCurrency string
}

// NewLocalRunner returns a LocalRunner comparing bids in compareCurrency, usually the
// currency of the exchange it runs auctions for.
func NewLocalRunner(conversions currency.Conversions, compareCurrency string) *LocalRunner {
	return &LocalRunner{
		conversions:     conversions,
		compareCurrency: strings.ToUpper(compareCurrency),
	}
}

func (r *LocalRunner) Run(ctx context.Context, a *Auction, agents []*agentconfig.AgentConfig) error {
	if ctx.Err() != nil {
		return ErrDropped
	}
	if a.NumSpots() == 0 {
		return &errortypes.AuctionFailure{Message: "auction has no spots"}
	}

	responses := make([]*Response, a.NumSpots())
	for spot := range a.Request.Imp {
		if ctx.Err() != nil {
			return ErrDropped
		}
		responses[spot] = r.bestResponse(a, &a.Request.Imp[spot], agents)
	}

	a.Finish(&Data{Responses: responses})
	return nil
}

func (r *LocalRunner) bestResponse(a *Auction, imp *openrtb2.Imp, agents []*agentconfig.AgentConfig) *Response {
	var best *Response
	var bestCPM decimal.Decimal

	for _, agent := range agents {
		if !agent.Campaign.Compatible(a.Exchange) {
			continue
		}
		creativeIndex := matchingCreative(a, imp, agent)
		if creativeIndex < 0 {
			continue
		}

		cpm, err := agent.BidPrice.ToCPM(r.compareCurrency, r.conversions)
		if err != nil {
			if errortypes.IsWarning(err) {
				logger.Debugf("agent %s skipped in auction %s: %v", agent.ID, a.ID, err)
			} else {
				logger.Warnf("agent %s skipped in auction %s: %v", agent.ID, a.ID, err)
			}
			continue
		}
		if !cpm.IsPositive() || !r.meetsFloor(agent, imp) {
			continue
		}

		if best == nil || cpm.GreaterThan(bestCPM) || (cpm.Equal(bestCPM) && agent.ID < best.Agent) {
			bestCPM = cpm
			best = &Response{
				Price:         Price{MaxPrice: agent.BidPrice},
				Agent:         agent.ID,
				AgentConfig:   agent,
				CreativeIndex: creativeIndex,
			}
		}
	}
	return best
}

func (r *LocalRunner) meetsFloor(agent *agentconfig.AgentConfig, imp *openrtb2.Imp) bool {
	if imp.BidFloor <= 0 {
		return true
	}
	floorCurrency := strings.ToUpper(imp.BidFloorCur)
	if floorCurrency == "" {
		floorCurrency = defaultFloorCurrency
	}
	cpm, err := agent.BidPrice.ToCPM(floorCurrency, r.conversions)
	if err != nil {
		return false
	}
	return cpm.GreaterThanOrEqual(decimal.NewFromFloat(imp.BidFloor))
}

// matchingCreative returns the index of the first creative of agent which can serve
// on the auction's exchange and whose size is one of the impression's banner sizes.
func matchingCreative(a *Auction, imp *openrtb2.Imp, agent *agentconfig.AgentConfig) int {
	if imp.Banner == nil {
		return -1
	}
	for i := range agent.Creatives {
		creative := &agent.Creatives[i]
		if creative.Info.Compatible(a.Exchange) && bannerFits(imp.Banner, creative.Width, creative.Height) {
			return i
		}
	}
	return -1
}

func bannerFits(banner *openrtb2.Banner, w, h int64) bool {
	for _, format := range banner.Format {
		if format.W == w && format.H == h {
			return true
		}
	}
	return banner.W != nil && banner.H != nil && *banner.W == w && *banner.H == h
}
