package openrtb_ext

import (
	"github.com/prebid/openrtb/v20/adcom1"
)

// MoPubPriceMacro is replaced by MoPub, at serving time, with the encrypted clearing price.
const MoPubPriceMacro = "${AUCTION_PRICE:BF}"

// ExtCampaignMoPub defines the contract for agentconfig.providerConfig.mopub
type ExtCampaignMoPub struct {
	// Seat is the MoPub buyer seat the campaign bids under.
	Seat string `json:"seat"`
}

// ExtCreativeMoPub defines the contract for agentconfig.creatives[i].providerConfig.mopub
type ExtCreativeMoPub struct {
	AdM     string                     `json:"adm"`
	ADomain []string                   `json:"adomain"`
	CrID    string                     `json:"crid"`
	IURL    string                     `json:"iurl"`
	AdID    string                     `json:"adid"`
	Attr    []adcom1.CreativeAttribute `json:"attr"`
}
