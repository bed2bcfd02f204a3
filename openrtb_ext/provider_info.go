package openrtb_ext

// CampaignInfo holds the exchange-specific campaign data resolved when an agent
// configuration is loaded. There is one field per exchange; a nil field means the
// campaign is not compatible with that exchange.
//
// Values are built once and never mutated after they are published.
type CampaignInfo struct {
	MoPub *ExtCampaignMoPub `json:"mopub,omitempty"`
}

// Compatible reports whether the campaign carries data for the given exchange.
func (info CampaignInfo) Compatible(name ExchangeName) bool {
	switch name {
	case ExchangeMoPub:
		return info.MoPub != nil
	}
	return false
}

// Merge copies every exchange-specific entry which is set in other.
func (info *CampaignInfo) Merge(other CampaignInfo) {
	if other.MoPub != nil {
		info.MoPub = other.MoPub
	}
}

// CreativeInfo holds the exchange-specific creative data resolved when an agent
// configuration is loaded. A nil field means the creative cannot serve on that exchange.
type CreativeInfo struct {
	MoPub *ExtCreativeMoPub `json:"mopub,omitempty"`
}

// Compatible reports whether the creative carries data for the given exchange.
func (info CreativeInfo) Compatible(name ExchangeName) bool {
	switch name {
	case ExchangeMoPub:
		return info.MoPub != nil
	}
	return false
}

// Merge copies every exchange-specific entry which is set in other.
func (info *CreativeInfo) Merge(other CreativeInfo) {
	if other.MoPub != nil {
		info.MoPub = other.MoPub
	}
}
