package metrics

import (
	"time"

	"github.com/bidconnect/exchange-connector/openrtb_ext"
)

// Labels defines the labels that can be attached to the request metrics.
type Labels struct {
	Exchange      openrtb_ext.ExchangeName
	RequestStatus RequestStatus
}

// RequestStatus is how a bid request from an exchange was answered.
type RequestStatus string

const (
	// RequestStatusOK means at least one bid was returned.
	RequestStatusOK RequestStatus = "ok"
	// RequestStatusNoBid means the auction ran but nobody bid.
	RequestStatusNoBid RequestStatus = "nobid"
	// RequestStatusDropped means the request was shed for lack of time.
	RequestStatusDropped RequestStatus = "dropped"
	RequestStatusBadInput RequestStatus = "badinput"
	RequestStatusErr      RequestStatus = "err"
)

func RequestStatuses() []RequestStatus {
	return []RequestStatus{
		RequestStatusOK,
		RequestStatusNoBid,
		RequestStatusDropped,
		RequestStatusBadInput,
		RequestStatusErr,
	}
}

// ConfigKind is the part of an agent configuration a compatibility check ran on.
type ConfigKind string

const (
	ConfigKindCampaign ConfigKind = "campaign"
	ConfigKindCreative ConfigKind = "creative"
)

func ConfigKinds() []ConfigKind {
	return []ConfigKind{
		ConfigKindCampaign,
		ConfigKindCreative,
	}
}

// WinNoticeStatus is the outcome of decoding the price of a win notice.
type WinNoticeStatus string

const (
	WinNoticeOK          WinNoticeStatus = "ok"
	WinNoticeMalformed   WinNoticeStatus = "malformed"
	WinNoticeDecodeError WinNoticeStatus = "decode_error"
)

func WinNoticeStatuses() []WinNoticeStatus {
	return []WinNoticeStatus{
		WinNoticeOK,
		WinNoticeMalformed,
		WinNoticeDecodeError,
	}
}

// MetricsEngine is a generic interface to record metrics into the desired backend.
// The first three metrics function fire off once per incoming request, so total metrics
// will equal the total number of incoming requests. The remaining fire off per exchange.
type MetricsEngine interface {
	RecordConnectionAccept(success bool)
	RecordConnectionClose(success bool)
	RecordRequest(labels Labels)
	// RecordRequestTime records the time spent answering a request. Only successful
	// requests are timed.
	RecordRequestTime(labels Labels, length time.Duration)
	RecordBids(exchange openrtb_ext.ExchangeName, seats int, bids int)
	// RecordCompatibility records the verdict of one campaign or creative compatibility check.
	RecordCompatibility(exchange openrtb_ext.ExchangeName, kind ConfigKind, compatible bool)
	// RecordWinNotice records a win notice. price is only meaningful when status is WinNoticeOK.
	RecordWinNotice(exchange openrtb_ext.ExchangeName, status WinNoticeStatus, price float64)
}
