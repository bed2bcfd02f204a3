package endpoints

import (
	"fmt"
	"net/http"

	"github.com/bidconnect/exchange-connector/adapters"
	"github.com/bidconnect/exchange-connector/config"
	"github.com/bidconnect/exchange-connector/errortypes"
	"github.com/bidconnect/exchange-connector/metrics"
	"github.com/bidconnect/exchange-connector/openrtb_ext"
	"github.com/bidconnect/exchange-connector/util/jsonutil"
	"github.com/coocood/freecache"
	"github.com/julienschmidt/httprouter"
)

var seenMarker = []byte{1}

type winNotice struct {
	Auction string  `json:"auction"`
	Imp     string  `json:"imp"`
	Price   float64 `json:"price"`
}

type winNoticeEndpoint struct {
	decoders map[openrtb_ext.ExchangeName]adapters.WinPriceDecoder
	metrics  metrics.MetricsEngine
	// seen is nil when deduplication is disabled.
	seen       *freecache.Cache
	ttlSeconds int
}

// NewWinNoticeEndpoint serves GET /win/:exchange?price=<hex>&auction=<id>&imp=<id>, the nurl
// an exchange calls when one of our bids wins. The price is the exchange's encrypted
// clearing price macro.
//
// Exchanges may retry win notices. A repeated (exchange, auction, imp) seen within the
// dedupe TTL gets the same answer but is not counted again.
func NewWinNoticeEndpoint(decoders map[openrtb_ext.ExchangeName]adapters.WinPriceDecoder, cfg config.WinNotice, me metrics.MetricsEngine) httprouter.Handle {
	endpoint := &winNoticeEndpoint{
		decoders:   decoders,
		metrics:    me,
		ttlSeconds: cfg.DedupeTTLSeconds,
	}
	if cfg.DedupeCacheBytes > 0 {
		endpoint.seen = freecache.NewCache(cfg.DedupeCacheBytes)
	}
	return endpoint.Handle
}

func (e *winNoticeEndpoint) Handle(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	name, ok := openrtb_ext.GetExchangeName(ps.ByName("exchange"))
	decoder, found := e.decoders[name]
	if !ok || !found {
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprintf(w, "Unknown exchange: %s", ps.ByName("exchange"))
		return
	}

	query := r.URL.Query()
	winPrice := query.Get("price")
	if winPrice == "" {
		e.metrics.RecordWinNotice(name, metrics.WinNoticeMalformed, 0)
		writeResponse(w, adapters.ErrorResponse("missing price"))
		return
	}

	price, err := decoder.DecodeWinPrice(winPrice)
	if err != nil {
		status := metrics.WinNoticeDecodeError
		if errortypes.ReadCode(err) == errortypes.MalformedInputErrorCode {
			status = metrics.WinNoticeMalformed
		}
		e.metrics.RecordWinNotice(name, status, 0)
		writeResponse(w, adapters.ErrorResponse(err.Error()))
		return
	}
	notice := winNotice{
		Auction: query.Get("auction"),
		Imp:     query.Get("imp"),
		Price:   price,
	}
	if !e.duplicate(name, notice) {
		e.metrics.RecordWinNotice(name, metrics.WinNoticeOK, price)
	}

	body, err := jsonutil.Marshal(notice)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		fmt.Fprintf(w, "Failed to marshal win notice: %v", err)
		return
	}
	writeResponse(w, adapters.OKResponse(body))
}

// duplicate marks the notice as seen and reports whether it already was. Notices without
// an auction and imp id are never duplicates.
func (e *winNoticeEndpoint) duplicate(name openrtb_ext.ExchangeName, notice winNotice) bool {
	if e.seen == nil || notice.Auction == "" || notice.Imp == "" {
		return false
	}
	key := []byte(string(name) + "\x00" + notice.Auction + "\x00" + notice.Imp)
	previous, err := e.seen.GetOrSet(key, seenMarker, e.ttlSeconds)
	return err == nil && previous != nil
}
