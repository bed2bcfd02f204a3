package aspects

import (
	"net/http"
	"strconv"

	"github.com/bidconnect/exchange-connector/adapters"
	"github.com/bidconnect/exchange-connector/config"
	"github.com/bidconnect/exchange-connector/metrics"
	"github.com/julienschmidt/httprouter"
)

const queuedTooLongReason = "request waited too long in queue"

// QueuedRequestTimeout answers requests which waited in the fronting proxy's queue for
// longer than it allowed with the connector's dropped response.
func QueuedRequestTimeout(f httprouter.Handle, reqTimeoutHeaders config.RequestTimeoutHeaders, connector adapters.Connector, me metrics.MetricsEngine) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, params httprouter.Params) {
		reqTimeInQueue := r.Header.Get(reqTimeoutHeaders.RequestTimeInQueue)
		reqTimeout := r.Header.Get(reqTimeoutHeaders.RequestTimeoutInQueue)

		// requests which did not go through the queue are served as usual
		if reqTimeInQueue == "" || reqTimeout == "" {
			f(w, r, params)
			return
		}

		reqTimeFloat, reqTimeFloatErr := strconv.ParseFloat(reqTimeInQueue, 64)
		reqTimeoutFloat, reqTimeoutFloatErr := strconv.ParseFloat(reqTimeout, 64)

				if reqTimeFloatErr != nil || reqTimeoutFloatErr != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		if reqTimeFloat >= reqTimeoutFloat {
			me.RecordRequest(metrics.Labels{
				Exchange:      connector.ExchangeName(),
				RequestStatus: metrics.RequestStatusDropped,
			})
			resp := connector.DroppedAuctionResponse(queuedTooLongReason)
			if resp.ContentType != "" {
				w.Header().Set("Content-Type", resp.ContentType)
			}
			w.WriteHeader(resp.StatusCode)
			if resp.StatusCode != http.StatusNoContent {
				w.Write(resp.Body)
			}
			return
		}

		f(w, r, params)
	}
}
