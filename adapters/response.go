package adapters

import (
	"net/http"

	"github.com/bidconnect/exchange-connector/util/httputil"
	"github.com/bidconnect/exchange-connector/util/jsonutil"
)

// HTTPResponse is what a Connector wants written back to the exchange.
//
// A 204 response is written without a body even when Body is set.
type HTTPResponse struct {
	StatusCode  int
	ContentType string
	Body        []byte
}

type errorBody struct {
	Error string `json:"error"`
}

// ErrorResponse returns the 400 response with the JSON body {"error": message}.
func ErrorResponse(message string) HTTPResponse {
	body, err := jsonutil.Marshal(errorBody{Error: message})
	if err != nil {
		body = []byte(`{"error":""}`)
	}
	return HTTPResponse{
		StatusCode:  http.StatusBadRequest,
		ContentType: httputil.ContentTypeJSON,
		Body:        body,
	}
}

// DroppedAuctionResponse returns the 204 response of a shed request.
func DroppedAuctionResponse() HTTPResponse {
	return HTTPResponse{
		StatusCode:  http.StatusNoContent,
		ContentType: httputil.ContentTypeJSON,
		Body:        []byte("{}"),
	}
}

// NoContentResponse returns the 204 response of an auction nobody bid on.
func NoContentResponse() HTTPResponse {
	return HTTPResponse{
		StatusCode: http.StatusNoContent,
	}
}

// OKResponse returns a 200 JSON response.
func OKResponse(body []byte) HTTPResponse {
	return HTTPResponse{
		StatusCode:  http.StatusOK,
		ContentType: httputil.ContentTypeJSON,
		Body:        body,
	}
}
