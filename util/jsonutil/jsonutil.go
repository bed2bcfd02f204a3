package jsonutil

import (
	"encoding/json"
	"strings"

	"github.com/bidconnect/exchange-connector/errortypes"
)

// Unmarshal decodes data into v. Decoding failures are returned as
// *errortypes.FailedToUnmarshal with the "json: " prefix of the standard decoder removed.
func Unmarshal(data []byte, v interface{}) error {
	if err := json.Unmarshal(data, v); err != nil {
		return &errortypes.FailedToUnmarshal{
			Message: tidyErrorMessage(err),
		}
	}
	return nil
}

// Marshal encodes v. Encoding failures are returned as *errortypes.FailedToMarshal.
func Marshal(v interface{}) ([]byte, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, &errortypes.FailedToMarshal{
			Message: tidyErrorMessage(err),
		}
	}
	return b, nil
}

func tidyErrorMessage(err error) string {
	return strings.TrimPrefix(err.Error(), "json: ")
}
