package httputil

import (
	"mime"
	"net/http"
)

const (
	// ContentTypeJSON is the only media type exchanges may post bid requests with.
	ContentTypeJSON = "application/json"
)

// IsJSONContentType reports whether the request declares an application/json body.
// Media type parameters such as charset are accepted.
func IsJSONContentType(header http.Header) bool {
	contentType := header.Get("Content-Type")
	if contentType == "" {
		return false
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return mediaType == ContentTypeJSON
}
