package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"socialnet/internal/httputil"
)

// maxBodyBytes caps every request body the API reads. Oversized bodies
// are rejected before any side effect.
const maxBodyBytes = 262144

// decodeBody decodes the request body into dst under the body cap. It
// reports whether decoding succeeded; on failure the error response has
// already been written.
func decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			httputil.WritePayloadTooLarge(w)
			return false
		}
		httputil.WriteBadRequest(w, "Invalid request body")
		return false
	}
	return true
}
