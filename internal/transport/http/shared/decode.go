package shared

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"hrforms/internal/requestctx"
	"hrforms/internal/transport/http/api"
)

// DecodeJSON reads the body into dst and writes a 400 (or 413) when it is
// not valid JSON. It reports whether the caller should continue.
func DecodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			api.Fail(w, http.StatusRequestEntityTooLarge, "payload_too_large", "request body too large", requestIDFrom(r))
			return false
		}
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "could not read request body", requestIDFrom(r))
		return false
	}
	if err := json.Unmarshal(body, dst); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload: "+err.Error(), requestIDFrom(r))
		return false
	}
	return true
}

func requestIDFrom(r *http.Request) string {
	return requestctx.GetRequestID(r.Context())
}
