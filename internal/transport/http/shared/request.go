package shared

import (
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"strings"

	"shiftdesk/internal/domain/auth"
	"shiftdesk/internal/transport/http/api"
	"shiftdesk/internal/transport/http/middleware"
)

func ClientIP(r *http.Request) string {
	if fwd := strings.TrimSpace(r.Header.Get("X-Forwarded-For")); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		if first = strings.TrimSpace(first); first != "" {
			return first
		}
	}
	host, _, err := net.SplitHostPort(strings.TrimSpace(r.RemoteAddr))
	if err == nil && host != "" {
		return host
	}
	return strings.TrimSpace(r.RemoteAddr)
}

// Actor returns the authenticated actor or writes a 401 and reports false.
func Actor(w http.ResponseWriter, r *http.Request) (auth.Actor, bool) {
	actor, ok := middleware.GetActor(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return auth.Actor{}, false
	}
	return actor, true
}

// DecodeJSON reads a single JSON object into dst. Unknown fields are
// rejected. It writes the error response itself and reports false on failure.
func DecodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	err := decoder.Decode(dst)
	if err == nil {
		if decoder.More() {
			err = errors.New("trailing data")
		} else {
			return true
		}
	}

	var tooLarge *http.MaxBytesError
	requestID := middleware.GetRequestID(r.Context())
	switch {
	case errors.As(err, &tooLarge):
		api.Fail(w, http.StatusRequestEntityTooLarge, "payload_too_large", "request body too large", requestID)
	case errors.Is(err, io.EOF):
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "request body is required", requestID)
	default:
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
	}
	return false
}
