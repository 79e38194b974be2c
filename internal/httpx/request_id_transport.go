package httpx

import (
	"net/http"

	"github.com/google/uuid"
)

const RequestIDHeader = "X-Request-Id"

// RequestIDTransport stamps every outgoing request with an X-Request-Id header.
func RequestIDTransport(next http.RoundTripper) http.RoundTripper {
	return RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
		if r.Header.Get(RequestIDHeader) != "" {
			return next.RoundTrip(r)
		}
		requestID := RequestIDFromContext(r.Context())
		if requestID == "" {
			requestID = uuid.New().String()
		}
		r = r.Clone(ContextWithRequestID(r.Context(), requestID))
		r.Header.Set(RequestIDHeader, requestID)
		return next.RoundTrip(r)
	})
}
