package httpx

import (
	"log/slog"
	"net/http"
	"time"
)

// AccessLogTransport logs one line per outgoing request. Server errors and
// transport failures are logged at WARN, everything else at DEBUG.
func AccessLogTransport(logger *slog.Logger) func(http.RoundTripper) http.RoundTripper {
	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
			start := time.Now()
			resp, err := next.RoundTrip(r)
			duration := time.Since(start)

			attrs := []any{
				"method", r.Method,
				"path", r.URL.Path,
				"duration_ms", duration.Milliseconds(),
				"request_id", r.Header.Get(RequestIDHeader),
			}
			if err != nil {
				logger.Warn("access", append(attrs, "error", err)...)
				return nil, err
			}
			attrs = append(attrs, "status", resp.StatusCode)
			if resp.StatusCode >= http.StatusInternalServerError {
				logger.Warn("access", attrs...)
			} else {
				logger.Debug("access", attrs...)
			}
			return resp, nil
		})
	}
}
