package httpx

import (
	"encoding/json"
	"strings"
)

// ErrorResponse covers the error bodies JSON APIs answer with: an envelope
// {"error":{"code":...,"message":...}}, {"error":"..."} or a bare
// {"message":"..."}.
type ErrorResponse struct {
	Error   json.RawMessage `json:"error"`
	Message string          `json:"message"`
}

type ErrorResponseBody struct {
	Code    json.RawMessage `json:"code"`
	Message string          `json:"message"`
	Details []ErrorDetail   `json:"details,omitempty"`
}

type ErrorDetail struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ErrorMessage returns the message carried by an error body, or "" when the
// body is not a recognised JSON error.
func ErrorMessage(body []byte) string {
	var res ErrorResponse
	if err := json.Unmarshal(body, &res); err != nil {
		return ""
	}
	if len(res.Error) > 0 {
		var s string
		if err := json.Unmarshal(res.Error, &s); err == nil && s != "" {
			return strings.TrimSpace(s)
		}
		var b ErrorResponseBody
		if err := json.Unmarshal(res.Error, &b); err == nil && b.Message != "" {
			return strings.TrimSpace(b.Message)
		}
	}
	return strings.TrimSpace(res.Message)
}
