package gateway

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/florianilch/agentgate/internal/openaiadapter"
)

// writeJSON writes a JSON response with the given status code.
// Logs encoding failures internally using the provided context.
func writeJSON(ctx context.Context, w http.ResponseWriter, data any, status int) {
	w.Header().Set("Content-Type", "application/json")
	// Headers and status are written before encoding to avoid buffering.
	// If encoding fails, the client may receive a partial response.
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.ErrorContext(ctx, "failed to encode JSON response", "error", err)
	}
}

// writeJSONOpenAIError writes an OpenAI-compatible error response with the
// HTTP status code implied by the error type.
func writeJSONOpenAIError(ctx context.Context, w http.ResponseWriter, errResp *openaiadapter.ErrorResponse) {
	writeJSON(ctx, w, errResp, statusForErrorType(errResp.Err.Type))
}

// statusForErrorType maps OpenAI error types to HTTP status codes.
func statusForErrorType(errType string) int {
	switch errType {
	case openaiadapter.ErrorTypeInvalidRequest:
		return http.StatusBadRequest
	case openaiadapter.ErrorTypeAuthentication:
		return http.StatusUnauthorized
	case openaiadapter.ErrorTypeNotFound:
		return http.StatusNotFound
	case openaiadapter.ErrorTypeRateLimit:
		return http.StatusTooManyRequests
	case openaiadapter.ErrorTypeAPI:
		// Upstream transport failures are the gateway's fault domain, not the
		// client's; 502 distinguishes them from handler bugs.
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// invalidKeyError is the envelope returned for missing or wrong master keys.
func invalidKeyError() *openaiadapter.ErrorResponse {
	return openaiadapter.NewError(
		openaiadapter.ErrorTypeAuthentication,
		"Incorrect API key provided. Pass the gateway master key as a bearer token.",
	)
}
