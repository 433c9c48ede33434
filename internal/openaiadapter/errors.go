package openaiadapter

// Error types used in OpenAI-compatible error envelopes. They drive HTTP
// status mapping in the gateway layer.
const (
	ErrorTypeInvalidRequest = "invalid_request_error"
	ErrorTypeAuthentication = "authentication_error"
	ErrorTypeNotFound       = "not_found_error"
	ErrorTypeRateLimit      = "rate_limit_error"
	ErrorTypeServer         = "server_error"
	ErrorTypeAPI            = "api_error"
)

// Error is the error detail of an OpenAI-compatible error envelope.
type Error struct {
	Message string `json:"message"`
	Type    string `json:"type"`
	Code    string `json:"code,omitempty"`
	Param   string `json:"param,omitempty"`
}

// Error implements the error interface, returning the error message.
func (e *Error) Error() string {
	return e.Message
}

// ErrorResponse wraps Error in the envelope OpenAI clients expect:
// {"error": {...}}. It is used both for JSON error bodies and for SSE error
// events on streaming responses.
type ErrorResponse struct {
	// Err is the underlying error detail. JSON tag ensures it serializes as "error".
	Err Error `json:"error"`
}

// Error implements the error interface, returning the underlying error message.
// This allows ErrorResponse to be used directly in error returns while keeping
// the full envelope available for marshaling.
func (e *ErrorResponse) Error() string {
	return e.Err.Message
}

// NewError builds an ErrorResponse with the given type and message.
func NewError(errType, message string) *ErrorResponse {
	return &ErrorResponse{Err: Error{Message: message, Type: errType}}
}

// NewModelNotFoundError builds the 404-equivalent envelope for unknown model
// aliases, using OpenAI's error code for the condition.
func NewModelNotFoundError(model string) *ErrorResponse {
	return &ErrorResponse{Err: Error{
		Message: "The model '" + model + "' does not exist or you do not have access to it.",
		Type:    ErrorTypeNotFound,
		Code:    "model_not_found",
		Param:   "model",
	}}
}
