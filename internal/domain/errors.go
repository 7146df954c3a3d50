package domain

// Stable error codes returned in the error envelope. Clients branch on
// these, never on the message text.
const (
	ErrCodeMethodNotAllowed  = "method_not_allowed"
	ErrCodeNotFound          = "not_found"
	ErrCodeUnauthenticated   = "unauthenticated"
	ErrCodeInvalidCredential = "invalid_credential"
	ErrCodeRateLimited       = "rate_limited"
	ErrCodeValidation        = "validation_error"
	ErrCodeConflict          = "conflict"
	ErrCodeInternal          = "internal_error"
)

// ErrorResponse is the error envelope returned by every endpoint.
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// ErrorBody carries the stable code and a safe, human-readable message.
// Detail is only populated in debug mode.
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
}

// NewErrorResponse builds the envelope for a code and message.
func NewErrorResponse(code, message string) ErrorResponse {
	return ErrorResponse{Error: ErrorBody{Code: code, Message: message}}
}

// WithDetail returns a copy of the envelope carrying diagnostic detail.
func (e ErrorResponse) WithDetail(detail string) ErrorResponse {
	e.Error.Detail = detail
	return e
}
