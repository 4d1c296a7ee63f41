package errors

// Error codes for standardized error responses
const (
	// Validation errors
	ErrCodeInvalidRequest = "invalid_request"
	ErrCodeInvalidAmount  = "invalid_amount"
	ErrCodeInvalidLimit   = "invalid_limit"

	// Business logic errors
	ErrCodeSubmitFailed = "submit_failed"
	ErrCodeListFailed   = "list_failed"

	// Server errors
	ErrCodeInternalError = "internal_error"
	ErrCodeUpstreamError = "upstream_error"
	ErrCodeNotFound      = "not_found"
)
