package apperrors

// ErrorCode identifies the failure category in JSON error responses sent by the dashboard server.
type ErrorCode string

const (
	ErrCodeInternalError       ErrorCode = "internal_error"
	ErrCodeRateLimitExceeded   ErrorCode = "rate_limit_exceeded"
	ErrCodeRequestTooLarge     ErrorCode = "request_too_large"
	ErrCodeSessionInvalid      ErrorCode = "session_invalid"
	ErrCodeUpstreamUnavailable ErrorCode = "upstream_unavailable"
	ErrCodeUpstreamError       ErrorCode = "upstream_error"
)
