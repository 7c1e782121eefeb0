package errors

// ErrorCode is a machine-readable error code.
type ErrorCode string

// Resource errors
const (
	ErrCodeNotFound      ErrorCode = "NOT_FOUND"
	ErrCodeAlreadyExists ErrorCode = "ALREADY_EXISTS"
)

// Validation errors
const (
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"
	ErrCodeMissingField ErrorCode = "MISSING_FIELD"
)

// Authentication/Authorization errors
const (
	// ErrCodeUnauthorized covers every credential failure. Expired,
	// tampered and malformed tokens are deliberately indistinguishable.
	ErrCodeUnauthorized ErrorCode = "UNAUTHORIZED"
	ErrCodeForbidden    ErrorCode = "FORBIDDEN"
	ErrCodeRateLimited  ErrorCode = "RATE_LIMITED"
)

// Internal errors
const (
	ErrCodeInternal           ErrorCode = "INTERNAL_ERROR"
	ErrCodeDatabaseError      ErrorCode = "DATABASE_ERROR"
	ErrCodeServiceUnavailable ErrorCode = "SERVICE_UNAVAILABLE"
)

var retryableCodes = map[ErrorCode]bool{
	ErrCodeServiceUnavailable: true,
	ErrCodeDatabaseError:      true,
	ErrCodeRateLimited:        true,
}

// IsRetryableCode returns true if the error code indicates a retryable error.
func IsRetryableCode(code ErrorCode) bool {
	return retryableCodes[code]
}
