package errors

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// Availability errors (retryable)
const (
	// ErrCodeServiceUnavailable indicates a backend is temporarily unavailable.
	ErrCodeServiceUnavailable ErrorCode = "SERVICE_UNAVAILABLE"
	// ErrCodeTimeout indicates the call ran past its deadline.
	ErrCodeTimeout ErrorCode = "TIMEOUT"
	// ErrCodeExternalService indicates the synthesis backend failed.
	ErrCodeExternalService ErrorCode = "EXTERNAL_SERVICE_ERROR"
)

// Input errors
const (
	// ErrCodeInvalidInput indicates a malformed request or payload.
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"
	// ErrCodeNotFound indicates a referenced resource (file, device) does not exist.
	ErrCodeNotFound ErrorCode = "NOT_FOUND"
)

// Fatal conversion errors
const (
	// ErrCodeConfiguration indicates an unusable configuration: an
	// out-of-range speaker id, a missing model config, bad slice settings.
	ErrCodeConfiguration ErrorCode = "CONFIGURATION_ERROR"
	// ErrCodeContractViolation indicates a broken length invariant between
	// the reconcilers and the backend.
	ErrCodeContractViolation ErrorCode = "CONTRACT_VIOLATION"
	// ErrCodeInternal indicates an unexpected failure.
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

var retryableCodes = map[ErrorCode]bool{
	ErrCodeServiceUnavailable: true,
	ErrCodeTimeout:            true,
}

// IsRetryableCode returns true if the error code indicates a retryable error.
// Backend failures are deliberately absent: a synthesis call is not
// idempotent, so callers decide whether to resubmit.
func IsRetryableCode(code ErrorCode) bool {
	return retryableCodes[code]
}
