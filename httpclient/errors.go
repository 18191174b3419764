package httpclient

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/kbukum/voiceshift/errors"
	"github.com/kbukum/voiceshift/resilience"
)

// ErrorCode classifies transport failures.
type ErrorCode int

const (
	// ErrCodeTimeout indicates a request deadline or cancellation.
	ErrCodeTimeout ErrorCode = iota
	// ErrCodeConnection indicates the server could not be reached.
	ErrCodeConnection
	// ErrCodeNotFound indicates a 404.
	ErrCodeNotFound
	// ErrCodeValidation indicates any other 4xx or a request that could not be built.
	ErrCodeValidation
	// ErrCodeServer indicates a 5xx.
	ErrCodeServer
)

func (c ErrorCode) String() string {
	switch c {
	case ErrCodeTimeout:
		return "timeout"
	case ErrCodeConnection:
		return "connection"
	case ErrCodeNotFound:
		return "not_found"
	case ErrCodeValidation:
		return "validation"
	case ErrCodeServer:
		return "server"
	default:
		return "unknown"
	}
}

// maxBodyInMessage bounds how much of a response body is quoted in Error().
const maxBodyInMessage = 256

// Error is a classified transport error.
type Error struct {
	// StatusCode is 0 for connection-level errors.
	StatusCode int
	Code       ErrorCode
	Message    string
	Body       []byte
	Err        error
}

func (e *Error) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("httpclient: %s (HTTP %d): %s", e.Code, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("httpclient: %s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// NewTimeoutError creates a timeout error.
func NewTimeoutError(err error) *Error {
	return &Error{Code: ErrCodeTimeout, Message: err.Error(), Err: err}
}

// NewConnectionError creates a connection error.
func NewConnectionError(err error) *Error {
	return &Error{Code: ErrCodeConnection, Message: err.Error(), Err: err}
}

// NewValidationError creates an error for a request that could not be built.
func NewValidationError(msg string) *Error {
	return &Error{Code: ErrCodeValidation, Message: msg}
}

// ClassifyStatusCode returns nil for 2xx and a typed error otherwise. The
// message carries the start of the body, which is where synthesis servers
// put their failure reason.
func ClassifyStatusCode(statusCode int, body []byte) *Error {
	if statusCode >= 200 && statusCode < 300 {
		return nil
	}
	e := &Error{StatusCode: statusCode, Body: body, Message: statusMessage(statusCode, body)}
	switch {
	case statusCode == http.StatusNotFound:
		e.Code = ErrCodeNotFound
	case statusCode >= 400 && statusCode < 500:
		e.Code = ErrCodeValidation
	default:
		e.Code = ErrCodeServer
	}
	return e
}

func statusMessage(statusCode int, body []byte) string {
	text := strings.TrimSpace(string(body))
	if text == "" {
		return http.StatusText(statusCode)
	}
	if len(text) > maxBodyInMessage {
		text = text[:maxBodyInMessage] + "..."
	}
	return text
}

// IsTimeout checks if err is a timeout error.
func IsTimeout(err error) bool { return hasCode(err, ErrCodeTimeout) }

// IsConnection checks if err is a connection error.
func IsConnection(err error) bool { return hasCode(err, ErrCodeConnection) }

// IsNotFound checks if err is a 404.
func IsNotFound(err error) bool { return hasCode(err, ErrCodeNotFound) }

// IsServerError checks if err is a 5xx.
func IsServerError(err error) bool { return hasCode(err, ErrCodeServer) }

func hasCode(err error, code ErrorCode) bool {
	var e *Error
	return stderrors.As(err, &e) && e.Code == code
}

// ToAppError maps a transport failure onto the application error model:
// timeouts become TIMEOUT, an open circuit or unreachable server becomes
// SERVICE_UNAVAILABLE, and everything else is an EXTERNAL_SERVICE_ERROR.
func ToAppError(service string, err error) *errors.AppError {
	if err == nil {
		return nil
	}
	if appErr, ok := errors.AsAppError(err); ok {
		return appErr
	}
	switch {
	case IsTimeout(err):
		return errors.Timeout(service).WithCause(err)
	case IsConnection(err):
		return errors.ServiceUnavailable(service).WithCause(err)
	case stderrors.Is(err, resilience.ErrCircuitOpen):
		return errors.ServiceUnavailable(service).WithCause(err).WithDetail("reason", "circuit_open")
	default:
		return errors.ExternalServiceError(service, err)
	}
}
