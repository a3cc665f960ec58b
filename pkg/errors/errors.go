package errors

import "fmt"

// ErrorType represents different types of errors that can occur
type ErrorType string

const (
	ErrorTypeNetwork               ErrorType = "network"
	ErrorTypeRateLimit             ErrorType = "rate_limit"
	ErrorTypeAuth                  ErrorType = "auth"
	ErrorTypeParsing               ErrorType = "parsing"
	ErrorTypeNotFound              ErrorType = "not_found"
	ErrorTypeTimeout               ErrorType = "timeout"
	ErrorTypeCapabilityUnavailable ErrorType = "capability_unavailable"
	ErrorTypeStoreUnavailable      ErrorType = "store_unavailable"
	ErrorTypeServerError           ErrorType = "server_error"
	ErrorTypeUnknown               ErrorType = "unknown"
)

// Error represents a service error with type information
type Error struct {
	Type    ErrorType
	Message string
	Code    int
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s error (code %d): %s", e.Type, e.Code, e.Message)
}

// New creates a typed error with no associated status code
func New(errorType ErrorType, message string) *Error {
	return &Error{Type: errorType, Message: message}
}

// Newf creates a typed error with a formatted message
func Newf(errorType ErrorType, format string, args ...interface{}) *Error {
	return &Error{Type: errorType, Message: fmt.Sprintf(format, args...)}
}

// IsRetryable checks if an error type should be retried
func IsRetryable(errorType ErrorType) bool {
	switch errorType {
	case ErrorTypeNetwork, ErrorTypeRateLimit, ErrorTypeTimeout, ErrorTypeServerError:
		return true
	case ErrorTypeAuth, ErrorTypeNotFound, ErrorTypeParsing,
		ErrorTypeCapabilityUnavailable, ErrorTypeStoreUnavailable:
		return false
	default:
		return false
	}
}

// IsRetryableStatusCode checks if an HTTP status code indicates a retryable error
func IsRetryableStatusCode(statusCode int) bool {
	switch statusCode {
	case 0: // Network error
		return true
	case 429: // Too Many Requests
		return true
	case 500, 502, 503, 504: // Server errors
		return true
	case 401, 403, 404: // Client errors that won't change
		return false
	default:
		return statusCode >= 500 // Retry all 5xx errors
	}
}
