package core

import (
	"errors"
	"fmt"
)

// FailureClass categorizes an external invocation failure. The retry policy
// consults the class to decide whether another attempt is allowed.
type FailureClass int8

const (
	// FailureOther marks failures outside the transient taxonomy; they are
	// never retried.
	FailureOther FailureClass = iota
	// FailureRateLimited maps provider throttling (HTTP 429).
	FailureRateLimited
	// FailureServerError maps internal provider errors (HTTP 500).
	FailureServerError
	// FailureServiceUnavailable maps provider overload (HTTP 503).
	FailureServiceUnavailable
	// FailureGatewayTimeout maps upstream timeouts (HTTP 504).
	FailureGatewayTimeout
)

// String returns the classification tag of the failure class.
func (c FailureClass) String() string {
	switch c {
	case FailureRateLimited:
		return "rate-limited"
	case FailureServerError:
		return "server-error"
	case FailureServiceUnavailable:
		return "service-unavailable"
	case FailureGatewayTimeout:
		return "gateway-timeout"
	default:
		return "other"
	}
}

// ClassifyStatus maps an HTTP status code to a failure class. Codes outside
// the transient set, 502 included, map to FailureOther.
func ClassifyStatus(code int) FailureClass {
	switch code {
	case 429:
		return FailureRateLimited
	case 500:
		return FailureServerError
	case 503:
		return FailureServiceUnavailable
	case 504:
		return FailureGatewayTimeout
	default:
		return FailureOther
	}
}

// TransientError is a classified failure from an external call (model or
// tool). Model adapters translate their SDK errors into this type so the
// retry policy can act on the classification alone.
type TransientError struct {
	Class      FailureClass
	StatusCode int    // zero when the failure carried no HTTP status
	Message    string // human readable summary
	Err        error  // underlying cause, may be nil
}

// Error implements the error interface.
func (e *TransientError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s (status %d): %s", e.Class, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Class, e.Message)
}

// Unwrap returns the underlying cause.
func (e *TransientError) Unwrap() error { return e.Err }

// NewTransientError creates a classified failure without an HTTP status.
func NewTransientError(class FailureClass, msg string) *TransientError {
	return &TransientError{Class: class, Message: msg}
}

// NewStatusError creates a failure classified from an HTTP status code.
func NewStatusError(code int, msg string) *TransientError {
	return &TransientError{Class: ClassifyStatus(code), StatusCode: code, Message: msg}
}

// FailureClassOf extracts the failure class from an error chain. The second
// return is false when the chain contains no classified failure.
func FailureClassOf(err error) (FailureClass, bool) {
	var te *TransientError
	if errors.As(err, &te) {
		return te.Class, true
	}
	return FailureOther, false
}

// ConfigError reports an invalid workflow configuration: duplicate component
// names, cyclic agent-as-tool references or malformed declarative config.
// It is detected eagerly, before any execution, and never retried.
type ConfigError struct {
	Component string // offending component name, empty when global
	Message   string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	if e.Component != "" {
		return fmt.Sprintf("configuration error in %q: %s", e.Component, e.Message)
	}
	return "configuration error: " + e.Message
}

// NewConfigError builds a ConfigError with a formatted message.
func NewConfigError(component, format string, args ...any) *ConfigError {
	return &ConfigError{Component: component, Message: fmt.Sprintf(format, args...)}
}
