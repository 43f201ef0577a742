package authharness

import (
	"errors"
	"fmt"
)

// Standard auth-harness error definitions

var (
	// ErrUnsupportedEncoding indicates an encoding name outside the recognized set.
	ErrUnsupportedEncoding = errors.New("authharness: unsupported encoding")

	// ErrMalformedPayload indicates text that could not be decoded under its encoding.
	ErrMalformedPayload = errors.New("authharness: malformed payload")

	// ErrInvalidAddress indicates an address or fingerprint that cannot identify an account.
	ErrInvalidAddress = errors.New("authharness: invalid address")

	// ErrMissingArgument indicates a required input was not supplied.
	ErrMissingArgument = errors.New("authharness: missing argument")

	// ErrInvalidKey indicates a signing key that could not be loaded.
	ErrInvalidKey = errors.New("authharness: invalid signing key")

	// ErrEngineRejected indicates the verification engine rejected the unit.
	ErrEngineRejected = errors.New("authharness: engine rejected verification")

	// ErrBudgetExceeded indicates the engine ran out of cycles.
	ErrBudgetExceeded = errors.New("authharness: cycle budget exceeded")

	// ErrEngineUnavailable indicates a remote engine could not be reached.
	ErrEngineUnavailable = errors.New("authharness: engine unavailable")

	// ErrInvalidConfig indicates a configuration value no component can run with.
	ErrInvalidConfig = errors.New("authharness: invalid configuration")

	// ErrUnknownVariant indicates a blockchain variant name that is not registered.
	ErrUnknownVariant = errors.New("authharness: unknown blockchain variant")

	// ErrInvariant indicates an internal invariant was violated.
	ErrInvariant = errors.New("authharness: internal invariant violated")
)

// ErrorCode classifies an Error.
type ErrorCode string

const (
	ErrCodeUnsupportedEncoding ErrorCode = "UNSUPPORTED_ENCODING"
	ErrCodeMalformedPayload    ErrorCode = "MALFORMED_PAYLOAD"
	ErrCodeInvalidAddress      ErrorCode = "INVALID_ADDRESS"
	ErrCodeEngine              ErrorCode = "ENGINE_ERROR"
	ErrCodeMissingArgument     ErrorCode = "MISSING_ARGUMENT"
	ErrCodeInvalidKey          ErrorCode = "INVALID_KEY"
	ErrCodeUnknownVariant      ErrorCode = "UNKNOWN_VARIANT"
	ErrCodeInvalidConfig       ErrorCode = "INVALID_CONFIG"
	ErrCodeInternal            ErrorCode = "INTERNAL"
)

// Error is the typed error returned by every harness component.
type Error struct {
	Code    ErrorCode
	Message string
	Err     error
	Details map[string]interface{}
}

// NewError creates an Error with an initialized Details map.
func NewError(code ErrorCode, message string, err error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Err:     err,
		Details: make(map[string]interface{}),
	}
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// WithDetails attaches a key/value detail and returns the error for chaining.
func (e *Error) WithDetails(key string, value interface{}) *Error {
	e.Details[key] = value
	return e
}

// CodeOf returns the code of the first Error in err's chain, or "" if there is none.
func CodeOf(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// IsEngineError reports whether err is a verification failure reported by the engine,
// as opposed to an input or configuration problem.
func IsEngineError(err error) bool {
	return CodeOf(err) == ErrCodeEngine
}

// UnsupportedEncoding reports an unrecognized encoding name.
func UnsupportedEncoding(name string) *Error {
	return NewError(ErrCodeUnsupportedEncoding, fmt.Sprintf("unsupported encoding %q", name), ErrUnsupportedEncoding).
		WithDetails("encoding", name)
}

// MalformedPayload reports text that failed to decode under encoding.
func MalformedPayload(encoding string, cause error) *Error {
	return NewError(ErrCodeMalformedPayload, fmt.Sprintf("malformed %s payload", encoding),
		fmt.Errorf("%w: %v", ErrMalformedPayload, cause)).
		WithDetails("encoding", encoding)
}

// InvalidAddress reports an address that could not be turned into a fingerprint.
func InvalidAddress(address string, cause error) *Error {
	return NewError(ErrCodeInvalidAddress, fmt.Sprintf("invalid address %q", address),
		fmt.Errorf("%w: %v", ErrInvalidAddress, cause)).
		WithDetails("address", address)
}

// MissingArgument reports a required input that was not supplied.
func MissingArgument(name string) *Error {
	return NewError(ErrCodeMissingArgument, fmt.Sprintf("missing required argument %q", name), ErrMissingArgument).
		WithDetails("argument", name)
}

// InvalidKey reports a signing key that could not be loaded from source.
func InvalidKey(source string, cause error) *Error {
	return NewError(ErrCodeInvalidKey, fmt.Sprintf("cannot load key from %s", source),
		fmt.Errorf("%w: %v", ErrInvalidKey, cause)).
		WithDetails("source", source)
}

// InvalidConfig reports a bad value for the configuration key.
func InvalidConfig(key, message string) *Error {
	return NewError(ErrCodeInvalidConfig, message, ErrInvalidConfig).
		WithDetails("key", key)
}

// EngineFailure wraps an engine-side failure. cause should wrap ErrEngineRejected,
// ErrBudgetExceeded or ErrEngineUnavailable.
func EngineFailure(detail string, cause error) *Error {
	return NewError(ErrCodeEngine, detail, cause)
}
