// Package protocol defines the payloads exchanged during an SRP-6a handshake
// and the error codes reported to the initiator.
package protocol

import "fmt"

// ErrorCode represents a standardized error code for a handshake failure.
type ErrorCode string

// Handshake error codes.
const (
	// ErrCodeAuthenticationFailed indicates the handshake did not authenticate.
	// It deliberately covers unknown users, degenerate keys and proof
	// mismatches alike.
	ErrCodeAuthenticationFailed ErrorCode = "AUTHENTICATION_FAILED"
	// ErrCodeSessionInvalid indicates the session ID is unknown or expired.
	ErrCodeSessionInvalid ErrorCode = "SESSION_INVALID"

	// ErrCodeInvalidRequest indicates the request payload is invalid.
	ErrCodeInvalidRequest ErrorCode = "INVALID_REQUEST"

	// ErrCodeSystemError indicates a system-level error occurred.
	ErrCodeSystemError ErrorCode = "SYSTEM_ERROR"
	// ErrCodeFileSystemError indicates the verifier store could not be read
	// or written.
	ErrCodeFileSystemError ErrorCode = "FILESYSTEM_ERROR"

	// ErrCodeVerifierNotFound indicates the SRP verifier file was not found.
	ErrCodeVerifierNotFound ErrorCode = "VERIFIER_NOT_FOUND"
	// ErrCodeInvalidConfiguration indicates invalid configuration.
	ErrCodeInvalidConfiguration ErrorCode = "INVALID_CONFIGURATION"
)

// ErrorResponse represents a standardized error response.
type ErrorResponse struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Details string    `json:"details,omitempty"`
}

// Error implements the error interface.
func (e *ErrorResponse) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewError creates a new ErrorResponse.
func NewError(code ErrorCode, message string) *ErrorResponse {
	return &ErrorResponse{
		Code:    code,
		Message: message,
	}
}

// NewErrorWithDetails creates a new ErrorResponse with details.
func NewErrorWithDetails(code ErrorCode, message, details string) *ErrorResponse {
	return &ErrorResponse{
		Code:    code,
		Message: message,
		Details: details,
	}
}

// Common error constructors for convenience

// NewAuthenticationFailedError creates an authentication failed error.
func NewAuthenticationFailedError() *ErrorResponse {
	return NewError(ErrCodeAuthenticationFailed, "Authentication failed")
}

// NewSessionInvalidError creates a session invalid error.
func NewSessionInvalidError() *ErrorResponse {
	return NewError(ErrCodeSessionInvalid, "Handshake session is invalid or expired")
}

// NewInvalidRequestError creates an invalid request error.
func NewInvalidRequestError(details string) *ErrorResponse {
	return NewErrorWithDetails(ErrCodeInvalidRequest, "Invalid request", details)
}

// NewSystemError creates a system error.
func NewSystemError(details string) *ErrorResponse {
	return NewErrorWithDetails(ErrCodeSystemError, "System error", details)
}

// NewFileSystemError creates a filesystem error.
func NewFileSystemError(details string) *ErrorResponse {
	return NewErrorWithDetails(ErrCodeFileSystemError, "Filesystem error", details)
}

// NewVerifierNotFoundError creates a verifier not found error.
func NewVerifierNotFoundError(path string) *ErrorResponse {
	return NewErrorWithDetails(ErrCodeVerifierNotFound, "SRP verifier file not found", path)
}

// NewInvalidConfigurationError creates an invalid configuration error.
func NewInvalidConfigurationError(details string) *ErrorResponse {
	return NewErrorWithDetails(ErrCodeInvalidConfiguration, "Invalid configuration", details)
}
