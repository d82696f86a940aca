package errors

import (
	"fmt"
	"time"
)

// ErrorType represents the category of error
type ErrorType string

const (
	// ErrorTypeGraph represents graph database errors
	ErrorTypeGraph ErrorType = "graph"
	// ErrorTypeProfile represents profile store errors
	ErrorTypeProfile ErrorType = "profile"
	// ErrorTypeAuth represents authentication/token errors
	ErrorTypeAuth ErrorType = "auth"
	// ErrorTypeConfig represents configuration errors
	ErrorTypeConfig ErrorType = "config"
	// ErrorTypeContext represents context cancellation/timeout errors
	ErrorTypeContext ErrorType = "context"
)

// BaseError is the base error type with common fields
type BaseError struct {
	Type      ErrorType
	Message   string
	Timestamp time.Time
	Err       error // Wrapped error
}

// Error implements the error interface
func (e *BaseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// Unwrap returns the wrapped error for error unwrapping
func (e *BaseError) Unwrap() error {
	return e.Err
}

// ErrType returns the error category. Promoted through embedding so
// every typed error in this package answers it.
func (e *BaseError) ErrType() ErrorType {
	return e.Type
}

// NewBaseError creates a new base error
func NewBaseError(errType ErrorType, message string, err error) *BaseError {
	return &BaseError{
		Type:      errType,
		Message:   message,
		Timestamp: time.Now(),
		Err:       err,
	}
}

// Graph Errors

// ErrGraphUnavailable is returned when the graph store cannot be reached.
// It is fatal to the request it occurs in.
type ErrGraphUnavailable struct {
	*BaseError
	Operation string
}

func NewGraphUnavailable(operation string, err error) *ErrGraphUnavailable {
	return &ErrGraphUnavailable{
		BaseError: NewBaseError(ErrorTypeGraph, fmt.Sprintf("graph store unavailable during %s", operation), err),
		Operation: operation,
	}
}

// ErrGraphQueryFailed is returned when a graph query fails
type ErrGraphQueryFailed struct {
	*BaseError
	Operation string
}

func NewGraphQueryFailed(operation string, err error) *ErrGraphQueryFailed {
	return &ErrGraphQueryFailed{
		BaseError: NewBaseError(ErrorTypeGraph, fmt.Sprintf("query failed: %s", operation), err),
		Operation: operation,
	}
}

// ErrGraphConnectionFailed is returned when the Neo4j connection fails
type ErrGraphConnectionFailed struct {
	*BaseError
	URI string
}

func NewGraphConnectionFailed(uri string, err error) *ErrGraphConnectionFailed {
	return &ErrGraphConnectionFailed{
		BaseError: NewBaseError(ErrorTypeGraph, fmt.Sprintf("failed to connect to Neo4j: %s", uri), err),
		URI:       uri,
	}
}

// ErrGraphUserNotFound is returned when a user vertex is missing from the graph
type ErrGraphUserNotFound struct {
	*BaseError
	UserID string
}

func NewGraphUserNotFound(userID string) *ErrGraphUserNotFound {
	return &ErrGraphUserNotFound{
		BaseError: NewBaseError(ErrorTypeGraph, fmt.Sprintf("user vertex not found: %s", userID), nil),
		UserID:    userID,
	}
}

// Profile Store Errors

// ErrProfileNotFound is returned when no profile record exists for a user
type ErrProfileNotFound struct {
	*BaseError
	UserID string
}

func NewProfileNotFound(userID string) *ErrProfileNotFound {
	return &ErrProfileNotFound{
		BaseError: NewBaseError(ErrorTypeProfile, fmt.Sprintf("profile not found: %s", userID), nil),
		UserID:    userID,
	}
}

// ErrProfileStoreUnavailable is returned when the profile store cannot be reached
type ErrProfileStoreUnavailable struct {
	*BaseError
	Operation string
}

func NewProfileStoreUnavailable(operation string, err error) *ErrProfileStoreUnavailable {
	return &ErrProfileStoreUnavailable{
		BaseError: NewBaseError(ErrorTypeProfile, fmt.Sprintf("profile store unavailable during %s", operation), err),
		Operation: operation,
	}
}

// Auth Errors

// ErrTokenMissing is returned when a request carries no bearer token
var ErrTokenMissing = NewBaseError(ErrorTypeAuth, "missing Authorization header", nil)

// ErrTokenInvalid is returned when a bearer token cannot be decoded
type ErrTokenInvalid struct {
	*BaseError
}

func NewTokenInvalid(err error) *ErrTokenInvalid {
	return &ErrTokenInvalid{
		BaseError: NewBaseError(ErrorTypeAuth, "token invalid", err),
	}
}

// ErrTokenExpired is returned when a bearer token is past its expiry
type ErrTokenExpired struct {
	*BaseError
	ExpiredAt time.Time
}

func NewTokenExpired(expiredAt time.Time) *ErrTokenExpired {
	return &ErrTokenExpired{
		BaseError: NewBaseError(ErrorTypeAuth, "token expired", nil),
		ExpiredAt: expiredAt,
	}
}

// Context Errors

// ErrContextCancelled is returned when context is cancelled
type ErrContextCancelled struct {
	*BaseError
	Operation string
}

func NewContextCancelled(operation string, err error) *ErrContextCancelled {
	return &ErrContextCancelled{
		BaseError: NewBaseError(ErrorTypeContext, fmt.Sprintf("context cancelled: %s", operation), err),
		Operation: operation,
	}
}

// Config Errors

// ErrConfigMissingRequired is returned when a required config value is missing
type ErrConfigMissingRequired struct {
	*BaseError
	Field string
}

func NewConfigMissingRequired(field string) *ErrConfigMissingRequired {
	return &ErrConfigMissingRequired{
		BaseError: NewBaseError(ErrorTypeConfig, fmt.Sprintf("missing required config: %s", field), nil),
		Field:     field,
	}
}

// Helper functions

// IsErrorType checks if an error is of a specific type
func IsErrorType(err error, errType ErrorType) bool {
	if err == nil {
		return false
	}
	if typed, ok := err.(interface{ ErrType() ErrorType }); ok {
		return typed.ErrType() == errType
	}
	// Check wrapped errors
	if wrapped, ok := err.(interface{ Unwrap() error }); ok {
		return IsErrorType(wrapped.Unwrap(), errType)
	}
	return false
}

// IsNotFound reports whether err represents a missing profile or user
func IsNotFound(err error) bool {
	switch err.(type) {
	case *ErrProfileNotFound, *ErrGraphUserNotFound:
		return true
	}
	return false
}

// IsRetryable checks if an error is retryable
func IsRetryable(err error) bool {
	// Context errors are not retryable
	if IsErrorType(err, ErrorTypeContext) {
		return false
	}
	// Not-found is a stable answer, not a transient failure
	if IsNotFound(err) {
		return false
	}
	// Store connectivity errors heal on retry; ingestion steps are
	// individually idempotent so replaying them is safe
	if IsErrorType(err, ErrorTypeGraph) || IsErrorType(err, ErrorTypeProfile) {
		return true
	}
	return false
}
