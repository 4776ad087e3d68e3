// Package errors provides structured error handling with typed error codes.
//
// Error codes are organized into categories:
//   - General errors (1-99): Unknown and general errors
//   - Validation errors (100-199): Invalid parameters and configuration
//   - Data/Resource errors (200-299): Data not found
//   - Market data errors (700-799): Market data fetching, parsing and writing errors
//
// Per-ticker failures of an export run are reported as *FetchError or *WriteError,
// both of which carry the ticker and unwrap to the underlying cause.
//
// Usage:
//
//	// Wrap an existing error
//	err := errors.Wrap(errors.ErrCodeMarketDataParseFailed, "missing column", originalErr)
//
//	// Report a provider failure for a ticker
//	err := errors.NewFetchError("AAPL", cause)
//
//	// Check error code
//	if errors.HasCode(err, errors.ErrCodeMarketDataFetchFailed) { ... }
package errors

import (
	"errors"
	"fmt"
)

// Error represents a structured error with an error code and message.
type Error struct {
	Code    ErrorCode
	Message string
	Cause   error
}

// New creates a new Error with the given code and message.
func New(code ErrorCode, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Cause:   nil,
	}
}

// Newf creates a new Error with the given code and formatted message.
func Newf(code ErrorCode, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   nil,
	}
}

// Wrap wraps an existing error with a new Error containing the given code and message.
func Wrap(code ErrorCode, message string, cause error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// Wrapf wraps an existing error with a new Error containing the given code and formatted message.
func Wrapf(code ErrorCode, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%d] %s: %v", e.Code, e.Message, e.Cause)
	}

	return fmt.Sprintf("[%d] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether any error in err's chain matches target.
// This is a convenience wrapper around the standard errors.Is function.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
// This is a convenience wrapper around the standard errors.As function.
func As(err error, target any) bool {
	return errors.As(err, target)
}

// GetCode extracts the ErrorCode from an error.
// Returns ErrCodeUnknown if no error in the chain carries a code.
func GetCode(err error) ErrorCode {
	var coded interface{ ErrorCode() ErrorCode }
	if errors.As(err, &coded) {
		return coded.ErrorCode()
	}

	return ErrCodeUnknown
}

// ErrorCode returns the error's code.
func (e *Error) ErrorCode() ErrorCode {
	return e.Code
}

// HasCode checks if an error has a specific ErrorCode.
func HasCode(err error, code ErrorCode) bool {
	return GetCode(err) == code
}

// FetchError is returned when the market data provider fails for a ticker.
type FetchError struct {
	Ticker string
	Cause  error
}

// NewFetchError creates a new FetchError.
func NewFetchError(ticker string, cause error) *FetchError {
	return &FetchError{
		Ticker: ticker,
		Cause:  cause,
	}
}

// Error implements the error interface.
func (e *FetchError) Error() string {
	return fmt.Sprintf("failed to fetch %s: %v", e.Ticker, e.Cause)
}

// Unwrap returns the underlying error cause.
func (e *FetchError) Unwrap() error {
	return e.Cause
}

// ErrorCode returns ErrCodeMarketDataFetchFailed.
func (e *FetchError) ErrorCode() ErrorCode {
	return ErrCodeMarketDataFetchFailed
}

// WriteError is returned when the output for a ticker cannot be written.
type WriteError struct {
	Ticker string
	Path   string
	Cause  error
}

// NewWriteError creates a new WriteError.
func NewWriteError(ticker, path string, cause error) *WriteError {
	return &WriteError{
		Ticker: ticker,
		Path:   path,
		Cause:  cause,
	}
}

// Error implements the error interface.
func (e *WriteError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("failed to write %s: %v", e.Ticker, e.Cause)
	}

	return fmt.Sprintf("failed to write %s to %s: %v", e.Ticker, e.Path, e.Cause)
}

// Unwrap returns the underlying error cause.
func (e *WriteError) Unwrap() error {
	return e.Cause
}

// ErrorCode returns ErrCodeMarketDataWriteFailed.
func (e *WriteError) ErrorCode() ErrorCode {
	return ErrCodeMarketDataWriteFailed
}

// IsFetchError checks if an error is a FetchError.
// It uses errors.As to check the error chain.
func IsFetchError(err error) bool {
	var fetchErr *FetchError

	return errors.As(err, &fetchErr)
}

// IsWriteError checks if an error is a WriteError.
// It uses errors.As to check the error chain.
func IsWriteError(err error) bool {
	var writeErr *WriteError

	return errors.As(err, &writeErr)
}
