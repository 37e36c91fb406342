// Package errors provides BudgetWise's structured error type. Every error
// that crosses the Budget Engine Orchestrator boundary carries one of four
// stable wire codes (spec §7) so the presentation layer never has to parse
// messages or learn this package's internal error hierarchy.
package errors

import "net/http"

// Code is one of the four stable wire codes from the error taxonomy.
type Code string

const (
	// Validation: input argument missing, malformed, or out of range.
	Validation Code = "VALIDATION"
	// InvalidOperation: syntactically valid request that violates a
	// business rule or state invariant.
	InvalidOperation Code = "INVALID_OPERATION"
	// NotImplemented: reserved for operations wired but intentionally inert.
	NotImplemented Code = "NOT_IMPLEMENTED"
	// Unexpected: anything else (store failure, bug).
	Unexpected Code = "UNEXPECTED"
)

// statusFor is the default HTTP status the Gin transport maps each wire
// code to; individual sentinels may override it via StatusCode.
var statusFor = map[Code]int{
	Validation:       http.StatusBadRequest,
	InvalidOperation: http.StatusConflict,
	NotImplemented:   http.StatusNotImplemented,
	Unexpected:       http.StatusInternalServerError,
}

// AppError is a structured application error with a stable wire code, a
// human-readable message, an optional target (the offending parameter or
// field name), and an optional wrapped internal cause. Internal is never
// serialized to the wire.
type AppError struct {
	Code       Code   `json:"code"`
	Message    string `json:"message"`
	Target     string `json:"target,omitempty"`
	StatusCode int    `json:"-"`
	Internal   error  `json:"-"`
}

// Error implements the error interface.
func (e *AppError) Error() string { return e.Message }

// Unwrap returns the internal cause for use with errors.Is/errors.As.
func (e *AppError) Unwrap() error { return e.Internal }

// sentinel constructs an AppError with the default HTTP status for its code.
func sentinel(code Code, message string) *AppError {
	return &AppError{Code: code, Message: message, StatusCode: statusFor[code]}
}

// Wrap creates a new AppError with the same code/message/target/status
// that carries an internal cause.
func Wrap(s *AppError, internal error) *AppError {
	return &AppError{Code: s.Code, Message: s.Message, Target: s.Target, StatusCode: s.StatusCode, Internal: internal}
}

// WithMessage creates a new AppError with the same code but a custom message.
func WithMessage(s *AppError, message string) *AppError {
	return &AppError{Code: s.Code, Message: message, Target: s.Target, StatusCode: s.StatusCode, Internal: s.Internal}
}

// WithTarget creates a new AppError with the same code/message but a
// specific target (the parameter or field name the error concerns).
func WithTarget(s *AppError, target string) *AppError {
	return &AppError{Code: s.Code, Message: s.Message, Target: target, StatusCode: s.StatusCode, Internal: s.Internal}
}

// Sentinel validation errors.
var (
	ErrValidation           = sentinel(Validation, "invalid input")
	ErrAccountNotFound      = &AppError{Code: Validation, Message: "account not found", Target: "accountId", StatusCode: http.StatusNotFound}
	ErrEnvelopeNotFound     = &AppError{Code: Validation, Message: "envelope not found", Target: "envelopeId", StatusCode: http.StatusNotFound}
	ErrTransactionNotFound  = &AppError{Code: Validation, Message: "transaction not found", Target: "transactionId", StatusCode: http.StatusNotFound}
	ErrPayeeNotFound        = &AppError{Code: Validation, Message: "payee not found", Target: "payeeId", StatusCode: http.StatusNotFound}
	ErrBudgetPeriodNotFound = &AppError{Code: Validation, Message: "budget period not found", Target: "period", StatusCode: http.StatusNotFound}
)

// Sentinel invalid-operation errors.
var (
	ErrInvalidOperation = sentinel(InvalidOperation, "operation not permitted in the current state")
	ErrClosedPeriod     = sentinel(InvalidOperation, "budget period is closed")
	ErrReconciled       = sentinel(InvalidOperation, "transaction is reconciled")
	ErrSplitMismatch    = sentinel(InvalidOperation, "split amounts do not sum to the transaction amount")
	ErrCurrencyMismatch = sentinel(InvalidOperation, "currency mismatch")
	ErrInsufficientFund = sentinel(InvalidOperation, "amount exceeds envelope availability")
	ErrSameAccount      = sentinel(InvalidOperation, "source and destination account must differ")
	ErrNonZeroDiff      = sentinel(InvalidOperation, "difference must be zero")
)

// Reserved for intentionally inert operations.
var ErrNotImplemented = sentinel(NotImplemented, "not implemented")

// Catch-all for store failures and bugs.
var ErrUnexpected = sentinel(Unexpected, "an unexpected error occurred")
