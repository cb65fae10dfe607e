package shared

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// Is reports whether target carries the same code, so that errors built by
// the typed constructors below still match the sentinel values.
func (e *DomainError) Is(target error) bool {
	var t *DomainError
	if !errors.As(target, &t) {
		return false
	}
	return e.Code == t.Code
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Error codes
const (
	CodeNotFound                = "NOT_FOUND"
	CodeInvalidInput            = "INVALID_INPUT"
	CodeInvalidState            = "INVALID_STATE"
	CodeInsufficientStock       = "INSUFFICIENT_STOCK"
	CodeInsufficientGlobalStock = "INSUFFICIENT_GLOBAL_STOCK"
	CodeInvalidPrice            = "INVALID_PRICE"
	CodeForbidden               = "FORBIDDEN"
	CodeUnauthorized            = "UNAUTHORIZED"
	CodeAlreadyConfirmed        = "ALREADY_CONFIRMED"
	CodeConcurrencyConflict     = "CONCURRENCY_CONFLICT"
)

// Common domain errors
var (
	ErrNotFound                = NewDomainError(CodeNotFound, "Resource not found")
	ErrInvalidInput            = NewDomainError(CodeInvalidInput, "Invalid input provided")
	ErrInvalidState            = NewDomainError(CodeInvalidState, "Operation not allowed in current state")
	ErrInsufficientStock       = NewDomainError(CodeInsufficientStock, "Insufficient stock available")
	ErrInsufficientGlobalStock = NewDomainError(CodeInsufficientGlobalStock, "Insufficient warehouse stock available")
	ErrInvalidPrice            = NewDomainError(CodeInvalidPrice, "No positive price can be derived")
	ErrForbidden               = NewDomainError(CodeForbidden, "Access to this resource is forbidden")
	ErrUnauthorized            = NewDomainError(CodeUnauthorized, "Not authorized to perform this action")
	ErrAlreadyConfirmed        = NewDomainError(CodeAlreadyConfirmed, "Distribution has already been confirmed")
	ErrConcurrencyConflict     = NewDomainError(CodeConcurrencyConflict, "Resource is locked by another operation, retry later")
)

// Quantities in messages are grouped the way the shop staff read them.
var msgPrinter = message.NewPrinter(language.Indonesian)

// NewNotFoundError names the missing resource.
func NewNotFoundError(resource string, id fmt.Stringer) *DomainError {
	return NewDomainError(CodeNotFound, fmt.Sprintf("%s %s not found", resource, id))
}

// NewInvalidInputError creates an INVALID_INPUT error with the given message.
func NewInvalidInputError(format string, args ...any) *DomainError {
	return NewDomainError(CodeInvalidInput, fmt.Sprintf(format, args...))
}

// NewInvalidStateError creates an INVALID_STATE error with the given message.
func NewInvalidStateError(format string, args ...any) *DomainError {
	return NewDomainError(CodeInvalidState, fmt.Sprintf(format, args...))
}

// NewInsufficientStockError reports a branch shortfall for a product.
func NewInsufficientStockError(productName string, requiredMl, availableMl int64) *DomainError {
	return NewDomainError(CodeInsufficientStock, msgPrinter.Sprintf(
		"Insufficient stock for %s: required %d ml, available %d ml",
		productName, requiredMl, availableMl,
	))
}

// NewInsufficientGlobalStockError reports a warehouse shortfall for a product.
func NewInsufficientGlobalStockError(productName string, requiredMl, availableMl int64) *DomainError {
	return NewDomainError(CodeInsufficientGlobalStock, msgPrinter.Sprintf(
		"Insufficient warehouse stock for %s: required %d ml, available %d ml",
		productName, requiredMl, availableMl,
	))
}

// NewInvalidPriceError reports a product for which no positive price is derivable.
func NewInvalidPriceError(productName string, amount decimal.Decimal) *DomainError {
	return NewDomainError(CodeInvalidPrice, fmt.Sprintf(
		"Invalid price for %s: derived amount %s must be positive",
		productName, amount.String(),
	))
}

// NewForbiddenError creates a FORBIDDEN error without exposing foreign branch data.
func NewForbiddenError(action string) *DomainError {
	return NewDomainError(CodeForbidden, fmt.Sprintf("Not allowed to %s for another branch", action))
}

// IsDomainError reports whether err is (or wraps) a DomainError and returns it.
func IsDomainError(err error) (*DomainError, bool) {
	var de *DomainError
	if errors.As(err, &de) {
		return de, true
	}
	return nil, false
}
