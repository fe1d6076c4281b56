package shared

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorKind classifies a domain error so callers can translate it without
// inspecting codes or messages.
type ErrorKind string

const (
	KindValidation        ErrorKind = "VALIDATION"
	KindState             ErrorKind = "STATE"
	KindInsufficientFunds ErrorKind = "INSUFFICIENT_FUNDS"
	KindInsufficientStock ErrorKind = "INSUFFICIENT_STOCK"
	KindDuplicateKey      ErrorKind = "DUPLICATE_KEY"
	KindNotFound          ErrorKind = "NOT_FOUND"
	KindConflict          ErrorKind = "CONFLICT"
)

// DomainError represents a domain-level error
type DomainError struct {
	Kind    ErrorKind `json:"kind"`
	Code    string    `json:"code"`
	Message string    `json:"message"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// Is reports whether target is a DomainError of the same kind. A target
// carrying a code only matches errors with that exact code.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	if t.Kind != e.Kind {
		return false
	}
	return t.Code == "" || t.Code == e.Code
}

// NewDomainError creates a new domain error
func NewDomainError(kind ErrorKind, code, message string) *DomainError {
	return &DomainError{
		Kind:    kind,
		Code:    code,
		Message: message,
	}
}

// NewValidationError reports malformed input to an operation.
func NewValidationError(code, message string) *DomainError {
	return NewDomainError(KindValidation, code, message)
}

// NewStateError reports an operation attempted from a status that forbids it.
func NewStateError(code, message string) *DomainError {
	return NewDomainError(KindState, code, message)
}

// NewInsufficientFundsError reports a payment or cash-out above what is available.
func NewInsufficientFundsError(code, message string) *DomainError {
	return NewDomainError(KindInsufficientFunds, code, message)
}

// NewInsufficientStockError reports a stock debit above the current quantity.
func NewInsufficientStockError(code, message string) *DomainError {
	return NewDomainError(KindInsufficientStock, code, message)
}

// NewDuplicateKeyError reports a uniqueness violation surfaced by persistence.
func NewDuplicateKeyError(field, value string) *DomainError {
	return NewDomainError(KindDuplicateKey, "DUPLICATE_"+field, fmt.Sprintf("%s %q already exists", field, value))
}

// NewNotFoundError reports a missing entity, e.g. code PRODUCT_NOT_FOUND
func NewNotFoundError(entity string, id int64) *DomainError {
	return NewDomainError(KindNotFound, notFoundCode(entity), fmt.Sprintf("%s %d not found", entity, id))
}

// NewNotFoundByError reports an entity missing from a lookup other than by ID,
// e.g. NewNotFoundByError("sale", "for order 7")
func NewNotFoundByError(entity, lookup string) *DomainError {
	return NewDomainError(KindNotFound, notFoundCode(entity), fmt.Sprintf("%s %s not found", entity, lookup))
}

func notFoundCode(entity string) string {
	return strings.ToUpper(strings.ReplaceAll(entity, " ", "_")) + "_NOT_FOUND"
}

// Sentinels matching any error of their kind through errors.Is.
// ErrConcurrencyConflict carries a code and only matches itself.
var (
	ErrValidation          = &DomainError{Kind: KindValidation, Message: "Invalid input provided"}
	ErrInvalidState        = &DomainError{Kind: KindState, Message: "Operation not allowed in current state"}
	ErrInsufficientFunds   = &DomainError{Kind: KindInsufficientFunds, Message: "Insufficient funds available"}
	ErrInsufficientStock   = &DomainError{Kind: KindInsufficientStock, Message: "Insufficient stock available"}
	ErrDuplicateKey        = &DomainError{Kind: KindDuplicateKey, Message: "Resource already exists"}
	ErrNotFound            = &DomainError{Kind: KindNotFound, Message: "Resource not found"}
	ErrConcurrencyConflict = &DomainError{Kind: KindConflict, Code: "CONCURRENCY_CONFLICT", Message: "Resource was modified by another process"}
)

// KindOf returns the kind of the first DomainError in err's chain, or "" if none.
func KindOf(err error) ErrorKind {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Kind
	}
	return ""
}
