package domain

import (
	"errors"
	"fmt"
)

// ErrorCode categorizes domain failures.
type ErrorCode string

const (
	// ErrCodeInvalidInput indicates malformed or out-of-range arguments.
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"

	// ErrCodeNotFound indicates a referenced item or sale does not exist.
	ErrCodeNotFound ErrorCode = "NOT_FOUND"

	// ErrCodeInsufficientStock indicates the requested quantity exceeds the
	// available quantity. Error.Available carries the current count.
	ErrCodeInsufficientStock ErrorCode = "INSUFFICIENT_STOCK"

	// ErrCodeOutOfStock indicates the item is unknown at sell time.
	ErrCodeOutOfStock ErrorCode = "OUT_OF_STOCK"

	// ErrCodeEmptyCart indicates a commit was attempted with no lines.
	ErrCodeEmptyCart ErrorCode = "EMPTY_CART"

	// ErrCodeInvalidSale indicates a ledger-level consistency violation.
	ErrCodeInvalidSale ErrorCode = "INVALID_SALE"

	// ErrCodeCartClosed indicates an operation on a committed or abandoned cart.
	ErrCodeCartClosed ErrorCode = "CART_CLOSED"
)

// Error is the single error type returned by catalog, ledger and engine
// operations. Storage failures are not Errors; they are wrapped with %w.
type Error struct {
	// Code identifies the error category.
	Code ErrorCode

	// Message is a human-readable description.
	Message string

	// Name is the item name involved, when there is one.
	Name string

	// Available is the quantity on hand for INSUFFICIENT_STOCK.
	Available int64
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("%s: %s (item=%s)", e.Code, e.Message, e.Name)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// CodeOf returns the ErrorCode of err, or "" when err is not an *Error.
func CodeOf(err error) ErrorCode {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}

// hasCode reports whether err wraps a domain Error with the given code.
func hasCode(err error, code ErrorCode) bool {
	return err != nil && CodeOf(err) == code
}

// IsInvalidInput reports whether err is an INVALID_INPUT error.
func IsInvalidInput(err error) bool { return hasCode(err, ErrCodeInvalidInput) }

// IsNotFound reports whether err is a NOT_FOUND error.
func IsNotFound(err error) bool { return hasCode(err, ErrCodeNotFound) }

// IsInsufficientStock reports whether err is an INSUFFICIENT_STOCK error.
// Use AvailableOf to read the quantity that was on hand.
func IsInsufficientStock(err error) bool { return hasCode(err, ErrCodeInsufficientStock) }

// IsOutOfStock reports whether err is an OUT_OF_STOCK error.
func IsOutOfStock(err error) bool { return hasCode(err, ErrCodeOutOfStock) }

// IsEmptyCart reports whether err is an EMPTY_CART error.
func IsEmptyCart(err error) bool { return hasCode(err, ErrCodeEmptyCart) }

// IsInvalidSale reports whether err is an INVALID_SALE error.
func IsInvalidSale(err error) bool { return hasCode(err, ErrCodeInvalidSale) }

// IsCartClosed reports whether err is a CART_CLOSED error.
func IsCartClosed(err error) bool { return hasCode(err, ErrCodeCartClosed) }

// AvailableOf returns the available quantity reported by an
// INSUFFICIENT_STOCK error.
func AvailableOf(err error) (int64, bool) {
	var de *Error
	if errors.As(err, &de) && de.Code == ErrCodeInsufficientStock {
		return de.Available, true
	}
	return 0, false
}

// NewInvalidInput creates an INVALID_INPUT error.
func NewInvalidInput(message string) *Error {
	return &Error{Code: ErrCodeInvalidInput, Message: message}
}

// NewNotFound creates a NOT_FOUND error for the named item.
func NewNotFound(name string) *Error {
	return &Error{Code: ErrCodeNotFound, Message: "no such item", Name: name}
}

// NewNotFoundf creates a NOT_FOUND error with a formatted message.
func NewNotFoundf(format string, args ...any) *Error {
	return &Error{Code: ErrCodeNotFound, Message: fmt.Sprintf(format, args...)}
}

// NewInsufficientStock creates an INSUFFICIENT_STOCK error.
func NewInsufficientStock(name string, available, requested int64) *Error {
	return &Error{
		Code:      ErrCodeInsufficientStock,
		Message:   fmt.Sprintf("only %d left, requested %d", available, requested),
		Name:      name,
		Available: available,
	}
}

// NewOutOfStock creates an OUT_OF_STOCK error for an unknown item.
func NewOutOfStock(name string) *Error {
	return &Error{Code: ErrCodeOutOfStock, Message: "no such item", Name: name}
}

// NewEmptyCart creates an EMPTY_CART error.
func NewEmptyCart() *Error {
	return &Error{Code: ErrCodeEmptyCart, Message: "cart has no lines"}
}

// NewInvalidSale creates an INVALID_SALE error.
func NewInvalidSale(message string) *Error {
	return &Error{Code: ErrCodeInvalidSale, Message: message}
}

// NewCartClosed creates a CART_CLOSED error.
func NewCartClosed(state string) *Error {
	return &Error{Code: ErrCodeCartClosed, Message: "cart is " + state}
}
