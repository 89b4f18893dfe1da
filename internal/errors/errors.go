// Package errors provides custom error types for domain-specific errors.
package errors

import (
	"errors"
	"fmt"
)

// Standard sentinel errors
var (
	ErrInvalidPrice       = errors.New("invalid price")
	ErrInvalidSymbol      = errors.New("invalid symbol")
	ErrInvalidVolume      = errors.New("invalid volume")
	ErrInsufficientMargin = errors.New("insufficient free margin")
	ErrOrderNotFound      = errors.New("order not found")
	ErrPositionNotFound   = errors.New("position not found")
	ErrAccountNotFound    = errors.New("account not found")
	ErrAlertNotFound      = errors.New("alert not found")
	ErrSymbolNotFound     = errors.New("symbol not found")
	ErrConfigInvalid      = errors.New("invalid configuration")
	ErrStoreClosed        = errors.New("store is closed")
)

// OrderError represents an error related to order operations.
type OrderError struct {
	OrderID string
	Symbol  string
	Action  string
	Reason  string
	Err     error
}

func (e *OrderError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("order error [%s] %s %s: %s: %v", e.OrderID, e.Action, e.Symbol, e.Reason, e.Err)
	}
	return fmt.Sprintf("order error [%s] %s %s: %s", e.OrderID, e.Action, e.Symbol, e.Reason)
}

func (e *OrderError) Unwrap() error {
	return e.Err
}

// NewOrderError creates a new OrderError.
func NewOrderError(orderID, symbol, action, reason string, err error) *OrderError {
	return &OrderError{
		OrderID: orderID,
		Symbol:  symbol,
		Action:  action,
		Reason:  reason,
		Err:     err,
	}
}

// ValidationError represents a validation error.
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s (%v): %s", e.Field, e.Value, e.Message)
}

// NewValidationError creates a new ValidationError.
func NewValidationError(field string, value interface{}, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Value:   value,
		Message: message,
	}
}

// MarginError reports a rejected fill with the amounts involved.
type MarginError struct {
	AccountID  string
	Required   float64
	FreeMargin float64
}

func (e *MarginError) Error() string {
	return fmt.Sprintf("insufficient free margin on account %s: need %.2f, have %.2f", e.AccountID, e.Required, e.FreeMargin)
}

func (e *MarginError) Unwrap() error {
	return ErrInsufficientMargin
}

// NewMarginError creates a new MarginError.
func NewMarginError(accountID string, required, freeMargin float64) *MarginError {
	return &MarginError{
		AccountID:  accountID,
		Required:   required,
		FreeMargin: freeMargin,
	}
}

// Wrap wraps an error with additional context.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf wraps an error with formatted context.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
