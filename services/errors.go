package services

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidInput        = errors.New("invalid input")
	ErrNotFound            = errors.New("not found")
	ErrDuplicateSku        = errors.New("sku already exists")
	ErrInsufficientStock   = errors.New("insufficient stock")
	ErrInsufficientPayment = errors.New("insufficient payment")
	ErrEmptyCart           = errors.New("cart is empty")
	ErrUnauthorized        = errors.New("unauthorized")
	ErrForbidden           = errors.New("forbidden")
	ErrProductInUse        = errors.New("product is referenced by transactions")
	ErrPersistence         = errors.New("persistence failure")

	ErrProductNotFound     = fmt.Errorf("product %w", ErrNotFound)
	ErrTransactionNotFound = fmt.Errorf("transaction %w", ErrNotFound)
	ErrCategoryNotFound    = fmt.Errorf("category %w", ErrNotFound)
	ErrUserNotFound        = fmt.Errorf("user %w", ErrNotFound)
	ErrDuplicateCategory   = errors.New("category already exists")
	ErrDuplicateUsername   = errors.New("username already exists")
)

// ValidationError names the offending field of a rejected input.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid input: %s %s", e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool { return target == ErrInvalidInput }

func invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// StockError reports the product that could not cover the requested quantity.
type StockError struct {
	ProductID uint
	Name      string
	Available int
	Requested int
}

func (e *StockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %d (%s): available %d, requested %d",
		e.ProductID, e.Name, e.Available, e.Requested)
}

func (e *StockError) Is(target error) bool { return target == ErrInsufficientStock }

type PaymentError struct {
	Total    int64
	Received int64
}

func (e *PaymentError) Error() string {
	return fmt.Sprintf("insufficient payment: total %d, received %d", e.Total, e.Received)
}

func (e *PaymentError) Is(target error) bool { return target == ErrInsufficientPayment }

// MissingProductError identifies a cart line whose product does not exist.
type MissingProductError struct {
	ProductID uint
}

func (e *MissingProductError) Error() string {
	return fmt.Sprintf("product %d not found", e.ProductID)
}

func (e *MissingProductError) Is(target error) bool {
	return target == ErrProductNotFound || target == ErrNotFound
}

func persistence(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrPersistence, op, err)
}
