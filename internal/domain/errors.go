package domain

import (
	"errors"
	"fmt"
)

// Sentinel error kinds. Match with errors.Is.
var (
	ErrNotFound          = errors.New("not found")
	ErrAlreadyExists     = errors.New("already exists")
	ErrInvalidAdjustment = errors.New("cannot have negative inventory")
	ErrInvalidQuantity   = errors.New("quantity cannot be negative")
	ErrValidation        = errors.New("validation failed")
)

// NotFoundError names the missing entity.
type NotFoundError struct {
	Entity string
	ID     int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Entity, e.ID)
}

func (e *NotFoundError) Unwrap() error {
	return ErrNotFound
}

// InvalidAdjustmentError reports an adjustment that would drive stock below zero.
type InvalidAdjustmentError struct {
	ProductID int64
	Current   int
	Delta     int
}

func (e *InvalidAdjustmentError) Error() string {
	return fmt.Sprintf("cannot have negative inventory: product %d has %d, adjustment %d",
		e.ProductID, e.Current, e.Delta)
}

func (e *InvalidAdjustmentError) Unwrap() error {
	return ErrInvalidAdjustment
}

type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

func NewValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// IsNotFound returns true if the error indicates a missing resource.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsConflict returns true if the error reports a uniqueness violation.
func IsConflict(err error) bool {
	return errors.Is(err, ErrAlreadyExists)
}

// IsClientError returns true if the error is due to invalid client input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidAdjustment) ||
		errors.Is(err, ErrInvalidQuantity) ||
		errors.Is(err, ErrValidation)
}
