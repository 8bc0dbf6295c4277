package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"go-inventory-pos/pkg/validator"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrInvalidQuantity   = errors.New("quantity must be a positive whole number")
	ErrConflict          = errors.New("concurrent update, please retry")
	ErrStoreUnavailable  = errors.New("store unavailable")
)

// InsufficientStockError names the product that would have gone negative.
// It matches ErrInsufficientStock under errors.Is.
type InsufficientStockError struct {
	ProductID   uuid.UUID
	ProductName string
	Pool        string
	Available   int
	Requested   int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient %s quantity for %q: available %d, requested %d",
		e.Pool, e.ProductName, e.Available, e.Requested)
}

func (e *InsufficientStockError) Is(target error) bool {
	return target == ErrInsufficientStock
}

// ValidationError carries the fields that failed validation.
type ValidationError struct {
	Message string
	Fields  []*validator.ErrorResponse
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return e.Message
	}
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = f.String()
	}
	return e.Message + ": " + strings.Join(parts, "; ")
}

func invalid(format string, args ...interface{}) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// validate runs struct validation and wraps failures in a ValidationError.
func validate(req interface{}) error {
	if errs := validator.ValidateStruct(req); len(errs) > 0 {
		return &ValidationError{Message: "validation failed", Fields: errs}
	}
	return nil
}

// unavailable marks err as ErrStoreUnavailable. The cause stays in the chain
// so errors.Is still sees context.DeadlineExceeded and the like; handlers
// never show it to clients.
func unavailable(op string, err error) error {
	return fmt.Errorf("%s: %w", op, errors.Join(ErrStoreUnavailable, err))
}
