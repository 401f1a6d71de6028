package refs

import (
	"errors"
	"fmt"

	"github.com/stackedgit/stackgit/pkg/common/err"
)

const (
	// Package name for error reporting
	pkgName = "refs"
)

// Error codes for ref store operations
const (
	CodeNotFound          = "REF_NOT_FOUND"
	CodeTransactionFailed = "REF_TRANSACTION_FAILED"
)

// NotFoundError indicates a ref doesn't exist
type NotFoundError struct {
	baseError *err.Error
	RefName   string
}

// NewNotFoundError creates a new ref not found error
func NewNotFoundError(name string) error {
	return &NotFoundError{
		baseError: err.New(
			pkgName,
			CodeNotFound,
			"lookup",
			fmt.Sprintf("ref '%s' not found", name),
			nil,
		),
		RefName: name,
	}
}

// Error implements the error interface
func (e *NotFoundError) Error() string {
	return e.baseError.Error()
}

// Unwrap returns the underlying error
func (e *NotFoundError) Unwrap() error {
	return e.baseError
}

// IsNotFound reports whether err says a ref does not exist.
func IsNotFound(e error) bool {
	var notFound *NotFoundError
	return errors.As(e, &notFound)
}

// TransactionError indicates the backing store rejected a ref transaction.
// The whole transaction is known to have not applied; there are no partial
// effects to clean up.
type TransactionError struct {
	baseError *err.Error
	RefName   string
}

// NewTransactionError creates a new ref transaction error
func NewTransactionError(op, name string, cause error) error {
	msg := "ref transaction rejected"
	if name != "" {
		msg = fmt.Sprintf("ref transaction rejected for '%s'", name)
	}
	return &TransactionError{
		baseError: err.New(
			pkgName,
			CodeTransactionFailed,
			op,
			msg,
			cause,
		),
		RefName: name,
	}
}

// Error implements the error interface
func (e *TransactionError) Error() string {
	return e.baseError.Error()
}

// Unwrap returns the underlying error
func (e *TransactionError) Unwrap() error {
	return e.baseError
}
