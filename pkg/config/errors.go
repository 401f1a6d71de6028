package config

import (
	"errors"
	"fmt"

	"github.com/stackedgit/stackgit/pkg/common/err"
)

const (
	// Package name for error reporting
	pkgName = "config"
)

// Error codes for configuration operations
const (
	CodeKeyNotFound  = "KEY_NOT_FOUND"
	CodeBadValue     = "BAD_VALUE"
	CodeInvalidScope = "INVALID_SCOPE"
)

// NotFoundError indicates a configuration key has no value in any scope.
type NotFoundError struct {
	baseError *err.Error
	Key       string
}

// NewNotFoundError creates a new missing key error
func NewNotFoundError(key string) error {
	return &NotFoundError{
		baseError: err.New(
			pkgName,
			CodeKeyNotFound,
			"get",
			fmt.Sprintf("config key '%s' is not set", key),
			nil,
		),
		Key: key,
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

// IsNotFound reports whether err says a config key is not set.
func IsNotFound(e error) bool {
	var notFound *NotFoundError
	return errors.As(e, &notFound)
}

// ValueError indicates a configuration value could not be converted to the
// requested type.
type ValueError struct {
	baseError *err.Error
	Key       string
	Value     string
}

// NewValueError creates a new conversion error
func NewValueError(key, value, want string, cause error) error {
	return &ValueError{
		baseError: err.New(
			pkgName,
			CodeBadValue,
			"convert",
			fmt.Sprintf("config key '%s' holds %q, not a %s", key, value, want),
			cause,
		),
		Key:   key,
		Value: value,
	}
}

// Error implements the error interface
func (e *ValueError) Error() string {
	return e.baseError.Error()
}

// Unwrap returns the underlying error
func (e *ValueError) Unwrap() error {
	return e.baseError
}
