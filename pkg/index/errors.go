package index

import (
	"errors"
	"fmt"
	"strings"

	"github.com/stackedgit/stackgit/pkg/common/err"
)

const (
	// Package name for error reporting
	pkgName = "index"
)

// Error codes for index and worktree operations
const (
	CodeApplyFailed    = "APPLY_FAILED"
	CodeMergeFailed    = "MERGE_FAILED"
	CodeMergeConflict  = "MERGE_CONFLICT"
	CodeCheckoutFailed = "CHECKOUT_FAILED"
)

// ApplyError indicates a patch did not apply cleanly. This is an expected
// outcome of trying a patch against content it was not written for, not a
// transport failure.
type ApplyError struct {
	baseError *err.Error
}

// NewApplyError creates a new apply error
func NewApplyError(op string, cause error) error {
	return &ApplyError{
		baseError: err.New(
			pkgName,
			CodeApplyFailed,
			op,
			"patch does not apply cleanly",
			cause,
		),
	}
}

// Error implements the error interface
func (e *ApplyError) Error() string {
	return e.baseError.Error()
}

// Unwrap returns the underlying error
func (e *ApplyError) Unwrap() error {
	return e.baseError
}

// MergeError indicates a merge could not complete: the index holds
// conflicting stages that cannot be written as a tree, or the index and
// worktree were too dirty for the merge machinery to start.
type MergeError struct {
	baseError *err.Error
}

// NewMergeError creates a new merge error
func NewMergeError(op, msg string, cause error) error {
	return &MergeError{
		baseError: err.New(
			pkgName,
			CodeMergeFailed,
			op,
			msg,
			cause,
		),
	}
}

// Error implements the error interface
func (e *MergeError) Error() string {
	return e.baseError.Error()
}

// Unwrap returns the underlying error
func (e *MergeError) Unwrap() error {
	return e.baseError
}

// ConflictError indicates a worktree merge stopped on conflicts. The
// conflict markers are already in the worktree; Conflicts names the paths
// the user has to resolve.
type ConflictError struct {
	baseError *err.Error
	Conflicts []string
}

// NewConflictError creates a new merge conflict error
func NewConflictError(conflicts []string) error {
	msg := "merge produced conflicts"
	if len(conflicts) > 0 {
		msg = fmt.Sprintf("merge produced conflicts: %s", strings.Join(conflicts, ", "))
	}
	return &ConflictError{
		baseError: err.New(
			pkgName,
			CodeMergeConflict,
			"merge",
			msg,
			nil,
		),
		Conflicts: conflicts,
	}
}

// Error implements the error interface
func (e *ConflictError) Error() string {
	return e.baseError.Error()
}

// Unwrap returns the underlying error
func (e *ConflictError) Unwrap() error {
	return e.baseError
}

// CheckoutError indicates a checkout refused to run, typically because
// local modifications would have been overwritten.
type CheckoutError struct {
	baseError *err.Error
}

// NewCheckoutError creates a new checkout error
func NewCheckoutError(cause error) error {
	return &CheckoutError{
		baseError: err.New(
			pkgName,
			CodeCheckoutFailed,
			"checkout",
			"checkout failed",
			cause,
		),
	}
}

// Error implements the error interface
func (e *CheckoutError) Error() string {
	return e.baseError.Error()
}

// Unwrap returns the underlying error
func (e *CheckoutError) Unwrap() error {
	return e.baseError
}

// IsMergeFailure reports whether e is one of the expected could-not-merge
// outcomes (refused patch, conflicting index, conflicting worktree merge)
// rather than a transport or usage failure. Callers that treat "no clean
// result" as a value branch on this.
func IsMergeFailure(e error) bool {
	var applyErr *ApplyError
	var mergeErr *MergeError
	var conflictErr *ConflictError
	return errors.As(e, &applyErr) || errors.As(e, &mergeErr) || errors.As(e, &conflictErr)
}
