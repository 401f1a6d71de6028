package repository

import (
	"errors"
	"fmt"

	"github.com/stackedgit/stackgit/pkg/common/err"
	"github.com/stackedgit/stackgit/pkg/objects"
)

const (
	// Package name for error reporting
	pkgName = "repository"
)

// Error codes for repository operations
const (
	CodeNotARepository = "NOT_A_REPOSITORY"
	CodeRevision       = "REVISION_NOT_FOUND"
	CodeDetachedHead   = "DETACHED_HEAD"
)

// NotARepositoryError indicates no git repository governs the current
// directory.
type NotARepositoryError struct {
	baseError *err.Error
}

// NewNotARepositoryError creates a new repository discovery error
func NewNotARepositoryError(cause error) error {
	return &NotARepositoryError{
		baseError: err.New(
			pkgName,
			CodeNotARepository,
			"discover",
			"cannot find git repository",
			cause,
		),
	}
}

// Error implements the error interface
func (e *NotARepositoryError) Error() string {
	return e.baseError.Error()
}

// Unwrap returns the underlying error
func (e *NotARepositoryError) Unwrap() error {
	return e.baseError
}

// RevisionError indicates a revision expression did not resolve to an
// object of the wanted kind.
type RevisionError struct {
	baseError *err.Error
	Rev       string
	Kind      objects.ObjectKind
}

// NewRevisionError creates a new revision resolution error
func NewRevisionError(rev string, kind objects.ObjectKind, cause error) error {
	return &RevisionError{
		baseError: err.New(
			pkgName,
			CodeRevision,
			"rev_parse",
			fmt.Sprintf("%s: no such %s", rev, kind),
			cause,
		),
		Rev:  rev,
		Kind: kind,
	}
}

// Error implements the error interface
func (e *RevisionError) Error() string {
	return e.baseError.Error()
}

// Unwrap returns the underlying error
func (e *RevisionError) Unwrap() error {
	return e.baseError
}

// IsRevisionNotFound reports whether e says a revision did not resolve.
func IsRevisionNotFound(e error) bool {
	var revErr *RevisionError
	return errors.As(e, &revErr)
}

// DetachedHeadError indicates HEAD does not point at any branch.
type DetachedHeadError struct {
	baseError *err.Error
}

// NewDetachedHeadError creates a new detached head error
func NewDetachedHeadError(cause error) error {
	return &DetachedHeadError{
		baseError: err.New(
			pkgName,
			CodeDetachedHead,
			"head_ref",
			"not on any branch",
			cause,
		),
	}
}

// Error implements the error interface
func (e *DetachedHeadError) Error() string {
	return e.baseError.Error()
}

// Unwrap returns the underlying error
func (e *DetachedHeadError) Unwrap() error {
	return e.baseError
}

// IsDetachedHead reports whether e says HEAD is not on a branch.
func IsDetachedHead(e error) bool {
	var headErr *DetachedHeadError
	return errors.As(e, &headErr)
}
