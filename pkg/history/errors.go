package history

import (
	"errors"
	"fmt"

	"github.com/stackedgit/stackgit/pkg/common/err"
	"github.com/stackedgit/stackgit/pkg/objects"
)

const (
	// Package name for error reporting
	pkgName = "history"
)

// Error codes for history traversal
const (
	CodeWalkFailed = "WALK_FAILED"
)

// WalkError indicates a commit on the walk could not be read. The walk
// stops at the broken commit; everything collected before it is returned
// alongside.
type WalkError struct {
	baseError *err.Error
	Hash      objects.ObjectHash
}

// NewWalkError creates a new walk error for the commit that failed to load
func NewWalkError(hash objects.ObjectHash, cause error) error {
	return &WalkError{
		baseError: err.New(
			pkgName,
			CodeWalkFailed,
			"walk",
			fmt.Sprintf("cannot read commit %s", hash.Short()),
			cause,
		),
		Hash: hash,
	}
}

// Error implements the error interface
func (e *WalkError) Error() string {
	return e.baseError.Error()
}

// Unwrap returns the underlying error
func (e *WalkError) Unwrap() error {
	return e.baseError
}

// IsWalkFailure reports whether err says the commit graph could not be
// traversed.
func IsWalkFailure(e error) bool {
	var walkErr *WalkError
	return errors.As(e, &walkErr)
}
