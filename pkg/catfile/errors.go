package catfile

import (
	"errors"
	"fmt"

	"github.com/stackedgit/stackgit/pkg/common/err"
	"github.com/stackedgit/stackgit/pkg/objects"
)

const (
	// Package name for error reporting
	pkgName = "catfile"
)

// Error codes for object reader operations
const (
	CodeMissing  = "OBJECT_MISSING"
	CodeProtocol = "CHANNEL_PROTOCOL"
	CodeDied     = "CHANNEL_DIED"
	CodeClosed   = "CHANNEL_CLOSED"
)

// MissingObjectError indicates the object store has no object with the
// requested hash.
type MissingObjectError struct {
	baseError *err.Error
	Hash      objects.ObjectHash
}

// NewMissingObjectError creates a new missing object error
func NewMissingObjectError(hash objects.ObjectHash) error {
	return &MissingObjectError{
		baseError: err.New(
			pkgName,
			CodeMissing,
			"read",
			fmt.Sprintf("object %s not found", hash),
			nil,
		),
		Hash: hash,
	}
}

// Error implements the error interface
func (e *MissingObjectError) Error() string {
	return e.baseError.Error()
}

// Unwrap returns the underlying error
func (e *MissingObjectError) Unwrap() error {
	return e.baseError
}

// IsMissing reports whether err says an object does not exist.
func IsMissing(e error) bool {
	var missing *MissingObjectError
	return errors.As(e, &missing)
}

// ProtocolError indicates the child process produced a response the batch
// protocol does not allow.
type ProtocolError struct {
	baseError *err.Error
	Response  string
}

// NewProtocolError creates a new protocol error
func NewProtocolError(op, response, msg string) error {
	return &ProtocolError{
		baseError: err.New(
			pkgName,
			CodeProtocol,
			op,
			fmt.Sprintf("%s: %q", msg, response),
			nil,
		),
		Response: response,
	}
}

// Error implements the error interface
func (e *ProtocolError) Error() string {
	return e.baseError.Error()
}

// Unwrap returns the underlying error
func (e *ProtocolError) Unwrap() error {
	return e.baseError
}

// ChannelDiedError indicates the child process went away mid-conversation.
// Stderr carries whatever the child managed to say before dying.
type ChannelDiedError struct {
	baseError *err.Error
	Stderr    string
}

// NewChannelDiedError creates a new channel died error
func NewChannelDiedError(op, stderr string, cause error) error {
	msg := "object reader process died"
	if stderr != "" {
		msg = fmt.Sprintf("object reader process died: %s", stderr)
	}
	return &ChannelDiedError{
		baseError: err.New(
			pkgName,
			CodeDied,
			op,
			msg,
			cause,
		),
		Stderr: stderr,
	}
}

// Error implements the error interface
func (e *ChannelDiedError) Error() string {
	return e.baseError.Error()
}

// Unwrap returns the underlying error
func (e *ChannelDiedError) Unwrap() error {
	return e.baseError
}
