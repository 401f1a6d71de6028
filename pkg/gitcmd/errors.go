package gitcmd

import (
	"fmt"
	"strings"
)

// ExecError is returned when a command exits with a code outside the allowed
// set or cannot be run at all. Callers pick it apart with errors.As when they
// need the exit code or the captured stderr.
type ExecError struct {
	// Args is the full argv, including the leading "git".
	Args []string

	// ExitCode is the code the command exited with, or -1 if it never ran.
	ExitCode int

	// Stderr is the captured standard error output.
	Stderr string

	// Err is the underlying error from the execution.
	Err error
}

// Error implements the error interface.
func (e *ExecError) Error() string {
	cmd := strings.Join(e.Args, " ")
	msg := strings.TrimSpace(e.Stderr)
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if msg == "" {
		return fmt.Sprintf("%s: exit code %d", cmd, e.ExitCode)
	}
	return fmt.Sprintf("%s: exit code %d: %s", cmd, e.ExitCode, msg)
}

// Unwrap returns the underlying error.
func (e *ExecError) Unwrap() error {
	return e.Err
}
