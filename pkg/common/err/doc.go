// Package err provides the standardized error handling system for the project.
//
// # Design Principles
//
// 1. Consistency: All packages use the same base error structure
// 2. Context: Errors carry package, operation, and code information
// 3. Wrapping: Full support for Go 1.13+ error wrapping with errors.Is/As
// 4. Categorization: Machine-readable error codes enable programmatic handling
// 5. Performance: Minimal allocations with lazy context initialization
//
// # Usage Patterns
//
// ## Creating Package-Specific Errors
//
// Each package should define its own error types that embed err.Error:
//
//	type MissingObjectError struct {
//	    *err.Error
//	    Hash string
//	}
//
//	func NewMissingObjectError(hash string) *MissingObjectError {
//	    return &MissingObjectError{
//	        Error: err.New("catfile", err.CodeNotFound, "cat_file", "", nil),
//	        Hash:  hash,
//	    }
//	}
//
// ## Defining Package Constants
//
// Define package name and error codes as constants:
//
//	const (
//	    pkgName = "refs"
//	    CodeStaleExpectation = "STALE_EXPECTATION"
//	)
//
// ## Error Checking
//
// Use standard Go error checking patterns:
//
//	if err.IsCode(e, err.CodeNotFound) {
//	    // treat as the create case
//	}
//
//	var missing *catfile.MissingObjectError
//	if errors.As(e, &missing) {
//	    // access missing.Hash
//	}
//
// ## Adding Context
//
// Add structured context to errors:
//
//	e := err.New("difftree", err.CodeProtocol, "diff_trees", "truncated response", nil)
//	e.WithContext("args", args).WithContext("bytes_read", n)
//
// # Error Codes
//
// Standard error codes are provided as constants (CodeNotFound, CodeProtocol,
// CodeChannelDied, etc.). Packages can define additional codes as needed,
// following the UPPER_SNAKE_CASE convention.
package err
