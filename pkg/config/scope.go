package config

import "github.com/stackedgit/stackgit/pkg/common/err"

// Scope names one of git's configuration files. Ordered by precedence,
// highest first.
type Scope int

const (
	// ScopeLocal is the repository's own configuration (highest precedence)
	ScopeLocal Scope = iota

	// ScopeGlobal is the user's configuration (~/.gitconfig or the XDG file)
	ScopeGlobal

	// ScopeSystem is the machine-wide configuration (lowest precedence)
	ScopeSystem
)

// scopes lists every scope in precedence order.
var scopes = []Scope{ScopeLocal, ScopeGlobal, ScopeSystem}

// String returns the scope's name.
func (s Scope) String() string {
	switch s {
	case ScopeLocal:
		return "local"
	case ScopeGlobal:
		return "global"
	case ScopeSystem:
		return "system"
	default:
		return "unknown"
	}
}

// Flag returns the git-config flag selecting this scope.
func (s Scope) Flag() string {
	return "--" + s.String()
}

// IsValid returns true if the scope is one git knows.
func (s Scope) IsValid() bool {
	return s >= ScopeLocal && s <= ScopeSystem
}

// ParseScope converts a scope name to a Scope.
func ParseScope(name string) (Scope, error) {
	switch name {
	case "local":
		return ScopeLocal, nil
	case "global":
		return ScopeGlobal, nil
	case "system":
		return ScopeSystem, nil
	default:
		return 0, err.New(pkgName, CodeInvalidScope, "parse_scope",
			"no such config scope '"+name+"'", nil)
	}
}
