package objects

import (
	"fmt"
	"strconv"
)

// FileMode represents a tree entry mode (type + permissions).
// The object store encodes the entry type in the upper 4 bits and the
// permission bits below; this type gives tree and diff handling a type-safe
// way to work with them.
type FileMode uint32

// File mode constants as they appear in trees and diff records
const (
	FileModeTypeMask FileMode = 0xF000 // Upper 4 bits (bits 12-15)
	FileModePermMask FileMode = 0x01FF // Lower 9 bits (permissions)
	FileModeExecMask FileMode = 0x0049 // Execute bits (owner/group/other)

	// File type values (after shifting right by 12 bits)
	FileModeTypeRegular FileMode = 0x8000 // 0b1000 << 12 - Regular file
	FileModeTypeSymlink FileMode = 0xA000 // 0b1010 << 12 - Symbolic link
	FileModeTypeGitlink FileMode = 0xE000 // 0b1110 << 12 - Gitlink (submodule)
	FileModeTypeDir     FileMode = 0x0000 // 0b0000 << 12 - Directory

	// Common mode values
	FileModeRegular    FileMode = 0o100644 // Regular file, rw-r--r--
	FileModeExecutable FileMode = 0o100755 // Executable file, rwxr-xr-x
	FileModeSymlink    FileMode = 0o120000 // Symbolic link
	FileModeGitlink    FileMode = 0o160000 // Gitlink: mode that marks a submodule,
	// always paired with a commit-kind target
	FileModeDirectory FileMode = 0o040000 // Directory (tree entry)

	// FileModeAbsent is the all-zero mode diff records use for the missing
	// side of an addition or deletion.
	FileModeAbsent FileMode = 0
)

// Type returns the file type portion of the mode.
func (m FileMode) Type() FileMode {
	return m & FileModeTypeMask
}

// Permissions returns the permission bits.
func (m FileMode) Permissions() FileMode {
	return m & FileModePermMask
}

// IsRegular returns true if this is a regular file.
func (m FileMode) IsRegular() bool {
	return m != 0 && m.Type() == FileModeTypeRegular
}

// IsSymlink returns true if this is a symbolic link.
func (m FileMode) IsSymlink() bool {
	return m.Type() == FileModeTypeSymlink
}

// IsGitlink returns true if this is a gitlink (submodule).
func (m FileMode) IsGitlink() bool {
	return m.Type() == FileModeTypeGitlink
}

// IsDirectory returns true if this is a directory entry.
func (m FileMode) IsDirectory() bool {
	return m != 0 && m.Type() == FileModeTypeDir
}

// IsExecutable returns true if the file has execute permissions.
func (m FileMode) IsExecutable() bool {
	return (m & FileModeExecMask) != 0
}

// EntryKind returns the object kind a tree entry with this mode points at:
// commit for gitlinks, tree for directories, blob for everything else.
func (m FileMode) EntryKind() ObjectKind {
	switch {
	case m.IsGitlink():
		return KindCommit
	case m.IsDirectory():
		return KindTree
	default:
		return KindBlob
	}
}

// String returns a human-readable representation of the file mode.
func (m FileMode) String() string {
	switch m.Type() {
	case FileModeTypeRegular:
		return fmt.Sprintf("regular(%o)", m.Permissions())
	case FileModeTypeSymlink:
		return "symlink"
	case FileModeTypeGitlink:
		return "gitlink"
	case FileModeTypeDir:
		if m == FileModeAbsent {
			return "absent"
		}
		return "directory"
	default:
		return fmt.Sprintf("unknown(%o)", uint32(m))
	}
}

// ToOctalString returns the mode as a six-digit octal string (e.g. "100644",
// "040000"), the form used by diff records and ls-tree output.
func (m FileMode) ToOctalString() string {
	return fmt.Sprintf("%06o", uint32(m))
}

// ParseFileMode parses a mode from an octal string. Raw tree payloads write
// directory modes without the leading zero ("40000") while diff records pad
// to six digits ("040000"); both forms are accepted.
func ParseFileMode(s string) (FileMode, error) {
	mode, err := strconv.ParseUint(s, 8, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid mode string %q: %w", s, err)
	}
	return FileMode(mode), nil
}
