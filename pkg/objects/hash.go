package objects

import (
	"encoding/hex"
	"fmt"
	"strings"
)

// ObjectHash represents the SHA-1 name of an object (40-character hex string)
// Example: "e69de29bb2d1d6434b8b29ae775ad8c2e48c5391"
//
// Hashes are produced by the object store, never computed here; equality is
// byte equality and hashes are used as map keys throughout.
type ObjectHash string

// RawHash represents a hash as a 20-byte array, the form used inside raw
// tree object payloads.
type RawHash [20]byte

const (
	// HashLength is the length of a full hash in hex (40 characters)
	HashLength = 40
	// ShortHashLength is the default length for abbreviated hashes (7 characters)
	ShortHashLength = 7
	// RawHashLength is the length of a hash in bytes (20 bytes)
	RawHashLength = 20
)

// ZeroHash returns the all-zero hash. 40 zero digits is not the hash of any
// content, so the plumbing layer uses it as the canonical "does not exist"
// sentinel, most importantly as the expected-old-value of a ref that is being
// created.
func ZeroHash() ObjectHash {
	return ObjectHash("0000000000000000000000000000000000000000")
}

// NewObjectHashFromRaw creates an ObjectHash from a 20-byte array
func NewObjectHashFromRaw(raw RawHash) ObjectHash {
	return ObjectHash(hex.EncodeToString(raw[:]))
}

// ParseObjectHash creates an ObjectHash from a hex string.
// Returns an error if the string is not a valid hash.
func ParseObjectHash(s string) (ObjectHash, error) {
	hash := ObjectHash(strings.ToLower(s))
	if err := hash.Validate(); err != nil {
		return "", err
	}
	return hash, nil
}

// String returns the hash as a string
func (h ObjectHash) String() string {
	return string(h)
}

// IsValid returns true if this is a valid hash
func (h ObjectHash) IsValid() bool {
	return h.Validate() == nil
}

// Validate checks if the hash is valid
func (h ObjectHash) Validate() error {
	if len(h) != HashLength {
		return fmt.Errorf("hash must be %d characters long, got %d", HashLength, len(h))
	}

	for _, c := range h {
		if !isHexChar(c) {
			return fmt.Errorf("hash must contain only hex characters, found '%c'", c)
		}
	}

	return nil
}

// IsZero returns true if this is the zero hash
func (h ObjectHash) IsZero() bool {
	return h == ZeroHash()
}

// Short returns the abbreviated version of the hash
func (h ObjectHash) Short() string {
	if len(h) >= ShortHashLength {
		return string(h[:ShortHashLength])
	}
	return string(h)
}

// Bytes returns the hash as a byte slice (decoded from hex)
func (h ObjectHash) Bytes() ([]byte, error) {
	if err := h.Validate(); err != nil {
		return nil, err
	}
	return hex.DecodeString(string(h))
}

// Equal compares two hashes for equality (case-insensitive)
func (h ObjectHash) Equal(other ObjectHash) bool {
	return strings.EqualFold(string(h), string(other))
}

// MarshalText implements encoding.TextMarshaler
func (h ObjectHash) MarshalText() ([]byte, error) {
	return []byte(h), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (h *ObjectHash) UnmarshalText(text []byte) error {
	hash, err := ParseObjectHash(string(text))
	if err != nil {
		return err
	}
	*h = hash
	return nil
}

// Hash converts RawHash to ObjectHash
func (rh RawHash) Hash() ObjectHash {
	return NewObjectHashFromRaw(rh)
}

// String returns the hash as a hex string
func (rh RawHash) String() string {
	return hex.EncodeToString(rh[:])
}

// IsZero returns true if this is a zero hash
func (rh RawHash) IsZero() bool {
	for _, b := range rh {
		if b != 0 {
			return false
		}
	}
	return true
}

// isHexChar returns true if the character is a valid hex character
func isHexChar(c rune) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}
