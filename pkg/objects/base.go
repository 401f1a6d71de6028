package objects

import (
	"fmt"
)

// ObjectKind represents the kind of object stored in the object database.
type ObjectKind string

const (
	KindBlob   ObjectKind = "blob"
	KindTree   ObjectKind = "tree"
	KindCommit ObjectKind = "commit"
	KindTag    ObjectKind = "tag"
)

const (
	NullByte  = byte(0)
	SpaceByte = byte(' ')
)

// String implements the Stringer interface
func (k ObjectKind) String() string {
	return string(k)
}

// ParseObjectKind converts a string (as reported by the object store, e.g.
// in a cat-file response header) to an ObjectKind.
func ParseObjectKind(s string) (ObjectKind, error) {
	switch ObjectKind(s) {
	case KindBlob, KindTree, KindCommit, KindTag:
		return ObjectKind(s), nil
	default:
		return "", fmt.Errorf("unknown object kind: %s", s)
	}
}

// Source supplies raw object content by hash. The repository's streaming
// object reader implements it; handles use it to fetch their content on
// first access.
type Source interface {
	// ReadObject returns the kind and raw content bytes of the object.
	// A hash the store does not have yields a not-found error.
	ReadObject(hash ObjectHash) (ObjectKind, []byte, error)
}

// Object is the surface all object handles share. Blob, Tree and Commit
// implement it; revision lookup returns it when the caller picks the kind
// at runtime.
type Object interface {
	Hash() ObjectHash
	Kind() ObjectKind
}

// readKind fetches an object through src and checks it has the wanted kind.
func readKind(src Source, hash ObjectHash, want ObjectKind) ([]byte, error) {
	kind, content, err := src.ReadObject(hash)
	if err != nil {
		return nil, err
	}
	if kind != want {
		return nil, fmt.Errorf("object %s is a %s, not a %s", hash, kind, want)
	}
	return content, nil
}
