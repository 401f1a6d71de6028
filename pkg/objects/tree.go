package objects

import (
	"bytes"
	"fmt"
	"sync"
)

// TreeEntry represents a single entry in a tree object.
//
// Each entry contains:
// - Mode: entry type and permissions (octal in the raw payload)
// - Name: file or directory name
// - Hash: hash of the referenced object
//
// Entry types by mode:
// - 040000: Directory (tree object)
// - 100644: Regular file (blob object)
// - 100755: Executable file (blob object)
// - 120000: Symbolic link (blob object)
// - 160000: Submodule (commit object)
//
// Raw payload format per entry:
// [octal mode] [space] [name] [null byte] [20-byte binary hash]
// where directory modes appear without the leading zero ("40000").
type TreeEntry struct {
	Mode FileMode
	Name string
	Hash ObjectHash
}

// Kind returns the object kind the entry points at, derived from its mode.
func (e TreeEntry) Kind() ObjectKind {
	return e.Mode.EntryKind()
}

// IsSubmodule returns true if the entry is a gitlink paired with a
// commit-kind target.
func (e TreeEntry) IsSubmodule() bool {
	return e.Mode.IsGitlink()
}

// String returns a human-readable representation
func (e TreeEntry) String() string {
	return fmt.Sprintf("%s %s %s\t%s", e.Mode.ToOctalString(), e.Kind(), e.Hash, e.Name)
}

// TreeData is the parsed content of a tree object: its entries in the order
// the object stores them (a tree is an ordered set).
type TreeData struct {
	Entries []TreeEntry
}

// Entry returns the entry with the given name, or false when absent.
func (d *TreeData) Entry(name string) (TreeEntry, bool) {
	for _, e := range d.Entries {
		if e.Name == name {
			return e, true
		}
	}
	return TreeEntry{}, false
}

// Tree is a handle to a tree object. Like Blob, the handle is cheap; the
// entry list is fetched and parsed on first access and memoized.
type Tree struct {
	hash ObjectHash
	src  Source

	once sync.Once
	data *TreeData
	err  error
}

// NewTree creates a tree handle for the given hash.
func NewTree(src Source, hash ObjectHash) *Tree {
	return &Tree{hash: hash, src: src}
}

// Hash returns the tree's content hash.
func (t *Tree) Hash() ObjectHash {
	return t.hash
}

// Kind returns KindTree.
func (t *Tree) Kind() ObjectKind {
	return KindTree
}

// Data returns the tree's parsed entries, fetching them on first call.
func (t *Tree) Data() (*TreeData, error) {
	t.once.Do(func() {
		content, err := readKind(t.src, t.hash, KindTree)
		if err != nil {
			t.err = err
			return
		}
		t.data, t.err = ParseTreeData(content)
	})
	return t.data, t.err
}

// Equal reports whether two trees name the same object. Content addressing
// makes hash equality content equality.
func (t *Tree) Equal(other *Tree) bool {
	return other != nil && t.hash == other.hash
}

// String returns a human-readable representation
func (t *Tree) String() string {
	return fmt.Sprintf("Tree<%s>", t.hash.Short())
}

// ParseTreeData parses a raw tree payload into entries.
func ParseTreeData(content []byte) (*TreeData, error) {
	data := &TreeData{}
	offset := 0
	for offset < len(content) {
		entry, next, err := parseTreeEntry(content, offset)
		if err != nil {
			return nil, err
		}
		data.Entries = append(data.Entries, entry)
		offset = next
	}
	return data, nil
}

// parseTreeEntry decodes one entry starting at offset and returns the offset
// just past it.
func parseTreeEntry(data []byte, offset int) (TreeEntry, int, error) {
	spaceIndex := bytes.IndexByte(data[offset:], SpaceByte)
	if spaceIndex == -1 {
		return TreeEntry{}, 0, fmt.Errorf("invalid tree entry: missing space")
	}
	spaceIndex += offset

	mode, err := ParseFileMode(string(data[offset:spaceIndex]))
	if err != nil {
		return TreeEntry{}, 0, fmt.Errorf("invalid tree entry: %w", err)
	}

	nullIndex := bytes.IndexByte(data[spaceIndex+1:], NullByte)
	if nullIndex == -1 {
		return TreeEntry{}, 0, fmt.Errorf("invalid tree entry: missing null byte")
	}
	nullIndex += spaceIndex + 1

	name := string(data[spaceIndex+1 : nullIndex])
	if name == "" {
		return TreeEntry{}, 0, fmt.Errorf("invalid tree entry: empty name")
	}

	start := nullIndex + 1
	end := start + RawHashLength
	if end > len(data) {
		return TreeEntry{}, 0, fmt.Errorf("invalid tree entry: incomplete hash")
	}

	var raw RawHash
	copy(raw[:], data[start:end])

	return TreeEntry{
		Mode: mode,
		Name: name,
		Hash: raw.Hash(),
	}, end, nil
}
