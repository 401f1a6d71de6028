package objects

import (
	"fmt"
	"sync"
)

// Blob is a handle to a blob object: opaque byte content addressed by hash.
//
// The handle is cheap to create; content is fetched from the object store on
// first access and memoized. Blobs are immutable, so the memoized content can
// never go stale.
type Blob struct {
	hash ObjectHash
	src  Source

	once sync.Once
	data []byte
	err  error
}

// NewBlob creates a blob handle for the given hash. No I/O happens until
// Data is called.
func NewBlob(src Source, hash ObjectHash) *Blob {
	return &Blob{hash: hash, src: src}
}

// Hash returns the blob's content hash.
func (b *Blob) Hash() ObjectHash {
	return b.hash
}

// Kind returns KindBlob.
func (b *Blob) Kind() ObjectKind {
	return KindBlob
}

// Data returns the blob's content, fetching it on first call.
func (b *Blob) Data() ([]byte, error) {
	b.once.Do(func() {
		b.data, b.err = readKind(b.src, b.hash, KindBlob)
	})
	return b.data, b.err
}

// String returns a human-readable representation
func (b *Blob) String() string {
	return fmt.Sprintf("Blob<%s>", b.hash.Short())
}
