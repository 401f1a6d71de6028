package objects

import (
	"fmt"
	"strings"
	"sync"
)

// CommitData is the parsed content of a commit object.
//
// Commit payload structure:
// ┌─────────────────────────────────────────────────────────────────┐
// │ "tree" SPACE tree-hash LF                                       │
// │ "parent" SPACE parent-hash LF (zero or more)                    │
// │ "author" SPACE name SPACE email SPACE timestamp SPACE tz LF     │
// │ "committer" SPACE name SPACE email SPACE timestamp SPACE tz LF  │
// │ (other headers, possibly with indented continuation lines)      │
// │ LF                                                              │
// │ commit-message                                                  │
// └─────────────────────────────────────────────────────────────────┘
//
// Commits form a DAG: most have one parent, merges have several, and the
// initial commit has none. Headers this layer does not interpret (gpgsig,
// encoding, mergetag) are skipped rather than rejected, since real stores
// produce them.
type CommitData struct {
	TreeHash  ObjectHash
	Parents   []ObjectHash
	Author    Person
	Committer Person
	Message   string
}

// IsInitial returns true if the commit has no parents.
func (d *CommitData) IsInitial() bool {
	return len(d.Parents) == 0
}

// IsMerge returns true if the commit has multiple parents.
func (d *CommitData) IsMerge() bool {
	return len(d.Parents) > 1
}

// Subject returns the first line of the commit message.
func (d *CommitData) Subject() string {
	if i := strings.IndexByte(d.Message, '\n'); i >= 0 {
		return d.Message[:i]
	}
	return d.Message
}

// Commit is a handle to a commit object; content is fetched and parsed on
// first access and memoized.
type Commit struct {
	hash ObjectHash
	src  Source

	once sync.Once
	data *CommitData
	err  error
}

// NewCommit creates a commit handle for the given hash.
func NewCommit(src Source, hash ObjectHash) *Commit {
	return &Commit{hash: hash, src: src}
}

// Hash returns the commit's content hash.
func (c *Commit) Hash() ObjectHash {
	return c.hash
}

// Kind returns KindCommit.
func (c *Commit) Kind() ObjectKind {
	return KindCommit
}

// Data returns the commit's parsed content, fetching it on first call.
func (c *Commit) Data() (*CommitData, error) {
	c.once.Do(func() {
		content, err := readKind(c.src, c.hash, KindCommit)
		if err != nil {
			c.err = err
			return
		}
		c.data, c.err = ParseCommitData(content)
	})
	return c.data, c.err
}

// Equal reports whether two commits name the same object.
func (c *Commit) Equal(other *Commit) bool {
	return other != nil && c.hash == other.hash
}

// String returns a human-readable representation
func (c *Commit) String() string {
	return fmt.Sprintf("Commit<%s>", c.hash.Short())
}

// ParseCommitData parses a raw commit payload.
func ParseCommitData(content []byte) (*CommitData, error) {
	lines := strings.Split(string(content), "\n")
	data := &CommitData{}

	messageStart := len(lines)
	for i := 0; i < len(lines); i++ {
		line := lines[i]
		if line == "" {
			messageStart = i + 1
			break
		}
		if strings.HasPrefix(line, " ") {
			// continuation of a skipped multi-line header (e.g. gpgsig)
			continue
		}
		if err := parseCommitLine(data, line); err != nil {
			return nil, err
		}
	}

	if err := data.validate(); err != nil {
		return nil, fmt.Errorf("invalid commit: %w", err)
	}

	if messageStart < len(lines) {
		data.Message = strings.Join(lines[messageStart:], "\n")
	}

	return data, nil
}

// parseCommitLine parses a single header line into data.
func parseCommitLine(data *CommitData, line string) error {
	key, value, found := strings.Cut(line, " ")
	if !found {
		return fmt.Errorf("malformed commit header line: %q", line)
	}

	switch key {
	case "tree":
		if data.TreeHash != "" {
			return fmt.Errorf("multiple tree entries found")
		}
		hash, err := ParseObjectHash(value)
		if err != nil {
			return fmt.Errorf("invalid tree hash: %w", err)
		}
		data.TreeHash = hash

	case "parent":
		hash, err := ParseObjectHash(value)
		if err != nil {
			return fmt.Errorf("invalid parent hash: %w", err)
		}
		data.Parents = append(data.Parents, hash)

	case "author":
		person, err := ParsePerson(value)
		if err != nil {
			return fmt.Errorf("invalid author: %w", err)
		}
		data.Author = person

	case "committer":
		person, err := ParsePerson(value)
		if err != nil {
			return fmt.Errorf("invalid committer: %w", err)
		}
		data.Committer = person

	default:
		// gpgsig, encoding, mergetag and friends: not ours to interpret
	}

	return nil
}

func (d *CommitData) validate() error {
	if d.TreeHash == "" {
		return fmt.Errorf("tree hash is required")
	}
	if d.Author.Name == "" && d.Author.Email == "" {
		return fmt.Errorf("author is required")
	}
	if d.Committer.Name == "" && d.Committer.Email == "" {
		return fmt.Errorf("committer is required")
	}
	return nil
}
