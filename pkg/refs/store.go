// Package refs reads and writes the repository's ref table with an
// in-memory cache and compare-and-swap transactions.
//
// Every write names the value it expects to replace, taken from the cache,
// so a concurrent writer that moved a ref underneath us makes the store
// reject the whole transaction instead of silently clobbering. The all-zero
// hash stands for "absent" in those expectations; no content hashes to forty
// zeros, so the sentinel cannot collide with a real value.
package refs

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"slices"
	"strings"

	"github.com/stackedgit/stackgit/pkg/common/logger"
	"github.com/stackedgit/stackgit/pkg/gitcmd"
	"github.com/stackedgit/stackgit/pkg/objects"
)

// Runner is the slice of the command facility the ref store needs.
// *gitcmd.Runner implements it.
type Runner interface {
	OutputLines(ctx context.Context, args []string, opts ...gitcmd.RunOption) ([]string, error)
	Run(ctx context.Context, args []string, opts ...gitcmd.RunOption) error
	RunInput(ctx context.Context, args []string, input []byte, opts ...gitcmd.RunOption) error
}

// CommitResolver turns ref targets into commit handles. The repository's
// commit cache implements it.
type CommitResolver interface {
	Commit(hash objects.ObjectHash) *objects.Commit
}

// Ref is one entry of the ref table.
type Ref struct {
	Name string
	Hash objects.ObjectHash
}

// RenamePair names a ref before and after a rename.
type RenamePair struct {
	Old string
	New string
}

// Update sets one ref to one commit inside a batch.
type Update struct {
	Name   string
	Target *objects.Commit
}

// Batch collects the operations of one atomic transaction.
type Batch struct {
	Creates []Update
	Updates []Update
	Deletes []string
}

func (b Batch) empty() bool {
	return len(b.Creates) == 0 && len(b.Updates) == 0 && len(b.Deletes) == 0
}

// refPattern matches one show-ref output line: "<hash> <name>".
var refPattern = regexp.MustCompile(`^([0-9a-f]{40})\s+(\S+)$`)

// Store caches the ref table and applies changes through compare-and-swap
// transactions. Not safe for concurrent use; a Repository is a
// single-threaded affair and its Store inherits that.
type Store struct {
	run     Runner
	resolve CommitResolver
	log     *slog.Logger

	// cache is nil until the table is loaded; ResetCache returns it to nil
	cache map[string]objects.ObjectHash
}

// NewStore creates a Store reading and writing refs through run.
func NewStore(run Runner, resolve CommitResolver) *Store {
	return &Store{
		run:     run,
		resolve: resolve,
		log:     logger.Component("refs"),
	}
}

// ensureCache builds the ref table if this generation has not loaded it yet.
func (s *Store) ensureCache(ctx context.Context) {
	if s.cache != nil {
		return
	}
	s.cache = make(map[string]objects.ObjectHash)

	lines, listErr := s.run.OutputLines(ctx, []string{"show-ref"}, gitcmd.DiscardStderr())
	if listErr != nil {
		// show-ref fails in a repository with no refs at all; an empty
		// table is the right answer for that
		s.log.Debug("ref listing unavailable", "error", listErr)
		return
	}
	for _, line := range lines {
		m := refPattern.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		s.cache[m[2]] = objects.ObjectHash(m[1])
	}
}

// ResetCache drops the cached table so the next access rebuilds it.
// Needed after external commands move refs behind the store's back.
func (s *Store) ResetCache() {
	s.cache = nil
}

// Get returns the commit the ref points to, or a NotFoundError.
func (s *Store) Get(ctx context.Context, name string) (*objects.Commit, error) {
	s.ensureCache(ctx)
	hash, ok := s.cache[name]
	if !ok {
		return nil, NewNotFoundError(name)
	}
	return s.resolve.Commit(hash), nil
}

// Exists reports whether the ref is present.
func (s *Store) Exists(ctx context.Context, name string) bool {
	s.ensureCache(ctx)
	_, ok := s.cache[name]
	return ok
}

// List returns the refs whose names start with prefix, sorted by name.
// An empty prefix lists everything.
func (s *Store) List(ctx context.Context, prefix string) []Ref {
	s.ensureCache(ctx)
	out := make([]Ref, 0, len(s.cache))
	for name, hash := range s.cache {
		if strings.HasPrefix(name, prefix) {
			out = append(out, Ref{Name: name, Hash: hash})
		}
	}
	slices.SortFunc(out, func(a, b Ref) int {
		return strings.Compare(a.Name, b.Name)
	})
	return out
}

// Set points the ref at the commit. Setting a ref to the value it already
// has is a no-op and issues no transaction; otherwise the write carries the
// cached value as its expected-old, creating the ref if it was absent.
func (s *Store) Set(ctx context.Context, name string, commit *objects.Commit, msg string) error {
	s.ensureCache(ctx)

	oldHash, ok := s.cache[name]
	if !ok {
		oldHash = objects.ZeroHash()
	}
	newHash := commit.Hash()
	if oldHash == newHash {
		return nil
	}

	s.log.Debug("ref transaction", "op", "set", "ref", name, "new", newHash.Short())
	args := []string{"update-ref", "-m", msg, name, newHash.String(), oldHash.String()}
	if txErr := s.run.Run(ctx, args); txErr != nil {
		return NewTransactionError("set", name, txErr)
	}
	s.cache[name] = newHash
	return nil
}

// Delete removes the ref, expecting it to still hold the cached value.
// A ref the cache does not know is a NotFoundError.
func (s *Store) Delete(ctx context.Context, name string) error {
	s.ensureCache(ctx)

	hash, ok := s.cache[name]
	if !ok {
		return NewNotFoundError(name)
	}

	s.log.Debug("ref transaction", "op", "delete", "ref", name)
	if txErr := s.run.Run(ctx, []string{"update-ref", "-d", name, hash.String()}); txErr != nil {
		return NewTransactionError("delete", name, txErr)
	}
	delete(s.cache, name)
	return nil
}

// Rename moves each pair's old name to its new name in one transaction:
// every new ref is created at the old ref's value and the old ref deleted.
// Batch renames can shuffle names in ways an incremental cache update does
// not track, so the whole cache is invalidated afterwards.
func (s *Store) Rename(ctx context.Context, msg string, pairs ...RenamePair) error {
	s.ensureCache(ctx)

	var ops strings.Builder
	for _, pair := range pairs {
		hash, ok := s.cache[pair.Old]
		if !ok {
			return NewNotFoundError(pair.Old)
		}
		fmt.Fprintf(&ops, "create %s %s\n", pair.New, hash)
		fmt.Fprintf(&ops, "delete %s %s\n", pair.Old, hash)
	}
	if ops.Len() == 0 {
		return nil
	}

	s.log.Debug("ref transaction", "op", "rename", "pairs", len(pairs))
	args := []string{"update-ref", "-m", msg, "--stdin"}
	if txErr := s.run.RunInput(ctx, args, []byte(ops.String())); txErr != nil {
		return NewTransactionError("rename", "", txErr)
	}
	s.ResetCache()
	return nil
}

// BatchUpdate applies creates, updates and deletes as one transaction.
// Updates and deletes carry the cached value as their expected-old; if any
// expectation is stale the store rejects the entire batch and no ref moves.
// On success the cache follows the transaction entry by entry.
func (s *Store) BatchUpdate(ctx context.Context, msg string, batch Batch) error {
	if batch.empty() {
		return nil
	}
	s.ensureCache(ctx)

	var ops strings.Builder
	for _, c := range batch.Creates {
		fmt.Fprintf(&ops, "create %s %s\n", c.Name, c.Target.Hash())
	}
	for _, u := range batch.Updates {
		oldHash, ok := s.cache[u.Name]
		if !ok {
			return NewNotFoundError(u.Name)
		}
		fmt.Fprintf(&ops, "update %s %s %s\n", u.Name, u.Target.Hash(), oldHash)
	}
	for _, name := range batch.Deletes {
		oldHash, ok := s.cache[name]
		if !ok {
			return NewNotFoundError(name)
		}
		fmt.Fprintf(&ops, "delete %s %s\n", name, oldHash)
	}

	s.log.Debug("ref transaction", "op", "batch",
		"creates", len(batch.Creates),
		"updates", len(batch.Updates),
		"deletes", len(batch.Deletes))
	args := []string{"update-ref", "-m", msg, "--stdin"}
	if txErr := s.run.RunInput(ctx, args, []byte(ops.String())); txErr != nil {
		return NewTransactionError("batch-update", "", txErr)
	}

	for _, c := range batch.Creates {
		s.cache[c.Name] = c.Target.Hash()
	}
	for _, u := range batch.Updates {
		s.cache[u.Name] = u.Target.Hash()
	}
	for _, name := range batch.Deletes {
		delete(s.cache, name)
	}
	return nil
}
