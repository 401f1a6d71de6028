// Package index drives git index files: the repository's own staging area
// and the disposable temporary indexes used as scratch space for tree
// surgery. Load a tree, apply a patch or a tree diff, write the result back
// as a new tree, throw the index file away — nothing here touches a working
// copy unless it goes through IndexAndWorktree.
//
// Every Index owns a derived command runner with GIT_INDEX_FILE spliced
// into the environment, so concurrent operations on different index files
// never step on each other.
package index

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync/atomic"

	"github.com/stackedgit/stackgit/pkg/common/err"
	"github.com/stackedgit/stackgit/pkg/common/fileops"
	"github.com/stackedgit/stackgit/pkg/common/logger"
	"github.com/stackedgit/stackgit/pkg/gitcmd"
	"github.com/stackedgit/stackgit/pkg/objects"
)

// Runner is the slice of the command facility the index layer drives. A
// *gitcmd.Runner carrying GIT_INDEX_FILE satisfies it.
type Runner interface {
	Output(ctx context.Context, args []string, opts ...gitcmd.RunOption) ([]byte, error)
	OutputLine(ctx context.Context, args []string, opts ...gitcmd.RunOption) (string, error)
	OutputLines(ctx context.Context, args []string, opts ...gitcmd.RunOption) ([]string, error)
	Run(ctx context.Context, args []string, opts ...gitcmd.RunOption) error
	RunInput(ctx context.Context, args []string, input []byte, opts ...gitcmd.RunOption) error
}

// TreeResolver turns tree hashes into handles. The repository's tree cache
// implements it.
type TreeResolver interface {
	Tree(hash objects.ObjectHash) *objects.Tree
}

// TreeDiffer produces the patch between two trees with full object hashes
// in the headers. The repository implements it over its pooled diff
// channels, which is why there is no context: framed streaming exchanges
// are not cancellable mid-flight.
type TreeDiffer interface {
	FullIndexDiff(t1, t2 *objects.Tree) ([]byte, error)
}

// Index is a handle to one git index file. The file itself may not exist
// yet; read-tree creates it.
type Index struct {
	run      Runner
	trees    TreeResolver
	diff     TreeDiffer
	filename string
	log      *slog.Logger
}

// tempSeq distinguishes temporary index names created by this process.
var tempSeq atomic.Uint64

// New creates an Index over the given index file. The index derives its own
// runner from base with GIT_INDEX_FILE set, so every command it issues acts
// on this file and no other.
func New(base *gitcmd.Runner, trees TreeResolver, diff TreeDiffer, filename string) *Index {
	return &Index{
		run:      base.Extend(map[string]string{"GIT_INDEX_FILE": filename}),
		trees:    trees,
		diff:     diff,
		filename: filename,
		log:      logger.Component("index"),
	}
}

// NewTemp creates a disposable index with a unique name inside dir,
// removing any leftover file from a previous run. The caller owns the file
// and must Delete it on every path out of the operation.
func NewTemp(base *gitcmd.Runner, trees TreeResolver, diff TreeDiffer, dir string) *Index {
	name := filepath.Join(dir, fmt.Sprintf("index.temp-%d-%x", os.Getpid(), tempSeq.Add(1)))
	idx := New(base, trees, diff, name)
	fileops.SafeRemove(name)
	idx.log.Debug("temporary index created", "file", name)
	return idx
}

// Filename returns the path of the underlying index file.
func (i *Index) Filename() string {
	return i.filename
}

// ReadTree loads the given tree into the index, replacing whatever was
// there.
func (i *Index) ReadTree(ctx context.Context, tree *objects.Tree) error {
	return err.Wrap(
		i.run.Run(ctx, []string{"read-tree", tree.Hash().String()}),
		pkgName, "read_tree")
}

// WriteTree writes the index contents to the object store and returns the
// resulting tree. An index holding unmerged stages cannot be written; that
// refusal comes back as a MergeError, not a transport failure.
func (i *Index) WriteTree(ctx context.Context) (*objects.Tree, error) {
	line, runErr := i.run.OutputLine(ctx, []string{"write-tree"}, gitcmd.DiscardStderr())
	if runErr != nil {
		return nil, NewMergeError("write_tree", "conflicting merge", runErr)
	}
	hash, parseErr := objects.ParseObjectHash(line)
	if parseErr != nil {
		return nil, err.WrapWithCode(parseErr, pkgName, err.CodeInvalidFormat, "write_tree")
	}
	return i.trees.Tree(hash), nil
}

// IsClean reports whether the index matches the given tree exactly.
func (i *Index) IsClean(ctx context.Context, tree *objects.Tree) bool {
	quietErr := i.run.Run(ctx,
		[]string{"diff-index", "--quiet", "--cached", tree.Hash().String()},
		gitcmd.DiscardStderr())
	return quietErr == nil
}

// Apply applies a patch to the index alone, no worktree involved. A patch
// the content refuses is an ApplyError; quiet suppresses the child's
// complaints about it.
func (i *Index) Apply(ctx context.Context, patch []byte, quiet bool) error {
	var opts []gitcmd.RunOption
	if quiet {
		opts = append(opts, gitcmd.DiscardStderr())
	}
	if applyErr := i.run.RunInput(ctx, []string{"apply", "--cached"}, patch, opts...); applyErr != nil {
		return NewApplyError("apply", applyErr)
	}
	return nil
}

// ApplyTreeDiff applies the diff from t1 to t2 to the index. The diff is
// taken with full object hashes, which is necessary and sufficient for
// binary changes: the objects are already in the store, so the patch only
// has to name them.
func (i *Index) ApplyTreeDiff(ctx context.Context, t1, t2 *objects.Tree, quiet bool) error {
	patch, diffErr := i.diff.FullIndexDiff(t1, t2)
	if diffErr != nil {
		return diffErr
	}
	return i.Apply(ctx, patch, quiet)
}

// Merge three-way merges base, ours and theirs using only the index.
// current names the tree the index is known to hold right now, or nil when
// unknown; passing it lets trivial merges skip the read-tree entirely.
//
// The first return value is the merged tree, nil when the merge could not
// be resolved automatically — an expected outcome, not an error. The second
// is the tree the index holds after the call, nil when indeterminate.
func (i *Index) Merge(ctx context.Context, base, ours, theirs, current *objects.Tree) (*objects.Tree, *objects.Tree, error) {
	// Trivial cases need no index at all.
	switch {
	case base.Equal(ours):
		return theirs, current, nil
	case base.Equal(theirs), ours.Equal(theirs):
		return ours, current, nil
	}

	if theirs.Equal(current) {
		// Merge into the tree already in the index rather than the
		// other way around; three-way merging is symmetric.
		ours, theirs = theirs, ours
	}
	if !ours.Equal(current) {
		if readErr := i.ReadTree(ctx, ours); readErr != nil {
			return nil, nil, readErr
		}
		current = ours
	}

	if applyErr := i.ApplyTreeDiff(ctx, base, theirs, true); applyErr != nil {
		if IsMergeFailure(applyErr) {
			i.log.Debug("index merge not resolvable", "reason", "treediff refused")
			return nil, current, nil
		}
		return nil, current, applyErr
	}
	result, writeErr := i.WriteTree(ctx)
	if writeErr != nil {
		if IsMergeFailure(writeErr) {
			i.log.Debug("index merge not resolvable", "reason", "conflicting merge")
			return nil, current, nil
		}
		return nil, current, writeErr
	}
	return result, result, nil
}

// Delete removes the index file if it exists.
func (i *Index) Delete() error {
	return fileops.SafeRemove(i.filename)
}

// Conflicts returns the paths with unmerged index entries, sorted and
// without duplicates.
func (i *Index) Conflicts(ctx context.Context) ([]string, error) {
	lines, listErr := i.run.OutputLines(ctx,
		[]string{"ls-files", "-z", "--unmerged"},
		gitcmd.NullTerminated())
	if listErr != nil {
		return nil, listErr
	}
	// Each conflicting path appears once per stage; collapse them.
	seen := make(map[string]bool)
	var paths []string
	for _, line := range lines {
		_, path, found := strings.Cut(line, "\t")
		if !found || seen[path] {
			continue
		}
		seen[path] = true
		paths = append(paths, path)
	}
	slices.Sort(paths)
	return paths, nil
}
