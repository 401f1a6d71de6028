package index

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/stackedgit/stackgit/pkg/common/err"
	"github.com/stackedgit/stackgit/pkg/gitcmd"
	"github.com/stackedgit/stackgit/pkg/objects"
)

// Worktree represents a checked-out file tree.
type Worktree struct {
	// Directory is the root of the working copy.
	Directory string
}

// Env returns the environment for commands that run inside the worktree
// directory.
func (w Worktree) Env() map[string]string {
	return map[string]string{"GIT_WORK_TREE": "."}
}

// EnvInCwd returns the environment for commands that stay in the caller's
// directory, so relative path limits keep their meaning.
func (w Worktree) EnvInCwd() map[string]string {
	return map[string]string{"GIT_WORK_TREE": w.Directory}
}

// Treeish names an object a checkout can target: a commit or a tree.
type Treeish interface {
	Hash() objects.ObjectHash
}

// IndexAndWorktree pairs an index with a working tree for the operations
// that need both: checkouts, worktree merges, patch application and the
// index refreshing that keeps diffs honest. Anything an index can do alone
// stays on Index.
type IndexAndWorktree struct {
	Index    *Index
	Worktree Worktree

	// run issues commands from the worktree root; runInCwd stays in the
	// caller's directory so relative path limits resolve as typed.
	run      Runner
	runInCwd Runner
}

// NewIndexAndWorktree pairs idx with worktree. Both derived runners carry
// the index's GIT_INDEX_FILE.
func NewIndexAndWorktree(base *gitcmd.Runner, idx *Index, worktree Worktree) *IndexAndWorktree {
	indexEnv := map[string]string{"GIT_INDEX_FILE": idx.filename}
	return &IndexAndWorktree{
		Index:    idx,
		Worktree: worktree,
		run:      base.Extend(indexEnv).Extend(worktree.Env()).At(worktree.Directory),
		runInCwd: base.Extend(indexEnv).Extend(worktree.EnvInCwd()),
	}
}

// CheckoutHard resets the worktree and index to the given commit or tree,
// discarding local changes.
func (iw *IndexAndWorktree) CheckoutHard(ctx context.Context, target Treeish) error {
	return err.Wrap(
		iw.run.Run(ctx, []string{"read-tree", "--reset", "-u", target.Hash().String()}),
		pkgName, "checkout_hard")
}

// Checkout moves the worktree from oldTree to newTree, carrying local
// modifications along. When the index or worktree is dirty in a way the
// two-tree merge cannot absorb, it refuses rather than clobbering.
func (iw *IndexAndWorktree) Checkout(ctx context.Context, oldTree, newTree *objects.Tree) error {
	coErr := iw.run.Run(ctx, []string{
		"read-tree", "-u", "-m", "--exclude-per-directory=.gitignore",
		oldTree.Hash().String(), newTree.Hash().String(),
	})
	if coErr != nil {
		return NewCheckoutError(coErr)
	}
	return nil
}

// Merge runs a recursive merge against the index and worktree. Conflicts
// stay in the worktree for the user to resolve and come back as a
// ConflictError naming the paths; a dirty index or worktree is a
// MergeError.
func (iw *IndexAndWorktree) Merge(ctx context.Context, base, ours, theirs *objects.Tree) error {
	env := map[string]string{
		"GITHEAD_" + base.Hash().String():   "ancestor",
		"GITHEAD_" + ours.Hash().String():   "current",
		"GITHEAD_" + theirs.Hash().String(): "patched",
	}
	mergeErr := iw.run.Run(ctx, []string{
		"merge-recursive", base.Hash().String(), "--",
		ours.Hash().String(), theirs.Hash().String(),
	}, gitcmd.Env(env))
	if mergeErr == nil {
		return nil
	}
	var execErr *gitcmd.ExecError
	if errors.As(mergeErr, &execErr) && execErr.ExitCode == 1 {
		// Exit 1 means the merge ran but left conflicts; the unmerged
		// index entries name the paths.
		conflicts, confErr := iw.Index.Conflicts(ctx)
		if confErr != nil {
			return confErr
		}
		return NewConflictError(conflicts)
	}
	return NewMergeError("merge", "index/worktree dirty", mergeErr)
}

// LsFiles maps path limits, relative to the caller's directory, to the
// repository-root-relative files git tracks in the index or in the given
// tree. A limit matching nothing is an error.
func (iw *IndexAndWorktree) LsFiles(ctx context.Context, tree *objects.Tree, pathLimits []string) ([]string, error) {
	if len(pathLimits) == 0 {
		return nil, nil
	}
	args := []string{
		"ls-files", "-z", "--with-tree=" + tree.Hash().String(),
		"--error-unmatch", "--full-name", "--",
	}
	args = append(args, pathLimits...)
	lines, lsErr := iw.runInCwd.OutputLines(ctx, args, gitcmd.NullTerminated())
	if lsErr != nil {
		return nil, err.WrapWithCode(lsErr, pkgName, err.CodeInvalidInput, "ls_files")
	}
	return uniqueSorted(lines), nil
}

// DiffOptions adjust the output Diff produces.
type DiffOptions struct {
	// Stat produces a diffstat summary instead of a patch.
	Stat bool
	// NoBinary leaves binary deltas out of patch output.
	NoBinary bool
	// Extra is passed through to diff-index as-is.
	Extra []string
	// PathLimits restricts the diff to the given paths, relative to the
	// worktree root.
	PathLimits []string
}

// Diff returns the differences between the given tree and the worktree.
// The index is refreshed first so stale stat information cannot fake
// changes.
func (iw *IndexAndWorktree) Diff(ctx context.Context, tree *objects.Tree, opts DiffOptions) ([]byte, error) {
	if refreshErr := iw.RefreshIndex(ctx); refreshErr != nil {
		return nil, refreshErr
	}
	args := []string{"diff-index"}
	if opts.Stat {
		args = append(args, "--stat", "--summary")
		for _, o := range opts.Extra {
			if o != "--binary" {
				args = append(args, o)
			}
		}
	} else {
		args = append(args, "--patch")
		if !opts.NoBinary && !slices.Contains(opts.Extra, "--binary") {
			args = append(args, "--binary")
		}
		args = append(args, opts.Extra...)
	}
	args = append(args, tree.Hash().String(), "--")
	args = append(args, opts.PathLimits...)
	out, diffErr := iw.run.Output(ctx, args)
	if diffErr != nil {
		return nil, err.Wrap(diffErr, pkgName, "diff")
	}
	return out, nil
}

// ApplyOptions adjust how a patch is applied to the index and worktree.
type ApplyOptions struct {
	// Quiet suppresses the child's stderr chatter.
	Quiet bool
	// Reject applies the hunks that fit and leaves .rej files for the
	// rest instead of refusing the whole patch.
	Reject bool
	// Strip overrides the number of leading path components stripped
	// from patch paths, like apply -p. Nil keeps the default.
	Strip *int
}

// Apply applies a patch to the index and worktree together. A refused
// patch is an ApplyError.
func (iw *IndexAndWorktree) Apply(ctx context.Context, patch []byte, opts ApplyOptions) error {
	args := []string{"apply", "--index"}
	if opts.Reject {
		args = append(args, "--reject")
	}
	if opts.Strip != nil {
		args = append(args, fmt.Sprintf("-p%d", *opts.Strip))
	}
	var runOpts []gitcmd.RunOption
	if opts.Quiet {
		runOpts = append(runOpts, gitcmd.DiscardStderr())
	}
	if applyErr := iw.run.RunInput(ctx, args, patch, runOpts...); applyErr != nil {
		return NewApplyError("apply_index", applyErr)
	}
	return nil
}

// Diffstat renders the given patch as a diffstat summary.
func (iw *IndexAndWorktree) Diffstat(ctx context.Context, patch []byte) (string, error) {
	out, statErr := iw.run.Output(ctx,
		[]string{"apply", "--stat", "--summary"},
		gitcmd.Input(patch))
	if statErr != nil {
		return "", err.Wrap(statErr, pkgName, "diffstat")
	}
	return string(out), nil
}

// ChangedFiles returns the files that differ between the given tree and
// the worktree. Path limits are relative to the caller's directory; the
// returned names are relative to the repository root.
func (iw *IndexAndWorktree) ChangedFiles(ctx context.Context, tree *objects.Tree, pathLimits []string) ([]string, error) {
	args := []string{"diff-index", tree.Hash().String(), "--name-only", "-z", "--"}
	args = append(args, pathLimits...)
	lines, diffErr := iw.runInCwd.OutputLines(ctx, args, gitcmd.NullTerminated())
	if diffErr != nil {
		return nil, err.Wrap(diffErr, pkgName, "changed_files")
	}
	return uniqueSorted(lines), nil
}

// RefreshIndex updates the index's stat information from the working
// directory, leaving unmerged entries alone.
func (iw *IndexAndWorktree) RefreshIndex(ctx context.Context) error {
	return err.Wrap(
		iw.run.Run(ctx, []string{"update-index", "-q", "--unmerged", "--refresh"}),
		pkgName, "refresh_index")
}

// UpdateIndex records the given worktree paths in the index, adding new
// files and dropping removed ones. Paths are relative to the repository
// root.
func (iw *IndexAndWorktree) UpdateIndex(ctx context.Context, paths []string) error {
	return err.Wrap(
		iw.run.RunInput(ctx,
			[]string{"update-index", "--remove", "--add", "-z", "--stdin"},
			nullJoined(paths)),
		pkgName, "update_index")
}

// WorktreeClean reports whether the worktree matches the index.
func (iw *IndexAndWorktree) WorktreeClean(ctx context.Context) bool {
	refreshErr := iw.run.Run(ctx,
		[]string{"update-index", "--ignore-submodules", "--refresh"},
		gitcmd.DiscardStderr())
	return refreshErr == nil
}

// uniqueSorted sorts names and collapses duplicates.
func uniqueSorted(names []string) []string {
	slices.Sort(names)
	return slices.Compact(names)
}

// nullJoined encodes each path NUL-terminated for commands reading -z
// --stdin input.
func nullJoined(paths []string) []byte {
	var buf []byte
	for _, p := range paths {
		buf = append(buf, p...)
		buf = append(buf, 0)
	}
	return buf
}
