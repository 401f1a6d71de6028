// Package repository ties the access layer together: one object cache per
// kind, one streaming object reader, a pool of diff channels, a cached ref
// store, and the staging-area handles, all bound to a single git directory.
//
// A Repository is built for one logical thread of control. The object
// caches tolerate concurrent lookups, but the streaming channels serialize
// their exchanges and the ref store assumes a single writer. Whoever opens
// a Repository owns it and must Close it; Close is idempotent and safe when
// the channels never started.
package repository

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"

	"github.com/stackedgit/stackgit/pkg/catfile"
	"github.com/stackedgit/stackgit/pkg/common/err"
	"github.com/stackedgit/stackgit/pkg/common/logger"
	"github.com/stackedgit/stackgit/pkg/difftree"
	"github.com/stackedgit/stackgit/pkg/gitcmd"
	"github.com/stackedgit/stackgit/pkg/index"
	"github.com/stackedgit/stackgit/pkg/objects"
	"github.com/stackedgit/stackgit/pkg/refs"
)

// Repository is the root handle over one git directory.
type Repository struct {
	gitDir string
	runner *gitcmd.Runner
	log    *slog.Logger

	reader *catfile.Reader
	engine *difftree.Engine

	blobs   *objects.Cache[*objects.Blob]
	trees   *objects.Cache[*objects.Tree]
	commits *objects.Cache[*objects.Commit]

	refs *refs.Store

	defaultIndex    *index.Index
	defaultWorktree index.Worktree
	defaultIW       *index.IndexAndWorktree

	closed bool
}

// Open creates a Repository over the given git directory. worktreeDir names
// the working copy and may be empty for a bare repository, in which case
// the worktree-dependent handles stay nil. Open itself does no I/O; the
// handles it wires are all lazy.
func Open(gitDir, worktreeDir string) *Repository {
	runner := gitcmd.New(gitcmd.WithGitDir(gitDir))
	r := &Repository{
		gitDir: gitDir,
		runner: runner,
		log:    logger.Component("repository"),
		reader: catfile.NewReader(runner),
		engine: difftree.NewEngine(runner),
	}

	r.blobs = objects.NewCache(func(h objects.ObjectHash) *objects.Blob {
		return objects.NewBlob(r.reader, h)
	})
	r.trees = objects.NewCache(func(h objects.ObjectHash) *objects.Tree {
		return objects.NewTree(r.reader, h)
	})
	r.commits = objects.NewCache(func(h objects.ObjectHash) *objects.Commit {
		return objects.NewCommit(r.reader, h)
	})

	r.refs = refs.NewStore(runner, r)
	r.defaultIndex = index.New(runner, r, r, defaultIndexFile(gitDir))
	if worktreeDir != "" {
		r.defaultWorktree = index.Worktree{Directory: worktreeDir}
		r.defaultIW = index.NewIndexAndWorktree(runner, r.defaultIndex, r.defaultWorktree)
	}
	return r
}

// Discover locates the repository governing the current directory and opens
// it. Without a worktree (a bare repository), the worktree handles stay
// unset.
func Discover(ctx context.Context) (*Repository, error) {
	probe := gitcmd.New()
	gitDir, dirErr := probe.OutputLine(ctx,
		[]string{"rev-parse", "--git-dir"}, gitcmd.DiscardStderr())
	if dirErr != nil {
		return nil, NewNotARepositoryError(dirErr)
	}

	worktreeDir := os.Getenv("GIT_WORK_TREE")
	if worktreeDir == "" {
		top, topErr := probe.OutputLine(ctx,
			[]string{"rev-parse", "--show-toplevel"}, gitcmd.DiscardStderr())
		if topErr == nil {
			worktreeDir = top
		}
	}
	return Open(gitDir, worktreeDir), nil
}

// defaultIndexFile resolves the repository's own index file, honoring the
// same override git itself honors.
func defaultIndexFile(gitDir string) string {
	if f := os.Getenv("GIT_INDEX_FILE"); f != "" {
		return f
	}
	return filepath.Join(gitDir, "index")
}

// Close shuts down the streaming channels. Idempotent; safe when the
// channels never started.
func (r *Repository) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true
	r.log.Debug("repository closing", "git_dir", r.gitDir)

	readerErr := r.reader.Close()
	engineErr := r.engine.Close()
	if readerErr != nil {
		return readerErr
	}
	return engineErr
}

// GitDir returns the repository's git directory.
func (r *Repository) GitDir() string {
	return r.gitDir
}

// Runner returns the command runner bound to this repository's
// environment.
func (r *Repository) Runner() *gitcmd.Runner {
	return r.runner
}

// Refs returns the repository's ref store.
func (r *Repository) Refs() *refs.Store {
	return r.refs
}

// Blob returns the blob handle for hash, memoized.
func (r *Repository) Blob(hash objects.ObjectHash) *objects.Blob {
	return r.blobs.Get(hash)
}

// Tree returns the tree handle for hash, memoized.
func (r *Repository) Tree(hash objects.ObjectHash) *objects.Tree {
	return r.trees.Get(hash)
}

// Commit returns the commit handle for hash, memoized.
func (r *Repository) Commit(hash objects.ObjectHash) *objects.Commit {
	return r.commits.Get(hash)
}

// Object returns the handle for hash under the given kind, through that
// kind's cache.
func (r *Repository) Object(kind objects.ObjectKind, hash objects.ObjectHash) (objects.Object, error) {
	switch kind {
	case objects.KindBlob:
		return r.Blob(hash), nil
	case objects.KindTree:
		return r.Tree(hash), nil
	case objects.KindCommit:
		return r.Commit(hash), nil
	default:
		return nil, err.New(pkgName, err.CodeInvalidInput, "object",
			fmt.Sprintf("no handle for object kind %q", kind), nil)
	}
}

// CatObject returns the kind and raw content of one object, straight off
// the streaming reader.
func (r *Repository) CatObject(hash objects.ObjectHash) (objects.ObjectKind, []byte, error) {
	return r.reader.ReadObject(hash)
}

// RevParse resolves a revision expression to an object handle of the given
// kind, peeling with the rev^{kind} syntax. A revision that does not
// resolve is a RevisionError.
func (r *Repository) RevParse(ctx context.Context, rev string, kind objects.ObjectKind) (objects.Object, error) {
	line, parseErr := r.runner.OutputLine(ctx,
		[]string{"rev-parse", fmt.Sprintf("%s^{%s}", rev, kind)},
		gitcmd.DiscardStderr())
	if parseErr != nil {
		return nil, NewRevisionError(rev, kind, parseErr)
	}
	hash, hashErr := objects.ParseObjectHash(line)
	if hashErr != nil {
		return nil, err.WrapWithCode(hashErr, pkgName, err.CodeInvalidFormat, "rev_parse")
	}
	return r.Object(kind, hash)
}

// HeadRef returns the ref HEAD points at symbolically. A detached HEAD is
// a DetachedHeadError.
func (r *Repository) HeadRef(ctx context.Context) (string, error) {
	line, headErr := r.runner.OutputLine(ctx, []string{"symbolic-ref", "-q", "HEAD"})
	if headErr != nil {
		return "", NewDetachedHeadError(headErr)
	}
	return line, nil
}

// SetHeadRef repoints HEAD at the given ref.
func (r *Repository) SetHeadRef(ctx context.Context, ref, msg string) error {
	return err.Wrap(
		r.runner.Run(ctx, []string{"symbolic-ref", "-m", msg, "HEAD", ref}),
		pkgName, "set_head_ref")
}

// CurrentBranchName returns the branch HEAD is on, without the refs/heads/
// prefix.
func (r *Repository) CurrentBranchName(ctx context.Context) (string, error) {
	ref, headErr := r.HeadRef(ctx)
	if headErr != nil {
		return "", headErr
	}
	return strings.TrimPrefix(ref, "refs/heads/"), nil
}

// MergeBases returns every best common ancestor of the two commits.
func (r *Repository) MergeBases(ctx context.Context, c1, c2 *objects.Commit) ([]*objects.Commit, error) {
	lines, baseErr := r.runner.OutputLines(ctx,
		[]string{"merge-base", "--all", c1.Hash().String(), c2.Hash().String()})
	if baseErr != nil {
		return nil, err.Wrap(baseErr, pkgName, "merge_bases")
	}
	bases := make([]*objects.Commit, 0, len(lines))
	for _, line := range lines {
		hash, hashErr := objects.ParseObjectHash(line)
		if hashErr != nil {
			return nil, err.WrapWithCode(hashErr, pkgName, err.CodeInvalidFormat, "merge_bases")
		}
		bases = append(bases, r.Commit(hash))
	}
	return bases, nil
}

// Describe names the commit the way `git describe --all` does. Best
// effort: any failure is an empty string, never an error.
func (r *Repository) Describe(ctx context.Context, commit *objects.Commit) string {
	line, descErr := r.runner.OutputLine(ctx,
		[]string{"describe", "--all", commit.Hash().String()},
		gitcmd.DiscardStderr())
	if descErr != nil {
		return ""
	}
	return line
}

// submodulePattern matches one ls-tree record naming a gitlink entry.
var submodulePattern = regexp.MustCompile(`^160000 commit [0-9a-f]{40}\t(.*)$`)

// Submodules returns the submodule paths recorded in the given tree,
// sorted.
func (r *Repository) Submodules(ctx context.Context, tree *objects.Tree) ([]string, error) {
	records, lsErr := r.runner.OutputLines(ctx,
		[]string{"ls-tree", "-d", "-r", "-z", tree.Hash().String()},
		gitcmd.NullTerminated())
	if lsErr != nil {
		return nil, err.Wrap(lsErr, pkgName, "submodules")
	}
	var paths []string
	for _, rec := range records {
		if m := submodulePattern.FindStringSubmatch(rec); m != nil {
			paths = append(paths, m[1])
		}
	}
	slices.Sort(paths)
	return paths, nil
}

// Repack packs every object into a single pack file.
func (r *Repository) Repack(ctx context.Context) error {
	return err.Wrap(
		r.runner.Run(ctx, []string{"repack", "-a", "-d", "-f"}),
		pkgName, "repack")
}

// CopyNotes copies git notes from an object to its rewritten successor.
// Purely advisory: every failure is swallowed, missing notes included.
func (r *Repository) CopyNotes(ctx context.Context, oldHash, newHash objects.ObjectHash) {
	copyErr := r.runner.RunInput(ctx,
		[]string{"notes", "copy", "--for-rewrite=stackgit"},
		[]byte(oldHash.String()+" "+newHash.String()),
		gitcmd.Env(map[string]string{"GIT_NOTES_REWRITE_REF": "refs/notes/*"}),
		gitcmd.DiscardStderr())
	if copyErr != nil {
		r.log.Debug("notes copy skipped", "error", copyErr)
	}
}

// DefaultIndex returns the repository's own index file handle.
func (r *Repository) DefaultIndex() *index.Index {
	return r.defaultIndex
}

// TempIndex returns a fresh scratch index inside the git directory. The
// caller owns it and must Delete it on every path out of the operation.
func (r *Repository) TempIndex() *index.Index {
	return index.NewTemp(r.runner, r, r, r.gitDir)
}

// DefaultWorktree returns the working copy handle; the zero Worktree when
// the repository is bare.
func (r *Repository) DefaultWorktree() index.Worktree {
	return r.defaultWorktree
}

// DefaultIW pairs the default index with the default worktree. Nil for a
// bare repository.
func (r *Repository) DefaultIW() *index.IndexAndWorktree {
	return r.defaultIW
}
