package repository

import (
	"iter"
	"slices"
	"strconv"
	"strings"

	"github.com/stackedgit/stackgit/pkg/common/err"
	"github.com/stackedgit/stackgit/pkg/objects"
)

// DiffOption adjusts how DiffTree renders the patch.
type DiffOption func(*diffConfig)

type diffConfig struct {
	stat       bool
	noBinary   bool
	fullIndex  bool
	extra      []string
	pathLimits []string
}

// WithStat renders a diffstat and summary instead of a patch.
func WithStat() DiffOption {
	return func(c *diffConfig) { c.stat = true }
}

// WithoutBinary leaves binary file contents out of the patch.
func WithoutBinary() DiffOption {
	return func(c *diffConfig) { c.noBinary = true }
}

// WithFullIndex writes full object hashes on the patch's index lines.
func WithFullIndex() DiffOption {
	return func(c *diffConfig) { c.fullIndex = true }
}

// WithDiffArgs passes extra flags through to diff-tree, typically the
// user's own diff options.
func WithDiffArgs(args ...string) DiffOption {
	return func(c *diffConfig) { c.extra = append(c.extra, args...) }
}

// WithPathLimits restricts the diff to the given paths.
func WithPathLimits(paths ...string) DiffOption {
	return func(c *diffConfig) { c.pathLimits = append(c.pathLimits, paths...) }
}

// buildDiffTreeArgs turns a diff configuration into diff-tree flags. Stat
// mode drops --binary from the passthrough flags; binary diffs make no
// sense in a diffstat.
func buildDiffTreeArgs(cfg *diffConfig) []string {
	var args []string
	if cfg.stat {
		args = []string{"--stat", "--summary"}
		for _, o := range cfg.extra {
			if o != "--binary" {
				args = append(args, o)
			}
		}
	} else {
		args = []string{"--patch"}
		if !cfg.noBinary && !slices.Contains(cfg.extra, "--binary") {
			args = append(args, "--binary")
		}
		if cfg.fullIndex {
			args = append(args, "--full-index")
		}
		args = append(args, cfg.extra...)
	}
	if len(cfg.pathLimits) > 0 {
		args = append(args, "--")
		args = append(args, cfg.pathLimits...)
	}
	return args
}

// DiffTree returns the patch that takes t1 to t2.
func (r *Repository) DiffTree(t1, t2 *objects.Tree, opts ...DiffOption) ([]byte, error) {
	cfg := &diffConfig{}
	for _, opt := range opts {
		opt(cfg)
	}
	data, diffErr := r.engine.DiffTrees(buildDiffTreeArgs(cfg), t1.Hash(), t2.Hash())
	if diffErr != nil {
		return nil, err.Wrap(diffErr, pkgName, "diff_tree")
	}
	return data, nil
}

// FullIndexDiff returns the patch between two trees with full object
// hashes on its index lines. Full hashes are necessary and sufficient for
// apply to reconstruct binary changes, so this is the form the index
// machinery round-trips.
func (r *Repository) FullIndexDiff(t1, t2 *objects.Tree) ([]byte, error) {
	return r.DiffTree(t1, t2, WithFullIndex())
}

// FileChange is one differing file between two trees. Except for a copy
// or a rename, OldPath and NewPath are the same path. Status is the raw
// one-letter status, with the similarity score still attached for copies
// and renames.
type FileChange struct {
	OldMode objects.FileMode
	NewMode objects.FileMode
	OldBlob *objects.Blob
	NewBlob *objects.Blob
	Status  string
	OldPath string
	NewPath string
}

// DiffTreeFiles iterates the files that differ between two trees. The
// blob handles come out of the object cache and are lazy; a side that is
// absent or not a blob simply has a handle whose read would fail.
func (r *Repository) DiffTreeFiles(t1, t2 *objects.Tree) iter.Seq2[FileChange, error] {
	return func(yield func(FileChange, error) bool) {
		raw, diffErr := r.engine.DiffTrees([]string{"-r", "-z"}, t1.Hash(), t2.Hash())
		if diffErr != nil {
			yield(FileChange{}, err.Wrap(diffErr, pkgName, "diff_tree_files"))
			return
		}
		emitChanges(raw, r.Blob, yield)
	}
}

// changeHeader is the parsed ":omode nmode ohash nhash status" record
// header.
type changeHeader struct {
	oldMode objects.FileMode
	newMode objects.FileMode
	oldHash objects.ObjectHash
	newHash objects.ObjectHash
	status  string
}

// parseChangeHeader parses one raw record header.
func parseChangeHeader(header string) (changeHeader, error) {
	malformed := func(cause error) error {
		return err.New(pkgName, err.CodeInvalidFormat, "diff_tree_files",
			"malformed diff record "+strconv.Quote(header), cause)
	}

	rest, ok := strings.CutPrefix(header, ":")
	if !ok {
		return changeHeader{}, malformed(nil)
	}
	parts := strings.Split(rest, " ")
	if len(parts) != 5 || parts[4] == "" {
		return changeHeader{}, malformed(nil)
	}

	h := changeHeader{status: parts[4]}
	var parseErr error
	if h.oldMode, parseErr = objects.ParseFileMode(parts[0]); parseErr != nil {
		return changeHeader{}, malformed(parseErr)
	}
	if h.newMode, parseErr = objects.ParseFileMode(parts[1]); parseErr != nil {
		return changeHeader{}, malformed(parseErr)
	}
	if h.oldHash, parseErr = objects.ParseObjectHash(parts[2]); parseErr != nil {
		return changeHeader{}, malformed(parseErr)
	}
	if h.newHash, parseErr = objects.ParseObjectHash(parts[3]); parseErr != nil {
		return changeHeader{}, malformed(parseErr)
	}
	return h, nil
}

// emitChanges walks the NUL-separated record stream from `diff-tree -r -z`
// and yields one FileChange per record. A copy or rename record carries
// two path fields, every other record one. Factored off DiffTreeFiles so
// the parse is testable without a live channel.
func emitChanges(raw []byte, blob func(objects.ObjectHash) *objects.Blob, yield func(FileChange, error) bool) {
	truncated := err.New(pkgName, err.CodeInvalidFormat, "diff_tree_files",
		"diff record stream truncated", nil)

	fields := strings.Split(string(raw), "\x00")
	for i := 0; i < len(fields); i++ {
		if fields[i] == "" {
			continue
		}
		h, headerErr := parseChangeHeader(fields[i])
		if headerErr != nil {
			yield(FileChange{}, headerErr)
			return
		}

		if i+1 >= len(fields) {
			yield(FileChange{}, truncated)
			return
		}
		i++
		oldPath := fields[i]
		newPath := oldPath
		if h.status[0] == 'C' || h.status[0] == 'R' {
			if i+1 >= len(fields) {
				yield(FileChange{}, truncated)
				return
			}
			i++
			newPath = fields[i]
		}

		change := FileChange{
			OldMode: h.oldMode,
			NewMode: h.newMode,
			OldBlob: blob(h.oldHash),
			NewBlob: blob(h.newHash),
			Status:  h.status,
			OldPath: oldPath,
			NewPath: newPath,
		}
		if !yield(change, nil) {
			return
		}
	}
}
