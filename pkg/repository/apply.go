package repository

import (
	"context"

	"github.com/stackedgit/stackgit/pkg/index"
	"github.com/stackedgit/stackgit/pkg/objects"
)

// Apply applies a patch on top of a tree in a scratch index and returns
// the resulting tree. A patch that does not apply cleanly returns
// (nil, nil); an empty patch returns the input tree unchanged. The
// worktree and the default index are never touched.
func (r *Repository) Apply(ctx context.Context, tree *objects.Tree, patch []byte, quiet bool) (*objects.Tree, error) {
	if len(patch) == 0 {
		return tree, nil
	}

	idx := r.TempIndex()
	defer idx.Delete()

	if readErr := idx.ReadTree(ctx, tree); readErr != nil {
		return nil, readErr
	}
	if applyErr := idx.Apply(ctx, patch, quiet); applyErr != nil {
		if index.IsMergeFailure(applyErr) {
			return nil, nil
		}
		return nil, applyErr
	}
	result, writeErr := idx.WriteTree(ctx)
	if writeErr != nil {
		if index.IsMergeFailure(writeErr) {
			return nil, nil
		}
		return nil, writeErr
	}
	return result, nil
}

// SimpleMerge three-way merges theirs into ours relative to base, entirely
// in a scratch index. A merge the trivial resolver cannot finish returns
// (nil, nil).
func (r *Repository) SimpleMerge(ctx context.Context, base, ours, theirs *objects.Tree) (*objects.Tree, error) {
	idx := r.TempIndex()
	defer idx.Delete()

	result, _, mergeErr := idx.Merge(ctx, base, ours, theirs, nil)
	return result, mergeErr
}
