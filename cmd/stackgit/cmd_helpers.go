package main

import (
	"context"
	"fmt"

	"github.com/stackedgit/stackgit/pkg/index"
	"github.com/stackedgit/stackgit/pkg/objects"
	"github.com/stackedgit/stackgit/pkg/repository"
)

// revOrHead returns the first positional argument, defaulting to HEAD.
func revOrHead(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return "HEAD"
}

// resolveCommit resolves a revision to a commit handle.
func resolveCommit(ctx context.Context, repo *repository.Repository, rev string) (*objects.Commit, error) {
	obj, err := repo.RevParse(ctx, rev, objects.KindCommit)
	if err != nil {
		return nil, err
	}
	return obj.(*objects.Commit), nil
}

// resolveTree resolves a revision to the tree it peels to.
func resolveTree(ctx context.Context, repo *repository.Repository, rev string) (*objects.Tree, error) {
	obj, err := repo.RevParse(ctx, rev, objects.KindTree)
	if err != nil {
		return nil, err
	}
	return obj.(*objects.Tree), nil
}

// requireWorktree returns the default index-and-worktree pair, or an error
// when the repository was discovered without a work tree.
func requireWorktree(repo *repository.Repository) (*index.IndexAndWorktree, error) {
	iw := repo.DefaultIW()
	if iw == nil {
		return nil, fmt.Errorf("this command needs a work tree, and the repository is bare")
	}
	return iw, nil
}
