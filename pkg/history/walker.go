// Package history walks the commit graph through the repository's commit
// cache. Traversal is breadth first, so after a merge both sides advance
// together instead of one branch draining before the other appears.
package history

import (
	"container/list"
	"context"
	"log/slog"

	"github.com/stackedgit/stackgit/pkg/common/logger"
	"github.com/stackedgit/stackgit/pkg/objects"
)

// CommitResolver resolves hashes to cached commit handles.
type CommitResolver interface {
	Commit(hash objects.ObjectHash) *objects.Commit
}

// Walker traverses commit ancestry.
type Walker struct {
	resolve CommitResolver
	log     *slog.Logger
}

// NewWalker creates a Walker resolving commits through the given cache.
func NewWalker(resolve CommitResolver) *Walker {
	return &Walker{
		resolve: resolve,
		log:     logger.Component("history"),
	}
}

// Walk returns up to limit commits reachable from start, the start commit
// first. limit <= 0 walks the whole ancestry. A commit that cannot be read
// stops the walk; the commits collected before it come back with the
// error.
func (w *Walker) Walk(ctx context.Context, start *objects.Commit, limit int) ([]*objects.Commit, error) {
	var commits []*objects.Commit
	visited := make(map[objects.ObjectHash]bool)

	queue := list.New()
	queue.PushBack(start)
	visited[start.Hash()] = true

	for queue.Len() > 0 && (limit <= 0 || len(commits) < limit) {
		select {
		case <-ctx.Done():
			return commits, ctx.Err()
		default:
		}

		commit := queue.Remove(queue.Front()).(*objects.Commit)

		data, dataErr := commit.Data()
		if dataErr != nil {
			w.log.Debug("walk stopped at unreadable commit", "hash", commit.Hash().Short())
			return commits, NewWalkError(commit.Hash(), dataErr)
		}
		commits = append(commits, commit)

		for _, parent := range data.Parents {
			if visited[parent] {
				continue
			}
			visited[parent] = true
			queue.PushBack(w.resolve.Commit(parent))
		}
	}

	return commits, nil
}
