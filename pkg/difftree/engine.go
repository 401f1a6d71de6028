// Package difftree compares trees through pooled long-lived
// `git diff-tree --stdin` child processes.
//
// Tree comparison runs constantly, usually many times with the same flags
// against different tree pairs. The engine keeps one child per exact flag
// list and feeds it pairs over stdin, so the spawn cost is paid once per
// flag combination instead of once per comparison.
package difftree

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/stackedgit/stackgit/pkg/common/err"
	"github.com/stackedgit/stackgit/pkg/common/logger"
	"github.com/stackedgit/stackgit/pkg/gitcmd"
	"github.com/stackedgit/stackgit/pkg/objects"
)

const (
	// Package name for error reporting
	pkgName = "difftree"
)

// Error codes for diff engine operations
const (
	CodeDied     = "CHANNEL_DIED"
	CodeClosed   = "CHANNEL_CLOSED"
	CodeProtocol = "CHANNEL_PROTOCOL"
)

// endMarker is fed to the child after each query. diff-tree cannot parse it
// as a commit name, so it echoes the line back untouched, which bounds the
// response: diff output never carries a bare "EOF" line of its own.
const endMarker = "EOF\n"

// Engine pools diff-tree channels, one per exact flag list. Safe for
// concurrent use; queries are serialized.
type Engine struct {
	runner *gitcmd.Runner
	log    *slog.Logger

	mu       sync.Mutex
	channels map[string]*gitcmd.Pipe
	closed   bool
}

// NewEngine creates an Engine bound to the given runner. Channels are
// started on first use of each flag list.
func NewEngine(runner *gitcmd.Runner) *Engine {
	return &Engine{
		runner:   runner,
		log:      logger.Component("difftree"),
		channels: make(map[string]*gitcmd.Pipe),
	}
}

// DiffTrees returns the raw diff between two trees, produced by a channel
// running with the given flags.
func (e *Engine) DiffTrees(flags []string, a, b objects.ObjectHash) ([]byte, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return nil, err.New(pkgName, CodeClosed, "diff", "diff engine is closed", nil)
	}

	pipe, chanErr := e.channel(flags)
	if chanErr != nil {
		return nil, chanErr
	}

	query := a.String() + " " + b.String() + "\n"
	if _, writeErr := pipe.Stdin.Write([]byte(query + endMarker)); writeErr != nil {
		return nil, e.died(flags, pipe, writeErr)
	}

	data, readErr := readDiffResponse(pipe.Stdout, []byte(query), []byte(endMarker))
	if readErr != nil {
		// a desynced channel is as unusable as a dead one
		diedErr := e.died(flags, pipe, readErr)
		if err.IsCode(readErr, CodeProtocol) {
			return nil, readErr
		}
		return nil, diedErr
	}
	return data, nil
}

// channel returns the pooled child for the flag list, starting it if needed.
// Called with the lock held.
func (e *Engine) channel(flags []string) (*gitcmd.Pipe, error) {
	key := strings.Join(flags, "\x00")
	if pipe, ok := e.channels[key]; ok {
		return pipe, nil
	}

	args := append([]string{"diff-tree", "--stdin"}, flags...)
	pipe, startErr := e.runner.Start(context.Background(), args)
	if startErr != nil {
		return nil, err.WrapWithCode(startErr, pkgName, CodeDied, "start")
	}
	e.log.Debug("diff-tree channel started", "flags", strings.Join(flags, " "))
	e.channels[key] = pipe
	return pipe, nil
}

// died drops the broken channel from the pool and reports its stderr.
// Called with the lock held.
func (e *Engine) died(flags []string, pipe *gitcmd.Pipe, cause error) error {
	stderr := strings.TrimSpace(pipe.Stderr())
	pipe.Terminate()
	delete(e.channels, strings.Join(flags, "\x00"))

	msg := "diff-tree process died"
	if stderr != "" {
		msg += ": " + stderr
	}
	return err.New(pkgName, CodeDied, "diff", msg, cause)
}

// Close terminates every pooled channel. It is idempotent.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return nil
	}
	e.closed = true

	var firstErr error
	for key, pipe := range e.channels {
		if termErr := pipe.Terminate(); termErr != nil && firstErr == nil {
			firstErr = termErr
		}
		delete(e.channels, key)
	}
	return firstErr
}

// readDiffResponse accumulates output until the echoed end marker arrives.
// The child echoes the query line first, then the diff, then the marker;
// both text and NUL-terminated record formats are recognized. The echo and
// marker are stripped, the diff's own final terminator is kept.
func readDiffResponse(out io.Reader, query, end []byte) ([]byte, error) {
	newlineEnd := append([]byte("\n"), end...)
	nullEnd := append([]byte{0}, end...)

	data := make([]byte, 0, 4096)
	buf := make([]byte, 4096)
	for !bytes.HasSuffix(data, newlineEnd) && !bytes.HasSuffix(data, nullEnd) {
		n, readErr := out.Read(buf)
		if n > 0 {
			data = append(data, buf[:n]...)
		}
		if readErr != nil {
			return nil, readErr
		}
	}

	if !bytes.HasPrefix(data, query) {
		return nil, err.New(pkgName, CodeProtocol, "diff",
			"response does not echo the query", nil)
	}
	return data[len(query) : len(data)-len(end)], nil
}
