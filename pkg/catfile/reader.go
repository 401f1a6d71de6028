// Package catfile streams object content out of the object store through a
// single long-lived `git cat-file --batch` child process.
//
// Spawning one git process per object read would dominate the cost of every
// operation that touches more than a handful of objects. The batch protocol
// amortizes the spawn: one request line goes in, one header plus the raw
// content comes back, and the child stays around for the next request.
//
// Response framing:
//
//	<hash> <kind> <size>\n
//	<size bytes of content>\n
//
// or, for an unknown hash:
//
//	<hash> missing\n
//
// The Reader serializes requests; it is safe for concurrent use.
package catfile

import (
	"bufio"
	"context"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"sync"

	"github.com/stackedgit/stackgit/pkg/common/err"
	"github.com/stackedgit/stackgit/pkg/common/logger"
	"github.com/stackedgit/stackgit/pkg/gitcmd"
	"github.com/stackedgit/stackgit/pkg/objects"
)

// Reader reads objects over a lazily started cat-file channel. It implements
// objects.Source, so the lazy object handles fetch their content through it.
//
// The owner of the repository owns the Reader's lifetime and must Close it;
// requests after Close fail cleanly.
type Reader struct {
	runner *gitcmd.Runner
	log    *slog.Logger

	mu      sync.Mutex
	pipe    *gitcmd.Pipe
	diedErr error
	closed  bool
}

// NewReader creates a Reader bound to the given runner. The child process is
// not started until the first request.
func NewReader(runner *gitcmd.Runner) *Reader {
	return &Reader{
		runner: runner,
		log:    logger.Component("catfile"),
	}
}

// ReadObject fetches one object and returns its kind and raw content.
// A hash the store does not have yields a MissingObjectError.
func (r *Reader) ReadObject(hash objects.ObjectHash) (objects.ObjectKind, []byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return "", nil, err.New(pkgName, CodeClosed, "read", "object reader is closed", nil)
	}
	if r.diedErr != nil {
		return "", nil, r.diedErr
	}
	if r.pipe == nil {
		if startErr := r.start(); startErr != nil {
			return "", nil, startErr
		}
	}

	if _, writeErr := r.pipe.Stdin.Write([]byte(hash.String() + "\n")); writeErr != nil {
		return "", nil, r.died("read", writeErr)
	}

	kind, content, readErr := readBatchResponse(r.pipe.Stdout, hash)
	if readErr != nil {
		if isChannelIOError(readErr) {
			return "", nil, r.died("read", readErr)
		}
		return "", nil, readErr
	}
	return kind, content, nil
}

// start spawns the batch child. Called with the lock held.
func (r *Reader) start() error {
	pipe, startErr := r.runner.Start(context.Background(), []string{"cat-file", "--batch"})
	if startErr != nil {
		return err.WrapWithCode(startErr, pkgName, CodeDied, "start")
	}
	r.pipe = pipe
	r.log.Debug("object reader channel started")
	return nil
}

// died records the channel's death so later requests fail with the same
// diagnosis, and reaps the child.
func (r *Reader) died(op string, cause error) error {
	stderr := ""
	if r.pipe != nil {
		stderr = r.pipe.Stderr()
		r.pipe.Terminate()
	}
	r.diedErr = NewChannelDiedError(op, strings.TrimSpace(stderr), cause)
	return r.diedErr
}

// Close shuts the channel down. It is idempotent.
func (r *Reader) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil
	}
	r.closed = true
	if r.pipe == nil {
		return nil
	}
	r.log.Debug("object reader channel closing")
	return r.pipe.Terminate()
}

// readBatchResponse parses one batch response: the header line, then the
// announced number of content bytes, then the terminating newline.
func readBatchResponse(out *bufio.Reader, hash objects.ObjectHash) (objects.ObjectKind, []byte, error) {
	header, readErr := out.ReadString('\n')
	if readErr != nil {
		return "", nil, readErr
	}
	header = strings.TrimSuffix(header, "\n")

	fields := strings.Split(header, " ")
	if len(fields) == 2 && fields[1] == "missing" {
		return "", nil, NewMissingObjectError(hash)
	}
	if len(fields) != 3 {
		return "", nil, NewProtocolError("read", header, "malformed response header")
	}
	if !hash.Equal(objects.ObjectHash(fields[0])) {
		return "", nil, NewProtocolError("read", header, "response names a different object")
	}

	kind, kindErr := objects.ParseObjectKind(fields[1])
	if kindErr != nil {
		return "", nil, NewProtocolError("read", header, "unknown object kind")
	}
	size, sizeErr := strconv.Atoi(fields[2])
	if sizeErr != nil || size < 0 {
		return "", nil, NewProtocolError("read", header, "bad object size")
	}

	// content plus the trailing newline the protocol appends
	buf := make([]byte, size+1)
	if _, fullErr := io.ReadFull(out, buf); fullErr != nil {
		return "", nil, fullErr
	}
	if buf[size] != '\n' {
		return "", nil, NewProtocolError("read", header, "missing response terminator")
	}
	return kind, buf[:size], nil
}

// isChannelIOError distinguishes transport failures, which mean the child is
// gone, from protocol failures, which mean it is talking nonsense.
func isChannelIOError(e error) bool {
	switch e.(type) {
	case *MissingObjectError, *ProtocolError:
		return false
	}
	return true
}
