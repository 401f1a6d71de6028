package gitcmd

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"strings"
	"sync"
)

// Pipe is a long-lived git child process with its standard input and output
// connected to the caller. The object reader and tree-diff channels are
// built on it.
//
// A Pipe is deliberately not tied to the context that spawned it: channels
// outlive individual calls and are shut down by whoever owns the repository,
// through Terminate.
type Pipe struct {
	// Stdin is connected to the child's standard input.
	Stdin io.Writer

	// Stdout reads the child's standard output, buffered.
	Stdout *bufio.Reader

	args   []string
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	errBuf *lockedBuffer

	mu     sync.Mutex
	done   bool
	reaped error
}

// Start spawns a long-lived git process. The returned Pipe keeps running
// after ctx is cancelled; ctx only guards the spawn itself.
func (r *Runner) Start(ctx context.Context, args []string, opts ...RunOption) (*Pipe, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	cfg := r.newCallConfig(opts)
	argv := append([]string{gitExecutable}, args...)
	cmd := exec.Command(argv[0], argv[1:]...)

	cmd.Dir = r.dir
	if cfg.dir != "" {
		cmd.Dir = cfg.dir
	}
	cmd.Env = append(os.Environ(), r.baseEnv...)
	cmd.Env = append(cmd.Env, cfg.env...)

	errBuf := &lockedBuffer{}
	cmd.Stderr = errBuf

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, &ExecError{Args: argv, ExitCode: -1, Err: err}
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, &ExecError{Args: argv, ExitCode: -1, Err: err}
	}

	if err := cmd.Start(); err != nil {
		return nil, &ExecError{Args: argv, ExitCode: -1, Err: err}
	}

	r.log.Debug("started git channel", "args", strings.Join(args, " "), "pid", cmd.Process.Pid)

	return &Pipe{
		Stdin:  stdin,
		Stdout: bufio.NewReader(stdout),
		args:   argv,
		cmd:    cmd,
		stdin:  stdin,
		errBuf: errBuf,
	}, nil
}

// Terminate shuts the child down: closes its stdin, kills it and reaps the
// process. It is idempotent and safe to call on a child that already exited.
func (p *Pipe) Terminate() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.done {
		return p.reaped
	}
	p.done = true

	p.stdin.Close()
	if p.cmd.Process != nil {
		p.cmd.Process.Kill()
	}
	// Wait reaps the child; the kill-induced exit status is expected and
	// not an error worth reporting.
	if err := p.cmd.Wait(); err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			p.reaped = &ExecError{Args: p.args, ExitCode: -1, Err: err}
		}
	}
	return p.reaped
}

// Stderr returns everything the child has written to standard error so far.
// Channel errors include it for diagnosis.
func (p *Pipe) Stderr() string {
	return p.errBuf.String()
}

// lockedBuffer is a bytes.Buffer safe for the concurrent writer the exec
// package uses for non-file stderr destinations.
type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}
