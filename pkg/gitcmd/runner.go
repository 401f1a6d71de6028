// Package gitcmd runs git commands against one repository and gives the
// packages above it a uniform way to capture output, feed stdin, tolerate
// known exit codes and keep long-lived child processes.
//
// A Runner carries the base environment (most importantly GIT_DIR) so the
// higher layers never touch os/exec directly. One-shot calls go through
// Output, OutputLine, OutputLines, Run; the streaming channels are spawned
// with Start.
package gitcmd

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"slices"
	"strings"
	"time"

	"github.com/stackedgit/stackgit/pkg/common/logger"
)

// Runner executes git commands with a fixed base environment. The zero value
// is not usable; construct with New. Runners are cheap and safe for
// concurrent use; derived runners from Extend share the same configuration
// with extra environment entries.
type Runner struct {
	dir     string
	baseEnv []string
	stderr  io.Writer
	log     *slog.Logger
}

// Option configures a Runner at construction time.
type Option func(*Runner)

// WithGitDir points every command at the given repository directory by
// setting GIT_DIR in the base environment.
func WithGitDir(dir string) Option {
	return func(r *Runner) {
		r.baseEnv = append(r.baseEnv, "GIT_DIR="+dir)
	}
}

// WithDir sets the default working directory for commands.
func WithDir(dir string) Option {
	return func(r *Runner) {
		r.dir = dir
	}
}

// WithEnv adds entries to the base environment.
func WithEnv(env map[string]string) Option {
	return func(r *Runner) {
		r.baseEnv = append(r.baseEnv, flattenEnv(env)...)
	}
}

// WithStderr redirects stderr output of successful commands. By default it
// goes to os.Stderr so the user sees git's own warnings and progress.
func WithStderr(w io.Writer) Option {
	return func(r *Runner) {
		r.stderr = w
	}
}

// New creates a Runner with the given options.
func New(opts ...Option) *Runner {
	r := &Runner{
		stderr: os.Stderr,
		log:    logger.Component("gitcmd"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Extend returns a derived Runner whose base environment has the given
// entries appended. The temporary index uses this to splice in
// GIT_INDEX_FILE without disturbing the repository's own runner.
func (r *Runner) Extend(env map[string]string) *Runner {
	derived := *r
	derived.baseEnv = append(slices.Clone(r.baseEnv), flattenEnv(env)...)
	return &derived
}

// At returns a derived Runner whose commands run in the given directory by
// default. The worktree layer uses this to issue commands from the worktree
// root while the repository's own runner stays in the caller's directory.
func (r *Runner) At(dir string) *Runner {
	derived := *r
	derived.baseEnv = slices.Clone(r.baseEnv)
	derived.dir = dir
	return &derived
}

// callConfig collects the per-call options.
type callConfig struct {
	env           []string
	dir           string
	input         []byte
	hasInput      bool
	discardStderr bool
	allowed       []int
	nullTerm      bool
}

// RunOption adjusts a single command invocation.
type RunOption func(*callConfig)

// Env adds environment entries for this call only.
func Env(env map[string]string) RunOption {
	return func(c *callConfig) {
		c.env = append(c.env, flattenEnv(env)...)
	}
}

// Dir overrides the working directory for this call.
func Dir(dir string) RunOption {
	return func(c *callConfig) {
		c.dir = dir
	}
}

// Input feeds the given bytes to the command's standard input.
func Input(data []byte) RunOption {
	return func(c *callConfig) {
		c.input = data
		c.hasInput = true
	}
}

// DiscardStderr swallows stderr output instead of passing it through. A
// failing command still reports the captured text in its ExecError.
func DiscardStderr() RunOption {
	return func(c *callConfig) {
		c.discardStderr = true
	}
}

// AllowExitCodes widens the set of exit codes treated as success beyond 0.
func AllowExitCodes(codes ...int) RunOption {
	return func(c *callConfig) {
		c.allowed = append(c.allowed, codes...)
	}
}

// NullTerminated makes OutputLines split on NUL bytes instead of newlines,
// matching commands invoked with -z.
func NullTerminated() RunOption {
	return func(c *callConfig) {
		c.nullTerm = true
	}
}

// Output runs git with the given arguments and returns its raw stdout.
func (r *Runner) Output(ctx context.Context, args []string, opts ...RunOption) ([]byte, error) {
	cfg := r.newCallConfig(opts)
	return r.exec(ctx, args, cfg)
}

// OutputLine runs the command and returns its single line of output.
// Any other number of lines is an error.
func (r *Runner) OutputLine(ctx context.Context, args []string, opts ...RunOption) (string, error) {
	lines, err := r.OutputLines(ctx, args, opts...)
	if err != nil {
		return "", err
	}
	if len(lines) != 1 {
		return "", &ExecError{
			Args:     append([]string{gitExecutable}, args...),
			ExitCode: 0,
			Err:      errors.New("expected exactly one line of output"),
		}
	}
	return lines[0], nil
}

// OutputLines runs the command and returns its output split into lines,
// without terminators. A trailing empty record is dropped.
func (r *Runner) OutputLines(ctx context.Context, args []string, opts ...RunOption) ([]string, error) {
	cfg := r.newCallConfig(opts)
	out, err := r.exec(ctx, args, cfg)
	if err != nil {
		return nil, err
	}
	sep := byte('\n')
	if cfg.nullTerm {
		sep = 0
	}
	return splitRecords(out, sep), nil
}

// Run executes the command for its side effects, discarding stdout.
func (r *Runner) Run(ctx context.Context, args []string, opts ...RunOption) error {
	cfg := r.newCallConfig(opts)
	_, err := r.exec(ctx, args, cfg)
	return err
}

// RunInput executes the command with data on its standard input, discarding
// stdout.
func (r *Runner) RunInput(ctx context.Context, args []string, input []byte, opts ...RunOption) error {
	return r.Run(ctx, args, append(opts, Input(input))...)
}

func (r *Runner) newCallConfig(opts []RunOption) *callConfig {
	cfg := &callConfig{}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

const gitExecutable = "git"

func (r *Runner) exec(ctx context.Context, args []string, cfg *callConfig) ([]byte, error) {
	argv := append([]string{gitExecutable}, args...)
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)

	cmd.Dir = r.dir
	if cfg.dir != "" {
		cmd.Dir = cfg.dir
	}

	cmd.Env = append(os.Environ(), r.baseEnv...)
	cmd.Env = append(cmd.Env, cfg.env...)

	if cfg.hasInput {
		cmd.Stdin = bytes.NewReader(cfg.input)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()
	exitCode := exitCodeOf(cmd, err)

	r.log.Debug("git command finished",
		"args", strings.Join(args, " "),
		"exit", exitCode,
		"duration", time.Since(start))

	if err != nil && !allowedExit(err, exitCode, cfg.allowed) {
		return nil, &ExecError{
			Args:     argv,
			ExitCode: exitCode,
			Stderr:   stderr.String(),
			Err:      err,
		}
	}

	if !cfg.discardStderr && stderr.Len() > 0 {
		io.Copy(r.stderr, &stderr)
	}
	return stdout.Bytes(), nil
}

// exitCodeOf extracts the exit code, or -1 when the command never ran.
func exitCodeOf(cmd *exec.Cmd, err error) int {
	if cmd.ProcessState != nil {
		return cmd.ProcessState.ExitCode()
	}
	if err != nil {
		return -1
	}
	return 0
}

// allowedExit reports whether err is an exit status the caller asked to
// tolerate.
func allowedExit(err error, exitCode int, allowed []int) bool {
	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		return false
	}
	return slices.Contains(allowed, exitCode)
}

// splitRecords splits output on sep, dropping the empty record a trailing
// terminator produces.
func splitRecords(out []byte, sep byte) []string {
	if len(out) == 0 {
		return nil
	}
	parts := bytes.Split(out, []byte{sep})
	if len(parts) > 0 && len(parts[len(parts)-1]) == 0 {
		parts = parts[:len(parts)-1]
	}
	records := make([]string, len(parts))
	for i, p := range parts {
		records[i] = string(p)
	}
	return records
}

func flattenEnv(env map[string]string) []string {
	entries := make([]string, 0, len(env))
	for k, v := range env {
		entries = append(entries, k+"="+v)
	}
	slices.Sort(entries)
	return entries
}
