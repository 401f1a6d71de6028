package gitcmd

import (
	"context"
	"errors"
	"io"
	"os/exec"
	"strings"
	"testing"
)

// requireGit skips the test when no git binary is available.
func requireGit(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}
}

// initRepo creates a fresh repository in a temp directory and returns a
// Runner bound to it.
func initRepo(t *testing.T) (*Runner, string) {
	t.Helper()
	requireGit(t)

	dir := t.TempDir()
	cmd := exec.Command("git", "init", "-q", dir)
	if out, err := cmd.CombinedOutput(); err != nil {
		t.Fatalf("git init failed: %v: %s", err, out)
	}

	runner := New(WithDir(dir), WithStderr(io.Discard))
	return runner, dir
}

func TestOutput(t *testing.T) {
	runner, _ := initRepo(t)

	out, err := runner.Output(context.Background(), []string{"rev-parse", "--is-inside-work-tree"})
	if err != nil {
		t.Fatalf("Output() error = %v", err)
	}
	if got := strings.TrimSpace(string(out)); got != "true" {
		t.Errorf("Output() = %q, want true", got)
	}
}

func TestOutputLine(t *testing.T) {
	runner, _ := initRepo(t)

	line, err := runner.OutputLine(context.Background(), []string{"rev-parse", "--is-inside-work-tree"})
	if err != nil {
		t.Fatalf("OutputLine() error = %v", err)
	}
	if line != "true" {
		t.Errorf("OutputLine() = %q, want true", line)
	}
}

func TestOutputLineRejectsMultipleLines(t *testing.T) {
	runner, _ := initRepo(t)

	// repository config always carries several entries
	_, err := runner.OutputLine(context.Background(), []string{"config", "--list"})
	if err == nil {
		t.Fatal("OutputLine() error = nil for multi-line output")
	}
}

func TestRunFailureReportsExecError(t *testing.T) {
	runner, _ := initRepo(t)

	err := runner.Run(context.Background(), []string{"rev-parse", "--verify", "refs/heads/nope"}, DiscardStderr())
	if err == nil {
		t.Fatal("Run() error = nil for a failing command")
	}

	var execErr *ExecError
	if !errors.As(err, &execErr) {
		t.Fatalf("error %T is not *ExecError", err)
	}
	if execErr.ExitCode == 0 {
		t.Error("ExitCode = 0, want nonzero")
	}
	if len(execErr.Args) == 0 || execErr.Args[0] != "git" {
		t.Errorf("Args = %v, want git argv", execErr.Args)
	}
}

func TestAllowExitCodes(t *testing.T) {
	runner, _ := initRepo(t)

	// rev-parse --verify on a missing ref exits 128; tolerate it
	err := runner.Run(context.Background(),
		[]string{"rev-parse", "--verify", "refs/heads/nope"},
		AllowExitCodes(128), DiscardStderr())
	if err != nil {
		t.Fatalf("Run() error = %v with the exit code allowed", err)
	}
}

func TestInput(t *testing.T) {
	runner, _ := initRepo(t)

	out, err := runner.Output(context.Background(),
		[]string{"hash-object", "--stdin"},
		Input([]byte("hello\n")))
	if err != nil {
		t.Fatalf("Output() error = %v", err)
	}
	if got := strings.TrimSpace(string(out)); len(got) != 40 {
		t.Errorf("hash length = %v, want 40", len(got))
	}
}

func TestRunInput(t *testing.T) {
	runner, _ := initRepo(t)

	// update-ref --stdin consumes a transaction from standard input
	sha, err := runner.OutputLine(context.Background(),
		[]string{"hash-object", "-w", "--stdin"},
		Input([]byte("payload\n")))
	if err != nil {
		t.Fatalf("hash-object failed: %v", err)
	}

	tx := "create refs/tags/from-stdin " + sha + "\n"
	if err := runner.RunInput(context.Background(),
		[]string{"update-ref", "--stdin"}, []byte(tx)); err != nil {
		t.Fatalf("RunInput() error = %v", err)
	}

	line, err := runner.OutputLine(context.Background(),
		[]string{"rev-parse", "refs/tags/from-stdin"})
	if err != nil {
		t.Fatalf("rev-parse failed: %v", err)
	}
	if line != sha {
		t.Errorf("ref target = %v, want %v", line, sha)
	}
}

func TestEnvOption(t *testing.T) {
	runner, _ := initRepo(t)

	line, err := runner.OutputLine(context.Background(),
		[]string{"var", "GIT_AUTHOR_IDENT"},
		Env(map[string]string{
			"GIT_AUTHOR_NAME":  "Test Author",
			"GIT_AUTHOR_EMAIL": "test@example.com",
			"GIT_AUTHOR_DATE":  "1609459200 +0000",
		}))
	if err != nil {
		t.Fatalf("OutputLine() error = %v", err)
	}
	if !strings.HasPrefix(line, "Test Author <test@example.com>") {
		t.Errorf("GIT_AUTHOR_IDENT = %q", line)
	}
}

func TestExtend(t *testing.T) {
	runner, _ := initRepo(t)

	derived := runner.Extend(map[string]string{"GIT_AUTHOR_NAME": "Derived"})

	// the derived runner carries the extra entry
	line, err := derived.OutputLine(context.Background(),
		[]string{"var", "GIT_AUTHOR_IDENT"},
		Env(map[string]string{
			"GIT_AUTHOR_EMAIL": "d@example.com",
			"GIT_AUTHOR_DATE":  "1609459200 +0000",
		}))
	if err != nil {
		t.Fatalf("OutputLine() error = %v", err)
	}
	if !strings.HasPrefix(line, "Derived") {
		t.Errorf("GIT_AUTHOR_IDENT = %q", line)
	}
}

func TestSplitRecords(t *testing.T) {
	tests := []struct {
		name string
		out  string
		sep  byte
		want []string
	}{
		{
			name: "newline terminated",
			out:  "a\nb\nc\n",
			sep:  '\n',
			want: []string{"a", "b", "c"},
		},
		{
			name: "no trailing terminator",
			out:  "a\nb",
			sep:  '\n',
			want: []string{"a", "b"},
		},
		{
			name: "empty output",
			out:  "",
			sep:  '\n',
			want: nil,
		},
		{
			name: "null terminated",
			out:  "a\x00b\x00",
			sep:  0,
			want: []string{"a", "b"},
		},
		{
			name: "empty interior record survives",
			out:  "a\n\nb\n",
			sep:  '\n',
			want: []string{"a", "", "b"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := splitRecords([]byte(tt.out), tt.sep)
			if len(got) != len(tt.want) {
				t.Fatalf("splitRecords() = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("record %d = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestExecErrorMessage(t *testing.T) {
	err := &ExecError{
		Args:     []string{"git", "update-ref", "refs/heads/x"},
		ExitCode: 128,
		Stderr:   "fatal: bad ref\n",
	}
	msg := err.Error()
	if !strings.Contains(msg, "update-ref") {
		t.Errorf("Error() = %q, missing command", msg)
	}
	if !strings.Contains(msg, "128") {
		t.Errorf("Error() = %q, missing exit code", msg)
	}
	if !strings.Contains(msg, "bad ref") {
		t.Errorf("Error() = %q, missing stderr", msg)
	}
}
