package main

import (
	"bytes"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
)

// requireGit skips the test when no git binary is on PATH.
func requireGit(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}
}

// gitIn returns a helper that runs git in dir with a fixed identity and
// fails the test on any error. Output comes back with surrounding
// whitespace trimmed.
func gitIn(t *testing.T, dir string) func(args ...string) string {
	t.Helper()
	return func(args ...string) string {
		t.Helper()
		cmd := exec.Command("git", args...)
		cmd.Dir = dir
		cmd.Env = append(os.Environ(),
			"GIT_AUTHOR_NAME=Test Author",
			"GIT_AUTHOR_EMAIL=test@example.com",
			"GIT_COMMITTER_NAME=Test Author",
			"GIT_COMMITTER_EMAIL=test@example.com",
		)
		out, err := cmd.CombinedOutput()
		require.NoError(t, err, "git %s: %s", strings.Join(args, " "), out)
		return strings.TrimSpace(string(out))
	}
}

// gitOutput runs git in dir and returns its stdout byte for byte. Used
// where trailing newlines matter, like captured patches.
func gitOutput(t *testing.T, dir string, args ...string) []byte {
	t.Helper()
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	out, err := cmd.Output()
	require.NoError(t, err, "git %s", strings.Join(args, " "))
	return out
}

// initTestRepo creates a repository with one commit, changes the working
// directory into it and returns the directory plus a git helper for it.
func initTestRepo(t *testing.T) (string, func(args ...string) string) {
	t.Helper()
	requireGit(t)

	dir := t.TempDir()
	git := gitIn(t, dir)
	git("init", "-q")
	writeFile(t, dir, "file.txt", "one\n")
	git("add", "file.txt")
	git("commit", "-q", "-m", "first commit")

	t.Chdir(dir)
	return dir, git
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

// runCommand executes a freshly constructed command in-process and
// captures its stdout.
func runCommand(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

// runCommandInput is runCommand with bytes fed to the command's stdin.
func runCommandInput(t *testing.T, cmd *cobra.Command, input []byte, args ...string) (string, error) {
	t.Helper()
	cmd.SetIn(bytes.NewReader(input))
	return runCommand(t, cmd, args...)
}
