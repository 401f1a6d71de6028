package main

import (
	"os/exec"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRefsListPlain(t *testing.T) {
	_, git := initTestRepo(t)
	head := git("rev-parse", "HEAD")
	branch := git("symbolic-ref", "HEAD")

	out, err := runCommand(t, newRefsCmd(), "list", "--plain")
	require.NoError(t, err)
	assert.Contains(t, out, head+" "+branch)
}

func TestRefsListPrefix(t *testing.T) {
	_, git := initTestRepo(t)
	git("update-ref", "refs/stacks/dev", "HEAD")

	out, err := runCommand(t, newRefsCmd(), "list", "--plain", "refs/stacks/")
	require.NoError(t, err)
	assert.Contains(t, out, "refs/stacks/dev")
	assert.NotContains(t, out, "refs/heads/")
}

func TestRefsListTable(t *testing.T) {
	_, git := initTestRepo(t)
	branch := git("symbolic-ref", "HEAD")

	out, err := runCommand(t, newRefsCmd(), "list")
	require.NoError(t, err)
	assert.Contains(t, out, branch)
	assert.Contains(t, out, "first commit")
}

func TestRefsSet(t *testing.T) {
	_, git := initTestRepo(t)
	head := git("rev-parse", "HEAD")

	_, err := runCommand(t, newRefsCmd(), "set", "refs/heads/copy", "HEAD")
	require.NoError(t, err)
	assert.Equal(t, head, git("rev-parse", "refs/heads/copy"))
}

func TestRefsDelete(t *testing.T) {
	_, git := initTestRepo(t)
	git("update-ref", "refs/heads/doomed", "HEAD")

	_, err := runCommand(t, newRefsCmd(), "delete", "refs/heads/doomed")
	require.NoError(t, err)

	out, err := runCommand(t, newRefsCmd(), "list", "--plain")
	require.NoError(t, err)
	assert.NotContains(t, out, "refs/heads/doomed")
}

func TestRefsDeleteMissing(t *testing.T) {
	initTestRepo(t)

	_, err := runCommand(t, newRefsCmd(), "delete", "refs/heads/never-existed")
	require.Error(t, err)
}

func TestRefsRename(t *testing.T) {
	dir, git := initTestRepo(t)
	head := git("rev-parse", "HEAD")
	git("update-ref", "refs/heads/alpha", "HEAD")

	_, err := runCommand(t, newRefsCmd(), "rename", "refs/heads/alpha", "refs/heads/beta")
	require.NoError(t, err)

	assert.Equal(t, head, git("rev-parse", "refs/heads/beta"))

	check := exec.Command("git", "show-ref", "--verify", "refs/heads/alpha")
	check.Dir = dir
	require.Error(t, check.Run(), "old name should be gone")
}

func TestRefsSetThenListSeesUpdate(t *testing.T) {
	dir, git := initTestRepo(t)
	writeFile(t, dir, "file.txt", "two\n")
	git("commit", "-q", "-am", "second commit")
	older := git("rev-parse", "HEAD^")

	_, err := runCommand(t, newRefsCmd(), "set", "refs/heads/pinned", "HEAD^")
	require.NoError(t, err)

	out, err := runCommand(t, newRefsCmd(), "list", "--plain", "refs/heads/pinned")
	require.NoError(t, err)
	assert.Equal(t, older+" refs/heads/pinned", strings.TrimSpace(out))
}
