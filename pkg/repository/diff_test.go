package repository

import (
	"context"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/stackedgit/stackgit/pkg/common/err"
	"github.com/stackedgit/stackgit/pkg/objects"
)

const (
	diffShaA = "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"
	diffShaB = "bbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb"
	nullSha  = "0000000000000000000000000000000000000000"
)

func TestBuildDiffTreeArgs(t *testing.T) {
	tests := []struct {
		name string
		opts []DiffOption
		want []string
	}{
		{
			name: "defaults",
			opts: nil,
			want: []string{"--patch", "--binary"},
		},
		{
			name: "without binary",
			opts: []DiffOption{WithoutBinary()},
			want: []string{"--patch"},
		},
		{
			name: "full index",
			opts: []DiffOption{WithFullIndex()},
			want: []string{"--patch", "--binary", "--full-index"},
		},
		{
			name: "extra flags",
			opts: []DiffOption{WithDiffArgs("-M", "--ignore-space-change")},
			want: []string{"--patch", "--binary", "-M", "--ignore-space-change"},
		},
		{
			name: "binary already among extras",
			opts: []DiffOption{WithDiffArgs("--binary")},
			want: []string{"--patch", "--binary"},
		},
		{
			name: "stat",
			opts: []DiffOption{WithStat()},
			want: []string{"--stat", "--summary"},
		},
		{
			name: "stat drops binary from extras",
			opts: []DiffOption{WithStat(), WithDiffArgs("--binary", "-M")},
			want: []string{"--stat", "--summary", "-M"},
		},
		{
			name: "path limits",
			opts: []DiffOption{WithPathLimits("docs", "src")},
			want: []string{"--patch", "--binary", "--", "docs", "src"},
		},
		{
			name: "stat with path limits",
			opts: []DiffOption{WithStat(), WithPathLimits("docs")},
			want: []string{"--stat", "--summary", "--", "docs"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &diffConfig{}
			for _, opt := range tt.opts {
				opt(cfg)
			}
			if got := buildDiffTreeArgs(cfg); !slices.Equal(got, tt.want) {
				t.Errorf("buildDiffTreeArgs() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseChangeHeader(t *testing.T) {
	h, parseErr := parseChangeHeader(":100644 100755 " + diffShaA + " " + diffShaB + " M")
	if parseErr != nil {
		t.Fatalf("parseChangeHeader() error = %v", parseErr)
	}
	if h.oldMode != objects.FileModeRegular || h.newMode != objects.FileModeExecutable {
		t.Errorf("modes = %v/%v", h.oldMode, h.newMode)
	}
	if h.oldHash != objects.ObjectHash(diffShaA) || h.newHash != objects.ObjectHash(diffShaB) {
		t.Errorf("hashes = %v/%v", h.oldHash, h.newHash)
	}
	if h.status != "M" {
		t.Errorf("status = %q", h.status)
	}

	// similarity scores stay attached to the status
	h, parseErr = parseChangeHeader(":100644 100644 " + diffShaA + " " + diffShaA + " R100")
	if parseErr != nil {
		t.Fatalf("parseChangeHeader() error = %v", parseErr)
	}
	if h.status != "R100" {
		t.Errorf("status = %q, want R100", h.status)
	}
}

func TestParseChangeHeaderMalformed(t *testing.T) {
	tests := []struct {
		name   string
		header string
	}{
		{name: "missing colon", header: "100644 100644 " + diffShaA + " " + diffShaB + " M"},
		{name: "too few fields", header: ":100644 100644 " + diffShaA + " M"},
		{name: "too many fields", header: ":100644 100644 " + diffShaA + " " + diffShaB + " M extra"},
		{name: "empty status", header: ":100644 100644 " + diffShaA + " " + diffShaB + " "},
		{name: "bad mode", header: ":10z644 100644 " + diffShaA + " " + diffShaB + " M"},
		{name: "bad hash", header: ":100644 100644 nothex " + diffShaB + " M"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, parseErr := parseChangeHeader(tt.header)
			if parseErr == nil {
				t.Fatal("parseChangeHeader() error = nil")
			}
			if !err.IsCode(parseErr, err.CodeInvalidFormat) {
				t.Errorf("error code = %v, want %v", err.GetCode(parseErr), err.CodeInvalidFormat)
			}
		})
	}
}

// collectChanges drains emitChanges over a bare blob cache.
func collectChanges(raw string) ([]FileChange, error) {
	cache := objects.NewCache(func(h objects.ObjectHash) *objects.Blob {
		return objects.NewBlob(nil, h)
	})

	var changes []FileChange
	var firstErr error
	emitChanges([]byte(raw), cache.Get, func(c FileChange, e error) bool {
		if e != nil {
			firstErr = e
			return false
		}
		changes = append(changes, c)
		return true
	})
	return changes, firstErr
}

func TestEmitChanges(t *testing.T) {
	raw := ":100644 100644 " + diffShaA + " " + diffShaB + " M\x00file.txt\x00" +
		":000000 100644 " + nullSha + " " + diffShaB + " A\x00added.txt\x00" +
		":100644 100644 " + diffShaA + " " + diffShaA + " R075\x00old/name.txt\x00new/name.txt\x00"

	changes, emitErr := collectChanges(raw)
	if emitErr != nil {
		t.Fatalf("emitChanges() error = %v", emitErr)
	}
	if len(changes) != 3 {
		t.Fatalf("got %d changes, want 3", len(changes))
	}

	modified := changes[0]
	if modified.Status != "M" || modified.OldPath != "file.txt" || modified.NewPath != "file.txt" {
		t.Errorf("modified record = %+v", modified)
	}
	if modified.OldBlob.Hash() != objects.ObjectHash(diffShaA) {
		t.Errorf("old blob = %v", modified.OldBlob.Hash())
	}

	added := changes[1]
	if added.OldMode != objects.FileModeAbsent {
		t.Errorf("added old mode = %v, want absent", added.OldMode)
	}
	if added.OldBlob.Hash() != objects.ObjectHash(nullSha) {
		t.Errorf("added old blob = %v", added.OldBlob.Hash())
	}

	renamed := changes[2]
	if renamed.Status != "R075" {
		t.Errorf("renamed status = %q", renamed.Status)
	}
	if renamed.OldPath != "old/name.txt" || renamed.NewPath != "new/name.txt" {
		t.Errorf("renamed paths = %q -> %q", renamed.OldPath, renamed.NewPath)
	}
}

func TestEmitChangesEmpty(t *testing.T) {
	changes, emitErr := collectChanges("")
	if emitErr != nil || len(changes) != 0 {
		t.Errorf("emitChanges() = %v, %v on empty input", changes, emitErr)
	}
}

func TestEmitChangesTruncated(t *testing.T) {
	// a rename record missing its second path
	raw := ":100644 100644 " + diffShaA + " " + diffShaA + " R100\x00only/path.txt"
	_, emitErr := collectChanges(raw)
	if emitErr == nil {
		t.Fatal("emitChanges() error = nil for a truncated stream")
	}
	if !err.IsCode(emitErr, err.CodeInvalidFormat) {
		t.Errorf("error code = %v, want %v", err.GetCode(emitErr), err.CodeInvalidFormat)
	}
}

func TestEmitChangesStopsWhenTold(t *testing.T) {
	raw := ":100644 100644 " + diffShaA + " " + diffShaB + " M\x00a.txt\x00" +
		":100644 100644 " + diffShaA + " " + diffShaB + " M\x00b.txt\x00"

	cache := objects.NewCache(func(h objects.ObjectHash) *objects.Blob {
		return objects.NewBlob(nil, h)
	})
	var seen int
	emitChanges([]byte(raw), cache.Get, func(c FileChange, e error) bool {
		seen++
		return false
	})
	if seen != 1 {
		t.Errorf("yield called %d times after returning false, want 1", seen)
	}
}

// twoTrees grows the test repository by one commit and returns the tree
// handles before and after.
func twoTrees(t *testing.T) (*Repository, *objects.Tree, *objects.Tree) {
	t.Helper()
	repo, dir, git := initTestRepo(t)

	t1 := repo.Tree(objects.ObjectHash(git("rev-parse", "HEAD^{tree}")))
	writeFile(t, dir, "file.txt", "two\n")
	writeFile(t, dir, "other.txt", "new\n")
	git("add", "file.txt", "other.txt")
	git("commit", "-q", "-m", "second")
	t2 := repo.Tree(objects.ObjectHash(git("rev-parse", "HEAD^{tree}")))

	return repo, t1, t2
}

func TestDiffTreePatch(t *testing.T) {
	repo, t1, t2 := twoTrees(t)

	patch, diffErr := repo.DiffTree(t1, t2)
	if diffErr != nil {
		t.Fatalf("DiffTree() error = %v", diffErr)
	}
	text := string(patch)
	if !strings.Contains(text, "diff --git") {
		t.Errorf("patch missing diff header:\n%s", text)
	}
	if !strings.Contains(text, "+two") || !strings.Contains(text, "+new") {
		t.Errorf("patch missing changed content:\n%s", text)
	}
}

func TestDiffTreeStat(t *testing.T) {
	repo, t1, t2 := twoTrees(t)

	stat, diffErr := repo.DiffTree(t1, t2, WithStat())
	if diffErr != nil {
		t.Fatalf("DiffTree(stat) error = %v", diffErr)
	}
	text := string(stat)
	if strings.Contains(text, "diff --git") {
		t.Errorf("stat output carries a patch:\n%s", text)
	}
	if !strings.Contains(text, "file.txt") || !strings.Contains(text, "|") {
		t.Errorf("stat output = %q", text)
	}
}

func TestDiffTreePathLimits(t *testing.T) {
	repo, t1, t2 := twoTrees(t)

	patch, diffErr := repo.DiffTree(t1, t2, WithPathLimits("other.txt"))
	if diffErr != nil {
		t.Fatalf("DiffTree() error = %v", diffErr)
	}
	if strings.Contains(string(patch), "file.txt") {
		t.Errorf("path limit ignored:\n%s", patch)
	}
	if !strings.Contains(string(patch), "other.txt") {
		t.Errorf("limited path missing:\n%s", patch)
	}
}

func TestApplyRoundTrip(t *testing.T) {
	repo, t1, t2 := twoTrees(t)
	ctx := context.Background()

	patch, diffErr := repo.FullIndexDiff(t1, t2)
	if diffErr != nil {
		t.Fatalf("FullIndexDiff() error = %v", diffErr)
	}

	result, applyErr := repo.Apply(ctx, t1, patch, true)
	if applyErr != nil {
		t.Fatalf("Apply() error = %v", applyErr)
	}
	if result == nil {
		t.Fatal("Apply() = nil for a clean patch")
	}
	if result.Hash() != t2.Hash() {
		t.Errorf("applied tree = %v, want %v", result.Hash(), t2.Hash())
	}
}

func TestApplyEmptyPatch(t *testing.T) {
	repo, t1, _ := twoTrees(t)

	result, applyErr := repo.Apply(context.Background(), t1, nil, true)
	if applyErr != nil {
		t.Fatalf("Apply() error = %v", applyErr)
	}
	if result != t1 {
		t.Error("empty patch did not return the input tree")
	}
}

func TestApplyRefused(t *testing.T) {
	repo, t1, t2 := twoTrees(t)
	ctx := context.Background()

	// a patch taking t1 to t2 has no context against t2 itself
	patch, diffErr := repo.FullIndexDiff(t1, t2)
	if diffErr != nil {
		t.Fatalf("FullIndexDiff() error = %v", diffErr)
	}
	result, applyErr := repo.Apply(ctx, t2, patch, true)
	if applyErr != nil {
		t.Fatalf("Apply() error = %v for an unappliable patch", applyErr)
	}
	if result != nil {
		t.Errorf("Apply() = %v, want nil", result.Hash())
	}
}

func TestApplyLeavesNoTempIndex(t *testing.T) {
	repo, t1, t2 := twoTrees(t)
	ctx := context.Background()

	patch, _ := repo.FullIndexDiff(t1, t2)
	if _, applyErr := repo.Apply(ctx, t1, patch, true); applyErr != nil {
		t.Fatalf("Apply() error = %v", applyErr)
	}
	if _, applyErr := repo.Apply(ctx, t2, patch, true); applyErr != nil {
		t.Fatalf("second Apply() error = %v", applyErr)
	}

	leftovers, globErr := filepath.Glob(filepath.Join(repo.GitDir(), "index.temp-*"))
	if globErr != nil {
		t.Fatal(globErr)
	}
	if len(leftovers) != 0 {
		t.Errorf("temp index files left behind: %v", leftovers)
	}
}

func TestDiffTreeFiles(t *testing.T) {
	repo, t1, t2 := twoTrees(t)

	var changes []FileChange
	for change, iterErr := range repo.DiffTreeFiles(t1, t2) {
		if iterErr != nil {
			t.Fatalf("DiffTreeFiles() error = %v", iterErr)
		}
		changes = append(changes, change)
	}

	if len(changes) != 2 {
		t.Fatalf("got %d changes, want 2", len(changes))
	}

	modified := changes[0]
	if modified.Status != "M" || modified.OldPath != "file.txt" {
		t.Errorf("first change = %+v", modified)
	}
	data, blobErr := modified.NewBlob.Data()
	if blobErr != nil {
		t.Fatalf("NewBlob.Data() error = %v", blobErr)
	}
	if string(data) != "two\n" {
		t.Errorf("new blob content = %q", data)
	}

	added := changes[1]
	if added.Status != "A" || added.NewPath != "other.txt" {
		t.Errorf("second change = %+v", added)
	}
	if added.OldMode != objects.FileModeAbsent {
		t.Errorf("added old mode = %v", added.OldMode)
	}
}

func TestDiffTreeFilesSameTree(t *testing.T) {
	repo, t1, _ := twoTrees(t)

	for change, iterErr := range repo.DiffTreeFiles(t1, t1) {
		if iterErr != nil {
			t.Fatalf("DiffTreeFiles() error = %v", iterErr)
		}
		t.Errorf("unexpected change %+v for identical trees", change)
	}
}

func TestSimpleMerge(t *testing.T) {
	repo, dir, git := initTestRepo(t)
	ctx := context.Background()

	baseCommit := git("rev-parse", "HEAD")
	base := repo.Tree(objects.ObjectHash(git("rev-parse", "HEAD^{tree}")))

	writeFile(t, dir, "file.txt", "ours\n")
	git("commit", "-q", "-a", "-m", "ours")
	ours := repo.Tree(objects.ObjectHash(git("rev-parse", "HEAD^{tree}")))

	git("checkout", "-q", "-b", "theirs", baseCommit)
	writeFile(t, dir, "other.txt", "theirs\n")
	git("add", "other.txt")
	git("commit", "-q", "-m", "theirs")
	theirs := repo.Tree(objects.ObjectHash(git("rev-parse", "HEAD^{tree}")))

	result, mergeErr := repo.SimpleMerge(ctx, base, ours, theirs)
	if mergeErr != nil {
		t.Fatalf("SimpleMerge() error = %v", mergeErr)
	}
	if result == nil {
		t.Fatal("SimpleMerge() = nil for a clean merge")
	}

	merged := git("ls-tree", "-r", "--name-only", result.Hash().String())
	if merged != "file.txt\nother.txt" {
		t.Errorf("merged tree = %q", merged)
	}
	if got := git("show", result.Hash().String()+":file.txt"); got != "ours" {
		t.Errorf("merged file.txt = %q", got)
	}
}

func TestSimpleMergeConflict(t *testing.T) {
	repo, dir, git := initTestRepo(t)
	ctx := context.Background()

	baseCommit := git("rev-parse", "HEAD")
	base := repo.Tree(objects.ObjectHash(git("rev-parse", "HEAD^{tree}")))

	writeFile(t, dir, "file.txt", "ours\n")
	git("commit", "-q", "-a", "-m", "ours")
	ours := repo.Tree(objects.ObjectHash(git("rev-parse", "HEAD^{tree}")))

	git("checkout", "-q", "-b", "theirs", baseCommit)
	writeFile(t, dir, "file.txt", "theirs\n")
	git("commit", "-q", "-a", "-m", "theirs")
	theirs := repo.Tree(objects.ObjectHash(git("rev-parse", "HEAD^{tree}")))

	result, mergeErr := repo.SimpleMerge(ctx, base, ours, theirs)
	if mergeErr != nil {
		t.Fatalf("SimpleMerge() error = %v", mergeErr)
	}
	if result != nil {
		t.Errorf("SimpleMerge() = %v for conflicting changes, want nil", result.Hash())
	}
}
