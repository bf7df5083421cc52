package provenance

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// initTestRepo creates a git repository with one committed file and
// returns its root. Tests calling it skip when git is unavailable.
func initTestRepo(t *testing.T) string {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not on PATH")
	}

	root := t.TempDir()
	mustGit(t, root, "init")
	mustGit(t, root, "config", "user.email", "test@example.com")
	mustGit(t, root, "config", "user.name", "test")

	require.NoError(t, os.WriteFile(filepath.Join(root, "tracked.txt"), []byte("v1\n"), 0o644))
	mustGit(t, root, "add", "tracked.txt")
	mustGit(t, root, "commit", "-m", "initial")
	return root
}

func mustGit(t *testing.T, dir string, args ...string) {
	t.Helper()
	cmd := exec.Command("git", append([]string{"-C", dir}, args...)...)
	out, err := cmd.CombinedOutput()
	require.NoError(t, err, "git %v: %s", args, out)
}

func TestProbe_CleanRepo(t *testing.T) {
	t.Parallel()
	root := initTestRepo(t)

	p := NewGitProbe(30*time.Second, nil)
	records := p.Probe(context.Background(), []CandidatePath{
		{Name: "mylib", Path: filepath.Join(root, "tracked.txt")},
	}, false)

	require.Contains(t, records, "mylib")
	rec := records["mylib"]
	assert.Len(t, rec.Git.SHA1, 40)
	assert.Empty(t, rec.Git.Modified)
	assert.Empty(t, rec.Git.Untracked)
	assert.Empty(t, rec.Path, "path is a full-mode field")
}

func TestProbe_DirtyRepoSortedLists(t *testing.T) {
	t.Parallel()
	root := initTestRepo(t)

	// One modification, two untracked files written in reverse order.
	require.NoError(t, os.WriteFile(filepath.Join(root, "tracked.txt"), []byte("v2\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "zz.txt"), []byte("z"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "aa.txt"), []byte("a"), 0o644))

	p := NewGitProbe(30*time.Second, nil)
	records := p.Probe(context.Background(), []CandidatePath{
		{Name: "mylib", Path: root},
	}, true)

	require.Contains(t, records, "mylib")
	rec := records["mylib"]
	assert.Equal(t, []string{"tracked.txt"}, rec.Git.Modified)
	assert.Equal(t, []string{"aa.txt", "zz.txt"}, rec.Git.Untracked)
	assert.Equal(t, root, rec.Path)
	assert.True(t, rec.Git.Full)
}

func TestProbe_AscendsFromNestedPath(t *testing.T) {
	t.Parallel()
	root := initTestRepo(t)
	deep := filepath.Join(root, "a", "b", "c")
	require.NoError(t, os.MkdirAll(deep, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(deep, "mod.go"), []byte("package c\n"), 0o644))

	p := NewGitProbe(30*time.Second, nil)
	records := p.Probe(context.Background(), []CandidatePath{
		{Name: "nested", Path: filepath.Join(deep, "mod.go")},
	}, false)

	require.Contains(t, records, "nested")
	assert.Len(t, records["nested"].Git.SHA1, 40)
}

func TestProbe_MetadataFailureOmitsRecordAndContinues(t *testing.T) {
	t.Parallel()
	healthy := initTestRepo(t)

	// An empty .git directory is found by the ascent but unreadable by
	// every metadata command.
	broken := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(broken, ".git"), 0o755))

	var logged []string
	p := NewGitProbe(30*time.Second, func(format string, v ...any) {
		logged = append(logged, fmt.Sprintf(format, v...))
	})
	records := p.Probe(context.Background(), []CandidatePath{
		{Name: "broken", Path: broken},
		{Name: "healthy", Path: healthy},
	}, false)

	assert.NotContains(t, records, "broken")
	require.Contains(t, records, "healthy")
	assert.Len(t, records["healthy"].Git.SHA1, 40)
	require.Len(t, logged, 1)
	assert.Contains(t, logged[0], broken)
}

func TestProbe_NonRepoAbsent(t *testing.T) {
	t.Parallel()
	// A path with no .git anywhere up to the filesystem root produces no
	// record at all, not an error entry.
	dir := t.TempDir()

	p := NewGitProbe(30*time.Second, nil)
	records := p.Probe(context.Background(), []CandidatePath{
		{Name: "plain", Path: dir},
	}, false)

	assert.NotContains(t, records, "plain")
}

func TestProbe_SharedRepoOneRecordPerName(t *testing.T) {
	t.Parallel()
	root := initTestRepo(t)

	p := NewGitProbe(30*time.Second, nil)
	records := p.Probe(context.Background(), []CandidatePath{
		{Name: "one", Path: root},
		{Name: "two", Path: root},
	}, false)

	require.Contains(t, records, "one")
	require.Contains(t, records, "two")
	assert.Equal(t, records["one"].Git.SHA1, records["two"].Git.SHA1)
}

func TestProbe_PathsWithSpacesUnquoted(t *testing.T) {
	t.Parallel()
	root := initTestRepo(t)
	require.NoError(t, os.WriteFile(filepath.Join(root, "has space.txt"), []byte("x"), 0o644))

	p := NewGitProbe(30*time.Second, nil)
	records := p.Probe(context.Background(), []CandidatePath{
		{Name: "mylib", Path: root},
	}, false)

	require.Contains(t, records, "mylib")
	assert.Equal(t, []string{"has space.txt"}, records["mylib"].Git.Untracked)
}

func TestProbe_RenameCountsBothPaths(t *testing.T) {
	t.Parallel()
	root := initTestRepo(t)
	mustGit(t, root, "mv", "tracked.txt", "renamed.txt")

	p := NewGitProbe(30*time.Second, nil)
	records := p.Probe(context.Background(), []CandidatePath{
		{Name: "mylib", Path: root},
	}, false)

	require.Contains(t, records, "mylib")
	assert.Equal(t, []string{"renamed.txt", "tracked.txt"}, records["mylib"].Git.Modified)
}

func TestParseStatus(t *testing.T) {
	t.Parallel()
	out := "?? new file.txt\x00 M edited.go\x00R  moved.go\x00orig.go\x00C  copy.go\x00src.go\x00"

	modified, untracked := parseStatus(out)
	assert.Equal(t, []string{"copy.go", "edited.go", "moved.go", "orig.go"}, modified)
	assert.Equal(t, []string{"new file.txt"}, untracked)
}

func TestParseRemotes_FetchOnlyDeduplicated(t *testing.T) {
	t.Parallel()
	out := "origin\thttps://example.com/a.git (fetch)\n" +
		"origin\thttps://example.com/a.git (push)\n" +
		"mirror\thttps://example.com/b.git (fetch)\n"

	assert.Equal(t,
		[]string{"https://example.com/a.git", "https://example.com/b.git"},
		parseRemotes(out))
}
