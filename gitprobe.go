package provenance

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// GitProbe cross-references candidate paths against enclosing git
// repositories using the git CLI. Every subprocess runs under a bounded
// timeout so a hung filesystem cannot stall the whole report.
type GitProbe struct {
	timeout time.Duration
	logf    func(format string, v ...any)
}

// NewGitProbe returns a probe with the given per-command timeout. logf
// receives per-repository read failures; pass nil to discard them.
func NewGitProbe(timeout time.Duration, logf func(format string, v ...any)) *GitProbe {
	if logf == nil {
		logf = func(string, ...any) {}
	}
	return &GitProbe{timeout: timeout, logf: logf}
}

// repoState is the raw metadata read from one repository root.
type repoState struct {
	root      string
	sha1      string
	modified  []string
	untracked []string
	remotes   []string
}

// Probe resolves each candidate to its enclosing repository and returns
// a record per component name. Candidates sharing a path probe the
// repository once; candidates with no enclosing repository are simply
// absent from the result. A failure reading one repository's state is
// logged and that record omitted; the probe continues.
func (p *GitProbe) Probe(ctx context.Context, candidates []CandidatePath, full bool) map[string]RepoRecord {
	states := make(map[string]*repoState)
	for _, cand := range candidates {
		if _, seen := states[cand.Path]; seen {
			continue
		}
		root, found := findRepoRoot(cand.Path)
		if !found {
			states[cand.Path] = nil
			continue
		}
		state, err := p.readState(ctx, root, full)
		if err != nil {
			p.logf("checking git repo %s: %v", root, err)
			states[cand.Path] = nil
			continue
		}
		states[cand.Path] = state
	}

	records := make(map[string]RepoRecord)
	for _, cand := range candidates {
		state := states[cand.Path]
		if state == nil {
			continue
		}
		rec := RepoRecord{
			Git: GitState{
				SHA1:      state.sha1,
				Modified:  state.modified,
				Untracked: state.untracked,
				Full:      full,
			},
		}
		if full {
			rec.Path = state.root
			rec.Git.Remotes = state.remotes
		}
		records[cand.Name] = rec
	}
	return records
}

// findRepoRoot ascends from the candidate's containing directory toward
// the filesystem root, looking for a .git entry. Worktrees mark their
// root with a .git file rather than a directory, so any stat hit counts.
func findRepoRoot(start string) (string, bool) {
	dir := start
	if info, err := os.Stat(start); err != nil || !info.IsDir() {
		dir = filepath.Dir(start)
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, ".git")); err == nil {
			return dir, true
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}

// readState reads commit and dirty-state metadata for the repository
// rooted at root. Remote URLs are read in full mode only.
func (p *GitProbe) readState(ctx context.Context, root string, full bool) (*repoState, error) {
	sha, err := p.run(ctx, root, "rev-parse", "HEAD")
	if err != nil {
		return nil, err
	}

	// -z gives NUL-separated entries with unquoted paths, so names with
	// spaces or non-ASCII bytes come through exactly.
	status, err := p.runRaw(ctx, root, "status", "--porcelain", "-z")
	if err != nil {
		return nil, err
	}
	modified, untracked := parseStatus(status)

	state := &repoState{
		root:      root,
		sha1:      sha,
		modified:  modified,
		untracked: untracked,
	}

	if full {
		remotes, err := p.run(ctx, root, "remote", "-v")
		if err != nil {
			return nil, err
		}
		state.remotes = parseRemotes(remotes)
	}
	return state, nil
}

// parseStatus splits `git status --porcelain -z` output into sorted
// modified and untracked path lists. A rename or copy entry carries the
// original path as the following NUL field; a rename counts both paths
// as modified, a copy only the new one.
func parseStatus(out string) (modified, untracked []string) {
	entries := strings.Split(out, "\x00")
	for i := 0; i < len(entries); i++ {
		entry := entries[i]
		if len(entry) < 4 {
			continue
		}
		relPath := entry[3:]
		switch {
		case strings.HasPrefix(entry, "??"):
			untracked = append(untracked, relPath)
		case entry[0] == 'R' || entry[0] == 'C':
			modified = append(modified, relPath)
			if i+1 < len(entries) {
				if entry[0] == 'R' && entries[i+1] != "" {
					modified = append(modified, entries[i+1])
				}
				i++
			}
		default:
			modified = append(modified, relPath)
		}
	}
	sort.Strings(modified)
	sort.Strings(untracked)
	return modified, untracked
}

// parseRemotes extracts fetch URLs from `git remote -v` output,
// preserving order and dropping duplicates.
func parseRemotes(out string) []string {
	var urls []string
	seen := make(map[string]bool)
	for _, line := range strings.Split(out, "\n") {
		fields := strings.Fields(line)
		if len(fields) < 3 || fields[2] != "(fetch)" {
			continue
		}
		if !seen[fields[1]] {
			seen[fields[1]] = true
			urls = append(urls, fields[1])
		}
	}
	return urls
}

// run executes a git command targeting root and returns trimmed stdout.
func (p *GitProbe) run(ctx context.Context, root string, args ...string) (string, error) {
	out, err := p.runRaw(ctx, root, args...)
	return strings.TrimSpace(out), err
}

// runRaw executes a git command targeting root and returns stdout
// untouched. NUL-delimited output keeps its significant leading bytes.
// Stderr is captured separately and folded into the error on failure.
func (p *GitProbe) runRaw(ctx context.Context, root string, args ...string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	fullArgs := append([]string{"-C", root}, args...)
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, "git", fullArgs...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("git %s in %s: %w (stderr: %s)",
			strings.Join(args, " "), root, err, strings.TrimSpace(stderr.String()))
	}
	return stdout.String(), nil
}
