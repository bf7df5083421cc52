package provenance

import (
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
)

// Root names a well-known install location on the filesystem, used to
// shorten component paths to symbolic tokens.
type Root struct {
	Name string
	Path string
}

// stdlibRootName is the root whose token marks standard-library
// components; components resolving under it carry no provenance value.
const stdlibRootName = "goroot"

// RootResolver maps filesystem paths to symbolic root tokens. Roots are
// deduplicated by path (first name wins) and tried longest-path-first so
// the most specific root matches even when roots nest.
type RootResolver struct {
	roots []Root
}

// NewRootResolver builds a resolver from the given roots. Roots with
// empty paths are dropped; duplicate paths keep the first name seen.
func NewRootResolver(roots []Root) *RootResolver {
	seen := make(map[string]bool, len(roots))
	kept := make([]Root, 0, len(roots))
	for _, r := range roots {
		if r.Path == "" || seen[r.Path] {
			continue
		}
		seen[r.Path] = true
		kept = append(kept, r)
	}
	sort.SliceStable(kept, func(i, j int) bool {
		return len(kept[i].Path) > len(kept[j].Path)
	})
	return &RootResolver{roots: kept}
}

// Normalize replaces the first matching root path in path with its
// "<name>" token. Paths matching no root are returned unchanged.
func (r *RootResolver) Normalize(path string) string {
	for _, root := range r.roots {
		if strings.Contains(path, root.Path) {
			return strings.Replace(path, root.Path, "<"+root.Name+">", 1)
		}
	}
	return path
}

// Roots returns the name-to-path mapping, one entry per retained root.
func (r *RootResolver) Roots() map[string]string {
	m := make(map[string]string, len(r.roots))
	for _, root := range r.roots {
		if _, ok := m[root.Name]; !ok {
			m[root.Name] = root.Path
		}
	}
	return m
}

// DefaultRoots returns the install roots the Go runtime reports for this
// process: the standard library root, the module cache, and GOPATH.
func DefaultRoots() []Root {
	var roots []Root
	if goroot := runtime.GOROOT(); goroot != "" {
		roots = append(roots, Root{Name: stdlibRootName, Path: goroot})
	}

	gopath := os.Getenv("GOPATH")
	if gopath == "" {
		if home, err := os.UserHomeDir(); err == nil {
			gopath = filepath.Join(home, "go")
		}
	}

	modcache := os.Getenv("GOMODCACHE")
	if modcache == "" && gopath != "" {
		modcache = filepath.Join(gopath, "pkg", "mod")
	}
	if modcache != "" {
		roots = append(roots, Root{Name: "modcache", Path: modcache})
	}
	if gopath != "" {
		roots = append(roots, Root{Name: "gopath", Path: gopath})
	}
	return roots
}
