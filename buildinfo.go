package provenance

import (
	"errors"
	"path/filepath"
	"runtime/debug"
)

// BuildInfoRegistry exposes the modules compiled into the running binary
// as components. Versions come from the embedded build information;
// modules replaced with a local directory report that directory as their
// source path instead, which makes them candidates for git lookup.
type BuildInfoRegistry struct {
	comps []Component
}

// NewBuildInfoRegistry reads the build information embedded in the
// running binary. It fails when the binary was built without module
// support, which in turn fails the whole gather call.
func NewBuildInfoRegistry() (*BuildInfoRegistry, error) {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return nil, errors.New("no build info embedded in this binary")
	}
	return newBuildInfoRegistry(info), nil
}

func newBuildInfoRegistry(info *debug.BuildInfo) *BuildInfoRegistry {
	var comps []Component

	if info.Main.Path != "" {
		main := buildModule{path: info.Main.Path, version: moduleVersion(info.Main.Version)}
		if main.version == "" {
			// The main module is usually stamped "(devel)"; fall back to
			// the VCS revision recorded at build time.
			main.version = vcsRevision(info.Settings)
		}
		comps = append(comps, main)
	}

	for _, dep := range info.Deps {
		m := buildModule{path: dep.Path, version: moduleVersion(dep.Version)}
		if r := dep.Replace; r != nil {
			m.version = moduleVersion(r.Version)
			if r.Version == "" {
				// A replace directive with no version targets a local
				// directory checkout.
				m.srcPath = absPath(r.Path)
			}
		}
		comps = append(comps, m)
	}

	return &BuildInfoRegistry{comps: comps}
}

func (r *BuildInfoRegistry) Components() ([]Component, error) { return r.comps, nil }

// Hierarchical is false: module paths embed dots in their host part, so
// every module is treated as a top-level component.
func (r *BuildInfoRegistry) Hierarchical() bool { return false }

// buildModule adapts one build-info module to the Component capability.
type buildModule struct {
	path    string
	version string
	srcPath string
}

func (m buildModule) Name() string { return m.path }

func (m buildModule) TryVersion() (string, bool) {
	return m.version, m.version != ""
}

func (m buildModule) TrySourcePath() (string, bool) {
	return m.srcPath, m.srcPath != ""
}

func (m buildModule) Builtin() bool { return false }

func (m buildModule) String() string { return "module " + m.path }

// moduleVersion filters out the placeholder the toolchain stamps on
// modules built from source trees.
func moduleVersion(v string) string {
	if v == "(devel)" {
		return ""
	}
	return v
}

// vcsRevision returns the VCS revision build setting, suffixed with
// "-dirty" when the working tree was modified at build time.
func vcsRevision(settings []debug.BuildSetting) string {
	var revision string
	var modified bool
	for _, s := range settings {
		switch s.Key {
		case "vcs.revision":
			revision = s.Value
		case "vcs.modified":
			modified = s.Value == "true"
		}
	}
	if revision != "" && modified {
		return revision + "-dirty"
	}
	return revision
}

func absPath(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return path
}
