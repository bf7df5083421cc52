package provenance

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeComponent covers every classification branch through its fields.
type fakeComponent struct {
	name    string
	version string
	hasVer  bool
	srcPath string
	hasPath bool
	builtin bool
	str     string
}

func (c fakeComponent) Name() string                  { return c.name }
func (c fakeComponent) TryVersion() (string, bool)    { return c.version, c.hasVer }
func (c fakeComponent) TrySourcePath() (string, bool) { return c.srcPath, c.hasPath }
func (c fakeComponent) Builtin() bool                 { return c.builtin }
func (c fakeComponent) String() string                { return c.str }

type fakeRegistry struct {
	comps        []Component
	hierarchical bool
	err          error
}

func (r fakeRegistry) Components() ([]Component, error) { return r.comps, r.err }
func (r fakeRegistry) Hierarchical() bool               { return r.hierarchical }

func testRoots(t *testing.T) *RootResolver {
	t.Helper()
	return NewRootResolver([]Root{
		{Name: stdlibRootName, Path: "/usr/lib/std"},
		{Name: "site", Path: "/usr/lib/site"},
	})
}

func TestEnumerate_VersionedComponent(t *testing.T) {
	t.Parallel()
	reg := fakeRegistry{comps: []Component{
		fakeComponent{name: "alpha", hasVer: true, version: "1.2.3",
			hasPath: true, srcPath: "/usr/lib/site/alpha/mod.go"},
	}}

	values, candidates, err := newEnumerator(reg, testRoots(t), false).enumerate()
	require.NoError(t, err)

	// The version attribute is emitted verbatim; no path substitution.
	assert.Equal(t, map[string]string{"alpha": "1.2.3"}, values)
	assert.Empty(t, candidates)
}

func TestEnumerate_VersionedLocalCheckoutStillCandidate(t *testing.T) {
	t.Parallel()
	reg := fakeRegistry{comps: []Component{
		fakeComponent{name: "devlib", hasVer: true, version: "0.9.0",
			hasPath: true, srcPath: "/home/dev/devlib/mod.go"},
	}}

	values, candidates, err := newEnumerator(reg, testRoots(t), false).enumerate()
	require.NoError(t, err)

	// Candidate collection happens before the version check: a versioned
	// local checkout is still probed for git state.
	assert.Equal(t, "0.9.0", values["devlib"])
	require.Len(t, candidates, 1)
	assert.Equal(t, CandidatePath{Name: "devlib", Path: "/home/dev/devlib/mod.go"}, candidates[0])
}

func TestEnumerate_StdlibSkipped(t *testing.T) {
	t.Parallel()
	reg := fakeRegistry{comps: []Component{
		fakeComponent{name: "strings", hasPath: true, srcPath: "/usr/lib/std/strings/mod.go"},
	}}

	values, candidates, err := newEnumerator(reg, testRoots(t), false).enumerate()
	require.NoError(t, err)
	assert.Empty(t, values)
	assert.Empty(t, candidates)
}

func TestEnumerate_SummaryPathBasename(t *testing.T) {
	t.Parallel()
	reg := fakeRegistry{comps: []Component{
		fakeComponent{name: "local", hasPath: true, srcPath: "/home/dev/work/mod.go"},
	}}

	values, candidates, err := newEnumerator(reg, testRoots(t), false).enumerate()
	require.NoError(t, err)

	assert.Equal(t, ".../mod.go", values["local"])
	require.Len(t, candidates, 1)
	assert.Equal(t, "/home/dev/work/mod.go", candidates[0].Path)
}

func TestEnumerate_SummaryTokenPathKeptWhole(t *testing.T) {
	t.Parallel()
	reg := fakeRegistry{comps: []Component{
		fakeComponent{name: "sited", hasPath: true, srcPath: "/usr/lib/site/sited/mod.go"},
	}}

	values, candidates, err := newEnumerator(reg, testRoots(t), false).enumerate()
	require.NoError(t, err)

	// Paths under a named root keep the token form even in summary mode,
	// and are not candidates for the git probe.
	assert.Equal(t, "<site>/sited/mod.go", values["sited"])
	assert.Empty(t, candidates)
}

func TestEnumerate_FullPathVerbatim(t *testing.T) {
	t.Parallel()
	reg := fakeRegistry{comps: []Component{
		fakeComponent{name: "local", hasPath: true, srcPath: "/home/dev/work/mod.go"},
	}}

	values, _, err := newEnumerator(reg, testRoots(t), true).enumerate()
	require.NoError(t, err)
	assert.Equal(t, "/home/dev/work/mod.go", values["local"])
}

func TestEnumerate_BuiltinSkipped(t *testing.T) {
	t.Parallel()
	reg := fakeRegistry{comps: []Component{
		fakeComponent{name: "sys", builtin: true},
	}}

	values, _, err := newEnumerator(reg, testRoots(t), false).enumerate()
	require.NoError(t, err)
	assert.Empty(t, values)
}

func TestEnumerate_OpaqueComponentReportsString(t *testing.T) {
	t.Parallel()
	reg := fakeRegistry{comps: []Component{
		fakeComponent{name: "frozen", hasPath: true, srcPath: "", str: "frozen (embedded)"},
	}}

	values, _, err := newEnumerator(reg, testRoots(t), false).enumerate()
	require.NoError(t, err)
	assert.Equal(t, "frozen (embedded)", values["frozen"])
}

func TestEnumerate_HierarchicalNamespaceFamily(t *testing.T) {
	t.Parallel()
	reg := fakeRegistry{
		hierarchical: true,
		comps: []Component{
			// Family with neither version nor path: namespace-only.
			fakeComponent{name: "family"},
			// Its subpart resolves and is emitted in pass two.
			fakeComponent{name: "family.sub", hasVer: true, version: "2.0"},
			// Depth-2 name whose family resolved normally: ignored.
			fakeComponent{name: "alpha", hasVer: true, version: "1.0"},
			fakeComponent{name: "alpha.sub", hasVer: true, version: "9.9"},
			// Too deep: never inspected.
			fakeComponent{name: "family.sub.deep", hasVer: true, version: "3.0"},
		},
	}

	values, _, err := newEnumerator(reg, testRoots(t), false).enumerate()
	require.NoError(t, err)

	assert.Equal(t, map[string]string{
		"alpha":      "1.0",
		"family.sub": "2.0",
	}, values)
}

func TestEnumerate_FlatRegistryKeepsDottedNames(t *testing.T) {
	t.Parallel()
	reg := fakeRegistry{comps: []Component{
		fakeComponent{name: "example.com/pkg", hasVer: true, version: "v1.0.0"},
	}}

	values, _, err := newEnumerator(reg, testRoots(t), false).enumerate()
	require.NoError(t, err)
	assert.Equal(t, "v1.0.0", values["example.com/pkg"])
}

func TestEnumerate_RegistryErrorPropagates(t *testing.T) {
	t.Parallel()
	reg := fakeRegistry{err: errors.New("registry unavailable")}

	_, _, err := newEnumerator(reg, testRoots(t), false).enumerate()
	require.Error(t, err)
}

func TestEnumerate_SharedPathProbedPerComponent(t *testing.T) {
	t.Parallel()
	reg := fakeRegistry{comps: []Component{
		fakeComponent{name: "one", hasPath: true, srcPath: "/home/dev/work/mod.go"},
		fakeComponent{name: "two", hasPath: true, srcPath: "/home/dev/work/mod.go"},
	}}

	_, candidates, err := newEnumerator(reg, testRoots(t), false).enumerate()
	require.NoError(t, err)
	assert.Len(t, candidates, 2)
}
