package provenance

import (
	"path"
	"path/filepath"
	"sort"
	"strings"
)

// CandidatePath pairs a component with a resolved absolute path that
// matched no known install root, meaning a likely local development
// checkout worth a version-control lookup.
type CandidatePath struct {
	Name string
	Path string
}

// enumerator walks a Registry once, classifying each component and
// resolving a reportable value per the decision table in resolve. It is
// built fresh for every gather call; nothing is shared across calls.
type enumerator struct {
	registry Registry
	roots    *RootResolver
	full     bool

	values     map[string]string
	namespaces map[string]bool
	candidates []CandidatePath
}

func newEnumerator(registry Registry, roots *RootResolver, full bool) *enumerator {
	return &enumerator{
		registry:   registry,
		roots:      roots,
		full:       full,
		values:     make(map[string]string),
		namespaces: make(map[string]bool),
	}
}

// enumerate produces the component value map and the candidate path set.
// Hierarchical registries get two passes: top-level names, then depth-2
// names whose family segment was classified namespace-only in pass one.
// Names nested deeper than two segments are never inspected.
func (e *enumerator) enumerate() (map[string]string, []CandidatePath, error) {
	comps, err := e.registry.Components()
	if err != nil {
		return nil, nil, err
	}

	sorted := make([]Component, len(comps))
	copy(sorted, comps)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Name() < sorted[j].Name() })

	if !e.registry.Hierarchical() {
		for _, c := range sorted {
			e.resolve(c)
		}
		return e.values, e.candidates, nil
	}

	for _, c := range sorted {
		if !strings.Contains(c.Name(), ".") {
			e.resolve(c)
		}
	}
	// Component families reported as "family.subpart" surface here once
	// the family itself turned out to be a bare namespace.
	for _, c := range sorted {
		bits := strings.Split(c.Name(), ".")
		if len(bits) == 2 && e.namespaces[bits[0]] {
			e.resolve(c)
		}
	}
	return e.values, e.candidates, nil
}

// resolve classifies a single component and records its reportable
// value, if any. Lookups never fail; every missing attribute is a branch.
func (e *enumerator) resolve(c Component) {
	name := c.Name()

	srcPath, hasPathAttr := c.TrySourcePath()
	resolvable := hasPathAttr && srcPath != ""

	var normalized string
	if resolvable {
		normalized = e.roots.Normalize(srcPath)
		// A path that is still absolute after root substitution belongs
		// to no packaged install; remember it for the git probe.
		if isAbsolute(normalized) {
			e.candidates = append(e.candidates, CandidatePath{Name: name, Path: srcPath})
		}
	}

	// A version attribute wins outright; the emitted value is the
	// attribute verbatim, with no path substitution applied.
	if v, ok := c.TryVersion(); ok {
		e.values[name] = v
		return
	}

	if !resolvable {
		if !hasPathAttr {
			if c.Builtin() {
				return
			}
			// Retained for pass-2 family matching, emitted only if a
			// subpart later resolves.
			e.namespaces[name] = true
			return
		}
		// Path attribute present but unresolvable: report the string
		// form as a last resort.
		e.values[name] = c.String()
		return
	}

	// Standard-library components carry no provenance value.
	if strings.HasPrefix(normalized, "<"+stdlibRootName+">") {
		return
	}

	if e.full {
		e.values[name] = normalized
		return
	}
	if strings.HasPrefix(normalized, "<") {
		e.values[name] = normalized
		return
	}
	// Summary mode keeps raw paths out of the report, leaving just
	// enough to recognize the file.
	e.values[name] = ".../" + path.Base(filepath.ToSlash(normalized))
}

func isAbsolute(p string) bool {
	return strings.HasPrefix(p, "/") || filepath.IsAbs(p)
}
