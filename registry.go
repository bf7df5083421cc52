package provenance

// Component is one named, loaded unit of software visible to the process.
// Version and source-path lookups are capabilities that may report
// absence; absence is a normal classification branch, never an error.
type Component interface {
	// Name is the component's identifier, unique within its registry.
	Name() string

	// TryVersion returns the component's version attribute, if it has one.
	TryVersion() (string, bool)

	// TrySourcePath returns the component's source file or directory.
	// Returning ("", true) means the component claims a path attribute
	// that could not be resolved to a location; such components are
	// reported through String rather than treated as bare namespaces.
	// Only ("", false) marks a component as namespace-only or builtin.
	TrySourcePath() (string, bool)

	// Builtin reports whether the component is a host builtin with no
	// source location of its own.
	Builtin() bool

	// String is the last-resort reportable value for components with
	// neither a version nor a usable path.
	String() string
}

// Registry supplies the full set of currently loaded components.
type Registry interface {
	// Components returns every loaded component. An error here is the one
	// condition that fails an entire gather call.
	Components() ([]Component, error)

	// Hierarchical reports whether component names form a dotted
	// hierarchy. Hierarchical registries are enumerated in two passes:
	// top-level names first, then depth-2 names whose family was
	// classified namespace-only. Flat registries (for example Go module
	// paths, whose hostnames embed dots) enumerate every name directly.
	Hierarchical() bool
}
