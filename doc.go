// Package provenance gathers reproducibility metadata about the current
// process and host: loaded components with versions, local development
// checkouts cross-referenced against git, file-integrity fingerprints of
// named assets, and platform and accelerator facts.
//
// # Pipeline
//
// A report is assembled in four passes:
//
//  1. Enumerate: walk the component registry, classify each component, and
//     resolve a reportable value (a version string, a normalized path, or a
//     fallback). Paths are shortened against a table of well-known install
//     roots; paths that match no root are recorded as candidates for
//     version-control lookup.
//
//  2. Probe: for each candidate path, ascend the directory tree looking for
//     an enclosing git repository and read its commit and dirty state.
//
//  3. Fingerprint (full mode): stat and BLAKE3-hash each named asset file,
//     and ask the peek collaborator for a format-specific summary.
//
//  4. Describe (full mode): collect platform facts and accelerator records.
//
// # Usage
//
// Create a Gatherer once and call Gather per report:
//
//	g, err := provenance.New()
//	if err != nil { ... }
//
//	report, err := g.Gather(ctx, provenance.Options{
//		Assets: []string{"model.ckpt"},
//		Full:   true,
//	})
//
// A summary report carries only time, runtime version, component values,
// and git records. A full report adds the executable path, arguments,
// search path, install roots, platform facts, GPU records, and asset
// fingerprints.
//
// # Failure policy
//
// No single component, asset, or repository can fail the whole report.
// Missing metadata is a classification branch, per-item failures degrade to
// inline error text or omission, and absent collaborators degrade to
// sentinel values. Gather itself fails only when the component registry
// cannot be read at all.
//
// # Registries
//
// By default components come from the Go build information embedded in the
// running binary ([NewBuildInfoRegistry]). Any other component source can be
// plugged in via [WithRegistry]; registries with dotted hierarchical names
// get the two-pass family enumeration described on [Registry].
package provenance
