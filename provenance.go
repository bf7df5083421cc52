// Package provenance produces structured reports describing the software
// environment of a running process: which components are loaded and at what
// versions, which come from local source checkouts, and what the host looks
// like. Reports stamp reproducibility metadata onto experiment outputs.
package provenance
