// Package scripts embeds the Risor peek scripts shipped with the
// library. Pass FS to peek.WithFS to use the embedded copies instead of
// an on-disk scripts directory.
package scripts

import "embed"

//go:embed peek/*.risor
var FS embed.FS
