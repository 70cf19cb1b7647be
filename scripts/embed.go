// Package scripts embeds the default Risor comment generators so the binary
// works without a scripts directory on disk.
package scripts

import "embed"

// FS holds generate/*.risor.
//
//go:embed generate/*.risor
var FS embed.FS
