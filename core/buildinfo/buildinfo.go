// Package buildinfo carries version stamps set by the linker, e.g.
//
//	go build -ldflags "-X github.com/m3rciful/infobot/core/buildinfo.Version=v1.2.3 \
//	  -X github.com/m3rciful/infobot/core/buildinfo.Commit=abcdef0 \
//	  -X github.com/m3rciful/infobot/core/buildinfo.Date=2025-08-30T12:00:00Z"
package buildinfo

import "fmt"

// Unstamped builds report "dev (local)".
var (
	Version = "dev"
	Commit  = "local"
	// Date is RFC 3339; empty when not stamped.
	Date = ""
)

// String renders a one-line build description.
func String() string {
	if Date == "" {
		return fmt.Sprintf("%s (%s)", Version, Commit)
	}
	return fmt.Sprintf("%s (%s, built %s)", Version, Commit, Date)
}
