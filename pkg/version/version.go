// Package version provides build and version information for salesetl.
package version

import (
	"fmt"
	"runtime"
)

// Build information set at compile time via ldflags, e.g.
//
//	-ldflags "-X salesetl/pkg/version.Version=1.2.0 -X salesetl/pkg/version.Commit=$(git rev-parse --short HEAD)"
var (
	Version   = "0.1.0"
	Commit    = "unknown"
	BuildDate = "unknown"
)

// Info returns formatted version information.
func Info() string {
	return fmt.Sprintf(
		"salesetl %s (commit: %s, built: %s, go: %s)",
		Version, Commit, BuildDate, runtime.Version(),
	)
}

// Short returns just the version string.
func Short() string {
	return Version
}
