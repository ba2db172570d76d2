// Package version holds build metadata injected with -ldflags -X.
package version

import (
	"fmt"
	"runtime/debug"
)

// Build metadata. Release builds override these with
// -ldflags "-X github.com/Sumatoshi-tech/replaystats/pkg/version.Version=...".
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// vcsRevision is the build setting the go tool records for the commit hash.
const vcsRevision = "vcs.revision"

// Init fills Commit from the embedded build info when ldflags left it unset.
func Init() {
	if Commit != "none" {
		return
	}

	info, ok := debug.ReadBuildInfo()
	if !ok {
		return
	}

	for _, setting := range info.Settings {
		if setting.Key == vcsRevision && setting.Value != "" {
			Commit = setting.Value

			return
		}
	}
}

// String formats the metadata for the version command.
func String() string {
	return fmt.Sprintf("replaystats %s (commit: %s, built: %s)", Version, Commit, Date)
}
