// Package version exposes build metadata stamped in via -ldflags at build
// time. Unstamped binaries report development placeholders.
package version

import "fmt"

var (
	// Version is the semantic version of the binary.
	Version = "v0.0.0-dev"

	// GitCommit is the commit hash the binary was built from.
	GitCommit = "unknown"

	// BuildTime is the UTC timestamp of the build.
	BuildTime = "unknown"
)

// Info renders the full build description for startup logs.
func Info() string {
	return fmt.Sprintf("%s (%s, built %s)", Version, GitCommit, BuildTime)
}
