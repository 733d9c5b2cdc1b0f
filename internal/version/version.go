// Package version holds candidex build metadata injected via ldflags:
//
//	-X github.com/kailas-cloud/candidex/internal/version.Version=v0.3.0
package version

import "fmt"

//nolint:revive // Set via ldflags at build time.
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)

// String formats the build metadata for logs.
func String() string {
	return fmt.Sprintf("%s (%s, %s)", Version, Commit, Date)
}
