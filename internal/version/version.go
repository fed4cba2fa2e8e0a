// Package version records build information stamped by the linker:
//
//	go build -ldflags "-X .../internal/version.Version=v1.2.3"
package version

import "fmt"

var (
	// Version is the release tag, "dev" for unstamped builds.
	Version = "dev"

	// Commit is the short git commit hash.
	Commit = "none"

	// Date is the build timestamp.
	Date = "unknown"
)

// String returns the one-line form used in logs and the version command.
func String() string {
	return fmt.Sprintf("%s (%s, %s)", Version, Commit, Date)
}
