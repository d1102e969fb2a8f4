// Package buildinfo holds the version stamped into curricula builds.
//
// Release builds set the variables with ldflags:
//
//	go build -ldflags "-X github.com/SheepTester-forks/curricular-analytics-graph/pkg/buildinfo.Version=v0.3.0 \
//	    -X github.com/SheepTester-forks/curricular-analytics-graph/pkg/buildinfo.Commit=$(git rev-parse --short HEAD) \
//	    -X github.com/SheepTester-forks/curricular-analytics-graph/pkg/buildinfo.Date=$(date -u +%Y-%m-%dT%H:%M:%SZ)" \
//	    ./cmd/curricula
package buildinfo

import "fmt"

var (
	// Version is the release tag, or "dev" for local builds.
	Version = "dev"

	// Commit is the git commit the binary was built from.
	Commit = "none"

	// Date is the UTC build time.
	Date = "unknown"
)

// Template returns the cobra version template.
func Template() string {
	return fmt.Sprintf("{{.Name}} %s (commit %s, built %s)\n", Version, Commit, Date)
}
