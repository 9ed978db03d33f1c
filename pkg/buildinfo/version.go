// Package buildinfo holds the version stamped into famtree at build time.
//
//	go build -ldflags "-X github.com/matzehuels/famtree/pkg/buildinfo.Version=v0.3.0 \
//	    -X github.com/matzehuels/famtree/pkg/buildinfo.Commit=$(git rev-parse --short HEAD) \
//	    -X github.com/matzehuels/famtree/pkg/buildinfo.Date=$(date -u +%Y-%m-%dT%H:%M:%SZ)" \
//	    ./cmd/famtree
package buildinfo

import "fmt"

// Overridden via ldflags.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// Short returns "version (commit)", or just the version for dev builds.
func Short() string {
	if Commit == "none" {
		return Version
	}
	return fmt.Sprintf("%s (%s)", Version, Commit)
}

// Template returns the cobra version template.
func Template() string {
	return fmt.Sprintf("{{.Name}} %s\nbuilt: %s\n", Short(), Date)
}
