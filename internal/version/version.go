// Package version carries build metadata injected with -ldflags:
//
//	go build -ldflags "-X github.com/longkey1/merokisan/internal/version.Version=v0.1.0 \
//	  -X github.com/longkey1/merokisan/internal/version.CommitSHA=$(git rev-parse --short HEAD) \
//	  -X github.com/longkey1/merokisan/internal/version.BuildTime=$(date -u +%Y-%m-%dT%H:%M:%SZ)"
package version

import (
	"fmt"
	"runtime"
)

var (
	Version   = "dev"
	CommitSHA = "unknown"
	BuildTime = "unknown"
)

// Short returns the version number only.
func Short() string {
	return Version
}

// Info returns the version with commit, build time and toolchain.
func Info() string {
	return fmt.Sprintf("Version: %s\nCommit SHA: %s\nBuild Time: %s\nGo Version: %s\nOS/Arch: %s/%s",
		Version, CommitSHA, BuildTime, runtime.Version(), runtime.GOOS, runtime.GOARCH)
}
