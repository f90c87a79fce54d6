package version

import "runtime"

// Build-time variables set via ldflags.
var (
	version   = "0.3.0-dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// App returns the current pgmt version.
func App() string {
	return version
}

// Platform returns the OS/architecture combination.
func Platform() string {
	return runtime.GOOS + "/" + runtime.GOARCH
}
