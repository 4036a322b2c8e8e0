// Package version reports which build of pulse is running.
package version

import (
	"fmt"
	"runtime/debug"
)

// Set with -ldflags "-X github.com/example/pulse/internal/version.Version=v1.2.0 ...".
var (
	Version   = "dev"
	Commit    = ""
	BuildTime = ""
)

// String returns the release, commit and build time. Blank ldflags values are
// filled from the VCS stamp Go embeds in module builds.
func String() string {
	commit, built := Commit, BuildTime
	if info, ok := debug.ReadBuildInfo(); ok {
		for _, s := range info.Settings {
			switch {
			case s.Key == "vcs.revision" && commit == "":
				commit = s.Value
			case s.Key == "vcs.time" && built == "":
				built = s.Value
			}
		}
	}
	if len(commit) > 12 {
		commit = commit[:12]
	}
	return fmt.Sprintf("%s (commit %s, built %s)", Version, orUnknown(commit), orUnknown(built))
}

func orUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}
