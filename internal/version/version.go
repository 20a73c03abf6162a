// Package version reports the build version of the Midnight Brew binaries.
//
// The storefront prints it from 'midnightbrew version' and sends it as the
// User-Agent of signup, contact and carousel requests. The server returns
// it in its Server header, on /healthz and in its mDNS TXT record, so a
// storefront can tell which server build it is talking to.
package version

import (
	"fmt"
	"runtime/debug"
	"time"
)

// Product names used in version lines and User-Agent tokens.
const (
	Storefront = "midnightbrew"
	Server     = "midnightbrew-server"
)

// Version and Commit can be set at build time via ldflags:
//
//	go build -ldflags="-X github.com/muurk/midnightbrew/internal/version.Version=v1.2.3 \
//	                   -X github.com/muurk/midnightbrew/internal/version.Commit=abc123"
//
// Unset values are taken from the VCS stamp in the build info, and fall
// back to a timestamped dev version.
var (
	Version = ""
	Commit  = ""
)

func init() {
	if Version == "" || Commit == "" {
		if info, ok := debug.ReadBuildInfo(); ok {
			v, c := fromBuildSettings(info.Settings)
			if Version == "" {
				Version = v
			}
			if Commit == "" {
				Commit = c
			}
		}
	}

	if Version == "" {
		Version = fmt.Sprintf("dev-%s", time.Now().Format("20060102-150405"))
	}
	if Commit == "" {
		Commit = "unknown"
	}
}

// fromBuildSettings derives a dev version from the VCS commit date and a
// short commit hash, suffixed -dirty for modified trees. Either result is
// empty when the build carries no VCS stamp.
func fromBuildSettings(settings []debug.BuildSetting) (version, commit string) {
	var revision, modified, stamp string
	for _, s := range settings {
		switch s.Key {
		case "vcs.revision":
			revision = s.Value
		case "vcs.modified":
			modified = s.Value
		case "vcs.time":
			stamp = s.Value
		}
	}

	if revision != "" {
		commit = revision
		if len(commit) > 7 {
			commit = commit[:7]
		}
		if modified == "true" {
			commit += "-dirty"
		}
	}
	if t, err := time.Parse(time.RFC3339, stamp); err == nil {
		version = "dev-" + t.Format("20060102")
	}
	return version, commit
}

// Full returns the full version string including commit
func Full() string {
	return fmt.Sprintf("%s (commit: %s)", Version, Commit)
}

// Line is what the version commands print, e.g.
// "midnightbrew v1.2.3 (commit: abc123)".
func Line(product string) string {
	return product + " " + Full()
}

// UserAgent returns the product token sent in User-Agent and Server
// headers, e.g. "midnightbrew/v1.2.3".
func UserAgent(product string) string {
	return fmt.Sprintf("%s/%s", product, Version)
}
