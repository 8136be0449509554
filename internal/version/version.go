// Package version reports the build metadata stamped into the binary.
package version

import (
	"fmt"
	"strings"
)

// Set via -ldflags "-X ipsec-confgen/internal/version.AppVersion=...".
var (
	AppVersion = "dev"
	GitCommit  = "unknown"
	BuildTime  = "unknown"
)

// HeaderName is the HTTP response header carrying Info.Short.
const HeaderName = "X-Confgen-Version"

const shortCommitLen = 7

// Info describes the running binary.
type Info struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildTime string `json:"build_time"`
}

// Current returns the build metadata for this binary.
func Current() Info {
	return Info{
		Version:   strings.TrimSpace(AppVersion),
		Commit:    strings.TrimSpace(GitCommit),
		BuildTime: strings.TrimSpace(BuildTime),
	}
}

// Short returns "<version>+<commit prefix>", or just the version when the
// commit is unknown.
func (i Info) Short() string {
	v := orDefault(i.Version, "dev")
	commit := orDefault(i.Commit, "unknown")
	if commit == "unknown" {
		return v
	}
	if len(commit) > shortCommitLen {
		commit = commit[:shortCommitLen]
	}
	return v + "+" + commit
}

func (i Info) String() string {
	return fmt.Sprintf("ipsec-confgen %s (commit %s, built %s)",
		orDefault(i.Version, "dev"),
		orDefault(i.Commit, "unknown"),
		orDefault(i.BuildTime, "unknown"))
}

func orDefault(value, fallback string) string {
	if value = strings.TrimSpace(value); value == "" {
		return fallback
	}
	return value
}
