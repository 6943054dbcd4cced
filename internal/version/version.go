// Package version reports dropwatch build metadata.
//
// Release builds set the variables with ldflags:
//
//	go build -ldflags "-X github.com/jmylchreest/dropwatch/internal/version.Version=1.2.0"
//
// Builds without ldflags fall back to the VCS stamp the Go toolchain embeds.
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"strings"
)

// Set via ldflags.
var (
	Version   = "dev"
	Commit    = ""
	BuildDate = ""
)

// Info is the resolved build metadata.
type Info struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	Modified  bool   `json:"modified"`
	BuildDate string `json:"build_date"`
	GoVersion string `json:"go_version"`
	Platform  string `json:"platform"`
}

// Get resolves build metadata, preferring ldflags over embedded VCS info.
func Get() Info {
	info := Info{
		Version:   Version,
		Commit:    Commit,
		BuildDate: BuildDate,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}
	if bi, ok := debug.ReadBuildInfo(); ok {
		applyBuildSettings(&info, bi.Settings)
	}
	if info.Commit == "" {
		info.Commit = "unknown"
	}
	if info.BuildDate == "" {
		info.BuildDate = "unknown"
	}
	return info
}

func applyBuildSettings(info *Info, settings []debug.BuildSetting) {
	for _, s := range settings {
		switch s.Key {
		case "vcs.revision":
			if info.Commit == "" {
				info.Commit = s.Value
			}
		case "vcs.time":
			if info.BuildDate == "" {
				info.BuildDate = s.Value
			}
		case "vcs.modified":
			info.Modified = s.Value == "true"
		}
	}
}

// Short returns the version with a short commit, e.g. "1.2.0 (3f2a9c1)".
func (i Info) Short() string {
	commit := i.Commit
	if len(commit) > 7 {
		commit = commit[:7]
	}
	if i.Modified {
		commit += "-dirty"
	}
	return fmt.Sprintf("%s (%s)", i.Version, commit)
}

// String returns the multi-line form printed by the version command.
func (i Info) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "dropwatch %s\n", i.Short())
	fmt.Fprintf(&sb, "  commit:  %s\n", i.Commit)
	fmt.Fprintf(&sb, "  built:   %s\n", i.BuildDate)
	fmt.Fprintf(&sb, "  go:      %s\n", i.GoVersion)
	fmt.Fprintf(&sb, "  os/arch: %s", i.Platform)
	return sb.String()
}
