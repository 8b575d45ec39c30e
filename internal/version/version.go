// Package version reports the dashvars build version. Values are injected
// with -ldflags and fall back to the module build info.
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"strings"
	"time"
)

// BuildInfo contains version and build information
type BuildInfo struct {
	Version   string    `json:"version" yaml:"version"`
	GitCommit string    `json:"git_commit" yaml:"git_commit"`
	BuildTime time.Time `json:"build_time" yaml:"build_time"`
	GoVersion string    `json:"go_version" yaml:"go_version"`
	Platform  string    `json:"platform" yaml:"platform"`
	Dirty     bool      `json:"dirty,omitempty" yaml:"dirty,omitempty"`
}

// Set at build time:
//
//	go build -ldflags "-X github.com/conneroisu/dashvars/internal/version.Version=v1.2.0"
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildTime = "unknown"
)

// readBuildInfo is replaced in tests.
var readBuildInfo = debug.ReadBuildInfo

// Get returns the build information of the running binary.
func Get() *BuildInfo {
	settings := vcsSettings()

	info := &BuildInfo{
		Version:   Version,
		GitCommit: GitCommit,
		BuildTime: parseTime(BuildTime),
		GoVersion: runtime.Version(),
		Platform:  fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH),
		Dirty:     settings["vcs.modified"] == "true",
	}

	if info.GitCommit == "" || info.GitCommit == "unknown" {
		if rev, ok := settings["vcs.revision"]; ok {
			info.GitCommit = rev
		}
	}
	if info.BuildTime.IsZero() {
		info.BuildTime = parseTime(settings["vcs.time"])
	}

	if info.Version == "" || info.Version == "dev" {
		info.Version = moduleVersion()
		if info.Version == "dev" && len(info.GitCommit) >= 7 && info.GitCommit != "unknown" {
			info.Version = "dev-" + info.GitCommit[:7]
		}
	}

	return info
}

// Short returns "version (commit)" or the version alone.
func (b *BuildInfo) Short() string {
	if b.GitCommit == "unknown" || len(b.GitCommit) < 7 || strings.HasPrefix(b.Version, "dev-") {
		return b.Version
	}
	return fmt.Sprintf("%s (%s)", b.Version, b.GitCommit[:7])
}

// String returns the multi-line form printed by "dashvars version".
func (b *BuildInfo) String() string {
	parts := []string{"Version: " + b.Version}

	if b.GitCommit != "unknown" {
		commit := b.GitCommit
		if b.Dirty {
			commit += " (dirty)"
		}
		parts = append(parts, "Commit: "+commit)
	}
	if !b.BuildTime.IsZero() {
		parts = append(parts, "Built: "+b.BuildTime.Format(time.RFC3339))
	}
	parts = append(parts, "Go: "+b.GoVersion, "Platform: "+b.Platform)

	return strings.Join(parts, "\n")
}

// IsRelease reports whether the version is a tagged release.
func (b *BuildInfo) IsRelease() bool {
	return b.Version != "dev" && !strings.HasPrefix(b.Version, "dev-")
}

func moduleVersion() string {
	if info, ok := readBuildInfo(); ok {
		if v := info.Main.Version; v != "" && v != "(devel)" {
			return v
		}
	}
	return "dev"
}

func vcsSettings() map[string]string {
	settings := make(map[string]string)
	if info, ok := readBuildInfo(); ok {
		for _, s := range info.Settings {
			if strings.HasPrefix(s.Key, "vcs.") {
				settings[s.Key] = s.Value
			}
		}
	}
	return settings
}

// parseTime accepts RFC3339 and a few common layouts; anything else is zero.
func parseTime(value string) time.Time {
	if value == "" || value == "unknown" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, value); err == nil {
			return t
		}
	}
	return time.Time{}
}
