// Package version exposes the build version of the feedback service.
//
// Values are injected at link time:
//
//	go build -ldflags "-X github.com/kbukum/feedback/version.Version=1.2.0 \
//	  -X github.com/kbukum/feedback/version.GitCommit=$(git rev-parse --short HEAD)"
//
// Missing values fall back to the module's embedded VCS build info.
package version

import (
	"runtime/debug"
	"strings"
)

var (
	Version   = "dev"
	GitCommit = ""
	BuildTime = ""
)

// Info is the build information reported by /version.
type Info struct {
	Version   string `json:"version"`
	GitCommit string `json:"git_commit,omitempty"`
	BuildTime string `json:"build_time,omitempty"`
	GoVersion string `json:"go_version"`
	Dirty     bool   `json:"dirty,omitempty"`
}

// Get returns the build information of the running binary.
func Get() Info {
	info := Info{
		Version:   Version,
		GitCommit: GitCommit,
		BuildTime: BuildTime,
	}

	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return info
	}
	info.GoVersion = bi.GoVersion
	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.revision":
			if info.GitCommit == "" {
				info.GitCommit = shortCommit(s.Value)
			}
		case "vcs.time":
			if info.BuildTime == "" {
				info.BuildTime = s.Value
			}
		case "vcs.modified":
			info.Dirty = s.Value == "true"
		}
	}
	return info
}

// IsRelease reports whether the binary was built from a tagged version.
func (i Info) IsRelease() bool {
	return i.Version != "dev" && !i.Dirty && !strings.Contains(i.Version, "dirty")
}

// String renders "version-commit[-dirty]".
func (i Info) String() string {
	s := i.Version
	if i.GitCommit != "" {
		s += "-" + i.GitCommit
	}
	if i.Dirty {
		s += "-dirty"
	}
	return s
}

func shortCommit(rev string) string {
	if len(rev) > 7 {
		return rev[:7]
	}
	return rev
}
