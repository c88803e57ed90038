// Package build describes the running binary: the commit it was built from,
// when, and with which module versions. Release builds inject a JSON blob
// with -ldflags; other builds fall back to the Go toolchain's build info.
package build

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"runtime/debug"
	"strings"
)

// Info contains build metadata.
type Info struct {
	Version      string            `json:"version"      yaml:"version"`
	GitCommit    string            `json:"git_commit"   yaml:"gitCommit"` //nolint:tagliatelle
	GitBranch    string            `json:"git_branch"   yaml:"gitBranch"` //nolint:tagliatelle
	GitDate      string            `json:"git_date"     yaml:"gitDate"`   //nolint:tagliatelle
	BuildTime    string            `json:"build_time"   yaml:"buildTime"` //nolint:tagliatelle
	GoVersion    string            `json:"go_version"   yaml:"goVersion"` //nolint:tagliatelle
	Modified     bool              `json:"modified"     yaml:"modified"`
	Dependencies map[string]string `json:"dependencies" yaml:"dependencies"`
}

// Parse deserializes a JSON string into build Info.
// Returns (nil, false) if the input is empty, "{}", or fails to parse.
func Parse(js string) (*Info, bool) {
	if len(js) == 0 || js == "{}" {
		return nil, false
	}

	var info Info

	if err := json.Unmarshal([]byte(js), &info); err != nil {
		slog.Warn("Failed to parse build info from JSON",
			"data", js,
			"error", err)

		return nil, false
	}

	return &info, true
}

// Current returns the injected build info when injected parses, otherwise
// whatever the toolchain recorded in the binary.
func Current(injected string) *Info {
	if info, ok := Parse(injected); ok {
		return info
	}

	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return &Info{Version: "unknown"}
	}

	return FromBuildInfo(bi)
}

// FromBuildInfo converts toolchain build info.
func FromBuildInfo(bi *debug.BuildInfo) *Info {
	info := &Info{
		Version:      bi.Main.Version,
		GoVersion:    bi.GoVersion,
		Dependencies: make(map[string]string, len(bi.Deps)),
	}

	for _, setting := range bi.Settings {
		switch setting.Key {
		case "vcs.revision":
			info.GitCommit = setting.Value
		case "vcs.time":
			info.GitDate = setting.Value
		case "vcs.modified":
			info.Modified = setting.Value == "true"
		}
	}

	for _, dep := range bi.Deps {
		version := dep.Version
		if dep.Replace != nil {
			version = dep.Replace.Path + "@" + dep.Replace.Version
		}

		info.Dependencies[dep.Path] = version
	}

	return info
}

// Short is a one-line description such as "v1.2.0 (abc1234, dirty)".
func (i *Info) Short() string {
	version := i.Version
	if version == "" {
		version = "(devel)"
	}

	var details []string

	if i.GitCommit != "" {
		commit := i.GitCommit
		if len(commit) > 7 { //nolint:mnd
			commit = commit[:7]
		}

		details = append(details, commit)
	}

	if i.Modified {
		details = append(details, "dirty")
	}

	if len(details) == 0 {
		return version
	}

	return fmt.Sprintf("%s (%s)", version, strings.Join(details, ", "))
}
