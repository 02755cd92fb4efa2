// Package version reports the version of the mmake binary.
package version

import (
	"runtime/debug"
	"strings"
	"time"

	"charm.land/lipgloss/v2"
	"github.com/yaklabco/mmake/pkg/ui"
)

// Version is the CLI version. It can be overridden at build time via:
//
//	-ldflags "-X github.com/yaklabco/mmake/cmd/mmake/version.Version=v0.0.0"
//
// If left as "dev", the version is taken from Go build info when available.
var Version = "dev" //nolint:gochecknoglobals // Populated by goreleaser ldflags.

// Commit is the git commit hash, overridable the same way as Version.
var Commit = "" //nolint:gochecknoglobals // Populated by goreleaser ldflags.

// BuildDate is the RFC3339 timestamp of the build, overridable the same way as Version.
var BuildDate = "" //nolint:gochecknoglobals // Populated by goreleaser ldflags.

func buildSetting(key string) string {
	bi, ok := debug.ReadBuildInfo()
	if !ok || bi == nil {
		return ""
	}
	for _, s := range bi.Settings {
		if s.Key == key {
			return s.Value
		}
	}
	return ""
}

// EffectiveVersion returns the best-effort version string for the binary.
// Precedence:
//  1. Version set via -ldflags, unless "dev" or empty.
//  2. Go build info `Main.Version` for `go install module@version` builds.
//  3. Go build info `vcs.revision`, plus "-dirty" if `vcs.modified=true`.
//  4. "dev".
func EffectiveVersion() string {
	if v := strings.TrimSpace(Version); v != "" && v != "dev" {
		return v
	}
	if bi, ok := debug.ReadBuildInfo(); ok && bi != nil {
		if mv := strings.TrimSpace(bi.Main.Version); mv != "" && mv != "(devel)" {
			return mv
		}
	}
	if rev := buildSetting("vcs.revision"); rev != "" {
		if buildSetting("vcs.modified") == "true" {
			return rev + "-dirty"
		}
		return rev
	}
	return "dev"
}

// EffectiveCommit returns Commit if set, otherwise the `vcs.revision` build setting.
func EffectiveCommit() string {
	if c := strings.TrimSpace(Commit); c != "" {
		return c
	}
	return buildSetting("vcs.revision")
}

// EffectiveBuildTime parses BuildDate, falling back to the `vcs.time`
// build setting. RFC3339 and RFC3339Nano are accepted.
func EffectiveBuildTime() (time.Time, bool) {
	for _, raw := range []string{strings.TrimSpace(BuildDate), buildSetting("vcs.time")} {
		if raw == "" {
			continue
		}
		if t, err := time.Parse(time.RFC3339Nano, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func versionParts() (string, string, string) {
	var built string
	if t, ok := EffectiveBuildTime(); ok {
		built = t.In(time.Local).Format(time.RFC3339)
	}
	return EffectiveVersion(), EffectiveCommit(), built
}

// String renders version, commit and build time joined by "-", skipping
// the parts that are unknown.
func String() string {
	v, c, b := versionParts()
	return join([]string{v, c, b}, "-")
}

// Colorized renders String with fang-consistent colors.
func Colorized() string {
	cs := ui.GetFangScheme()
	v, c, b := versionParts()
	return join([]string{
		lipgloss.NewStyle().Foreground(cs.QuotedString).Render(v),
		renderIf(lipgloss.NewStyle().Foreground(cs.Program), c),
		renderIf(lipgloss.NewStyle().Foreground(cs.Flag), b),
	}, lipgloss.NewStyle().Foreground(cs.Base).Render("-"))
}

func renderIf(style lipgloss.Style, s string) string {
	if s == "" {
		return ""
	}
	return style.Render(s)
}

func join(parts []string, sep string) string {
	kept := parts[:0]
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, sep)
}
