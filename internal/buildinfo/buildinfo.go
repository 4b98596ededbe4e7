package buildinfo

import (
	"runtime/debug"
	"strings"
)

func read() (*debug.BuildInfo, bool) {
	info, ok := debug.ReadBuildInfo()
	return info, ok && info != nil
}

// Version returns the module version or "dev" when unset.
func Version() string {
	info, ok := read()
	if !ok {
		return "dev"
	}
	version := info.Main.Version
	if version == "" || version == "(devel)" {
		return "dev"
	}
	return version
}

// Revision returns the short VCS revision stamped by the go command, with a
// "-dirty" suffix for modified trees. It is empty outside a VCS build.
func Revision() string {
	info, ok := read()
	if !ok {
		return ""
	}
	return revision(info.Settings)
}

func revision(settings []debug.BuildSetting) string {
	var rev string
	var dirty bool
	for _, s := range settings {
		switch s.Key {
		case "vcs.revision":
			rev = s.Value
		case "vcs.modified":
			dirty = s.Value == "true"
		}
	}
	if rev == "" {
		return ""
	}
	if len(rev) > 7 {
		rev = rev[:7]
	}
	if dirty {
		rev += "-dirty"
	}
	return rev
}

// String is the text printed by --version.
func String() string {
	return format(Version(), Revision())
}

func format(version, rev string) string {
	var b strings.Builder
	b.WriteString("gitdeck ")
	b.WriteString(version)
	if rev != "" {
		b.WriteString(" (" + rev + ")")
	}
	return b.String()
}
