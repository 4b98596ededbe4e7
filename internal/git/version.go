package git

import (
	"context"
	"fmt"
	"strconv"
	"strings"
)

// Minimum supported git version. Keep this aligned with the subcommands the
// runner uses ("git switch", "git restore" and "status --porcelain=v2").
var minVersion = Version{Major: 2, Minor: 23}

type Version struct {
	Major int
	Minor int
	Patch int
}

func MinVersion() Version {
	return minVersion
}

func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

func (v Version) Less(other Version) bool {
	if v.Major != other.Major {
		return v.Major < other.Major
	}
	if v.Minor != other.Minor {
		return v.Minor < other.Minor
	}
	return v.Patch < other.Patch
}

// ParseVersion reads the output of `git --version`. Accepted forms include
// "git version 2.44.0", "git version 2.39.3 (Apple Git-146)" and
// "git version 2.39.3.windows.1".
func ParseVersion(out string) (Version, bool) {
	s := strings.TrimSpace(out)
	if idx := strings.Index(s, "git version"); idx >= 0 {
		s = strings.TrimSpace(s[idx+len("git version"):])
	}
	start := strings.IndexFunc(s, func(r rune) bool { return r >= '0' && r <= '9' })
	if start < 0 {
		return Version{}, false
	}
	s = s[start:]
	end := 0
	for end < len(s) && (s[end] == '.' || (s[end] >= '0' && s[end] <= '9')) {
		end++
	}
	parts := strings.Split(strings.Trim(s[:end], "."), ".")
	if len(parts) < 2 {
		return Version{}, false
	}
	major, err := strconv.Atoi(parts[0])
	if err != nil {
		return Version{}, false
	}
	minor, err := strconv.Atoi(parts[1])
	if err != nil {
		return Version{}, false
	}
	v := Version{Major: major, Minor: minor}
	if len(parts) >= 3 {
		if p, err := strconv.Atoi(parts[2]); err == nil {
			v.Patch = p
		}
	}
	return v, true
}

type versionInfo struct {
	raw    string
	parsed Version
	err    error
}

// Version returns the raw and parsed `git --version` output. The first result
// is cached for the lifetime of the Runner.
func (r *Runner) Version(ctx context.Context) (string, Version, error) {
	r.versionOnce.Do(func() {
		res := r.Run(ctx, "", "--version")
		r.version.raw = res.TrimmedStdout()
		if err := res.Err(); err != nil {
			r.version.err = fmt.Errorf("git version: %w", err)
			return
		}
		parsed, ok := ParseVersion(r.version.raw)
		if !ok {
			r.version.err = fmt.Errorf("unable to parse git version output: %q", r.version.raw)
			return
		}
		r.version.parsed = parsed
	})
	return r.version.raw, r.version.parsed, r.version.err
}

// CheckVersion fails when git is missing or older than MinVersion.
func (r *Runner) CheckVersion(ctx context.Context) error {
	_, v, err := r.Version(ctx)
	if err != nil {
		return err
	}
	return checkVersion(v)
}

func checkVersion(v Version) error {
	if v.Less(minVersion) {
		return fmt.Errorf("git %s is too old; gitdeck requires git >= %s", v, minVersion)
	}
	return nil
}
