package porcelain

import (
	"bufio"
	"io"
	"strconv"
	"strings"
)

const maxStatusLine = 1 << 20

// Number of space separated fields before the path, per entry type.
const (
	ordinaryFields = 8
	renameFields   = 9
	unmergedFields = 10
)

// ParseStatus parses `git status --porcelain=v2 --branch`.
func ParseStatus(r io.Reader) (Status, error) {
	var res Status
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxStatusLine)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if len(line) < 2 {
			continue
		}
		switch {
		case strings.HasPrefix(line, "# "):
			parseBranchHeader(&res, line[2:])
		case strings.HasPrefix(line, "1 "):
			if fs, ok := parseChangedEntry(line, ordinaryFields); ok {
				res.addChanged(fs)
			}
		case strings.HasPrefix(line, "2 "):
			if fs, ok := parseChangedEntry(line, renameFields); ok {
				res.addChanged(fs)
			}
		case strings.HasPrefix(line, "u "):
			if fs, ok := parseChangedEntry(line, unmergedFields); ok {
				// Conflicts belong to both sides regardless of XY.
				res.Staged = append(res.Staged, fs)
				res.Unstaged = append(res.Unstaged, fs)
			}
		case strings.HasPrefix(line, "? "):
			res.Untracked = append(res.Untracked, unquotePath(line[2:]))
		default:
			// '!' ignored entries and headers this parser does not know.
		}
	}
	return res, scanner.Err()
}

func (s *Status) addChanged(fs FileStatus) {
	if fs.IndexStatus != StatusUnchanged {
		s.Staged = append(s.Staged, fs)
	}
	if fs.WorktreeStatus != StatusUnchanged {
		s.Unstaged = append(s.Unstaged, fs)
	}
}

func parseBranchHeader(s *Status, header string) {
	key, value, ok := strings.Cut(header, " ")
	if !ok {
		return
	}
	switch key {
	case "branch.head":
		s.Branch = value
		s.Detached = value == "(detached)"
	case "branch.upstream":
		s.Upstream = value
	case "branch.ab":
		fields := strings.Fields(value)
		if len(fields) != 2 {
			return
		}
		ahead, errA := strconv.Atoi(strings.TrimPrefix(fields[0], "+"))
		behind, errB := strconv.Atoi(strings.TrimPrefix(fields[1], "-"))
		if errA != nil || errB != nil {
			return
		}
		s.Ahead, s.Behind = ahead, behind
	}
}

// parseChangedEntry handles "1", "2" and "u" lines. The status characters sit
// at fixed offsets; the path is whatever follows the metadata fields.
func parseChangedEntry(line string, metaFields int) (FileStatus, bool) {
	if len(line) < 4 {
		return FileStatus{}, false
	}
	parts := strings.SplitN(line, " ", metaFields+1)
	if len(parts) != metaFields+1 || parts[metaFields] == "" {
		return FileStatus{}, false
	}
	fs := FileStatus{
		IndexStatus:    line[2],
		WorktreeStatus: line[3],
	}
	path := parts[metaFields]
	if metaFields == renameFields {
		if dst, src, ok := strings.Cut(path, "\t"); ok {
			path = dst
			fs.OrigPath = unquotePath(src)
		}
	}
	fs.Path = unquotePath(path)
	return fs, true
}

// unquotePath undoes git's C-style quoting of unusual path names.
func unquotePath(p string) string {
	if len(p) >= 2 && p[0] == '"' && p[len(p)-1] == '"' {
		if s, err := strconv.Unquote(p); err == nil {
			return s
		}
	}
	return p
}
