package porcelain

import (
	"regexp"
	"strconv"
	"strings"
)

const devNull = "/dev/null"

// Git omits a range count of exactly one, so the header comes in four
// shapes. They are tried in this order.
var hunkHeaderPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^@@ -(\d+),(\d+) \+(\d+),(\d+) @@`),
	regexp.MustCompile(`^@@ -(\d+),(\d+) \+(\d+) @@`),
	regexp.MustCompile(`^@@ -(\d+) \+(\d+),(\d+) @@`),
	regexp.MustCompile(`^@@ -(\d+) \+(\d+) @@`),
}

// ParseHunkHeader extracts the ranges of a "@@ -a[,b] +c[,d] @@" line.
// Omitted counts default to 1.
func ParseHunkHeader(line string) (oldStart, oldCount, newStart, newCount int, ok bool) {
	for i, re := range hunkHeaderPatterns {
		m := re.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		nums := make([]int, 0, 4)
		for _, s := range m[1:] {
			n, err := strconv.Atoi(s)
			if err != nil {
				return 0, 0, 0, 0, false
			}
			nums = append(nums, n)
		}
		switch i {
		case 0:
			return nums[0], nums[1], nums[2], nums[3], true
		case 1:
			return nums[0], nums[1], nums[2], 1, true
		case 2:
			return nums[0], 1, nums[1], nums[2], true
		default:
			return nums[0], 1, nums[1], 1, true
		}
	}
	return 0, 0, 0, 0, false
}

type diffParser struct {
	files []FileDiff
	cur   *FileDiff
	hunk  *DiffHunk

	// Lines still expected by the open hunk on each side. Tracking them keeps
	// a removed line that reads "-- x" from being taken for a file header.
	oldLeft int
	newLeft int
}

// ParseDiff parses unified diff output of `git diff` and `git show`.
func ParseDiff(out string) []FileDiff {
	var p diffParser
	for line := range strings.SplitSeq(out, "\n") {
		p.line(strings.TrimSuffix(line, "\r"))
	}
	p.flushFile()
	return p.files
}

func (p *diffParser) line(line string) {
	if strings.HasPrefix(line, "diff --git ") {
		p.startFile(line)
		return
	}
	if p.cur == nil {
		return
	}
	if p.hunkOpen() && line != "" {
		switch line[0] {
		case '+', '-', ' ':
			p.content(line)
			return
		}
	}
	switch {
	case strings.HasPrefix(line, "@@ "):
		p.startHunk(line)
	case strings.HasPrefix(line, "--- "):
		if path := headerPath(line[4:]); path == devNull {
			p.cur.IsNew = true
		} else {
			p.cur.OldPath = strings.TrimPrefix(path, "a/")
		}
	case strings.HasPrefix(line, "+++ "):
		if path := headerPath(line[4:]); path == devNull {
			p.cur.IsDeleted = true
		} else {
			p.cur.Path = strings.TrimPrefix(path, "b/")
		}
	case strings.HasPrefix(line, "rename from "):
		p.cur.IsRenamed = true
		p.cur.OldPath = unquotePath(line[len("rename from "):])
	case strings.HasPrefix(line, "rename to "):
		p.cur.IsRenamed = true
		p.cur.Path = unquotePath(line[len("rename to "):])
	case strings.HasPrefix(line, "new file mode"):
		p.cur.IsNew = true
	case strings.HasPrefix(line, "deleted file mode"):
		p.cur.IsDeleted = true
	case strings.HasPrefix(line, "Binary files "):
		p.cur.IsBinary = true
	case strings.HasPrefix(line, `\ `):
		if p.hunk != nil && len(p.hunk.Lines) > 0 {
			p.hunk.NoNewlineAfter = append(p.hunk.NoNewlineAfter, len(p.hunk.Lines)-1)
		}
	default:
		// index lines, mode changes, ...
	}
}

func (p *diffParser) startFile(line string) {
	p.flushFile()
	oldPath, newPath := parseGitDiffPaths(line)
	p.cur = &FileDiff{Path: newPath, OldPath: oldPath}
}

func (p *diffParser) flushFile() {
	p.flushHunk()
	if p.cur == nil {
		return
	}
	if !p.cur.IsRenamed && p.cur.OldPath == p.cur.Path {
		p.cur.OldPath = ""
	}
	p.files = append(p.files, *p.cur)
	p.cur = nil
}

func (p *diffParser) startHunk(line string) {
	p.flushHunk()
	oldStart, oldCount, newStart, newCount, ok := ParseHunkHeader(line)
	if !ok {
		return
	}
	p.hunk = &DiffHunk{
		OldStart: oldStart,
		OldCount: oldCount,
		NewStart: newStart,
		NewCount: newCount,
		Header:   line,
	}
	p.oldLeft, p.newLeft = oldCount, newCount
}

func (p *diffParser) flushHunk() {
	if p.hunk == nil || p.cur == nil {
		p.hunk = nil
		return
	}
	p.cur.Hunks = append(p.cur.Hunks, *p.hunk)
	p.hunk = nil
	p.oldLeft, p.newLeft = 0, 0
}

func (p *diffParser) hunkOpen() bool {
	return p.hunk != nil && (p.oldLeft > 0 || p.newLeft > 0)
}

func (p *diffParser) content(line string) {
	p.hunk.Lines = append(p.hunk.Lines, line)
	switch line[0] {
	case '+':
		p.cur.Additions++
		p.newLeft--
	case '-':
		p.cur.Deletions++
		p.oldLeft--
	default:
		p.oldLeft--
		p.newLeft--
	}
}

// parseGitDiffPaths splits "diff --git a/<old> b/<new>". Unquoted paths may
// contain spaces, so the split happens at the last " b/".
func parseGitDiffPaths(line string) (oldPath, newPath string) {
	rest := strings.TrimSpace(strings.TrimPrefix(line, "diff --git "))
	if strings.HasPrefix(rest, `"`) {
		tokens := diffLineTokens(rest)
		if len(tokens) >= 2 {
			return normalizeDiffPath(tokens[0]), normalizeDiffPath(tokens[1])
		}
	}
	idx := strings.LastIndex(rest, " b/")
	if idx < 0 {
		return "", ""
	}
	return normalizeDiffPath(rest[:idx]), normalizeDiffPath(rest[idx+1:])
}

// headerPath returns the path of a ---/+++ line without quoting or the
// trailing tab some producers append.
func headerPath(s string) string {
	if s, _, ok := strings.Cut(s, "\t"); ok {
		return unquotePath(s)
	}
	return unquotePath(s)
}

func diffLineTokens(s string) []string {
	var tokens []string
	for {
		s = strings.TrimLeft(s, " \t")
		if s == "" {
			break
		}
		if s[0] == '"' {
			i := 1
			for i < len(s) {
				if s[i] == '\\' {
					i += 2
					continue
				}
				if s[i] == '"' {
					i++
					break
				}
				i++
			}
			if i > len(s) {
				i = len(s)
			}
			tokens = append(tokens, unquotePath(s[:i]))
			s = s[i:]
			continue
		}
		j := 0
		for j < len(s) && s[j] != ' ' && s[j] != '\t' {
			j++
		}
		tokens = append(tokens, s[:j])
		s = s[j:]
	}
	return tokens
}

func normalizeDiffPath(token string) string {
	token = strings.TrimPrefix(token, "a/")
	token = strings.TrimPrefix(token, "b/")
	return token
}
