package git

import (
	"regexp"
	"strings"
)

type stderrPattern struct {
	re   *regexp.Regexp
	text string
}

// Ordered from most to least specific. $1 and friends refer to the
// pattern's submatches.
var stderrPatterns = []stderrPattern{
	{regexp.MustCompile(`(?i)not a git repository`), "Not a git repository"},
	{regexp.MustCompile(`(?i)nothing to commit`), "Nothing to commit"},
	{regexp.MustCompile(`(?i)no changes added to commit`), "No changes staged for commit"},
	{regexp.MustCompile(`(?i)please tell me who you are`), "Git user name and email are not configured"},
	{regexp.MustCompile(`(?i)a branch named '([^']+)' already exists`), "Branch '$1' already exists"},
	{regexp.MustCompile(`(?i)invalid reference: (\S+)`), "Unknown branch or commit '$1'"},
	{regexp.MustCompile(`(?i)the branch '([^']+)' is not fully merged`), "Branch '$1' has unmerged commits; force delete to remove it"},
	{regexp.MustCompile(`(?i)your local changes to the following files would be overwritten`), "Local changes would be overwritten; commit or stash them first"},
	{regexp.MustCompile(`(?i)patch does not apply`), "Patch does not apply to the current file contents"},
	{regexp.MustCompile(`(?i)no upstream branch|has no upstream branch`), "Current branch has no upstream branch"},
	{regexp.MustCompile(`(?i)\[rejected\]|failed to push some refs`), "Push rejected; pull remote changes first"},
	{regexp.MustCompile(`(?i)could not read from remote repository|could not resolve host`), "Could not reach the remote repository"},
	{regexp.MustCompile(`(?i)authentication failed|permission denied`), "Authentication with the remote failed"},
	{regexp.MustCompile(`(?i)merge conflict|automatic merge failed`), "Merge conflict; resolve conflicts and commit"},
	{regexp.MustCompile(`(?i)does not have any commits yet|unknown revision or path not in the working tree`), "Revision not found"},
	{regexp.MustCompile(`(?i)deadline exceeded`), "Git command timed out"},
}

// Describe translates common git failure messages into short sentences.
// Unrecognized text is returned trimmed but otherwise unchanged.
func Describe(stderr string) string {
	msg := strings.TrimSpace(stderr)
	for _, p := range stderrPatterns {
		m := p.re.FindStringSubmatchIndex(msg)
		if m == nil {
			continue
		}
		return string(p.re.ExpandString(nil, p.text, msg, m))
	}
	return msg
}
