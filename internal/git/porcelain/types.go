// Package porcelain parses the machine-readable output formats of the git
// commands the data layer runs. Every parser is a pure function of its input;
// lines that do not match the expected shape are skipped, never fatal.
package porcelain

// Status characters used by porcelain v2 for the index and worktree columns.
const (
	StatusUnchanged = '.'
	StatusUntracked = '?'
)

type FileStatus struct {
	Path           string
	OrigPath       string // rename or copy source, empty otherwise
	IndexStatus    byte
	WorktreeStatus byte

	// Filled from diff output, never by the status parser.
	Additions int
	Deletions int
}

type Status struct {
	Branch   string
	Detached bool
	Upstream string
	Ahead    int
	Behind   int

	Staged    []FileStatus
	Unstaged  []FileStatus
	Untracked []string
}

func (s Status) Dirty() bool {
	return len(s.Staged) > 0 || len(s.Unstaged) > 0 || len(s.Untracked) > 0
}

type CommitEntry struct {
	Hash        string
	ShortHash   string
	Subject     string
	Author      string
	Date        string // ISO-8601 author date
	Decorations string // raw %D
	Parents     string // raw space separated %P
}

type DiffHunk struct {
	OldStart int
	OldCount int
	NewStart int
	NewCount int
	Header   string
	Lines    []string // prefix ('+', '-' or ' ') retained
	// NoNewlineAfter holds the indexes of Lines that git marked with
	// "\ No newline at end of file". The markers are not counted as lines.
	NoNewlineAfter []int
}

type FileDiff struct {
	Path      string
	OldPath   string // set when the old side has a different name
	Additions int
	Deletions int
	IsNew     bool
	IsDeleted bool
	IsRenamed bool
	IsBinary  bool
	Hunks     []DiffHunk
}

type BranchInfo struct {
	Name      string
	Hash      string
	IsLocal   bool
	IsCurrent bool
	Upstream  string
	Tracking  string // e.g. "[ahead 3, behind 1]"
}

type CommitInfo struct {
	Subject     string
	Body        string
	Author      string
	Email       string
	Date        string
	Parents     []string
	Decorations string
}
