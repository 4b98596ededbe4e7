package refresh

import (
	"strings"

	"github.com/thiagokokada/gitdeck/internal/git/porcelain"
)

// Snapshot is the aggregated state of one repository. Each Update owns a
// group of fields, so a snapshot read mid-refresh may mix old and new groups.
type Snapshot struct {
	// Status group.
	Branch    string
	Detached  bool
	Upstream  string
	Ahead     int
	Behind    int
	Staged    []porcelain.FileStatus
	Unstaged  []porcelain.FileStatus
	Untracked []string
	Dirty     bool

	// Log group.
	Commits        []porcelain.CommitEntry
	HasMoreCommits bool

	// Diff groups. StagedDiffs is only filled by Load.
	Diffs       []porcelain.FileDiff
	StagedDiffs []porcelain.FileDiff

	Branches []porcelain.BranchInfo
	HeadHash string
}

// CurrentBranch returns the entry of Branches marked current, if any.
func (s *Snapshot) CurrentBranch() (porcelain.BranchInfo, bool) {
	for _, b := range s.Branches {
		if b.IsCurrent {
			return b, true
		}
	}
	return porcelain.BranchInfo{}, false
}

// Update is a partial result that writes one field group of a Snapshot.
type Update interface {
	Apply(s *Snapshot)
}

type StatusUpdate struct {
	Status porcelain.Status
}

func (u StatusUpdate) Apply(s *Snapshot) {
	st := u.Status
	s.Branch = st.Branch
	s.Detached = st.Detached
	s.Upstream = st.Upstream
	s.Ahead = st.Ahead
	s.Behind = st.Behind
	s.Staged = st.Staged
	s.Unstaged = st.Unstaged
	s.Untracked = st.Untracked
	s.Dirty = st.Dirty()
	// Whichever of status and diff lands last fills the line counts.
	annotateCounts(s.Unstaged, s.Diffs)
	annotateCounts(s.Staged, s.StagedDiffs)
}

type LogUpdate struct {
	Commits []porcelain.CommitEntry
	// PageSize is the number of commits requested. A full page is taken to
	// mean more history exists.
	PageSize int
}

func (u LogUpdate) Apply(s *Snapshot) {
	s.Commits = u.Commits
	s.HasMoreCommits = u.PageSize > 0 && len(u.Commits) == u.PageSize
}

type DiffUpdate struct {
	Files  []porcelain.FileDiff
	Staged bool
}

func (u DiffUpdate) Apply(s *Snapshot) {
	if u.Staged {
		s.StagedDiffs = u.Files
		annotateCounts(s.Staged, s.StagedDiffs)
		return
	}
	s.Diffs = u.Files
	annotateCounts(s.Unstaged, s.Diffs)
}

type BranchesUpdate struct {
	Branches []porcelain.BranchInfo
}

func (u BranchesUpdate) Apply(s *Snapshot) {
	s.Branches = u.Branches
}

type HeadUpdate struct {
	Hash string
}

func (u HeadUpdate) Apply(s *Snapshot) {
	s.HeadHash = strings.TrimRight(u.Hash, "\r\n")
}

func annotateCounts(files []porcelain.FileStatus, diffs []porcelain.FileDiff) {
	if len(files) == 0 {
		return
	}
	byPath := make(map[string]porcelain.FileDiff, len(diffs))
	for _, d := range diffs {
		byPath[d.Path] = d
	}
	for i := range files {
		d := byPath[files[i].Path]
		files[i].Additions = d.Additions
		files[i].Deletions = d.Deletions
	}
}
