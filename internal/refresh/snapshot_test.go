package refresh

import (
	"testing"

	"github.com/thiagokokada/gitdeck/internal/git/porcelain"
)

func TestUpdates_CountsIndependentOfOrder(t *testing.T) {
	t.Parallel()

	status := StatusUpdate{Status: porcelain.Status{
		Branch:   "main",
		Staged:   []porcelain.FileStatus{{Path: "s.txt", IndexStatus: 'M', WorktreeStatus: '.'}},
		Unstaged: []porcelain.FileStatus{{Path: "u.txt", IndexStatus: '.', WorktreeStatus: 'M'}},
	}}
	diff := DiffUpdate{Files: []porcelain.FileDiff{{Path: "u.txt", Additions: 3, Deletions: 4}}}
	staged := DiffUpdate{Staged: true, Files: []porcelain.FileDiff{{Path: "s.txt", Additions: 1}}}

	orders := map[string][]Update{
		"status_first": {status, diff, staged},
		"status_last":  {staged, diff, status},
		"status_mid":   {diff, status, staged},
	}
	for name, updates := range orders {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			// Updates share slices, so build fresh copies per order.
			var s Snapshot
			for _, u := range updates {
				if su, ok := u.(StatusUpdate); ok {
					st := su.Status
					st.Staged = append([]porcelain.FileStatus(nil), st.Staged...)
					st.Unstaged = append([]porcelain.FileStatus(nil), st.Unstaged...)
					u = StatusUpdate{Status: st}
				}
				u.Apply(&s)
			}
			if got := s.Unstaged[0]; got.Additions != 3 || got.Deletions != 4 {
				t.Fatalf("unstaged counts = +%d -%d", got.Additions, got.Deletions)
			}
			if got := s.Staged[0]; got.Additions != 1 || got.Deletions != 0 {
				t.Fatalf("staged counts = +%d -%d", got.Additions, got.Deletions)
			}
			if !s.Dirty {
				t.Fatal("snapshot with changes is not dirty")
			}
		})
	}
}

func TestStatusUpdate_CleanTree(t *testing.T) {
	t.Parallel()

	s := Snapshot{Dirty: true, Untracked: []string{"x"}}
	StatusUpdate{Status: porcelain.Status{Branch: "(detached)", Detached: true}}.Apply(&s)
	if s.Dirty || len(s.Untracked) != 0 || !s.Detached {
		t.Fatalf("snapshot = %+v", s)
	}
}

func TestHeadUpdate_TrimsLineEndings(t *testing.T) {
	t.Parallel()

	var s Snapshot
	HeadUpdate{Hash: "abc\r\n"}.Apply(&s)
	if s.HeadHash != "abc" {
		t.Fatalf("HeadHash = %q", s.HeadHash)
	}
}

func TestLogUpdate_HasMore(t *testing.T) {
	t.Parallel()

	tests := []struct {
		n, page int
		want    bool
	}{
		{n: 100, page: 100, want: true},
		{n: 99, page: 100, want: false},
		{n: 0, page: 0, want: false},
	}
	for _, tt := range tests {
		var s Snapshot
		LogUpdate{Commits: make([]porcelain.CommitEntry, tt.n), PageSize: tt.page}.Apply(&s)
		if s.HasMoreCommits != tt.want {
			t.Errorf("n=%d page=%d: HasMoreCommits = %v", tt.n, tt.page, s.HasMoreCommits)
		}
	}
}

func TestSnapshot_CurrentBranch(t *testing.T) {
	t.Parallel()

	s := Snapshot{Branches: []porcelain.BranchInfo{{Name: "a"}, {Name: "b", IsCurrent: true}}}
	if b, ok := s.CurrentBranch(); !ok || b.Name != "b" {
		t.Fatalf("CurrentBranch() = %+v, %v", b, ok)
	}
	if _, ok := (&Snapshot{}).CurrentBranch(); ok {
		t.Fatal("empty snapshot has a current branch")
	}
}
