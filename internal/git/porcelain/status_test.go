package porcelain

import (
	"errors"
	"slices"
	"strings"
	"testing"
)

func TestParseStatus_BranchAndEntries(t *testing.T) {
	t.Parallel()

	in := "# branch.head main\n# branch.ab +2 -1\n1 M. N... 100644 100644 100644 abc123 def456 foo.txt\n? newfile.txt\n"
	got, err := ParseStatus(strings.NewReader(in))
	if err != nil {
		t.Fatalf("ParseStatus() error = %v", err)
	}
	if got.Branch != "main" || got.Detached {
		t.Fatalf("branch = %q detached=%v", got.Branch, got.Detached)
	}
	if got.Ahead != 2 || got.Behind != 1 {
		t.Fatalf("ahead/behind = %d/%d, want 2/1", got.Ahead, got.Behind)
	}
	if len(got.Staged) != 1 || got.Staged[0].Path != "foo.txt" || got.Staged[0].IndexStatus != 'M' {
		t.Fatalf("staged = %+v", got.Staged)
	}
	if len(got.Unstaged) != 0 {
		t.Fatalf("unstaged = %+v, want none", got.Unstaged)
	}
	if !slices.Equal(got.Untracked, []string{"newfile.txt"}) {
		t.Fatalf("untracked = %#v", got.Untracked)
	}
	if !got.Dirty() {
		t.Fatal("expected dirty status")
	}
}

func TestParseStatus_Entries(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		in           string
		wantStaged   []string
		wantUnstaged []string
		wantUntrack  []string
	}{
		{name: "empty", in: ""},
		{
			name:         "worktree_only",
			in:           "1 .M N... 100644 100644 100644 abcdef0 abcdef0 path.txt\n",
			wantUnstaged: []string{"path.txt"},
		},
		{
			name:       "staged_only",
			in:         "1 A. N... 000000 100644 100644 0000000 abcdef0 path.txt\n",
			wantStaged: []string{"path.txt"},
		},
		{
			name:         "both_columns",
			in:           "1 MM N... 100644 100644 100644 abcdef0 abcdef0 path.txt\n",
			wantStaged:   []string{"path.txt"},
			wantUnstaged: []string{"path.txt"},
		},
		{
			name:         "unmerged_always_both",
			in:           "u .. N... 100644 100644 100644 100644 a1 b2 c3 conflict.txt\n",
			wantStaged:   []string{"conflict.txt"},
			wantUnstaged: []string{"conflict.txt"},
		},
		{
			name:         "path_with_spaces",
			in:           "1 .D N... 100644 100644 000000 abcdef0 abcdef0 dir/my file.txt\n? other file\n",
			wantUnstaged: []string{"dir/my file.txt"},
			wantUntrack:  []string{"other file"},
		},
		{
			name:        "quoted_path",
			in:          "? \"caf\\303\\251.txt\"\n",
			wantUntrack: []string{"café.txt"},
		},
		{
			name: "ignored_and_unknown_skipped",
			in:   "! build/\n# branch.future thing\nz unknown line\n1\n1 .M\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := ParseStatus(strings.NewReader(tt.in))
			if err != nil {
				t.Fatalf("ParseStatus() error = %v", err)
			}
			if paths := statusPaths(got.Staged); !slices.Equal(paths, tt.wantStaged) {
				t.Fatalf("staged = %#v, want %#v", paths, tt.wantStaged)
			}
			if paths := statusPaths(got.Unstaged); !slices.Equal(paths, tt.wantUnstaged) {
				t.Fatalf("unstaged = %#v, want %#v", paths, tt.wantUnstaged)
			}
			if !slices.Equal(got.Untracked, tt.wantUntrack) {
				t.Fatalf("untracked = %#v, want %#v", got.Untracked, tt.wantUntrack)
			}
		})
	}
}

func TestParseStatus_RenameKeepsOriginalPath(t *testing.T) {
	t.Parallel()

	in := "2 R. N... 100644 100644 100644 abcdef0 abcdef0 R100 new name.txt\told.txt\n"
	got, err := ParseStatus(strings.NewReader(in))
	if err != nil {
		t.Fatalf("ParseStatus() error = %v", err)
	}
	if len(got.Staged) != 1 {
		t.Fatalf("staged = %+v", got.Staged)
	}
	fs := got.Staged[0]
	if fs.Path != "new name.txt" || fs.OrigPath != "old.txt" || fs.IndexStatus != 'R' {
		t.Fatalf("rename entry = %+v", fs)
	}
}

func TestParseStatus_BothListsHoldIndependentCopies(t *testing.T) {
	t.Parallel()

	got, err := ParseStatus(strings.NewReader("1 MM N... 100644 100644 100644 a b f.txt\n"))
	if err != nil {
		t.Fatalf("ParseStatus() error = %v", err)
	}
	got.Staged[0].Additions = 10
	if got.Unstaged[0].Additions != 0 {
		t.Fatal("staged and unstaged entries share state")
	}
}

func TestParseStatus_Detached(t *testing.T) {
	t.Parallel()

	got, err := ParseStatus(strings.NewReader("# branch.oid 1234\n# branch.head (detached)\n# branch.upstream origin/main\n"))
	if err != nil {
		t.Fatalf("ParseStatus() error = %v", err)
	}
	if !got.Detached || got.Branch != "(detached)" {
		t.Fatalf("got branch=%q detached=%v", got.Branch, got.Detached)
	}
	if got.Upstream != "origin/main" {
		t.Fatalf("upstream = %q", got.Upstream)
	}
	if got.Dirty() {
		t.Fatal("clean status reported dirty")
	}
}

// Every path with a non-'.' column shows up exactly once on that side.
func TestParseStatus_ExactlyOncePerSide(t *testing.T) {
	t.Parallel()

	codes := []byte{'.', 'M', 'A', 'D', 'R', 'C', 'T'}
	var b strings.Builder
	wantStaged := map[string]int{}
	wantUnstaged := map[string]int{}
	for _, x := range codes {
		for _, y := range codes {
			path := "f_" + string(x) + string(y)
			b.WriteString("1 " + string(x) + string(y) + " N... 100644 100644 100644 a b " + path + "\n")
			if x != '.' {
				wantStaged[path]++
			}
			if y != '.' {
				wantUnstaged[path]++
			}
		}
	}
	got, err := ParseStatus(strings.NewReader(b.String()))
	if err != nil {
		t.Fatalf("ParseStatus() error = %v", err)
	}
	assertCounts(t, "staged", got.Staged, wantStaged)
	assertCounts(t, "unstaged", got.Unstaged, wantUnstaged)
}

func TestParseStatus_ReaderError(t *testing.T) {
	t.Parallel()

	if _, err := ParseStatus(failingReader{}); err == nil {
		t.Fatal("expected error")
	}
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) {
	return 0, errors.New("boom")
}

func statusPaths(files []FileStatus) []string {
	var paths []string
	for _, f := range files {
		paths = append(paths, f.Path)
	}
	return paths
}

func assertCounts(t *testing.T, side string, files []FileStatus, want map[string]int) {
	t.Helper()
	got := map[string]int{}
	for _, f := range files {
		got[f.Path]++
	}
	if len(got) != len(want) {
		t.Fatalf("%s: got %d paths, want %d", side, len(got), len(want))
	}
	for path, n := range want {
		if got[path] != n {
			t.Fatalf("%s: %s appears %d times, want %d", side, path, got[path], n)
		}
	}
}
