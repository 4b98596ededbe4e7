package render

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/thiagokokada/gitdeck/internal/git"
	"github.com/thiagokokada/gitdeck/internal/git/porcelain"
	"github.com/thiagokokada/gitdeck/internal/refresh"
)

func plainPrinter() (*Printer, *bytes.Buffer) {
	var buf bytes.Buffer
	return NewPrinter(&buf, ThemeLight, ColorNever), &buf
}

func TestPrinter_Status(t *testing.T) {
	t.Parallel()

	p, buf := plainPrinter()
	p.Status(&refresh.Snapshot{
		Branch:    "main",
		Upstream:  "origin/main",
		Ahead:     2,
		Behind:    1,
		HeadHash:  "0123456789abcdef",
		Staged:    []porcelain.FileStatus{{Path: "foo.txt", IndexStatus: 'M', WorktreeStatus: '.', Additions: 3, Deletions: 1}},
		Unstaged:  []porcelain.FileStatus{{Path: "new.go", OrigPath: "old.go", IndexStatus: '.', WorktreeStatus: 'R'}},
		Untracked: []string{"newfile.txt"},
		Dirty:     true,
	})
	want := strings.Join([]string{
		"On branch main [origin/main, ahead 2, behind 1]",
		"HEAD 0123456",
		"",
		"Staged changes:",
		"  M foo.txt +3 -1",
		"",
		"Unstaged changes:",
		"  R old.go -> new.go",
		"",
		"Untracked files:",
		"  newfile.txt",
		"",
	}, "\n")
	if got := buf.String(); got != want {
		t.Fatalf("Status output:\n%s\nwant:\n%s", got, want)
	}
}

func TestPrinter_StatusCleanAndDetached(t *testing.T) {
	t.Parallel()

	p, buf := plainPrinter()
	p.Status(&refresh.Snapshot{Branch: "(detached)", Detached: true, HeadHash: "abcdef0123"})
	want := "HEAD detached at abcdef0\nnothing to commit, working tree clean\n"
	if got := buf.String(); got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestPrinter_LogAndBranches(t *testing.T) {
	t.Parallel()

	p, buf := plainPrinter()
	p.Log([]porcelain.CommitEntry{{
		ShortHash:   "abc",
		Subject:     "Fix bug",
		Author:      "Alice",
		Date:        "2024-01-01T00:00:00+00:00",
		Decorations: "HEAD -> main",
	}}, true)
	p.Branches([]porcelain.BranchInfo{
		{Name: "main", Hash: "2222222", IsCurrent: true, Upstream: "origin/main", Tracking: "[ahead 1]"},
		{Name: "topic", Hash: "1111111"},
	})
	want := "abc 2024-01-01 Fix bug <Alice> (HEAD -> main)\n" +
		"... more commits available\n" +
		"* main 2222222 [origin/main] [ahead 1]\n" +
		"  topic 1111111\n"
	if got := buf.String(); got != want {
		t.Fatalf("got:\n%s\nwant:\n%s", got, want)
	}
}

func TestPrinter_DiffPlain(t *testing.T) {
	t.Parallel()

	p, buf := plainPrinter()
	p.Diff([]porcelain.FileDiff{
		{
			Path:      "main.go",
			Additions: 1,
			Deletions: 1,
			Hunks: []porcelain.DiffHunk{{
				Header: "@@ -1 +1 @@",
				Lines:  []string{"-package old", "+package main"},
			}},
		},
		{Path: "img.png", IsBinary: true},
	})
	want := "modified: main.go (+1 -1)\n@@ -1 +1 @@\n-package old\n+package main\n\nmodified: img.png\nbinary file\n"
	if got := buf.String(); got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestPrinter_DiffColored(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	p := NewPrinter(&buf, ThemeDark, ColorAlways)
	p.Hunks(porcelain.FileDiff{
		Path:  "main.go",
		Hunks: []porcelain.DiffHunk{{Header: "@@ -1 +1 @@", Lines: []string{"+func main() {}"}}},
	})
	out := buf.String()
	if !strings.Contains(out, "\x1b[") {
		t.Fatalf("expected ANSI escapes, got %q", out)
	}
	if !strings.Contains(out, "[0]") || !strings.Contains(out, "main") {
		t.Fatalf("output = %q", out)
	}
}

func TestPrinter_CommandAndFailure(t *testing.T) {
	t.Parallel()

	p, buf := plainPrinter()
	p.Command(git.CommandRecord{Command: "git status", Success: true, Duration: 1500 * time.Microsecond})
	p.Command(git.CommandRecord{Command: "git switch nope", Stderr: "fatal: invalid reference: nope\n"})
	want := "ok 2ms git status\nfailed 0s git switch nope\n  Unknown branch or commit 'nope'\n"
	if got := buf.String(); got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestPrinter_Commit(t *testing.T) {
	t.Parallel()

	p, buf := plainPrinter()
	p.Commit(&git.CommitDetails{
		Hash: "0123456789abcdef0123456789abcdef01234567",
		Info: porcelain.CommitInfo{
			Subject: "Add feature",
			Body:    "Longer text.",
			Author:  "Alice",
			Email:   "alice@example.com",
			Date:    "2024-01-01T00:00:00+00:00",
			Parents: []string{"aaaaaaaaaa", "bbbbbbbbbb"},
		},
	})
	out := buf.String()
	for _, want := range []string{
		"commit 0123456789abcdef0123456789abcdef01234567\n",
		"Merge: aaaaaaa bbbbbbb\n",
		"Author: Alice <alice@example.com>\n",
		"\n    Add feature\n\n    Longer text.\n",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("output %q missing %q", out, want)
		}
	}
}

func TestPrinter_CommitSummary(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		files []porcelain.FileDiff
		want  string
	}{
		{name: "empty", want: "0123456 Merge it (0 files, +0 -0)\n"},
		{
			name:  "one file",
			files: []porcelain.FileDiff{{Path: "a", Additions: 2, Deletions: 1}},
			want:  "0123456 Merge it (1 file, +2 -1)\n",
		},
		{
			name: "several files",
			files: []porcelain.FileDiff{
				{Path: "a", Additions: 2, Deletions: 1},
				{Path: "b", Additions: 3},
			},
			want: "0123456 Merge it (2 files, +5 -1)\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			p, buf := plainPrinter()
			p.CommitSummary(&git.CommitDetails{
				Hash:  "0123456789abcdef0123456789abcdef01234567",
				Info:  porcelain.CommitInfo{Subject: "Merge it"},
				Files: tt.files,
			})
			if got := buf.String(); got != tt.want {
				t.Fatalf("CommitSummary() = %q, want %q", got, tt.want)
			}
		})
	}
}

type errWriter struct{}

func (errWriter) Write([]byte) (int, error) { return 0, errors.New("closed") }

func TestPrinter_StickyError(t *testing.T) {
	t.Parallel()

	p := NewPrinter(errWriter{}, ThemeLight, ColorNever)
	p.Log([]porcelain.CommitEntry{{ShortHash: "a"}, {ShortHash: "b"}}, false)
	if p.Err() == nil {
		t.Fatal("expected write error")
	}
}

func TestResolveTheme(t *testing.T) {
	orig := detectDarkMode
	t.Cleanup(func() { detectDarkMode = orig })

	detectDarkMode = func() (bool, error) { return true, nil }
	if got := ResolveTheme(ThemeAuto); got != ThemeDark {
		t.Fatalf("ResolveTheme(auto) with dark desktop = %s", got)
	}
	detectDarkMode = func() (bool, error) { return false, errors.New("no portal") }
	if got := ResolveTheme(ThemeAuto); got != ThemeLight {
		t.Fatalf("ResolveTheme(auto) on detection error = %s", got)
	}
	if got := ResolveTheme(ThemeDark); got != ThemeDark {
		t.Fatalf("explicit theme changed to %s", got)
	}
	if ParseTheme(" Dark ") != ThemeDark || ParseTheme("??") != ThemeAuto {
		t.Fatal("ParseTheme mismatch")
	}
}
