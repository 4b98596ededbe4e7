// Package render prints repository state for a terminal.
package render

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/thiagokokada/gitdeck/internal/git"
	"github.com/thiagokokada/gitdeck/internal/git/porcelain"
	"github.com/thiagokokada/gitdeck/internal/refresh"
)

type ColorMode int

const (
	// ColorAuto colors output only when w is a terminal.
	ColorAuto ColorMode = iota
	ColorAlways
	ColorNever
)

type styles struct {
	add, del, hunk, header, branch, dim lipgloss.Style
	staged, unstaged, untracked         lipgloss.Style
	failure, bold                       lipgloss.Style
}

// Printer writes styled text to a single writer. Write errors are sticky and
// reported by Err.
type Printer struct {
	w      io.Writer
	r      *lipgloss.Renderer
	theme  Theme
	st     styles
	chroma *chroma.Style
	err    error
}

// NewPrinter returns a Printer for w. theme must already be resolved; an
// unresolved ThemeAuto renders as light.
func NewPrinter(w io.Writer, theme Theme, mode ColorMode) *Printer {
	r := lipgloss.NewRenderer(w)
	switch mode {
	case ColorAlways:
		r.SetColorProfile(termenv.ANSI256)
	case ColorNever:
		r.SetColorProfile(termenv.Ascii)
	}
	r.SetHasDarkBackground(theme == ThemeDark)
	pal := theme.palette()
	fg := func(c lipgloss.Color) lipgloss.Style { return r.NewStyle().Foreground(c) }
	return &Printer{
		w:     w,
		r:     r,
		theme: theme,
		st: styles{
			add:       fg(pal.add),
			del:       fg(pal.del),
			hunk:      fg(pal.hunk),
			header:    fg(pal.header).Bold(true),
			branch:    fg(pal.branch).Bold(true),
			dim:       fg(pal.dim),
			staged:    fg(pal.staged),
			unstaged:  fg(pal.unstaged),
			untracked: fg(pal.untracked),
			failure:   fg(pal.failure).Bold(true),
			bold:      r.NewStyle().Bold(true),
		},
		chroma: theme.chromaStyle(),
	}
}

func (p *Printer) Err() error {
	return p.err
}

func (p *Printer) colored() bool {
	return p.r.ColorProfile() != termenv.Ascii
}

func (p *Printer) printf(format string, args ...any) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, format, args...)
}

// Status prints branch information and the changed files of s.
func (p *Printer) Status(s *refresh.Snapshot) {
	if s.Detached {
		p.printf("HEAD detached at %s\n", p.st.branch.Render(shortHash(s.HeadHash)))
	} else {
		p.printf("On branch %s", p.st.branch.Render(s.Branch))
		if s.Upstream != "" {
			p.printf(" %s", p.st.dim.Render(upstreamSummary(s.Upstream, s.Ahead, s.Behind)))
		}
		p.printf("\n")
	}
	if s.HeadHash != "" && !s.Detached {
		p.printf("%s\n", p.st.dim.Render("HEAD "+shortHash(s.HeadHash)))
	}
	if !s.Dirty {
		p.printf("nothing to commit, working tree clean\n")
		return
	}
	p.fileSection("Staged changes", s.Staged, true)
	p.fileSection("Unstaged changes", s.Unstaged, false)
	if len(s.Untracked) > 0 {
		p.printf("\n%s\n", p.st.bold.Render("Untracked files:"))
		for _, path := range s.Untracked {
			p.printf("  %s\n", p.st.untracked.Render(path))
		}
	}
}

func upstreamSummary(upstream string, ahead, behind int) string {
	parts := []string{upstream}
	if ahead > 0 {
		parts = append(parts, fmt.Sprintf("ahead %d", ahead))
	}
	if behind > 0 {
		parts = append(parts, fmt.Sprintf("behind %d", behind))
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func (p *Printer) fileSection(title string, files []porcelain.FileStatus, staged bool) {
	if len(files) == 0 {
		return
	}
	style := p.st.unstaged
	if staged {
		style = p.st.staged
	}
	p.printf("\n%s\n", p.st.bold.Render(title+":"))
	for _, f := range files {
		code := f.WorktreeStatus
		if staged {
			code = f.IndexStatus
		}
		name := f.Path
		if f.OrigPath != "" {
			name = f.OrigPath + " -> " + f.Path
		}
		p.printf("  %s %s", style.Render(string(code)), name)
		if f.Additions > 0 || f.Deletions > 0 {
			p.printf(" %s%s",
				p.st.add.Render(fmt.Sprintf("+%d", f.Additions)),
				p.st.del.Render(fmt.Sprintf(" -%d", f.Deletions)),
			)
		}
		p.printf("\n")
	}
}

// Log prints one line per commit.
func (p *Printer) Log(commits []porcelain.CommitEntry, hasMore bool) {
	for _, c := range commits {
		p.printf("%s %s %s %s", p.st.hunk.Render(c.ShortHash), p.st.dim.Render(shortDate(c.Date)), c.Subject, p.st.dim.Render("<"+c.Author+">"))
		if c.Decorations != "" {
			p.printf(" %s", p.st.branch.Render("("+c.Decorations+")"))
		}
		p.printf("\n")
	}
	if hasMore {
		p.printf("%s\n", p.st.dim.Render("... more commits available"))
	}
}

func (p *Printer) Branches(branches []porcelain.BranchInfo) {
	for _, b := range branches {
		marker := " "
		name := b.Name
		if b.IsCurrent {
			marker = "*"
			name = p.st.branch.Render(name)
		}
		p.printf("%s %s %s", marker, name, p.st.hunk.Render(b.Hash))
		if b.Upstream != "" {
			p.printf(" %s", p.st.dim.Render("["+b.Upstream+"]"))
		}
		if b.Tracking != "" {
			p.printf(" %s", p.st.dim.Render(b.Tracking))
		}
		p.printf("\n")
	}
}

// Diff prints parsed file diffs, highlighting code when colors are enabled.
func (p *Printer) Diff(files []porcelain.FileDiff) {
	for i, f := range files {
		if i > 0 {
			p.printf("\n")
		}
		p.printf("%s\n", p.st.header.Render(fileTitle(f)))
		if f.IsBinary {
			p.printf("%s\n", p.st.dim.Render("binary file"))
			continue
		}
		var lexer chroma.Lexer
		if p.colored() {
			lexer = lexerForPath(f.Path)
		}
		for _, h := range f.Hunks {
			p.printf("%s\n", p.st.hunk.Render(h.Header))
			p.printf("%s", p.hunkLines(lexer, h.Lines))
		}
	}
}

// Hunks prints the hunks of one file prefixed by their index, as accepted by
// the hunk commands.
func (p *Printer) Hunks(f porcelain.FileDiff) {
	p.printf("%s\n", p.st.header.Render(fileTitle(f)))
	var lexer chroma.Lexer
	if p.colored() {
		lexer = lexerForPath(f.Path)
	}
	for i, h := range f.Hunks {
		p.printf("%s %s\n", p.st.bold.Render(fmt.Sprintf("[%d]", i)), p.st.hunk.Render(h.Header))
		p.printf("%s", p.hunkLines(lexer, h.Lines))
	}
}

func (p *Printer) hunkLines(lexer chroma.Lexer, lines []string) string {
	var b strings.Builder
	for _, line := range lines {
		if line == "" {
			b.WriteByte('\n')
			continue
		}
		prefix, code := line[:1], line[1:]
		switch prefix {
		case "+":
			prefix = p.st.add.Render(prefix)
		case "-":
			prefix = p.st.del.Render(prefix)
		}
		b.WriteString(prefix)
		b.WriteString(p.highlight(lexer, code))
		b.WriteByte('\n')
	}
	return b.String()
}

func fileTitle(f porcelain.FileDiff) string {
	var title string
	switch {
	case f.IsRenamed:
		title = fmt.Sprintf("renamed: %s -> %s", f.OldPath, f.Path)
	case f.IsNew:
		title = "new file: " + f.Path
	case f.IsDeleted:
		title = "deleted: " + f.Path
	default:
		title = "modified: " + f.Path
	}
	if f.Additions > 0 || f.Deletions > 0 {
		title += fmt.Sprintf(" (+%d -%d)", f.Additions, f.Deletions)
	}
	return title
}

func (p *Printer) highlight(lexer chroma.Lexer, code string) string {
	if lexer == nil || code == "" {
		return code
	}
	it, err := lexer.Tokenise(nil, code)
	if err != nil {
		return code
	}
	var b strings.Builder
	if err := formatters.TTY256.Format(&b, p.chroma, it); err != nil {
		return code
	}
	return strings.TrimRight(b.String(), "\n")
}

func lexerForPath(path string) chroma.Lexer {
	if path == "" {
		return nil
	}
	lexer := lexers.Match(path)
	if lexer == nil {
		return nil
	}
	return chroma.Coalesce(lexer)
}

// Commit prints commit metadata followed by its diff.
func (p *Printer) Commit(d *git.CommitDetails) {
	info := d.Info
	p.printf("%s\n", p.st.hunk.Render("commit "+d.Hash))
	if len(info.Parents) > 1 {
		short := make([]string, 0, len(info.Parents))
		for _, h := range info.Parents {
			short = append(short, shortHash(h))
		}
		p.printf("Merge: %s\n", strings.Join(short, " "))
	}
	p.printf("Author: %s <%s>\n", info.Author, info.Email)
	p.printf("Date:   %s\n", info.Date)
	if info.Decorations != "" {
		p.printf("Refs:   %s\n", p.st.branch.Render(info.Decorations))
	}
	p.printf("\n    %s\n", p.st.bold.Render(info.Subject))
	if info.Body != "" {
		p.printf("\n")
		for line := range strings.SplitSeq(info.Body, "\n") {
			p.printf("    %s\n", line)
		}
	}
	if len(d.Files) > 0 {
		p.printf("\n")
		p.Diff(d.Files)
	}
}

// CommitSummary prints d on one line with its file and line totals.
func (p *Printer) CommitSummary(d *git.CommitDetails) {
	var adds, dels int
	for _, f := range d.Files {
		adds += f.Additions
		dels += f.Deletions
	}
	files := "files"
	if len(d.Files) == 1 {
		files = "file"
	}
	p.printf("%s %s %s %s\n",
		p.st.hunk.Render(shortHash(d.Hash)),
		d.Info.Subject,
		p.st.dim.Render(fmt.Sprintf("(%d %s,", len(d.Files), files)),
		p.st.add.Render(fmt.Sprintf("+%d", adds))+" "+p.st.del.Render(fmt.Sprintf("-%d", dels))+p.st.dim.Render(")"),
	)
}

// Command prints one executed command, as reported to a git.Observer.
func (p *Printer) Command(rec git.CommandRecord) {
	tag := p.st.staged.Render("ok")
	if !rec.Success {
		tag = p.st.failure.Render("failed")
	}
	p.printf("%s %s %s\n", tag, p.st.dim.Render(rec.Duration.Round(time.Millisecond).String()), rec.Command)
	if !rec.Success {
		if msg := git.Describe(rec.Stderr); msg != "" {
			p.printf("  %s\n", p.st.failure.Render(msg))
		}
	}
}

// Failure prints a failed command result with a readable explanation.
func (p *Printer) Failure(res git.Result) {
	p.printf("%s %s\n", p.st.failure.Render("error:"), res.Describe())
	if raw := res.TrimmedStderr(); raw != "" && raw != res.Describe() {
		p.printf("%s\n", p.st.dim.Render(raw))
	}
}

func shortHash(h string) string {
	if len(h) > 7 {
		return h[:7]
	}
	return h
}

func shortDate(iso string) string {
	if t, err := time.Parse(time.RFC3339, iso); err == nil {
		return t.Format("2006-01-02")
	}
	return iso
}
