// Package patch stages, unstages and discards single diff hunks by feeding a
// minimal patch to `git apply`.
package patch

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"slices"
	"strings"

	"github.com/thiagokokada/gitdeck/internal/git"
	"github.com/thiagokokada/gitdeck/internal/git/porcelain"
	"github.com/thiagokokada/gitdeck/internal/process"
)

const (
	devNull         = "/dev/null"
	noNewlineMarker = `\ No newline at end of file`
)

type Mode int

const (
	// Stage applies an unstaged hunk to the index.
	Stage Mode = iota
	// Unstage removes a staged hunk from the index.
	Unstage
	// Discard reverts an unstaged hunk in the worktree.
	Discard
)

func (m Mode) String() string {
	switch m {
	case Stage:
		return "stage"
	case Unstage:
		return "unstage"
	case Discard:
		return "discard"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// Flags returns the `git apply` flags implementing the mode.
func (m Mode) Flags() []string {
	switch m {
	case Stage:
		return []string{git.ApplyCached}
	case Unstage:
		return []string{git.ApplyCached, git.ApplyReverse}
	default:
		return []string{git.ApplyReverse}
	}
}

// ParseMode accepts the names returned by Mode.String.
func ParseMode(s string) (Mode, error) {
	for _, m := range []Mode{Stage, Unstage, Discard} {
		if strings.EqualFold(s, m.String()) {
			return m, nil
		}
	}
	return 0, fmt.Errorf("unknown hunk mode %q", s)
}

// Build renders a patch containing only hunk h of file fd.
func Build(fd porcelain.FileDiff, h porcelain.DiffHunk) string {
	oldPath := "a/" + fd.Path
	if fd.OldPath != "" {
		oldPath = "a/" + fd.OldPath
	}
	newPath := "b/" + fd.Path
	if fd.IsNew {
		oldPath = devNull
	}
	if fd.IsDeleted {
		newPath = devNull
	}

	var b strings.Builder
	b.WriteString("--- " + oldPath + "\n")
	b.WriteString("+++ " + newPath + "\n")
	b.WriteString(h.Header + "\n")
	for i, line := range h.Lines {
		b.WriteString(line)
		b.WriteByte('\n')
		if slices.Contains(h.NoNewlineAfter, i) {
			b.WriteString(noNewlineMarker + "\n")
		}
	}
	return b.String()
}

// Applier writes hunk patches to temporary files and applies them.
type Applier struct {
	runner  *git.Runner
	tempDir string
}

// NewApplier returns an Applier creating its patch files in tempDir, or in
// the system temporary directory when tempDir is empty.
func NewApplier(runner *git.Runner, tempDir string) *Applier {
	return &Applier{runner: runner, tempDir: tempDir}
}

// Apply stages, unstages or discards hunk h of fd in repo. Failures to write
// the patch are reported as a failed Result without invoking git.
func (a *Applier) Apply(ctx context.Context, repo string, fd porcelain.FileDiff, h porcelain.DiffHunk, mode Mode) git.Result {
	path, err := a.writePatch(Build(fd, h))
	if err != nil {
		slog.Error("write hunk patch", slog.String("file", fd.Path), slog.Any("error", err))
		return git.Result{Result: process.Result{ExitCode: -1, Stderr: fmt.Sprintf("write patch: %v", err)}}
	}
	defer func() {
		if err := os.Remove(path); err != nil {
			slog.Debug("remove hunk patch", slog.String("path", path), slog.Any("error", err))
		}
	}()
	slog.Debug("apply hunk",
		slog.String("file", fd.Path),
		slog.String("mode", mode.String()),
		slog.String("header", h.Header),
	)
	return a.runner.Apply(ctx, repo, path, mode.Flags()...)
}

// ApplyIndex applies the hunk at index of fd.
func (a *Applier) ApplyIndex(ctx context.Context, repo string, fd porcelain.FileDiff, index int, mode Mode) (git.Result, error) {
	if index < 0 || index >= len(fd.Hunks) {
		return git.Result{}, fmt.Errorf("%s: hunk %d out of range (file has %d)", fd.Path, index, len(fd.Hunks))
	}
	return a.Apply(ctx, repo, fd, fd.Hunks[index], mode), nil
}

func (a *Applier) writePatch(text string) (string, error) {
	f, err := os.CreateTemp(a.tempDir, "gitdeck-hunk-*.patch")
	if err != nil {
		return "", err
	}
	if _, err := f.WriteString(text); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", err
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", err
	}
	return f.Name(), nil
}
