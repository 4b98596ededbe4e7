package cmd

import (
	"fmt"
	"log/slog"

	"github.com/thiagokokada/gitdeck/internal/git/patch"
	"github.com/thiagokokada/gitdeck/internal/git/porcelain"
	"github.com/thiagokokada/gitdeck/internal/refresh"
)

type StatusCmd struct{}

func (c *StatusCmd) Run(a *app) error {
	snap, err := refresh.Load(a.ctx, a.runner, a.repo, a.cfg.Refresh.PageSize)
	if err != nil {
		if snap == nil {
			return err
		}
		slog.Warn("partial status", slog.Any("error", err))
	}
	a.out.Status(snap)
	return a.out.Err()
}

type LogCmd struct {
	Limit int `help:"Number of commits to show. Defaults to the configured page size." short:"n"`
	Skip  int `help:"Number of commits to skip."`
}

func (c *LogCmd) Run(a *app) error {
	limit := c.Limit
	if limit <= 0 {
		limit = a.cfg.Refresh.PageSize
	}
	res := a.runner.Log(a.ctx, a.repo, limit, max(c.Skip, 0))
	if !res.Success() {
		return a.report(res)
	}
	commits := porcelain.ParseLog(res.Stdout)
	a.out.Log(commits, len(commits) == limit)
	return a.out.Err()
}

type BranchesCmd struct {
	Remote bool `help:"List remote-tracking branches instead." short:"r"`
}

func (c *BranchesCmd) Run(a *app) error {
	var branches []porcelain.BranchInfo
	if c.Remote {
		res := a.runner.RemoteBranchList(a.ctx, a.repo)
		if !res.Success() {
			return a.report(res)
		}
		branches = porcelain.ParseRemoteBranches(res.Stdout)
	} else {
		res := a.runner.BranchList(a.ctx, a.repo)
		if !res.Success() {
			return a.report(res)
		}
		branches = porcelain.ParseBranches(res.Stdout)
	}
	porcelain.SortBranches(branches)
	a.out.Branches(branches)
	return a.out.Err()
}

type DiffCmd struct {
	Staged bool     `help:"Show changes staged for commit."`
	Paths  []string `arg:"" optional:"" help:"Only show these files."`
}

func (c *DiffCmd) Run(a *app) error {
	files, err := loadDiff(a, c.Staged)
	if err != nil {
		return err
	}
	if len(c.Paths) > 0 {
		keep := files[:0]
		for _, f := range files {
			for _, p := range c.Paths {
				if f.Path == p || f.OldPath == p {
					keep = append(keep, f)
					break
				}
			}
		}
		files = keep
	}
	a.out.Diff(files)
	return a.out.Err()
}

func loadDiff(a *app, staged bool) ([]porcelain.FileDiff, error) {
	res := a.runner.Diff(a.ctx, a.repo)
	if staged {
		res = a.runner.DiffStaged(a.ctx, a.repo)
	}
	if !res.Success() {
		return nil, a.report(res)
	}
	return porcelain.ParseDiff(res.Stdout), nil
}

type ShowCmd struct {
	Rev string `arg:"" optional:"" help:"Commit hash or revision." default:"HEAD"`
}

func (c *ShowCmd) Run(a *app) error {
	loader, err := a.details()
	if err != nil {
		return err
	}
	d, err := loader.Load(a.ctx, c.Rev)
	if err != nil {
		return err
	}
	a.out.Commit(d)
	return a.out.Err()
}

type HunkCmd struct {
	List    HunkListCmd    `cmd:"" help:"List the hunks of a file with their indexes."`
	Stage   HunkStageCmd   `cmd:"" help:"Stage one hunk of an unstaged file."`
	Unstage HunkUnstageCmd `cmd:"" help:"Unstage one hunk of a staged file."`
	Discard HunkDiscardCmd `cmd:"" help:"Drop one unstaged hunk from the working tree."`
}

type HunkListCmd struct {
	File   string `arg:"" help:"File path relative to the repository root."`
	Staged bool   `help:"List staged hunks."`
}

func (c *HunkListCmd) Run(a *app) error {
	fd, err := findFileDiff(a, c.File, c.Staged)
	if err != nil {
		return err
	}
	a.out.Hunks(fd)
	return a.out.Err()
}

// HunkTarget names one hunk of one file.
type HunkTarget struct {
	File  string `arg:"" help:"File path relative to the repository root."`
	Index int    `arg:"" help:"Hunk index as printed by 'hunk list'."`
}

func (t HunkTarget) apply(a *app, mode patch.Mode) error {
	// Unstaging reverses a hunk of the staged diff; the other modes act on
	// the working tree diff.
	fd, err := findFileDiff(a, t.File, mode == patch.Unstage)
	if err != nil {
		return err
	}
	res, err := a.applier.ApplyIndex(a.ctx, a.repo, fd, t.Index, mode)
	if err != nil {
		return err
	}
	return a.report(res)
}

type HunkStageCmd struct {
	HunkTarget `embed:""`
}

func (c *HunkStageCmd) Run(a *app) error { return c.apply(a, patch.Stage) }

type HunkUnstageCmd struct {
	HunkTarget `embed:""`
}

func (c *HunkUnstageCmd) Run(a *app) error { return c.apply(a, patch.Unstage) }

type HunkDiscardCmd struct {
	HunkTarget `embed:""`
}

func (c *HunkDiscardCmd) Run(a *app) error { return c.apply(a, patch.Discard) }

func findFileDiff(a *app, path string, staged bool) (porcelain.FileDiff, error) {
	files, err := loadDiff(a, staged)
	if err != nil {
		return porcelain.FileDiff{}, err
	}
	for _, f := range files {
		if f.Path == path || f.OldPath == path {
			return f, nil
		}
	}
	side := "unstaged"
	if staged {
		side = "staged"
	}
	return porcelain.FileDiff{}, fmt.Errorf("no %s changes in %s", side, path)
}

type CommitCmd struct {
	Message string `help:"Commit message." short:"m" required:""`
	All     bool   `help:"Stage all changes before committing." short:"a"`
}

func (c *CommitCmd) Run(a *app) error {
	if c.All {
		if res := a.runner.StageAll(a.ctx, a.repo); !res.Success() {
			return a.report(res)
		}
	}
	return a.report(a.runner.Commit(a.ctx, a.repo, c.Message))
}

type StageCmd struct {
	Paths []string `arg:"" optional:"" help:"Files to stage. All changes when omitted."`
}

func (c *StageCmd) Run(a *app) error {
	if len(c.Paths) == 0 {
		return a.report(a.runner.StageAll(a.ctx, a.repo))
	}
	for _, p := range c.Paths {
		if err := a.report(a.runner.StageFile(a.ctx, a.repo, p)); err != nil {
			return err
		}
	}
	return nil
}

type UnstageCmd struct {
	Paths []string `arg:"" optional:"" help:"Files to unstage. Everything when omitted."`
}

func (c *UnstageCmd) Run(a *app) error {
	if len(c.Paths) == 0 {
		return a.report(a.runner.UnstageAll(a.ctx, a.repo))
	}
	for _, p := range c.Paths {
		if err := a.report(a.runner.UnstageFile(a.ctx, a.repo, p)); err != nil {
			return err
		}
	}
	return nil
}

type SwitchCmd struct {
	Name string `arg:"" help:"Branch to check out."`
}

func (c *SwitchCmd) Run(a *app) error {
	return a.report(a.runner.Checkout(a.ctx, a.repo, c.Name))
}

type BranchCmd struct {
	Create BranchCreateCmd `cmd:"" help:"Create a branch without switching to it."`
	Delete BranchDeleteCmd `cmd:"" help:"Delete a local branch."`
}

type BranchCreateCmd struct {
	Name string `arg:"" help:"New branch name."`
	From string `help:"Start point. Defaults to HEAD."`
}

func (c *BranchCreateCmd) Run(a *app) error {
	return a.report(a.runner.CreateBranch(a.ctx, a.repo, c.Name, c.From))
}

type BranchDeleteCmd struct {
	Name  string `arg:"" help:"Branch to delete."`
	Force bool   `help:"Delete even if not fully merged." short:"f"`
}

func (c *BranchDeleteCmd) Run(a *app) error {
	return a.report(a.runner.DeleteBranch(a.ctx, a.repo, c.Name, c.Force))
}

type PushCmd struct{}

func (c *PushCmd) Run(a *app) error { return a.report(a.runner.Push(a.ctx, a.repo)) }

type PullCmd struct{}

func (c *PullCmd) Run(a *app) error { return a.report(a.runner.Pull(a.ctx, a.repo)) }

type FetchCmd struct{}

func (c *FetchCmd) Run(a *app) error { return a.report(a.runner.Fetch(a.ctx, a.repo)) }
