package git

import (
	"context"
	"strconv"

	"github.com/thiagokokada/gitdeck/internal/git/porcelain"
	"github.com/thiagokokada/gitdeck/internal/process"
)

// Flags accepted by Apply.
const (
	ApplyCached  = "--cached"
	ApplyReverse = "--reverse"
)

func statusArgs() []string {
	return []string{"status", "--porcelain=v2", "--branch"}
}

func logArgs(n, skip int) []string {
	args := []string{"log", "--format=" + porcelain.LogFormat}
	if n > 0 {
		args = append(args, "-"+strconv.Itoa(n))
	}
	if skip > 0 {
		args = append(args, "--skip="+strconv.Itoa(skip))
	}
	return args
}

func branchListArgs(remote bool) []string {
	args := []string{"branch", "--list", "--format=" + porcelain.BranchFormat}
	if remote {
		args = append(args, "--remotes")
	}
	return args
}

// showArgs diffs merges against their first parent; the default combined
// diff has no "diff --git" headers.
func showArgs(hash string) []string {
	return []string{"show", "-m", "--first-parent", hash, "--format="}
}

func showCommitInfoArgs(hash string) []string {
	return []string{"show", hash, "--no-patch", "--format=" + porcelain.CommitInfoFormat}
}

func (r *Runner) Status(ctx context.Context, repo string) Result {
	return r.Run(ctx, repo, statusArgs()...)
}

func (r *Runner) StatusAsync(ctx context.Context, repo string) *process.Future[Result] {
	return r.Start(ctx, repo, statusArgs()...)
}

// Log lists up to n commits reachable from HEAD after skipping skip of them.
// n <= 0 lists everything.
func (r *Runner) Log(ctx context.Context, repo string, n, skip int) Result {
	return r.Run(ctx, repo, logArgs(n, skip)...)
}

func (r *Runner) LogAsync(ctx context.Context, repo string, n, skip int) *process.Future[Result] {
	return r.Start(ctx, repo, logArgs(n, skip)...)
}

// Diff returns the unstaged changes of the worktree.
func (r *Runner) Diff(ctx context.Context, repo string) Result {
	return r.Run(ctx, repo, "diff")
}

func (r *Runner) DiffAsync(ctx context.Context, repo string) *process.Future[Result] {
	return r.Start(ctx, repo, "diff")
}

func (r *Runner) DiffStaged(ctx context.Context, repo string) Result {
	return r.Run(ctx, repo, "diff", "--staged")
}

func (r *Runner) DiffStagedAsync(ctx context.Context, repo string) *process.Future[Result] {
	return r.Start(ctx, repo, "diff", "--staged")
}

func (r *Runner) BranchList(ctx context.Context, repo string) Result {
	return r.Run(ctx, repo, branchListArgs(false)...)
}

func (r *Runner) BranchListAsync(ctx context.Context, repo string) *process.Future[Result] {
	return r.Start(ctx, repo, branchListArgs(false)...)
}

func (r *Runner) RemoteBranchList(ctx context.Context, repo string) Result {
	return r.Run(ctx, repo, branchListArgs(true)...)
}

func (r *Runner) RemoteBranchListAsync(ctx context.Context, repo string) *process.Future[Result] {
	return r.Start(ctx, repo, branchListArgs(true)...)
}

func (r *Runner) RevParseHead(ctx context.Context, repo string) Result {
	return r.Run(ctx, repo, "rev-parse", "HEAD")
}

func (r *Runner) RevParseHeadAsync(ctx context.Context, repo string) *process.Future[Result] {
	return r.Start(ctx, repo, "rev-parse", "HEAD")
}

// CurrentBranch prints the checked out branch name, or "HEAD" when detached.
func (r *Runner) CurrentBranch(ctx context.Context, repo string) Result {
	return r.Run(ctx, repo, "rev-parse", "--abbrev-ref", "HEAD")
}

func (r *Runner) CurrentBranchAsync(ctx context.Context, repo string) *process.Future[Result] {
	return r.Start(ctx, repo, "rev-parse", "--abbrev-ref", "HEAD")
}

func (r *Runner) Commit(ctx context.Context, repo, message string) Result {
	return r.Run(ctx, repo, "commit", "-m", message)
}

func (r *Runner) CommitAsync(ctx context.Context, repo, message string) *process.Future[Result] {
	return r.Start(ctx, repo, "commit", "-m", message)
}

func (r *Runner) StageFile(ctx context.Context, repo, path string) Result {
	return r.Run(ctx, repo, "add", "--", path)
}

func (r *Runner) StageFileAsync(ctx context.Context, repo, path string) *process.Future[Result] {
	return r.Start(ctx, repo, "add", "--", path)
}

func (r *Runner) UnstageFile(ctx context.Context, repo, path string) Result {
	return r.Run(ctx, repo, "restore", "--staged", "--", path)
}

func (r *Runner) UnstageFileAsync(ctx context.Context, repo, path string) *process.Future[Result] {
	return r.Start(ctx, repo, "restore", "--staged", "--", path)
}

func (r *Runner) StageAll(ctx context.Context, repo string) Result {
	return r.Run(ctx, repo, "add", "-A")
}

func (r *Runner) StageAllAsync(ctx context.Context, repo string) *process.Future[Result] {
	return r.Start(ctx, repo, "add", "-A")
}

func (r *Runner) UnstageAll(ctx context.Context, repo string) Result {
	return r.Run(ctx, repo, "restore", "--staged", ".")
}

func (r *Runner) UnstageAllAsync(ctx context.Context, repo string) *process.Future[Result] {
	return r.Start(ctx, repo, "restore", "--staged", ".")
}

// CreateBranch creates name at from and switches to it.
func (r *Runner) CreateBranch(ctx context.Context, repo, name, from string) Result {
	return r.Run(ctx, repo, createBranchArgs(name, from)...)
}

func (r *Runner) CreateBranchAsync(ctx context.Context, repo, name, from string) *process.Future[Result] {
	return r.Start(ctx, repo, createBranchArgs(name, from)...)
}

func createBranchArgs(name, from string) []string {
	args := []string{"switch", "-c", name}
	if from != "" {
		args = append(args, from)
	}
	return args
}

func (r *Runner) DeleteBranch(ctx context.Context, repo, name string, force bool) Result {
	return r.Run(ctx, repo, deleteBranchArgs(name, force)...)
}

func (r *Runner) DeleteBranchAsync(ctx context.Context, repo, name string, force bool) *process.Future[Result] {
	return r.Start(ctx, repo, deleteBranchArgs(name, force)...)
}

func deleteBranchArgs(name string, force bool) []string {
	flag := "-d"
	if force {
		flag = "-D"
	}
	return []string{"branch", flag, name}
}

func (r *Runner) Checkout(ctx context.Context, repo, name string) Result {
	return r.Run(ctx, repo, "switch", name)
}

func (r *Runner) CheckoutAsync(ctx context.Context, repo, name string) *process.Future[Result] {
	return r.Start(ctx, repo, "switch", name)
}

func (r *Runner) Push(ctx context.Context, repo string) Result {
	return r.Run(ctx, repo, "push")
}

func (r *Runner) PushAsync(ctx context.Context, repo string) *process.Future[Result] {
	return r.Start(ctx, repo, "push")
}

func (r *Runner) Pull(ctx context.Context, repo string) Result {
	return r.Run(ctx, repo, "pull")
}

func (r *Runner) PullAsync(ctx context.Context, repo string) *process.Future[Result] {
	return r.Start(ctx, repo, "pull")
}

func (r *Runner) Fetch(ctx context.Context, repo string) Result {
	return r.Run(ctx, repo, "fetch")
}

func (r *Runner) FetchAsync(ctx context.Context, repo string) *process.Future[Result] {
	return r.Start(ctx, repo, "fetch")
}

// Show returns the diff a commit introduces, without its header.
func (r *Runner) Show(ctx context.Context, repo, hash string) Result {
	return r.Run(ctx, repo, showArgs(hash)...)
}

func (r *Runner) ShowAsync(ctx context.Context, repo, hash string) *process.Future[Result] {
	return r.Start(ctx, repo, showArgs(hash)...)
}

// ShowCommitInfo returns commit metadata in porcelain.CommitInfoFormat.
func (r *Runner) ShowCommitInfo(ctx context.Context, repo, hash string) Result {
	return r.Run(ctx, repo, showCommitInfoArgs(hash)...)
}

func (r *Runner) ShowCommitInfoAsync(ctx context.Context, repo, hash string) *process.Future[Result] {
	return r.Start(ctx, repo, showCommitInfoArgs(hash)...)
}

// Apply runs `git apply` on patchFile with the given flags, typically
// ApplyCached and ApplyReverse.
func (r *Runner) Apply(ctx context.Context, repo, patchFile string, flags ...string) Result {
	return r.Run(ctx, repo, applyArgs(patchFile, flags)...)
}

func (r *Runner) ApplyAsync(ctx context.Context, repo, patchFile string, flags ...string) *process.Future[Result] {
	return r.Start(ctx, repo, applyArgs(patchFile, flags)...)
}

func applyArgs(patchFile string, flags []string) []string {
	args := make([]string, 0, len(flags)+2)
	args = append(args, "apply")
	args = append(args, flags...)
	return append(args, patchFile)
}
