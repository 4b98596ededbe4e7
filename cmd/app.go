package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/thiagokokada/gitdeck/internal/config"
	"github.com/thiagokokada/gitdeck/internal/git"
	"github.com/thiagokokada/gitdeck/internal/git/patch"
	"github.com/thiagokokada/gitdeck/internal/logging"
	"github.com/thiagokokada/gitdeck/internal/process"
	"github.com/thiagokokada/gitdeck/internal/render"
	"github.com/thiagokokada/gitdeck/internal/watch"
)

// app holds what every command needs. It is bound into kong's Run calls.
type app struct {
	ctx     context.Context
	cfg     *config.Config
	runner  *git.Runner
	applier *patch.Applier
	repo    string
	out     *render.Printer
	stdout  io.Writer
	stderr  io.Writer
	closers []func()

	loader *git.CommitDetailsLoader
}

func newApp(ctx context.Context, cli *CLI, stdout, stderr io.Writer) (*app, error) {
	cfg, err := loadConfig(cli.Config)
	if err != nil {
		return nil, err
	}
	slog.SetDefault(logging.New(cfg.Logging, cli.Verbose, stderr))

	runner := git.NewRunner(
		process.NewExecutor(cfg.Git.MaxConcurrent),
		git.WithBinary(cfg.Git.Binary),
		git.WithTimeout(cfg.Git.CommandTimeout),
		git.WithObserver(git.ObserverFunc(logCommand)),
	)
	if err := runner.CheckVersion(ctx); err != nil {
		return nil, err
	}
	repo, err := resolveRepo(ctx, runner, cli.Repo)
	if err != nil {
		return nil, err
	}
	slog.Debug("repository opened", slog.String("repo", repo))

	themeName := cfg.UI.Theme
	if cli.Theme != "" {
		themeName = cli.Theme
	}
	theme := render.ResolveTheme(render.ParseTheme(themeName))
	return &app{
		ctx:     ctx,
		cfg:     cfg,
		runner:  runner,
		applier: patch.NewApplier(runner, cfg.Git.PatchTempDir),
		repo:    repo,
		out:     render.NewPrinter(stdout, theme, colorMode(cli.Color)),
		stdout:  stdout,
		stderr:  stderr,
	}, nil
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Load()
	}
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return config.LoadFrom(path)
}

func logCommand(rec git.CommandRecord) {
	slog.Debug("git command",
		slog.String("id", rec.ID),
		slog.String("command", rec.Command),
		slog.Bool("success", rec.Success),
		slog.Duration("duration", rec.Duration),
	)
}

// resolveRepo returns the worktree root containing path. go-git handles the
// common layouts; anything it cannot open is left to git itself.
func resolveRepo(ctx context.Context, runner *git.Runner, path string) (string, error) {
	root, err := watch.Discover(path)
	if err == nil {
		return root, nil
	}
	slog.Debug("discover repository", slog.String("path", path), slog.Any("error", err))
	res := runner.Run(ctx, path, "rev-parse", "--show-toplevel")
	if cmdErr := res.Err(); cmdErr != nil {
		return "", fmt.Errorf("open repository: %w", errors.Join(err, cmdErr))
	}
	root = res.TrimmedStdout()
	if root == "" {
		return "", errors.New("open repository: git rev-parse returned empty root")
	}
	return root, nil
}

func colorMode(s string) render.ColorMode {
	switch s {
	case "always":
		return render.ColorAlways
	case "never":
		return render.ColorNever
	default:
		return render.ColorAuto
	}
}

// details returns the commit details loader shared by every command of the
// process, creating it on first use.
func (a *app) details() (*git.CommitDetailsLoader, error) {
	if a.loader != nil {
		return a.loader, nil
	}
	l, err := git.NewCommitDetailsLoader(a.runner, a.repo, a.cfg.Git.DetailsCacheMB<<20)
	if err != nil {
		return nil, err
	}
	a.loader = l
	a.onClose(l.Close)
	return l, nil
}

func (a *app) onClose(fn func()) {
	a.closers = append(a.closers, fn)
}

func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

// report prints the outcome of a mutating command.
func (a *app) report(res git.Result) error {
	if !res.Success() {
		a.out.Failure(res)
		if err := a.out.Err(); err != nil {
			return err
		}
		return ErrCommandFailed
	}
	for _, s := range []string{res.TrimmedStdout(), res.TrimmedStderr()} {
		if s != "" {
			fmt.Fprintln(a.stdout, s)
		}
	}
	return nil
}
