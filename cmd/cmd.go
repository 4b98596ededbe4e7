package cmd

import (
	"context"
	"errors"
	"io"
	"os"
	"os/signal"

	"github.com/alecthomas/kong"

	"github.com/thiagokokada/gitdeck/internal/buildinfo"
)

// ErrCommandFailed is returned after a failed git command was already
// reported to the user.
var ErrCommandFailed = errors.New("git command failed")

// CLI is the gitdeck command line.
type CLI struct {
	Version kong.VersionFlag `help:"Print version information and exit."`
	Config  string           `help:"Path to a YAML config file." type:"path" placeholder:"FILE"`
	Verbose bool             `help:"Enable verbose logging." short:"v"`
	Repo    string           `help:"Repository path." short:"C" default:"." type:"path"`
	Color   string           `help:"Color output: ${enum}." enum:"auto,always,never" default:"auto"`
	Theme   string           `help:"Color theme: auto, light or dark. Overrides the config file." placeholder:"THEME"`

	Status   StatusCmd   `cmd:"" help:"Show branch and working tree status."`
	Log      LogCmd      `cmd:"" help:"Show commit history."`
	Branches BranchesCmd `cmd:"" help:"List branches."`
	Diff     DiffCmd     `cmd:"" help:"Show unstaged or staged changes."`
	Show     ShowCmd     `cmd:"" help:"Show commit metadata and diff."`
	Hunk     HunkCmd     `cmd:"" help:"List, stage, unstage or discard single hunks."`
	Commit   CommitCmd   `cmd:"" help:"Record staged changes."`
	Stage    StageCmd    `cmd:"" help:"Stage whole files."`
	Unstage  UnstageCmd  `cmd:"" help:"Unstage whole files."`
	Switch   SwitchCmd   `cmd:"" help:"Switch to a branch."`
	Branch   BranchCmd   `cmd:"" help:"Create or delete branches."`
	Push     PushCmd     `cmd:"" help:"Push the current branch."`
	Pull     PullCmd     `cmd:"" help:"Pull into the current branch."`
	Fetch    FetchCmd    `cmd:"" help:"Fetch from the default remote."`
	Watch    WatchCmd    `cmd:"" help:"Refresh continuously and print a summary after each cycle."`
}

func Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return run(ctx, os.Args[1:], os.Stdout, os.Stderr)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	var cli CLI
	exited := false
	parser, err := kong.New(&cli,
		kong.Name("gitdeck"),
		kong.Description("A terminal front end for everyday git."),
		kong.UsageOnError(),
		kong.Writers(stdout, stderr),
		kong.Vars{"version": buildinfo.String()},
		kong.Exit(func(int) { exited = true }),
	)
	if err != nil {
		return err
	}
	kctx, err := parser.Parse(args)
	if exited {
		// --help and --version print and stop.
		return nil
	}
	if err != nil {
		return err
	}

	a, err := newApp(ctx, &cli, stdout, stderr)
	if err != nil {
		return err
	}
	defer a.close()
	return kctx.Run(a)
}
