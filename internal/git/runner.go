// Package git runs the git executable against a repository and exposes the
// queries and mutations the rest of gitdeck needs.
package git

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/thiagokokada/gitdeck/internal/process"
)

const defaultBinary = "git"

// CommandRecord describes one finished git invocation.
type CommandRecord struct {
	ID       string
	Command  string
	Stdout   string
	Stderr   string
	Success  bool
	Duration time.Duration
}

// Observer is notified after every command a Runner executes. Calls are
// serialized, including those made for async commands.
type Observer interface {
	CommandExecuted(CommandRecord)
}

type ObserverFunc func(CommandRecord)

func (f ObserverFunc) CommandExecuted(rec CommandRecord) { f(rec) }

// Runner builds and executes git command lines.
type Runner struct {
	exec    *process.Executor
	bin     string
	timeout time.Duration

	mu       sync.Mutex
	observer Observer

	versionOnce sync.Once
	version     versionInfo
}

type Option func(*Runner)

func WithObserver(o Observer) Option {
	return func(r *Runner) { r.observer = o }
}

// WithBinary overrides the git executable, "git" by default.
func WithBinary(bin string) Option {
	return func(r *Runner) {
		if bin != "" {
			r.bin = bin
		}
	}
}

// WithTimeout bounds every command the Runner executes. Zero means no bound
// beyond the caller's context.
func WithTimeout(d time.Duration) Option {
	return func(r *Runner) { r.timeout = d }
}

// NewRunner returns a Runner spawning processes through exec. A nil exec
// runs commands without a concurrency bound.
func NewRunner(exec *process.Executor, opts ...Option) *Runner {
	r := &Runner{exec: exec, bin: defaultBinary}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// SetObserver replaces the observer. A nil observer disables notifications.
func (r *Runner) SetObserver(o Observer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.observer = o
}

// Run executes git with args. A non-empty repoPath is passed as -C.
func (r *Runner) Run(ctx context.Context, repoPath string, args ...string) Result {
	argv := r.argv(repoPath, args)
	if ctx == nil {
		ctx = context.Background()
	}
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}
	start := time.Now()
	res := Result{Result: r.exec.Run(ctx, "", argv), Args: argv}
	elapsed := time.Since(start)
	if !res.Success() {
		slog.Debug("git command failed",
			slog.String("command", res.Command()),
			slog.Int("exit", res.ExitCode),
			slog.String("stderr", res.TrimmedStderr()),
		)
	}
	r.notify(res, elapsed)
	return res
}

// Start runs the command like Run on a background goroutine.
func (r *Runner) Start(ctx context.Context, repoPath string, args ...string) *process.Future[Result] {
	return process.Go(func() Result {
		return r.Run(ctx, repoPath, args...)
	})
}

func (r *Runner) argv(repoPath string, args []string) []string {
	argv := make([]string, 0, len(args)+3)
	argv = append(argv, r.bin)
	if repoPath != "" {
		argv = append(argv, "-C", repoPath)
	}
	return append(argv, args...)
}

func (r *Runner) notify(res Result, elapsed time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.observer == nil {
		return
	}
	r.observer.CommandExecuted(CommandRecord{
		ID:       uuid.NewString(),
		Command:  res.Command(),
		Stdout:   res.Stdout,
		Stderr:   res.Stderr,
		Success:  res.Success(),
		Duration: elapsed,
	})
}
