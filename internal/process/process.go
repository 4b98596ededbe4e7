// Package process runs child processes and captures their complete output.
package process

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"time"

	"golang.org/x/sync/semaphore"
)

// DefaultMaxConcurrent bounds simultaneously running children. It stays above
// the number of queries a repository refresh launches at once.
const DefaultMaxConcurrent = 8

// waitDelay bounds how long Wait keeps draining pipes after the child was
// killed, in case a grandchild inherited them.
const waitDelay = 2 * time.Second

// Result is the outcome of one process execution.
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

func (r Result) Success() bool {
	return r.ExitCode == 0
}

func failure(format string, args ...any) Result {
	return Result{ExitCode: -1, Stderr: fmt.Sprintf(format, args...)}
}

// Executor spawns processes. A nil *Executor runs without a concurrency bound.
type Executor struct {
	sem *semaphore.Weighted
}

func NewExecutor(maxConcurrent int) *Executor {
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}
	return &Executor{sem: semaphore.NewWeighted(int64(maxConcurrent))}
}

// Run executes argv in dir and waits for it to exit. An empty dir inherits
// the caller's working directory and argv[0] is resolved through PATH.
//
// Run never returns partial output for a process that could not be started
// or that was killed because ctx ended; those results carry exit code -1 and a
// stderr message naming the cause.
func (e *Executor) Run(ctx context.Context, dir string, argv []string) Result {
	if len(argv) == 0 {
		return failure("process: empty argument vector")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if err := e.acquire(ctx); err != nil {
		return failure("%s: waiting for process slot: %v", argv[0], err)
	}
	defer e.release()

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Dir = dir
	cmd.WaitDelay = waitDelay
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	if err == nil {
		return Result{Stdout: stdout.String(), Stderr: stderr.String()}
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		slog.Debug("process killed",
			slog.String("command", argv[0]),
			slog.Any("error", ctxErr),
		)
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return failure("%s: %v: %s", argv[0], ctxErr, msg)
		}
		return failure("%s: %v", argv[0], ctxErr)
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return Result{
			Stdout:   stdout.String(),
			Stderr:   stderr.String(),
			ExitCode: exitErr.ExitCode(),
		}
	}
	return failure("%s: %v", argv[0], err)
}

// Start runs argv like Run on a background goroutine. There is no separate
// cancel handle: cancel ctx to kill the child.
func (e *Executor) Start(ctx context.Context, dir string, argv []string) *Future[Result] {
	return Go(func() Result {
		return e.Run(ctx, dir, argv)
	})
}

func (e *Executor) acquire(ctx context.Context) error {
	if e == nil || e.sem == nil {
		return nil
	}
	return e.sem.Acquire(ctx, 1)
}

func (e *Executor) release() {
	if e == nil || e.sem == nil {
		return
	}
	e.sem.Release(1)
}
