package process

import (
	"context"
	"os/exec"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func requireShell(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
}

func TestRun_EmptyArgv(t *testing.T) {
	t.Parallel()

	res := NewExecutor(1).Run(context.Background(), "", nil)
	if res.Success() {
		t.Fatal("expected failure")
	}
	if res.ExitCode != -1 {
		t.Fatalf("exit code = %d, want -1", res.ExitCode)
	}
	if !strings.Contains(res.Stderr, "empty argument vector") {
		t.Fatalf("unexpected stderr: %q", res.Stderr)
	}
}

func TestRun_MissingExecutable(t *testing.T) {
	t.Parallel()

	res := NewExecutor(1).Run(context.Background(), "", []string{"gitdeck-definitely-missing-binary"})
	if res.ExitCode != -1 {
		t.Fatalf("exit code = %d, want -1", res.ExitCode)
	}
	if res.Stdout != "" {
		t.Fatalf("expected no output, got %q", res.Stdout)
	}
	if !strings.Contains(res.Stderr, "gitdeck-definitely-missing-binary") {
		t.Fatalf("stderr should name the command: %q", res.Stderr)
	}
}

func TestRun_CapturesOutputAndExitCode(t *testing.T) {
	t.Parallel()
	requireShell(t)

	tests := []struct {
		name       string
		script     string
		wantStdout string
		wantStderr string
		wantCode   int
	}{
		{name: "success", script: "printf 'out\\n'", wantStdout: "out\n"},
		{name: "stderr", script: "printf 'err' >&2", wantStderr: "err"},
		{name: "exit_code", script: "printf 'x'; printf 'bad' >&2; exit 3", wantStdout: "x", wantStderr: "bad", wantCode: 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			res := NewExecutor(2).Run(context.Background(), "", []string{"sh", "-c", tt.script})
			if res.Stdout != tt.wantStdout || res.Stderr != tt.wantStderr || res.ExitCode != tt.wantCode {
				t.Fatalf("Run() = %+v, want stdout=%q stderr=%q code=%d", res, tt.wantStdout, tt.wantStderr, tt.wantCode)
			}
			if res.Success() != (tt.wantCode == 0) {
				t.Fatalf("Success() = %v for code %d", res.Success(), res.ExitCode)
			}
		})
	}
}

func TestRun_UsesWorkingDirectory(t *testing.T) {
	t.Parallel()
	requireShell(t)

	dir := t.TempDir()
	res := NewExecutor(1).Run(context.Background(), dir, []string{"sh", "-c", "pwd -P"})
	if !res.Success() {
		t.Fatalf("Run() failed: %+v", res)
	}
	want, err := filepath.EvalSymlinks(dir)
	if err != nil {
		t.Fatalf("EvalSymlinks: %v", err)
	}
	if got := strings.TrimSpace(res.Stdout); got != want {
		t.Fatalf("pwd = %q, want %q", got, want)
	}
}

func TestRun_DeadlineKillsProcess(t *testing.T) {
	t.Parallel()
	requireShell(t)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	start := time.Now()
	res := NewExecutor(1).Run(ctx, "", []string{"sh", "-c", "sleep 10"})
	if time.Since(start) > 5*time.Second {
		t.Fatal("process was not killed at the deadline")
	}
	if res.ExitCode != -1 {
		t.Fatalf("exit code = %d, want -1", res.ExitCode)
	}
	if !strings.Contains(res.Stderr, "deadline exceeded") {
		t.Fatalf("stderr should mention the deadline: %q", res.Stderr)
	}
}

func TestStart_PollThenWait(t *testing.T) {
	t.Parallel()
	requireShell(t)

	f := NewExecutor(1).Start(context.Background(), "", []string{"sh", "-c", "printf done"})
	res := f.Wait()
	if res.Stdout != "done" {
		t.Fatalf("stdout = %q, want %q", res.Stdout, "done")
	}
	polled, ok := f.Poll()
	if !ok || polled != res {
		t.Fatalf("Poll() = %+v, %v after Wait", polled, ok)
	}
}

func TestExecutor_LimitsConcurrency(t *testing.T) {
	t.Parallel()
	requireShell(t)

	const limit = 2
	e := NewExecutor(limit)
	var running, maxSeen atomic.Int32
	futures := make([]*Future[Result], 0, 6)
	for range 6 {
		futures = append(futures, Go(func() Result {
			if err := e.acquire(context.Background()); err != nil {
				return failure("%v", err)
			}
			defer e.release()
			cur := running.Add(1)
			for {
				old := maxSeen.Load()
				if cur <= old || maxSeen.CompareAndSwap(old, cur) {
					break
				}
			}
			time.Sleep(10 * time.Millisecond)
			running.Add(-1)
			return Result{}
		}))
	}
	for _, f := range futures {
		f.Wait()
	}
	if m := maxSeen.Load(); m > limit {
		t.Fatalf("max concurrent = %d, want <= %d", m, limit)
	}
}

func TestExecutor_NilRunsUnbounded(t *testing.T) {
	t.Parallel()
	requireShell(t)

	var e *Executor
	res := e.Run(context.Background(), "", []string{"sh", "-c", "exit 0"})
	if !res.Success() {
		t.Fatalf("Run() = %+v", res)
	}
}
