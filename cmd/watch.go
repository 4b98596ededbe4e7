package cmd

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/thiagokokada/gitdeck/internal/git"
	"github.com/thiagokokada/gitdeck/internal/refresh"
	"github.com/thiagokokada/gitdeck/internal/watch"
)

type WatchCmd struct {
	Cycles   int           `help:"Stop after this many refresh cycles. Zero runs until interrupted."`
	Interval time.Duration `help:"Also refresh on this period. Zero disables periodic refresh."`
	Commands bool          `help:"Print the git commands of each cycle." default:"true" negatable:""`
}

// commandLog collects records from the runner between cycles.
type commandLog struct {
	mu      sync.Mutex
	records []git.CommandRecord
}

func (l *commandLog) CommandExecuted(rec git.CommandRecord) {
	logCommand(rec)
	l.mu.Lock()
	l.records = append(l.records, rec)
	l.mu.Unlock()
}

func (l *commandLog) drain() []git.CommandRecord {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := l.records
	l.records = nil
	return out
}

func (c *WatchCmd) Run(a *app) error {
	cmds := &commandLog{}
	a.runner.SetObserver(cmds)

	coord := refresh.NewCoordinator(a.runner, a.repo,
		refresh.WithPageSize(a.cfg.Refresh.PageSize),
		refresh.WithQueryTimeout(a.cfg.Refresh.QueryTimeout),
	)
	defer coord.Close()

	if a.cfg.Watch.Enabled {
		w := watch.New(a.repo, coord, a.cfg.Watch.Debounce)
		if err := w.Start(); err != nil {
			slog.Warn("file watching disabled", slog.String("repo", a.repo), slog.Any("error", err))
		} else {
			defer func() {
				if err := w.Close(); err != nil {
					slog.Debug("close watcher", slog.Any("error", err))
				}
			}()
		}
	}

	var periodic <-chan time.Time
	if c.Interval > 0 {
		t := time.NewTicker(c.Interval)
		defer t.Stop()
		periodic = t.C
	}
	ticker := time.NewTicker(a.cfg.Refresh.TickInterval)
	defer ticker.Stop()

	coord.Request()
	cycles := 0
	for {
		select {
		case <-a.ctx.Done():
			return nil
		case <-periodic:
			coord.Request()
		case <-ticker.C:
			if !coord.Tick() {
				continue
			}
			cycles++
			head := c.headDetails(a, coord.Snapshot().HeadHash)
			c.printCycle(a, cycles, coord, head, cmds.drain())
			if err := a.out.Err(); err != nil {
				return err
			}
			if c.Cycles > 0 && cycles >= c.Cycles {
				return nil
			}
		}
	}
}

// headDetails loads the HEAD commit. The loader caches by hash, so git only
// runs again once HEAD moves.
func (c *WatchCmd) headDetails(a *app, hash string) *git.CommitDetails {
	if !git.ValidHash(hash) {
		return nil
	}
	loader, err := a.details()
	if err != nil {
		slog.Warn("commit details disabled", slog.Any("error", err))
		return nil
	}
	d, err := loader.Load(a.ctx, hash)
	if err != nil {
		slog.Warn("load HEAD commit", slog.String("hash", hash), slog.Any("error", err))
		return nil
	}
	return d
}

func (c *WatchCmd) printCycle(a *app, n int, coord *refresh.Coordinator, head *git.CommitDetails, records []git.CommandRecord) {
	if n > 1 {
		fmt.Fprintln(a.stdout)
	}
	fmt.Fprintf(a.stdout, "-- refresh %d at %s\n", n, time.Now().Format(time.TimeOnly))
	for _, q := range refresh.AllQueries {
		if st := coord.QueryState(q); st == refresh.Failed {
			fmt.Fprintf(a.stdout, "%s query failed; showing previous data\n", q)
		}
	}
	a.out.Status(coord.Snapshot())
	if head != nil {
		fmt.Fprint(a.stdout, "Last commit: ")
		a.out.CommitSummary(head)
	}
	if c.Commands {
		for _, rec := range records {
			a.out.Command(rec)
		}
	}
}
