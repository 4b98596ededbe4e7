// Package refresh keeps a repository Snapshot current by running git queries
// concurrently and merging their results as they complete.
package refresh

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/thiagokokada/gitdeck/internal/git"
	"github.com/thiagokokada/gitdeck/internal/process"
)

const (
	DefaultPageSize     = 100
	DefaultQueryTimeout = 30 * time.Second
)

type slot struct {
	future  *process.Future[git.Result]
	cancel  context.CancelFunc
	state   State
	started time.Time
}

// Coordinator refreshes the snapshot of a single repository.
//
// Request may be called from any goroutine. Every other method must be called
// from the goroutine that owns the coordinator, usually a UI or ticker loop.
type Coordinator struct {
	queries  Queries
	repo     string
	pageSize int
	timeout  time.Duration

	ctx    context.Context
	cancel context.CancelFunc

	requested  atomic.Bool
	refreshing bool
	snap       Snapshot
	slots      [numQueries]slot
}

type Option func(*Coordinator)

// WithPageSize sets how many commits the log query requests.
func WithPageSize(n int) Option {
	return func(c *Coordinator) {
		if n > 0 {
			c.pageSize = n
		}
	}
}

// WithQueryTimeout bounds each query. A query still running at the deadline
// is killed and its slot marked Failed. Zero disables the bound.
func WithQueryTimeout(d time.Duration) Option {
	return func(c *Coordinator) { c.timeout = d }
}

func NewCoordinator(queries Queries, repo string, opts ...Option) *Coordinator {
	ctx, cancel := context.WithCancel(context.Background())
	c := &Coordinator{
		queries:  queries,
		repo:     repo,
		pageSize: DefaultPageSize,
		timeout:  DefaultQueryTimeout,
		ctx:      ctx,
		cancel:   cancel,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Coordinator) Repo() string {
	return c.repo
}

// Request asks for a refresh on the next Tick. Requests made while a refresh
// is in flight are dropped; re-request once Refreshing reports false.
func (c *Coordinator) Request() {
	c.requested.Store(true)
}

func (c *Coordinator) Refreshing() bool {
	return c.refreshing
}

// Snapshot returns the live snapshot. It changes on Tick.
func (c *Coordinator) Snapshot() *Snapshot {
	return &c.snap
}

func (c *Coordinator) QueryState(q Query) State {
	if q < 0 || q >= numQueries {
		return Idle
	}
	return c.slots[q].state
}

// Tick advances the state machine without blocking. It reports whether a
// refresh cycle finished during this call.
func (c *Coordinator) Tick() bool {
	if !c.refreshing {
		if c.requested.Load() {
			c.launch()
		}
		return false
	}

	// Requests made during a refresh are dropped.
	c.requested.Store(false)
	for _, q := range AllQueries {
		c.poll(q)
	}
	for _, s := range c.slots {
		if s.future != nil {
			return false
		}
	}
	c.refreshing = false
	slog.Debug("refresh finished", slog.String("repo", c.repo))
	return true
}

func (c *Coordinator) launch() {
	c.requested.Store(false)
	if c.repo == "" {
		return
	}
	if c.ctx.Err() != nil {
		return
	}
	c.refreshing = true
	slog.Debug("refresh started", slog.String("repo", c.repo))
	for _, q := range AllQueries {
		var (
			ctx    context.Context
			cancel context.CancelFunc
		)
		if c.timeout > 0 {
			ctx, cancel = context.WithTimeout(c.ctx, c.timeout)
		} else {
			ctx, cancel = context.WithCancel(c.ctx)
		}
		c.slots[q] = slot{
			future:  q.launch(ctx, c.queries, c.repo, c.pageSize),
			cancel:  cancel,
			state:   Pending,
			started: time.Now(),
		}
	}
}

func (c *Coordinator) poll(q Query) {
	s := &c.slots[q]
	if s.future == nil {
		return
	}
	res, ok := s.future.Poll()
	if !ok {
		return
	}
	s.cancel()
	s.future, s.cancel = nil, nil

	if !res.Success() {
		s.state = Failed
		slog.Warn("refresh query failed",
			slog.String("query", q.String()),
			slog.String("repo", c.repo),
			slog.Any("error", res.Err()),
		)
		return
	}
	u, err := q.update(res, c.pageSize)
	if err != nil {
		s.state = Failed
		slog.Warn("refresh query unparsable",
			slog.String("query", q.String()),
			slog.Any("error", err),
		)
		return
	}
	u.Apply(&c.snap)
	s.state = Ready
	slog.Debug("refresh query merged",
		slog.String("query", q.String()),
		slog.Duration("elapsed", time.Since(s.started)),
	)
}

// Close cancels in-flight queries. Later requests are ignored.
func (c *Coordinator) Close() {
	c.cancel()
}
