package refresh

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/thiagokokada/gitdeck/internal/git"
	"github.com/thiagokokada/gitdeck/internal/git/porcelain"
)

// Load builds a complete snapshot in one blocking call, including the staged
// diff. Queries run concurrently; fields of failed queries stay empty and
// their errors are joined into the returned error.
func Load(ctx context.Context, runner *git.Runner, repo string, pageSize int) (*Snapshot, error) {
	if repo == "" {
		return nil, errors.New("repository root not set")
	}
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}

	type job struct {
		name string
		run  func(context.Context) (Update, error)
	}
	fromQuery := func(q Query, run func(context.Context) git.Result) job {
		return job{name: q.String(), run: func(ctx context.Context) (Update, error) {
			res := run(ctx)
			if err := res.Err(); err != nil {
				return nil, err
			}
			return q.update(res, pageSize)
		}}
	}
	jobs := []job{
		fromQuery(QueryStatus, func(ctx context.Context) git.Result { return runner.Status(ctx, repo) }),
		fromQuery(QueryLog, func(ctx context.Context) git.Result { return runner.Log(ctx, repo, pageSize, 0) }),
		fromQuery(QueryDiff, func(ctx context.Context) git.Result { return runner.Diff(ctx, repo) }),
		fromQuery(QueryBranches, func(ctx context.Context) git.Result { return runner.BranchList(ctx, repo) }),
		fromQuery(QueryHead, func(ctx context.Context) git.Result { return runner.RevParseHead(ctx, repo) }),
		{name: "staged diff", run: func(ctx context.Context) (Update, error) {
			res := runner.DiffStaged(ctx, repo)
			if err := res.Err(); err != nil {
				return nil, err
			}
			return DiffUpdate{Files: porcelain.ParseDiff(res.Stdout), Staged: true}, nil
		}},
	}

	updates := make([]Update, len(jobs))
	errs := make([]error, len(jobs))
	var g errgroup.Group
	for i, j := range jobs {
		g.Go(func() error {
			u, err := j.run(ctx)
			if err != nil {
				slog.Debug("load query failed", slog.String("query", j.name), slog.Any("error", err))
				errs[i] = fmt.Errorf("%s: %w", j.name, err)
				return nil
			}
			updates[i] = u
			return nil
		})
	}
	_ = g.Wait()

	snap := &Snapshot{}
	for _, u := range updates {
		if u != nil {
			u.Apply(snap)
		}
	}
	return snap, errors.Join(errs...)
}
