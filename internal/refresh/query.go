package refresh

import (
	"context"
	"fmt"
	"strings"

	"github.com/thiagokokada/gitdeck/internal/git"
	"github.com/thiagokokada/gitdeck/internal/git/porcelain"
	"github.com/thiagokokada/gitdeck/internal/process"
)

// Queries launches the git commands a refresh needs. *git.Runner implements
// it.
type Queries interface {
	StatusAsync(ctx context.Context, repo string) *process.Future[git.Result]
	LogAsync(ctx context.Context, repo string, n, skip int) *process.Future[git.Result]
	DiffAsync(ctx context.Context, repo string) *process.Future[git.Result]
	BranchListAsync(ctx context.Context, repo string) *process.Future[git.Result]
	RevParseHeadAsync(ctx context.Context, repo string) *process.Future[git.Result]
}

var _ Queries = (*git.Runner)(nil)

// Query identifies one of the commands launched per refresh.
type Query int

const (
	QueryStatus Query = iota
	QueryLog
	QueryDiff
	QueryBranches
	QueryHead

	numQueries
)

// AllQueries lists the queries in launch order.
var AllQueries = [...]Query{QueryStatus, QueryLog, QueryDiff, QueryBranches, QueryHead}

func (q Query) String() string {
	switch q {
	case QueryStatus:
		return "status"
	case QueryLog:
		return "log"
	case QueryDiff:
		return "diff"
	case QueryBranches:
		return "branches"
	case QueryHead:
		return "head"
	default:
		return fmt.Sprintf("Query(%d)", int(q))
	}
}

// State is the progress of a query slot.
type State int

const (
	// Idle slots have never been launched.
	Idle State = iota
	Pending
	// Ready and Failed record the outcome of the slot's last query.
	Ready
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Pending:
		return "pending"
	case Ready:
		return "ready"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

func (q Query) launch(ctx context.Context, qs Queries, repo string, pageSize int) *process.Future[git.Result] {
	switch q {
	case QueryStatus:
		return qs.StatusAsync(ctx, repo)
	case QueryLog:
		return qs.LogAsync(ctx, repo, pageSize, 0)
	case QueryDiff:
		return qs.DiffAsync(ctx, repo)
	case QueryBranches:
		return qs.BranchListAsync(ctx, repo)
	default:
		return qs.RevParseHeadAsync(ctx, repo)
	}
}

// update converts the successful output of q into a snapshot update.
func (q Query) update(res git.Result, pageSize int) (Update, error) {
	switch q {
	case QueryStatus:
		st, err := porcelain.ParseStatus(strings.NewReader(res.Stdout))
		if err != nil {
			return nil, fmt.Errorf("parse status: %w", err)
		}
		return StatusUpdate{Status: st}, nil
	case QueryLog:
		return LogUpdate{Commits: porcelain.ParseLog(res.Stdout), PageSize: pageSize}, nil
	case QueryDiff:
		return DiffUpdate{Files: porcelain.ParseDiff(res.Stdout)}, nil
	case QueryBranches:
		return BranchesUpdate{Branches: porcelain.ParseBranches(res.Stdout)}, nil
	default:
		return HeadUpdate{Hash: res.Stdout}, nil
	}
}
