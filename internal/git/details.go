package git

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dgraph-io/ristretto/v2"
	"github.com/go-git/go-git/v5/plumbing"

	"github.com/thiagokokada/gitdeck/internal/git/porcelain"
)

// DefaultDetailsCacheBytes bounds the memory held by a CommitDetailsLoader.
const DefaultDetailsCacheBytes = 32 << 20

// CommitDetails is everything shown for a single commit.
type CommitDetails struct {
	Hash  string
	Info  porcelain.CommitInfo
	Files []porcelain.FileDiff
}

// ValidHash reports whether s is a full hexadecimal object name.
func ValidHash(s string) bool {
	return plumbing.IsHash(s)
}

// CommitDetailsLoader loads commit metadata and diffs, caching them by full
// hash. Commits never change, so entries are only evicted for space.
type CommitDetailsLoader struct {
	runner *Runner
	repo   string
	cache  *ristretto.Cache[string, *CommitDetails]
}

func NewCommitDetailsLoader(runner *Runner, repo string, maxCostBytes int64) (*CommitDetailsLoader, error) {
	if maxCostBytes <= 0 {
		maxCostBytes = DefaultDetailsCacheBytes
	}
	cache, err := ristretto.NewCache(&ristretto.Config[string, *CommitDetails]{
		NumCounters: max(maxCostBytes/100*10, 1000),
		MaxCost:     maxCostBytes,
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("commit details cache: %w", err)
	}
	return &CommitDetailsLoader{runner: runner, repo: repo, cache: cache}, nil
}

// Load returns the details of rev, which may be any revision git can resolve
// to a commit.
func (l *CommitDetailsLoader) Load(ctx context.Context, rev string) (*CommitDetails, error) {
	if l.repo == "" {
		return nil, errors.New("repository root not set")
	}
	hash, err := l.resolve(ctx, rev)
	if err != nil {
		return nil, err
	}
	if d, ok := l.cache.Get(hash); ok {
		return d, nil
	}

	infoF := l.runner.ShowCommitInfoAsync(ctx, l.repo, hash)
	diffF := l.runner.ShowAsync(ctx, l.repo, hash)
	infoRes, diffRes := infoF.Wait(), diffF.Wait()
	if err := infoRes.Err(); err != nil {
		return nil, fmt.Errorf("load commit %s: %w", hash, err)
	}
	if err := diffRes.Err(); err != nil {
		return nil, fmt.Errorf("load commit diff %s: %w", hash, err)
	}
	info, ok := porcelain.ParseCommitInfo(infoRes.Stdout)
	if !ok {
		return nil, fmt.Errorf("load commit %s: unexpected output %q", hash, infoRes.TrimmedStdout())
	}
	d := &CommitDetails{
		Hash:  hash,
		Info:  info,
		Files: porcelain.ParseDiff(diffRes.Stdout),
	}
	l.cache.Set(hash, d, int64(len(infoRes.Stdout)+len(diffRes.Stdout)))
	l.cache.Wait()
	return d, nil
}

func (l *CommitDetailsLoader) resolve(ctx context.Context, rev string) (string, error) {
	rev = strings.TrimSpace(rev)
	if rev == "" {
		return "", errors.New("empty revision")
	}
	if ValidHash(rev) {
		return strings.ToLower(rev), nil
	}
	res := l.runner.Run(ctx, l.repo, "rev-parse", "--verify", "--quiet", rev+"^{commit}")
	if err := res.Err(); err != nil {
		return "", fmt.Errorf("resolve %q: %w", rev, err)
	}
	hash := res.TrimmedStdout()
	if !ValidHash(hash) {
		return "", fmt.Errorf("resolve %q: unexpected output %q", rev, hash)
	}
	return hash, nil
}

func (l *CommitDetailsLoader) Close() {
	l.cache.Close()
}
