package scripts

import (
	"context"
	"errors"
	"fmt"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"

	"github.com/sqlsweden/sqlZetup/internal/logger"
)

// Fetcher keeps a local checkout of the maintenance-script repository in
// sync. The directory is cloned on first use and pulled on subsequent runs.
type Fetcher struct {
	URL    string
	Branch string
	Dir    string

	log *logger.Logger
}

func NewFetcher(url, branch, dir string, log *logger.Logger) *Fetcher {
	return &Fetcher{URL: url, Branch: branch, Dir: dir, log: log}
}

// Sync makes f.Dir an up-to-date checkout of the configured branch.
func (f *Fetcher) Sync(ctx context.Context) error {
	repo, err := git.PlainOpen(f.Dir)
	switch {
	case errors.Is(err, git.ErrRepositoryNotExists):
		return f.clone(ctx)
	case err != nil:
		return fmt.Errorf("opening script repository at %s: %w", f.Dir, err)
	}
	return f.pull(ctx, repo)
}

func (f *Fetcher) clone(ctx context.Context) error {
	f.log.WithFields(map[string]any{
		"url": f.URL,
		"dir": f.Dir,
	}).Info("cloning script repository")

	opts := &git.CloneOptions{
		URL:          f.URL,
		Depth:        1,
		SingleBranch: true,
	}
	if f.Branch != "" {
		opts.ReferenceName = plumbing.NewBranchReferenceName(f.Branch)
	}

	if _, err := git.PlainCloneContext(ctx, f.Dir, false, opts); err != nil {
		return fmt.Errorf("cloning %s: %w", f.URL, err)
	}
	return nil
}

func (f *Fetcher) pull(ctx context.Context, repo *git.Repository) error {
	wt, err := repo.Worktree()
	if err != nil {
		return fmt.Errorf("opening worktree at %s: %w", f.Dir, err)
	}

	opts := &git.PullOptions{
		RemoteName:   "origin",
		SingleBranch: true,
	}
	if f.Branch != "" {
		opts.ReferenceName = plumbing.NewBranchReferenceName(f.Branch)
	}

	err = wt.PullContext(ctx, opts)
	if errors.Is(err, git.NoErrAlreadyUpToDate) {
		f.log.WithFields(map[string]any{"dir": f.Dir}).Debug("script repository already up to date")
		return nil
	}
	if err != nil {
		return fmt.Errorf("pulling %s: %w", f.URL, err)
	}

	f.log.WithFields(map[string]any{"dir": f.Dir}).Info("script repository updated")
	return nil
}
