// ABOUTME: GitSource keeps a checkout of a shared repository and reads the board snapshot committed in it.
// ABOUTME: The first fetch clones into the cache directory; later fetches pull.
package remote

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"

	"github.com/2389-research/corkboard/kanban"
)

// GitSource reads Path from a checkout of URL kept under CacheDir.
type GitSource struct {
	URL      string
	Branch   string // empty means the remote HEAD
	Path     string
	CacheDir string
}

func (s *GitSource) String() string {
	return s.URL + "#" + s.Path
}

func (s *GitSource) Fetch(ctx context.Context) (*kanban.Snapshot, error) {
	rel := filepath.Clean(s.Path)
	if rel == "." || filepath.IsAbs(rel) || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return nil, fmt.Errorf("%w: %q", ErrUnsafePath, s.Path)
	}

	if err := s.sync(ctx); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(filepath.Join(s.CacheDir, rel))
	if err != nil {
		return nil, fmt.Errorf("read snapshot from checkout: %w", err)
	}
	return kanban.ParseSnapshot(data)
}

func (s *GitSource) sync(ctx context.Context) error {
	repo, err := git.PlainOpen(s.CacheDir)
	if errors.Is(err, git.ErrRepositoryNotExists) {
		return s.clone(ctx)
	}
	if err != nil {
		return fmt.Errorf("failed to open checkout: %w", err)
	}

	w, err := repo.Worktree()
	if err != nil {
		return fmt.Errorf("failed to get worktree: %w", err)
	}
	opts := &git.PullOptions{RemoteName: "origin"}
	if s.Branch != "" {
		opts.ReferenceName = plumbing.NewBranchReferenceName(s.Branch)
		opts.SingleBranch = true
	}
	err = w.PullContext(ctx, opts)
	if err != nil && !errors.Is(err, git.NoErrAlreadyUpToDate) {
		return fmt.Errorf("failed to pull: %w", err)
	}
	return nil
}

func (s *GitSource) clone(ctx context.Context) error {
	if err := os.MkdirAll(filepath.Dir(s.CacheDir), 0o755); err != nil {
		return fmt.Errorf("create cache dir: %w", err)
	}
	opts := &git.CloneOptions{URL: s.URL}
	if s.Branch != "" {
		opts.ReferenceName = plumbing.NewBranchReferenceName(s.Branch)
		opts.SingleBranch = true
	}
	if _, err := git.PlainCloneContext(ctx, s.CacheDir, false, opts); err != nil {
		_ = os.RemoveAll(s.CacheDir)
		return fmt.Errorf("failed to clone %s: %w", s.URL, err)
	}
	return nil
}
