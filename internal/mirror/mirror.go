package mirror

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-git/go-git/v5"
	gitconfig "github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"

	"git-sync-operator/internal/api"
	"git-sync-operator/pkg/logging"
)

// shortLength matches `git rev-parse --short` without abbreviation tuning.
const shortLength = 7

const remoteName = "origin"

// Options configures a Mirror.
type Options struct {
	// URL is the source repository location.
	URL string
	// Dir is the local working copy path.
	Dir string
	// Branch is the tracked branch.
	Branch string
	// Depth limits fetched history; 0 fetches everything.
	Depth int
}

// Mirror maintains a local working copy of the source repository.
//
// The working copy is always reset to the remote branch head; local
// changes and divergent history are discarded.
type Mirror struct {
	opts   Options
	repo   *git.Repository
	latest api.Revision
}

// Open returns a Mirror for opts.Dir, cloning the repository when the
// directory holds no repository yet. A failure here is fatal for the
// process: without an initial copy there is nothing to reconcile.
func Open(ctx context.Context, opts Options) (*Mirror, error) {
	repo, err := git.PlainOpen(opts.Dir)
	switch {
	case err == nil:
		if err := checkOrigin(repo, opts.URL); err != nil {
			return nil, fmt.Errorf("failed to reuse working copy %s: %w", opts.Dir, err)
		}
		logging.Info("Mirror", "Using existing working copy at %s", opts.Dir)
	case errors.Is(err, git.ErrRepositoryNotExists):
		logging.Info("Mirror", "Cloning %s (branch %s) into %s", opts.URL, opts.Branch, opts.Dir)
		repo, err = git.PlainCloneContext(ctx, opts.Dir, false, &git.CloneOptions{
			URL:           opts.URL,
			RemoteName:    remoteName,
			ReferenceName: plumbing.NewBranchReferenceName(opts.Branch),
			SingleBranch:  true,
			Depth:         opts.Depth,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to clone %s: %w", opts.URL, err)
		}
	default:
		return nil, fmt.Errorf("failed to open working copy %s: %w", opts.Dir, err)
	}

	m := &Mirror{opts: opts, repo: repo}

	head, err := repo.Head()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve HEAD in %s: %w", opts.Dir, err)
	}
	m.latest = ShortRevision(head.Hash())
	logging.Info("Mirror", "Working copy at revision %s", m.latest)
	return m, nil
}

// checkOrigin verifies that the working copy's remote still points at url.
// A persistent volume can outlive a change of source repository.
func checkOrigin(repo *git.Repository, url string) error {
	remote, err := repo.Remote(remoteName)
	if err != nil {
		return fmt.Errorf("remote %s: %w", remoteName, err)
	}
	urls := remote.Config().URLs
	if len(urls) == 0 || urls[0] != url {
		return fmt.Errorf("remote %s points at %v, not %s", remoteName, urls, url)
	}
	return nil
}

// Dir returns the working copy path.
func (m *Mirror) Dir() string {
	return m.opts.Dir
}

// LatestRevision returns the last revision successfully fetched.
func (m *Mirror) LatestRevision() api.Revision {
	return m.latest
}

// Refresh fetches the tracked branch and hard-resets the working copy to
// it. On failure the previous revision is returned together with a
// transient error, so a pass can continue on the last known state.
func (m *Mirror) Refresh(ctx context.Context) (api.Revision, error) {
	rev, err := m.refresh(ctx)
	if err != nil {
		return m.latest, api.NewTransientError("refresh "+m.opts.Branch, err)
	}
	if rev != m.latest {
		logging.Info("Mirror", "Branch %s moved %s -> %s", m.opts.Branch, m.latest, rev)
	}
	m.latest = rev
	return rev, nil
}

func (m *Mirror) refresh(ctx context.Context) (api.Revision, error) {
	remoteRef := plumbing.NewRemoteReferenceName(remoteName, m.opts.Branch)
	refSpec := gitconfig.RefSpec(fmt.Sprintf("+%s:%s", plumbing.NewBranchReferenceName(m.opts.Branch), remoteRef))

	err := m.repo.FetchContext(ctx, &git.FetchOptions{
		RemoteName: remoteName,
		RefSpecs:   []gitconfig.RefSpec{refSpec},
		Depth:      m.opts.Depth,
		Force:      true,
	})
	if err != nil && !errors.Is(err, git.NoErrAlreadyUpToDate) {
		return "", fmt.Errorf("fetch: %w", err)
	}

	ref, err := m.repo.Reference(remoteRef, true)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", remoteRef, err)
	}

	wt, err := m.repo.Worktree()
	if err != nil {
		return "", fmt.Errorf("worktree: %w", err)
	}
	if err := wt.Reset(&git.ResetOptions{Commit: ref.Hash(), Mode: git.HardReset}); err != nil {
		return "", fmt.Errorf("reset to %s: %w", ref.Hash(), err)
	}

	return ShortRevision(ref.Hash()), nil
}

// ShortRevision abbreviates a commit hash the way `git rev-parse --short` does.
func ShortRevision(h plumbing.Hash) api.Revision {
	return api.Revision(h.String()[:shortLength])
}
