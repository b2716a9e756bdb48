package mirror

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git-sync-operator/internal/api"
)

// sourceRepo is a local upstream repository the mirror clones from.
type sourceRepo struct {
	t    *testing.T
	dir  string
	repo *git.Repository
}

func newSourceRepo(t *testing.T) *sourceRepo {
	t.Helper()
	// Local clones go through the file transport, which shells out to
	// git-upload-pack.
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git binary not available")
	}

	dir := t.TempDir()
	repo, err := git.PlainInit(dir, false)
	require.NoError(t, err)
	return &sourceRepo{t: t, dir: dir, repo: repo}
}

func (s *sourceRepo) commit(path, content string) plumbing.Hash {
	s.t.Helper()
	full := filepath.Join(s.dir, path)
	require.NoError(s.t, os.MkdirAll(filepath.Dir(full), 0o755))
	require.NoError(s.t, os.WriteFile(full, []byte(content), 0o644))

	wt, err := s.repo.Worktree()
	require.NoError(s.t, err)
	_, err = wt.Add(path)
	require.NoError(s.t, err)

	hash, err := wt.Commit("update "+path, &git.CommitOptions{
		Author: &object.Signature{Name: "ci", Email: "ci@example.com", When: time.Now()},
	})
	require.NoError(s.t, err)
	return hash
}

func (s *sourceRepo) branch() string {
	s.t.Helper()
	head, err := s.repo.Head()
	require.NoError(s.t, err)
	return head.Name().Short()
}

func TestOpen_ClonesAndReportsRevision(t *testing.T) {
	src := newSourceRepo(t)
	first := src.commit("payments/deployment.yaml", "kind: ConfigMap\n")

	dir := filepath.Join(t.TempDir(), "mirror")
	m, err := Open(context.Background(), Options{URL: src.dir, Dir: dir, Branch: src.branch()})
	require.NoError(t, err)

	assert.Equal(t, ShortRevision(first), m.LatestRevision())
	assert.Len(t, string(m.LatestRevision()), 7)
	assert.FileExists(t, filepath.Join(dir, "payments", "deployment.yaml"))
	assert.Equal(t, dir, m.Dir())
}

func TestOpen_RejectsWorkingCopyOfAnotherRepository(t *testing.T) {
	old := newSourceRepo(t)
	old.commit("payments/cm.yaml", "a: 1\n")
	next := newSourceRepo(t)
	next.commit("payments/cm.yaml", "a: 2\n")

	dir := filepath.Join(t.TempDir(), "mirror")
	_, err := Open(context.Background(), Options{URL: old.dir, Dir: dir, Branch: old.branch()})
	require.NoError(t, err)

	_, err = Open(context.Background(), Options{URL: old.dir, Dir: dir, Branch: old.branch()})
	require.NoError(t, err, "same origin is reused")

	_, err = Open(context.Background(), Options{URL: next.dir, Dir: dir, Branch: next.branch()})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not "+next.dir)
}

func TestRefresh_PicksUpNewCommits(t *testing.T) {
	src := newSourceRepo(t)
	src.commit("payments/cm.yaml", "a: 1\n")

	dir := filepath.Join(t.TempDir(), "mirror")
	m, err := Open(context.Background(), Options{URL: src.dir, Dir: dir, Branch: src.branch()})
	require.NoError(t, err)

	second := src.commit("payments/cm.yaml", "a: 2\n")

	rev, err := m.Refresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, ShortRevision(second), rev)
	assert.Equal(t, rev, m.LatestRevision())

	data, err := os.ReadFile(filepath.Join(dir, "payments", "cm.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "a: 2\n", string(data))

	// Unchanged upstream is not an error.
	again, err := m.Refresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, rev, again)
}

func TestRefresh_FailureKeepsLastKnownRevision(t *testing.T) {
	src := newSourceRepo(t)
	src.commit("payments/cm.yaml", "a: 1\n")

	dir := filepath.Join(t.TempDir(), "mirror")
	m, err := Open(context.Background(), Options{URL: src.dir, Dir: dir, Branch: src.branch()})
	require.NoError(t, err)
	known := m.LatestRevision()

	require.NoError(t, os.RemoveAll(src.dir))

	rev, err := m.Refresh(context.Background())
	require.Error(t, err)
	assert.True(t, api.IsTransient(err))
	assert.Equal(t, known, rev)
	assert.Equal(t, known, m.LatestRevision())
}

func TestOpen_ReusesExistingWorkingCopy(t *testing.T) {
	src := newSourceRepo(t)
	hash := src.commit("a.yaml", "x: 1\n")

	dir := filepath.Join(t.TempDir(), "mirror")
	_, err := Open(context.Background(), Options{URL: src.dir, Dir: dir, Branch: src.branch()})
	require.NoError(t, err)

	reopened, err := Open(context.Background(), Options{URL: src.dir, Dir: dir, Branch: src.branch()})
	require.NoError(t, err)
	assert.Equal(t, ShortRevision(hash), reopened.LatestRevision())
}

func TestOpen_CloneFailureIsFatal(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git binary not available")
	}
	_, err := Open(context.Background(), Options{
		URL:    filepath.Join(t.TempDir(), "does-not-exist"),
		Dir:    filepath.Join(t.TempDir(), "mirror"),
		Branch: "master",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to clone")
}

func TestShortRevision(t *testing.T) {
	h := plumbing.NewHash("abc123f00dabc123f00dabc123f00dabc123f00d")
	assert.Equal(t, api.Revision("abc123f"), ShortRevision(h))
}
