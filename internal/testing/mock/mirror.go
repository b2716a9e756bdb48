package mock

import (
	"context"
	"sync"

	"git-sync-operator/internal/api"
)

// Mirror is an in-memory repository mirror at a settable revision.
type Mirror struct {
	mu        sync.Mutex
	dir       string
	revision  api.Revision
	err       error
	refreshes int
}

func NewMirror(dir string, revision api.Revision) *Mirror {
	return &Mirror{dir: dir, revision: revision}
}

// Push moves the mirror to revision on the next Refresh.
func (m *Mirror) Push(revision api.Revision) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.revision = revision
}

// FailRefresh makes Refresh return err until called with nil.
func (m *Mirror) FailRefresh(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Refreshes returns how many times Refresh was called.
func (m *Mirror) Refreshes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.refreshes
}

func (m *Mirror) Refresh(ctx context.Context) (api.Revision, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.refreshes++
	if m.err != nil {
		return m.revision, api.NewTransientError("refresh", m.err)
	}
	return m.revision, nil
}

func (m *Mirror) LatestRevision() api.Revision {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.revision
}

func (m *Mirror) Dir() string {
	return m.dir
}
