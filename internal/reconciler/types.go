package reconciler

import (
	"time"

	"git-sync-operator/internal/api"
	"git-sync-operator/internal/rollout"
)

// PassResult summarises one reconciliation pass.
type PassResult struct {
	// ID correlates the log lines of the pass.
	ID string
	// Revision is the target revision of the pass.
	Revision api.Revision
	// RefreshErr is set when the mirror could not be refreshed and the last
	// known revision was used instead.
	RefreshErr error

	Namespaces []NamespaceResult

	StartedAt  time.Time
	FinishedAt time.Time
}

// Failed returns the namespaces whose processing reported an error.
func (p PassResult) Failed() []string {
	var failed []string
	for _, ns := range p.Namespaces {
		if ns.Err != nil {
			failed = append(failed, ns.Namespace)
		}
	}
	return failed
}

// Namespace returns the result for ns.
func (p PassResult) Namespace(ns string) (NamespaceResult, bool) {
	for _, r := range p.Namespaces {
		if r.Namespace == ns {
			return r, true
		}
	}
	return NamespaceResult{}, false
}

// NamespaceResult is the outcome of reconciling one namespace.
type NamespaceResult struct {
	Namespace string
	// Applied is the ledger value read at the start of the pass.
	Applied api.Revision
	// Stale is true when Applied differed from the pass revision.
	Stale bool
	// Applies holds one entry per manifest directory considered.
	Applies []api.ApplyResult
	// Recorded is true when the applied revision was written this pass.
	Recorded bool
	Rollout  rollout.Result
	Err      error
}
