package reconciler

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"git-sync-operator/internal/api"
	"git-sync-operator/internal/metrics"
	"git-sync-operator/internal/rollout"
	"git-sync-operator/pkg/logging"
)

const subsystem = "Reconciler"

// Mirror is the local copy of the source-of-truth repository.
type Mirror interface {
	Refresh(ctx context.Context) (api.Revision, error)
	LatestRevision() api.Revision
	Dir() string
}

// Ledger reads and records the applied revision of a namespace.
type Ledger interface {
	GetApplied(ctx context.Context, namespace string) (api.Revision, error)
	SetApplied(ctx context.Context, namespace string, revision api.Revision) error
}

// Applier applies the manifests of one directory into a namespace.
type Applier interface {
	ApplyManifests(ctx context.Context, namespace, dir string) (api.ApplyResult, error)
}

// Watcher progresses the rollout of target in a namespace.
type Watcher interface {
	Check(ctx context.Context, namespace string, target api.Revision) (rollout.Result, error)
}

// Config holds the reconciler settings.
type Config struct {
	// Namespaces is the managed namespace set, processed in order.
	Namespaces []string
	// ClusterName enables the <dir>/<cluster>/<namespace> overlay.
	ClusterName string
	// Interval is the sleep between passes in Run.
	Interval time.Duration
	// MaxPasses stops Run after that many passes. Zero means unlimited.
	MaxPasses int
}

// Dependencies are the collaborators of a Reconciler.
type Dependencies struct {
	Mirror  Mirror
	Ledger  Ledger
	Applier Applier
	Watcher Watcher
	Metrics *metrics.Metrics
	// Clock defaults to time.Now.
	Clock func() time.Time
}

// Reconciler drives reconciliation passes across the managed namespaces.
type Reconciler struct {
	config Config
	deps   Dependencies
}

func New(config Config, deps Dependencies) *Reconciler {
	if deps.Clock == nil {
		deps.Clock = time.Now
	}
	return &Reconciler{config: config, deps: deps}
}

// Run performs passes separated by the configured interval until ctx is
// done or MaxPasses is reached. It returns nil on either.
func (r *Reconciler) Run(ctx context.Context) error {
	logging.Info(subsystem, "Starting reconcile loop for %d namespaces every %s", len(r.config.Namespaces), r.config.Interval)

	timer := time.NewTimer(0)
	defer timer.Stop()

	for passes := 0; ; {
		select {
		case <-ctx.Done():
			logging.Info(subsystem, "Reconcile loop stopped after %d passes", passes)
			return nil
		case <-timer.C:
		}

		r.RunOnce(ctx)
		passes++

		if r.config.MaxPasses > 0 && passes >= r.config.MaxPasses {
			logging.Info(subsystem, "Reached %d passes, stopping", passes)
			return nil
		}
		timer.Reset(r.config.Interval)
	}
}

// RunOnce performs exactly one pass: refresh the mirror, then reconcile
// every managed namespace. A failure in one namespace never stops the pass.
func (r *Reconciler) RunOnce(ctx context.Context) PassResult {
	pass := PassResult{
		ID:        uuid.NewString(),
		StartedAt: r.deps.Clock(),
	}
	log := logging.For(subsystem).With("pass", pass.ID)

	revision, err := r.deps.Mirror.Refresh(ctx)
	if err != nil {
		pass.RefreshErr = err
		r.deps.Metrics.RecordRefreshFailure()
		revision = r.deps.Mirror.LatestRevision()
		log.Warn("Repository refresh failed, using last known revision %s: %v", revision, err)
	}
	pass.Revision = revision
	log.Debug("Reconciling %d namespaces at %s", len(r.config.Namespaces), revision)

	for _, ns := range r.config.Namespaces {
		if ctx.Err() != nil {
			break
		}
		result := r.reconcileNamespace(ctx, log.With("namespace", ns), ns, revision)
		if result.Err != nil {
			log.With("namespace", ns).Error(result.Err, "Namespace reconcile failed")
			r.deps.Metrics.RecordNamespaceFailure(ns)
		}
		pass.Namespaces = append(pass.Namespaces, result)
	}

	pass.FinishedAt = r.deps.Clock()
	r.deps.Metrics.ObservePass(pass.FinishedAt.Sub(pass.StartedAt), pass.FinishedAt)
	return pass
}

func (r *Reconciler) reconcileNamespace(ctx context.Context, log logging.Logger, ns string, latest api.Revision) (result NamespaceResult) {
	result.Namespace = ns
	defer func() {
		if p := recover(); p != nil {
			result.Err = fmt.Errorf("panic while reconciling %s: %v", ns, p)
		}
	}()

	if !latest.IsSet() {
		result.Err = api.NewTransientError("latest revision", errors.New("no revision available"))
		return result
	}

	var errs []error
	applied, err := r.deps.Ledger.GetApplied(ctx, ns)
	if err != nil {
		// Unknown is not unset: leave manifests alone this pass.
		errs = append(errs, err)
	} else {
		result.Applied = applied
		if applied != latest {
			result.Stale = true
			if err := r.apply(ctx, log, ns, latest, &result); err != nil {
				errs = append(errs, err)
			}
		}
	}

	rolloutResult, err := r.deps.Watcher.Check(ctx, ns, latest)
	result.Rollout = rolloutResult
	if err != nil {
		errs = append(errs, err)
	}
	r.deps.Metrics.RecordAnnotations(ns, len(rolloutResult.Annotated))

	result.Err = errors.Join(errs...)
	return result
}

// apply applies the namespace and cluster overlay directories and records
// latest as applied when at least one of them applied cleanly.
func (r *Reconciler) apply(ctx context.Context, log logging.Logger, ns string, latest api.Revision, result *NamespaceResult) error {
	var errs []error
	succeeded := false

	for _, dir := range r.manifestDirs(ns) {
		res, err := r.deps.Applier.ApplyManifests(ctx, ns, dir)
		result.Applies = append(result.Applies, res)
		switch {
		case err != nil:
			r.deps.Metrics.RecordManifestApply(ns, "failed")
			errs = append(errs, err)
		case res.Succeeded():
			r.deps.Metrics.RecordManifestApply(ns, "applied")
			log.Info("Applied %d objects from %s", len(res.Applied), dir)
			succeeded = true
		case res.Found:
			r.deps.Metrics.RecordManifestApply(ns, "empty")
		}
	}

	if !succeeded {
		if len(errs) == 0 {
			log.Debug("Nothing to apply for %s", latest)
		}
		return errors.Join(errs...)
	}

	if err := r.deps.Ledger.SetApplied(ctx, ns, latest); err != nil {
		errs = append(errs, err)
		return errors.Join(errs...)
	}
	result.Recorded = true
	log.Info("Recorded applied revision %s (was %s)", latest, result.Applied)
	return errors.Join(errs...)
}

func (r *Reconciler) manifestDirs(ns string) []string {
	dirs := []string{filepath.Join(r.deps.Mirror.Dir(), ns)}
	if r.config.ClusterName != "" {
		dirs = append(dirs, filepath.Join(r.deps.Mirror.Dir(), r.config.ClusterName, ns))
	}
	return dirs
}
