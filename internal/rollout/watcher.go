package rollout

import (
	"context"
	"errors"
	"fmt"
	"time"

	"git-sync-operator/internal/api"
	"git-sync-operator/pkg/logging"
)

// Ledger is the subset of the version ledger the watcher reads and writes.
type Ledger interface {
	GetApplied(ctx context.Context, namespace string) (api.Revision, error)
	GetDeployedRecords(ctx context.Context, namespace string) (map[string]api.Revision, error)
	SetDeployed(ctx context.Context, deploymentName, namespace string, revision api.Revision) error
}

// Cluster lists and annotates deployments.
type Cluster interface {
	ListDeployments(ctx context.Context, namespace string) ([]api.Deployment, error)
	AnnotateDeployment(ctx context.Context, namespace, name, key, value string) error
}

// Notifier receives one event per completed rollout.
type Notifier interface {
	Notify(ctx context.Context, event api.DeploymentEvent)
}

// Result summarises one Check call by deployment name.
type Result struct {
	// Gated is true when the namespace has not applied the target yet and
	// no deployment was looked at.
	Gated bool

	Skipped    []string
	Annotated  []string
	RollingOut []string
	Deployed   []string
}

// Watcher drives the annotate, verify, mark-deployed protocol for the
// deployments of a namespace.
type Watcher struct {
	ledger   Ledger
	cluster  Cluster
	notifier Notifier

	clusterName string
	now         func() time.Time
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithClusterName sets the cluster name carried on deployment events.
func WithClusterName(name string) Option {
	return func(w *Watcher) { w.clusterName = name }
}

// WithClock overrides the completion timestamp source.
func WithClock(now func() time.Time) Option {
	return func(w *Watcher) { w.now = now }
}

// NewWatcher creates a Watcher.
func NewWatcher(ledger Ledger, cluster Cluster, notifier Notifier, opts ...Option) *Watcher {
	w := &Watcher{
		ledger:   ledger,
		cluster:  cluster,
		notifier: notifier,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Check progresses every deployment in namespace towards target.
//
// Nothing happens until the namespace ledger record has applied == target,
// so a deployment is never restarted or marked deployed for manifests that
// have not been applied. Deployments already recorded as deployed at
// target are skipped. A stale deployment is annotated and left alone for
// the rest of the pass. A healthy one is recorded as deployed, and only a
// successful ledger write is followed by a notification.
//
// Read failures abort the check and are returned. Per-deployment write
// failures are logged, joined into the returned error, and do not stop
// the remaining deployments.
func (w *Watcher) Check(ctx context.Context, namespace string, target api.Revision) (Result, error) {
	var result Result
	if !target.IsSet() {
		return result, fmt.Errorf("no target revision for %s", namespace)
	}

	applied, err := w.ledger.GetApplied(ctx, namespace)
	if err != nil {
		return result, err
	}
	if applied != target {
		logging.Debug("Rollout", "Namespace %s applied=%s, waiting for %s before checking deployments", namespace, applied, target)
		result.Gated = true
		return result, nil
	}

	finished, err := w.ledger.GetDeployedRecords(ctx, namespace)
	if err != nil {
		return result, err
	}

	deployments, err := w.cluster.ListDeployments(ctx, namespace)
	if err != nil {
		return result, err
	}

	var errs []error
	for _, d := range deployments {
		if finished[d.Name] == target {
			result.Skipped = append(result.Skipped, d.Name)
			continue
		}

		switch state := Classify(d, target); state {
		case StateStale:
			logging.Info("Rollout", "Deployment %s annotation %s is stale, annotating %s", d, d.AppliedVersion(), target)
			if err := w.cluster.AnnotateDeployment(ctx, d.Namespace, d.Name, api.AppliedVersionAnnotation, string(target)); err != nil {
				logging.Error("Rollout", err, "Failed to annotate deployment %s", d)
				errs = append(errs, err)
				continue
			}
			result.Annotated = append(result.Annotated, d.Name)

		case StateRollingOut:
			logging.Debug("Rollout", "Deployment %s rolling out %s: replicas=%d updated=%d ready=%d",
				d, target, d.Replicas, d.UpdatedReplicas, d.ReadyReplicas)
			result.RollingOut = append(result.RollingOut, d.Name)

		case StateDeployed:
			if err := w.ledger.SetDeployed(ctx, d.Name, d.Namespace, target); err != nil {
				logging.Error("Rollout", err, "Failed to record deployment %s at %s", d, target)
				errs = append(errs, err)
				continue
			}
			logging.Info("Rollout", "Deployment %s rolled out %s", d, target)
			result.Deployed = append(result.Deployed, d.Name)
			w.notifier.Notify(ctx, api.DeploymentEvent{
				Cluster:     w.clusterName,
				Namespace:   d.Namespace,
				Deployment:  d.Name,
				Revision:    target,
				CompletedAt: w.now().UTC(),
			})
		}
	}

	return result, errors.Join(errs...)
}
