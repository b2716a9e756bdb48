package ledger

import (
	"context"
	"fmt"

	"git-sync-operator/internal/api"
	"git-sync-operator/internal/gateway"
	"git-sync-operator/pkg/logging"
)

// Store is the cluster surface the ledger persists through.
type Store interface {
	GetVersion(ctx context.Context, namespace, name string) (api.VersionRecord, error)
	ListVersions(ctx context.Context, namespace string) ([]api.VersionRecord, error)
	ApplyVersion(ctx context.Context, namespace string, rec api.VersionRecord, owner gateway.VersionField) error
}

// Ledger records applied and deployed revisions as Version resources.
// It holds no state of its own; every call goes to the store.
type Ledger struct {
	store Store
}

// New creates a Ledger backed by store.
func New(store Store) *Ledger {
	return &Ledger{store: store}
}

// GetApplied returns the revision last applied to namespace. A namespace
// without a record, or whose record has no applied field, returns the
// unset revision. Read failures are returned as errors and must not be
// taken to mean "unset".
func (l *Ledger) GetApplied(ctx context.Context, namespace string) (api.Revision, error) {
	rec, err := l.store.GetVersion(ctx, namespace, namespace)
	if api.IsNotFound(err) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("read applied version of %s: %w", namespace, err)
	}
	return rec.Applied, nil
}

// SetApplied records revision as applied to namespace.
func (l *Ledger) SetApplied(ctx context.Context, namespace string, revision api.Revision) error {
	rec := api.VersionRecord{Name: namespace, Applied: revision}
	if err := l.store.ApplyVersion(ctx, namespace, rec, gateway.FieldApplied); err != nil {
		return fmt.Errorf("record applied version %s for %s: %w", revision, namespace, err)
	}
	logging.Info("Ledger", "Namespace %s applied=%s", namespace, revision)
	return nil
}

// GetDeployedRecords returns deployment name -> deployed revision for every
// record in namespace that carries a deployed revision.
func (l *Ledger) GetDeployedRecords(ctx context.Context, namespace string) (map[string]api.Revision, error) {
	records, err := l.store.ListVersions(ctx, namespace)
	if err != nil {
		return nil, fmt.Errorf("read deployed versions in %s: %w", namespace, err)
	}

	deployed := make(map[string]api.Revision, len(records))
	for _, rec := range records {
		if rec.Deployed.IsSet() {
			deployed[rec.Name] = rec.Deployed
		}
	}
	return deployed, nil
}

// SetDeployed records revision as fully rolled out for the deployment.
// A deployment named after its namespace shares the namespace record, so
// the same write also sets applied.
func (l *Ledger) SetDeployed(ctx context.Context, deploymentName, namespace string, revision api.Revision) error {
	rec := api.VersionRecord{Name: deploymentName, Deployed: revision}
	if deploymentName == namespace {
		rec.Applied = revision
	}
	if err := l.store.ApplyVersion(ctx, namespace, rec, gateway.FieldDeployed); err != nil {
		return fmt.Errorf("record deployed version %s for %s/%s: %w", revision, namespace, deploymentName, err)
	}
	logging.Info("Ledger", "Deployment %s/%s deployed=%s", namespace, deploymentName, revision)
	return nil
}

// Records lists every ledger record in namespace.
func (l *Ledger) Records(ctx context.Context, namespace string) ([]api.VersionRecord, error) {
	records, err := l.store.ListVersions(ctx, namespace)
	if err != nil {
		return nil, fmt.Errorf("list versions in %s: %w", namespace, err)
	}
	return records, nil
}
