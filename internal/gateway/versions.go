package gateway

import (
	"context"
	"fmt"

	apierrors "k8s.io/apimachinery/pkg/api/errors"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"sigs.k8s.io/controller-runtime/pkg/client"

	"git-sync-operator/internal/api"
	gitsyncv1 "git-sync-operator/pkg/apis/gitsync/v1"
	"git-sync-operator/pkg/logging"
)

// VersionField selects which ledger field an apply owns.
type VersionField string

const (
	FieldApplied  VersionField = "applied"
	FieldDeployed VersionField = "deployed"
)

// GetVersion reads one Version record. A missing record yields an error
// wrapping api.ErrNotFound.
func (g *Gateway) GetVersion(ctx context.Context, namespace, name string) (api.VersionRecord, error) {
	v := &gitsyncv1.Version{}
	err := g.client.Get(ctx, client.ObjectKey{Namespace: namespace, Name: name}, v)
	if apierrors.IsNotFound(err) {
		return api.VersionRecord{}, fmt.Errorf("version %s/%s: %w", namespace, name, api.ErrNotFound)
	}
	if err != nil {
		return api.VersionRecord{}, api.NewTransientError(fmt.Sprintf("get version %s/%s", namespace, name), err)
	}
	return decodeVersion(v), nil
}

// ListVersions returns every Version record in the namespace in the order
// the API server lists them.
func (g *Gateway) ListVersions(ctx context.Context, namespace string) ([]api.VersionRecord, error) {
	list := &gitsyncv1.VersionList{}
	if err := g.client.List(ctx, list, client.InNamespace(namespace)); err != nil {
		return nil, api.NewTransientError("list versions "+namespace, err)
	}

	records := make([]api.VersionRecord, 0, len(list.Items))
	for i := range list.Items {
		records = append(records, decodeVersion(&list.Items[i]))
	}
	return records, nil
}

// ApplyVersion upserts a Version document holding the non-empty fields of
// rec. owner selects the field manager; applied and deployed are owned by
// separate managers so that applying one never removes the other.
func (g *Gateway) ApplyVersion(ctx context.Context, namespace string, rec api.VersionRecord, owner VersionField) error {
	doc := VersionDocument(namespace, rec)
	logging.Info("Gateway", "Applying version document %s/%s applied=%s deployed=%s",
		namespace, rec.Name, rec.Applied, rec.Deployed)

	err := g.client.Patch(ctx, doc, client.Apply,
		client.ForceOwnership,
		client.FieldOwner(g.fieldManager+"-"+string(owner)),
	)
	if err != nil {
		return api.NewTransientError(fmt.Sprintf("apply version %s/%s", namespace, rec.Name), err)
	}
	return nil
}

// VersionDocument renders the declarative ledger document for rec.
func VersionDocument(namespace string, rec api.VersionRecord) *unstructured.Unstructured {
	doc := &unstructured.Unstructured{Object: map[string]interface{}{
		"apiVersion": gitsyncv1.GroupVersion.String(),
		"kind":       gitsyncv1.VersionKind,
		"metadata": map[string]interface{}{
			"name":      rec.Name,
			"namespace": namespace,
		},
	}}
	if rec.Applied.IsSet() {
		doc.Object["applied"] = string(rec.Applied)
	}
	if rec.Deployed.IsSet() {
		doc.Object["deployed"] = string(rec.Deployed)
	}
	return doc
}

func decodeVersion(v *gitsyncv1.Version) api.VersionRecord {
	return api.VersionRecord{
		Name:     v.Name,
		Applied:  api.Revision(v.Applied),
		Deployed: api.Revision(v.Deployed),
	}
}
