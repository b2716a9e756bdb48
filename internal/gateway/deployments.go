package gateway

import (
	"context"
	"encoding/json"
	"fmt"

	appsv1 "k8s.io/api/apps/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/types"
	"sigs.k8s.io/controller-runtime/pkg/client"

	"git-sync-operator/internal/api"
	"git-sync-operator/pkg/logging"
)

// ListDeployments returns the typed view of every Deployment in the namespace.
func (g *Gateway) ListDeployments(ctx context.Context, namespace string) ([]api.Deployment, error) {
	list := &appsv1.DeploymentList{}
	if err := g.client.List(ctx, list, client.InNamespace(namespace)); err != nil {
		return nil, api.NewTransientError("list deployments "+namespace, err)
	}

	out := make([]api.Deployment, 0, len(list.Items))
	for i := range list.Items {
		out = append(out, decodeDeployment(&list.Items[i]))
	}
	return out, nil
}

// AnnotateDeployment sets key=value on the Deployment and on its pod
// template. The pod template change is what makes the runtime restart the
// pods, which picks up changed ConfigMaps and Secrets.
func (g *Gateway) AnnotateDeployment(ctx context.Context, namespace, name, key, value string) error {
	patch, err := annotationPatch(key, value)
	if err != nil {
		return fmt.Errorf("build annotation patch: %w", err)
	}

	d := &appsv1.Deployment{ObjectMeta: metav1.ObjectMeta{Namespace: namespace, Name: name}}
	if err := g.client.Patch(ctx, d, client.RawPatch(types.MergePatchType, patch)); err != nil {
		return api.NewTransientError(fmt.Sprintf("annotate deployment %s/%s", namespace, name), err)
	}
	logging.Info("Gateway", "Annotated deployment %s/%s %s=%s", namespace, name, key, value)
	return nil
}

func annotationPatch(key, value string) ([]byte, error) {
	annotations := map[string]string{key: value}
	return json.Marshal(map[string]interface{}{
		"metadata": map[string]interface{}{"annotations": annotations},
		"spec": map[string]interface{}{
			"template": map[string]interface{}{
				"metadata": map[string]interface{}{"annotations": annotations},
			},
		},
	})
}

// decodeDeployment reads the rollout annotation from the pod template, the
// copy that drives restarts. Replica counters and the observed generation
// come from status.
func decodeDeployment(d *appsv1.Deployment) api.Deployment {
	annotations := make(map[string]string, len(d.Spec.Template.Annotations))
	for k, v := range d.Spec.Template.Annotations {
		annotations[k] = v
	}
	return api.Deployment{
		Namespace:       d.Namespace,
		Name:            d.Name,
		Annotations:        annotations,
		Generation:         d.Generation,
		ObservedGeneration: d.Status.ObservedGeneration,
		Replicas:           d.Status.Replicas,
		UpdatedReplicas:    d.Status.UpdatedReplicas,
		ReadyReplicas:      d.Status.ReadyReplicas,
	}
}
