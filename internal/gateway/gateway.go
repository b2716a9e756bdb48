package gateway

import (
	"fmt"

	"k8s.io/apimachinery/pkg/runtime"
	utilruntime "k8s.io/apimachinery/pkg/util/runtime"
	clientgoscheme "k8s.io/client-go/kubernetes/scheme"
	"k8s.io/client-go/rest"
	"sigs.k8s.io/controller-runtime/pkg/client"

	gitsyncv1 "git-sync-operator/pkg/apis/gitsync/v1"
)

// Gateway executes reads, applies and annotation patches against the
// cluster. Every method returns typed values; failures are wrapped as
// api.TransientError, and a confirmed absence as api.ErrNotFound.
type Gateway struct {
	client       client.Client
	fieldManager string
}

// NewScheme returns a scheme with the built-in Kubernetes types and the
// Version ledger type registered.
func NewScheme() *runtime.Scheme {
	scheme := runtime.NewScheme()
	utilruntime.Must(clientgoscheme.AddToScheme(scheme))
	utilruntime.Must(gitsyncv1.AddToScheme(scheme))
	return scheme
}

// NewClient creates a controller-runtime client for restConfig using NewScheme.
func NewClient(restConfig *rest.Config) (client.Client, error) {
	c, err := client.New(restConfig, client.Options{Scheme: NewScheme()})
	if err != nil {
		return nil, fmt.Errorf("failed to create Kubernetes client: %w", err)
	}
	return c, nil
}

// New wraps c. fieldManager is the server-side apply manager name used for
// manifests; ledger fields use derived managers.
func New(c client.Client, fieldManager string) *Gateway {
	return &Gateway{client: c, fieldManager: fieldManager}
}
