package mock

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"git-sync-operator/internal/api"
	"git-sync-operator/internal/gateway"
)

// VersionWrite is one recorded ledger apply.
type VersionWrite struct {
	Namespace string
	Record    api.VersionRecord
	Owner     gateway.VersionField
}

// Annotation is one recorded deployment annotation patch.
type Annotation struct {
	Namespace string
	Name      string
	Value     string
}

// Cluster is an in-memory stand-in for the cluster gateway. Version
// applies merge fields like server-side apply with per-field managers, and
// annotations are reflected on the next ListDeployments.
//
// Failures are injected through Fail, keyed by operation:
//
//	get-version:<ns>/<name>    list-versions:<ns>     apply-version:<ns>/<name>
//	list-deployments:<ns>      annotate:<ns>/<name>   apply-manifests:<dir>
type Cluster struct {
	mu sync.Mutex

	versions    map[string]map[string]api.VersionRecord
	deployments map[string][]api.Deployment
	manifests   map[string][]string

	Fail map[string]error

	VersionWrites   []VersionWrite
	Annotations     []Annotation
	ManifestApplies []string
}

// NewCluster returns an empty Cluster.
func NewCluster() *Cluster {
	return &Cluster{
		versions:    map[string]map[string]api.VersionRecord{},
		deployments: map[string][]api.Deployment{},
		manifests:   map[string][]string{},
		Fail:        map[string]error{},
	}
}

// ErrInjected is the cause used by FailWith.
var ErrInjected = errors.New("injected failure")

// FailWith makes op fail with a transient error.
func (c *Cluster) FailWith(op string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Fail[op] = api.NewTransientError(op, ErrInjected)
}

// Recover clears an injected failure.
func (c *Cluster) Recover(op string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.Fail, op)
}

// SeedVersion stores a ledger record without recording a write.
func (c *Cluster) SeedVersion(namespace string, rec api.VersionRecord) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.mergeVersion(namespace, rec)
}

// Version returns the stored record and whether it exists.
func (c *Cluster) Version(namespace, name string) (api.VersionRecord, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	rec, ok := c.versions[namespace][name]
	return rec, ok
}

// AddDeployment adds or replaces a deployment.
func (c *Cluster) AddDeployment(d api.Deployment) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, existing := range c.deployments[d.Namespace] {
		if existing.Name == d.Name {
			c.deployments[d.Namespace][i] = d
			return
		}
	}
	c.deployments[d.Namespace] = append(c.deployments[d.Namespace], d)
}

// SetStatus updates the replica counters of a deployment.
func (c *Cluster) SetStatus(namespace, name string, replicas, updated, ready int32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.deployments[namespace] {
		d := &c.deployments[namespace][i]
		if d.Name == name {
			d.Replicas, d.UpdatedReplicas, d.ReadyReplicas = replicas, updated, ready
		}
	}
}

// AddManifestDir registers dir as existing with the given object refs.
func (c *Cluster) AddManifestDir(dir string, objects ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.manifests[dir] = objects
}

func (c *Cluster) injected(op string) error {
	return c.Fail[op]
}

func (c *Cluster) mergeVersion(namespace string, rec api.VersionRecord) {
	if c.versions[namespace] == nil {
		c.versions[namespace] = map[string]api.VersionRecord{}
	}
	cur := c.versions[namespace][rec.Name]
	cur.Name = rec.Name
	if rec.Applied.IsSet() {
		cur.Applied = rec.Applied
	}
	if rec.Deployed.IsSet() {
		cur.Deployed = rec.Deployed
	}
	c.versions[namespace][rec.Name] = cur
}

func (c *Cluster) GetVersion(ctx context.Context, namespace, name string) (api.VersionRecord, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.injected("get-version:" + namespace + "/" + name); err != nil {
		return api.VersionRecord{}, err
	}
	rec, ok := c.versions[namespace][name]
	if !ok {
		return api.VersionRecord{}, fmt.Errorf("version %s/%s: %w", namespace, name, api.ErrNotFound)
	}
	return rec, nil
}

func (c *Cluster) ListVersions(ctx context.Context, namespace string) ([]api.VersionRecord, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.injected("list-versions:" + namespace); err != nil {
		return nil, err
	}
	out := make([]api.VersionRecord, 0, len(c.versions[namespace]))
	for _, rec := range c.versions[namespace] {
		out = append(out, rec)
	}
	return out, nil
}

func (c *Cluster) ApplyVersion(ctx context.Context, namespace string, rec api.VersionRecord, owner gateway.VersionField) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.injected("apply-version:" + namespace + "/" + rec.Name); err != nil {
		return err
	}
	c.VersionWrites = append(c.VersionWrites, VersionWrite{Namespace: namespace, Record: rec, Owner: owner})
	c.mergeVersion(namespace, rec)
	return nil
}

func (c *Cluster) ListDeployments(ctx context.Context, namespace string) ([]api.Deployment, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.injected("list-deployments:" + namespace); err != nil {
		return nil, err
	}
	out := make([]api.Deployment, 0, len(c.deployments[namespace]))
	for _, d := range c.deployments[namespace] {
		copied := d
		copied.Annotations = make(map[string]string, len(d.Annotations))
		for k, v := range d.Annotations {
			copied.Annotations[k] = v
		}
		out = append(out, copied)
	}
	return out, nil
}

func (c *Cluster) AnnotateDeployment(ctx context.Context, namespace, name, key, value string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.injected("annotate:" + namespace + "/" + name); err != nil {
		return err
	}
	for i := range c.deployments[namespace] {
		d := &c.deployments[namespace][i]
		if d.Name != name {
			continue
		}
		if d.Annotations == nil {
			d.Annotations = map[string]string{}
		}
		d.Annotations[key] = value
		c.Annotations = append(c.Annotations, Annotation{Namespace: namespace, Name: name, Value: value})
		return nil
	}
	return api.NewTransientError("annotate "+namespace+"/"+name, api.ErrNotFound)
}

func (c *Cluster) ApplyManifests(ctx context.Context, namespace, dir string) (api.ApplyResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	objects, found := c.manifests[dir]
	result := api.ApplyResult{Dir: dir, Found: found}
	if !found {
		return result, nil
	}
	c.ManifestApplies = append(c.ManifestApplies, dir)
	if err := c.injected("apply-manifests:" + dir); err != nil {
		result.Err = err
		return result, err
	}
	result.Applied = append([]string(nil), objects...)
	return result, nil
}

// Deployment returns a deployment with the given annotation and counters.
func Deployment(namespace, name string, annotation api.Revision, replicas, updated, ready int32) api.Deployment {
	d := api.Deployment{
		Namespace:       namespace,
		Name:            name,
		Annotations:     map[string]string{},
		Replicas:        replicas,
		UpdatedReplicas: updated,
		ReadyReplicas:   ready,
	}
	if annotation.IsSet() {
		d.Annotations[api.AppliedVersionAnnotation] = string(annotation)
	}
	return d
}
