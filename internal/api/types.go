package api

import (
	"fmt"
	"time"
)

// AppliedVersionAnnotation is the annotation key written on a Deployment
// with the revision it is expected to run.
const AppliedVersionAnnotation = "applied-version"

// Revision identifies a point-in-time state of the source repository.
// Only equality matters. The zero value means "unset" and never equals a
// real revision.
type Revision string

// IsSet reports whether r holds a real revision.
func (r Revision) IsSet() bool {
	return r != ""
}

func (r Revision) String() string {
	if r == "" {
		return "<unset>"
	}
	return string(r)
}

// VersionRecord is one ledger entry. Name is the namespace for
// namespace-level records and the deployment name for deployment-level
// records.
type VersionRecord struct {
	Name     string
	Applied  Revision
	Deployed Revision
}

// Deployment is the slice of a runtime Deployment the rollout logic reads.
type Deployment struct {
	Namespace   string
	Name        string
	Annotations map[string]string

	// Generation is metadata.generation; ObservedGeneration is the
	// generation the deployment controller last reported status for.
	Generation         int64
	ObservedGeneration int64

	Replicas        int32
	UpdatedReplicas int32
	ReadyReplicas   int32
}

// AppliedVersion returns the value of the applied-version annotation.
func (d Deployment) AppliedVersion() Revision {
	return Revision(d.Annotations[AppliedVersionAnnotation])
}

// Healthy reports whether every desired replica is updated and ready.
// A deployment scaled to zero is never healthy, and neither is one whose
// status predates its latest spec change.
func (d Deployment) Healthy() bool {
	return d.ObservedGeneration >= d.Generation &&
		d.UpdatedReplicas == d.Replicas &&
		d.Replicas == d.ReadyReplicas &&
		d.ReadyReplicas > 0
}

func (d Deployment) String() string {
	return fmt.Sprintf("%s/%s", d.Namespace, d.Name)
}

// ApplyResult describes the outcome of applying one manifest directory.
type ApplyResult struct {
	// Dir is the directory that was considered.
	Dir string

	// Found is false when the directory does not exist; nothing was applied
	// and that is not an error.
	Found bool

	// Applied lists "kind/name" for every object accepted by the cluster.
	Applied []string

	// Err is the decode or apply failure for the directory, if any. Objects
	// listed in Applied were still accepted.
	Err error
}

// Succeeded reports whether the directory was found, at least one object
// was applied and nothing failed.
func (r ApplyResult) Succeeded() bool {
	return r.Found && len(r.Applied) > 0 && r.Err == nil
}

// DeploymentEvent is emitted once when a deployment finishes rolling out a
// revision.
type DeploymentEvent struct {
	Cluster     string
	Namespace   string
	Deployment  string
	Revision    Revision
	CompletedAt time.Time
}
