package rollout

import "git-sync-operator/internal/api"

// State is the rollout state of one deployment against a target revision.
type State int

const (
	// StateStale means the deployment is not yet annotated with the target.
	StateStale State = iota
	// StateRollingOut means the annotation matches but replicas are not all
	// updated and ready, the controller has not observed the latest
	// generation, or the deployment is scaled to zero.
	StateRollingOut
	// StateDeployed means the annotation matches and every replica is
	// updated and ready.
	StateDeployed
)

func (s State) String() string {
	switch s {
	case StateStale:
		return "Stale"
	case StateRollingOut:
		return "RollingOut"
	case StateDeployed:
		return "Deployed"
	default:
		return "Unknown"
	}
}

// Classify evaluates d against target. Replica health is only considered
// once the annotation matches.
func Classify(d api.Deployment, target api.Revision) State {
	if d.AppliedVersion() != target {
		return StateStale
	}
	if !d.Healthy() {
		return StateRollingOut
	}
	return StateDeployed
}
