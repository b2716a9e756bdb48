// Package rollout tracks deployment rollouts against a target revision.
//
// Each deployment moves through three states:
//
//	Stale       applied-version annotation differs from the target
//	RollingOut  annotation matches, replicas not all updated and ready
//	Deployed    annotation matches and updated == replicas == ready > 0
//
// A Stale deployment is annotated, which restarts its pods, and nothing
// else happens to it in that pass. A scaled-to-zero deployment never
// reaches Deployed.
package rollout
