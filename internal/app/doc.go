// Package app bootstraps git-sync-operator.
//
// It loads configuration, initializes logging, builds the Kubernetes
// client and wires the gateway, ledger, mirror, notifier, rollout watcher
// and reconciler. Three modes share the bootstrap:
//
//   - ModeServe runs the reconcile loop next to the metrics server under
//     one errgroup; SIGINT/SIGTERM cancel both.
//   - ModeSync runs a single pass and returns the failed namespaces.
//   - ModeStatus only wires the ledger and reads it.
package app
