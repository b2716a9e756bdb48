// Package logging provides the structured, subsystem-tagged logger used by
// git-sync-operator.
//
// It is a thin layer over log/slog. Every entry carries a subsystem
// attribute so that output can be filtered per component:
//
//   - Bootstrap: configuration loading, initial clone, client setup
//   - Mirror: repository fetch and revision lookup
//   - Gateway: cluster reads, applies and annotation patches
//   - Ledger: Version record reads and writes
//   - Rollout: per-deployment rollout state transitions
//   - Reconciler: pass and namespace level progress
//   - Notify: notification fan-out and sink failures
//   - Metrics: the metrics/health HTTP endpoint
//
// # Usage
//
//	logging.Init(logging.LevelInfo, logging.FormatJSON, os.Stdout)
//
//	logging.Info("Mirror", "Fetched %s at %s", branch, rev)
//	logging.Error("Gateway", err, "Failed to list deployments in %s", ns)
//
// A Logger carries fixed attributes across several calls:
//
//	log := logging.For("Reconciler").With("pass", passID)
//	log.Info("Pass started")
//
// Timestamps are always written in UTC. Init also installs the handler as
// the controller-runtime logger.
package logging
