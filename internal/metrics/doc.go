// Package metrics exposes Prometheus collectors for reconciliation passes,
// manifest applies, rollouts and notification failures, plus the HTTP
// handler serving /metrics and /healthz.
package metrics
