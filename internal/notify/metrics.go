package notify

import (
	"context"

	"git-sync-operator/internal/api"
	"git-sync-operator/internal/metrics"
)

// MetricsSink counts completed deployments.
type MetricsSink struct {
	metrics *metrics.Metrics
}

func NewMetricsSink(m *metrics.Metrics) *MetricsSink {
	return &MetricsSink{metrics: m}
}

func (s *MetricsSink) Name() string { return "metrics" }

func (s *MetricsSink) Send(_ context.Context, event api.DeploymentEvent) error {
	s.metrics.RecordDeploymentCompleted(event.Namespace, event.Deployment)
	return nil
}
