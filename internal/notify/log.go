package notify

import (
	"context"

	"git-sync-operator/internal/api"
	"git-sync-operator/pkg/logging"
)

// LogSink writes one structured log line per event.
type LogSink struct{}

func (LogSink) Name() string { return "log" }

func (LogSink) Send(_ context.Context, event api.DeploymentEvent) error {
	logging.For(subsystem).
		With("namespace", event.Namespace).
		With("deployment", event.Deployment).
		With("revision", event.Revision.String()).
		Info("Deployment %s/%s finished rolling out %s", event.Namespace, event.Deployment, event.Revision)
	return nil
}
