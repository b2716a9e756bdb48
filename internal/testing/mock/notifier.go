package mock

import (
	"context"
	"sync"

	"git-sync-operator/internal/api"
)

// Notifier records every deployment event it receives.
type Notifier struct {
	mu     sync.Mutex
	events []api.DeploymentEvent
}

func (n *Notifier) Notify(ctx context.Context, event api.DeploymentEvent) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, event)
}

// Events returns a copy of the recorded events.
func (n *Notifier) Events() []api.DeploymentEvent {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]api.DeploymentEvent(nil), n.events...)
}
