package notify

import (
	"context"
	"fmt"
	"time"

	"git-sync-operator/internal/api"
	"git-sync-operator/pkg/logging"
)

const (
	subsystem = "Notify"

	// DefaultSinkTimeout bounds a single sink call.
	DefaultSinkTimeout = 10 * time.Second
)

// Sink delivers a deployment event to one external system.
type Sink interface {
	Name() string
	Send(ctx context.Context, event api.DeploymentEvent) error
}

// Notifier fans a deployment event out to every configured sink. A failing
// or panicking sink is logged and never affects the others or the caller.
type Notifier struct {
	sinks     []Sink
	timeout   time.Duration
	onFailure func(sink string)
}

// Option configures a Notifier.
type Option func(*Notifier)

// WithSinkTimeout overrides DefaultSinkTimeout.
func WithSinkTimeout(d time.Duration) Option {
	return func(n *Notifier) { n.timeout = d }
}

// WithFailureHook registers a callback invoked with the sink name whenever
// a sink fails.
func WithFailureHook(fn func(sink string)) Option {
	return func(n *Notifier) { n.onFailure = fn }
}

func New(sinks []Sink, opts ...Option) *Notifier {
	n := &Notifier{
		sinks:   sinks,
		timeout: DefaultSinkTimeout,
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Sinks returns the names of the configured sinks in delivery order.
func (n *Notifier) Sinks() []string {
	names := make([]string, 0, len(n.sinks))
	for _, s := range n.sinks {
		names = append(names, s.Name())
	}
	return names
}

// Notify delivers event to every sink in order.
func (n *Notifier) Notify(ctx context.Context, event api.DeploymentEvent) {
	for _, s := range n.sinks {
		if err := n.send(ctx, s, event); err != nil {
			logging.Error(subsystem, err, "Sink %s failed for %s/%s at %s", s.Name(), event.Namespace, event.Deployment, event.Revision)
			if n.onFailure != nil {
				n.onFailure(s.Name())
			}
		}
	}
}

func (n *Notifier) send(ctx context.Context, s Sink, event api.DeploymentEvent) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("sink %s panicked: %v", s.Name(), r)
		}
	}()

	if n.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, n.timeout)
		defer cancel()
	}
	return s.Send(ctx, event)
}
