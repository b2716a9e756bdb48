package app

import (
	"context"
	"fmt"

	"k8s.io/client-go/rest"
	"k8s.io/client-go/tools/record"
	ctrl "sigs.k8s.io/controller-runtime"
	ctrlmetrics "sigs.k8s.io/controller-runtime/pkg/metrics"

	"git-sync-operator/internal/config"
	"git-sync-operator/internal/gateway"
	"git-sync-operator/internal/ledger"
	"git-sync-operator/internal/metrics"
	"git-sync-operator/internal/mirror"
	"git-sync-operator/internal/notify"
	"git-sync-operator/internal/reconciler"
	"git-sync-operator/internal/rollout"
	"git-sync-operator/pkg/logging"
)

const eventComponent = "git-sync-operator"

// Services holds every initialized component. Fields beyond Gateway and
// Ledger are nil in ModeStatus.
type Services struct {
	Settings config.Config

	Gateway *gateway.Gateway
	Ledger  *ledger.Ledger

	Mirror     *mirror.Mirror
	Metrics    *metrics.Metrics
	Registry   ctrlmetrics.RegistererGatherer
	Notifier   *notify.Notifier
	Watcher    *rollout.Watcher
	Reconciler *reconciler.Reconciler

	cleanup []func()
}

// sinkFactories builds the clients behind the optional sinks.
type sinkFactories struct {
	s3       func(ctx context.Context) (notify.PutObjectAPI, error)
	recorder func() (record.EventRecorder, func(), error)
}

// InitializeServices wires the components for cfg.Mode.
//
// Initialization order:
//  1. Kubernetes client, gateway and ledger
//  2. Metrics collectors
//  3. Notification sinks and notifier
//  4. Repository mirror (initial clone)
//  5. Rollout watcher and reconciler
func InitializeServices(ctx context.Context, cfg *Config) (*Services, error) {
	settings := *cfg.Settings

	restConfig := cfg.RestConfig
	if restConfig == nil {
		var err error
		restConfig, err = ctrl.GetConfig()
		if err != nil {
			return nil, fmt.Errorf("failed to load kubeconfig: %w", err)
		}
	}

	c, err := gateway.NewClient(restConfig)
	if err != nil {
		return nil, err
	}
	gw := gateway.New(c, settings.FieldManager)
	s := &Services{
		Settings: settings,
		Gateway:  gw,
		Ledger:   ledger.New(gw),
	}
	if cfg.Mode == ModeStatus {
		return s, nil
	}

	s.Registry = cfg.Registry
	if s.Registry == nil {
		s.Registry = ctrlmetrics.Registry
	}
	s.Metrics = metrics.New(s.Registry)

	sinks, cleanup, err := buildSinks(ctx, settings, s.Metrics, defaultSinkFactories(restConfig))
	if err != nil {
		return nil, err
	}
	s.cleanup = cleanup
	s.Notifier = notify.New(sinks, notify.WithFailureHook(s.Metrics.RecordNotifyFailure))
	logging.Info("Bootstrap", "Notification sinks: %v", s.Notifier.Sinks())

	s.Mirror, err = mirror.Open(ctx, mirror.Options{
		URL:    settings.Repo,
		Dir:    settings.Dir,
		Branch: settings.Branch,
	})
	if err != nil {
		s.Close()
		return nil, err
	}

	s.Watcher = rollout.NewWatcher(s.Ledger, gw, s.Notifier, rollout.WithClusterName(settings.ClusterName))
	s.Reconciler = reconciler.New(reconciler.Config{
		Namespaces:  settings.ManagedNamespaces,
		ClusterName: settings.ClusterName,
		Interval:    settings.Interval,
	}, reconciler.Dependencies{
		Mirror:  s.Mirror,
		Ledger:  s.Ledger,
		Applier: gw,
		Watcher: s.Watcher,
		Metrics: s.Metrics,
	})
	return s, nil
}

// Close releases background resources such as the event broadcaster.
func (s *Services) Close() {
	for _, fn := range s.cleanup {
		fn()
	}
	s.cleanup = nil
}

func defaultSinkFactories(restConfig *rest.Config) sinkFactories {
	return sinkFactories{
		s3: func(ctx context.Context) (notify.PutObjectAPI, error) {
			return notify.NewS3Client(ctx)
		},
		recorder: func() (record.EventRecorder, func(), error) {
			return notify.NewEventRecorder(restConfig, gateway.NewScheme(), eventComponent)
		},
	}
}

// buildSinks returns the sinks enabled by settings in delivery order: log,
// metrics, Kubernetes events, S3 audit, webhook.
func buildSinks(ctx context.Context, settings config.Config, m *metrics.Metrics, factories sinkFactories) (sinks []notify.Sink, cleanup []func(), err error) {
	defer func() {
		if err != nil {
			for _, fn := range cleanup {
				fn()
			}
			sinks, cleanup = nil, nil
		}
	}()

	sinks = []notify.Sink{notify.LogSink{}, notify.NewMetricsSink(m)}

	if settings.KubeEvents {
		recorder, stop, err := factories.recorder()
		if err != nil {
			return nil, nil, err
		}
		sinks = append(sinks, notify.NewEventSink(recorder))
		cleanup = append(cleanup, stop)
	}

	if settings.AuditEnabled() {
		client, err := factories.s3(ctx)
		if err != nil {
			return sinks, cleanup, err
		}
		sinks = append(sinks, notify.NewS3Sink(client, settings.S3Bucket))
	}

	if settings.WebhookURL != "" {
		webhook, err := notify.NewWebhookSink(settings.WebhookURL, settings.WebhookTemplate)
		if err != nil {
			return sinks, cleanup, err
		}
		sinks = append(sinks, webhook)
	}

	return sinks, cleanup, nil
}
