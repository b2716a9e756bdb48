package app

import (
	"context"
	"fmt"
	"os"

	"git-sync-operator/internal/api"
	"git-sync-operator/internal/config"
	"git-sync-operator/internal/reconciler"
	"git-sync-operator/pkg/logging"
)

// Application bootstraps and runs git-sync-operator.
//
// The Application follows a two-phase initialization pattern:
//  1. Bootstrap phase: load configuration, initialize logging, wire services
//  2. Execution phase: run the reconcile loop, a single pass, or a status read
//
// Example usage:
//
//	application, err := app.NewApplication(ctx, app.NewConfig(app.ModeServe, false, ""))
//	if err != nil {
//	    return fmt.Errorf("failed to create application: %w", err)
//	}
//	defer application.Close()
//	return application.Run(ctx)
type Application struct {
	config   *Config
	services *Services
}

// NewApplication loads configuration, initializes logging and wires the
// services for cfg.Mode. An invalid configuration, an unreachable
// kubeconfig or a failed initial clone are returned as errors.
func NewApplication(ctx context.Context, cfg *Config) (*Application, error) {
	bootLevel := logging.LevelInfo
	if cfg.Debug {
		bootLevel = logging.LevelDebug
	}
	logging.InitForCLI(bootLevel, os.Stderr)

	if cfg.Settings == nil {
		settings, err := config.Load(cfg.ConfigPath, os.LookupEnv)
		if err != nil {
			logging.Error("Bootstrap", err, "Failed to load configuration")
			return nil, fmt.Errorf("failed to load configuration: %w", err)
		}
		cfg.Settings = &settings
	}

	initLogging(cfg)
	logging.Info("Bootstrap", "Managing namespaces %v from %s (branch %s)", cfg.Settings.ManagedNamespaces, cfg.Settings.Repo, cfg.Settings.Branch)

	services, err := InitializeServices(ctx, cfg)
	if err != nil {
		logging.Error("Bootstrap", err, "Failed to initialize services")
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	return &Application{config: cfg, services: services}, nil
}

func initLogging(cfg *Config) {
	level, ok := logging.ParseLevel(cfg.Settings.LogLevel)
	if cfg.Debug {
		level, ok = logging.LevelDebug, true
	}
	logging.Init(level, logging.Format(cfg.Settings.LogFormat), os.Stderr)
	if !ok {
		logging.Warn("Bootstrap", "Unknown log level %q, using %s", cfg.Settings.LogLevel, level)
	}
}

// Services exposes the wired components.
func (a *Application) Services() *Services {
	return a.services
}

// Close releases background resources.
func (a *Application) Close() {
	a.services.Close()
}

// Run executes the reconcile loop until ctx is canceled or a termination
// signal arrives.
func (a *Application) Run(ctx context.Context) error {
	return runServe(ctx, a.services)
}

// RunOnce executes a single pass. The error lists failed namespaces.
func (a *Application) RunOnce(ctx context.Context) (reconciler.PassResult, error) {
	return runSync(ctx, a.services)
}

// NamespaceStatus is the ledger content of one managed namespace.
type NamespaceStatus struct {
	Namespace string
	Records   []api.VersionRecord
	Err       error
}

// Status reads the ledger of every managed namespace.
func (a *Application) Status(ctx context.Context) []NamespaceStatus {
	return readStatus(ctx, a.services)
}
