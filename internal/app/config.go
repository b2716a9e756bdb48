package app

import (
	"k8s.io/client-go/rest"
	ctrlmetrics "sigs.k8s.io/controller-runtime/pkg/metrics"

	"git-sync-operator/internal/config"
)

// Mode selects how much of the application is initialized.
type Mode int

const (
	// ModeServe runs the reconcile loop and the metrics server.
	ModeServe Mode = iota
	// ModeSync runs a single reconciliation pass.
	ModeSync
	// ModeStatus only reads the ledger; no clone and no notification sinks.
	ModeStatus
)

// Config holds the application configuration
type Config struct {
	Mode Mode

	// Debug forces debug logging regardless of LOG_LEVEL.
	Debug bool

	// ConfigPath is an optional YAML file with the same keys as the
	// environment. Environment variables take precedence.
	ConfigPath string

	// Settings skips configuration loading when set.
	Settings *config.Config

	// RestConfig overrides kubeconfig discovery.
	RestConfig *rest.Config

	// Registry receives the collectors; defaults to the controller-runtime
	// registry, which also carries the client-go metrics.
	Registry ctrlmetrics.RegistererGatherer
}

// NewConfig creates a new application configuration
func NewConfig(mode Mode, debug bool, configPath string) *Config {
	return &Config{
		Mode:       mode,
		Debug:      debug,
		ConfigPath: configPath,
	}
}
