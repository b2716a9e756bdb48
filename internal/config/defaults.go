package config

import "time"

const (
	DefaultDir          = "/tmp/config"
	DefaultBranch       = "master"
	DefaultInterval     = 60 * time.Second
	DefaultMetricsAddr  = ":8080"
	DefaultLogLevel     = "info"
	DefaultLogFormat    = "text"
	DefaultFieldManager = "git-sync-operator"

	DefaultWebhookTemplate = `{"text": {{ printf "%s/%s deployed %s on %s" .Namespace .Deployment .Revision (default "unknown cluster" .Cluster) | toJson }}}`
)

// defaultValues returns the raw key/value defaults applied before the file
// and the environment.
func defaultValues() map[string]string {
	return map[string]string{
		KeyDir:             DefaultDir,
		KeyBranch:          DefaultBranch,
		KeyInterval:        "60",
		KeyMetricsAddr:     DefaultMetricsAddr,
		KeyLogLevel:        DefaultLogLevel,
		KeyLogFormat:       DefaultLogFormat,
		KeyFieldManager:    DefaultFieldManager,
		KeyKubeEvents:      "true",
		KeyWebhookTemplate: DefaultWebhookTemplate,
	}
}
