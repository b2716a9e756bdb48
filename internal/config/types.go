package config

import "time"

// Environment keys. The optional configuration file uses the same keys.
const (
	KeyRepo              = "CONFIG_REPO"
	KeyDir               = "CONFIG_DIR"
	KeyBranch            = "CONFIG_BRANCH"
	KeyInterval          = "GIT_SYNC_INTERVAL"
	KeyManagedNamespaces = "MANAGED_NAMESPACES"
	KeyS3Bucket          = "S3_BUCKET"
	KeyClusterName       = "CLUSTER_NAME"
	KeyWebhookURL        = "NOTIFY_WEBHOOK_URL"
	KeyWebhookTemplate   = "NOTIFY_TEMPLATE"
	KeyMetricsAddr       = "METRICS_ADDR"
	KeyLogLevel          = "LOG_LEVEL"
	KeyLogFormat         = "LOG_FORMAT"
	KeyFieldManager      = "FIELD_MANAGER"
	KeyKubeEvents        = "KUBE_EVENTS"
)

// Keys lists every recognised configuration key.
var Keys = []string{
	KeyRepo, KeyDir, KeyBranch, KeyInterval, KeyManagedNamespaces,
	KeyS3Bucket, KeyClusterName, KeyWebhookURL, KeyWebhookTemplate,
	KeyMetricsAddr, KeyLogLevel, KeyLogFormat, KeyFieldManager, KeyKubeEvents,
}

// Config is the process configuration. It is built once at startup and
// passed by value into every component constructor.
type Config struct {
	// Repo is the location of the source-of-truth repository.
	Repo string
	// Dir is the local working copy path.
	Dir string
	// Branch is the branch tracked in Repo.
	Branch string
	// Interval is the sleep between reconciliation passes.
	Interval time.Duration
	// ManagedNamespaces is the fixed set of namespaces to reconcile, in order.
	ManagedNamespaces []string

	// S3Bucket enables the audit sink together with ClusterName.
	S3Bucket string
	// ClusterName prefixes the cluster overlay directory and audit keys.
	ClusterName string

	// WebhookURL enables the chat/webhook sink.
	WebhookURL string
	// WebhookTemplate is the text/template body for webhook messages.
	WebhookTemplate string

	// MetricsAddr is the listen address of /metrics and /healthz. Empty disables it.
	MetricsAddr string

	LogLevel  string
	LogFormat string

	// FieldManager prefixes the server-side apply field managers.
	FieldManager string

	// KubeEvents enables emitting Kubernetes Events on completed rollouts.
	KubeEvents bool
}

// AuditEnabled reports whether the object-storage audit sink is active.
func (c Config) AuditEnabled() bool {
	return c.S3Bucket != "" && c.ClusterName != ""
}
