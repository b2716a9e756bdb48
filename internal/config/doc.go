// Package config loads the git-sync-operator configuration.
//
// Configuration is environment driven. Every key has a default except
// CONFIG_REPO and MANAGED_NAMESPACES:
//
//	CONFIG_REPO         source repository location (required)
//	CONFIG_DIR          local working copy, default /tmp/config
//	CONFIG_BRANCH       tracked branch, default master
//	GIT_SYNC_INTERVAL   seconds between passes, default 60
//	MANAGED_NAMESPACES  comma-separated namespaces (required)
//	S3_BUCKET           audit bucket, needs CLUSTER_NAME
//	CLUSTER_NAME        cluster overlay directory and audit key prefix
//	NOTIFY_WEBHOOK_URL  chat/webhook notification endpoint
//	NOTIFY_TEMPLATE     webhook body template (sprig functions available)
//	METRICS_ADDR        /metrics and /healthz listen address, default :8080
//	LOG_LEVEL           debug, info, warn or error
//	LOG_FORMAT          text or json
//	FIELD_MANAGER       server-side apply field manager prefix
//	KUBE_EVENTS         emit Kubernetes Events on completed rollouts
//
// An optional YAML file with the same keys may be given; the environment
// overrides it. The resulting Config is immutable for the process lifetime.
package config
