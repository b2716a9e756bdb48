// Package notify delivers deployment-completion events.
//
// A Notifier fans each event out to its sinks in order: a log line, an
// S3 audit object, a chat webhook, a Kubernetes Event on the Deployment
// and a Prometheus counter. Delivery is best-effort; sink failures are
// logged and reported through an optional hook but never surface to the
// rollout watcher.
package notify
