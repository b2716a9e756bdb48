// Package mock provides in-memory test doubles for git-sync-operator
// components: a Cluster implementing the gateway surface with failure
// injection and call recording, a repository Mirror at a settable
// revision, a recording Notifier and a controllable Clock.
package mock
