// Package reconciler drives the reconcile loop.
//
// Each pass refreshes the repository mirror once, then for every managed
// namespace compares the latest revision to the applied revision stored in
// the ledger. A stale namespace gets its manifest directories applied
//
//	<dir>/<namespace>
//	<dir>/<cluster>/<namespace>   (when a cluster name is configured)
//
// and the ledger is advanced once at least one directory applied cleanly.
// The rollout watcher then runs for the namespace regardless, so rollouts
// started in earlier passes keep progressing.
//
// Errors and panics are contained per namespace: they are logged, counted
// and retried on the next pass.
//
// Example usage:
//
//	r := reconciler.New(reconciler.Config{
//	    Namespaces: cfg.ManagedNamespaces,
//	    Interval:   cfg.Interval,
//	}, reconciler.Dependencies{
//	    Mirror:  m,
//	    Ledger:  ledger.New(gw),
//	    Applier: gw,
//	    Watcher: watcher,
//	})
//	err := r.Run(ctx)
package reconciler
