// Package ledger implements the version ledger: a per-namespace and
// per-deployment record of the applied and deployed revisions.
//
// Records are Version resources in the cluster. The ledger never caches
// them; each pass re-reads the durable state, so a transient read failure
// in one pass cannot leave stale memory behind for the next.
package ledger
