// Package api holds the types shared by every git-sync-operator component:
// revisions, ledger records, the typed Deployment view and the error
// taxonomy used across the cluster and repository boundaries.
//
// Nothing in this package performs I/O. The gateway decodes cluster
// responses into these types so that the reconciliation logic never touches
// untyped maps.
package api
