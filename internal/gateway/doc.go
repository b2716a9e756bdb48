// Package gateway is the cluster boundary of git-sync-operator.
//
// It decodes API responses into the typed records of package api and
// turns every client failure into an api.TransientError, so callers can
// tell "skip and retry next pass" apart from "the resource is absent"
// (api.ErrNotFound).
//
// Writes are declarative: Version ledger documents and repository
// manifests are server-side applied with forced ownership; the rollout
// annotation is a JSON merge patch.
package gateway
