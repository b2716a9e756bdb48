// Package mirror keeps a local working copy of the source-of-truth
// repository and reports its latest revision.
//
// The mirror is pull-only. Every Refresh fetches the tracked branch and
// hard-resets the working tree to the fetched head, so merge conflicts and
// local edits cannot occur. Revisions are 7-character abbreviated commit
// hashes.
package mirror
