// Package v1 contains the API schema for the Version ledger resource.
//
// # API Group: mozilla.org/v1
//
// ## Version
//
// Version records which repository revision has been applied to a namespace
// and which revision a deployment has fully rolled out. Namespace-level
// records are named after the namespace, deployment-level records after the
// deployment. Both live in the namespace they describe.
//
// Example:
//
//	apiVersion: mozilla.org/v1
//	kind: Version
//	metadata:
//	  name: payments
//	  namespace: payments
//	applied: abc123f
//	deployed: abc123f
//
// +kubebuilder:object:generate=true
// +groupName=mozilla.org
package v1
