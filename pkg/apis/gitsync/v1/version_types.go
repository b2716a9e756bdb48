package v1

import (
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

// VersionKind is the kind name of the ledger resource.
const VersionKind = "Version"

// +kubebuilder:object:root=true
// +kubebuilder:resource:shortName=ver
// +kubebuilder:printcolumn:name="Applied",type=string,JSONPath=`.applied`
// +kubebuilder:printcolumn:name="Deployed",type=string,JSONPath=`.deployed`

// Version is the Schema for the versions API.
//
// The revision fields sit at the top level of the object, not under spec,
// so the records stay readable with a plain `kubectl get versions -o yaml`.
type Version struct {
	metav1.TypeMeta   `json:",inline"`
	metav1.ObjectMeta `json:"metadata,omitempty"`

	// Applied is the repository revision whose manifests were last applied.
	// +optional
	Applied string `json:"applied,omitempty"`

	// Deployed is the repository revision the deployment has fully rolled out.
	// +optional
	Deployed string `json:"deployed,omitempty"`
}

// +kubebuilder:object:root=true

// VersionList contains a list of Version
type VersionList struct {
	metav1.TypeMeta `json:",inline"`
	metav1.ListMeta `json:"metadata,omitempty"`
	Items           []Version `json:"items"`
}

func init() {
	SchemeBuilder.Register(&Version{}, &VersionList{})
}
