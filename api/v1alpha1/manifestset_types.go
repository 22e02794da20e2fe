package v1alpha1

import (
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/apimachinery/pkg/runtime/schema"
)

// ResourceKind names a Kubernetes kind a ManifestSet is permitted to manage.
type ResourceKind struct {
	// API group; empty for the core group.
	// +optional
	Group string `json:"group,omitempty"`
	// API version within the group.
	Version string `json:"version"`
	// Kind name.
	Kind string `json:"kind"`
}

func (k ResourceKind) GroupVersionKind() schema.GroupVersionKind {
	return schema.GroupVersionKind{Group: k.Group, Version: k.Version, Kind: k.Kind}
}

// ManifestSetSpec declares a set of templates to render and converge against
// the cluster.
type ManifestSetSpec struct {
	// Templates holds the manifest template sources, keyed by name.
	// Rendering order follows the sorted key order.
	Templates map[string]string `json:"templates"`

	// Values is the context passed to every template.
	// +optional
	// +kubebuilder:pruning:PreserveUnknownFields
	Values runtime.RawExtension `json:"values,omitempty"`

	// Labels are merged with the controller's ownership labels, injected
	// into every rendered resource and used to find managed resources
	// again.
	// +optional
	Labels map[string]string `json:"labels,omitempty"`

	// ResourceKinds is the closed set of kinds this set may manage.
	// Rendering a kind outside the set fails the reconciliation.
	ResourceKinds []ResourceKind `json:"resourceKinds"`
}

// ManifestSetStatus is the observed state of a ManifestSet.
type ManifestSetStatus struct {
	// +optional
	ObservedGeneration int64 `json:"observedGeneration,omitempty"`
	// +optional
	ReconcileTime *metav1.Time `json:"reconcileTime,omitempty"`
	// +optional
	ReconcilePhase string `json:"reconcilePhase,omitempty"`
	// Verdict is the aggregate health of the managed resources.
	// +optional
	Verdict string `json:"verdict,omitempty"`
	// Message elaborates on a non-active verdict.
	// +optional
	Message string `json:"message,omitempty"`
	// +optional
	Conditions []metav1.Condition `json:"conditions,omitempty"`
}

// +kubebuilder:object:root=true
// +kubebuilder:subresource:status
// +kubebuilder:printcolumn:name="Phase",type=string,JSONPath=`.status.reconcilePhase`
// +kubebuilder:printcolumn:name="Verdict",type=string,JSONPath=`.status.verdict`

// ManifestSet is a declarative set of templated cluster resources kept
// converged by the controller.
type ManifestSet struct {
	metav1.TypeMeta   `json:",inline"`
	metav1.ObjectMeta `json:"metadata,omitempty"`

	Spec   ManifestSetSpec   `json:"spec,omitempty"`
	Status ManifestSetStatus `json:"status,omitempty"`
}

// +kubebuilder:object:root=true

// ManifestSetList contains a list of ManifestSet.
type ManifestSetList struct {
	metav1.TypeMeta `json:",inline"`
	metav1.ListMeta `json:"metadata,omitempty"`
	Items           []ManifestSet `json:"items"`
}

func init() {
	SchemeBuilder.Register(&ManifestSet{}, &ManifestSetList{})
}
