package resource

import (
	"fmt"

	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime/schema"
)

// Identity is the canonical identity of a cluster object. Two objects refer to
// the same resource iff their identities are equal, regardless of spec contents.
// Cluster-scoped resources have an empty Namespace.
type Identity struct {
	Group     string
	Version   string
	Kind      string
	Name      string
	Namespace string
}

// IdentityOf derives the identity from object metadata alone, without
// contacting the cluster.
func IdentityOf(obj *unstructured.Unstructured) Identity {
	gvk := obj.GroupVersionKind()
	return Identity{
		Group:     gvk.Group,
		Version:   gvk.Version,
		Kind:      gvk.Kind,
		Name:      obj.GetName(),
		Namespace: obj.GetNamespace(),
	}
}

func (i Identity) GroupVersionKind() schema.GroupVersionKind {
	return schema.GroupVersionKind{Group: i.Group, Version: i.Version, Kind: i.Kind}
}

func (i Identity) String() string {
	if i.Namespace == "" {
		return fmt.Sprintf("%s/%s %s", i.GroupVersionKind().GroupVersion(), i.Kind, i.Name)
	}
	return fmt.Sprintf("%s/%s %s/%s", i.GroupVersionKind().GroupVersion(), i.Kind, i.Namespace, i.Name)
}
