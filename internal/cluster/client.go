// Package cluster defines the capability boundary towards the Kubernetes API
// server. The engine only ever talks to a Client; the concrete implementation
// wraps a controller-runtime client and uses server-side apply.
package cluster

import (
	"context"

	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime/schema"
	"k8s.io/apimachinery/pkg/types"
	"sigs.k8s.io/controller-runtime/pkg/client"
)

// Client is the consumed cluster capability. API failures surface as
// apimachinery StatusErrors so callers can discriminate on the HTTP code
// (403, 404 and 409 carry distinct recovery semantics).
type Client interface {
	// Get fetches a single object. An empty namespace addresses
	// cluster-scoped resources.
	Get(ctx context.Context, gvk schema.GroupVersionKind, name, namespace string) (*unstructured.Unstructured, error)

	// List returns all objects of the given kind matching the label
	// selector. An empty namespace means all namespaces for namespaced
	// kinds, and is the only valid value for cluster-scoped kinds.
	List(ctx context.Context, gvk schema.GroupVersionKind, namespace string, selector map[string]string) ([]unstructured.Unstructured, error)

	// Apply performs a server-side apply under the given field manager.
	// With force set, fields owned by other managers are reacquired.
	Apply(ctx context.Context, obj *unstructured.Unstructured, namespace, fieldManager string, force bool) (*unstructured.Unstructured, error)

	// Delete removes the named object.
	Delete(ctx context.Context, gvk schema.GroupVersionKind, name, namespace string) error
}

type clusterClient struct {
	client client.Client
}

// New wraps a controller-runtime client in the Client capability.
func New(c client.Client) Client {
	return &clusterClient{client: c}
}

func (c *clusterClient) Get(ctx context.Context, gvk schema.GroupVersionKind, name, namespace string) (*unstructured.Unstructured, error) {
	obj := &unstructured.Unstructured{}
	obj.SetGroupVersionKind(gvk)
	key := types.NamespacedName{Name: name, Namespace: namespace}
	if err := c.client.Get(ctx, key, obj); err != nil {
		return nil, err
	}
	return obj, nil
}

func (c *clusterClient) List(ctx context.Context, gvk schema.GroupVersionKind, namespace string, selector map[string]string) ([]unstructured.Unstructured, error) {
	list := &unstructured.UnstructuredList{}
	list.SetGroupVersionKind(gvk.GroupVersion().WithKind(gvk.Kind + "List"))

	opts := []client.ListOption{client.MatchingLabels(selector)}
	if namespace != "" {
		opts = append(opts, client.InNamespace(namespace))
	}
	if err := c.client.List(ctx, list, opts...); err != nil {
		return nil, err
	}
	return list.Items, nil
}

func (c *clusterClient) Apply(ctx context.Context, obj *unstructured.Unstructured, namespace, fieldManager string, force bool) (*unstructured.Unstructured, error) {
	applied := obj.DeepCopy()
	applied.SetNamespace(namespace)
	// Server-side apply is a patch of the full intent; the server merges
	// fields by owner.
	opts := []client.PatchOption{client.FieldOwner(fieldManager)}
	if force {
		opts = append(opts, client.ForceOwnership)
	}
	if err := c.client.Patch(ctx, applied, client.Apply, opts...); err != nil {
		return nil, err
	}
	return applied, nil
}

func (c *clusterClient) Delete(ctx context.Context, gvk schema.GroupVersionKind, name, namespace string) error {
	obj := &unstructured.Unstructured{}
	obj.SetGroupVersionKind(gvk)
	obj.SetName(name)
	obj.SetNamespace(namespace)
	return c.client.Delete(ctx, obj)
}
