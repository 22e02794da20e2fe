// Package clustertest provides an in-memory recording fake of the cluster
// client boundary for unit tests.
package clustertest

import (
	"context"
	"fmt"
	"sort"

	apierrors "k8s.io/apimachinery/pkg/api/errors"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime/schema"

	"github.com/nais/konvergator/internal/cluster"
	"github.com/nais/konvergator/internal/resource"
)

// Call records one invocation against the fake.
type Call struct {
	Method   string
	Resource resource.Identity
}

// Fake implements cluster.Client against an in-memory object store, recording
// every call. Per-method error hooks simulate API failures.
type Fake struct {
	Objects map[resource.Identity]*unstructured.Unstructured

	GetErr    func(id resource.Identity) error
	ListErr   func(gvk schema.GroupVersionKind) error
	ApplyErr  func(obj *unstructured.Unstructured) error
	DeleteErr func(id resource.Identity) error

	Calls   []Call
	Applied []*unstructured.Unstructured
	Deleted []resource.Identity
}

var _ cluster.Client = &Fake{}

func NewFake(objects ...*unstructured.Unstructured) *Fake {
	f := &Fake{Objects: map[resource.Identity]*unstructured.Unstructured{}}
	for _, obj := range objects {
		f.Objects[resource.IdentityOf(obj)] = obj
	}
	return f
}

func (f *Fake) Get(ctx context.Context, gvk schema.GroupVersionKind, name, namespace string) (*unstructured.Unstructured, error) {
	id := resource.Identity{Group: gvk.Group, Version: gvk.Version, Kind: gvk.Kind, Name: name, Namespace: namespace}
	f.Calls = append(f.Calls, Call{Method: "get", Resource: id})
	if f.GetErr != nil {
		if err := f.GetErr(id); err != nil {
			return nil, err
		}
	}
	obj, found := f.Objects[id]
	if !found {
		return nil, notFound(gvk, name)
	}
	return obj, nil
}

func (f *Fake) List(ctx context.Context, gvk schema.GroupVersionKind, namespace string, selector map[string]string) ([]unstructured.Unstructured, error) {
	f.Calls = append(f.Calls, Call{Method: "list", Resource: resource.Identity{Group: gvk.Group, Version: gvk.Version, Kind: gvk.Kind, Namespace: namespace}})
	if f.ListErr != nil {
		if err := f.ListErr(gvk); err != nil {
			return nil, err
		}
	}

	var items []unstructured.Unstructured
	for id, obj := range f.Objects {
		if id.GroupVersionKind() != gvk {
			continue
		}
		if namespace != "" && id.Namespace != namespace {
			continue
		}
		if !matches(obj, selector) {
			continue
		}
		items = append(items, *obj)
	}
	// Map iteration order is random; keep results stable across runs.
	sort.Slice(items, func(i, j int) bool {
		return resource.IdentityOf(&items[i]).String() < resource.IdentityOf(&items[j]).String()
	})
	return items, nil
}

func (f *Fake) Apply(ctx context.Context, obj *unstructured.Unstructured, namespace, fieldManager string, force bool) (*unstructured.Unstructured, error) {
	applied := obj.DeepCopy()
	applied.SetNamespace(namespace)
	id := resource.IdentityOf(applied)
	f.Calls = append(f.Calls, Call{Method: "apply", Resource: id})
	if f.ApplyErr != nil {
		if err := f.ApplyErr(applied); err != nil {
			return nil, err
		}
	}
	f.Objects[id] = applied
	f.Applied = append(f.Applied, applied)
	return applied, nil
}

func (f *Fake) Delete(ctx context.Context, gvk schema.GroupVersionKind, name, namespace string) error {
	id := resource.Identity{Group: gvk.Group, Version: gvk.Version, Kind: gvk.Kind, Name: name, Namespace: namespace}
	f.Calls = append(f.Calls, Call{Method: "delete", Resource: id})
	if f.DeleteErr != nil {
		if err := f.DeleteErr(id); err != nil {
			return err
		}
	}
	if _, found := f.Objects[id]; !found {
		return notFound(gvk, name)
	}
	delete(f.Objects, id)
	f.Deleted = append(f.Deleted, id)
	return nil
}

// CallsTo returns the recorded calls for one method.
func (f *Fake) CallsTo(method string) []Call {
	var out []Call
	for _, c := range f.Calls {
		if c.Method == method {
			out = append(out, c)
		}
	}
	return out
}

func notFound(gvk schema.GroupVersionKind, name string) error {
	gr := schema.GroupResource{Group: gvk.Group, Resource: fmt.Sprintf("%ss", gvk.Kind)}
	return apierrors.NewNotFound(gr, name)
}

func matches(obj *unstructured.Unstructured, selector map[string]string) bool {
	labels := obj.GetLabels()
	for k, v := range selector {
		if labels[k] != v {
			return false
		}
	}
	return true
}
