package engine

import (
	"context"
	"fmt"

	apierrors "k8s.io/apimachinery/pkg/api/errors"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	utilerrors "k8s.io/apimachinery/pkg/util/errors"
	logf "sigs.k8s.io/controller-runtime/pkg/log"

	"github.com/nais/konvergator/internal/cluster"
	"github.com/nais/konvergator/internal/resource"
	"github.com/nais/konvergator/internal/resource/order"
)

// ApplyAll server-side-applies the resources in apply order and returns the
// applied objects in that order. It aborts on the first failure: a partial
// apply left half-finished needs an operator's eyes, unlike a partial delete.
func ApplyAll(ctx context.Context, c cluster.Client, resources []*unstructured.Unstructured, fieldManager string, force bool) ([]*unstructured.Unstructured, error) {
	log := logf.FromContext(ctx)

	sorted := order.Sort(resources, false)
	applied := make([]*unstructured.Unstructured, 0, len(sorted))
	for _, res := range sorted {
		id := resource.IdentityOf(res)
		namespace, err := targetNamespace(res)
		if err != nil {
			return applied, err
		}

		log.Info("applying resource", "resource", id.String())
		out, err := c.Apply(ctx, res, namespace, fieldManager, force)
		if err != nil {
			switch {
			case apierrors.IsForbidden(err):
				return applied, &PermissionError{Resource: id, err: err}
			case apierrors.IsConflict(err):
				return applied, &ConflictError{Resource: id, err: err}
			default:
				return applied, fmt.Errorf("applying %s: %w", id.String(), err)
			}
		}
		applied = append(applied, out)
	}
	return applied, nil
}

// DeleteAll removes the resources in reverse apply order, best effort: every
// resource is attempted regardless of earlier failures, and the collected
// failures come back as one aggregate error. With ignoreMissing set, 404s
// count as success.
func DeleteAll(ctx context.Context, c cluster.Client, resources []*unstructured.Unstructured, ignoreMissing bool) error {
	log := logf.FromContext(ctx)

	var errs []error
	for _, res := range order.Sort(resources, true) {
		id := resource.IdentityOf(res)
		log.Info("deleting resource", "resource", id.String())
		err := c.Delete(ctx, id.GroupVersionKind(), id.Name, id.Namespace)
		if err != nil {
			if ignoreMissing && apierrors.IsNotFound(err) {
				continue
			}
			errs = append(errs, fmt.Errorf("deleting %s: %w", id.String(), err))
		}
	}
	return utilerrors.NewAggregate(errs)
}

// targetNamespace determines which namespace an apply must address: none for
// cluster-scoped kinds, the object's own for namespaced kinds. Kinds outside
// both tables cannot be applied.
func targetNamespace(obj *unstructured.Unstructured) (string, error) {
	gk := obj.GroupVersionKind().GroupKind()
	switch resource.ScopeFor(gk) {
	case resource.ScopeCluster:
		return "", nil
	case resource.ScopeNamespaced:
		namespace := obj.GetNamespace()
		if namespace == "" {
			return "", validationErrorf("namespaced kind %q rendered without a namespace: %s", gk.String(), obj.GetName())
		}
		return namespace, nil
	default:
		return "", validationErrorf("kind %q is neither a recognized namespaced nor cluster-scoped kind", gk.String())
	}
}
