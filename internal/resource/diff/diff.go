// Package diff computes desired-vs-existing set differences over resource
// identities. Only presence and absence is diffed; field-level reconciliation
// is delegated to server-side apply.
package diff

import (
	"github.com/go-logr/logr"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"

	"github.com/nais/konvergator/internal/resource"
)

// Changes holds the outcome of a diff. ToCreate lists desired resources
// absent from the cluster, ToDelete lists orphans present in the cluster but
// no longer desired. Both preserve the input order of their source list.
type Changes struct {
	ToCreate []*unstructured.Unstructured
	ToDelete []*unstructured.Unstructured
}

// Compute diffs the two lists keyed by resource identity in O(n+m).
// Duplicate identities within one list resolve last-write-wins; a warning is
// logged since colliding names usually point at a template bug.
func Compute(log logr.Logger, desired, existing []*unstructured.Unstructured) Changes {
	desiredIDs, desiredOrder := index(log, desired)
	existingIDs, existingOrder := index(log, existing)

	changes := Changes{}
	for _, id := range desiredOrder {
		if _, found := existingIDs[id]; !found {
			changes.ToCreate = append(changes.ToCreate, desiredIDs[id])
		}
	}
	for _, id := range existingOrder {
		if _, found := desiredIDs[id]; !found {
			changes.ToDelete = append(changes.ToDelete, existingIDs[id])
		}
	}
	return changes
}

// index builds an identity-keyed map plus a first-occurrence ordering of the
// keys, so diff output stays deterministic.
func index(log logr.Logger, resources []*unstructured.Unstructured) (map[resource.Identity]*unstructured.Unstructured, []resource.Identity) {
	byID := make(map[resource.Identity]*unstructured.Unstructured, len(resources))
	order := make([]resource.Identity, 0, len(resources))
	for _, res := range resources {
		id := resource.IdentityOf(res)
		if _, seen := byID[id]; seen {
			log.Info("duplicate resource identity, keeping the last occurrence", "resource", id.String())
		} else {
			order = append(order, id)
		}
		byID[id] = res
	}
	return byID, order
}
